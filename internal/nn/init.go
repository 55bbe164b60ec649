package nn

import (
	"math"
	"math/rand"

	"github.com/scriven-ml/scriven/tensor"
)

// Xavier (Glorot) initialization for weights.
//
// Draws values from U(-sqrt(6/(fan_in+fan_out)), sqrt(6/(fan_in+fan_out))),
// which keeps activation variance roughly constant across layers.
//
// The random source is passed in so that a model built from a fixed seed
// is reproducible.
func Xavier(fanIn, fanOut int, shape tensor.Shape, rng *rand.Rand) *tensor.Tensor {
	bound := math.Sqrt(6.0 / float64(fanIn+fanOut))
	return tensor.Rand(shape, bound, rng)
}
