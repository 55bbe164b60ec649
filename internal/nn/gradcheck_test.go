package nn

import (
	"math"
	"math/rand"
	"testing"

	"github.com/scriven-ml/scriven/tensor"
)

// numericalGradient estimates d(sum(weights * f(x)))/dx[i] with central
// differences. f must be deterministic between calls.
func numericalGradient(f func() *tensor.Tensor, x *tensor.Tensor, weights []float64, eps float64) []float64 {
	data := x.Data()
	grads := make([]float64, len(data))
	for i := range data {
		orig := data[i]

		data[i] = orig + eps
		plus := weightedSum(f(), weights)

		data[i] = orig - eps
		minus := weightedSum(f(), weights)

		data[i] = orig
		grads[i] = (plus - minus) / (2 * eps)
	}
	return grads
}

func weightedSum(t *tensor.Tensor, weights []float64) float64 {
	sum := 0.0
	for i, v := range t.Data() {
		sum += v * weights[i]
	}
	return sum
}

func randomWeights(n int, rng *rand.Rand) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = rng.NormFloat64()
	}
	return w
}

func assertClose(t *testing.T, want, got []float64, tol float64, what string) {
	t.Helper()
	if len(want) != len(got) {
		t.Fatalf("%s: length mismatch: want %d, got %d", what, len(want), len(got))
	}
	for i := range want {
		if math.Abs(want[i]-got[i]) > tol {
			t.Errorf("%s: element %d: want %g, got %g", what, i, want[i], got[i])
		}
	}
}
