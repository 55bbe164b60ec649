package nn

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scriven-ml/scriven/tensor"
)

func oneHotRow(classes, label int) []float64 {
	row := make([]float64, classes)
	row[label] = 1.0
	return row
}

func TestCrossEntropy_UniformLogits(t *testing.T) {
	// Equal logits over 10 classes: loss = ln(10) regardless of target.
	logits := tensor.Zeros(tensor.Shape{2, 10})
	targets, err := tensor.FromSlice(append(oneHotRow(10, 3), oneHotRow(10, 7)...), tensor.Shape{2, 10})
	require.NoError(t, err)

	loss, grad := CrossEntropy(logits, targets)
	assert.InDelta(t, math.Log(10), loss, 1e-12)

	// Gradient = (softmax - target) / N = (0.1 - y) / 2.
	data := grad.Data()
	for i := 0; i < 2; i++ {
		label := []int{3, 7}[i]
		for j := 0; j < 10; j++ {
			want := 0.1 / 2
			if j == label {
				want = (0.1 - 1.0) / 2
			}
			assert.InDelta(t, want, data[i*10+j], 1e-12)
		}
	}
}

func TestCrossEntropy_ConfidentPrediction(t *testing.T) {
	logits, err := tensor.FromSlice([]float64{20, 0, 0}, tensor.Shape{1, 3})
	require.NoError(t, err)
	targets, err := tensor.FromSlice(oneHotRow(3, 0), tensor.Shape{1, 3})
	require.NoError(t, err)

	loss, _ := CrossEntropy(logits, targets)
	assert.Less(t, loss, 1e-8)
}

func TestCrossEntropy_GradientCheck(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	logits := tensor.Rand(tensor.Shape{3, 6}, 2.0, rng)

	targetData := make([]float64, 0, 3*6)
	for _, label := range []int{1, 4, 0} {
		targetData = append(targetData, oneHotRow(6, label)...)
	}
	targets, err := tensor.FromSlice(targetData, tensor.Shape{3, 6})
	require.NoError(t, err)

	_, grad := CrossEntropy(logits, targets)

	// Central differences on the scalar loss.
	data := logits.Data()
	eps := 1e-6
	for i := range data {
		orig := data[i]
		data[i] = orig + eps
		plus, _ := CrossEntropy(logits, targets)
		data[i] = orig - eps
		minus, _ := CrossEntropy(logits, targets)
		data[i] = orig

		want := (plus - minus) / (2 * eps)
		assert.InDelta(t, want, grad.Data()[i], 1e-6, "logit %d", i)
	}
}

func TestAccuracy(t *testing.T) {
	logits, err := tensor.FromSlice([]float64{
		0.9, 0.05, 0.05,
		0.1, 0.1, 0.8,
		0.3, 0.4, 0.3,
		0.5, 0.2, 0.3,
	}, tensor.Shape{4, 3})
	require.NoError(t, err)

	targetData := make([]float64, 0, 4*3)
	for _, label := range []int{0, 2, 2, 0} {
		targetData = append(targetData, oneHotRow(3, label)...)
	}
	targets, err := tensor.FromSlice(targetData, tensor.Shape{4, 3})
	require.NoError(t, err)

	assert.InDelta(t, 0.75, Accuracy(logits, targets), 1e-12)
}
