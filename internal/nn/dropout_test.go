package nn

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scriven-ml/scriven/tensor"
)

func TestDropout_EvalIsIdentity(t *testing.T) {
	drop := NewDropout(0.5, rand.New(rand.NewSource(1)))
	input := tensor.Full(tensor.Shape{4, 8}, 2.0)

	out := drop.Forward(input, false)
	assert.True(t, input.Equal(out))

	grad := tensor.Full(tensor.Shape{4, 8}, 3.0)
	dx := drop.Backward(grad)
	assert.True(t, grad.Equal(dx))
}

func TestDropout_TrainDropsAndRescales(t *testing.T) {
	rate := 0.2
	drop := NewDropout(rate, rand.New(rand.NewSource(7)))
	input := tensor.Full(tensor.Shape{100, 100}, 1.0)

	out := drop.Forward(input, true)

	zeros := 0
	keep := 1.0 / (1.0 - rate)
	for _, v := range out.Data() {
		switch v {
		case 0:
			zeros++
		case keep:
		default:
			t.Fatalf("unexpected output value %g (want 0 or %g)", v, keep)
		}
	}
	// Dropped fraction should be near the configured rate.
	frac := float64(zeros) / float64(out.NumElements())
	assert.InDelta(t, rate, frac, 0.02)
}

func TestDropout_BackwardMatchesMask(t *testing.T) {
	drop := NewDropout(0.5, rand.New(rand.NewSource(9)))
	input := tensor.Full(tensor.Shape{10, 10}, 1.0)
	out := drop.Forward(input, true)

	grad := tensor.Full(tensor.Shape{10, 10}, 1.0)
	dx := drop.Backward(grad)

	// The gradient is zero exactly where the activation was dropped and
	// scaled identically where it survived.
	require.Equal(t, out.NumElements(), dx.NumElements())
	assertClose(t, out.Data(), dx.Data(), 0, "dropout gradient vs mask")
}

func TestDropout_ZeroRateIsIdentity(t *testing.T) {
	drop := NewDropout(0, rand.New(rand.NewSource(1)))
	input := tensor.Full(tensor.Shape{2, 2}, 1.5)
	out := drop.Forward(input, true)
	assert.True(t, input.Equal(out))
}
