package optim

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scriven-ml/scriven/internal/nn"
	"github.com/scriven-ml/scriven/tensor"
)

// quadParam builds a parameter holding x and a function that loads the
// gradient of f(x) = sum(x²) onto it.
func quadParam(t *testing.T, init []float64) (*nn.Parameter, func()) {
	t.Helper()
	value, err := tensor.FromSlice(init, tensor.Shape{len(init)})
	require.NoError(t, err)
	p := nn.NewParameter("x", value)

	loadGrad := func() {
		grad := p.Grad().Data()
		for i, v := range p.Value().Data() {
			grad[i] = 2 * v
		}
	}
	return p, loadGrad
}

func TestAdam_Defaults(t *testing.T) {
	p, _ := quadParam(t, []float64{1})
	adam := NewAdam([]*nn.Parameter{p}, AdamConfig{})

	assert.Equal(t, 0.001, adam.LR())
	assert.Equal(t, 0.9, adam.beta1)
	assert.Equal(t, 0.999, adam.beta2)
	assert.Equal(t, 1e-8, adam.eps)
}

func TestAdam_FirstStepMagnitude(t *testing.T) {
	// With bias correction, the very first Adam step moves the
	// parameter by almost exactly lr in the gradient's direction.
	p, loadGrad := quadParam(t, []float64{3})
	adam := NewAdam([]*nn.Parameter{p}, AdamConfig{LR: 0.1})

	loadGrad()
	adam.Step()

	assert.InDelta(t, 3.0-0.1, p.Value().Data()[0], 1e-6)
	assert.Equal(t, 1, adam.Timestep())
}

func TestAdam_MinimizesQuadratic(t *testing.T) {
	p, loadGrad := quadParam(t, []float64{2, -3, 0.5})
	adam := NewAdam([]*nn.Parameter{p}, AdamConfig{LR: 0.05})

	for i := 0; i < 500; i++ {
		adam.ZeroGrad()
		loadGrad()
		adam.Step()
	}

	for _, v := range p.Value().Data() {
		assert.Less(t, math.Abs(v), 0.01)
	}
}

func TestSGD_MinimizesQuadratic(t *testing.T) {
	p, loadGrad := quadParam(t, []float64{2, -3})
	sgd := NewSGD([]*nn.Parameter{p}, SGDConfig{LR: 0.1, Momentum: 0.9})

	for i := 0; i < 200; i++ {
		sgd.ZeroGrad()
		loadGrad()
		sgd.Step()
	}

	for _, v := range p.Value().Data() {
		assert.Less(t, math.Abs(v), 0.01)
	}
}

func TestSGD_PlainStep(t *testing.T) {
	p, loadGrad := quadParam(t, []float64{1})
	sgd := NewSGD([]*nn.Parameter{p}, SGDConfig{LR: 0.25})

	loadGrad()
	sgd.Step()

	// x - lr * 2x = 1 - 0.25*2 = 0.5
	assert.InDelta(t, 0.5, p.Value().Data()[0], 1e-12)
}

func TestZeroGrad(t *testing.T) {
	p, loadGrad := quadParam(t, []float64{1, 2})
	adam := NewAdam([]*nn.Parameter{p}, AdamConfig{})

	loadGrad()
	adam.ZeroGrad()
	for _, v := range p.Grad().Data() {
		assert.Zero(t, v)
	}
}
