package optim

import (
	"math"

	"github.com/scriven-ml/scriven/internal/nn"
)

// Adam implements the Adam (Adaptive Moment Estimation) optimizer.
//
// Adam keeps exponential moving averages of gradients (first moment)
// and squared gradients (second moment), with bias correction for their
// zero initialization:
//
//	m_t = beta1 * m_{t-1} + (1-beta1) * g
//	v_t = beta2 * v_{t-1} + (1-beta2) * g²
//	m_hat = m_t / (1 - beta1^t)
//	v_hat = v_t / (1 - beta2^t)
//	param = param - lr * m_hat / (sqrt(v_hat) + eps)
//
// Reference: "Adam: A Method for Stochastic Optimization"
// (Kingma & Ba, 2014).
type Adam struct {
	params []*nn.Parameter
	lr     float64
	beta1  float64
	beta2  float64
	eps    float64
	t      int         // timestep for bias correction
	m      [][]float64 // first moment per parameter
	v      [][]float64 // second moment per parameter
}

// AdamConfig holds Adam hyperparameters. Zero fields fall back to the
// usual defaults (lr=0.001, betas 0.9/0.999, eps=1e-8).
type AdamConfig struct {
	LR    float64
	Betas [2]float64
	Eps   float64
}

// NewAdam creates an Adam optimizer over the given parameters.
func NewAdam(params []*nn.Parameter, config AdamConfig) *Adam {
	if config.LR == 0 {
		config.LR = 0.001
	}
	if config.Betas[0] == 0 {
		config.Betas[0] = 0.9
	}
	if config.Betas[1] == 0 {
		config.Betas[1] = 0.999
	}
	if config.Eps == 0 {
		config.Eps = 1e-8
	}

	m := make([][]float64, len(params))
	v := make([][]float64, len(params))
	for i, p := range params {
		m[i] = make([]float64, p.Value().NumElements())
		v[i] = make([]float64, p.Value().NumElements())
	}

	return &Adam{
		params: params,
		lr:     config.LR,
		beta1:  config.Betas[0],
		beta2:  config.Betas[1],
		eps:    config.Eps,
		m:      m,
		v:      v,
	}
}

// Step performs a single Adam update on all parameters.
func (a *Adam) Step() {
	a.t++
	biasCorrection1 := 1.0 - math.Pow(a.beta1, float64(a.t))
	biasCorrection2 := 1.0 - math.Pow(a.beta2, float64(a.t))

	for i, p := range a.params {
		paramData := p.Value().Data()
		gradData := p.Grad().Data()
		m := a.m[i]
		v := a.v[i]

		for j := range paramData {
			g := gradData[j]

			m[j] = a.beta1*m[j] + (1.0-a.beta1)*g
			v[j] = a.beta2*v[j] + (1.0-a.beta2)*g*g

			mHat := m[j] / biasCorrection1
			vHat := v[j] / biasCorrection2

			paramData[j] -= a.lr * mHat / (math.Sqrt(vHat) + a.eps)
		}
	}
}

// ZeroGrad clears gradients for all parameters.
func (a *Adam) ZeroGrad() {
	zeroGrads(a.params)
}

// LR returns the current learning rate.
func (a *Adam) LR() float64 {
	return a.lr
}

// SetLR updates the learning rate.
func (a *Adam) SetLR(lr float64) {
	a.lr = lr
}

// Timestep returns the current update count.
func (a *Adam) Timestep() int {
	return a.t
}
