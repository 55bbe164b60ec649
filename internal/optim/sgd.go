package optim

import "github.com/scriven-ml/scriven/internal/nn"

// SGD implements stochastic gradient descent with optional momentum.
//
// Update rule with momentum:
//
//	velocity = momentum * velocity + g
//	param = param - lr * velocity
//
// With momentum = 0 this reduces to plain gradient descent.
type SGD struct {
	params   []*nn.Parameter
	lr       float64
	momentum float64
	velocity [][]float64
}

// SGDConfig holds SGD hyperparameters. A zero LR falls back to 0.01.
type SGDConfig struct {
	LR       float64
	Momentum float64
}

// NewSGD creates an SGD optimizer over the given parameters.
func NewSGD(params []*nn.Parameter, config SGDConfig) *SGD {
	if config.LR == 0 {
		config.LR = 0.01
	}

	velocity := make([][]float64, len(params))
	for i, p := range params {
		velocity[i] = make([]float64, p.Value().NumElements())
	}

	return &SGD{
		params:   params,
		lr:       config.LR,
		momentum: config.Momentum,
		velocity: velocity,
	}
}

// Step performs a single SGD update on all parameters.
func (s *SGD) Step() {
	for i, p := range s.params {
		paramData := p.Value().Data()
		gradData := p.Grad().Data()
		vel := s.velocity[i]

		for j := range paramData {
			vel[j] = s.momentum*vel[j] + gradData[j]
			paramData[j] -= s.lr * vel[j]
		}
	}
}

// ZeroGrad clears gradients for all parameters.
func (s *SGD) ZeroGrad() {
	zeroGrads(s.params)
}

// LR returns the current learning rate.
func (s *SGD) LR() float64 {
	return s.lr
}
