// Package trainer runs the fixed-epoch optimization loop over an
// augmented minibatch stream.
//
// The loop is deliberately plain: a set number of epochs, each a fixed
// number of steps, with no early stopping, checkpointing or validation
// split. Any non-finite loss aborts the run with a *TrainingError.
package trainer

import (
	"fmt"
	"log"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/scriven-ml/scriven/internal/augment"
	"github.com/scriven-ml/scriven/internal/nn"
	"github.com/scriven-ml/scriven/internal/optim"
	"github.com/scriven-ml/scriven/tensor"
)

// Model is the slice of the network the loop needs: a logits pass, a
// gradient pass, and the parameter list handed to the optimizer.
type Model interface {
	Logits(x *tensor.Tensor, train bool) *tensor.Tensor
	Backward(grad *tensor.Tensor)
	Params() []*nn.Parameter
}

// BatchSource yields training minibatches. StepsPerEpoch fixes the
// number of batches that make up one epoch.
type BatchSource interface {
	Next() *augment.Batch
	StepsPerEpoch() int
}

// TrainingError reports a diverged run: the loss left the finite range.
type TrainingError struct {
	Epoch int
	Step  int
	Loss  float64
}

func (e *TrainingError) Error() string {
	return fmt.Sprintf("trainer: non-finite loss %v at epoch %d step %d", e.Loss, e.Epoch, e.Step)
}

// Config controls the loop. Epochs must be positive; LogEvery is the
// step interval between progress lines, 0 for the default of 100.
type Config struct {
	Epochs   int
	LogEvery int
}

// EpochStats summarizes one epoch over its training batches.
type EpochStats struct {
	Epoch    int
	Loss     float64 // mean batch loss
	Accuracy float64 // mean batch accuracy
}

// History records per-epoch statistics for reporting and plotting.
type History struct {
	Epochs []EpochStats
}

// FinalLoss returns the mean loss of the last epoch.
func (h *History) FinalLoss() float64 {
	if len(h.Epochs) == 0 {
		return math.NaN()
	}
	return h.Epochs[len(h.Epochs)-1].Loss
}

// Losses returns the per-epoch mean losses in order.
func (h *History) Losses() []float64 {
	out := make([]float64, len(h.Epochs))
	for i, e := range h.Epochs {
		out[i] = e.Loss
	}
	return out
}

// Accuracies returns the per-epoch mean accuracies in order.
func (h *History) Accuracies() []float64 {
	out := make([]float64, len(h.Epochs))
	for i, e := range h.Epochs {
		out[i] = e.Accuracy
	}
	return out
}

// Fit trains the model for the configured number of epochs and returns
// the per-epoch history. The model's parameters are updated in place.
func Fit(m Model, batches BatchSource, opt optim.Optimizer, cfg Config) (*History, error) {
	if cfg.Epochs <= 0 {
		return nil, fmt.Errorf("trainer: epochs must be > 0, got %d", cfg.Epochs)
	}
	logEvery := cfg.LogEvery
	if logEvery <= 0 {
		logEvery = 100
	}

	steps := batches.StepsPerEpoch()
	history := &History{}

	for epoch := 1; epoch <= cfg.Epochs; epoch++ {
		losses := make([]float64, 0, steps)
		accs := make([]float64, 0, steps)

		for step := 1; step <= steps; step++ {
			batch := batches.Next()

			logits := m.Logits(batch.Images, true)
			loss, grad := nn.CrossEntropy(logits, batch.Labels)
			if math.IsNaN(loss) || math.IsInf(loss, 0) {
				return nil, &TrainingError{Epoch: epoch, Step: step, Loss: loss}
			}

			opt.ZeroGrad()
			m.Backward(grad)
			opt.Step()

			losses = append(losses, loss)
			accs = append(accs, nn.Accuracy(logits, batch.Labels))

			if step%logEvery == 0 {
				log.Printf("epoch=%d step=%d/%d loss=%.4f acc=%.4f lr=%g",
					epoch, step, steps, loss, accs[len(accs)-1], opt.LR())
			}
		}

		es := EpochStats{
			Epoch:    epoch,
			Loss:     stat.Mean(losses, nil),
			Accuracy: stat.Mean(accs, nil),
		}
		history.Epochs = append(history.Epochs, es)
		log.Printf("epoch=%d done loss=%.4f acc=%.4f", epoch, es.Loss, es.Accuracy)
	}

	return history, nil
}
