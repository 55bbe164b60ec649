// Package export runs batched inference and writes the submission CSV.
//
// The output format is the Kaggle digit-recognizer submission: a header
// line followed by one `ImageId,Label` row per test image, with ids
// starting at 1 in input order.
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/scriven-ml/scriven/internal/nn"
	"github.com/scriven-ml/scriven/tensor"
)

// Predictor maps a batch of images to per-class probability rows.
type Predictor interface {
	Predict(x *tensor.Tensor) *tensor.Tensor
}

// Predict runs the model over the images ([N, 1, H, W]) in batches of
// at most batchSize and returns the argmax class per image, in input
// order.
func Predict(p Predictor, images *tensor.Tensor, batchSize int) ([]int, error) {
	shape := images.Shape()
	if len(shape) != 4 {
		return nil, fmt.Errorf("export: images must be [N, C, H, W], got %v", shape)
	}
	if batchSize <= 0 {
		return nil, fmt.Errorf("export: batch size must be > 0, got %d", batchSize)
	}

	n := shape[0]
	perImage := shape[1] * shape[2] * shape[3]
	labels := make([]int, 0, n)

	for start := 0; start < n; start += batchSize {
		end := start + batchSize
		if end > n {
			end = n
		}

		batch, err := tensor.FromSlice(
			images.Data()[start*perImage:end*perImage],
			tensor.Shape{end - start, shape[1], shape[2], shape[3]},
		)
		if err != nil {
			return nil, err
		}

		probs := p.Predict(batch)
		classes := probs.Shape()[1]
		for i := 0; i < end-start; i++ {
			row := probs.Data()[i*classes : (i+1)*classes]
			labels = append(labels, nn.Argmax(row))
		}
	}

	return labels, nil
}

// WriteSubmission writes the predicted labels to path in submission
// format. ImageIds are 1-based and follow the label order.
func WriteSubmission(path string, labels []int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export: create %s: %w", path, err)
	}

	w := csv.NewWriter(f)
	if err := w.Write([]string{"ImageId", "Label"}); err != nil {
		f.Close()
		return fmt.Errorf("export: write header: %w", err)
	}
	for i, label := range labels {
		rec := []string{strconv.Itoa(i + 1), strconv.Itoa(label)}
		if err := w.Write(rec); err != nil {
			f.Close()
			return fmt.Errorf("export: write row %d: %w", i+1, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("export: flush %s: %w", path, err)
	}

	return f.Close()
}
