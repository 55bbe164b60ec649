// Package pipeline wires the full run: load, preprocess, augment,
// build, train, predict, export, and the optional preview artifacts.
package pipeline

import (
	"fmt"
	"log"

	"github.com/scriven-ml/scriven/internal/augment"
	"github.com/scriven-ml/scriven/internal/config"
	"github.com/scriven-ml/scriven/internal/dataset"
	"github.com/scriven-ml/scriven/internal/export"
	"github.com/scriven-ml/scriven/internal/optim"
	"github.com/scriven-ml/scriven/internal/preview"
	"github.com/scriven-ml/scriven/internal/trainer"
	"github.com/scriven-ml/scriven/model"
	"github.com/scriven-ml/scriven/tensor"
)

// previewCount caps how many test images the sample grid renders.
const previewCount = 40

// Run executes one training run end to end with the given validated
// configuration.
func Run(cfg *config.Config) error {
	train, test, err := loadTables(cfg)
	if err != nil {
		return err
	}
	log.Printf("data train=%d test=%d", train.NumSamples(), test.NumSamples())

	labels, err := dataset.OneHot(train.Labels)
	if err != nil {
		return err
	}
	trainImages, err := dataset.Images(dataset.Normalize(train.Pixels))
	if err != nil {
		return err
	}
	testImages, err := dataset.Images(dataset.Normalize(test.Pixels))
	if err != nil {
		return err
	}

	stream, err := augment.NewStream(trainImages, labels, cfg.BatchSize, cfg.Augment, cfg.Seed)
	if err != nil {
		return err
	}

	arch, err := model.ByName(cfg.Model)
	if err != nil {
		return err
	}
	net, err := model.Build(arch, cfg.Seed)
	if err != nil {
		return err
	}
	log.Printf("model=%s params=%d epochs=%d batch=%d lr=%g seed=%d",
		arch.Name, paramCount(net), cfg.Epochs, cfg.BatchSize, cfg.LR, cfg.Seed)

	opt := optim.NewAdam(net.Params(), optim.AdamConfig{LR: cfg.LR})
	history, err := trainer.Fit(net, stream, opt, trainer.Config{
		Epochs:   cfg.Epochs,
		LogEvery: cfg.LogEvery,
	})
	if err != nil {
		return err
	}

	predicted, err := export.Predict(net, testImages, cfg.BatchSize)
	if err != nil {
		return err
	}
	if err := export.WriteSubmission(cfg.OutputPath, predicted); err != nil {
		return err
	}
	log.Printf("submission rows=%d path=%s", len(predicted), cfg.OutputPath)

	if cfg.PreviewPath != "" {
		if err := savePreview(cfg.PreviewPath, testImages, predicted); err != nil {
			return err
		}
		log.Printf("preview path=%s", cfg.PreviewPath)
	}
	if cfg.CurvesPath != "" {
		if err := preview.SaveCurves(cfg.CurvesPath, history.Losses(), history.Accuracies()); err != nil {
			return err
		}
		log.Printf("curves path=%s", cfg.CurvesPath)
	}

	return nil
}

func loadTables(cfg *config.Config) (train, test *dataset.Table, err error) {
	if cfg.Synthetic > 0 {
		log.Printf("generating synthetic data rows=%d", cfg.Synthetic)
		return dataset.Synthetic(cfg.Synthetic), dataset.Synthetic(10), nil
	}

	train, err = dataset.LoadTrain(cfg.TrainPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load %s: %w", cfg.TrainPath, err)
	}
	test, err = dataset.LoadTest(cfg.TestPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load %s: %w", cfg.TestPath, err)
	}
	return train, test, nil
}

func savePreview(path string, images *tensor.Tensor, labels []int) error {
	shape := images.Shape()
	n := shape[0]
	if n > previewCount {
		n = previewCount
	}

	perImage := shape[1] * shape[2] * shape[3]
	sample, err := tensor.FromSlice(
		images.Data()[:n*perImage],
		tensor.Shape{n, shape[1], shape[2], shape[3]},
	)
	if err != nil {
		return err
	}
	return preview.SaveGrid(path, sample, labels[:n], 10)
}

func paramCount(net *model.Network) int {
	total := 0
	for _, p := range net.Params() {
		total += p.Value().NumElements()
	}
	return total
}
