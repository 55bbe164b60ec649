// Command scriven trains a digit classifier on Kaggle-style MNIST CSVs
// and writes the submission file.
package main

import (
	"flag"
	"log"

	"github.com/scriven-ml/scriven/internal/config"
	"github.com/scriven-ml/scriven/internal/pipeline"
)

func main() {
	cfgPath := flag.String("config", "", "Path to YAML config (optional)")
	trainPath := flag.String("train", "", "Override training CSV path")
	testPath := flag.String("test", "", "Override test CSV path")
	outPath := flag.String("out", "", "Override submission CSV path")
	modelName := flag.String("model", "", "Architecture: baseline or improved")
	epochs := flag.Int("epochs", 0, "Number of training epochs")
	batchSize := flag.Int("batch", 0, "Batch size")
	lr := flag.Float64("lr", 0, "Learning rate")
	seed := flag.Int64("seed", 0, "PRNG seed")
	synthetic := flag.Int("synthetic", 0, "Use N generated training rows instead of CSVs")
	previewPath := flag.String("preview", "", "Write a sample-grid PNG to this path")
	curvesPath := flag.String("curves", "", "Write a training-curves PNG to this path")

	flag.Parse()

	cfg := config.Default()
	if *cfgPath != "" {
		loaded, err := config.Load(*cfgPath)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
		cfg = loaded
	}

	cfg.ApplyOverrides(config.Overrides{
		TrainPath:   *trainPath,
		TestPath:    *testPath,
		OutputPath:  *outPath,
		Model:       *modelName,
		Epochs:      *epochs,
		BatchSize:   *batchSize,
		LR:          *lr,
		Seed:        *seed,
		Synthetic:   *synthetic,
		PreviewPath: *previewPath,
		CurvesPath:  *curvesPath,
	})

	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	if err := pipeline.Run(cfg); err != nil {
		log.Fatalf("run failed: %v", err)
	}
}
