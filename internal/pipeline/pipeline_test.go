package pipeline

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scriven-ml/scriven/internal/config"
)

func TestRun_SyntheticEndToEnd(t *testing.T) {
	dir := t.TempDir()

	cfg := config.Default()
	cfg.Synthetic = 100
	cfg.Epochs = 1
	cfg.BatchSize = 10
	cfg.OutputPath = filepath.Join(dir, "submission.csv")
	cfg.PreviewPath = filepath.Join(dir, "preview.png")
	cfg.CurvesPath = filepath.Join(dir, "curves.png")
	require.NoError(t, cfg.Validate())

	require.NoError(t, Run(cfg))

	f, err := os.Open(cfg.OutputPath)
	require.NoError(t, err)
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)

	// Header plus one row per synthetic test image, ids counting from 1.
	require.Len(t, records, 11)
	assert.Equal(t, []string{"ImageId", "Label"}, records[0])
	for i, rec := range records[1:] {
		require.Len(t, rec, 2)
		assert.Equal(t, strconv.Itoa(i+1), rec[0])

		label, err := strconv.Atoi(rec[1])
		require.NoError(t, err)
		assert.GreaterOrEqual(t, label, 0)
		assert.Less(t, label, 10)
	}

	for _, artifact := range []string{cfg.PreviewPath, cfg.CurvesPath} {
		info, err := os.Stat(artifact)
		require.NoError(t, err, artifact)
		assert.Greater(t, info.Size(), int64(0), artifact)
	}
}

func TestRun_Deterministic(t *testing.T) {
	dir := t.TempDir()

	run := func(out string) []byte {
		cfg := config.Default()
		cfg.Synthetic = 50
		cfg.Epochs = 1
		cfg.BatchSize = 10
		cfg.Seed = 7
		cfg.OutputPath = filepath.Join(dir, out)
		require.NoError(t, Run(cfg))

		data, err := os.ReadFile(cfg.OutputPath)
		require.NoError(t, err)
		return data
	}

	assert.Equal(t, run("a.csv"), run("b.csv"))
}

func TestRun_MissingTrainFile(t *testing.T) {
	cfg := config.Default()
	cfg.TrainPath = filepath.Join(t.TempDir(), "absent.csv")
	cfg.TestPath = cfg.TrainPath
	cfg.OutputPath = filepath.Join(t.TempDir(), "out.csv")

	err := Run(cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestRun_UnknownModel(t *testing.T) {
	cfg := config.Default()
	cfg.Synthetic = 20
	cfg.Model = "lenet"
	cfg.OutputPath = filepath.Join(t.TempDir(), "out.csv")

	assert.Error(t, Run(cfg))
}
