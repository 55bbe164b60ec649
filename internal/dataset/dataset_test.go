package dataset

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scriven-ml/scriven/tensor"
)

// writeCSV drops a CSV file into a temp dir and returns its path.
func writeCSV(t *testing.T, lines []string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644))
	return path
}

func trainHeader() string {
	cols := make([]string, 0, NumPixels+1)
	cols = append(cols, "label")
	for i := 0; i < NumPixels; i++ {
		cols = append(cols, fmt.Sprintf("pixel%d", i))
	}
	return strings.Join(cols, ",")
}

func trainRow(label int, fill int) string {
	cols := make([]string, 0, NumPixels+1)
	cols = append(cols, fmt.Sprintf("%d", label))
	for i := 0; i < NumPixels; i++ {
		cols = append(cols, fmt.Sprintf("%d", fill))
	}
	return strings.Join(cols, ",")
}

func TestLoadTrain(t *testing.T) {
	path := writeCSV(t, []string{
		trainHeader(),
		trainRow(5, 0),
		trainRow(0, 255),
	})

	table, err := LoadTrain(path)
	require.NoError(t, err)

	assert.Equal(t, 2, table.NumSamples())
	assert.Equal(t, []int{5, 0}, table.Labels)
	assert.Len(t, table.Pixels[0], NumPixels)
	assert.Equal(t, 255.0, table.Pixels[1][0])
}

func TestLoadTrain_WrongColumnCount(t *testing.T) {
	// A row with only 784 columns where 785 are expected.
	short := strings.Join(strings.Split(trainRow(3, 0), ",")[:NumPixels], ",")
	path := writeCSV(t, []string{trainHeader(), short})

	_, err := LoadTrain(path)
	require.Error(t, err)

	var formatErr *FormatError
	require.True(t, errors.As(err, &formatErr))
	assert.Equal(t, 1, formatErr.Row)
}

func TestLoadTrain_NonIntegerCell(t *testing.T) {
	row := trainRow(3, 0)
	row = strings.Replace(row, "3,", "3,x,", 1)
	row = row[:strings.LastIndex(row, ",")] // keep column count at 785
	path := writeCSV(t, []string{trainHeader(), row})

	_, err := LoadTrain(path)
	var formatErr *FormatError
	require.True(t, errors.As(err, &formatErr))
}

func TestLoadTrain_LabelOutOfRange(t *testing.T) {
	path := writeCSV(t, []string{trainHeader(), trainRow(10, 0)})

	_, err := LoadTrain(path)
	require.Error(t, err)

	var rangeErr *RangeError
	require.True(t, errors.As(err, &rangeErr))
	assert.Equal(t, "label", rangeErr.Field)
	assert.Equal(t, 10, rangeErr.Value)
}

func TestLoadTrain_PixelOutOfRange(t *testing.T) {
	path := writeCSV(t, []string{trainHeader(), trainRow(1, 256)})

	_, err := LoadTrain(path)
	var rangeErr *RangeError
	require.True(t, errors.As(err, &rangeErr))
	assert.Equal(t, "pixel", rangeErr.Field)
}

func TestLoadTest(t *testing.T) {
	cols := make([]string, NumPixels)
	for i := range cols {
		cols[i] = fmt.Sprintf("pixel%d", i)
	}
	row := strings.Repeat("7,", NumPixels-1) + "7"
	path := writeCSV(t, []string{strings.Join(cols, ","), row})

	table, err := LoadTest(path)
	require.NoError(t, err)
	assert.Equal(t, 1, table.NumSamples())
	assert.Empty(t, table.Labels)
}

func TestLoadTrain_MissingFile(t *testing.T) {
	_, err := LoadTrain(filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestOneHot(t *testing.T) {
	encoded, err := OneHot([]int{0, 9, 4})
	require.NoError(t, err)
	require.True(t, encoded.Shape().Equal(tensor.Shape{3, NumClasses}))

	for i, label := range []int{0, 9, 4} {
		rowSum := 0.0
		for j := 0; j < NumClasses; j++ {
			v := encoded.At(i, j)
			rowSum += v
			if j == label {
				assert.Equal(t, 1.0, v, "row %d col %d", i, j)
			} else {
				assert.Equal(t, 0.0, v, "row %d col %d", i, j)
			}
		}
		assert.Equal(t, 1.0, rowSum)
	}
}

func TestOneHot_OutOfRange(t *testing.T) {
	_, err := OneHot([]int{3, -1})
	var rangeErr *RangeError
	require.True(t, errors.As(err, &rangeErr))
	assert.Equal(t, -1, rangeErr.Value)
}

func TestNormalize(t *testing.T) {
	pixels := [][]float64{make([]float64, NumPixels)}
	pixels[0][0] = 0
	pixels[0][1] = 255
	pixels[0][2] = 51
	pixels[0][3] = 102

	flat := Normalize(pixels)
	require.True(t, flat.Shape().Equal(tensor.Shape{1, NumPixels}))

	assert.Equal(t, 0.0, flat.At(0, 0))
	assert.Equal(t, 1.0, flat.At(0, 1))
	// Monotonic: larger intensity, larger normalized value.
	assert.Less(t, flat.At(0, 2), flat.At(0, 3))
}

func TestImages_PreservesOrdering(t *testing.T) {
	pixels := [][]float64{make([]float64, NumPixels)}
	pixels[0][3*ImageSize+7] = 255

	flat := Normalize(pixels)
	imgs, err := Images(flat)
	require.NoError(t, err)
	require.True(t, imgs.Shape().Equal(tensor.Shape{1, 1, ImageSize, ImageSize}))

	assert.Equal(t, 1.0, imgs.At(0, 0, 3, 7))
}

func TestImages_BadElementCount(t *testing.T) {
	flat := tensor.Zeros(tensor.Shape{2, NumPixels - 1})
	_, err := Images(flat)

	var shapeErr *tensor.ShapeError
	require.True(t, errors.As(err, &shapeErr))
}

func TestPreprocess_Counts(t *testing.T) {
	// N valid rows produce exactly N one-hot rows and N feature images.
	table := Synthetic(23)

	encoded, err := OneHot(table.Labels)
	require.NoError(t, err)
	imgs, err := Images(Normalize(table.Pixels))
	require.NoError(t, err)

	assert.Equal(t, 23, encoded.Shape()[0])
	assert.True(t, imgs.Shape().Equal(tensor.Shape{23, 1, ImageSize, ImageSize}))
}

func TestSynthetic_LabelsCycle(t *testing.T) {
	table := Synthetic(25)
	require.Len(t, table.Labels, 25)
	for i, label := range table.Labels {
		assert.Equal(t, i%NumClasses, label)
	}
}

func TestSplit(t *testing.T) {
	table := Synthetic(10)
	head, tail := table.Split(0.2)
	assert.Equal(t, 8, head.NumSamples())
	assert.Equal(t, 2, tail.NumSamples())
	assert.Len(t, head.Labels, 8)
}
