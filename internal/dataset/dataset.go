// Package dataset loads and prepares the Kaggle-style MNIST CSV tables.
//
// Training files carry a header row followed by rows of one integer
// label and 784 pixel intensities; test files carry the 784 pixel
// columns only. Loading validates structure and value domains up front:
// a malformed file surfaces a *FormatError or *RangeError before any
// model is constructed.
package dataset

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
)

// Dataset geometry. Images are 28×28 grayscale, flattened row-major
// into 784 columns; labels are the ten digits.
const (
	NumClasses = 10
	ImageSize  = 28
	NumPixels  = ImageSize * ImageSize
	MaxPixel   = 255
)

// Table is the raw sample table as loaded: one row per image, pixel
// intensities still in [0, 255]. Labels is empty for test tables.
type Table struct {
	Labels []int
	Pixels [][]float64 // [num_samples][784], raw intensities
}

// NumSamples returns the number of rows in the table.
func (t *Table) NumSamples() int {
	return len(t.Pixels)
}

// Split splits the table into head and tail parts, with frac of the
// rows in the tail. Used only for post-hoc inspection views.
func (t *Table) Split(frac float64) (*Table, *Table) {
	n := t.NumSamples()
	cut := n - int(float64(n)*frac)

	head := &Table{Pixels: t.Pixels[:cut]}
	tail := &Table{Pixels: t.Pixels[cut:]}
	if len(t.Labels) == n {
		head.Labels = t.Labels[:cut]
		tail.Labels = t.Labels[cut:]
	}
	return head, tail
}

// LoadTrain reads a training table: header row, then one label column
// and 784 pixel columns per row.
func LoadTrain(path string) (*Table, error) {
	return load(path, true)
}

// LoadTest reads a test table: header row, then 784 pixel columns per row.
func LoadTest(path string) (*Table, error) {
	return load(path, false)
}

func load(path string, labeled bool) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("dataset: open %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1 // column counts are checked per row below
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("dataset: read %s: %w", path, err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("dataset: %s is empty or missing header", path)
	}
	records = records[1:] // header

	wantCols := NumPixels
	if labeled {
		wantCols = NumPixels + 1
	}

	table := &Table{
		Pixels: make([][]float64, 0, len(records)),
	}
	if labeled {
		table.Labels = make([]int, 0, len(records))
	}

	for i, record := range records {
		row := i + 1
		if len(record) != wantCols {
			return nil, &FormatError{Row: row, Reason: fmt.Sprintf("got %d columns, want %d", len(record), wantCols)}
		}

		cells := record
		if labeled {
			label, err := strconv.Atoi(record[0])
			if err != nil {
				return nil, &FormatError{Row: row, Reason: fmt.Sprintf("label %q is not an integer", record[0])}
			}
			if label < 0 || label > NumClasses-1 {
				return nil, &RangeError{Row: row, Field: "label", Value: label, Min: 0, Max: NumClasses - 1}
			}
			table.Labels = append(table.Labels, label)
			cells = record[1:]
		}

		pixels := make([]float64, NumPixels)
		for j, cell := range cells {
			p, err := strconv.Atoi(cell)
			if err != nil {
				return nil, &FormatError{Row: row, Reason: fmt.Sprintf("pixel column %d: %q is not an integer", j, cell)}
			}
			if p < 0 || p > MaxPixel {
				return nil, &RangeError{Row: row, Field: "pixel", Value: p, Min: 0, Max: MaxPixel}
			}
			pixels[j] = float64(p)
		}
		table.Pixels = append(table.Pixels, pixels)
	}

	return table, nil
}
