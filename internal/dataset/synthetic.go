package dataset

// Synthetic builds a small in-memory table with labels cycling 0-9.
//
// Each digit d gets a bright horizontal band whose vertical position
// encodes d, with the band nudged sideways per sample so rows are not
// identical. The patterns are trivially separable; they exist so the
// pipeline and its tests can run without the real CSV files.
func Synthetic(n int) *Table {
	table := &Table{
		Labels: make([]int, n),
		Pixels: make([][]float64, n),
	}

	for i := 0; i < n; i++ {
		label := i % NumClasses
		table.Labels[i] = label

		pixels := make([]float64, NumPixels)
		startRow := label*2 + 2
		colShift := (i / NumClasses) % 4
		for row := startRow; row < startRow+6 && row < ImageSize; row++ {
			for col := 4 + colShift; col < 24+colShift && col < ImageSize; col++ {
				pixels[row*ImageSize+col] = 200
			}
		}
		table.Pixels[i] = pixels
	}

	return table
}
