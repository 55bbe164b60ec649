package dataset

import "github.com/scriven-ml/scriven/tensor"

// OneHot encodes integer labels as one-hot rows of length NumClasses:
// a single 1.0 at the label's index, 0.0 elsewhere.
//
// Returns a *RangeError if any label is outside [0, 9].
func OneHot(labels []int) (*tensor.Tensor, error) {
	out := tensor.Zeros(tensor.Shape{len(labels), NumClasses})
	data := out.Data()
	for i, label := range labels {
		if label < 0 || label > NumClasses-1 {
			return nil, &RangeError{Row: i + 1, Field: "label", Value: label, Min: 0, Max: NumClasses - 1}
		}
		data[i*NumClasses+label] = 1.0
	}
	return out, nil
}

// Normalize scales raw pixel intensities from [0, 255] to [0, 1] and
// packs them into a [N, 784] tensor. The map is linear (p/255), so it
// is monotonic with 0 → 0.0 and 255 → 1.0.
func Normalize(pixels [][]float64) *tensor.Tensor {
	out := tensor.Zeros(tensor.Shape{len(pixels), NumPixels})
	data := out.Data()
	for i, row := range pixels {
		for j, p := range row {
			data[i*NumPixels+j] = p / MaxPixel
		}
	}
	return out
}

// Images reshapes flat [N, 784] features into [N, 1, 28, 28] image
// tensors. Row-major ordering is preserved, so pixel (r, c) of image i
// is flat element i*784 + r*28 + c.
//
// Returns a *tensor.ShapeError if the element count is not a multiple
// of 784.
func Images(flat *tensor.Tensor) (*tensor.Tensor, error) {
	n := flat.NumElements() / NumPixels
	if n == 0 || n*NumPixels != flat.NumElements() {
		return nil, &tensor.ShapeError{
			Op:   "reshape",
			Have: flat.Shape().Clone(),
			Want: tensor.Shape{n, 1, ImageSize, ImageSize},
		}
	}
	return flat.Reshape(n, 1, ImageSize, ImageSize)
}
