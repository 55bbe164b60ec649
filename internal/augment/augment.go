// Package augment expands the training distribution with randomized
// affine image perturbations.
//
// A Stream is a lazy, infinite minibatch source: every call to Next
// draws the next slice of a shuffled index order, samples perturbation
// parameters independently and uniformly within the configured bounds,
// and warps each image with the resulting affine transform. The order
// reshuffles when exhausted, so an "epoch" is a fixed number of batches,
// not stream exhaustion. All randomness comes from one explicitly
// seeded source, so a run is reproducible.
package augment

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/scriven-ml/scriven/tensor"
)

// Config enumerates the enabled perturbations and their magnitude
// bounds. The zero value disables augmentation entirely: batches come
// out pixel-identical to their source images.
type Config struct {
	HorizontalFlip bool    `yaml:"horizontal_flip"` // mirror left-right with probability 0.5
	VerticalFlip   bool    `yaml:"vertical_flip"`   // mirror top-bottom with probability 0.5
	WidthShift     float64 `yaml:"width_shift"`     // max horizontal shift, fraction of width
	HeightShift    float64 `yaml:"height_shift"`    // max vertical shift, fraction of height
	Zoom           float64 `yaml:"zoom"`            // max zoom in/out, fraction
	Rotation       float64 `yaml:"rotation"`        // max rotation, degrees
	Shear          float64 `yaml:"shear"`           // max shear, fraction
}

// Batch is one training minibatch: warped images and their one-hot
// labels.
type Batch struct {
	Images *tensor.Tensor // [batch, 1, H, W]
	Labels *tensor.Tensor // [batch, classes]
}

// Stream produces augmented minibatches from fixed source tensors.
type Stream struct {
	cfg       Config
	images    *tensor.Tensor // [N, 1, H, W]
	labels    *tensor.Tensor // [N, classes]
	batchSize int
	rng       *rand.Rand

	order []int
	pos   int
}

// NewStream creates a minibatch stream over the given images ([N, 1, H,
// W]) and one-hot labels ([N, classes]).
func NewStream(images, labels *tensor.Tensor, batchSize int, cfg Config, seed int64) (*Stream, error) {
	imgShape := images.Shape()
	if len(imgShape) != 4 || imgShape[1] != 1 {
		return nil, fmt.Errorf("augment: images must be [N, 1, H, W], got %v", imgShape)
	}
	labShape := labels.Shape()
	if len(labShape) != 2 || labShape[0] != imgShape[0] {
		return nil, fmt.Errorf("augment: labels %v do not match %d images", labShape, imgShape[0])
	}
	if batchSize <= 0 {
		return nil, fmt.Errorf("augment: batch size must be > 0, got %d", batchSize)
	}
	if imgShape[0] == 0 {
		return nil, fmt.Errorf("augment: empty image set")
	}

	s := &Stream{
		cfg:       cfg,
		images:    images,
		labels:    labels,
		batchSize: batchSize,
		rng:       rand.New(rand.NewSource(seed)),
		order:     make([]int, imgShape[0]),
	}
	for i := range s.order {
		s.order[i] = i
	}
	s.reshuffle()
	return s, nil
}

// StepsPerEpoch returns the number of batches that constitute one epoch:
// ceil(N / batchSize).
func (s *Stream) StepsPerEpoch() int {
	n := s.images.Shape()[0]
	return (n + s.batchSize - 1) / s.batchSize
}

// Next produces the next minibatch. The stream never ends; when the
// shuffled order is exhausted it reshuffles and continues.
func (s *Stream) Next() *Batch {
	imgShape := s.images.Shape()
	n, h, w := imgShape[0], imgShape[2], imgShape[3]
	classes := s.labels.Shape()[1]

	size := s.batchSize
	if size > n {
		size = n
	}

	images := tensor.Zeros(tensor.Shape{size, 1, h, w})
	labels := tensor.Zeros(tensor.Shape{size, classes})

	srcImg := s.images.Data()
	srcLab := s.labels.Data()
	dstImg := images.Data()
	dstLab := labels.Data()

	for i := 0; i < size; i++ {
		if s.pos >= len(s.order) {
			s.reshuffle()
		}
		idx := s.order[s.pos]
		s.pos++

		s.warp(srcImg[idx*h*w:(idx+1)*h*w], dstImg[i*h*w:(i+1)*h*w], h, w)
		copy(dstLab[i*classes:(i+1)*classes], srcLab[idx*classes:(idx+1)*classes])
	}

	return &Batch{Images: images, Labels: labels}
}

func (s *Stream) reshuffle() {
	s.rng.Shuffle(len(s.order), func(i, j int) {
		s.order[i], s.order[j] = s.order[j], s.order[i]
	})
	s.pos = 0
}

// warp samples one set of perturbation parameters and applies the
// resulting affine transform to a single image.
func (s *Stream) warp(src, dst []float64, h, w int) {
	cfg := s.cfg
	if cfg == (Config{}) {
		copy(dst, src)
		return
	}

	angle := uniform(s.rng, cfg.Rotation) * math.Pi / 180.0
	shear := uniform(s.rng, cfg.Shear)
	scale := 1.0 + uniform(s.rng, cfg.Zoom)
	shiftX := uniform(s.rng, cfg.WidthShift) * float64(w)
	shiftY := uniform(s.rng, cfg.HeightShift) * float64(h)

	flipX := cfg.HorizontalFlip && s.rng.Float64() < 0.5
	flipY := cfg.VerticalFlip && s.rng.Float64() < 0.5

	// Forward map: scale, shear, rotate around the image center, then
	// translate. Composed as a single 2x2 matrix plus offset.
	sin, cos := math.Sincos(angle)
	a := scale * (cos - sin*shear)
	b := scale * (cos*shear - sin)
	c := scale * (sin + cos*shear)
	d := scale * (sin*shear + cos)

	// Invert to map output pixels back onto the source grid.
	det := a*d - b*c
	if det == 0 {
		copy(dst, src)
		return
	}
	ia, ib := d/det, -b/det
	ic, id := -c/det, a/det

	cx := float64(w-1) / 2.0
	cy := float64(h-1) / 2.0

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			// Center, un-translate, apply the inverse linear map.
			ox := float64(x) - cx - shiftX
			oy := float64(y) - cy - shiftY
			sx := ia*ox + ib*oy + cx
			sy := ic*ox + id*oy + cy

			if flipX {
				sx = float64(w-1) - sx
			}
			if flipY {
				sy = float64(h-1) - sy
			}

			dst[y*w+x] = bilinear(src, h, w, sx, sy)
		}
	}
}

// uniform draws from [-bound, bound]; zero bound pins the value to zero.
func uniform(rng *rand.Rand, bound float64) float64 {
	if bound == 0 {
		return 0
	}
	return (rng.Float64()*2.0 - 1.0) * bound
}

// bilinear samples the source image at a fractional position, reading
// zero outside the grid.
func bilinear(src []float64, h, w int, x, y float64) float64 {
	x0 := int(math.Floor(x))
	y0 := int(math.Floor(y))
	fx := x - float64(x0)
	fy := y - float64(y0)

	read := func(xi, yi int) float64 {
		if xi < 0 || xi >= w || yi < 0 || yi >= h {
			return 0
		}
		return src[yi*w+xi]
	}

	top := read(x0, y0)*(1-fx) + read(x0+1, y0)*fx
	bottom := read(x0, y0+1)*(1-fx) + read(x0+1, y0+1)*fx
	return top*(1-fy) + bottom*fy
}
