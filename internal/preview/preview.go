// Package preview renders diagnostic artifacts: a PNG grid of sample
// images with their predicted labels, and training-curve plots.
package preview

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/scriven-ml/scriven/tensor"
)

// labelStrip is the pixel height reserved under each cell for its
// label text, sized for basicfont.Face7x13.
const labelStrip = 14

// SaveGrid writes a PNG grid of the images ([N, 1, H, W], values in
// [0, 1]) arranged in the given number of columns, each cell annotated
// with its label.
func SaveGrid(path string, images *tensor.Tensor, labels []int, cols int) error {
	shape := images.Shape()
	if len(shape) != 4 || shape[1] != 1 {
		return fmt.Errorf("preview: images must be [N, 1, H, W], got %v", shape)
	}
	n, h, w := shape[0], shape[2], shape[3]
	if len(labels) != n {
		return fmt.Errorf("preview: %d labels for %d images", len(labels), n)
	}
	if cols <= 0 {
		cols = 10
	}
	if cols > n {
		cols = n
	}
	rows := (n + cols - 1) / cols

	cellH := h + labelStrip
	img := image.NewRGBA(image.Rect(0, 0, cols*w, rows*cellH))

	data := images.Data()
	for i := 0; i < n; i++ {
		ox := (i % cols) * w
		oy := (i / cols) * cellH

		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				v := data[i*h*w+y*w+x]
				if v < 0 {
					v = 0
				} else if v > 1 {
					v = 1
				}
				g := uint8(v * 255)
				img.Set(ox+x, oy+y, color.RGBA{R: g, G: g, B: g, A: 255})
			}
		}

		d := font.Drawer{
			Dst:  img,
			Src:  image.NewUniform(color.RGBA{R: 255, G: 215, B: 0, A: 255}),
			Face: basicfont.Face7x13,
			Dot:  fixed.P(ox+2, oy+h+11),
		}
		d.DrawString(fmt.Sprintf("%d", labels[i]))
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("preview: create %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("preview: encode %s: %w", path, err)
	}
	return f.Close()
}

// SaveCurves plots per-epoch loss and accuracy series to a PNG.
func SaveCurves(path string, losses, accuracies []float64) error {
	if len(losses) == 0 {
		return fmt.Errorf("preview: no epochs to plot")
	}
	if len(accuracies) != len(losses) {
		return fmt.Errorf("preview: %d accuracy points for %d loss points", len(accuracies), len(losses))
	}

	p := plot.New()
	p.Title.Text = "training"
	p.X.Label.Text = "epoch"
	p.Legend.Top = true

	lossLine, err := plotter.NewLine(series(losses))
	if err != nil {
		return fmt.Errorf("preview: loss line: %w", err)
	}
	lossLine.Color = color.RGBA{R: 220, G: 50, B: 50, A: 255}

	accLine, err := plotter.NewLine(series(accuracies))
	if err != nil {
		return fmt.Errorf("preview: accuracy line: %w", err)
	}
	accLine.Color = color.RGBA{R: 50, G: 120, B: 220, A: 255}

	p.Add(lossLine, accLine)
	p.Legend.Add("loss", lossLine)
	p.Legend.Add("accuracy", accLine)

	if err := p.Save(6*vg.Inch, 4*vg.Inch, path); err != nil {
		return fmt.Errorf("preview: save %s: %w", path, err)
	}
	return nil
}

// series maps a per-epoch slice onto XY points with 1-based epochs.
func series(values []float64) plotter.XYs {
	xys := make(plotter.XYs, len(values))
	for i, v := range values {
		xys[i] = plotter.XY{X: float64(i + 1), Y: v}
	}
	return xys
}
