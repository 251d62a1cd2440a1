package detection

import (
	"image/color"
	"testing"

	"github.com/ironsheep/plot-digitizer/internal/imaging"
)

// canvas is a white RGB test image.
type canvas struct {
	buf *imaging.PixelBuffer
}

func newCanvas(width, height int) *canvas {
	pix := make([]uint8, width*height*3)
	for i := range pix {
		pix[i] = 255
	}
	return &canvas{buf: &imaging.PixelBuffer{Width: width, Height: height, Channels: imaging.RGB, Pix: pix}}
}

func (c *canvas) set(x, y int, col color.NRGBA) {
	if x < 0 || y < 0 || x >= c.buf.Width || y >= c.buf.Height {
		return
	}
	i := (y*c.buf.Width + x) * 3
	c.buf.Pix[i], c.buf.Pix[i+1], c.buf.Pix[i+2] = col.R, col.G, col.B
}

// hline draws a horizontal stroke of the given thickness centered on y.
func (c *canvas) hline(y, x1, x2, thickness int, col color.NRGBA) {
	for t := 0; t < thickness; t++ {
		for x := x1; x <= x2; x++ {
			c.set(x, y-thickness/2+t, col)
		}
	}
}

// vline draws a vertical stroke of the given thickness centered on x.
func (c *canvas) vline(x, y1, y2, thickness int, col color.NRGBA) {
	for t := 0; t < thickness; t++ {
		for y := y1; y <= y2; y++ {
			c.set(x-thickness/2+t, y, col)
		}
	}
}

func (c *canvas) preprocess(t *testing.T) *imaging.Preprocessed {
	t.Helper()
	pre, err := imaging.Preprocess(c.buf, imaging.DefaultPreprocessOptions())
	if err != nil {
		t.Fatalf("Preprocess: %v", err)
	}
	return pre
}

var (
	black = color.NRGBA{0, 0, 0, 255}
	gray  = color.NRGBA{140, 140, 140, 255}
)

// chart draws a 300x240 chart with axes at y=200 (x 30..280) and x=30
// (y 20..200) and interior ticks at x=80,155,230 and y=60,110,160.
func chart() *canvas {
	c := newCanvas(300, 240)
	c.hline(200, 30, 280, 1, black)
	c.vline(30, 20, 200, 1, black)
	for _, x := range []int{80, 155, 230} {
		c.vline(x, 196, 204, 1, black)
	}
	for _, y := range []int{60, 110, 160} {
		c.hline(y, 26, 34, 1, black)
	}
	return c
}
