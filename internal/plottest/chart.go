// Package plottest draws synthetic charts with known geometry for tests.
package plottest

import (
	"image/color"

	"github.com/ironsheep/plot-digitizer/internal/geometry"
	"github.com/ironsheep/plot-digitizer/internal/imaging"
)

// Colors used by the charts.
var (
	White = color.NRGBA{255, 255, 255, 255}
	Black = color.NRGBA{0, 0, 0, 255}
	Blue  = color.NRGBA{31, 119, 180, 255}
	Red   = color.NRGBA{214, 39, 40, 255}
)

// Chart geometry of Scatter: the x axis runs along y=380 from x=40 to x=460
// and the y axis along x=40 from y=20 to y=380.
const (
	Width  = 500
	Height = 400
	Left   = 40
	Right  = 460
	Top    = 20
	Bottom = 380
)

// Canvas is an RGB image under construction.
type Canvas struct {
	Buf *imaging.PixelBuffer
}

// NewCanvas returns a white canvas.
func NewCanvas(width, height int) *Canvas {
	pix := make([]uint8, width*height*3)
	for i := range pix {
		pix[i] = 255
	}
	return &Canvas{Buf: &imaging.PixelBuffer{Width: width, Height: height, Channels: imaging.RGB, Pix: pix}}
}

// Set paints one pixel. Out-of-range coordinates are ignored.
func (c *Canvas) Set(x, y int, col color.NRGBA) {
	if x < 0 || y < 0 || x >= c.Buf.Width || y >= c.Buf.Height {
		return
	}
	i := (y*c.Buf.Width + x) * 3
	c.Buf.Pix[i], c.Buf.Pix[i+1], c.Buf.Pix[i+2] = col.R, col.G, col.B
}

// HLine paints the pixels (x1..x2, y).
func (c *Canvas) HLine(y, x1, x2 int, col color.NRGBA) {
	for x := x1; x <= x2; x++ {
		c.Set(x, y, col)
	}
}

// VLine paints the pixels (x, y1..y2).
func (c *Canvas) VLine(x, y1, y2 int, col color.NRGBA) {
	for y := y1; y <= y2; y++ {
		c.Set(x, y, col)
	}
}

// Disc paints a filled disc.
func (c *Canvas) Disc(cx, cy, radius int, col color.NRGBA) {
	for y := cy - radius; y <= cy+radius; y++ {
		for x := cx - radius; x <= cx+radius; x++ {
			if (x-cx)*(x-cx)+(y-cy)*(y-cy) <= radius*radius {
				c.Set(x, y, col)
			}
		}
	}
}

// Axes draws 1 px black axes with three ticks per axis protruding 6 px
// outside the plot area.
func (c *Canvas) Axes() {
	c.HLine(Bottom, Left, Right, Black)
	c.VLine(Left, Top, Bottom, Black)
	for _, x := range []int{145, 250, 355} {
		c.VLine(x, Bottom+1, Bottom+6, Black)
	}
	for _, y := range []int{110, 200, 290} {
		c.HLine(y, Left-6, Left-1, Black)
	}
}

// Markers are the centers of the five Scatter markers. With x calibrated
// 40→0, 460→10 and y calibrated 380→0, 20→10 they sit at (1,1), (3,4),
// (5,2), (7,6) and (9,3).
var Markers = []geometry.Point{
	{X: 82, Y: 344},
	{X: 166, Y: 236},
	{X: 250, Y: 308},
	{X: 334, Y: 164},
	{X: 418, Y: 272},
}

// Scatter returns a 500x400 scatter plot: axes as drawn by Axes and five
// blue markers of radius 4.
func Scatter() *imaging.PixelBuffer {
	c := NewCanvas(Width, Height)
	c.Axes()
	for _, m := range Markers {
		c.Disc(int(m.X), int(m.Y), 4, Blue)
	}
	return c.Buf
}
