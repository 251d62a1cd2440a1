package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"

	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/ironsheep/plot-digitizer/internal/geometry"
)

// OverlayLine is a straight line drawn on the preview.
type OverlayLine struct {
	From geometry.Point
	To   geometry.Point
}

// OverlayTick marks a tick position and its optional value label.
type OverlayTick struct {
	At    geometry.Point
	Label string
}

// OverlayPoint marks one extracted data point in its series color.
type OverlayPoint struct {
	At    geometry.Point
	Color string // "#RRGGBB"; invalid or empty falls back to red
}

// Overlay lists everything drawn over the source image by RenderOverlay.
type Overlay struct {
	// Axes are drawn in green, 2 px wide.
	Axes []OverlayLine

	// Grid holds detected grid lines, drawn in thin orange.
	Grid []OverlayLine

	// Ticks are drawn as small crosses with their labels below.
	Ticks []OverlayTick

	// Points are drawn as 5x5 rings in their series color.
	Points []OverlayPoint

	// GridSpacing draws a pixel reference grid every GridSpacing pixels with
	// coordinate labels. Zero disables it.
	GridSpacing int
}

// OverlayResult contains the rendered preview.
type OverlayResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
	PointCount  int    `json:"point_count"`
}

var (
	axisColor      = color.NRGBA{0, 200, 0, 255}
	gridLineColor  = color.NRGBA{255, 140, 0, 200}
	tickColor      = color.NRGBA{220, 0, 0, 255}
	refGridColor   = color.NRGBA{255, 0, 0, 96}
	labelFgColor   = color.NRGBA{255, 255, 255, 255}
	labelBgColor   = color.NRGBA{0, 0, 0, 180}
	fallbackMarker = color.NRGBA{255, 0, 0, 255}
)

// RenderOverlay draws the located axes, ticks and extracted points over a
// copy of buf and returns the result as a base64 PNG.
func RenderOverlay(buf *PixelBuffer, ov Overlay) (*OverlayResult, error) {
	if err := buf.Validate(); err != nil {
		return nil, err
	}

	dst := imaging.Clone(flatten(buf).Image())
	w, h := buf.Width, buf.Height

	if ov.GridSpacing > 0 {
		for x := ov.GridSpacing; x < w; x += ov.GridSpacing {
			for y := 0; y < h; y++ {
				blend(dst, x, y, refGridColor)
			}
		}
		for y := ov.GridSpacing; y < h; y += ov.GridSpacing {
			for x := 0; x < w; x++ {
				blend(dst, x, y, refGridColor)
			}
		}
		for y := ov.GridSpacing; y < h; y += ov.GridSpacing {
			for x := ov.GridSpacing; x < w; x += ov.GridSpacing {
				drawLabel(dst, x+2, y+2, fmt.Sprintf("%d,%d", x, y))
			}
		}
	}

	for _, l := range ov.Grid {
		drawLine(dst, l.From, l.To, 1, gridLineColor)
	}
	for _, l := range ov.Axes {
		drawLine(dst, l.From, l.To, 2, axisColor)
	}

	for _, t := range ov.Ticks {
		drawLine(dst, geometry.Pt(t.At.X-3, t.At.Y), geometry.Pt(t.At.X+3, t.At.Y), 1, tickColor)
		drawLine(dst, geometry.Pt(t.At.X, t.At.Y-3), geometry.Pt(t.At.X, t.At.Y+3), 1, tickColor)
		if t.Label != "" {
			drawLabel(dst, int(math.Round(t.At.X))+4, int(math.Round(t.At.Y))+4, t.Label)
		}
	}

	for _, p := range ov.Points {
		c := fallbackMarker
		if parsed, err := colorful.Hex(p.Color); err == nil {
			r, g, b := parsed.RGB255()
			c = color.NRGBA{r, g, b, 255}
		}
		cx, cy := int(math.Round(p.At.X)), int(math.Round(p.At.Y))
		for d := -2; d <= 2; d++ {
			blend(dst, cx+d, cy-2, c)
			blend(dst, cx+d, cy+2, c)
			blend(dst, cx-2, cy+d, c)
			blend(dst, cx+2, cy+d, c)
		}
	}

	var out bytes.Buffer
	if err := png.Encode(&out, dst); err != nil {
		return nil, fmt.Errorf("failed to encode overlay: %w", err)
	}

	return &OverlayResult{
		Width:       w,
		Height:      h,
		ImageBase64: base64.StdEncoding.EncodeToString(out.Bytes()),
		MimeType:    "image/png",
		PointCount:  len(ov.Points),
	}, nil
}

// drawLine rasterizes a line by stepping one pixel along its longer extent.
func drawLine(img *image.NRGBA, from, to geometry.Point, width int, c color.NRGBA) {
	dx, dy := to.X-from.X, to.Y-from.Y
	steps := int(math.Ceil(math.Max(math.Abs(dx), math.Abs(dy))))
	if steps == 0 {
		steps = 1
	}
	horizontal := math.Abs(dx) >= math.Abs(dy)
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		x := int(math.Round(from.X + t*dx))
		y := int(math.Round(from.Y + t*dy))
		for k := 0; k < width; k++ {
			if horizontal {
				blend(img, x, y+k, c)
			} else {
				blend(img, x+k, y, c)
			}
		}
	}
}

// blend composites c over the pixel at (x, y), ignoring out-of-range pixels.
func blend(img *image.NRGBA, x, y int, c color.NRGBA) {
	if !(image.Point{x, y}.In(img.Rect)) {
		return
	}
	if c.A == 255 {
		img.SetNRGBA(x, y, c)
		return
	}
	base := img.NRGBAAt(x, y)
	a := float64(c.A) / 255
	mix := func(s, d uint8) uint8 {
		return uint8(math.Round(float64(s)*a + float64(d)*(1-a)))
	}
	img.SetNRGBA(x, y, color.NRGBA{mix(c.R, base.R), mix(c.G, base.G), mix(c.B, base.B), 255})
}

// drawLabel draws white text on a translucent black box with its top-left
// corner at (x, y).
func drawLabel(img *image.NRGBA, x, y int, text string) {
	face := basicfont.Face7x13
	d := &font.Drawer{Dst: img, Src: image.NewUniform(labelFgColor), Face: face}
	width := d.MeasureString(text).Ceil()
	box := image.Rect(x-1, y-1, x+width+1, y+face.Height)
	draw.Draw(img, box.Intersect(img.Rect), image.NewUniform(labelBgColor), image.Point{}, draw.Over)
	d.Dot = fixed.P(x, y+face.Ascent)
	d.DrawString(text)
}
