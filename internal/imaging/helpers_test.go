package imaging

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

// solidBuffer creates an opaque RGBA buffer filled with one color.
func solidBuffer(width, height int, c color.NRGBA) *PixelBuffer {
	pix := make([]uint8, width*height*4)
	for i := 0; i < len(pix); i += 4 {
		pix[i], pix[i+1], pix[i+2], pix[i+3] = c.R, c.G, c.B, c.A
	}
	return &PixelBuffer{Width: width, Height: height, Channels: RGBA, Pix: pix}
}

// setPixel writes c at (x, y) in an RGBA buffer.
func setPixel(buf *PixelBuffer, x, y int, c color.NRGBA) {
	i := (y*buf.Width + x) * 4
	buf.Pix[i], buf.Pix[i+1], buf.Pix[i+2], buf.Pix[i+3] = c.R, c.G, c.B, c.A
}

// fillRect paints [x1,x2)x[y1,y2) with c.
func fillRect(buf *PixelBuffer, x1, y1, x2, y2 int, c color.NRGBA) {
	for y := y1; y < y2; y++ {
		for x := x1; x < x2; x++ {
			setPixel(buf, x, y, c)
		}
	}
}

// writePNG encodes img into a temp directory and returns its path.
func writePNG(t *testing.T, name string, img image.Image) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}
	return path
}

var (
	white = color.NRGBA{255, 255, 255, 255}
	black = color.NRGBA{0, 0, 0, 255}
	red   = color.NRGBA{255, 0, 0, 255}
	blue  = color.NRGBA{0, 0, 255, 255}
)
