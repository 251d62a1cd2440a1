package imaging

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/png"
	"testing"

	"github.com/ironsheep/plot-digitizer/internal/geometry"
)

func decodeOverlay(t *testing.T, result *OverlayResult) image.Image {
	t.Helper()
	data, err := base64.StdEncoding.DecodeString(result.ImageBase64)
	if err != nil {
		t.Fatalf("failed to decode base64: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("failed to decode png: %v", err)
	}
	return img
}

func rgb8(img image.Image, x, y int) [3]uint32 {
	r, g, b, _ := img.At(x, y).RGBA()
	return [3]uint32{r >> 8, g >> 8, b >> 8}
}

func TestRenderOverlay(t *testing.T) {
	buf := solidBuffer(100, 80, white)

	ov := Overlay{
		Axes: []OverlayLine{
			{From: geometry.Pt(10, 70), To: geometry.Pt(90, 70)},
			{From: geometry.Pt(10, 10), To: geometry.Pt(10, 70)},
		},
		Points: []OverlayPoint{
			{At: geometry.Pt(50, 40), Color: "#0000ff"},
			{At: geometry.Pt(70, 30), Color: "not-a-color"},
		},
	}

	result, err := RenderOverlay(buf, ov)
	if err != nil {
		t.Fatalf("RenderOverlay: %v", err)
	}
	if result.Width != 100 || result.Height != 80 || result.PointCount != 2 {
		t.Errorf("result: got %dx%d with %d points", result.Width, result.Height, result.PointCount)
	}

	img := decodeOverlay(t, result)
	tests := []struct {
		name string
		x, y int
		want [3]uint32
	}{
		{"x axis", 50, 70, [3]uint32{0, 200, 0}},
		{"y axis", 10, 40, [3]uint32{0, 200, 0}},
		{"marker ring", 52, 40, [3]uint32{0, 0, 255}},
		{"marker center untouched", 50, 40, [3]uint32{255, 255, 255}},
		{"fallback marker", 68, 30, [3]uint32{255, 0, 0}},
		{"background", 90, 10, [3]uint32{255, 255, 255}},
	}
	for _, tt := range tests {
		if got := rgb8(img, tt.x, tt.y); got != tt.want {
			t.Errorf("%s at (%d,%d): got %v, want %v", tt.name, tt.x, tt.y, got, tt.want)
		}
	}
}

func TestRenderOverlay_TickLabels(t *testing.T) {
	buf := solidBuffer(120, 60, white)

	result, err := RenderOverlay(buf, Overlay{
		Ticks: []OverlayTick{{At: geometry.Pt(20, 20), Label: "10"}},
	})
	if err != nil {
		t.Fatalf("RenderOverlay: %v", err)
	}

	img := decodeOverlay(t, result)
	if got := rgb8(img, 20, 20); got != [3]uint32{220, 0, 0} {
		t.Errorf("tick cross: got %v", got)
	}

	dark := 0
	for y := 24; y < 24+13; y++ {
		for x := 24; x < 24+14; x++ {
			if c := rgb8(img, x, y); c[0] < 128 {
				dark++
			}
		}
	}
	if dark == 0 {
		t.Error("expected a label box below the tick")
	}
}

func TestRenderOverlay_ReferenceGrid(t *testing.T) {
	buf := solidBuffer(60, 60, black)

	result, err := RenderOverlay(buf, Overlay{GridSpacing: 20})
	if err != nil {
		t.Fatalf("RenderOverlay: %v", err)
	}
	img := decodeOverlay(t, result)
	if got := rgb8(img, 20, 5); got[0] == 0 {
		t.Errorf("grid line at x=20 should be tinted red, got %v", got)
	}
	if got := rgb8(img, 5, 5); got != [3]uint32{0, 0, 0} {
		t.Errorf("off-grid pixel: got %v, want black", got)
	}
}

func TestRenderOverlay_Malformed(t *testing.T) {
	if _, err := RenderOverlay(&PixelBuffer{Width: 1, Height: 1, Channels: RGBA}, Overlay{}); err == nil {
		t.Error("RenderOverlay should reject malformed buffers")
	}
}
