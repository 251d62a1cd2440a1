package imaging

import (
	"encoding/base64"
	"errors"
	"image/color"
	"testing"
)

func TestPreprocess_UniformImageHasNoEdges(t *testing.T) {
	pre, err := Preprocess(solidBuffer(40, 30, color.NRGBA{90, 90, 90, 255}), DefaultPreprocessOptions())
	if err != nil {
		t.Fatalf("Preprocess: %v", err)
	}
	if n := pre.EdgeCount(); n != 0 {
		t.Errorf("uniform image: got %d edge pixels, want 0", n)
	}
	if pre.Width != 40 || pre.Height != 30 || len(pre.Gray) != 1200 {
		t.Errorf("unexpected shape %dx%d len %d", pre.Width, pre.Height, len(pre.Gray))
	}
}

func TestPreprocess_ContrastStretch(t *testing.T) {
	buf := solidBuffer(50, 50, color.NRGBA{200, 200, 200, 255})
	fillRect(buf, 10, 10, 30, 30, color.NRGBA{100, 100, 100, 255})

	pre, err := Preprocess(buf, DefaultPreprocessOptions())
	if err != nil {
		t.Fatalf("Preprocess: %v", err)
	}
	if got := pre.GrayAt(20, 20); got != 0 {
		t.Errorf("dark patch: got %v, want 0 after stretch", got)
	}
	if got := pre.GrayAt(45, 45); got != 1 {
		t.Errorf("light background: got %v, want 1 after stretch", got)
	}
}

func TestPreprocess_EdgesFollowStrokes(t *testing.T) {
	buf := solidBuffer(50, 50, white)
	fillRect(buf, 20, 0, 24, 50, black)

	pre, err := Preprocess(buf, DefaultPreprocessOptions())
	if err != nil {
		t.Fatalf("Preprocess: %v", err)
	}

	found := false
	for x := 16; x <= 27; x++ {
		if pre.EdgeAt(x, 25) {
			found = true
		}
	}
	if !found {
		t.Error("expected an edge next to the vertical bar")
	}
	for _, x := range []int{3, 10, 35, 46} {
		if pre.EdgeAt(x, 25) {
			t.Errorf("unexpected edge at (%d,25)", x)
		}
	}
	if pre.EdgeAt(-1, 0) || pre.EdgeAt(0, 50) {
		t.Error("out-of-range coordinates must not be edges")
	}
}

func TestPreprocess_TransparentIsPaper(t *testing.T) {
	buf := solidBuffer(10, 10, color.NRGBA{0, 0, 0, 0})

	pre, err := Preprocess(buf, DefaultPreprocessOptions())
	if err != nil {
		t.Fatalf("Preprocess: %v", err)
	}
	if got := pre.GrayAt(5, 5); got != 1 {
		t.Errorf("transparent pixel: got luminance %v, want 1", got)
	}
	if pre.Color == buf {
		t.Error("translucent input should be flattened into a new buffer")
	}
}

func TestPreprocess_GrayInput(t *testing.T) {
	pix := make([]uint8, 20*20)
	for i := range pix {
		pix[i] = 255
	}
	for y := 5; y < 15; y++ {
		pix[y*20+10] = 0
	}
	buf, err := NewPixelBuffer(20, 20, Gray, pix)
	if err != nil {
		t.Fatalf("NewPixelBuffer: %v", err)
	}

	pre, err := Preprocess(buf, PreprocessOptions{EdgeThresholdLow: 50, EdgeThresholdHigh: 150})
	if err != nil {
		t.Fatalf("Preprocess: %v", err)
	}
	if pre.GrayAt(10, 10) != 0 || pre.GrayAt(0, 0) != 1 {
		t.Errorf("gray levels: got %v and %v", pre.GrayAt(10, 10), pre.GrayAt(0, 0))
	}
	if pre.EdgeCount() == 0 {
		t.Error("expected edges around the unsmoothed line")
	}
}

func TestPreprocess_Malformed(t *testing.T) {
	buf := &PixelBuffer{Width: 3, Height: 3, Channels: RGB, Pix: make([]uint8, 4)}
	if _, err := Preprocess(buf, DefaultPreprocessOptions()); !errors.Is(err, ErrMalformedInput) {
		t.Errorf("got %v, want ErrMalformedInput", err)
	}
}

func TestEdgeDetect(t *testing.T) {
	buf := solidBuffer(40, 40, white)
	fillRect(buf, 10, 10, 30, 30, black)

	result, err := EdgeDetect(buf, DefaultPreprocessOptions())
	if err != nil {
		t.Fatalf("EdgeDetect: %v", err)
	}
	if result.Width != 40 || result.Height != 40 {
		t.Errorf("dimensions: got %dx%d", result.Width, result.Height)
	}
	if result.EdgePixels == 0 {
		t.Error("expected edge pixels around the square")
	}
	if result.MimeType != "image/png" {
		t.Errorf("MimeType: got %s", result.MimeType)
	}
	if _, err := base64.StdEncoding.DecodeString(result.ImageBase64); err != nil {
		t.Errorf("failed to decode base64: %v", err)
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		val, lo, hi, want int
	}{
		{5, 0, 10, 5},
		{-3, 0, 10, 0},
		{11, 0, 10, 10},
	}
	for _, tt := range tests {
		if got := clamp(tt.val, tt.lo, tt.hi); got != tt.want {
			t.Errorf("clamp(%d,%d,%d): got %d, want %d", tt.val, tt.lo, tt.hi, got, tt.want)
		}
	}
}
