package detection

import (
	"image/color"
	"testing"
)

func TestSuggestTicks_MergesCloseCandidates(t *testing.T) {
	c := newCanvas(200, 100)
	c.hline(50, 20, 180, 1, black)
	c.vline(60, 44, 56, 1, black)
	c.vline(63, 47, 53, 1, color.NRGBA{90, 90, 90, 255})
	c.vline(120, 44, 56, 2, black)

	pre := c.preprocess(t)
	axis := newAxisLine(Horizontal, 50, 20, 180)
	ticks := SuggestTicks(pre, axis, DefaultOptions())

	if len(ticks) != 2 {
		t.Fatalf("got %d ticks, want 2: %+v", len(ticks), ticks)
	}
	if ticks[0].Position != 60 {
		t.Errorf("first tick: got %.0f, want 60 (higher contrast of the pair)", ticks[0].Position)
	}
	if ticks[1].Position < 119 || ticks[1].Position > 120 {
		t.Errorf("second tick: got %.0f, want 119 or 120", ticks[1].Position)
	}
	if ticks[0].Length != 12 {
		t.Errorf("first tick length: got %.0f, want 12", ticks[0].Length)
	}
	if ticks[0].Pixel.Y != 50 {
		t.Errorf("tick pixel should lie on the axis, got %+v", ticks[0].Pixel)
	}
}

func TestSuggestTicks_VerticalAxis(t *testing.T) {
	c := newCanvas(100, 200)
	c.vline(30, 20, 180, 1, black)
	c.hline(100, 24, 36, 1, black)

	ticks := SuggestTicks(c.preprocess(t), newAxisLine(Vertical, 30, 20, 180), DefaultOptions())
	if len(ticks) != 1 || ticks[0].Position != 100 {
		t.Fatalf("got %+v, want one tick at 100", ticks)
	}
	if ticks[0].Pixel.X != 30 || ticks[0].Pixel.Y != 100 {
		t.Errorf("pixel: got %+v", ticks[0].Pixel)
	}
}

func TestSuggestTicks_NoInk(t *testing.T) {
	c := newCanvas(100, 100)
	if ticks := SuggestTicks(c.preprocess(t), newAxisLine(Horizontal, 50, 10, 90), DefaultOptions()); ticks != nil {
		t.Errorf("got %+v, want nil", ticks)
	}
}
