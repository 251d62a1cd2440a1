package detection

import (
	"math"
	"testing"
)

func TestDetectLines_StrokeCenterline(t *testing.T) {
	tests := []struct {
		name     string
		draw     func(c *canvas)
		orient   Orientation
		position float64
		lo, hi   float64
	}{
		{
			name:     "horizontal 1px",
			draw:     func(c *canvas) { c.hline(100, 20, 180, 1, black) },
			orient:   Horizontal,
			position: 100,
			lo:       20, hi: 180,
		},
		{
			name:     "horizontal 3px",
			draw:     func(c *canvas) { c.hline(60, 30, 170, 3, black) },
			orient:   Horizontal,
			position: 60,
			lo:       30, hi: 170,
		},
		{
			name:     "vertical 1px",
			draw:     func(c *canvas) { c.vline(120, 10, 140, 1, black) },
			orient:   Vertical,
			position: 120,
			lo:       10, hi: 140,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newCanvas(200, 150)
			tt.draw(c)

			lines := DetectLines(c.preprocess(t), DefaultOptions())
			if len(lines) != 1 {
				t.Fatalf("got %d lines, want 1: %+v", len(lines), lines)
			}
			l := lines[0]
			if l.Orientation != tt.orient {
				t.Errorf("orientation: got %s, want %s", l.Orientation, tt.orient)
			}
			if math.Abs(l.Position()-tt.position) > 0.5 {
				t.Errorf("position: got %.2f, want %.0f", l.Position(), tt.position)
			}
			lo, hi := l.Extent()
			if math.Abs(lo-tt.lo) > 4 || math.Abs(hi-tt.hi) > 4 {
				t.Errorf("extent: got [%.1f, %.1f], want about [%.0f, %.0f]", lo, hi, tt.lo, tt.hi)
			}
			if l.Confidence <= 0.5 || l.Confidence > 1 {
				t.Errorf("confidence: got %.2f", l.Confidence)
			}
			if l.Contrast < 0.9 {
				t.Errorf("contrast: got %.2f, want near 1 for a black stroke", l.Contrast)
			}
		})
	}
}

func TestDetectLines_IgnoresShortAndOblique(t *testing.T) {
	c := newCanvas(200, 150)
	c.hline(40, 20, 50, 1, black) // 30 px, shorter than MinLineLength
	for i := 0; i < 100; i++ {
		c.set(50+i, 20+i, black)
	}

	if lines := DetectLines(c.preprocess(t), DefaultOptions()); len(lines) != 0 {
		t.Errorf("got %d lines, want none: %+v", len(lines), lines)
	}
}

func TestDetectLines_EmptyImage(t *testing.T) {
	if lines := DetectLines(newCanvas(80, 60).preprocess(t), Options{}); lines != nil {
		t.Errorf("got %v, want nil", lines)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		theta int
		want  Orientation
	}{
		{0, Vertical},
		{2, Vertical},
		{3, Oblique},
		{45, Oblique},
		{88, Horizontal},
		{90, Horizontal},
		{92, Horizontal},
		{93, Oblique},
		{178, Vertical},
	}
	for _, tt := range tests {
		if got := classify(tt.theta, 2); got != tt.want {
			t.Errorf("classify(%d): got %s, want %s", tt.theta, got, tt.want)
		}
	}
}

func TestMergeParallel(t *testing.T) {
	segs := []AxisLine{
		newAxisLine(Horizontal, 382, 40, 460),
		newAxisLine(Horizontal, 378, 38, 300),
		newAxisLine(Horizontal, 378, 310, 462),
		newAxisLine(Horizontal, 200, 40, 460),
		newAxisLine(Vertical, 40, 20, 380),
	}

	lines := mergeParallel(segs, DefaultOptions())
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3: %+v", len(lines), lines)
	}

	axis := lines[1]
	if axis.Position() != 380 {
		t.Errorf("merged position: got %v, want 380", axis.Position())
	}
	if lo, hi := axis.Extent(); lo != 38 || hi != 462 {
		t.Errorf("merged extent: got [%v, %v], want [38, 462]", lo, hi)
	}
	if lines[2].Orientation != Vertical {
		t.Errorf("vertical lines sort last, got %s", lines[2].Orientation)
	}
}

func TestOrientation_Text(t *testing.T) {
	for _, o := range []Orientation{Horizontal, Vertical, Oblique} {
		b, _ := o.MarshalText()
		var got Orientation
		if err := got.UnmarshalText(b); err != nil || got != o {
			t.Errorf("round trip %s: got %s, err %v", o, got, err)
		}
	}
	var o Orientation
	if err := o.UnmarshalText([]byte("diagonal")); err == nil {
		t.Error("unknown orientation should fail")
	}
}
