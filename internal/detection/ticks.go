package detection

import (
	"math"
	"sort"

	"github.com/ironsheep/plot-digitizer/internal/geometry"
	"github.com/ironsheep/plot-digitizer/internal/imaging"
)

// TickMark is a tick suggested along an axis.
type TickMark struct {
	// Position is the coordinate along the axis: X for the x axis, Y for the
	// y axis.
	Position float64 `json:"position"`

	// Pixel is the tick's location on the axis line.
	Pixel geometry.Point `json:"pixel"`

	// Length is how far the tick stroke protrudes beyond the axis stroke.
	Length float64 `json:"length"`

	// Contrast is the mean ink darkness of the tick stroke (0 to 1).
	Contrast float64 `json:"contrast"`

	// Value is the data value at the tick once the axis is calibrated.
	Value *float64 `json:"value,omitempty"`
}

const (
	inkLevel     = 0.5
	maxTickReach = 20
)

// SuggestTicks measures the ink run perpendicular to axis at every position
// along it and reports the positions where the run exceeds the axis stroke
// thickness by at least TickMinLength.
//
// The stroke thickness is the median run over all positions. Candidates
// closer than TickMinSpacing are merged, keeping the one with higher
// contrast. Runs are followed at most 20 px to each side.
func SuggestTicks(pre *imaging.Preprocessed, axis AxisLine, opts Options) []TickMark {
	opts = opts.withDefaults()
	pos := int(math.Round(axis.Position()))
	lo, hi := axis.Extent()

	var (
		limit   int
		dx, dy  int
		pixelAt func(a int) (int, int)
	)
	if axis.Orientation == Vertical {
		limit = pre.Height - 1
		dx, dy = 1, 0
		pixelAt = func(a int) (int, int) { return pos, a }
	} else {
		limit = pre.Width - 1
		dx, dy = 0, 1
		pixelAt = func(a int) (int, int) { return a, pos }
	}

	ink := func(x, y int) (float64, bool) {
		if x < 0 || y < 0 || x >= pre.Width || y >= pre.Height {
			return 0, false
		}
		g := pre.GrayAt(x, y)
		return 1 - g, g < inkLevel
	}

	type run struct {
		at       int
		length   int
		darkness float64
	}
	var runs []run
	for a := max(0, int(math.Ceil(lo))); a <= min(limit, int(math.Floor(hi))); a++ {
		x, y := pixelAt(a)
		d, ok := ink(x, y)
		if !ok {
			continue
		}
		r := run{at: a, length: 1, darkness: d}
		for _, sign := range []int{-1, 1} {
			for k := 1; k <= maxTickReach; k++ {
				d, ok := ink(x+sign*k*dx, y+sign*k*dy)
				if !ok {
					break
				}
				r.length++
				r.darkness += d
			}
		}
		runs = append(runs, r)
	}
	if len(runs) == 0 {
		return nil
	}

	lengths := make([]int, len(runs))
	for i, r := range runs {
		lengths[i] = r.length
	}
	sort.Ints(lengths)
	thickness := lengths[len(lengths)/2]

	var ticks []TickMark
	for _, r := range runs {
		protrusion := r.length - thickness
		if protrusion < opts.TickMinLength {
			continue
		}
		x, y := pixelAt(r.at)
		t := TickMark{
			Position: float64(r.at),
			Pixel:    geometry.Pt(float64(x), float64(y)),
			Length:   float64(protrusion),
			Contrast: r.darkness / float64(r.length),
		}
		if n := len(ticks); n > 0 && t.Position-ticks[n-1].Position < opts.TickMinSpacing {
			if t.Contrast > ticks[n-1].Contrast {
				ticks[n-1] = t
			}
			continue
		}
		ticks = append(ticks, t)
	}
	return ticks
}
