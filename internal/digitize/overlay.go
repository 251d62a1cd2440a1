package digitize

import (
	"strconv"

	"github.com/ironsheep/plot-digitizer/internal/detection"
	"github.com/ironsheep/plot-digitizer/internal/geometry"
	"github.com/ironsheep/plot-digitizer/internal/imaging"
)

// AxesOverlay describes located axes, grid and frame lines and ticks for
// imaging.RenderOverlay. Ticks with a value are labeled with it.
func AxesOverlay(axes *detection.Axes) imaging.Overlay {
	var ov imaging.Overlay
	if axes == nil {
		return ov
	}
	for _, l := range []*detection.AxisLine{axes.X, axes.Y} {
		if l != nil {
			ov.Axes = append(ov.Axes, imaging.OverlayLine{From: l.Start, To: l.End})
		}
	}
	// Furniture lists the axes first.
	for _, l := range axes.Furniture()[len(ov.Axes):] {
		ov.Grid = append(ov.Grid, imaging.OverlayLine{From: l.Start, To: l.End})
	}
	for _, t := range append(append([]detection.TickMark{}, axes.XTicks...), axes.YTicks...) {
		tick := imaging.OverlayTick{At: t.Pixel}
		if t.Value != nil {
			tick.Label = strconv.FormatFloat(*t.Value, 'g', 4, 64)
		}
		ov.Ticks = append(ov.Ticks, tick)
	}
	return ov
}

// Overlay describes the result for imaging.RenderOverlay: the axes overlay
// plus every mapped point at its source pixel in its series color.
func (r *Result) Overlay() imaging.Overlay {
	ov := AxesOverlay(r.Axes)
	for _, s := range r.Series {
		for _, p := range s.Points {
			if p.Pixel == nil {
				continue
			}
			ov.Points = append(ov.Points, imaging.OverlayPoint{At: geometry.Pt(p.Pixel.X, p.Pixel.Y), Color: s.Color})
		}
	}
	return ov
}
