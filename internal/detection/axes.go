package detection

import (
	"errors"
	"fmt"
	"math"

	"github.com/ironsheep/plot-digitizer/internal/geometry"
	"github.com/ironsheep/plot-digitizer/internal/imaging"
)

// ErrAxisNotFound reports that no horizontal or no vertical line qualified as
// an axis.
var ErrAxisNotFound = errors.New("axis not found")

// Axes is the outcome of axis location on one image.
type Axes struct {
	// X is the horizontal axis, or nil when none was found.
	X *AxisLine `json:"x_axis,omitempty"`

	// Y is the vertical axis, or nil when none was found.
	Y *AxisLine `json:"y_axis,omitempty"`

	// Grid holds the axis-aligned lines fainter than the axes.
	Grid []AxisLine `json:"grid_lines"`

	// Frame holds the other lines closing the plot box: the top border and
	// the right border.
	Frame []AxisLine `json:"frame_lines"`

	// XTicks are the tick marks suggested along the x axis, left to right.
	XTicks []TickMark `json:"x_ticks"`

	// YTicks are the tick marks suggested along the y axis, top to bottom.
	YTicks []TickMark `json:"y_ticks"`

	// Candidates is the number of axis-aligned lines considered.
	Candidates int `json:"candidates"`
}

// PlotArea returns the rectangle bounded by the two axes: right of the y
// axis, above the x axis, and within both axes' extents.
func (a *Axes) PlotArea() geometry.Rect {
	return geometry.Rect{
		MinX: a.Y.Position(),
		MinY: a.Y.Start.Y,
		MaxX: a.X.End.X,
		MaxY: a.X.Position(),
	}
}

// Furniture returns the axes followed by the grid and frame lines.
func (a *Axes) Furniture() []AxisLine {
	lines := make([]AxisLine, 0, 2+len(a.Grid)+len(a.Frame))
	if a.X != nil {
		lines = append(lines, *a.X)
	}
	if a.Y != nil {
		lines = append(lines, *a.Y)
	}
	lines = append(lines, a.Grid...)
	return append(lines, a.Frame...)
}

// LocateAxes finds the x and y axes of a chart, its grid lines and tick mark
// suggestions.
//
// # Axis Selection
//
// Among horizontal lines spanning at least AxisSpanFraction of the image
// width, the lowest one (largest Y) is the x axis. Among vertical lines
// spanning at least AxisSpanFraction of the image height, the leftmost is the
// y axis. Lines at the same rounded position are ranked by confidence.
//
// # Grid and Frame Lines
//
// Every other line whose contrast is below GridContrastRatio times the
// contrast of the axis with the same orientation is a grid line. Of the
// remaining lines, a horizontal line within MergeDistance of the top of the
// y axis or a vertical line within MergeDistance of the right end of the x
// axis closes the plot box and is a frame line.
//
// When either axis is missing the returned error wraps ErrAxisNotFound and
// the returned Axes still describes what was found.
func LocateAxes(pre *imaging.Preprocessed, opts Options) (*Axes, error) {
	opts = opts.withDefaults()
	lines := DetectLines(pre, opts)

	axes := &Axes{Candidates: len(lines), Grid: []AxisLine{}, Frame: []AxisLine{}}
	minWidth := opts.AxisSpanFraction * float64(pre.Width)
	minHeight := opts.AxisSpanFraction * float64(pre.Height)

	xIdx, yIdx := -1, -1
	for i, l := range lines {
		switch l.Orientation {
		case Horizontal:
			if l.Length() < minWidth {
				continue
			}
			if xIdx < 0 || better(l, lines[xIdx], true) {
				xIdx = i
			}
		case Vertical:
			if l.Length() < minHeight {
				continue
			}
			if yIdx < 0 || better(l, lines[yIdx], false) {
				yIdx = i
			}
		}
	}

	if xIdx >= 0 {
		x := lines[xIdx]
		axes.X = &x
	}
	if yIdx >= 0 {
		y := lines[yIdx]
		axes.Y = &y
	}

	for i, l := range lines {
		if i == xIdx || i == yIdx {
			continue
		}
		ref := axes.reference(l.Orientation)
		switch {
		case ref > 0 && l.Contrast < opts.GridContrastRatio*ref:
			axes.Grid = append(axes.Grid, l)
		case axes.closesBox(l, opts.MergeDistance):
			axes.Frame = append(axes.Frame, l)
		}
	}

	if axes.X != nil {
		axes.XTicks = SuggestTicks(pre, *axes.X, opts)
	}
	if axes.Y != nil {
		axes.YTicks = SuggestTicks(pre, *axes.Y, opts)
	}

	switch {
	case axes.X == nil && axes.Y == nil:
		return axes, fmt.Errorf("%w: no horizontal or vertical line spans %.0f%% of the image", ErrAxisNotFound, opts.AxisSpanFraction*100)
	case axes.X == nil:
		return axes, fmt.Errorf("%w: no horizontal line spans %.0f px", ErrAxisNotFound, minWidth)
	case axes.Y == nil:
		return axes, fmt.Errorf("%w: no vertical line spans %.0f px", ErrAxisNotFound, minHeight)
	}
	return axes, nil
}

// better reports whether candidate a beats b. Horizontal candidates prefer
// larger positions (lower in the image), vertical ones smaller positions.
func better(a, b AxisLine, preferLarger bool) bool {
	pa, pb := math.Round(a.Position()), math.Round(b.Position())
	if pa != pb {
		if preferLarger {
			return pa > pb
		}
		return pa < pb
	}
	return a.Confidence > b.Confidence
}

// closesBox reports whether l runs along the top or right side of the plot
// area spanned by the axes.
func (a *Axes) closesBox(l AxisLine, tolerance float64) bool {
	if a.X == nil || a.Y == nil {
		return false
	}
	if l.Orientation == Horizontal {
		return math.Abs(l.Position()-a.Y.Start.Y) <= tolerance
	}
	return math.Abs(l.Position()-a.X.End.X) <= tolerance
}

// reference returns the contrast grid lines of orientation o are compared
// against: the matching axis, or the other one when it is missing.
func (a *Axes) reference(o Orientation) float64 {
	switch {
	case o == Horizontal && a.X != nil:
		return a.X.Contrast
	case o == Vertical && a.Y != nil:
		return a.Y.Contrast
	case a.X != nil:
		return a.X.Contrast
	case a.Y != nil:
		return a.Y.Contrast
	}
	return 0
}
