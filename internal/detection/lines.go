package detection

import (
	"fmt"
	"math"
	"sort"

	"github.com/ironsheep/plot-digitizer/internal/geometry"
	"github.com/ironsheep/plot-digitizer/internal/imaging"
)

// Orientation classifies a detected line.
type Orientation int

const (
	// Oblique lines are neither horizontal nor vertical within tolerance.
	Oblique Orientation = iota
	// Horizontal lines run along X.
	Horizontal
	// Vertical lines run along Y.
	Vertical
)

// String returns "horizontal", "vertical" or "oblique".
func (o Orientation) String() string {
	switch o {
	case Horizontal:
		return "horizontal"
	case Vertical:
		return "vertical"
	default:
		return "oblique"
	}
}

// MarshalText encodes the orientation by name.
func (o Orientation) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// UnmarshalText decodes an orientation name.
func (o *Orientation) UnmarshalText(b []byte) error {
	switch string(b) {
	case "horizontal":
		*o = Horizontal
	case "vertical":
		*o = Vertical
	case "oblique":
		*o = Oblique
	default:
		return fmt.Errorf("unknown orientation %q", b)
	}
	return nil
}

// AxisLine is an axis-aligned line segment found in the edge mask.
//
// For horizontal lines Start is the left end and End the right end; for
// vertical lines Start is the top end and End the bottom end. Both ends share
// the line's position, so Start.Y == End.Y for horizontal lines.
type AxisLine struct {
	// Start is the left (horizontal) or top (vertical) endpoint.
	Start geometry.Point `json:"start"`

	// End is the right (horizontal) or bottom (vertical) endpoint.
	End geometry.Point `json:"end"`

	// Orientation is Horizontal or Vertical.
	Orientation Orientation `json:"orientation"`

	// Confidence is the fraction of the segment covered by edge pixels (0.0 to 1.0).
	Confidence float64 `json:"confidence"`

	// Votes is the number of edge pixels supporting the segment.
	Votes int `json:"votes"`

	// Contrast is the mean ink darkness along the line (0 = paper, 1 = black).
	Contrast float64 `json:"contrast"`
}

// Position returns the Y coordinate of a horizontal line or the X coordinate
// of a vertical line.
func (l AxisLine) Position() float64 {
	if l.Orientation == Vertical {
		return l.Start.X
	}
	return l.Start.Y
}

// Extent returns the span of the line along its own direction.
func (l AxisLine) Extent() (lo, hi float64) {
	if l.Orientation == Vertical {
		return l.Start.Y, l.End.Y
	}
	return l.Start.X, l.End.X
}

// Length returns the length of the segment in pixels.
func (l AxisLine) Length() float64 {
	return l.Start.Dist(l.End)
}

// newAxisLine builds a line from its position and extent.
func newAxisLine(o Orientation, pos, lo, hi float64) AxisLine {
	if o == Vertical {
		return AxisLine{Start: geometry.Pt(pos, lo), End: geometry.Pt(pos, hi), Orientation: o}
	}
	return AxisLine{Start: geometry.Pt(lo, pos), End: geometry.Pt(hi, pos), Orientation: o}
}

const (
	numAngles    = 180
	maxPeaks     = 64
	peakRadius   = 2
	lineDistance = 1.5
)

var houghCos, houghSin [numAngles]float64

func init() {
	for theta := 0; theta < numAngles; theta++ {
		angle := float64(theta) * math.Pi / 180.0
		houghCos[theta] = math.Cos(angle)
		houghSin[theta] = math.Sin(angle)
	}
}

type houghPeak struct {
	rho   int
	theta int
	votes int
}

type edgePoint struct {
	x, y int
}

// DetectLines finds horizontal and vertical line segments in the edge mask
// of pre using a Hough transform.
//
// # Algorithm
//
//  1. Every edge pixel votes for 180 one-degree normal angles and the rounded
//     offset rho = x*cos(theta) + y*sin(theta).
//  2. Accumulator cells with at least MinLineLength/2 votes that are maximal
//     within +/-2 cells become peaks; the 64 strongest are kept.
//  3. For each peak, edge pixels within 1.5 px of the line are ordered along
//     it and split wherever consecutive pixels are more than MaxLineGap apart.
//     Runs at least MinLineLength long become segments.
//  4. Segments within AngleTolerance degrees of horizontal or vertical are
//     kept; oblique ones are discarded. The position of a kept segment is
//     the mean coordinate of its pixels across the line.
//  5. Parallel segments closer than MergeDistance with overlapping extents
//     are merged into one line at the midpoint, which collapses the two edges
//     of an ink stroke onto its centerline.
//
// The returned lines are sorted by orientation, then position, then start.
func DetectLines(pre *imaging.Preprocessed, opts Options) []AxisLine {
	opts = opts.withDefaults()
	w, h := pre.Width, pre.Height

	points := make([]edgePoint, 0, 1024)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if pre.Edges[y*w+x] {
				points = append(points, edgePoint{x, y})
			}
		}
	}
	if len(points) == 0 {
		return nil
	}

	peaks := houghPeaks(points, w, h, opts.MinLineLength)

	var segments []AxisLine
	for _, p := range peaks {
		segments = append(segments, peakSegments(points, p, opts)...)
	}

	lines := mergeParallel(segments, opts)
	for i := range lines {
		lines[i].Contrast = lineContrast(pre, lines[i])
	}
	return lines
}

func houghPeaks(points []edgePoint, w, h, minLength int) []houghPeak {
	maxDist := int(math.Ceil(math.Hypot(float64(w), float64(h))))
	numRho := 2*maxDist + 1
	acc := make([]int32, numRho*numAngles)

	for _, p := range points {
		for theta := 0; theta < numAngles; theta++ {
			rho := float64(p.x)*houghCos[theta] + float64(p.y)*houghSin[theta]
			r := int(math.Round(rho)) + maxDist
			acc[r*numAngles+theta]++
		}
	}

	threshold := int32(minLength / 2)
	if threshold < 1 {
		threshold = 1
	}

	var peaks []houghPeak
	for r := 0; r < numRho; r++ {
		for theta := 0; theta < numAngles; theta++ {
			v := acc[r*numAngles+theta]
			if v < threshold {
				continue
			}
			isMax := true
			for dr := -peakRadius; dr <= peakRadius && isMax; dr++ {
				for dt := -peakRadius; dt <= peakRadius && isMax; dt++ {
					if dr == 0 && dt == 0 {
						continue
					}
					nr, nt := r+dr, theta+dt
					if nr < 0 || nr >= numRho || nt < 0 || nt >= numAngles {
						continue
					}
					if acc[nr*numAngles+nt] > v {
						isMax = false
					}
				}
			}
			if isMax {
				peaks = append(peaks, houghPeak{rho: r - maxDist, theta: theta, votes: int(v)})
			}
		}
	}

	sort.Slice(peaks, func(i, j int) bool {
		if peaks[i].votes != peaks[j].votes {
			return peaks[i].votes > peaks[j].votes
		}
		if peaks[i].theta != peaks[j].theta {
			return peaks[i].theta < peaks[j].theta
		}
		return peaks[i].rho < peaks[j].rho
	})
	if len(peaks) > maxPeaks {
		peaks = peaks[:maxPeaks]
	}
	return peaks
}

// classify maps a Hough normal angle to a line orientation.
func classify(theta int, tolerance float64) Orientation {
	t := float64(theta)
	switch {
	case math.Abs(t-90) <= tolerance:
		return Horizontal
	case t <= tolerance || t >= 180-tolerance:
		return Vertical
	default:
		return Oblique
	}
}

// peakSegments splits the edge pixels near one Hough line into segments.
func peakSegments(points []edgePoint, p houghPeak, opts Options) []AxisLine {
	orient := classify(p.theta, opts.AngleTolerance)
	if orient == Oblique {
		return nil
	}

	cosT, sinT := houghCos[p.theta], houghSin[p.theta]
	type member struct {
		t    float64
		x, y int
	}
	var members []member
	for _, e := range points {
		d := float64(e.x)*cosT + float64(e.y)*sinT - float64(p.rho)
		if math.Abs(d) <= lineDistance {
			members = append(members, member{t: -float64(e.x)*sinT + float64(e.y)*cosT, x: e.x, y: e.y})
		}
	}
	if len(members) == 0 {
		return nil
	}
	sort.Slice(members, func(i, j int) bool {
		if members[i].t != members[j].t {
			return members[i].t < members[j].t
		}
		if members[i].y != members[j].y {
			return members[i].y < members[j].y
		}
		return members[i].x < members[j].x
	})

	var segments []AxisLine
	emit := func(run []member) {
		span := run[len(run)-1].t - run[0].t
		if span < float64(opts.MinLineLength) {
			return
		}
		var sumPos float64
		lo, hi := math.Inf(1), math.Inf(-1)
		covered := make(map[int]struct{}, len(run))
		for _, m := range run {
			pos, along := float64(m.y), float64(m.x)
			if orient == Vertical {
				pos, along = float64(m.x), float64(m.y)
			}
			sumPos += pos
			lo = math.Min(lo, along)
			hi = math.Max(hi, along)
			covered[int(math.Round(m.t))] = struct{}{}
		}
		l := newAxisLine(orient, sumPos/float64(len(run)), lo, hi)
		l.Votes = len(run)
		l.Confidence = math.Min(1, float64(len(covered))/(math.Floor(span)+1))
		segments = append(segments, l)
	}

	start := 0
	for i := 1; i < len(members); i++ {
		if members[i].t-members[i-1].t > float64(opts.MaxLineGap) {
			emit(members[start:i])
			start = i
		}
	}
	emit(members[start:])
	return segments
}

// mergeParallel collapses near-duplicate parallel segments.
//
// Two groups of the same orientation merge while their combined positions
// stay within MergeDistance across and their extents overlap or are at most
// MaxLineGap apart. Merging repeats until no pair qualifies. A group becomes
// one line at the midpoint of its extreme positions, spanning the union of
// its extents.
func mergeParallel(segments []AxisLine, opts Options) []AxisLine {
	sortLines(segments)

	type group struct {
		orient     Orientation
		minPos     float64
		maxPos     float64
		lo, hi     float64
		votes      int
		confidence float64
	}
	groups := make([]*group, 0, len(segments))
	for _, s := range segments {
		lo, hi := s.Extent()
		groups = append(groups, &group{
			orient: s.Orientation, minPos: s.Position(), maxPos: s.Position(),
			lo: lo, hi: hi, votes: s.Votes, confidence: s.Confidence,
		})
	}

	gap := float64(opts.MaxLineGap)
	compatible := func(a, b *group) bool {
		if a.orient != b.orient {
			return false
		}
		if math.Max(a.maxPos, b.maxPos)-math.Min(a.minPos, b.minPos) > opts.MergeDistance {
			return false
		}
		return a.lo <= b.hi+gap && b.lo <= a.hi+gap
	}

	for merged := true; merged; {
		merged = false
		for i := 0; i < len(groups); i++ {
			for j := i + 1; j < len(groups); j++ {
				a, b := groups[i], groups[j]
				if !compatible(a, b) {
					continue
				}
				a.minPos = math.Min(a.minPos, b.minPos)
				a.maxPos = math.Max(a.maxPos, b.maxPos)
				a.lo = math.Min(a.lo, b.lo)
				a.hi = math.Max(a.hi, b.hi)
				a.votes = max(a.votes, b.votes)
				a.confidence = math.Max(a.confidence, b.confidence)
				groups = append(groups[:j], groups[j+1:]...)
				j--
				merged = true
			}
		}
	}

	lines := make([]AxisLine, 0, len(groups))
	for _, g := range groups {
		l := newAxisLine(g.orient, (g.minPos+g.maxPos)/2, g.lo, g.hi)
		l.Votes = g.votes
		l.Confidence = g.confidence
		lines = append(lines, l)
	}
	sortLines(lines)
	return lines
}

// sortLines orders lines by orientation, position and start.
func sortLines(lines []AxisLine) {
	sort.SliceStable(lines, func(i, j int) bool {
		a, b := lines[i], lines[j]
		if a.Orientation != b.Orientation {
			return a.Orientation < b.Orientation
		}
		if a.Position() != b.Position() {
			return a.Position() < b.Position()
		}
		alo, _ := a.Extent()
		blo, _ := b.Extent()
		return alo < blo
	})
}

// lineContrast samples the normalized luminance along the rounded line
// position and returns the mean darkness.
func lineContrast(pre *imaging.Preprocessed, l AxisLine) float64 {
	lo, hi := l.Extent()
	pos := int(math.Round(l.Position()))
	from := max(0, int(math.Ceil(lo)))
	var sum float64
	n := 0
	for a := from; a <= int(math.Floor(hi)); a++ {
		x, y := a, pos
		if l.Orientation == Vertical {
			x, y = pos, a
		}
		if x < 0 || y < 0 || x >= pre.Width || y >= pre.Height {
			continue
		}
		sum += 1 - pre.GrayAt(x, y)
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
