// Package extract reduces segmented regions to representative pixel points
// in reading order.
//
// Compact regions such as scatter markers contribute their centroid.
// Elongated regions such as line segments are resampled along their dominant
// image axis so a long curve yields one point per step instead of one per
// pixel. Points are sorted along the primary axis and near-duplicates are
// dropped as the sequence is consumed.
package extract

import (
	"cmp"
	"iter"
	"math"
	"slices"
	"sync"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/ironsheep/plot-digitizer/internal/geometry"
	"github.com/ironsheep/plot-digitizer/internal/segment"
)

// minDeviation is the standard deviation of a uniform distribution over one
// pixel. A one pixel wide stroke has this spread across its width.
var minDeviation = math.Sqrt(1.0 / 12)

// Shape summarizes the principal axes of a region.
type Shape struct {
	// Centroid is the mean pixel position.
	Centroid geometry.Point `json:"centroid"`

	// Major is the standard deviation along the principal direction.
	Major float64 `json:"major"`

	// Minor is the standard deviation across it, at least √(1/12).
	Minor float64 `json:"minor"`

	// Direction is the unit vector of the principal direction, pointing right
	// (or down when vertical).
	Direction geometry.Point `json:"direction"`
}

// Elongation returns Major / Minor.
func (s Shape) Elongation() float64 {
	return s.Major / s.Minor
}

// DominantAxis returns the image axis closest to the principal direction.
func (s Shape) DominantAxis() geometry.Axis {
	if math.Abs(s.Direction.Y) > math.Abs(s.Direction.X) {
		return geometry.AxisY
	}
	return geometry.AxisX
}

// Analyze computes the centroid and principal axes of r from the covariance
// of its pixel coordinates. Regions with fewer than two pixels have zero
// spread.
func Analyze(r segment.Region) Shape {
	n := len(r.Pixels)
	s := Shape{Minor: minDeviation, Direction: geometry.Pt(1, 0)}
	if n == 0 {
		return s
	}

	data := mat.NewDense(n, 2, nil)
	for i, p := range r.Pixels {
		data.Set(i, 0, p.X)
		data.Set(i, 1, p.Y)
	}
	s.Centroid = geometry.Pt(
		stat.Mean(mat.Col(nil, 0, data), nil),
		stat.Mean(mat.Col(nil, 1, data), nil),
	)
	if n < 2 {
		s.Major = minDeviation
		return s
	}

	var cov mat.SymDense
	stat.CovarianceMatrix(&cov, data, nil)

	var eig mat.EigenSym
	if !eig.Factorize(&cov, true) {
		s.Major = minDeviation
		return s
	}
	values := eig.Values(nil)
	var vectors mat.Dense
	eig.VectorsTo(&vectors)

	// Eigenvalues are ascending.
	s.Minor = math.Max(math.Sqrt(math.Max(values[0], 0)), minDeviation)
	s.Major = math.Max(math.Sqrt(math.Max(values[1], 0)), minDeviation)

	dx, dy := vectors.At(0, 1), vectors.At(1, 1)
	if dx < 0 || (dx == 0 && dy < 0) {
		dx, dy = -dx, -dy
	}
	s.Direction = geometry.Pt(dx, dy)
	return s
}

// Represent returns the representative points of one region: its centroid
// when compact, or one mean point per ResampleStep bucket along the dominant
// axis when its elongation reaches ElongationRatio.
func Represent(r segment.Region, opts Options) []geometry.Point {
	opts = opts.withDefaults()
	if len(r.Pixels) == 0 {
		return nil
	}

	shape := Analyze(r)
	if shape.Elongation() < opts.ElongationRatio {
		return []geometry.Point{shape.Centroid}
	}
	return resample(r.Pixels, shape.DominantAxis(), opts.ResampleStep)
}

// resample groups pixels into buckets of width step along axis, starting at
// the smallest coordinate, and returns the bucket means in bucket order.
func resample(pixels []geometry.Point, axis geometry.Axis, step float64) []geometry.Point {
	lo := math.Inf(1)
	for _, p := range pixels {
		lo = math.Min(lo, p.Coord(axis))
	}

	type bucket struct {
		sx, sy float64
		n      int
	}
	buckets := make(map[int]*bucket)
	var keys []int
	for _, p := range pixels {
		k := int(math.Floor((p.Coord(axis) - lo) / step))
		b, ok := buckets[k]
		if !ok {
			b = &bucket{}
			buckets[k] = b
			keys = append(keys, k)
		}
		b.sx += p.X
		b.sy += p.Y
		b.n++
	}
	slices.Sort(keys)

	out := make([]geometry.Point, len(keys))
	for i, k := range keys {
		b := buckets[k]
		out[i] = geometry.Pt(b.sx/float64(b.n), b.sy/float64(b.n))
	}
	return out
}

// Points returns the ordered, deduplicated representative points of regions.
//
// The sequence is lazy: representatives are computed and sorted on the first
// pull and reused by later iterations, so ranging over it twice yields the
// same points. Points are ordered by their PrimaryAxis coordinate, ties by
// the other coordinate. A point closer than DedupMinDistance to a point
// already yielded is skipped, so the earlier point in reading order wins.
func Points(regions []segment.Region, opts Options) iter.Seq[geometry.Point] {
	opts = opts.withDefaults()
	ordered := sync.OnceValue(func() []geometry.Point {
		var pts []geometry.Point
		for _, r := range regions {
			pts = append(pts, Represent(r, opts)...)
		}
		sortPoints(pts, opts.PrimaryAxis)
		return pts
	})

	return func(yield func(geometry.Point) bool) {
		primary := opts.PrimaryAxis
		var kept []geometry.Point
		for _, p := range ordered() {
			if near(kept, p, primary, opts.DedupMinDistance) {
				continue
			}
			kept = append(kept, p)
			if !yield(p) {
				return
			}
		}
	}
}

// SeriesPoints is Points over the regions of s.
func SeriesPoints(s segment.Series, opts Options) iter.Seq[geometry.Point] {
	return Points(s.Regions, opts)
}

func sortPoints(pts []geometry.Point, primary geometry.Axis) {
	secondary := geometry.AxisY
	if primary == geometry.AxisY {
		secondary = geometry.AxisX
	}
	slices.SortStableFunc(pts, func(a, b geometry.Point) int {
		if c := cmp.Compare(a.Coord(primary), b.Coord(primary)); c != 0 {
			return c
		}
		return cmp.Compare(a.Coord(secondary), b.Coord(secondary))
	})
}

// near reports whether p lies within dist of a kept point. kept is sorted
// along primary, so the scan stops once the primary gap reaches dist.
func near(kept []geometry.Point, p geometry.Point, primary geometry.Axis, dist float64) bool {
	for i := len(kept) - 1; i >= 0; i-- {
		if p.Coord(primary)-kept[i].Coord(primary) >= dist {
			return false
		}
		if p.Dist(kept[i]) < dist {
			return true
		}
	}
	return false
}
