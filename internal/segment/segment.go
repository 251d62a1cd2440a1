package segment

import (
	"fmt"
	"image"
	"math"
	"sort"

	"github.com/anthonynsimon/bild/effect"

	"github.com/ironsheep/plot-digitizer/internal/detection"
	"github.com/ironsheep/plot-digitizer/internal/geometry"
)

// Region is one 8-connected blob of a series.
type Region struct {
	// Pixels lists the region's pixel coordinates in row-major order.
	Pixels []geometry.Point `json:"-"`

	// Bounds is the bounding box of Pixels.
	Bounds geometry.Rect `json:"bounds"`
}

// Size returns the number of pixels in the region.
func (r Region) Size() int {
	return len(r.Pixels)
}

// Series is the data ink of one color cluster.
type Series struct {
	// ID is the 1-based rank of the series by pixel count.
	ID int `json:"id"`

	// Label is a display name derived from ID.
	Label string `json:"label"`

	// Color is the cluster leader color, "#rrggbb".
	Color string `json:"color"`

	// PixelCount is the number of pixels in Regions.
	PixelCount int `json:"pixel_count"`

	// Regions are the connected blobs of the series in scan order.
	Regions []Region `json:"-"`
}

// Segment turns a classification into series of connected regions.
//
// # Furniture Suppression
//
// When axes is non-nil, pixels outside the plot area (right of the y axis,
// above the x axis, within both axes' extents) are discarded, as are pixels
// within FurnitureMargin of any axis, grid line, frame line or suggested tick
// stroke. The furniture strokes are rasterized into a mask that is dilated by
// FurnitureMargin.
//
// A grid or frame line is furniture only when the cluster dominating the
// pixels along it is the background, the cluster of either axis, or a color
// whose Lab chroma is at most GridMaxChroma. A long straight line in a
// saturated data color is a trace and is kept.
//
// # Filtering
//
// Clusters with fewer than MinSeriesSize surviving pixels are dropped. The
// surviving pixels of each cluster are split into 8-connected regions and
// regions smaller than MinRegionSize are dropped.
//
// Series are ordered by pixel count, largest first, ties by cluster creation
// order. Touching marks of different colors stay in their own clusters, but
// overlapping marks of the same color come out as one region. An empty
// result is not an error.
func Segment(cls *Classification, axes *detection.Axes, opts Options) []Series {
	opts = opts.withDefaults()
	w, h := cls.Width, cls.Height

	excluded := furnitureMask(cls, axes, opts)
	var area *geometry.Rect
	if axes != nil && axes.X != nil && axes.Y != nil {
		a := axes.PlotArea()
		area = &a
	}

	survivors := make([][]int, len(cls.Clusters))
	for i, label := range cls.Labels {
		if label == Background || excluded[i] {
			continue
		}
		if area != nil && !area.Contains(geometry.Pt(float64(i%w), float64(i/w))) {
			continue
		}
		survivors[label] = append(survivors[label], i)
	}

	type ranked struct {
		cluster int
		series  Series
	}
	var out []ranked
	mask := make([]bool, w*h)
	for id, pixels := range survivors {
		if len(pixels) < opts.MinSeriesSize {
			continue
		}
		for _, i := range pixels {
			mask[i] = true
		}
		components := detection.ConnectedComponents(mask, w, h)
		for _, i := range pixels {
			mask[i] = false
		}

		s := Series{Color: cls.Clusters[id].Hex()}
		for _, comp := range components {
			if len(comp) < opts.MinRegionSize {
				continue
			}
			s.Regions = append(s.Regions, newRegion(comp, w))
			s.PixelCount += len(comp)
		}
		if len(s.Regions) == 0 {
			continue
		}
		out = append(out, ranked{cluster: id, series: s})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].series.PixelCount != out[j].series.PixelCount {
			return out[i].series.PixelCount > out[j].series.PixelCount
		}
		return out[i].cluster < out[j].cluster
	})

	series := make([]Series, len(out))
	for i, r := range out {
		r.series.ID = i + 1
		r.series.Label = fmt.Sprintf("Series %d", i+1)
		series[i] = r.series
	}
	return series
}

func newRegion(indices []int, width int) Region {
	r := Region{
		Pixels: make([]geometry.Point, len(indices)),
		Bounds: geometry.Rect{MinX: math.Inf(1), MinY: math.Inf(1), MaxX: math.Inf(-1), MaxY: math.Inf(-1)},
	}
	for k, i := range indices {
		p := geometry.Pt(float64(i%width), float64(i/width))
		r.Pixels[k] = p
		r.Bounds.MinX = math.Min(r.Bounds.MinX, p.X)
		r.Bounds.MinY = math.Min(r.Bounds.MinY, p.Y)
		r.Bounds.MaxX = math.Max(r.Bounds.MaxX, p.X)
		r.Bounds.MaxY = math.Max(r.Bounds.MaxY, p.Y)
	}
	return r
}

// furnitureMask rasterizes axes, grid and frame lines and tick strokes and
// dilates them by FurnitureMargin. A nil axes excludes nothing.
func furnitureMask(cls *Classification, axes *detection.Axes, opts Options) []bool {
	w, h := cls.Width, cls.Height
	excluded := make([]bool, w*h)
	if axes == nil {
		return excluded
	}

	img := image.NewGray(image.Rect(0, 0, w, h))
	mark := func(x, y int) {
		if x >= 0 && y >= 0 && x < w && y < h {
			img.Pix[y*img.Stride+x] = 255
		}
	}
	stroke := func(o detection.Orientation, pos, lo, hi float64) {
		p := int(math.Round(pos))
		for a := int(math.Floor(lo)); a <= int(math.Ceil(hi)); a++ {
			if o == detection.Vertical {
				mark(p, a)
			} else {
				mark(a, p)
			}
		}
	}

	axisLabels := make(map[int32]bool)
	for _, l := range []*detection.AxisLine{axes.X, axes.Y} {
		if l == nil {
			continue
		}
		lo, hi := l.Extent()
		stroke(l.Orientation, l.Position(), lo, hi)
		axisLabels[cls.lineCluster(*l)] = true
	}
	for _, group := range [][]detection.AxisLine{axes.Grid, axes.Frame} {
		for _, l := range group {
			if !cls.isFurnitureLine(l, axisLabels, opts.GridMaxChroma) {
				continue
			}
			lo, hi := l.Extent()
			stroke(l.Orientation, l.Position(), lo, hi)
		}
	}
	if axes.X != nil {
		y := axes.X.Position()
		for _, t := range axes.XTicks {
			stroke(detection.Vertical, t.Position, y-t.Length-1, y+t.Length+1)
		}
	}
	if axes.Y != nil {
		x := axes.Y.Position()
		for _, t := range axes.YTicks {
			stroke(detection.Horizontal, t.Position, x-t.Length-1, x+t.Length+1)
		}
	}

	dilated := effect.Dilate(img, float64(opts.FurnitureMargin))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if dilated.Pix[y*dilated.Stride+x*4] > 0 {
				excluded[y*w+x] = true
			}
		}
	}
	return excluded
}

// lineCluster returns the most frequent foreground label within two pixels of
// l, ties to the lower label, or Background when l crosses no ink.
func (c *Classification) lineCluster(l detection.AxisLine) int32 {
	votes := make(map[int32]int)
	p := int(math.Round(l.Position()))
	lo, hi := l.Extent()
	for a := int(math.Floor(lo)); a <= int(math.Ceil(hi)); a++ {
		for d := -2; d <= 2; d++ {
			x, y := a, p+d
			if l.Orientation == detection.Vertical {
				x, y = p+d, a
			}
			if x < 0 || y < 0 || x >= c.Width || y >= c.Height {
				continue
			}
			if label := c.Labels[y*c.Width+x]; label != Background {
				votes[label]++
			}
		}
	}
	best, bestN := int32(Background), 0
	for label, n := range votes {
		if n > bestN || (n == bestN && label < best) {
			best, bestN = label, n
		}
	}
	return best
}

// isFurnitureLine reports whether a grid or frame candidate is drawn in a
// furniture color rather than a data color.
func (c *Classification) isFurnitureLine(l detection.AxisLine, axisLabels map[int32]bool, maxChroma float64) bool {
	label := c.lineCluster(l)
	if label == Background || axisLabels[label] {
		return true
	}
	_, a, b := c.Clusters[label].Leader.Lab()
	return math.Hypot(a, b) <= maxChroma
}
