// Package segment separates plotted data ink from the background and chart
// furniture and groups it into color series.
//
// Segmentation runs in two halves so the first can overlap with axis
// location: Classify labels every pixel with a color cluster using only the
// image, and Segment removes furniture and splits the clusters into
// connected regions once the axes are known.
package segment

import (
	"math"
	"sort"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/ironsheep/plot-digitizer/internal/imaging"
)

// Background marks a pixel that belongs to no cluster.
const Background = -1

// Cluster is a group of similar foreground colors.
type Cluster struct {
	// ID is the creation index of the cluster.
	ID int

	// Leader is the color that founded the cluster.
	Leader colorful.Color

	// Count is the number of pixels labeled with the cluster.
	Count int
}

// Hex returns the leader color as "#rrggbb".
func (c Cluster) Hex() string {
	return c.Leader.Hex()
}

// Classification is the per-pixel color clustering of one image.
type Classification struct {
	Width  int
	Height int

	// Background is the estimated paper color.
	Background imaging.RGBColor

	// Labels holds the cluster ID of each pixel in row-major order, or
	// Background.
	Labels []int32

	// Clusters are indexed by ID.
	Clusters []Cluster

	// Foreground is the number of pixels assigned to any cluster.
	Foreground int
}

// Classify separates foreground ink from the background of buf and clusters
// the foreground by color.
//
// # Algorithm
//
//  1. The background is the mean color of the most frequent quantized color
//     bucket (imaging.EstimateBackground).
//  2. A pixel is foreground when the CIE Lab distance between its color and
//     the background exceeds ForegroundThreshold.
//  3. The exact foreground colors are visited by descending pixel count,
//     ties broken by RGB value. Each color joins the nearest existing cluster
//     leader within ColorSimilarityThreshold or founds a new cluster.
//  4. Halo absorption: visiting clusters from the smallest, a cluster merges
//     into the larger cluster it shares the most 4-connected border with,
//     when its leader is within HaloDistance of that cluster's leader or lies
//     on the blend between that leader and the background. Compression
//     ringing and anti-aliased edges thereby join the ink they surround.
//
// The result is deterministic for a given buffer and options.
func Classify(buf *imaging.PixelBuffer, opts Options) *Classification {
	opts = opts.withDefaults()
	w, h := buf.Width, buf.Height

	bg := imaging.EstimateBackground(buf)
	bgLab := colorful.Color{R: float64(bg.R) / 255, G: float64(bg.G) / 255, B: float64(bg.B) / 255}

	counts := make(map[uint32]int)
	keys := make([]uint32, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := buf.At(x, y)
			k := uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
			keys[y*w+x] = k
			counts[k]++
		}
	}

	type entry struct {
		key   uint32
		count int
		color colorful.Color
	}
	var fg []entry
	for k, n := range counts {
		col := keyColor(k)
		if col.DistanceLab(bgLab) > opts.ForegroundThreshold {
			fg = append(fg, entry{key: k, count: n, color: col})
		}
	}
	sort.Slice(fg, func(i, j int) bool {
		if fg[i].count != fg[j].count {
			return fg[i].count > fg[j].count
		}
		return fg[i].key < fg[j].key
	})

	cls := &Classification{Width: w, Height: h, Background: bg, Labels: make([]int32, w*h)}
	assign := make(map[uint32]int32, len(fg))
	for _, e := range fg {
		best, bestDist := -1, math.Inf(1)
		for _, c := range cls.Clusters {
			d := e.color.DistanceLab(c.Leader)
			if d <= opts.ColorSimilarityThreshold && d < bestDist {
				best, bestDist = c.ID, d
			}
		}
		if best < 0 {
			best = len(cls.Clusters)
			cls.Clusters = append(cls.Clusters, Cluster{ID: best, Leader: e.color})
		}
		cls.Clusters[best].Count += e.count
		cls.Foreground += e.count
		assign[e.key] = int32(best)
	}

	for i, k := range keys {
		if id, ok := assign[k]; ok {
			cls.Labels[i] = id
		} else {
			cls.Labels[i] = Background
		}
	}
	cls.absorbHalos(bgLab, opts)
	return cls
}

// absorbHalos merges halo clusters into the ink they border and renumbers
// the surviving clusters in creation order.
func (c *Classification) absorbHalos(bg colorful.Color, opts Options) {
	n := len(c.Clusters)
	if n < 2 {
		return
	}
	w, h := c.Width, c.Height

	contacts := make([]map[int]int, n)
	touch := func(a, b int32) {
		if a == Background || b == Background || a == b {
			return
		}
		if contacts[a] == nil {
			contacts[a] = make(map[int]int)
		}
		if contacts[b] == nil {
			contacts[b] = make(map[int]int)
		}
		contacts[a][int(b)]++
		contacts[b][int(a)]++
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			l := c.Labels[y*w+x]
			if x+1 < w {
				touch(l, c.Labels[y*w+x+1])
			}
			if y+1 < h {
				touch(l, c.Labels[(y+1)*w+x])
			}
		}
	}

	parent := make([]int, n)
	members := make([][]int, n)
	count := make([]int, n)
	order := make([]int, n)
	for i, cl := range c.Clusters {
		parent[i] = i
		members[i] = []int{i}
		count[i] = cl.Count
		order[i] = i
	}
	find := func(i int) int {
		for parent[i] != i {
			i = parent[i]
		}
		return i
	}
	sort.SliceStable(order, func(i, j int) bool {
		if count[order[i]] != count[order[j]] {
			return count[order[i]] < count[order[j]]
		}
		return order[i] > order[j]
	})

	merged := false
	for _, id := range order {
		border := make(map[int]int)
		for _, m := range members[id] {
			for other, k := range contacts[m] {
				if r := find(other); r != id {
					border[r] += k
				}
			}
		}
		best, bestN := -1, 0
		for r, k := range border {
			if k > bestN || (k == bestN && r < best) {
				best, bestN = r, k
			}
		}
		if best < 0 || count[best] <= count[id] {
			continue
		}
		if !isHalo(c.Clusters[id].Leader, c.Clusters[best].Leader, bg, opts) {
			continue
		}
		parent[id] = best
		count[best] += count[id]
		members[best] = append(members[best], members[id]...)
		members[id] = nil
		merged = true
	}
	if !merged {
		return
	}

	remap := make([]int32, n)
	var clusters []Cluster
	for i := range c.Clusters {
		if find(i) != i {
			continue
		}
		remap[i] = int32(len(clusters))
		clusters = append(clusters, Cluster{ID: len(clusters), Leader: c.Clusters[i].Leader, Count: count[i]})
	}
	for i := range c.Clusters {
		remap[i] = remap[find(i)]
	}
	for i, l := range c.Labels {
		if l != Background {
			c.Labels[i] = remap[l]
		}
	}
	c.Clusters = clusters
}

// isHalo reports whether color is close to ink or a blend of ink and the
// background.
func isHalo(color, ink, bg colorful.Color, opts Options) bool {
	if color.DistanceLab(ink) <= opts.HaloDistance {
		return true
	}
	l, a, b := color.Lab()
	li, ai, bi := ink.Lab()
	lb, ab, bb := bg.Lab()
	dl, da, db := li-lb, ai-ab, bi-bb
	den := dl*dl + da*da + db*db
	if den == 0 {
		return false
	}
	t := ((l-lb)*dl + (a-ab)*da + (b-bb)*db) / den
	t = math.Max(0, math.Min(1, t))
	return math.Sqrt(sq(l-lb-t*dl)+sq(a-ab-t*da)+sq(b-bb-t*db)) <= opts.ColorSimilarityThreshold
}

func sq(v float64) float64 {
	return v * v
}

func keyColor(k uint32) colorful.Color {
	return colorful.Color{
		R: float64(k>>16&0xFF) / 255,
		G: float64(k>>8&0xFF) / 255,
		B: float64(k&0xFF) / 255,
	}
}
