package imaging

import (
	"fmt"
	"image/color"
	"sort"
)

// RGBColor represents an RGB color with 8-bit components.
type RGBColor struct {
	R uint8 `json:"r"` // Red component (0-255)
	G uint8 `json:"g"` // Green component (0-255)
	B uint8 `json:"b"` // Blue component (0-255)
}

// Hex formats the color as "#RRGGBB".
func (c RGBColor) Hex() string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

// NRGBA returns the opaque color.
func (c RGBColor) NRGBA() color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: 255}
}

// ColorFrequency represents a quantized color bucket and its share of the image.
type ColorFrequency struct {
	// Hex is the quantized bucket color "#RRGGBB".
	Hex string `json:"hex"`

	// Percentage of pixels falling into this bucket (0-100).
	Percentage float64 `json:"percentage"`

	// Mean is the average of the exact colors inside the bucket.
	Mean RGBColor `json:"mean"`

	// Count is the number of pixels in the bucket.
	Count int `json:"count"`
}

// DominantColors returns the count most frequent color buckets of buf,
// sorted by frequency in descending order.
//
// # Color Quantization
//
// To group similar colors, each RGB component is divided by 16 and rounded
// down, so colors within 16 units of each other (per component) share a
// bucket:
//
//	quantized = (original / 16) * 16
//
// Ties are broken by bucket value so the ordering is deterministic.
func DominantColors(buf *PixelBuffer, count int) []ColorFrequency {
	type bucket struct {
		key        int
		n          int
		sr, sg, sb int
	}
	buckets := make(map[int]*bucket)

	for y := 0; y < buf.Height; y++ {
		for x := 0; x < buf.Width; x++ {
			c := buf.At(x, y)
			key := int(c.R/16)<<8 | int(c.G/16)<<4 | int(c.B/16)
			b, ok := buckets[key]
			if !ok {
				b = &bucket{key: key}
				buckets[key] = b
			}
			b.n++
			b.sr += int(c.R)
			b.sg += int(c.G)
			b.sb += int(c.B)
		}
	}

	list := make([]*bucket, 0, len(buckets))
	for _, b := range buckets {
		list = append(list, b)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].n != list[j].n {
			return list[i].n > list[j].n
		}
		return list[i].key < list[j].key
	})

	if count > 0 && len(list) > count {
		list = list[:count]
	}

	total := float64(buf.Width * buf.Height)
	colors := make([]ColorFrequency, 0, len(list))
	for _, b := range list {
		q := RGBColor{
			R: uint8((b.key >> 8 & 0xF) * 16),
			G: uint8((b.key >> 4 & 0xF) * 16),
			B: uint8((b.key & 0xF) * 16),
		}
		colors = append(colors, ColorFrequency{
			Hex:        q.Hex(),
			Percentage: float64(b.n) / total * 100,
			Mean: RGBColor{
				R: uint8(b.sr / b.n),
				G: uint8(b.sg / b.n),
				B: uint8(b.sb / b.n),
			},
			Count: b.n,
		})
	}
	return colors
}

// EstimateBackground returns the paper color of a chart: the mean color of
// its most frequent quantized bucket.
func EstimateBackground(buf *PixelBuffer) RGBColor {
	top := DominantColors(buf, 1)
	if len(top) == 0 {
		return RGBColor{R: 255, G: 255, B: 255}
	}
	return top[0].Mean
}
