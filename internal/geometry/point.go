// Package geometry holds the pixel-space primitives shared by the
// digitization stages.
//
// Coordinates follow image conventions: (0,0) is the top-left corner, X grows
// rightward and Y grows downward. Values are sub-pixel floats because region
// centroids and refined line offsets rarely land on pixel centers.
package geometry

import (
	"fmt"
	"math"
)

// Point is a position in pixel space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Sub returns p - q.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Dist returns the Euclidean distance between p and q.
func (p Point) Dist(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// Axis selects one coordinate of a Point.
type Axis int

const (
	// AxisX selects the horizontal coordinate.
	AxisX Axis = iota
	// AxisY selects the vertical coordinate.
	AxisY
)

// String returns "x" or "y".
func (a Axis) String() string {
	if a == AxisY {
		return "y"
	}
	return "x"
}

// ParseAxis converts "x" or "y" into an Axis. The empty string is AxisX.
func ParseAxis(s string) (Axis, bool) {
	switch s {
	case "", "x", "X":
		return AxisX, true
	case "y", "Y":
		return AxisY, true
	}
	return AxisX, false
}

// MarshalText encodes the axis as "x" or "y".
func (a Axis) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText decodes an axis name accepted by ParseAxis.
func (a *Axis) UnmarshalText(b []byte) error {
	v, ok := ParseAxis(string(b))
	if !ok {
		return fmt.Errorf("unknown axis %q", b)
	}
	*a = v
	return nil
}

// Coord returns the coordinate of p along a.
func (p Point) Coord(a Axis) float64 {
	if a == AxisY {
		return p.Y
	}
	return p.X
}

// Rect is an axis-aligned pixel rectangle with inclusive float bounds.
type Rect struct {
	MinX, MinY, MaxX, MaxY float64
}

// Contains reports whether p lies inside r, bounds included.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.MinX && p.X <= r.MaxX && p.Y >= r.MinY && p.Y <= r.MaxY
}

// Empty reports whether r has no area.
func (r Rect) Empty() bool {
	return r.MaxX <= r.MinX || r.MaxY <= r.MinY
}
