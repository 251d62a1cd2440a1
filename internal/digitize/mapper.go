package digitize

import (
	"fmt"

	"github.com/ironsheep/plot-digitizer/internal/calibrate"
	"github.com/ironsheep/plot-digitizer/internal/geometry"
)

// DataPoint is one calibrated point.
type DataPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`

	// Pixel is the representative pixel the point was mapped from. It is a
	// diagnostic annotation and may be nil.
	Pixel *geometry.Point `json:"pixel,omitempty"`
}

// MapPoint applies the axis transforms to a pixel point. Both transforms must
// be built; a nil transform fails with InvalidCalibration.
func MapPoint(p geometry.Point, x, y *calibrate.Transform) (DataPoint, error) {
	if x == nil || y == nil {
		return DataPoint{}, fail(InvalidCalibration, StageMap,
			fmt.Errorf("%w: transform not built", calibrate.ErrInvalidCalibration))
	}
	return DataPoint{X: x.Apply(p.X), Y: y.Apply(p.Y), Pixel: &p}, nil
}
