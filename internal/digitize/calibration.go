package digitize

import (
	"fmt"

	"github.com/ironsheep/plot-digitizer/internal/calibrate"
	"github.com/ironsheep/plot-digitizer/internal/detection"
	"github.com/ironsheep/plot-digitizer/internal/geometry"
)

// AxisCalibration describes how one axis maps pixels to values.
//
// Points pair pixel coordinates along the axis (X for the x axis, Y for the
// y axis) with data values. When Points is empty, Range gives the data values
// at the two ends of the located axis: left and right for x, bottom and top
// for y.
type AxisCalibration struct {
	Scale  calibrate.Scale   `json:"scale" yaml:"scale"`
	Points []calibrate.Point `json:"points,omitempty" yaml:"points,omitempty"`
	Range  *[2]float64       `json:"range,omitempty" yaml:"range,omitempty"`
}

// Calibration holds the calibration input of both axes.
type Calibration struct {
	X AxisCalibration `json:"x" yaml:"x"`
	Y AxisCalibration `json:"y" yaml:"y"`
}

// RangeCalibration calibrates both linear axes from value ranges.
func RangeCalibration(xMin, xMax, yMin, yMax float64) Calibration {
	return Calibration{
		X: AxisCalibration{Range: &[2]float64{xMin, xMax}},
		Y: AxisCalibration{Range: &[2]float64{yMin, yMax}},
	}
}

// fitPoints fits an axis calibrated by explicit points. It returns nil
// without error for range calibrations, which need the located axes.
func (c AxisCalibration) fitPoints(axis geometry.Axis) (*calibrate.Transform, error) {
	if len(c.Points) == 0 {
		if c.Range == nil {
			return nil, fmt.Errorf("%w: %s axis has neither points nor a range", calibrate.ErrInvalidCalibration, axis)
		}
		return nil, nil
	}
	t, err := calibrate.Fit(c.Scale, c.Points)
	if err != nil {
		return nil, fmt.Errorf("%s axis: %w", axis, err)
	}
	return t, nil
}

// fitRange pins the range to the ends of the located axis.
func (c AxisCalibration) fitRange(axis geometry.Axis, axes *detection.Axes) (*calibrate.Transform, error) {
	var lo, hi float64
	if axis == geometry.AxisX {
		lo, hi = axes.X.Start.X, axes.X.End.X
	} else {
		lo, hi = axes.X.Position(), axes.Y.Start.Y
	}
	t, err := calibrate.FromRange(c.Scale, lo, hi, c.Range[0], c.Range[1])
	if err != nil {
		return nil, fmt.Errorf("%s axis range: %w", axis, err)
	}
	return t, nil
}

// checkExtent rejects calibration points farther than tolerance outside the
// located axis.
func (c AxisCalibration) checkExtent(axis geometry.Axis, line *detection.AxisLine, tolerance float64) error {
	lo, hi := line.Extent()
	for _, p := range c.Points {
		if p.Pixel < lo-tolerance || p.Pixel > hi+tolerance {
			return fmt.Errorf("%w: %s axis point at pixel %.1f lies outside the axis [%.1f, %.1f]",
				calibrate.ErrInvalidCalibration, axis, p.Pixel, lo, hi)
		}
	}
	return nil
}

// labelTicks fills in the data value of each tick.
func labelTicks(ticks []detection.TickMark, t *calibrate.Transform) {
	for i := range ticks {
		v := t.Apply(ticks[i].Position)
		ticks[i].Value = &v
	}
}
