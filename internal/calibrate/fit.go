package calibrate

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// Fit builds a Transform from calibration points.
//
// Exactly two points give the exact two-point interpolation in fit space:
//
//	fit(v) = fit(v0) + (pixel - p0) * (fit(v1) - fit(v0)) / (p1 - p0)
//
// More points are fitted by ordinary least squares in fit space, and the
// residual statistics are reported on the Transform.
//
// All failures wrap ErrInvalidCalibration:
//   - fewer than two points, or fewer than two distinct values
//   - two points sharing a pixel coordinate
//   - non-finite pixels or values
//   - non-positive values on a logarithmic axis
//   - a fitted slope of zero
func Fit(scale Scale, points []Point) (*Transform, error) {
	if err := validate(scale, points); err != nil {
		return nil, err
	}

	if len(points) == 2 {
		p0, p1 := points[0], points[1]
		f0, f1 := scale.toFit(p0.Value), scale.toFit(p1.Value)
		return &Transform{
			Scale:       scale,
			AnchorPixel: p0.Pixel,
			AnchorFit:   f0,
			Slope:       (f1 - f0) / (p1.Pixel - p0.Pixel),
			RSquared:    1,
			Points:      2,
		}, nil
	}

	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	for i, p := range points {
		xs[i] = p.Pixel
		ys[i] = scale.toFit(p.Value)
	}

	alpha, beta := stat.LinearRegression(xs, ys, nil, false)
	if !finite(beta) || math.Abs(beta)*spread(xs) <= flatSlope*math.Max(1, spread(ys)) {
		return nil, fmt.Errorf("%w: calibration points do not change along the axis", ErrInvalidCalibration)
	}

	var ss float64
	for i := range xs {
		r := ys[i] - (alpha + beta*xs[i])
		ss += r * r
	}

	return &Transform{
		Scale:       scale,
		AnchorPixel: 0,
		AnchorFit:   alpha,
		Slope:       beta,
		RMSResidual: math.Sqrt(ss / float64(len(xs))),
		RSquared:    stat.RSquared(xs, ys, nil, alpha, beta),
		Points:      len(points),
	}, nil
}

// FromRange calibrates an axis whose data range [valueMin, valueMax] spans
// the pixel range [pixelMin, pixelMax]. On a y axis pixelMin is the bottom
// of the axis, so pixelMin > pixelMax is expected there.
func FromRange(scale Scale, pixelMin, pixelMax, valueMin, valueMax float64) (*Transform, error) {
	return Fit(scale, []Point{
		{Pixel: pixelMin, Value: valueMin},
		{Pixel: pixelMax, Value: valueMax},
	})
}

func validate(scale Scale, points []Point) error {
	if len(points) < 2 {
		return fmt.Errorf("%w: need at least 2 points, got %d", ErrInvalidCalibration, len(points))
	}

	pixels := make(map[float64]struct{}, len(points))
	values := make(map[float64]struct{}, len(points))
	for i, p := range points {
		if !finite(p.Pixel) || !finite(p.Value) {
			return fmt.Errorf("%w: point %d (%v, %v) is not finite", ErrInvalidCalibration, i, p.Pixel, p.Value)
		}
		if scale == Logarithmic && p.Value <= 0 {
			return fmt.Errorf("%w: point %d value %v is not positive on a logarithmic axis", ErrInvalidCalibration, i, p.Value)
		}
		if _, dup := pixels[p.Pixel]; dup {
			return fmt.Errorf("%w: pixel %v used by more than one point", ErrInvalidCalibration, p.Pixel)
		}
		pixels[p.Pixel] = struct{}{}
		values[p.Value] = struct{}{}
	}
	if len(values) < 2 {
		return fmt.Errorf("%w: need at least 2 distinct values", ErrInvalidCalibration)
	}
	return nil
}

// flatSlope is the relative change across the calibrated pixel span below
// which a fitted slope counts as zero.
const flatSlope = 1e-12

// spread returns max(v) - min(v).
func spread(v []float64) float64 {
	lo, hi := v[0], v[0]
	for _, x := range v[1:] {
		lo = math.Min(lo, x)
		hi = math.Max(hi, x)
	}
	return hi - lo
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
