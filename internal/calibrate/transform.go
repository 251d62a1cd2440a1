// Package calibrate builds the per-axis transforms that map pixel positions
// to data values.
//
// A Transform is affine in its fit space: the data value itself on a linear
// axis, its base-10 logarithm on a logarithmic axis. Axes are calibrated
// independently from reference points pairing a pixel coordinate with the
// data value printed at it.
package calibrate

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidCalibration reports calibration points that cannot define a
// monotonic transform.
var ErrInvalidCalibration = errors.New("invalid calibration")

// Scale is the value scale of an axis.
type Scale int

const (
	// Linear axes space values evenly.
	Linear Scale = iota
	// Logarithmic axes space decades evenly.
	Logarithmic
)

// String returns "linear" or "logarithmic".
func (s Scale) String() string {
	if s == Logarithmic {
		return "logarithmic"
	}
	return "linear"
}

// ParseScale accepts "linear", "logarithmic" and the short form "log". The
// empty string is Linear.
func ParseScale(s string) (Scale, error) {
	switch s {
	case "", "linear", "lin":
		return Linear, nil
	case "logarithmic", "log", "log10":
		return Logarithmic, nil
	}
	return Linear, fmt.Errorf("unknown scale %q", s)
}

// MarshalText encodes the scale by name.
func (s Scale) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a scale name accepted by ParseScale.
func (s *Scale) UnmarshalText(b []byte) error {
	v, err := ParseScale(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// toFit maps a data value into fit space.
func (s Scale) toFit(v float64) float64 {
	if s == Logarithmic {
		return math.Log10(v)
	}
	return v
}

// fromFit maps a fit-space value back to data space.
func (s Scale) fromFit(f float64) float64 {
	if s == Logarithmic {
		return math.Pow(10, f)
	}
	return f
}

// Point pairs a pixel coordinate along one axis with its data value.
type Point struct {
	Pixel float64 `json:"pixel" yaml:"pixel"`
	Value float64 `json:"value" yaml:"value"`
}

// Transform maps pixel coordinates on one axis to data values.
//
// In fit space the mapping is fit = AnchorFit + (pixel - AnchorPixel) * Slope.
// Slope is never zero, so every Transform is strictly monotonic.
type Transform struct {
	// Scale selects the fit space.
	Scale Scale `json:"scale"`

	// AnchorPixel is the pixel coordinate of the anchor.
	AnchorPixel float64 `json:"anchor_pixel"`

	// AnchorFit is the fit-space value at AnchorPixel.
	AnchorFit float64 `json:"anchor_fit"`

	// Slope is the change in fit-space value per pixel.
	Slope float64 `json:"slope"`

	// RMSResidual is the root mean square fit-space residual of the
	// calibration points. Zero for two-point calibrations.
	RMSResidual float64 `json:"rms_residual"`

	// RSquared is the coefficient of determination of the fit.
	RSquared float64 `json:"r_squared"`

	// Points is the number of calibration points used.
	Points int `json:"points"`
}

// Apply maps a pixel coordinate to its data value.
func (t *Transform) Apply(pixel float64) float64 {
	return t.Scale.fromFit(t.AnchorFit + (pixel-t.AnchorPixel)*t.Slope)
}

// Invert maps a data value back to its pixel coordinate.
//
// Non-positive values on a logarithmic axis have no pixel position and fail
// with ErrInvalidCalibration.
func (t *Transform) Invert(value float64) (float64, error) {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, fmt.Errorf("%w: value %v is not finite", ErrInvalidCalibration, value)
	}
	if t.Scale == Logarithmic && value <= 0 {
		return 0, fmt.Errorf("%w: value %v is not positive on a logarithmic axis", ErrInvalidCalibration, value)
	}
	return t.AnchorPixel + (t.Scale.toFit(value)-t.AnchorFit)/t.Slope, nil
}

// Increasing reports whether data values grow with the pixel coordinate.
func (t *Transform) Increasing() bool {
	return t.Slope > 0
}
