package extract

import "github.com/ironsheep/plot-digitizer/internal/geometry"

// Options configures point extraction. Zero fields take the values from
// DefaultOptions; the zero PrimaryAxis is x.
type Options struct {
	// ElongationRatio is the major/minor deviation ratio at which a region
	// is treated as a curve instead of a marker.
	ElongationRatio float64 `json:"elongation_ratio" yaml:"elongation_ratio"`

	// ResampleStep is the bucket width in pixels along a curve.
	ResampleStep float64 `json:"resample_step" yaml:"resample_step"`

	// DedupMinDistance is the pixel distance below which a point duplicates
	// an earlier one.
	DedupMinDistance float64 `json:"dedup_min_distance" yaml:"dedup_min_distance"`

	// PrimaryAxis is the reading order axis.
	PrimaryAxis geometry.Axis `json:"primary_axis" yaml:"primary_axis"`
}

// DefaultOptions returns the extraction defaults.
func DefaultOptions() Options {
	return Options{
		ElongationRatio:  3,
		ResampleStep:     5,
		DedupMinDistance: 3,
		PrimaryAxis:      geometry.AxisX,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.ElongationRatio <= 0 {
		o.ElongationRatio = d.ElongationRatio
	}
	if o.ResampleStep <= 0 {
		o.ResampleStep = d.ResampleStep
	}
	if o.DedupMinDistance <= 0 {
		o.DedupMinDistance = d.DedupMinDistance
	}
	return o
}
