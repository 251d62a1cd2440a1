package detection

// Options configures line detection, axis selection and tick suggestion.
//
// Zero fields take the values from DefaultOptions.
type Options struct {
	// MinLineLength is the shortest segment, in pixels, kept as a line.
	MinLineLength int `json:"min_line_length" yaml:"min_line_length"`

	// MaxLineGap is the largest gap, in pixels, bridged inside one segment.
	MaxLineGap int `json:"max_line_gap" yaml:"max_line_gap"`

	// AngleTolerance is the allowed deviation in degrees from horizontal or
	// vertical.
	AngleTolerance float64 `json:"angle_tolerance" yaml:"angle_tolerance"`

	// MergeDistance is the largest offset, in pixels, between parallel
	// segments merged into one line.
	MergeDistance float64 `json:"merge_distance" yaml:"merge_distance"`

	// AxisSpanFraction is the minimum fraction of the image width (x axis) or
	// height (y axis) an axis must span.
	AxisSpanFraction float64 `json:"axis_span_fraction" yaml:"axis_span_fraction"`

	// GridContrastRatio classifies a line as a grid line when its contrast is
	// below this fraction of the axis contrast.
	GridContrastRatio float64 `json:"grid_contrast_ratio" yaml:"grid_contrast_ratio"`

	// TickMinLength is the minimum protrusion, in pixels, of a tick beyond the
	// axis stroke.
	TickMinLength int `json:"tick_min_length" yaml:"tick_min_length"`

	// TickMinSpacing merges tick candidates closer than this many pixels.
	TickMinSpacing float64 `json:"tick_min_spacing" yaml:"tick_min_spacing"`
}

// DefaultOptions returns the detection defaults.
func DefaultOptions() Options {
	return Options{
		MinLineLength:     50,
		MaxLineGap:        10,
		AngleTolerance:    2,
		MergeDistance:     6,
		AxisSpanFraction:  0.6,
		GridContrastRatio: 0.8,
		TickMinLength:     4,
		TickMinSpacing:    5,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.MinLineLength <= 0 {
		o.MinLineLength = d.MinLineLength
	}
	if o.MaxLineGap <= 0 {
		o.MaxLineGap = d.MaxLineGap
	}
	if o.AngleTolerance <= 0 {
		o.AngleTolerance = d.AngleTolerance
	}
	if o.MergeDistance <= 0 {
		o.MergeDistance = d.MergeDistance
	}
	if o.AxisSpanFraction <= 0 {
		o.AxisSpanFraction = d.AxisSpanFraction
	}
	if o.GridContrastRatio <= 0 {
		o.GridContrastRatio = d.GridContrastRatio
	}
	if o.TickMinLength <= 0 {
		o.TickMinLength = d.TickMinLength
	}
	if o.TickMinSpacing <= 0 {
		o.TickMinSpacing = d.TickMinSpacing
	}
	return o
}
