package segment

// Options configures the trace segmenter. Zero fields take the values from
// DefaultOptions.
type Options struct {
	// ForegroundThreshold is the CIE Lab distance from the background above
	// which a pixel is ink.
	ForegroundThreshold float64 `json:"foreground_threshold" yaml:"foreground_threshold"`

	// ColorSimilarityThreshold is the CIE Lab distance within which a color
	// joins an existing cluster.
	ColorSimilarityThreshold float64 `json:"color_similarity_threshold" yaml:"color_similarity_threshold"`

	// HaloDistance is the CIE Lab distance within which a smaller cluster
	// bordering a larger one is absorbed into it.
	HaloDistance float64 `json:"halo_distance" yaml:"halo_distance"`

	// GridMaxChroma is the Lab chroma above which a grid or frame line
	// candidate is taken to be a data trace and kept.
	GridMaxChroma float64 `json:"grid_max_chroma" yaml:"grid_max_chroma"`

	// FurnitureMargin is the distance in pixels around axes, grid lines,
	// frame lines and ticks that is never data.
	FurnitureMargin int `json:"furniture_margin" yaml:"furniture_margin"`

	// MinRegionSize drops connected regions with fewer pixels.
	MinRegionSize int `json:"min_region_size" yaml:"min_region_size"`

	// MinSeriesSize drops clusters with fewer surviving pixels.
	MinSeriesSize int `json:"min_series_size" yaml:"min_series_size"`
}

// DefaultOptions returns the segmenter defaults.
func DefaultOptions() Options {
	return Options{
		ForegroundThreshold:      0.12,
		ColorSimilarityThreshold: 0.1,
		HaloDistance:             0.3,
		GridMaxChroma:            0.1,
		FurnitureMargin:          3,
		MinRegionSize:            3,
		MinSeriesSize:            12,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.ForegroundThreshold <= 0 {
		o.ForegroundThreshold = d.ForegroundThreshold
	}
	if o.ColorSimilarityThreshold <= 0 {
		o.ColorSimilarityThreshold = d.ColorSimilarityThreshold
	}
	if o.HaloDistance <= 0 {
		o.HaloDistance = d.HaloDistance
	}
	if o.GridMaxChroma <= 0 {
		o.GridMaxChroma = d.GridMaxChroma
	}
	if o.FurnitureMargin <= 0 {
		o.FurnitureMargin = d.FurnitureMargin
	}
	if o.MinRegionSize <= 0 {
		o.MinRegionSize = d.MinRegionSize
	}
	if o.MinSeriesSize <= 0 {
		o.MinSeriesSize = d.MinSeriesSize
	}
	return o
}
