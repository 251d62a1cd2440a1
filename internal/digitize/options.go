package digitize

import (
	"github.com/ironsheep/plot-digitizer/internal/detection"
	"github.com/ironsheep/plot-digitizer/internal/extract"
	"github.com/ironsheep/plot-digitizer/internal/geometry"
	"github.com/ironsheep/plot-digitizer/internal/imaging"
	"github.com/ironsheep/plot-digitizer/internal/segment"
)

// Options collects the tunables of every pipeline stage.
//
// Zero fields take the defaults of the stage that owns them. A negative
// SmoothingRadius disables smoothing.
type Options struct {
	// Preprocessor
	SmoothingRadius   float64 `json:"smoothing_radius" yaml:"smoothing_radius"`
	EdgeThresholdLow  int     `json:"edge_threshold_low" yaml:"edge_threshold_low"`
	EdgeThresholdHigh int     `json:"edge_threshold_high" yaml:"edge_threshold_high"`

	// Axis locator
	MinLineLength     int     `json:"min_line_length" yaml:"min_line_length"`
	MaxLineGap        int     `json:"max_line_gap" yaml:"max_line_gap"`
	AngleTolerance    float64 `json:"angle_tolerance" yaml:"angle_tolerance"`
	AxisSpanFraction  float64 `json:"axis_span_fraction" yaml:"axis_span_fraction"`
	MergeDistance     float64 `json:"merge_distance" yaml:"merge_distance"`
	GridContrastRatio float64 `json:"grid_contrast_ratio" yaml:"grid_contrast_ratio"`
	TickMinLength     int     `json:"tick_min_length" yaml:"tick_min_length"`
	TickMinSpacing    float64 `json:"tick_min_spacing" yaml:"tick_min_spacing"`

	// TickTolerance is how far, in pixels, a calibration point may lie
	// outside the located axis extent.
	TickTolerance float64 `json:"tick_tolerance" yaml:"tick_tolerance"`

	// Trace segmenter
	FurnitureMargin          int     `json:"furniture_margin" yaml:"furniture_margin"`
	ForegroundThreshold      float64 `json:"foreground_threshold" yaml:"foreground_threshold"`
	ColorSimilarityThreshold float64 `json:"color_similarity_threshold" yaml:"color_similarity_threshold"`
	HaloDistance             float64 `json:"halo_distance" yaml:"halo_distance"`
	GridMaxChroma            float64 `json:"grid_max_chroma" yaml:"grid_max_chroma"`
	MinRegionSize            int     `json:"min_region_size" yaml:"min_region_size"`
	MinSeriesSize            int     `json:"min_series_size" yaml:"min_series_size"`

	// Point extractor
	ElongationRatio  float64       `json:"elongation_ratio" yaml:"elongation_ratio"`
	ResampleStep     float64       `json:"resample_step" yaml:"resample_step"`
	DedupMinDistance float64       `json:"dedup_min_distance" yaml:"dedup_min_distance"`
	PrimaryAxis      geometry.Axis `json:"primary_axis" yaml:"primary_axis"`
}

const defaultTickTolerance = 10

// DefaultOptions returns every stage's defaults.
func DefaultOptions() Options {
	pre := imaging.DefaultPreprocessOptions()
	det := detection.DefaultOptions()
	seg := segment.DefaultOptions()
	ext := extract.DefaultOptions()
	return Options{
		SmoothingRadius:          pre.SmoothingRadius,
		EdgeThresholdLow:         pre.EdgeThresholdLow,
		EdgeThresholdHigh:        pre.EdgeThresholdHigh,
		MinLineLength:            det.MinLineLength,
		MaxLineGap:               det.MaxLineGap,
		AngleTolerance:           det.AngleTolerance,
		AxisSpanFraction:         det.AxisSpanFraction,
		MergeDistance:            det.MergeDistance,
		GridContrastRatio:        det.GridContrastRatio,
		TickMinLength:            det.TickMinLength,
		TickMinSpacing:           det.TickMinSpacing,
		TickTolerance:            defaultTickTolerance,
		FurnitureMargin:          seg.FurnitureMargin,
		ForegroundThreshold:      seg.ForegroundThreshold,
		ColorSimilarityThreshold: seg.ColorSimilarityThreshold,
		HaloDistance:             seg.HaloDistance,
		GridMaxChroma:            seg.GridMaxChroma,
		MinRegionSize:            seg.MinRegionSize,
		MinSeriesSize:            seg.MinSeriesSize,
		ElongationRatio:          ext.ElongationRatio,
		ResampleStep:             ext.ResampleStep,
		DedupMinDistance:         ext.DedupMinDistance,
		PrimaryAxis:              ext.PrimaryAxis,
	}
}

// Preprocess returns the preprocessor options.
func (o Options) Preprocess() imaging.PreprocessOptions {
	d := imaging.DefaultPreprocessOptions()
	p := imaging.PreprocessOptions{
		SmoothingRadius:   o.SmoothingRadius,
		EdgeThresholdLow:  o.EdgeThresholdLow,
		EdgeThresholdHigh: o.EdgeThresholdHigh,
	}
	if p.SmoothingRadius == 0 {
		p.SmoothingRadius = d.SmoothingRadius
	}
	if p.EdgeThresholdLow <= 0 {
		p.EdgeThresholdLow = d.EdgeThresholdLow
	}
	if p.EdgeThresholdHigh <= 0 {
		p.EdgeThresholdHigh = d.EdgeThresholdHigh
	}
	return p
}

// Detection returns the axis locator options.
func (o Options) Detection() detection.Options {
	return detection.Options{
		MinLineLength:     o.MinLineLength,
		MaxLineGap:        o.MaxLineGap,
		AngleTolerance:    o.AngleTolerance,
		MergeDistance:     o.MergeDistance,
		AxisSpanFraction:  o.AxisSpanFraction,
		GridContrastRatio: o.GridContrastRatio,
		TickMinLength:     o.TickMinLength,
		TickMinSpacing:    o.TickMinSpacing,
	}
}

// Segment returns the trace segmenter options.
func (o Options) Segment() segment.Options {
	return segment.Options{
		ForegroundThreshold:      o.ForegroundThreshold,
		ColorSimilarityThreshold: o.ColorSimilarityThreshold,
		HaloDistance:             o.HaloDistance,
		GridMaxChroma:            o.GridMaxChroma,
		FurnitureMargin:          o.FurnitureMargin,
		MinRegionSize:            o.MinRegionSize,
		MinSeriesSize:            o.MinSeriesSize,
	}
}

// Extract returns the point extractor options.
func (o Options) Extract() extract.Options {
	return extract.Options{
		ElongationRatio:  o.ElongationRatio,
		ResampleStep:     o.ResampleStep,
		DedupMinDistance: o.DedupMinDistance,
		PrimaryAxis:      o.PrimaryAxis,
	}
}

func (o Options) tickTolerance() float64 {
	if o.TickTolerance <= 0 {
		return defaultTickTolerance
	}
	return o.TickTolerance
}
