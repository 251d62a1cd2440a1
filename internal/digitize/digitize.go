// Package digitize runs the full chart digitization pipeline: preprocessing,
// axis location, calibration, trace segmentation, point extraction and
// coordinate mapping.
//
// # Usage
//
//	cal := digitize.Calibration{
//		X: digitize.AxisCalibration{Points: []calibrate.Point{{Pixel: 40, Value: 0}, {Pixel: 460, Value: 10}}},
//		Y: digitize.AxisCalibration{Scale: calibrate.Logarithmic, Range: &[2]float64{1, 1000}},
//	}
//	res, err := digitize.Digitize(ctx, buf, cal, digitize.Options{})
//
// Every failure is an *Error carrying its Kind and the failing stage. An
// image without data ink is not an error; it yields a Result with no series.
package digitize

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/plot-digitizer/internal/calibrate"
	"github.com/ironsheep/plot-digitizer/internal/detection"
	"github.com/ironsheep/plot-digitizer/internal/extract"
	"github.com/ironsheep/plot-digitizer/internal/geometry"
	"github.com/ironsheep/plot-digitizer/internal/imaging"
	"github.com/ironsheep/plot-digitizer/internal/segment"
)

// SeriesResult is the calibrated output of one series.
type SeriesResult struct {
	ID         int         `json:"id"`
	Label      string      `json:"label"`
	Color      string      `json:"color"`
	PixelCount int         `json:"pixel_count"`
	Points     []DataPoint `json:"points"`
}

// Result is the outcome of one digitization.
type Result struct {
	// Series in order of pixel count, largest first.
	Series []SeriesResult `json:"series"`

	// PointCount is the total number of points over all series.
	PointCount int `json:"point_count"`

	// Axes are the located axes with calibrated tick values. Nil only when
	// the image has no ink and no axes were found.
	Axes *detection.Axes `json:"axes,omitempty"`

	// XTransform and YTransform carry the fit statistics of the axes.
	XTransform *calibrate.Transform `json:"x_transform,omitempty"`
	YTransform *calibrate.Transform `json:"y_transform,omitempty"`
}

// run holds the state of one Digitize call.
type run struct {
	ctx  context.Context
	log  *zerolog.Logger
	buf  *imaging.PixelBuffer
	cal  Calibration
	opts Options

	pre    *imaging.Preprocessed
	axes   *detection.Axes
	cls    *segment.Classification
	xT, yT *calibrate.Transform
}

// Digitize extracts calibrated data series from a chart image.
//
// # Stages
//
//  1. Validate buf (MalformedInput).
//  2. Fit the axes calibrated by explicit points (InvalidCalibration).
//  3. Preprocess, then locate axes and classify ink colors concurrently.
//  4. Return an empty Result when the image has no ink.
//  5. Require both axes (AxisNotFound).
//  6. Fit range calibrations against the axis ends and check that explicit
//     points lie within TickTolerance of the axis extent (InvalidCalibration).
//  7. Segment series, extract their points and map them to data values.
//
// The logger in ctx (zerolog.Ctx) receives stage timings at debug level.
func Digitize(ctx context.Context, buf *imaging.PixelBuffer, cal Calibration, opts Options) (*Result, error) {
	r := &run{ctx: ctx, log: zerolog.Ctx(ctx), buf: buf, cal: cal, opts: opts}
	return r.execute()
}

func (r *run) execute() (*Result, error) {
	start := time.Now()

	if err := r.buf.Validate(); err != nil {
		return nil, fail(MalformedInput, StageInput, err)
	}

	var err error
	if r.xT, err = r.cal.X.fitPoints(geometry.AxisX); err != nil {
		return nil, fail(InvalidCalibration, StageCalibration, err)
	}
	if r.yT, err = r.cal.Y.fitPoints(geometry.AxisY); err != nil {
		return nil, fail(InvalidCalibration, StageCalibration, err)
	}

	if r.pre, err = imaging.Preprocess(r.buf, r.opts.Preprocess()); err != nil {
		return nil, fail(MalformedInput, StagePreprocess, err)
	}
	r.log.Debug().
		Int("width", r.pre.Width).
		Int("height", r.pre.Height).
		Int("edge_pixels", r.pre.EdgeCount()).
		Dur("elapsed", time.Since(start)).
		Msg("preprocessed")

	axesErr := r.locateAndClassify()

	if r.cls.Foreground == 0 {
		r.log.Debug().Msg("no data ink")
		return &Result{Series: []SeriesResult{}, Axes: r.axes, XTransform: r.xT, YTransform: r.yT}, nil
	}
	if axesErr != nil {
		return nil, fail(AxisNotFound, StageAxes, axesErr)
	}
	r.log.Debug().
		Float64("x_axis", r.axes.X.Position()).
		Float64("y_axis", r.axes.Y.Position()).
		Int("grid_lines", len(r.axes.Grid)).
		Int("clusters", len(r.cls.Clusters)).
		Msg("axes located")

	if err := r.calibrate(); err != nil {
		return nil, fail(InvalidCalibration, StageCalibration, err)
	}

	res, err := r.trace()
	if err != nil {
		return nil, err
	}
	r.log.Debug().
		Int("series", len(res.Series)).
		Int("points", res.PointCount).
		Dur("elapsed", time.Since(start)).
		Msg("digitized")
	return res, nil
}

// locateAndClassify runs axis location and color classification in parallel.
// Both only read the preprocessed buffers. The axis error is returned so the
// caller can decide whether it matters.
func (r *run) locateAndClassify() error {
	g, _ := errgroup.WithContext(r.ctx)
	g.Go(func() error {
		axes, err := detection.LocateAxes(r.pre, r.opts.Detection())
		r.axes = axes
		return err
	})
	g.Go(func() error {
		r.cls = segment.Classify(r.pre.Color, r.opts.Segment())
		return nil
	})
	return g.Wait()
}

func (r *run) calibrate() error {
	var err error
	if r.xT == nil {
		if r.xT, err = r.cal.X.fitRange(geometry.AxisX, r.axes); err != nil {
			return err
		}
	}
	if r.yT == nil {
		if r.yT, err = r.cal.Y.fitRange(geometry.AxisY, r.axes); err != nil {
			return err
		}
	}

	tol := r.opts.tickTolerance()
	if err := r.cal.X.checkExtent(geometry.AxisX, r.axes.X, tol); err != nil {
		return err
	}
	if err := r.cal.Y.checkExtent(geometry.AxisY, r.axes.Y, tol); err != nil {
		return err
	}

	labelTicks(r.axes.XTicks, r.xT)
	labelTicks(r.axes.YTicks, r.yT)
	return nil
}

func (r *run) trace() (*Result, error) {
	series := segment.Segment(r.cls, r.axes, r.opts.Segment())
	ext := r.opts.Extract()

	res := &Result{
		Series:     make([]SeriesResult, 0, len(series)),
		Axes:       r.axes,
		XTransform: r.xT,
		YTransform: r.yT,
	}
	for _, s := range series {
		sr := SeriesResult{ID: s.ID, Label: s.Label, Color: s.Color, PixelCount: s.PixelCount, Points: []DataPoint{}}
		for p := range extract.SeriesPoints(s, ext) {
			dp, err := MapPoint(p, r.xT, r.yT)
			if err != nil {
				return nil, err
			}
			sr.Points = append(sr.Points, dp)
		}
		res.PointCount += len(sr.Points)
		res.Series = append(res.Series, sr)
	}
	return res, nil
}

// LocateAxes runs only the preprocessor and the axis locator on buf, for
// suggesting calibration ticks before a full digitization.
//
// When an axis is missing, the partial Axes are returned together with an
// AxisNotFound error.
func LocateAxes(ctx context.Context, buf *imaging.PixelBuffer, opts Options) (*detection.Axes, error) {
	start := time.Now()
	pre, err := imaging.Preprocess(buf, opts.Preprocess())
	if err != nil {
		return nil, fail(MalformedInput, StageInput, err)
	}

	axes, err := detection.LocateAxes(pre, opts.Detection())
	zerolog.Ctx(ctx).Debug().
		Int("candidates", axes.Candidates).
		Int("x_ticks", len(axes.XTicks)).
		Int("y_ticks", len(axes.YTicks)).
		Dur("elapsed", time.Since(start)).
		Msg("axes located")
	if err != nil {
		if errors.Is(err, detection.ErrAxisNotFound) {
			return axes, fail(AxisNotFound, StageAxes, err)
		}
		return axes, err
	}
	return axes, nil
}
