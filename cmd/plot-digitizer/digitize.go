package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/plot-digitizer/internal/calibrate"
	"github.com/ironsheep/plot-digitizer/internal/config"
	"github.com/ironsheep/plot-digitizer/internal/digitize"
	"github.com/ironsheep/plot-digitizer/internal/imaging"
)

// fileResult is one entry of the digitize output.
type fileResult struct {
	File   string           `json:"file"`
	Result *digitize.Result `json:"result,omitempty"`
	Error  string           `json:"error,omitempty"`
	Stage  string           `json:"stage,omitempty"`
}

func runDigitize(ctx context.Context, log zerolog.Logger, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("digitize", flag.ContinueOnError)
	configPath := fs.String("config", "", "YAML file with options and calibration")
	xRange := fs.String("x-range", "", "x axis value range as min,max")
	yRange := fs.String("y-range", "", "y axis value range as min,max")
	xScale := fs.String("x-scale", "", "x axis scale: linear or log")
	yScale := fs.String("y-scale", "", "y axis scale: linear or log")
	workers := fs.Int("workers", 0, "images digitized at once (default from memory and CPUs)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return errors.New("digitize: no images given")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *workers > 0 {
		cfg.Server.Workers = *workers
	}
	cal, err := calibration(cfg.Calibration, *xRange, *yRange, *xScale, *yScale)
	if err != nil {
		return err
	}

	results := digitizeAll(log.WithContext(ctx), fs.Args(), cal, cfg.Options, cfg.Server.Workers)

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(results); err != nil {
		return err
	}

	failed := 0
	for _, r := range results {
		if r.Error != "" {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d images failed", failed, len(results))
	}
	return ctx.Err()
}

// digitizeAll processes paths with at most workers images in flight. Results
// keep the order of paths; one failing image does not stop the others.
func digitizeAll(ctx context.Context, paths []string, cal digitize.Calibration, opts digitize.Options, workers int) []fileResult {
	results := make([]fileResult, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(workers, 1))
	for i, path := range paths {
		g.Go(func() error {
			results[i] = digitizeFile(ctx, path, cal, opts)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func digitizeFile(ctx context.Context, path string, cal digitize.Calibration, opts digitize.Options) fileResult {
	log := zerolog.Ctx(ctx).With().Str("file", path).Logger()
	start := time.Now()
	out := fileResult{File: path}

	if err := ctx.Err(); err != nil {
		out.Error = err.Error()
		return out
	}

	f, err := os.Open(path)
	if err != nil {
		out.Error, out.Stage = err.Error(), digitize.StageInput
		return out
	}
	defer f.Close()

	buf, _, err := imaging.Decode(f)
	if err != nil {
		out.Error, out.Stage = err.Error(), digitize.StageInput
		return out
	}

	res, err := digitize.Digitize(log.WithContext(ctx), buf, cal, opts)
	if err != nil {
		out.Error = err.Error()
		var de *digitize.Error
		if errors.As(err, &de) {
			out.Stage = de.Stage
		}
		log.Warn().Err(err).Msg("digitize failed")
		return out
	}
	out.Result = res
	log.Info().Int("series", len(res.Series)).Int("points", res.PointCount).Dur("elapsed", time.Since(start)).Msg("digitized")
	return out
}

// calibration merges the flag ranges over the configured calibration.
func calibration(base *digitize.Calibration, xRange, yRange, xScale, yScale string) (digitize.Calibration, error) {
	var cal digitize.Calibration
	if base != nil {
		cal = *base
	}
	for _, a := range []struct {
		name  string
		axis  *digitize.AxisCalibration
		rng   string
		scale string
	}{
		{"x", &cal.X, xRange, xScale},
		{"y", &cal.Y, yRange, yScale},
	} {
		if a.rng != "" {
			r, err := parseRange(a.rng)
			if err != nil {
				return cal, fmt.Errorf("-%s-range: %w", a.name, err)
			}
			a.axis.Range = &r
			a.axis.Points = nil
		}
		if a.scale != "" {
			s, err := calibrate.ParseScale(a.scale)
			if err != nil {
				return cal, fmt.Errorf("-%s-scale: %w", a.name, err)
			}
			a.axis.Scale = s
		}
		if a.axis.Range == nil && len(a.axis.Points) == 0 {
			return cal, fmt.Errorf("no calibration for the %s axis: pass -%s-range or a config file", a.name, a.name)
		}
	}
	return cal, nil
}

func parseRange(s string) ([2]float64, error) {
	var r [2]float64
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return r, fmt.Errorf("want min,max, got %q", s)
	}
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return r, err
		}
		r[i] = v
	}
	return r, nil
}
