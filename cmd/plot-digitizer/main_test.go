package main

import (
	"bytes"
	"context"
	"encoding/json"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ironsheep/plot-digitizer/internal/calibrate"
	"github.com/ironsheep/plot-digitizer/internal/digitize"
	"github.com/ironsheep/plot-digitizer/internal/plottest"
)

var calibrationFixture = digitize.Calibration{
	X: digitize.AxisCalibration{Points: []calibrate.Point{{Pixel: 40, Value: 0}, {Pixel: 460, Value: 10}}},
	Y: digitize.AxisCalibration{Points: []calibrate.Point{{Pixel: 380, Value: 0}, {Pixel: 20, Value: 10}}},
}

func writeChart(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "scatter.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, plottest.Scatter().Image()); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRun_Digitize(t *testing.T) {
	dir := t.TempDir()
	chart := writeChart(t, dir)
	missing := filepath.Join(dir, "missing.png")

	var out bytes.Buffer
	err := run(context.Background(), []string{"digitize", "-x-range", "0,10", "-y-range", "0, 10", "-workers", "2", chart, missing}, &out)
	if err == nil || !strings.Contains(err.Error(), "1 of 2") {
		t.Errorf("expected one failure, got %v", err)
	}

	var results []fileResult
	if err := json.Unmarshal(out.Bytes(), &results); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results", len(results))
	}
	if results[0].File != chart || results[0].Result == nil || results[0].Result.PointCount != 5 {
		t.Errorf("chart result: %+v", results[0])
	}
	if results[1].Result != nil || results[1].Stage != "input" {
		t.Errorf("missing file result: %+v", results[1])
	}
}

func TestRun_DigitizeConfig(t *testing.T) {
	dir := t.TempDir()
	chart := writeChart(t, dir)
	cfgPath := filepath.Join(dir, "config.yaml")
	cfg := "calibration:\n  x: {range: [0, 10]}\n  y: {range: [0, 10]}\n"
	if err := os.WriteFile(cfgPath, []byte(cfg), 0644); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	if err := run(context.Background(), []string{"digitize", "-config", cfgPath, chart}, &out); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	var results []fileResult
	if err := json.Unmarshal(out.Bytes(), &results); err != nil {
		t.Fatal(err)
	}
	if results[0].Result.PointCount != 5 {
		t.Errorf("got %d points", results[0].Result.PointCount)
	}
}

func TestRun_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no command", nil, "missing command"},
		{"unknown command", []string{"plot"}, "unknown command"},
		{"no images", []string{"digitize", "-x-range", "0,1", "-y-range", "0,1"}, "no images"},
		{"no calibration", []string{"digitize", "chart.png"}, "no calibration"},
		{"bad range", []string{"digitize", "-x-range", "0", "-y-range", "0,1", "chart.png"}, "min,max"},
		{"bad scale", []string{"digitize", "-x-range", "0,1", "-y-range", "0,1", "-y-scale", "polar", "chart.png"}, "polar"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := run(context.Background(), tt.args, &bytes.Buffer{})
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("got %v, want error containing %q", err, tt.want)
			}
		})
	}
}

func TestCalibration_FlagsOverrideConfig(t *testing.T) {
	base := &calibrationFixture
	cal, err := calibration(base, "", "1,1000", "", "log")
	if err != nil {
		t.Fatal(err)
	}
	if len(cal.X.Points) != 2 {
		t.Errorf("x points should be kept: %+v", cal.X)
	}
	if cal.Y.Points != nil || cal.Y.Range == nil || cal.Y.Range[1] != 1000 || cal.Y.Scale != calibrate.Logarithmic {
		t.Errorf("y should take the flag range: %+v", cal.Y)
	}
	if len(base.Y.Points) != 2 {
		t.Error("base calibration was modified")
	}
}

func TestRun_VersionAndConfig(t *testing.T) {
	var out bytes.Buffer
	if err := run(context.Background(), []string{"version"}, &out); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out.String(), "plot-digitizer ") {
		t.Errorf("version output: %q", out.String())
	}

	out.Reset()
	if err := run(context.Background(), []string{"config"}, &out); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "resample_step:") || !strings.Contains(out.String(), "listen:") {
		t.Errorf("config output: %q", out.String())
	}
}
