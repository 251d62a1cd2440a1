package server

import (
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ironsheep/plot-digitizer/internal/plottest"
)

// writeTestImage encodes img into a temp directory and returns its path.
func writeTestImage(t *testing.T, img image.Image) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "chart.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}
	return path
}

// createTestImageFile creates a solid test image file and returns its path
func createTestImageFile(t *testing.T, width, height int, c color.Color) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return writeTestImage(t, img)
}

// callTool runs a tools/call request and returns the response.
func callTool(t *testing.T, s *Server, name string, args map[string]interface{}) *MCPResponse {
	t.Helper()
	paramsJSON, err := json.Marshal(map[string]interface{}{"name": name, "arguments": args})
	if err != nil {
		t.Fatalf("marshal params: %v", err)
	}
	resp := s.handleRequest(context.Background(), &MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "tools/call",
		Params:  paramsJSON,
	})
	if resp == nil {
		t.Fatal("handleRequest returned nil")
	}
	return resp
}

// decodeContent unmarshals the text content of a successful tool response.
func decodeContent(t *testing.T, resp *MCPResponse, v interface{}) {
	t.Helper()
	if resp.Error != nil {
		t.Fatalf("Unexpected error: %+v", resp.Error)
	}
	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatal("Result should be a map")
	}
	content, ok := result["content"].([]map[string]interface{})
	if !ok || len(content) != 1 || content[0]["type"] != "text" {
		t.Fatalf("unexpected content: %v", result["content"])
	}
	if err := json.Unmarshal([]byte(content[0]["text"].(string)), v); err != nil {
		t.Fatalf("decode content: %v", err)
	}
}

func TestHandleToolsCall_ImageLoad(t *testing.T) {
	s := New()
	imgPath := createTestImageFile(t, 100, 80, color.RGBA{255, 0, 0, 255})

	var info struct {
		Width  int    `json:"width"`
		Height int    `json:"height"`
		Format string `json:"format"`
	}
	decodeContent(t, callTool(t, s, "image_load", map[string]interface{}{"path": imgPath}), &info)

	if info.Width != 100 || info.Height != 80 || info.Format != "png" {
		t.Errorf("got %+v", info)
	}
	if s.cache.Len() != 1 {
		t.Errorf("cache holds %d images, want 1", s.cache.Len())
	}
}

func TestHandleToolsCall_NonExistentFile(t *testing.T) {
	resp := callTool(t, New(), "image_load", map[string]interface{}{"path": "/nonexistent/image.png"})
	if resp.Error == nil || resp.Error.Code != -32000 {
		t.Fatalf("expected tool error, got %+v", resp)
	}
}

func TestHandleToolsCall_InvalidTool(t *testing.T) {
	resp := callTool(t, New(), "nonexistent_tool", map[string]interface{}{})
	if resp.Error == nil || resp.Error.Code != -32000 {
		t.Fatalf("expected tool error, got %+v", resp)
	}
	if !strings.Contains(resp.Error.Data.(string), "unknown tool") {
		t.Errorf("error data: %v", resp.Error.Data)
	}
}

func TestHandleToolsCall_InvalidParams(t *testing.T) {
	s := New()
	resp := s.handleToolsCall(context.Background(), &MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Params:  json.RawMessage(`not valid json`),
	})
	if resp.Error == nil || resp.Error.Code != -32602 {
		t.Fatalf("expected invalid params error, got %+v", resp)
	}
}

func TestHandleToolsCall_Crop(t *testing.T) {
	imgPath := createTestImageFile(t, 100, 100, color.RGBA{0, 0, 255, 255})

	var crop struct {
		Width  int `json:"width"`
		Height int `json:"height"`
	}
	decodeContent(t, callTool(t, New(), "image_crop", map[string]interface{}{
		"path": imgPath, "x1": 10, "y1": 10, "x2": 50, "y2": 30, "scale": 2.0,
	}), &crop)

	if crop.Width != 80 || crop.Height != 40 {
		t.Errorf("got %dx%d, want 80x40", crop.Width, crop.Height)
	}
}

func TestHandleToolsCall_CropMargin(t *testing.T) {
	imgPath := writeTestImage(t, plottest.Scatter().Image())

	tests := []struct {
		name       string
		args       map[string]interface{}
		wantWidth  int
		wantHeight int
	}{
		{
			name:       "located left margin",
			args:       map[string]interface{}{"path": imgPath, "margin": "left", "scale": 1.0},
			wantWidth:  plottest.Left,
			wantHeight: plottest.Height,
		},
		{
			name:       "explicit bottom margin",
			args:       map[string]interface{}{"path": imgPath, "margin": "bottom", "axis_x": 40, "axis_y": 380},
			wantWidth:  2 * plottest.Width,
			wantHeight: 2 * (plottest.Height - plottest.Bottom),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var crop struct {
				Width  int `json:"width"`
				Height int `json:"height"`
			}
			decodeContent(t, callTool(t, New(), "image_crop_margin", tt.args), &crop)
			if crop.Width != tt.wantWidth || crop.Height != tt.wantHeight {
				t.Errorf("got %dx%d, want %dx%d", crop.Width, crop.Height, tt.wantWidth, tt.wantHeight)
			}
		})
	}
}

func TestHandleToolsCall_DominantColors(t *testing.T) {
	imgPath := writeTestImage(t, plottest.Scatter().Image())

	var colors []struct {
		Hex   string `json:"hex"`
		Count int    `json:"count"`
	}
	decodeContent(t, callTool(t, New(), "image_dominant_colors", map[string]interface{}{"path": imgPath, "count": 3}), &colors)

	if len(colors) != 3 {
		t.Fatalf("got %d colors, want 3", len(colors))
	}
	if colors[0].Hex != "#F0F0F0" {
		t.Errorf("background bucket: got %s", colors[0].Hex)
	}
}

func TestHandleToolsCall_EdgeDetect(t *testing.T) {
	imgPath := writeTestImage(t, plottest.Scatter().Image())

	var edges struct {
		EdgePixels int    `json:"edge_pixels"`
		MimeType   string `json:"mime_type"`
	}
	decodeContent(t, callTool(t, New(), "image_edge_detect", map[string]interface{}{
		"path": imgPath, "threshold_low": 60, "threshold_high": 160,
	}), &edges)

	if edges.EdgePixels == 0 || edges.MimeType != "image/png" {
		t.Errorf("got %+v", edges)
	}
}

func TestHandleToolsCall_DetectAxes(t *testing.T) {
	imgPath := writeTestImage(t, plottest.Scatter().Image())

	var axes struct {
		X *struct {
			Start struct{ X, Y float64 } `json:"start"`
		} `json:"x_axis"`
		Y *struct {
			Start struct{ X, Y float64 } `json:"start"`
		} `json:"y_axis"`
		XTicks []struct {
			Position float64 `json:"position"`
		} `json:"x_ticks"`
	}
	decodeContent(t, callTool(t, New(), "plot_detect_axes", map[string]interface{}{"path": imgPath}), &axes)

	if axes.X == nil || axes.Y == nil {
		t.Fatalf("axes missing: %+v", axes)
	}
	if math.Abs(axes.X.Start.Y-plottest.Bottom) > 1 || math.Abs(axes.Y.Start.X-plottest.Left) > 1 {
		t.Errorf("axes at y=%v x=%v", axes.X.Start.Y, axes.Y.Start.X)
	}
	if len(axes.XTicks) == 0 {
		t.Error("no x ticks suggested")
	}
}

func TestHandleToolsCall_DetectAxes_NotFound(t *testing.T) {
	imgPath := createTestImageFile(t, 120, 90, color.White)
	resp := callTool(t, New(), "plot_detect_axes", map[string]interface{}{"path": imgPath})
	if resp.Error == nil || !strings.Contains(resp.Error.Data.(string), "axis not found") {
		t.Fatalf("expected axis not found error, got %+v", resp)
	}
}

func TestHandleToolsCall_Digitize(t *testing.T) {
	imgPath := writeTestImage(t, plottest.Scatter().Image())

	var res struct {
		Series []struct {
			Color  string `json:"color"`
			Points []struct {
				X, Y float64
			} `json:"points"`
		} `json:"series"`
		PointCount int `json:"point_count"`
	}
	decodeContent(t, callTool(t, New(), "plot_digitize", map[string]interface{}{
		"path": imgPath,
		"calibration": map[string]interface{}{
			"x": map[string]interface{}{"points": []map[string]float64{{"pixel": 40, "value": 0}, {"pixel": 460, "value": 10}}},
			"y": map[string]interface{}{"scale": "linear", "points": []map[string]float64{{"pixel": 380, "value": 0}, {"pixel": 20, "value": 10}}},
		},
	}), &res)

	if len(res.Series) != 1 || res.PointCount != 5 {
		t.Fatalf("got %+v", res)
	}
	first := res.Series[0].Points[0]
	if math.Abs(first.X-1) > 1e-3 || math.Abs(first.Y-1) > 1e-3 {
		t.Errorf("first point: got (%v, %v), want (1, 1)", first.X, first.Y)
	}
}

func TestHandleToolsCall_Digitize_InvalidCalibration(t *testing.T) {
	imgPath := writeTestImage(t, plottest.Scatter().Image())

	resp := callTool(t, New(), "plot_digitize", map[string]interface{}{
		"path": imgPath,
		"calibration": map[string]interface{}{
			"x": map[string]interface{}{"points": []map[string]float64{{"pixel": 40, "value": 0}}},
			"y": map[string]interface{}{"range": []float64{0, 10}},
		},
	})
	if resp.Error == nil || resp.Error.Code != -32000 {
		t.Fatalf("expected tool error, got %+v", resp)
	}
	if data := resp.Error.Data.(string); !strings.HasPrefix(data, "calibration:") {
		t.Errorf("error should name the stage, got %q", data)
	}
}

func TestHandleToolsCall_Digitize_BadScale(t *testing.T) {
	imgPath := writeTestImage(t, plottest.Scatter().Image())

	resp := callTool(t, New(), "plot_digitize", map[string]interface{}{
		"path":        imgPath,
		"calibration": map[string]interface{}{"x": map[string]interface{}{"scale": "polar"}},
	})
	if resp.Error == nil {
		t.Fatal("expected error for unknown scale")
	}
}

func TestHandleToolsCall_Overlay(t *testing.T) {
	imgPath := writeTestImage(t, plottest.Scatter().Image())

	tests := []struct {
		name       string
		args       map[string]interface{}
		wantPoints int
	}{
		{"axes only", map[string]interface{}{"path": imgPath}, 0},
		{
			"with points",
			map[string]interface{}{
				"path":         imgPath,
				"grid_spacing": 100,
				"calibration": map[string]interface{}{
					"x": map[string]interface{}{"range": []float64{0, 10}},
					"y": map[string]interface{}{"range": []float64{0, 10}},
				},
			},
			5,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ov struct {
				Width       int    `json:"width"`
				ImageBase64 string `json:"image_base64"`
				PointCount  int    `json:"point_count"`
			}
			decodeContent(t, callTool(t, New(), "plot_overlay", tt.args), &ov)
			if ov.Width != plottest.Width || ov.ImageBase64 == "" {
				t.Errorf("got width %d", ov.Width)
			}
			if ov.PointCount != tt.wantPoints {
				t.Errorf("point count: got %d, want %d", ov.PointCount, tt.wantPoints)
			}
		})
	}
}

func TestServer_Defaults(t *testing.T) {
	imgPath := writeTestImage(t, plottest.Scatter().Image())

	// An absurd span requirement from the server defaults hides the axes.
	s := New()
	s.defaults.AxisSpanFraction = 0.99
	resp := callTool(t, s, "plot_detect_axes", map[string]interface{}{"path": imgPath})
	if resp.Error == nil {
		t.Fatal("expected server defaults to apply")
	}

	// Request options replace the defaults.
	resp = callTool(t, s, "plot_detect_axes", map[string]interface{}{
		"path":    imgPath,
		"options": map[string]interface{}{"axis_span_fraction": 0.5},
	})
	if resp.Error != nil {
		t.Fatalf("request options should win: %+v", resp.Error)
	}
}
