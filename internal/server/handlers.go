package server

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"github.com/ironsheep/plot-digitizer/internal/digitize"
	"github.com/ironsheep/plot-digitizer/internal/imaging"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_load", "plot_digitize").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		s.log.Debug().Str("tool", params.Name).Err(err).Msg("tool failed")
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": s.marshalText(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
//
// Each tool handler:
//  1. Unmarshals arguments from JSON
//  2. Applies default values for optional parameters
//  3. Loads images from cache as needed
//  4. Calls the appropriate imaging/digitize function
//  5. Returns the result or error
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Image inspection
	case "image_load":
		return s.handleImageLoad(args)
	case "image_crop":
		return s.handleImageCrop(args)
	case "image_crop_margin":
		return s.handleImageCropMargin(ctx, args)
	case "image_dominant_colors":
		return s.handleImageDominantColors(args)
	case "image_edge_detect":
		return s.handleImageEdgeDetect(args)

	// Digitization
	case "plot_detect_axes":
		return s.handlePlotDetectAxes(ctx, args)
	case "plot_digitize":
		return s.handlePlotDigitize(ctx, args)
	case "plot_overlay":
		return s.handlePlotOverlay(ctx, args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// marshalText converts a value to a pretty-printed JSON string. On marshal
// failure it logs the error and returns an empty string.
func (s *Server) marshalText(v interface{}) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		s.log.Error().Err(err).Msg("failed to marshal tool result")
		return ""
	}
	return string(b)
}

// options returns the request options, or the server defaults when absent.
func (s *Server) options(o *digitize.Options) digitize.Options {
	if o != nil {
		return *o
	}
	return s.defaults
}

// === Image Inspection Handlers ===

type imageLoadArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.LoadImageInfo(s.cache, a.Path)
}

type imageCropArgs struct {
	Path  string  `json:"path"`
	X1    int     `json:"x1"`
	Y1    int     `json:"y1"`
	X2    int     `json:"x2"`
	Y2    int     `json:"y2"`
	Scale float64 `json:"scale"`
}

func (s *Server) handleImageCrop(args json.RawMessage) (interface{}, error) {
	var a imageCropArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Scale == 0 {
		a.Scale = 1.0
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	return imaging.Crop(img, a.X1, a.Y1, a.X2, a.Y2, a.Scale)
}

type imageCropMarginArgs struct {
	Path    string            `json:"path"`
	Margin  string            `json:"margin"`
	AxisX   *int              `json:"axis_x,omitempty"`
	AxisY   *int              `json:"axis_y,omitempty"`
	Scale   float64           `json:"scale"`
	Options *digitize.Options `json:"options,omitempty"`
}

func (s *Server) handleImageCropMargin(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a imageCropMarginArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Scale == 0 {
		a.Scale = 2.0
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}

	if a.AxisX == nil || a.AxisY == nil {
		axes, err := digitize.LocateAxes(ctx, img, s.options(a.Options))
		if err != nil {
			return nil, fmt.Errorf("%w; pass axis_x and axis_y explicitly", err)
		}
		if a.AxisX == nil {
			x := int(math.Round(axes.Y.Position()))
			a.AxisX = &x
		}
		if a.AxisY == nil {
			y := int(math.Round(axes.X.Position()))
			a.AxisY = &y
		}
	}
	return imaging.CropMargin(img, a.Margin, *a.AxisX, *a.AxisY, a.Scale)
}

type imageDominantColorsArgs struct {
	Path  string `json:"path"`
	Count int    `json:"count"`
}

func (s *Server) handleImageDominantColors(args json.RawMessage) (interface{}, error) {
	var a imageDominantColorsArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Count == 0 {
		a.Count = 5
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	return imaging.DominantColors(img, a.Count), nil
}

type imageEdgeDetectArgs struct {
	Path            string  `json:"path"`
	ThresholdLow    int     `json:"threshold_low"`
	ThresholdHigh   int     `json:"threshold_high"`
	SmoothingRadius float64 `json:"smoothing_radius"`
}

func (s *Server) handleImageEdgeDetect(args json.RawMessage) (interface{}, error) {
	var a imageEdgeDetectArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	opts := digitize.Options{
		SmoothingRadius:   a.SmoothingRadius,
		EdgeThresholdLow:  a.ThresholdLow,
		EdgeThresholdHigh: a.ThresholdHigh,
	}
	return imaging.EdgeDetect(img, opts.Preprocess())
}

// === Digitization Handlers ===

type plotDetectAxesArgs struct {
	Path    string            `json:"path"`
	Options *digitize.Options `json:"options,omitempty"`
}

func (s *Server) handlePlotDetectAxes(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a plotDetectAxesArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	return digitize.LocateAxes(ctx, img, s.options(a.Options))
}

type plotDigitizeArgs struct {
	Path        string               `json:"path"`
	Calibration digitize.Calibration `json:"calibration"`
	Options     *digitize.Options    `json:"options,omitempty"`
}

func (s *Server) handlePlotDigitize(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a plotDigitizeArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	return digitize.Digitize(ctx, img, a.Calibration, s.options(a.Options))
}

type plotOverlayArgs struct {
	Path        string                `json:"path"`
	Calibration *digitize.Calibration `json:"calibration,omitempty"`
	Options     *digitize.Options     `json:"options,omitempty"`
	GridSpacing int                   `json:"grid_spacing"`
}

// handlePlotOverlay renders the located axes, and the extracted points when a
// calibration is given.
func (s *Server) handlePlotOverlay(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a plotOverlayArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	opts := s.options(a.Options)

	var ov imaging.Overlay
	if a.Calibration != nil {
		res, err := digitize.Digitize(ctx, img, *a.Calibration, opts)
		if err != nil {
			return nil, err
		}
		ov = res.Overlay()
	} else {
		axes, err := digitize.LocateAxes(ctx, img, opts)
		if err != nil {
			return nil, err
		}
		ov = digitize.AxesOverlay(axes)
	}
	ov.GridSpacing = a.GridSpacing
	return imaging.RenderOverlay(img, ov)
}
