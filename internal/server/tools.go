package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Image inspection
		{
			Name:        "image_load",
			Description: "Load a chart image file and return its dimensions and format. The image is cached for subsequent operations.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_crop",
			Description: "Crop a rectangular region from an image and return it as base64-encoded PNG. Use this to zoom into tick labels, legends or dense data areas.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
					"x1": map[string]interface{}{
						"type":        "integer",
						"description": "Left edge X coordinate (0-based)",
					},
					"y1": map[string]interface{}{
						"type":        "integer",
						"description": "Top edge Y coordinate (0-based)",
					},
					"x2": map[string]interface{}{
						"type":        "integer",
						"description": "Right edge X coordinate (exclusive)",
					},
					"y2": map[string]interface{}{
						"type":        "integer",
						"description": "Bottom edge Y coordinate (exclusive)",
					},
					"scale": map[string]interface{}{
						"type":        "number",
						"description": "Optional scale factor (e.g., 2.0 to double size). Default 1.0",
						"default":     1.0,
					},
				},
				"required": []string{"path", "x1", "y1", "x2", "y2"},
			},
		},
		{
			Name:        "image_crop_margin",
			Description: "Crop the strip left of the y axis (left), below the x axis (bottom) or the plot area itself (plot), enlarged for reading tick labels. Axis positions are located automatically unless given.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
					"margin": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"left", "bottom", "plot"},
						"description": "Which strip to extract",
					},
					"axis_x": map[string]interface{}{
						"type":        "integer",
						"description": "Optional X coordinate of the y axis",
					},
					"axis_y": map[string]interface{}{
						"type":        "integer",
						"description": "Optional Y coordinate of the x axis",
					},
					"scale": map[string]interface{}{
						"type":        "number",
						"description": "Optional scale factor. Default 2.0",
						"default":     2.0,
					},
					"options": map[string]interface{}{
						"type":        "object",
						"description": "Pipeline tuning: smoothing_radius, edge_threshold_low/high, min_line_length, max_line_gap, angle_tolerance, axis_span_fraction, merge_distance, grid_contrast_ratio, tick_min_length, tick_min_spacing, tick_tolerance, furniture_margin, foreground_threshold, color_similarity_threshold, halo_distance, grid_max_chroma, min_region_size, min_series_size, elongation_ratio, resample_step, dedup_min_distance, primary_axis (x or y). Omitted fields take defaults.",
					},
				},
				"required": []string{"path", "margin"},
			},
		},
		{
			Name:        "image_dominant_colors",
			Description: "Extract the most frequent colors of the image. The first is usually the background, the rest are axes, text and data series.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
					"count": map[string]interface{}{
						"type":        "integer",
						"description": "Number of colors to return. Default 5",
						"default":     5,
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_edge_detect",
			Description: "Render the Canny edge mask the axis locator works on. Useful for tuning thresholds on scans and noisy exports.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
					"threshold_low": map[string]interface{}{
						"type":        "integer",
						"description": "Low hysteresis threshold (0-255). Default 50",
						"default":     50,
					},
					"threshold_high": map[string]interface{}{
						"type":        "integer",
						"description": "High hysteresis threshold (0-255). Default 150",
						"default":     150,
					},
					"smoothing_radius": map[string]interface{}{
						"type":        "number",
						"description": "Gaussian blur radius in pixels before edge detection. Default 2, negative disables",
						"default":     2,
					},
				},
				"required": []string{"path"},
			},
		},

		// Digitization
		{
			Name:        "plot_detect_axes",
			Description: "Locate the x and y axes, grid lines and candidate tick marks. Read the labels at the suggested ticks to build calibration points for plot_digitize.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
					"options": map[string]interface{}{
						"type":        "object",
						"description": "Pipeline tuning: smoothing_radius, edge_threshold_low/high, min_line_length, max_line_gap, angle_tolerance, axis_span_fraction, merge_distance, grid_contrast_ratio, tick_min_length, tick_min_spacing, tick_tolerance, furniture_margin, foreground_threshold, color_similarity_threshold, halo_distance, grid_max_chroma, min_region_size, min_series_size, elongation_ratio, resample_step, dedup_min_distance, primary_axis (x or y). Omitted fields take defaults.",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "plot_digitize",
			Description: "Extract the plotted data series of a chart as calibrated (x, y) points, ordered along the primary axis. Supports linear and logarithmic axes.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
					"calibration": map[string]interface{}{
						"type":        "object",
						"description": "Per-axis calibration: {\"x\": {...}, \"y\": {...}}. Each axis has scale (linear or log), points [{pixel, value}] with at least two distinct values, or range [min, max] applied to the located axis ends (left/right for x, bottom/top for y). Pixel is the x coordinate for the x axis and the y coordinate for the y axis.",
					},
					"options": map[string]interface{}{
						"type":        "object",
						"description": "Pipeline tuning: smoothing_radius, edge_threshold_low/high, min_line_length, max_line_gap, angle_tolerance, axis_span_fraction, merge_distance, grid_contrast_ratio, tick_min_length, tick_min_spacing, tick_tolerance, furniture_margin, foreground_threshold, color_similarity_threshold, halo_distance, grid_max_chroma, min_region_size, min_series_size, elongation_ratio, resample_step, dedup_min_distance, primary_axis (x or y). Omitted fields take defaults.",
					},
				},
				"required": []string{"path", "calibration"},
			},
		},
		{
			Name:        "plot_overlay",
			Description: "Draw the located axes (green), ticks (red crosses with calibrated values) and extracted points (rings in series color) over the chart and return it as base64 PNG. Without calibration only axes and ticks are drawn.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
					"calibration": map[string]interface{}{
						"type":        "object",
						"description": "Per-axis calibration: {\"x\": {...}, \"y\": {...}}. Each axis has scale (linear or log), points [{pixel, value}] with at least two distinct values, or range [min, max] applied to the located axis ends (left/right for x, bottom/top for y). Pixel is the x coordinate for the x axis and the y coordinate for the y axis.",
					},
					"options": map[string]interface{}{
						"type":        "object",
						"description": "Pipeline tuning: smoothing_radius, edge_threshold_low/high, min_line_length, max_line_gap, angle_tolerance, axis_span_fraction, merge_distance, grid_contrast_ratio, tick_min_length, tick_min_spacing, tick_tolerance, furniture_margin, foreground_threshold, color_similarity_threshold, halo_distance, grid_max_chroma, min_region_size, min_series_size, elongation_ratio, resample_step, dedup_min_distance, primary_axis (x or y). Omitted fields take defaults.",
					},
					"grid_spacing": map[string]interface{}{
						"type":        "integer",
						"description": "Optional pixel reference grid spacing with coordinate labels. 0 disables",
						"default":     0,
					},
				},
				"required": []string{"path"},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
