// Package server implements the MCP (Model Context Protocol) server for plot
// digitization.
//
// This package provides a JSON-RPC 2.0 server that exposes the digitization
// pipeline through the MCP protocol, so an assistant can look at a chart,
// read its tick labels, and get the plotted numbers back.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Image inspection:
//   - image_load: Load image and get metadata
//   - image_crop: Extract rectangular region
//   - image_crop_margin: Extract the tick label strip left of or below the axes
//   - image_dominant_colors: Extract color palette (series colors)
//   - image_edge_detect: Edge mask seen by the axis locator
//
// Digitization:
//   - plot_detect_axes: Locate axes and suggest tick positions
//   - plot_digitize: Extract calibrated data series
//   - plot_overlay: Preview of axes, ticks and extracted points
//
// A typical session calls plot_detect_axes, crops the margins to read the
// labels at the suggested ticks, and passes those pixel/value pairs to
// plot_digitize as calibration points.
//
// # Image Caching
//
// The server maintains an in-memory cache of loaded images. Images are cached
// by path and reused across multiple tool calls, avoiding redundant disk I/O.
// The cache persists for the lifetime of the server process.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: The Go error string, prefixed by the failing pipeline stage
//
// # Usage
//
//	srv := server.New(server.WithLogger(logger))
//	if err := srv.Run(ctx); err != nil {
//	    logger.Fatal().Err(err).Msg("server error")
//	}
package server
