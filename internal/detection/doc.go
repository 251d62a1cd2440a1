// Package detection locates chart furniture in preprocessed images.
//
// It finds axis-aligned line segments with a Hough transform, picks the x and
// y axes among them, classifies fainter lines as grid lines and suggests tick
// marks along each axis. It also provides the 8-connected component labeling
// used to split data ink into regions.
//
// # Algorithm Overview
//
//  1. Hough voting on the edge mask produced by imaging.Preprocess
//  2. Segment extraction along each accumulator peak, split at gaps
//  3. Orientation filtering and merging of the two edges of each stroke
//  4. Axis selection by span and position, grid classification by contrast
//  5. Tick suggestion from perpendicular ink runs along each axis
//
// # Coordinate System
//
// All coordinates use the standard image convention:
//   - Origin (0, 0) at top-left corner
//   - X increases rightward
//   - Y increases downward
//
// Positions are float64 because merged lines sit between pixel rows.
//
// # Limitations
//
// Only axis-aligned axes are supported; rotated scans must be deskewed first.
// Strokes thicker than MergeDistance produce two lines, and the outer one is
// picked as the axis.
package detection
