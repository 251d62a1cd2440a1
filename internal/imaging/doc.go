// Package imaging turns raster chart images into the buffers the digitizer
// works on.
//
// It owns the PixelBuffer type, decoding of PNG, JPEG, GIF, BMP and TIFF
// files (with an optional path-keyed cache), and the preprocessing stage:
// grayscale conversion, contrast stretch, Gaussian smoothing and Canny-style
// edge detection. It also renders the diagnostic images served to clients:
// edge masks, crops of the label margins and the digitization overlay.
//
// # Coordinate System
//
// All pixel coordinates in this package are 0-based:
//   - X: horizontal position (0 = leftmost pixel)
//   - Y: vertical position (0 = topmost pixel)
//   - For regions, (x1,y1) is inclusive (top-left), (x2,y2) is exclusive (bottom-right)
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. PixelBuffers are never
// modified after construction, so the same buffer may be preprocessed or
// rendered from several goroutines at once.
//
// # Error Handling
//
// Buffers with inconsistent dimensions or channel layouts fail with an error
// wrapping ErrMalformedInput. Decoding, file and encoding failures are
// returned as wrapped errors.
package imaging
