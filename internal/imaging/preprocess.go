package imaging

import (
	"image"
	"image/color"
	"math"

	"github.com/anthonynsimon/bild/blur"
	"github.com/disintegration/imaging"
)

// PreprocessOptions configures normalization and edge detection.
type PreprocessOptions struct {
	// SmoothingRadius is the Gaussian blur radius in pixels applied before
	// edge detection. Zero or negative disables smoothing.
	SmoothingRadius float64

	// EdgeThresholdLow is the hysteresis low threshold on the 0-255 scale.
	EdgeThresholdLow int

	// EdgeThresholdHigh is the hysteresis high threshold on the 0-255 scale.
	EdgeThresholdHigh int
}

// DefaultPreprocessOptions returns the thresholds used by the digitizer:
// a 2 px blur and Canny thresholds 50/150.
func DefaultPreprocessOptions() PreprocessOptions {
	return PreprocessOptions{
		SmoothingRadius:   2,
		EdgeThresholdLow:  50,
		EdgeThresholdHigh: 150,
	}
}

// Preprocessed holds the derived views of one PixelBuffer.
//
// All float buffers are row-major with Width*Height entries. Luminance values
// are in [0, 1] where 0 is black.
type Preprocessed struct {
	Width  int
	Height int

	// Color is the source flattened onto a white background. It is the input
	// buffer itself when the source is fully opaque.
	Color *PixelBuffer

	// Gray is the contrast-normalized luminance before smoothing.
	Gray []float64

	// Smoothed is Gray after the Gaussian blur.
	Smoothed []float64

	// Magnitude is the Sobel gradient magnitude of Smoothed.
	Magnitude []float64

	// Edges is the thinned, hysteresis-thresholded edge mask.
	Edges []bool
}

// GrayAt returns the normalized luminance at (x, y).
func (p *Preprocessed) GrayAt(x, y int) float64 {
	return p.Gray[y*p.Width+x]
}

// EdgeAt reports whether (x, y) is an edge pixel. Out-of-range coordinates
// are never edges.
func (p *Preprocessed) EdgeAt(x, y int) bool {
	if x < 0 || y < 0 || x >= p.Width || y >= p.Height {
		return false
	}
	return p.Edges[y*p.Width+x]
}

// EdgeCount returns the number of edge pixels.
func (p *Preprocessed) EdgeCount() int {
	n := 0
	for _, e := range p.Edges {
		if e {
			n++
		}
	}
	return n
}

// Preprocess normalizes buf and computes its edge views.
//
// # Algorithm
//
//  1. Flatten translucent pixels onto white.
//  2. Grayscale conversion with ITU-R BT.601 weights (0.299R + 0.587G + 0.114B).
//  3. Contrast stretch between the 0.05th and 99.95th luminance percentiles.
//  4. Gaussian blur with SmoothingRadius.
//  5. Sobel gradients, non-maximum suppression and hysteresis thresholding
//     on the blurred luminance.
//
// The only failure is ErrMalformedInput from buffer validation.
func Preprocess(buf *PixelBuffer, opts PreprocessOptions) (*Preprocessed, error) {
	if err := buf.Validate(); err != nil {
		return nil, err
	}

	w, h := buf.Width, buf.Height
	flat := flatten(buf)

	var grayImg *image.NRGBA
	if flat.IsColor() {
		grayImg = imaging.Grayscale(flat.Image())
	} else {
		grayImg = imaging.Clone(flat.Image())
	}

	raw := make([]uint8, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			raw[y*w+x] = grayImg.Pix[y*grayImg.Stride+x*4]
		}
	}
	gray := stretchContrast(raw)

	smoothed := gray
	if opts.SmoothingRadius > 0 {
		smoothed = gaussianSmooth(gray, w, h, opts.SmoothingRadius)
	}

	magnitude, edges := detectEdges(smoothed, w, h, opts.EdgeThresholdLow, opts.EdgeThresholdHigh)

	return &Preprocessed{
		Width:     w,
		Height:    h,
		Color:     flat,
		Gray:      gray,
		Smoothed:  smoothed,
		Magnitude: magnitude,
		Edges:     edges,
	}, nil
}

// flatten composites translucent pixels onto white so transparent plot
// backgrounds read as paper, not black.
func flatten(buf *PixelBuffer) *PixelBuffer {
	if buf.Channels != RGBA {
		return buf
	}
	opaque := true
	for i := 3; i < len(buf.Pix); i += 4 {
		if buf.Pix[i] != 255 {
			opaque = false
			break
		}
	}
	if opaque {
		return buf
	}

	bg := imaging.New(buf.Width, buf.Height, color.White)
	out := imaging.Overlay(bg, buf.Image(), image.Pt(0, 0), 1.0)
	return &PixelBuffer{Width: buf.Width, Height: buf.Height, Channels: RGBA, Pix: out.Pix}
}

// stretchContrast maps 8-bit luminance to [0, 1], stretching the range
// between the low and high tail percentiles. Uniform images are only scaled.
func stretchContrast(raw []uint8) []float64 {
	var hist [256]int
	for _, v := range raw {
		hist[v]++
	}

	tail := int(math.Ceil(float64(len(raw)) * 0.0005))
	lo, hi := 0, 255
	for acc := 0; lo < 255; lo++ {
		acc += hist[lo]
		if acc > tail {
			break
		}
	}
	for acc := 0; hi > 0; hi-- {
		acc += hist[hi]
		if acc > tail {
			break
		}
	}

	out := make([]float64, len(raw))
	if hi <= lo {
		for i, v := range raw {
			out[i] = float64(v) / 255.0
		}
		return out
	}

	span := float64(hi - lo)
	for i, v := range raw {
		f := (float64(v) - float64(lo)) / span
		out[i] = math.Max(0, math.Min(1, f))
	}
	return out
}

// gaussianSmooth blurs a luminance buffer with bild's separable Gaussian.
func gaussianSmooth(gray []float64, w, h int, radius float64) []float64 {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i, v := range gray {
		img.Pix[i] = uint8(math.Round(v * 255))
	}

	blurred := blur.Gaussian(img, radius)

	out := make([]float64, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			out[y*w+x] = float64(blurred.Pix[y*blurred.Stride+x*4]) / 255.0
		}
	}
	return out
}
