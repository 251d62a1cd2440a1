package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"math"
)

// EdgeDetectResult contains an edge-detected image encoded as base64 PNG.
//
// The result is a grayscale image where white pixels (255) represent detected
// edges and black pixels (0) represent non-edges.
type EdgeDetectResult struct {
	// Width of the output image in pixels (same as input).
	Width int `json:"width"`

	// Height of the output image in pixels (same as input).
	Height int `json:"height"`

	// EdgePixels is the number of pixels in the edge mask.
	EdgePixels int `json:"edge_pixels"`

	// ImageBase64 is the edge image encoded as base64 PNG.
	ImageBase64 string `json:"image_base64"`

	// MimeType is always "image/png" for edge detection results.
	MimeType string `json:"mime_type"`
}

// EdgeDetect runs the preprocessor on buf and renders its edge mask.
//
// This is the diagnostic view of what the axis locator sees. Recommended
// thresholds:
//   - Clean rendered charts: 50/150
//   - Scans and photographs: 100/200
//   - Noisy JPEG exports: 75/175
func EdgeDetect(buf *PixelBuffer, opts PreprocessOptions) (*EdgeDetectResult, error) {
	pre, err := Preprocess(buf, opts)
	if err != nil {
		return nil, err
	}

	result := image.NewGray(image.Rect(0, 0, pre.Width, pre.Height))
	for i, e := range pre.Edges {
		if e {
			result.Pix[i] = 255
		}
	}

	var out bytes.Buffer
	if err := png.Encode(&out, result); err != nil {
		return nil, fmt.Errorf("failed to encode edge image: %w", err)
	}

	return &EdgeDetectResult{
		Width:       pre.Width,
		Height:      pre.Height,
		EdgePixels:  pre.EdgeCount(),
		ImageBase64: base64.StdEncoding.EncodeToString(out.Bytes()),
		MimeType:    "image/png",
	}, nil
}

var (
	sobelX = [3][3]float64{
		{-1, 0, 1},
		{-2, 0, 2},
		{-1, 0, 1},
	}
	sobelY = [3][3]float64{
		{-1, -2, -1},
		{0, 0, 0},
		{1, 2, 1},
	}
)

// detectEdges performs the gradient, suppression and hysteresis stages of
// Canny edge detection on a smoothed luminance buffer.
//
// Returns the raw Sobel magnitude (before suppression) and the binary mask.
//
// # Hysteresis
//
//   - Pixels above thresholdHigh are strong edges (always kept)
//   - Pixels between thresholdLow and thresholdHigh are weak edges, kept only
//     when 8-connected through other weak edges to a strong edge
//   - Pixels below thresholdLow are discarded
func detectEdges(img []float64, width, height, thresholdLow, thresholdHigh int) ([]float64, []bool) {
	n := width * height
	magnitude := make([]float64, n)
	direction := make([]float64, n)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var gx, gy float64
			for ky := -1; ky <= 1; ky++ {
				for kx := -1; kx <= 1; kx++ {
					py := clamp(y+ky, 0, height-1)
					px := clamp(x+kx, 0, width-1)
					v := img[py*width+px]
					gx += v * sobelX[ky+1][kx+1]
					gy += v * sobelY[ky+1][kx+1]
				}
			}
			i := y*width + x
			magnitude[i] = math.Sqrt(gx*gx + gy*gy)
			direction[i] = math.Atan2(gy, gx)
		}
	}

	// Non-maximum suppression
	suppressed := make([]float64, n)
	for y := 1; y < height-1; y++ {
		for x := 1; x < width-1; x++ {
			i := y*width + x
			mag := magnitude[i]
			if mag == 0 {
				continue
			}
			angle := direction[i]

			var n1, n2 float64
			switch {
			case (angle >= -math.Pi/8 && angle < math.Pi/8) || angle >= 7*math.Pi/8 || angle < -7*math.Pi/8:
				n1 = magnitude[i-1]
				n2 = magnitude[i+1]
			case (angle >= math.Pi/8 && angle < 3*math.Pi/8) || (angle >= -7*math.Pi/8 && angle < -5*math.Pi/8):
				n1 = magnitude[i-width-1]
				n2 = magnitude[i+width+1]
			case (angle >= 3*math.Pi/8 && angle < 5*math.Pi/8) || (angle >= -5*math.Pi/8 && angle < -3*math.Pi/8):
				n1 = magnitude[i-width]
				n2 = magnitude[i+width]
			default:
				n1 = magnitude[i-width+1]
				n2 = magnitude[i+width-1]
			}

			// Ties on a plateau keep the first pixel only.
			if mag > n1 && mag >= n2 {
				suppressed[i] = mag
			}
		}
	}

	lowThresh := float64(thresholdLow) / 255.0
	highThresh := float64(thresholdHigh) / 255.0

	edges := make([]bool, n)
	stack := make([]int, 0, 64)
	for i, v := range suppressed {
		if v >= highThresh && !edges[i] {
			edges[i] = true
			stack = append(stack, i)
		}
		for len(stack) > 0 {
			j := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			jx, jy := j%width, j/width
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					nx, ny := jx+dx, jy+dy
					if nx < 0 || ny < 0 || nx >= width || ny >= height {
						continue
					}
					k := ny*width + nx
					if !edges[k] && suppressed[k] >= lowThresh {
						edges[k] = true
						stack = append(stack, k)
					}
				}
			}
		}
	}

	return magnitude, edges
}

// clamp constrains an integer value to the range [lo, hi].
// Used for boundary handling in convolution operations.
func clamp(val, lo, hi int) int {
	if val < lo {
		return lo
	}
	if val > hi {
		return hi
	}
	return val
}
