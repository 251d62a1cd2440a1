package imaging

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
)

// ErrMalformedInput reports a pixel buffer whose shape or channel layout is
// inconsistent.
var ErrMalformedInput = errors.New("malformed input")

// Channels is the number of interleaved samples per pixel.
type Channels int

const (
	// Gray buffers hold one luminance sample per pixel.
	Gray Channels = 1
	// RGB buffers hold red, green and blue samples per pixel.
	RGB Channels = 3
	// RGBA buffers hold non-premultiplied red, green, blue and alpha samples.
	RGBA Channels = 4
)

// String returns the channel layout name.
func (c Channels) String() string {
	switch c {
	case Gray:
		return "gray"
	case RGB:
		return "rgb"
	case RGBA:
		return "rgba"
	default:
		return fmt.Sprintf("channels(%d)", int(c))
	}
}

// PixelBuffer is a decoded raster image: a row-major grid of 8-bit samples.
//
// The digitization pipeline treats a PixelBuffer as read-only. Every stage
// derives new buffers instead of writing to Pix, so one buffer may be shared
// by concurrent readers.
//
// # Layout
//
// Sample c of pixel (x, y) lives at Pix[(y*Width+x)*Channels+c]. The origin is
// the top-left corner, X grows rightward and Y grows downward.
type PixelBuffer struct {
	// Width is the number of columns.
	Width int

	// Height is the number of rows.
	Height int

	// Channels describes the sample layout of each pixel.
	Channels Channels

	// Pix holds Width*Height*Channels samples.
	Pix []uint8
}

// NewPixelBuffer wraps pix as a buffer and validates its shape.
func NewPixelBuffer(width, height int, channels Channels, pix []uint8) (*PixelBuffer, error) {
	b := &PixelBuffer{Width: width, Height: height, Channels: channels, Pix: pix}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b, nil
}

// Validate checks the buffer dimensions against its sample slice.
//
// All failures wrap ErrMalformedInput.
func (b *PixelBuffer) Validate() error {
	if b == nil {
		return fmt.Errorf("%w: nil buffer", ErrMalformedInput)
	}
	if b.Width <= 0 || b.Height <= 0 {
		return fmt.Errorf("%w: invalid dimensions %dx%d", ErrMalformedInput, b.Width, b.Height)
	}
	switch b.Channels {
	case Gray, RGB, RGBA:
	default:
		return fmt.Errorf("%w: unsupported channel count %d", ErrMalformedInput, int(b.Channels))
	}
	// Image expands every buffer to four samples per pixel.
	if b.Height > math.MaxInt/4/b.Width {
		return fmt.Errorf("%w: dimensions %dx%d overflow", ErrMalformedInput, b.Width, b.Height)
	}
	want := b.Width * b.Height * int(b.Channels)
	if len(b.Pix) != want {
		return fmt.Errorf("%w: %s buffer %dx%d needs %d samples, got %d",
			ErrMalformedInput, b.Channels, b.Width, b.Height, want, len(b.Pix))
	}
	return nil
}

// IsColor reports whether the buffer carries color channels.
func (b *PixelBuffer) IsColor() bool {
	return b.Channels != Gray
}

// At returns the color of pixel (x, y). No bounds checking is performed.
func (b *PixelBuffer) At(x, y int) color.NRGBA {
	i := (y*b.Width + x) * int(b.Channels)
	switch b.Channels {
	case Gray:
		v := b.Pix[i]
		return color.NRGBA{R: v, G: v, B: v, A: 255}
	case RGB:
		return color.NRGBA{R: b.Pix[i], G: b.Pix[i+1], B: b.Pix[i+2], A: 255}
	default:
		return color.NRGBA{R: b.Pix[i], G: b.Pix[i+1], B: b.Pix[i+2], A: b.Pix[i+3]}
	}
}

// Image returns a standard library view of the buffer.
//
// Gray and RGBA buffers share Pix with the returned image; callers must not
// draw into it. RGB buffers are expanded into a new NRGBA image.
func (b *PixelBuffer) Image() image.Image {
	rect := image.Rect(0, 0, b.Width, b.Height)
	switch b.Channels {
	case Gray:
		return &image.Gray{Pix: b.Pix, Stride: b.Width, Rect: rect}
	case RGBA:
		return &image.NRGBA{Pix: b.Pix, Stride: b.Width * 4, Rect: rect}
	default:
		img := image.NewNRGBA(rect)
		for i, j := 0, 0; i < len(b.Pix); i, j = i+3, j+4 {
			img.Pix[j] = b.Pix[i]
			img.Pix[j+1] = b.Pix[i+1]
			img.Pix[j+2] = b.Pix[i+2]
			img.Pix[j+3] = 255
		}
		return img
	}
}

// FromImage copies any image.Image into an RGBA PixelBuffer, or a Gray
// buffer when the source is grayscale.
//
// The result is re-based so that the source's Bounds().Min becomes (0, 0).
func FromImage(img image.Image) *PixelBuffer {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	if g, ok := img.(*image.Gray); ok {
		pix := make([]uint8, w*h)
		for y := 0; y < h; y++ {
			off := g.PixOffset(bounds.Min.X, bounds.Min.Y+y)
			copy(pix[y*w:(y+1)*w], g.Pix[off:off+w])
		}
		return &PixelBuffer{Width: w, Height: h, Channels: Gray, Pix: pix}
	}

	pix := make([]uint8, w*h*4)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.NRGBAModel.Convert(img.At(x+bounds.Min.X, y+bounds.Min.Y)).(color.NRGBA)
			i := (y*w + x) * 4
			pix[i] = c.R
			pix[i+1] = c.G
			pix[i+2] = c.B
			pix[i+3] = c.A
		}
	}
	return &PixelBuffer{Width: w, Height: h, Channels: RGBA, Pix: pix}
}
