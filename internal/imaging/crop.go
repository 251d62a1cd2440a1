package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"

	"github.com/disintegration/imaging"
)

// CropResult contains the cropped region as a base64 PNG.
type CropResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// Crop extracts the region [x1,x2)x[y1,y2) of buf, optionally scaled.
//
// Tick labels are not read by the digitizer, so clients use enlarged crops of
// the axis margins to read them and pass the values back as calibration
// points.
func Crop(buf *PixelBuffer, x1, y1, x2, y2 int, scale float64) (*CropResult, error) {
	if err := buf.Validate(); err != nil {
		return nil, err
	}
	if x1 < 0 || y1 < 0 || x2 > buf.Width || y2 > buf.Height {
		return nil, fmt.Errorf("crop region (%d,%d)-(%d,%d) outside image bounds (0,0)-(%d,%d)",
			x1, y1, x2, y2, buf.Width, buf.Height)
	}
	if x1 >= x2 || y1 >= y2 {
		return nil, fmt.Errorf("invalid crop region: x1 must be < x2, y1 must be < y2")
	}

	cropped := imaging.Crop(flatten(buf).Image(), image.Rect(x1, y1, x2, y2))

	if scale != 1.0 && scale > 0 {
		newWidth := int(float64(cropped.Bounds().Dx()) * scale)
		newHeight := int(float64(cropped.Bounds().Dy()) * scale)
		if newWidth < 1 || newHeight < 1 {
			return nil, fmt.Errorf("scale %.3f collapses the region", scale)
		}
		cropped = imaging.Resize(cropped, newWidth, newHeight, imaging.Lanczos)
	}

	var out bytes.Buffer
	if err := png.Encode(&out, cropped); err != nil {
		return nil, fmt.Errorf("failed to encode cropped image: %w", err)
	}

	return &CropResult{
		Width:       cropped.Bounds().Dx(),
		Height:      cropped.Bounds().Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(out.Bytes()),
		MimeType:    "image/png",
	}, nil
}

// CropMargin extracts one of the label margins around a plot area: the strip
// left of the y axis, the strip below the x axis, or the area above the plot
// where titles and legends usually sit.
//
// axisX and axisY are the pixel positions of the y and x axis lines.
func CropMargin(buf *PixelBuffer, margin string, axisX, axisY int, scale float64) (*CropResult, error) {
	if err := buf.Validate(); err != nil {
		return nil, err
	}
	w, h := buf.Width, buf.Height
	axisX = clamp(axisX, 1, w-1)
	axisY = clamp(axisY, 1, h-1)

	var x1, y1, x2, y2 int
	switch margin {
	case "left":
		x1, y1, x2, y2 = 0, 0, axisX, h
	case "bottom":
		x1, y1, x2, y2 = 0, axisY, w, h
	case "plot":
		x1, y1, x2, y2 = axisX, 0, w, axisY
	default:
		return nil, fmt.Errorf("unknown margin: %s", margin)
	}

	return Crop(buf, x1, y1, x2, y2, scale)
}
