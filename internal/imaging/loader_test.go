package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"golang.org/x/image/bmp"
)

func TestDecode_Formats(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 8, 6))
	for y := 0; y < 6; y++ {
		for x := 0; x < 8; x++ {
			src.Set(x, y, color.RGBA{200, 40, 40, 255})
		}
	}

	var bmpData, jpegData bytes.Buffer
	if err := bmp.Encode(&bmpData, src); err != nil {
		t.Fatalf("bmp encode: %v", err)
	}
	if err := jpeg.Encode(&jpegData, src, nil); err != nil {
		t.Fatalf("jpeg encode: %v", err)
	}

	tests := []struct {
		name   string
		data   []byte
		format string
	}{
		{"bmp", bmpData.Bytes(), "bmp"},
		{"jpeg", jpegData.Bytes(), "jpeg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf, format, err := Decode(bytes.NewReader(tt.data))
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if format != tt.format {
				t.Errorf("format: got %s, want %s", format, tt.format)
			}
			if buf.Width != 8 || buf.Height != 6 {
				t.Errorf("dimensions: got %dx%d, want 8x6", buf.Width, buf.Height)
			}
		})
	}
}

func TestDecode_Garbage(t *testing.T) {
	if _, _, err := Decode(bytes.NewReader([]byte("not an image"))); err == nil {
		t.Error("Decode should fail on garbage input")
	}
}

func TestImageCache_Load(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 20, 10))
	path := writePNG(t, "plot.png", img)

	cache := NewImageCache()
	buf1, err := cache.Load(path)
	if err != nil {
		t.Fatalf("first Load: %v", err)
	}
	buf2, err := cache.Load(path)
	if err != nil {
		t.Fatalf("second Load: %v", err)
	}
	if buf1 != buf2 {
		t.Error("second Load should return the cached buffer")
	}
	if cache.Len() != 1 {
		t.Errorf("Len: got %d, want 1", cache.Len())
	}

	cache.Evict(path)
	if cache.Len() != 0 {
		t.Errorf("Len after Evict: got %d, want 0", cache.Len())
	}

	if _, err := cache.Load(path); err != nil {
		t.Fatalf("Load after Evict: %v", err)
	}
	cache.Clear()
	if cache.Len() != 0 {
		t.Errorf("Len after Clear: got %d, want 0", cache.Len())
	}
}

func TestImageCache_LoadMissing(t *testing.T) {
	cache := NewImageCache()
	if _, err := cache.Load(filepath.Join(t.TempDir(), "missing.png")); err == nil {
		t.Error("Load should fail for a missing file")
	}
	if cache.Len() != 0 {
		t.Error("failed loads must not be cached")
	}
}

func TestImageCache_Concurrent(t *testing.T) {
	path := writePNG(t, "plot.png", image.NewGray(image.Rect(0, 0, 16, 16)))
	cache := NewImageCache()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := cache.Load(path); err != nil {
				t.Errorf("concurrent Load: %v", err)
			}
		}()
	}
	wg.Wait()

	if cache.Len() != 1 {
		t.Errorf("Len: got %d, want 1", cache.Len())
	}
}

func TestLoadImageInfo(t *testing.T) {
	path := writePNG(t, "gray.png", image.NewGray(image.Rect(0, 0, 30, 12)))

	info, err := LoadImageInfo(NewImageCache(), path)
	if err != nil {
		t.Fatalf("LoadImageInfo: %v", err)
	}

	stat, _ := os.Stat(path)
	if info.Width != 30 || info.Height != 12 {
		t.Errorf("dimensions: got %dx%d, want 30x12", info.Width, info.Height)
	}
	if info.Format != "png" {
		t.Errorf("format: got %s, want png", info.Format)
	}
	if info.Channels != "gray" {
		t.Errorf("channels: got %s, want gray", info.Channels)
	}
	if info.FileSizeBytes != stat.Size() {
		t.Errorf("size: got %d, want %d", info.FileSizeBytes, stat.Size())
	}
}
