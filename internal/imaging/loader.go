package imaging

import (
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"io"
	"os"
	"sync"

	_ "golang.org/x/image/bmp"  // Register BMP format decoder
	_ "golang.org/x/image/tiff" // Register TIFF format decoder
)

// Decode reads an encoded image and converts it into a PixelBuffer.
//
// Supported formats are PNG, JPEG, GIF, BMP and TIFF. The returned string is
// the format name reported by the decoder.
func Decode(r io.Reader) (*PixelBuffer, string, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}
	return FromImage(img), format, nil
}

// ImageCache provides thread-safe caching of decoded plot images to avoid
// redundant disk reads.
//
// The cache stores PixelBuffers keyed by their file path. Buffers are never
// mutated by the pipeline, so a cached buffer can be handed to concurrent
// digitization runs.
//
// Cached buffers remain in memory until explicitly removed via Evict() or
// Clear().
type ImageCache struct {
	mu      sync.RWMutex
	buffers map[string]*cachedBuffer
}

type cachedBuffer struct {
	buf    *PixelBuffer
	format string
}

// NewImageCache creates and initializes a new empty image cache.
func NewImageCache() *ImageCache {
	return &ImageCache{
		buffers: make(map[string]*cachedBuffer),
	}
}

// Load retrieves a buffer from the cache or decodes it from disk if not cached.
//
// The buffer is cached using the exact path string provided. Different paths to
// the same file (e.g., relative vs absolute) result in separate cache entries.
func (c *ImageCache) Load(path string) (*PixelBuffer, error) {
	entry, err := c.load(path)
	if err != nil {
		return nil, err
	}
	return entry.buf, nil
}

func (c *ImageCache) load(path string) (*cachedBuffer, error) {
	c.mu.RLock()
	if entry, ok := c.buffers[path]; ok {
		c.mu.RUnlock()
		return entry, nil
	}
	c.mu.RUnlock()

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	buf, format, err := Decode(f)
	if err != nil {
		return nil, err
	}

	entry := &cachedBuffer{buf: buf, format: format}
	c.mu.Lock()
	c.buffers[path] = entry
	c.mu.Unlock()

	return entry, nil
}

// Clear removes all buffers from the cache.
func (c *ImageCache) Clear() {
	c.mu.Lock()
	c.buffers = make(map[string]*cachedBuffer)
	c.mu.Unlock()
}

// Evict removes a specific buffer from the cache by its path.
//
// If the path is not in the cache, this method does nothing.
func (c *ImageCache) Evict(path string) {
	c.mu.Lock()
	delete(c.buffers, path)
	c.mu.Unlock()
}

// Len returns the number of cached buffers.
func (c *ImageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.buffers)
}

// ImageInfo contains metadata about a loaded plot image.
type ImageInfo struct {
	// Width is the image width in pixels.
	Width int `json:"width"`

	// Height is the image height in pixels.
	Height int `json:"height"`

	// Format is the decoder's format name, e.g. "png" or "jpeg".
	Format string `json:"format"`

	// Channels is the buffer layout: "gray" or "rgba".
	Channels string `json:"channels"`

	// FileSizeBytes is the size of the image file on disk in bytes.
	FileSizeBytes int64 `json:"file_size_bytes"`
}

// LoadImageInfo loads an image into the cache and returns its metadata.
func LoadImageInfo(cache *ImageCache, path string) (*ImageInfo, error) {
	entry, err := cache.load(path)
	if err != nil {
		return nil, err
	}

	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	return &ImageInfo{
		Width:         entry.buf.Width,
		Height:        entry.buf.Height,
		Format:        entry.format,
		Channels:      entry.buf.Channels.String(),
		FileSizeBytes: stat.Size(),
	}, nil
}
