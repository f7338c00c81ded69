package imaging

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"io"
	"net/http"
	"os"
	"sync"

	_ "golang.org/x/image/bmp"  // Register BMP format decoder
	_ "golang.org/x/image/tiff" // Register TIFF format decoder
	_ "golang.org/x/image/webp" // Register WebP format decoder
)

// maxSourceBytes bounds how much is read from a URL or reader before giving up.
const maxSourceBytes = 256 << 20

// Source describes a decoded image before it becomes a Surface.
type Source struct {
	// Image is the decoded image at its native resolution.
	Image image.Image

	// Format is the decoder name reported by the image registry
	// ("png", "jpeg", "gif", "webp", "bmp", "tiff").
	Format string

	// SizeBytes is the length of the encoded source. It is the baseline for
	// the "percentage change from original" display stat.
	SizeBytes int64
}

// MimeType returns the MIME type matching the decoder that read the source.
func (s *Source) MimeType() string {
	switch s.Format {
	case "png":
		return "image/png"
	case "jpeg":
		return "image/jpeg"
	case "gif":
		return "image/gif"
	case "webp":
		return "image/webp"
	case "bmp":
		return "image/bmp"
	case "tiff":
		return "image/tiff"
	}
	return "application/octet-stream"
}

// Surface returns a fresh Surface holding a copy of the source pixels.
func (s *Source) Surface() *Surface {
	return SurfaceFromImage(s.Image)
}

// Load decodes an image stream. name is only used to label errors.
//
// Any failure, including an empty stream, is returned as a *DecodeError.
func Load(r io.Reader, name string) (*Source, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxSourceBytes+1))
	if err != nil {
		return nil, &DecodeError{Source: name, Err: err}
	}
	if len(data) > maxSourceBytes {
		return nil, &DecodeError{Source: name, Err: fmt.Errorf("source exceeds %d bytes", maxSourceBytes)}
	}
	return LoadBytes(data, name)
}

// LoadBytes decodes an in-memory encoded image.
func LoadBytes(data []byte, name string) (*Source, error) {
	if len(data) == 0 {
		return nil, &DecodeError{Source: name, Err: errors.New("empty image data")}
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, &DecodeError{Source: name, Err: err}
	}
	if img.Bounds().Empty() {
		return nil, &DecodeError{Source: name, Err: errors.New("image has zero area")}
	}
	return &Source{Image: img, Format: format, SizeBytes: int64(len(data))}, nil
}

// LoadFile decodes the image stored at path.
func LoadFile(path string) (*Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &DecodeError{Source: path, Err: err}
	}
	defer f.Close()
	return Load(f, path)
}

// LoadURL fetches and decodes a remote image. A nil client means
// http.DefaultClient. Network failures and non-2xx statuses are decode errors,
// so callers only have one failure shape to present.
func LoadURL(ctx context.Context, client *http.Client, url string) (*Source, error) {
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &DecodeError{Source: url, Err: err}
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, &DecodeError{Source: url, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &DecodeError{Source: url, Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}
	return Load(resp.Body, url)
}

// ImageCache keeps decoded sources keyed by file path so reopening the same
// file skips disk I/O and decoding.
//
// The cache only holds decoded sources. Surfaces are always built from a copy,
// so two sessions opened from the same path never share a pixel buffer.
//
// ImageCache is safe for concurrent use by multiple goroutines.
type ImageCache struct {
	mu      sync.RWMutex
	sources map[string]*Source
}

// NewImageCache creates and initializes a new empty cache.
func NewImageCache() *ImageCache {
	return &ImageCache{
		sources: make(map[string]*Source),
	}
}

// Load returns the cached source for path, decoding it on first use.
//
// Decode failures are not cached, so a corrected file can be retried.
func (c *ImageCache) Load(path string) (*Source, error) {
	c.mu.RLock()
	if src, ok := c.sources[path]; ok {
		c.mu.RUnlock()
		return src, nil
	}
	c.mu.RUnlock()

	src, err := LoadFile(path)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.sources[path] = src
	c.mu.Unlock()

	return src, nil
}

// Evict removes a path from the cache. Unknown paths are ignored.
func (c *ImageCache) Evict(path string) {
	c.mu.Lock()
	delete(c.sources, path)
	c.mu.Unlock()
}

// Clear drops every cached source.
func (c *ImageCache) Clear() {
	c.mu.Lock()
	c.sources = make(map[string]*Source)
	c.mu.Unlock()
}

// Len returns the number of cached sources.
func (c *ImageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.sources)
}
