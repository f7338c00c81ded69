package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
)

// Format is an export encoding. Picking a format only changes how the encode
// step compresses; the surface model is the same for all of them.
type Format int

const (
	// JPEG is lossy and drops alpha.
	JPEG Format = iota
	// PNG is lossless. Quality selects the zlib compression level.
	PNG
	// WebP is lossy with alpha.
	WebP
)

// String returns the lowercase format name.
func (f Format) String() string {
	switch f {
	case JPEG:
		return "jpeg"
	case PNG:
		return "png"
	case WebP:
		return "webp"
	}
	return fmt.Sprintf("format(%d)", int(f))
}

// MimeType returns the MIME type of encoded output.
func (f Format) MimeType() string {
	switch f {
	case JPEG:
		return "image/jpeg"
	case PNG:
		return "image/png"
	case WebP:
		return "image/webp"
	}
	return "application/octet-stream"
}

// ParseFormat maps a name or MIME type ("jpg", "jpeg", "image/png", "webp")
// to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "jpeg", "jpg", "image/jpeg":
		return JPEG, nil
	case "png", "image/png":
		return PNG, nil
	case "webp", "image/webp":
		return WebP, nil
	}
	return 0, fmt.Errorf("unknown export format: %s", s)
}

// Encode writes img in format f at the given quality (0-100).
func Encode(img image.Image, f Format, quality int) ([]byte, error) {
	quality = clampQuality(quality)

	var buf bytes.Buffer
	var err error
	switch f {
	case JPEG:
		err = imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality))
	case PNG:
		err = imaging.Encode(&buf, img, imaging.PNG, imaging.PNGCompressionLevel(pngLevel(quality)))
	case WebP:
		err = webp.Encode(&buf, img, &webp.Options{Quality: float32(quality)})
	default:
		err = fmt.Errorf("unsupported format")
	}
	if err != nil {
		return nil, &EncodeError{Format: f, Err: err}
	}
	if buf.Len() == 0 {
		return nil, &EncodeError{Format: f, Err: fmt.Errorf("encoder produced no bytes")}
	}
	return buf.Bytes(), nil
}

// pngLevel trades speed for size as quality drops. PNG stays lossless at
// every level.
func pngLevel(quality int) png.CompressionLevel {
	switch {
	case quality >= 90:
		return png.BestSpeed
	case quality >= 60:
		return png.DefaultCompression
	}
	return png.BestCompression
}

func clampQuality(q int) int {
	return min(max(q, 1), 100)
}
