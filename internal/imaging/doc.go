// Package imaging provides the pixel-level core of the editor: the mutable
// Surface, decoding sources into surfaces, mapping pointer coordinates into
// source pixels, crop and resize, encoding, and the size-budgeted export
// search.
//
// # Coordinate System
//
// All pixel coordinates in this package are 0-based source pixels:
//   - X: horizontal position (0 = leftmost pixel)
//   - Y: vertical position (0 = topmost pixel)
//   - Regions are origin plus size; the origin is inclusive and
//     (X+Width, Y+Height) is exclusive
//
// Pointer positions measured on screen go through a Mapper first. Brush sizes
// and regions are always expressed in source pixels, so they do not depend on
// zoom or display scale.
//
// # Pixel Format
//
// Surfaces hold non-premultiplied RGBA (image.NRGBA) with a tight stride:
// the buffer length is always width*height*4.
//
// # Error Handling
//
// Only unrecoverable conditions are errors:
//   - *DecodeError: a source could not be read or decoded
//   - *EncodeError: an export produced no bytes
//   - ErrContextUnavailable: no surface to draw on
//
// Out-of-range regions and sizes are clamped instead. A crop that clamps to
// zero area is a silent no-op.
//
// # Thread Safety
//
// ImageCache is safe for concurrent use. Surfaces are not; the editing
// session that owns a surface serializes every mutation.
package imaging
