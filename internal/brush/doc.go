// Package brush turns strokes in source-pixel space into pixel edits on an
// imaging.Surface.
//
// A stroke is Begin, one or more Extend calls, then End. Paint, Erase and Blur
// write to the surface on every Extend so the host can show live feedback;
// Arrow and DoubleArrow only record points and draw at End; Stamp draws its
// glyph on the first point.
//
// # Per-point Operations
//
//   - Paint: anti-aliased disc, consecutive points joined by a swept disc of
//     the same radius, composited source-over
//   - Erase: same geometry, destination-out (alpha goes to zero)
//   - Blur: same geometry, copying from a blurred copy of the surface taken
//     when the stroke began
//   - Arrow, DoubleArrow: shaft plus triangular head(s), sized from the radius
//   - Stamp: a glyph 2*radius pixels tall centered on the point
//
// # Bounds
//
// Every mask is clamped to the surface before any pixel is touched. A dab that
// clamps to nothing is a no-op, not an error, since fast pointer movement near
// the edge produces them routinely.
package brush
