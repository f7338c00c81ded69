package imaging

import (
	"math"
)

// PreviewQuality is the quality used to estimate the encoded size shown to
// users while editing.
const PreviewQuality = 80

// Stats is derived display state for presentation layers: current
// dimensions, estimated encoded size, and change relative to the source.
//
// Stats are never authoritative. They are recomputed from the surface every
// time and must not be stored as a second source of truth.
type Stats struct {
	Width          int     `json:"width"`
	Height         int     `json:"height"`
	OriginalWidth  int     `json:"original_width"`
	OriginalHeight int     `json:"original_height"`
	EstimatedBytes int     `json:"estimated_bytes"`
	OriginalBytes  int64   `json:"original_bytes"`
	PercentChange  float64 `json:"percent_change"`
	Format         string  `json:"format"`
}

// Baseline is what Stats compares the current surface against.
type Baseline struct {
	Width, Height int
	SizeBytes     int64
}

// ComputeStats encodes s at PreviewQuality in format f to estimate its size.
//
// PercentChange is (estimated - original) / original * 100, rounded to one
// decimal. It is 0 when the original size is unknown.
func ComputeStats(s *Surface, base Baseline, f Format) (*Stats, error) {
	data, err := Encode(s.img, f, PreviewQuality)
	if err != nil {
		return nil, err
	}

	var change float64
	if base.SizeBytes > 0 {
		change = (float64(len(data)) - float64(base.SizeBytes)) / float64(base.SizeBytes) * 100
		change = math.Round(change*10) / 10
	}

	return &Stats{
		Width:          s.Width(),
		Height:         s.Height(),
		OriginalWidth:  base.Width,
		OriginalHeight: base.Height,
		EstimatedBytes: len(data),
		OriginalBytes:  base.SizeBytes,
		PercentChange:  change,
		Format:         f.String(),
	}, nil
}
