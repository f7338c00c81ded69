package imaging

import (
	"context"
	"image"

	"github.com/anthonynsimon/bild/effect"
	"github.com/disintegration/imaging"
)

// Export search tuning. Quality is on a 0-100 scale.
const (
	// QualityFloor stops the search: once quality is this low, the result is
	// returned whatever its size.
	QualityFloor = 30

	// QualityStep is how much quality drops per attempt.
	QualityStep = 15

	// DefaultMaxAttempts bounds the number of encodes per export.
	DefaultMaxAttempts = 5

	// DefaultQuality is used when a caller passes no quality.
	DefaultQuality = 92

	// shrinkAfterAttempts is the attempt count after which oversized results
	// also shrink dimensions.
	shrinkAfterAttempts = 2

	// shrinkOverBudget is how far over budget a result must be before
	// dimensions shrink too.
	shrinkOverBudget = 1.5

	// shrinkFactor scales both dimensions on every shrinking step.
	shrinkFactor = 0.8
)

// ExportOptions configures ExportWithBudget.
type ExportOptions struct {
	Format Format

	// Quality is the starting quality, 1-100. Zero means DefaultQuality.
	Quality int

	// TargetBytes is the size budget. Zero or negative means no budget, so
	// the first encode is returned.
	TargetBytes int

	// MaxAttempts caps the number of encodes. Zero means DefaultMaxAttempts.
	MaxAttempts int

	// Grayscale drops color before encoding ("maximum compression, color not
	// required"). The filter runs on a copy and never touches the surface.
	Grayscale bool
}

// ExportResult is one encoded artifact. It is independent of the live surface
// and of history.
type ExportResult struct {
	Data      []byte `json:"-"`
	Format    Format `json:"-"`
	MimeType  string `json:"mime_type"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	SizeBytes int    `json:"size_bytes"`
	Quality   int    `json:"quality"`
	Attempts  int    `json:"attempts"`
	MetTarget bool   `json:"met_target"`
}

// ExportWithBudget re-encodes s at decreasing quality, and later at decreasing
// dimensions, until the output fits opts.TargetBytes.
//
// # Algorithm
//
//  1. Encode at the current quality and size.
//  2. Stop if the output fits the budget, quality is at QualityFloor, or
//     MaxAttempts encodes have run. The last encode is always returned, so the
//     loop never fails to produce a result.
//  3. Lower quality by QualityStep (not below QualityFloor).
//  4. From the second attempt on, if the output is still more than 1.5x the
//     budget, also shrink both dimensions by 20%. Shrinking compounds and is
//     never undone within one export.
//
// Attempts run strictly one after another. ctx is checked between attempts.
//
// An encode failure returns an *EncodeError and no partial result.
func ExportWithBudget(ctx context.Context, s *Surface, opts ExportOptions) (*ExportResult, error) {
	if s == nil {
		return nil, ErrContextUnavailable
	}
	quality := opts.Quality
	if quality <= 0 {
		quality = DefaultQuality
	}
	quality = clampQuality(quality)
	maxAttempts := opts.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}

	base := image.Image(s.img)
	if opts.Grayscale {
		base = effect.Grayscale(s.img)
	}

	width, height := s.Width(), s.Height()
	current := base

	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		data, err := Encode(current, opts.Format, quality)
		if err != nil {
			return nil, err
		}

		size := len(data)
		fits := opts.TargetBytes <= 0 || size <= opts.TargetBytes
		if fits || quality <= QualityFloor || attempt >= maxAttempts {
			return &ExportResult{
				Data:      data,
				Format:    opts.Format,
				MimeType:  opts.Format.MimeType(),
				Width:     width,
				Height:    height,
				SizeBytes: size,
				Quality:   quality,
				Attempts:  attempt,
				MetTarget: fits,
			}, nil
		}

		quality = max(quality-QualityStep, QualityFloor)

		if attempt >= shrinkAfterAttempts && float64(size) > shrinkOverBudget*float64(opts.TargetBytes) {
			width, height = scaleDimensions(width, height, shrinkFactor)
			current = imaging.Resize(base, width, height, imaging.Lanczos)
		}
	}
}
