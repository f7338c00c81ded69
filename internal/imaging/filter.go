package imaging

import (
	"fmt"
	"image"
	"strings"

	"github.com/anthonynsimon/bild/blur"
	"github.com/disintegration/imaging"
)

// BlurKernel selects the convolution used to build a blurred copy.
type BlurKernel int

const (
	// GaussianKernel uses Strength as the Gaussian sigma.
	GaussianKernel BlurKernel = iota
	// BoxKernel uses Strength as the box radius.
	BoxKernel
)

func (k BlurKernel) String() string {
	if k == BoxKernel {
		return "box"
	}
	return "gaussian"
}

// ParseBlurKernel maps "gaussian" or "box" to a kernel. Empty means Gaussian.
func ParseBlurKernel(s string) (BlurKernel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "gaussian":
		return GaussianKernel, nil
	case "box":
		return BoxKernel, nil
	}
	return 0, fmt.Errorf("unknown blur kernel: %s", s)
}

// BlurredCopy returns a blurred copy of the whole surface with the same
// bounds. The surface itself is not modified.
func BlurredCopy(s *Surface, k BlurKernel, strength float64) *image.NRGBA {
	if k == BoxKernel {
		return imaging.Clone(blur.Box(s.img, strength))
	}
	return imaging.Blur(s.img, strength)
}
