package cv

import (
	"fmt"
	"image"

	"github.com/kbinani/screenshot"
	"github.com/nfnt/resize"
)

// Capturer grabs a region of the live screen and returns it rescaled so one
// frame pixel matches one reference-image pixel
type Capturer interface {
	Capture(region image.Rectangle, scale float64) (*image.RGBA, error)
}

// CapturerFunc adapts a function to the Capturer interface
type CapturerFunc func(region image.Rectangle, scale float64) (*image.RGBA, error)

// Capture calls f
func (f CapturerFunc) Capture(region image.Rectangle, scale float64) (*image.RGBA, error) {
	return f(region, scale)
}

// ScreenCapturer captures from the desktop
type ScreenCapturer struct{}

// NewScreenCapturer creates a desktop capturer
func NewScreenCapturer() *ScreenCapturer {
	return &ScreenCapturer{}
}

// Capture grabs region from the screen and resizes it by 1/scale
func (s *ScreenCapturer) Capture(region image.Rectangle, scale float64) (*image.RGBA, error) {
	if region.Empty() {
		return nil, fmt.Errorf("empty capture region %v", region)
	}

	img, err := screenshot.CaptureRect(region)
	if err != nil {
		return nil, fmt.Errorf("failed to capture region %v: %w", region, err)
	}

	return Rescale(img, scale)
}

// Rescale resizes img to its size divided by scale using nearest-neighbor
// sampling. Smoothing would blend icon edges and break template matching.
func Rescale(img image.Image, scale float64) (*image.RGBA, error) {
	if scale <= 0 {
		return nil, fmt.Errorf("invalid scale %v", scale)
	}
	if scale == 1 {
		return ToRGBA(img), nil
	}

	b := img.Bounds()
	width := uint(float64(b.Dx()) / scale)
	height := uint(float64(b.Dy()) / scale)
	if width == 0 || height == 0 {
		return nil, fmt.Errorf("scale %v collapses %dx%d frame", scale, b.Dx(), b.Dy())
	}

	return ToRGBA(resize.Resize(width, height, img, resize.NearestNeighbor)), nil
}
