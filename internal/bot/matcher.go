package bot

import (
	"fmt"
	"image"

	"github.com/kennyhngo/Wizard101-DanceBot/internal/arrow"
	"github.com/kennyhngo/Wizard101-DanceBot/internal/cv"
	"github.com/kennyhngo/Wizard101-DanceBot/pkg/templates"
)

// MatchAll returns every arrow with at least one template present in frame,
// in declaration order. Each arrow stops at its first matching template.
func MatchAll(frame *image.RGBA, set *templates.Set, confidence float64) []arrow.Arrow {
	if frame == nil {
		return nil
	}

	var detected []arrow.Arrow
	for _, a := range arrow.All() {
		for _, tmpl := range set.Templates(a) {
			if cv.Contains(frame, tmpl, confidence) {
				detected = append(detected, a)
				break
			}
		}
	}
	return detected
}

// Detector reports the arrows visible right now
type Detector interface {
	Detect() ([]arrow.Arrow, error)
}

// FrameDetector captures the arrow region of the screen and matches it
// against a template set
type FrameDetector struct {
	Capturer   cv.Capturer
	Templates  *templates.Set
	Region     image.Rectangle
	Scale      float64
	Confidence float64
}

// Detect captures one frame. Capture failures wrap ErrCapture.
func (d *FrameDetector) Detect() ([]arrow.Arrow, error) {
	frame, err := d.Capturer.Capture(d.Region, d.Scale)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCapture, err)
	}
	return MatchAll(frame, d.Templates, d.Confidence), nil
}
