package templates

import (
	"errors"
	"fmt"
	"image"

	"github.com/kennyhngo/Wizard101-DanceBot/internal/arrow"
	"github.com/kennyhngo/Wizard101-DanceBot/internal/cv"
	"github.com/kennyhngo/Wizard101-DanceBot/internal/logging"
)

const (
	// DefaultGridSize is the number of rows and columns each reference is cut into
	DefaultGridSize = 3

	// DefaultDedupConfidence is the threshold used to decide a sub-template also
	// identifies another arrow
	DefaultDedupConfidence = 0.95
)

// ErrMissingReference is returned when an arrow has no reference image
var ErrMissingReference = errors.New("missing reference image")

// BuildOptions controls how reference images are cut into templates
type BuildOptions struct {
	GridSize        int
	DedupConfidence float64
	Logger          *logging.Logger // Optional
}

// DefaultBuildOptions returns the settings used by the game assets
func DefaultBuildOptions() BuildOptions {
	return BuildOptions{
		GridSize:        DefaultGridSize,
		DedupConfidence: DefaultDedupConfidence,
	}
}

// Set holds the retained sub-templates for every arrow. It is never modified
// after Build returns, so it can be shared between goroutines without locking.
type Set struct {
	templates [arrow.Count][]*image.RGBA
}

// Templates returns the sub-templates retained for a. Callers must not modify the slice.
func (s *Set) Templates(a arrow.Arrow) []*image.RGBA {
	if s == nil || !a.Valid() {
		return nil
	}
	return s.templates[a]
}

// Count returns the total number of retained sub-templates
func (s *Set) Count() int {
	if s == nil {
		return 0
	}
	n := 0
	for _, t := range s.templates {
		n += len(t)
	}
	return n
}

// Empty lists the arrows left without any template. Those arrows can never be detected.
func (s *Set) Empty() []arrow.Arrow {
	var empty []arrow.Arrow
	for _, a := range arrow.All() {
		if len(s.Templates(a)) == 0 {
			empty = append(empty, a)
		}
	}
	return empty
}

// Build cuts every reference into a grid of sub-templates and keeps the ones
// that are fully opaque and that cannot be found in any other arrow's reference.
func Build(refs map[arrow.Arrow]*image.RGBA, opts BuildOptions) (*Set, error) {
	if opts.GridSize <= 0 {
		opts.GridSize = DefaultGridSize
	}
	if opts.DedupConfidence <= 0 {
		opts.DedupConfidence = DefaultDedupConfidence
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewLogger("Templates")
	}

	for _, a := range arrow.All() {
		if refs[a] == nil {
			return nil, fmt.Errorf("%w: %s", ErrMissingReference, a)
		}
	}

	// Opaque interior crops per arrow
	var candidates [arrow.Count][]*image.RGBA
	for _, a := range arrow.All() {
		ref := refs[a]
		cells := cv.SplitGrid(ref.Bounds(), opts.GridSize, opts.GridSize)
		for _, cell := range cells {
			crop := cv.CropRegion(ref, cell)
			if cv.HasTransparency(crop) {
				continue
			}
			candidates[a] = append(candidates[a], crop)
		}
		logger.TraceWithContext("Cut reference", map[string]interface{}{
			"arrow":  a.String(),
			"cells":  len(cells),
			"opaque": len(candidates[a]),
		})
	}

	// Keep-filter over the candidates; the candidate lists are never modified
	set := &Set{}
	for _, b := range arrow.All() {
		kept := make([]*image.RGBA, 0, len(candidates[b]))
		for _, tmpl := range candidates[b] {
			if ambiguous(tmpl, b, refs, opts.DedupConfidence) {
				continue
			}
			kept = append(kept, tmpl)
		}
		set.templates[b] = kept

		logger.DebugWithContext("Built templates", map[string]interface{}{
			"arrow":   b.String(),
			"kept":    len(kept),
			"removed": len(candidates[b]) - len(kept),
		})
	}

	for _, a := range set.Empty() {
		logger.WarnWithContext("Arrow has no usable templates and will never be detected", map[string]interface{}{
			"arrow": a.String(),
		})
	}

	return set, nil
}

// ambiguous reports whether tmpl, cut from owner, also appears in another arrow's reference
func ambiguous(tmpl *image.RGBA, owner arrow.Arrow, refs map[arrow.Arrow]*image.RGBA, confidence float64) bool {
	for _, other := range arrow.All() {
		if other == owner {
			continue
		}
		if cv.Contains(refs[other], tmpl, confidence) {
			return true
		}
	}
	return false
}
