package templates

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	"github.com/kennyhngo/Wizard101-DanceBot/internal/arrow"
	"github.com/kennyhngo/Wizard101-DanceBot/internal/cv"
	"github.com/kennyhngo/Wizard101-DanceBot/internal/logging"
)

// LoadReferences decodes one PNG per arrow from dir. Any missing or
// unreadable file fails the whole load.
func LoadReferences(dir string, m *Manifest) (map[arrow.Arrow]*image.RGBA, error) {
	if m == nil {
		m = &Manifest{}
	}

	refs := make(map[arrow.Arrow]*image.RGBA, arrow.Count)
	for _, a := range arrow.All() {
		path := filepath.Join(dir, m.FileFor(a))
		img, err := loadPNG(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrMissingReference, a, err)
		}
		refs[a] = img
	}
	return refs, nil
}

// LoadSet reads the manifest and references from dir and builds the template set
func LoadSet(dir string, logger *logging.Logger) (*Set, error) {
	m, err := ReadManifest(dir)
	if err != nil {
		return nil, err
	}

	refs, err := LoadReferences(dir, m)
	if err != nil {
		return nil, err
	}

	opts := m.Options()
	opts.Logger = logger
	return Build(refs, opts)
}

func loadPNG(path string) (*image.RGBA, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image %s: %w", path, err)
	}
	defer file.Close()

	img, err := png.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode PNG %s: %w", path, err)
	}

	// Alpha must survive conversion; the opacity filter depends on it
	return cv.ToRGBA(img), nil
}
