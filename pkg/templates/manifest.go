package templates

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/kennyhngo/Wizard101-DanceBot/internal/arrow"
)

// ManifestName is the optional file in an asset directory that overrides defaults
const ManifestName = "templates.yaml"

// Manifest describes an asset directory. Every field is optional.
//
//	grid_size: 3
//	dedup_confidence: 0.95
//	files:
//	  Up: up_arrow.png
type Manifest struct {
	GridSize        int               `yaml:"grid_size,omitempty"`
	DedupConfidence float64           `yaml:"dedup_confidence,omitempty"`
	Files           map[string]string `yaml:"files,omitempty"`
}

// ReadManifest loads dir/templates.yaml. A missing manifest yields an empty one.
func ReadManifest(dir string) (*Manifest, error) {
	path := filepath.Join(dir, ManifestName)
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return &Manifest{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest %s: %w", path, err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to unmarshal manifest YAML: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("manifest %s: %w", path, err)
	}
	return &m, nil
}

// Validate checks value ranges and that file overrides name real arrows
func (m *Manifest) Validate() error {
	if m.GridSize < 0 {
		return fmt.Errorf("grid_size must be positive, got %d", m.GridSize)
	}
	if m.DedupConfidence < 0 || m.DedupConfidence > 1 {
		return fmt.Errorf("dedup_confidence must be within [0,1], got %v", m.DedupConfidence)
	}
	for name, file := range m.Files {
		if _, err := arrow.Parse(name); err != nil {
			return fmt.Errorf("files: %w", err)
		}
		if file == "" {
			return fmt.Errorf("files: %s has an empty path", name)
		}
	}
	return nil
}

// FileFor returns the image file name for a, defaulting to "<Arrow>.png"
func (m *Manifest) FileFor(a arrow.Arrow) string {
	for name, file := range m.Files {
		if parsed, err := arrow.Parse(name); err == nil && parsed == a {
			return file
		}
	}
	return a.String() + ".png"
}

// Options merges the manifest over the default build options
func (m *Manifest) Options() BuildOptions {
	opts := DefaultBuildOptions()
	if m.GridSize > 0 {
		opts.GridSize = m.GridSize
	}
	if m.DedupConfidence > 0 {
		opts.DedupConfidence = m.DedupConfidence
	}
	return opts
}
