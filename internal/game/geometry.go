package game

import (
	"errors"
	"fmt"
	"image"
	"strings"
)

// ErrUnknownResolution is returned for a client size without a geometry table
var ErrUnknownResolution = errors.New("unknown resolution")

// Resolution is a supported game client size
type Resolution int

const (
	Res800x600 Resolution = iota
	Res1280x800
)

// Resolutions lists every supported client size
func Resolutions() []Resolution {
	return []Resolution{Res800x600, Res1280x800}
}

func (r Resolution) String() string {
	switch r {
	case Res800x600:
		return "800x600"
	case Res1280x800:
		return "1280x800"
	default:
		return fmt.Sprintf("Resolution(%d)", int(r))
	}
}

// ParseResolution accepts "800x600" or "1280x800"
func ParseResolution(s string) (Resolution, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, r := range Resolutions() {
		if r.String() == s {
			return r, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownResolution, s)
}

// Location names, in the order of the buttons on the world select page
var LocationNames = []string{"Wizard City", "Krokotopia", "Marleybone", "MooShu", "Dragonspyre"}

// SnackSlots is the number of snack buttons on the feeding page
const SnackSlots = 5

// Geometry holds screen coordinates for one client size, assuming the
// client window sits at the top-left of the primary display
type Geometry struct {
	ArrowRegion image.Rectangle // Where the arrows appear during a round
	Locations   []image.Point   // World buttons, in LocationNames order
	RightButton image.Point     // PLAY, NEXT, FEED PET
	LeftButton  image.Point     // CANCEL, FINISH
	Snacks      []image.Point   // Empty when the feeding page is not mapped
}

var geometries = map[Resolution]Geometry{
	Res800x600: {
		ArrowRegion: image.Rect(370, 525, 370+75, 525+75),
		Locations:   row(495, 175, 290, 405, 520, 635),
		RightButton: image.Pt(630, 590),
		LeftButton:  image.Pt(185, 590),
	},
	Res1280x800: {
		ArrowRegion: image.Rect(600, 699, 600+95, 699+95),
		Locations:   row(650, 345, 495, 645, 790, 945),
		RightButton: image.Pt(940, 770),
		LeftButton:  image.Pt(355, 770),
		Snacks:      row(540, 350, 495, 655, 790, 940),
	},
}

// GeometryFor returns the coordinate table for r
func GeometryFor(r Resolution) (Geometry, error) {
	g, ok := geometries[r]
	if !ok {
		return Geometry{}, fmt.Errorf("%w: %v", ErrUnknownResolution, r)
	}
	return g, nil
}

// SupportsSnacks reports whether snack feeding is mapped for this size
func (g Geometry) SupportsSnacks() bool {
	return len(g.Snacks) > 0
}

func row(y int, xs ...int) []image.Point {
	points := make([]image.Point, len(xs))
	for i, x := range xs {
		points[i] = image.Pt(x, y)
	}
	return points
}
