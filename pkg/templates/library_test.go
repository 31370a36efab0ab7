package templates

import (
	"errors"
	"image"
	"image/color"
	"image/draw"
	"io"
	"math/rand"
	"testing"

	"github.com/kennyhngo/Wizard101-DanceBot/internal/arrow"
	"github.com/kennyhngo/Wizard101-DanceBot/internal/cv"
	"github.com/kennyhngo/Wizard101-DanceBot/internal/logging"
)

func quietOptions() BuildOptions {
	opts := DefaultBuildOptions()
	opts.Logger = logging.NewLogger("Templates").SetOutput(io.Discard)
	return opts
}

func noiseImage(size int, seed int64) *image.RGBA {
	r := rand.New(rand.NewSource(seed))
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i] = uint8(r.Intn(256))
		img.Pix[i+1] = uint8(r.Intn(256))
		img.Pix[i+2] = uint8(r.Intn(256))
		img.Pix[i+3] = 255
	}
	return img
}

// noiseRefs returns pairwise distinct, fully opaque references
func noiseRefs(size int) map[arrow.Arrow]*image.RGBA {
	refs := make(map[arrow.Arrow]*image.RGBA)
	for _, a := range arrow.All() {
		refs[a] = noiseImage(size, int64(100+a))
	}
	return refs
}

// paste copies rect of src onto dst at the same position
func paste(dst, src *image.RGBA, rect image.Rectangle) {
	draw.Draw(dst, rect, src, rect.Min, draw.Src)
}

func assertNoTransparency(t *testing.T, set *Set) {
	t.Helper()
	for _, a := range arrow.All() {
		for i, tmpl := range set.Templates(a) {
			if cv.HasTransparency(tmpl) {
				t.Errorf("%s template %d has a transparent pixel", a, i)
			}
		}
	}
}

func assertUnique(t *testing.T, set *Set, refs map[arrow.Arrow]*image.RGBA, confidence float64) {
	t.Helper()
	for _, a := range arrow.All() {
		for _, b := range arrow.All() {
			if a == b {
				continue
			}
			for i, tmpl := range set.Templates(b) {
				if cv.Contains(refs[a], tmpl, confidence) {
					t.Errorf("%s template %d is found in %s reference", b, i, a)
				}
			}
		}
	}
}

func TestBuildDistinctReferences(t *testing.T) {
	refs := noiseRefs(90)

	set, err := Build(refs, quietOptions())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	for _, a := range arrow.All() {
		if n := len(set.Templates(a)); n != 9 {
			t.Errorf("%s: expected 9 templates, got %d", a, n)
		}
	}
	if set.Count() != 36 {
		t.Errorf("expected 36 templates, got %d", set.Count())
	}
	if empty := set.Empty(); len(empty) != 0 {
		t.Errorf("unexpected empty arrows %v", empty)
	}
	for _, tmpl := range set.Templates(arrow.Up) {
		if tmpl.Bounds() != image.Rect(0, 0, 30, 30) {
			t.Errorf("unexpected template bounds %v", tmpl.Bounds())
		}
	}
}

func TestBuildDropsTransparentCells(t *testing.T) {
	refs := noiseRefs(45)
	up := refs[arrow.Up]
	up.SetRGBA(0, 0, color.RGBA{})   // first cell
	up.SetRGBA(22, 22, color.RGBA{}) // centre cell

	set, err := Build(refs, quietOptions())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if n := len(set.Templates(arrow.Up)); n != 7 {
		t.Errorf("expected 7 Up templates, got %d", n)
	}
	if n := len(set.Templates(arrow.Down)); n != 9 {
		t.Errorf("expected 9 Down templates, got %d", n)
	}
	assertNoTransparency(t, set)
}

func TestBuildRemovesSharedCellsFromBothArrows(t *testing.T) {
	refs := noiseRefs(45)

	// Down shares Up's top-left cell
	paste(refs[arrow.Down], refs[arrow.Up], image.Rect(0, 0, 15, 15))

	opts := quietOptions()
	set, err := Build(refs, opts)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if n := len(set.Templates(arrow.Up)); n != 8 {
		t.Errorf("expected 8 Up templates, got %d", n)
	}
	if n := len(set.Templates(arrow.Down)); n != 8 {
		t.Errorf("expected 8 Down templates, got %d", n)
	}
	if n := len(set.Templates(arrow.Left)); n != 9 {
		t.Errorf("expected 9 Left templates, got %d", n)
	}
	assertUnique(t, set, refs, opts.DedupConfidence)
}

func TestBuildRemovesAdjacentAmbiguousCells(t *testing.T) {
	refs := noiseRefs(45)

	// The first two cells in grid order are both shared. Removing while
	// iterating by index would skip the second one.
	paste(refs[arrow.Right], refs[arrow.Left], image.Rect(0, 0, 15, 30))

	opts := quietOptions()
	set, err := Build(refs, opts)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if n := len(set.Templates(arrow.Left)); n != 7 {
		t.Errorf("expected 7 Left templates, got %d", n)
	}
	if n := len(set.Templates(arrow.Right)); n != 7 {
		t.Errorf("expected 7 Right templates, got %d", n)
	}
	assertUnique(t, set, refs, opts.DedupConfidence)
}

func TestBuildKeepsPatternedCellOverFlatArea(t *testing.T) {
	refs := noiseRefs(45)

	// Up's top-left cell is striped grey; Down has a plain patch of the
	// stripes' average colour that no grid cell fully covers
	up := refs[arrow.Up]
	for y := 0; y < 15; y++ {
		v := uint8(100)
		if y%2 == 1 {
			v = 160
		}
		for x := 0; x < 15; x++ {
			up.SetRGBA(x, y, color.RGBA{v, v, v, 255})
		}
	}
	draw.Draw(refs[arrow.Down], image.Rect(7, 7, 24, 24),
		&image.Uniform{C: color.RGBA{130, 130, 130, 255}}, image.Point{}, draw.Src)

	opts := quietOptions()
	set, err := Build(refs, opts)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if n := len(set.Templates(arrow.Up)); n != 9 {
		t.Errorf("expected 9 Up templates, got %d", n)
	}
	if n := len(set.Templates(arrow.Down)); n != 9 {
		t.Errorf("expected 9 Down templates, got %d", n)
	}
	assertUnique(t, set, refs, opts.DedupConfidence)
}

func TestBuildEmptyArrowIsNotAnError(t *testing.T) {
	refs := noiseRefs(45)
	refs[arrow.Left] = image.NewRGBA(image.Rect(0, 0, 45, 45)) // fully transparent

	set, err := Build(refs, quietOptions())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	empty := set.Empty()
	if len(empty) != 1 || empty[0] != arrow.Left {
		t.Errorf("expected only Left to be empty, got %v", empty)
	}
	if set.Count() != 27 {
		t.Errorf("expected 27 templates, got %d", set.Count())
	}
}

func TestBuildMissingReference(t *testing.T) {
	refs := noiseRefs(45)
	delete(refs, arrow.Right)

	_, err := Build(refs, quietOptions())
	if !errors.Is(err, ErrMissingReference) {
		t.Fatalf("expected ErrMissingReference, got %v", err)
	}
}

func TestBuildNonDivisibleSize(t *testing.T) {
	refs := noiseRefs(47)

	set, err := Build(refs, quietOptions())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if set.Count() != 36 {
		t.Errorf("expected 36 templates, got %d", set.Count())
	}

	area := 0
	for _, tmpl := range set.Templates(arrow.Up) {
		area += tmpl.Bounds().Dx() * tmpl.Bounds().Dy()
	}
	if area != 47*47 {
		t.Errorf("templates cover %d pixels, want %d", area, 47*47)
	}
}

func TestNilSet(t *testing.T) {
	var set *Set
	if set.Count() != 0 || set.Templates(arrow.Up) != nil {
		t.Error("nil set should behave as empty")
	}
	if len(set.Empty()) != arrow.Count {
		t.Error("nil set should report every arrow empty")
	}
}
