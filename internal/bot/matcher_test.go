package bot

import (
	"errors"
	"image"
	"image/color"
	"image/draw"
	"math/rand"
	"reflect"
	"testing"

	"github.com/kennyhngo/Wizard101-DanceBot/internal/arrow"
	"github.com/kennyhngo/Wizard101-DanceBot/internal/cv"
	"github.com/kennyhngo/Wizard101-DanceBot/pkg/templates"
)

func noiseImage(w, h int, seed int64) *image.RGBA {
	r := rand.New(rand.NewSource(seed))
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i] = uint8(r.Intn(256))
		img.Pix[i+1] = uint8(r.Intn(256))
		img.Pix[i+2] = uint8(r.Intn(256))
		img.Pix[i+3] = 255
	}
	return img
}

func buildNoiseSet(t *testing.T, size int) (*templates.Set, map[arrow.Arrow]*image.RGBA) {
	t.Helper()
	refs := make(map[arrow.Arrow]*image.RGBA)
	for _, a := range arrow.All() {
		refs[a] = noiseImage(size, size, int64(10+a))
	}
	set, err := templates.Build(refs, templates.DefaultBuildOptions())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return set, refs
}

func TestMatchAllCroppedReference(t *testing.T) {
	set, refs := buildNoiseSet(t, 90)
	if set.Count() != 36 {
		t.Fatalf("expected 36 templates, got %d", set.Count())
	}

	frame := cv.CropRegion(refs[arrow.Up], image.Rect(30, 60, 60, 90))
	got := MatchAll(frame, set, DefaultConfig().Confidence)
	if !reflect.DeepEqual(got, []arrow.Arrow{arrow.Up}) {
		t.Errorf("MatchAll = %v, want [Up]", got)
	}
}

func TestMatchAllMultipleArrows(t *testing.T) {
	set, refs := buildNoiseSet(t, 45)

	// Right on the left half, Down on the right half, with background noise
	frame := noiseImage(60, 30, 99)
	draw.Draw(frame, image.Rect(5, 5, 20, 20), refs[arrow.Right], image.Pt(15, 15), draw.Src)
	draw.Draw(frame, image.Rect(40, 10, 55, 25), refs[arrow.Down], image.Pt(0, 30), draw.Src)

	got := MatchAll(frame, set, DefaultConfig().Confidence)
	want := []arrow.Arrow{arrow.Down, arrow.Right}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("MatchAll = %v, want %v", got, want)
	}
}

func TestMatchAllNothingVisible(t *testing.T) {
	set, _ := buildNoiseSet(t, 45)

	if got := MatchAll(noiseImage(40, 40, 7), set, 0.9); len(got) != 0 {
		t.Errorf("MatchAll on background = %v", got)
	}
	if got := MatchAll(nil, set, 0.9); got != nil {
		t.Errorf("MatchAll(nil) = %v", got)
	}
	if got := MatchAll(noiseImage(40, 40, 7), nil, 0.9); got != nil {
		t.Errorf("MatchAll with nil set = %v", got)
	}
}

func TestMatchAllBlankFrame(t *testing.T) {
	set, _ := buildNoiseSet(t, 45)

	for _, grey := range []uint8{0, 128, 255} {
		frame := image.NewRGBA(image.Rect(0, 0, 40, 40))
		draw.Draw(frame, frame.Bounds(), &image.Uniform{C: color.RGBA{grey, grey, grey, 255}}, image.Point{}, draw.Src)

		if got := MatchAll(frame, set, DefaultConfig().Confidence); len(got) != 0 {
			t.Errorf("MatchAll on blank grey %d frame = %v", grey, got)
		}
	}
}

func TestMatchAllArrowBesideBlankArea(t *testing.T) {
	set, refs := buildNoiseSet(t, 45)

	frame := image.NewRGBA(image.Rect(0, 0, 60, 30))
	draw.Draw(frame, frame.Bounds(), &image.Uniform{C: color.RGBA{128, 128, 128, 255}}, image.Point{}, draw.Src)
	draw.Draw(frame, image.Rect(40, 10, 55, 25), refs[arrow.Left], image.Pt(15, 15), draw.Src)

	got := MatchAll(frame, set, DefaultConfig().Confidence)
	if !reflect.DeepEqual(got, []arrow.Arrow{arrow.Left}) {
		t.Errorf("MatchAll = %v, want [Left]", got)
	}
}

func TestFrameDetector(t *testing.T) {
	set, refs := buildNoiseSet(t, 45)
	region := image.Rect(100, 200, 130, 230)

	var gotRegion image.Rectangle
	var gotScale float64
	det := &FrameDetector{
		Capturer: cv.CapturerFunc(func(r image.Rectangle, scale float64) (*image.RGBA, error) {
			gotRegion, gotScale = r, scale
			return cv.CropRegion(refs[arrow.Left], image.Rect(0, 0, 30, 30)), nil
		}),
		Templates:  set,
		Region:     region,
		Scale:      1.25,
		Confidence: 0.9,
	}

	got, err := det.Detect()
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if !reflect.DeepEqual(got, []arrow.Arrow{arrow.Left}) {
		t.Errorf("Detect = %v, want [Left]", got)
	}
	if gotRegion != region || gotScale != 1.25 {
		t.Errorf("captured %v at %v", gotRegion, gotScale)
	}

	captureErr := errors.New("display asleep")
	det.Capturer = cv.CapturerFunc(func(image.Rectangle, float64) (*image.RGBA, error) {
		return nil, captureErr
	})
	if _, err := det.Detect(); !errors.Is(err, ErrCapture) || !errors.Is(err, captureErr) {
		t.Errorf("expected wrapped capture error, got %v", err)
	}
}
