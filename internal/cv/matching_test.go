package cv

import (
	"image"
	"image/color"
	"image/draw"
	"math/rand"
	"testing"
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

func solidImage(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func TestFindTemplateExactLocation(t *testing.T) {
	haystack := noiseImage(60, 50, 1)
	needle := CropRegion(haystack, image.Rect(17, 23, 29, 33))

	for _, method := range []MatchMethod{MatchMethodSAD, MatchMethodSSD, MatchMethodNCC} {
		result := FindTemplate(haystack, needle, &MatchConfig{Method: method, Threshold: 0.99})
		if !result.Found {
			t.Errorf("method %d: needle not found", method)
			continue
		}
		if result.Location != (image.Point{X: 17, Y: 23}) {
			t.Errorf("method %d: found at %v, want (17,23)", method, result.Location)
		}
		if result.Confidence < 0.999 {
			t.Errorf("method %d: exact match scored %f", method, result.Confidence)
		}
	}
}

func TestFindTemplateRejectsUnrelatedNoise(t *testing.T) {
	haystack := noiseImage(60, 60, 2)
	needle := noiseImage(15, 15, 3)

	result := FindTemplate(haystack, needle, DefaultMatchConfig())
	if result.Found {
		t.Errorf("unrelated noise matched with confidence %f", result.Confidence)
	}
}

func TestFindTemplateNeedleTooLarge(t *testing.T) {
	result := FindTemplate(noiseImage(10, 10, 1), noiseImage(11, 5, 1), nil)
	if result.Found {
		t.Error("needle larger than haystack should not match")
	}
}

func TestFindTemplateSearchRegion(t *testing.T) {
	haystack := noiseImage(60, 60, 4)
	needle := CropRegion(haystack, image.Rect(40, 40, 50, 50))

	region := image.Rect(0, 0, 30, 30)
	result := FindTemplate(haystack, needle, &MatchConfig{
		Method:       MatchMethodNCC,
		Threshold:    0.9,
		SearchRegion: &region,
	})
	if result.Found {
		t.Error("needle outside the search region should not be found")
	}

	empty := image.Rect(100, 100, 120, 120)
	result = FindTemplate(haystack, needle, &MatchConfig{Threshold: 0.9, SearchRegion: &empty})
	if result.Found {
		t.Error("empty search region should not match")
	}
}

func TestNCCToleratesBrightnessShift(t *testing.T) {
	haystack := noiseImage(40, 40, 5)
	needle := CropRegion(haystack, image.Rect(5, 5, 20, 20))

	// Darken the needle uniformly; correlation is unaffected by a linear shift
	for i := 0; i < len(needle.Pix); i += 4 {
		for c := 0; c < 3; c++ {
			needle.Pix[i+c] = needle.Pix[i+c] / 2
		}
	}

	if !Contains(haystack, needle, 0.95) {
		t.Error("NCC should tolerate a uniform brightness change")
	}
}

func TestNCCSolidColorFallsBackToSSD(t *testing.T) {
	red := color.RGBA{200, 30, 30, 255}
	haystack := noiseImage(30, 30, 6)
	for y := 10; y < 20; y++ {
		for x := 10; x < 20; x++ {
			haystack.SetRGBA(x, y, red)
		}
	}

	if !Contains(haystack, solidImage(6, 6, red), 0.99) {
		t.Error("solid needle should match identical solid area")
	}
	if Contains(solidImage(30, 30, color.RGBA{20, 200, 20, 255}), solidImage(6, 6, red), 0.9) {
		t.Error("solid needle should not match a differently colored solid area")
	}
}

// stripedImage alternates two grey levels row by row
func stripedImage(w, h int, dark, light uint8) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		v := dark
		if y%2 == 1 {
			v = light
		}
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{v, v, v, 255})
		}
	}
	return img
}

func TestNCCPatternedNeedleInSolidFrame(t *testing.T) {
	needle := stripedImage(10, 10, 100, 160)
	grey := color.RGBA{130, 130, 130, 255}

	tests := []struct {
		name     string
		haystack *image.RGBA
	}{
		{"matching mean", solidImage(40, 40, grey)},
		{"dark", solidImage(40, 40, color.RGBA{100, 100, 100, 255})},
		{"light", solidImage(40, 40, color.RGBA{160, 160, 160, 255})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := FindTemplate(tt.haystack, needle, &MatchConfig{Method: MatchMethodNCC, Threshold: 0.9})
			if result.Found {
				t.Errorf("striped needle matched a blank frame with confidence %f", result.Confidence)
			}
			if result.Confidence != 0 {
				t.Errorf("confidence = %f, want 0", result.Confidence)
			}
			if Contains(tt.haystack, needle, 0.5) {
				t.Error("Contains reported a striped needle in a blank frame")
			}
		})
	}
}

func TestNCCPatternedNeedleBesideFlatArea(t *testing.T) {
	needle := stripedImage(10, 10, 100, 160)
	haystack := solidImage(40, 30, color.RGBA{130, 130, 130, 255})
	draw.Draw(haystack, image.Rect(25, 12, 35, 22), needle, image.Point{}, draw.Src)

	result := FindTemplate(haystack, needle, &MatchConfig{Method: MatchMethodNCC, Threshold: 0.99})
	if !result.Found || result.Location != (image.Point{X: 25, Y: 12}) {
		t.Errorf("expected striped needle at (25,12), got %+v", result)
	}
}

func TestContainsStopsAtFirst(t *testing.T) {
	tile := noiseImage(8, 8, 9)
	haystack := image.NewRGBA(image.Rect(0, 0, 24, 8))
	for x := 0; x < 24; x += 8 {
		for y := 0; y < 8; y++ {
			for dx := 0; dx < 8; dx++ {
				haystack.SetRGBA(x+dx, y, tile.RGBAAt(dx, y))
			}
		}
	}

	result := FindTemplate(haystack, tile, &MatchConfig{Method: MatchMethodNCC, Threshold: 0.99, StopAtFirst: true})
	if !result.Found || result.Location.X != 0 {
		t.Errorf("expected first occurrence at x=0, got %+v", result)
	}
}
