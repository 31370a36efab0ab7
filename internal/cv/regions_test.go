package cv

import (
	"image"
	"image/color"
	"testing"
)

func TestSplitGridTilesBounds(t *testing.T) {
	tests := []struct {
		name   string
		bounds image.Rectangle
		n      int
	}{
		{"divisible", image.Rect(0, 0, 90, 90), 3},
		{"not divisible", image.Rect(0, 0, 95, 77), 3},
		{"offset origin", image.Rect(10, 20, 41, 52), 3},
		{"tiny", image.Rect(0, 0, 4, 5), 3},
		{"single cell", image.Rect(0, 0, 7, 7), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cells := SplitGrid(tt.bounds, tt.n, tt.n)
			if len(cells) != tt.n*tt.n {
				t.Fatalf("expected %d cells, got %d", tt.n*tt.n, len(cells))
			}

			area := 0
			for i, a := range cells {
				if !a.In(tt.bounds) {
					t.Errorf("cell %v escapes bounds %v", a, tt.bounds)
				}
				area += a.Dx() * a.Dy()
				for j := i + 1; j < len(cells); j++ {
					if a.Overlaps(cells[j]) {
						t.Errorf("cells %v and %v overlap", a, cells[j])
					}
				}
			}

			// No overlaps plus equal area means no gaps
			if want := tt.bounds.Dx() * tt.bounds.Dy(); area != want {
				t.Errorf("cells cover %d pixels, bounds have %d", area, want)
			}
		})
	}
}

func TestSplitGridColumnMajor(t *testing.T) {
	cells := SplitGrid(image.Rect(0, 0, 30, 30), 3, 3)
	if cells[1] != image.Rect(0, 10, 10, 20) {
		t.Errorf("second cell should be below the first, got %v", cells[1])
	}
	if cells[3] != image.Rect(10, 0, 20, 10) {
		t.Errorf("fourth cell should start column 1, got %v", cells[3])
	}
}

func TestSplitGridInvalid(t *testing.T) {
	if cells := SplitGrid(image.Rect(0, 0, 10, 10), 0, 3); cells != nil {
		t.Errorf("expected nil for zero columns, got %v", cells)
	}
	if cells := SplitGrid(image.Rectangle{}, 3, 3); cells != nil {
		t.Errorf("expected nil for empty bounds, got %v", cells)
	}
}

func TestCropRegion(t *testing.T) {
	src := noiseImage(20, 20, 7)
	rect := image.Rect(5, 6, 12, 15)

	crop := CropRegion(src, rect)
	if crop.Bounds() != image.Rect(0, 0, 7, 9) {
		t.Fatalf("unexpected crop bounds %v", crop.Bounds())
	}
	for y := 0; y < 9; y++ {
		for x := 0; x < 7; x++ {
			if crop.RGBAAt(x, y) != src.RGBAAt(x+5, y+6) {
				t.Fatalf("pixel (%d,%d) differs from source", x, y)
			}
		}
	}
}

func TestHasTransparency(t *testing.T) {
	img := solidImage(4, 4, color.RGBA{10, 20, 30, 255})
	if HasTransparency(img) {
		t.Error("opaque image reported transparent")
	}

	img.SetRGBA(3, 3, color.RGBA{})
	if !HasTransparency(img) {
		t.Error("transparent pixel not detected")
	}

	// Partially transparent pixels do not count
	img.SetRGBA(3, 3, color.RGBA{1, 1, 1, 1})
	if HasTransparency(img) {
		t.Error("alpha 1 should not count as transparent")
	}
}

func TestToRGBAPreservesAlpha(t *testing.T) {
	src := image.NewNRGBA(image.Rect(2, 2, 4, 4))
	src.SetNRGBA(2, 2, color.NRGBA{200, 100, 50, 255})
	src.SetNRGBA(3, 3, color.NRGBA{200, 100, 50, 0})

	dst := ToRGBA(src)
	if dst.Bounds().Min != (image.Point{}) {
		t.Fatalf("expected zero origin, got %v", dst.Bounds())
	}
	if dst.RGBAAt(0, 0).A != 255 {
		t.Error("opaque pixel lost alpha")
	}
	if dst.RGBAAt(1, 1).A != 0 {
		t.Error("transparent pixel gained alpha")
	}
}
