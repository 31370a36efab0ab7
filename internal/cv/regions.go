package cv

import (
	"image"
	"image/draw"
)

// SplitGrid partitions bounds into cols×rows rectangles in column-major order
// (all rows of column 0 first). Edges are placed at i*W/cols so the cells never
// overlap and together cover bounds exactly, whether or not the size divides evenly.
func SplitGrid(bounds image.Rectangle, cols, rows int) []image.Rectangle {
	if cols <= 0 || rows <= 0 || bounds.Empty() {
		return nil
	}

	w, h := bounds.Dx(), bounds.Dy()
	cells := make([]image.Rectangle, 0, cols*rows)

	for c := 0; c < cols; c++ {
		x0 := bounds.Min.X + c*w/cols
		x1 := bounds.Min.X + (c+1)*w/cols
		for r := 0; r < rows; r++ {
			y0 := bounds.Min.Y + r*h/rows
			y1 := bounds.Min.Y + (r+1)*h/rows
			cell := image.Rect(x0, y0, x1, y1)
			if cell.Empty() {
				continue
			}
			cells = append(cells, cell)
		}
	}

	return cells
}

// CropRegion copies rect out of img into a new zero-origin image
func CropRegion(img *image.RGBA, rect image.Rectangle) *image.RGBA {
	rect = rect.Intersect(img.Bounds())
	cropped := image.NewRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	draw.Draw(cropped, cropped.Bounds(), img, rect.Min, draw.Src)
	return cropped
}

// HasTransparency reports whether any pixel of img is fully transparent
func HasTransparency(img *image.RGBA) bool {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := img.PixOffset(b.Min.X, y)
		for x := 0; x < b.Dx(); x++ {
			if img.Pix[row+x*4+3] == 0 {
				return true
			}
		}
	}
	return false
}

// ToRGBA converts any image to a zero-origin *image.RGBA, keeping alpha
func ToRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Bounds().Min == (image.Point{}) {
		return rgba
	}
	bounds := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)
	return rgba
}
