package pixelnest

import (
	"image"
	"image/color"
)

// ColorAt returns the pixel at (x, y), reporting false outside the image.
func ColorAt(img *image.NRGBA, x, y int) (color.NRGBA, bool) {
	if !(image.Point{x, y}.In(img.Rect)) {
		return color.NRGBA{}, false
	}
	return img.NRGBAAt(x, y), true
}

// EraseByColor makes every pixel whose RGB lies within tolerance of target
// (Euclidean distance, inclusive) fully transparent and returns how many
// pixels changed. It is a single global pass: matching pixels are erased
// whether or not they touch each other. Pixels that are already transparent
// are skipped, and target's alpha is ignored.
func EraseByColor(img *image.NRGBA, target color.NRGBA, tolerance int) int {
	if tolerance < 0 || img.Rect.Empty() {
		return 0
	}
	limit := tolerance * tolerance
	tr, tg, tb := int(target.R), int(target.G), int(target.B)

	erased := 0
	b := img.Rect
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := img.Pix[img.PixOffset(b.Min.X, y) : img.PixOffset(b.Max.X-1, y)+4]
		for i := 0; i < len(row); i += 4 {
			if row[i+3] == 0 {
				continue
			}
			dr := int(row[i]) - tr
			dg := int(row[i+1]) - tg
			db := int(row[i+2]) - tb
			if dr*dr+dg*dg+db*db <= limit {
				row[i+3] = 0
				erased++
			}
		}
	}
	return erased
}
