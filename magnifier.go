package pixelnest

import (
	"image"
	"image/color"
	"image/draw"

	xdraw "golang.org/x/image/draw"
)

const (
	// MagnifierSize is the side of the square loupe in pixels.
	MagnifierSize = 100
	// MagnifierZoom is the loupe's nearest-neighbor magnification.
	MagnifierZoom = 2

	magnifierCell = 10
)

var (
	checkerLight    = color.NRGBA{0xff, 0xff, 0xff, 0xff}
	checkerDark     = color.NRGBA{0xcc, 0xcc, 0xcc, 0xff}
	crosshairColor  = color.NRGBA{239, 68, 68, 204}
	magnifierWindow = MagnifierSize / MagnifierZoom
)

// Magnify renders the loupe for the native pixel (x, y): a checkerboard
// backdrop with the surrounding window of img scaled by MagnifierZoom on top,
// and a crosshair through the middle. The window is clamped to the image so
// the loupe never shows past an edge unless the image is smaller than it.
func Magnify(img *image.NRGBA, x, y int) *image.NRGBA {
	out := image.NewNRGBA(image.Rect(0, 0, MagnifierSize, MagnifierSize))
	fillChecker(out, magnifierCell)

	b := img.Rect
	sx := b.Min.X + clampInt(x-b.Min.X-magnifierWindow/2, 0, max(0, b.Dx()-magnifierWindow))
	sy := b.Min.Y + clampInt(y-b.Min.Y-magnifierWindow/2, 0, max(0, b.Dy()-magnifierWindow))
	sr := image.Rect(sx, sy, sx+magnifierWindow, sy+magnifierWindow).Intersect(b)
	if !sr.Empty() {
		dr := image.Rect(0, 0, sr.Dx()*MagnifierZoom, sr.Dy()*MagnifierZoom)
		xdraw.NearestNeighbor.Scale(out, dr, img, sr, xdraw.Over, nil)
	}

	mid := MagnifierSize / 2
	line := image.NewUniform(crosshairColor)
	draw.Draw(out, image.Rect(mid, 0, mid+1, MagnifierSize), line, image.Point{}, draw.Over)
	draw.Draw(out, image.Rect(0, mid, MagnifierSize, mid+1), line, image.Point{}, draw.Over)
	return out
}

// fillChecker paints the transparency checkerboard over img in square cells.
func fillChecker(img *image.NRGBA, cell int) {
	b := img.Rect
	for j := 0; j < b.Dy(); j++ {
		for i := 0; i < b.Dx(); i++ {
			c := checkerLight
			if (i/cell+j/cell)%2 == 0 {
				c = checkerDark
			}
			img.SetNRGBA(b.Min.X+i, b.Min.Y+j, c)
		}
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
