package pixelnest

import (
	"image"
	"image/color"
	"math"

	"github.com/srwiley/rasterx"
	"golang.org/x/image/math/fixed"
)

// BrushStroke erases a freehand stroke from an image, like a canvas stroke
// drawn with destination-out compositing: each segment between consecutive
// samples is a line of width Size with round caps and joins, and pixel alpha
// is reduced by the stroke's coverage.
type BrushStroke struct {
	img  *image.NRGBA
	size float64
	last Vec2

	mask    *image.Alpha
	scanner *rasterx.ScannerGV
	dasher  *rasterx.Dasher
	filler  *rasterx.Filler
}

// NewBrushStroke starts a stroke of the given width at (x, y). The starting
// point is erased immediately as a round dot.
func NewBrushStroke(img *image.NRGBA, size, x, y float64) *BrushStroke {
	b := img.Rect
	mask := image.NewAlpha(b)
	scanner := rasterx.NewScannerGV(b.Dx(), b.Dy(), mask, b)
	s := &BrushStroke{
		img:     img,
		size:    size,
		last:    Vec2{x, y},
		mask:    mask,
		scanner: scanner,
		dasher:  rasterx.NewDasher(b.Dx(), b.Dy(), scanner),
		filler:  rasterx.NewFiller(b.Dx(), b.Dy(), scanner),
	}
	s.dasher.SetStroke(fixed.Int26_6(size*64), fixed.Int26_6(4*64), rasterx.RoundCap, rasterx.RoundCap, rasterx.RoundGap, rasterx.Round, nil, 0)
	s.dasher.SetColor(color.Black)
	s.filler.SetColor(color.Black)

	s.dot(x, y)
	return s
}

// Size returns the stroke width.
func (s *BrushStroke) Size() float64 {
	return s.size
}

// Last returns the most recent sample.
func (s *BrushStroke) Last() Vec2 {
	return s.last
}

// LineTo erases the segment from the previous sample to (x, y).
func (s *BrushStroke) LineTo(x, y float64) {
	from := s.last
	s.last = Vec2{x, y}
	if from == s.last {
		s.dot(x, y)
		return
	}
	ox, oy := float64(s.img.Rect.Min.X), float64(s.img.Rect.Min.Y)
	s.dasher.Start(rasterx.ToFixedP(from.X-ox, from.Y-oy))
	s.dasher.Line(rasterx.ToFixedP(x-ox, y-oy))
	s.dasher.Stop(false)
	s.dasher.Draw()
	s.dasher.Clear()
	s.apply(segmentBounds(from, s.last, s.size))
}

// dot erases a filled circle of the stroke's diameter. A zero-length
// segment produces nothing in the stroker, so round caps are emulated.
func (s *BrushStroke) dot(x, y float64) {
	ox, oy := float64(s.img.Rect.Min.X), float64(s.img.Rect.Min.Y)
	rasterx.AddCircle(x-ox, y-oy, s.size/2, s.filler)
	s.filler.Draw()
	s.filler.Clear()
	s.apply(segmentBounds(Vec2{x, y}, Vec2{x, y}, s.size))
}

// apply moves the mask coverage inside r into the image alpha and clears the
// mask for the next segment.
func (s *BrushStroke) apply(r image.Rectangle) {
	r = r.Intersect(s.img.Rect)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		mi := s.mask.PixOffset(r.Min.X, y)
		pi := s.img.PixOffset(r.Min.X, y) + 3
		for x := r.Min.X; x < r.Max.X; x, mi, pi = x+1, mi+1, pi+4 {
			m := s.mask.Pix[mi]
			if m == 0 {
				continue
			}
			s.mask.Pix[mi] = 0
			s.img.Pix[pi] = uint8(uint32(s.img.Pix[pi]) * uint32(255-m) / 255)
		}
	}
}

// segmentBounds returns the pixel rectangle a segment of the given width can
// touch, padded by a pixel for antialiasing.
func segmentBounds(a, b Vec2, width float64) image.Rectangle {
	pad := width/2 + 1
	return image.Rect(
		int(math.Floor(math.Min(a.X, b.X)-pad)),
		int(math.Floor(math.Min(a.Y, b.Y)-pad)),
		int(math.Ceil(math.Max(a.X, b.X)+pad)),
		int(math.Ceil(math.Max(a.Y, b.Y)+pad)),
	)
}
