package pixelnest

import (
	"image"
	"math"

	"github.com/tanema/gween/ease"
	"golang.org/x/image/draw"
)

const (
	// CropMinSize is the smallest width or height a resize handle can produce.
	CropMinSize = 20
	// CropMinExtract is the smallest selection side that produces a crop;
	// anything smaller leaves the image unchanged.
	CropMinExtract = 5
	// CropHandleSize is the side of the square hit area centered on each
	// corner and edge midpoint.
	CropHandleSize = 32
	// CropMagnification is the render-only zoom applied while a gesture is
	// active.
	CropMagnification = 1.35

	cropZoomDuration = 0.2
)

// CropRect is a selection in the container's unscaled local pixels.
type CropRect struct {
	X, Y, W, H float64
}

// CropMode is the gesture a crop pointer-down started.
type CropMode uint8

const (
	CropNone CropMode = iota
	CropCreate
	CropMove
	CropResizeN
	CropResizeS
	CropResizeE
	CropResizeW
	CropResizeNW
	CropResizeNE
	CropResizeSW
	CropResizeSE
)

var cropModeNames = [...]string{
	"none", "create", "move",
	"resize-n", "resize-s", "resize-e", "resize-w",
	"resize-nw", "resize-ne", "resize-sw", "resize-se",
}

func (m CropMode) String() string {
	if int(m) < len(cropModeNames) {
		return cropModeNames[m]
	}
	return "none"
}

// edges reports which edges a resize mode moves. Diagonal modes compose the
// letters of their compass name.
func (m CropMode) edges() (n, s, e, w bool) {
	switch m {
	case CropResizeN:
		n = true
	case CropResizeS:
		s = true
	case CropResizeE:
		e = true
	case CropResizeW:
		w = true
	case CropResizeNW:
		n, w = true, true
	case CropResizeNE:
		n, e = true, true
	case CropResizeSW:
		s, w = true, true
	case CropResizeSE:
		s, e = true, true
	}
	return
}

// IsResize reports whether m is one of the eight resize modes.
func (m CropMode) IsResize() bool {
	return m >= CropResizeN && m <= CropResizeSE
}

// CropSelection is the rectangle-selection state machine of the crop tool.
// All coordinates are container-local and unscaled; the magnification shown
// while dragging never enters the math.
type CropSelection struct {
	containerW, containerH float64

	rect CropRect
	has  bool

	mode      CropMode
	start     Vec2
	startRect CropRect

	magnification float64
	zoom          *TweenGroup
}

// NewCropSelection returns an empty selection over a container of the given
// size.
func NewCropSelection(containerW, containerH float64) *CropSelection {
	return &CropSelection{containerW: containerW, containerH: containerH, magnification: 1}
}

// ContainerSize returns the container dimensions.
func (c *CropSelection) ContainerSize() (w, h float64) {
	return c.containerW, c.containerH
}

// Selection returns the current rectangle and whether one exists.
func (c *CropSelection) Selection() (CropRect, bool) {
	return c.rect, c.has
}

// SetSelection replaces the selection.
func (c *CropSelection) SetSelection(r CropRect) {
	c.rect, c.has = r, true
}

// Clear removes the selection so a new one can be created.
func (c *CropSelection) Clear() {
	c.rect, c.has = CropRect{}, false
	c.mode = CropNone
}

// Mode returns the active gesture, or CropNone between gestures.
func (c *CropSelection) Mode() CropMode {
	return c.mode
}

// HitTest returns the gesture a pointer-down at (x, y) would start. Handles
// win over the body, corners over edges. Outside the selection nothing
// happens; with no selection a press inside the container creates one.
func (c *CropSelection) HitTest(x, y float64) CropMode {
	if !c.has {
		if x >= 0 && y >= 0 && x <= c.containerW && y <= c.containerH {
			return CropCreate
		}
		return CropNone
	}
	r := c.rect
	l, t, rt, b := r.X, r.Y, r.X+r.W, r.Y+r.H
	mx, my := r.X+r.W/2, r.Y+r.H/2

	handles := [...]struct {
		x, y float64
		mode CropMode
	}{
		{l, t, CropResizeNW}, {rt, t, CropResizeNE},
		{l, b, CropResizeSW}, {rt, b, CropResizeSE},
		{mx, t, CropResizeN}, {mx, b, CropResizeS},
		{l, my, CropResizeW}, {rt, my, CropResizeE},
	}
	const half = CropHandleSize / 2
	for _, h := range handles {
		if math.Abs(x-h.x) <= half && math.Abs(y-h.y) <= half {
			return h.mode
		}
	}
	if x >= l && x <= rt && y >= t && y <= b {
		return CropMove
	}
	return CropNone
}

// Begin hit-tests (x, y) and starts the resulting gesture. It returns the
// started mode, or CropNone when the press does nothing.
func (c *CropSelection) Begin(x, y float64) CropMode {
	mode := c.HitTest(x, y)
	if !c.BeginMode(mode, x, y) {
		return CropNone
	}
	return mode
}

// BeginMode starts a gesture in the given mode at (x, y). Create is refused
// while a selection exists, and move or resize while none does.
func (c *CropSelection) BeginMode(mode CropMode, x, y float64) bool {
	switch {
	case mode == CropNone:
		return false
	case mode == CropCreate && c.has:
		return false
	case mode != CropCreate && !c.has:
		return false
	}
	c.mode = mode
	c.start = Vec2{x, y}
	c.startRect = c.rect
	if mode == CropCreate {
		ax, ay := c.clampPoint(x, y)
		c.start = Vec2{ax, ay}
		c.rect = CropRect{X: ax, Y: ay}
		c.startRect = c.rect
		c.has = true
	}
	c.zoom = TweenValue(&c.magnification, CropMagnification, cropZoomDuration, ease.OutQuad)
	return true
}

// Move updates the selection for the pointer at (x, y). Every mode computes
// from the gesture start, so intermediate events do not accumulate error.
func (c *CropSelection) Move(x, y float64) {
	if c.mode == CropNone {
		return
	}
	s := c.startRect
	dx, dy := x-c.start.X, y-c.start.Y

	switch {
	case c.mode == CropCreate:
		px, py := c.clampPoint(x, y)
		c.rect = CropRect{
			X: math.Min(px, c.start.X),
			Y: math.Min(py, c.start.Y),
			W: math.Abs(px - c.start.X),
			H: math.Abs(py - c.start.Y),
		}
	case c.mode == CropMove:
		c.rect.X = clamp(s.X+dx, 0, math.Max(0, c.containerW-s.W))
		c.rect.Y = clamp(s.Y+dy, 0, math.Max(0, c.containerH-s.H))
	default:
		c.rect = c.resize(s, dx, dy)
	}
}

// resize applies a resize-mode delta to the starting rectangle. Each side
// ends at least CropMinSize long (or the container size, if smaller) and
// inside the container. When the dragged edge cannot reach the minimum, the
// opposite edge gives way.
func (c *CropSelection) resize(s CropRect, dx, dy float64) CropRect {
	n, so, e, w := c.mode.edges()
	r := s
	r.X, r.W = resizeSpan(s.X, s.W, dx, c.containerW, w, e)
	r.Y, r.H = resizeSpan(s.Y, s.H, dy, c.containerH, n, so)
	return r
}

// resizeSpan moves the low and/or high end of [pos, pos+size] by d within
// [0, limit].
func resizeSpan(pos, size, d, limit float64, low, high bool) (float64, float64) {
	if !low && !high {
		return pos, size
	}
	minSize := math.Min(CropMinSize, limit)
	lo, hi := pos, pos+size
	if high {
		hi = math.Min(hi+d, limit)
		if hi-lo < minSize {
			hi = lo + minSize
			if hi > limit {
				hi, lo = limit, limit-minSize
			}
		}
	}
	if low {
		lo = math.Max(lo+d, 0)
		if hi-lo < minSize {
			lo = hi - minSize
			if lo < 0 {
				lo, hi = 0, minSize
			}
		}
	}
	return lo, hi - lo
}

// End finishes the gesture. A create gesture that never grew keeps its
// zero-sized selection; extraction ignores it.
func (c *CropSelection) End() {
	if c.mode == CropNone {
		return
	}
	c.mode = CropNone
	c.zoom = TweenValue(&c.magnification, 1, cropZoomDuration, ease.OutQuad)
}

// Update advances the magnification animation by dt seconds.
func (c *CropSelection) Update(dt float32) {
	c.zoom.Update(dt)
}

// Magnification returns the current render-only zoom around the container
// center. It is 1 at rest and CropMagnification during a gesture.
func (c *CropSelection) Magnification() float64 {
	return c.magnification
}

func (c *CropSelection) clampPoint(x, y float64) (float64, float64) {
	return clamp(x, 0, c.containerW), clamp(y, 0, c.containerH)
}

// CropImage extracts the selected region of src at native resolution. The
// selection is in the coordinates of src rendered at renderedW x renderedH.
// Without a selection, or when either side is under CropMinExtract, src is
// returned unchanged.
func CropImage(src image.Image, sel CropRect, ok bool, renderedW, renderedH float64) image.Image {
	if !ok || sel.W < CropMinExtract || sel.H < CropMinExtract || renderedW <= 0 || renderedH <= 0 {
		return src
	}
	b := src.Bounds()
	scaleX := float64(b.Dx()) / renderedW
	scaleY := float64(b.Dy()) / renderedH

	sr := image.Rect(
		b.Min.X+int(math.Floor(sel.X*scaleX)),
		b.Min.Y+int(math.Floor(sel.Y*scaleY)),
		b.Min.X+int(math.Floor((sel.X+sel.W)*scaleX)),
		b.Min.Y+int(math.Floor((sel.Y+sel.H)*scaleY)),
	).Intersect(b)
	if sr.Empty() {
		return src
	}
	if n, ok := src.(*image.NRGBA); ok {
		return ToNRGBA(n.SubImage(sr))
	}
	dst := image.NewNRGBA(image.Rect(0, 0, sr.Dx(), sr.Dy()))
	draw.Copy(dst, image.Point{}, src, sr, draw.Src, nil)
	return dst
}
