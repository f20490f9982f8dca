package pixelnest

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

// Zoom limits and steps. The wheel allows zooming further out than the
// on-screen zoom buttons.
const (
	MinWheelScale  = 0.1
	MinButtonScale = 0.2
	MaxScale       = 5.0
	WheelZoomStep  = 0.1
	ButtonZoomStep = 0.2
)

// sessionOriginInset is how far up-left of the screen center the world origin
// lands when a session starts.
const sessionOriginInset = 200

// Viewport maps between screen space and world space. World content is drawn
// at screen = world*Scale + Offset; zoom is anchored at the viewport origin.
type Viewport struct {
	// OffsetX and OffsetY are the screen-space position of the world origin.
	OffsetX, OffsetY float64
	// Scale is the zoom factor (1.0 = no zoom).
	Scale float64
}

// NewViewport returns a viewport at the origin with no zoom.
func NewViewport() Viewport {
	return Viewport{Scale: 1}
}

// ScreenToWorld converts screen coordinates to world coordinates.
func (v Viewport) ScreenToWorld(sx, sy float64) (wx, wy float64) {
	return (sx - v.OffsetX) / v.Scale, (sy - v.OffsetY) / v.Scale
}

// WorldToScreen converts world coordinates to screen coordinates.
func (v Viewport) WorldToScreen(wx, wy float64) (sx, sy float64) {
	return wx*v.Scale + v.OffsetX, wy*v.Scale + v.OffsetY
}

// Pan adds a screen-space delta to the offset. Scale does not affect panning.
func (v *Viewport) Pan(dx, dy float64) {
	v.OffsetX += dx
	v.OffsetY += dy
}

// Zoom adds delta to the scale and clamps the result to [lo, hi]. The offset
// is left untouched, so zooming is anchored at the viewport origin.
func (v *Viewport) Zoom(delta, lo, hi float64) {
	v.Scale = math.Max(lo, math.Min(hi, v.Scale+delta))
}

// ZoomWheel applies one wheel notch. A positive deltaY (scrolling down)
// zooms out; anything else zooms in.
func (v *Viewport) ZoomWheel(deltaY float64) {
	dir := 1.0
	if deltaY > 0 {
		dir = -1
	}
	v.Zoom(dir*WheelZoomStep, MinWheelScale, MaxScale)
}

// ZoomIn applies the zoom-in button step.
func (v *Viewport) ZoomIn() {
	v.Zoom(ButtonZoomStep, MinButtonScale, MaxScale)
}

// ZoomOut applies the zoom-out button step.
func (v *Viewport) ZoomOut() {
	v.Zoom(-ButtonZoomStep, MinButtonScale, MaxScale)
}

// CenterOn resets the viewport for a new session on a screen of the given
// size: no zoom, world origin slightly up-left of the screen center.
func (v *Viewport) CenterOn(screenW, screenH float64) {
	v.OffsetX = screenW/2 - sessionOriginInset
	v.OffsetY = screenH/2 - sessionOriginInset
	v.Scale = 1
}

// GeoM returns the world-to-screen transform as an ebiten.GeoM.
func (v Viewport) GeoM() ebiten.GeoM {
	var g ebiten.GeoM
	g.Scale(v.Scale, v.Scale)
	g.Translate(v.OffsetX, v.OffsetY)
	return g
}

// VisibleBounds returns the world-space rectangle covered by a screen of the
// given size.
func (v Viewport) VisibleBounds(screenW, screenH float64) Rect {
	x0, y0 := v.ScreenToWorld(0, 0)
	return Rect{X: x0, Y: y0, Width: screenW / v.Scale, Height: screenH / v.Scale}
}
