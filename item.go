package pixelnest

import "math"

// Auto-size thresholds applied once when an asset is placed.
const (
	placeMaxDimension = 400
	placeTinyLimit    = 64
	placeSmallLimit   = 128
)

const (
	// MinItemWidth is the smallest width a resize gesture can produce.
	MinItemWidth = 16
	// DuplicateOffset is the world-space shift applied to duplicated items.
	DuplicateOffset = 20
	// ResizeHandleRadius is the hit radius of the bottom-right resize handle,
	// in item-local units.
	ResizeHandleRadius = 16
	// DefaultShadow is the blur radius used when the shadow is toggled on.
	DefaultShadow = 5
)

// Filters holds per-item visual adjustments. Brightness, Contrast and
// Saturation are percentages where 100 leaves the image unchanged; Blur is a
// radius in pixels.
type Filters struct {
	Brightness float64
	Contrast   float64
	Saturation float64
	Blur       float64
}

// DefaultFilters leaves the image unchanged.
var DefaultFilters = Filters{Brightness: 100, Contrast: 100, Saturation: 100}

// IsIdentity reports whether the filters leave the image unchanged.
func (f Filters) IsIdentity() bool {
	return f == DefaultFilters
}

// Group is a named build layer. Items belong to exactly one group; z-index is
// only meaningful between items of the same group.
type Group struct {
	ID      string
	Name    string
	Visible bool
	Locked  bool
}

// ItemHandle identifies which part of an item a pointer went down on.
type ItemHandle uint8

const (
	HandleNone   ItemHandle = iota // pointer missed the item
	HandleBody                     // drag handle (the item itself)
	HandleResize                   // bottom-right resize handle
)

// Item is an asset placed on the canvas.
type Item struct {
	ID      string
	AssetID string
	GroupID string
	Name    string

	// Position is the world-space top-left corner.
	Position Point
	// Size is the world-space width and height.
	Size Size
	// ZIndex orders items within their group; higher draws on top.
	ZIndex int

	FlipX bool
	// Rotation is in degrees, clockwise, around the item center.
	Rotation float64
	Locked   bool

	Filters   Filters
	BlendMode BlendMode
	// Shadow is the drop-shadow blur radius; zero disables the shadow.
	Shadow float64
}

// AutoSize computes the initial placed size from an asset's native
// dimensions. Large images are scaled down so their longest side is 400;
// tiny pixel art is scaled up x4 (both sides under 64) or x2 (both under 128).
func AutoSize(native Size) Size {
	w, h := native.Width, native.Height
	switch {
	case w > placeMaxDimension || h > placeMaxDimension:
		scale := math.Min(placeMaxDimension/float64(w), placeMaxDimension/float64(h))
		return Size{round(float64(w) * scale), round(float64(h) * scale)}
	case w < placeTinyLimit && h < placeTinyLimit:
		return Size{w * 4, h * 4}
	case w < placeSmallLimit && h < placeSmallLimit:
		return Size{w * 2, h * 2}
	default:
		return native
	}
}

// Transform returns the item's local-to-world affine matrix.
func (it *Item) Transform() [6]float64 {
	return itemTransform(it)
}

// WorldToLocal converts a world-space point into the item's unrotated,
// unflipped local frame where (0,0) is the top-left corner.
func (it *Item) WorldToLocal(wx, wy float64) (lx, ly float64) {
	return transformPoint(invertAffine(itemTransform(it)), wx, wy)
}

// HitTest reports which part of the item lies under the world-space point.
// The resize handle is only considered when withHandle is true, which the
// scene sets for the selected, unlocked item.
func (it *Item) HitTest(wx, wy float64, withHandle bool) ItemHandle {
	lx, ly := it.WorldToLocal(wx, wy)
	w, h := float64(it.Size.Width), float64(it.Size.Height)
	if withHandle {
		handle := HitCircle{CenterX: w, CenterY: h, Radius: ResizeHandleRadius}
		if handle.Contains(lx, ly) {
			return HandleResize
		}
	}
	body := HitRect{Width: w, Height: h}
	if body.Contains(lx, ly) {
		return HandleBody
	}
	return HandleNone
}

// Center returns the world-space center of the item.
func (it *Item) Center() (float64, float64) {
	return float64(it.Position.X) + float64(it.Size.Width)/2,
		float64(it.Position.Y) + float64(it.Size.Height)/2
}

// --- Built-in hit shapes ---

// HitRect is an axis-aligned rectangular hit area in local coordinates.
type HitRect struct {
	X, Y, Width, Height float64
}

// Contains reports whether (x, y) lies inside the rectangle.
func (r HitRect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// HitCircle is a circular hit area in local coordinates.
type HitCircle struct {
	CenterX, CenterY, Radius float64
}

// Contains reports whether (x, y) lies inside or on the circle.
func (c HitCircle) Contains(x, y float64) bool {
	dx := x - c.CenterX
	dy := y - c.CenterY
	return dx*dx+dy*dy <= c.Radius*c.Radius
}
