package pixelnest

import (
	"errors"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

// Vec2 is a 2D vector used for screen-space pointer positions and deltas.
type Vec2 struct {
	X, Y float64
}

// Point is an integer world-space position. Item positions are rounded on
// every mutation so they never drift to sub-pixel values.
type Point struct {
	X, Y int
}

// Size is an integer width and height in pixels.
type Size struct {
	Width, Height int
}

// Rect is an axis-aligned rectangle. The coordinate system has its origin at
// the top-left, with Y increasing downward.
type Rect struct {
	X, Y, Width, Height float64
}

// Contains reports whether the point (x, y) lies inside the rectangle.
// Points on the edge are considered inside.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// Intersects reports whether r and other overlap. Touching edges count.
func (r Rect) Intersects(other Rect) bool {
	return r.X <= other.X+other.Width && r.X+r.Width >= other.X &&
		r.Y <= other.Y+other.Height && r.Y+r.Height >= other.Y
}

// Sentinel errors returned by scene and editor operations. User-input
// rejections are reported with these so the editor can show a notice instead
// of mutating state.
var (
	ErrGroupUnavailable = errors.New("pixelnest: select an unlocked, visible build to place items")
	ErrGroupNotFound    = errors.New("pixelnest: group not found")
	ErrItemNotFound     = errors.New("pixelnest: item not found")
	ErrItemLocked       = errors.New("pixelnest: item or its group is locked")
	ErrAssetNotFound    = errors.New("pixelnest: asset not found")
	ErrNotAnImage       = errors.New("pixelnest: asset is not an image")
	ErrEmptyPrompt      = errors.New("pixelnest: prompt is empty")
	ErrBusy             = errors.New("pixelnest: editor is processing")
)

// BlendMode selects how a placed item composites over what is below it.
type BlendMode uint8

const (
	BlendNormal   BlendMode = iota // source-over (standard alpha blending)
	BlendMultiply                  // multiply (source * destination; only darkens)
	BlendScreen                    // screen (1 - (1-src)*(1-dst); only brightens)
	BlendOverlay                   // multiply or screen depending on the backdrop
)

var blendModeNames = [...]string{"normal", "multiply", "screen", "overlay"}

// String returns the CSS-style name of the blend mode.
func (b BlendMode) String() string {
	if int(b) < len(blendModeNames) {
		return blendModeNames[b]
	}
	return "normal"
}

// ParseBlendMode maps a blend mode name back to its value. Unknown names
// report false.
func ParseBlendMode(name string) (BlendMode, bool) {
	for i, n := range blendModeNames {
		if n == name {
			return BlendMode(i), true
		}
	}
	return BlendNormal, false
}

// EbitenBlend returns the ebiten.Blend value corresponding to this BlendMode.
// BlendOverlay cannot be expressed with blend factors; it is rendered by a
// shader that reads the backdrop, and reports source-over here.
func (b BlendMode) EbitenBlend() ebiten.Blend {
	switch b {
	case BlendMultiply:
		return ebiten.Blend{
			BlendFactorSourceRGB:        ebiten.BlendFactorDestinationColor,
			BlendFactorSourceAlpha:      ebiten.BlendFactorDestinationAlpha,
			BlendFactorDestinationRGB:   ebiten.BlendFactorOneMinusSourceAlpha,
			BlendFactorDestinationAlpha: ebiten.BlendFactorOneMinusSourceAlpha,
			BlendOperationRGB:           ebiten.BlendOperationAdd,
			BlendOperationAlpha:         ebiten.BlendOperationAdd,
		}
	case BlendScreen:
		return ebiten.Blend{
			BlendFactorSourceRGB:        ebiten.BlendFactorOne,
			BlendFactorSourceAlpha:      ebiten.BlendFactorOne,
			BlendFactorDestinationRGB:   ebiten.BlendFactorOneMinusSourceColor,
			BlendFactorDestinationAlpha: ebiten.BlendFactorOneMinusSourceAlpha,
			BlendOperationRGB:           ebiten.BlendOperationAdd,
			BlendOperationAlpha:         ebiten.BlendOperationAdd,
		}
	default:
		return ebiten.BlendSourceOver
	}
}

// round rounds to the nearest integer with halves going toward +Inf, so
// -2.5 becomes -2 and 2.5 becomes 3.
func round(v float64) int {
	return int(math.Floor(v + 0.5))
}
