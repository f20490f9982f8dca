package pixelnest

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

// Filter is the interface for visual effects applied to an item's rendered
// texture.
type Filter interface {
	// Apply renders src into dst with the filter effect.
	Apply(src, dst *ebiten.Image)
	// Padding returns the extra pixels needed around the source to accommodate
	// the effect (e.g. blur radius, shadow offset). Zero means no padding.
	Padding() int
}

// Drop shadow geometry, in item pixels.
const (
	ShadowOffsetX = 4
	ShadowOffsetY = 6
	ShadowOpacity = 0.6
)

// --- Kage shader sources ---
// All shaders use //kage:unit pixels as required by Ebitengine.
// Ebitengine uses premultiplied alpha; shaders un-premultiply before processing
// and re-premultiply output where needed.

const colorMatrixShaderSrc = `//kage:unit pixels
package main

var Matrix [20]float

func Fragment(dst vec4, src vec2, color vec4) vec4 {
	c := imageSrc0At(src)
	// Un-premultiply alpha.
	if c.a > 0 {
		c.rgb /= c.a
	}
	// Apply 4x5 color matrix (row-major, offset in elements 4,9,14,19).
	r := Matrix[0]*c.r + Matrix[1]*c.g + Matrix[2]*c.b + Matrix[3]*c.a + Matrix[4]
	g := Matrix[5]*c.r + Matrix[6]*c.g + Matrix[7]*c.b + Matrix[8]*c.a + Matrix[9]
	b := Matrix[10]*c.r + Matrix[11]*c.g + Matrix[12]*c.b + Matrix[13]*c.a + Matrix[14]
	a := Matrix[15]*c.r + Matrix[16]*c.g + Matrix[17]*c.b + Matrix[18]*c.a + Matrix[19]
	// Clamp and re-premultiply.
	r = clamp(r, 0, 1)
	g = clamp(g, 0, 1)
	b = clamp(b, 0, 1)
	a = clamp(a, 0, 1)
	return vec4(r*a, g*a, b*a, a)
}
`

// overlayShaderSrc composites Images[0] (the item layer) over Images[1] (a
// copy of the backdrop) with the separable overlay blend function.
const overlayShaderSrc = `//kage:unit pixels
package main

func overlay(s, b float) float {
	if b <= 0.5 {
		return 2 * s * b
	}
	return 1 - 2*(1-s)*(1-b)
}

func Fragment(dst vec4, src vec2, color vec4) vec4 {
	s := imageSrc0At(src)
	b := imageSrc1At(src)
	cs := s.rgb
	if s.a > 0 {
		cs /= s.a
	}
	cb := b.rgb
	if b.a > 0 {
		cb /= b.a
	}
	mixed := vec3(overlay(cs.r, cb.r), overlay(cs.g, cb.g), overlay(cs.b, cb.b))
	// Premultiplied source-over with the blended color in the overlap.
	rgb := s.rgb*(1-b.a) + b.rgb*(1-s.a) + s.a*b.a*mixed
	a := s.a + b.a*(1-s.a)
	return vec4(rgb, a)
}
`

// --- Lazy shader compilation (no sync.Once: rendering is single-threaded) ---

var (
	colorMatrixShader *ebiten.Shader
	overlayShader     *ebiten.Shader
)

func ensureColorMatrixShader() *ebiten.Shader {
	if colorMatrixShader == nil {
		s, err := ebiten.NewShader([]byte(colorMatrixShaderSrc))
		if err != nil {
			panic("pixelnest: failed to compile color matrix shader: " + err.Error())
		}
		colorMatrixShader = s
	}
	return colorMatrixShader
}

func ensureOverlayShader() *ebiten.Shader {
	if overlayShader == nil {
		s, err := ebiten.NewShader([]byte(overlayShaderSrc))
		if err != nil {
			panic("pixelnest: failed to compile overlay shader: " + err.Error())
		}
		overlayShader = s
	}
	return overlayShader
}

// --- Color matrices ---

// identityColorMatrix leaves colors unchanged.
var identityColorMatrix = [20]float64{
	1, 0, 0, 0, 0,
	0, 1, 0, 0, 0,
	0, 0, 1, 0, 0,
	0, 0, 0, 1, 0,
}

// brightnessMatrix scales RGB by b, like CSS brightness().
func brightnessMatrix(b float64) [20]float64 {
	return [20]float64{
		b, 0, 0, 0, 0,
		0, b, 0, 0, 0,
		0, 0, b, 0, 0,
		0, 0, 0, 1, 0,
	}
}

// contrastMatrix scales RGB around mid-gray, like CSS contrast().
func contrastMatrix(c float64) [20]float64 {
	t := (1.0 - c) / 2.0
	return [20]float64{
		c, 0, 0, 0, t,
		0, c, 0, 0, t,
		0, 0, c, 0, t,
		0, 0, 0, 1, 0,
	}
}

// saturateMatrix is the CSS saturate() matrix with Rec. 709 luminance weights.
func saturateMatrix(s float64) [20]float64 {
	return [20]float64{
		0.2126 + 0.7874*s, 0.7152 - 0.7152*s, 0.0722 - 0.0722*s, 0, 0,
		0.2126 - 0.2126*s, 0.7152 + 0.2848*s, 0.0722 - 0.0722*s, 0, 0,
		0.2126 - 0.2126*s, 0.7152 - 0.7152*s, 0.0722 + 0.9278*s, 0, 0,
		0, 0, 0, 1, 0,
	}
}

// multiplyColorMatrix returns the matrix that applies b, then a.
func multiplyColorMatrix(a, b [20]float64) [20]float64 {
	var out [20]float64
	for row := 0; row < 4; row++ {
		for col := 0; col < 5; col++ {
			var v float64
			for k := 0; k < 4; k++ {
				v += a[row*5+k] * b[k*5+col]
			}
			if col == 4 {
				v += a[row*5+4]
			}
			out[row*5+col] = v
		}
	}
	return out
}

// applyColorMatrix transforms one straight-alpha color.
func applyColorMatrix(m [20]float64, c [4]float64) [4]float64 {
	var out [4]float64
	for row := 0; row < 4; row++ {
		v := m[row*5+4]
		for k := 0; k < 4; k++ {
			v += m[row*5+k] * c[k]
		}
		out[row] = math.Max(0, math.Min(1, v))
	}
	return out
}

// cssColorMatrix composes brightness, contrast and saturation, in that order,
// from percentages where 100 is unchanged.
func cssColorMatrix(f Filters) [20]float64 {
	m := brightnessMatrix(f.Brightness / 100)
	m = multiplyColorMatrix(contrastMatrix(f.Contrast/100), m)
	m = multiplyColorMatrix(saturateMatrix(f.Saturation/100), m)
	return m
}

// --- ColorMatrixFilter ---

// ColorMatrixFilter applies a 4x5 color matrix transformation using a Kage shader.
// The matrix is stored in row-major order: [R_r, R_g, R_b, R_a, R_offset, G_r, ...].
type ColorMatrixFilter struct {
	Matrix      [20]float64
	uniforms    map[string]any
	matrixF32   [20]float32 // persistent buffer to avoid per-frame slice escape
	matrixSlice []float32   // persistent slice header pointing into matrixF32
	shaderOp    ebiten.DrawRectShaderOptions
}

// NewColorMatrixFilter creates a color matrix filter initialized to the identity.
func NewColorMatrixFilter() *ColorMatrixFilter {
	f := &ColorMatrixFilter{
		Matrix:   identityColorMatrix,
		uniforms: make(map[string]any, 1),
	}
	f.matrixSlice = f.matrixF32[:]
	f.uniforms["Matrix"] = f.matrixSlice
	return f
}

// SetFilters sets the matrix from an item's brightness, contrast and
// saturation percentages. Blur is handled by BlurFilter.
func (f *ColorMatrixFilter) SetFilters(fl Filters) {
	f.Matrix = cssColorMatrix(fl)
}

// Apply renders the color matrix transformation from src into dst.
func (f *ColorMatrixFilter) Apply(src, dst *ebiten.Image) {
	shader := ensureColorMatrixShader()
	for i, v := range f.Matrix {
		f.matrixF32[i] = float32(v)
	}
	bounds := src.Bounds()
	f.shaderOp.Images[0] = src
	f.shaderOp.Uniforms = f.uniforms
	dst.DrawRectShader(bounds.Dx(), bounds.Dy(), shader, &f.shaderOp)
}

// Padding returns 0; color matrix transforms don't expand the image bounds.
func (f *ColorMatrixFilter) Padding() int { return 0 }

// --- BlurFilter ---

// BlurFilter applies a Kawase iterative blur using downscale/upscale passes.
// Bilinear filtering during DrawImage does the work.
type BlurFilter struct {
	Radius int
	temps  []*ebiten.Image
	imgOp  ebiten.DrawImageOptions
}

// NewBlurFilter creates a blur filter with the given radius (in pixels).
func NewBlurFilter(radius int) *BlurFilter {
	return &BlurFilter{Radius: max(radius, 0)}
}

// blurPasses returns how many half-size passes a radius needs.
func blurPasses(radius int) int {
	if radius <= 0 {
		return 0
	}
	return max(int(math.Ceil(math.Log2(float64(radius)))), 1)
}

// Apply renders a Kawase blur from src into dst using iterative downscale/upscale.
func (f *BlurFilter) Apply(src, dst *ebiten.Image) {
	op := &f.imgOp
	passes := blurPasses(f.Radius)
	if passes == 0 {
		op.GeoM.Reset()
		op.ColorScale.Reset()
		op.Filter = ebiten.FilterNearest
		dst.DrawImage(src, op)
		return
	}

	srcBounds := src.Bounds()
	w, h := srcBounds.Dx(), srcBounds.Dy()

	for len(f.temps) < passes {
		f.temps = append(f.temps, nil)
	}
	for i := passes; i < len(f.temps); i++ {
		if f.temps[i] != nil {
			f.temps[i].Deallocate()
			f.temps[i] = nil
		}
	}
	f.temps = f.temps[:passes]

	// Downscale passes: each half-size.
	current := src
	for i := 0; i < passes; i++ {
		w = max(w/2, 1)
		h = max(h/2, 1)
		if f.temps[i] == nil || f.temps[i].Bounds().Dx() != w || f.temps[i].Bounds().Dy() != h {
			if f.temps[i] != nil {
				f.temps[i].Deallocate()
			}
			f.temps[i] = ebiten.NewImage(w, h)
		} else {
			f.temps[i].Clear()
		}
		drawScaled(f.temps[i], current, op)
		current = f.temps[i]
	}

	// Upscale back through the chain.
	for i := passes - 2; i >= 0; i-- {
		f.temps[i].Clear()
		drawScaled(f.temps[i], current, op)
		current = f.temps[i]
	}

	drawScaled(dst, current, op)
}

// drawScaled stretches src over all of dst with bilinear filtering.
func drawScaled(dst, src *ebiten.Image, op *ebiten.DrawImageOptions) {
	op.GeoM.Reset()
	op.ColorScale.Reset()
	sb, db := src.Bounds(), dst.Bounds()
	op.GeoM.Scale(float64(db.Dx())/float64(sb.Dx()), float64(db.Dy())/float64(sb.Dy()))
	op.Filter = ebiten.FilterLinear
	dst.DrawImage(src, op)
}

// Padding returns the blur radius; the offscreen buffer is expanded to avoid clipping.
func (f *BlurFilter) Padding() int { return f.Radius }

// --- ShadowFilter ---

// ShadowFilter draws a blurred, translucent black copy of the source offset by
// (ShadowOffsetX, ShadowOffsetY) beneath it, like a CSS drop-shadow.
type ShadowFilter struct {
	blur   BlurFilter
	silhou *ebiten.Image
	shadow *ebiten.Image
	imgOp  ebiten.DrawImageOptions
}

// NewShadowFilter creates a drop-shadow filter with the given blur radius.
func NewShadowFilter(radius int) *ShadowFilter {
	return &ShadowFilter{blur: BlurFilter{Radius: max(radius, 0)}}
}

// SetRadius changes the shadow blur radius.
func (f *ShadowFilter) SetRadius(radius int) {
	f.blur.Radius = max(radius, 0)
}

// Apply renders the shadow and then src into dst.
func (f *ShadowFilter) Apply(src, dst *ebiten.Image) {
	b := src.Bounds()
	f.silhou = ensureScratch(f.silhou, b.Dx(), b.Dy())
	f.shadow = ensureScratch(f.shadow, b.Dx(), b.Dy())

	op := &f.imgOp
	op.GeoM.Reset()
	op.GeoM.Translate(ShadowOffsetX, ShadowOffsetY)
	op.ColorScale.Reset()
	op.ColorScale.Scale(0, 0, 0, ShadowOpacity)
	op.Filter = ebiten.FilterNearest
	f.silhou.DrawImage(src, op)

	f.blur.Apply(f.silhou, f.shadow)

	op.GeoM.Reset()
	op.ColorScale.Reset()
	dst.DrawImage(f.shadow, op)
	dst.DrawImage(src, op)
}

// Padding covers the blur spread plus the offset.
func (f *ShadowFilter) Padding() int {
	return f.blur.Radius + max(ShadowOffsetX, ShadowOffsetY)
}

// ensureScratch returns a cleared image of exactly w x h, reusing img when it
// already matches.
func ensureScratch(img *ebiten.Image, w, h int) *ebiten.Image {
	if img != nil {
		if b := img.Bounds(); b.Dx() == w && b.Dy() == h {
			img.Clear()
			return img
		}
		img.Deallocate()
	}
	return ebiten.NewImage(w, h)
}

// --- Filter padding helper ---

// filterChainPadding returns the cumulative padding required by a slice of
// filters. The offscreen texture is sized to hold the sum.
func filterChainPadding(filters []Filter) int {
	pad := 0
	for _, f := range filters {
		pad += f.Padding()
	}
	return pad
}

// --- Filter application helper ---

// applyFilters runs a filter chain on src, ping-ponging between two images.
// Returns the image containing the final result and the other pooled image,
// which the caller must release along with the result when done.
func applyFilters(filters []Filter, src *ebiten.Image, pool *renderTexturePool) (result, spare *ebiten.Image) {
	if len(filters) == 0 {
		return src, nil
	}

	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	current := src
	var scratch *ebiten.Image

	for _, f := range filters {
		if scratch == nil {
			scratch = pool.Acquire(w, h)
		} else {
			scratch.Clear()
		}
		f.Apply(current, scratch)
		current, scratch = scratch, current
	}

	return current, scratch
}

// --- Per-item effect chain ---

// itemEffects holds reusable filters for rendering one item at a time.
type itemEffects struct {
	color  *ColorMatrixFilter
	blur   *BlurFilter
	shadow *ShadowFilter
	chain  []Filter
}

func newItemEffects() *itemEffects {
	return &itemEffects{
		color:  NewColorMatrixFilter(),
		blur:   NewBlurFilter(0),
		shadow: NewShadowFilter(0),
		chain:  make([]Filter, 0, 3),
	}
}

// configure returns the filter chain for an item whose texture is drawn at
// texScale texture pixels per item pixel. Blur and shadow radii are given in
// item pixels and converted. The returned slice is reused by the next call.
func (e *itemEffects) configure(it *Item, texScale float64) []Filter {
	e.chain = e.chain[:0]
	if it.Filters.Brightness != 100 || it.Filters.Contrast != 100 || it.Filters.Saturation != 100 {
		e.color.SetFilters(it.Filters)
		e.chain = append(e.chain, e.color)
	}
	if it.Filters.Blur > 0 {
		e.blur.Radius = max(int(math.Round(it.Filters.Blur*texScale)), 1)
		e.chain = append(e.chain, e.blur)
	}
	if it.Shadow > 0 {
		e.shadow.SetRadius(max(int(math.Round(it.Shadow*texScale)), 1))
		e.chain = append(e.chain, e.shadow)
	}
	return e.chain
}
