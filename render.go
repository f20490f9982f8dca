package pixelnest

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// Colors are premultiplied.
var (
	canvasBackground      = color.RGBA{0xf3, 0xf4, 0xf6, 0xff}
	gridDotColor          = color.RGBA{0xcb, 0xd5, 0xe1, 0xff}
	selectionColor        = color.RGBA{0x63, 0x66, 0xf1, 0xff}
	lockedSelectionColor  = color.RGBA{0x77, 0x22, 0x22, 0x80}
	handleColor           = color.RGBA{0x4f, 0x46, 0xe5, 0xff}
	videoPlaceholderColor = color.RGBA{0x1f, 0x29, 0x37, 0xff}
	editorBackdrop        = color.RGBA{0x11, 0x18, 0x27, 0xff}
	cropShade             = color.RGBA{0, 0, 0, 0x99}
	noticeBackground      = color.RGBA{0x1f, 0x29, 0x37, 0xe6}
)

const (
	// gridSpacing is the world distance between grid dots.
	gridSpacing = 32
	// gridMinStep hides the grid when dots would be closer than this on
	// screen.
	gridMinStep      = 6
	selectionStroke  = 2
	handleBorder     = 2
	cropHandleMarker = 8
	checkerCell      = 10
	loupeOffset      = 24
)

// textureCache keeps the GPU copy of an image that changes by revision.
type textureCache struct {
	img   *ebiten.Image
	rev   int
	valid bool
}

// fresh reports whether the cache holds revision rev.
func (c *textureCache) fresh(rev int) bool {
	return c.valid && c.img != nil && c.rev == rev
}

// get returns the texture for src at revision rev, uploading src when the
// cached revision differs.
func (c *textureCache) get(src *image.NRGBA, rev int) *ebiten.Image {
	if c.fresh(rev) {
		return c.img
	}
	b := src.Bounds()
	if c.img != nil && c.img.Bounds().Size() == b.Size() && src.Stride == 4*b.Dx() {
		c.img.WritePixels(src.Pix[:4*b.Dx()*b.Dy()])
	} else {
		c.dispose()
		c.img = ebiten.NewImageFromImage(src)
	}
	c.rev, c.valid = rev, true
	return c.img
}

func (c *textureCache) dispose() {
	if c.img != nil {
		c.img.Deallocate()
		c.img = nil
	}
	c.valid = false
}

// itemGeoM returns the item's local-to-world transform as an ebiten.GeoM.
func itemGeoM(it *Item) ebiten.GeoM {
	m := itemTransform(it)
	var g ebiten.GeoM
	g.SetElement(0, 0, m[0])
	g.SetElement(1, 0, m[1])
	g.SetElement(0, 1, m[2])
	g.SetElement(1, 1, m[3])
	g.SetElement(0, 2, m[4])
	g.SetElement(1, 2, m[5])
	return g
}

// selectionCorners returns the item's corners on screen in outline order.
func selectionCorners(it *Item, vp Viewport) [4]Vec2 {
	g := itemGeoM(it)
	g.Concat(vp.GeoM())
	w, h := float64(it.Size.Width), float64(it.Size.Height)
	local := [4]Vec2{{0, 0}, {w, 0}, {w, h}, {0, h}}
	var out [4]Vec2
	for i, p := range local {
		out[i].X, out[i].Y = g.Apply(p.X, p.Y)
	}
	return out
}

// gridStart returns the first dot position at or after 0 for a grid whose
// origin is at offset with the given step.
func gridStart(offset, step float64) float64 {
	s := math.Mod(offset, step)
	if s < 0 {
		s += step
	}
	return s
}

// cropViewGeoM maps container-local crop coordinates to the screen,
// magnified around the container center.
func cropViewGeoM(area Rect, magnification float64) ebiten.GeoM {
	var g ebiten.GeoM
	g.Translate(-area.Width/2, -area.Height/2)
	g.Scale(magnification, magnification)
	g.Translate(area.X+area.Width/2, area.Y+area.Height/2)
	return g
}

// cropShadeRects returns the four container-local rectangles outside sel.
func cropShadeRects(sel CropRect, w, h float64) [4]CropRect {
	return [4]CropRect{
		{0, 0, w, sel.Y},
		{0, sel.Y + sel.H, w, h - sel.Y - sel.H},
		{0, sel.Y, sel.X, sel.H},
		{sel.X + sel.W, sel.Y, w - sel.X - sel.W, sel.H},
	}
}

// --- Draw ---

// Draw renders the current screen, the notice and any queued screenshots.
func (e *Editor) Draw(screen *ebiten.Image) {
	switch e.screen {
	case ScreenCrop:
		e.drawCrop(screen)
	case ScreenCleanup:
		e.drawCleanup(screen)
	default:
		e.drawCanvas(screen)
	}
	e.drawNotice(screen)
	e.flushScreenshots(screen)
	if e.cfg.Debug {
		e.fps.draw(screen)
	}
}

func (e *Editor) drawCanvas(screen *ebiten.Image) {
	screen.Fill(canvasBackground)
	vp := *e.scene.Viewport()
	sb := screen.Bounds()
	drawGrid(screen, vp)

	visible := vp.VisibleBounds(float64(sb.Dx()), float64(sb.Dy()))
	order := e.scene.RenderOrder()
	stats := debugStats{itemCount: len(order)}
	for _, it := range order {
		if it.Size.Width <= 0 || it.Size.Height <= 0 {
			continue
		}
		tex := e.scene.Asset(it.AssetID).texture()
		if tex == nil {
			continue
		}
		chain := e.effects.configure(it, vp.Scale)
		pad := filterChainPadding(chain)
		if !itemBounds(it, float64(pad)/vp.Scale).Intersects(visible) {
			continue
		}
		stats.drawnCount++
		if len(chain) > 0 {
			stats.filteredCount++
		}
		e.drawItem(screen, it, tex, chain, pad, vp)
	}

	if sel := e.scene.Selected(); sel != nil {
		if g := e.scene.Group(sel.GroupID); g == nil || g.Visible {
			e.drawSelection(screen, sel, vp)
		}
	}

	stats.pooledImages = e.pool.Idle()
	e.scene.debugLogFrame(stats)
	e.drawStatus(screen, fmt.Sprintf("zoom %.0f%%  items %d  group %s",
		vp.Scale*100, len(order), activeGroupName(e.scene)))
}

func activeGroupName(s *Scene) string {
	if g := s.ActiveGroup(); g != nil {
		return g.Name
	}
	return "-"
}

// gridStep returns the on-screen distance between grid dots, and false when
// the dots would be too dense to draw.
func gridStep(scale float64) (float64, bool) {
	step := gridSpacing * scale
	return step, step >= gridMinStep
}

func drawGrid(screen *ebiten.Image, vp Viewport) {
	step, ok := gridStep(vp.Scale)
	if !ok {
		return
	}
	b := screen.Bounds()
	for y := gridStart(vp.OffsetY, step); y < float64(b.Dy()); y += step {
		for x := gridStart(vp.OffsetX, step); x < float64(b.Dx()); x += step {
			vector.DrawFilledRect(screen, float32(x)-1, float32(y)-1, 2, 2, gridDotColor, false)
		}
	}
}

// drawItem draws one item. With a filter chain the item is first drawn
// unrotated at screen resolution into a padded pooled layer, filtered, and
// the layer is placed with the item transform.
func (e *Editor) drawItem(screen *ebiten.Image, it *Item, tex *ebiten.Image, chain []Filter, pad int, vp Viewport) {
	tb := tex.Bounds()
	w, h := float64(it.Size.Width), float64(it.Size.Height)

	img := tex
	var geo ebiten.GeoM
	var result, spare *ebiten.Image
	if len(chain) == 0 {
		geo.Scale(w/float64(tb.Dx()), h/float64(tb.Dy()))
	} else {
		lw := max(int(math.Ceil(w*vp.Scale)), 1)
		lh := max(int(math.Ceil(h*vp.Scale)), 1)
		layer := e.pool.Acquire(lw+2*pad, lh+2*pad)
		var op ebiten.DrawImageOptions
		op.GeoM.Scale(float64(lw)/float64(tb.Dx()), float64(lh)/float64(tb.Dy()))
		op.GeoM.Translate(float64(pad), float64(pad))
		op.Filter = ebiten.FilterLinear
		layer.DrawImage(tex, &op)

		result, spare = applyFilters(chain, layer, &e.pool)
		img = result
		geo.Translate(-float64(pad), -float64(pad))
		geo.Scale(w/float64(lw), h/float64(lh))
	}
	geo.Concat(itemGeoM(it))
	geo.Concat(vp.GeoM())

	if it.BlendMode == BlendOverlay {
		e.drawOverlay(screen, img, geo)
	} else {
		var op ebiten.DrawImageOptions
		op.GeoM = geo
		op.Blend = it.BlendMode.EbitenBlend()
		op.Filter = ebiten.FilterLinear
		screen.DrawImage(img, &op)
	}

	e.pool.Release(result)
	e.pool.Release(spare)
}

// drawOverlay composites img with the overlay blend. The item is drawn into
// a screen-sized layer and mixed with a copy of the backdrop by a shader.
func (e *Editor) drawOverlay(screen, img *ebiten.Image, geo ebiten.GeoM) {
	sb := screen.Bounds()
	w, h := sb.Dx(), sb.Dy()
	r := image.Rect(0, 0, w, h)

	layer := e.pool.Acquire(w, h)
	backdrop := e.pool.Acquire(w, h)
	defer e.pool.Release(layer)
	defer e.pool.Release(backdrop)
	layerView := layer.SubImage(r).(*ebiten.Image)
	backdropView := backdrop.SubImage(r).(*ebiten.Image)

	var op ebiten.DrawImageOptions
	op.GeoM = geo
	op.Filter = ebiten.FilterLinear
	layerView.DrawImage(img, &op)
	backdropView.DrawImage(screen, nil)

	var sop ebiten.DrawRectShaderOptions
	sop.Images[0] = layerView
	sop.Images[1] = backdropView
	sop.Blend = ebiten.BlendCopy
	screen.DrawRectShader(w, h, ensureOverlayShader(), &sop)
}

// drawSelection outlines the selected item and, when it can be edited,
// draws the resize handle on its bottom-right corner.
func (e *Editor) drawSelection(screen *ebiten.Image, it *Item, vp Viewport) {
	editable := e.scene.editable(it)
	clr := selectionColor
	if !editable {
		clr = lockedSelectionColor
	}
	c := selectionCorners(it, vp)
	for i := range c {
		a, b := c[i], c[(i+1)%len(c)]
		vector.StrokeLine(screen, float32(a.X), float32(a.Y), float32(b.X), float32(b.Y), selectionStroke, clr, true)
	}
	if !editable {
		return
	}
	hx, hy := float32(c[2].X), float32(c[2].Y)
	r := float32(ResizeHandleRadius * vp.Scale)
	vector.DrawFilledCircle(screen, hx, hy, r, handleColor, true)
	vector.StrokeCircle(screen, hx, hy, r, handleBorder, color.White, true)
}

func (e *Editor) drawCrop(screen *ebiten.Image) {
	screen.Fill(editorBackdrop)
	c := e.crop
	tex := c.tex.get(c.src, 0)
	tb := tex.Bounds()
	view := cropViewGeoM(c.area, c.sel.Magnification())

	var op ebiten.DrawImageOptions
	op.GeoM.Scale(c.area.Width/float64(tb.Dx()), c.area.Height/float64(tb.Dy()))
	op.GeoM.Concat(view)
	op.Filter = ebiten.FilterLinear
	screen.DrawImage(tex, &op)

	if sel, ok := c.sel.Selection(); ok {
		for _, r := range cropShadeRects(sel, c.area.Width, c.area.Height) {
			if r.W <= 0 || r.H <= 0 {
				continue
			}
			x0, y0 := view.Apply(r.X, r.Y)
			x1, y1 := view.Apply(r.X+r.W, r.Y+r.H)
			vector.DrawFilledRect(screen, float32(x0), float32(y0), float32(x1-x0), float32(y1-y0), cropShade, false)
		}
		x0, y0 := view.Apply(sel.X, sel.Y)
		x1, y1 := view.Apply(sel.X+sel.W, sel.Y+sel.H)
		vector.StrokeRect(screen, float32(x0), float32(y0), float32(x1-x0), float32(y1-y0), selectionStroke, color.White, false)
		for _, p := range [...][2]float64{
			{x0, y0}, {(x0 + x1) / 2, y0}, {x1, y0},
			{x0, (y0 + y1) / 2}, {x1, (y0 + y1) / 2},
			{x0, y1}, {(x0 + x1) / 2, y1}, {x1, y1},
		} {
			vector.DrawFilledRect(screen, float32(p[0])-cropHandleMarker/2, float32(p[1])-cropHandleMarker/2,
				cropHandleMarker, cropHandleMarker, color.White, false)
		}
	}
	e.drawStatus(screen, fmt.Sprintf("crop %s: drag to select  [Enter] apply  [Esc] cancel  [Backspace] clear", c.name))
}

func (e *Editor) drawCleanup(screen *ebiten.Image) {
	screen.Fill(editorBackdrop)
	c := e.cleanup
	a := c.area
	aw, ah := max(int(a.Width), 1), max(int(a.Height), 1)

	if c.checker.img == nil || c.checker.img.Bounds().Dx() != aw || c.checker.img.Bounds().Dy() != ah {
		pattern := image.NewNRGBA(image.Rect(0, 0, aw, ah))
		fillChecker(pattern, checkerCell)
		c.checker.dispose()
		c.checker.get(pattern, 0)
	}
	var op ebiten.DrawImageOptions
	op.GeoM.Translate(a.X, a.Y)
	screen.DrawImage(c.checker.img, &op)

	work := c.ed.Working()
	tex := c.tex.get(work, c.ed.Revision())
	tb := tex.Bounds()
	op.GeoM.Reset()
	op.GeoM.Scale(a.Width/float64(tb.Dx()), a.Height/float64(tb.Dy()))
	op.GeoM.Translate(a.X, a.Y)
	op.Filter = ebiten.FilterLinear
	screen.DrawImage(tex, &op)

	if c.ed.Stroking() {
		rev := c.ed.Revision()
		if !c.loupe.fresh(rev) {
			if img, ok := c.ed.Magnifier(); ok {
				c.loupe.get(img, rev)
			}
		}
		if c.loupe.img != nil {
			sb := screen.Bounds()
			lx := clamp(e.lastCursor.X+loupeOffset, 0, float64(sb.Dx()-MagnifierSize))
			ly := clamp(e.lastCursor.Y-loupeOffset-MagnifierSize, 0, float64(sb.Dy()-MagnifierSize))
			op.GeoM.Reset()
			op.GeoM.Translate(lx, ly)
			op.Filter = ebiten.FilterNearest
			screen.DrawImage(c.loupe.img, &op)
			vector.StrokeRect(screen, float32(lx), float32(ly), MagnifierSize, MagnifierSize, selectionStroke, color.White, false)
		}
	}

	status := fmt.Sprintf("background: tool %s  tolerance %d  brush %d  [W]and [E]raser [A]uto [C]rop [Ctrl+Z] undo [Enter] done [Esc] cancel",
		c.ed.Tool(), c.ed.Tolerance(), c.ed.BrushSize())
	if c.ed.Processing() {
		status = "background: removing automatically..."
	}
	e.drawStatus(screen, status)
}

func (e *Editor) drawStatus(screen *ebiten.Image, msg string) {
	ebitenutil.DebugPrintAt(screen, msg, 8, 8)
}

// drawNotice shows the current notice centered near the bottom, faded by
// its alpha.
func (e *Editor) drawNotice(screen *ebiten.Image) {
	if e.notice == "" || e.noticeAlpha <= 0 {
		return
	}
	sb := screen.Bounds()
	const charW, boxH = 6, 24
	w := float64(len(e.notice)*charW + 24)
	x := (float64(sb.Dx()) - w) / 2
	y := float64(sb.Dy()) - 64

	a := float32(e.noticeAlpha)
	bg := color.RGBA{
		R: uint8(float32(noticeBackground.R) * a),
		G: uint8(float32(noticeBackground.G) * a),
		B: uint8(float32(noticeBackground.B) * a),
		A: uint8(float32(noticeBackground.A) * a),
	}
	vector.DrawFilledRect(screen, float32(x), float32(y), float32(w), boxH, bg, true)
	ebitenutil.DebugPrintAt(screen, e.notice, int(x)+12, int(y)+4)
}
