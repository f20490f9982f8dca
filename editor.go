package pixelnest

import (
	"context"
	"errors"
	"fmt"
	"image"
	"math"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/tanema/gween/ease"
)

// Screen is the editor view currently shown.
type Screen uint8

const (
	ScreenCanvas  Screen = iota // the infinite canvas
	ScreenCrop                  // rectangle crop over a single image
	ScreenCleanup               // background removal over a single image
)

var screenNames = [...]string{"canvas", "crop", "cleanup"}

func (s Screen) String() string {
	if int(s) < len(screenNames) {
		return screenNames[s]
	}
	return "canvas"
}

// Editor defaults.
const (
	DefaultEditorWidth  = 1280
	DefaultEditorHeight = 800

	// viewMargin is the gap kept around an image on the crop and cleanup
	// screens.
	viewMargin = 48

	noticeHoldSeconds = 3.0
	noticeFadeSeconds = 0.5

	// toolStep is how far the +/- keys move the tolerance or brush slider.
	toolStep = 5
)

// Notices for rejected user input.
const (
	NoticeGroupUnavailable = "Select an unlocked, visible build to place items."
	NoticeItemLocked       = "That item is locked."
	NoticeNotAnImage       = "Only images can be edited."
	NoticeBusy             = "Please wait for the current request to finish."
)

// EditorConfig configures an Editor. Zero values fall back to defaults.
type EditorConfig struct {
	Width, Height int
	// Service backs automatic background removal and prompt generation. A
	// nil service makes both report the service as unavailable.
	Service ImageService
	Debug   bool
	// ScreenshotDir receives PNGs queued with Screenshot. Defaults to
	// "screenshots".
	ScreenshotDir string
	// Confirm asks the user a yes/no question before destructive actions.
	// A nil Confirm declines.
	Confirm func(prompt string) bool
}

// cropView is the state of the crop screen.
type cropView struct {
	itemID string
	name   string
	src    *image.NRGBA
	tex    textureCache
	sel    *CropSelection
	// area is where the image is drawn on screen, at its fitted size.
	area     Rect
	returnTo Screen
}

// cleanupView is the state of the background removal screen.
type cleanupView struct {
	itemID string
	name   string
	ed     *BackgroundEditor
	area   Rect

	tex     textureCache
	checker textureCache
	loupe   textureCache
}

type generateResult struct {
	asset *ImageAsset
	err   error
}

// Editor drives a Scene from Ebitengine input and draws it. It implements
// ebiten.Game. Its methods must be called from the game loop goroutine;
// service calls run on their own goroutines and are applied during Update.
type Editor struct {
	scene *Scene
	cfg   EditorConfig

	ctx    context.Context
	cancel context.CancelFunc

	screen  Screen
	crop    *cropView
	cleanup *cleanupView

	notice      string
	noticeAlpha float64
	noticeHold  float64
	noticeFade  *TweenGroup

	generating chan generateResult

	pointerDown bool
	lastCursor  Vec2
	keyBuf      []ebiten.Key

	injectQueue     []syntheticPointerEvent
	testRunner      *TestRunner
	screenshotQueue []string
	exitAfterScript bool

	pool    renderTexturePool
	effects *itemEffects
	frame   int
	fps     fpsCounter
}

// NewEditor wraps scene in an editor. A nil scene starts an empty one.
func NewEditor(scene *Scene, cfg EditorConfig) *Editor {
	if scene == nil {
		scene = NewScene()
	}
	if cfg.Width <= 0 {
		cfg.Width = DefaultEditorWidth
	}
	if cfg.Height <= 0 {
		cfg.Height = DefaultEditorHeight
	}
	if cfg.ScreenshotDir == "" {
		cfg.ScreenshotDir = "screenshots"
	}
	e := &Editor{
		scene:   scene,
		cfg:     cfg,
		effects: newItemEffects(),
	}
	e.ctx, e.cancel = context.WithCancel(context.Background())
	scene.SetDebugMode(cfg.Debug)
	scene.SetScreenSize(float64(cfg.Width), float64(cfg.Height))
	scene.StartSession()
	return e
}

// Scene returns the edited scene.
func (e *Editor) Scene() *Scene { return e.scene }

// Screen returns the view currently shown.
func (e *Editor) Screen() Screen { return e.screen }

// Frame returns how many updates have run.
func (e *Editor) Frame() int { return e.frame }

// Close cancels in-flight service requests. Their results are discarded.
func (e *Editor) Close() {
	e.cancel()
	if e.cleanup != nil {
		e.cleanup.ed.Close()
	}
	e.generating = nil
}

// --- Notices ---

// Notice returns the message currently shown, or "".
func (e *Editor) Notice() string { return e.notice }

// ShowNotice shows msg for a few seconds, then fades it out.
func (e *Editor) ShowNotice(msg string) {
	if msg == "" {
		return
	}
	e.notice = msg
	e.noticeAlpha = 1
	e.noticeHold = noticeHoldSeconds
	e.noticeFade = nil
	e.scene.debugf("notice: %s", msg)
}

func (e *Editor) updateNotice(dt float64) {
	if e.notice == "" {
		return
	}
	if e.noticeHold > 0 {
		e.noticeHold -= dt
		if e.noticeHold <= 0 {
			e.noticeFade = TweenValue(&e.noticeAlpha, 0, noticeFadeSeconds, ease.OutQuad)
		}
		return
	}
	e.noticeFade.Update(float32(dt))
	if e.noticeFade == nil || e.noticeFade.Done {
		e.notice = ""
		e.noticeFade = nil
	}
}

// reject shows the notice for a rejected action. Unknown errors are shown
// as is.
func (e *Editor) reject(err error) {
	switch {
	case err == nil:
	case errors.Is(err, ErrGroupUnavailable):
		e.ShowNotice(NoticeGroupUnavailable)
	case errors.Is(err, ErrItemLocked):
		e.ShowNotice(NoticeItemLocked)
	case errors.Is(err, ErrNotAnImage):
		e.ShowNotice(NoticeNotAnImage)
	case errors.Is(err, ErrBusy):
		e.ShowNotice(NoticeBusy)
	default:
		e.ShowNotice(err.Error())
	}
}

// --- Generation ---

// Generate asks the image service for a new asset described by prompt. The
// request runs on its own goroutine; the asset is added to the library on a
// later Update. Only one request runs at a time.
func (e *Editor) Generate(prompt string) error {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return ErrEmptyPrompt
	}
	if e.generating != nil {
		return ErrBusy
	}
	done := make(chan generateResult, 1)
	e.generating = done
	ctx, svc := e.ctx, e.cfg.Service
	go func() {
		a, err := GenerateAsset(ctx, svc, prompt)
		done <- generateResult{a, err}
	}()
	e.scene.debugf("generating %q", prompt)
	return nil
}

// Generating reports whether a generation request is in flight.
func (e *Editor) Generating() bool {
	return e.generating != nil
}

// WaitGenerate blocks until the in-flight generation finishes or ctx is
// done, then applies it like Update would.
func (e *Editor) WaitGenerate(ctx context.Context) error {
	if e.generating == nil {
		return nil
	}
	select {
	case r := <-e.generating:
		e.applyGenerated(r)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (e *Editor) pollGenerate() {
	if e.generating == nil {
		return
	}
	select {
	case r := <-e.generating:
		e.applyGenerated(r)
	default:
	}
}

func (e *Editor) applyGenerated(r generateResult) {
	e.generating = nil
	if r.err != nil {
		e.ShowNotice(GenerateNotice(r.err))
		return
	}
	e.scene.AddAsset(r.asset)
}

// --- Asset library ---

// PlaceAsset places the asset at index i of the library into the active
// group. Rejections are shown as notices.
func (e *Editor) PlaceAsset(i int) error {
	assets := e.scene.Assets()
	if i < 0 || i >= len(assets) {
		return fmt.Errorf("place asset %d: %w", i, ErrAssetNotFound)
	}
	_, err := e.scene.Place(assets[i].AssetID())
	e.reject(err)
	return err
}

// DeleteAsset removes an asset and every item placed from it once the user
// confirms.
func (e *Editor) DeleteAsset(id string) (bool, error) {
	return e.scene.DeleteAsset(id, e.cfg.Confirm)
}

// --- Crop screen ---

// editableImage returns the image asset behind an item.
func (e *Editor) editableImage(itemID string) (*Item, *ImageAsset, error) {
	it, err := e.scene.mustItem("edit", itemID)
	if err != nil {
		return nil, nil, err
	}
	a, ok := e.scene.Asset(it.AssetID).(*ImageAsset)
	if !ok || a.Pixels == nil {
		return nil, nil, fmt.Errorf("edit %q: %w", itemID, ErrNotAnImage)
	}
	return it, a, nil
}

// OpenCrop opens the crop screen for an item's image.
func (e *Editor) OpenCrop(itemID string) error {
	it, a, err := e.editableImage(itemID)
	if err != nil {
		e.reject(err)
		return err
	}
	e.openCrop(it.ID, a.Name, a.Pixels, ScreenCanvas)
	return nil
}

func (e *Editor) openCrop(itemID, name string, src *image.NRGBA, returnTo Screen) {
	b := src.Bounds()
	area := fitRect(Size{b.Dx(), b.Dy()}, e.viewBounds())
	e.crop = &cropView{
		itemID:   itemID,
		name:     name,
		src:      src,
		sel:      NewCropSelection(area.Width, area.Height),
		area:     area,
		returnTo: returnTo,
	}
	e.screen = ScreenCrop
	e.pointerDown = false
}

// CropSelection returns the selection of the open crop screen, or nil.
func (e *Editor) CropSelection() *CropSelection {
	if e.crop == nil {
		return nil
	}
	return e.crop.sel
}

// ApplyCrop confirms the crop screen. Opened from the canvas, the cropped
// image is saved as a new asset and the item switches to it; nothing is
// saved without a usable selection. Opened from the background editor, the
// crop is committed to its history.
func (e *Editor) ApplyCrop() error {
	c := e.crop
	if c == nil {
		return nil
	}
	sel, ok := c.sel.Selection()
	if c.returnTo == ScreenCleanup && e.cleanup != nil {
		if err := e.cleanup.ed.ApplyCrop(sel, ok, c.area.Width, c.area.Height); err != nil {
			e.reject(err)
			return err
		}
		e.closeCrop()
		e.refitCleanup()
		return nil
	}

	cropped := CropImage(c.src, sel, ok, c.area.Width, c.area.Height)
	if cropped != image.Image(c.src) {
		if _, err := e.scene.SaveEditedAsset(c.itemID, c.name+" (Cropped)", cropped); err != nil {
			e.reject(err)
			return err
		}
	}
	e.closeCrop()
	return nil
}

// CancelCrop leaves the crop screen without changes.
func (e *Editor) CancelCrop() {
	e.closeCrop()
}

func (e *Editor) closeCrop() {
	if e.crop == nil {
		return
	}
	e.screen = e.crop.returnTo
	e.crop.tex.dispose()
	e.crop = nil
	e.pointerDown = false
}

// --- Background editor screen ---

// OpenCleanup opens the background editor for an item's image.
func (e *Editor) OpenCleanup(itemID string) error {
	it, a, err := e.editableImage(itemID)
	if err != nil {
		e.reject(err)
		return err
	}
	ed, err := NewBackgroundEditor(a.Pixels, e.cfg.Service)
	if err != nil {
		return fmt.Errorf("open cleanup %q: %w", itemID, err)
	}
	e.cleanup = &cleanupView{itemID: it.ID, name: a.Name, ed: ed}
	e.refitCleanup()
	e.screen = ScreenCleanup
	e.pointerDown = false
	return nil
}

// BackgroundEditor returns the open background editor, or nil.
func (e *Editor) BackgroundEditor() *BackgroundEditor {
	if e.cleanup == nil {
		return nil
	}
	return e.cleanup.ed
}

func (e *Editor) refitCleanup() {
	if e.cleanup == nil {
		return
	}
	b := e.cleanup.ed.Working().Bounds()
	e.cleanup.area = fitRect(Size{b.Dx(), b.Dy()}, e.viewBounds())
}

// CropCleanup opens the crop screen over the background editor's current
// image.
func (e *Editor) CropCleanup() error {
	c := e.cleanup
	if c == nil {
		return nil
	}
	if c.ed.Processing() {
		e.reject(ErrBusy)
		return ErrBusy
	}
	src, err := c.ed.ResultImage()
	if err != nil {
		return err
	}
	e.openCrop(c.itemID, c.name, src, ScreenCleanup)
	return nil
}

// AutoRemove starts automatic background removal in the open editor.
func (e *Editor) AutoRemove() error {
	if e.cleanup == nil {
		return nil
	}
	err := e.cleanup.ed.RequestAutoRemove(e.ctx)
	e.reject(err)
	return err
}

// FinishCleanup saves the cleaned image as a new asset, points the item at
// it and returns to the canvas.
func (e *Editor) FinishCleanup() error {
	c := e.cleanup
	if c == nil {
		return nil
	}
	if c.ed.Processing() {
		e.reject(ErrBusy)
		return ErrBusy
	}
	img, err := c.ed.ResultImage()
	if err != nil {
		return err
	}
	if _, err := e.scene.SaveEditedAsset(c.itemID, c.name+" (Clean)", img); err != nil {
		e.reject(err)
		return err
	}
	e.closeCleanup()
	return nil
}

// CancelCleanup discards the background editor.
func (e *Editor) CancelCleanup() {
	e.closeCleanup()
}

func (e *Editor) closeCleanup() {
	if e.cleanup == nil {
		return
	}
	e.cleanup.ed.Close()
	e.cleanup.tex.dispose()
	e.cleanup.checker.dispose()
	e.cleanup.loupe.dispose()
	e.cleanup = nil
	e.screen = ScreenCanvas
	e.pointerDown = false
}

func (e *Editor) pollCleanup() {
	if e.cleanup == nil || !e.cleanup.ed.Processing() {
		return
	}
	if notice, done := e.cleanup.ed.Poll(); done {
		e.ShowNotice(notice)
		e.refitCleanup()
	}
}

// --- Layout ---

// viewBounds is the screen area available to the crop and cleanup screens.
func (e *Editor) viewBounds() Rect {
	w, h := e.scene.ScreenSize()
	return Rect{X: viewMargin, Y: viewMargin, Width: w - 2*viewMargin, Height: h - 2*viewMargin}
}

// fitRect scales native to fit inside bounds, keeping its aspect ratio, and
// centers it.
func fitRect(native Size, bounds Rect) Rect {
	if native.Width <= 0 || native.Height <= 0 || bounds.Width <= 0 || bounds.Height <= 0 {
		return Rect{X: bounds.X, Y: bounds.Y}
	}
	w, h := float64(native.Width), float64(native.Height)
	scale := math.Min(bounds.Width/w, bounds.Height/h)
	w, h = math.Floor(w*scale), math.Floor(h*scale)
	return Rect{
		X:      bounds.X + math.Floor((bounds.Width-w)/2),
		Y:      bounds.Y + math.Floor((bounds.Height-h)/2),
		Width:  w,
		Height: h,
	}
}

// --- Frame step ---

// step advances the editor by one frame of dt seconds with the polled input.
func (e *Editor) step(dt float64, in frameInput) {
	e.frame++
	if e.testRunner != nil {
		e.testRunner.step(e)
	}
	if evt, ok := e.popInjected(); ok {
		in.cursorX, in.cursorY = evt.screenX, evt.screenY
		if evt.wheel != 0 {
			in.wheelY += evt.wheel
			in.pressed = e.pointerDown
		} else {
			in.pressed = evt.pressed
		}
	}

	e.handleKeys(in)
	e.routePointer(in)

	e.pollGenerate()
	e.pollCleanup()
	e.updateNotice(dt)
	if e.crop != nil {
		e.crop.sel.Update(float32(dt))
	}
}

// routePointer turns the pressed state into down, move and up events for
// the current screen.
func (e *Editor) routePointer(in frameInput) {
	x, y := in.cursorX, in.cursorY
	moved := x != e.lastCursor.X || y != e.lastCursor.Y
	switch {
	case in.pressed && !e.pointerDown:
		e.pointerDown = true
		e.pointerPress(x, y)
	case in.pressed && moved:
		e.pointerDrag(x, y)
	case !in.pressed && e.pointerDown:
		if moved {
			e.pointerDrag(x, y)
		}
		e.pointerDown = false
		e.pointerRelease()
	}
	e.lastCursor = Vec2{x, y}

	if in.wheelY != 0 && e.screen == ScreenCanvas {
		e.scene.Wheel(in.wheelY)
	}
}

func (e *Editor) pointerPress(x, y float64) {
	switch e.screen {
	case ScreenCrop:
		if e.crop.area.Contains(x, y) {
			e.crop.sel.Begin(x-e.crop.area.X, y-e.crop.area.Y)
		}
	case ScreenCleanup:
		c := e.cleanup
		if !c.area.Contains(x, y) {
			return
		}
		nx, ny := e.cleanupPoint(x, y)
		var err error
		switch c.ed.Tool() {
		case ToolWand:
			_, err = c.ed.Click(nx, ny)
		case ToolEraser:
			err = c.ed.StrokeBegin(nx, ny)
		}
		e.reject(err)
	default:
		// Scene.PointerDown, with a notice when the press lands on a locked
		// item.
		if !e.scene.idle() {
			return
		}
		if it, h := e.scene.ItemAt(x, y); it != nil {
			e.reject(e.scene.PointerDownItem(it.ID, h, x, y))
			return
		}
		e.scene.PointerDownCanvas(x, y)
	}
}

func (e *Editor) pointerDrag(x, y float64) {
	switch e.screen {
	case ScreenCrop:
		e.crop.sel.Move(x-e.crop.area.X, y-e.crop.area.Y)
	case ScreenCleanup:
		e.cleanup.ed.StrokeMove(e.cleanupPoint(x, y))
	default:
		e.scene.PointerMove(x, y)
	}
}

func (e *Editor) pointerRelease() {
	switch e.screen {
	case ScreenCrop:
		e.crop.sel.End()
	case ScreenCleanup:
		e.reject(e.cleanup.ed.StrokeEnd())
	default:
		e.scene.PointerUp()
	}
}

// cleanupPoint maps a screen point to native pixels of the edited image.
func (e *Editor) cleanupPoint(x, y float64) (float64, float64) {
	c := e.cleanup
	b := c.ed.Working().Bounds()
	return RemapPointer(x-c.area.X, y-c.area.Y, c.area.Width, c.area.Height, Size{b.Dx(), b.Dy()})
}
