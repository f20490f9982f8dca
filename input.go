package pixelnest

import (
	"fmt"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// frameInput is the input polled for one frame. Keeping it a plain value
// lets the editor step be driven without a window.
type frameInput struct {
	cursorX, cursorY float64
	pressed          bool
	// wheelY follows the DOM convention: positive scrolls down.
	wheelY float64
	// keys were pressed this frame.
	keys []ebiten.Key
	ctrl bool
}

// readFrameInput polls the mouse and keyboard. Any mouse button counts as
// the pointer being down; touches act as the pointer when no mouse button
// is held.
func readFrameInput(buf []ebiten.Key) frameInput {
	mx, my := ebiten.CursorPosition()
	in := frameInput{
		cursorX: float64(mx),
		cursorY: float64(my),
		pressed: ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) ||
			ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight) ||
			ebiten.IsMouseButtonPressed(ebiten.MouseButtonMiddle),
		keys: inpututil.AppendJustPressedKeys(buf[:0]),
		ctrl: readCtrl(),
	}
	if !in.pressed {
		if ids := ebiten.AppendTouchIDs(nil); len(ids) > 0 {
			tx, ty := ebiten.TouchPosition(ids[0])
			in.cursorX, in.cursorY = float64(tx), float64(ty)
			in.pressed = true
		}
	}
	_, wy := ebiten.Wheel()
	in.wheelY = -wy
	return in
}

// readCtrl reports whether Control or Meta is held.
func readCtrl() bool {
	return ebiten.IsKeyPressed(ebiten.KeyControl) || ebiten.IsKeyPressed(ebiten.KeyControlLeft) ||
		ebiten.IsKeyPressed(ebiten.KeyControlRight) || ebiten.IsKeyPressed(ebiten.KeyMeta) ||
		ebiten.IsKeyPressed(ebiten.KeyMetaLeft) || ebiten.IsKeyPressed(ebiten.KeyMetaRight)
}

// handleKeys applies the keyboard shortcuts of the current screen.
func (e *Editor) handleKeys(in frameInput) {
	for _, k := range in.keys {
		switch e.screen {
		case ScreenCrop:
			e.cropKey(k)
		case ScreenCleanup:
			e.cleanupKey(k, in.ctrl)
		default:
			e.canvasKey(k)
		}
	}
}

func (e *Editor) canvasKey(k ebiten.Key) {
	vp := e.scene.Viewport()
	switch k {
	case ebiten.KeyEqual, ebiten.KeyKPAdd:
		vp.ZoomIn()
		return
	case ebiten.KeyMinus, ebiten.KeyKPSubtract:
		vp.ZoomOut()
		return
	case ebiten.KeyN:
		e.scene.AddGroup(fmt.Sprintf("Build %d", len(e.scene.Groups())+1))
		return
	case ebiten.KeyH:
		if g := e.scene.ActiveGroup(); g != nil {
			e.reject(e.scene.ToggleGroupVisibility(g.ID))
		}
		return
	case ebiten.KeyK:
		if g := e.scene.ActiveGroup(); g != nil {
			e.reject(e.scene.ToggleGroupLock(g.ID))
		}
		return
	}
	if k >= ebiten.KeyDigit1 && k <= ebiten.KeyDigit9 {
		_ = e.PlaceAsset(int(k - ebiten.KeyDigit1))
		return
	}

	it := e.scene.Selected()
	if it == nil {
		return
	}
	var err error
	switch k {
	case ebiten.KeyDelete, ebiten.KeyBackspace:
		err = e.scene.DeleteItem(it.ID)
	case ebiten.KeyD:
		_, err = e.scene.DuplicateItem(it.ID)
	case ebiten.KeyF:
		err = e.scene.FlipItem(it.ID)
	case ebiten.KeyR:
		err = e.scene.RotateItem(it.ID, math.Mod(it.Rotation+90, 360))
	case ebiten.KeyL:
		err = e.scene.ToggleItemLock(it.ID)
	case ebiten.KeyBracketRight:
		err = e.scene.RaiseItem(it.ID)
	case ebiten.KeyBracketLeft:
		err = e.scene.LowerItem(it.ID)
	case ebiten.KeyS:
		err = e.scene.ToggleShadow(it.ID)
	case ebiten.KeyTab:
		err = e.scene.SetBlendMode(it.ID, (it.BlendMode+1)%(BlendOverlay+1))
	case ebiten.KeyX:
		_, err = e.DeleteAsset(it.AssetID)
	case ebiten.KeyC:
		_ = e.OpenCrop(it.ID)
	case ebiten.KeyB:
		_ = e.OpenCleanup(it.ID)
	case ebiten.KeyEscape:
		e.scene.ClearSelection()
	}
	e.reject(err)
}

func (e *Editor) cropKey(k ebiten.Key) {
	switch k {
	case ebiten.KeyEnter, ebiten.KeyKPEnter:
		_ = e.ApplyCrop()
	case ebiten.KeyEscape:
		e.CancelCrop()
	case ebiten.KeyBackspace, ebiten.KeyDelete:
		e.crop.sel.Clear()
	}
}

func (e *Editor) cleanupKey(k ebiten.Key, ctrl bool) {
	ed := e.cleanup.ed
	switch k {
	case ebiten.KeyW:
		ed.SetTool(ToolWand)
	case ebiten.KeyE:
		ed.SetTool(ToolEraser)
	case ebiten.KeyZ:
		if ctrl {
			e.reject(ed.Undo())
		}
	case ebiten.KeyA:
		_ = e.AutoRemove()
	case ebiten.KeyC:
		_ = e.CropCleanup()
	case ebiten.KeyEnter, ebiten.KeyKPEnter:
		_ = e.FinishCleanup()
	case ebiten.KeyEscape:
		e.CancelCleanup()
	case ebiten.KeyEqual, ebiten.KeyKPAdd:
		e.nudgeTool(toolStep)
	case ebiten.KeyMinus, ebiten.KeyKPSubtract:
		e.nudgeTool(-toolStep)
	}
}

// nudgeTool moves the slider of the active tool.
func (e *Editor) nudgeTool(delta int) {
	ed := e.cleanup.ed
	switch ed.Tool() {
	case ToolWand:
		ed.SetTolerance(ed.Tolerance() + delta)
	case ToolEraser:
		ed.SetBrushSize(ed.BrushSize() + delta)
	}
}
