package pixelnest

import (
	"context"
	"errors"
	"fmt"
	"image"
	"math"
)

// Tool is the active background-editor tool.
type Tool uint8

const (
	ToolNone   Tool = iota
	ToolWand        // tolerance erase at the clicked color
	ToolEraser      // freehand brush erase
)

var toolNames = [...]string{"none", "wand", "eraser"}

func (t Tool) String() string {
	if int(t) < len(toolNames) {
		return toolNames[t]
	}
	return "none"
}

// Tool slider defaults and limits.
const (
	DefaultTolerance = 40
	DefaultBrushSize = 20
	MinToolValue     = 1
	MaxToolValue     = 100
)

type autoRemoveResult struct {
	img image.Image
	err error
}

// BackgroundEditor edits one image asset with the wand, the brush eraser,
// crop, and automatic background removal. Every completed edit is committed
// to a History, so Undo always returns to a previous committed state. All
// methods must be called from one goroutine; only the image service runs
// elsewhere, and its result is applied by Poll or Wait.
type BackgroundEditor struct {
	history *History
	work    *image.NRGBA
	rev     int

	tool      Tool
	tolerance int
	brushSize int
	stroke    *BrushStroke

	service    ImageService
	processing bool
	pending    chan autoRemoveResult
	cancel     context.CancelFunc
}

// NewBackgroundEditor starts an editing session on src. svc may be nil, in
// which case automatic removal always reports the service as unavailable.
func NewBackgroundEditor(src image.Image, svc ImageService) (*BackgroundEditor, error) {
	h, err := NewHistory(src)
	if err != nil {
		return nil, fmt.Errorf("background editor: %w", err)
	}
	work, err := h.Current()
	if err != nil {
		return nil, fmt.Errorf("background editor: %w", err)
	}
	return &BackgroundEditor{
		history:   h,
		work:      work,
		tolerance: DefaultTolerance,
		brushSize: DefaultBrushSize,
		service:   svc,
	}, nil
}

// Tool returns the active tool.
func (e *BackgroundEditor) Tool() Tool {
	return e.tool
}

// SetTool selects t, or deselects it when t is already active.
func (e *BackgroundEditor) SetTool(t Tool) {
	if e.tool == t {
		e.tool = ToolNone
		return
	}
	e.tool = t
}

// Tolerance returns the wand tolerance.
func (e *BackgroundEditor) Tolerance() int {
	return e.tolerance
}

// SetTolerance sets the wand tolerance, clamped to [MinToolValue, MaxToolValue].
func (e *BackgroundEditor) SetTolerance(v int) {
	e.tolerance = clampInt(v, MinToolValue, MaxToolValue)
}

// BrushSize returns the eraser diameter.
func (e *BackgroundEditor) BrushSize() int {
	return e.brushSize
}

// SetBrushSize sets the eraser diameter, clamped to [MinToolValue, MaxToolValue].
func (e *BackgroundEditor) SetBrushSize(v int) {
	e.brushSize = clampInt(v, MinToolValue, MaxToolValue)
}

// Working returns the buffer shown on screen. It is replaced, not resized,
// when a crop or undo changes the dimensions.
func (e *BackgroundEditor) Working() *image.NRGBA {
	return e.work
}

// Revision increases every time the working buffer changes.
func (e *BackgroundEditor) Revision() int {
	return e.rev
}

// History returns the undo stack.
func (e *BackgroundEditor) History() *History {
	return e.history
}

// RemapPointer converts a position over the image as displayed at
// renderedW x renderedH into native pixel coordinates.
func RemapPointer(x, y, renderedW, renderedH float64, native Size) (float64, float64) {
	if renderedW <= 0 || renderedH <= 0 {
		return x, y
	}
	return x * float64(native.Width) / renderedW, y * float64(native.Height) / renderedH
}

// Click applies the wand at native pixel (x, y): every pixel within tolerance
// of the clicked color is erased and the result committed. Clicks outside the
// image or with another tool active do nothing.
func (e *BackgroundEditor) Click(x, y float64) (int, error) {
	if e.processing {
		return 0, ErrBusy
	}
	if e.tool != ToolWand {
		return 0, nil
	}
	target, ok := ColorAt(e.work, int(math.Floor(x)), int(math.Floor(y)))
	if !ok {
		return 0, nil
	}
	n := EraseByColor(e.work, target, e.tolerance)
	e.rev++
	return n, e.commit()
}

// StrokeBegin starts an eraser stroke at native (x, y) and erases a dot
// there. It does nothing unless the eraser is active.
func (e *BackgroundEditor) StrokeBegin(x, y float64) error {
	if e.processing {
		return ErrBusy
	}
	if e.tool != ToolEraser {
		return nil
	}
	e.stroke = NewBrushStroke(e.work, float64(e.brushSize), x, y)
	e.rev++
	return nil
}

// StrokeMove extends the active stroke to native (x, y).
func (e *BackgroundEditor) StrokeMove(x, y float64) {
	if e.stroke == nil {
		return
	}
	e.stroke.LineTo(x, y)
	e.rev++
}

// StrokeEnd finishes the active stroke and commits it as a single history
// entry.
func (e *BackgroundEditor) StrokeEnd() error {
	if e.stroke == nil {
		return nil
	}
	e.stroke = nil
	return e.commit()
}

// Stroking reports whether an eraser stroke is in progress.
func (e *BackgroundEditor) Stroking() bool {
	return e.stroke != nil
}

// Magnifier returns the loupe for the current stroke position. It reports
// false when no stroke is in progress.
func (e *BackgroundEditor) Magnifier() (*image.NRGBA, bool) {
	if e.stroke == nil {
		return nil, false
	}
	p := e.stroke.Last()
	return Magnify(e.work, int(math.Floor(p.X)), int(math.Floor(p.Y))), true
}

// CanUndo reports whether Undo would change the image.
func (e *BackgroundEditor) CanUndo() bool {
	return !e.processing && e.history.CanUndo()
}

// Undo steps back one committed state.
func (e *BackgroundEditor) Undo() error {
	if e.processing {
		return ErrBusy
	}
	if !e.history.CanUndo() {
		return nil
	}
	e.stroke = nil
	e.history.Undo()
	return e.reload()
}

// ApplyCrop crops the current image with a selection made over it rendered
// at renderedW x renderedH, and commits the result. The commit happens even
// when the selection is too small to crop, so confirming the crop screen
// always adds an entry.
func (e *BackgroundEditor) ApplyCrop(sel CropRect, ok bool, renderedW, renderedH float64) error {
	if e.processing {
		return ErrBusy
	}
	e.stroke = nil
	e.work = ToNRGBA(CropImage(e.work, sel, ok, renderedW, renderedH))
	e.rev++
	return e.commit()
}

// RequestAutoRemove sends the current image to the image service on a
// separate goroutine. Until the result is applied by Poll or Wait, the editor
// reports Processing and rejects tool input. The active tool is cleared.
func (e *BackgroundEditor) RequestAutoRemove(ctx context.Context) error {
	if e.processing {
		return ErrBusy
	}
	snapshot, err := e.history.Current()
	if err != nil {
		return err
	}
	svc := e.service
	if svc == nil {
		svc = ServiceFuncs{}
	}
	ctx, e.cancel = context.WithCancel(ctx)
	e.processing = true
	e.tool = ToolNone
	e.stroke = nil

	done := make(chan autoRemoveResult, 1)
	e.pending = done
	go func() {
		img, err := svc.RemoveBackground(ctx, snapshot)
		done <- autoRemoveResult{img, err}
	}()
	return nil
}

// Processing reports whether an automatic removal is in flight.
func (e *BackgroundEditor) Processing() bool {
	return e.processing
}

// Poll applies a finished automatic removal without blocking. done is false
// while the request is still running. On failure notice holds the message
// to show and the image is unchanged.
func (e *BackgroundEditor) Poll() (notice string, done bool) {
	if !e.processing {
		return "", false
	}
	select {
	case r := <-e.pending:
		return e.finish(r), true
	default:
		return "", false
	}
}

// Wait blocks until the in-flight automatic removal finishes or ctx is done,
// then applies it like Poll.
func (e *BackgroundEditor) Wait(ctx context.Context) (string, error) {
	if !e.processing {
		return "", nil
	}
	select {
	case r := <-e.pending:
		return e.finish(r), nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Close cancels any in-flight request. A late result is discarded.
func (e *BackgroundEditor) Close() {
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
	e.pending = nil
	e.processing = false
}

func (e *BackgroundEditor) finish(r autoRemoveResult) string {
	e.Close()
	switch {
	case errors.Is(r.err, ErrDeclined):
		return NoticeAIDeclined
	case r.err != nil:
		return NoticeAIUnavailable
	case r.img == nil:
		return NoticeAIDeclined
	}
	e.work = ToNRGBA(r.img)
	e.rev++
	if err := e.commit(); err != nil {
		return NoticeAIUnavailable
	}
	return ""
}

// Result returns the current state as PNG bytes.
func (e *BackgroundEditor) Result() []byte {
	return e.history.CurrentPNG()
}

// ResultImage decodes the current state.
func (e *BackgroundEditor) ResultImage() (*image.NRGBA, error) {
	return e.history.Current()
}

// commit records the working buffer. When that fails the buffer is reloaded
// from the current snapshot so it never shows an unrecorded state.
func (e *BackgroundEditor) commit() error {
	err := e.history.Commit(e.work)
	if err == nil {
		return nil
	}
	if rerr := e.reload(); rerr != nil {
		return errors.Join(err, rerr)
	}
	return err
}

func (e *BackgroundEditor) reload() error {
	work, err := e.history.Current()
	if err != nil {
		return err
	}
	e.work = work
	e.rev++
	return nil
}
