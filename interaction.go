package pixelnest

import "math"

// InteractionMode is the item gesture in progress. Panning is tracked
// separately and never overlaps an item gesture.
type InteractionMode uint8

const (
	ModeIdle     InteractionMode = iota // no item gesture
	ModeDragging                        // moving an item by its body
	ModeResizing                        // resizing an item by its bottom-right handle
)

// String returns the lowercase mode name.
func (m InteractionMode) String() string {
	switch m {
	case ModeDragging:
		return "dragging"
	case ModeResizing:
		return "resizing"
	default:
		return "idle"
	}
}

// Interaction is the snapshot taken when an item gesture starts. Every move
// event is computed from this snapshot, not from the previous event, so the
// result does not depend on how many move events arrive.
type Interaction struct {
	Mode   InteractionMode
	ItemID string
	// PointerStart is the screen position of the pointer-down.
	PointerStart Vec2
	// ItemPosAtStart and ItemSizeAtStart are the item's world geometry at
	// pointer-down.
	ItemPosAtStart  Point
	ItemSizeAtStart Size
}

// Interaction returns the current item gesture.
func (s *Scene) Interaction() Interaction {
	return s.interaction
}

// Panning reports whether a canvas pan gesture is active.
func (s *Scene) Panning() bool {
	return s.panning
}

// idle reports whether no gesture of any kind is active.
func (s *Scene) idle() bool {
	return !s.panning && s.interaction.Mode == ModeIdle
}

// PointerDown hit-tests a screen point and starts the matching gesture: an
// item drag or resize when an item is under the pointer, a pan otherwise.
// A pointer-down on a locked item does nothing at all; in particular it does
// not fall through to panning. It reports whether a gesture started.
func (s *Scene) PointerDown(sx, sy float64) bool {
	if !s.idle() {
		return false
	}
	if it, h := s.ItemAt(sx, sy); it != nil {
		return s.PointerDownItem(it.ID, h, sx, sy) == nil
	}
	s.PointerDownCanvas(sx, sy)
	return true
}

// PointerDownCanvas starts a pan from an empty area of the canvas and clears
// the selection. It is ignored while an item gesture is active.
func (s *Scene) PointerDownCanvas(sx, sy float64) {
	if s.interaction.Mode != ModeIdle {
		return
	}
	s.panning = true
	s.lastPointer = Vec2{sx, sy}
	s.selectedID = ""
}

// PointerDownItem starts a drag (HandleBody) or resize (HandleResize) gesture
// on an item, selecting it and making its group active. Locked items and
// items of locked groups are rejected with ErrItemLocked and no state changes.
func (s *Scene) PointerDownItem(id string, handle ItemHandle, sx, sy float64) error {
	it, err := s.mustItem("pointer down", id)
	if err != nil {
		return err
	}
	if !s.editable(it) {
		s.debugf("pointer down on locked item %q ignored", it.Name)
		return ErrItemLocked
	}

	s.selectedID = it.ID
	s.activeGroupID = it.GroupID

	mode := ModeDragging
	if handle == HandleResize {
		mode = ModeResizing
	}
	s.interaction = Interaction{
		Mode:            mode,
		ItemID:          it.ID,
		PointerStart:    Vec2{sx, sy},
		ItemPosAtStart:  it.Position,
		ItemSizeAtStart: it.Size,
	}
	return nil
}

// PointerMove advances the active gesture to a new screen position. Panning
// accumulates the delta since the previous event; dragging and resizing are
// recomputed from the gesture start and applied to the item immediately.
func (s *Scene) PointerMove(sx, sy float64) {
	if s.panning {
		s.viewport.Pan(sx-s.lastPointer.X, sy-s.lastPointer.Y)
		s.lastPointer = Vec2{sx, sy}
		return
	}
	st := s.interaction
	if st.Mode == ModeIdle || st.ItemID == "" {
		return
	}
	it := s.Item(st.ItemID)
	if it == nil {
		s.interaction = Interaction{}
		return
	}

	dx := (sx - st.PointerStart.X) / s.viewport.Scale
	dy := (sy - st.PointerStart.Y) / s.viewport.Scale

	switch st.Mode {
	case ModeDragging:
		it.Position = Point{
			X: round(float64(st.ItemPosAtStart.X) + dx),
			Y: round(float64(st.ItemPosAtStart.Y) + dy),
		}
	case ModeResizing:
		it.Size = resizeKeepingAspect(st.ItemSizeAtStart, dx)
	}
}

// resizeKeepingAspect computes the bottom-right handle resize result: the
// width follows the horizontal delta with a floor of MinItemWidth and the
// height follows the starting aspect ratio.
func resizeKeepingAspect(start Size, dx float64) Size {
	w := round(math.Max(MinItemWidth, float64(start.Width)+dx))
	if start.Width == 0 || start.Height == 0 {
		return Size{w, start.Height}
	}
	aspect := float64(start.Width) / float64(start.Height)
	return Size{w, round(float64(w) / aspect)}
}

// PointerUp ends any gesture. Pointer leave and cancel end gestures the same
// way.
func (s *Scene) PointerUp() {
	s.panning = false
	s.interaction.Mode = ModeIdle
	s.interaction.ItemID = ""
}

// Wheel zooms the viewport by one wheel notch. A positive deltaY (scrolling
// down) zooms out.
func (s *Scene) Wheel(deltaY float64) {
	s.viewport.ZoomWheel(deltaY)
}
