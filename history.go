package pixelnest

import (
	"fmt"
	"image"
)

// History is a linear undo stack of full-frame PNG snapshots. The cursor
// always points at a valid entry. Committing after an undo discards the
// undone entries; there is no redo.
type History struct {
	snapshots [][]byte
	cursor    int
}

// NewHistory returns a history whose only entry is orig.
func NewHistory(orig image.Image) (*History, error) {
	data, err := EncodePNG(orig)
	if err != nil {
		return nil, fmt.Errorf("history: %w", err)
	}
	return &History{snapshots: [][]byte{data}}, nil
}

// Commit truncates the history after the cursor, appends img and moves the
// cursor to it.
func (h *History) Commit(img image.Image) error {
	data, err := EncodePNG(img)
	if err != nil {
		return fmt.Errorf("history commit: %w", err)
	}
	h.snapshots = append(h.snapshots[:h.cursor+1], data)
	h.cursor = len(h.snapshots) - 1
	return nil
}

// Undo moves the cursor back one entry, stopping at the original.
func (h *History) Undo() {
	h.cursor = max(0, h.cursor-1)
}

// CanUndo reports whether Undo would change the cursor.
func (h *History) CanUndo() bool {
	return h.cursor > 0
}

// Current decodes the snapshot at the cursor into a fresh working buffer.
func (h *History) Current() (*image.NRGBA, error) {
	return h.At(h.cursor)
}

// CurrentPNG returns the encoded snapshot at the cursor. The slice is shared
// and MUST NOT be mutated.
func (h *History) CurrentPNG() []byte {
	return h.snapshots[h.cursor]
}

// At decodes the snapshot at index i.
func (h *History) At(i int) (*image.NRGBA, error) {
	if i < 0 || i >= len(h.snapshots) {
		return nil, fmt.Errorf("history: index %d out of range [0,%d)", i, len(h.snapshots))
	}
	img, err := DecodeImage(h.snapshots[i])
	if err != nil {
		return nil, fmt.Errorf("history snapshot %d: %w", i, err)
	}
	return img, nil
}

// Len returns the number of snapshots.
func (h *History) Len() int {
	return len(h.snapshots)
}

// Cursor returns the index of the current snapshot.
func (h *History) Cursor() int {
	return h.cursor
}
