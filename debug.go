package pixelnest

import (
	"fmt"
	"os"
)

// debugf prints a debug line to stderr when debug mode is on.
func (s *Scene) debugf(format string, args ...any) {
	if !s.debug {
		return
	}
	_, _ = fmt.Fprintf(os.Stderr, "[pixelnest] "+format+"\n", args...)
}

// debugStats summarizes one frame for the debug log.
type debugStats struct {
	itemCount     int
	drawnCount    int
	filteredCount int
	pooledImages  int
}

// debugLogFrame prints per-frame render stats when debug mode is on.
func (s *Scene) debugLogFrame(stats debugStats) {
	if !s.debug {
		return
	}
	_, _ = fmt.Fprintf(os.Stderr,
		"[pixelnest] items: %d | drawn: %d | filtered: %d | pooled images: %d | zoom: %.0f%%\n",
		stats.itemCount, stats.drawnCount, stats.filteredCount, stats.pooledImages, s.viewport.Scale*100)
}
