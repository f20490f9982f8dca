package pixelnest

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

// captureStderr runs fn with os.Stderr redirected and returns what it wrote.
func captureStderr(t *testing.T, fn func()) string {
	t.Helper()
	oldStderr := os.Stderr
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	os.Stderr = w
	fn()
	w.Close()
	os.Stderr = oldStderr

	var buf bytes.Buffer
	buf.ReadFrom(r)
	return buf.String()
}

func TestDebugMode_LogsPlacement(t *testing.T) {
	s := newTestScene(t)
	s.SetDebugMode(true)
	a := addTestAsset(s, "crate", 50, 50)

	out := captureStderr(t, func() {
		if _, err := s.Place(a.ID); err != nil {
			t.Fatal(err)
		}
	})
	if !strings.Contains(out, "[pixelnest] placed \"crate\"") {
		t.Errorf("expected placement log, got: %q", out)
	}
}

func TestDebugMode_SilentWhenOff(t *testing.T) {
	s := newTestScene(t)
	a := addTestAsset(s, "crate", 50, 50)

	out := captureStderr(t, func() {
		s.Place(a.ID)
		s.debugLogFrame(debugStats{itemCount: 1})
	})
	if out != "" {
		t.Errorf("expected no output, got: %q", out)
	}
}

func TestDebugMode_FrameStats(t *testing.T) {
	s := NewScene()
	s.SetDebugMode(true)
	out := captureStderr(t, func() {
		s.debugLogFrame(debugStats{itemCount: 3, drawnCount: 2, filteredCount: 1})
	})
	if !strings.Contains(out, "items: 3 | drawn: 2 | filtered: 1") {
		t.Errorf("unexpected frame stats: %q", out)
	}
	if !strings.Contains(out, "zoom: 100%") {
		t.Errorf("expected zoom in frame stats: %q", out)
	}
}
