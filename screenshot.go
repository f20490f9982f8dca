package pixelnest

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

// Screenshot queues a labeled screenshot to be captured at the end of the
// current frame's Draw call. The resulting PNG is written to the configured
// ScreenshotDir with a timestamped filename. Safe to call from Update or
// Draw.
func (e *Editor) Screenshot(label string) {
	e.screenshotQueue = append(e.screenshotQueue, label)
}

// flushScreenshots captures the rendered frame for every queued label and
// writes each as a PNG file. Called at the end of Draw.
func (e *Editor) flushScreenshots(screen *ebiten.Image) {
	if len(e.screenshotQueue) == 0 {
		return
	}
	defer func() { e.screenshotQueue = e.screenshotQueue[:0] }()

	dir := e.cfg.ScreenshotDir
	if err := os.MkdirAll(dir, 0o755); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "[pixelnest] screenshot: mkdir %s: %v\n", dir, err)
		return
	}

	b := screen.Bounds()
	pixels := make([]byte, 4*b.Dx()*b.Dy())
	screen.ReadPixels(pixels)
	img := unpremultiply(pixels, b.Dx(), b.Dy())

	stamp := time.Now().Format("20060102_150405")
	for _, label := range e.screenshotQueue {
		path := filepath.Join(dir, screenshotName(stamp, label))
		if err := WritePNG(path, img); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "[pixelnest] screenshot: %v\n", err)
			continue
		}
		e.scene.debugf("screenshot %s", path)
	}
}

// screenshotName builds the file name for a labeled capture.
func screenshotName(stamp, label string) string {
	return fmt.Sprintf("%s_%s.png", stamp, sanitizeLabel(label))
}
