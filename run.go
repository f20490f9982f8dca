package pixelnest

import (
	"errors"
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
)

// RunConfig configures the window opened by Run.
type RunConfig struct {
	Title         string
	Width, Height int
	// Debug prints per-frame stats to stderr and shows an FPS readout.
	Debug bool
	// ExitAfterScript closes the window once an attached test script has
	// finished.
	ExitAfterScript bool
}

// Update polls input and advances the editor by one tick. It implements
// ebiten.Game.
func (e *Editor) Update() error {
	in := readFrameInput(e.keyBuf)
	e.keyBuf = in.keys
	dt := 1 / float64(ebiten.TPS())
	e.step(dt, in)
	if e.cfg.Debug {
		e.fps.update(dt, ebiten.ActualFPS(), ebiten.ActualTPS())
	}
	if e.exitAfterScript && e.testRunner != nil && e.testRunner.Done() && len(e.screenshotQueue) == 0 {
		return ebiten.Termination
	}
	return nil
}

// Layout uses the window size as the screen size. It implements
// ebiten.Game.
func (e *Editor) Layout(outsideWidth, outsideHeight int) (int, int) {
	w, h := e.scene.ScreenSize()
	if int(w) != outsideWidth || int(h) != outsideHeight {
		e.scene.SetScreenSize(float64(outsideWidth), float64(outsideHeight))
		e.refitCleanup()
	}
	return outsideWidth, outsideHeight
}

// Run opens a resizable window and runs the editor until the window is
// closed. In-flight service requests are canceled on return.
func Run(e *Editor, cfg RunConfig) error {
	if cfg.Width <= 0 {
		cfg.Width = e.cfg.Width
	}
	if cfg.Height <= 0 {
		cfg.Height = e.cfg.Height
	}
	if cfg.Title == "" {
		cfg.Title = "pixelnest"
	}
	if cfg.Debug {
		e.cfg.Debug = true
		e.scene.SetDebugMode(true)
	}
	e.exitAfterScript = cfg.ExitAfterScript
	defer e.Close()

	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	if err := ebiten.RunGame(e); err != nil && !errors.Is(err, ebiten.Termination) {
		return fmt.Errorf("run editor: %w", err)
	}
	return nil
}
