package pixelnest

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

// fpsRefresh is how often the FPS readout is refreshed, in seconds.
const fpsRefresh = 0.5

// fpsCounter is the debug-mode FPS and TPS readout in the top-right corner.
type fpsCounter struct {
	elapsed float64
	text    string
	img     *ebiten.Image
}

// update advances the counter by dt seconds and reports whether the text
// changed.
func (f *fpsCounter) update(dt float64, fps, tps float64) bool {
	f.elapsed += dt
	if f.text != "" && f.elapsed < fpsRefresh {
		return false
	}
	f.elapsed = 0
	f.text = fmt.Sprintf("FPS: %.1f\nTPS: %.1f", fps, tps)
	return true
}

func (f *fpsCounter) draw(screen *ebiten.Image) {
	if f.text == "" {
		return
	}
	if f.img == nil {
		// 100x32 is enough for "FPS: 60.0\nTPS: 60.0"
		f.img = ebiten.NewImage(100, 32)
	}
	f.img.Fill(color.RGBA{0, 0, 0, 128})
	ebitenutil.DebugPrint(f.img, f.text)

	var op ebiten.DrawImageOptions
	op.GeoM.Translate(float64(screen.Bounds().Dx()-100), 0)
	screen.DrawImage(f.img, &op)
}
