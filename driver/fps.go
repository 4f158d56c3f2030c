package driver

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

// fpsOverlay shows FPS, TPS and scene counts in the top-left corner. The text
// is refreshed every ~0.5 seconds.
type fpsOverlay struct {
	img   *ebiten.Image
	since float64
	text  string
}

func newFPSOverlay() *fpsOverlay {
	return &fpsOverlay{since: 0.5}
}

func (f *fpsOverlay) update(dt float64) {
	f.since += dt
}

func (f *fpsOverlay) draw(screen *ebiten.Image, nodes, drawn int) {
	if f.img == nil {
		// 120x64 fits four short lines.
		f.img = ebiten.NewImage(120, 64)
	}
	if f.since >= 0.5 {
		f.since = 0
		f.text = fmt.Sprintf("FPS: %.1f\nTPS: %.1f\nNodes: %d\nDrawn: %d",
			ebiten.ActualFPS(), ebiten.ActualTPS(), nodes, drawn)
		f.img.Clear()
		// Semi-transparent background for readability
		f.img.Fill(color.RGBA{0, 0, 0, 128})
		ebitenutil.DebugPrint(f.img, f.text)
	}
	screen.DrawImage(f.img, nil)
}
