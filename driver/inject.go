package driver

import "github.com/phanxgames/arbor"

// syntheticPointer is one queued pointer sample in screen coordinates. It is
// converted through the camera exactly like real mouse input.
type syntheticPointer struct {
	screenX, screenY float64
	pressed          bool
	button           arbor.MouseButton
}

// InjectPress queues a left-button press at the given screen coordinates.
// Each queued sample is consumed by one Update; while the queue is non-empty
// real mouse input is ignored.
func (g *Game) InjectPress(x, y float64) {
	g.inject = append(g.inject, syntheticPointer{screenX: x, screenY: y, pressed: true})
}

// InjectMove queues a move with the button held. Use it between InjectPress
// and InjectRelease to simulate a drag.
func (g *Game) InjectMove(x, y float64) {
	g.inject = append(g.inject, syntheticPointer{screenX: x, screenY: y, pressed: true})
}

// InjectRelease queues a release at the given screen coordinates.
func (g *Game) InjectRelease(x, y float64) {
	g.inject = append(g.inject, syntheticPointer{screenX: x, screenY: y})
}

// InjectClick queues a press and a release at the same point. Consumes two
// frames.
func (g *Game) InjectClick(x, y float64) {
	g.InjectPress(x, y)
	g.InjectRelease(x, y)
}

// InjectDrag queues a press at (fromX, fromY), frames-2 evenly spaced moves
// and a release at (toX, toY). frames is raised to 2 if smaller.
func (g *Game) InjectDrag(fromX, fromY, toX, toY float64, frames int) {
	if frames < 2 {
		frames = 2
	}
	g.InjectPress(fromX, fromY)
	steps := frames - 2
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps+1)
		g.InjectMove(fromX+(toX-fromX)*t, fromY+(toY-fromY)*t)
	}
	g.InjectRelease(toX, toY)
}

// Pending returns the number of queued synthetic samples.
func (g *Game) Pending() int {
	return len(g.inject)
}

// processInjected feeds one queued sample to pointer slot 0. Reports whether
// a sample was consumed.
func (g *Game) processInjected(mods arbor.KeyModifiers) bool {
	if len(g.inject) == 0 {
		return false
	}
	ev := g.inject[0]
	copy(g.inject, g.inject[1:])
	g.inject = g.inject[:len(g.inject)-1]

	wx, wy := g.cam.ScreenToWorld(ev.screenX, ev.screenY)
	g.eng.ProcessPointer(0, wx, wy, ev.pressed, ev.button, mods)
	return true
}
