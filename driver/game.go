// Package driver runs an arbor engine inside an Ebitengine window: it feeds
// mouse and touch input into the engine's pointer state machine, ticks the
// engine once per frame and draws the built-in shapes through a camera.
package driver

import (
	"github.com/hajimehoshi/ebiten/v2"
	"go.uber.org/zap"

	"github.com/phanxgames/arbor"
)

// UpdateFunc is called once per tick before the engine updates. Returning an
// error stops the game loop.
type UpdateFunc func(dt float64) error

// Game implements ebiten.Game on top of an Engine.
type Game struct {
	eng    *arbor.Engine
	cfg    RunConfig
	cam    *Camera
	log    *zap.Logger
	update UpdateFunc

	renderer *shapeRenderer
	fps      *fpsOverlay

	touchIDs  []ebiten.TouchID
	touchMap  [arbor.MaxPointers]ebiten.TouchID
	touchUsed [arbor.MaxPointers]bool
	touchLast [arbor.MaxPointers]arbor.Vec2

	inject []syntheticPointer
	script *ScriptRunner
}

// NewGame wraps eng with a camera covering the configured window.
func NewGame(eng *arbor.Engine, cfg RunConfig) *Game {
	return &Game{
		eng:      eng,
		cfg:      cfg,
		cam:      NewCamera(arbor.RectXYWH(0, 0, float64(cfg.Width), float64(cfg.Height))),
		log:      eng.Logger().Named("driver"),
		renderer: newShapeRenderer(),
		fps:      newFPSOverlay(),
	}
}

// Camera returns the game's camera.
func (g *Game) Camera() *Camera {
	return g.cam
}

// Engine returns the wrapped engine.
func (g *Game) Engine() *arbor.Engine {
	return g.eng
}

// SetUpdateFunc sets the per-tick user callback.
func (g *Game) SetUpdateFunc(fn UpdateFunc) {
	g.update = fn
}

// Update implements ebiten.Game.
func (g *Game) Update() error {
	dt := 1.0 / float64(ebiten.TPS())

	if g.script != nil {
		g.script.step(g)
	}
	if !g.processInjected(modifiers()) {
		g.processMouse()
	}
	g.processTouches()

	if g.update != nil {
		if err := g.update(dt); err != nil {
			return err
		}
	}
	g.cam.Update(g.eng, float32(dt))
	g.eng.Tick(dt)
	g.fps.update(dt)
	return nil
}

// Draw implements ebiten.Game.
func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(toRGBA(g.cfg.ClearColor))
	drawn := g.renderer.draw(screen, g.eng, g.cam)
	if g.cfg.ShowBounds {
		drawBounds(screen, g.eng, g.cam)
	}
	if g.cfg.ShowFPS {
		g.fps.draw(screen, g.eng.Tree().Len(), drawn)
	}
}

// Layout implements ebiten.Game. The camera viewport follows the window.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	vp := arbor.RectXYWH(0, 0, float64(outsideWidth), float64(outsideHeight))
	if vp != g.cam.Viewport {
		g.cam.Viewport = vp
		g.cam.MarkDirty()
	}
	return outsideWidth, outsideHeight
}

// Run opens the window and blocks until it is closed or the game loop
// returns an error.
func (g *Game) Run() error {
	ebiten.SetWindowTitle(g.cfg.Title)
	ebiten.SetWindowSize(g.cfg.Width, g.cfg.Height)
	ebiten.SetTPS(g.cfg.TPS)
	if g.cfg.Resizable {
		ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	}
	g.log.Info("starting",
		zap.String("title", g.cfg.Title),
		zap.Int("width", g.cfg.Width),
		zap.Int("height", g.cfg.Height),
		zap.Int("tps", g.cfg.TPS),
	)
	if err := ebiten.RunGame(g); err != nil {
		g.log.Error("game loop stopped", zap.Error(err))
		return err
	}
	return nil
}

// Run is shorthand for NewGame, SetUpdateFunc and Game.Run.
func Run(eng *arbor.Engine, cfg RunConfig, update UpdateFunc) error {
	g := NewGame(eng, cfg)
	g.SetUpdateFunc(update)
	return g.Run()
}

// --- Input ---

var mouseButtons = [...]struct {
	eb ebiten.MouseButton
	ab arbor.MouseButton
}{
	{ebiten.MouseButtonLeft, arbor.MouseButtonLeft},
	{ebiten.MouseButtonRight, arbor.MouseButtonRight},
	{ebiten.MouseButtonMiddle, arbor.MouseButtonMiddle},
}

func (g *Game) processMouse() {
	mx, my := ebiten.CursorPosition()
	wx, wy := g.cam.ScreenToWorld(float64(mx), float64(my))

	pressed := false
	button := arbor.MouseButtonLeft
	for _, b := range mouseButtons {
		if ebiten.IsMouseButtonPressed(b.eb) {
			pressed = true
			button = b.ab
			break
		}
	}
	g.eng.ProcessPointer(0, wx, wy, pressed, button, modifiers())
}

// processTouches feeds active touches into pointer slots 1 and up.
func (g *Game) processTouches() {
	g.touchIDs = ebiten.AppendTouchIDs(g.touchIDs[:0])
	g.syncTouches(g.touchIDs, ebiten.TouchPosition)
}

// syncTouches keeps each TouchID on the slot it was first given until it
// lifts. Slots whose touch ended get a release at the last known position.
func (g *Game) syncTouches(ids []ebiten.TouchID, position func(ebiten.TouchID) (int, int)) {
	var active [arbor.MaxPointers]bool
	for _, id := range ids {
		slot := g.touchSlot(id)
		if slot < 0 {
			continue
		}
		active[slot] = true
		sx, sy := position(id)
		wx, wy := g.cam.ScreenToWorld(float64(sx), float64(sy))
		g.touchLast[slot] = arbor.Vec2{X: wx, Y: wy}
		g.eng.ProcessPointer(slot, wx, wy, true, arbor.MouseButtonLeft, 0)
	}

	for i := 1; i < arbor.MaxPointers; i++ {
		if g.touchUsed[i] && !active[i] {
			last := g.touchLast[i]
			g.eng.ProcessPointer(i, last.X, last.Y, false, arbor.MouseButtonLeft, 0)
			g.touchUsed[i] = false
			g.touchMap[i] = 0
		}
	}
}

// touchSlot returns the slot (1-9) mapped to id, allocating the lowest free
// one for a new touch. Returns -1 when every slot is taken.
func (g *Game) touchSlot(id ebiten.TouchID) int {
	for i := 1; i < arbor.MaxPointers; i++ {
		if g.touchUsed[i] && g.touchMap[i] == id {
			return i
		}
	}
	for i := 1; i < arbor.MaxPointers; i++ {
		if !g.touchUsed[i] {
			g.touchUsed[i] = true
			g.touchMap[i] = id
			return i
		}
	}
	return -1
}

func modifiers() arbor.KeyModifiers {
	var m arbor.KeyModifiers
	if ebiten.IsKeyPressed(ebiten.KeyShift) {
		m |= arbor.ModShift
	}
	if ebiten.IsKeyPressed(ebiten.KeyControl) {
		m |= arbor.ModCtrl
	}
	if ebiten.IsKeyPressed(ebiten.KeyAlt) {
		m |= arbor.ModAlt
	}
	if ebiten.IsKeyPressed(ebiten.KeyMeta) {
		m |= arbor.ModMeta
	}
	return m
}
