package driver

import (
	"math"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"

	"github.com/phanxgames/arbor"
	"github.com/phanxgames/arbor/ecs"
)

// scrollAnim holds active scroll-to tweens for camera X and Y.
type scrollAnim struct {
	tweenX *gween.Tween
	tweenY *gween.Tween
	doneX  bool
	doneY  bool
}

// Camera controls the view into the scene: position, zoom, rotation, and viewport.
type Camera struct {
	// X and Y are the world-space position the camera centers on.
	X, Y float64
	// Zoom is the scale factor (1.0 = no zoom, >1 = zoom in, <1 = zoom out).
	Zoom float64
	// Rotation is the camera rotation in radians (clockwise).
	Rotation float64
	// Viewport is the screen-space rectangle this camera renders into.
	Viewport arbor.Rect

	// CullEnabled skips entities whose bounding box doesn't intersect the
	// camera's visible bounds.
	CullEnabled bool

	followTarget  ecs.Entity
	followOffsetX float64
	followOffsetY float64
	followLerp    float64

	// BoundsEnabled clamps the camera position so the visible area stays
	// within Bounds.
	BoundsEnabled bool
	// Bounds is the world-space box the camera is clamped to when
	// BoundsEnabled is true.
	Bounds arbor.Rect

	view    arbor.Affine
	invView arbor.Affine
	dirty   bool

	scrollTween *scrollAnim
}

// NewCamera creates a Camera with default values and the given viewport.
func NewCamera(viewport arbor.Rect) *Camera {
	return &Camera{
		Zoom:        1.0,
		Viewport:    viewport,
		CullEnabled: true,
		dirty:       true,
	}
}

// Follow makes the camera track an entity's world origin with the given
// offset and lerp factor. A lerp of 1.0 snaps immediately; lower values give
// smoother following.
func (c *Camera) Follow(id ecs.Entity, offsetX, offsetY, lerp float64) {
	c.followTarget = id
	c.followOffsetX = offsetX
	c.followOffsetY = offsetY
	c.followLerp = lerp
}

// Unfollow stops tracking the current target.
func (c *Camera) Unfollow() {
	c.followTarget = ecs.Nil
}

// ScrollTo animates the camera to the given world position over duration seconds.
func (c *Camera) ScrollTo(x, y float64, duration float32, easeFn ease.TweenFunc) {
	c.scrollTween = &scrollAnim{
		tweenX: gween.New(float32(c.X), float32(x), duration, easeFn),
		tweenY: gween.New(float32(c.Y), float32(y), duration, easeFn),
	}
}

// Scrolling reports whether a ScrollTo animation is in progress.
func (c *Camera) Scrolling() bool {
	return c.scrollTween != nil
}

// SetBounds enables camera bounds clamping.
func (c *Camera) SetBounds(bounds arbor.Rect) {
	c.BoundsEnabled = true
	c.Bounds = bounds
}

// ClearBounds disables camera bounds clamping.
func (c *Camera) ClearBounds() {
	c.BoundsEnabled = false
}

// ClampToBounds immediately clamps the camera position so the visible area
// stays within Bounds. No-op if BoundsEnabled is false.
func (c *Camera) ClampToBounds() {
	if c.BoundsEnabled {
		c.clampToBounds()
	}
}

// Update advances follow, scroll, and bounds clamping by dt seconds.
func (c *Camera) Update(eng *arbor.Engine, dt float32) {
	prevX, prevY := c.X, c.Y
	prevZoom, prevRot := c.Zoom, c.Rotation

	if c.followTarget != ecs.Nil {
		if eng.HasEntity(c.followTarget) {
			tx, ty := eng.LocalToWorld(c.followTarget, 0, 0)
			c.X += (tx + c.followOffsetX - c.X) * c.followLerp
			c.Y += (ty + c.followOffsetY - c.Y) * c.followLerp
		} else {
			c.followTarget = ecs.Nil
		}
	}

	if c.scrollTween != nil {
		if !c.scrollTween.doneX {
			val, done := c.scrollTween.tweenX.Update(dt)
			c.X = float64(val)
			c.scrollTween.doneX = done
		}
		if !c.scrollTween.doneY {
			val, done := c.scrollTween.tweenY.Update(dt)
			c.Y = float64(val)
			c.scrollTween.doneY = done
		}
		if c.scrollTween.doneX && c.scrollTween.doneY {
			c.scrollTween = nil
		}
	}

	if c.BoundsEnabled {
		c.clampToBounds()
	}

	if c.X != prevX || c.Y != prevY || c.Zoom != prevZoom || c.Rotation != prevRot {
		c.dirty = true
	}
}

// clampToBounds restricts camera position so the visible area stays within Bounds.
func (c *Camera) clampToBounds() {
	halfW := c.Viewport.Width() / (2 * c.Zoom)
	halfH := c.Viewport.Height() / (2 * c.Zoom)

	minX := c.Bounds.MinX + halfW
	maxX := c.Bounds.MaxX - halfW
	minY := c.Bounds.MinY + halfH
	maxY := c.Bounds.MaxY - halfH

	// Bounds smaller than the visible area: center.
	if minX > maxX {
		c.X = (c.Bounds.MinX + c.Bounds.MaxX) / 2
	} else {
		c.X = math.Max(minX, math.Min(c.X, maxX))
	}
	if minY > maxY {
		c.Y = (c.Bounds.MinY + c.Bounds.MaxY) / 2
	} else {
		c.Y = math.Max(minY, math.Min(c.Y, maxY))
	}
}

// ViewMatrix returns the world-to-screen matrix, recomputing it if dirty:
//
//	Translate(cx, cy) * Scale(zoom) * Rotate(-rotation) * Translate(-X, -Y)
//
// where cx, cy is the viewport center.
func (c *Camera) ViewMatrix() arbor.Affine {
	if !c.dirty {
		return c.view
	}
	c.dirty = false

	cx := (c.Viewport.MinX + c.Viewport.MaxX) / 2
	cy := (c.Viewport.MinY + c.Viewport.MaxY) / 2

	sin, cos := math.Sincos(-c.Rotation)
	z := c.Zoom

	c.view = arbor.Affine{
		z * cos, z * sin,
		-z * sin, z * cos,
		cx + z*(-cos*c.X+sin*c.Y),
		cy + z*(-sin*c.X-cos*c.Y),
	}
	c.invView = c.view.Invert()
	return c.view
}

// WorldToScreen converts world coordinates to screen coordinates.
func (c *Camera) WorldToScreen(wx, wy float64) (sx, sy float64) {
	return c.ViewMatrix().Apply(wx, wy)
}

// ScreenToWorld converts screen coordinates to world coordinates.
func (c *Camera) ScreenToWorld(sx, sy float64) (wx, wy float64) {
	c.ViewMatrix()
	return c.invView.Apply(sx, sy)
}

// VisibleBounds returns the world-space box covering the camera's visible area.
func (c *Camera) VisibleBounds() arbor.Rect {
	c.ViewMatrix()
	return c.Viewport.Transform(c.invView)
}

// MarkDirty forces a recomputation of the view matrix.
func (c *Camera) MarkDirty() {
	c.dirty = true
}
