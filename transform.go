package arbor

import (
	"math"

	"github.com/phanxgames/arbor/ecs"
	"github.com/phanxgames/arbor/tree"
)

// Affine is a 2D affine matrix stored as [a, b, c, d, tx, ty]:
//
//	| a  c  tx |
//	| b  d  ty |
//	| 0  0   1 |
type Affine [6]float64

// IdentityAffine is the identity matrix.
var IdentityAffine = Affine{1, 0, 0, 1, 0, 0}

// Multiply returns m * c (c is applied first).
func (m Affine) Multiply(c Affine) Affine {
	return Affine{
		m[0]*c[0] + m[2]*c[1],
		m[1]*c[0] + m[3]*c[1],
		m[0]*c[2] + m[2]*c[3],
		m[1]*c[2] + m[3]*c[3],
		m[0]*c[4] + m[2]*c[5] + m[4],
		m[1]*c[4] + m[3]*c[5] + m[5],
	}
}

// Invert computes the inverse of m.
// Returns the identity matrix if m is singular (determinant ≈ 0).
func (m Affine) Invert() Affine {
	det := m[0]*m[3] - m[2]*m[1]
	if det > -1e-12 && det < 1e-12 {
		return IdentityAffine
	}
	invDet := 1.0 / det
	a := m[3] * invDet
	b := -m[1] * invDet
	c := -m[2] * invDet
	d := m[0] * invDet
	return Affine{
		a, b, c, d,
		-(a*m[4] + c*m[5]),
		-(b*m[4] + d*m[5]),
	}
}

// Apply transforms the point (x, y).
func (m Affine) Apply(x, y float64) (float64, float64) {
	return m[0]*x + m[2]*y + m[4], m[1]*x + m[3]*y + m[5]
}

// Transform is the positional component of a scene entity. Fields may be set
// directly, but then MarkDirty must be called; the setters do it for you.
type Transform struct {
	X, Y         float64
	ScaleX       float64
	ScaleY       float64
	Rotation     float64 // radians
	SkewX, SkewY float64 // radians
	PivotX       float64
	PivotY       float64

	dirty bool
	local Affine
	world Affine
}

// NewTransform returns a dirty transform with unit scale at the origin.
func NewTransform() *Transform {
	return &Transform{
		ScaleX: 1,
		ScaleY: 1,
		dirty:  true,
		local:  IdentityAffine,
		world:  IdentityAffine,
	}
}

// SetPosition sets X and Y and marks the transform dirty.
func (t *Transform) SetPosition(x, y float64) {
	t.X = x
	t.Y = y
	t.dirty = true
}

// SetScale sets ScaleX and ScaleY and marks the transform dirty.
func (t *Transform) SetScale(sx, sy float64) {
	t.ScaleX = sx
	t.ScaleY = sy
	t.dirty = true
}

// SetRotation sets the rotation (in radians) and marks the transform dirty.
func (t *Transform) SetRotation(r float64) {
	t.Rotation = r
	t.dirty = true
}

// SetSkew sets SkewX and SkewY (in radians) and marks the transform dirty.
func (t *Transform) SetSkew(sx, sy float64) {
	t.SkewX = sx
	t.SkewY = sy
	t.dirty = true
}

// SetPivot sets PivotX and PivotY and marks the transform dirty.
func (t *Transform) SetPivot(px, py float64) {
	t.PivotX = px
	t.PivotY = py
	t.dirty = true
}

// MarkDirty forces recomputation on the next update. Useful after
// bulk-setting fields directly.
func (t *Transform) MarkDirty() {
	t.dirty = true
}

// Dirty reports whether the transform changed since the last update.
func (t *Transform) Dirty() bool {
	return t.dirty
}

// Local returns the local matrix computed by the last update.
func (t *Transform) Local() Affine {
	return t.local
}

// World returns the world matrix computed by the last update. It is only
// meaningful once an update ran with no dirty ancestor outstanding.
func (t *Transform) World() Affine {
	return t.world
}

// computeLocal builds the local matrix:
//
//	Translate(X+PivotX, Y+PivotY) * Rotate * Skew * Scale * Translate(-PivotX, -PivotY)
//
// The skew factor drops out when both skew angles are zero.
func (t *Transform) computeLocal() Affine {
	sx := t.ScaleX
	sy := t.ScaleY
	px := t.PivotX
	py := t.PivotY

	// After Scale * Translate(-pivot):
	//   a=sx, b=0, c=0, d=sy, tx=-px*sx, ty=-py*sy
	a, b, c, d := sx, 0.0, 0.0, sy
	preTx := -px * sx
	preTy := -py * sy

	if t.SkewX != 0 || t.SkewY != 0 {
		tanX := math.Tan(t.SkewX)
		tanY := math.Tan(t.SkewY)
		b = tanY * sx
		c = tanX * sy
		preTx, preTy = preTx+tanX*preTy, tanY*preTx+preTy
	}

	if t.Rotation != 0 {
		sin, cos := math.Sincos(t.Rotation)
		a, b, c, d = cos*a-sin*b, sin*a+cos*b, cos*c-sin*d, sin*c+cos*d
		preTx, preTy = cos*preTx-sin*preTy, sin*preTx+cos*preTy
	}

	return Affine{a, b, c, d, preTx + t.X + px, preTy + t.Y + py}
}

// transformContext is the per-node state handed from parent to children
// during the transform pass.
type transformContext struct {
	world Affine
	dirty bool
}

// runTransformPass recomputes local and world matrices in display-list order
// (parents first). A node is recomputed when its own transform is dirty or
// its parent was recomputed in this pass. It returns the number of
// recomputed nodes.
func (e *Engine) runTransformPass(list []tree.Entry) int {
	ctxs := e.transformCtx
	clear(ctxs)
	ctxs[ecs.Nil] = transformContext{world: IdentityAffine}

	recomputed := 0
	for _, en := range list {
		parent := ctxs[en.Parent]
		tf := e.transformOf(en.Entity)
		if tf == nil {
			// No transform: the node inherits its parent's frame unchanged,
			// so its box goes stale whenever that frame moves.
			ctxs[en.Entity] = parent
			if parent.dirty {
				if bb := e.boundsOf(en.Entity); bb != nil {
					bb.dirty = true
				}
			}
			if e.debug {
				e.log.Debug("node without transform", entityField(en.Entity))
			}
			continue
		}

		ctx := transformContext{dirty: tf.dirty}
		if ctx.dirty || parent.dirty {
			ctx.dirty = true
			tf.dirty = false
			if bb := e.boundsOf(en.Entity); bb != nil {
				bb.dirty = true
			}
			tf.local = tf.computeLocal()
			tf.world = parent.world.Multiply(tf.local)
			recomputed++
		}
		ctx.world = tf.world
		ctxs[en.Entity] = ctx
	}
	return recomputed
}

// transformOf returns e's Transform, or nil.
func (e *Engine) transformOf(id ecs.Entity) *Transform {
	c, ok := e.store.Component(id, e.transformKind)
	if !ok {
		return nil
	}
	return c.(*Transform)
}

// --- Coordinate conversion ---

// LocalToWorld converts a point in id's local space to world space using the
// world matrix from the last update.
func (e *Engine) LocalToWorld(id ecs.Entity, lx, ly float64) (wx, wy float64) {
	return e.worldOf(id).Apply(lx, ly)
}

// WorldToLocal converts a world-space point to id's local space.
func (e *Engine) WorldToLocal(id ecs.Entity, wx, wy float64) (lx, ly float64) {
	return e.worldOf(id).Invert().Apply(wx, wy)
}

// WorldMatrix returns id's world matrix as of the last update. An entity
// without a Transform uses its nearest transformed ancestor's.
func (e *Engine) WorldMatrix(id ecs.Entity) Affine {
	return e.worldOf(id)
}

// worldOf returns id's world matrix, walking up to the nearest ancestor with a
// transform when id has none.
func (e *Engine) worldOf(id ecs.Entity) Affine {
	for id != ecs.Nil {
		if tf := e.transformOf(id); tf != nil {
			return tf.world
		}
		n, ok := e.tree.Get(id)
		if !ok {
			break
		}
		id = n.Parent()
	}
	return IdentityAffine
}
