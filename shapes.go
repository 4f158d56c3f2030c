package arbor

import "github.com/phanxgames/arbor/ecs"

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
type Color struct {
	R, G, B, A float64
}

// ColorWhite is the default fill.
var ColorWhite = Color{1, 1, 1, 1}

// --- Built-in shape components ---
//
// All three are render kinds: an entity carries at most one of them. Geometry
// is in the entity's local space and is mapped through its world matrix.

// RectShape is an axis-aligned rectangle in local coordinates.
type RectShape struct {
	X, Y, Width, Height float64
	Color               Color
}

// contains reports whether (x, y) lies inside the rectangle.
func (r *RectShape) contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

func (r *RectShape) localBounds() Rect {
	return RectXYWH(r.X, r.Y, r.Width, r.Height)
}

// CircleShape is a circle in local coordinates.
type CircleShape struct {
	CenterX, CenterY, Radius float64
	Color                    Color
}

// contains reports whether (x, y) lies inside or on the circle.
func (c *CircleShape) contains(x, y float64) bool {
	dx := x - c.CenterX
	dy := y - c.CenterY
	return dx*dx+dy*dy <= c.Radius*c.Radius
}

func (c *CircleShape) localBounds() Rect {
	return Rect{
		MinX: c.CenterX - c.Radius, MinY: c.CenterY - c.Radius,
		MaxX: c.CenterX + c.Radius, MaxY: c.CenterY + c.Radius,
	}
}

// PolygonShape is a convex polygon in local coordinates.
// Points must define a convex polygon in either winding order.
type PolygonShape struct {
	Points []Vec2
	Color  Color
}

// contains reports whether (x, y) lies inside a convex polygon using cross-product sign test.
func (p *PolygonShape) contains(x, y float64) bool {
	n := len(p.Points)
	if n < 3 {
		return false
	}

	// Check that the point is on the same side of every edge.
	var positive, negative bool
	for i := 0; i < n; i++ {
		x1 := p.Points[i].X
		y1 := p.Points[i].Y
		j := (i + 1) % n
		x2 := p.Points[j].X
		y2 := p.Points[j].Y

		cross := (x2-x1)*(y-y1) - (y2-y1)*(x-x1)
		if cross > 0 {
			positive = true
		} else if cross < 0 {
			negative = true
		}
		if positive && negative {
			return false
		}
	}
	return true
}

func (p *PolygonShape) localBounds() Rect {
	r := EmptyRect()
	for _, pt := range p.Points {
		r = r.extend(pt.X, pt.Y)
	}
	return r
}

// --- Strategy ---

// localShape is implemented by the built-in shape components.
type localShape interface {
	localBounds() Rect
	contains(x, y float64) bool
}

// shapeStrategy serves one built-in shape kind: it matches entities holding a
// component of that kind and evaluates the shape in local space.
type shapeStrategy struct {
	eng  *Engine
	kind ecs.Kind
}

func (s *shapeStrategy) shape(id ecs.Entity) localShape {
	c, ok := s.eng.store.Component(id, s.kind)
	if !ok {
		return nil
	}
	ls, _ := c.(localShape)
	return ls
}

// Match implements Strategy.
func (s *shapeStrategy) Match(id ecs.Entity) bool {
	return s.eng.store.HasComponent(id, s.kind)
}

// ComputeAABB implements Strategy.
func (s *shapeStrategy) ComputeAABB(id ecs.Entity) Rect {
	sh := s.shape(id)
	if sh == nil {
		return EmptyRect()
	}
	return sh.localBounds().Transform(s.eng.worldOf(id))
}

// Hit implements Strategy.
func (s *shapeStrategy) Hit(id ecs.Entity, x, y float64) bool {
	sh := s.shape(id)
	if sh == nil {
		return false
	}
	lx, ly := s.eng.WorldToLocal(id, x, y)
	return sh.contains(lx, ly)
}

// registerBuiltinShapes registers the shape kinds and their strategies.
func (e *Engine) registerBuiltinShapes() {
	e.RegisterStrategy(&shapeStrategy{eng: e, kind: e.rectKind})
	e.RegisterStrategy(&shapeStrategy{eng: e, kind: e.circleKind})
	e.RegisterStrategy(&shapeStrategy{eng: e, kind: e.polygonKind})
}
