package arbor

import "math"

// Vec2 is a 2D vector used for positions, offsets and polygon points.
type Vec2 struct {
	X, Y float64
}

// Rect is an axis-aligned bounding box. The coordinate system has its origin
// at the top-left, with Y increasing downward.
//
// The empty box (see [EmptyRect]) has min = +Inf and max = -Inf on both axes,
// which makes it the identity element of [Rect.Union].
type Rect struct {
	MinX, MinY, MaxX, MaxY float64
}

// EmptyRect returns the identity box under union.
func EmptyRect() Rect {
	inf := math.Inf(1)
	return Rect{MinX: inf, MinY: inf, MaxX: -inf, MaxY: -inf}
}

// RectXYWH builds a box from an origin and a size.
func RectXYWH(x, y, w, h float64) Rect {
	return Rect{MinX: x, MinY: y, MaxX: x + w, MaxY: y + h}
}

// Empty reports whether r contains no point.
func (r Rect) Empty() bool {
	return r.MinX > r.MaxX || r.MinY > r.MaxY
}

// Width returns the horizontal extent, or 0 for an empty box.
func (r Rect) Width() float64 {
	if r.Empty() {
		return 0
	}
	return r.MaxX - r.MinX
}

// Height returns the vertical extent, or 0 for an empty box.
func (r Rect) Height() float64 {
	if r.Empty() {
		return 0
	}
	return r.MaxY - r.MinY
}

// Contains reports whether the point (x, y) lies inside the box.
// Points on the edge are considered inside.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.MinX && x <= r.MaxX &&
		y >= r.MinY && y <= r.MaxY
}

// Intersects reports whether r and other overlap.
// Adjacent boxes (sharing only an edge) are considered intersecting.
func (r Rect) Intersects(other Rect) bool {
	return r.MinX <= other.MaxX && r.MaxX >= other.MinX &&
		r.MinY <= other.MaxY && r.MaxY >= other.MinY
}

// Union returns the smallest box containing both r and other.
func (r Rect) Union(other Rect) Rect {
	return Rect{
		MinX: math.Min(r.MinX, other.MinX),
		MinY: math.Min(r.MinY, other.MinY),
		MaxX: math.Max(r.MaxX, other.MaxX),
		MaxY: math.Max(r.MaxY, other.MaxY),
	}
}

// extend grows r to include the point (x, y).
func (r Rect) extend(x, y float64) Rect {
	return Rect{
		MinX: math.Min(r.MinX, x),
		MinY: math.Min(r.MinY, y),
		MaxX: math.Max(r.MaxX, x),
		MaxY: math.Max(r.MaxY, y),
	}
}

// Transform maps the four corners of r through m and returns their bounding
// box. The empty box stays empty.
func (r Rect) Transform(m Affine) Rect {
	if r.Empty() {
		return r
	}
	out := EmptyRect()
	out = out.extend(m.Apply(r.MinX, r.MinY))
	out = out.extend(m.Apply(r.MaxX, r.MinY))
	out = out.extend(m.Apply(r.MaxX, r.MaxY))
	out = out.extend(m.Apply(r.MinX, r.MaxY))
	return out
}
