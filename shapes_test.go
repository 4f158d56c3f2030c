package arbor

import (
	"math"
	"testing"

	"github.com/phanxgames/arbor/ecs"
)

func TestRectShapeContains(t *testing.T) {
	r := RectShape{X: 10, Y: 20, Width: 100, Height: 50}

	tests := []struct {
		name string
		x, y float64
		want bool
	}{
		{"inside", 50, 40, true},
		{"top-left corner", 10, 20, true},
		{"bottom-right corner", 110, 70, true},
		{"outside left", 5, 40, false},
		{"outside right", 115, 40, false},
		{"outside top", 50, 15, false},
		{"outside bottom", 50, 75, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.contains(tt.x, tt.y); got != tt.want {
				t.Errorf("RectShape.contains(%v, %v) = %v, want %v", tt.x, tt.y, got, tt.want)
			}
		})
	}
}

func TestCircleShapeContains(t *testing.T) {
	c := CircleShape{CenterX: 50, CenterY: 50, Radius: 25}

	tests := []struct {
		name string
		x, y float64
		want bool
	}{
		{"center", 50, 50, true},
		{"on circumference", 75, 50, true},
		{"inside", 60, 50, true},
		{"outside", 80, 50, false},
		{"outside diagonal", 70, 70, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.contains(tt.x, tt.y); got != tt.want {
				t.Errorf("CircleShape.contains(%v, %v) = %v, want %v", tt.x, tt.y, got, tt.want)
			}
		})
	}
}

func TestPolygonShapeContains(t *testing.T) {
	p := PolygonShape{Points: []Vec2{
		{0, 0}, {100, 0}, {100, 100}, {0, 100},
	}}

	tests := []struct {
		name string
		x, y float64
		want bool
	}{
		{"inside", 50, 50, true},
		{"on edge", 0, 50, true},
		{"corner", 0, 0, true},
		{"outside", -1, 50, false},
		{"outside far", 200, 200, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.contains(tt.x, tt.y); got != tt.want {
				t.Errorf("PolygonShape.contains(%v, %v) = %v, want %v", tt.x, tt.y, got, tt.want)
			}
		})
	}

	tri := PolygonShape{Points: []Vec2{{0, 0}, {100, 0}, {50, 100}}}
	if !tri.contains(50, 50) {
		t.Error("triangle should contain its center")
	}
	if tri.contains(-10, 50) {
		t.Error("triangle should not contain point far left")
	}

	degen := PolygonShape{Points: []Vec2{{0, 0}, {1, 1}}}
	if degen.contains(0, 0) {
		t.Error("degenerate polygon should not contain anything")
	}
}

func TestPolygonShapeContains_ReversedWinding(t *testing.T) {
	p := PolygonShape{Points: []Vec2{
		{0, 100}, {100, 100}, {100, 0}, {0, 0},
	}}
	if !p.contains(50, 50) {
		t.Error("reversed winding polygon should still contain center point")
	}
	if p.contains(-1, 50) {
		t.Error("reversed winding polygon should not contain outside point")
	}
}

func TestShapeLocalBounds(t *testing.T) {
	r := (&RectShape{X: 1, Y: 2, Width: 3, Height: 4}).localBounds()
	if r != (Rect{1, 2, 4, 6}) {
		t.Errorf("rect bounds = %v", r)
	}
	c := (&CircleShape{CenterX: 5, CenterY: 5, Radius: 2}).localBounds()
	if c != (Rect{3, 3, 7, 7}) {
		t.Errorf("circle bounds = %v", c)
	}
	p := (&PolygonShape{Points: []Vec2{{-1, 4}, {3, -2}, {0, 0}}}).localBounds()
	if p != (Rect{-1, -2, 3, 4}) {
		t.Errorf("polygon bounds = %v", p)
	}
	if !(&PolygonShape{}).localBounds().Empty() {
		t.Error("polygon without points should have empty bounds")
	}
}

func TestShapesAreRenderKinds(t *testing.T) {
	eng := New()
	id, _ := mustSpawn(t, eng, ecs.Nil)

	if err := eng.AddComponent(id, &RectShape{Width: 10, Height: 10}); err != nil {
		t.Fatal(err)
	}
	if err := eng.AddComponent(id, &CircleShape{Radius: 5}); err != nil {
		t.Fatal(err)
	}
	if eng.HasComponent(id, eng.RectKind()) {
		t.Error("rect should have been evicted by circle")
	}
	if !eng.HasComponent(id, eng.CircleKind()) {
		t.Error("circle missing")
	}
}

func TestRotatedRectHit(t *testing.T) {
	eng := New()
	id, tf := mustSpawn(t, eng, ecs.Nil)
	tf.SetPosition(100, 100)
	tf.SetRotation(math.Pi / 4)
	if err := eng.AddComponent(id, &RectShape{X: -50, Y: -5, Width: 100, Height: 10}); err != nil {
		t.Fatal(err)
	}

	// Along the rotated long axis.
	if got, _ := eng.Pick(130, 130); got != id {
		t.Errorf("Pick on rotated axis = %d, want %d", got, id)
	}
	// Inside the world AABB but off the rotated bar.
	if got, ok := eng.Pick(130, 70); ok {
		t.Errorf("Pick off rotated bar = %d, want none", got)
	}
}

func TestWithoutBuiltinShapes(t *testing.T) {
	eng := New(WithoutBuiltinShapes())
	if len(eng.Strategies()) != 0 {
		t.Fatalf("strategies = %d, want 0", len(eng.Strategies()))
	}
	id, _ := mustSpawn(t, eng, ecs.Nil)
	if err := eng.AddComponent(id, &RectShape{Width: 10, Height: 10}); err != nil {
		t.Fatal(err)
	}
	if _, ok := eng.Pick(5, 5); ok {
		t.Error("shape without a strategy must not be hit")
	}
	bb, _ := eng.Bounds(id)
	if !bb.Self.Empty() {
		t.Errorf("Self = %v, want empty", bb.Self)
	}
}
