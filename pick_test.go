package arbor

import (
	"slices"
	"testing"

	"github.com/phanxgames/arbor/ecs"
)

func TestPick_DisjointRects(t *testing.T) {
	eng := New()
	r1, _, _ := addRect(t, eng, ecs.Nil, 0, 0, 10, 10)
	r2, _, _ := addRect(t, eng, ecs.Nil, 20, 20, 10, 10)

	tests := []struct {
		name string
		x, y float64
		want ecs.Entity
	}{
		{"inside r1", 5, 5, r1},
		{"inside r2", 25, 25, r2},
		{"between", 15, 15, ecs.Nil},
		{"r1 edge", 10, 10, r1},
		{"r2 corner", 20, 20, r2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := eng.Pick(tt.x, tt.y)
			if got != tt.want || ok != (tt.want != ecs.Nil) {
				t.Errorf("Pick(%v, %v) = %d, %v; want %d", tt.x, tt.y, got, ok, tt.want)
			}
		})
	}
}

func TestPick_LaterSiblingWins(t *testing.T) {
	eng := New()
	r1, _, _ := addRect(t, eng, ecs.Nil, 0, 0, 20, 20)
	r2, _, _ := addRect(t, eng, ecs.Nil, 10, 10, 20, 20)

	if got, _ := eng.Pick(15, 15); got != r2 {
		t.Errorf("overlap = %d, want later sibling %d", got, r2)
	}
	if got, _ := eng.Pick(5, 5); got != r1 {
		t.Errorf("r1 only = %d, want %d", got, r1)
	}

	if err := eng.SetChildIndex(r1, 1); err != nil {
		t.Fatal(err)
	}
	if got, _ := eng.Pick(15, 15); got != r1 {
		t.Errorf("after reorder = %d, want %d", got, r1)
	}
}

func TestPick_DescendantBeforeSelf(t *testing.T) {
	eng := New()
	parent, _, _ := addRect(t, eng, ecs.Nil, 0, 0, 100, 100)
	child, _, _ := addRect(t, eng, parent, 40, 40, 20, 20)

	if got, _ := eng.Pick(50, 50); got != child {
		t.Errorf("Pick inside child = %d, want %d", got, child)
	}
	if got, _ := eng.Pick(10, 10); got != parent {
		t.Errorf("Pick on parent only = %d, want %d", got, parent)
	}
}

func TestPick_ChildOutsideParentShape(t *testing.T) {
	eng := New()
	parent, _, _ := addRect(t, eng, ecs.Nil, 0, 0, 10, 10)
	child, ctf, _ := addRect(t, eng, parent, 0, 0, 10, 10)
	ctf.SetPosition(200, 0)

	if got, _ := eng.Pick(205, 5); got != child {
		t.Errorf("Pick = %d, want %d", got, child)
	}
}

func TestPick_ContainerNeverHitDirectly(t *testing.T) {
	eng := New()
	group, _ := mustSpawn(t, eng, ecs.Nil)
	leaf, _, _ := addRect(t, eng, group, 0, 0, 10, 10)

	if got, _ := eng.Pick(5, 5); got != leaf {
		t.Errorf("Pick = %d, want leaf %d", got, leaf)
	}
	if got, ok := eng.Pick(50, 50); ok {
		t.Errorf("Pick outside = %d, want none", got)
	}
}

func TestPick_RefreshesStaleState(t *testing.T) {
	eng := New()
	id, tf, _ := addRect(t, eng, ecs.Nil, 0, 0, 10, 10)
	eng.Update()

	tf.SetPosition(500, 500)
	if _, ok := eng.Pick(5, 5); ok {
		t.Error("old position still hit after move")
	}
	if got, _ := eng.Pick(505, 505); got != id {
		t.Errorf("Pick at new position = %d, want %d", got, id)
	}
}

func TestPick_SelfBoxPrunesBeforeHit(t *testing.T) {
	eng := New(WithoutBuiltinShapes())
	id, _ := mustSpawn(t, eng, ecs.Nil)

	var hits int
	eng.RegisterStrategy(StrategyFuncs{
		MatchFunc: func(e ecs.Entity) bool { return e == id },
		AABBFunc:  func(ecs.Entity) Rect { return Rect{0, 0, 10, 10} },
		HitFunc: func(ecs.Entity, float64, float64) bool {
			hits++
			return true
		},
	})

	if _, ok := eng.Pick(50, 50); ok {
		t.Error("point outside the box should not hit")
	}
	if hits != 0 {
		t.Errorf("Hit called %d times for a pruned point", hits)
	}
	if got, _ := eng.Pick(5, 5); got != id {
		t.Errorf("Pick = %d, want %d", got, id)
	}
}

func TestPick_CircleAndPolygon(t *testing.T) {
	eng := New()
	circle, _ := mustSpawn(t, eng, ecs.Nil)
	if err := eng.AddComponent(circle, &CircleShape{CenterX: 50, CenterY: 50, Radius: 10}); err != nil {
		t.Fatal(err)
	}
	poly, _ := mustSpawn(t, eng, ecs.Nil)
	if err := eng.AddComponent(poly, &PolygonShape{Points: []Vec2{{100, 0}, {120, 0}, {110, 20}}}); err != nil {
		t.Fatal(err)
	}

	if got, _ := eng.Pick(55, 55); got != circle {
		t.Errorf("circle = %d, want %d", got, circle)
	}
	// Inside the circle's box, outside the circle.
	if _, ok := eng.Pick(41, 41); ok {
		t.Error("circle box corner should miss")
	}
	if got, _ := eng.Pick(110, 5); got != poly {
		t.Errorf("polygon = %d, want %d", got, poly)
	}
	if _, ok := eng.Pick(101, 19); ok {
		t.Error("polygon box corner should miss")
	}
}

func TestPickAll_TopmostFirst(t *testing.T) {
	eng := New()
	bottom, _, _ := addRect(t, eng, ecs.Nil, 0, 0, 100, 100)
	child, _, _ := addRect(t, eng, bottom, 0, 0, 50, 50)
	top, _, _ := addRect(t, eng, ecs.Nil, 10, 10, 10, 10)

	got := eng.PickAll(15, 15)
	want := []ecs.Entity{top, child, bottom}
	if !slices.Equal(got, want) {
		t.Errorf("PickAll = %v, want %v", got, want)
	}
	if all := eng.PickAll(500, 500); len(all) != 0 {
		t.Errorf("PickAll miss = %v, want empty", all)
	}
}

func BenchmarkPick_1000Nodes(b *testing.B) {
	eng := New()
	for i := 0; i < 1000; i++ {
		addRect(b, eng, ecs.Nil, float64(i%40)*20, float64(i/40)*20, 16, 16)
	}
	eng.Update()

	b.ReportAllocs()
	b.ResetTimer()
	for b.Loop() {
		eng.Pick(402, 202)
	}
}
