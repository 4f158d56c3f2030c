package arbor

import (
	"errors"
	"slices"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/phanxgames/arbor/ecs"
)

type velocity struct{ DX, DY float64 }

func TestNew(t *testing.T) {
	eng := New()
	if eng.Tree() == nil || eng.Store() == nil || eng.Kinds() == nil {
		t.Fatal("New returned an engine with nil collaborators")
	}
	if len(eng.Strategies()) != 3 {
		t.Errorf("strategies = %d, want 3 built-in", len(eng.Strategies()))
	}
	for _, k := range []ecs.Kind{eng.RectKind(), eng.CircleKind(), eng.PolygonKind()} {
		if !eng.Kinds().IsRender(k) {
			t.Errorf("kind %s should be a render kind", eng.Kinds().Name(k))
		}
	}
	if eng.Kinds().IsRender(eng.TransformKind()) {
		t.Error("Transform should not be a render kind")
	}
}

func TestWithKindsSharesRegistry(t *testing.T) {
	kinds := ecs.NewKinds()
	vk := ecs.Register[velocity](kinds)
	eng := New(WithKinds(kinds))

	if eng.Kinds() != kinds {
		t.Fatal("engine should use the supplied registry")
	}
	id := eng.CreateEntity()
	if err := eng.AddComponent(id, &velocity{DX: 1}); err != nil {
		t.Fatal(err)
	}
	if !eng.HasComponent(id, vk) {
		t.Error("custom component missing")
	}
}

func TestSpawn(t *testing.T) {
	eng := New()
	id, tf, err := eng.Spawn(ecs.Nil)
	if err != nil {
		t.Fatal(err)
	}
	if !eng.HasEntity(id) || !eng.Tree().Has(id) {
		t.Error("spawned entity should be live and in the tree")
	}
	got, ok := eng.Transform(id)
	if !ok || got != tf {
		t.Error("Transform should return the spawned transform")
	}

	if _, _, err := eng.Spawn(ecs.Entity(999)); !errors.Is(err, ErrStructuralViolation) {
		t.Errorf("Spawn under missing parent: err = %v, want ErrStructuralViolation", err)
	}
}

func TestAddComponentErrors(t *testing.T) {
	eng := New()
	if err := eng.AddComponent(ecs.Entity(42), NewTransform()); !errors.Is(err, ErrUnknownEntity) {
		t.Errorf("unknown entity: err = %v", err)
	}
	id := eng.CreateEntity()
	if err := eng.AddComponent(id, &velocity{}); !errors.Is(err, ErrUnregisteredKind) {
		t.Errorf("unregistered kind: err = %v", err)
	}
	if err := eng.RemoveComponent(ecs.Entity(42), eng.TransformKind()); !errors.Is(err, ErrUnknownEntity) {
		t.Errorf("remove on unknown entity: err = %v", err)
	}
}

func TestAddNodeErrors(t *testing.T) {
	eng := New()
	if err := eng.AddNode(ecs.Entity(7), ecs.Nil); !errors.Is(err, ErrUnknownEntity) {
		t.Errorf("dead entity: err = %v", err)
	}
	id := eng.CreateEntity()
	if err := eng.AddNode(id, ecs.Nil); err != nil {
		t.Fatal(err)
	}
	if err := eng.AddNode(id, ecs.Nil); !errors.Is(err, ErrStructuralViolation) {
		t.Errorf("duplicate node: err = %v", err)
	}
}

func TestRemoveEntityRemovesSubtree(t *testing.T) {
	eng := New()
	a, _ := mustSpawn(t, eng, ecs.Nil)
	b, _ := mustSpawn(t, eng, a)
	c, _ := mustSpawn(t, eng, b)
	keep, _ := mustSpawn(t, eng, ecs.Nil)
	eng.Update()

	if err := eng.RemoveEntity(a); err != nil {
		t.Fatal(err)
	}
	for _, id := range []ecs.Entity{a, b, c} {
		if eng.HasEntity(id) || eng.Tree().Has(id) {
			t.Errorf("entity %d survived subtree removal", id)
		}
	}
	if !eng.HasEntity(keep) {
		t.Error("unrelated entity removed")
	}
	if err := eng.RemoveEntity(a); !errors.Is(err, ErrUnknownEntity) {
		t.Errorf("second remove: err = %v", err)
	}
}

func TestRemoveNodeKeepsComponents(t *testing.T) {
	eng := New()
	id, _ := mustSpawn(t, eng, ecs.Nil)
	removed, err := eng.RemoveNode(id)
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(removed, []ecs.Entity{id}) {
		t.Errorf("removed = %v", removed)
	}
	if !eng.HasComponent(id, eng.TransformKind()) {
		t.Error("RemoveNode should leave components in place")
	}
}

func TestEntitiesWithAfterUpdate(t *testing.T) {
	eng := New()
	a, _, _ := addRect(t, eng, ecs.Nil, 0, 0, 1, 1)
	b, _ := mustSpawn(t, eng, ecs.Nil)
	eng.Update()

	shaped := eng.EntitiesWith(eng.TransformKind(), eng.BoundsKind(), eng.RectKind())
	if !slices.Equal(shaped, []ecs.Entity{a}) {
		t.Errorf("shaped = %v, want [%d]", shaped, a)
	}
	bare := eng.EntitiesWith(eng.BoundsKind(), eng.TransformKind())
	if !slices.Equal(bare, []ecs.Entity{b}) {
		t.Errorf("bare = %v, want [%d]", bare, b)
	}
}

func TestReentrantMutationRejected(t *testing.T) {
	eng := New(WithoutBuiltinShapes())
	id, _ := mustSpawn(t, eng, ecs.Nil)

	var inner error
	eng.RegisterStrategy(StrategyFuncs{
		MatchFunc: func(e ecs.Entity) bool {
			if inner == nil {
				inner = eng.AddComponent(e, &RectShape{})
			}
			return false
		},
	})
	eng.Update()

	if !errors.Is(inner, ErrReentrantMutation) {
		t.Errorf("mutation inside Update: err = %v, want ErrReentrantMutation", inner)
	}
	if eng.HasComponent(id, eng.RectKind()) {
		t.Error("rejected mutation should not have applied")
	}
	if err := eng.AddComponent(id, &RectShape{}); err != nil {
		t.Errorf("mutation after Update: %v", err)
	}
}

func TestTick(t *testing.T) {
	eng := New()
	_, tf := mustSpawn(t, eng, ecs.Nil)
	tf.SetPosition(3, 0)

	eng.Tick(0.5)
	eng.Tick(0.25)
	eng.Tick(-1)

	assertNear(t, "elapsed", eng.Elapsed(), 0.75)
	if eng.Frame() != 3 {
		t.Errorf("Frame = %d, want 3", eng.Frame())
	}
	if tf.Dirty() {
		t.Error("Tick should run an update")
	}
}

func TestDebugModeLogsUpdate(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	eng := New(WithLogger(zap.New(core)), WithDebug())
	mustSpawn(t, eng, ecs.Nil)

	eng.Tick(1)
	entries := logs.FilterMessage("update").All()
	if len(entries) != 1 {
		t.Fatalf("update log entries = %d, want 1", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["nodes"] != int64(1) || fields["transformed"] != int64(1) {
		t.Errorf("fields = %v", fields)
	}

	eng.SetDebugMode(false)
	eng.Tick(1)
	if n := logs.FilterMessage("update").Len(); n != 1 {
		t.Errorf("debug off still logged: %d entries", n)
	}
}

func TestDebugModeWarnsDeepTree(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	eng := New(WithLogger(zap.New(core)), WithDebug())
	parent := ecs.Nil
	for i := 0; i <= debugMaxTreeDepth; i++ {
		parent, _ = mustSpawn(t, eng, parent)
	}
	if logs.FilterMessage("tree depth exceeds threshold").Len() != 1 {
		t.Errorf("expected one depth warning, got %v", logs.All())
	}
}
