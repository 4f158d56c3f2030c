package arbor

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/phanxgames/arbor/ecs"
	"github.com/phanxgames/arbor/tree"
)

// Engine owns the component store and the scene tree, and runs the transform,
// bounds and pick processes over them. It is single-threaded: every method
// must be called from the goroutine driving the frame loop.
type Engine struct {
	kinds *ecs.Kinds
	store *ecs.Store
	tree  *tree.Tree

	strategies []Strategy

	transformKind ecs.Kind
	boundsKind    ecs.Kind
	listenersKind ecs.Kind
	rectKind      ecs.Kind
	circleKind    ecs.Kind
	polygonKind   ecs.Kind

	log   *zap.Logger
	debug bool
	sink  EventSink

	traversing int
	elapsed    float64
	frame      uint64

	// Pass scratch, reused across frames.
	transformCtx map[ecs.Entity]transformContext
	boundsAcc    map[ecs.Entity]Rect

	// Input state
	handlers     handlerRegistry
	captured     [MaxPointers]ecs.Entity
	pointers     [MaxPointers]pointerState
	dragDeadZone float64
}

// New creates an engine. Built-in kinds (Transform, BoundingBox, Listeners and
// the shape components) are registered on the engine's kind registry, and the
// built-in shape strategies are registered first unless WithoutBuiltinShapes
// is given.
func New(opts ...Option) *Engine {
	cfg := options{builtinShapes: true}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.kinds == nil {
		cfg.kinds = ecs.NewKinds()
	}
	if cfg.logger == nil {
		cfg.logger = zap.NewNop()
	}

	e := &Engine{
		kinds:        cfg.kinds,
		store:        ecs.NewStore(cfg.kinds),
		tree:         tree.New(),
		log:          cfg.logger,
		debug:        cfg.debug,
		sink:         cfg.sink,
		transformCtx: make(map[ecs.Entity]transformContext, 256),
		boundsAcc:    make(map[ecs.Entity]Rect, 256),
		dragDeadZone: defaultDragDeadZone,
	}
	e.transformKind = ecs.Register[Transform](e.kinds)
	e.boundsKind = ecs.Register[BoundingBox](e.kinds)
	e.listenersKind = ecs.Register[Listeners](e.kinds)
	e.rectKind = ecs.Register[RectShape](e.kinds, ecs.RenderKind())
	e.circleKind = ecs.Register[CircleShape](e.kinds, ecs.RenderKind())
	e.polygonKind = ecs.Register[PolygonShape](e.kinds, ecs.RenderKind())
	if cfg.builtinShapes {
		e.registerBuiltinShapes()
	}
	return e
}

// Kinds returns the engine's component kind registry. Register custom
// component types on it before attaching them.
func (e *Engine) Kinds() *ecs.Kinds {
	return e.kinds
}

// Store returns the underlying component store. Mutating it directly bypasses
// the engine's dirty tracking and re-entrancy checks.
func (e *Engine) Store() *ecs.Store {
	return e.store
}

// Tree returns the scene tree. Use the Engine methods to change its topology
// so bounds are invalidated correctly.
func (e *Engine) Tree() *tree.Tree {
	return e.tree
}

// TransformKind returns the kind of the built-in Transform component.
func (e *Engine) TransformKind() ecs.Kind { return e.transformKind }

// BoundsKind returns the kind of the built-in BoundingBox component.
func (e *Engine) BoundsKind() ecs.Kind { return e.boundsKind }

// ListenersKind returns the kind of the built-in Listeners component.
func (e *Engine) ListenersKind() ecs.Kind { return e.listenersKind }

// RectKind returns the kind of the built-in RectShape component.
func (e *Engine) RectKind() ecs.Kind { return e.rectKind }

// CircleKind returns the kind of the built-in CircleShape component.
func (e *Engine) CircleKind() ecs.Kind { return e.circleKind }

// PolygonKind returns the kind of the built-in PolygonShape component.
func (e *Engine) PolygonKind() ecs.Kind { return e.polygonKind }

// Logger returns the engine's logger.
func (e *Engine) Logger() *zap.Logger {
	return e.log
}

// SetEventSink sets the optional event bridge.
func (e *Engine) SetEventSink(sink EventSink) {
	e.sink = sink
}

// --- Frame driving ---

// Update runs the transform pass over the display list and then the bounds
// pass over the same list reversed.
func (e *Engine) Update() {
	e.traversing++
	defer func() { e.traversing-- }()

	list := e.tree.DisplayList()

	var stats frameStats
	var t0 time.Time
	if e.debug {
		t0 = time.Now()
	}

	stats.transformed = e.runTransformPass(list)

	if e.debug {
		stats.transformTime = time.Since(t0)
		t0 = time.Now()
	}

	stats.bounded = e.runBoundsPass(list)

	if e.debug {
		stats.boundsTime = time.Since(t0)
		stats.nodes = len(list)
		e.debugLog(stats)
	}
}

// Tick advances the engine clock by dt and runs one Update. dt is opaque to
// the engine; negative values are treated as zero.
func (e *Engine) Tick(dt float64) {
	if dt < 0 {
		e.log.Warn("negative frame delta", zap.Float64("dt", dt))
		dt = 0
	}
	e.elapsed += dt
	e.frame++
	e.Update()
}

// Elapsed returns the sum of all deltas passed to Tick.
func (e *Engine) Elapsed() float64 {
	return e.elapsed
}

// Frame returns the number of Tick calls so far.
func (e *Engine) Frame() uint64 {
	return e.frame
}

// --- Entities ---

// CreateEntity issues a new entity with no components and no scene node.
func (e *Engine) CreateEntity() ecs.Entity {
	return e.store.Create()
}

// HasEntity reports whether id is live.
func (e *Engine) HasEntity(id ecs.Entity) bool {
	return e.store.Has(id)
}

// RemoveEntity removes id. If id has a scene node, its whole subtree is
// detached and every entity in it is removed as well.
func (e *Engine) RemoveEntity(id ecs.Entity) error {
	if err := e.checkMutable("remove entity"); err != nil {
		return err
	}
	if !e.store.Has(id) {
		return fmt.Errorf("remove entity %d: %w", id, ErrUnknownEntity)
	}
	if !e.tree.Has(id) {
		e.forgetPointerTarget(id)
		return e.store.Remove(id)
	}
	removed, err := e.RemoveNode(id)
	if err != nil {
		return err
	}
	for _, r := range removed {
		e.forgetPointerTarget(r)
		if e.store.Has(r) {
			if err := e.store.Remove(r); err != nil {
				return err
			}
		}
	}
	return nil
}

// Spawn creates an entity with a fresh Transform and a scene node under
// parent (ecs.Nil for the root).
func (e *Engine) Spawn(parent ecs.Entity) (ecs.Entity, *Transform, error) {
	if err := e.checkMutable("spawn"); err != nil {
		return ecs.Nil, nil, err
	}
	if parent != ecs.Nil && !e.tree.Has(parent) {
		return ecs.Nil, nil, fmt.Errorf("spawn: parent %d not in tree: %w", parent, ErrStructuralViolation)
	}
	id := e.store.Create()
	tf := NewTransform()
	if err := e.store.AddComponent(id, tf); err != nil {
		_ = e.store.Remove(id)
		return ecs.Nil, nil, err
	}
	if err := e.AddNode(id, parent); err != nil {
		_ = e.store.Remove(id)
		return ecs.Nil, nil, err
	}
	return id, tf, nil
}

// --- Components ---

// AddComponent attaches c (a pointer to a registered component type) to id.
// The entity's bounds are invalidated.
func (e *Engine) AddComponent(id ecs.Entity, c any) error {
	if err := e.checkMutable("add component"); err != nil {
		return err
	}
	if err := e.store.AddComponent(id, c); err != nil {
		return err
	}
	if tf, ok := c.(*Transform); ok {
		tf.dirty = true
		e.invalidateDescendants(id)
	}
	e.MarkBoundsDirty(id)
	return nil
}

// RemoveComponent detaches the component of kind k from id. The entity's
// bounds are invalidated.
func (e *Engine) RemoveComponent(id ecs.Entity, k ecs.Kind) error {
	if err := e.checkMutable("remove component"); err != nil {
		return err
	}
	if k == e.boundsKind {
		// The box is recreated on the next pass; its parent must drop it.
		e.markParentBoundsDirty(id)
	}
	if err := e.store.RemoveComponent(id, k); err != nil {
		return err
	}
	if k == e.transformKind {
		e.invalidateDescendants(id)
	}
	e.MarkBoundsDirty(id)
	return nil
}

// Component returns id's component of kind k.
func (e *Engine) Component(id ecs.Entity, k ecs.Kind) (any, bool) {
	return e.store.Component(id, k)
}

// HasComponent reports whether id holds a component of kind k.
func (e *Engine) HasComponent(id ecs.Entity, k ecs.Kind) bool {
	return e.store.HasComponent(id, k)
}

// EntitiesWith returns the entities whose component kind set is exactly ks.
func (e *Engine) EntitiesWith(ks ...ecs.Kind) []ecs.Entity {
	return e.store.EntitiesWith(ks...)
}

// Transform returns id's Transform.
func (e *Engine) Transform(id ecs.Entity) (*Transform, bool) {
	tf := e.transformOf(id)
	return tf, tf != nil
}

// --- Scene tree ---

// AddNode gives the live entity id a scene node as the last child of parent
// (ecs.Nil for the root). Its transform is marked dirty so its world matrix is
// computed under the new parent.
func (e *Engine) AddNode(id, parent ecs.Entity) error {
	if err := e.checkMutable("add node"); err != nil {
		return err
	}
	if !e.store.Has(id) {
		return fmt.Errorf("add node %d: %w", id, ErrUnknownEntity)
	}
	if err := e.tree.Add(id, parent); err != nil {
		return err
	}
	e.markMoved(id)
	if e.debug {
		e.debugCheckTree(id, parent)
	}
	return nil
}

// SetParent moves child, with its subtree, under parent.
func (e *Engine) SetParent(parent, child ecs.Entity) error {
	if err := e.checkMutable("set parent"); err != nil {
		return err
	}
	oldParent := e.parentOf(child)
	if err := e.tree.SetParent(parent, child); err != nil {
		return err
	}
	e.MarkBoundsDirty(oldParent)
	e.markMoved(child)
	if e.debug {
		e.debugCheckTree(child, parent)
	}
	return nil
}

// SetChildIndex moves id to position index among its siblings, which changes
// its paint and pick order.
func (e *Engine) SetChildIndex(id ecs.Entity, index int) error {
	if err := e.checkMutable("set child index"); err != nil {
		return err
	}
	return e.tree.SetChildIndex(id, index)
}

// RemoveNode detaches id's subtree from the scene and returns the detached
// entities in pre-order. Their components are left in place.
func (e *Engine) RemoveNode(id ecs.Entity) ([]ecs.Entity, error) {
	if err := e.checkMutable("remove node"); err != nil {
		return nil, err
	}
	oldParent := e.parentOf(id)
	removed, err := e.tree.Remove(id)
	if err != nil {
		return nil, err
	}
	e.MarkBoundsDirty(oldParent)
	return removed, nil
}

// markMoved invalidates id's world matrix and bounds after a topology change.
func (e *Engine) markMoved(id ecs.Entity) {
	if tf := e.transformOf(id); tf != nil {
		tf.dirty = true
	}
	e.MarkBoundsDirty(id)
}

// invalidateDescendants marks every transform and box below id dirty. It is
// needed when id's own frame changes without its Transform being recomputed.
func (e *Engine) invalidateDescendants(id ecs.Entity) {
	if !e.tree.Has(id) {
		return
	}
	for _, d := range e.tree.Descendants(id) {
		if tf := e.transformOf(d); tf != nil {
			tf.dirty = true
		}
		e.MarkBoundsDirty(d)
	}
}

func (e *Engine) markParentBoundsDirty(id ecs.Entity) {
	if p := e.parentOf(id); p != ecs.Nil {
		e.MarkBoundsDirty(p)
	}
}

// checkMutable rejects mutation while a traversal is running.
func (e *Engine) checkMutable(op string) error {
	if e.traversing > 0 {
		return fmt.Errorf("%s: %w", op, ErrReentrantMutation)
	}
	return nil
}
