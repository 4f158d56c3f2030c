package arbor

import (
	"github.com/phanxgames/arbor/ecs"
	"github.com/phanxgames/arbor/tree"
)

// BoundingBox caches an entity's world-space bounds. It is created by the
// engine the first time the entity takes part in a bounds pass.
type BoundingBox struct {
	Self     Rect // the entity's own shape
	Children Rect // union of every child's Total
	Total    Rect // Self ∪ Children

	dirty bool
}

func newBoundingBox() *BoundingBox {
	return &BoundingBox{
		Self:     EmptyRect(),
		Children: EmptyRect(),
		Total:    EmptyRect(),
		dirty:    true,
	}
}

// Dirty reports whether the box is stale.
func (b *BoundingBox) Dirty() bool {
	return b.dirty
}

// MarkDirty forces recomputation on the next bounds pass.
func (b *BoundingBox) MarkDirty() {
	b.dirty = true
}

// runBoundsPass walks the display list backwards so every child is settled
// before its parent. Each node hands its Total to its parent's accumulator;
// a node recomputed in this pass also marks its parent dirty, which is how a
// geometry change travels up to the root. Returns the number of recomputed
// nodes.
func (e *Engine) runBoundsPass(list []tree.Entry) int {
	acc := e.boundsAcc
	clear(acc)

	recomputed := 0
	for i := len(list) - 1; i >= 0; i-- {
		en := list[i]
		bb := e.boundsOf(en.Entity)
		if bb == nil {
			bb = newBoundingBox()
			if err := e.store.AddComponent(en.Entity, bb); err != nil {
				e.log.Warn("attach bounding box", entityField(en.Entity), errField(err))
				continue
			}
		}

		if bb.dirty {
			children, ok := acc[en.Entity]
			if !ok {
				children = EmptyRect()
			}
			bb.Self = e.computeSelf(en.Entity)
			bb.Children = children
			bb.Total = bb.Self.Union(children)
			bb.dirty = false
			recomputed++

			if en.Parent != ecs.Nil {
				if pb := e.boundsOf(en.Parent); pb != nil {
					pb.dirty = true
				}
			}
		}

		if en.Parent != ecs.Nil {
			prev, ok := acc[en.Parent]
			if !ok {
				prev = EmptyRect()
			}
			acc[en.Parent] = prev.Union(bb.Total)
		}
	}
	return recomputed
}

// computeSelf dispatches to the first matching strategy. No match yields the
// empty box.
func (e *Engine) computeSelf(id ecs.Entity) Rect {
	if s := e.strategyFor(id); s != nil {
		return s.ComputeAABB(id)
	}
	return EmptyRect()
}

// boundsOf returns id's BoundingBox, or nil.
func (e *Engine) boundsOf(id ecs.Entity) *BoundingBox {
	c, ok := e.store.Component(id, e.boundsKind)
	if !ok {
		return nil
	}
	return c.(*BoundingBox)
}

// Bounds returns id's bounding box as of the last update.
func (e *Engine) Bounds(id ecs.Entity) (*BoundingBox, bool) {
	bb := e.boundsOf(id)
	return bb, bb != nil
}

// MarkBoundsDirty forces id's bounds, and through propagation its ancestors'
// bounds, to be recomputed on the next update. Call it after editing a shape
// in place.
func (e *Engine) MarkBoundsDirty(id ecs.Entity) {
	if bb := e.boundsOf(id); bb != nil {
		bb.dirty = true
	}
}
