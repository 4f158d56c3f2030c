package arbor

import (
	"github.com/phanxgames/arbor/ecs"
	"github.com/phanxgames/arbor/tree"
)

// Pick returns the topmost entity whose shape contains the world-space point
// (x, y). Transforms and bounds are refreshed first.
//
// The walk visits children last-added first, so entities painted later win.
// A subtree whose Total box misses the point is skipped entirely. A node is
// tested against its own shape only if none of its descendants was hit, and
// only if the point lies in its Self box. Nodes without a matching strategy
// are never hit directly.
func (e *Engine) Pick(x, y float64) (ecs.Entity, bool) {
	e.Update()

	e.traversing++
	defer func() { e.traversing-- }()

	hit := e.pickChildren(e.tree.Root(), x, y)
	return hit, hit != ecs.Nil
}

func (e *Engine) pickChildren(n *tree.Node, x, y float64) ecs.Entity {
	children := n.Children()
	for i := len(children) - 1; i >= 0; i-- {
		if hit := e.pickNode(children[i], x, y); hit != ecs.Nil {
			return hit
		}
	}
	return ecs.Nil
}

func (e *Engine) pickNode(n *tree.Node, x, y float64) ecs.Entity {
	id := n.Entity()
	bb := e.boundsOf(id)
	if bb == nil || !bb.Total.Contains(x, y) {
		return ecs.Nil
	}
	if hit := e.pickChildren(n, x, y); hit != ecs.Nil {
		return hit
	}
	if !bb.Self.Contains(x, y) {
		return ecs.Nil
	}
	if s := e.strategyFor(id); s != nil && s.Hit(id, x, y) {
		return id
	}
	return ecs.Nil
}

// PickAll returns every entity whose shape contains (x, y), topmost first.
// It uses the same pruning and ordering as Pick but does not stop at the
// first hit.
func (e *Engine) PickAll(x, y float64) []ecs.Entity {
	e.Update()

	e.traversing++
	defer func() { e.traversing-- }()

	return e.pickAllChildren(nil, e.tree.Root(), x, y)
}

func (e *Engine) pickAllChildren(out []ecs.Entity, n *tree.Node, x, y float64) []ecs.Entity {
	children := n.Children()
	for i := len(children) - 1; i >= 0; i-- {
		c := children[i]
		id := c.Entity()
		bb := e.boundsOf(id)
		if bb == nil || !bb.Total.Contains(x, y) {
			continue
		}
		out = e.pickAllChildren(out, c, x, y)
		if bb.Self.Contains(x, y) {
			if s := e.strategyFor(id); s != nil && s.Hit(id, x, y) {
				out = append(out, id)
			}
		}
	}
	return out
}
