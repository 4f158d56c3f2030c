// Package tree is the scene hierarchy over entity identifiers.
//
// A [Tree] has one synthetic root and one [Node] per entity. Children lists
// are the owning edges; a node's parent is a non-owning entity handle resolved
// through the tree's node table. The tree holds no component data.
//
// [Tree.BuildDisplayList] linearizes the hierarchy parent-before-children,
// which is the order transforms are propagated in. Walking the same list
// backwards visits every child before its parent.
package tree

import (
	"fmt"

	"github.com/phanxgames/arbor/ecs"
)

// Node is one scene node. The zero Entity is reserved for the root.
type Node struct {
	entity   ecs.Entity
	parent   ecs.Entity
	children []*Node
}

// Entity returns the entity this node wraps.
func (n *Node) Entity() ecs.Entity {
	return n.entity
}

// Parent returns the parent entity, or ecs.Nil for top-level nodes and the root.
func (n *Node) Parent() ecs.Entity {
	return n.parent
}

// IsRoot reports whether n is the synthetic root.
func (n *Node) IsRoot() bool {
	return n.entity == ecs.Nil
}

// Children returns the child list. The returned slice MUST NOT be mutated by the caller.
func (n *Node) Children() []*Node {
	return n.children
}

// NumChildren returns the number of children.
func (n *Node) NumChildren() int {
	return len(n.children)
}

// ChildAt returns the child at the given index.
func (n *Node) ChildAt(index int) *Node {
	return n.children[index]
}

// Entry is one display-list element. Parent is ecs.Nil for top-level nodes.
type Entry struct {
	Entity ecs.Entity
	Parent ecs.Entity
}

// Tree is a rooted hierarchy of scene nodes.
type Tree struct {
	root    *Node
	nodes   map[ecs.Entity]*Node
	version uint64

	list        []Entry
	listVersion uint64
}

// New creates a tree containing only the root.
func New() *Tree {
	root := &Node{}
	return &Tree{
		root:        root,
		nodes:       map[ecs.Entity]*Node{ecs.Nil: root},
		version:     1,
		listVersion: 0,
	}
}

// Root returns the synthetic root node.
func (t *Tree) Root() *Node {
	return t.root
}

// Len returns the number of nodes, excluding the root.
func (t *Tree) Len() int {
	return len(t.nodes) - 1
}

// Version is bumped on every topology change.
func (t *Tree) Version() uint64 {
	return t.version
}

// Has reports whether e has a node. The root entity ecs.Nil always reports true.
func (t *Tree) Has(e ecs.Entity) bool {
	_, ok := t.nodes[e]
	return ok
}

// Get returns the node for e.
func (t *Tree) Get(e ecs.Entity) (*Node, bool) {
	n, ok := t.nodes[e]
	return n, ok
}

// Add creates a node for e as the last child of parent. Pass ecs.Nil as parent
// to attach to the root.
func (t *Tree) Add(e, parent ecs.Entity) error {
	if e == ecs.Nil {
		return fmt.Errorf("tree: add: the nil entity is reserved for the root: %w", ecs.ErrStructuralViolation)
	}
	if _, dup := t.nodes[e]; dup {
		return fmt.Errorf("tree: add: entity %d already has a node: %w", e, ecs.ErrStructuralViolation)
	}
	p, ok := t.nodes[parent]
	if !ok {
		return fmt.Errorf("tree: add %d: parent %d not in tree: %w", e, parent, ecs.ErrStructuralViolation)
	}
	n := &Node{entity: e, parent: parent}
	p.children = append(p.children, n)
	t.nodes[e] = n
	t.version++
	return nil
}

// SetParent moves child, with its subtree, to the end of parent's children.
// Both must be in the tree, and parent must not be inside child's subtree.
func (t *Tree) SetParent(parent, child ecs.Entity) error {
	c, ok := t.nodes[child]
	if !ok || c.IsRoot() {
		return fmt.Errorf("tree: set parent of %d: child not in tree: %w", child, ecs.ErrStructuralViolation)
	}
	p, ok := t.nodes[parent]
	if !ok {
		return fmt.Errorf("tree: set parent of %d: parent %d not in tree: %w", child, parent, ecs.ErrStructuralViolation)
	}
	if t.isAncestor(child, parent) {
		return fmt.Errorf("tree: set parent of %d to %d would create a cycle: %w", child, parent, ecs.ErrStructuralViolation)
	}
	t.nodes[c.parent].removeChild(c)
	c.parent = parent
	p.children = append(p.children, c)
	t.version++
	return nil
}

// SetChildIndex moves e to position index among its siblings. Later siblings
// paint above earlier ones.
func (t *Tree) SetChildIndex(e ecs.Entity, index int) error {
	n, ok := t.nodes[e]
	if !ok || n.IsRoot() {
		return fmt.Errorf("tree: set child index of %d: not in tree: %w", e, ecs.ErrStructuralViolation)
	}
	p := t.nodes[n.parent]
	nc := len(p.children)
	if index < 0 || index >= nc {
		return fmt.Errorf("tree: set child index of %d: index %d out of range [0,%d): %w", e, index, nc, ecs.ErrStructuralViolation)
	}
	old := p.indexOf(n)
	if old == index {
		return nil
	}
	// Shift elements to fill the gap and open the target slot.
	if old < index {
		copy(p.children[old:], p.children[old+1:index+1])
	} else {
		copy(p.children[index+1:], p.children[index:old])
	}
	p.children[index] = n
	t.version++
	return nil
}

// Remove detaches e and its whole subtree from the tree and returns the
// removed entities in pre-order (e first). Components and entities are not
// touched; that is the caller's job.
func (t *Tree) Remove(e ecs.Entity) ([]ecs.Entity, error) {
	n, ok := t.nodes[e]
	if !ok || n.IsRoot() {
		return nil, fmt.Errorf("tree: remove %d: not in tree: %w", e, ecs.ErrStructuralViolation)
	}
	t.nodes[n.parent].removeChild(n)
	removed := appendPreOrder(nil, n)
	for _, id := range removed {
		delete(t.nodes, id)
	}
	t.version++
	return removed, nil
}

// Descendants returns every node below e in depth-first pre-order, excluding e.
func (t *Tree) Descendants(e ecs.Entity) []ecs.Entity {
	n, ok := t.nodes[e]
	if !ok {
		return nil
	}
	var out []ecs.Entity
	for _, c := range n.children {
		out = appendPreOrder(out, c)
	}
	return out
}

// Depth returns the number of edges between e and the root. Top-level nodes
// have depth 1. Returns -1 if e is not in the tree.
func (t *Tree) Depth(e ecs.Entity) int {
	n, ok := t.nodes[e]
	if !ok {
		return -1
	}
	depth := 0
	for !n.IsRoot() {
		depth++
		n = t.nodes[n.parent]
	}
	return depth
}

// BuildDisplayList walks the tree in pre-order from the root and returns a
// fresh list in which every parent precedes all of its descendants. The root
// itself is not part of the list.
func (t *Tree) BuildDisplayList() []Entry {
	out := make([]Entry, 0, t.Len())
	return t.appendEntries(out, t.root)
}

// DisplayList returns the cached display list, rebuilding it only if the
// topology changed since the last call. The result MUST NOT be mutated and is
// invalidated by the next topology change.
func (t *Tree) DisplayList() []Entry {
	if t.listVersion != t.version {
		t.list = t.appendEntries(t.list[:0], t.root)
		t.listVersion = t.version
	}
	return t.list
}

func (t *Tree) appendEntries(out []Entry, n *Node) []Entry {
	for _, c := range n.children {
		out = append(out, Entry{Entity: c.entity, Parent: n.entity})
		out = t.appendEntries(out, c)
	}
	return out
}

// isAncestor reports whether candidate is e or one of e's ancestors.
func (t *Tree) isAncestor(candidate, e ecs.Entity) bool {
	for n, ok := t.nodes[e]; ok; n, ok = t.nodes[n.parent] {
		if n.entity == candidate {
			return true
		}
		if n.IsRoot() {
			return false
		}
	}
	return false
}

// --- Helpers ---

func appendPreOrder(out []ecs.Entity, n *Node) []ecs.Entity {
	out = append(out, n.entity)
	for _, c := range n.children {
		out = appendPreOrder(out, c)
	}
	return out
}

func (n *Node) indexOf(child *Node) int {
	for i, c := range n.children {
		if c == child {
			return i
		}
	}
	return -1
}

// removeChild removes child from n.children without touching child.parent.
// Uses copy+nil to avoid retaining a dangling pointer in the backing array.
func (n *Node) removeChild(child *Node) {
	if i := n.indexOf(child); i >= 0 {
		copy(n.children[i:], n.children[i+1:])
		n.children[len(n.children)-1] = nil
		n.children = n.children[:len(n.children)-1]
	}
}
