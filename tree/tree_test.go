package tree

import (
	"errors"
	"math/rand"
	"slices"
	"testing"

	"github.com/phanxgames/arbor/ecs"
)

func mustAdd(t *testing.T, tr *Tree, e, parent ecs.Entity) {
	t.Helper()
	if err := tr.Add(e, parent); err != nil {
		t.Fatalf("Add(%d, %d): %v", e, parent, err)
	}
}

func entities(list []Entry) []ecs.Entity {
	out := make([]ecs.Entity, len(list))
	for i, en := range list {
		out[i] = en.Entity
	}
	return out
}

// --- Add ---

func TestAddBasic(t *testing.T) {
	tr := New()
	mustAdd(t, tr, 1, ecs.Nil)
	mustAdd(t, tr, 2, 1)

	n, ok := tr.Get(2)
	if !ok {
		t.Fatal("node 2 should exist")
	}
	if n.Parent() != 1 {
		t.Errorf("Parent = %d, want 1", n.Parent())
	}
	p, _ := tr.Get(1)
	if p.NumChildren() != 1 || p.ChildAt(0) != n {
		t.Error("node 1 should have node 2 as only child")
	}
	if tr.Len() != 2 {
		t.Errorf("Len = %d, want 2", tr.Len())
	}
	if !tr.Has(ecs.Nil) {
		t.Error("root should always be present")
	}
}

func TestAddErrors(t *testing.T) {
	tr := New()
	mustAdd(t, tr, 1, ecs.Nil)

	if err := tr.Add(1, ecs.Nil); !errors.Is(err, ecs.ErrStructuralViolation) {
		t.Errorf("duplicate add: err = %v", err)
	}
	if err := tr.Add(2, 99); !errors.Is(err, ecs.ErrStructuralViolation) {
		t.Errorf("missing parent: err = %v", err)
	}
	if err := tr.Add(ecs.Nil, 1); !errors.Is(err, ecs.ErrStructuralViolation) {
		t.Errorf("nil entity: err = %v", err)
	}
}

// --- SetParent ---

func TestSetParent(t *testing.T) {
	tr := New()
	mustAdd(t, tr, 1, ecs.Nil)
	mustAdd(t, tr, 2, ecs.Nil)
	mustAdd(t, tr, 3, 1)

	if err := tr.SetParent(2, 3); err != nil {
		t.Fatal(err)
	}
	p1, _ := tr.Get(1)
	p2, _ := tr.Get(2)
	n3, _ := tr.Get(3)
	if p1.NumChildren() != 0 {
		t.Error("old parent should lose the child")
	}
	if p2.NumChildren() != 1 || n3.Parent() != 2 {
		t.Error("new parent should own the child")
	}
}

func TestSetParentErrors(t *testing.T) {
	tr := New()
	mustAdd(t, tr, 1, ecs.Nil)
	mustAdd(t, tr, 2, 1)

	if err := tr.SetParent(1, 9); !errors.Is(err, ecs.ErrStructuralViolation) {
		t.Errorf("missing child: err = %v", err)
	}
	if err := tr.SetParent(9, 2); !errors.Is(err, ecs.ErrStructuralViolation) {
		t.Errorf("missing parent: err = %v", err)
	}
	if err := tr.SetParent(2, 1); !errors.Is(err, ecs.ErrStructuralViolation) {
		t.Errorf("cycle: err = %v", err)
	}
	if err := tr.SetParent(1, 1); !errors.Is(err, ecs.ErrStructuralViolation) {
		t.Errorf("self parent: err = %v", err)
	}
}

func TestSetParentSameParentMovesToEnd(t *testing.T) {
	tr := New()
	mustAdd(t, tr, 1, ecs.Nil)
	mustAdd(t, tr, 2, ecs.Nil)
	if err := tr.SetParent(ecs.Nil, 1); err != nil {
		t.Fatal(err)
	}
	got := entities(tr.BuildDisplayList())
	if !slices.Equal(got, []ecs.Entity{2, 1}) {
		t.Errorf("order = %v, want [2 1]", got)
	}
}

// --- SetChildIndex ---

func TestSetChildIndex(t *testing.T) {
	tr := New()
	for e := ecs.Entity(1); e <= 4; e++ {
		mustAdd(t, tr, e, ecs.Nil)
	}
	if err := tr.SetChildIndex(4, 0); err != nil {
		t.Fatal(err)
	}
	if got := entities(tr.BuildDisplayList()); !slices.Equal(got, []ecs.Entity{4, 1, 2, 3}) {
		t.Errorf("after move to front = %v", got)
	}
	if err := tr.SetChildIndex(4, 3); err != nil {
		t.Fatal(err)
	}
	if got := entities(tr.BuildDisplayList()); !slices.Equal(got, []ecs.Entity{1, 2, 3, 4}) {
		t.Errorf("after move to back = %v", got)
	}
	if err := tr.SetChildIndex(1, 4); !errors.Is(err, ecs.ErrStructuralViolation) {
		t.Errorf("out of range: err = %v", err)
	}
}

// --- Remove ---

func TestRemoveSubtree(t *testing.T) {
	tr := New()
	mustAdd(t, tr, 1, ecs.Nil)
	mustAdd(t, tr, 2, 1)
	mustAdd(t, tr, 3, 2)
	mustAdd(t, tr, 4, 1)
	mustAdd(t, tr, 5, ecs.Nil)

	removed, err := tr.Remove(1)
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(removed, []ecs.Entity{1, 2, 3, 4}) {
		t.Errorf("removed = %v, want pre-order [1 2 3 4]", removed)
	}
	for _, e := range removed {
		if tr.Has(e) {
			t.Errorf("entity %d should be gone", e)
		}
	}
	if tr.Len() != 1 || tr.Root().NumChildren() != 1 {
		t.Error("only node 5 should remain")
	}
	if _, err := tr.Remove(1); !errors.Is(err, ecs.ErrStructuralViolation) {
		t.Errorf("second remove: err = %v", err)
	}
	if _, err := tr.Remove(ecs.Nil); !errors.Is(err, ecs.ErrStructuralViolation) {
		t.Errorf("remove root: err = %v", err)
	}
}

// --- Traversal ---

func TestDescendantsPreOrder(t *testing.T) {
	tr := New()
	mustAdd(t, tr, 1, ecs.Nil)
	mustAdd(t, tr, 2, 1)
	mustAdd(t, tr, 3, 2)
	mustAdd(t, tr, 4, 1)

	if got := tr.Descendants(1); !slices.Equal(got, []ecs.Entity{2, 3, 4}) {
		t.Errorf("Descendants(1) = %v", got)
	}
	if got := tr.Descendants(3); len(got) != 0 {
		t.Errorf("leaf descendants = %v", got)
	}
	if got := tr.Descendants(42); got != nil {
		t.Errorf("missing node descendants = %v", got)
	}
}

func TestDepth(t *testing.T) {
	tr := New()
	mustAdd(t, tr, 1, ecs.Nil)
	mustAdd(t, tr, 2, 1)
	if d := tr.Depth(2); d != 2 {
		t.Errorf("Depth(2) = %d, want 2", d)
	}
	if d := tr.Depth(ecs.Nil); d != 0 {
		t.Errorf("Depth(root) = %d, want 0", d)
	}
	if d := tr.Depth(9); d != -1 {
		t.Errorf("Depth(missing) = %d, want -1", d)
	}
}

func TestBuildDisplayListParents(t *testing.T) {
	tr := New()
	mustAdd(t, tr, 1, ecs.Nil)
	mustAdd(t, tr, 2, 1)
	mustAdd(t, tr, 3, ecs.Nil)

	want := []Entry{{1, ecs.Nil}, {2, 1}, {3, ecs.Nil}}
	if got := tr.BuildDisplayList(); !slices.Equal(got, want) {
		t.Errorf("BuildDisplayList = %v, want %v", got, want)
	}
}

func TestDisplayListCache(t *testing.T) {
	tr := New()
	mustAdd(t, tr, 1, ecs.Nil)
	first := tr.DisplayList()
	v := tr.Version()
	second := tr.DisplayList()
	if &first[0] != &second[0] {
		t.Error("unchanged topology should reuse the cached list")
	}
	mustAdd(t, tr, 2, 1)
	if tr.Version() == v {
		t.Error("Add should bump the version")
	}
	if got := entities(tr.DisplayList()); !slices.Equal(got, []ecs.Entity{1, 2}) {
		t.Errorf("rebuilt list = %v", got)
	}
}

// Every parent's index precedes the index of each of its descendants, for
// randomly built and reshaped trees.
func TestDisplayListOrderingRandom(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for trial := 0; trial < 50; trial++ {
		tr := New()
		ids := []ecs.Entity{ecs.Nil}
		for e := ecs.Entity(1); e <= 40; e++ {
			mustAdd(t, tr, e, ids[rng.Intn(len(ids))])
			ids = append(ids, e)
		}
		for i := 0; i < 20; i++ {
			child := ids[1+rng.Intn(len(ids)-1)]
			parent := ids[rng.Intn(len(ids))]
			_ = tr.SetParent(parent, child) // cycles are rejected, which is fine here
		}

		list := tr.BuildDisplayList()
		if len(list) != tr.Len() {
			t.Fatalf("list length %d, want %d", len(list), tr.Len())
		}
		index := make(map[ecs.Entity]int, len(list))
		for i, en := range list {
			index[en.Entity] = i
		}
		for _, en := range list {
			for _, d := range tr.Descendants(en.Entity) {
				if index[d] <= index[en.Entity] {
					t.Fatalf("trial %d: descendant %d at %d precedes ancestor %d at %d",
						trial, d, index[d], en.Entity, index[en.Entity])
				}
			}
			n, _ := tr.Get(en.Entity)
			if n.Parent() != en.Parent {
				t.Fatalf("entry parent %d, node parent %d", en.Parent, n.Parent())
			}
		}
	}
}
