package ecs

import "fmt"

// archetype is the columnar bucket shared by every entity with exactly the
// same set of component kinds. columns[i] holds components of kinds[i], and
// row r of every column belongs to entities[r].
type archetype struct {
	key      mask
	kinds    []Kind // sorted ascending
	slots    [MaxKinds]int16
	entities []Entity
	columns  []column
}

func newArchetype(ks *Kinds, key mask) *archetype {
	a := &archetype{key: key, kinds: key.kinds()}
	for i := range a.slots {
		a.slots[i] = -1
	}
	a.columns = make([]column, len(a.kinds))
	for i, k := range a.kinds {
		a.slots[k] = int16(i)
		a.columns[i] = ks.infos[k].newColumn()
	}
	return a
}

// slot returns the column index of k, or -1 if k is not part of the key.
func (a *archetype) slot(k Kind) int {
	return int(a.slots[k])
}

// len returns the number of rows.
func (a *archetype) len() int {
	return len(a.entities)
}

// validate checks that comps supplies an instance for every column.
func (a *archetype) validate(comps map[Kind]any) error {
	for _, k := range a.kinds {
		if _, ok := comps[k]; !ok {
			return fmt.Errorf("archetype %v: no instance for kind %d: %w", a.kinds, k, ErrStructuralViolation)
		}
	}
	return nil
}

// insert appends one row for e, taking the instance for each column from
// comps. Returns the new row index.
func (a *archetype) insert(e Entity, comps map[Kind]any) (int, error) {
	if err := a.validate(comps); err != nil {
		return -1, err
	}
	row := len(a.entities)
	for i, k := range a.kinds {
		if !a.columns[i].push(comps[k]) {
			// A push can only fail on a type mismatch after other columns
			// already grew; roll them back to keep every column aligned.
			for j := 0; j < i; j++ {
				a.columns[j].swapRemove(row)
			}
			return -1, fmt.Errorf("archetype %v: instance %T does not match kind %d: %w", a.kinds, comps[k], k, ErrStructuralViolation)
		}
	}
	a.entities = append(a.entities, e)
	return row, nil
}

// remove deletes row by swapping the last row into its place in every column.
// It returns the entity that now occupies row, or Nil if row was the last.
func (a *archetype) remove(row int) Entity {
	last := len(a.entities) - 1
	for _, c := range a.columns {
		c.swapRemove(row)
	}
	moved := Nil
	if row != last {
		moved = a.entities[last]
		a.entities[row] = moved
	}
	a.entities[last] = Nil
	a.entities = a.entities[:last]
	return moved
}

// set replaces the instance of kind k at row without changing membership.
func (a *archetype) set(row int, k Kind, c any) bool {
	s := a.slot(k)
	if s < 0 {
		return false
	}
	return a.columns[s].set(row, c)
}
