package ecs

// column is one component array of an archetype. Each registered kind
// supplies its own typed implementation so storage stays homogeneous per kind;
// the any-typed methods are only used at the store boundary.
type column interface {
	push(c any) bool
	set(row int, c any) bool
	at(row int) any
	swapRemove(row int)
	len() int
}

// typedColumn stores component pointers of a single kind.
type typedColumn[T any] struct {
	data []*T
}

func (c *typedColumn[T]) push(v any) bool {
	p, ok := v.(*T)
	if !ok {
		return false
	}
	c.data = append(c.data, p)
	return true
}

func (c *typedColumn[T]) set(row int, v any) bool {
	p, ok := v.(*T)
	if !ok {
		return false
	}
	c.data[row] = p
	return true
}

func (c *typedColumn[T]) at(row int) any {
	return c.data[row]
}

// swapRemove moves the last element into row and shrinks by one. The vacated
// tail slot is cleared so the backing array does not retain the pointer.
func (c *typedColumn[T]) swapRemove(row int) {
	last := len(c.data) - 1
	c.data[row] = c.data[last]
	c.data[last] = nil
	c.data = c.data[:last]
}

func (c *typedColumn[T]) len() int {
	return len(c.data)
}
