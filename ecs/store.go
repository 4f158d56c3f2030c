package ecs

import "fmt"

const defaultEntityCap = 256

// Store owns entities, their components and the archetype index over them.
type Store struct {
	kinds      *Kinds
	reg        registry
	owners     map[any]Entity // component instance -> owning entity
	archetypes map[mask]*archetype
	archOrder  []*archetype // creation order, for stable snapshots
}

// NewStore creates an empty store validating components against kinds.
func NewStore(kinds *Kinds) *Store {
	return &Store{
		kinds:      kinds,
		reg:        newRegistry(defaultEntityCap),
		owners:     make(map[any]Entity, defaultEntityCap),
		archetypes: make(map[mask]*archetype, 16),
	}
}

// Kinds returns the registry this store validates against.
func (s *Store) Kinds() *Kinds {
	return s.kinds
}

// --- Entity registry ---

// Create issues a new live entity with no components.
func (s *Store) Create() Entity {
	return s.reg.create()
}

// Has reports whether e is live.
func (s *Store) Has(e Entity) bool {
	return s.reg.has(e)
}

// Remove detaches every component of e and marks it dead. The id is never
// issued again.
func (s *Store) Remove(e Entity) error {
	m := s.reg.meta(e)
	if m == nil {
		return fmt.Errorf("remove entity %d: %w", e, ErrUnknownEntity)
	}
	for _, c := range m.components {
		delete(s.owners, c)
	}
	if m.archetype != nil {
		s.detachRow(m)
	}
	s.reg.kill(e)
	return nil
}

// Len returns the number of live entities.
func (s *Store) Len() int {
	return s.reg.live
}

// Each calls fn for every live entity in ascending id order.
func (s *Store) Each(fn func(Entity)) {
	for i := 1; i < len(s.reg.metas); i++ {
		if s.reg.metas[i].alive {
			fn(Entity(i))
		}
	}
}

// --- Components ---

// AddComponent attaches c to e. c must be a pointer to a registered component
// type. If e already holds a component of the same kind it is replaced. If
// c's kind is a render kind, any other render component on e is detached
// first.
func (s *Store) AddComponent(e Entity, c any) error {
	m := s.reg.meta(e)
	if m == nil {
		return fmt.Errorf("add %T to entity %d: %w", c, e, ErrUnknownEntity)
	}
	k, ok := s.kinds.kindOfValue(c)
	if !ok {
		return fmt.Errorf("add %T to entity %d: %w", c, e, ErrUnregisteredKind)
	}
	if owner, owned := s.owners[c]; owned {
		if owner == e && m.components[k] == c {
			return nil
		}
		return fmt.Errorf("add %s to entity %d: instance already attached to entity %d: %w",
			s.kinds.Name(k), e, owner, ErrStructuralViolation)
	}

	if prev, ok := m.components[k]; ok {
		// Same kind: swap the instance in place, membership is unchanged.
		delete(s.owners, prev)
		m.components[k] = c
		s.owners[c] = e
		m.archetype.set(m.row, k, c)
		return nil
	}

	from := m.key
	key := from
	var evicted map[Kind]any
	if s.kinds.IsRender(k) {
		for _, other := range key.kinds() {
			if other != k && s.kinds.IsRender(other) {
				if evicted == nil {
					evicted = make(map[Kind]any, 1)
				}
				evicted[other] = m.components[other]
				delete(s.owners, m.components[other])
				delete(m.components, other)
				key = key.without(other)
			}
		}
	}

	if m.components == nil {
		m.components = make(map[Kind]any, 4)
	}
	m.components[k] = c
	s.owners[c] = e
	if err := s.migrate(e, m, key.with(k)); err != nil {
		delete(m.components, k)
		delete(s.owners, c)
		for ek, ec := range evicted {
			m.components[ek] = ec
			s.owners[ec] = e
		}
		if rerr := s.migrate(e, m, from); rerr != nil {
			return fmt.Errorf("%w (restore failed: %v)", err, rerr)
		}
		return err
	}
	return nil
}

// RemoveComponent detaches the component of kind k from e. It is a no-op if
// e holds no such component.
func (s *Store) RemoveComponent(e Entity, k Kind) error {
	m := s.reg.meta(e)
	if m == nil {
		return fmt.Errorf("remove %s from entity %d: %w", s.kinds.Name(k), e, ErrUnknownEntity)
	}
	if !s.kinds.Registered(k) {
		return fmt.Errorf("remove kind %d from entity %d: %w", k, e, ErrUnregisteredKind)
	}
	c, ok := m.components[k]
	if !ok {
		return nil
	}
	delete(m.components, k)
	delete(s.owners, c)
	return s.migrate(e, m, m.key.without(k))
}

// Component returns e's component of kind k.
func (s *Store) Component(e Entity, k Kind) (any, bool) {
	m := s.reg.meta(e)
	if m == nil {
		return nil, false
	}
	c, ok := m.components[k]
	return c, ok
}

// HasComponent reports whether e holds a component of kind k.
func (s *Store) HasComponent(e Entity, k Kind) bool {
	m := s.reg.meta(e)
	return m != nil && m.key.has(k)
}

// KindsOf returns the sorted kinds currently attached to e.
func (s *Store) KindsOf(e Entity) []Kind {
	m := s.reg.meta(e)
	if m == nil {
		return nil
	}
	return m.key.kinds()
}

// EntityByComponent returns the entity owning the component instance c.
func (s *Store) EntityByComponent(c any) (Entity, bool) {
	e, ok := s.owners[c]
	return e, ok
}

// EntitiesWith returns the entities whose kind set is exactly ks. The result
// is a copy and stays valid across later mutation.
func (s *Store) EntitiesWith(ks ...Kind) []Entity {
	a, ok := s.archetypes[makeMask(ks)]
	if !ok || a.len() == 0 {
		return nil
	}
	out := make([]Entity, a.len())
	copy(out, a.entities)
	return out
}

// --- Archetype index ---

// migrate moves e from its current archetype to the one keyed by to.
func (s *Store) migrate(e Entity, m *entityMeta, to mask) error {
	if to == m.key && m.archetype != nil {
		return nil
	}
	var dst *archetype
	if !to.empty() {
		dst = s.archetype(to)
		if err := dst.validate(m.components); err != nil {
			return err
		}
	}
	if m.archetype != nil {
		s.detachRow(m)
	}
	m.key = to
	if dst == nil {
		return nil
	}
	row, err := dst.insert(e, m.components)
	if err != nil {
		return err
	}
	m.archetype = dst
	m.row = row
	return nil
}

// detachRow removes m's row from its archetype and fixes the row of the
// entity swapped into its place.
func (s *Store) detachRow(m *entityMeta) {
	if moved := m.archetype.remove(m.row); moved != Nil {
		s.reg.metas[moved].row = m.row
	}
	m.archetype = nil
	m.row = -1
}

// archetype returns the archetype for key, creating it on first use.
func (s *Store) archetype(key mask) *archetype {
	if a, ok := s.archetypes[key]; ok {
		return a
	}
	a := newArchetype(s.kinds, key)
	s.archetypes[key] = a
	s.archOrder = append(s.archOrder, a)
	return a
}

// ArchetypeInfo is a snapshot of one archetype bucket.
type ArchetypeInfo struct {
	Kinds []Kind
	Len   int
}

// Archetypes returns a snapshot of every archetype created so far, in
// creation order. Empty buckets are included.
func (s *Store) Archetypes() []ArchetypeInfo {
	out := make([]ArchetypeInfo, len(s.archOrder))
	for i, a := range s.archOrder {
		out[i] = ArchetypeInfo{Kinds: append([]Kind(nil), a.kinds...), Len: a.len()}
	}
	return out
}

// --- Typed accessors ---

// Get returns e's component of type T.
func Get[T any](s *Store, e Entity) (*T, bool) {
	k, ok := KindOf[T](s.kinds)
	if !ok {
		return nil, false
	}
	c, ok := s.Component(e, k)
	if !ok {
		return nil, false
	}
	return c.(*T), true
}

// Add attaches c to e. It is AddComponent with a static type.
func Add[T any](s *Store, e Entity, c *T) error {
	return s.AddComponent(e, c)
}

// Column returns the entity column and the T column of the archetype whose
// kind set is exactly ks. Row i of both slices belongs together. The slices
// alias internal storage and are invalidated by any mutation of the store.
func Column[T any](s *Store, ks ...Kind) ([]Entity, []*T) {
	k, ok := KindOf[T](s.kinds)
	if !ok {
		return nil, nil
	}
	a, ok := s.archetypes[makeMask(ks)]
	if !ok {
		return nil, nil
	}
	slot := a.slot(k)
	if slot < 0 {
		return nil, nil
	}
	return a.entities, a.columns[slot].(*typedColumn[T]).data
}
