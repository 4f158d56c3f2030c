package ecs

// Entity is an opaque identifier for a thing in the scene. It carries no data
// of its own. Identifiers are issued from a monotonic counter and are never
// reused within a Store's lifetime, so a stale Entity can never alias a newer
// one.
type Entity uint32

// Nil is the zero Entity. It is never issued and stands for "no entity"
// (for example the parent of a top-level scene node).
const Nil Entity = 0

// entityMeta holds the liveness, component set and archetype location of one
// entity.
type entityMeta struct {
	components map[Kind]any
	key        mask       // kinds currently attached
	archetype  *archetype // nil while the entity has no components
	row        int        // row inside archetype; -1 when archetype is nil
	alive      bool
}

// registry issues entity ids and tracks liveness.
type registry struct {
	metas []entityMeta // indexed by Entity; metas[0] is the unused Nil slot
	live  int
}

func newRegistry(capacity int) registry {
	metas := make([]entityMeta, 1, capacity+1)
	metas[0] = entityMeta{row: -1}
	return registry{metas: metas}
}

// create allocates the next unused id.
func (r *registry) create() Entity {
	id := Entity(len(r.metas))
	r.metas = append(r.metas, entityMeta{row: -1, alive: true})
	r.live++
	return id
}

// has reports whether e is live. Never-issued ids report false.
func (r *registry) has(e Entity) bool {
	if e == Nil || int(e) >= len(r.metas) {
		return false
	}
	return r.metas[e].alive
}

// meta returns the metadata slot for a live entity, or nil.
func (r *registry) meta(e Entity) *entityMeta {
	if !r.has(e) {
		return nil
	}
	return &r.metas[e]
}

// kill marks e dead. The caller has already detached its components.
func (r *registry) kill(e Entity) {
	m := &r.metas[e]
	m.alive = false
	m.components = nil
	m.key = mask{}
	m.archetype = nil
	m.row = -1
	r.live--
}
