// Package ecs is the entity/component storage layer underneath arbor.
//
// A [Store] issues [Entity] identifiers, owns every component instance and
// groups entities into archetypes: one columnar bucket per exact set of
// component kinds. Component kinds are registered on an explicitly
// constructed [Kinds] registry, so several stores can coexist in one process:
//
//	kinds := ecs.NewKinds()
//	pos := ecs.Register[Position](kinds)
//	sprite := ecs.Register[Sprite](kinds, ecs.RenderKind())
//
//	store := ecs.NewStore(kinds)
//	e := store.Create()
//	_ = store.AddComponent(e, &Position{X: 10})
//	_ = store.AddComponent(e, &Sprite{})
//
//	for _, id := range store.EntitiesWith(pos, sprite) {
//		p, _ := ecs.Get[Position](store, id)
//		_ = p
//	}
//
// Components are always attached as pointers (*T). An entity holds at most one
// component whose kind was registered with [RenderKind]; attaching a second
// render component evicts the first.
//
// The store is not safe for concurrent use. Mutating an entity's component set
// relocates archetype rows, so callers must not hold column slices across
// AddComponent, RemoveComponent or Remove.
package ecs
