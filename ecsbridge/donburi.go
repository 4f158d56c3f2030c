// Package ecsbridge connects an arbor engine to a donburi world: interaction
// events are published as donburi events, and scene entities can be mirrored
// as donburi entities whose world position is kept in sync.
package ecsbridge

import (
	"fmt"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
	"github.com/yohamta/donburi/filter"

	"github.com/phanxgames/arbor"
	"github.com/phanxgames/arbor/ecs"
)

// InteractionEventType is the donburi event type for arbor interaction events.
// Subscribe to it in your systems to receive pointer, click and drag events.
var InteractionEventType = events.NewEventType[arbor.InteractionEvent]()

type donburiSink struct {
	world donburi.World
}

// NewEventSink creates an EventSink backed by a donburi world.
// Interaction events are published to InteractionEventType and can be
// consumed with events.Subscribe and ProcessEvents.
func NewEventSink(world donburi.World) arbor.EventSink {
	return &donburiSink{world: world}
}

func (s *donburiSink) EmitEvent(event arbor.InteractionEvent) {
	InteractionEventType.Publish(s.world, event)
}

// --- Mirroring ---

// SceneEntity links a donburi entity to its arbor entity.
type SceneEntity struct {
	ID ecs.Entity
}

// WorldPosition is the world-space origin of the linked arbor entity as of
// the last Mirror.Sync.
type WorldPosition struct {
	X, Y float64
}

var (
	SceneEntityComponent   = donburi.NewComponentType[SceneEntity]()
	WorldPositionComponent = donburi.NewComponentType[WorldPosition]()
)

// Mirror keeps one donburi entity per linked arbor entity.
type Mirror struct {
	world donburi.World
	eng   *arbor.Engine
	links map[ecs.Entity]donburi.Entity
}

// NewMirror creates a mirror between eng and world.
func NewMirror(world donburi.World, eng *arbor.Engine) *Mirror {
	return &Mirror{
		world: world,
		eng:   eng,
		links: make(map[ecs.Entity]donburi.Entity),
	}
}

// Link creates the donburi counterpart of id, or returns the existing one.
func (m *Mirror) Link(id ecs.Entity) (donburi.Entity, error) {
	if d, ok := m.links[id]; ok {
		return d, nil
	}
	if !m.eng.HasEntity(id) {
		return donburi.Null, fmt.Errorf("link entity %d: %w", id, arbor.ErrUnknownEntity)
	}
	d := m.world.Create(SceneEntityComponent, WorldPositionComponent)
	SceneEntityComponent.SetValue(m.world.Entry(d), SceneEntity{ID: id})
	m.links[id] = d
	return d, nil
}

// Lookup returns the donburi entity linked to id.
func (m *Mirror) Lookup(id ecs.Entity) (donburi.Entity, bool) {
	d, ok := m.links[id]
	return d, ok
}

// Unlink removes the donburi counterpart of id.
func (m *Mirror) Unlink(id ecs.Entity) {
	d, ok := m.links[id]
	if !ok {
		return
	}
	if m.world.Valid(d) {
		m.world.Remove(d)
	}
	delete(m.links, id)
}

// Len returns the number of linked entities.
func (m *Mirror) Len() int {
	return len(m.links)
}

// Sync copies world positions from the engine into the donburi world and
// unlinks entities that no longer exist on the arbor side. Call it after the
// engine's update. Returns the number of entities synced.
func (m *Mirror) Sync() int {
	var stale []ecs.Entity
	synced := 0
	donburi.NewQuery(filter.Contains(SceneEntityComponent, WorldPositionComponent)).Each(m.world, func(entry *donburi.Entry) {
		id := SceneEntityComponent.Get(entry).ID
		if _, linked := m.links[id]; !linked {
			return
		}
		if !m.eng.HasEntity(id) {
			stale = append(stale, id)
			return
		}
		x, y := m.eng.LocalToWorld(id, 0, 0)
		WorldPositionComponent.SetValue(entry, WorldPosition{X: x, Y: y})
		synced++
	})
	for _, id := range stale {
		m.Unlink(id)
	}
	return synced
}
