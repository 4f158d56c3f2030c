package arbor

import "github.com/phanxgames/arbor/ecs"

// Strategy is a pluggable per-shape implementation of bounds computation and
// hit testing. The engine tries strategies in registration order and uses the
// first whose Match returns true; later strategies are never consulted for
// that entity.
//
// ComputeAABB returns the entity's own world-space box. Hit receives a
// world-space point already known to lie inside that box.
//
// Strategies run while the engine is traversing the scene and must not
// mutate it (see ErrReentrantMutation).
type Strategy interface {
	Match(id ecs.Entity) bool
	ComputeAABB(id ecs.Entity) Rect
	Hit(id ecs.Entity, x, y float64) bool
}

// StrategyFuncs adapts plain functions to the Strategy interface. A nil
// AABBFunc yields the empty box; a nil HitFunc never hits.
type StrategyFuncs struct {
	MatchFunc func(id ecs.Entity) bool
	AABBFunc  func(id ecs.Entity) Rect
	HitFunc   func(id ecs.Entity, x, y float64) bool
}

// Match implements Strategy.
func (s StrategyFuncs) Match(id ecs.Entity) bool {
	return s.MatchFunc != nil && s.MatchFunc(id)
}

// ComputeAABB implements Strategy.
func (s StrategyFuncs) ComputeAABB(id ecs.Entity) Rect {
	if s.AABBFunc == nil {
		return EmptyRect()
	}
	return s.AABBFunc(id)
}

// Hit implements Strategy.
func (s StrategyFuncs) Hit(id ecs.Entity, x, y float64) bool {
	return s.HitFunc != nil && s.HitFunc(id, x, y)
}

// RegisterStrategy appends s to the strategy list. Registration order is
// match order.
func (e *Engine) RegisterStrategy(s Strategy) {
	e.strategies = append(e.strategies, s)
}

// Strategies returns the registered strategies in match order. The returned
// slice MUST NOT be mutated.
func (e *Engine) Strategies() []Strategy {
	return e.strategies
}

// strategyFor returns the first strategy matching id, or nil.
func (e *Engine) strategyFor(id ecs.Entity) Strategy {
	for _, s := range e.strategies {
		if s.Match(id) {
			return s
		}
	}
	return nil
}
