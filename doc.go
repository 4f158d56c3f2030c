// Package arbor is a retained-mode 2D scene-graph engine built on an
// entity-component store.
//
// Entities are plain ids issued by an [Engine]. Data lives in components held
// by the store in package ecs; structure lives in the scene tree in package
// tree. The engine ties the two together and runs three processes over them:
//
//   - the transform pass, which turns each entity's [Transform] into a world
//     matrix, parents before children;
//   - the bounds pass, which maintains each entity's [BoundingBox] (its own
//     box, its children's union and the total), children before parents;
//   - picking, which finds the topmost entity under a point.
//
// # Quick start
//
//	eng := arbor.New()
//	id, tf, _ := eng.Spawn(ecs.Nil)
//	tf.SetPosition(100, 50)
//	_ = eng.AddComponent(id, &arbor.RectShape{Width: 40, Height: 20})
//
//	eng.Update()
//	hit, ok := eng.Pick(110, 60) // hit == id
//
// # Components
//
// Any pointer type can be a component once registered on the engine's
// registry with [ecs.Register]. Kinds registered with [ecs.RenderKind] are
// mutually exclusive: attaching one evicts any other render kind on the same
// entity. The built-in [RectShape], [CircleShape] and [PolygonShape] are
// render kinds.
//
// # Shapes and strategies
//
// How an entity is bounded and hit-tested is decided by the first registered
// [Strategy] whose Match accepts it. The built-in shapes come with their own
// strategies; use [Engine.RegisterStrategy] or [StrategyFuncs] for custom
// geometry.
//
// # Dirty tracking
//
// Transform setters mark the transform dirty. Editing a shape in place needs
// an explicit [Engine.MarkBoundsDirty]. Topology changes made through the
// engine invalidate what they must on their own. Mutating the scene from
// inside a traversal (for example from a Strategy) returns
// [ErrReentrantMutation].
//
// # Input
//
// [Engine.ProcessPointer] runs a pointer state machine on top of Pick and
// dispatches click, drag and hover events to [Listeners] components, bubbling
// from the target to the root. An optional [EventSink] receives every event;
// package ecsbridge forwards them into a donburi world.
//
// # Rendering
//
// The engine does not draw. Package driver runs an engine inside an Ebitengine
// window, draws the built-in shapes and feeds mouse input back in.
package arbor
