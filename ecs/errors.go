package ecs

import "errors"

var (
	// ErrUnknownEntity is returned when an operation names an entity that is
	// not live (never issued, or already removed).
	ErrUnknownEntity = errors.New("ecs: unknown entity")

	// ErrUnregisteredKind is returned when a component's type was never
	// registered on the store's Kinds registry.
	ErrUnregisteredKind = errors.New("ecs: unregistered component kind")

	// ErrStructuralViolation marks programming errors that would otherwise
	// corrupt structural state: a missing archetype column on insert, a
	// duplicate scene node, a parent that does not exist.
	ErrStructuralViolation = errors.New("ecs: structural violation")
)
