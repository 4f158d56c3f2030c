package arbor

import (
	"errors"

	"github.com/phanxgames/arbor/ecs"
)

// Errors returned by Engine operations. The ecs sentinels are re-exported so
// callers need only one import for errors.Is checks.
var (
	ErrUnknownEntity       = ecs.ErrUnknownEntity
	ErrUnregisteredKind    = ecs.ErrUnregisteredKind
	ErrStructuralViolation = ecs.ErrStructuralViolation

	// ErrReentrantMutation is returned when the scene is mutated from inside
	// a traversal, such as from a Strategy callback. Mutating the component
	// set or the tree while it is being walked is not supported.
	ErrReentrantMutation = errors.New("arbor: scene mutated during traversal")
)
