package arbor

import (
	"go.uber.org/zap"

	"github.com/phanxgames/arbor/ecs"
)

// Option configures an Engine at construction.
type Option func(*options)

type options struct {
	logger        *zap.Logger
	sink          EventSink
	kinds         *ecs.Kinds
	debug         bool
	builtinShapes bool
}

// WithLogger sets the engine's logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithEventSink sets the bridge that receives every dispatched interaction
// event.
func WithEventSink(s EventSink) Option {
	return func(o *options) { o.sink = s }
}

// WithKinds makes the engine register its built-in kinds on an existing
// registry instead of a fresh one.
func WithKinds(k *ecs.Kinds) Option {
	return func(o *options) { o.kinds = k }
}

// WithDebug turns on debug mode from the start.
func WithDebug() Option {
	return func(o *options) { o.debug = true }
}

// WithoutBuiltinShapes skips registering the rect, circle and polygon
// strategies. The shape kinds are still registered.
func WithoutBuiltinShapes() Option {
	return func(o *options) { o.builtinShapes = false }
}
