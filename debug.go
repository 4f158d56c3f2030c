package arbor

import (
	"time"

	"go.uber.org/zap"

	"github.com/phanxgames/arbor/ecs"
)

// frameStats holds per-update pass metrics.
// Only populated when debug mode is on.
type frameStats struct {
	nodes         int
	transformed   int
	bounded       int
	transformTime time.Duration
	boundsTime    time.Duration
}

// SetDebugMode enables per-update pass timing and tree shape warnings, logged
// through the engine's logger at debug and warn level.
func (e *Engine) SetDebugMode(on bool) {
	e.debug = on
}

// DebugMode reports whether debug mode is on.
func (e *Engine) DebugMode() bool {
	return e.debug
}

// debugLog writes one line of pass stats.
func (e *Engine) debugLog(stats frameStats) {
	if !e.debug {
		return
	}
	e.log.Debug("update",
		zap.Uint64("frame", e.frame),
		zap.Int("nodes", stats.nodes),
		zap.Int("transformed", stats.transformed),
		zap.Int("bounded", stats.bounded),
		zap.Duration("transform", stats.transformTime),
		zap.Duration("bounds", stats.boundsTime),
		zap.Duration("total", stats.transformTime+stats.boundsTime),
	)
}

const (
	debugMaxTreeDepth  = 32
	debugMaxChildCount = 1000
)

// debugCheckTree warns when id sits unusually deep or parent has an unusually
// large number of children.
func (e *Engine) debugCheckTree(id, parent ecs.Entity) {
	if depth := e.tree.Depth(id); depth > debugMaxTreeDepth {
		e.log.Warn("tree depth exceeds threshold",
			entityField(id), zap.Int("depth", depth), zap.Int("threshold", debugMaxTreeDepth))
	}
	n, ok := e.tree.Get(parent)
	if !ok {
		n = e.tree.Root()
	}
	if n.NumChildren() > debugMaxChildCount {
		e.log.Warn("child count exceeds threshold",
			entityField(parent), zap.Int("children", n.NumChildren()), zap.Int("threshold", debugMaxChildCount))
	}
}

func entityField(id ecs.Entity) zap.Field {
	return zap.Uint32("entity", uint32(id))
}

func errField(err error) zap.Field {
	return zap.Error(err)
}
