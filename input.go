package arbor

import (
	"math"

	"github.com/phanxgames/arbor/ecs"
)

// --- Constants ---

const (
	// MaxPointers is the number of pointer slots: 0 = mouse, 1-9 = touch.
	MaxPointers         = 10
	defaultDragDeadZone = 4.0 // pixels
)

// EventType identifies a kind of interaction event.
type EventType uint8

const (
	EventPointerDown  EventType = iota // fires when a pointer button is pressed
	EventPointerUp                     // fires when a pointer button is released
	EventPointerMove                   // fires when the pointer moves (hover, no button)
	EventClick                         // fires on press then release over the same entity
	EventDragStart                     // fires when movement exceeds the drag dead zone
	EventDrag                          // fires each frame while dragging
	EventDragEnd                       // fires when the pointer is released after dragging
	EventPointerEnter                  // fires when the pointer enters an entity's shape
	EventPointerLeave                  // fires when the pointer leaves an entity's shape
)

var eventTypeNames = [...]string{
	EventPointerDown:  "pointer_down",
	EventPointerUp:    "pointer_up",
	EventPointerMove:  "pointer_move",
	EventClick:        "click",
	EventDragStart:    "drag_start",
	EventDrag:         "drag",
	EventDragEnd:      "drag_end",
	EventPointerEnter: "pointer_enter",
	EventPointerLeave: "pointer_leave",
}

func (t EventType) String() string {
	if int(t) < len(eventTypeNames) {
		return eventTypeNames[t]
	}
	return "unknown"
}

// MouseButton identifies a mouse button.
type MouseButton uint8

const (
	MouseButtonLeft   MouseButton = iota // primary (left) mouse button
	MouseButtonRight                     // secondary (right) mouse button
	MouseButtonMiddle                    // middle mouse button (scroll wheel click)
)

// KeyModifiers is a bitmask of keyboard modifier keys.
// Values can be combined with bitwise OR (e.g. ModShift | ModCtrl).
type KeyModifiers uint8

const (
	ModShift KeyModifiers = 1 << iota // Shift key
	ModCtrl                           // Control key
	ModAlt                            // Alt / Option key
	ModMeta                           // Meta / Command / Windows key
)

// PointerContext carries pointer event data to listeners.
type PointerContext struct {
	Type EventType
	// Target is the entity the event was aimed at; Entity is the entity whose
	// listener is running. They differ while the event bubbles.
	Target    ecs.Entity
	Entity    ecs.Entity
	GlobalX   float64
	GlobalY   float64
	LocalX    float64
	LocalY    float64
	StartX    float64 // drag events only
	StartY    float64
	DeltaX    float64
	DeltaY    float64
	Button    MouseButton
	PointerID int
	Modifiers KeyModifiers

	stopped bool
}

// StopPropagation prevents ancestors from receiving this event.
func (c *PointerContext) StopPropagation() {
	c.stopped = true
}

// Listeners is the event component. Callbacks are nil by default; an event
// targeted at an entity bubbles from it to the root, calling each ancestor's
// matching callback until one stops propagation.
type Listeners struct {
	OnPointerDown  func(*PointerContext)
	OnPointerUp    func(*PointerContext)
	OnPointerMove  func(*PointerContext)
	OnClick        func(*PointerContext)
	OnDragStart    func(*PointerContext)
	OnDrag         func(*PointerContext)
	OnDragEnd      func(*PointerContext)
	OnPointerEnter func(*PointerContext)
	OnPointerLeave func(*PointerContext)
}

func (l *Listeners) handler(t EventType) func(*PointerContext) {
	switch t {
	case EventPointerDown:
		return l.OnPointerDown
	case EventPointerUp:
		return l.OnPointerUp
	case EventPointerMove:
		return l.OnPointerMove
	case EventClick:
		return l.OnClick
	case EventDragStart:
		return l.OnDragStart
	case EventDrag:
		return l.OnDrag
	case EventDragEnd:
		return l.OnDragEnd
	case EventPointerEnter:
		return l.OnPointerEnter
	case EventPointerLeave:
		return l.OnPointerLeave
	}
	return nil
}

// InteractionEvent is the flattened form of a dispatched event handed to an
// EventSink.
type InteractionEvent struct {
	Type      EventType
	Entity    ecs.Entity
	GlobalX   float64
	GlobalY   float64
	LocalX    float64
	LocalY    float64
	Button    MouseButton
	PointerID int
	Modifiers KeyModifiers
	// Drag fields (valid for EventDragStart, EventDrag, EventDragEnd)
	StartX float64
	StartY float64
	DeltaX float64
	DeltaY float64
}

// EventSink receives every dispatched interaction event. It is the bridge to
// an external ECS or event bus.
type EventSink interface {
	EmitEvent(event InteractionEvent)
}

// --- Per-pointer state ---

type pointerState struct {
	down      bool
	startX    float64
	startY    float64
	lastX     float64
	lastY     float64
	hitEntity ecs.Entity
	hover     ecs.Entity  // last entity the pointer was over (for enter/leave)
	dragging  bool
	button    MouseButton // button captured at press time
}

// --- Handler registry ---

type sceneHandler struct {
	id uint32
	fn func(*PointerContext)
}

type handlerRegistry struct {
	byType [len(eventTypeNames)][]sceneHandler
	nextID uint32
}

// CallbackHandle allows removing a registered engine-level callback.
type CallbackHandle struct {
	id    uint32
	reg   *handlerRegistry
	event EventType
}

// Remove unregisters this callback so it no longer fires.
func (h CallbackHandle) Remove() {
	if h.reg == nil || int(h.event) >= len(h.reg.byType) {
		return
	}
	s := h.reg.byType[h.event]
	for i := range s {
		if s[i].id == h.id {
			copy(s[i:], s[i+1:])
			s[len(s)-1] = sceneHandler{}
			h.reg.byType[h.event] = s[:len(s)-1]
			return
		}
	}
}

// On registers an engine-level callback that fires for every event of type t,
// after entity listeners have run, whether or not anything was hit.
func (e *Engine) On(t EventType, fn func(*PointerContext)) CallbackHandle {
	if int(t) >= len(e.handlers.byType) {
		return CallbackHandle{}
	}
	e.handlers.nextID++
	id := e.handlers.nextID
	e.handlers.byType[t] = append(e.handlers.byType[t], sceneHandler{id: id, fn: fn})
	return CallbackHandle{id: id, reg: &e.handlers, event: t}
}

// CapturePointer routes all events for pointerID to the given entity.
func (e *Engine) CapturePointer(pointerID int, id ecs.Entity) {
	if pointerID >= 0 && pointerID < MaxPointers {
		e.captured[pointerID] = id
	}
}

// ReleasePointer stops routing events for pointerID to a captured entity.
func (e *Engine) ReleasePointer(pointerID int) {
	if pointerID >= 0 && pointerID < MaxPointers {
		e.captured[pointerID] = ecs.Nil
	}
}

// forgetPointerTarget drops every pointer reference to id so no further
// event is aimed at it.
func (e *Engine) forgetPointerTarget(id ecs.Entity) {
	for i := range e.pointers {
		ps := &e.pointers[i]
		if ps.hover == id {
			ps.hover = ecs.Nil
		}
		if ps.hitEntity == id {
			ps.hitEntity = ecs.Nil
		}
		if e.captured[i] == id {
			e.captured[i] = ecs.Nil
		}
	}
}

// SetDragDeadZone sets the minimum movement in pixels before a drag starts.
func (e *Engine) SetDragDeadZone(pixels float64) {
	e.dragDeadZone = pixels
}

// --- Input processing ---

// ProcessPointer runs the pointer state machine for one pointer sample in
// world coordinates. The frame driver calls it once per pointer per tick.
// Listeners run after the hit test has finished, so they may mutate the
// scene.
func (e *Engine) ProcessPointer(pointerID int, wx, wy float64, pressed bool, button MouseButton, mods KeyModifiers) {
	if pointerID < 0 || pointerID >= MaxPointers {
		return
	}
	ps := &e.pointers[pointerID]

	// Determine target: captured entity or hit test.
	target := e.captured[pointerID]
	if target != ecs.Nil && !e.store.Has(target) {
		e.captured[pointerID] = ecs.Nil
		target = ecs.Nil
	}
	if target == ecs.Nil {
		target, _ = e.Pick(wx, wy)
	}

	base := PointerContext{GlobalX: wx, GlobalY: wy, Button: button, PointerID: pointerID, Modifiers: mods}

	// Fire hover enter/leave when the hovered entity changes.
	if target != ps.hover {
		if ps.hover != ecs.Nil {
			e.fire(EventPointerLeave, ps.hover, base)
		}
		if target != ecs.Nil {
			e.fire(EventPointerEnter, target, base)
		}
		ps.hover = target
	}

	switch {
	case pressed && !ps.down:
		// Just pressed: capture button for the duration of this interaction.
		ps.down = true
		ps.button = button
		ps.startX, ps.startY = wx, wy
		ps.lastX, ps.lastY = wx, wy
		ps.hitEntity = target
		ps.dragging = false
		e.fire(EventPointerDown, target, base)

	case !pressed && ps.down:
		base.Button = ps.button
		if ps.dragging {
			ctx := base
			ctx.StartX, ctx.StartY = ps.startX, ps.startY
			ctx.DeltaX, ctx.DeltaY = wx-ps.lastX, wy-ps.lastY
			e.fire(EventDragEnd, ps.hitEntity, ctx)
		} else if ps.hitEntity != ecs.Nil && ps.hitEntity == target {
			e.fire(EventClick, target, base)
		}
		e.fire(EventPointerUp, target, base)

		// Auto-release capture.
		e.captured[pointerID] = ecs.Nil
		ps.down = false
		ps.hitEntity = ecs.Nil
		ps.dragging = false

	case pressed && ps.down:
		base.Button = ps.button
		if wx != ps.lastX || wy != ps.lastY {
			ctx := base
			ctx.StartX, ctx.StartY = ps.startX, ps.startY
			if !ps.dragging {
				dx := wx - ps.startX
				dy := wy - ps.startY
				if math.Sqrt(dx*dx+dy*dy) > e.dragDeadZone {
					ps.dragging = true
					ctx.DeltaX, ctx.DeltaY = dx, dy
					e.fire(EventDragStart, ps.hitEntity, ctx)
				}
			}
			if ps.dragging {
				ctx.DeltaX, ctx.DeltaY = wx-ps.lastX, wy-ps.lastY
				e.fire(EventDrag, ps.hitEntity, ctx)
			}
		}
		ps.lastX, ps.lastY = wx, wy

	default:
		// Hover move.
		if wx != ps.lastX || wy != ps.lastY {
			e.fire(EventPointerMove, target, base)
			ps.lastX, ps.lastY = wx, wy
		}
	}
}

// fire delivers one event: entity listeners bubbling from target to the
// root, then engine-level handlers, then the sink.
func (e *Engine) fire(t EventType, target ecs.Entity, base PointerContext) {
	ctx := base
	ctx.Type = t
	ctx.Target = target

	if target != ecs.Nil {
		for id := target; id != ecs.Nil && !ctx.stopped; id = e.parentOf(id) {
			c, ok := e.store.Component(id, e.listenersKind)
			if !ok {
				continue
			}
			if fn := c.(*Listeners).handler(t); fn != nil {
				ctx.Entity = id
				ctx.LocalX, ctx.LocalY = e.WorldToLocal(id, base.GlobalX, base.GlobalY)
				fn(&ctx)
			}
		}
	}

	ctx.Entity = target
	if target != ecs.Nil {
		ctx.LocalX, ctx.LocalY = e.WorldToLocal(target, base.GlobalX, base.GlobalY)
	} else {
		ctx.LocalX, ctx.LocalY = base.GlobalX, base.GlobalY
	}
	ctx.stopped = false
	for _, h := range e.handlers.byType[t] {
		h.fn(&ctx)
	}

	if e.sink != nil && target != ecs.Nil {
		e.sink.EmitEvent(InteractionEvent{
			Type:      t,
			Entity:    target,
			GlobalX:   ctx.GlobalX,
			GlobalY:   ctx.GlobalY,
			LocalX:    ctx.LocalX,
			LocalY:    ctx.LocalY,
			Button:    ctx.Button,
			PointerID: ctx.PointerID,
			Modifiers: ctx.Modifiers,
			StartX:    ctx.StartX,
			StartY:    ctx.StartY,
			DeltaX:    ctx.DeltaX,
			DeltaY:    ctx.DeltaY,
		})
	}
}

// parentOf returns id's parent, or ecs.Nil when id is top-level or not in the tree.
func (e *Engine) parentOf(id ecs.Entity) ecs.Entity {
	n, ok := e.tree.Get(id)
	if !ok {
		return ecs.Nil
	}
	return n.Parent()
}
