package ecs

import (
	"fmt"
	"reflect"
)

// Kind tags a registered component type. Kinds are dense small integers
// assigned in registration order by a [Kinds] registry.
type Kind uint16

// kindInfo describes one registered component kind.
type kindInfo struct {
	name      string
	typ       reflect.Type // pointer type *T; components are attached as *T
	render    bool
	newColumn func() column
}

// KindOption configures a kind at registration time.
type KindOption func(*kindInfo)

// RenderKind tags a kind as a render kind. An entity holds at most one
// component of any render kind at a time.
func RenderKind() KindOption {
	return func(ki *kindInfo) { ki.render = true }
}

// KindName overrides the display name used in logs and errors.
// The default is the Go type name.
func KindName(name string) KindOption {
	return func(ki *kindInfo) { ki.name = name }
}

// Kinds is a registry of component kinds. It is constructed explicitly and
// handed to [NewStore]; there is no process-wide registry.
type Kinds struct {
	infos  []kindInfo
	byType map[reflect.Type]Kind
}

// NewKinds creates an empty kind registry.
func NewKinds() *Kinds {
	return &Kinds{byType: make(map[reflect.Type]Kind, 16)}
}

// Register registers *T as a component kind and returns its Kind.
// If T is already registered, the existing Kind is returned and opts are
// ignored. Panics if the registry already holds MaxKinds kinds.
func Register[T any](ks *Kinds, opts ...KindOption) Kind {
	typ := reflect.TypeFor[*T]()
	if k, ok := ks.byType[typ]; ok {
		return k
	}
	if len(ks.infos) >= MaxKinds {
		panic(fmt.Sprintf("ecs: cannot register %s: maximum number of component kinds (%d) reached", typ.Elem(), MaxKinds))
	}
	ki := kindInfo{
		name:      typ.Elem().Name(),
		typ:       typ,
		newColumn: func() column { return &typedColumn[T]{} },
	}
	for _, opt := range opts {
		opt(&ki)
	}
	k := Kind(len(ks.infos))
	ks.infos = append(ks.infos, ki)
	ks.byType[typ] = k
	return k
}

// KindOf returns the Kind registered for T.
func KindOf[T any](ks *Kinds) (Kind, bool) {
	k, ok := ks.byType[reflect.TypeFor[*T]()]
	return k, ok
}

// kindOfValue resolves the Kind of a component instance. c must be a *T for
// some registered T.
func (ks *Kinds) kindOfValue(c any) (Kind, bool) {
	if c == nil {
		return 0, false
	}
	k, ok := ks.byType[reflect.TypeOf(c)]
	return k, ok
}

// Len returns the number of registered kinds.
func (ks *Kinds) Len() int {
	return len(ks.infos)
}

// Registered reports whether k was issued by this registry.
func (ks *Kinds) Registered(k Kind) bool {
	return int(k) < len(ks.infos)
}

// IsRender reports whether k is a render kind.
func (ks *Kinds) IsRender(k Kind) bool {
	return ks.Registered(k) && ks.infos[k].render
}

// Name returns the display name of k.
func (ks *Kinds) Name(k Kind) string {
	if !ks.Registered(k) {
		return fmt.Sprintf("kind(%d)", k)
	}
	return ks.infos[k].name
}
