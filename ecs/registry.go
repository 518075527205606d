package ecs

import "reflect"

// DefaultDynamicCapacity is the Nmax used by NewDynamicRegistry when no
// explicit capacity is given, matching the "8 in the shipped configuration"
// figure from the reference implementation.
const DefaultDynamicCapacity = 8

// Registry assigns each component kind a dense ordinal in [0, MaxComponents)
// and reports its byte size. StaticRegistry and DynamicRegistry are the two
// shipped variants; both are total once a kind has been assigned an ordinal.
type Registry interface {
	// OrdinalOf returns the dense ordinal assigned to t, assigning one on
	// first mention for dynamic variants. Panics if t cannot be assigned
	// (unknown to a static registry, or the dynamic registry is full).
	OrdinalOf(t reflect.Type) int
	// SizeOf returns the byte size of the component kind at ordinal.
	// Undefined (panics) for ordinals never assigned.
	SizeOf(ordinal int) uintptr
	// MaxComponents returns the Nmax this registry was built with.
	MaxComponents() int
}

// StaticRegistry assigns ordinals as positions in a fixed, declared type
// list built once at construction time. It is a total function over that
// declared set; querying a kind outside the set panics, emulating the
// reference implementation's compile-time rejection as closely as Go's
// runtime type system allows.
type StaticRegistry struct {
	types []reflect.Type
	sizes []uintptr
}

// NewStaticRegistry builds a registry whose ordinals are the positions of
// types in the given order. The order is significant: it is the canonical
// ordinal assignment used by every archetype's row layout.
func NewStaticRegistry(types ...reflect.Type) *StaticRegistry {
	if len(types) > MaxComponents {
		panic("ecs: static registry declares more than MaxComponents kinds")
	}
	sizes := make([]uintptr, len(types))
	for i, t := range types {
		sizes[i] = t.Size()
	}
	return &StaticRegistry{types: types, sizes: sizes}
}

func (r *StaticRegistry) OrdinalOf(t reflect.Type) int {
	idx := indexOfType(t, r.types)
	if idx < 0 {
		panic("ecs: component kind " + t.String() + " is not declared in this static registry")
	}
	return idx
}

func (r *StaticRegistry) SizeOf(ordinal int) uintptr {
	return r.sizes[ordinal]
}

func (r *StaticRegistry) MaxComponents() int {
	return len(r.types)
}

// DynamicRegistry assigns ordinals in assignment order on first mention of a
// component kind, identified by its reflect.Type. Lookup goes through a map
// keyed by reflect.Type; the entries themselves (type and size, by ordinal)
// are held in a fixed-capacity stackVector.
type DynamicRegistry struct {
	nmax    int
	entries stackVector[dynamicEntry]
	index   map[reflect.Type]int
}

type dynamicEntry struct {
	typ  reflect.Type
	size uintptr
}

// NewDynamicRegistry builds an empty dynamic registry capped at nmax
// distinct component kinds.
func NewDynamicRegistry(nmax int) *DynamicRegistry {
	if nmax <= 0 || nmax > MaxComponents {
		panic("ecs: dynamic registry capacity out of range")
	}
	return &DynamicRegistry{
		nmax:  nmax,
		index: make(map[reflect.Type]int, nmax),
	}
}

func (r *DynamicRegistry) OrdinalOf(t reflect.Type) int {
	if ord, ok := r.index[t]; ok {
		return ord
	}
	if r.entries.len() >= r.nmax {
		panic("ecs: RegistryFull: dynamic registry capacity exceeded")
	}
	ord := r.entries.len()
	r.entries.pushBack(dynamicEntry{typ: t, size: t.Size()})
	r.index[t] = ord
	return ord
}

func (r *DynamicRegistry) SizeOf(ordinal int) uintptr {
	return r.entries.at(ordinal).size
}

func (r *DynamicRegistry) MaxComponents() int {
	return r.nmax
}
