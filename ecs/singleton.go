package ecs

import "reflect"

// Singleton provides efficient access to a single component instance that
// is not associated with any entity — global simulation state or config
// that a system needs without spawning an entity to hold it.
type Singleton[T any] struct {
	world *World
	typ   reflect.Type
}

// NewSingleton creates a Singleton accessor for T in world. If initial is
// given, its first element is stored, overwriting any value already set;
// otherwise an existing value is kept, and a box created by this call is
// zero-valued. Either way the singleton exists in world after the call.
func NewSingleton[T any](world *World, initial ...T) *Singleton[T] {
	var zero T
	t := reflect.TypeOf(zero)
	world.singletonPtr(t) // ensure the box exists
	s := &Singleton[T]{world: world, typ: t}
	if len(initial) > 0 {
		s.Set(initial[0])
	}
	return s
}

// Init binds the Singleton to world. Called automatically by the Scheduler
// during system registration.
func (s *Singleton[T]) Init(world *World) {
	var zero T
	s.world = world
	s.typ = reflect.TypeOf(zero)
	world.singletonPtr(s.typ)
}

// Get returns a pointer to the singleton's current value.
func (s *Singleton[T]) Get() *T {
	return (*T)(s.world.singletonPtr(s.typ))
}

// Set overwrites the singleton's value.
func (s *Singleton[T]) Set(value T) {
	setSingleton(s.world, value)
}
