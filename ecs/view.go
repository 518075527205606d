package ecs

import (
	"iter"
	"reflect"
	"unsafe"
)

// View is the typed accessor over a fixed set of component kinds — the
// concrete realization of the spec's `entity<T1,…,Tk>(handle)` and
// `query<T1,…,Tk>()` operations. T must be a struct whose fields are all
// pointer types naming the component kinds of interest. Embedded fields are
// always required; named fields tagged `ecs:"optional"` may be absent from
// a matching archetype, in which case the field is set to nil.
type View[T any] struct {
	world       *World
	types       []reflect.Type
	optional    []bool
	fieldOffset []uintptr

	requiredMask Mask
}

// NewView builds a view for struct type T against world.
func NewView[T any](world *World) *View[T] {
	var zero T
	structType := reflect.TypeOf(zero)
	if structType.Kind() != reflect.Struct {
		panic("ecs: View type parameter must be a struct")
	}

	v := &View[T]{world: world}
	for i := 0; i < structType.NumField(); i++ {
		field := structType.Field(i)
		if field.Type.Kind() != reflect.Ptr {
			panic("ecs: View struct fields must be pointer types")
		}
		componentType := field.Type.Elem()
		v.types = append(v.types, componentType)
		v.fieldOffset = append(v.fieldOffset, field.Offset)

		optional := false
		if !field.Anonymous {
			switch tag := field.Tag.Get("ecs"); tag {
			case "":
			case "optional":
				optional = true
			default:
				panic("ecs: invalid ecs tag value: \"" + tag + "\" (only \"optional\" is supported)")
			}
		}
		v.optional = append(v.optional, optional)
		if !optional {
			ord := world.registry.OrdinalOf(componentType)
			v.requiredMask = v.requiredMask.Set(ord)
		}
	}
	return v
}

// matchesArchetype reports whether archetype carries every required
// (non-optional) component this view names.
func (v *View[T]) matchesArchetype(a *Archetype) bool {
	return a.Mask().Superset(v.requiredMask)
}

// Fill populates ptr with pointers into e's row for each field. It reports
// an out-of-range archetype ordinal or a missing required component through
// its bool return rather than panicking, so View can be polled cheaply from
// inside a query loop; a row index that refers to a freed or never-allocated
// slot still panics (InvalidHandle) in the hive lookup. The direct `entity<T…>(handle)`
// operation with the spec's mandated MissingComponents/InvalidHandle panics
// is EntityRef, in world.go, which is built on top of Fill.
func (v *View[T]) Fill(e Entity, ptr *T) bool {
	ord := int(e.ArchetypeOrdinal())
	if ord < 0 || ord >= len(v.world.archetypes) {
		return false
	}
	archetype := v.world.archetypes[ord]
	if !v.matchesArchetype(archetype) {
		return false
	}
	row := archetype.At(e.RowIndex())

	structPtr := unsafe.Pointer(ptr)
	mask := archetype.Mask()
	for i, componentType := range v.types {
		fieldPtr := unsafe.Pointer(uintptr(structPtr) + v.fieldOffset[i])
		compOrdinal := v.world.registry.OrdinalOf(componentType)
		if !mask.Test(compOrdinal) {
			if v.optional[i] {
				*(*unsafe.Pointer)(fieldPtr) = nil
				continue
			}
			return false
		}
		offset := v.world.offsetIn(compOrdinal, mask)
		*(*unsafe.Pointer)(fieldPtr) = readComponentPointer(row, offset)
	}
	return true
}

// Get returns a populated *T for e, or nil if e's archetype is missing a
// required component.
func (v *View[T]) Get(e Entity) *T {
	var result T
	if !v.Fill(e, &result) {
		return nil
	}
	return &result
}

// perArchetypeOffsets computes, once per archetype, the field offsets for
// this view's component types — the §4.F requirement that offsets are
// computed once per archetype rather than once per row.
func (v *View[T]) perArchetypeOffsets(a *Archetype) []int {
	mask := a.Mask()
	offsets := make([]int, len(v.types))
	for i, componentType := range v.types {
		ord := v.world.registry.OrdinalOf(componentType)
		if !mask.Test(ord) {
			offsets[i] = -1
			continue
		}
		offsets[i] = int(v.world.offsetIn(ord, mask))
	}
	return offsets
}

func (v *View[T]) populate(resultPtr unsafe.Pointer, row []byte, offsets []int) bool {
	for i, offset := range offsets {
		fieldPtr := unsafe.Pointer(uintptr(resultPtr) + v.fieldOffset[i])
		if offset < 0 {
			if v.optional[i] {
				*(*unsafe.Pointer)(fieldPtr) = nil
				continue
			}
			return false
		}
		*(*unsafe.Pointer)(fieldPtr) = readComponentPointer(row, uintptr(offset))
	}
	return true
}

// Iter walks every archetype whose mask is a superset of this view's
// required set, and every live row within it, yielding (Entity, T) pairs.
// This is the direct realization of the §4.F query state machine:
// PositioningArchetype filters archetypes by mask superset, offsets are
// computed once on entry to InRow, and InRow walks the archetype's hive.
//
// The world is exclusively owned by its caller for the iterator's lifetime;
// inserting, removing, or creating archetypes while this iterator is live is
// undefined behavior at the contract level. Iter makes a best-effort check
// against that at every row, comparing the mutation-version stamp captured
// at the start of iteration and panicking (IteratorInvalidated) on mismatch.
func (v *View[T]) Iter() iter.Seq2[Entity, T] {
	return func(yield func(Entity, T) bool) {
		version := v.world.mutationVersion
		for _, archetype := range v.world.archetypes {
			if !v.matchesArchetype(archetype) {
				continue
			}
			offsets := v.perArchetypeOffsets(archetype)

			var result T
			resultPtr := unsafe.Pointer(&result)

			stop := false
			archetype.Iterate(func(idx HiveIndex, row []byte) bool {
				if v.world.mutationVersion != version {
					panic("ecs: IteratorInvalidated: world structurally mutated during iteration")
				}
				if !v.populate(resultPtr, row, offsets) {
					return true
				}
				key := slotKey(archetype.ordinal, idx)
				e := newEntity(v.world.generations[key], uint16(archetype.ordinal), idx)
				if !yield(e, result) {
					stop = true
					return false
				}
				return true
			})
			if stop {
				return
			}
		}
	}
}

// Values returns an iterator over just the populated view structs.
func (v *View[T]) Values() iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, value := range v.Iter() {
			if !yield(value) {
				return
			}
		}
	}
}

// Spawn creates a new entity with component values extracted from data's
// pointer fields, and returns its handle. Required fields must be non-nil.
func (v *View[T]) Spawn(data T) Entity {
	structPtr := unsafe.Pointer(&data)

	components := make([]any, 0, len(v.types))
	for i, componentType := range v.types {
		fieldPtr := unsafe.Pointer(uintptr(structPtr) + v.fieldOffset[i])
		componentPtr := *(*unsafe.Pointer)(fieldPtr)
		if componentPtr == nil {
			if !v.optional[i] {
				panic("ecs: required component is nil in View.Spawn")
			}
			continue
		}
		component := reflect.NewAt(componentType, componentPtr).Elem().Interface()
		components = append(components, component)
	}
	if len(components) == 0 {
		panic("ecs: cannot spawn entity without components")
	}
	return v.world.Insert(components...)
}
