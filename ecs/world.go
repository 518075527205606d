package ecs

import (
	"reflect"
	"unsafe"

	"github.com/kamstrup/intmap"
)

// World owns a component Registry and an append-only vector of Archetypes.
// Archetype ordinals are positions in that vector and never change once
// assigned. The world resolves component-set masks to archetypes, packs
// inserted values into canonically ordered row buffers, and decodes entity
// handles for reads.
type World struct {
	registry    Registry
	archetypes  []*Archetype
	byMask      *intmap.Map[uint64, int]
	generations map[uint64]uint16
	singletons  map[reflect.Type]unsafe.Pointer

	// mutationVersion is a monotonic counter bumped on every structural
	// mutation (Insert, Remove). View.Iter checks it against a snapshot
	// taken at the start of iteration, and Query.Iter/Values against one
	// taken at Query.Execute, to give best-effort detection of the world
	// being mutated while an iterator or a cached result set is in use.
	mutationVersion uint64
}

// NewWorld constructs an empty world backed by the given registry.
func NewWorld(registry Registry) *World {
	return &World{
		registry:    registry,
		byMask:      intmap.New[uint64, int](16),
		generations: make(map[uint64]uint16),
		singletons:  make(map[reflect.Type]unsafe.Pointer),
	}
}

// Registry returns the world's component registry.
func (w *World) Registry() Registry {
	return w.registry
}

// ArchetypeCount returns the number of distinct component-set archetypes the
// world has created so far. Archetypes are never merged or removed, so this
// is monotonically non-decreasing — a coarse measure of how many distinct
// component combinations the running simulation has actually produced.
func (w *World) ArchetypeCount() int {
	return len(w.archetypes)
}

// ArchetypeStats is a point-in-time snapshot of one archetype's storage
// layout, for diagnostics and stress reports.
type ArchetypeStats struct {
	Ordinal    int
	Mask       Mask
	LiveCount  int
	ChunkCount int
}

// Stats returns a snapshot of every archetype's storage layout, in ordinal
// order.
func (w *World) Stats() []ArchetypeStats {
	stats := make([]ArchetypeStats, len(w.archetypes))
	for i, a := range w.archetypes {
		stats[i] = ArchetypeStats{
			Ordinal:    a.Ordinal(),
			Mask:       a.Mask(),
			LiveCount:  a.LiveCount(),
			ChunkCount: a.ChunkCount(),
		}
	}
	return stats
}

// offsetIn computes the canonical byte offset of ordinal within a row whose
// archetype mask is mask: the sum of sizes of every lower ordinal present
// in mask. Requires mask.Test(ordinal).
func (w *World) offsetIn(ordinal int, mask Mask) uintptr {
	var offset uintptr
	for i := 0; i < ordinal; i++ {
		if mask.Test(i) {
			offset += w.registry.SizeOf(i)
		}
	}
	return offset
}

// strideOf sums the sizes of every ordinal present in mask.
func (w *World) strideOf(mask Mask) uintptr {
	var stride uintptr
	for i := 0; i < w.registry.MaxComponents(); i++ {
		if mask.Test(i) {
			stride += w.registry.SizeOf(i)
		}
	}
	return stride
}

func (w *World) archetypeFor(mask Mask) *Archetype {
	if idx, ok := w.byMask.Get(uint64(mask)); ok {
		return w.archetypes[idx]
	}
	ordinal := len(w.archetypes)
	a := newArchetype(ordinal, mask, w.strideOf(mask))
	w.archetypes = append(w.archetypes, a)
	w.byMask.Put(uint64(mask), ordinal)
	return a
}

// Insert stores one entity carrying the given components and returns its
// handle. The order of components is immaterial: the canonical row layout
// is by ascending ordinal, so Insert(a, b) and Insert(b, a) produce
// identical rows in the same archetype. Passing two components of the same
// kind, or a kind the registry cannot assign an ordinal to, panics.
func (w *World) Insert(components ...any) Entity {
	if len(components) == 0 {
		panic("ecs: insert requires at least one component")
	}

	ordinals := make([]int, len(components))
	mask := Mask(0)
	for i, c := range components {
		t := reflect.TypeOf(c)
		ord := w.registry.OrdinalOf(t)
		if mask.Test(ord) {
			panic("ecs: duplicate component kind " + t.String() + " in a single insert")
		}
		mask = mask.Set(ord)
		ordinals[i] = ord
	}

	archetype := w.archetypeFor(mask)
	row := make([]byte, archetype.Stride())
	for i, c := range components {
		offset := w.offsetIn(ordinals[i], mask)
		writeComponent(row, offset, c)
	}

	idx := archetype.Insert(row)
	key := slotKey(archetype.ordinal, idx)
	gen := w.generations[key]
	w.mutationVersion++
	return newEntity(gen, uint16(archetype.ordinal), idx)
}

// IsValid reports whether e refers to a live row whose stored generation
// matches e's generation field.
func (w *World) IsValid(e Entity) bool {
	ord := int(e.ArchetypeOrdinal())
	if ord < 0 || ord >= len(w.archetypes) {
		return false
	}
	key := slotKey(ord, e.RowIndex())
	return w.generations[key] == e.Generation()
}

// Remove frees e's row and bumps its slot's generation, so any other
// outstanding handle to the same (now reused) slot is detectable via
// IsValid. This is the sketched, lightly-exercised remove path: it does
// not migrate remaining rows or compact the archetype.
func (w *World) Remove(e Entity) {
	if !w.IsValid(e) {
		panic("ecs: InvalidHandle: remove on stale or invalid entity")
	}
	archetype := w.archetypes[e.ArchetypeOrdinal()]
	archetype.Free(e.RowIndex())
	key := slotKey(int(e.ArchetypeOrdinal()), e.RowIndex())
	w.generations[key]++
	w.mutationVersion++
}

// EntityRef resolves handle's components into a *T, where T is a struct of
// pointer fields naming the required component kinds (the same convention
// View uses). This is the direct `entity<T1,…,Tk>(handle)` operation: unlike
// View.Fill/View.Get, it asserts the archetype's mask is a superset of the
// requested set and panics — MissingComponents — rather than reporting
// failure through a return value, and panics — InvalidHandle — if handle's
// archetype ordinal is out of range.
func EntityRef[T any](w *World, handle Entity) *T {
	ord := int(handle.ArchetypeOrdinal())
	if ord < 0 || ord >= len(w.archetypes) {
		panic("ecs: InvalidHandle: entity references an archetype ordinal out of range")
	}

	view := NewView[T](w)
	if !view.matchesArchetype(w.archetypes[ord]) {
		panic("ecs: MissingComponents: archetype does not carry every component entity<T...> requires")
	}

	var result T
	if !view.Fill(handle, &result) {
		panic("ecs: MissingComponents: archetype does not carry every component entity<T...> requires")
	}
	return &result
}

// singletonPtr returns the stored pointer for type t, allocating a
// zero-valued box on first use so callers always get a stable address.
func (w *World) singletonPtr(t reflect.Type) unsafe.Pointer {
	if ptr, ok := w.singletons[t]; ok {
		return ptr
	}
	ptr := reflect.New(t).UnsafePointer()
	w.singletons[t] = ptr
	return ptr
}

// setSingleton overwrites the stored value for T, allocating its box first
// if this is the first mention of T.
func setSingleton[T any](w *World, value T) {
	t := reflect.TypeOf(value)
	ptr := w.singletonPtr(t)
	*(*T)(ptr) = value
}

func slotKey(archetypeOrdinal int, idx HiveIndex) uint64 {
	return uint64(archetypeOrdinal)<<32 | uint64(idx)
}

// writeComponent copies c's bytes into row at offset. c must be a plain
// (non-pointer) value of the component's declared type.
func writeComponent(row []byte, offset uintptr, c any) {
	t := reflect.TypeOf(c)
	dst := reflect.NewAt(t, unsafe.Pointer(&row[offset])).Elem()
	dst.Set(reflect.ValueOf(c))
}

// readComponentPointer returns an unsafe.Pointer to the component stored at
// offset in row; the caller knows its type.
func readComponentPointer(row []byte, offset uintptr) unsafe.Pointer {
	return unsafe.Pointer(&row[offset])
}
