package ecs

import (
	"iter"
	"unsafe"
)

// Query wraps a View with caching optimizations for repeated iteration
// across frames. It caches the set of matching archetypes and, on Execute,
// the per-entity results for that frame, so a system can iterate the same
// result set more than once without re-walking every archetype.
//
// This is the concrete state machine behind query iteration:
// ensureArchetypeCache is the positioning phase, filtering the world's
// archetype list down to those whose mask is a superset of the query's
// required set in one pass; Execute is the in-row phase, computing offsets
// once per matched archetype and then walking every live row. cacheValid
// is false until the first Execute (and again after Init); once set it
// stays true, and the cached rows are those of the most recent Execute.
type Query[T any] struct {
	view               *View[T]
	world              *World
	cachedArchetypes   []*Archetype
	lastArchetypeCount int

	cachedEntities   []Entity
	cachedComponents []T
	cacheValid       bool

	// execVersion is the world's mutation-version stamp as of the last
	// Execute. Iter/Values compare it against the live stamp on every step
	// to give best-effort detection of structural mutation between Execute
	// and consumption of the cached result set.
	execVersion uint64
}

// NewQuery creates a new Query with archetype-level caching.
func NewQuery[T any](world *World) *Query[T] {
	return &Query[T]{
		view:               NewView[T](world),
		world:              world,
		lastArchetypeCount: -1,
	}
}

// Init re-initializes the Query against world, discarding any cache. Called
// by the Scheduler during system registration.
func (q *Query[T]) Init(world *World) {
	q.view = NewView[T](world)
	q.world = world
	q.lastArchetypeCount = -1
	q.cacheValid = false
}

func (q *Query[T]) invalidateIfNeeded() {
	currentCount := len(q.world.archetypes)
	if currentCount != q.lastArchetypeCount {
		q.cachedArchetypes = nil
		q.lastArchetypeCount = currentCount
	}
}

func (q *Query[T]) ensureArchetypeCache() {
	if q.cachedArchetypes != nil {
		return
	}
	q.cachedArchetypes = make([]*Archetype, 0)
	for _, archetype := range q.world.archetypes {
		if q.view.matchesArchetype(archetype) {
			q.cachedArchetypes = append(q.cachedArchetypes, archetype)
		}
	}
}

func (q *Query[T]) iterArchetype(archetype *Archetype) iter.Seq2[Entity, T] {
	offsets := q.view.perArchetypeOffsets(archetype)
	return func(yield func(Entity, T) bool) {
		archetype.Iterate(func(idx HiveIndex, row []byte) bool {
			var result T
			if !q.view.populate(unsafe.Pointer(&result), row, offsets) {
				return true
			}
			key := slotKey(archetype.ordinal, idx)
			e := newEntity(q.world.generations[key], uint16(archetype.ordinal), idx)
			return yield(e, result)
		})
	}
}

// Execute builds the entity and component caches for this frame. It must be
// called before Iter/Values; the Scheduler does not call it, so a system
// calls it itself at the start of its Execute.
func (q *Query[T]) Execute() {
	q.invalidateIfNeeded()
	q.ensureArchetypeCache()

	q.cachedEntities = q.cachedEntities[:0]
	q.cachedComponents = q.cachedComponents[:0]

	for _, archetype := range q.cachedArchetypes {
		for id, item := range q.iterArchetype(archetype) {
			q.cachedEntities = append(q.cachedEntities, id)
			q.cachedComponents = append(q.cachedComponents, item)
		}
	}

	q.execVersion = q.world.mutationVersion
	q.cacheValid = true
}

func (q *Query[T]) invalidateCache() {
	q.cacheValid = false
}

// Iter returns an iterator over entity handles and component data built by
// the last Execute. Panics if Execute has not been called since the Query
// was created or last re-initialized by Init. Also
// panics (IteratorInvalidated) if the world has been structurally mutated
// since that Execute: the cached result set no longer reflects live rows.
func (q *Query[T]) Iter() iter.Seq2[Entity, T] {
	if !q.cacheValid {
		panic("ecs: Query.Iter called before Query.Execute")
	}
	return func(yield func(Entity, T) bool) {
		for i := range q.cachedEntities {
			if q.world.mutationVersion != q.execVersion {
				panic("ecs: IteratorInvalidated: world structurally mutated since Query.Execute")
			}
			if !yield(q.cachedEntities[i], q.cachedComponents[i]) {
				return
			}
		}
	}
}

// Values returns an iterator over component data only from the last
// Execute. Panics if Execute has not been called since the Query was
// created or last re-initialized by Init. Also panics
// (IteratorInvalidated) under the same condition as Iter.
func (q *Query[T]) Values() iter.Seq[T] {
	if !q.cacheValid {
		panic("ecs: Query.Values called before Query.Execute")
	}
	return func(yield func(T) bool) {
		for i := range q.cachedComponents {
			if q.world.mutationVersion != q.execVersion {
				panic("ecs: IteratorInvalidated: world structurally mutated since Query.Execute")
			}
			if !yield(q.cachedComponents[i]) {
				return
			}
		}
	}
}
