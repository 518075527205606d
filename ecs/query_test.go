package ecs_test

import (
	"testing"

	"github.com/ashfall-games/hiveworld/ecs"
	"github.com/stretchr/testify/assert"
)

func TestQueryPanicsBeforeExecute(t *testing.T) {
	w := newTestWorld()
	q := ecs.NewQuery[moving](w)

	assert.Panics(t, func() {
		for range q.Iter() {
		}
	})
}

func TestQueryExecuteThenIterMatchesInsertedEntities(t *testing.T) {
	w := newTestWorld()
	a := w.Insert(Position{X: 1}, Velocity{DX: 1})
	b := w.Insert(Position{X: 2}, Velocity{DX: 2})
	w.Insert(Position{X: 3})

	q := ecs.NewQuery[moving](w)
	q.Execute()

	seen := map[ecs.Entity]bool{}
	for e := range q.Iter() {
		seen[e] = true
	}
	assert.Len(t, seen, 2)
	assert.True(t, seen[a])
	assert.True(t, seen[b])
}

func TestQueryIterPanicsWhenWorldMutatedSinceExecute(t *testing.T) {
	w := newTestWorld()
	w.Insert(Position{X: 1}, Velocity{DX: 1})
	w.Insert(Position{X: 2}, Velocity{DX: 2})

	q := ecs.NewQuery[moving](w)
	q.Execute()

	assert.Panics(t, func() {
		for range q.Iter() {
			w.Insert(Position{X: 3}, Velocity{DX: 3})
		}
	}, "consuming a cached query after the world mutated must panic (IteratorInvalidated)")
}

func TestQueryPicksUpNewArchetypesOnNextExecute(t *testing.T) {
	w := newTestWorld()
	w.Insert(Position{X: 1}) // no velocity: does not match `moving`

	q := ecs.NewQuery[moving](w)
	q.Execute()

	before := 0
	for range q.Values() {
		before++
	}
	assert.Equal(t, 0, before)

	w.Insert(Position{X: 2}, Velocity{DX: 2})
	q.Execute()

	after := 0
	for range q.Values() {
		after++
	}
	assert.Equal(t, 1, after)
}
