package ecs_test

import (
	"testing"

	"github.com/ashfall-games/hiveworld/ecs"
	"github.com/stretchr/testify/assert"
)

func TestMaskSetAndTest(t *testing.T) {
	var m ecs.Mask
	assert.False(t, m.Test(3))

	m = m.Set(3)
	assert.True(t, m.Test(3))
	assert.False(t, m.Test(4))
}

func TestMaskUnion(t *testing.T) {
	a := ecs.Mask(0).Set(0).Set(2)
	b := ecs.Mask(0).Set(2).Set(5)

	u := a.Union(b)
	for _, ord := range []int{0, 2, 5} {
		assert.True(t, u.Test(ord))
	}
	assert.False(t, u.Test(1))
}

func TestMaskSuperset(t *testing.T) {
	tests := []struct {
		name string
		m    ecs.Mask
		sub  ecs.Mask
		want bool
	}{
		{"empty subset of anything", ecs.Mask(0).Set(1).Set(2), ecs.Mask(0), true},
		{"equal masks", ecs.Mask(0).Set(1), ecs.Mask(0).Set(1), true},
		{"proper subset", ecs.Mask(0).Set(1).Set(2).Set(3), ecs.Mask(0).Set(1).Set(3), true},
		{"missing a bit", ecs.Mask(0).Set(1).Set(2), ecs.Mask(0).Set(1).Set(4), false},
		{"disjoint", ecs.Mask(0).Set(1), ecs.Mask(0).Set(2), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.m.Superset(tt.sub))
		})
	}
}

func TestMaskLen(t *testing.T) {
	m := ecs.Mask(0).Set(0).Set(10).Set(63)
	assert.Equal(t, 3, m.Len())
	assert.Equal(t, 0, ecs.Mask(0).Len())
}
