package ecs_test

import (
	"testing"

	"github.com/ashfall-games/hiveworld/ecs"
	"github.com/stretchr/testify/assert"
)

type SimConfig struct {
	Gravity float64
}

func TestSingletonDefaultsToZeroValue(t *testing.T) {
	w := newTestWorld()
	s := ecs.NewSingleton[SimConfig](w)

	assert.Equal(t, SimConfig{}, *s.Get())
}

func TestSingletonSeedsFromInitializer(t *testing.T) {
	w := newTestWorld()
	s := ecs.NewSingleton(w, SimConfig{Gravity: 9.8})

	assert.Equal(t, 9.8, s.Get().Gravity)
}

func TestSingletonSetIsVisibleToOtherAccessors(t *testing.T) {
	w := newTestWorld()
	first := ecs.NewSingleton[SimConfig](w)
	first.Set(SimConfig{Gravity: 1.5})

	second := ecs.NewSingleton[SimConfig](w)
	assert.Equal(t, 1.5, second.Get().Gravity)
}
