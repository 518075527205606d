package ecs_test

import (
	"testing"

	"github.com/ashfall-games/hiveworld/ecs"
	"github.com/stretchr/testify/assert"
)

type removeDeadSystem struct {
	dead ecs.Query[struct{ Health *Health }]
}

func (s *removeDeadSystem) Execute(frame *ecs.UpdateFrame) {
	s.dead.Execute()
	for e, c := range s.dead.Iter() {
		if c.Health.Current <= 0 {
			frame.Commands.Remove(e)
		}
	}
}

type deferredCounterSystem struct {
	count int
}

func (s *deferredCounterSystem) Execute(frame *ecs.UpdateFrame) {
	frame.Commands.Defer(func() { s.count++ })
}

func TestCommandsRemoveDeferredUntilFlush(t *testing.T) {
	w := newTestWorld()
	dying := w.Insert(Health{Current: 0})

	scheduler := ecs.NewScheduler(w)
	scheduler.Register(&removeDeadSystem{})

	assert.True(t, w.IsValid(dying))
	scheduler.Once(0)
	assert.False(t, w.IsValid(dying))
}

func TestCommandsDeferRunsOncePerTick(t *testing.T) {
	w := newTestWorld()
	scheduler := ecs.NewScheduler(w)
	sys := &deferredCounterSystem{}
	scheduler.Register(sys)

	scheduler.Once(0)
	scheduler.Once(0)
	assert.Equal(t, 2, sys.count)
}
