package ecs

import (
	"context"
	"reflect"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// System is a unit of per-tick behavior over a World. Implementations
// typically embed Query or Singleton fields, which the Scheduler binds to
// the world on Register, plus whatever state (cooldowns, RNG, config) the
// behavior needs to persist across ticks.
type System interface {
	Execute(frame *UpdateFrame)
}

// SchedulerStats provides statistics about scheduler execution.
type SchedulerStats struct {
	SystemCount     int
	TotalExecutions int64
	// ArchetypeCount is a snapshot of World.ArchetypeCount at the moment
	// GetStats is called — how many distinct component-set archetypes the
	// world has created so far, by direct Insert or by systems' spawns.
	ArchetypeCount int
	Systems        []SystemStats
}

// SystemStats provides execution statistics for a single system.
type SystemStats struct {
	Name           string
	ExecutionCount int64
	MinDuration    time.Duration
	MaxDuration    time.Duration
	AvgDuration    time.Duration
	LastDuration   time.Duration
	TotalDuration  time.Duration
	// StructuralMutations is the running total of Insert/Remove calls
	// (world.mutationVersion deltas) observed to occur during this system's
	// Execute calls — a measure of how much archetype churn this system's
	// behavior causes, as distinct from its wall-clock cost.
	StructuralMutations int64
}

type systemStatsInternal struct {
	name                string
	executionCount      int64
	minDuration         time.Duration
	maxDuration         time.Duration
	totalDuration       time.Duration
	lastDuration        time.Duration
	structuralMutations int64
}

// Scheduler runs a fixed order of registered systems over a World once per
// tick, flushing a shared Commands buffer after every system has run.
type Scheduler struct {
	world       *World
	systems     []System
	systemStats []*systemStatsInternal
	log         zerolog.Logger
}

// NewScheduler creates a new scheduler for the given world. Logging is
// silent (zerolog.Nop) unless WithLogger is used.
func NewScheduler(world *World) *Scheduler {
	return &Scheduler{
		world:   world,
		systems: make([]System, 0),
		log:     zerolog.Nop(),
	}
}

// WithLogger attaches a zerolog logger the scheduler uses to report system
// registration and tick timing. Returns the scheduler for chaining.
func (s *Scheduler) WithLogger(logger zerolog.Logger) *Scheduler {
	s.log = logger
	return s
}

// Register adds a system to the scheduler and initializes its Query and
// Singleton fields against this scheduler's world. Since Query
// initialization resolves every required (non-optional) component type
// through the world's Registry, a system whose Query fields require a
// component kind a StaticRegistry never declared (or that would overflow a
// DynamicRegistry's capacity) panics here, at registration time, rather
// than on its first tick. Optional Query fields are resolved later, when
// the query runs; Singleton fields do not go through the Registry at all.
func (s *Scheduler) Register(system System) {
	s.initializeFields(system)
	s.systems = append(s.systems, system)

	systemType := reflect.TypeOf(system)
	if systemType.Kind() == reflect.Ptr {
		systemType = systemType.Elem()
	}
	systemName := systemType.Name()

	s.systemStats = append(s.systemStats, &systemStatsInternal{
		name:        systemName,
		minDuration: time.Duration(1<<63 - 1),
	})
	s.log.Debug().
		Str("system", systemName).
		Int("archetypes", s.world.ArchetypeCount()).
		Msg("registered system")
}

func (s *Scheduler) initializeFields(system System) {
	systemValue := reflect.ValueOf(system)
	if systemValue.Kind() == reflect.Ptr {
		systemValue = systemValue.Elem()
	}
	if systemValue.Kind() != reflect.Struct {
		return
	}
	systemType := systemValue.Type()

	for i := 0; i < systemValue.NumField(); i++ {
		field := systemValue.Field(i)
		fieldType := systemType.Field(i)

		if !field.CanSet() || field.Kind() != reflect.Struct {
			continue
		}

		typeName := field.Type().Name()
		switch {
		case strings.HasPrefix(typeName, "Query["), strings.HasPrefix(typeName, "Singleton["):
			initMethod := field.Addr().MethodByName("Init")
			if !initMethod.IsValid() {
				panic("ecs: Init method not found on field " + fieldType.Name)
			}
			initMethod.Call([]reflect.Value{reflect.ValueOf(s.world)})
		}
	}
}

// Once executes every registered system, in registration order, once with
// the given delta time, then flushes the shared Commands buffer. Each
// system's structural-mutation count is derived from the world's
// mutation-version stamp, which the Insert/Remove path bumps on every
// structural change, so this needs no cooperation from System
// implementations themselves.
func (s *Scheduler) Once(dt float64) {
	frame := newUpdateFrame(dt, s.world)

	for i, system := range s.systems {
		versionBefore := s.world.mutationVersion
		start := time.Now()
		system.Execute(frame)
		duration := time.Since(start)

		stats := s.systemStats[i]
		stats.executionCount++
		stats.lastDuration = duration
		stats.totalDuration += duration
		stats.structuralMutations += int64(s.world.mutationVersion - versionBefore)
		if duration < stats.minDuration {
			stats.minDuration = duration
		}
		if duration > stats.maxDuration {
			stats.maxDuration = duration
		}
	}

	versionBeforeFlush := s.world.mutationVersion
	frame.Commands.Flush(s.world)
	flushMutations := s.world.mutationVersion - versionBeforeFlush

	s.log.Debug().
		Float64("dt", dt).
		Int("systems", len(s.systems)).
		Uint64("flush_mutations", flushMutations).
		Int("archetypes", s.world.ArchetypeCount()).
		Msg("tick complete")
}

// Run executes all systems repeatedly at the given interval until ctx is
// cancelled.
func (s *Scheduler) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	lastTime := time.Now()
	s.log.Info().Dur("interval", interval).Msg("scheduler started")

	for {
		select {
		case <-ctx.Done():
			s.log.Info().Int("archetypes", s.world.ArchetypeCount()).Msg("scheduler stopped")
			return
		case now := <-ticker.C:
			dt := now.Sub(lastTime).Seconds()
			lastTime = now
			s.Once(dt)
		}
	}
}

// GetStats returns statistics about system execution.
func (s *Scheduler) GetStats() *SchedulerStats {
	stats := &SchedulerStats{
		SystemCount:    len(s.systems),
		ArchetypeCount: s.world.ArchetypeCount(),
		Systems:        make([]SystemStats, len(s.systemStats)),
	}

	var totalExecs int64
	for i, internal := range s.systemStats {
		avgDuration := time.Duration(0)
		if internal.executionCount > 0 {
			avgDuration = internal.totalDuration / time.Duration(internal.executionCount)
		}
		stats.Systems[i] = SystemStats{
			Name:                internal.name,
			ExecutionCount:      internal.executionCount,
			MinDuration:         internal.minDuration,
			MaxDuration:         internal.maxDuration,
			AvgDuration:         avgDuration,
			LastDuration:        internal.lastDuration,
			TotalDuration:       internal.totalDuration,
			StructuralMutations: internal.structuralMutations,
		}
		totalExecs += internal.executionCount
	}

	stats.TotalExecutions = totalExecs
	return stats
}
