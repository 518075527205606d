// Command hivestress drives a World through a fixed synthetic workload and
// reports throughput and memory behavior, in the manner of the ecs-stress
// harness this repository's storage layer was reworked from.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"reflect"
	"runtime"
	"time"

	"github.com/rs/zerolog"

	"github.com/ashfall-games/hiveworld/ecs"
)

type Position struct{ X, Y float64 }
type Velocity struct{ DX, DY float64 }
type Health struct{ Current, Max int }
type Tag struct{ Name [16]byte }
type Faction struct{ ID uint32 }

var componentTypes = []reflect.Type{
	reflect.TypeOf(Position{}),
	reflect.TypeOf(Velocity{}),
	reflect.TypeOf(Health{}),
	reflect.TypeOf(Tag{}),
	reflect.TypeOf(Faction{}),
}

// movementSystem advances Position by Velocity*dt for every matching entity.
type movementSystem struct {
	moving ecs.Query[struct {
		Pos *Position
		Vel *Velocity
	}]
}

func (s *movementSystem) Execute(frame *ecs.UpdateFrame) {
	s.moving.Execute()
	for _, c := range s.moving.Values() {
		c.Pos.X += c.Vel.DX * frame.DeltaTime
		c.Pos.Y += c.Vel.DY * frame.DeltaTime
	}
}

// decaySystem drains Health and queues a removal once it reaches zero,
// exercising the Commands buffer's deferred-removal path.
type decaySystem struct {
	alive ecs.Query[struct {
		Health *Health
	}]
}

func (s *decaySystem) Execute(frame *ecs.UpdateFrame) {
	s.alive.Execute()
	for e, c := range s.alive.Iter() {
		if c.Health.Current <= 0 {
			frame.Commands.Remove(e)
			continue
		}
		c.Health.Current--
	}
}

func spawnRandomEntity(world *ecs.World, rng *rand.Rand) {
	components := []any{
		Position{X: rng.Float64() * 1000, Y: rng.Float64() * 1000},
	}
	if rng.Intn(2) == 0 {
		components = append(components, Velocity{DX: rng.Float64()*2 - 1, DY: rng.Float64()*2 - 1})
	}
	if rng.Intn(3) != 0 {
		components = append(components, Health{Current: 100, Max: 100})
	}
	if rng.Intn(4) == 0 {
		components = append(components, Faction{ID: uint32(rng.Intn(8))})
	}
	world.Insert(components...)
}

func main() {
	duration := flag.Duration("duration", 10*time.Second, "The total duration the test should run for.")
	entityCount := flag.Int("entities", 10000, "The initial number of entities to create.")
	gcPauseMetrics := flag.Bool("gc-pause-metrics", false, "Enable detailed GC pause metrics in the report.")
	verbose := flag.Bool("verbose", false, "Log every tick instead of just the summary.")
	flag.Parse()

	level := zerolog.InfoLevel
	if *verbose {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(level).With().Timestamp().Logger()

	log.Info().Msg("starting hive stress test")

	registry := ecs.NewDynamicRegistry(len(componentTypes) + 1)
	world := ecs.NewWorld(registry)
	scheduler := ecs.NewScheduler(world).WithLogger(log)
	scheduler.Register(&movementSystem{})
	scheduler.Register(&decaySystem{})

	rng := rand.New(rand.NewSource(1))
	log.Info().Int("entities", *entityCount).Msg("populating world")
	for i := 0; i < *entityCount; i++ {
		spawnRandomEntity(world, rng)
	}

	report := &Report{
		Duration:       *duration,
		Entities:       *entityCount,
		Components:     len(componentTypes),
		Systems:        2,
		GCPauseMetrics: *gcPauseMetrics,
		UpdateTime:     Stats{Samples: make([]time.Duration, 0)},
	}
	runtime.ReadMemStats(&report.MemStatsStart)

	log.Info().Dur("duration", *duration).Msg("running simulation")
	ctx, cancel := context.WithTimeout(context.Background(), *duration)
	defer cancel()

	startTime := time.Now()
	var totalUpdates int64
	lastFrameTime := time.Now()

loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		default:
			deltaTime := time.Since(lastFrameTime)
			lastFrameTime = time.Now()

			updateStart := time.Now()
			scheduler.Once(float64(deltaTime) / float64(time.Second))
			updateDuration := time.Since(updateStart)

			report.UpdateTime.Samples = append(report.UpdateTime.Samples, updateDuration)
			totalUpdates++
		}
	}

	report.TotalTime = time.Since(startTime)
	report.TotalUpdates = totalUpdates
	report.UpdateTime.Finalize()
	runtime.ReadMemStats(&report.MemStatsEnd)
	report.Archetypes = sortArchetypesByOrdinal(world.Stats())
	report.Scheduler = scheduler.GetStats()

	log.Info().
		Int64("updates", totalUpdates).
		Int("archetypes", world.ArchetypeCount()).
		Msg("simulation finished")

	fmt.Println("\n--- Hive Stress Test Report ---")
	if err := report.Generate(os.Stdout); err != nil {
		log.Fatal().Err(err).Msg("failed to generate report")
	}
	fmt.Println("--- End of Report ---")
}
