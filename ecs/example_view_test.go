package ecs_test

import (
	"fmt"

	"github.com/ashfall-games/hiveworld/ecs"
)

// ExampleView demonstrates querying entities with a specific component
// combination without a Scheduler — the on-demand way to inspect a world
// from a tool or a one-off script.
func ExampleView() {
	w := ecs.NewWorld(ecs.NewDynamicRegistry(ecs.DefaultDynamicCapacity))

	player := w.Insert(
		Position{X: 10, Y: 20},
		Velocity{DX: 1, DY: 0},
		Health{Current: 100},
	)

	view := ecs.NewView[struct {
		Pos *Position
		Vel *Velocity
	}](w)

	if item := view.Get(player); item != nil {
		fmt.Printf("Player at (%.0f, %.0f) moving (%.0f, %.0f)\n",
			item.Pos.X, item.Pos.Y, item.Vel.DX, item.Vel.DY)
	}

	// Output:
	// Player at (10, 20) moving (1, 0)
}

// ExampleView_optional demonstrates a view whose Health field is optional,
// so it matches entities both with and without that component.
func ExampleView_optional() {
	w := ecs.NewWorld(ecs.NewDynamicRegistry(ecs.DefaultDynamicCapacity))

	w.Insert(Position{X: 10, Y: 10}, Velocity{DX: 1, DY: 0}, Health{Current: 50})
	w.Insert(Position{X: 30, Y: 30}, Velocity{DX: -1, DY: 0})

	view := ecs.NewView[struct {
		Pos    *Position
		Vel    *Velocity
		Health *Health `ecs:"optional"`
	}](w)

	for item := range view.Iter() {
		if item.Health != nil {
			fmt.Printf("Entity at (%.0f, %.0f) with health %d\n", item.Pos.X, item.Pos.Y, item.Health.Current)
		} else {
			fmt.Printf("Invulnerable entity at (%.0f, %.0f)\n", item.Pos.X, item.Pos.Y)
		}
	}

	// Output:
	// Entity at (10, 10) with health 50
	// Invulnerable entity at (30, 30)
}
