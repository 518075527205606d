package ecs_test

import (
	"fmt"

	"github.com/ashfall-games/hiveworld/ecs"
)

// ExampleQuery demonstrates the archetype-cached alternative to View: Execute
// walks the world's archetypes once per call and caches the matching rows,
// so a system can call Iter/Values repeatedly within the same tick without
// re-scanning the archetype list.
func ExampleQuery() {
	w := ecs.NewWorld(ecs.NewDynamicRegistry(ecs.DefaultDynamicCapacity))
	w.Insert(Position{X: 0, Y: 0}, Velocity{DX: 1, DY: 0})
	w.Insert(Position{X: 10, Y: 10}, Velocity{DX: 0, DY: 1}, Health{Current: 100})
	w.Insert(Position{X: 20, Y: 20}) // no velocity: does not match

	q := ecs.NewQuery[moving](w)
	q.Execute()

	fmt.Println("Moving entities:")
	for c := range q.Values() {
		fmt.Printf("(%.0f, %.0f) + (%.0f, %.0f)\n", c.Pos.X, c.Pos.Y, c.Vel.DX, c.Vel.DY)
	}

	// Output:
	// Moving entities:
	// (0, 0) + (1, 0)
	// (10, 10) + (0, 1)
}
