package ecs_test

import (
	"fmt"

	"github.com/ashfall-games/hiveworld/ecs"
)

// ExampleEntityRef demonstrates the direct entity<T...>(handle) operation:
// unlike View.Get, which reports a missing component by returning nil,
// EntityRef panics, since callers of this form are asserting they already
// know the entity's shape.
func ExampleEntityRef() {
	w := ecs.NewWorld(ecs.NewDynamicRegistry(ecs.DefaultDynamicCapacity))
	e := w.Insert(Position{X: 5, Y: 6}, Velocity{DX: 1, DY: 1})

	ref := ecs.EntityRef[moving](w, e)
	fmt.Printf("Entity at (%.0f, %.0f)\n", ref.Pos.X, ref.Pos.Y)

	func() {
		defer func() {
			if r := recover(); r != nil {
				fmt.Println("missing component:", r)
			}
		}()
		withoutVelocity := w.Insert(Position{X: 0, Y: 0})
		ecs.EntityRef[moving](w, withoutVelocity)
	}()

	// Output:
	// Entity at (5, 6)
	// missing component: ecs: MissingComponents: archetype does not carry every component entity<T...> requires
}
