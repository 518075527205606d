package ecs

// UpdateFrame is passed to every System.Execute call for one tick. Systems
// read/write world state through their own Query/Singleton/View fields and
// queue structural changes through Commands; UpdateFrame itself only carries
// the tick's timing and the shared World/Commands references.
type UpdateFrame struct {
	DeltaTime float64
	Commands  *Commands
	World     *World
}

func newUpdateFrame(dt float64, world *World) *UpdateFrame {
	return &UpdateFrame{
		DeltaTime: dt,
		Commands:  newCommands(),
		World:     world,
	}
}
