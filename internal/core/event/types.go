package event

import "github.com/l1jgo/tickecs/internal/core/ecs"

// EntitiesRecycled is emitted after a flush returned identifiers to the pool.
type EntitiesRecycled struct {
	Generation ecs.Generation
	IDs        []ecs.EntityID
}

// TickCompleted is emitted once every system ran and the store flushed.
type TickCompleted struct {
	Tick       uint64
	Generation ecs.Generation
	Systems    int
}
