package system

import (
	"context"

	"github.com/l1jgo/tickecs/internal/component"
	"github.com/l1jgo/tickecs/internal/core/ecs"
	coresys "github.com/l1jgo/tickecs/internal/core/system"
)

// MovementSystem integrates Velocity into Position, scaled by the tick delta.
type MovementSystem struct{}

func NewMovementSystem() *MovementSystem { return &MovementSystem{} }

func (s *MovementSystem) Name() string { return "movement" }

func (s *MovementSystem) Schema() coresys.Schema {
	return coresys.Schema{
		"moving": ecs.Include(
			ecs.TypeOf[component.Position](),
			ecs.TypeOf[component.Velocity](),
		),
	}
}

func (s *MovementSystem) Execute(_ context.Context, tick coresys.Tick) error {
	for _, e := range tick.Queries.Get("moving") {
		v, err := ecs.Get[component.Velocity](e)
		if err != nil {
			return err
		}
		if v.X == 0 && v.Y == 0 {
			continue
		}
		p, err := ecs.GetMut[component.Position](e)
		if err != nil {
			return err
		}
		p.X += v.X * tick.Delta
		p.Y += v.Y * tick.Delta
	}
	return nil
}
