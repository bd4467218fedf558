package system

import (
	"context"

	"github.com/l1jgo/tickecs/internal/component"
	"github.com/l1jgo/tickecs/internal/core/ecs"
	coresys "github.com/l1jgo/tickecs/internal/core/system"
	"go.uber.org/zap"
)

// ExpirySystem counts Lifetime down each tick and deletes entities whose
// lifetime ran out. Deleted entities stay visible to REMOVED queries for one
// tick, which is what RemovalLogSystem reads.
type ExpirySystem struct {
	log *zap.Logger
}

func NewExpirySystem(log *zap.Logger) *ExpirySystem {
	return &ExpirySystem{log: log}
}

func (s *ExpirySystem) Name() string { return "expiry" }

func (s *ExpirySystem) Schema() coresys.Schema {
	return coresys.Schema{
		"mortal": ecs.Include(ecs.TypeOf[component.Lifetime]()),
	}
}

func (s *ExpirySystem) Execute(_ context.Context, tick coresys.Tick) error {
	for _, e := range tick.Queries.Get("mortal") {
		lt, err := ecs.GetMut[component.Lifetime](e)
		if err != nil {
			return err
		}
		lt.Ticks--
		if lt.Ticks > 0 {
			continue
		}
		if err := e.Delete(); err != nil {
			return err
		}
		s.log.Debug("entity expired", zap.Uint32("entity", uint32(e.ID())))
	}
	return nil
}
