package system

import (
	"context"

	"github.com/l1jgo/tickecs/internal/component"
	"github.com/l1jgo/tickecs/internal/core/ecs"
	coresys "github.com/l1jgo/tickecs/internal/core/system"
	"go.uber.org/zap"
)

// RemovalLogSystem reports entities whose Lifetime was removed during the
// previous tick. Each removal is seen exactly once.
type RemovalLogSystem struct {
	log     *zap.Logger
	removed int
}

func NewRemovalLogSystem(log *zap.Logger) *RemovalLogSystem {
	return &RemovalLogSystem{log: log}
}

func (s *RemovalLogSystem) Name() string { return "removal_log" }

func (s *RemovalLogSystem) Schema() coresys.Schema {
	return coresys.Schema{
		"expired": ecs.Include(ecs.TypeOf[component.Lifetime]()).Removed(),
	}
}

func (s *RemovalLogSystem) Execute(_ context.Context, tick coresys.Tick) error {
	for _, e := range tick.Queries.Get("expired") {
		s.removed++
		s.log.Info("entity removed",
			zap.Uint32("entity", uint32(e.ID())),
			zap.Bool("deleted", !e.HasComponent(ecs.TypeOf[component.Position]())))
	}
	return nil
}

// Finalize logs the total once the world shuts down.
func (s *RemovalLogSystem) Finalize(context.Context) error {
	s.log.Info("removal log closed", zap.Int("removed", s.removed))
	return nil
}

// Removed returns how many removals were reported so far.
func (s *RemovalLogSystem) Removed() int { return s.removed }
