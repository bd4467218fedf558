package system

import (
	"context"
	"errors"
	"fmt"

	"github.com/l1jgo/tickecs/internal/core/ecs"
	"go.uber.org/zap"
)

type entry struct {
	sys         System
	name        string
	schema      Schema
	initialized bool
}

// Runner executes systems strictly one after another in registration order.
type Runner struct {
	entries []*entry
	log     *zap.Logger
}

func NewRunner(log *zap.Logger) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{
		entries: make([]*entry, 0, 16),
		log:     log,
	}
}

// Register queues s; it is initialized lazily before its first tick.
func (r *Runner) Register(s System) {
	schema := s.Schema()
	if schema == nil {
		schema = Schema{}
	}
	r.entries = append(r.entries, &entry{sys: s, name: NameOf(s), schema: schema})
}

func (r *Runner) Len() int { return len(r.entries) }

// InitPending initializes every system that has not run yet, most recently
// registered first. On error the failing system and the ones registered
// before it stay pending.
func (r *Runner) InitPending(ctx context.Context) error {
	for i := len(r.entries) - 1; i >= 0; i-- {
		en := r.entries[i]
		if en.initialized {
			continue
		}
		if in, ok := en.sys.(Initializer); ok {
			if err := in.Init(ctx); err != nil {
				return fmt.Errorf("init system %s: %w", en.name, err)
			}
		}
		en.initialized = true
		r.log.Debug("system initialized", zap.String("system", en.name))
	}
	return nil
}

// Tick rebinds each initialized system's queries and executes it.
func (r *Runner) Tick(ctx context.Context, q *ecs.QueryEngine, last, delta float64) error {
	for _, en := range r.entries {
		if !en.initialized {
			continue
		}
		queries, err := bind(q, en.schema)
		if err != nil {
			return fmt.Errorf("system %s: %w", en.name, err)
		}
		if err := en.sys.Execute(ctx, Tick{Last: last, Delta: delta, Queries: queries}); err != nil {
			return fmt.Errorf("system %s: %w", en.name, err)
		}
	}
	return nil
}

// Finalize runs every system's finalizer in registration order and joins the
// errors.
func (r *Runner) Finalize(ctx context.Context) error {
	var errs []error
	for _, en := range r.entries {
		fin, ok := en.sys.(Finalizer)
		if !ok {
			continue
		}
		if err := fin.Finalize(ctx); err != nil {
			errs = append(errs, fmt.Errorf("finalize system %s: %w", en.name, err))
			continue
		}
		r.log.Debug("system finalized", zap.String("system", en.name))
	}
	return errors.Join(errs...)
}

func bind(q *ecs.QueryEngine, schema Schema) (Queries, error) {
	out := make(Queries, len(schema))
	for slot, opts := range schema {
		entities, err := q.Run(opts)
		if err != nil {
			return nil, fmt.Errorf("query %q: %w", slot, err)
		}
		out[slot] = entities
	}
	return out, nil
}
