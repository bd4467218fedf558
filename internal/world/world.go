package world

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/l1jgo/tickecs/internal/core/ecs"
	"github.com/l1jgo/tickecs/internal/core/event"
	"github.com/l1jgo/tickecs/internal/core/system"
	"go.uber.org/zap"
)

// ErrTerminated is returned by every operation on a terminated world.
var ErrTerminated = errors.New("world terminated")

// World owns one entity store, the query engine bound to it, the registered
// systems and an event bus. All mutation happens inside Execute, or from the
// goroutine that calls it, between ticks.
type World struct {
	id     string
	store  *ecs.Store
	query  *ecs.QueryEngine
	runner *system.Runner
	bus    *event.Bus
	log    *zap.Logger

	ticks      uint64
	terminated bool
}

type options struct {
	log           *zap.Logger
	eventCapacity int
}

// Option configures a World.
type Option func(*options)

func WithLogger(log *zap.Logger) Option {
	return func(o *options) { o.log = log }
}

// WithEventCapacity presizes the event bus buffers.
func WithEventCapacity(n int) Option {
	return func(o *options) { o.eventCapacity = n }
}

func New(opts ...Option) *World {
	o := options{log: zap.NewNop(), eventCapacity: 64}
	for _, opt := range opts {
		opt(&o)
	}
	id := uuid.NewString()
	log := o.log.With(zap.String("world", id))
	store := ecs.NewStore()
	return &World{
		id:     id,
		store:  store,
		query:  ecs.NewQueryEngine(store),
		runner: system.NewRunner(log),
		bus:    event.NewBus(o.eventCapacity),
		log:    log,
	}
}

func (w *World) ID() string                 { return w.id }
func (w *World) Store() *ecs.Store          { return w.store }
func (w *World) Events() *event.Bus         { return w.bus }
func (w *World) Generation() ecs.Generation { return w.store.Generation() }

// Ticks returns the number of completed ticks.
func (w *World) Ticks() uint64 { return w.ticks }

// CreateEntity allocates an entity and attaches components in argument order.
// If an attachment fails the entity is deleted again and the error returned.
func (w *World) CreateEntity(components ...*ecs.Component) (*ecs.Entity, error) {
	if w.terminated {
		return nil, ErrTerminated
	}
	id, err := w.store.Allocate()
	if err != nil {
		return nil, fmt.Errorf("create entity: %w", err)
	}
	for _, c := range components {
		if err := w.store.Attach(id, c); err != nil {
			_ = w.store.DeleteEntity(id)
			return nil, fmt.Errorf("create entity: %w", err)
		}
	}
	return w.store.Handle(id)
}

// Entity returns a fresh handle for id.
func (w *World) Entity(id ecs.EntityID) (*ecs.Entity, error) {
	if w.terminated {
		return nil, ErrTerminated
	}
	return w.store.Handle(id)
}

// AddSystem queues s for initialization before its first tick.
func (w *World) AddSystem(s system.System) error {
	if w.terminated {
		return ErrTerminated
	}
	w.runner.Register(s)
	w.log.Debug("system added", zap.String("system", system.NameOf(s)))
	return nil
}

// Query evaluates opts against the current store contents.
func (w *World) Query(opts ecs.QueryOptions) ([]*ecs.Entity, error) {
	if w.terminated {
		return nil, ErrTerminated
	}
	return w.query.Run(opts)
}

// Execute runs one tick with last and delta both set to 1.
func (w *World) Execute(ctx context.Context) error {
	return w.ExecuteAt(ctx, 1, 1)
}

// ExecuteAt runs one tick: it delivers last tick's events, initializes
// pending systems, executes every system in registration order and flushes
// the store. A system error aborts the tick before the flush. The context is
// only checked before the tick starts; systems may honour it themselves.
func (w *World) ExecuteAt(ctx context.Context, last, delta float64) error {
	if w.terminated {
		return ErrTerminated
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	w.bus.SwapBuffers()
	w.bus.DispatchAll()

	if err := w.runner.InitPending(ctx); err != nil {
		w.log.Error("system init failed", zap.Error(err))
		return err
	}
	if err := w.runner.Tick(ctx, w.query, last, delta); err != nil {
		w.log.Error("tick aborted", zap.Uint64("tick", w.ticks), zap.Error(err))
		return err
	}

	recycled := w.store.Flush()
	w.ticks++
	gen := w.store.Generation()
	if len(recycled) > 0 {
		event.Emit(w.bus, event.EntitiesRecycled{Generation: gen, IDs: recycled})
		w.log.Debug("entities recycled",
			zap.Int("count", len(recycled)),
			zap.Uint64("generation", uint64(gen)))
	}
	event.Emit(w.bus, event.TickCompleted{Tick: w.ticks, Generation: gen, Systems: w.runner.Len()})
	return nil
}

// Terminate finalizes every system and clears the component type registry.
// The world is unusable afterwards.
func (w *World) Terminate(ctx context.Context) error {
	if w.terminated {
		return ErrTerminated
	}
	w.terminated = true
	err := w.runner.Finalize(ctx)
	w.store.Reset()
	w.bus.Reset()
	w.log.Info("world terminated", zap.Uint64("ticks", w.ticks))
	return err
}
