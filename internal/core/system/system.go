package system

import (
	"context"
	"fmt"

	"github.com/l1jgo/tickecs/internal/core/ecs"
)

// Schema maps query slot names to the query rebound into that slot each tick.
type Schema map[string]ecs.QueryOptions

// Queries holds one tick's results for every slot of a Schema.
type Queries map[string][]*ecs.Entity

// Get returns the entities bound to slot, or nil for an unknown slot.
func (q Queries) Get(slot string) []*ecs.Entity { return q[slot] }

// Tick is what a system receives on every execution.
type Tick struct {
	Last    float64
	Delta   float64
	Queries Queries
}

// System is the interface every behaviour unit implements. Schema is read once,
// at registration. Execute may block; the runner waits for it to return before
// moving to the next system.
type System interface {
	Schema() Schema
	Execute(ctx context.Context, tick Tick) error
}

// Initializer is run once before a system's first execution.
type Initializer interface {
	Init(ctx context.Context) error
}

// Finalizer is run once when the world terminates.
type Finalizer interface {
	Finalize(ctx context.Context) error
}

// Namer lets a system choose the name used in logs and errors.
type Namer interface {
	Name() string
}

// NameOf returns s's Name, or its dynamic type.
func NameOf(s System) string {
	if n, ok := s.(Namer); ok {
		return n.Name()
	}
	return fmt.Sprintf("%T", s)
}

// Func adapts a closure into a System.
type Func struct {
	Label   string
	Queries Schema
	Fn      func(ctx context.Context, tick Tick) error
}

func (f *Func) Schema() Schema { return f.Queries }

func (f *Func) Execute(ctx context.Context, tick Tick) error { return f.Fn(ctx, tick) }

func (f *Func) Name() string {
	if f.Label == "" {
		return "func"
	}
	return f.Label
}
