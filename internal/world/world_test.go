package world

import (
	"context"
	"errors"
	"testing"

	"github.com/l1jgo/tickecs/internal/core/ecs"
	"github.com/l1jgo/tickecs/internal/core/event"
	"github.com/l1jgo/tickecs/internal/core/system"
	"go.uber.org/zap/zaptest"
)

type position struct{ X, Y float64 }

type dimensions struct{ Width, Height float64 }

type sprite struct{ Image string }

var (
	posT = ecs.TypeOf[position]()
	dimT = ecs.TypeOf[dimensions]()
)

// moveSystem shifts every entity that has both a position and dimensions.
type moveSystem struct{}

func (moveSystem) Schema() system.Schema {
	return system.Schema{
		"sized":        ecs.Include(posT, dimT),
		"noDimensions": ecs.Include(posT).Without(dimT),
	}
}

func (moveSystem) Execute(_ context.Context, tick system.Tick) error {
	for _, e := range tick.Queries.Get("sized") {
		p, err := ecs.GetMut[position](e)
		if err != nil {
			return err
		}
		p.X++
		p.Y++
	}
	return nil
}

func newTestWorld(t *testing.T) *World {
	t.Helper()
	return New(WithLogger(zaptest.NewLogger(t)))
}

func mustCreate(t *testing.T, w *World, components ...*ecs.Component) *ecs.Entity {
	t.Helper()
	e, err := w.CreateEntity(components...)
	if err != nil {
		t.Fatalf("create entity: %v", err)
	}
	return e
}

func TestMoveSystemExample(t *testing.T) {
	ctx := context.Background()
	w := newTestWorld(t)
	e := mustCreate(t, w, ecs.New(position{}), ecs.New(dimensions{Width: 2, Height: 3}))
	if err := w.AddSystem(moveSystem{}); err != nil {
		t.Fatal(err)
	}

	if err := w.Execute(ctx); err != nil {
		t.Fatal(err)
	}
	p, err := ecs.Get[position](e)
	if err != nil {
		t.Fatal(err)
	}
	if *p != (position{X: 1, Y: 1}) {
		t.Fatalf("position = %+v, want {1 1}", *p)
	}

	e.Reset()
	if err := e.RemoveComponent(dimT); err != nil {
		t.Fatal(err)
	}
	if err := w.Execute(ctx); err != nil {
		t.Fatal(err)
	}

	sized, err := w.Query(ecs.Include(posT, dimT))
	if err != nil {
		t.Fatal(err)
	}
	if len(sized) != 0 {
		t.Fatalf("entity still matched after removal: %v", sized)
	}
	removed, err := w.Query(ecs.Include(dimT).Removed())
	if err != nil {
		t.Fatal(err)
	}
	if len(removed) != 1 || removed[0].ID() != e.ID() {
		t.Fatalf("removed query = %v", removed)
	}

	if err := w.Execute(ctx); err != nil {
		t.Fatal(err)
	}
	removed, _ = w.Query(ecs.Include(dimT).Removed())
	if len(removed) != 0 {
		t.Fatalf("removal reported twice: %v", removed)
	}
	// Position stopped moving once dimensions went away.
	if p.X != 1 {
		t.Fatalf("position moved without dimensions: %+v", *p)
	}
}

func TestCreateEntityOrderAndQueryOrdering(t *testing.T) {
	w := newTestWorld(t)
	a := mustCreate(t, w, ecs.New(position{}), ecs.New(dimensions{}), ecs.New(sprite{}))
	b := mustCreate(t, w, ecs.New(dimensions{1, 1}), ecs.New(position{1, 1}), ecs.New(sprite{"entity2.png"}))
	mustCreate(t, w, ecs.New(position{2, 2}), ecs.New(sprite{"entity3.png"}))

	got, err := w.Query(ecs.Include(posT, dimT))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].ID() != a.ID() || got[1].ID() != b.ID() {
		t.Fatalf("got %v", got)
	}
	s, err := ecs.Get[sprite](got[1])
	if err != nil {
		t.Fatal(err)
	}
	if s.Image != "entity2.png" {
		t.Fatalf("sprite = %q", s.Image)
	}
}

func TestCreateEntityWithoutComponents(t *testing.T) {
	w := newTestWorld(t)
	mustCreate(t, w, ecs.New(position{}))
	e := mustCreate(t, w)
	if _, err := ecs.Get[position](e); !errors.Is(err, ecs.ErrComponentNotFound) {
		t.Fatalf("got %v", err)
	}
}

func TestCreateEntityNilComponent(t *testing.T) {
	w := newTestWorld(t)
	if _, err := w.CreateEntity(ecs.New(position{}), nil); !errors.Is(err, ecs.ErrNilComponent) {
		t.Fatalf("got %v", err)
	}
	if w.Store().Pending() != 1 {
		t.Fatal("half-built entity should be scheduled for deletion")
	}
}

func TestRecyclingAcrossTicks(t *testing.T) {
	ctx := context.Background()
	w := newTestWorld(t)
	e := mustCreate(t, w, ecs.New(position{X: 7}))

	var recycled []ecs.EntityID
	event.Subscribe(w.Events(), func(ev event.EntitiesRecycled) {
		recycled = append(recycled, ev.IDs...)
	})

	if err := e.Delete(); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		if err := w.Execute(ctx); err != nil {
			t.Fatal(err)
		}
	}
	if len(recycled) != 1 || recycled[0] != e.ID() {
		t.Fatalf("recycled events = %v", recycled)
	}

	again := mustCreate(t, w)
	if again.ID() != e.ID() {
		t.Fatalf("expected id %d to be reused, got %d", e.ID(), again.ID())
	}
	if ecs.Has[position](again) {
		t.Fatal("recycled entity kept a component")
	}
}

func TestHandleGoesStaleAcrossTicks(t *testing.T) {
	ctx := context.Background()
	w := newTestWorld(t)
	e := mustCreate(t, w, ecs.New(position{}))
	if err := w.Execute(ctx); err != nil {
		t.Fatal(err)
	}
	if err := e.AddComponent(ecs.New(dimensions{})); !errors.Is(err, ecs.ErrStaleEntity) {
		t.Fatalf("got %v", err)
	}
	fresh, err := w.Query(ecs.Include(posT))
	if err != nil {
		t.Fatal(err)
	}
	if err := fresh[0].AddComponent(ecs.New(dimensions{})); err != nil {
		t.Fatalf("re-queried handle: %v", err)
	}
}

type lifecycle struct {
	name string
	log  *[]string
}

func (l *lifecycle) Name() string          { return l.name }
func (l *lifecycle) Schema() system.Schema { return nil }

func (l *lifecycle) Init(context.Context) error {
	*l.log = append(*l.log, "init:"+l.name)
	return nil
}

func (l *lifecycle) Execute(context.Context, system.Tick) error {
	*l.log = append(*l.log, "exec:"+l.name)
	return nil
}

func (l *lifecycle) Finalize(context.Context) error {
	*l.log = append(*l.log, "fin:"+l.name)
	return nil
}

func TestSystemLifecycle(t *testing.T) {
	ctx := context.Background()
	w := newTestWorld(t)
	var log []string
	for _, name := range []string{"first", "second"} {
		if err := w.AddSystem(&lifecycle{name: name, log: &log}); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Execute(ctx); err != nil {
		t.Fatal(err)
	}
	if err := w.Terminate(ctx); err != nil {
		t.Fatal(err)
	}

	want := []string{"init:second", "init:first", "exec:first", "exec:second", "fin:first", "fin:second"}
	if len(log) != len(want) {
		t.Fatalf("got %v, want %v", log, want)
	}
	for i := range want {
		if log[i] != want[i] {
			t.Fatalf("got %v, want %v", log, want)
		}
	}
}

func TestSystemErrorAbortsTick(t *testing.T) {
	ctx := context.Background()
	w := newTestWorld(t)
	boom := errors.New("boom")
	if err := w.AddSystem(&system.Func{
		Label: "failing",
		Fn:    func(context.Context, system.Tick) error { return boom },
	}); err != nil {
		t.Fatal(err)
	}
	before := w.Generation()
	if err := w.Execute(ctx); !errors.Is(err, boom) {
		t.Fatalf("got %v", err)
	}
	if w.Generation() != before || w.Ticks() != 0 {
		t.Fatal("failed tick must not flush")
	}
}

func TestExecuteTiming(t *testing.T) {
	ctx := context.Background()
	w := newTestWorld(t)
	var seen []system.Tick
	if err := w.AddSystem(&system.Func{Fn: func(_ context.Context, tick system.Tick) error {
		seen = append(seen, tick)
		return nil
	}}); err != nil {
		t.Fatal(err)
	}
	if err := w.Execute(ctx); err != nil {
		t.Fatal(err)
	}
	if err := w.ExecuteAt(ctx, 10, 0.25); err != nil {
		t.Fatal(err)
	}
	if seen[0].Last != 1 || seen[0].Delta != 1 {
		t.Fatalf("default timing = %+v", seen[0])
	}
	if seen[1].Last != 10 || seen[1].Delta != 0.25 {
		t.Fatalf("explicit timing = %+v", seen[1])
	}
}

func TestCancelledContextSkipsTick(t *testing.T) {
	w := newTestWorld(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := w.Execute(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("got %v", err)
	}
}

func TestTerminate(t *testing.T) {
	ctx := context.Background()
	w := newTestWorld(t)
	mustCreate(t, w, ecs.New(position{}))
	if err := w.Terminate(ctx); err != nil {
		t.Fatal(err)
	}
	if w.Store().Registry().Len() != 0 {
		t.Fatal("registry not cleared")
	}
	if err := w.Execute(ctx); !errors.Is(err, ErrTerminated) {
		t.Fatalf("got %v", err)
	}
	if _, err := w.CreateEntity(); !errors.Is(err, ErrTerminated) {
		t.Fatalf("got %v", err)
	}
	if err := w.Terminate(ctx); !errors.Is(err, ErrTerminated) {
		t.Fatalf("got %v", err)
	}
}

func TestTickCompletedEvent(t *testing.T) {
	ctx := context.Background()
	w := newTestWorld(t)
	var done []event.TickCompleted
	event.Subscribe(w.Events(), func(ev event.TickCompleted) { done = append(done, ev) })
	for i := 0; i < 2; i++ {
		if err := w.Execute(ctx); err != nil {
			t.Fatal(err)
		}
	}
	// The second tick's event is only delivered by a third tick.
	if len(done) != 1 || done[0].Tick != 1 {
		t.Fatalf("got %+v", done)
	}
}
