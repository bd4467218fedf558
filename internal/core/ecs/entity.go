package ecs

import "fmt"

// Entity is a weak handle: an identifier plus the store it indexes into. It
// remembers the generation it was last synchronized to, and mutating calls
// fail once the store has flushed past it.
type Entity struct {
	id         EntityID
	store      *Store
	generation Generation
}

func newEntity(id EntityID, s *Store) *Entity {
	return &Entity{id: id, store: s, generation: s.generation}
}

func (e *Entity) ID() EntityID { return e.id }

// Generation returns the generation the handle was last synchronized to.
func (e *Entity) Generation() Generation { return e.generation }

// Stale reports whether the store flushed since the handle was synchronized.
func (e *Entity) Stale() bool { return e.generation != e.store.generation }

// Reset resynchronizes the handle to the store's current generation.
func (e *Entity) Reset() { e.generation = e.store.generation }

func (e *Entity) throwIfFlushed() error {
	if e.Stale() {
		return fmt.Errorf("entity %d: %w", e.id, ErrStaleEntity)
	}
	return nil
}

func (e *Entity) AddComponent(c *Component) error {
	if err := e.throwIfFlushed(); err != nil {
		return err
	}
	return e.store.Attach(e.id, c)
}

func (e *Entity) RemoveComponent(t ComponentType) error {
	if err := e.throwIfFlushed(); err != nil {
		return err
	}
	return e.store.Detach(e.id, t)
}

// Delete tombstones every component and schedules the entity for recycling.
func (e *Entity) Delete() error {
	if err := e.throwIfFlushed(); err != nil {
		return err
	}
	return e.store.DeleteEntity(e.id)
}

// HasComponent is true only for a present, non-tombstoned record.
func (e *Entity) HasComponent(t ComponentType) bool {
	if !e.store.Valid(e.id) {
		return false
	}
	return e.store.record(e.id, t).live()
}

func (e *Entity) GetComponent(t ComponentType) (*Component, error) {
	if err := e.store.check(e.id); err != nil {
		return nil, err
	}
	c := e.store.record(e.id, t)
	if !c.live() {
		return nil, fmt.Errorf("%w: %s on entity %d", ErrComponentNotFound, t.Name(), e.id)
	}
	return c, nil
}

// GetMutableComponent is GetComponent for writers: it refuses stale handles
// and marks the record changed.
func (e *Entity) GetMutableComponent(t ComponentType) (*Component, error) {
	if err := e.throwIfFlushed(); err != nil {
		return nil, err
	}
	c, err := e.GetComponent(t)
	if err != nil {
		return nil, err
	}
	c.changed = true
	return c, nil
}

func (e *Entity) String() string { return fmt.Sprintf("Entity(%d)", e.id) }

// Get returns the payload of component T on e.
func Get[T any](e *Entity) (*T, error) {
	c, err := e.GetComponent(TypeOf[T]())
	if err != nil {
		return nil, err
	}
	p, _ := Data[T](c)
	return p, nil
}

// GetMut returns the payload of component T on e and marks it changed.
func GetMut[T any](e *Entity) (*T, error) {
	c, err := e.GetMutableComponent(TypeOf[T]())
	if err != nil {
		return nil, err
	}
	p, _ := Data[T](c)
	return p, nil
}

func Has[T any](e *Entity) bool { return e.HasComponent(TypeOf[T]()) }

func Remove[T any](e *Entity) error { return e.RemoveComponent(TypeOf[T]()) }
