package ecs

import "fmt"

// EntityID indexes an entity's slot in every column.
type EntityID uint32

type deathEntry struct {
	id         EntityID
	generation Generation
}

// Store is the columnar component storage of one world. Every column has one
// slot per identifier ever allocated; presence is sparse, identifiers are
// dense. A Store holds no locks and must only be mutated from the owning
// world's tick loop.
type Store struct {
	registry *Registry
	columns  [][]*Component
	size     int
	limit    uint64

	pooled []bool
	queued []bool

	// deathQueue is ordered by generation: entries are only ever appended
	// with the current generation.
	deathQueue []deathEntry
	pool       []EntityID
	generation Generation
}

// idSpace is the number of identifiers an EntityID can address.
const idSpace = 1 << 32

func NewStore() *Store { return newStore(idSpace) }

// newStore builds a store that allocates at most limit identifiers.
func newStore(limit uint64) *Store {
	return &Store{
		registry:   NewRegistry(),
		columns:    make([][]*Component, 0, 16),
		limit:      limit,
		deathQueue: make([]deathEntry, 0, 64),
		pool:       make([]EntityID, 0, 256),
	}
}

func (s *Store) Registry() *Registry { return s.registry }

// Generation returns the current flush generation.
func (s *Store) Generation() Generation { return s.generation }

// PreviousGeneration returns the generation REMOVED queries look at.
func (s *Store) PreviousGeneration() Generation { return s.generation.prev() }

// Len returns the number of identifiers ever allocated.
func (s *Store) Len() int { return s.size }

// Pending returns the number of entities waiting in the death queue.
func (s *Store) Pending() int { return len(s.deathQueue) }

// Pooled returns the number of identifiers ready for reuse.
func (s *Store) Pooled() int { return len(s.pool) }

// Valid reports whether id is allocated and not in the recycling pool.
func (s *Store) Valid(id EntityID) bool {
	return int(id) < s.size && !s.pooled[id]
}

func (s *Store) check(id EntityID) error {
	if !s.Valid(id) {
		return fmt.Errorf("%w: %d", ErrInvalidEntity, id)
	}
	return nil
}

// RegisterOrGetColumn returns the column index of t, creating a column backfilled
// to the current identifier count when t is new.
func (s *Store) RegisterOrGetColumn(t ComponentType) int {
	idx, created := s.registry.register(t)
	if created {
		s.columns = append(s.columns, make([]*Component, s.size))
	}
	return idx
}

// Allocate reuses a recycled identifier when one is available, otherwise it
// extends every column by one absent slot.
func (s *Store) Allocate() (EntityID, error) {
	if n := len(s.pool); n > 0 {
		id := s.pool[n-1]
		s.pool = s.pool[:n-1]
		s.pooled[id] = false
		return id, nil
	}
	if uint64(s.size) >= s.limit {
		return 0, ErrIDSpaceExhausted
	}
	id := EntityID(s.size)
	s.size++
	for i := range s.columns {
		s.columns[i] = append(s.columns[i], nil)
	}
	s.pooled = append(s.pooled, false)
	s.queued = append(s.queued, false)
	return id, nil
}

// Attach places c in its type's column at id. A pending death for id is
// cancelled since the entity now holds a live component.
func (s *Store) Attach(id EntityID, c *Component) error {
	if err := s.check(id); err != nil {
		return err
	}
	if c == nil || c.typ.IsZero() {
		return fmt.Errorf("attach to entity %d: %w", id, ErrNilComponent)
	}
	col := s.RegisterOrGetColumn(c.typ)
	if c.bound && c.owner != id && s.holds(c.owner, col, c) {
		return fmt.Errorf("attach to entity %d: %w (owner %d)", id, ErrComponentAttached, c.owner)
	}
	c.owner, c.bound = id, true
	c.clearRemoved()
	s.columns[col][id] = c
	s.revive(id)
	return nil
}

// holds reports whether id's slot in column col is exactly c.
func (s *Store) holds(id EntityID, col int, c *Component) bool {
	return int(id) < s.size && col < len(s.columns) && s.columns[col][id] == c
}

// Detach tombstones the record of type t at id. Detaching a type that was
// never attached is a no-op.
func (s *Store) Detach(id EntityID, t ComponentType) error {
	if err := s.check(id); err != nil {
		return err
	}
	col, ok := s.registry.Lookup(t)
	if !ok {
		return nil
	}
	c := s.columns[col][id]
	if c == nil || !c.markRemoved(s.generation) {
		return nil
	}
	if s.empty(id) {
		s.enqueue(id)
	}
	return nil
}

// DeleteEntity tombstones every record at id and schedules the entity's death.
func (s *Store) DeleteEntity(id EntityID) error {
	if err := s.check(id); err != nil {
		return err
	}
	for _, col := range s.columns {
		if c := col[id]; c != nil {
			c.markRemoved(s.generation)
		}
	}
	s.enqueue(id)
	return nil
}

// Flush advances the generation and recycles every queued entity whose death
// is older than the previous generation. Entities that died during the tick
// that just ended stay visible to REMOVED queries for one more tick.
func (s *Store) Flush() []EntityID {
	s.generation = s.generation.next()

	var recycled []EntityID
	n := 0
	for _, d := range s.deathQueue {
		if s.generation.since(d.generation) < 2 {
			break
		}
		s.recycle(d.id)
		recycled = append(recycled, d.id)
		n++
	}
	if n > 0 {
		s.deathQueue = append(s.deathQueue[:0], s.deathQueue[n:]...)
	}
	return recycled
}

// Reset drops all columns, identifiers and registered types. The generation
// still advances so handles issued before the reset are stale.
func (s *Store) Reset() {
	s.registry.Reset()
	s.columns = s.columns[:0]
	s.size = 0
	s.pooled = nil
	s.queued = nil
	s.deathQueue = s.deathQueue[:0]
	s.pool = s.pool[:0]
	s.generation = s.generation.next()
}

// Handle returns a handle synchronized to the current generation.
func (s *Store) Handle(id EntityID) (*Entity, error) {
	if err := s.check(id); err != nil {
		return nil, err
	}
	return newEntity(id, s), nil
}

// record returns the slot of type t at id, or nil when t is unregistered.
func (s *Store) record(id EntityID, t ComponentType) *Component {
	col, ok := s.registry.Lookup(t)
	if !ok {
		return nil
	}
	return s.columns[col][id]
}

// empty reports whether every slot at id is absent or tombstoned.
func (s *Store) empty(id EntityID) bool {
	for _, col := range s.columns {
		if col[id].live() {
			return false
		}
	}
	return true
}

func (s *Store) enqueue(id EntityID) {
	if s.queued[id] {
		return
	}
	s.queued[id] = true
	s.deathQueue = append(s.deathQueue, deathEntry{id: id, generation: s.generation})
}

func (s *Store) revive(id EntityID) {
	if !s.queued[id] {
		return
	}
	s.queued[id] = false
	for i, d := range s.deathQueue {
		if d.id == id {
			s.deathQueue = append(s.deathQueue[:i], s.deathQueue[i+1:]...)
			return
		}
	}
}

func (s *Store) recycle(id EntityID) {
	for _, col := range s.columns {
		col[id] = nil
	}
	s.queued[id] = false
	s.pooled[id] = true
	s.pool = append(s.pool, id)
}
