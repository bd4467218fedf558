package ecs

import "testing"

type position struct{ X, Y int }

type dimensions struct{ Width, Height int }

type sprite struct{ Image string }

func (sprite) Default() sprite { return sprite{Image: "blank.png"} }

type unregistered struct{}

var (
	posT    = TypeOf[position]()
	dimT    = TypeOf[dimensions]()
	spriteT = TypeOf[sprite]()
	noneT   = TypeOf[unregistered]()
)

// spawn allocates an entity and attaches the given components.
func spawn(t *testing.T, s *Store, components ...*Component) *Entity {
	t.Helper()
	id, err := s.Allocate()
	if err != nil {
		t.Fatalf("allocate: %v", err)
	}
	for _, c := range components {
		if err := s.Attach(id, c); err != nil {
			t.Fatalf("attach %s: %v", c.Type(), err)
		}
	}
	e, err := s.Handle(id)
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	return e
}

func assertColumnsAligned(t *testing.T, s *Store) {
	t.Helper()
	for i, col := range s.columns {
		if len(col) != s.Len() {
			t.Fatalf("column %d has length %d, want %d", i, len(col), s.Len())
		}
	}
}

func ids(entities []*Entity) []EntityID {
	out := make([]EntityID, len(entities))
	for i, e := range entities {
		out[i] = e.ID()
	}
	return out
}

func equalIDs(a, b []EntityID) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
