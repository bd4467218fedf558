package ecs

import (
	"fmt"
	"strings"
)

// QueryMode selects which records a query treats as matching.
type QueryMode int

const (
	// ModeCurrent matches live records.
	ModeCurrent QueryMode = iota
	// ModeRemoved matches records tombstoned during the previous tick.
	ModeRemoved
)

func (m QueryMode) String() string {
	switch m {
	case ModeCurrent:
		return "current"
	case ModeRemoved:
		return "removed"
	default:
		return fmt.Sprintf("QueryMode(%d)", int(m))
	}
}

// ParseQueryMode accepts "current", "removed" or an empty string.
func ParseQueryMode(s string) (QueryMode, error) {
	switch strings.ToLower(s) {
	case "", "current":
		return ModeCurrent, nil
	case "removed":
		return ModeRemoved, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownQueryMode, s)
}

type QueryOptions struct {
	Include []ComponentType
	Exclude []ComponentType
	Mode    QueryMode
}

// Include starts a CURRENT query over the given types.
func Include(types ...ComponentType) QueryOptions {
	return QueryOptions{Include: types}
}

// Without returns a copy of o that also excludes types.
func (o QueryOptions) Without(types ...ComponentType) QueryOptions {
	o.Exclude = append(append([]ComponentType(nil), o.Exclude...), types...)
	return o
}

// Removed returns a copy of o in REMOVED mode.
func (o QueryOptions) Removed() QueryOptions {
	o.Mode = ModeRemoved
	return o
}

// QueryEngine evaluates queries against a store. Nothing is cached: every
// Run is a full scan over allocated identifiers.
type QueryEngine struct {
	store *Store
}

func NewQueryEngine(s *Store) *QueryEngine {
	return &QueryEngine{store: s}
}

// Run returns handles, in ascending id order, for every entity matching opts.
// An include type that was never registered matches nothing; an exclude type
// that was never registered excludes nothing.
func (q *QueryEngine) Run(opts QueryOptions) ([]*Entity, error) {
	s := q.store

	var match func(*Component) bool
	switch opts.Mode {
	case ModeCurrent:
		match = (*Component).live
	case ModeRemoved:
		prev := s.generation.prev()
		match = func(c *Component) bool { return c.removedIn(prev) }
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownQueryMode, opts.Mode)
	}

	if len(s.columns) == 0 {
		return nil, nil
	}

	include := make([][]*Component, 0, len(opts.Include))
	for _, t := range opts.Include {
		col, ok := s.registry.Lookup(t)
		if !ok {
			return nil, nil
		}
		include = append(include, s.columns[col])
	}
	exclude := make([][]*Component, 0, len(opts.Exclude))
	for _, t := range opts.Exclude {
		if col, ok := s.registry.Lookup(t); ok {
			exclude = append(exclude, s.columns[col])
		}
	}

	var out []*Entity
	for i := 0; i < s.size; i++ {
		if s.pooled[i] || !matches(i, include, exclude, match) {
			continue
		}
		out = append(out, newEntity(EntityID(i), s))
	}
	return out, nil
}

func matches(id int, include, exclude [][]*Component, match func(*Component) bool) bool {
	for _, col := range include {
		if !match(col[id]) {
			return false
		}
	}
	for _, col := range exclude {
		if match(col[id]) {
			return false
		}
	}
	return true
}
