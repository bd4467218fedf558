package ecs

import "reflect"

// Registry assigns each component type a stable column index on first use.
// Indices are never reused for another type.
type Registry struct {
	index map[reflect.Type]int
	types []ComponentType
}

func NewRegistry() *Registry {
	return &Registry{
		index: make(map[reflect.Type]int, 16),
		types: make([]ComponentType, 0, 16),
	}
}

// Lookup returns the column index of t, if registered.
func (r *Registry) Lookup(t ComponentType) (int, bool) {
	idx, ok := r.index[t.t]
	return idx, ok
}

// register returns the index of t, assigning the next one if t is new.
func (r *Registry) register(t ComponentType) (int, bool) {
	if idx, ok := r.index[t.t]; ok {
		return idx, false
	}
	idx := len(r.types)
	r.index[t.t] = idx
	r.types = append(r.types, t)
	return idx, true
}

// Types lists registered types in column order.
func (r *Registry) Types() []ComponentType {
	return append([]ComponentType(nil), r.types...)
}

func (r *Registry) Len() int { return len(r.types) }

// Reset forgets every registered type.
func (r *Registry) Reset() {
	r.index = make(map[reflect.Type]int, 16)
	r.types = r.types[:0]
}
