package ecs

import (
	"encoding/json"
	"fmt"
	"reflect"
)

// Generation is the flush counter. It advances once per tick and wraps at
// GenerationBound.
type Generation uint64

// GenerationBound is the wraparound bound of the flush counter (2^53-1).
const GenerationBound Generation = 1<<53 - 1

func (g Generation) next() Generation { return (g + 1) % GenerationBound }

func (g Generation) prev() Generation {
	if g == 0 {
		return GenerationBound - 1
	}
	return g - 1
}

// since returns how many flushes separate old from g, modulo the bound.
func (g Generation) since(old Generation) Generation {
	return (g + GenerationBound - old) % GenerationBound
}

// ComponentType is the opaque key of a component kind. It is derived from the
// Go type of the payload, so equally named types in different packages never
// collide and lookups compare type pointers rather than strings.
type ComponentType struct {
	t reflect.Type
}

// TypeOf returns the key for payload type T.
func TypeOf[T any]() ComponentType {
	return ComponentType{t: reflect.TypeOf((*T)(nil)).Elem()}
}

func (ct ComponentType) Name() string {
	if ct.t == nil {
		return "<nil>"
	}
	return ct.t.Name()
}

func (ct ComponentType) String() string {
	if ct.t == nil {
		return "<nil>"
	}
	return ct.t.String()
}

func (ct ComponentType) IsZero() bool { return ct.t == nil }

// Defaulter lets a payload type supply its own default value for NewDefault.
type Defaulter[T any] interface {
	Default() T
}

// Component is one record of state attached to one entity. The payload is
// always held as *T so mutable accessors hand out a stable pointer. A record
// belongs to the first entity it is attached to for as long as that entity's
// slot holds it; Attach rejects it anywhere else.
type Component struct {
	typ       ComponentType
	data      any
	changed   bool
	removed   bool
	removedAt Generation

	owner EntityID
	bound bool
}

// New wraps a copy of v in a component record.
func New[T any](v T) *Component {
	p := new(T)
	*p = v
	return &Component{typ: TypeOf[T](), data: p}
}

// NewDefault builds a record from T's Default method, or T's zero value when
// T does not implement Defaulter.
func NewDefault[T any]() *Component {
	var v T
	if d, ok := any(v).(Defaulter[T]); ok {
		v = d.Default()
	}
	return New(v)
}

// Data returns the typed payload of c.
func Data[T any](c *Component) (*T, bool) {
	if c == nil {
		return nil, false
	}
	p, ok := c.data.(*T)
	return p, ok
}

func (c *Component) Type() ComponentType { return c.typ }

// Value returns the payload pointer as an untyped value.
func (c *Component) Value() any { return c.data }

// Changed reports whether a mutable accessor touched the record since the
// last ClearChanged.
func (c *Component) Changed() bool { return c.changed }

func (c *Component) ClearChanged() { c.changed = false }

// Removed returns the generation at which removal was requested.
func (c *Component) Removed() (Generation, bool) { return c.removedAt, c.removed }

// markRemoved sets the removal marker once per alive period.
func (c *Component) markRemoved(g Generation) bool {
	if c.removed {
		return false
	}
	c.removed = true
	c.removedAt = g
	return true
}

func (c *Component) clearRemoved() {
	c.removed = false
	c.removedAt = 0
}

func (c *Component) live() bool { return c != nil && !c.removed }

func (c *Component) removedIn(g Generation) bool {
	return c != nil && c.removed && c.removedAt == g
}

func (c *Component) String() string {
	b, err := json.Marshal(c.data)
	if err != nil {
		return fmt.Sprintf("%s:%+v", c.typ.Name(), c.data)
	}
	return c.typ.Name() + ":" + string(b)
}
