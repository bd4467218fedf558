package data

import (
	"fmt"
	"sort"

	"github.com/l1jgo/tickecs/internal/component"
	"github.com/l1jgo/tickecs/internal/core/ecs"
	"gopkg.in/yaml.v3"
)

type decoder func(node *yaml.Node) (*ecs.Component, error)

// Catalog maps the component names used in data files to Go payload types.
type Catalog struct {
	decoders map[string]decoder
	types    map[string]ecs.ComponentType
}

func NewCatalog() *Catalog {
	return &Catalog{
		decoders: make(map[string]decoder, 16),
		types:    make(map[string]ecs.ComponentType, 16),
	}
}

// StandardCatalog registers the components shipped in internal/component.
func StandardCatalog() *Catalog {
	c := NewCatalog()
	Register[component.Position](c, "Position")
	Register[component.Velocity](c, "Velocity")
	Register[component.Dimensions](c, "Dimensions")
	Register[component.Sprite](c, "Sprite")
	Register[component.Lifetime](c, "Lifetime")
	return c
}

// Register makes T available under name. Decoded payloads start from T's
// default so omitted fields keep it.
func Register[T any](c *Catalog, name string) {
	c.types[name] = ecs.TypeOf[T]()
	c.decoders[name] = func(node *yaml.Node) (*ecs.Component, error) {
		comp := ecs.NewDefault[T]()
		if node == nil || node.Tag == "!!null" {
			return comp, nil
		}
		p, _ := ecs.Data[T](comp)
		if err := node.Decode(p); err != nil {
			return nil, err
		}
		return comp, nil
	}
}

// Type returns the component type registered under name.
func (c *Catalog) Type(name string) (ecs.ComponentType, bool) {
	t, ok := c.types[name]
	return t, ok
}

// Names lists registered names in sorted order.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.types))
	for n := range c.types {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Build decodes node into a fresh record of the component registered as name.
func (c *Catalog) Build(name string, node *yaml.Node) (*ecs.Component, error) {
	dec, ok := c.decoders[name]
	if !ok {
		return nil, fmt.Errorf("unknown component %q", name)
	}
	comp, err := dec(node)
	if err != nil {
		return nil, fmt.Errorf("decode component %q: %w", name, err)
	}
	return comp, nil
}
