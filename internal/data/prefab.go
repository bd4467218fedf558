package data

import (
	"fmt"
	"os"

	"github.com/l1jgo/tickecs/internal/core/ecs"
	"gopkg.in/yaml.v3"
)

// Prefab is one entity template from prefabs.yaml. Components keep their file
// order, which is the order they are attached in.
type Prefab struct {
	Name       string    `yaml:"name"`
	Components yaml.Node `yaml:"components"`
}

type componentSpec struct {
	name string
	node *yaml.Node
}

type prefabEntry struct {
	name       string
	components []componentSpec
}

// PrefabTable resolves prefab names to freshly built component records.
type PrefabTable struct {
	catalog *Catalog
	prefabs map[string]*prefabEntry
}

// Spawner is the part of a world a prefab needs.
type Spawner interface {
	CreateEntity(components ...*ecs.Component) (*ecs.Entity, error)
}

// LoadPrefabTable loads a prefab list file.
func LoadPrefabTable(path string, cat *Catalog) (*PrefabTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read prefabs %s: %w", path, err)
	}
	t, err := ParsePrefabTable(raw, cat)
	if err != nil {
		return nil, fmt.Errorf("prefabs %s: %w", path, err)
	}
	return t, nil
}

// ParsePrefabTable parses and validates a prefab list. Every component is
// decoded once so errors surface at load time rather than at spawn time.
func ParsePrefabTable(raw []byte, cat *Catalog) (*PrefabTable, error) {
	var entries []Prefab
	if err := yaml.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("parse prefab list: %w", err)
	}
	t := &PrefabTable{
		catalog: cat,
		prefabs: make(map[string]*prefabEntry, len(entries)),
	}
	for i := range entries {
		p := &entries[i]
		if p.Name == "" {
			return nil, fmt.Errorf("prefab #%d: missing name", i)
		}
		if _, dup := t.prefabs[p.Name]; dup {
			return nil, fmt.Errorf("prefab %q: duplicate name", p.Name)
		}
		entry, err := t.compile(p)
		if err != nil {
			return nil, fmt.Errorf("prefab %q: %w", p.Name, err)
		}
		t.prefabs[p.Name] = entry
	}
	return t, nil
}

func (t *PrefabTable) compile(p *Prefab) (*prefabEntry, error) {
	entry := &prefabEntry{name: p.Name}
	n := &p.Components
	if n.Kind == 0 || n.Tag == "!!null" {
		return entry, nil
	}
	if n.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("components must be a mapping (line %d)", n.Line)
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		name := n.Content[i].Value
		node := n.Content[i+1]
		if _, err := t.catalog.Build(name, node); err != nil {
			return nil, err
		}
		entry.components = append(entry.components, componentSpec{name: name, node: node})
	}
	return entry, nil
}

// Count returns the number of prefabs loaded.
func (t *PrefabTable) Count() int {
	return len(t.prefabs)
}

func (t *PrefabTable) Has(name string) bool {
	_, ok := t.prefabs[name]
	return ok
}

// Build returns new component records for the named prefab.
func (t *PrefabTable) Build(name string) ([]*ecs.Component, error) {
	entry, ok := t.prefabs[name]
	if !ok {
		return nil, fmt.Errorf("unknown prefab %q", name)
	}
	out := make([]*ecs.Component, 0, len(entry.components))
	for _, spec := range entry.components {
		c, err := t.catalog.Build(spec.name, spec.node)
		if err != nil {
			return nil, fmt.Errorf("prefab %q: %w", name, err)
		}
		out = append(out, c)
	}
	return out, nil
}

// Spawn creates one entity from the named prefab.
func (t *PrefabTable) Spawn(w Spawner, name string) (*ecs.Entity, error) {
	components, err := t.Build(name)
	if err != nil {
		return nil, err
	}
	return w.CreateEntity(components...)
}
