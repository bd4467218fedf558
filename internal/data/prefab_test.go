package data

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/l1jgo/tickecs/internal/component"
	"github.com/l1jgo/tickecs/internal/core/ecs"
	"github.com/l1jgo/tickecs/internal/world"
)

const prefabsYAML = `
- name: mover
  components:
    Position: {x: 1, y: 2}
    Velocity: {x: 0.5}
    Sprite: {layer: 3}
- name: marker
  components:
    Dimensions:
- name: empty
`

func TestParsePrefabTable(t *testing.T) {
	tbl, err := ParsePrefabTable([]byte(prefabsYAML), StandardCatalog())
	if err != nil {
		t.Fatal(err)
	}
	if tbl.Count() != 3 || !tbl.Has("mover") {
		t.Fatalf("count = %d", tbl.Count())
	}

	comps, err := tbl.Build("mover")
	if err != nil {
		t.Fatal(err)
	}
	wantOrder := []ecs.ComponentType{
		ecs.TypeOf[component.Position](),
		ecs.TypeOf[component.Velocity](),
		ecs.TypeOf[component.Sprite](),
	}
	if len(comps) != len(wantOrder) {
		t.Fatalf("got %d components", len(comps))
	}
	for i, c := range comps {
		if c.Type() != wantOrder[i] {
			t.Fatalf("component %d is %s, want %s", i, c.Type(), wantOrder[i])
		}
	}
	p, _ := ecs.Data[component.Position](comps[0])
	if *p != (component.Position{X: 1, Y: 2}) {
		t.Fatalf("position = %+v", *p)
	}
	s, _ := ecs.Data[component.Sprite](comps[2])
	if s.Layer != 3 || s.Image != "blank.png" {
		t.Fatalf("sprite should keep its default image: %+v", *s)
	}

	marker, err := tbl.Build("marker")
	if err != nil {
		t.Fatal(err)
	}
	d, _ := ecs.Data[component.Dimensions](marker[0])
	if *d != (component.Dimensions{Width: 1, Height: 1}) {
		t.Fatalf("null component should use defaults: %+v", *d)
	}
}

func TestBuildReturnsFreshRecords(t *testing.T) {
	tbl, err := ParsePrefabTable([]byte(prefabsYAML), StandardCatalog())
	if err != nil {
		t.Fatal(err)
	}
	a, _ := tbl.Build("mover")
	b, _ := tbl.Build("mover")
	if a[0] == b[0] {
		t.Fatal("prefab records are shared between builds")
	}
}

func TestParsePrefabTableErrors(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{"not a list", "name: x", "parse prefab list"},
		{"missing name", "- components: {}", "missing name"},
		{"duplicate", "- name: a\n- name: a", "duplicate"},
		{"unknown component", "- name: a\n  components:\n    Health: {}", "unknown component"},
		{"bad field", "- name: a\n  components:\n    Position: {x: fast}", "decode component"},
		{"components list", "- name: a\n  components: [Position]", "must be a mapping"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParsePrefabTable([]byte(tc.body), StandardCatalog())
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("got %v, want error containing %q", err, tc.want)
			}
		})
	}
}

func TestSpawnIntoWorld(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefabs.yaml")
	if err := os.WriteFile(path, []byte(prefabsYAML), 0o644); err != nil {
		t.Fatal(err)
	}
	tbl, err := LoadPrefabTable(path, StandardCatalog())
	if err != nil {
		t.Fatal(err)
	}
	w := world.New()
	e, err := tbl.Spawn(w, "mover")
	if err != nil {
		t.Fatal(err)
	}
	if !ecs.Has[component.Velocity](e) {
		t.Fatal("spawned entity lacks velocity")
	}
	if _, err := tbl.Spawn(w, "ghost"); err == nil {
		t.Fatal("expected unknown prefab error")
	}
}

func TestCatalogNames(t *testing.T) {
	got := strings.Join(StandardCatalog().Names(), ",")
	if got != "Dimensions,Lifetime,Position,Sprite,Velocity" {
		t.Fatalf("names = %s", got)
	}
}
