package scripting

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/l1jgo/tickecs/internal/core/ecs"
	"github.com/l1jgo/tickecs/internal/data"
	"github.com/l1jgo/tickecs/internal/world"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Engine wraps a single gopher-lua VM running behaviour units for one world.
// Single-goroutine access only (the world's tick loop).
type Engine struct {
	vm      *lua.LState
	world   *world.World
	catalog *data.Catalog
	log     *zap.Logger
}

// NewEngine creates a VM with the ecs module preloaded. Component names in
// scripts resolve through catalog.
func NewEngine(w *world.World, catalog *data.Catalog, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	vm := lua.NewState()
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, world: w, catalog: catalog, log: log}
	vm.SetGlobal("ecs", vm.SetFuncs(vm.NewTable(), map[string]lua.LGFunction{
		"get":    e.luaGet,
		"set":    e.luaSet,
		"has":    e.luaHas,
		"remove": e.luaRemove,
		"delete": e.luaDelete,
		"log":    e.luaLog,
	}))
	return e
}

func (e *Engine) Close() {
	e.vm.Close()
}

// LoadDir loads every .lua file in dir, in file name order, as a system.
// A missing directory yields no systems.
func (e *Engine) LoadDir(dir string) ([]*ScriptSystem, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var out []*ScriptSystem
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		s, err := e.LoadFile(path)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// LoadFile runs a script that returns a system table.
func (e *Engine) LoadFile(path string) (*ScriptSystem, error) {
	fn, err := e.vm.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	s, err := e.load(fn, name)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	e.log.Debug("loaded lua system", zap.String("file", path), zap.String("system", s.name))
	return s, nil
}

// LoadString is LoadFile for in-memory source.
func (e *Engine) LoadString(name, src string) (*ScriptSystem, error) {
	fn, err := e.vm.LoadString(src)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", name, err)
	}
	s, err := e.load(fn, name)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", name, err)
	}
	return s, nil
}

func (e *Engine) load(fn *lua.LFunction, name string) (*ScriptSystem, error) {
	if err := e.vm.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}); err != nil {
		return nil, err
	}
	ret := e.vm.Get(-1)
	e.vm.Pop(1)
	tbl, ok := ret.(*lua.LTable)
	if !ok {
		return nil, fmt.Errorf("script must return a table, got %s", ret.Type())
	}
	return e.compile(tbl, name)
}

// resolve maps a component name used by a script to its type.
func (e *Engine) resolve(name string) (ecs.ComponentType, error) {
	t, ok := e.catalog.Type(name)
	if !ok {
		return ecs.ComponentType{}, fmt.Errorf("unknown component %q", name)
	}
	return t, nil
}
