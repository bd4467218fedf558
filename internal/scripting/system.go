package scripting

import (
	"context"
	"fmt"

	"github.com/l1jgo/tickecs/internal/core/ecs"
	coresys "github.com/l1jgo/tickecs/internal/core/system"
	lua "github.com/yuin/gopher-lua"
)

// ScriptSystem is a behaviour unit defined by a Lua table:
//
//	return {
//	  name = "drift",
//	  schema = { moving = { include = {"Position"}, exclude = {"Velocity"} } },
//	  init = function() end,
//	  execute = function(tick) end,
//	  finalize = function() end,
//	}
//
// execute receives tick.last, tick.delta and tick.queries (slot -> array of
// entity ids).
type ScriptSystem struct {
	engine   *Engine
	name     string
	schema   coresys.Schema
	execute  *lua.LFunction
	init     *lua.LFunction
	finalize *lua.LFunction
}

func (e *Engine) compile(tbl *lua.LTable, fallback string) (*ScriptSystem, error) {
	s := &ScriptSystem{engine: e, name: fallback, schema: coresys.Schema{}}
	if n, ok := tbl.RawGetString("name").(lua.LString); ok && n != "" {
		s.name = string(n)
	}

	var ok bool
	if s.execute, ok = tbl.RawGetString("execute").(*lua.LFunction); !ok {
		return nil, fmt.Errorf("system %s: execute must be a function", s.name)
	}
	s.init, _ = tbl.RawGetString("init").(*lua.LFunction)
	s.finalize, _ = tbl.RawGetString("finalize").(*lua.LFunction)

	switch schema := tbl.RawGetString("schema").(type) {
	case *lua.LNilType:
	case *lua.LTable:
		var err error
		schema.ForEach(func(k, v lua.LValue) {
			if err != nil {
				return
			}
			slot := k.String()
			opts, ok := v.(*lua.LTable)
			if !ok {
				err = fmt.Errorf("system %s: query %q must be a table", s.name, slot)
				return
			}
			s.schema[slot], err = e.queryOptions(opts)
			if err != nil {
				err = fmt.Errorf("system %s: query %q: %w", s.name, slot, err)
			}
		})
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("system %s: schema must be a table", s.name)
	}
	return s, nil
}

func (e *Engine) queryOptions(tbl *lua.LTable) (ecs.QueryOptions, error) {
	var opts ecs.QueryOptions
	var err error
	if opts.Include, err = e.typeList(tbl.RawGetString("include")); err != nil {
		return opts, fmt.Errorf("include: %w", err)
	}
	if opts.Exclude, err = e.typeList(tbl.RawGetString("exclude")); err != nil {
		return opts, fmt.Errorf("exclude: %w", err)
	}
	mode := ""
	if m, ok := tbl.RawGetString("mode").(lua.LString); ok {
		mode = string(m)
	}
	if opts.Mode, err = ecs.ParseQueryMode(mode); err != nil {
		return opts, err
	}
	return opts, nil
}

func (e *Engine) typeList(v lua.LValue) ([]ecs.ComponentType, error) {
	if v == lua.LNil {
		return nil, nil
	}
	tbl, ok := v.(*lua.LTable)
	if !ok {
		return nil, fmt.Errorf("expected a list of component names")
	}
	out := make([]ecs.ComponentType, 0, tbl.Len())
	for i := 1; i <= tbl.Len(); i++ {
		t, err := e.resolve(tbl.RawGetInt(i).String())
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func (s *ScriptSystem) Name() string { return s.name }

func (s *ScriptSystem) Schema() coresys.Schema { return s.schema }

func (s *ScriptSystem) Init(context.Context) error {
	return s.call(s.init)
}

func (s *ScriptSystem) Execute(_ context.Context, tick coresys.Tick) error {
	vm := s.engine.vm
	t := vm.NewTable()
	t.RawSetString("last", lua.LNumber(tick.Last))
	t.RawSetString("delta", lua.LNumber(tick.Delta))
	queries := vm.NewTable()
	for slot, entities := range tick.Queries {
		ids := vm.CreateTable(len(entities), 0)
		for _, en := range entities {
			ids.Append(lua.LNumber(en.ID()))
		}
		queries.RawSetString(slot, ids)
	}
	t.RawSetString("queries", queries)
	return s.call(s.execute, t)
}

func (s *ScriptSystem) Finalize(context.Context) error {
	return s.call(s.finalize)
}

func (s *ScriptSystem) call(fn *lua.LFunction, args ...lua.LValue) error {
	if fn == nil {
		return nil
	}
	return s.engine.vm.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: true}, args...)
}
