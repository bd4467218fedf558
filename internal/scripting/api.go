package scripting

import (
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/l1jgo/tickecs/internal/core/ecs"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// entity resolves argument n to a handle valid for mutation this tick.
func (e *Engine) entity(L *lua.LState, n int) *ecs.Entity {
	id := float64(L.CheckNumber(n))
	if id < 0 || id > math.MaxUint32 || id != math.Trunc(id) {
		L.ArgError(n, "entity id out of range")
		return nil
	}
	en, err := e.world.Entity(ecs.EntityID(id))
	if err != nil {
		L.RaiseError("%v", err)
		return nil
	}
	return en
}

func (e *Engine) componentType(L *lua.LState, n int) ecs.ComponentType {
	t, err := e.resolve(L.CheckString(n))
	if err != nil {
		L.ArgError(n, err.Error())
	}
	return t
}

// ecs.get(id, type, field) -> value
func (e *Engine) luaGet(L *lua.LState) int {
	en := e.entity(L, 1)
	c, err := en.GetComponent(e.componentType(L, 2))
	if err != nil {
		L.RaiseError("%v", err)
		return 0
	}
	f, err := field(c, L.CheckString(3))
	if err != nil {
		L.RaiseError("%v", err)
		return 0
	}
	v, err := toLua(f)
	if err != nil {
		L.RaiseError("%v", err)
		return 0
	}
	L.Push(v)
	return 1
}

// ecs.set(id, type, field, value)
func (e *Engine) luaSet(L *lua.LState) int {
	en := e.entity(L, 1)
	c, err := en.GetMutableComponent(e.componentType(L, 2))
	if err != nil {
		L.RaiseError("%v", err)
		return 0
	}
	f, err := field(c, L.CheckString(3))
	if err != nil {
		L.RaiseError("%v", err)
		return 0
	}
	if err := fromLua(L.CheckAny(4), f); err != nil {
		L.RaiseError("%v", err)
	}
	return 0
}

// ecs.has(id, type) -> bool
func (e *Engine) luaHas(L *lua.LState) int {
	en := e.entity(L, 1)
	L.Push(lua.LBool(en.HasComponent(e.componentType(L, 2))))
	return 1
}

// ecs.remove(id, type)
func (e *Engine) luaRemove(L *lua.LState) int {
	en := e.entity(L, 1)
	if err := en.RemoveComponent(e.componentType(L, 2)); err != nil {
		L.RaiseError("%v", err)
	}
	return 0
}

// ecs.delete(id)
func (e *Engine) luaDelete(L *lua.LState) int {
	if err := e.entity(L, 1).Delete(); err != nil {
		L.RaiseError("%v", err)
	}
	return 0
}

// ecs.log(msg)
func (e *Engine) luaLog(L *lua.LState) int {
	e.log.Info("lua", zap.String("msg", L.CheckString(1)))
	return 0
}

// field finds the exported struct field of c's payload matching name,
// ignoring case.
func field(c *ecs.Component, name string) (reflect.Value, error) {
	v := reflect.ValueOf(c.Value()).Elem()
	if v.Kind() != reflect.Struct {
		return reflect.Value{}, fmt.Errorf("component %s has no fields", c.Type().Name())
	}
	f := v.FieldByNameFunc(func(n string) bool { return strings.EqualFold(n, name) })
	if !f.IsValid() || !f.CanSet() {
		return reflect.Value{}, fmt.Errorf("component %s has no field %q", c.Type().Name(), name)
	}
	return f, nil
}

func toLua(f reflect.Value) (lua.LValue, error) {
	switch f.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return lua.LNumber(f.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return lua.LNumber(f.Uint()), nil
	case reflect.Float32, reflect.Float64:
		return lua.LNumber(f.Float()), nil
	case reflect.String:
		return lua.LString(f.String()), nil
	case reflect.Bool:
		return lua.LBool(f.Bool()), nil
	}
	return lua.LNil, fmt.Errorf("field of kind %s is not scriptable", f.Kind())
}

func fromLua(lv lua.LValue, f reflect.Value) error {
	switch f.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := integral(lv)
		if err != nil {
			return err
		}
		if n < math.MinInt64 || n >= 1<<63 || f.OverflowInt(int64(n)) {
			return fmt.Errorf("%v overflows %s", n, f.Kind())
		}
		f.SetInt(int64(n))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := integral(lv)
		if err != nil {
			return err
		}
		if n < 0 || n >= 1<<64 || f.OverflowUint(uint64(n)) {
			return fmt.Errorf("%v overflows %s", n, f.Kind())
		}
		f.SetUint(uint64(n))
	case reflect.Float32, reflect.Float64:
		n, ok := lv.(lua.LNumber)
		if !ok {
			return fmt.Errorf("expected number, got %s", lv.Type())
		}
		if f.OverflowFloat(float64(n)) {
			return fmt.Errorf("%v overflows %s", n, f.Kind())
		}
		f.SetFloat(float64(n))
	case reflect.String:
		s, ok := lv.(lua.LString)
		if !ok {
			return fmt.Errorf("expected string, got %s", lv.Type())
		}
		f.SetString(string(s))
	case reflect.Bool:
		b, ok := lv.(lua.LBool)
		if !ok {
			return fmt.Errorf("expected boolean, got %s", lv.Type())
		}
		f.SetBool(bool(b))
	default:
		return fmt.Errorf("field of kind %s is not scriptable", f.Kind())
	}
	return nil
}

// integral unwraps a Lua number that must hold a whole value.
func integral(lv lua.LValue) (float64, error) {
	n, ok := lv.(lua.LNumber)
	if !ok {
		return 0, fmt.Errorf("expected number, got %s", lv.Type())
	}
	v := float64(n)
	if v != math.Trunc(v) {
		return 0, fmt.Errorf("expected integer, got %v", v)
	}
	return v, nil
}
