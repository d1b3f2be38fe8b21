package host

import (
	"context"
	"encoding/json"
	"fmt"

	lua "github.com/yuin/gopher-lua"
)

// Module is an optional library seeded into the namespace when it loads.
// A loader that raises an error marks the module as unavailable.
type Module struct {
	Name   string
	Loader lua.LGFunction
}

// DefaultDeviceModules are namespace entries whose empty_cache function is called by CleanupMemory.
var DefaultDeviceModules = []string{"torch", "cupy", "tensor"}

var safeLibs = []struct {
	name string
	open lua.LGFunction
}{
	{lua.LoadLibName, lua.OpenPackage},
	{lua.BaseLibName, lua.OpenBase},
	{lua.TabLibName, lua.OpenTable},
	{lua.StringLibName, lua.OpenString},
	{lua.MathLibName, lua.OpenMath},
	{lua.OsLibName, lua.OpenOs},
	{lua.IoLibName, lua.OpenIo},
	{lua.CoroutineLibName, lua.OpenCoroutine},
}

func openSafeLibs(L *lua.LState) error {
	for _, lib := range safeLibs {
		err := L.CallByParam(lua.P{
			Fn:      L.NewFunction(lib.open),
			NRet:    0,
			Protect: true,
		}, lua.LString(lib.name))
		if err != nil {
			return fmt.Errorf("open %q library: %w", lib.name, err)
		}
	}
	return nil
}

// seedLocked fills an empty namespace with the interpreter globals, the object
// store functions and every optional module that loads.
func (h *Host) seedLocked() {
	L := h.L
	L.G.Global.ForEach(func(k, v lua.LValue) {
		if name, ok := k.(lua.LString); ok && name != "_G" {
			h.ns.set(string(name), v)
		}
	})
	h.seedCapture()
	h.ns.set("pairs", L.NewFunction(refIterator(h.ns.Get("pairs"), refPairs)))
	h.ns.set("ipairs", L.NewFunction(refIterator(h.ns.Get("ipairs"), refIpairs)))

	h.ns.set("store_object", L.NewFunction(func(L *lua.LState) int {
		h.objects.Put(L.CheckString(1), fromLua(L.Get(2)))
		return 0
	}))
	h.ns.set("get_object", L.NewFunction(func(L *lua.LState) int {
		v, ok := h.objects.Get(L.CheckString(1))
		if !ok {
			L.Push(lua.LNil)
			return 1
		}
		L.Push(toLua(L, v))
		return 1
	}))

	if h.funcs != nil {
		for _, name := range h.funcs.Names() {
			h.ns.set(name, L.NewFunction(h.goFunction(name)))
		}
	}

	for _, m := range h.modules {
		value, err := h.loadModule(m)
		if err != nil {
			h.logger.Debug("optional module unavailable", "module", m.Name, "err", err)
			continue
		}
		h.ns.set(m.Name, value)
	}
}

func (h *Host) loadModule(m Module) (lua.LValue, error) {
	L := h.L
	base := L.GetTop()
	defer L.SetTop(base)

	err := L.CallByParam(lua.P{
		Fn:      L.NewFunction(m.Loader),
		NRet:    1,
		Protect: true,
	}, lua.LString(m.Name))
	if err != nil {
		return nil, err
	}
	value := L.Get(-1)
	if value == lua.LNil {
		return nil, fmt.Errorf("module %q returned nothing", m.Name)
	}
	return value, nil
}

// openJSON is the loader of the built-in json module.
func openJSON(L *lua.LState) int {
	mod := L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"encode": func(L *lua.LState) int {
			data, err := json.Marshal(Export(fromLua(L.CheckAny(1))))
			if err != nil {
				L.RaiseError("json.encode: %v", err)
				return 0
			}
			L.Push(lua.LString(data))
			return 1
		},
		"decode": func(L *lua.LState) int {
			var v any
			if err := json.Unmarshal([]byte(L.CheckString(1)), &v); err != nil {
				L.RaiseError("json.decode: %v", err)
				return 0
			}
			L.Push(dataToLua(L, v))
			return 1
		},
	})
	L.Push(mod)
	return 1
}

// goFunction adapts a registered Go function. The first argument, a table or a
// wrapped Go map, carries the named arguments; its values cross by reference.
func (h *Host) goFunction(name string) lua.LGFunction {
	return func(L *lua.LState) int {
		args := make(map[string]any)
		switch first := L.Get(1).(type) {
		case *lua.LTable:
			first.ForEach(func(k, v lua.LValue) {
				if key, ok := k.(lua.LString); ok {
					args[string(key)] = fromLua(v)
				}
			})
		case *lua.LUserData:
			if m, ok := first.Value.(map[string]any); ok {
				args = m
			}
		}
		ctx := L.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		v, err := h.funcs.Execute(ctx, name, args)
		if err != nil {
			L.RaiseError("%s: %s", name, err.Error())
			return 0
		}
		L.Push(toLua(L, v))
		return 1
	}
}
