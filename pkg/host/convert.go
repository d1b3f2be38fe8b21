package host

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"
)

// maxExportDepth bounds Export on self-referencing tables.
const maxExportDepth = 32

// toLua converts a Go value for use inside the interpreter.
// Scalars are converted by value. Every other Go value is wrapped in userdata so
// it keeps its identity; map[string]any and []any wrappers can be indexed,
// assigned and measured from Lua, and writes land in the Go value.
func toLua(L *lua.LState, v any) lua.LValue {
	switch val := v.(type) {
	case nil:
		return lua.LNil
	case lua.LValue:
		return val
	case bool:
		return lua.LBool(val)
	case string:
		return lua.LString(val)
	case int:
		return lua.LNumber(val)
	case int8:
		return lua.LNumber(val)
	case int16:
		return lua.LNumber(val)
	case int32:
		return lua.LNumber(val)
	case int64:
		return lua.LNumber(val)
	case uint:
		return lua.LNumber(val)
	case uint8:
		return lua.LNumber(val)
	case uint16:
		return lua.LNumber(val)
	case uint32:
		return lua.LNumber(val)
	case uint64:
		return lua.LNumber(val)
	case float32:
		return lua.LNumber(val)
	case float64:
		return lua.LNumber(val)
	case map[string]any, []any:
		ud := L.NewUserData()
		ud.Value = v
		ud.Metatable = refMetatable(L)
		return ud
	default:
		ud := L.NewUserData()
		ud.Value = v
		return ud
	}
}

// dataToLua builds fresh tables for data the host creates itself, such as
// decoded JSON, where there is no Go holder to share with.
func dataToLua(L *lua.LState, v any) lua.LValue {
	switch val := v.(type) {
	case map[string]any:
		tbl := L.NewTable()
		for k, x := range val {
			tbl.RawSetString(k, dataToLua(L, x))
		}
		return tbl
	case []any:
		tbl := L.NewTable()
		for i, x := range val {
			tbl.RawSetInt(i+1, dataToLua(L, x))
		}
		return tbl
	default:
		return toLua(L, v)
	}
}

// Elements returns the positional elements of a Lua array table without copying
// them: tables and userdata stay references, scalars become Go values.
// A table with non-sequence keys, or an empty one, is not a sequence.
func Elements(v any) ([]any, bool) {
	tbl, ok := v.(*lua.LTable)
	if !ok {
		return nil, false
	}
	n := tbl.MaxN()
	if n == 0 {
		return nil, false
	}
	count := 0
	tbl.ForEach(func(_, _ lua.LValue) { count++ })
	if count != n {
		return nil, false
	}
	out := make([]any, n)
	for i := 1; i <= n; i++ {
		out[i-1] = fromLua(tbl.RawGetInt(i))
	}
	return out, true
}

// fromLua converts an interpreter value for use in Go.
// Tables and functions stay as references; userdata is unwrapped to the Go value it carries.
func fromLua(v lua.LValue) any {
	switch val := v.(type) {
	case *lua.LNilType:
		return nil
	case lua.LBool:
		return bool(val)
	case lua.LNumber:
		return float64(val)
	case lua.LString:
		return string(val)
	case *lua.LUserData:
		return val.Value
	default:
		return v
	}
}

// Export deep-converts a value produced by a node into plain Go data
// (maps, slices, scalars) suitable for JSON encoding. It copies; use it for
// presentation only, never to pass values between nodes.
func Export(v any) any {
	return export(v, 0)
}

func export(v any, depth int) any {
	if depth > maxExportDepth {
		return "<max depth>"
	}
	switch val := v.(type) {
	case *lua.LTable:
		return exportTable(val, depth)
	case *lua.LFunction:
		return val.String()
	case *lua.LUserData:
		return export(val.Value, depth+1)
	case lua.LValue:
		if conv := fromLua(val); conv != v {
			return conv
		}
		return val.String()
	case []any:
		out := make([]any, len(val))
		for i, x := range val {
			out[i] = export(x, depth+1)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, x := range val {
			out[k] = export(x, depth+1)
		}
		return out
	default:
		return v
	}
}

func exportTable(tbl *lua.LTable, depth int) any {
	count := 0
	tbl.ForEach(func(_, _ lua.LValue) { count++ })

	if n := tbl.MaxN(); n > 0 && n == count {
		out := make([]any, n)
		for i := 1; i <= n; i++ {
			out[i-1] = export(fromLua(tbl.RawGetInt(i)), depth+1)
		}
		return out
	}

	out := make(map[string]any, count)
	tbl.ForEach(func(k, x lua.LValue) {
		out[keyString(k)] = export(fromLua(x), depth+1)
	})
	return out
}

func keyString(k lua.LValue) string {
	if s, ok := k.(lua.LString); ok {
		return string(s)
	}
	return fmt.Sprint(fromLua(k))
}
