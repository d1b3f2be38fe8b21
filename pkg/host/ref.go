package host

import (
	"sort"

	lua "github.com/yuin/gopher-lua"
)

// refTypeName names the metatable shared by wrapped Go maps and slices.
const refTypeName = "weft.ref"

func refMetatable(L *lua.LState) *lua.LTable {
	if mt, ok := L.GetTypeMetatable(refTypeName).(*lua.LTable); ok {
		return mt
	}
	mt := L.NewTypeMetatable(refTypeName)
	L.SetFuncs(mt, map[string]lua.LGFunction{
		"__index":    refIndex,
		"__newindex": refNewIndex,
		"__len":      refLen,
		"__tostring": refString,
	})
	return mt
}

func isRef(ud *lua.LUserData) bool {
	switch ud.Value.(type) {
	case map[string]any, []any:
		return true
	}
	return false
}

// sliceIndex converts a Lua key into a 0-based index of a slice of length n.
func sliceIndex(key lua.LValue, n int) (int, bool) {
	num, ok := key.(lua.LNumber)
	if !ok {
		return 0, false
	}
	i := int(num)
	if lua.LNumber(i) != num || i < 1 || i > n {
		return 0, false
	}
	return i - 1, true
}

func refGet(L *lua.LState, ud *lua.LUserData, key lua.LValue) lua.LValue {
	switch val := ud.Value.(type) {
	case map[string]any:
		if k, ok := key.(lua.LString); ok {
			if x, found := val[string(k)]; found {
				return toLua(L, x)
			}
		}
	case []any:
		if i, ok := sliceIndex(key, len(val)); ok {
			return toLua(L, val[i])
		}
	}
	return lua.LNil
}

func refIndex(L *lua.LState) int {
	L.Push(refGet(L, L.CheckUserData(1), L.Get(2)))
	return 1
}

// refNewIndex writes through to the Go value. Assigning nil deletes a map key;
// slices cannot grow because the holder's slice header would not follow.
func refNewIndex(L *lua.LState) int {
	ud := L.CheckUserData(1)
	key, value := L.Get(2), L.Get(3)
	switch val := ud.Value.(type) {
	case map[string]any:
		k, ok := key.(lua.LString)
		if !ok {
			L.ArgError(2, "map keys must be strings")
			return 0
		}
		if value == lua.LNil {
			delete(val, string(k))
			return 0
		}
		val[string(k)] = fromLua(value)
	case []any:
		i, ok := sliceIndex(key, len(val))
		if !ok {
			L.ArgError(2, "index out of range")
			return 0
		}
		val[i] = fromLua(value)
	}
	return 0
}

func refLen(L *lua.LState) int {
	switch val := L.CheckUserData(1).Value.(type) {
	case map[string]any:
		L.Push(lua.LNumber(len(val)))
	case []any:
		L.Push(lua.LNumber(len(val)))
	default:
		L.Push(lua.LNumber(0))
	}
	return 1
}

func refString(L *lua.LState) int {
	switch L.CheckUserData(1).Value.(type) {
	case map[string]any:
		L.Push(lua.LString("map"))
	default:
		L.Push(lua.LString("list"))
	}
	return 1
}

// refIterator makes pairs/ipairs accept wrapped Go values and defers to the
// original function for everything else.
func refIterator(orig lua.LValue, iter func(*lua.LState, *lua.LUserData) int) lua.LGFunction {
	return func(L *lua.LState) int {
		if ud, ok := L.Get(1).(*lua.LUserData); ok && isRef(ud) {
			return iter(L, ud)
		}
		top := L.GetTop()
		L.Push(orig)
		for i := 1; i <= top; i++ {
			L.Push(L.Get(i))
		}
		L.Call(top, 3)
		return 3
	}
}

// refPairs visits map keys in sorted order and slices by index.
func refPairs(L *lua.LState, ud *lua.LUserData) int {
	var keys []lua.LValue
	switch val := ud.Value.(type) {
	case map[string]any:
		names := make([]string, 0, len(val))
		for k := range val {
			names = append(names, k)
		}
		sort.Strings(names)
		for _, k := range names {
			keys = append(keys, lua.LString(k))
		}
	case []any:
		for i := range val {
			keys = append(keys, lua.LNumber(i+1))
		}
	}
	return pushIterator(L, ud, keys)
}

func refIpairs(L *lua.LState, ud *lua.LUserData) int {
	var keys []lua.LValue
	if val, ok := ud.Value.([]any); ok {
		for i := range val {
			keys = append(keys, lua.LNumber(i+1))
		}
	}
	return pushIterator(L, ud, keys)
}

// pushIterator returns the generic-for triple over keys. Keys removed during
// the loop are skipped.
func pushIterator(L *lua.LState, ud *lua.LUserData, keys []lua.LValue) int {
	next := 0
	L.Push(L.NewFunction(func(L *lua.LState) int {
		for next < len(keys) {
			k := keys[next]
			next++
			v := refGet(L, ud, k)
			if v == lua.LNil {
				if _, isMap := ud.Value.(map[string]any); isMap {
					continue
				}
			}
			L.Push(k)
			L.Push(v)
			return 2
		}
		L.Push(lua.LNil)
		return 1
	}))
	L.Push(ud)
	L.Push(lua.LNil)
	return 3
}
