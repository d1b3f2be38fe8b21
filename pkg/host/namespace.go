package host

import (
	"sort"

	lua "github.com/yuin/gopher-lua"
)

// Namespace is the name table shared by every evaluation of one Host.
type Namespace struct {
	table *lua.LTable
}

func newNamespace(table *lua.LTable) *Namespace {
	return &Namespace{table: table}
}

// Get returns the value bound to name, or lua.LNil.
func (n *Namespace) Get(name string) lua.LValue {
	return n.table.RawGetString(name)
}

// Has reports whether name is bound.
func (n *Namespace) Has(name string) bool {
	return n.Get(name) != lua.LNil
}

// Names lists the bound names in sorted order.
func (n *Namespace) Names() []string {
	var names []string
	n.table.ForEach(func(k, _ lua.LValue) {
		if s, ok := k.(lua.LString); ok {
			names = append(names, string(s))
		}
	})
	sort.Strings(names)
	return names
}

// Len returns the number of bound names.
func (n *Namespace) Len() int {
	return len(n.Names())
}

func (n *Namespace) set(name string, v lua.LValue) {
	n.table.RawSetString(name, v)
}

func (n *Namespace) replace(table *lua.LTable) {
	n.table = table
}
