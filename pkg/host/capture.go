package host

import (
	"io"
	"os"
	"strings"

	lua "github.com/yuin/gopher-lua"
)

// capture collects what a single call writes to its two text streams.
type capture struct {
	stdout strings.Builder
	stderr strings.Builder
}

// streams returns where text goes right now: the in-flight call's capture, or the
// process streams when no call is running.
func (h *Host) streams() (stdout, stderr io.Writer) {
	if h.out == nil {
		return os.Stdout, os.Stderr
	}
	return &h.out.stdout, &h.out.stderr
}

// seedCapture binds print, warn and an io proxy into the namespace. They resolve
// the destination on every write, so functions defined in earlier calls still
// write into the capture of the call that runs them.
func (h *Host) seedCapture() {
	L := h.L
	stdout := func() io.Writer { w, _ := h.streams(); return w }
	stderr := func() io.Writer { _, w := h.streams(); return w }

	h.ns.set("print", L.NewFunction(func(L *lua.LState) int {
		w := stdout()
		top := L.GetTop()
		for i := 1; i <= top; i++ {
			if i > 1 {
				io.WriteString(w, "\t")
			}
			io.WriteString(w, L.ToStringMeta(L.Get(i)).String())
		}
		io.WriteString(w, "\n")
		return 0
	}))

	h.ns.set("warn", L.NewFunction(func(L *lua.LState) int {
		w := stderr()
		for i := 1; i <= L.GetTop(); i++ {
			io.WriteString(w, L.ToStringMeta(L.Get(i)).String())
		}
		io.WriteString(w, "\n")
		return 0
	}))

	proxy := L.NewTable()
	proxy.RawSetString("write", streamWriter(L, stdout, false))
	proxy.RawSetString("stdout", streamFile(L, stdout))
	proxy.RawSetString("stderr", streamFile(L, stderr))
	if std := L.GetGlobal("io"); std != lua.LNil {
		mt := L.NewTable()
		mt.RawSetString("__index", std)
		L.SetMetatable(proxy, mt)
	}
	h.ns.set("io", proxy)
}

// streamFile builds a table usable as a file handle (f:write(...)).
func streamFile(L *lua.LState, w func() io.Writer) *lua.LTable {
	f := L.NewTable()
	f.RawSetString("write", streamWriter(L, w, true))
	return f
}

func streamWriter(L *lua.LState, w func() io.Writer, method bool) *lua.LFunction {
	return L.NewFunction(func(L *lua.LState) int {
		first := 1
		if method {
			first = 2
		}
		dst := w()
		for i := first; i <= L.GetTop(); i++ {
			io.WriteString(dst, lua.LVAsString(L.Get(i)))
		}
		if method {
			L.Push(L.Get(1))
			return 1
		}
		return 0
	})
}
