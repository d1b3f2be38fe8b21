package host

import (
	"runtime"

	lua "github.com/yuin/gopher-lua"
)

// CleanupMemory runs a full collection pass, trims the timing history to the recent
// window and releases device caches of any device module bound in the namespace.
// It returns the number of objects freed by the pass.
func (h *Host) CleanupMemory() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	var before, after runtime.MemStats
	runtime.ReadMemStats(&before)
	runtime.GC()
	runtime.ReadMemStats(&after)

	h.tracker.Trim(h.window)

	for _, name := range h.devices {
		h.releaseDevice(name)
	}

	return int(after.Frees - before.Frees)
}

func (h *Host) releaseDevice(name string) {
	mod, ok := h.ns.Get(name).(*lua.LTable)
	if !ok {
		return
	}
	fn, ok := h.L.GetField(mod, "empty_cache").(*lua.LFunction)
	if !ok {
		return
	}

	base := h.L.GetTop()
	defer h.L.SetTop(base)
	err := h.L.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: true})
	if err != nil {
		h.logger.Warn("device cache release failed", "module", name, "err", err)
		return
	}
	h.logger.Debug("device cache released", "module", name)
}

// ResetNamespace clears the namespace, the object store and the timing history,
// then seeds the namespace again.
func (h *Host) ResetNamespace() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.ns.replace(h.L.NewTable())
	h.objects.Clear()
	h.tracker.Reset()
	h.seedLocked()
}
