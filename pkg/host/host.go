package host

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/weft/internal/logging"
	"github.com/aretw0/weft/pkg/domain"
	"github.com/aretw0/weft/pkg/perf"
	"github.com/aretw0/weft/pkg/registry"
	lua "github.com/yuin/gopher-lua"
)

// DefaultHistoryWindow is how many samples per node survive CleanupMemory.
const DefaultHistoryWindow = 10

// Host evaluates node fragments and keeps the definitions they bind.
// Calls are serialized; the interpreter state is never shared between goroutines.
type Host struct {
	mu      sync.Mutex
	L       *lua.LState
	ns      *Namespace
	objects *ObjectStore
	out     *capture
	tracker *perf.Tracker
	logger  *slog.Logger
	modules []Module
	funcs   *registry.Registry
	devices []string
	window  int
}

// Option configures a Host.
type Option func(*Host)

// WithLogger sets the diagnostics logger.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Host) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithModule registers an optional module tried on every namespace reset.
func WithModule(name string, loader lua.LGFunction) Option {
	return func(h *Host) {
		h.modules = append(h.modules, Module{Name: name, Loader: loader})
	}
}

// WithFunctions exposes every function of r in the namespace. A node whose entry
// function is one of them receives its arguments as a single table.
func WithFunctions(r *registry.Registry) Option {
	return func(h *Host) {
		h.funcs = r
	}
}

// WithDeviceModules replaces the names checked for empty_cache by CleanupMemory.
func WithDeviceModules(names ...string) Option {
	return func(h *Host) {
		h.devices = names
	}
}

// WithTracker shares a performance tracker with the host.
func WithTracker(t *perf.Tracker) Option {
	return func(h *Host) {
		if t != nil {
			h.tracker = t
		}
	}
}

// WithHistoryWindow sets how many samples per node CleanupMemory keeps.
func WithHistoryWindow(n int) Option {
	return func(h *Host) {
		h.window = n
	}
}

// New creates a Host with a freshly seeded namespace.
func New(opts ...Option) (*Host, error) {
	h := &Host{
		objects: NewObjectStore(),
		tracker: perf.NewTracker(perf.DefaultHistorySize),
		logger:  logging.NewNop(),
		modules: []Module{{Name: "json", Loader: openJSON}},
		devices: DefaultDeviceModules,
		window:  DefaultHistoryWindow,
	}
	for _, opt := range opts {
		opt(h)
	}

	h.L = lua.NewState(lua.Options{SkipOpenLibs: true})
	if err := openSafeLibs(h.L); err != nil {
		h.L.Close()
		return nil, err
	}
	for _, m := range h.modules {
		h.L.PreloadModule(m.Name, m.Loader)
	}

	h.ns = newNamespace(h.L.NewTable())
	h.seedLocked()
	return h, nil
}

// Close releases the interpreter.
func (h *Host) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.L.Close()
}

// Namespace exposes the persistent namespace. Do not use it while a call is in flight.
func (h *Host) Namespace() *Namespace {
	return h.ns
}

// Names lists the names bound in the persistent namespace.
func (h *Host) Names() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.ns.Names()
}

// Tracker returns the performance history.
func (h *Host) Tracker() *perf.Tracker {
	return h.tracker
}

// Objects returns the object store.
func (h *Host) Objects() *ObjectStore {
	return h.objects
}

// StoreObject keeps value under key without copying it.
func (h *Host) StoreObject(key string, value any) {
	h.objects.Put(key, value)
}

// GetObject returns the value stored under key, the same object that was stored.
func (h *Host) GetObject(key string) (any, bool) {
	return h.objects.Get(key)
}

// DeleteObject removes key from the object store.
func (h *Host) DeleteObject(key string) {
	h.objects.Delete(key)
}

// ObjectKeys lists the stored keys.
func (h *Host) ObjectKeys() []string {
	return h.objects.Keys()
}

// Performance returns timing statistics per node title.
func (h *Host) Performance() map[string]perf.Stats {
	return h.tracker.All()
}

// ExecuteNode evaluates node.Code and calls node.Function with args bound by name.
// The call duration is recorded under the node's title whether the call succeeds or not.
func (h *Host) ExecuteNode(ctx context.Context, node *domain.Node, args map[string]any) (*domain.Result, error) {
	title := node.Label()
	if node.Function == "" {
		return nil, &domain.NodeError{Title: title, Message: domain.ErrNoFunction.Error(), Err: domain.ErrNoFunction}
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if ctx != nil {
		h.L.SetContext(ctx)
		defer h.L.RemoveContext()
	}

	start := time.Now()
	res, err := h.execute(node, args)
	elapsed := time.Since(start)
	h.tracker.Record(title, elapsed)
	if err != nil {
		return nil, err
	}
	res.Duration = elapsed
	return res, nil
}

func (h *Host) execute(node *domain.Node, args map[string]any) (*domain.Result, error) {
	L := h.L
	title := node.Label()
	out := &capture{}
	h.out = out
	defer func() { h.out = nil }()
	env, injected := h.workingEnv(args)

	if err := h.evaluate(env, title, node.Code); err != nil {
		return nil, nodeError(title, err, out)
	}
	h.merge(env, injected)

	fn, ok := L.GetField(env, node.Function).(*lua.LFunction)
	if !ok {
		return nil, &domain.NodeError{
			Title:   title,
			Message: fmt.Sprintf("%s: %s", domain.ErrFunctionNotFound, node.Function),
			Stderr:  out.stderr.String(),
			Err:     domain.ErrFunctionNotFound,
		}
	}

	callArgs, err := bindArguments(L, fn, args)
	if err != nil {
		return nil, nodeError(title, err, out)
	}

	values, err := h.call(fn, callArgs)
	if err != nil {
		return nil, nodeError(title, err, out)
	}

	return &domain.Result{
		Value:  collapse(values),
		Stdout: out.stdout.String(),
		Stderr: out.stderr.String(),
	}, nil
}

// workingEnv layers the arguments over the namespace. Arguments win over namespace names.
func (h *Host) workingEnv(args map[string]any) (*lua.LTable, map[string]lua.LValue) {
	L := h.L
	env := L.NewTable()
	injected := make(map[string]lua.LValue, len(args))

	for name, v := range args {
		lv := toLua(L, v)
		env.RawSetString(name, lv)
		injected[name] = lv
	}

	mt := L.NewTable()
	mt.RawSetString("__index", h.ns.table)
	L.SetMetatable(env, mt)
	return env, injected
}

func (h *Host) evaluate(env *lua.LTable, title, code string) error {
	L := h.L
	fn, err := L.Load(strings.NewReader(code), title)
	if err != nil {
		return err
	}
	fn.Env = env

	base := L.GetTop()
	defer L.SetTop(base)
	L.Push(fn)
	return L.PCall(0, lua.MultRet, nil)
}

// merge copies every name the fragment bound into the namespace.
// Injected names are skipped unless the fragment rebound them.
func (h *Host) merge(env *lua.LTable, injected map[string]lua.LValue) {
	env.ForEach(func(k, v lua.LValue) {
		name, ok := k.(lua.LString)
		if !ok {
			return
		}
		if orig, seen := injected[string(name)]; seen && orig == v {
			return
		}
		h.ns.set(string(name), v)
	})
}

func (h *Host) call(fn *lua.LFunction, args []lua.LValue) ([]lua.LValue, error) {
	L := h.L
	base := L.GetTop()
	defer L.SetTop(base)

	L.Push(fn)
	for _, a := range args {
		L.Push(a)
	}
	if err := L.PCall(len(args), lua.MultRet, nil); err != nil {
		return nil, err
	}

	n := L.GetTop() - base
	values := make([]lua.LValue, n)
	for i := 0; i < n; i++ {
		values[i] = L.Get(base + 1 + i)
	}
	return values, nil
}

// bindArguments maps named arguments onto the function's declared parameters.
// Functions without declared parameters that accept varargs, and Go functions,
// receive one table holding every argument. Leftover names go into a trailing
// table for vararg functions and are an error otherwise.
func bindArguments(L *lua.LState, fn *lua.LFunction, args map[string]any) ([]lua.LValue, error) {
	if fn.IsG || fn.Proto == nil {
		return tableArgument(L, args), nil
	}

	params := parameterNames(fn.Proto)
	vararg := fn.Proto.IsVarArg != 0
	if len(params) == 0 && vararg {
		return tableArgument(L, args), nil
	}

	index := make(map[string]int, len(params))
	positional := make([]lua.LValue, len(params))
	for i, p := range params {
		index[p] = i
		positional[i] = lua.LNil
	}

	names := make([]string, 0, len(args))
	for name := range args {
		names = append(names, name)
	}
	sort.Strings(names)

	var extra *lua.LTable
	for _, name := range names {
		if i, ok := index[name]; ok {
			positional[i] = toLua(L, args[name])
			continue
		}
		if !vararg {
			return nil, fmt.Errorf("unexpected argument %q (parameters: %s)", name, strings.Join(params, ", "))
		}
		if extra == nil {
			extra = L.NewTable()
		}
		extra.RawSetString(name, toLua(L, args[name]))
	}
	if extra != nil {
		positional = append(positional, extra)
	}
	return positional, nil
}

func parameterNames(proto *lua.FunctionProto) []string {
	n := int(proto.NumParameters)
	names := make([]string, 0, n)
	for i := 0; i < n && i < len(proto.DbgLocals); i++ {
		names = append(names, proto.DbgLocals[i].Name)
	}
	return names
}

func tableArgument(L *lua.LState, args map[string]any) []lua.LValue {
	if len(args) == 0 {
		return nil
	}
	tbl := L.NewTable()
	for name, v := range args {
		tbl.RawSetString(name, toLua(L, v))
	}
	return []lua.LValue{tbl}
}

// collapse turns Lua return values into a Go result: nothing is nil, one value is
// itself, several values form a sequence.
func collapse(values []lua.LValue) any {
	switch len(values) {
	case 0:
		return nil
	case 1:
		return fromLua(values[0])
	default:
		out := make([]any, len(values))
		for i, v := range values {
			out[i] = fromLua(v)
		}
		return out
	}
}

func nodeError(title string, err error, out *capture) *domain.NodeError {
	msg := err.Error()
	var apiErr *lua.ApiError
	if errors.As(err, &apiErr) && apiErr.Object != nil {
		msg = apiErr.Object.String()
	}
	return &domain.NodeError{
		Title:   title,
		Message: msg,
		Stderr:  out.stderr.String(),
		Err:     err,
	}
}
