package runtime

import (
	"context"
	"fmt"
	"time"

	"github.com/aretw0/weft/pkg/domain"
)

// run is the state of one Execute call.
type run struct {
	*Coordinator
	report   *domain.Report
	budget   int
	aborted  bool
	canceled error
}

func (r *run) halted() bool {
	return r.aborted || r.canceled != nil
}

func (r *run) log(ctx context.Context, level domain.LogLevel, node, msg string) {
	r.sink.Log(ctx, domain.LogEntry{
		Time:    time.Now(),
		RunID:   r.report.RunID,
		Level:   level,
		Node:    node,
		Message: msg,
	})
}

func (r *run) resolveEnv(ctx context.Context) {
	if r.resolver == nil {
		return
	}
	path, err := r.resolver()
	if err != nil {
		r.logger.WarnContext(ctx, "environment not resolved", "run_id", r.report.RunID, "err", err)
		r.log(ctx, domain.LevelWarn, "", "Environment not resolved: "+err.Error())
		return
	}
	r.log(ctx, domain.LevelInfo, "", "Environment: "+path)
}

// visit runs n and then follows its outgoing flow depth-first.
func (r *run) visit(ctx context.Context, n *domain.Node) {
	if r.halted() {
		return
	}
	if err := ctx.Err(); err != nil {
		r.canceled = err
		return
	}

	r.report.Visits++
	if r.report.Visits > r.budget {
		r.aborted = true
		r.log(ctx, domain.LevelError, n.Label(), fmt.Sprintf("%s after %d visits", domain.ErrStepBudgetExceeded, r.budget))
		return
	}
	r.report.Trace = append(r.report.Trace, n.ID)

	if n.Reroute {
		r.passThrough(ctx, n)
		return
	}

	r.emitNode(ctx, r.hooks.OnNodeEnter, domain.EventNodeEnter, r.report.RunID, n, 0, nil)
	args := r.arguments(n)

	if n.Function == "" {
		r.report.Skipped = append(r.report.Skipped, n.ID)
		r.log(ctx, domain.LevelInfo, n.Label(), "Skipped: no function")
		r.emitNode(ctx, r.hooks.OnNodeSkip, domain.EventNodeSkip, r.report.RunID, n, 0, nil)
		r.follow(ctx, n)
		return
	}

	r.report.Calls++
	start := time.Now()
	res, err := r.executor.ExecuteNode(ctx, n, args)
	elapsed := time.Since(start)
	if err != nil {
		r.fail(ctx, n, err, elapsed)
		return
	}

	r.log(ctx, domain.LevelInfo, n.Label(), fmt.Sprintf("Called with (%s) in %s", domain.FormatArgs(args), elapsed.Round(time.Microsecond)))
	if text := res.Captured(); text != "" {
		r.log(ctx, domain.LevelInfo, n.Label(), text)
	}

	produced := Distribute(n.DataOutputs(), res.Value, r.report.Values)
	if n.PublishResult != nil {
		n.PublishResult(produced)
	}
	r.emitNode(ctx, r.hooks.OnNodeLeave, domain.EventNodeLeave, r.report.RunID, n, elapsed, nil)

	r.follow(ctx, n)
}

func (r *run) fail(ctx context.Context, n *domain.Node, err error, elapsed time.Duration) {
	if ctxErr := ctx.Err(); ctxErr != nil {
		r.canceled = ctxErr
	}
	r.report.Failures = append(r.report.Failures, domain.NodeFailure{
		NodeID: n.ID,
		Title:  n.Label(),
		Error:  err.Error(),
	})
	r.log(ctx, domain.LevelError, n.Label(), err.Error())
	r.logger.DebugContext(ctx, "node failed", "run_id", r.report.RunID, "node", n.ID, "err", err)
	r.emitNode(ctx, r.hooks.OnNodeError, domain.EventNodeError, r.report.RunID, n, elapsed, err)
}

// follow visits every node connected to one of n's execution outputs.
func (r *run) follow(ctx context.Context, n *domain.Node) {
	for _, p := range n.ExecOutputs() {
		for _, conn := range p.Connections {
			if r.halted() {
				return
			}
			r.visit(ctx, conn.To.Owner)
		}
	}
}

// passThrough copies the reroute's upstream value and continues into its consumers.
func (r *run) passThrough(ctx context.Context, n *domain.Node) {
	r.emitNode(ctx, r.hooks.OnNodeEnter, domain.EventNodeEnter, r.report.RunID, n, 0, nil)
	out := n.RerouteOut()
	if out == nil {
		return
	}
	if in := n.RerouteIn(); in != nil && in.Connected() {
		if v, ok := r.value(in.Connections[0].From, 0); ok {
			r.report.Values.Set(out, v)
		}
	}
	r.emitNode(ctx, r.hooks.OnNodeLeave, domain.EventNodeLeave, r.report.RunID, n, 0, nil)

	for _, conn := range out.Connections {
		if r.halted() {
			return
		}
		r.visit(ctx, conn.To.Owner)
	}
}

// arguments builds the call arguments of n: defaults for unconnected data inputs,
// then the value recorded for the first source of every connected one.
func (r *run) arguments(n *domain.Node) map[string]any {
	args := make(map[string]any)
	inputs := n.DataInputs()

	if n.ReadDefaults != nil {
		defaults := n.ReadDefaults()
		for _, p := range inputs {
			if p.Connected() {
				continue
			}
			if v, ok := defaults[p.Name]; ok {
				args[p.Name] = v
			}
		}
	}

	for _, p := range inputs {
		if !p.Connected() {
			continue
		}
		v, _ := r.value(p.Connections[0].From, 0)
		args[p.Name] = v
	}
	return args
}

// maxRerouteChain bounds the lookup through chained reroutes.
const maxRerouteChain = 64

// value returns what src produced in this run. A reroute output that has not been
// visited yet is resolved through its upstream chain and recorded.
func (r *run) value(src *domain.Pin, depth int) (any, bool) {
	if v, ok := r.report.Values.Get(src); ok {
		return v, true
	}
	owner := src.Owner
	if owner == nil || !owner.Reroute || depth >= maxRerouteChain {
		return nil, false
	}
	in := owner.RerouteIn()
	if in == nil || !in.Connected() {
		return nil, false
	}
	v, ok := r.value(in.Connections[0].From, depth+1)
	if ok {
		r.report.Values.Set(src, v)
	}
	return v, ok
}
