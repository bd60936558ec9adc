package filtergraph

import (
	"fmt"
	"time"

	"github.com/callwarden/callwarden/pkg/domain"
)

// completion carries one node's result back onto the executor goroutine.
type completion struct {
	n       *node
	verdict domain.Verdict
	err     error
}

// run is the executor loop. It is the only goroutine that touches graph
// bookkeeping after PerformFiltering, so indegree decrements, verdict
// storage and the sentinel check need no locking of their own. The loop
// exits after the first finalization; completions arriving later stay
// unread in the buffered channel.
func (g *Graph) run(timeout time.Duration) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		select {
		case c := <-g.completions:
			if g.handleCompletion(c) {
				return
			}
		case <-timer.C:
			g.handleDeadline()
			return
		}
	}
}

// handleCompletion stores the node's verdict, activates any follower
// whose last unmet dependency this was, and finalizes when the sentinel
// itself completes. Reports whether the loop should exit.
func (g *Graph) handleCompletion(c completion) bool {
	if c.err != nil {
		// Containment: the failure is logged and the node stays
		// pending forever. Its followers only resolve through the
		// deadline guard.
		g.logger.Error("filter run failed, branch parked until deadline",
			"call_id", g.call.ID,
			"filter", c.n.name,
			"error", c.err,
		)
		return false
	}

	g.logger.Debug("filter done",
		"call_id", g.call.ID,
		"filter", c.n.name,
		"reject", c.verdict.Reject,
		"silence", c.verdict.Silence,
	)

	v := c.verdict
	c.n.verdict = &v

	for _, f := range c.n.followers {
		f.indegree--
		if f.indegree == 0 {
			g.activate(f)
		}
	}

	if c.n == g.sentinel {
		g.finalize(c.verdict, false)
		return true
	}
	return false
}

// activate folds the predecessors' verdicts in wiring order, records the
// optimistic aggregate for the deadline path, and launches the node's
// run in its own goroutine. A node activates at most once: its indegree
// reaches zero exactly when the last predecessor stores a verdict.
func (g *Graph) activate(n *node) {
	input := domain.DefaultVerdict()
	for _, p := range n.predecessors {
		// Sequential chains fold progressively: for a --> b --> c,
		// a's verdict is merged into b's input before c ever starts.
		input = input.Combine(*p.verdict)
	}
	g.current = input

	g.logger.Debug("filter scheduled", "call_id", g.call.ID, "filter", n.name)

	go func() {
		start := time.Now()
		v, err := g.runNode(n, input)
		if g.observer != nil && n.filter != nil {
			g.observer.ObserveFilterRun(g.call, n.name, err, time.Since(start))
		}
		g.completions <- completion{n: n, verdict: v, err: err}
	}()
}

// runNode invokes the node's run operation, converting a panic into an
// ordinary filter failure so one rogue filter cannot take down the
// session.
func (g *Graph) runNode(n *node, input domain.Verdict) (v domain.Verdict, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &domain.ScreeningError{
				Filter: n.name,
				Err:    fmt.Errorf("filter panicked: %v", r),
			}
		}
	}()
	return n.run(g.runCtx, g.call, input)
}

// finalize delivers the session outcome at most once. First writer wins;
// the losing path's call is a no-op.
func (g *Graph) finalize(verdict domain.Verdict, timedOut bool) {
	g.mu.Lock()
	if g.finished {
		g.mu.Unlock()
		return
	}
	g.finished = true
	g.logger.Info("call filtering completed",
		"call_id", g.call.ID,
		"timed_out", timedOut,
		"allow", verdict.Allow,
		"reject", verdict.Reject,
		"silence", verdict.Silence,
		"reason", string(verdict.BlockReason),
		"source", verdict.SourceFilter,
	)
	if g.listener != nil {
		g.listener.OnFilteringComplete(g.call, verdict, timedOut)
	}
	g.mu.Unlock()

	close(g.done)
}
