package filtergraph

import "github.com/callwarden/callwarden/pkg/domain"

// handleDeadline runs on the executor goroutine when the session timer
// expires before the sentinel completed. It finalizes with a fallback
// verdict, then sweeps resource releases over every registered filter,
// even when finalization raced and became a no-op, because unfinished
// filters may still hold external bindings.
func (g *Graph) handleDeadline() {
	g.mu.Lock()
	finished := g.finished
	g.mu.Unlock()

	if !finished {
		fallback := g.fallbackVerdict()
		g.logger.Warn("call filtering timed out",
			"call_id", g.call.ID,
			"reject", fallback.Reject,
			"silence", fallback.Silence,
		)
		g.finalize(fallback, true)
	}

	for _, n := range g.filters {
		if r, ok := n.filter.(domain.ReleasableFilter); ok {
			r.Release()
		}
	}
}

// fallbackVerdict computes the deadline outcome. The stricter policy
// folds only the filters that actually stored a verdict, in
// registration order, so a filter that never answered contributes
// nothing. The legacy path returns the last optimistic aggregate
// recorded at activation time.
func (g *Graph) fallbackVerdict() domain.Verdict {
	if !g.checkCompletedOnTimeout {
		return g.current
	}

	v := domain.DefaultVerdict()
	for _, n := range g.filters {
		if n.verdict != nil {
			v = v.Combine(*n.verdict)
		}
	}
	return v
}
