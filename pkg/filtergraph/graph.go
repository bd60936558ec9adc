package filtergraph

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/callwarden/callwarden/pkg/domain"
)

// DefaultScreeningTimeout bounds a screening session when no timeout
// provider is configured.
const DefaultScreeningTimeout = 5 * time.Second

// Config holds dependencies for creating a Graph.
type Config struct {
	// Listener receives the final verdict exactly once.
	Listener domain.VerdictListener
	// Timeouts supplies the session-wide deadline. Nil selects
	// DefaultScreeningTimeout.
	Timeouts domain.TimeoutProvider
	// Logger defaults to slog.Default when nil.
	Logger *slog.Logger
	// CheckCompletedFiltersOnTimeout selects the stricter deadline
	// fallback: fold only filters whose verdict was actually stored,
	// in registration order, instead of trusting the last optimistic
	// aggregate. Callers should prefer true.
	CheckCompletedFiltersOnTimeout bool
	// Observer receives per-filter run events, for metrics. May be nil.
	Observer Observer
}

// Observer is notified after each filter run returns. Calls arrive on
// the filter's own goroutine; implementations must be safe for
// concurrent use.
type Observer interface {
	ObserveFilterRun(call domain.Call, filter string, err error, elapsed time.Duration)
}

// Graph owns the filter set for one incoming call. Construct with New,
// register filters and chain edges, then call PerformFiltering once.
// The topology is immutable after that point.
type Graph struct {
	call     domain.Call
	listener domain.VerdictListener
	timeouts domain.TimeoutProvider
	logger   *slog.Logger
	observer Observer

	checkCompletedOnTimeout bool

	filters  []*node // registration order
	byFilter map[domain.CallFilter]*node
	start    *node
	sentinel *node

	// completions carries filter results back onto the executor
	// goroutine. Capacity covers every node, so a late completion
	// after finalization never blocks its goroutine.
	completions chan completion

	// current is the best-effort optimistic aggregate, updated on each
	// activation. Only read by the deadline path.
	current domain.Verdict

	// mu guards finished: the at-most-once finalize gate, reachable
	// from the sentinel path and the deadline path.
	mu       sync.Mutex
	finished bool

	started bool
	done    chan struct{}
	runCtx  context.Context
}

// New creates an empty screening graph for the given call.
func New(call domain.Call, cfg Config) *Graph {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Graph{
		call:                    call,
		listener:                cfg.Listener,
		timeouts:                cfg.Timeouts,
		logger:                  logger,
		observer:                cfg.Observer,
		checkCompletedOnTimeout: cfg.CheckCompletedFiltersOnTimeout,
		byFilter:                make(map[domain.CallFilter]*node),
		current:                 domain.DefaultVerdict(),
		done:                    make(chan struct{}),
	}
}

// AddFilter registers a filter. Registration order is the fold order
// used by the deadline fallback.
func (g *Graph) AddFilter(f domain.CallFilter) {
	n := newFilterNode(f)
	g.filters = append(g.filters, n)
	g.byFilter[f] = n
}

// AddEdge declares that after must wait for before's verdict, and
// receives it folded into its input. Both filters must already be
// registered. Callers are responsible for keeping the graph acyclic: a
// cycle is not detected and the session will only terminate through the
// deadline guard.
func (g *Graph) AddEdge(before, after domain.CallFilter) error {
	bn, ok := g.byFilter[before]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrFilterUnknown, before.Name())
	}
	an, ok := g.byFilter[after]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrFilterUnknown, after.Name())
	}
	addEdge(bn, an)
	return nil
}

// PerformFiltering wires the synthetic nodes, arms the deadline guard
// and starts the executor. The final verdict is delivered to the
// configured listener exactly once, from either the completion sentinel
// or the deadline guard. The context is handed to every filter run; it
// is not cancelled when the session finalizes, since outstanding runs
// are disowned rather than interrupted.
func (g *Graph) PerformFiltering(ctx context.Context) {
	if g.started {
		return
	}
	g.started = true
	g.runCtx = ctx

	g.start = newSyntheticNode("start")
	g.sentinel = newSyntheticNode("sentinel")

	// Filters may declare their own predecessors; wire those chains
	// before the synthetic edges so they come first in fold order.
	for _, n := range g.filters {
		chained, ok := n.filter.(domain.ChainedFilter)
		if !ok {
			continue
		}
		for _, pred := range chained.Predecessors() {
			pn, ok := g.byFilter[pred]
			if !ok {
				g.logger.Warn("declared predecessor not registered, edge skipped",
					"filter", n.name,
					"predecessor", pred.Name(),
				)
				continue
			}
			addEdge(pn, n)
		}
	}

	for _, n := range g.filters {
		addEdge(g.start, n)
	}
	for _, n := range g.filters {
		addEdge(n, g.sentinel)
	}
	// Keeps the sentinel reachable when no filters are registered.
	addEdge(g.start, g.sentinel)

	g.completions = make(chan completion, len(g.filters)+2)

	timeout := DefaultScreeningTimeout
	if g.timeouts != nil {
		if d := g.timeouts.CallScreeningTimeout(); d > 0 {
			timeout = d
		}
	}

	g.logger.Info("call filtering initiated",
		"call_id", g.call.ID,
		"filters", len(g.filters),
		"timeout", timeout,
	)

	g.activate(g.start)
	go g.run(timeout)
}

// Done is closed once the final verdict has been delivered.
func (g *Graph) Done() <-chan struct{} {
	return g.done
}
