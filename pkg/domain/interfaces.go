package domain

import (
	"context"
	"time"
)

// CallFilter is one unit of incoming-call evaluation. The scheduler runs
// each filter in its own goroutine; Run must eventually return or fail.
// The input verdict is the fold of the filter's declared predecessors
// (the default verdict for filters with no predecessors).
type CallFilter interface {
	// Name identifies the filter in logs, metrics and verdict
	// attribution. Names must be unique within one graph.
	Name() string
	// Run evaluates the call and returns the filter's partial verdict.
	Run(ctx context.Context, call Call, input Verdict) (Verdict, error)
}

// ChainedFilter is a CallFilter that declares explicit predecessor
// filters. The graph wires an edge from every predecessor, so the filter
// only starts once all of them have produced a verdict, and its input is
// the fold of exactly those verdicts.
type ChainedFilter interface {
	CallFilter
	Predecessors() []CallFilter
}

// ReleasableFilter is a CallFilter holding a long-lived external
// resource (for example a bound screening service). Release is invoked
// unconditionally when the screening deadline fires, whether or not the
// filter finished.
type ReleasableFilter interface {
	CallFilter
	Release()
}

// VerdictListener receives the final screening outcome. It is invoked
// exactly once per call, either from the normal completion path
// (timedOut=false) or from the deadline path (timedOut=true).
type VerdictListener interface {
	OnFilteringComplete(call Call, verdict Verdict, timedOut bool)
}

// VerdictListenerFunc adapts a function to the VerdictListener interface.
type VerdictListenerFunc func(call Call, verdict Verdict, timedOut bool)

// OnFilteringComplete calls f.
func (f VerdictListenerFunc) OnFilteringComplete(call Call, verdict Verdict, timedOut bool) {
	f(call, verdict, timedOut)
}

// TimeoutProvider supplies the session-wide screening deadline. It is
// consulted once per call, when filtering starts.
type TimeoutProvider interface {
	CallScreeningTimeout() time.Duration
}

// ConfigService supplies screening configuration snapshots and pushes
// updates to subscribers.
type ConfigService interface {
	CurrentSnapshot() Snapshot
	Subscribe() <-chan Snapshot
	Close() error
}

// ContactStore looks up saved contacts by number.
type ContactStore interface {
	Lookup(ctx context.Context, number string) (Contact, bool, error)
}

// BlocklistStore answers whether a number is on the user's block list.
type BlocklistStore interface {
	IsBlocked(ctx context.Context, number string) (bool, error)
}
