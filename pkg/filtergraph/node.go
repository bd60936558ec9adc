package filtergraph

import (
	"context"

	"github.com/callwarden/callwarden/pkg/domain"
)

// node is a single vertex in the screening graph. It is unexported so
// callers interact with the graph through filters, never through raw
// vertices. All fields except the initial wiring are owned by the
// executor goroutine.
type node struct {
	// filter is nil for the synthetic start and sentinel nodes.
	filter domain.CallFilter
	name   string

	// predecessors and followers are append-only during wiring and
	// frozen once filtering starts. Their order determines fold order.
	predecessors []*node
	followers    []*node

	// indegree counts predecessors that have not yet stored a verdict.
	// The node activates when it reaches zero.
	indegree int

	// verdict is nil until the node's run completed successfully. A
	// failed run never stores a verdict.
	verdict *domain.Verdict
}

func newFilterNode(f domain.CallFilter) *node {
	return &node{filter: f, name: f.Name()}
}

func newSyntheticNode(name string) *node {
	return &node{name: name}
}

// run executes the node's filter. Synthetic nodes pass their input
// through unchanged.
func (n *node) run(ctx context.Context, call domain.Call, input domain.Verdict) (domain.Verdict, error) {
	if n.filter == nil {
		return input, nil
	}
	return n.filter.Run(ctx, call, input)
}

// addEdge wires before → after: after gains a predecessor and one unmet
// dependency, before gains a follower.
func addEdge(before, after *node) {
	before.followers = append(before.followers, after)
	after.predecessors = append(after.predecessors, before)
	after.indegree++
}
