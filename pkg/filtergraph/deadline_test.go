package filtergraph

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/callwarden/callwarden/pkg/domain"
)

func TestFailedFilterStallsBranchUntilDeadline(t *testing.T) {
	rec := &resultRecorder{}
	g := newTestGraph(t, rec, 100*time.Millisecond)

	failing := &stubFilter{name: "failing", err: errors.New("lookup exploded")}
	rejecting := rejectStub("rejecting", domain.ReasonBlockedNumber)
	// Chained behind the failing filter: must never activate.
	downstream := allowStub("downstream")
	downstream.preds = []domain.CallFilter{failing}

	g.AddFilter(failing)
	g.AddFilter(rejecting)
	g.AddFilter(downstream)

	g.PerformFiltering(context.Background())
	waitDone(t, g)

	calls, verdict, timedOut := rec.snapshot()
	require.Equal(t, 1, calls)
	assert.True(t, timedOut, "a failed filter resolves only through the deadline")
	assert.True(t, verdict.Reject, "completed filters still contribute")
	assert.Equal(t, int32(0), downstream.runs.Load(), "successors of a failed filter never activate")
}

func TestPanickingFilterIsContained(t *testing.T) {
	rec := &resultRecorder{}
	g := newTestGraph(t, rec, 100*time.Millisecond)

	panicking := &stubFilter{name: "panicking"}
	boom := &panicFilter{}
	g.AddFilter(boom)
	g.AddFilter(panicking)

	g.PerformFiltering(context.Background())
	waitDone(t, g)

	calls, _, timedOut := rec.snapshot()
	assert.Equal(t, 1, calls)
	assert.True(t, timedOut)
}

type panicFilter struct{}

func (p *panicFilter) Name() string { return "boom" }

func (p *panicFilter) Run(context.Context, domain.Call, domain.Verdict) (domain.Verdict, error) {
	panic("filter bug")
}

func TestSlowFilterTimeoutFoldsOnlyCompletedFilters(t *testing.T) {
	rec := &resultRecorder{}
	g := newTestGraph(t, rec, 100*time.Millisecond)

	unblock := make(chan struct{})
	t.Cleanup(func() { close(unblock) })

	slow := &stubFilter{name: "slow", blockUntil: unblock, verdict: domain.Verdict{
		Reject: true, BlockReason: domain.ReasonScreeningService, SourceFilter: "slow",
	}}
	silencing := &stubFilter{name: "silencing", verdict: domain.Verdict{
		Allow: true, Silence: true, AddToCallLog: true,
		BlockReason: domain.ReasonScreeningPolicy, SourceFilter: "silencing",
	}}

	g.AddFilter(slow)
	g.AddFilter(silencing)

	g.PerformFiltering(context.Background())
	waitDone(t, g)

	calls, verdict, timedOut := rec.snapshot()
	require.Equal(t, 1, calls)
	assert.True(t, timedOut)
	assert.True(t, verdict.Silence, "the completed filter's verdict is credited")
	assert.False(t, verdict.Reject, "the pending filter's verdict is not")
	assert.Equal(t, int32(1), slow.releases.Load(), "the slow filter's resource hook fires exactly once")
}

func TestDeadlineSweepReleasesEveryRegisteredFilter(t *testing.T) {
	rec := &resultRecorder{}
	g := newTestGraph(t, rec, 50*time.Millisecond)

	unblock := make(chan struct{})
	t.Cleanup(func() { close(unblock) })

	done := allowStub("done")
	stuck := &stubFilter{name: "stuck", blockUntil: unblock, verdict: domain.DefaultVerdict()}

	g.AddFilter(done)
	g.AddFilter(stuck)

	g.PerformFiltering(context.Background())
	waitDone(t, g)

	// The sweep is unconditional over all registered filters, finished
	// or not.
	assert.Equal(t, int32(1), done.releases.Load())
	assert.Equal(t, int32(1), stuck.releases.Load())
}

func TestOptimisticFallbackMissesCompletedVerdicts(t *testing.T) {
	// With the stricter policy disabled the deadline trusts the last
	// activation aggregate, which for an all-independent frontier is
	// still the default verdict. The completed filter's silence is
	// lost. This pins the legacy behavior behind the flag.
	unblock := make(chan struct{})
	t.Cleanup(func() { close(unblock) })

	silencing := &stubFilter{name: "silencing", verdict: domain.Verdict{
		Allow: true, Silence: true, AddToCallLog: true, SourceFilter: "silencing",
	}}
	stuck := &stubFilter{name: "stuck", blockUntil: unblock}

	run := func(strict bool) domain.Verdict {
		rec := &resultRecorder{}
		g := New(domain.NewIncomingCall("+15550100", ""), Config{
			Listener:                       rec,
			Timeouts:                       fixedTimeout(80 * time.Millisecond),
			CheckCompletedFiltersOnTimeout: strict,
		})
		g.AddFilter(silencing)
		g.AddFilter(stuck)
		g.PerformFiltering(context.Background())
		waitDone(t, g)

		calls, verdict, timedOut := rec.snapshot()
		require.Equal(t, 1, calls)
		require.True(t, timedOut)
		return verdict
	}

	assert.False(t, run(false).Silence, "optimistic aggregate never saw the completed filter")
	assert.True(t, run(true).Silence, "strict fallback credits filters that answered")
}

func TestFinalizeExactlyOnceWhenSentinelRacesDeadline(t *testing.T) {
	// Filters finishing right at the deadline make both finalization
	// paths eligible; the finished flag must let exactly one through.
	for i := 0; i < 25; i++ {
		rec := &resultRecorder{}
		g := newTestGraph(t, rec, 10*time.Millisecond)
		g.AddFilter(&stubFilter{name: "edge", delay: 10 * time.Millisecond, verdict: domain.DefaultVerdict()})

		g.PerformFiltering(context.Background())
		waitDone(t, g)

		// Give the losing path a chance to misfire before counting.
		time.Sleep(20 * time.Millisecond)
		calls, _, _ := rec.snapshot()
		require.Equal(t, 1, calls, "iteration %d delivered %d results", i, calls)
	}
}
