// Package screening owns the per-call filtering sessions. A Screener
// turns the current configuration snapshot into a filter graph for each
// incoming call, listens for the final verdict and records metrics.
package screening

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/callwarden/callwarden/internal/governance"
	"github.com/callwarden/callwarden/pkg/domain"
	"github.com/callwarden/callwarden/pkg/filtergraph"
	"github.com/callwarden/callwarden/pkg/filters"
	"github.com/callwarden/callwarden/pkg/notify"
	"github.com/callwarden/callwarden/pkg/policy"
	"github.com/callwarden/callwarden/pkg/storage"
	"github.com/callwarden/callwarden/pkg/telemetry"
)

// Options configures a Screener.
type Options struct {
	Logger  *slog.Logger
	Metrics *Metrics
	// ScreeningClient backs the external screening service filter when
	// the snapshot enables it. Nil leaves the filter out even then.
	ScreeningClient filters.ScreeningClient
}

// Result is the final outcome of one screening session.
type Result struct {
	Verdict  domain.Verdict
	TimedOut bool
	// Channel is the notification channel the outcome posts on, empty
	// when the verdict suppresses notifications.
	Channel string
}

// Screener screens incoming calls against the current configuration
// snapshot. Safe for concurrent use; Apply swaps configuration between
// calls.
type Screener struct {
	logger   *slog.Logger
	metrics  *Metrics
	tracer   trace.Tracer
	client   filters.ScreeningClient
	channels *notify.Registry

	directory *storage.MemoryDirectory
	timeouts  *governance.TimeoutAdapter

	mu       sync.RWMutex
	snapshot domain.Snapshot
	engine   *policy.Engine
}

// NewScreener creates a Screener with an empty configuration. Call
// Apply before screening.
func NewScreener(opts Options) *Screener {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	channels := notify.NewRegistry(logger)
	channels.CreateChannels()

	return &Screener{
		logger:    logger,
		metrics:   opts.Metrics,
		tracer:    otel.Tracer("callwarden.screening"),
		client:    opts.ScreeningClient,
		channels:  channels,
		directory: storage.NewMemoryDirectory(),
		timeouts:  governance.NewTimeoutAdapter(governance.DefaultTimeoutConfig()),
	}
}

// Apply installs a configuration snapshot: directory contents, policy
// engine and the screening timeout. In-flight sessions keep the
// topology they started with.
func (s *Screener) Apply(ctx context.Context, snapshot domain.Snapshot) error {
	s.directory.ReplaceBlocklist(snapshot.Screening.Blocklist)
	s.directory.ReplaceContacts(snapshot.Screening.Contacts)

	var engine *policy.Engine
	if len(snapshot.Screening.PolicyModules) > 0 {
		var err error
		engine, err = policy.NewEngine(ctx, policy.EngineOptions{
			Entrypoint: snapshot.Screening.PolicyEntrypoint,
			Modules:    snapshot.Screening.PolicyModules,
		})
		if err != nil {
			return fmt.Errorf("screening policy: %w", err)
		}
	}

	if ms := snapshot.Screening.TimeoutMS; ms > 0 {
		if err := s.timeouts.Configure(governance.TimeoutConfig{
			CallScreening: time.Duration(ms) * time.Millisecond,
		}); err != nil {
			return err
		}
	}

	s.mu.Lock()
	s.snapshot = snapshot
	s.engine = engine
	s.mu.Unlock()

	s.logger.Info("screening configuration applied",
		"generation", snapshot.Generation,
		"blocklist", len(snapshot.Screening.Blocklist),
		"contacts", len(snapshot.Screening.Contacts),
		"policy", engine != nil,
		"screening_service", snapshot.Screening.ScreeningServiceEnabled,
	)
	return nil
}

// Watch applies every snapshot published by the config service until
// the context is cancelled. Intended to run in its own goroutine.
func (s *Screener) Watch(ctx context.Context, svc domain.ConfigService) {
	updates := svc.Subscribe()
	for {
		select {
		case <-ctx.Done():
			return
		case snapshot, ok := <-updates:
			if !ok {
				return
			}
			if err := s.Apply(ctx, snapshot); err != nil {
				s.logger.Error("snapshot rejected", "generation", snapshot.Generation, "error", err)
				if s.metrics != nil {
					s.metrics.RecordConfigReload("error")
				}
				continue
			}
			if s.metrics != nil {
				s.metrics.RecordConfigReload("ok")
			}
		}
	}
}

// ScreenCall runs the full filter graph for one call and blocks until
// the final verdict lands. The session is bounded by the configured
// screening timeout, so ScreenCall always returns.
func (s *Screener) ScreenCall(ctx context.Context, call domain.Call) Result {
	ctx, span := s.tracer.Start(ctx, "screening.screen_call",
		trace.WithAttributes(attribute.String("call.id", call.ID.String())),
	)
	defer span.End()

	s.mu.RLock()
	snapshot := s.snapshot
	engine := s.engine
	s.mu.RUnlock()

	results := make(chan Result, 1)
	graph := filtergraph.New(call, filtergraph.Config{
		Listener: domain.VerdictListenerFunc(func(call domain.Call, verdict domain.Verdict, timedOut bool) {
			r := Result{Verdict: verdict, TimedOut: timedOut}
			if ch, ok := s.channels.ChannelForVerdict(verdict); ok {
				r.Channel = ch.ID
			}
			results <- r
		}),
		Timeouts:                       s.timeouts,
		Logger:                         s.logger,
		CheckCompletedFiltersOnTimeout: snapshot.Screening.CheckCompletedFiltersOnTimeout,
		Observer:                       s,
	})

	blocklist := filters.NewBlocklistFilter(s.directory)
	contacts := filters.NewContactsFilter(s.directory)
	graph.AddFilter(blocklist)
	graph.AddFilter(contacts)
	graph.AddFilter(filters.NewDNDFilter(s.directory, blocklist, contacts))

	if engine != nil {
		graph.AddFilter(filters.NewPolicyFilter(engine, s.logger))
	}
	if snapshot.Screening.ScreeningServiceEnabled && s.client != nil {
		graph.AddFilter(filters.NewScreeningServiceFilter(s.client, s.logger))
	}

	start := time.Now()
	graph.PerformFiltering(ctx)
	<-graph.Done()
	result := <-results
	elapsed := time.Since(start)

	outcome := verdictOutcome(result.Verdict)
	span.SetAttributes(
		attribute.String("call.outcome", outcome),
		attribute.Bool("call.timed_out", result.TimedOut),
	)
	if s.metrics != nil {
		s.metrics.RecordCallScreened(outcome, result.TimedOut, elapsed)
	}
	telemetry.RecordCallScreened(ctx, telemetry.CallScreened{
		Outcome:  outcome,
		TimedOut: result.TimedOut,
		Duration: elapsed,
	})

	return result
}

// ObserveFilterRun records per-filter metrics. Called by the graph on
// the filter's own goroutine.
func (s *Screener) ObserveFilterRun(call domain.Call, filter string, err error, elapsed time.Duration) {
	if s.metrics != nil {
		s.metrics.RecordFilterRun(filter, err != nil, elapsed)
	}
	telemetry.RecordFilterRun(context.Background(), telemetry.FilterRun{
		Filter:   filter,
		Failed:   err != nil,
		Duration: elapsed,
	})
}

func verdictOutcome(v domain.Verdict) string {
	switch {
	case v.Reject:
		return "reject"
	case v.Silence:
		return "silence"
	default:
		return "allow"
	}
}
