package filters

import (
	"context"
	"log/slog"
	"sync"

	"github.com/callwarden/callwarden/pkg/domain"
)

// ScreeningClient is the connection to an external call screening
// service. Implementations may block for the whole screening window.
type ScreeningClient interface {
	Screen(ctx context.Context, call domain.Call) (domain.Verdict, error)
}

// ScreeningClientFunc adapts a function to the ScreeningClient
// interface.
type ScreeningClientFunc func(ctx context.Context, call domain.Call) (domain.Verdict, error)

// Screen calls f.
func (f ScreeningClientFunc) Screen(ctx context.Context, call domain.Call) (domain.Verdict, error) {
	return f(ctx, call)
}

// ScreeningServiceFilter consults an external screening service bound
// for the lifetime of one call. The deadline guard calls Release to
// unbind whether or not the service ever answered.
type ScreeningServiceFilter struct {
	client ScreeningClient
	logger *slog.Logger

	mu    sync.Mutex
	bound bool
}

// NewScreeningServiceFilter binds the client for one screening session.
func NewScreeningServiceFilter(client ScreeningClient, logger *slog.Logger) *ScreeningServiceFilter {
	if logger == nil {
		logger = slog.Default()
	}
	return &ScreeningServiceFilter{
		client: client,
		logger: logger,
		bound:  true,
	}
}

func (f *ScreeningServiceFilter) Name() string { return "screening_service" }

func (f *ScreeningServiceFilter) Run(ctx context.Context, call domain.Call, _ domain.Verdict) (domain.Verdict, error) {
	f.mu.Lock()
	bound := f.bound
	f.mu.Unlock()
	if !bound {
		return domain.Verdict{}, domain.ErrServiceUnbound
	}

	v, err := f.client.Screen(ctx, call)
	if err != nil {
		return domain.Verdict{}, &domain.ScreeningError{Err: err, Filter: f.Name()}
	}

	if (v.Reject || v.Silence) && v.BlockReason == domain.ReasonNotBlocked {
		v.BlockReason = domain.ReasonScreeningService
	}
	if (v.Reject || v.Silence) && v.SourceFilter == "" {
		v.SourceFilter = f.Name()
	}
	return v, nil
}

// Release unbinds the service. Safe to call more than once.
func (f *ScreeningServiceFilter) Release() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.bound {
		return
	}
	f.bound = false
	f.logger.Debug("screening service unbound")
}
