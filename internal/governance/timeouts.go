package governance

import (
	"fmt"
	"sync"
	"time"
)

// TimeoutConfig defines the deadlines applied to a screening session.
type TimeoutConfig struct {
	// CallScreening bounds one screening session end to end. Filters
	// still pending when it expires lose their vote.
	CallScreening time.Duration
}

// DefaultTimeoutConfig returns sensible timeout defaults.
func DefaultTimeoutConfig() TimeoutConfig {
	return TimeoutConfig{
		CallScreening: 5 * time.Second,
	}
}

// TimeoutAdapter hands the current screening deadline to the filter
// graph. It implements domain.TimeoutProvider and supports atomic
// reconfiguration from config snapshots.
type TimeoutAdapter struct {
	mu  sync.RWMutex
	cfg TimeoutConfig
}

// NewTimeoutAdapter creates an adapter, filling zero fields from
// DefaultTimeoutConfig.
func NewTimeoutAdapter(cfg TimeoutConfig) *TimeoutAdapter {
	if cfg.CallScreening <= 0 {
		cfg.CallScreening = DefaultTimeoutConfig().CallScreening
	}
	return &TimeoutAdapter{cfg: cfg}
}

// CallScreeningTimeout returns the current session-wide deadline.
func (a *TimeoutAdapter) CallScreeningTimeout() time.Duration {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.cfg.CallScreening
}

// Configure replaces the timeout configuration.
func (a *TimeoutAdapter) Configure(cfg TimeoutConfig) error {
	if cfg.CallScreening <= 0 {
		return fmt.Errorf("call screening timeout must be positive")
	}

	a.mu.Lock()
	a.cfg = cfg
	a.mu.Unlock()
	return nil
}
