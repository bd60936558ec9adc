// Package notify maintains the fixed set of notification channels used
// to surface screening outcomes, and routes a final verdict to the
// channel it should post on.
package notify

import (
	"log/slog"
	"sync"

	"github.com/callwarden/callwarden/pkg/domain"
)

// Importance ranks how intrusively a channel surfaces notifications.
type Importance int

const (
	ImportanceLow Importance = iota
	ImportanceDefault
	ImportanceMax
)

// Channel IDs. The set is fixed; registration is idempotent.
const (
	ChannelIncomingCalls = "IncomingCalls"
	ChannelMissedCalls   = "MissedCalls"
	ChannelCallBlocking  = "CallBlocking"
)

// Channel describes one notification channel.
type Channel struct {
	ID         string
	Name       string
	Importance Importance
	ShowBadge  bool
	Vibration  bool
}

// Registry holds the registered channels.
type Registry struct {
	logger *slog.Logger

	mu       sync.RWMutex
	channels map[string]Channel
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		logger:   logger,
		channels: make(map[string]Channel),
	}
}

// CreateChannels registers the full channel set. Calling it again
// refreshes definitions in place, so it is safe to invoke on every
// startup and config reload.
func (r *Registry) CreateChannels() {
	for _, ch := range defaultChannels() {
		r.createOrUpdate(ch)
	}
}

func (r *Registry) createOrUpdate(ch Channel) {
	r.mu.Lock()
	_, existed := r.channels[ch.ID]
	r.channels[ch.ID] = ch
	r.mu.Unlock()

	if !existed {
		r.logger.Debug("notification channel registered", "channel", ch.ID)
	}
}

// Channel returns the channel with the given ID.
func (r *Registry) Channel(id string) (Channel, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ch, ok := r.channels[id]
	return ch, ok
}

// ChannelForVerdict maps a final screening verdict to the channel any
// resulting notification should post on. Verdicts that suppress
// notifications map to nothing.
func (r *Registry) ChannelForVerdict(v domain.Verdict) (Channel, bool) {
	switch {
	case !v.ShowNotification:
		return Channel{}, false
	case v.Reject:
		return r.Channel(ChannelCallBlocking)
	case v.Silence:
		return r.Channel(ChannelMissedCalls)
	default:
		return r.Channel(ChannelIncomingCalls)
	}
}

func defaultChannels() []Channel {
	return []Channel{
		{
			ID:         ChannelIncomingCalls,
			Name:       "Incoming calls",
			Importance: ImportanceMax,
		},
		{
			ID:         ChannelMissedCalls,
			Name:       "Missed calls",
			Importance: ImportanceDefault,
			ShowBadge:  true,
			Vibration:  true,
		},
		{
			ID:         ChannelCallBlocking,
			Name:       "Blocked calls",
			Importance: ImportanceLow,
		},
	}
}
