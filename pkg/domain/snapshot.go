package domain

// Snapshot is one consistent view of the screening configuration, as
// delivered by a ConfigService. Snapshots are immutable once published.
type Snapshot struct {
	// Generation increases monotonically with every published update.
	Generation int64
	Screening  ScreeningConfig
}

// ScreeningConfig drives which filters run for a call and how the
// deadline guard behaves.
type ScreeningConfig struct {
	// TimeoutMS bounds the whole screening session. Zero selects the
	// built-in default.
	TimeoutMS int
	// CheckCompletedFiltersOnTimeout selects the stricter deadline
	// fallback: fold only the filters that actually produced a verdict,
	// instead of trusting the last optimistic aggregate.
	CheckCompletedFiltersOnTimeout bool
	// Blocklist holds numbers rejected outright.
	Blocklist []string
	// Contacts holds the user's saved contacts.
	Contacts []Contact
	// PolicyModules maps module names to Rego source for the screening
	// policy filter. Empty disables the policy filter.
	PolicyModules map[string]string
	// PolicyEntrypoint is the decision path evaluated against each
	// call, e.g. "screening/decision".
	PolicyEntrypoint string
	// ScreeningServiceEnabled binds the external screening service
	// filter into the graph.
	ScreeningServiceEnabled bool
}

// Contact is a saved address-book entry consulted during screening.
type Contact struct {
	Number string
	Name   string
	// Starred contacts may break through do-not-disturb.
	Starred bool
	// SendToVoicemail contacts are silenced and logged without a
	// notification.
	SendToVoicemail bool
}
