package domain

// BlockReason is a machine-readable code explaining why a call was
// rejected or silenced.
type BlockReason string

// Known block reasons. Filters outside this package may define their own.
const (
	ReasonNotBlocked        BlockReason = ""
	ReasonBlockedNumber     BlockReason = "blocked_number"
	ReasonDirectToVoicemail BlockReason = "direct_to_voicemail"
	ReasonScreeningService  BlockReason = "screening_service"
	ReasonScreeningPolicy   BlockReason = "screening_policy"
)

// Verdict is the immutable aggregate decision for one incoming call.
// Individual filters produce partial verdicts; the scheduler folds them
// with Combine. The zero value is NOT a usable verdict; use
// DefaultVerdict.
type Verdict struct {
	// Allow reports whether the call should ring through.
	Allow bool
	// Reject reports whether the call should be rejected outright.
	Reject bool
	// Silence reports whether the call should ring silently.
	Silence bool
	// AddToCallLog reports whether the call should be recorded in the
	// device call log.
	AddToCallLog bool
	// ShowNotification reports whether a missed/blocked call
	// notification should be posted.
	ShowNotification bool
	// SuppressDoNotDisturb reports whether the call may break through
	// an active do-not-disturb mode.
	SuppressDoNotDisturb bool

	// BlockReason carries the code of the first restrictive contributor.
	BlockReason BlockReason
	// SourceFilter names the filter that produced the restrictive
	// outcome, for event logs.
	SourceFilter string
}

// DefaultVerdict returns the starting point of every fold: let the call
// through, log it, notify about it.
func DefaultVerdict() Verdict {
	return Verdict{
		Allow:            true,
		Reject:           false,
		AddToCallLog:     true,
		ShowNotification: true,
	}
}

// Combine merges two partial verdicts into one. Restrictive outcomes
// dominate: Reject, Silence and SuppressDoNotDisturb survive from either
// side, while Allow, AddToCallLog and ShowNotification must be granted by
// both. Combine is associative, so the scheduler may fold any number of
// verdicts in a fixed order.
func (v Verdict) Combine(other Verdict) Verdict {
	out := Verdict{
		Allow:                v.Allow && other.Allow,
		Reject:               v.Reject || other.Reject,
		Silence:              v.Silence || other.Silence,
		AddToCallLog:         v.AddToCallLog && other.AddToCallLog,
		ShowNotification:     v.ShowNotification && other.ShowNotification,
		SuppressDoNotDisturb: v.SuppressDoNotDisturb || other.SuppressDoNotDisturb,
	}
	out.BlockReason, out.SourceFilter = pickAttribution(v, other)
	return out
}

// pickAttribution selects the reason/source pair carried forward by a
// merge: the earlier (left) side wins within each tier, restrictive
// verdicts beat bare reasons beat bare sources. Tier order keeps Combine
// associative.
func pickAttribution(a, b Verdict) (BlockReason, string) {
	switch {
	case a.Reject || a.Silence:
		return a.BlockReason, a.SourceFilter
	case b.Reject || b.Silence:
		return b.BlockReason, b.SourceFilter
	case a.BlockReason != ReasonNotBlocked:
		return a.BlockReason, a.SourceFilter
	case b.BlockReason != ReasonNotBlocked:
		return b.BlockReason, b.SourceFilter
	case a.SourceFilter != "":
		return a.BlockReason, a.SourceFilter
	default:
		return b.BlockReason, b.SourceFilter
	}
}
