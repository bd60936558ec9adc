package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestDefaultVerdict(t *testing.T) {
	v := DefaultVerdict()

	assert.True(t, v.Allow)
	assert.False(t, v.Reject)
	assert.False(t, v.Silence)
	assert.True(t, v.AddToCallLog)
	assert.True(t, v.ShowNotification)
	assert.False(t, v.SuppressDoNotDisturb)
	assert.Equal(t, ReasonNotBlocked, v.BlockReason)
}

func TestCombineRestrictivePrecedence(t *testing.T) {
	tests := []struct {
		name string
		a    Verdict
		b    Verdict
		want Verdict
	}{
		{
			name: "allow meets allow",
			a:    DefaultVerdict(),
			b:    DefaultVerdict(),
			want: DefaultVerdict(),
		},
		{
			name: "reject dominates allow",
			a:    DefaultVerdict(),
			b: Verdict{
				Reject:       true,
				AddToCallLog: true,
				BlockReason:  ReasonBlockedNumber,
				SourceFilter: "blocklist",
			},
			want: Verdict{
				Allow:        false,
				Reject:       true,
				AddToCallLog: true,
				BlockReason:  ReasonBlockedNumber,
				SourceFilter: "blocklist",
			},
		},
		{
			name: "silence dominates allow",
			a: Verdict{
				Allow:        true,
				Silence:      true,
				AddToCallLog: true,
				BlockReason:  ReasonScreeningPolicy,
				SourceFilter: "policy",
			},
			b: DefaultVerdict(),
			want: Verdict{
				Allow:        true,
				Silence:      true,
				AddToCallLog: true,
				BlockReason:  ReasonScreeningPolicy,
				SourceFilter: "policy",
			},
		},
		{
			name: "notification suppressed by either side",
			a:    DefaultVerdict(),
			b: Verdict{
				Allow:            true,
				AddToCallLog:     true,
				ShowNotification: false,
			},
			want: Verdict{
				Allow:            true,
				AddToCallLog:     true,
				ShowNotification: false,
			},
		},
		{
			name: "dnd breakthrough survives",
			a: Verdict{
				Allow:                true,
				AddToCallLog:         true,
				ShowNotification:     true,
				SuppressDoNotDisturb: true,
			},
			b: DefaultVerdict(),
			want: Verdict{
				Allow:                true,
				AddToCallLog:         true,
				ShowNotification:     true,
				SuppressDoNotDisturb: true,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Combine(tt.b))
		})
	}
}

func TestCombineEarlierRestrictiveSourceWins(t *testing.T) {
	a := Verdict{Reject: true, BlockReason: ReasonBlockedNumber, SourceFilter: "blocklist"}
	b := Verdict{Reject: true, BlockReason: ReasonScreeningService, SourceFilter: "service"}

	merged := a.Combine(b)
	require.True(t, merged.Reject)
	assert.Equal(t, ReasonBlockedNumber, merged.BlockReason)
	assert.Equal(t, "blocklist", merged.SourceFilter)
}

func drawVerdict(t *rapid.T, label string) Verdict {
	reasons := []BlockReason{ReasonNotBlocked, ReasonBlockedNumber, ReasonScreeningService, ReasonScreeningPolicy}
	v := Verdict{
		Allow:                rapid.Bool().Draw(t, label+"_allow"),
		Reject:               rapid.Bool().Draw(t, label+"_reject"),
		Silence:              rapid.Bool().Draw(t, label+"_silence"),
		AddToCallLog:         rapid.Bool().Draw(t, label+"_log"),
		ShowNotification:     rapid.Bool().Draw(t, label+"_notify"),
		SuppressDoNotDisturb: rapid.Bool().Draw(t, label+"_dnd"),
	}
	if v.Reject || v.Silence {
		v.BlockReason = reasons[rapid.IntRange(1, len(reasons)-1).Draw(t, label+"_reason")]
		v.SourceFilter = label
	} else if rapid.Bool().Draw(t, label+"_attributed") {
		// Non-restrictive verdicts may still name their filter.
		v.SourceFilter = label
	}
	return v
}

func TestCombineAssociativityProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		a := drawVerdict(t, "a")
		b := drawVerdict(t, "b")
		c := drawVerdict(t, "c")

		left := a.Combine(b).Combine(c)
		right := a.Combine(b.Combine(c))
		assert.Equal(t, left, right)
	})
}

func TestCombineNeverRelaxesProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		a := drawVerdict(t, "a")
		b := drawVerdict(t, "b")

		merged := a.Combine(b)
		if a.Reject || b.Reject {
			assert.True(t, merged.Reject, "reject must survive a merge")
		}
		if a.Silence || b.Silence {
			assert.True(t, merged.Silence, "silence must survive a merge")
		}
		if !a.Allow || !b.Allow {
			assert.False(t, merged.Allow, "a denied allow must not reappear")
		}
	})
}
