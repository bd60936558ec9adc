package policy

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const screeningModule = `package screening

default decision := {"action": "allow", "reason": ""}

decision := {"action": "reject", "reason": "known spam prefix"} if {
	startswith(input.number, "+1900")
}

decision := {"action": "silence", "reason": "quiet hours"} if {
	not startswith(input.number, "+1900")
	input.hour >= 22
}
`

func newTestEngine(t *testing.T) *Engine {
	t.Helper()

	engine, err := NewEngine(context.Background(), EngineOptions{
		Entrypoint: "screening/decision",
		Modules:    map[string]string{"screening.rego": screeningModule},
	})
	require.NoError(t, err)
	return engine
}

func TestEvaluateAllowsByDefault(t *testing.T) {
	engine := newTestEngine(t)

	decision, err := engine.Evaluate(context.Background(), Input{
		Number:     "+15550100",
		ReceivedAt: time.Date(2026, 3, 9, 14, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Equal(t, ActionAllow, decision.Action)
	assert.Empty(t, decision.Reason)
}

func TestEvaluateRejectsMatchingPrefix(t *testing.T) {
	engine := newTestEngine(t)

	decision, err := engine.Evaluate(context.Background(), Input{
		Number:     "+19005550100",
		ReceivedAt: time.Date(2026, 3, 9, 14, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Equal(t, ActionReject, decision.Action)
	assert.Equal(t, "known spam prefix", decision.Reason)
}

func TestEvaluateSilencesDuringQuietHours(t *testing.T) {
	engine := newTestEngine(t)

	decision, err := engine.Evaluate(context.Background(), Input{
		Number:     "+15550100",
		ReceivedAt: time.Date(2026, 3, 9, 23, 15, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Equal(t, ActionSilence, decision.Action)
	assert.Equal(t, "quiet hours", decision.Reason)
}

func TestNewEngineRejectsBrokenModule(t *testing.T) {
	_, err := NewEngine(context.Background(), EngineOptions{
		Modules: map[string]string{"broken.rego": "package screening\n\ndecision :="},
	})
	require.Error(t, err)
}

func TestNewEngineRequiresModules(t *testing.T) {
	_, err := NewEngine(context.Background(), EngineOptions{})
	require.Error(t, err)
}
