package filters

import (
	"context"
	"log/slog"

	"github.com/callwarden/callwarden/pkg/domain"
	"github.com/callwarden/callwarden/pkg/policy"
)

// PolicyFilter evaluates the user's Rego screening policy against the
// call. Evaluation errors fail open: the call passes with the default
// verdict rather than stalling the graph on a broken rule.
type PolicyFilter struct {
	engine *policy.Engine
	logger *slog.Logger
}

// NewPolicyFilter wraps a prepared policy engine.
func NewPolicyFilter(engine *policy.Engine, logger *slog.Logger) *PolicyFilter {
	if logger == nil {
		logger = slog.Default()
	}
	return &PolicyFilter{engine: engine, logger: logger}
}

func (f *PolicyFilter) Name() string { return "policy" }

func (f *PolicyFilter) Run(ctx context.Context, call domain.Call, _ domain.Verdict) (domain.Verdict, error) {
	decision, err := f.engine.Evaluate(ctx, policy.Input{
		Number:     call.Number,
		CallerName: call.CallerName,
		ReceivedAt: call.ReceivedAt,
	})
	if err != nil {
		f.logger.Warn("screening policy evaluation failed, allowing call",
			"call_id", call.ID,
			"error", err)
		return domain.DefaultVerdict(), nil
	}

	switch decision.Action {
	case policy.ActionReject:
		f.logger.Info("screening policy rejected call",
			"call_id", call.ID,
			"reason", decision.Reason)
		return domain.Verdict{
			Reject:       true,
			AddToCallLog: true,
			BlockReason:  domain.ReasonScreeningPolicy,
			SourceFilter: f.Name(),
		}, nil
	case policy.ActionSilence:
		f.logger.Info("screening policy silenced call",
			"call_id", call.ID,
			"reason", decision.Reason)
		return domain.Verdict{
			Allow:            true,
			Silence:          true,
			AddToCallLog:     true,
			ShowNotification: true,
			BlockReason:      domain.ReasonScreeningPolicy,
			SourceFilter:     f.Name(),
		}, nil
	default:
		return domain.DefaultVerdict(), nil
	}
}
