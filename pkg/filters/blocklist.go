package filters

import (
	"context"
	"fmt"

	"github.com/callwarden/callwarden/pkg/domain"
)

// BlocklistFilter rejects calls from numbers on the user's block list.
type BlocklistFilter struct {
	store domain.BlocklistStore
}

// NewBlocklistFilter creates a filter backed by the given store.
func NewBlocklistFilter(store domain.BlocklistStore) *BlocklistFilter {
	return &BlocklistFilter{store: store}
}

func (f *BlocklistFilter) Name() string { return "blocklist" }

// Run rejects blocked numbers. Blocked calls are still written to the
// call log but never surface a notification.
func (f *BlocklistFilter) Run(ctx context.Context, call domain.Call, _ domain.Verdict) (domain.Verdict, error) {
	blocked, err := f.store.IsBlocked(ctx, call.Number)
	if err != nil {
		return domain.Verdict{}, fmt.Errorf("blocklist lookup: %w", err)
	}
	if !blocked {
		return domain.DefaultVerdict(), nil
	}

	return domain.Verdict{
		Reject:       true,
		AddToCallLog: true,
		BlockReason:  domain.ReasonBlockedNumber,
		SourceFilter: f.Name(),
	}, nil
}
