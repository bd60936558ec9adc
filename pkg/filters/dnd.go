package filters

import (
	"context"
	"fmt"

	"github.com/callwarden/callwarden/pkg/domain"
)

// DNDFilter lets starred contacts break through an active
// do-not-disturb mode. It runs after its declared predecessors, so it
// sees their folded verdict and stays neutral for calls already blocked
// upstream.
type DNDFilter struct {
	store        domain.ContactStore
	predecessors []domain.CallFilter
}

// NewDNDFilter creates the filter. The listed filters become graph
// predecessors; their folded verdict is this filter's input.
func NewDNDFilter(store domain.ContactStore, after ...domain.CallFilter) *DNDFilter {
	return &DNDFilter{store: store, predecessors: after}
}

func (f *DNDFilter) Name() string { return "dnd" }

// Predecessors declares the filters this one waits for.
func (f *DNDFilter) Predecessors() []domain.CallFilter { return f.predecessors }

func (f *DNDFilter) Run(ctx context.Context, call domain.Call, input domain.Verdict) (domain.Verdict, error) {
	// A call blocked upstream never breaks through do-not-disturb.
	if input.Reject || input.Silence {
		return domain.DefaultVerdict(), nil
	}

	contact, ok, err := f.store.Lookup(ctx, call.Number)
	if err != nil {
		return domain.Verdict{}, fmt.Errorf("contact lookup: %w", err)
	}
	if !ok || !contact.Starred {
		return domain.DefaultVerdict(), nil
	}

	v := domain.DefaultVerdict()
	v.SuppressDoNotDisturb = true
	return v, nil
}
