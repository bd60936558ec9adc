package filters

import (
	"context"
	"fmt"

	"github.com/callwarden/callwarden/pkg/domain"
)

// ContactsFilter consults the user's address book. Contacts flagged
// send-to-voicemail are silenced and logged without a notification;
// everyone else passes through unchanged.
type ContactsFilter struct {
	store domain.ContactStore
}

// NewContactsFilter creates a filter backed by the given store.
func NewContactsFilter(store domain.ContactStore) *ContactsFilter {
	return &ContactsFilter{store: store}
}

func (f *ContactsFilter) Name() string { return "contacts" }

func (f *ContactsFilter) Run(ctx context.Context, call domain.Call, _ domain.Verdict) (domain.Verdict, error) {
	contact, ok, err := f.store.Lookup(ctx, call.Number)
	if err != nil {
		return domain.Verdict{}, fmt.Errorf("contact lookup: %w", err)
	}
	if !ok || !contact.SendToVoicemail {
		return domain.DefaultVerdict(), nil
	}

	return domain.Verdict{
		Allow:        true,
		Silence:      true,
		AddToCallLog: true,
		BlockReason:  domain.ReasonDirectToVoicemail,
		SourceFilter: f.Name(),
	}, nil
}
