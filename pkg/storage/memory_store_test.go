package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/callwarden/callwarden/pkg/domain"
)

func TestBlocklistNormalizesNumbers(t *testing.T) {
	s := NewMemoryDirectory()
	s.ReplaceBlocklist([]string{"+1 555-0100", "+1 (555) 012.3456"})

	tests := []struct {
		number string
		want   bool
	}{
		{"+15550100", true},
		{"+1 555 0100", true},
		{"+15550123456", true},
		{"+15550199", false},
	}

	for _, tt := range tests {
		got, err := s.IsBlocked(context.Background(), tt.number)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "number %s", tt.number)
	}
}

func TestContactLookup(t *testing.T) {
	s := NewMemoryDirectory()
	s.ReplaceContacts([]domain.Contact{
		{Number: "+1 555-0100", Name: "Ada", Starred: true},
		{Number: "+15550111", Name: "Grace", SendToVoicemail: true},
	})

	c, ok, err := s.Lookup(context.Background(), "+15550100")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Ada", c.Name)
	assert.True(t, c.Starred)

	c, ok, err = s.Lookup(context.Background(), "+1 555 0111")
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, c.SendToVoicemail)

	_, ok, err = s.Lookup(context.Background(), "+15550199")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestReplaceBlocklistSwapsWholesale(t *testing.T) {
	s := NewMemoryDirectory()
	s.ReplaceBlocklist([]string{"+15550100"})
	s.ReplaceBlocklist([]string{"+15550111"})

	got, err := s.IsBlocked(context.Background(), "+15550100")
	require.NoError(t, err)
	assert.False(t, got, "old entries must not survive a replace")
}
