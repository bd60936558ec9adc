// Package storage provides the lookup stores consulted by screening
// filters. The in-memory implementations are refreshed wholesale from
// configuration snapshots.
package storage

import (
	"context"
	"strings"
	"sync"

	"github.com/callwarden/callwarden/pkg/domain"
)

// MemoryDirectory is an in-memory implementation of both
// domain.BlocklistStore and domain.ContactStore.
type MemoryDirectory struct {
	mu       sync.RWMutex
	blocked  map[string]struct{}
	contacts map[string]domain.Contact
}

// NewMemoryDirectory creates an empty MemoryDirectory.
func NewMemoryDirectory() *MemoryDirectory {
	return &MemoryDirectory{
		blocked:  make(map[string]struct{}),
		contacts: make(map[string]domain.Contact),
	}
}

// ReplaceBlocklist swaps the full block list.
func (s *MemoryDirectory) ReplaceBlocklist(numbers []string) {
	blocked := make(map[string]struct{}, len(numbers))
	for _, n := range numbers {
		blocked[normalizeNumber(n)] = struct{}{}
	}

	s.mu.Lock()
	s.blocked = blocked
	s.mu.Unlock()
}

// ReplaceContacts swaps the full contact list.
func (s *MemoryDirectory) ReplaceContacts(contacts []domain.Contact) {
	byNumber := make(map[string]domain.Contact, len(contacts))
	for _, c := range contacts {
		byNumber[normalizeNumber(c.Number)] = c
	}

	s.mu.Lock()
	s.contacts = byNumber
	s.mu.Unlock()
}

// IsBlocked reports whether the number is on the block list.
func (s *MemoryDirectory) IsBlocked(_ context.Context, number string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.blocked[normalizeNumber(number)]
	return ok, nil
}

// Lookup returns the saved contact for the number, if any.
func (s *MemoryDirectory) Lookup(_ context.Context, number string) (domain.Contact, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.contacts[normalizeNumber(number)]
	return c, ok, nil
}

// normalizeNumber strips common dialing punctuation so "+1 555-0100"
// and "+15550100" compare equal. Full E.164 canonicalization is the
// dialer's job, not ours.
func normalizeNumber(number string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '(', ')', '.':
			return -1
		default:
			return r
		}
	}, number)
}
