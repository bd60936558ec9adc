package domain

import (
	"time"

	"github.com/google/uuid"
)

// Call is the immutable description of one incoming communication
// session handed to the screening filters.
type Call struct {
	// ID uniquely identifies the screening session.
	ID uuid.UUID
	// Number is the caller's phone number in E.164 form when available.
	Number string
	// CallerName is the network-provided display name, possibly empty.
	CallerName string
	// ReceivedAt is when the call reached the device.
	ReceivedAt time.Time
}

// NewIncomingCall constructs a Call for a fresh incoming session.
func NewIncomingCall(number, callerName string) Call {
	return Call{
		ID:         uuid.New(),
		Number:     number,
		CallerName: callerName,
		ReceivedAt: time.Now(),
	}
}
