package domain

import "errors"

// Common domain errors
var (
	ErrConfigInvalid    = errors.New("invalid configuration")
	ErrPolicyEvalFailed = errors.New("policy evaluation failed")
	ErrFilterUnknown    = errors.New("filter not registered in graph")
	ErrGraphFinished    = errors.New("filter graph already finalized")
	ErrServiceUnbound   = errors.New("screening service not bound")
)

// ScreeningError wraps errors with the filter that raised them.
type ScreeningError struct {
	Err    error
	Filter string
}

func (e *ScreeningError) Error() string {
	if e.Filter != "" {
		return e.Filter + ": " + e.Err.Error()
	}
	return e.Err.Error()
}

func (e *ScreeningError) Unwrap() error {
	return e.Err
}
