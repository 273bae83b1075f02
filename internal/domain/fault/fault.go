// Package fault defines the stable error taxonomy shared by every use case.
// Callers branch on Kind; Reason is for humans and logs only.
package fault

import (
	"errors"
	"fmt"
)

type Kind string

const (
	// KindInvalidInput: malformed or out-of-range input; never retried.
	KindInvalidInput Kind = "invalid_input"
	// KindUnauthorized: wrong caller for the operation; never retried.
	KindUnauthorized Kind = "unauthorized"
	KindNotFound     Kind = "not_found"
	// KindInvalidState: illegal for the current lifecycle state; may become
	// legal later (e.g. a loan not yet eligible for liquidation).
	KindInvalidState Kind = "invalid_state"
	// KindVerificationFailed: the valuation oracle rejected the asset.
	KindVerificationFailed Kind = "verification_failed"
	// KindUnavailable: transient infrastructure failure; safe to retry, no
	// mutation happened.
	KindUnavailable Kind = "unavailable"
	// KindPaused: the circuit breaker is engaged.
	KindPaused Kind = "paused"
)

type Error struct {
	Kind   Kind
	Reason string
}

func (e *Error) Error() string { return string(e.Kind) + ": " + e.Reason }

// Is lets errors.Is match two faults by kind, so sentinel faults can be used
// as comparison targets in tests and callers.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Kind == t.Kind
}

func New(kind Kind, reason string) *Error { return &Error{Kind: kind, Reason: reason} }

func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Reason: fmt.Sprintf(format, args...)}
}

// KindOf extracts the machine-readable kind, defaulting to unavailable for
// errors that did not originate in the domain (driver failures etc.).
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnavailable
}

func IsKind(err error, kind Kind) bool { return KindOf(err) == kind }
