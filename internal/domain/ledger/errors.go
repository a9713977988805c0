package ledger

import "errors"

// Kind classifies a ledger failure so callers can map it to a client error.
type Kind string

const (
	KindNotFound            Kind = "not_found"
	KindUnavailable         Kind = "unavailable"
	KindInsufficientBalance Kind = "insufficient_balance"
	KindValidation          Kind = "validation"
)

// Error is a typed failure with a human-readable reason.
type Error struct {
	Kind   Kind
	Reason string
}

func (e *Error) Error() string { return e.Reason }

// Is matches any *Error of the same kind and reason, so the sentinels below
// work with errors.Is.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind && t.Reason == e.Reason
}

func newError(kind Kind, reason string) *Error { return &Error{Kind: kind, Reason: reason} }

// Validation wraps a caller-level input problem.
func Validation(reason string) *Error { return newError(KindValidation, reason) }

var (
	ErrSongNotFound        = newError(KindNotFound, "song not found")
	ErrPerformanceNotFound = newError(KindNotFound, "performance not found")
	ErrUserNotFound        = newError(KindNotFound, "user not found")
	ErrGiftNotFound        = newError(KindNotFound, "gift not found")
	ErrReceiverNotFound    = newError(KindNotFound, "receiver not found")
	ErrGiftUnavailable     = newError(KindUnavailable, "gift unavailable")
	ErrInsufficientBalance = newError(KindInsufficientBalance, "insufficient coin balance")
	ErrEmptyComment        = Validation("comment text is required")
	ErrEmptyAudio          = Validation("audio reference is required")
	ErrAwardRecipient      = Validation("award belongs to another user")
)

// KindOf returns the kind of err, or "" when err is not a ledger error.
func KindOf(err error) Kind {
	var le *Error
	if errors.As(err, &le) {
		return le.Kind
	}
	return ""
}
