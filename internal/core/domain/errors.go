package domain

import (
	"errors"
	"fmt"
)

var (
	ErrSnapshotNotFound   = errors.New("checkout snapshot not found")
	ErrLineNotFound       = errors.New("cart line not found")
	ErrItemNotFound       = errors.New("catalog item not found")
	ErrBookingNotFound    = errors.New("booking not found")
	ErrIllegalTransition  = errors.New("illegal transition of payment state")
	ErrPathMismatch       = errors.New("payment signal does not belong to this page load")
	ErrSignalAlreadyFired = errors.New("payment signal already handled")
	ErrNoAttempt          = errors.New("no payment attempt for session")
)

// ValidationError is bad caller input. It is always raised before any network call.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// FetchError is a failed read of the authoritative cart.
type FetchError struct {
	Err error
}

func (e *FetchError) Error() string { return fmt.Sprintf("fetch cart: %v", e.Err) }
func (e *FetchError) Unwrap() error { return e.Err }

// WriteError is a failed cart mutation. The local state has already been
// replaced by a re-fetch when the caller sees it.
type WriteError struct {
	Op  string
	Err error
}

func (e *WriteError) Error() string { return fmt.Sprintf("%s cart: %v", e.Op, e.Err) }
func (e *WriteError) Unwrap() error { return e.Err }

// PaymentError is a processor side failure: order creation, declined
// approval or a cancelled redirect.
type PaymentError struct {
	Reason string
	Err    error
}

func (e *PaymentError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("payment failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("payment failed: %s", e.Reason)
}

func (e *PaymentError) Unwrap() error { return e.Err }

// ReconciliationError means the backend did not turn an approved payment
// into a booking. Money may already have moved.
type ReconciliationError struct {
	Reference string
	Err       error
}

func (e *ReconciliationError) Error() string {
	return fmt.Sprintf("booking for payment %s not confirmed: %v", e.Reference, e.Err)
}

func (e *ReconciliationError) Unwrap() error { return e.Err }

// RejectedError is returned by the backend when it refuses a payment
// reference outright. Retrying the same call cannot succeed.
type RejectedError struct {
	Reason string
}

func (e *RejectedError) Error() string { return "rejected: " + e.Reason }

func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

func IsRejected(err error) bool {
	var r *RejectedError
	return errors.As(err, &r)
}

// ErrDuplicateReference is raised by storage when a booking for the payment
// reference already exists.
var ErrDuplicateReference = errors.New("booking already exists for payment reference")
