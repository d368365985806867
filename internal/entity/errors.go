package entity

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidArgument       = errors.New("invalid argument")
	ErrPreconditionFailed    = errors.New("precondition failed")
	ErrInsufficientFunds     = errors.New("insufficient funds")
	ErrNotFound              = errors.New("listing not found")
	ErrInvalidState          = errors.New("listing not active")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrAuthorizationMismatch = errors.New("authorization mismatch")
	ErrConfirmationTimeout   = errors.New("confirmation timeout")
	ErrExternalFailure       = errors.New("external failure")
)

// ExternalError carries a ledger client failure through the taxonomy without
// losing the protocol-level cause. errors.Is(err, ErrExternalFailure) matches,
// and Unwrap exposes the original rejection.
type ExternalError struct {
	Cause error
}

func NewExternalError(cause error) error {
	if cause == nil {
		return nil
	}
	return ExternalError{Cause: cause}
}

func (e ExternalError) Error() string {
	return fmt.Sprintf("external failure: %v", e.Cause)
}

func (e ExternalError) Unwrap() error {
	return e.Cause
}

func (e ExternalError) Is(target error) bool {
	return target == ErrExternalFailure
}
