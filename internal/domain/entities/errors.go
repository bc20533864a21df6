package entities

import (
	"errors"
	"fmt"
)

// Store and asset failures. Adapters wrap these so callers can match with errors.Is.
var (
	ErrNotFound        = errors.New("not found")
	ErrValidation      = errors.New("validation failed")
	ErrNetwork         = errors.New("network error")
	ErrPayloadTooLarge = errors.New("payload too large")
)

// Session and collection misuse
var (
	ErrNotSaved        = errors.New("document has not been saved yet")
	ErrSessionClosed   = errors.New("editing session is closed")
	ErrNoPendingDelete = errors.New("no delete is pending confirmation")
	ErrListingClosed   = errors.New("archive listing is closed")
)

// OperationError records which store operation failed for which document
type OperationError struct {
	Op  string
	ID  DocumentID
	Err error
}

func (e *OperationError) Error() string {
	if e.ID.IsZero() {
		return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s #%s failed: %v", e.Op, e.ID, e.Err)
}

func (e *OperationError) Unwrap() error {
	return e.Err
}
