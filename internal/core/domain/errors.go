package domain

import (
	"errors"
	"fmt"
)

var ErrClientNotFound = errors.New("client not found")
var ErrTreatmentMethodNotFound = errors.New("treatment method not found")
var ErrTreatmentNotFound = errors.New("treatment not found")
var ErrInvoiceNotFound = errors.New("invoice not found")

// ErrInvalidBillingInput rejects a treatment whose duration does not
// match its method's billing type (missing/non-positive duration for
// hourly, any duration for session). Nothing is persisted.
var ErrInvalidBillingInput = errors.New("invalid billing input")

// ErrAlreadyBilled signals an optimistic-concurrency conflict: a
// treatment targeted by invoice generation was claimed by a concurrent
// run. The caller may retry.
var ErrAlreadyBilled = errors.New("treatment already billed")

var ErrInvalidTransition = errors.New("invalid status transition")

// ConstraintError is returned by the storage layer when the database
// rejects a write on a constraint (unique, foreign key, check). Callers
// inspect it with errors.As instead of matching message text.
type ConstraintError struct {
	// Constraint is the violated constraint's name when the driver
	// reports one (PostgreSQL does, SQLite does not).
	Constraint string
	Err        error
}

func (e *ConstraintError) Error() string {
	if e.Constraint == "" {
		return fmt.Sprintf("constraint violation: %v", e.Err)
	}
	return fmt.Sprintf("constraint violation (%s): %v", e.Constraint, e.Err)
}

func (e *ConstraintError) Unwrap() error { return e.Err }
