package ports

import (
	"context"
	"time"
)

// Per-client generation outcomes. Other clients in the same run are
// unaffected by any single client's failure.
const (
	OutcomeCreated      = "created"
	OutcomeSkippedEmpty = "skipped-empty"
	OutcomeConflict     = "conflict"
	OutcomeFailed       = "failed"
)

// GenerateInvoicesInput carries the parameters for one generation run.
type GenerateInvoicesInput struct {
	// ClientIDs limits the run to the given clients; empty means every
	// client with at least one unbilled treatment.
	ClientIDs []int64
	// AsOfDate includes treatments dated on or before it. Zero means
	// today (UTC).
	AsOfDate time.Time
	// IdempotencyKey, when non-empty, lets the caller safely retry the
	// request: a replay with a key that was already processed is
	// acknowledged without generating anything.
	IdempotencyKey string
}

// ClientOutcome reports what happened for one client in a run.
type ClientOutcome struct {
	ClientID      int64  `json:"client_id"`
	Outcome       string `json:"outcome"`
	InvoiceID     int64  `json:"invoice_id,omitempty"`
	InvoiceNumber string `json:"invoice_number,omitempty"`
	Reason        string `json:"reason,omitempty"`
}

// GenerationResult is the contract the API layer surfaces to the caller.
type GenerationResult struct {
	RunID   string          `json:"run_id"`
	Created int             `json:"created"`
	Clients []ClientOutcome `json:"clients"`
	// AlreadyProcessed is true when the Idempotency-Key matched an
	// earlier run; no invoices were generated by this call.
	AlreadyProcessed bool `json:"already_processed,omitempty"`
}

// InvoiceService defines the invoice use-case operations.
type InvoiceService interface {
	GenerateInvoices(ctx context.Context, input GenerateInvoicesInput) (*GenerationResult, error)
	GetInvoice(ctx context.Context, id int64) (*InvoiceDetail, error)
	ListInvoices(ctx context.Context, filter ListInvoicesFilter) ([]InvoiceSummary, error)
	// TransitionInvoice moves the invoice to target and returns the
	// resulting detail view. Voiding releases the invoice's treatments.
	TransitionInvoice(ctx context.Context, id int64, target string) (*InvoiceDetail, error)
}
