package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceStatus represents the lifecycle state of an invoice.
type InvoiceStatus string

const (
	StatusOpen InvoiceStatus = "open"
	StatusPaid InvoiceStatus = "paid"
	StatusVoid InvoiceStatus = "void"
)

// validTransitions defines the allowed state machine transitions.
// Paid and void are terminal: a paid invoice cannot be voided without an
// administrative reversal path that this service does not expose.
var validTransitions = map[InvoiceStatus][]InvoiceStatus{
	StatusOpen: {StatusPaid, StatusVoid},
}

// Valid reports whether s is one of the known invoice statuses.
func (s InvoiceStatus) Valid() bool {
	return s == StatusOpen || s == StatusPaid || s == StatusVoid
}

// CanTransitionTo reports whether a transition from the current status to next is valid.
func (s InvoiceStatus) CanTransitionTo(next InvoiceStatus) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Invoice is the billing aggregate created from a client's unbilled
// treatments. TotalAmount is derived from the line amounts at generation
// time and is never edited independently.
type Invoice struct {
	ID            int64           `json:"id"`
	ClientID      int64           `json:"client_id"`
	InvoiceNumber string          `json:"invoice_number"`
	InvoiceDate   time.Time       `json:"invoice_date"`
	DueDate       time.Time       `json:"due_date"`
	Status        InvoiceStatus   `json:"status"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
}

// InvoiceLine links one treatment to one invoice. Amount is the rate
// resolver output snapshotted at generation time; editing a treatment
// method's rate afterwards never changes historical invoices.
type InvoiceLine struct {
	ID          int64           `json:"id"`
	InvoiceID   int64           `json:"invoice_id"`
	TreatmentID int64           `json:"treatment_id"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
}
