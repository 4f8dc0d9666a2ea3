package ports

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/marcelsmeets511/lijf-leven-administratie-backend/internal/core/domain"
)

// ListInvoicesFilter carries the query parameters for listing invoices.
type ListInvoicesFilter struct {
	ClientID int64                // 0 = no filter
	Status   domain.InvoiceStatus // empty = no filter
}

// InvoiceSummary is the lightweight list view (no line items).
type InvoiceSummary struct {
	ID            int64
	InvoiceNumber string
	ClientID      int64
	ClientName    string
	InvoiceDate   time.Time
	DueDate       time.Time
	Status        domain.InvoiceStatus
	TotalAmount   decimal.Decimal
}

// InvoiceDetailLine is one line of the read-only invoice view.
type InvoiceDetailLine struct {
	TreatmentID   int64
	TreatmentDate time.Time
	MethodName    string
	BillingType   domain.BillingType
	DurationHours decimal.NullDecimal
	Description   string
	Amount        decimal.Decimal
}

// InvoiceDetail is the read-only view consumed by the export renderers
// and the get endpoint: invoice header, client name, and ordered lines.
// It is stable and complete once the invoice is open or paid.
type InvoiceDetail struct {
	Invoice    domain.Invoice
	ClientName string
	Lines      []InvoiceDetailLine
}

// InvoiceRepository persists invoices and owns the transaction that
// makes invoice creation atomic with claiming its treatments.
type InvoiceRepository interface {
	// CreateWithLines allocates the next invoice number, inserts the
	// invoice and its lines, and marks the given treatments billed, all
	// in one transaction. The treatment update re-checks is_billed as
	// an optimistic guard; if any target is no longer unbilled the
	// whole transaction rolls back and domain.ErrAlreadyBilled is
	// returned. On success inv.ID and inv.InvoiceNumber are set.
	CreateWithLines(ctx context.Context, inv *domain.Invoice, lines []domain.InvoiceLine, treatmentIDs []int64) error
	FindByID(ctx context.Context, id int64) (*domain.Invoice, error)
	Detail(ctx context.Context, id int64) (*InvoiceDetail, error)
	List(ctx context.Context, filter ListInvoicesFilter) ([]InvoiceSummary, error)
	// TransitionStatus updates the status with a WHERE status = from
	// guard; a concurrent change surfaces as domain.ErrInvalidTransition.
	TransitionStatus(ctx context.Context, id int64, from, to domain.InvoiceStatus) error
	// Void transitions open → void and releases the invoice's
	// treatments (is_billed = false, invoice_id = NULL) in the same
	// transaction, the exact inverse of generation.
	Void(ctx context.Context, id int64) error
}
