package ports

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/marcelsmeets511/lijf-leven-administratie-backend/internal/core/domain"
)

// TreatmentRow is a treatment joined with its client and method names,
// used by the list endpoint.
type TreatmentRow struct {
	domain.Treatment
	ClientName  string
	MethodName  string
	BillingType domain.BillingType
	Rate        decimal.Decimal
}

// UnbilledTreatment is a treatment joined with the billing fields the
// rate resolver needs. The method rate is carried along so the line
// amount is snapshotted from the rate in force at generation time.
type UnbilledTreatment struct {
	ID            int64
	ClientID      int64
	TreatmentDate time.Time
	DurationHours decimal.NullDecimal
	MethodName    string
	BillingType   domain.BillingType
	Rate          decimal.Decimal
}

// TreatmentRepository is the billing ledger: it persists treatments and
// is the source of truth for which of them are still unbilled. The
// billed/unbilled transition itself happens inside the invoice
// repository's transaction so that claiming treatments and creating the
// invoice are a single atomic unit.
type TreatmentRepository interface {
	Create(ctx context.Context, t *domain.Treatment) error
	FindByID(ctx context.Context, id int64) (*domain.Treatment, error)
	// List returns treatments joined with client and method names,
	// newest first.
	List(ctx context.Context) ([]TreatmentRow, error)
	// UnbilledForClient returns the client's unbilled treatments dated
	// on or before asOf, ordered by treatment date then id so that
	// generation is deterministic.
	UnbilledForClient(ctx context.Context, clientID int64, asOf time.Time) ([]UnbilledTreatment, error)
	// ClientsWithUnbilled returns the ids of all clients that have at
	// least one unbilled treatment dated on or before asOf.
	ClientsWithUnbilled(ctx context.Context, asOf time.Time) ([]int64, error)
}
