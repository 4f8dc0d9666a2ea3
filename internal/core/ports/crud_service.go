package ports

import (
	"context"
	"time"

	"github.com/marcelsmeets511/lijf-leven-administratie-backend/internal/core/domain"
)

// CreateClientInput carries the data for a new client.
type CreateClientInput struct {
	Name  string
	Email string
	Phone string
}

// ClientService defines client use-case operations.
type ClientService interface {
	CreateClient(ctx context.Context, input CreateClientInput) (*domain.Client, error)
	GetClient(ctx context.Context, id int64) (*domain.Client, error)
	ListClients(ctx context.Context) ([]domain.Client, error)
}

// CreateTreatmentMethodInput carries the data for a new treatment method.
// Rate is a decimal string so the fixed-point value never round-trips
// through a float.
type CreateTreatmentMethodInput struct {
	Name        string
	BillingType string
	Rate        string
}

// CreateTreatmentInput carries the data for a new treatment.
// DurationHours is a decimal string pointer: nil means absent, which is
// required for session methods and rejected for hourly ones.
type CreateTreatmentInput struct {
	ClientID          int64
	TreatmentMethodID int64
	TreatmentDate     time.Time
	DurationHours     *string
	Notes             string
}

// TreatmentService defines treatment and treatment-method use-case operations.
type TreatmentService interface {
	CreateTreatmentMethod(ctx context.Context, input CreateTreatmentMethodInput) (*domain.TreatmentMethod, error)
	ListTreatmentMethods(ctx context.Context) ([]domain.TreatmentMethod, error)
	CreateTreatment(ctx context.Context, input CreateTreatmentInput) (*domain.Treatment, error)
	ListTreatments(ctx context.Context) ([]TreatmentRow, error)
}
