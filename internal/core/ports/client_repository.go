package ports

import (
	"context"

	"github.com/marcelsmeets511/lijf-leven-administratie-backend/internal/core/domain"
)

// ClientRepository defines persistence operations for clients.
type ClientRepository interface {
	Create(ctx context.Context, c *domain.Client) error
	FindByID(ctx context.Context, id int64) (*domain.Client, error)
	// List returns all clients ordered by name.
	List(ctx context.Context) ([]domain.Client, error)
}

// TreatmentMethodRepository defines persistence operations for treatment methods.
type TreatmentMethodRepository interface {
	Create(ctx context.Context, m *domain.TreatmentMethod) error
	FindByID(ctx context.Context, id int64) (*domain.TreatmentMethod, error)
	// List returns all treatment methods ordered by name.
	List(ctx context.Context) ([]domain.TreatmentMethod, error)
}
