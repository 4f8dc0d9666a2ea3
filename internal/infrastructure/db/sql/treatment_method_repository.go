package sql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/marcelsmeets511/lijf-leven-administratie-backend/internal/core/domain"
)

type TreatmentMethodRepository struct {
	db *sqlx.DB
}

func NewTreatmentMethodRepository(db *sqlx.DB) *TreatmentMethodRepository {
	return &TreatmentMethodRepository{db: db}
}

type treatmentMethodRow struct {
	ID          int64           `db:"id"`
	Name        string          `db:"name"`
	BillingType string          `db:"billing_type"`
	Rate        decimal.Decimal `db:"rate"`
}

func (r treatmentMethodRow) toDomain() domain.TreatmentMethod {
	return domain.TreatmentMethod{
		ID:          r.ID,
		Name:        r.Name,
		BillingType: domain.BillingType(r.BillingType),
		Rate:        r.Rate,
	}
}

func (r *TreatmentMethodRepository) Create(ctx context.Context, m *domain.TreatmentMethod) error {
	query := r.db.Rebind("INSERT INTO treatment_methods (name, billing_type, rate) VALUES (?, ?, ?) RETURNING id")
	err := r.db.QueryRowxContext(ctx, query, m.Name, string(m.BillingType), m.Rate.String()).Scan(&m.ID)
	if err != nil {
		return mapError(err)
	}
	return nil
}

func (r *TreatmentMethodRepository) FindByID(ctx context.Context, id int64) (*domain.TreatmentMethod, error) {
	var row treatmentMethodRow
	query := r.db.Rebind("SELECT id, name, billing_type, rate FROM treatment_methods WHERE id = ?")
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrTreatmentMethodNotFound
		}
		return nil, fmt.Errorf("find treatment method: %w", err)
	}
	method := row.toDomain()
	return &method, nil
}

func (r *TreatmentMethodRepository) List(ctx context.Context) ([]domain.TreatmentMethod, error) {
	var rows []treatmentMethodRow
	if err := r.db.SelectContext(ctx, &rows, "SELECT id, name, billing_type, rate FROM treatment_methods ORDER BY name, id"); err != nil {
		return nil, fmt.Errorf("list treatment methods: %w", err)
	}
	methods := make([]domain.TreatmentMethod, len(rows))
	for i, row := range rows {
		methods[i] = row.toDomain()
	}
	return methods, nil
}
