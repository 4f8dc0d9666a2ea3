package sql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/marcelsmeets511/lijf-leven-administratie-backend/internal/core/domain"
	"github.com/marcelsmeets511/lijf-leven-administratie-backend/internal/core/ports"
)

// Dates are persisted as ISO date strings so that ordering and the
// as-of comparison behave identically on SQLite and PostgreSQL.
const dateLayout = "2006-01-02"

type TreatmentRepository struct {
	db *sqlx.DB
}

func NewTreatmentRepository(db *sqlx.DB) *TreatmentRepository {
	return &TreatmentRepository{db: db}
}

type treatmentRow struct {
	ID                int64               `db:"id"`
	ClientID          int64               `db:"client_id"`
	TreatmentMethodID int64               `db:"treatment_method_id"`
	TreatmentDate     string              `db:"treatment_date"`
	DurationHours     decimal.NullDecimal `db:"duration_hours"`
	Notes             string              `db:"notes"`
	IsBilled          bool                `db:"is_billed"`
	InvoiceID         *int64              `db:"invoice_id"`
}

func (r treatmentRow) toDomain() (domain.Treatment, error) {
	date, err := time.Parse(dateLayout, r.TreatmentDate)
	if err != nil {
		return domain.Treatment{}, fmt.Errorf("treatment %d: bad date %q: %w", r.ID, r.TreatmentDate, err)
	}
	return domain.Treatment{
		ID:                r.ID,
		ClientID:          r.ClientID,
		TreatmentMethodID: r.TreatmentMethodID,
		TreatmentDate:     date,
		DurationHours:     r.DurationHours,
		Notes:             r.Notes,
		IsBilled:          r.IsBilled,
		InvoiceID:         r.InvoiceID,
	}, nil
}

func (r *TreatmentRepository) Create(ctx context.Context, t *domain.Treatment) error {
	var duration any
	if t.DurationHours.Valid {
		duration = t.DurationHours.Decimal.String()
	}
	query := r.db.Rebind(`INSERT INTO treatments (client_id, treatment_method_id, treatment_date, duration_hours, notes)
        VALUES (?, ?, ?, ?, ?) RETURNING id`)
	err := r.db.QueryRowxContext(ctx, query,
		t.ClientID, t.TreatmentMethodID, t.TreatmentDate.Format(dateLayout), duration, t.Notes,
	).Scan(&t.ID)
	if err != nil {
		return mapError(err)
	}
	return nil
}

func (r *TreatmentRepository) FindByID(ctx context.Context, id int64) (*domain.Treatment, error) {
	var row treatmentRow
	query := r.db.Rebind(`SELECT id, client_id, treatment_method_id, treatment_date, duration_hours, notes, is_billed, invoice_id
        FROM treatments WHERE id = ?`)
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrTreatmentNotFound
		}
		return nil, fmt.Errorf("find treatment: %w", err)
	}
	treatment, err := row.toDomain()
	if err != nil {
		return nil, err
	}
	return &treatment, nil
}

type treatmentListRow struct {
	treatmentRow
	ClientName  string          `db:"client_name"`
	MethodName  string          `db:"method_name"`
	BillingType string          `db:"billing_type"`
	Rate        decimal.Decimal `db:"rate"`
}

// List returns treatments joined with client and method names, newest first.
func (r *TreatmentRepository) List(ctx context.Context) ([]ports.TreatmentRow, error) {
	var rows []treatmentListRow
	err := r.db.SelectContext(ctx, &rows, `
        SELECT t.id, t.client_id, t.treatment_method_id, t.treatment_date, t.duration_hours, t.notes, t.is_billed, t.invoice_id,
               c.name AS client_name, m.name AS method_name, m.billing_type, m.rate
        FROM treatments t
        JOIN clients c ON t.client_id = c.id
        JOIN treatment_methods m ON t.treatment_method_id = m.id
        ORDER BY t.treatment_date DESC, t.id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list treatments: %w", err)
	}

	result := make([]ports.TreatmentRow, len(rows))
	for i, row := range rows {
		treatment, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		result[i] = ports.TreatmentRow{
			Treatment:   treatment,
			ClientName:  row.ClientName,
			MethodName:  row.MethodName,
			BillingType: domain.BillingType(row.BillingType),
			Rate:        row.Rate,
		}
	}
	return result, nil
}

type unbilledRow struct {
	ID            int64               `db:"id"`
	ClientID      int64               `db:"client_id"`
	TreatmentDate string              `db:"treatment_date"`
	DurationHours decimal.NullDecimal `db:"duration_hours"`
	MethodName    string              `db:"method_name"`
	BillingType   string              `db:"billing_type"`
	Rate          decimal.Decimal     `db:"rate"`
}

// UnbilledForClient returns the client's unbilled treatments dated on or
// before asOf, ordered by treatment date then id. The method's current
// rate is joined in so the caller snapshots it into the invoice line.
func (r *TreatmentRepository) UnbilledForClient(ctx context.Context, clientID int64, asOf time.Time) ([]ports.UnbilledTreatment, error) {
	var rows []unbilledRow
	query := r.db.Rebind(`
        SELECT t.id, t.client_id, t.treatment_date, t.duration_hours,
               m.name AS method_name, m.billing_type, m.rate
        FROM treatments t
        JOIN treatment_methods m ON t.treatment_method_id = m.id
        WHERE t.client_id = ? AND t.is_billed = FALSE AND t.treatment_date <= ?
        ORDER BY t.treatment_date, t.id`)
	if err := r.db.SelectContext(ctx, &rows, query, clientID, asOf.Format(dateLayout)); err != nil {
		return nil, fmt.Errorf("unbilled treatments for client %d: %w", clientID, err)
	}

	result := make([]ports.UnbilledTreatment, len(rows))
	for i, row := range rows {
		date, err := time.Parse(dateLayout, row.TreatmentDate)
		if err != nil {
			return nil, fmt.Errorf("treatment %d: bad date %q: %w", row.ID, row.TreatmentDate, err)
		}
		result[i] = ports.UnbilledTreatment{
			ID:            row.ID,
			ClientID:      row.ClientID,
			TreatmentDate: date,
			DurationHours: row.DurationHours,
			MethodName:    row.MethodName,
			BillingType:   domain.BillingType(row.BillingType),
			Rate:          row.Rate,
		}
	}
	return result, nil
}

func (r *TreatmentRepository) ClientsWithUnbilled(ctx context.Context, asOf time.Time) ([]int64, error) {
	var ids []int64
	query := r.db.Rebind(`SELECT DISTINCT client_id FROM treatments
        WHERE is_billed = FALSE AND treatment_date <= ? ORDER BY client_id`)
	if err := r.db.SelectContext(ctx, &ids, query, asOf.Format(dateLayout)); err != nil {
		return nil, fmt.Errorf("clients with unbilled treatments: %w", err)
	}
	return ids, nil
}

// markTreatmentsBilled claims the treatments for an invoice inside the
// caller's transaction. The is_billed = FALSE predicate re-checks every
// row at commit time: if a concurrent run already claimed any of them
// the affected count falls short and the claim fails as a whole.
func markTreatmentsBilled(ctx context.Context, tx *sqlx.Tx, treatmentIDs []int64, invoiceID int64) error {
	query, args, err := sqlx.In(
		"UPDATE treatments SET is_billed = TRUE, invoice_id = ? WHERE id IN (?) AND is_billed = FALSE",
		invoiceID, treatmentIDs,
	)
	if err != nil {
		return fmt.Errorf("mark billed: %w", err)
	}
	res, err := tx.ExecContext(ctx, tx.Rebind(query), args...)
	if err != nil {
		return mapError(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark billed: %w", err)
	}
	if affected != int64(len(treatmentIDs)) {
		return domain.ErrAlreadyBilled
	}
	return nil
}

// releaseTreatments is the void reversal: every treatment on the
// invoice returns to the unbilled pool.
func releaseTreatments(ctx context.Context, tx *sqlx.Tx, invoiceID int64) error {
	query := tx.Rebind("UPDATE treatments SET is_billed = FALSE, invoice_id = NULL WHERE invoice_id = ?")
	if _, err := tx.ExecContext(ctx, query, invoiceID); err != nil {
		return fmt.Errorf("release treatments: %w", err)
	}
	return nil
}
