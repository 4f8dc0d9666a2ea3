package sql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/marcelsmeets511/lijf-leven-administratie-backend/internal/core/domain"
	"github.com/marcelsmeets511/lijf-leven-administratie-backend/internal/core/ports"
)

type InvoiceRepository struct {
	db *sqlx.DB
	// numberPrefix is the human-readable invoice number prefix, e.g.
	// "FACT" producing FACT-2025-001.
	numberPrefix string
}

func NewInvoiceRepository(db *sqlx.DB, numberPrefix string) *InvoiceRepository {
	return &InvoiceRepository{db: db, numberPrefix: numberPrefix}
}

type invoiceRow struct {
	ID            int64           `db:"id"`
	ClientID      int64           `db:"client_id"`
	InvoiceNumber string          `db:"invoice_number"`
	InvoiceDate   string          `db:"invoice_date"`
	DueDate       string          `db:"due_date"`
	Status        string          `db:"status"`
	TotalAmount   decimal.Decimal `db:"total_amount"`
}

func (r invoiceRow) toDomain() (domain.Invoice, error) {
	invoiceDate, err := time.Parse(dateLayout, r.InvoiceDate)
	if err != nil {
		return domain.Invoice{}, fmt.Errorf("invoice %d: bad invoice_date %q: %w", r.ID, r.InvoiceDate, err)
	}
	dueDate, err := time.Parse(dateLayout, r.DueDate)
	if err != nil {
		return domain.Invoice{}, fmt.Errorf("invoice %d: bad due_date %q: %w", r.ID, r.DueDate, err)
	}
	return domain.Invoice{
		ID:            r.ID,
		ClientID:      r.ClientID,
		InvoiceNumber: r.InvoiceNumber,
		InvoiceDate:   invoiceDate,
		DueDate:       dueDate,
		Status:        domain.InvoiceStatus(r.Status),
		TotalAmount:   r.TotalAmount,
	}, nil
}

// formatInvoiceNumber renders a sequence value as the human-readable,
// per-year invoice number, e.g. FACT-2025-001. The format is a contract
// other tooling depends on.
func formatInvoiceNumber(prefix string, year int, seq int64) string {
	return fmt.Sprintf("%s-%d-%03d", prefix, year, seq)
}

// nextSequence bumps and returns the per-year invoice counter inside
// the caller's transaction. The upsert keeps the row locked until
// commit, so concurrent generation runs allocate distinct, gapless
// numbers.
func nextSequence(ctx context.Context, tx *sqlx.Tx, year int) (int64, error) {
	query := tx.Rebind(`INSERT INTO invoice_sequences (year, last_value) VALUES (?, 1)
        ON CONFLICT (year) DO UPDATE SET last_value = invoice_sequences.last_value + 1
        RETURNING last_value`)
	var seq int64
	if err := tx.QueryRowxContext(ctx, query, year).Scan(&seq); err != nil {
		return 0, fmt.Errorf("next invoice sequence: %w", err)
	}
	return seq, nil
}

// CreateWithLines persists the invoice, its lines, and the billed
// transition of its treatments as one transaction. A failing claim
// (domain.ErrAlreadyBilled) rolls everything back so no partial invoice
// is ever visible.
func (r *InvoiceRepository) CreateWithLines(ctx context.Context, inv *domain.Invoice, lines []domain.InvoiceLine, treatmentIDs []int64) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("create invoice: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	year := inv.InvoiceDate.Year()
	seq, err := nextSequence(ctx, tx, year)
	if err != nil {
		return err
	}
	inv.InvoiceNumber = formatInvoiceNumber(r.numberPrefix, year, seq)

	query := tx.Rebind(`INSERT INTO invoices (client_id, invoice_number, invoice_date, due_date, status, total_amount)
        VALUES (?, ?, ?, ?, ?, ?) RETURNING id`)
	err = tx.QueryRowxContext(ctx, query,
		inv.ClientID, inv.InvoiceNumber,
		inv.InvoiceDate.Format(dateLayout), inv.DueDate.Format(dateLayout),
		string(inv.Status), inv.TotalAmount.StringFixed(2),
	).Scan(&inv.ID)
	if err != nil {
		return mapError(err)
	}

	lineQuery := tx.Rebind(`INSERT INTO invoice_lines (invoice_id, treatment_id, description, amount)
        VALUES (?, ?, ?, ?)`)
	for i := range lines {
		lines[i].InvoiceID = inv.ID
		if _, err := tx.ExecContext(ctx, lineQuery,
			inv.ID, lines[i].TreatmentID, lines[i].Description, lines[i].Amount.StringFixed(2),
		); err != nil {
			return mapError(err)
		}
	}

	if err := markTreatmentsBilled(ctx, tx, treatmentIDs, inv.ID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("create invoice: commit: %w", err)
	}
	return nil
}

func (r *InvoiceRepository) FindByID(ctx context.Context, id int64) (*domain.Invoice, error) {
	var row invoiceRow
	query := r.db.Rebind(`SELECT id, client_id, invoice_number, invoice_date, due_date, status, total_amount
        FROM invoices WHERE id = ?`)
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrInvoiceNotFound
		}
		return nil, fmt.Errorf("find invoice: %w", err)
	}
	invoice, err := row.toDomain()
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

type detailHeaderRow struct {
	invoiceRow
	ClientName string `db:"client_name"`
}

type detailLineRow struct {
	TreatmentID   int64               `db:"treatment_id"`
	TreatmentDate string              `db:"treatment_date"`
	DurationHours decimal.NullDecimal `db:"duration_hours"`
	MethodName    string              `db:"method_name"`
	BillingType   string              `db:"billing_type"`
	Description   string              `db:"description"`
	Amount        decimal.Decimal     `db:"amount"`
}

// Detail assembles the read-only invoice view: header, client name, and
// lines ordered by treatment date then treatment id, mirroring the
// order they were aggregated in.
func (r *InvoiceRepository) Detail(ctx context.Context, id int64) (*ports.InvoiceDetail, error) {
	var header detailHeaderRow
	query := r.db.Rebind(`
        SELECT i.id, i.client_id, i.invoice_number, i.invoice_date, i.due_date, i.status, i.total_amount,
               c.name AS client_name
        FROM invoices i
        JOIN clients c ON i.client_id = c.id
        WHERE i.id = ?`)
	if err := r.db.GetContext(ctx, &header, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrInvoiceNotFound
		}
		return nil, fmt.Errorf("invoice detail: %w", err)
	}
	invoice, err := header.toDomain()
	if err != nil {
		return nil, err
	}

	var lineRows []detailLineRow
	linesQuery := r.db.Rebind(`
        SELECT l.treatment_id, l.description, l.amount,
               t.treatment_date, t.duration_hours,
               m.name AS method_name, m.billing_type
        FROM invoice_lines l
        JOIN treatments t ON l.treatment_id = t.id
        JOIN treatment_methods m ON t.treatment_method_id = m.id
        WHERE l.invoice_id = ?
        ORDER BY t.treatment_date, t.id`)
	if err := r.db.SelectContext(ctx, &lineRows, linesQuery, id); err != nil {
		return nil, fmt.Errorf("invoice detail lines: %w", err)
	}

	lines := make([]ports.InvoiceDetailLine, len(lineRows))
	for i, row := range lineRows {
		date, err := time.Parse(dateLayout, row.TreatmentDate)
		if err != nil {
			return nil, fmt.Errorf("invoice line for treatment %d: bad date %q: %w", row.TreatmentID, row.TreatmentDate, err)
		}
		lines[i] = ports.InvoiceDetailLine{
			TreatmentID:   row.TreatmentID,
			TreatmentDate: date,
			MethodName:    row.MethodName,
			BillingType:   domain.BillingType(row.BillingType),
			DurationHours: row.DurationHours,
			Description:   row.Description,
			Amount:        row.Amount,
		}
	}

	return &ports.InvoiceDetail{
		Invoice:    invoice,
		ClientName: header.ClientName,
		Lines:      lines,
	}, nil
}

func (r *InvoiceRepository) List(ctx context.Context, filter ports.ListInvoicesFilter) ([]ports.InvoiceSummary, error) {
	var (
		conditions []string
		args       []any
	)
	if filter.ClientID != 0 {
		conditions = append(conditions, "i.client_id = ?")
		args = append(args, filter.ClientID)
	}
	if filter.Status != "" {
		conditions = append(conditions, "i.status = ?")
		args = append(args, string(filter.Status))
	}

	query := `
        SELECT i.id, i.client_id, i.invoice_number, i.invoice_date, i.due_date, i.status, i.total_amount,
               c.name AS client_name
        FROM invoices i
        JOIN clients c ON i.client_id = c.id`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY i.invoice_date DESC, i.id DESC"

	var rows []detailHeaderRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}

	summaries := make([]ports.InvoiceSummary, len(rows))
	for i, row := range rows {
		invoice, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		summaries[i] = ports.InvoiceSummary{
			ID:            invoice.ID,
			InvoiceNumber: invoice.InvoiceNumber,
			ClientID:      invoice.ClientID,
			ClientName:    row.ClientName,
			InvoiceDate:   invoice.InvoiceDate,
			DueDate:       invoice.DueDate,
			Status:        invoice.Status,
			TotalAmount:   invoice.TotalAmount,
		}
	}
	return summaries, nil
}

// TransitionStatus moves the invoice between states with an optimistic
// WHERE status = from guard. A zero update either means the invoice is
// gone or that a concurrent transition won.
func (r *InvoiceRepository) TransitionStatus(ctx context.Context, id int64, from, to domain.InvoiceStatus) error {
	query := r.db.Rebind("UPDATE invoices SET status = ? WHERE id = ? AND status = ?")
	res, err := r.db.ExecContext(ctx, query, string(to), id, string(from))
	if err != nil {
		return mapError(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("transition invoice: %w", err)
	}
	if affected == 0 {
		return transitionConflict(ctx, r.db, id, from, to)
	}
	return nil
}

// Void transitions open → void and releases the invoice's treatments in
// one transaction: the exact inverse of generation for its treatment set.
func (r *InvoiceRepository) Void(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("void invoice: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := tx.Rebind("UPDATE invoices SET status = ? WHERE id = ? AND status = ?")
	res, err := tx.ExecContext(ctx, query, string(domain.StatusVoid), id, string(domain.StatusOpen))
	if err != nil {
		return mapError(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("void invoice: %w", err)
	}
	if affected == 0 {
		return transitionConflict(ctx, tx, id, domain.StatusOpen, domain.StatusVoid)
	}

	if err := releaseTreatments(ctx, tx, id); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("void invoice: commit: %w", err)
	}
	return nil
}

// transitionConflict turns a zero-row status update into the precise
// domain error: not found when the invoice does not exist, otherwise an
// invalid transition (the status changed since it was read). The lookup
// runs on the caller's handle; a caller holding an open transaction
// must pass that transaction, since the pool may have no free
// connection left (SQLite runs with a single one).
func transitionConflict(ctx context.Context, q sqlx.ExtContext, id int64, from, to domain.InvoiceStatus) error {
	var current string
	query := q.Rebind("SELECT status FROM invoices WHERE id = ?")
	if err := sqlx.GetContext(ctx, q, &current, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrInvoiceNotFound
		}
		return fmt.Errorf("transition invoice: %w", err)
	}
	return fmt.Errorf("%w (from %s to %s, invoice is %s)", domain.ErrInvalidTransition, from, to, current)
}
