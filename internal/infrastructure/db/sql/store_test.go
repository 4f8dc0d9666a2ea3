package sql

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/marcelsmeets511/lijf-leven-administratie-backend/internal/core/domain"
	"github.com/marcelsmeets511/lijf-leven-administratie-backend/internal/core/ports"
)

func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := Connect(Config{Driver: DriverSQLite, DSN: "file:" + filepath.Join(t.TempDir(), "store.db")})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := Migrate(db, DriverSQLite); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedClient(t *testing.T, db *sqlx.DB, name string) int64 {
	t.Helper()
	c := &domain.Client{Name: name}
	if err := NewClientRepository(db).Create(context.Background(), c); err != nil {
		t.Fatalf("seed client: %v", err)
	}
	return c.ID
}

func seedMethod(t *testing.T, db *sqlx.DB, name string, billing domain.BillingType, rate string) int64 {
	t.Helper()
	m := &domain.TreatmentMethod{Name: name, BillingType: billing, Rate: decimal.RequireFromString(rate)}
	if err := NewTreatmentMethodRepository(db).Create(context.Background(), m); err != nil {
		t.Fatalf("seed method: %v", err)
	}
	return m.ID
}

func seedTreatment(t *testing.T, db *sqlx.DB, clientID, methodID int64, day time.Time, hours string) int64 {
	t.Helper()
	tr := &domain.Treatment{ClientID: clientID, TreatmentMethodID: methodID, TreatmentDate: day}
	if hours != "" {
		tr.DurationHours = decimal.NullDecimal{Decimal: decimal.RequireFromString(hours), Valid: true}
	}
	if err := NewTreatmentRepository(db).Create(context.Background(), tr); err != nil {
		t.Fatalf("seed treatment: %v", err)
	}
	return tr.ID
}

// billedInvoice seeds one client with two treatments and generates the
// invoice for them, returning the repositories and ids the tests poke at.
type billedInvoice struct {
	invoices     *InvoiceRepository
	treatments   *TreatmentRepository
	invoice      *domain.Invoice
	treatmentIDs []int64
}

func newBilledInvoice(t *testing.T, db *sqlx.DB) billedInvoice {
	t.Helper()
	clientID := seedClient(t, db, "Jan de Vries")
	methodID := seedMethod(t, db, "Fysiotherapie", domain.BillingHourly, "50.00")
	day := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)
	t1 := seedTreatment(t, db, clientID, methodID, day.AddDate(0, 0, -7), "2.5")
	t2 := seedTreatment(t, db, clientID, methodID, day.AddDate(0, 0, -3), "1.5")

	invoices := NewInvoiceRepository(db, "FACT")
	inv := &domain.Invoice{
		ClientID:    clientID,
		InvoiceDate: day,
		DueDate:     day.AddDate(0, 0, 14),
		Status:      domain.StatusOpen,
		TotalAmount: decimal.RequireFromString("200.00"),
	}
	lines := []domain.InvoiceLine{
		{TreatmentID: t1, Description: "Fysiotherapie (2025-06-23)", Amount: decimal.RequireFromString("125.00")},
		{TreatmentID: t2, Description: "Fysiotherapie (2025-06-27)", Amount: decimal.RequireFromString("75.00")},
	}
	if err := invoices.CreateWithLines(context.Background(), inv, lines, []int64{t1, t2}); err != nil {
		t.Fatalf("create invoice: %v", err)
	}
	return billedInvoice{
		invoices:     invoices,
		treatments:   NewTreatmentRepository(db),
		invoice:      inv,
		treatmentIDs: []int64{t1, t2},
	}
}

func TestInvoiceStore_CreateWithLines(t *testing.T) {
	db := newTestDB(t)
	fixture := newBilledInvoice(t, db)
	ctx := context.Background()

	if fixture.invoice.ID == 0 {
		t.Fatal("invoice id not assigned")
	}
	if fixture.invoice.InvoiceNumber != "FACT-2025-001" {
		t.Fatalf("invoice number: got %q", fixture.invoice.InvoiceNumber)
	}

	detail, err := fixture.invoices.Detail(ctx, fixture.invoice.ID)
	if err != nil {
		t.Fatalf("detail: %v", err)
	}
	if detail.Invoice.Status != domain.StatusOpen {
		t.Fatalf("status: got %s", detail.Invoice.Status)
	}
	if !detail.Invoice.TotalAmount.Equal(decimal.RequireFromString("200.00")) {
		t.Fatalf("total: got %s", detail.Invoice.TotalAmount)
	}
	if len(detail.Lines) != 2 {
		t.Fatalf("lines: got %d", len(detail.Lines))
	}

	for _, id := range fixture.treatmentIDs {
		treatment, err := fixture.treatments.FindByID(ctx, id)
		if err != nil {
			t.Fatalf("find treatment %d: %v", id, err)
		}
		if !treatment.IsBilled {
			t.Fatalf("treatment %d not marked billed", id)
		}
		if treatment.InvoiceID == nil || *treatment.InvoiceID != fixture.invoice.ID {
			t.Fatalf("treatment %d not linked to invoice", id)
		}
	}
}

func TestInvoiceStore_SequenceIsPerYear(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	clientID := seedClient(t, db, "Piet Bakker")
	methodID := seedMethod(t, db, "Intake", domain.BillingSession, "80.00")
	invoices := NewInvoiceRepository(db, "FACT")

	create := func(day time.Time) string {
		treatmentID := seedTreatment(t, db, clientID, methodID, day, "")
		inv := &domain.Invoice{
			ClientID: clientID, InvoiceDate: day, DueDate: day.AddDate(0, 0, 14),
			Status: domain.StatusOpen, TotalAmount: decimal.RequireFromString("80.00"),
		}
		lines := []domain.InvoiceLine{{TreatmentID: treatmentID, Description: "Intake", Amount: decimal.RequireFromString("80.00")}}
		if err := invoices.CreateWithLines(ctx, inv, lines, []int64{treatmentID}); err != nil {
			t.Fatalf("create invoice: %v", err)
		}
		return inv.InvoiceNumber
	}

	want := []struct {
		day    time.Time
		number string
	}{
		{time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), "FACT-2025-001"},
		{time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC), "FACT-2025-002"},
		{time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC), "FACT-2026-001"},
	}
	for _, tt := range want {
		if got := create(tt.day); got != tt.number {
			t.Fatalf("invoice for %s: got %q, want %q", tt.day.Format(dateLayout), got, tt.number)
		}
	}
}

func TestInvoiceStore_SecondClaimConflicts(t *testing.T) {
	db := newTestDB(t)
	fixture := newBilledInvoice(t, db)
	ctx := context.Background()

	second := &domain.Invoice{
		ClientID:    fixture.invoice.ClientID,
		InvoiceDate: fixture.invoice.InvoiceDate,
		DueDate:     fixture.invoice.DueDate,
		Status:      domain.StatusOpen,
		TotalAmount: fixture.invoice.TotalAmount,
	}
	lines := []domain.InvoiceLine{
		{TreatmentID: fixture.treatmentIDs[0], Description: "x", Amount: decimal.RequireFromString("125.00")},
		{TreatmentID: fixture.treatmentIDs[1], Description: "x", Amount: decimal.RequireFromString("75.00")},
	}
	err := fixture.invoices.CreateWithLines(ctx, second, lines, fixture.treatmentIDs)
	if !errors.Is(err, domain.ErrAlreadyBilled) {
		t.Fatalf("expected ErrAlreadyBilled, got %v", err)
	}

	summaries, err := fixture.invoices.List(ctx, ports.ListInvoicesFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(summaries) != 1 {
		t.Fatalf("conflicting claim left %d invoices, want 1", len(summaries))
	}
}

func TestInvoiceStore_VoidReleasesTreatments(t *testing.T) {
	db := newTestDB(t)
	fixture := newBilledInvoice(t, db)
	ctx := context.Background()

	if err := fixture.invoices.Void(ctx, fixture.invoice.ID); err != nil {
		t.Fatalf("void: %v", err)
	}

	invoice, err := fixture.invoices.FindByID(ctx, fixture.invoice.ID)
	if err != nil {
		t.Fatalf("find invoice: %v", err)
	}
	if invoice.Status != domain.StatusVoid {
		t.Fatalf("status after void: got %s", invoice.Status)
	}

	for _, id := range fixture.treatmentIDs {
		treatment, err := fixture.treatments.FindByID(ctx, id)
		if err != nil {
			t.Fatalf("find treatment %d: %v", id, err)
		}
		if treatment.IsBilled {
			t.Fatalf("treatment %d still billed after void", id)
		}
		if treatment.InvoiceID != nil {
			t.Fatalf("treatment %d still linked to invoice after void", id)
		}
	}
}

func TestInvoiceStore_DoubleVoidConflicts(t *testing.T) {
	db := newTestDB(t)
	fixture := newBilledInvoice(t, db)

	if err := fixture.invoices.Void(context.Background(), fixture.invoice.ID); err != nil {
		t.Fatalf("first void: %v", err)
	}

	// The losing void must resolve the conflict promptly while its own
	// transaction holds the pool's single SQLite connection.
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	err := fixture.invoices.Void(ctx, fixture.invoice.ID)
	if errors.Is(err, context.DeadlineExceeded) {
		t.Fatal("second void blocked on the connection pool")
	}
	if !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestInvoiceStore_TransitionStatus(t *testing.T) {
	db := newTestDB(t)
	fixture := newBilledInvoice(t, db)
	ctx := context.Background()

	if err := fixture.invoices.TransitionStatus(ctx, fixture.invoice.ID, domain.StatusOpen, domain.StatusPaid); err != nil {
		t.Fatalf("open to paid: %v", err)
	}

	err := fixture.invoices.TransitionStatus(ctx, fixture.invoice.ID, domain.StatusOpen, domain.StatusPaid)
	if !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition on stale guard, got %v", err)
	}

	err = fixture.invoices.TransitionStatus(ctx, 9999, domain.StatusOpen, domain.StatusPaid)
	if !errors.Is(err, domain.ErrInvoiceNotFound) {
		t.Fatalf("expected ErrInvoiceNotFound, got %v", err)
	}
}
