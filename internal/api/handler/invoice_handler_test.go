package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/marcelsmeets511/lijf-leven-administratie-backend/internal/core/domain"
	"github.com/marcelsmeets511/lijf-leven-administratie-backend/internal/core/ports"
)

type stubInvoiceService struct {
	generateFn   func(ctx context.Context, input ports.GenerateInvoicesInput) (*ports.GenerationResult, error)
	getFn        func(ctx context.Context, id int64) (*ports.InvoiceDetail, error)
	listFn       func(ctx context.Context, filter ports.ListInvoicesFilter) ([]ports.InvoiceSummary, error)
	transitionFn func(ctx context.Context, id int64, target string) (*ports.InvoiceDetail, error)
}

func (s *stubInvoiceService) GenerateInvoices(ctx context.Context, input ports.GenerateInvoicesInput) (*ports.GenerationResult, error) {
	return s.generateFn(ctx, input)
}

func (s *stubInvoiceService) GetInvoice(ctx context.Context, id int64) (*ports.InvoiceDetail, error) {
	return s.getFn(ctx, id)
}

func (s *stubInvoiceService) ListInvoices(ctx context.Context, filter ports.ListInvoicesFilter) ([]ports.InvoiceSummary, error) {
	return s.listFn(ctx, filter)
}

func (s *stubInvoiceService) TransitionInvoice(ctx context.Context, id int64, target string) (*ports.InvoiceDetail, error) {
	return s.transitionFn(ctx, id, target)
}

func testEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func testDetail() *ports.InvoiceDetail {
	day := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)
	return &ports.InvoiceDetail{
		Invoice: domain.Invoice{
			ID:            1,
			ClientID:      1,
			InvoiceNumber: "FACT-2025-001",
			InvoiceDate:   day,
			DueDate:       day.AddDate(0, 0, 14),
			Status:        domain.StatusOpen,
			TotalAmount:   decimal.RequireFromString("205.00"),
		},
		ClientName: "Jan de Vries",
		Lines: []ports.InvoiceDetailLine{
			{
				TreatmentID:   10,
				TreatmentDate: day.AddDate(0, 0, -7),
				MethodName:    "Fysiotherapie",
				BillingType:   domain.BillingHourly,
				DurationHours: decimal.NullDecimal{Decimal: decimal.RequireFromString("2.5"), Valid: true},
				Description:   "Fysiotherapie (2025-06-23)",
				Amount:        decimal.RequireFromString("125.00"),
			},
		},
	}
}

func TestInvoiceHandler_Generate_ForwardsIdempotencyKey(t *testing.T) {
	e := testEcho()
	var captured ports.GenerateInvoicesInput
	stub := &stubInvoiceService{
		generateFn: func(_ context.Context, input ports.GenerateInvoicesInput) (*ports.GenerationResult, error) {
			captured = input
			return &ports.GenerationResult{
				RunID:   "run-1",
				Created: 1,
				Clients: []ports.ClientOutcome{{ClientID: 1, Outcome: ports.OutcomeCreated, InvoiceID: 1, InvoiceNumber: "FACT-2025-001"}},
			}, nil
		},
	}
	handler := NewInvoiceHandler(stub)

	body := strings.NewReader(`{"client_ids":[1],"as_of_date":"2025-06-30"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/invoices/generate", body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set("Idempotency-Key", "run-june")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.Generate(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if captured.IdempotencyKey != "run-june" {
		t.Fatalf("idempotency key not forwarded: %q", captured.IdempotencyKey)
	}
	if len(captured.ClientIDs) != 1 || captured.ClientIDs[0] != 1 {
		t.Fatalf("client ids not forwarded: %v", captured.ClientIDs)
	}
	if captured.AsOfDate.Format("2006-01-02") != "2025-06-30" {
		t.Fatalf("as_of_date not forwarded: %s", captured.AsOfDate)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["created"] != float64(1) {
		t.Fatalf("unexpected created count: %v", resp["created"])
	}
}

func TestInvoiceHandler_Generate_BadDate(t *testing.T) {
	e := testEcho()
	stub := &stubInvoiceService{
		generateFn: func(_ context.Context, _ ports.GenerateInvoicesInput) (*ports.GenerationResult, error) {
			t.Fatal("service should not be called")
			return nil, nil
		},
	}
	handler := NewInvoiceHandler(stub)

	body := strings.NewReader(`{"as_of_date":"30-06-2025"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/invoices/generate", body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := handler.Generate(c)
	var he *echo.HTTPError
	if err == nil || !errors.As(err, &he) || he.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %v", err)
	}
}

func TestInvoiceHandler_List_Filters(t *testing.T) {
	e := testEcho()
	var captured ports.ListInvoicesFilter
	stub := &stubInvoiceService{
		listFn: func(_ context.Context, filter ports.ListInvoicesFilter) ([]ports.InvoiceSummary, error) {
			captured = filter
			return nil, nil
		},
	}
	handler := NewInvoiceHandler(stub)

	req := httptest.NewRequest(http.MethodGet, "/api/invoices?client_id=3&status=open", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if captured.ClientID != 3 || captured.Status != domain.StatusOpen {
		t.Fatalf("filter not forwarded: %+v", captured)
	}
}

func TestInvoiceHandler_List_RejectsBadStatus(t *testing.T) {
	e := testEcho()
	stub := &stubInvoiceService{
		listFn: func(_ context.Context, _ ports.ListInvoicesFilter) ([]ports.InvoiceSummary, error) {
			t.Fatal("service should not be called")
			return nil, nil
		},
	}
	handler := NewInvoiceHandler(stub)

	req := httptest.NewRequest(http.MethodGet, "/api/invoices?status=draft", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := handler.List(c)
	var he *echo.HTTPError
	if err == nil || !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestInvoiceHandler_Get(t *testing.T) {
	e := testEcho()
	stub := &stubInvoiceService{
		getFn: func(_ context.Context, id int64) (*ports.InvoiceDetail, error) {
			if id != 1 {
				return nil, domain.ErrInvoiceNotFound
			}
			return testDetail(), nil
		},
	}
	handler := NewInvoiceHandler(stub)

	req := httptest.NewRequest(http.MethodGet, "/api/invoices/1", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("1")

	if err := handler.Get(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["invoice_number"] != "FACT-2025-001" || resp["total_amount"] != "205.00" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
	lines, ok := resp["lines"].([]any)
	if !ok || len(lines) != 1 {
		t.Fatalf("expected 1 line: %+v", resp["lines"])
	}
}

func TestInvoiceHandler_Transition(t *testing.T) {
	e := testEcho()
	stub := &stubInvoiceService{
		transitionFn: func(_ context.Context, id int64, target string) (*ports.InvoiceDetail, error) {
			if id != 1 || target != "paid" {
				t.Fatalf("unexpected args: %d %s", id, target)
			}
			detail := testDetail()
			detail.Invoice.Status = domain.StatusPaid
			return detail, nil
		},
	}
	handler := NewInvoiceHandler(stub)

	body := strings.NewReader(`{"status":"paid"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/invoices/1/status", body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("1")

	if err := handler.Transition(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["status"] != "paid" {
		t.Fatalf("unexpected status: %v", resp["status"])
	}
}

func TestInvoiceHandler_Transition_RejectsUnknownTarget(t *testing.T) {
	e := testEcho()
	stub := &stubInvoiceService{
		transitionFn: func(_ context.Context, _ int64, _ string) (*ports.InvoiceDetail, error) {
			t.Fatal("service should not be called")
			return nil, nil
		},
	}
	handler := NewInvoiceHandler(stub)

	body := strings.NewReader(`{"status":"archived"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/invoices/1/status", body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("1")

	err := handler.Transition(c)
	var he *echo.HTTPError
	if err == nil || !errors.As(err, &he) || he.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %v", err)
	}
}
