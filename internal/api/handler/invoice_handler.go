package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/marcelsmeets511/lijf-leven-administratie-backend/internal/api/metrics"
	"github.com/marcelsmeets511/lijf-leven-administratie-backend/internal/core/domain"
	"github.com/marcelsmeets511/lijf-leven-administratie-backend/internal/core/ports"
)

// InvoiceHandler handles HTTP requests for invoice operations.
type InvoiceHandler struct {
	service ports.InvoiceService
}

func NewInvoiceHandler(service ports.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{service: service}
}

type generateInvoicesRequest struct {
	// ClientIDs limits the run to the given clients; empty means every
	// client with unbilled treatments.
	ClientIDs []int64 `json:"client_ids,omitempty"`
	// AsOfDate includes treatments dated on or before it; empty means today.
	AsOfDate string `json:"as_of_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

type transitionInvoiceRequest struct {
	Status string `json:"status" validate:"required,oneof=paid void"`
}

type invoiceSummaryResponse struct {
	ID            int64  `json:"id"`
	InvoiceNumber string `json:"invoice_number"`
	ClientID      int64  `json:"client_id"`
	ClientName    string `json:"client_name"`
	InvoiceDate   string `json:"invoice_date"`
	DueDate       string `json:"due_date"`
	Status        string `json:"status"`
	TotalAmount   string `json:"total_amount"`
}

type invoiceLineResponse struct {
	TreatmentID   int64   `json:"treatment_id"`
	TreatmentDate string  `json:"treatment_date"`
	MethodName    string  `json:"method_name"`
	BillingType   string  `json:"billing_type"`
	DurationHours *string `json:"duration_hours,omitempty"`
	Description   string  `json:"description"`
	Amount        string  `json:"amount"`
}

type invoiceDetailResponse struct {
	invoiceSummaryResponse
	Lines []invoiceLineResponse `json:"lines"`
}

func toInvoiceSummaryResponse(s *ports.InvoiceSummary) invoiceSummaryResponse {
	return invoiceSummaryResponse{
		ID:            s.ID,
		InvoiceNumber: s.InvoiceNumber,
		ClientID:      s.ClientID,
		ClientName:    s.ClientName,
		InvoiceDate:   s.InvoiceDate.Format(dateLayout),
		DueDate:       s.DueDate.Format(dateLayout),
		Status:        string(s.Status),
		TotalAmount:   s.TotalAmount.StringFixed(2),
	}
}

func toInvoiceDetailResponse(d *ports.InvoiceDetail) invoiceDetailResponse {
	inv := d.Invoice
	resp := invoiceDetailResponse{
		invoiceSummaryResponse: invoiceSummaryResponse{
			ID:            inv.ID,
			InvoiceNumber: inv.InvoiceNumber,
			ClientID:      inv.ClientID,
			ClientName:    d.ClientName,
			InvoiceDate:   inv.InvoiceDate.Format(dateLayout),
			DueDate:       inv.DueDate.Format(dateLayout),
			Status:        string(inv.Status),
			TotalAmount:   inv.TotalAmount.StringFixed(2),
		},
		Lines: make([]invoiceLineResponse, 0, len(d.Lines)),
	}
	for i := range d.Lines {
		line := &d.Lines[i]
		lr := invoiceLineResponse{
			TreatmentID:   line.TreatmentID,
			TreatmentDate: line.TreatmentDate.Format(dateLayout),
			MethodName:    line.MethodName,
			BillingType:   string(line.BillingType),
			Description:   line.Description,
			Amount:        line.Amount.StringFixed(2),
		}
		if line.DurationHours.Valid {
			s := line.DurationHours.Decimal.String()
			lr.DurationHours = &s
		}
		resp.Lines = append(resp.Lines, lr)
	}
	return resp
}

// Generate handles POST /api/invoices/generate.
//
// An Idempotency-Key request header makes retries safe: a replayed key
// is acknowledged without generating anything.
//
// @Summary      Generate invoices from unbilled treatments
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header    string                   false  "Idempotency key"
// @Param        body             body      generateInvoicesRequest  false  "Generation parameters"
// @Success      200              {object}  ports.GenerationResult
// @Failure      400              {object}  errorResponse
// @Failure      422              {object}  errorResponse
// @Router       /api/invoices/generate [post]
func (h *InvoiceHandler) Generate(c echo.Context) error {
	var req generateInvoicesRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	input := ports.GenerateInvoicesInput{
		ClientIDs:      req.ClientIDs,
		IdempotencyKey: c.Request().Header.Get("Idempotency-Key"),
	}
	if req.AsOfDate != "" {
		asOf, err := time.Parse(dateLayout, req.AsOfDate)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnprocessableEntity, "as_of_date must be a date in 2006-01-02 format")
		}
		input.AsOfDate = asOf
	}

	start := time.Now()
	result, err := h.service.GenerateInvoices(c.Request().Context(), input)
	if err != nil {
		return err
	}
	metrics.GenerationDuration.Observe(time.Since(start).Seconds())

	if result.AlreadyProcessed {
		metrics.GenerationRunsTotal.WithLabelValues("replayed").Inc()
	} else {
		metrics.GenerationRunsTotal.WithLabelValues("completed").Inc()
		for _, outcome := range result.Clients {
			metrics.InvoicesGeneratedTotal.WithLabelValues(outcome.Outcome).Inc()
		}
	}

	return c.JSON(http.StatusOK, result)
}

// Get handles GET /api/invoices/:id.
//
// @Summary      Get an invoice with its lines
// @Tags         invoices
// @Produce      json
// @Param        id   path      int  true  "Invoice id"
// @Success      200  {object}  invoiceDetailResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/invoices/{id} [get]
func (h *InvoiceHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	detail, err := h.service.GetInvoice(c.Request().Context(), id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toInvoiceDetailResponse(detail))
}

// List handles GET /api/invoices with optional client_id and status filters.
//
// @Summary      List invoices
// @Tags         invoices
// @Produce      json
// @Param        client_id  query     int     false  "Filter by client id"
// @Param        status     query     string  false  "Filter by status (open, paid, void)"
// @Success      200        {array}   invoiceSummaryResponse
// @Failure      400        {object}  errorResponse
// @Router       /api/invoices [get]
func (h *InvoiceHandler) List(c echo.Context) error {
	var filter ports.ListInvoicesFilter

	if raw := c.QueryParam("client_id"); raw != "" {
		id, err := parseID(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid client_id")
		}
		filter.ClientID = id
	}
	if raw := c.QueryParam("status"); raw != "" {
		status := domain.InvoiceStatus(raw)
		if !status.Valid() {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid status")
		}
		filter.Status = status
	}

	summaries, err := h.service.ListInvoices(c.Request().Context(), filter)
	if err != nil {
		return err
	}

	out := make([]invoiceSummaryResponse, 0, len(summaries))
	for i := range summaries {
		out = append(out, toInvoiceSummaryResponse(&summaries[i]))
	}
	return c.JSON(http.StatusOK, out)
}

// Transition handles POST /api/invoices/:id/status.
//
// @Summary      Transition an invoice to paid or void
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        id    path      int                       true  "Invoice id"
// @Param        body  body      transitionInvoiceRequest  true  "Target status"
// @Success      200   {object}  invoiceDetailResponse
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /api/invoices/{id}/status [post]
func (h *InvoiceHandler) Transition(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	var req transitionInvoiceRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	detail, err := h.service.TransitionInvoice(c.Request().Context(), id, req.Status)
	if err != nil {
		return err
	}
	metrics.InvoiceTransitionsTotal.WithLabelValues(req.Status).Inc()

	return c.JSON(http.StatusOK, toInvoiceDetailResponse(detail))
}
