package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/marcelsmeets511/lijf-leven-administratie-backend/internal/core/domain"
	"github.com/marcelsmeets511/lijf-leven-administratie-backend/internal/core/ports"
)

const dateLayout = "2006-01-02"

// TreatmentHandler handles HTTP requests for treatment operations.
type TreatmentHandler struct {
	service ports.TreatmentService
}

func NewTreatmentHandler(service ports.TreatmentService) *TreatmentHandler {
	return &TreatmentHandler{service: service}
}

type createTreatmentRequest struct {
	ClientID          int64  `json:"client_id" validate:"required,gt=0"`
	TreatmentMethodID int64  `json:"treatment_method_id" validate:"required,gt=0"`
	TreatmentDate     string `json:"treatment_date" validate:"required,datetime=2006-01-02"`
	// DurationHours is a decimal string, required for hourly methods and
	// absent for session methods.
	DurationHours *string `json:"duration_hours,omitempty"`
	Notes         string  `json:"notes,omitempty"`
}

type treatmentResponse struct {
	ID                int64   `json:"id"`
	ClientID          int64   `json:"client_id"`
	TreatmentMethodID int64   `json:"treatment_method_id"`
	TreatmentDate     string  `json:"treatment_date"`
	DurationHours     *string `json:"duration_hours,omitempty"`
	Notes             string  `json:"notes,omitempty"`
	IsBilled          bool    `json:"is_billed"`
	InvoiceID         *int64  `json:"invoice_id,omitempty"`
}

type treatmentRowResponse struct {
	treatmentResponse
	ClientName  string `json:"client_name"`
	MethodName  string `json:"method_name"`
	BillingType string `json:"billing_type"`
	Rate        string `json:"rate"`
}

func toTreatmentResponse(t *domain.Treatment) treatmentResponse {
	resp := treatmentResponse{
		ID:                t.ID,
		ClientID:          t.ClientID,
		TreatmentMethodID: t.TreatmentMethodID,
		TreatmentDate:     t.TreatmentDate.Format(dateLayout),
		Notes:             t.Notes,
		IsBilled:          t.IsBilled,
		InvoiceID:         t.InvoiceID,
	}
	if t.DurationHours.Valid {
		s := t.DurationHours.Decimal.String()
		resp.DurationHours = &s
	}
	return resp
}

// Create handles POST /api/treatments.
//
// @Summary      Register a performed treatment
// @Tags         treatments
// @Accept       json
// @Produce      json
// @Param        body  body      createTreatmentRequest  true  "Treatment details"
// @Success      201   {object}  treatmentResponse
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /api/treatments [post]
func (h *TreatmentHandler) Create(c echo.Context) error {
	var req createTreatmentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	date, err := time.Parse(dateLayout, req.TreatmentDate)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "treatment_date must be a date in 2006-01-02 format")
	}

	treatment, err := h.service.CreateTreatment(c.Request().Context(), ports.CreateTreatmentInput{
		ClientID:          req.ClientID,
		TreatmentMethodID: req.TreatmentMethodID,
		TreatmentDate:     date,
		DurationHours:     req.DurationHours,
		Notes:             req.Notes,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, toTreatmentResponse(treatment))
}

// List handles GET /api/treatments.
//
// @Summary      List all treatments with client and method names
// @Tags         treatments
// @Produce      json
// @Success      200  {array}  treatmentRowResponse
// @Router       /api/treatments [get]
func (h *TreatmentHandler) List(c echo.Context) error {
	rows, err := h.service.ListTreatments(c.Request().Context())
	if err != nil {
		return err
	}

	out := make([]treatmentRowResponse, 0, len(rows))
	for i := range rows {
		row := &rows[i]
		out = append(out, treatmentRowResponse{
			treatmentResponse: toTreatmentResponse(&row.Treatment),
			ClientName:        row.ClientName,
			MethodName:        row.MethodName,
			BillingType:       string(row.BillingType),
			Rate:              row.Rate.StringFixed(2),
		})
	}
	return c.JSON(http.StatusOK, out)
}
