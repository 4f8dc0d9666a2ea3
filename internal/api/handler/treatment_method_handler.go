package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/marcelsmeets511/lijf-leven-administratie-backend/internal/core/domain"
	"github.com/marcelsmeets511/lijf-leven-administratie-backend/internal/core/ports"
)

// TreatmentMethodHandler handles HTTP requests for treatment method operations.
type TreatmentMethodHandler struct {
	service ports.TreatmentService
}

func NewTreatmentMethodHandler(service ports.TreatmentService) *TreatmentMethodHandler {
	return &TreatmentMethodHandler{service: service}
}

type createTreatmentMethodRequest struct {
	Name        string `json:"name" validate:"required"`
	BillingType string `json:"billing_type" validate:"required,oneof=hourly session"`
	// Rate is a decimal string, e.g. "85.00". Floats would lose the
	// fixed-point guarantee on the wire.
	Rate string `json:"rate" validate:"required"`
}

type treatmentMethodResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	BillingType string `json:"billing_type"`
	Rate        string `json:"rate"`
}

func toTreatmentMethodResponse(m *domain.TreatmentMethod) treatmentMethodResponse {
	return treatmentMethodResponse{
		ID:          m.ID,
		Name:        m.Name,
		BillingType: string(m.BillingType),
		Rate:        m.Rate.StringFixed(2),
	}
}

// Create handles POST /api/treatment-methods.
//
// @Summary      Register a new treatment method
// @Tags         treatment-methods
// @Accept       json
// @Produce      json
// @Param        body  body      createTreatmentMethodRequest  true  "Treatment method details"
// @Success      201   {object}  treatmentMethodResponse
// @Failure      400   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /api/treatment-methods [post]
func (h *TreatmentMethodHandler) Create(c echo.Context) error {
	var req createTreatmentMethodRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	method, err := h.service.CreateTreatmentMethod(c.Request().Context(), ports.CreateTreatmentMethodInput{
		Name:        req.Name,
		BillingType: req.BillingType,
		Rate:        req.Rate,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, toTreatmentMethodResponse(method))
}

// List handles GET /api/treatment-methods.
//
// @Summary      List all treatment methods
// @Tags         treatment-methods
// @Produce      json
// @Success      200  {array}  treatmentMethodResponse
// @Router       /api/treatment-methods [get]
func (h *TreatmentMethodHandler) List(c echo.Context) error {
	methods, err := h.service.ListTreatmentMethods(c.Request().Context())
	if err != nil {
		return err
	}

	out := make([]treatmentMethodResponse, 0, len(methods))
	for i := range methods {
		out = append(out, toTreatmentMethodResponse(&methods[i]))
	}
	return c.JSON(http.StatusOK, out)
}
