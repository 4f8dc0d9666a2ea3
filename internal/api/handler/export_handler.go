package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/marcelsmeets511/lijf-leven-administratie-backend/internal/api/metrics"
	"github.com/marcelsmeets511/lijf-leven-administratie-backend/internal/core/ports"
)

// ExportHandler serves invoice document downloads. Each supported format
// is backed by an injected renderer.
type ExportHandler struct {
	service ports.InvoiceService
	pdf     ports.InvoiceRenderer
	xlsx    ports.InvoiceRenderer
}

func NewExportHandler(service ports.InvoiceService, pdf, xlsx ports.InvoiceRenderer) *ExportHandler {
	return &ExportHandler{service: service, pdf: pdf, xlsx: xlsx}
}

// PDF handles GET /api/invoices/:id/pdf.
//
// @Summary      Download an invoice as PDF
// @Tags         invoices
// @Produce      application/pdf
// @Param        id   path  int  true  "Invoice id"
// @Success      200  {file}    file
// @Failure      404  {object}  errorResponse
// @Router       /api/invoices/{id}/pdf [get]
func (h *ExportHandler) PDF(c echo.Context) error {
	return h.export(c, h.pdf)
}

// XLSX handles GET /api/invoices/:id/xls.
//
// @Summary      Download an invoice as a spreadsheet
// @Tags         invoices
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        id   path  int  true  "Invoice id"
// @Success      200  {file}    file
// @Failure      404  {object}  errorResponse
// @Router       /api/invoices/{id}/xls [get]
func (h *ExportHandler) XLSX(c echo.Context) error {
	return h.export(c, h.xlsx)
}

func (h *ExportHandler) export(c echo.Context, renderer ports.InvoiceRenderer) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	detail, err := h.service.GetInvoice(c.Request().Context(), id)
	if err != nil {
		return err
	}

	doc, err := renderer.Render(c.Request().Context(), detail)
	if err != nil {
		return err
	}
	metrics.InvoiceExportsTotal.WithLabelValues(renderer.FileExtension()).Inc()

	filename := fmt.Sprintf("factuur_%s.%s", detail.Invoice.InvoiceNumber, renderer.FileExtension())
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf(`attachment; filename=%q`, filename))
	return c.Blob(http.StatusOK, renderer.ContentType(), doc)
}
