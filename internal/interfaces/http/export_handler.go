package http

import (
	"bytes"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/emanueliriarte-arch/mi-app-inventario/internal/application/report"
)

// ExportHandler descargas CSV y PDF del catálogo y del historial.
type ExportHandler struct {
	uc             *report.UseCase
	csvContentType string
}

// NewExportHandler construye el handler. csvContentType depende del charset configurado.
func NewExportHandler(uc *report.UseCase, csvContentType string) *ExportHandler {
	if csvContentType == "" {
		csvContentType = "text/csv; charset=utf-8"
	}
	return &ExportHandler{uc: uc, csvContentType: csvContentType}
}

// ProductsCSV godoc
// @Summary      Exportar catálogo (CSV)
// @Tags         exports
// @Produce      text/csv
// @Param        location  query  string  false  "Departamento"
// @Success      200
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/exports/products.csv [get]
func (h *ExportHandler) ProductsCSV(c *fiber.Ctx) error {
	var buf bytes.Buffer
	if err := h.uc.WriteProductsCSV(c.UserContext(), &buf, productFilter(c)); err != nil {
		return writeError(c, err)
	}
	return h.attachment(c, "productos.csv", h.csvContentType, buf.Bytes())
}

// MovementsCSV godoc
// @Summary      Exportar historial (CSV)
// @Tags         exports
// @Produce      text/csv
// @Param        product_id  query  int     false  "ID del producto"
// @Param        type        query  string  false  "Tipo de movimiento"
// @Success      200
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/exports/movements.csv [get]
func (h *ExportHandler) MovementsCSV(c *fiber.Ctx) error {
	filter, ok := movementFilter(c)
	if !ok {
		return invalidID(c)
	}
	var buf bytes.Buffer
	if err := h.uc.WriteMovementsCSV(c.UserContext(), &buf, filter); err != nil {
		return writeError(c, err)
	}
	return h.attachment(c, "movimientos.csv", h.csvContentType, buf.Bytes())
}

// ProductsPDF godoc
// @Summary      Reporte de existencias (PDF)
// @Tags         exports
// @Produce      application/pdf
// @Success      200
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/exports/products.pdf [get]
func (h *ExportHandler) ProductsPDF(c *fiber.Ctx) error {
	pdf, name, err := h.uc.StockReportPDF(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return h.attachment(c, name, "application/pdf", pdf)
}

func (h *ExportHandler) attachment(c *fiber.Ctx, name, contentType string, body []byte) error {
	c.Set(fiber.HeaderContentType, contentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, name))
	return c.Send(body)
}
