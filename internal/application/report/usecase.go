// Package report arma las exportaciones del ledger: secuencias planas de filas que la capa de
// presentación convierte a CSV o PDF.
package report

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/emanueliriarte-arch/mi-app-inventario/internal/application/dto"
	"github.com/emanueliriarte-arch/mi-app-inventario/internal/domain/entity"
)

// LedgerReader lecturas del ledger que necesita el reporte (implementado por inventory.LedgerUseCase).
type LedgerReader interface {
	ListProducts(ctx context.Context, filter entity.ProductFilter) ([]*entity.Product, error)
	ListMovements(ctx context.Context, filter entity.MovementFilter) ([]*entity.Movement, error)
	StatsByLocation(ctx context.Context) (map[string]entity.LocationStats, error)
}

// TableWriter serializa una tabla (cabecera + registros).
type TableWriter interface {
	WriteTable(w io.Writer, header []string, records [][]string) error
}

// StockReportRenderer genera el PDF de existencias.
type StockReportRenderer interface {
	RenderStockReport(ctx context.Context, report dto.StockReport) ([]byte, error)
}

// UseCase exportaciones del catálogo y del historial.
type UseCase struct {
	ledger   LedgerReader
	table    TableWriter
	renderer StockReportRenderer
	now      func() time.Time
}

// NewUseCase construye el caso de uso. renderer puede ser nil si no se expone el PDF.
func NewUseCase(ledger LedgerReader, table TableWriter, renderer StockReportRenderer) *UseCase {
	return &UseCase{ledger: ledger, table: table, renderer: renderer, now: time.Now}
}

// ExportProducts filas del catálogo en el mismo orden que ListProducts.
func (uc *UseCase) ExportProducts(ctx context.Context, filter entity.ProductFilter) ([]dto.ProductRow, error) {
	list, err := uc.ledger.ListProducts(ctx, filter)
	if err != nil {
		return nil, err
	}
	rows := make([]dto.ProductRow, 0, len(list))
	for _, p := range list {
		rows = append(rows, dto.ProductRowFromEntity(p))
	}
	return rows, nil
}

// ExportMovements filas del historial en orden de inserción.
func (uc *UseCase) ExportMovements(ctx context.Context, filter entity.MovementFilter) ([]dto.MovementRow, error) {
	list, err := uc.ledger.ListMovements(ctx, filter)
	if err != nil {
		return nil, err
	}
	rows := make([]dto.MovementRow, 0, len(list))
	for _, m := range list {
		rows = append(rows, dto.MovementRowFromEntity(m))
	}
	return rows, nil
}

// WriteProductsCSV escribe el catálogo como tabla.
func (uc *UseCase) WriteProductsCSV(ctx context.Context, w io.Writer, filter entity.ProductFilter) error {
	rows, err := uc.ExportProducts(ctx, filter)
	if err != nil {
		return err
	}
	records := make([][]string, 0, len(rows))
	for _, r := range rows {
		records = append(records, r.Record())
	}
	return uc.table.WriteTable(w, dto.ProductRowHeader(), records)
}

// WriteMovementsCSV escribe el historial como tabla.
func (uc *UseCase) WriteMovementsCSV(ctx context.Context, w io.Writer, filter entity.MovementFilter) error {
	rows, err := uc.ExportMovements(ctx, filter)
	if err != nil {
		return err
	}
	records := make([][]string, 0, len(rows))
	for _, r := range rows {
		records = append(records, r.Record())
	}
	return uc.table.WriteTable(w, dto.MovementRowHeader(), records)
}

// StockReportPDF genera el reporte de existencias y un nombre de archivo con la fecha.
func (uc *UseCase) StockReportPDF(ctx context.Context) ([]byte, string, error) {
	if uc.renderer == nil {
		return nil, "", fmt.Errorf("report: generador PDF no configurado")
	}
	products, err := uc.ExportProducts(ctx, entity.ProductFilter{})
	if err != nil {
		return nil, "", err
	}
	stats, err := uc.ledger.StatsByLocation(ctx)
	if err != nil {
		return nil, "", err
	}
	now := uc.now()
	pdf, err := uc.renderer.RenderStockReport(ctx, dto.StockReport{
		Title:       "Reporte de existencias",
		GeneratedAt: now,
		Products:    products,
		Locations:   dto.StatsFromMap(stats),
	})
	if err != nil {
		return nil, "", fmt.Errorf("report: generar PDF: %w", err)
	}
	return pdf, "existencias_" + now.Format("20060102_150405") + ".pdf", nil
}
