package report_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/emanueliriarte-arch/mi-app-inventario/internal/application/dto"
	"github.com/emanueliriarte-arch/mi-app-inventario/internal/application/inventory"
	"github.com/emanueliriarte-arch/mi-app-inventario/internal/application/report"
	"github.com/emanueliriarte-arch/mi-app-inventario/internal/domain/entity"
	"github.com/emanueliriarte-arch/mi-app-inventario/internal/infrastructure/export"
	"github.com/emanueliriarte-arch/mi-app-inventario/internal/infrastructure/memory"
)

type mockRenderer struct{ mock.Mock }

func (m *mockRenderer) RenderStockReport(ctx context.Context, r dto.StockReport) ([]byte, error) {
	args := m.Called(ctx, r)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func newLedger(t *testing.T) *inventory.LedgerUseCase {
	t.Helper()
	store := memory.NewStore()
	uc := inventory.NewLedgerUseCase(store, store.Products(), store.Movements(), store,
		inventory.LedgerConfig{Vocab: inventory.NewVocabulary(inventory.DefaultUnits, inventory.DefaultLocations, false)})

	ctx := context.Background()
	_, _, err := uc.AddProduct(ctx, inventory.NewProductInput{Name: "Tornillos", Quantity: decimal.NewFromInt(100), Unit: "Unitario", Location: "Almacén"})
	require.NoError(t, err)
	p, _, err := uc.AddProduct(ctx, inventory.NewProductInput{Name: "Cable", Quantity: decimal.RequireFromString("12.5"), Unit: "Metro"})
	require.NoError(t, err)
	_, _, err = uc.AdjustQuantity(ctx, p.ID, decimal.NewFromInt(2), entity.MovementTypeDecrease)
	require.NoError(t, err)
	return uc
}

func newCSV(t *testing.T) *export.CSVWriter {
	t.Helper()
	w, err := export.NewCSVWriter("utf-8")
	require.NoError(t, err)
	return w
}

func TestExportProducts_OrderAndShape(t *testing.T) {
	uc := report.NewUseCase(newLedger(t), newCSV(t), nil)

	rows, err := uc.ExportProducts(context.Background(), entity.ProductFilter{})
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "Tornillos", rows[0].Name, "con departamento primero")
	assert.Equal(t, "A1", rows[0].SKU)
	assert.Equal(t, "", rows[1].Location)
	assert.Equal(t, "10.5", rows[1].Quantity)
	assert.Len(t, rows[0].Record(), len(dto.ProductRowHeader()))
}

func TestExportMovements_InsertionOrder(t *testing.T) {
	uc := report.NewUseCase(newLedger(t), newCSV(t), nil)

	rows, err := uc.ExportMovements(context.Background(), entity.MovementFilter{})
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, entity.MovementTypeCreate, rows[0].MovementType)
	assert.Equal(t, entity.MovementTypeDecrease, rows[2].MovementType)
	assert.Equal(t, "12.5", rows[2].QuantityBefore)
	assert.Len(t, rows[2].Record(), len(dto.MovementRowHeader()))
}

func TestWriteProductsCSV(t *testing.T) {
	uc := report.NewUseCase(newLedger(t), newCSV(t), nil)

	var buf bytes.Buffer
	require.NoError(t, uc.WriteProductsCSV(context.Background(), &buf, entity.ProductFilter{}))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, strings.Join(dto.ProductRowHeader(), ","), lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "1,A1,Tornillos,100,Unitario,Almacén,"))
}

func TestWriteMovementsCSV_FilterByType(t *testing.T) {
	uc := report.NewUseCase(newLedger(t), newCSV(t), nil)

	var buf bytes.Buffer
	require.NoError(t, uc.WriteMovementsCSV(context.Background(), &buf, entity.MovementFilter{Type: entity.MovementTypeCreate}))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 3, "cabecera + 2 CREATE")
}

func TestStockReportPDF(t *testing.T) {
	r := new(mockRenderer)
	r.On("RenderStockReport", mock.Anything, mock.MatchedBy(func(rep dto.StockReport) bool {
		return len(rep.Products) == 2 && len(rep.Locations) == 2 && rep.Locations[1].Location == ""
	})).Return([]byte("%PDF-1.3"), nil)

	uc := report.NewUseCase(newLedger(t), newCSV(t), r)
	out, name, err := uc.StockReportPDF(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.3"), out)
	assert.True(t, strings.HasPrefix(name, "existencias_"))
	assert.True(t, strings.HasSuffix(name, ".pdf"))
	r.AssertExpectations(t)
}

func TestStockReportPDF_RendererError(t *testing.T) {
	r := new(mockRenderer)
	r.On("RenderStockReport", mock.Anything, mock.Anything).Return(nil, errors.New("fuente faltante"))

	uc := report.NewUseCase(newLedger(t), newCSV(t), r)
	_, _, err := uc.StockReportPDF(context.Background())
	assert.Error(t, err)
}

func TestStockReportPDF_NoRenderer(t *testing.T) {
	uc := report.NewUseCase(newLedger(t), newCSV(t), nil)
	_, _, err := uc.StockReportPDF(context.Background())
	assert.Error(t, err)
}
