package http_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emanueliriarte-arch/mi-app-inventario/internal/application/dto"
	"github.com/emanueliriarte-arch/mi-app-inventario/internal/application/inventory"
	"github.com/emanueliriarte-arch/mi-app-inventario/internal/application/report"
	"github.com/emanueliriarte-arch/mi-app-inventario/internal/infrastructure/export"
	"github.com/emanueliriarte-arch/mi-app-inventario/internal/infrastructure/memory"
	"github.com/emanueliriarte-arch/mi-app-inventario/internal/infrastructure/metrics"
	"github.com/emanueliriarte-arch/mi-app-inventario/internal/infrastructure/pdf"
	apphttp "github.com/emanueliriarte-arch/mi-app-inventario/internal/interfaces/http"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

// buildTestApp arma la API completa sobre el store en memoria.
func buildTestApp(t *testing.T) *fiber.App {
	t.Helper()
	store := memory.NewStore()
	rec := metrics.NewRecorder()
	ledger := inventory.NewLedgerUseCase(store, store.Products(), store.Movements(), store,
		inventory.LedgerConfig{Vocab: inventory.NewVocabulary(inventory.DefaultUnits, inventory.DefaultLocations, false)},
		inventory.WithRecorder(rec),
	)
	csv, err := export.NewCSVWriter(export.CharsetUTF8)
	require.NoError(t, err)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		},
	})
	apphttp.Router(app, apphttp.RouterDeps{
		Ledger:         ledger,
		Reports:        report.NewUseCase(ledger, csv, pdf.NewStockReportGenerator("test")),
		CSVContentType: csv.ContentType(),
		Metrics:        promhttp.HandlerFor(rec.Registry, promhttp.HandlerOpts{}),
	})
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path, body string) *http.Response {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func createBolt(t *testing.T, app *fiber.App) dto.ProductMutationResponse {
	t.Helper()
	resp := doJSON(t, app, http.MethodPost, "/api/products",
		`{"name":"Bolt","quantity":100,"unit":"Unitario","location":"Almacén"}`)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	return decode[dto.ProductMutationResponse](t, resp)
}

// ──────────────────────────────────────────────────────────────────────────────
// Catálogo
// ──────────────────────────────────────────────────────────────────────────────

func TestCreateProduct_DevuelveProductoYMovimiento(t *testing.T) {
	app := buildTestApp(t)
	out := createBolt(t, app)

	assert.Equal(t, int64(1), out.Product.ID)
	assert.Equal(t, "A1", out.Product.SKU)
	assert.True(t, decimal.NewFromInt(100).Equal(out.Product.Quantity))
	require.Len(t, out.Movements, 1)
	assert.Equal(t, "CREATE", out.Movements[0].MovementType)
	assert.True(t, out.Movements[0].QuantityBefore.IsZero())
}

func TestCreateProduct_Validaciones(t *testing.T) {
	app := buildTestApp(t)
	cases := map[string]string{
		"sin nombre":         `{"quantity":1,"unit":"Kg"}`,
		"cantidad negativa":  `{"name":"X","quantity":-1,"unit":"Kg"}`,
		"unidad desconocida": `{"name":"X","quantity":1,"unit":"Barril"}`,
		"fecha inválida":     `{"name":"X","quantity":1,"unit":"Kg","expiry":"31/12/2025"}`,
		"json roto":          `{"name":`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			resp := doJSON(t, app, http.MethodPost, "/api/products", body)
			assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, dto.CodeValidation, decode[dto.ErrorResponse](t, resp).Code)
		})
	}
	list := decode[dto.ProductListResponse](t, doJSON(t, app, http.MethodGet, "/api/products", ""))
	assert.Zero(t, list.Total, "ningún intento fallido debe crear productos")
}

func TestGetProduct_IDInvalidoYNoEncontrado(t *testing.T) {
	app := buildTestApp(t)

	resp := doJSON(t, app, http.MethodGet, "/api/products/abc", "")
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = doJSON(t, app, http.MethodGet, "/api/products/99", "")
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, dto.CodeNotFound, decode[dto.ErrorResponse](t, resp).Code)
}

func TestAdjust_StockInsuficienteNoModifica(t *testing.T) {
	app := buildTestApp(t)
	createBolt(t, app)

	resp := doJSON(t, app, http.MethodPost, "/api/products/1/adjustments", `{"direction":"DECREASE","delta":150}`)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	assert.Equal(t, dto.CodeInsufficientStock, decode[dto.ErrorResponse](t, resp).Code)

	p := decode[dto.ProductResponse](t, doJSON(t, app, http.MethodGet, "/api/products/1", ""))
	assert.True(t, decimal.NewFromInt(100).Equal(p.Quantity))
}

func TestAdjust_DireccionSinDistinguirMayusculas(t *testing.T) {
	app := buildTestApp(t)
	createBolt(t, app)

	resp := doJSON(t, app, http.MethodPost, "/api/products/1/adjustments", `{"direction":"decrease","delta":"30"}`)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	out := decode[dto.ProductMutationResponse](t, resp)
	assert.True(t, decimal.NewFromInt(70).Equal(out.Product.Quantity))
	require.Len(t, out.Movements, 1)
	assert.Equal(t, "DECREASE", out.Movements[0].MovementType)

	resp = doJSON(t, app, http.MethodPost, "/api/products/1/adjustments", `{"direction":"INCREASE","delta":0}`)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	resp = doJSON(t, app, http.MethodPost, "/api/products/1/adjustments", `{"direction":"UP","delta":1}`)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestSetLocation_YListadoPorDepartamento(t *testing.T) {
	app := buildTestApp(t)
	createBolt(t, app)
	doJSON(t, app, http.MethodPost, "/api/products", `{"name":"Nut","quantity":5,"unit":"Unitario"}`)

	resp := doJSON(t, app, http.MethodPut, "/api/products/1/location", `{"location":"taller"}`)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	out := decode[dto.ProductMutationResponse](t, resp)
	assert.Equal(t, "Taller", out.Product.Location)
	require.Len(t, out.Movements, 1)
	assert.Equal(t, "Almacén", out.Movements[0].LocationFrom)

	// mismo departamento: sin movimiento
	out = decode[dto.ProductMutationResponse](t, doJSON(t, app, http.MethodPut, "/api/products/1/location", `{"location":"Taller"}`))
	assert.Empty(t, out.Movements)

	list := decode[dto.ProductListResponse](t, doJSON(t, app, http.MethodGet, "/api/products?location=Taller", ""))
	require.Equal(t, 1, list.Total)
	assert.Equal(t, "Bolt", list.Items[0].Name)

	list = decode[dto.ProductListResponse](t, doJSON(t, app, http.MethodGet, "/api/products?location=", ""))
	require.Equal(t, 1, list.Total)
	assert.Equal(t, "Nut", list.Items[0].Name)

	list = decode[dto.ProductListResponse](t, doJSON(t, app, http.MethodGet, "/api/products", ""))
	assert.Equal(t, 2, list.Total)
}

func TestUpdate_CantidadYDepartamento(t *testing.T) {
	app := buildTestApp(t)
	createBolt(t, app)

	resp := doJSON(t, app, http.MethodPatch, "/api/products/1", `{"quantity":80,"location":"Oficina"}`)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	out := decode[dto.ProductMutationResponse](t, resp)
	assert.True(t, decimal.NewFromInt(80).Equal(out.Product.Quantity))
	assert.Equal(t, "Oficina", out.Product.Location)
	assert.Len(t, out.Movements, 2)
	assert.Equal(t, out.Movements[0].TransactionID, out.Movements[1].TransactionID)
}

func TestDelete_ConservaHistorial(t *testing.T) {
	app := buildTestApp(t)
	createBolt(t, app)

	resp := doJSON(t, app, http.MethodDelete, "/api/products/1", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	mov := decode[dto.MovementResponse](t, resp)
	assert.Equal(t, "DELETE", mov.MovementType)
	assert.Equal(t, "DELETED", mov.LocationTo)

	assert.Equal(t, fiber.StatusNotFound, doJSON(t, app, http.MethodGet, "/api/products/1", "").StatusCode)
	assert.Equal(t, fiber.StatusNotFound, doJSON(t, app, http.MethodDelete, "/api/products/1", "").StatusCode)

	hist := decode[dto.MovementListResponse](t, doJSON(t, app, http.MethodGet, "/api/movements?product_id=1", ""))
	require.Equal(t, 2, hist.Total)
	assert.Equal(t, "CREATE", hist.Items[0].MovementType)
	assert.Equal(t, "DELETE", hist.Items[1].MovementType)
}

// ──────────────────────────────────────────────────────────────────────────────
// Historial, estadísticas y exportaciones
// ──────────────────────────────────────────────────────────────────────────────

func TestListMovements_Filtros(t *testing.T) {
	app := buildTestApp(t)
	createBolt(t, app)
	doJSON(t, app, http.MethodPost, "/api/products/1/adjustments", `{"direction":"INCREASE","delta":1}`)

	hist := decode[dto.MovementListResponse](t, doJSON(t, app, http.MethodGet, "/api/movements?type=increase", ""))
	require.Equal(t, 1, hist.Total)
	assert.Equal(t, "INCREASE", hist.Items[0].MovementType)

	assert.Equal(t, fiber.StatusBadRequest, doJSON(t, app, http.MethodGet, "/api/movements?type=MOVE", "").StatusCode)
	assert.Equal(t, fiber.StatusBadRequest, doJSON(t, app, http.MethodGet, "/api/movements?product_id=x", "").StatusCode)
}

func TestStatsByLocation(t *testing.T) {
	app := buildTestApp(t)
	createBolt(t, app)
	doJSON(t, app, http.MethodPost, "/api/products", `{"name":"Arena","quantity":2.5,"unit":"Kg","location":"Almacén"}`)
	doJSON(t, app, http.MethodPost, "/api/products", `{"name":"Nut","quantity":5,"unit":"Unitario"}`)

	resp := doJSON(t, app, http.MethodGet, "/api/stats/locations", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	stats := decode[[]dto.LocationStatsResponse](t, resp)
	require.Len(t, stats, 2)
	assert.Equal(t, "Almacén", stats[0].Location)
	assert.Equal(t, 2, stats[0].ProductCount)
	assert.True(t, decimal.RequireFromString("102.5").Equal(stats[0].TotalQuantity))
	assert.Equal(t, 2, stats[0].DistinctUnits)
	assert.Equal(t, "", stats[1].Location, "sin departamento va al final")
}

func TestVocabulary(t *testing.T) {
	app := buildTestApp(t)
	out := decode[apphttp.VocabularyResponse](t, doJSON(t, app, http.MethodGet, "/api/vocabulary", ""))
	assert.ElementsMatch(t, inventory.DefaultUnits, out.Units)
	assert.ElementsMatch(t, inventory.DefaultLocations, out.Locations)
}

func TestExports(t *testing.T) {
	app := buildTestApp(t)
	createBolt(t, app)

	resp := doJSON(t, app, http.MethodGet, "/api/exports/products.csv", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/csv; charset=utf-8", resp.Header.Get(fiber.HeaderContentType))
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition), "productos.csv")
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(body)), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "id,sku,nombre"))
	assert.Contains(t, lines[1], "Bolt")

	resp = doJSON(t, app, http.MethodGet, "/api/exports/movements.csv?type=CREATE", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	body, err = io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "CREATE")

	resp = doJSON(t, app, http.MethodGet, "/api/exports/products.pdf", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get(fiber.HeaderContentType))
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition), "existencias_")
	body, err = io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(body), "%PDF"))
}

func TestMetrics_ExponeOperaciones(t *testing.T) {
	app := buildTestApp(t)
	createBolt(t, app)

	resp := doJSON(t, app, http.MethodGet, "/metrics", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `inventory_ledger_operations_total{operation="add_product",result="ok"} 1`)
	assert.Contains(t, string(body), `inventory_movements_recorded_total{movement_type="CREATE"} 1`)
}
