package http

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/emanueliriarte-arch/mi-app-inventario/internal/application/inventory"
	"github.com/emanueliriarte-arch/mi-app-inventario/internal/application/report"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Ledger         *inventory.LedgerUseCase
	Reports        *report.UseCase
	CSVContentType string
	Metrics        http.Handler // nil: no se expone /metrics
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	if deps.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(deps.Metrics))
	}

	api := app.Group("/api")

	// Catálogo
	products := api.Group("/products")
	productHandler := NewProductHandler(deps.Ledger)
	products.Post("/", productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)
	products.Patch("/:id", productHandler.Update)
	products.Delete("/:id", productHandler.Delete)
	products.Post("/:id/adjustments", productHandler.Adjust)
	products.Put("/:id/location", productHandler.SetLocation)

	// Historial
	movementHandler := NewMovementHandler(deps.Ledger)
	api.Get("/movements", movementHandler.List)

	statsHandler := NewStatsHandler(deps.Ledger)
	api.Get("/stats/locations", statsHandler.ByLocation)
	api.Get("/vocabulary", statsHandler.Vocabulary)

	// Exportaciones
	if deps.Reports != nil {
		exports := api.Group("/exports")
		exportHandler := NewExportHandler(deps.Reports, deps.CSVContentType)
		exports.Get("/products.csv", exportHandler.ProductsCSV)
		exports.Get("/products.pdf", exportHandler.ProductsPDF)
		exports.Get("/movements.csv", exportHandler.MovementsCSV)
	}
}
