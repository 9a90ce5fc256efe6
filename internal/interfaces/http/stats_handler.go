package http

import (
	"sort"

	"github.com/gofiber/fiber/v2"

	"github.com/emanueliriarte-arch/mi-app-inventario/internal/application/dto"
	"github.com/emanueliriarte-arch/mi-app-inventario/internal/application/inventory"
)

// StatsHandler agregados por departamento y vocabulario del formulario.
type StatsHandler struct {
	uc *inventory.LedgerUseCase
}

// NewStatsHandler construye el handler.
func NewStatsHandler(uc *inventory.LedgerUseCase) *StatsHandler {
	return &StatsHandler{uc: uc}
}

// ByLocation godoc
// @Summary      Estadísticas por departamento
// @Description  Cantidad de productos, suma de cantidades y unidades distintas. Sin departamento al final.
// @Tags         stats
// @Produce      json
// @Success      200  {array}   dto.LocationStatsResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/stats/locations [get]
func (h *StatsHandler) ByLocation(c *fiber.Ctx) error {
	stats, err := h.uc.StatsByLocation(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.StatsFromMap(stats))
}

// VocabularyResponse unidades y departamentos aceptados.
type VocabularyResponse struct {
	Units     []string `json:"units"`
	Locations []string `json:"locations"`
}

// Vocabulary godoc
// @Summary      Vocabulario de unidades y departamentos
// @Tags         stats
// @Produce      json
// @Success      200  {object}  VocabularyResponse
// @Router       /api/vocabulary [get]
func (h *StatsHandler) Vocabulary(c *fiber.Ctx) error {
	v := h.uc.Vocabulary()
	units, locations := v.Units(), v.Locations()
	sort.Strings(units)
	sort.Strings(locations)
	return c.JSON(VocabularyResponse{Units: units, Locations: locations})
}
