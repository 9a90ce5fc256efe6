package http

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/emanueliriarte-arch/mi-app-inventario/internal/application/dto"
	"github.com/emanueliriarte-arch/mi-app-inventario/internal/application/inventory"
	"github.com/emanueliriarte-arch/mi-app-inventario/internal/domain/entity"
)

// MovementHandler expone el historial de movimientos.
type MovementHandler struct {
	uc *inventory.LedgerUseCase
}

// NewMovementHandler construye el handler.
func NewMovementHandler(uc *inventory.LedgerUseCase) *MovementHandler {
	return &MovementHandler{uc: uc}
}

// List godoc
// @Summary      Historial de movimientos
// @Description  En orden de inserción. Incluye movimientos de productos ya eliminados.
// @Tags         movements
// @Produce      json
// @Param        product_id  query  int     false  "ID del producto"
// @Param        type        query  string  false  "CREATE, INCREASE, DECREASE, LOCATION_CHANGE o DELETE"
// @Success      200         {object}  dto.MovementListResponse
// @Failure      400         {object}  dto.ErrorResponse
// @Router       /api/movements [get]
func (h *MovementHandler) List(c *fiber.Ctx) error {
	filter, ok := movementFilter(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: dto.CodeValidation, Message: "product_id inválido"})
	}
	list, err := h.uc.ListMovements(c.UserContext(), filter)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.MovementListFromEntities(list))
}

func movementFilter(c *fiber.Ctx) (entity.MovementFilter, bool) {
	f := entity.MovementFilter{Type: strings.ToUpper(strings.TrimSpace(c.Query("type")))}
	if raw := c.Query("product_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			return f, false
		}
		f.ProductID = id
	}
	return f, true
}
