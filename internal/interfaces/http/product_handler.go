package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/emanueliriarte-arch/mi-app-inventario/internal/application/dto"
	"github.com/emanueliriarte-arch/mi-app-inventario/internal/application/inventory"
	"github.com/emanueliriarte-arch/mi-app-inventario/internal/domain/entity"
)

// ProductHandler maneja las peticiones HTTP sobre el catálogo.
type ProductHandler struct {
	uc *inventory.LedgerUseCase
}

// NewProductHandler construye el handler.
func NewProductHandler(uc *inventory.LedgerUseCase) *ProductHandler {
	return &ProductHandler{uc: uc}
}

// Create godoc
// @Summary      Crear producto
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateProductRequest  true  "Datos del producto"
// @Success      201   {object}  dto.ProductMutationResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/products [post]
func (h *ProductHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateProductRequest
	if ok, err := bindAndValidate(c, &in); !ok {
		return err
	}
	p, mov, err := h.uc.AddProduct(c.UserContext(), inventory.NewProductInput{
		Name:     in.Name,
		Quantity: in.Quantity,
		Unit:     in.Unit,
		Location: in.Location,
		Expiry:   in.ExpiryDate(),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewProductMutationResponse(p, mov))
}

// GetByID godoc
// @Summary      Obtener producto por ID
// @Tags         products
// @Produce      json
// @Param        id   path  int  true  "ID del producto"
// @Success      200  {object}  dto.ProductResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{id} [get]
func (h *ProductHandler) GetByID(c *fiber.Ctx) error {
	id, ok := productID(c)
	if !ok {
		return invalidID(c)
	}
	p, err := h.uc.GetProduct(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ProductFromEntity(p))
}

// List godoc
// @Summary      Listar productos
// @Description  Ordenados por departamento y nombre. Con location solo ese departamento (location= vacío: sin departamento).
// @Tags         products
// @Produce      json
// @Param        location  query  string  false  "Departamento"
// @Success      200       {object}  dto.ProductListResponse
// @Router       /api/products [get]
func (h *ProductHandler) List(c *fiber.Ctx) error {
	list, err := h.uc.ListProducts(c.UserContext(), productFilter(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ProductListFromEntities(list))
}

// Update godoc
// @Summary      Actualizar cantidad y/o departamento
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        id    path  int  true  "ID del producto"
// @Param        body  body  dto.UpdateProductRequest  true  "Campos a actualizar"
// @Success      200   {object}  dto.ProductMutationResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/products/{id} [patch]
func (h *ProductHandler) Update(c *fiber.Ctx) error {
	id, ok := productID(c)
	if !ok {
		return invalidID(c)
	}
	var in dto.UpdateProductRequest
	if ok, err := bindAndValidate(c, &in); !ok {
		return err
	}
	p, movs, err := h.uc.UpdateProduct(c.UserContext(), id, in.ToEntity())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewProductMutationResponse(p, movs...))
}

// Adjust godoc
// @Summary      Sumar o restar cantidad
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        id    path  int  true  "ID del producto"
// @Param        body  body  dto.AdjustQuantityRequest  true  "Dirección y delta"
// @Success      200   {object}  dto.ProductMutationResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/products/{id}/adjustments [post]
func (h *ProductHandler) Adjust(c *fiber.Ctx) error {
	id, ok := productID(c)
	if !ok {
		return invalidID(c)
	}
	var in dto.AdjustQuantityRequest
	if err := c.BodyParser(&in); err == nil {
		in.Direction = strings.ToUpper(strings.TrimSpace(in.Direction))
	}
	if err := validate.Struct(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: dto.CodeValidation, Message: validationMessage(err)})
	}
	p, mov, err := h.uc.AdjustQuantity(c.UserContext(), id, in.Delta, in.Direction)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewProductMutationResponse(p, mov))
}

// SetLocation godoc
// @Summary      Cambiar departamento
// @Description  Sin efecto (y sin movimiento) si el producto ya está en ese departamento.
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        id    path  int  true  "ID del producto"
// @Param        body  body  dto.SetLocationRequest  true  "Departamento destino"
// @Success      200   {object}  dto.ProductMutationResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/products/{id}/location [put]
func (h *ProductHandler) SetLocation(c *fiber.Ctx) error {
	id, ok := productID(c)
	if !ok {
		return invalidID(c)
	}
	var in dto.SetLocationRequest
	if ok, err := bindAndValidate(c, &in); !ok {
		return err
	}
	p, mov, err := h.uc.SetLocation(c.UserContext(), id, in.Location)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewProductMutationResponse(p, mov))
}

// Delete godoc
// @Summary      Eliminar producto
// @Description  Registra el movimiento DELETE; el historial se conserva.
// @Tags         products
// @Produce      json
// @Param        id   path  int  true  "ID del producto"
// @Success      200  {object}  dto.MovementResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{id} [delete]
func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	id, ok := productID(c)
	if !ok {
		return invalidID(c)
	}
	mov, err := h.uc.RemoveProduct(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.MovementFromEntity(mov))
}

// productFilter: el parámetro location presente (aunque vacío) filtra.
func productFilter(c *fiber.Ctx) entity.ProductFilter {
	var f entity.ProductFilter
	if c.Context().QueryArgs().Has("location") {
		loc := c.Query("location")
		f.Location = &loc
	}
	return f
}
