package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/emanueliriarte-arch/mi-app-inventario/internal/domain/entity"
)

// CreateProductRequest body de POST /api/products.
type CreateProductRequest struct {
	Name     string          `json:"name" validate:"required,max=200"`
	Quantity decimal.Decimal `json:"quantity" validate:"gte=0"`
	Unit     string          `json:"unit" validate:"required,max=50"`
	Location string          `json:"location" validate:"max=100"`
	Expiry   string          `json:"expiry,omitempty" validate:"omitempty,datetime=2006-01-02"` // AAAA-MM-DD
}

// ExpiryDate convierte Expiry (ya validado) a fecha.
func (r CreateProductRequest) ExpiryDate() *time.Time {
	if r.Expiry == "" {
		return nil
	}
	t, err := time.Parse(dateLayout, r.Expiry)
	if err != nil {
		return nil
	}
	return &t
}

// UpdateProductRequest body de PATCH /api/products/:id. Solo se aplican los campos presentes.
type UpdateProductRequest struct {
	Quantity *decimal.Decimal `json:"quantity" validate:"omitempty,gte=0"`
	Location *string          `json:"location" validate:"omitempty,max=100"`
}

// ToEntity arma la actualización de dominio.
func (r UpdateProductRequest) ToEntity() entity.ProductUpdate {
	return entity.ProductUpdate{Quantity: r.Quantity, Location: r.Location}
}

// AdjustQuantityRequest body de POST /api/products/:id/adjustments.
type AdjustQuantityRequest struct {
	Direction string          `json:"direction" validate:"required,oneof=INCREASE DECREASE"`
	Delta     decimal.Decimal `json:"delta" validate:"gt=0"`
}

// SetLocationRequest body de PUT /api/products/:id/location. Vacío = sin departamento.
type SetLocationRequest struct {
	Location string `json:"location" validate:"max=100"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID        int64           `json:"id"`
	SKU       string          `json:"sku"`
	Name      string          `json:"name"`
	Quantity  decimal.Decimal `json:"quantity"`
	Unit      string          `json:"unit"`
	Location  string          `json:"location,omitempty"`
	Expiry    string          `json:"expiry,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// ProductFromEntity mapea la entidad.
func ProductFromEntity(p *entity.Product) ProductResponse {
	return ProductResponse{
		ID:        p.ID,
		SKU:       p.SKU,
		Name:      p.Name,
		Quantity:  p.Quantity,
		Unit:      p.Unit,
		Location:  p.Location,
		Expiry:    formatDate(p.Expiry),
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

// ProductListResponse listado completo (el catálogo no se pagina).
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Total int               `json:"total"`
}

// ProductListFromEntities mapea un listado.
func ProductListFromEntities(list []*entity.Product) ProductListResponse {
	items := make([]ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, ProductFromEntity(p))
	}
	return ProductListResponse{Items: items, Total: len(items)}
}

// ProductMutationResponse producto resultante y los movimientos que generó la operación.
type ProductMutationResponse struct {
	Product   ProductResponse    `json:"product"`
	Movements []MovementResponse `json:"movements"`
}

// NewProductMutationResponse omite movimientos nil (p. ej. cambio de departamento sin efecto).
func NewProductMutationResponse(p *entity.Product, movs ...*entity.Movement) ProductMutationResponse {
	out := ProductMutationResponse{Product: ProductFromEntity(p), Movements: []MovementResponse{}}
	for _, m := range movs {
		if m != nil {
			out.Movements = append(out.Movements, MovementFromEntity(m))
		}
	}
	return out
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(dateLayout)
}
