package repository

import (
	"context"

	"github.com/emanueliriarte-arch/mi-app-inventario/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia del catálogo (Catalog Store).
// Solo el ledger escribe a través de este puerto, siempre dentro de una transacción.
type ProductRepository interface {
	// Create inserta el producto y asigna ID, CreatedAt y UpdatedAt.
	Create(ctx context.Context, product *entity.Product) error
	// AssignSKU fija el SKU derivado del ID recién asignado.
	AssignSKU(ctx context.Context, id int64, sku string) error
	// GetByID devuelve nil, nil si el producto no existe.
	GetByID(ctx context.Context, id int64) (*entity.Product, error)
	// GetForUpdate como GetByID pero bloquea la fila hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, id int64) (*entity.Product, error)
	// List ordena por departamento y nombre; por nombre si se filtra por departamento.
	List(ctx context.Context, filter entity.ProductFilter) ([]*entity.Product, error)
	// Update persiste Quantity, Location y UpdatedAt del producto.
	Update(ctx context.Context, product *entity.Product) error
	// Delete devuelve true si se eliminó una fila.
	Delete(ctx context.Context, id int64) (bool, error)
}
