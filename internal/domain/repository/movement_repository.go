package repository

import (
	"context"

	"github.com/emanueliriarte-arch/mi-app-inventario/internal/domain/entity"
)

// MovementRepository define el puerto del historial append-only. No existe Update ni Delete.
type MovementRepository interface {
	// Create asigna ID y un Timestamp no decreciente respecto a los movimientos existentes.
	Create(ctx context.Context, movement *entity.Movement) error
	// List devuelve el historial ordenado por ID ascendente.
	List(ctx context.Context, filter entity.MovementFilter) ([]*entity.Movement, error)
	CountByProduct(ctx context.Context, productID int64) (int, error)
}
