package repository

import (
	"context"

	"github.com/emanueliriarte-arch/mi-app-inventario/internal/domain/entity"
)

// StatsRepository consultas de solo lectura sobre el contenido actual del catálogo.
type StatsRepository interface {
	// StatsByLocation agrupa por departamento: conteo, suma de cantidades y unidades distintas.
	StatsByLocation(ctx context.Context) (map[string]entity.LocationStats, error)
}
