package postgres

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/emanueliriarte-arch/mi-app-inventario/internal/domain/entity"
	"github.com/emanueliriarte-arch/mi-app-inventario/internal/domain/repository"
)

var _ repository.StatsRepository = (*StatsRepo)(nil)

// StatsRepo consultas de solo lectura sobre el catálogo actual.
type StatsRepo struct {
	q Querier
}

// NewStatsRepository construye el adaptador de estadísticas.
func NewStatsRepository(q Querier) *StatsRepo {
	return &StatsRepo{q: q}
}

// StatsByLocation agrega por departamento: cantidad de productos, suma de cantidades y unidades
// distintas. Los productos sin departamento quedan bajo la clave "".
func (r *StatsRepo) StatsByLocation(ctx context.Context) (map[string]entity.LocationStats, error) {
	const query = `
	SELECT
	    COALESCE(location, '')   AS location,
	    COUNT(*)                 AS product_count,
	    COALESCE(SUM(quantity), 0) AS total_quantity,
	    COUNT(DISTINCT unit)     AS distinct_units
	FROM products
	GROUP BY location`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("stats.StatsByLocation: %w", err)
	}
	defer rows.Close()

	stats := make(map[string]entity.LocationStats)
	for rows.Next() {
		var (
			location string
			row      entity.LocationStats
			total    decimal.Decimal
		)
		if err := rows.Scan(&location, &row.ProductCount, &total, &row.DistinctUnits); err != nil {
			return nil, fmt.Errorf("stats.StatsByLocation scan: %w", err)
		}
		row.TotalQuantity = total
		stats[location] = row
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("stats.StatsByLocation rows: %w", err)
	}
	return stats, nil
}
