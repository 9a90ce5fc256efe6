package dto

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/emanueliriarte-arch/mi-app-inventario/internal/domain/entity"
)

// LocationStatsResponse agregado de un departamento. Location vacío = productos sin departamento.
type LocationStatsResponse struct {
	Location      string          `json:"location"`
	ProductCount  int             `json:"product_count"`
	TotalQuantity decimal.Decimal `json:"total_quantity"`
	DistinctUnits int             `json:"distinct_units"`
}

// StatsFromMap ordena por departamento, con "sin departamento" al final.
func StatsFromMap(stats map[string]entity.LocationStats) []LocationStatsResponse {
	out := make([]LocationStatsResponse, 0, len(stats))
	for loc, s := range stats {
		out = append(out, LocationStatsResponse{
			Location:      loc,
			ProductCount:  s.ProductCount,
			TotalQuantity: s.TotalQuantity,
			DistinctUnits: s.DistinctUnits,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].Location, out[j].Location
		if a == entity.NoLocation || b == entity.NoLocation {
			return b == entity.NoLocation && a != entity.NoLocation
		}
		return a < b
	})
	return out
}
