package entity

import "github.com/shopspring/decimal"

// LocationStats agregado de los productos actuales de un departamento.
type LocationStats struct {
	ProductCount  int
	TotalQuantity decimal.Decimal
	DistinctUnits int
}
