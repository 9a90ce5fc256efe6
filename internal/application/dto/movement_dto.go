package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/emanueliriarte-arch/mi-app-inventario/internal/domain/entity"
)

// MovementResponse salida de un movimiento del historial.
type MovementResponse struct {
	ID             int64           `json:"id"`
	TransactionID  string          `json:"transaction_id"`
	ProductID      int64           `json:"product_id"`
	ProductName    string          `json:"product_name"`
	MovementType   string          `json:"movement_type"`
	QuantityBefore decimal.Decimal `json:"quantity_before"`
	QuantityAfter  decimal.Decimal `json:"quantity_after"`
	LocationFrom   string          `json:"location_from,omitempty"`
	LocationTo     string          `json:"location_to,omitempty"`
	Actor          string          `json:"actor"`
	Timestamp      time.Time       `json:"timestamp"`
}

// MovementFromEntity mapea la entidad.
func MovementFromEntity(m *entity.Movement) MovementResponse {
	return MovementResponse{
		ID:             m.ID,
		TransactionID:  m.TransactionID,
		ProductID:      m.ProductID,
		ProductName:    m.ProductName,
		MovementType:   m.Type,
		QuantityBefore: m.QuantityBefore,
		QuantityAfter:  m.QuantityAfter,
		LocationFrom:   m.LocationFrom,
		LocationTo:     m.LocationTo,
		Actor:          m.Actor,
		Timestamp:      m.Timestamp,
	}
}

// MovementListResponse historial en orden de inserción.
type MovementListResponse struct {
	Items []MovementResponse `json:"items"`
	Total int                `json:"total"`
}

// MovementListFromEntities mapea un listado.
func MovementListFromEntities(list []*entity.Movement) MovementListResponse {
	items := make([]MovementResponse, 0, len(list))
	for _, m := range list {
		items = append(items, MovementFromEntity(m))
	}
	return MovementListResponse{Items: items, Total: len(items)}
}
