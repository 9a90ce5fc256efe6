package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento del ledger.
const (
	MovementTypeCreate         = "CREATE"
	MovementTypeIncrease       = "INCREASE"
	MovementTypeDecrease       = "DECREASE"
	MovementTypeLocationChange = "LOCATION_CHANGE"
	MovementTypeDelete         = "DELETE"
)

// LocationDeleted es el destino registrado en el movimiento DELETE.
const LocationDeleted = "DELETED"

// IsMovementType valida un tipo de movimiento.
func IsMovementType(t string) bool {
	switch t {
	case MovementTypeCreate, MovementTypeIncrease, MovementTypeDecrease,
		MovementTypeLocationChange, MovementTypeDelete:
		return true
	}
	return false
}

// Movement registro de auditoría inmutable de un cambio de estado de un producto.
// ProductID es una referencia débil: el producto puede haber sido eliminado.
type Movement struct {
	ID             int64
	TransactionID  string // agrupa los movimientos emitidos por una misma operación
	ProductID      int64
	ProductName    string // copia del nombre al momento del movimiento
	Type           string
	QuantityBefore decimal.Decimal
	QuantityAfter  decimal.Decimal
	LocationFrom   string
	LocationTo     string
	Actor          string
	Timestamp      time.Time
}

// MovementFilter filtro para el historial. Campos vacíos = sin filtro.
type MovementFilter struct {
	ProductID int64
	Type      string
}
