package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// NoLocation representa un producto sin departamento asignado (NULL en la base).
const NoLocation = ""

// QuantityScale decimales admitidos en cantidades (columna NUMERIC(18,4)).
const QuantityScale = 4

// MaxQuantity cota exclusiva del valor absoluto de una cantidad: 14 dígitos enteros.
var MaxQuantity = decimal.New(1, 18-QuantityScale)

// ValidQuantity indica si q se guarda sin redondeo ni desborde.
func ValidQuantity(q decimal.Decimal) bool {
	return q.Equal(q.Truncate(QuantityScale)) && q.Abs().LessThan(MaxQuantity)
}

// Product representa un producto del catálogo con su stock actual en un único departamento.
// Quantity nunca es negativa después de un commit; solo el ledger la modifica.
type Product struct {
	ID        int64
	SKU       string // derivado del ID tras la inserción, inmutable
	Name      string
	Quantity  decimal.Decimal
	Unit      string
	Location  string     // departamento; NoLocation si no tiene
	Expiry    *time.Time // solo productos perecederos
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ProductUpdate campos actualizables de un producto. nil = no tocar.
// Se evalúa una sola vez por operación; un campo con el mismo valor actual no cuenta como cambio.
type ProductUpdate struct {
	Quantity *decimal.Decimal
	Location *string
}

// IsEmpty indica si no se pidió cambiar ningún campo.
func (u ProductUpdate) IsEmpty() bool {
	return u.Quantity == nil && u.Location == nil
}

// ProductFilter filtro para listar productos. Location nil = todos.
type ProductFilter struct {
	Location *string
}
