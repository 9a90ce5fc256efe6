package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("producto no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrInsufficientStock = errors.New("stock insuficiente")
	ErrStorage           = errors.New("error de almacenamiento")
	ErrDuplicate         = errors.New("recurso duplicado") // violación de unicidad en el store; se reporta como ErrStorage
	ErrSchemaMismatch    = errors.New("esquema de base de datos incompatible")
)

// OpError agrega contexto a un error del ledger: operación, producto y valor ofensivo.
// Err siempre es uno de los errores de dominio (o los envuelve), por lo que errors.Is funciona.
type OpError struct {
	Op        string
	ProductID int64
	Field     string
	Value     any
	Err       error
}

func (e *OpError) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	if e.ProductID > 0 {
		fmt.Fprintf(&b, " producto=%d", e.ProductID)
	}
	if e.Field != "" {
		fmt.Fprintf(&b, " %s=%v", e.Field, e.Value)
	}
	b.WriteString(": ")
	b.WriteString(e.Err.Error())
	return b.String()
}

func (e *OpError) Unwrap() error { return e.Err }

// Invalid construye un error de validación para el campo indicado.
func Invalid(op string, productID int64, field string, value any) error {
	return &OpError{Op: op, ProductID: productID, Field: field, Value: value, Err: ErrInvalidInput}
}

// NotFound construye un error de producto inexistente.
func NotFound(op string, productID int64) error {
	return &OpError{Op: op, ProductID: productID, Err: ErrNotFound}
}

// Insufficient construye un error de stock insuficiente con la cantidad solicitada.
func Insufficient(op string, productID int64, requested any) error {
	return &OpError{Op: op, ProductID: productID, Field: "delta", Value: requested, Err: ErrInsufficientStock}
}

// Storage envuelve una falla de persistencia. Si err ya es un error de dominio se devuelve tal cual.
func Storage(op string, productID int64, err error) error {
	if err == nil {
		return nil
	}
	if IsDomain(err) {
		return err
	}
	return &OpError{Op: op, ProductID: productID, Err: fmt.Errorf("%w: %w", ErrStorage, err)}
}

// IsDomain indica si err ya pertenece a la taxonomía del ledger.
func IsDomain(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrInsufficientStock) ||
		errors.Is(err, ErrStorage)
}
