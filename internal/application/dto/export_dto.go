package dto

import (
	"strconv"
	"time"

	"github.com/emanueliriarte-arch/mi-app-inventario/internal/domain/entity"
)

// ProductRow fila plana del catálogo para exportación (CSV / PDF).
type ProductRow struct {
	ID        int64
	SKU       string
	Name      string
	Quantity  string
	Unit      string
	Location  string
	Expiry    string
	UpdatedAt string
}

// ProductRowHeader nombres de columna en el orden de Record.
func ProductRowHeader() []string {
	return []string{"id", "sku", "nombre", "cantidad", "unidad", "departamento", "vencimiento", "actualizado"}
}

// Record valores de la fila en el orden de ProductRowHeader.
func (r ProductRow) Record() []string {
	return []string{
		strconv.FormatInt(r.ID, 10), r.SKU, r.Name, r.Quantity, r.Unit, r.Location, r.Expiry, r.UpdatedAt,
	}
}

// ProductRowFromEntity aplana un producto.
func ProductRowFromEntity(p *entity.Product) ProductRow {
	return ProductRow{
		ID:        p.ID,
		SKU:       p.SKU,
		Name:      p.Name,
		Quantity:  p.Quantity.String(),
		Unit:      p.Unit,
		Location:  p.Location,
		Expiry:    formatDate(p.Expiry),
		UpdatedAt: p.UpdatedAt.Format(time.RFC3339),
	}
}

// MovementRow fila plana del historial.
type MovementRow struct {
	ID             int64
	TransactionID  string
	ProductID      int64
	ProductName    string
	MovementType   string
	QuantityBefore string
	QuantityAfter  string
	LocationFrom   string
	LocationTo     string
	Actor          string
	Timestamp      string
}

// MovementRowHeader nombres de columna en el orden de Record.
func MovementRowHeader() []string {
	return []string{
		"id", "transaccion", "producto_id", "producto", "tipo",
		"cantidad_antes", "cantidad_despues", "desde", "hacia", "actor", "fecha",
	}
}

// Record valores de la fila en el orden de MovementRowHeader.
func (r MovementRow) Record() []string {
	return []string{
		strconv.FormatInt(r.ID, 10), r.TransactionID, strconv.FormatInt(r.ProductID, 10), r.ProductName,
		r.MovementType, r.QuantityBefore, r.QuantityAfter, r.LocationFrom, r.LocationTo, r.Actor, r.Timestamp,
	}
}

// MovementRowFromEntity aplana un movimiento.
func MovementRowFromEntity(m *entity.Movement) MovementRow {
	return MovementRow{
		ID:             m.ID,
		TransactionID:  m.TransactionID,
		ProductID:      m.ProductID,
		ProductName:    m.ProductName,
		MovementType:   m.Type,
		QuantityBefore: m.QuantityBefore.String(),
		QuantityAfter:  m.QuantityAfter.String(),
		LocationFrom:   m.LocationFrom,
		LocationTo:     m.LocationTo,
		Actor:          m.Actor,
		Timestamp:      m.Timestamp.Format(time.RFC3339Nano),
	}
}

// StockReport datos del reporte PDF de existencias.
type StockReport struct {
	Title       string
	GeneratedAt time.Time
	Products    []ProductRow
	Locations   []LocationStatsResponse
}
