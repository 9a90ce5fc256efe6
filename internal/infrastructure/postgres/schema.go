package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/emanueliriarte-arch/mi-app-inventario/internal/domain"
)

// schemaStatements crea o completa las tablas del ledger. Solo agrega: nunca borra ni cambia tipos.
// movements.product_id no tiene FK para que el historial sobreviva al borrado del producto.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS products (
		id         BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
		sku        TEXT UNIQUE,
		name       TEXT NOT NULL,
		quantity   NUMERIC(18,4) NOT NULL DEFAULT 0 CHECK (quantity >= 0),
		unit       TEXT NOT NULL,
		location   TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`ALTER TABLE products ADD COLUMN IF NOT EXISTS expiry DATE`,
	`CREATE INDEX IF NOT EXISTS idx_products_location_name ON products (location, name)`,
	`CREATE TABLE IF NOT EXISTS movements (
		id              BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
		product_id      BIGINT NOT NULL,
		product_name    TEXT NOT NULL,
		movement_type   TEXT NOT NULL,
		quantity_before NUMERIC(18,4) NOT NULL,
		quantity_after  NUMERIC(18,4) NOT NULL,
		location_from   TEXT,
		location_to     TEXT,
		actor           TEXT NOT NULL,
		created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`ALTER TABLE movements ADD COLUMN IF NOT EXISTS transaction_id TEXT NOT NULL DEFAULT ''`,
	`CREATE INDEX IF NOT EXISTS idx_movements_product ON movements (product_id, id)`,
}

// requiredColumns columnas que los repositorios leen o escriben.
var requiredColumns = map[string][]string{
	"products": {"id", "sku", "name", "quantity", "unit", "location", "expiry", "created_at", "updated_at"},
	"movements": {
		"id", "transaction_id", "product_id", "product_name", "movement_type",
		"quantity_before", "quantity_after", "location_from", "location_to", "actor", "created_at",
	},
}

// EnsureSchema aplica el DDL idempotente y luego verifica que existan todas las columnas requeridas.
// Una tabla preexistente incompatible devuelve ErrSchemaMismatch: el arranque debe fallar.
func EnsureSchema(ctx context.Context, q Querier) error {
	for _, stmt := range schemaStatements {
		if _, err := q.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return VerifySchema(ctx, q)
}

// VerifySchema compara information_schema con las columnas requeridas.
func VerifySchema(ctx context.Context, q Querier) error {
	rows, err := q.Query(ctx, `
		SELECT table_name, column_name
		FROM information_schema.columns
		WHERE table_schema = current_schema() AND table_name IN ('products', 'movements')`)
	if err != nil {
		return fmt.Errorf("verify schema: %w", err)
	}
	defer rows.Close()

	present := make(map[string]bool)
	for rows.Next() {
		var table, column string
		if err := rows.Scan(&table, &column); err != nil {
			return fmt.Errorf("verify schema scan: %w", err)
		}
		present[table+"."+column] = true
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("verify schema rows: %w", err)
	}

	var missing []string
	for table, cols := range requiredColumns {
		for _, c := range cols {
			if !present[table+"."+c] {
				missing = append(missing, table+"."+c)
			}
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: faltan columnas %s", domain.ErrSchemaMismatch, strings.Join(missing, ", "))
	}
	return nil
}
