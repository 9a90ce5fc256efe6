package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/emanueliriarte-arch/mi-app-inventario/internal/domain/entity"
	"github.com/emanueliriarte-arch/mi-app-inventario/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

// MovementRepo implementación sobre PostgreSQL (usable con pool o tx). La tabla es append-only:
// no hay UPDATE ni DELETE de movimientos.
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

// Create persiste un movimiento. El timestamp final es el mayor entre el propuesto y el último
// registrado, de modo que el orden de inserción nunca retrocede en el tiempo.
func (r *MovementRepo) Create(ctx context.Context, movement *entity.Movement) error {
	query := `
		INSERT INTO movements (transaction_id, product_id, product_name, movement_type,
			quantity_before, quantity_after, location_from, location_to, actor, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9,
			GREATEST($10::timestamptz, COALESCE((SELECT max(created_at) FROM movements), $10::timestamptz)))
		RETURNING id, created_at`
	err := r.q.QueryRow(ctx, query,
		movement.TransactionID, movement.ProductID, movement.ProductName, movement.Type,
		movement.QuantityBefore, movement.QuantityAfter,
		nullableText(movement.LocationFrom), nullableText(movement.LocationTo),
		movement.Actor, movement.Timestamp,
	).Scan(&movement.ID, &movement.Timestamp)
	if err != nil {
		return fmt.Errorf("create movement: %w", err)
	}
	movement.Timestamp = movement.Timestamp.UTC()
	return nil
}

// List devuelve movimientos en orden de inserción, filtrando por producto y/o tipo.
func (r *MovementRepo) List(ctx context.Context, filter entity.MovementFilter) ([]*entity.Movement, error) {
	var (
		conds []string
		args  []any
	)
	if filter.ProductID != 0 {
		args = append(args, filter.ProductID)
		conds = append(conds, fmt.Sprintf("product_id = $%d", len(args)))
	}
	if filter.Type != "" {
		args = append(args, filter.Type)
		conds = append(conds, fmt.Sprintf("movement_type = $%d", len(args)))
	}

	query := `
		SELECT id, transaction_id, product_id, product_name, movement_type,
			quantity_before, quantity_after, location_from, location_to, actor, created_at
		FROM movements`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY id"

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()

	var list []*entity.Movement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

// CountByProduct cuenta los movimientos de un producto (incluidos los de productos ya borrados).
func (r *MovementRepo) CountByProduct(ctx context.Context, productID int64) (int, error) {
	var n int
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM movements WHERE product_id = $1`, productID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count movements: %w", err)
	}
	return n, nil
}

func scanMovement(row pgx.Row) (*entity.Movement, error) {
	var (
		m        entity.Movement
		from, to *string
	)
	if err := row.Scan(
		&m.ID, &m.TransactionID, &m.ProductID, &m.ProductName, &m.Type,
		&m.QuantityBefore, &m.QuantityAfter, &from, &to, &m.Actor, &m.Timestamp,
	); err != nil {
		return nil, err
	}
	m.LocationFrom = textOrEmpty(from)
	m.LocationTo = textOrEmpty(to)
	m.Timestamp = m.Timestamp.UTC()
	return &m, nil
}
