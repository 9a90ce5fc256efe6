package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/emanueliriarte-arch/mi-app-inventario/internal/domain"
	"github.com/emanueliriarte-arch/mi-app-inventario/internal/domain/entity"
	"github.com/emanueliriarte-arch/mi-app-inventario/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

const productColumns = `id, COALESCE(sku, ''), name, quantity, unit, COALESCE(location, ''), expiry, created_at, updated_at`

// Orden con collation ICU española, igual que el store en memoria (la collation por defecto
// de la base depende de la libc del servidor).
const (
	nameOrder     = `name COLLATE "es-x-icu", id`
	locationOrder = `location COLLATE "es-x-icu" NULLS LAST, ` + nameOrder
)

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

// Create persiste un nuevo producto; el ID lo asigna la columna identity. El SKU se escribe después
// con AssignSKU porque depende del ID.
func (r *ProductRepo) Create(ctx context.Context, product *entity.Product) error {
	query := `
		INSERT INTO products (name, quantity, unit, location, expiry, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`
	err := r.q.QueryRow(ctx, query,
		product.Name, product.Quantity, product.Unit, nullableText(product.Location),
		product.Expiry, product.CreatedAt, product.UpdatedAt,
	).Scan(&product.ID)
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// AssignSKU escribe el SKU derivado del ID.
func (r *ProductRepo) AssignSKU(ctx context.Context, id int64, sku string) error {
	tag, err := r.q.Exec(ctx, `UPDATE products SET sku = $2 WHERE id = $1`, id, sku)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("assign sku: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFound("assign_sku", id)
	}
	return nil
}

// GetByID obtiene un producto por ID. Devuelve (nil, nil) si no existe.
func (r *ProductRepo) GetByID(ctx context.Context, id int64) (*entity.Product, error) {
	p, err := scanProduct(r.q.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// GetForUpdate como GetByID pero bloquea la fila hasta el fin de la transacción (SELECT ... FOR UPDATE).
func (r *ProductRepo) GetForUpdate(ctx context.Context, id int64) (*entity.Product, error) {
	p, err := scanProduct(r.q.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product for update: %w", err)
	}
	return p, nil
}

// List devuelve el catálogo ordenado por departamento (sin departamento al final) y nombre.
// Con filtro de departamento, solo por nombre.
func (r *ProductRepo) List(ctx context.Context, filter entity.ProductFilter) ([]*entity.Product, error) {
	var (
		b    strings.Builder
		args []any
	)
	b.WriteString(`SELECT ` + productColumns + ` FROM products`)
	if filter.Location != nil {
		if *filter.Location == entity.NoLocation {
			b.WriteString(` WHERE location IS NULL ORDER BY ` + nameOrder)
		} else {
			args = append(args, *filter.Location)
			fmt.Fprintf(&b, ` WHERE location = $%d ORDER BY %s`, len(args), nameOrder)
		}
	} else {
		b.WriteString(` ORDER BY ` + locationOrder)
	}

	rows, err := r.q.Query(ctx, b.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var list []*entity.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// Update persiste cantidad, departamento y updated_at.
func (r *ProductRepo) Update(ctx context.Context, product *entity.Product) error {
	query := `UPDATE products SET quantity = $2, location = $3, updated_at = $4 WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, product.ID, product.Quantity, nullableText(product.Location), product.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFound("update", product.ID)
	}
	return nil
}

// Delete borra la fila. Devuelve false si no existía.
func (r *ProductRepo) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.q.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete product: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func scanProduct(row pgx.Row) (*entity.Product, error) {
	var (
		p      entity.Product
		expiry *time.Time
	)
	if err := row.Scan(
		&p.ID, &p.SKU, &p.Name, &p.Quantity, &p.Unit, &p.Location, &expiry, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if expiry != nil {
		e := expiry.UTC()
		p.Expiry = &e
	}
	p.CreatedAt = p.CreatedAt.UTC()
	p.UpdatedAt = p.UpdatedAt.UTC()
	return &p, nil
}
