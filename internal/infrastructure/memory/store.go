// Package memory implementa el ledger en memoria del proceso: mismo contrato que el store
// PostgreSQL (IDs no reutilizados, historial append-only, transacciones todo-o-nada) sin durabilidad.
// Se usa en tests y con STORAGE_DRIVER=memory.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/emanueliriarte-arch/mi-app-inventario/internal/application/inventory"
	"github.com/emanueliriarte-arch/mi-app-inventario/internal/domain"
	"github.com/emanueliriarte-arch/mi-app-inventario/internal/domain/entity"
	"github.com/emanueliriarte-arch/mi-app-inventario/internal/domain/repository"
)

var (
	_ inventory.TxRunner           = (*Store)(nil)
	_ repository.ProductRepository  = (*ProductRepo)(nil)
	_ repository.MovementRepository = (*MovementRepo)(nil)
	_ repository.StatsRepository    = (*Store)(nil)
)

type state struct {
	products       map[int64]entity.Product
	movements      []entity.Movement
	nextProductID  int64
	nextMovementID int64
	lastTimestamp  time.Time
}

func (s state) clone() state {
	c := s
	c.products = make(map[int64]entity.Product, len(s.products))
	for id, p := range s.products {
		c.products[id] = copyProduct(p)
	}
	c.movements = append(make([]entity.Movement, 0, len(s.movements)+2), s.movements...)
	return c
}

// Store guarda catálogo e historial. Las transacciones se serializan con un mutex y trabajan sobre
// una copia del estado que solo se publica si fn termina sin error.
type Store struct {
	mu sync.RWMutex
	st state
}

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{st: state{products: map[int64]entity.Product{}}}
}

// Run implementa inventory.TxRunner.
func (s *Store) Run(ctx context.Context, fn func(
	productRepo repository.ProductRepository,
	movementRepo repository.MovementRepository,
) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	work := s.st.clone()
	if err := fn(&ProductRepo{store: s, tx: &work}, &MovementRepo{store: s, tx: &work}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.st = work
	return nil
}

// Products repositorio fuera de transacción (lecturas).
func (s *Store) Products() *ProductRepo { return &ProductRepo{store: s} }

// Movements repositorio fuera de transacción (lecturas).
func (s *Store) Movements() *MovementRepo { return &MovementRepo{store: s} }

// StatsByLocation implementa repository.StatsRepository.
func (s *Store) StatsByLocation(ctx context.Context) (map[string]entity.LocationStats, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	stats := make(map[string]entity.LocationStats)
	units := make(map[string]map[string]struct{})
	for _, p := range s.st.products {
		agg := stats[p.Location]
		agg.ProductCount++
		agg.TotalQuantity = agg.TotalQuantity.Add(p.Quantity)
		if units[p.Location] == nil {
			units[p.Location] = map[string]struct{}{}
		}
		units[p.Location][p.Unit] = struct{}{}
		agg.DistinctUnits = len(units[p.Location])
		stats[p.Location] = agg
	}
	return stats, nil
}

// view ejecuta fn sobre el estado de la tx o, fuera de tx, sobre el estado confirmado.
func (s *Store) view(tx *state, write bool, fn func(st *state) error) error {
	if tx != nil {
		return fn(tx)
	}
	if write {
		s.mu.Lock()
		defer s.mu.Unlock()
	} else {
		s.mu.RLock()
		defer s.mu.RUnlock()
	}
	return fn(&s.st)
}

// ProductRepo implementación en memoria de repository.ProductRepository.
type ProductRepo struct {
	store *Store
	tx    *state
}

func (r *ProductRepo) Create(ctx context.Context, product *entity.Product) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.store.view(r.tx, true, func(st *state) error {
		st.nextProductID++
		product.ID = st.nextProductID
		st.products[product.ID] = copyProduct(*product)
		return nil
	})
}

func (r *ProductRepo) AssignSKU(ctx context.Context, id int64, sku string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.store.view(r.tx, true, func(st *state) error {
		p, ok := st.products[id]
		if !ok {
			return domain.NotFound("assign_sku", id)
		}
		for otherID, other := range st.products {
			if otherID != id && other.SKU == sku {
				return domain.ErrDuplicate
			}
		}
		p.SKU = sku
		st.products[id] = p
		return nil
	})
}

func (r *ProductRepo) GetByID(ctx context.Context, id int64) (*entity.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out *entity.Product
	err := r.store.view(r.tx, false, func(st *state) error {
		if p, ok := st.products[id]; ok {
			c := copyProduct(p)
			out = &c
		}
		return nil
	})
	return out, err
}

// GetForUpdate: dentro de Run el mutex del store ya serializa la transacción completa.
func (r *ProductRepo) GetForUpdate(ctx context.Context, id int64) (*entity.Product, error) {
	return r.GetByID(ctx, id)
}

func (r *ProductRepo) List(ctx context.Context, filter entity.ProductFilter) ([]*entity.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var list []*entity.Product
	_ = r.store.view(r.tx, false, func(st *state) error {
		for _, p := range st.products {
			if filter.Location != nil && p.Location != *filter.Location {
				continue
			}
			c := copyProduct(p)
			list = append(list, &c)
		}
		return nil
	})
	sortProducts(list)
	return list, nil
}

func (r *ProductRepo) Update(ctx context.Context, product *entity.Product) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.store.view(r.tx, true, func(st *state) error {
		p, ok := st.products[product.ID]
		if !ok {
			return domain.NotFound("update", product.ID)
		}
		p.Quantity = product.Quantity
		p.Location = product.Location
		p.UpdatedAt = product.UpdatedAt
		st.products[product.ID] = p
		return nil
	})
}

func (r *ProductRepo) Delete(ctx context.Context, id int64) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	var deleted bool
	err := r.store.view(r.tx, true, func(st *state) error {
		if _, ok := st.products[id]; ok {
			delete(st.products, id)
			deleted = true
		}
		return nil
	})
	return deleted, err
}

// MovementRepo implementación en memoria de repository.MovementRepository.
type MovementRepo struct {
	store *Store
	tx    *state
}

func (r *MovementRepo) Create(ctx context.Context, movement *entity.Movement) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.store.view(r.tx, true, func(st *state) error {
		st.nextMovementID++
		movement.ID = st.nextMovementID
		if movement.Timestamp.Before(st.lastTimestamp) {
			movement.Timestamp = st.lastTimestamp
		}
		st.lastTimestamp = movement.Timestamp
		st.movements = append(st.movements, *movement)
		return nil
	})
}

func (r *MovementRepo) List(ctx context.Context, filter entity.MovementFilter) ([]*entity.Movement, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var list []*entity.Movement
	_ = r.store.view(r.tx, false, func(st *state) error {
		for _, m := range st.movements {
			if filter.ProductID != 0 && m.ProductID != filter.ProductID {
				continue
			}
			if filter.Type != "" && m.Type != filter.Type {
				continue
			}
			c := m
			list = append(list, &c)
		}
		return nil
	})
	return list, nil
}

func (r *MovementRepo) CountByProduct(ctx context.Context, productID int64) (int, error) {
	list, err := r.List(ctx, entity.MovementFilter{ProductID: productID})
	return len(list), err
}

// sortProducts: departamento (sin departamento al final) y nombre con collation española, luego ID.
func sortProducts(list []*entity.Product) {
	col := collate.New(language.Spanish)
	sort.SliceStable(list, func(i, j int) bool {
		a, b := list[i], list[j]
		if a.Location != b.Location {
			if a.Location == entity.NoLocation || b.Location == entity.NoLocation {
				return b.Location == entity.NoLocation
			}
			if c := col.CompareString(a.Location, b.Location); c != 0 {
				return c < 0
			}
		}
		if c := col.CompareString(a.Name, b.Name); c != 0 {
			return c < 0
		}
		return a.ID < b.ID
	})
}

func copyProduct(p entity.Product) entity.Product {
	if p.Expiry != nil {
		e := *p.Expiry
		p.Expiry = &e
	}
	return p
}
