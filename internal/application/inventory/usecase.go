package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/emanueliriarte-arch/mi-app-inventario/internal/domain"
	"github.com/emanueliriarte-arch/mi-app-inventario/internal/domain/entity"
	"github.com/emanueliriarte-arch/mi-app-inventario/internal/domain/repository"
)

// Nombres de operación usados en errores, logs y métricas.
const (
	OpAddProduct     = "add_product"
	OpAdjustQuantity = "adjust_quantity"
	OpSetLocation    = "set_location"
	OpUpdateProduct  = "update_product"
	OpRemoveProduct  = "remove_product"
	OpGetProduct     = "get_product"
	OpListProducts   = "list_products"
	OpListMovements  = "list_movements"
	OpStats          = "stats_by_location"
)

// LedgerConfig parámetros fijos del ledger.
type LedgerConfig struct {
	Actor     string // autor registrado en cada movimiento (sin autenticación)
	SKUPrefix string
	Vocab     Vocabulary
}

// LedgerUseCase es el único punto de entrada para mutar el inventario. Cada mutación del catálogo
// se confirma en la misma transacción que su(s) movimiento(s); si algo falla no queda nada aplicado.
type LedgerUseCase struct {
	txRunner     TxRunner
	productRepo  repository.ProductRepository
	movementRepo repository.MovementRepository
	statsRepo    repository.StatsRepository

	cfg       LedgerConfig
	cache     StatsCache
	publisher MovementPublisher
	recorder  Recorder
	log       zerolog.Logger
	now       func() time.Time
}

// Option configura colaboradores opcionales del ledger.
type Option func(*LedgerUseCase)

// WithStatsCache activa la caché de StatsByLocation.
func WithStatsCache(c StatsCache) Option { return func(uc *LedgerUseCase) { uc.cache = c } }

// WithPublisher publica cada movimiento confirmado.
func WithPublisher(p MovementPublisher) Option { return func(uc *LedgerUseCase) { uc.publisher = p } }

// WithRecorder registra métricas de operaciones.
func WithRecorder(r Recorder) Option { return func(uc *LedgerUseCase) { uc.recorder = r } }

// WithLogger fija el logger del ledger.
func WithLogger(l zerolog.Logger) Option { return func(uc *LedgerUseCase) { uc.log = l } }

// WithClock reemplaza time.Now (tests).
func WithClock(now func() time.Time) Option { return func(uc *LedgerUseCase) { uc.now = now } }

// NewLedgerUseCase construye el ledger. Los repositorios sin tx se usan solo para lecturas.
func NewLedgerUseCase(
	txRunner TxRunner,
	productRepo repository.ProductRepository,
	movementRepo repository.MovementRepository,
	statsRepo repository.StatsRepository,
	cfg LedgerConfig,
	opts ...Option,
) *LedgerUseCase {
	if cfg.Actor == "" {
		cfg.Actor = "sistema"
	}
	if cfg.SKUPrefix == "" {
		cfg.SKUPrefix = "A"
	}
	uc := &LedgerUseCase{
		txRunner:     txRunner,
		productRepo:  productRepo,
		movementRepo: movementRepo,
		statsRepo:    statsRepo,
		cfg:          cfg,
		recorder:     nopRecorder{},
		log:          zerolog.Nop(),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// NewProductInput entrada para AddProduct.
type NewProductInput struct {
	Name     string
	Quantity decimal.Decimal
	Unit     string
	Location string
	Expiry   *time.Time
}

// AddProduct crea el producto, deriva su SKU y registra el movimiento CREATE (0 → cantidad).
func (uc *LedgerUseCase) AddProduct(ctx context.Context, in NewProductInput) (*entity.Product, *entity.Movement, error) {
	name := normalizeText(in.Name)
	if name == "" {
		return nil, nil, uc.reject(OpAddProduct, domain.Invalid(OpAddProduct, 0, "name", in.Name))
	}
	if in.Quantity.IsNegative() || !entity.ValidQuantity(in.Quantity) {
		return nil, nil, uc.reject(OpAddProduct, domain.Invalid(OpAddProduct, 0, "quantity", in.Quantity))
	}
	unit, ok := uc.cfg.Vocab.Unit(in.Unit)
	if !ok {
		return nil, nil, uc.reject(OpAddProduct, domain.Invalid(OpAddProduct, 0, "unit", in.Unit))
	}
	location, ok := uc.cfg.Vocab.Location(in.Location)
	if !ok {
		return nil, nil, uc.reject(OpAddProduct, domain.Invalid(OpAddProduct, 0, "location", in.Location))
	}

	now := uc.clock()
	product := &entity.Product{
		Name:      name,
		Quantity:  in.Quantity,
		Unit:      unit,
		Location:  location,
		Expiry:    dateOnly(in.Expiry),
		CreatedAt: now,
		UpdatedAt: now,
	}
	var mov *entity.Movement
	err := uc.run(ctx, OpAddProduct, 0, func(productRepo repository.ProductRepository, movRepo repository.MovementRepository) error {
		if err := productRepo.Create(ctx, product); err != nil {
			return err
		}
		// El SKU depende del ID asignado por el store: paso explícito posterior a la inserción.
		product.SKU = DeriveSKU(uc.cfg.SKUPrefix, product.ID)
		if err := productRepo.AssignSKU(ctx, product.ID, product.SKU); err != nil {
			return err
		}
		mov = uc.newMovement(uuid.NewString(), product, entity.MovementTypeCreate, now)
		mov.QuantityBefore = decimal.Zero
		mov.QuantityAfter = product.Quantity
		return movRepo.Create(ctx, mov)
	})
	if err != nil {
		return nil, nil, err
	}
	uc.committed(ctx, OpAddProduct, product.ID, mov)
	return product, mov, nil
}

// AdjustQuantity suma o resta delta (> 0) a la cantidad actual. Una disminución mayor que el stock
// actual falla con ErrInsufficientStock sin aplicar nada.
func (uc *LedgerUseCase) AdjustQuantity(ctx context.Context, id int64, delta decimal.Decimal, direction string) (*entity.Product, *entity.Movement, error) {
	if direction != entity.MovementTypeIncrease && direction != entity.MovementTypeDecrease {
		return nil, nil, uc.reject(OpAdjustQuantity, domain.Invalid(OpAdjustQuantity, id, "direction", direction))
	}
	if !delta.IsPositive() || !entity.ValidQuantity(delta) {
		return nil, nil, uc.reject(OpAdjustQuantity, domain.Invalid(OpAdjustQuantity, id, "delta", delta))
	}

	var (
		product *entity.Product
		mov     *entity.Movement
	)
	err := uc.run(ctx, OpAdjustQuantity, id, func(productRepo repository.ProductRepository, movRepo repository.MovementRepository) error {
		p, err := lockProduct(ctx, productRepo, OpAdjustQuantity, id)
		if err != nil {
			return err
		}
		before := p.Quantity
		after := before.Add(delta)
		if direction == entity.MovementTypeDecrease {
			if delta.GreaterThan(before) {
				return domain.Insufficient(OpAdjustQuantity, id, delta)
			}
			after = before.Sub(delta)
		}
		if !entity.ValidQuantity(after) {
			return domain.Invalid(OpAdjustQuantity, id, "delta", delta)
		}
		now := uc.clock()
		p.Quantity = after
		p.UpdatedAt = now
		if err := productRepo.Update(ctx, p); err != nil {
			return err
		}
		mov = uc.newMovement(uuid.NewString(), p, direction, now)
		mov.QuantityBefore = before
		mov.QuantityAfter = after
		product = p
		return movRepo.Create(ctx, mov)
	})
	if err != nil {
		return nil, nil, err
	}
	uc.committed(ctx, OpAdjustQuantity, id, mov)
	return product, mov, nil
}

// SetLocation mueve el producto a otro departamento. Si ya está allí no hace nada: sin movimiento
// y sin tocar UpdatedAt (movement == nil).
func (uc *LedgerUseCase) SetLocation(ctx context.Context, id int64, location string) (*entity.Product, *entity.Movement, error) {
	target, ok := uc.cfg.Vocab.Location(location)
	if !ok {
		return nil, nil, uc.reject(OpSetLocation, domain.Invalid(OpSetLocation, id, "location", location))
	}

	var (
		product *entity.Product
		mov     *entity.Movement
	)
	err := uc.run(ctx, OpSetLocation, id, func(productRepo repository.ProductRepository, movRepo repository.MovementRepository) error {
		p, err := lockProduct(ctx, productRepo, OpSetLocation, id)
		if err != nil {
			return err
		}
		product = p
		if p.Location == target {
			return nil
		}
		now := uc.clock()
		from := p.Location
		p.Location = target
		p.UpdatedAt = now
		if err := productRepo.Update(ctx, p); err != nil {
			return err
		}
		mov = uc.locationMovement(uuid.NewString(), p, from, now)
		return movRepo.Create(ctx, mov)
	})
	if err != nil {
		return nil, nil, err
	}
	if mov != nil {
		uc.committed(ctx, OpSetLocation, id, mov)
	}
	return product, mov, nil
}

// UpdateProduct aplica una actualización de varios campos. Emite un movimiento por dimensión que
// realmente cambia (cantidad y/o departamento), todos con el mismo TransactionID.
func (uc *LedgerUseCase) UpdateProduct(ctx context.Context, id int64, upd entity.ProductUpdate) (*entity.Product, []*entity.Movement, error) {
	var target string
	if upd.Quantity != nil && (upd.Quantity.IsNegative() || !entity.ValidQuantity(*upd.Quantity)) {
		return nil, nil, uc.reject(OpUpdateProduct, domain.Invalid(OpUpdateProduct, id, "quantity", *upd.Quantity))
	}
	if upd.Location != nil {
		loc, ok := uc.cfg.Vocab.Location(*upd.Location)
		if !ok {
			return nil, nil, uc.reject(OpUpdateProduct, domain.Invalid(OpUpdateProduct, id, "location", *upd.Location))
		}
		target = loc
	}

	var (
		product *entity.Product
		movs    []*entity.Movement
	)
	err := uc.run(ctx, OpUpdateProduct, id, func(productRepo repository.ProductRepository, movRepo repository.MovementRepository) error {
		p, err := lockProduct(ctx, productRepo, OpUpdateProduct, id)
		if err != nil {
			return err
		}
		product = p
		qtyChanged := upd.Quantity != nil && !upd.Quantity.Equal(p.Quantity)
		locChanged := upd.Location != nil && target != p.Location
		if !qtyChanged && !locChanged {
			return nil
		}

		now := uc.clock()
		txID := uuid.NewString()
		before, from := p.Quantity, p.Location
		if qtyChanged {
			p.Quantity = *upd.Quantity
		}
		if locChanged {
			p.Location = target
		}
		p.UpdatedAt = now
		if err := productRepo.Update(ctx, p); err != nil {
			return err
		}

		if qtyChanged {
			kind := entity.MovementTypeIncrease
			if p.Quantity.LessThan(before) {
				kind = entity.MovementTypeDecrease
			}
			m := uc.newMovement(txID, p, kind, now)
			m.QuantityBefore = before
			m.QuantityAfter = p.Quantity
			movs = append(movs, m)
		}
		if locChanged {
			movs = append(movs, uc.locationMovement(txID, p, from, now))
		}
		for _, m := range movs {
			if err := movRepo.Create(ctx, m); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	if len(movs) > 0 {
		uc.committed(ctx, OpUpdateProduct, id, movs...)
	}
	return product, movs, nil
}

// RemoveProduct registra el movimiento DELETE con la última foto del producto y luego borra la fila.
// El historial del producto permanece.
func (uc *LedgerUseCase) RemoveProduct(ctx context.Context, id int64) (*entity.Movement, error) {
	var mov *entity.Movement
	err := uc.run(ctx, OpRemoveProduct, id, func(productRepo repository.ProductRepository, movRepo repository.MovementRepository) error {
		p, err := lockProduct(ctx, productRepo, OpRemoveProduct, id)
		if err != nil {
			return err
		}
		mov = uc.newMovement(uuid.NewString(), p, entity.MovementTypeDelete, uc.clock())
		mov.QuantityBefore = p.Quantity
		mov.QuantityAfter = decimal.Zero
		mov.LocationFrom = p.Location
		mov.LocationTo = entity.LocationDeleted
		if err := movRepo.Create(ctx, mov); err != nil {
			return err
		}
		deleted, err := productRepo.Delete(ctx, id)
		if err != nil {
			return err
		}
		if !deleted {
			return domain.NotFound(OpRemoveProduct, id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.committed(ctx, OpRemoveProduct, id, mov)
	return mov, nil
}

// GetProduct devuelve el producto o ErrNotFound.
func (uc *LedgerUseCase) GetProduct(ctx context.Context, id int64) (*entity.Product, error) {
	p, err := uc.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, domain.Storage(OpGetProduct, id, err)
	}
	if p == nil {
		return nil, domain.NotFound(OpGetProduct, id)
	}
	return p, nil
}

// ListProducts lista el catálogo: por departamento y nombre, o por nombre dentro de un departamento.
func (uc *LedgerUseCase) ListProducts(ctx context.Context, filter entity.ProductFilter) ([]*entity.Product, error) {
	if filter.Location != nil {
		loc := normalizeText(*filter.Location)
		if canonical, ok := uc.cfg.Vocab.Location(loc); ok {
			loc = canonical
		}
		filter.Location = &loc
	}
	list, err := uc.productRepo.List(ctx, filter)
	if err != nil {
		return nil, domain.Storage(OpListProducts, 0, err)
	}
	return list, nil
}

// ListMovements devuelve el historial en orden de inserción.
func (uc *LedgerUseCase) ListMovements(ctx context.Context, filter entity.MovementFilter) ([]*entity.Movement, error) {
	if filter.Type != "" && !entity.IsMovementType(filter.Type) {
		return nil, domain.Invalid(OpListMovements, filter.ProductID, "type", filter.Type)
	}
	list, err := uc.movementRepo.List(ctx, filter)
	if err != nil {
		return nil, domain.Storage(OpListMovements, filter.ProductID, err)
	}
	return list, nil
}

// StatsByLocation agrega el catálogo actual por departamento. Los fallos de caché no son errores:
// se lee del store.
func (uc *LedgerUseCase) StatsByLocation(ctx context.Context) (map[string]entity.LocationStats, error) {
	var (
		gen       int64
		cacheable bool
	)
	if uc.cache != nil {
		stats, g, ok, err := uc.cache.GetStats(ctx)
		switch {
		case err != nil:
			uc.log.Warn().Err(err).Msg("leer caché de estadísticas")
		case ok:
			return stats, nil
		default:
			// la generación se toma antes de leer el store
			gen, cacheable = g, true
		}
	}
	stats, err := uc.statsRepo.StatsByLocation(ctx)
	if err != nil {
		return nil, domain.Storage(OpStats, 0, err)
	}
	if cacheable {
		if err := uc.cache.SetStats(ctx, gen, stats); err != nil {
			uc.log.Warn().Err(err).Msg("guardar caché de estadísticas")
		}
	}
	return stats, nil
}

// Vocabulary expone el vocabulario configurado (para la capa de presentación).
func (uc *LedgerUseCase) Vocabulary() Vocabulary { return uc.cfg.Vocab }

// ── helpers ───────────────────────────────────────────────────────────────────

func (uc *LedgerUseCase) run(
	ctx context.Context, op string, productID int64,
	fn func(repository.ProductRepository, repository.MovementRepository) error,
) error {
	start := time.Now()
	err := uc.txRunner.Run(ctx, fn)
	if err != nil {
		err = domain.Storage(op, productID, err)
	}
	uc.recorder.ObserveOperation(op, resultLabel(err), time.Since(start))
	if err != nil {
		uc.log.Debug().Err(err).Str("op", op).Int64("product_id", productID).Msg("operación rechazada")
	}
	return err
}

func (uc *LedgerUseCase) reject(op string, err error) error {
	uc.recorder.ObserveOperation(op, resultLabel(err), 0)
	uc.log.Debug().Err(err).Str("op", op).Msg("validación fallida")
	return err
}

// committed se ejecuta solo después del Commit: invalida caché, publica eventos y registra métricas.
func (uc *LedgerUseCase) committed(ctx context.Context, op string, productID int64, movs ...*entity.Movement) {
	if uc.cache != nil {
		if err := uc.cache.InvalidateStats(ctx); err != nil {
			uc.log.Warn().Err(err).Msg("invalidar caché de estadísticas")
		}
	}
	ids := make([]int64, 0, len(movs))
	for _, m := range movs {
		ids = append(ids, m.ID)
		uc.recorder.MovementRecorded(m.Type)
		if uc.publisher == nil {
			continue
		}
		if err := uc.publisher.PublishMovement(ctx, m); err != nil {
			uc.recorder.PublishFailed()
			uc.log.Warn().Err(err).Int64("movement_id", m.ID).Msg("publicar movimiento")
		}
	}
	uc.log.Info().Str("op", op).Int64("product_id", productID).Ints64("movements", ids).Msg("operación confirmada")
}

func (uc *LedgerUseCase) newMovement(txID string, p *entity.Product, kind string, ts time.Time) *entity.Movement {
	return &entity.Movement{
		TransactionID: txID,
		ProductID:     p.ID,
		ProductName:   p.Name,
		Type:          kind,
		Actor:         uc.cfg.Actor,
		Timestamp:     ts,
	}
}

func (uc *LedgerUseCase) locationMovement(txID string, p *entity.Product, from string, ts time.Time) *entity.Movement {
	m := uc.newMovement(txID, p, entity.MovementTypeLocationChange, ts)
	m.QuantityBefore = p.Quantity
	m.QuantityAfter = p.Quantity
	m.LocationFrom = from
	m.LocationTo = p.Location
	return m
}

// clock trunca a microsegundos, la precisión de timestamptz.
func (uc *LedgerUseCase) clock() time.Time {
	return uc.now().UTC().Truncate(time.Microsecond)
}

func lockProduct(ctx context.Context, repo repository.ProductRepository, op string, id int64) (*entity.Product, error) {
	p, err := repo.GetForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.NotFound(op, id)
	}
	return p, nil
}

func dateOnly(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return &d
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrInvalidInput):
		return "invalid"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrInsufficientStock):
		return "insufficient_stock"
	default:
		return "storage_error"
	}
}
