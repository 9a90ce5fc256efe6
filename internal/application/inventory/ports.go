package inventory

import (
	"context"
	"time"

	"github.com/emanueliriarte-arch/mi-app-inventario/internal/domain/entity"
	"github.com/emanueliriarte-arch/mi-app-inventario/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Si fn devuelve error se hace Rollback y no queda ningún cambio visible.
// Las transacciones de un mismo ledger se serializan (un único escritor lógico).
type TxRunner interface {
	Run(ctx context.Context, fn func(
		productRepo repository.ProductRepository,
		movementRepo repository.MovementRepository,
	) error) error
}

// StatsCache guarda el resultado de StatsByLocation entre mutaciones.
// Cada invalidación avanza una generación; un valor leído del store con una generación vieja
// no se guarda.
type StatsCache interface {
	// GetStats devuelve la generación vigente y ok=false si no hay valor en caché para ella.
	GetStats(ctx context.Context) (stats map[string]entity.LocationStats, gen int64, ok bool, err error)
	// SetStats guarda stats solo si la generación sigue siendo gen.
	SetStats(ctx context.Context, gen int64, stats map[string]entity.LocationStats) error
	InvalidateStats(ctx context.Context) error
}

// MovementPublisher notifica movimientos ya confirmados a sistemas externos.
type MovementPublisher interface {
	PublishMovement(ctx context.Context, movement *entity.Movement) error
}

// Recorder recibe métricas de las operaciones del ledger.
type Recorder interface {
	ObserveOperation(operation, result string, elapsed time.Duration)
	MovementRecorded(movementType string)
	PublishFailed()
}

type nopRecorder struct{}

func (nopRecorder) ObserveOperation(string, string, time.Duration) {}
func (nopRecorder) MovementRecorded(string)                         {}
func (nopRecorder) PublishFailed()                                  {}
