// Package metrics expone métricas Prometheus del ledger.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/emanueliriarte-arch/mi-app-inventario/internal/application/inventory"
)

const namespace = "inventory"

var _ inventory.Recorder = (*Recorder)(nil)

// Recorder implementa inventory.Recorder sobre un registry propio (no el global) para poder
// construir varios en tests.
type Recorder struct {
	Registry *prometheus.Registry

	operations    *prometheus.CounterVec
	duration      *prometheus.HistogramVec
	movements     *prometheus.CounterVec
	publishErrors prometheus.Counter
}

// NewRecorder registra los colectores del ledger y los del runtime de Go.
func NewRecorder() *Recorder {
	r := &Recorder{
		Registry: prometheus.NewRegistry(),
		// operations por operación y resultado (ok, invalid, not_found, insufficient_stock, storage_error)
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ledger_operations_total",
			Help:      "Total de operaciones del ledger por resultado",
		}, []string{"operation", "result"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "ledger_operation_duration_seconds",
			Help:      "Duración de las operaciones del ledger",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"operation"}),
		movements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "movements_recorded_total",
			Help:      "Movimientos confirmados por tipo",
		}, []string{"movement_type"}),
		publishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "movement_publish_errors_total",
			Help:      "Movimientos que no se pudieron publicar en Kafka",
		}),
	}
	r.Registry.MustRegister(
		r.operations, r.duration, r.movements, r.publishErrors,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

func (r *Recorder) ObserveOperation(operation, result string, elapsed time.Duration) {
	r.operations.WithLabelValues(operation, result).Inc()
	r.duration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

func (r *Recorder) MovementRecorded(movementType string) {
	r.movements.WithLabelValues(movementType).Inc()
}

func (r *Recorder) PublishFailed() {
	r.publishErrors.Inc()
}
