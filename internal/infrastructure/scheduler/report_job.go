// Package scheduler ejecuta el reporte periódico de existencias.
package scheduler

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/emanueliriarte-arch/mi-app-inventario/internal/domain/entity"
)

// StatsSource agregados por departamento (inventory.LedgerUseCase).
type StatsSource interface {
	StatsByLocation(ctx context.Context) (map[string]entity.LocationStats, error)
}

// SnapshotWriter escribe el catálogo actual como CSV (report.UseCase).
type SnapshotWriter interface {
	WriteProductsCSV(ctx context.Context, w io.Writer, filter entity.ProductFilter) error
}

// ReportScheduler registra en el log las estadísticas por departamento y, si hay directorio
// configurado, deja una foto CSV del catálogo con marca de tiempo en el nombre.
type ReportScheduler struct {
	cron     *cron.Cron
	stats    StatsSource
	snapshot SnapshotWriter
	dir      string
	log      zerolog.Logger
	now      func() time.Time
}

// NewReportScheduler construye el scheduler. dir vacío = solo log.
func NewReportScheduler(stats StatsSource, snapshot SnapshotWriter, dir string, log zerolog.Logger) *ReportScheduler {
	return &ReportScheduler{
		cron:     cron.New(),
		stats:    stats,
		snapshot: snapshot,
		dir:      dir,
		log:      log,
		now:      time.Now,
	}
}

// Start programa el job con una expresión cron estándar de 5 campos y arranca el scheduler.
func (s *ReportScheduler) Start(ctx context.Context, schedule string) error {
	_, err := s.cron.AddFunc(schedule, func() {
		if err := s.RunOnce(ctx); err != nil {
			s.log.Error().Err(err).Msg("reporte programado falló")
		}
	})
	if err != nil {
		return fmt.Errorf("programar reporte %q: %w", schedule, err)
	}
	s.cron.Start()
	s.log.Info().Str("schedule", schedule).Msg("reporte programado activo")
	return nil
}

// Stop detiene el scheduler y espera al job en curso.
func (s *ReportScheduler) Stop() {
	<-s.cron.Stop().Done()
}

// Entries jobs registrados.
func (s *ReportScheduler) Entries() []cron.Entry {
	return s.cron.Entries()
}

// RunOnce ejecuta el reporte una vez.
func (s *ReportScheduler) RunOnce(ctx context.Context) error {
	stats, err := s.stats.StatsByLocation(ctx)
	if err != nil {
		return fmt.Errorf("estadísticas: %w", err)
	}
	locations := make([]string, 0, len(stats))
	for loc := range stats {
		locations = append(locations, loc)
	}
	sort.Strings(locations)
	for _, loc := range locations {
		st := stats[loc]
		s.log.Info().
			Str("location", loc).
			Int("products", st.ProductCount).
			Str("total_quantity", st.TotalQuantity.String()).
			Int("distinct_units", st.DistinctUnits).
			Msg("existencias por departamento")
	}

	if s.dir == "" || s.snapshot == nil {
		return nil
	}
	path, err := s.writeSnapshot(ctx)
	if err != nil {
		return err
	}
	s.log.Info().Str("path", path).Msg("foto del catálogo guardada")
	return nil
}

func (s *ReportScheduler) writeSnapshot(ctx context.Context) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("crear directorio de reportes: %w", err)
	}
	path := filepath.Join(s.dir, "productos_"+s.now().UTC().Format("20060102T150405Z")+".csv")
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("crear archivo de reporte: %w", err)
	}
	if err := s.snapshot.WriteProductsCSV(ctx, f, entity.ProductFilter{}); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", fmt.Errorf("escribir reporte: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("cerrar reporte: %w", err)
	}
	return path, nil
}
