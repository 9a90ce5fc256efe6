package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emanueliriarte-arch/mi-app-inventario/pkg/config"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "memory")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, config.StorageMemory, cfg.App.Storage)
	assert.Equal(t, "sistema", cfg.Ledger.Actor)
	assert.Equal(t, "A", cfg.Ledger.SKUPrefix)
	assert.False(t, cfg.Redis.Enabled(), "sin REDIS_ADDR no hay caché")
	assert.False(t, cfg.Kafka.Enabled(), "sin KAFKA_BROKERS no hay eventos")
	assert.Equal(t, 5*time.Minute, cfg.Redis.TTL)
}

func TestLoad_Lists(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("LEDGER_LOCATIONS", " Almacén, Taller ,,Bodega ")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("LEDGER_FREE_FORM_UNITS", "true")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"Almacén", "Taller", "Bodega"}, cfg.Ledger.Locations)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.True(t, cfg.Ledger.FreeFormUnits)
}

func TestLoad_InvalidDriver(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "sqlite")

	_, err := config.Load()
	assert.Error(t, err)
}

func TestDBConfig_DSN(t *testing.T) {
	c := config.DBConfig{Host: "db", Port: 5432, User: "inv", Password: "p@ss:word", DBName: "inventario", SSLMode: "disable"}
	assert.Equal(t, "postgres://inv:p%40ss%3Aword@db:5432/inventario?sslmode=disable", c.DSN())
}

func TestLoad_PuertoInvalido(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("HTTP_PORT", "70000")

	_, err := config.Load()
	assert.ErrorContains(t, err, "HTTP_PORT")
}

func TestLoad_EnvSobreDefaults(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", " Memory ")
	t.Setenv("LEDGER_LOCK_KEY", "99")
	t.Setenv("STATS_CACHE_TTL_SECONDS", "30")
	t.Setenv("EXPORT_CSV_CHARSET", "Windows-1252")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, config.StorageMemory, cfg.App.Storage)
	assert.Equal(t, int64(99), cfg.Ledger.LockKey)
	assert.Equal(t, 30*time.Second, cfg.Redis.TTL)
	assert.Equal(t, "windows-1252", cfg.Reports.CSVCharset)
}
