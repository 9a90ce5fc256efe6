package logger_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emanueliriarte-arch/mi-app-inventario/pkg/logger"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, logger.ParseLevel("DEBUG"))
	assert.Equal(t, zerolog.WarnLevel, logger.ParseLevel(" warning "))
	assert.Equal(t, zerolog.InfoLevel, logger.ParseLevel(""))
	assert.Equal(t, zerolog.InfoLevel, logger.ParseLevel("verbose"))
}

func TestNew_JSONConCampos(t *testing.T) {
	var buf bytes.Buffer
	l := logger.New(logger.Config{Env: "production", Level: "warn", App: "inventario", Output: &buf})

	l.Info().Msg("no debe salir")
	assert.Zero(t, buf.Len(), "info queda bajo el nivel warn")

	c := l.Component("ledger")
	c.Warn().Int64("product_id", 7).Msg("stock bajo")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "inventario", entry["app"])
	assert.Equal(t, "ledger", entry["component"])
	assert.Equal(t, float64(7), entry["product_id"])
	assert.Equal(t, "stock bajo", entry["message"])
}
