package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("INVENTARIO_BASE_URL", "http://inventario.local")
	t.Setenv("HTTP_TIMEOUT_SECONDS", "5")

	cfg := LoadConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "http://inventario.local", cfg.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, "/inventario/api/entradadetalle/", cfg.Endpoints.Detalles)
	assert.Equal(t, "sqlite", cfg.Sandbox.DBDriver)
}

func TestLoadConfigRejectsBadValues(t *testing.T) {
	t.Setenv("INVENTARIO_BASE_URL", "http://inventario.local")
	t.Setenv("DB_DRIVER", "oracle")

	assert.Error(t, LoadConfig().Validate())
}

func TestNotifyToMustBeEmails(t *testing.T) {
	t.Setenv("INVENTARIO_BASE_URL", "http://inventario.local")
	t.Setenv("NOTIFY_TO", "bodega@example.com, not-an-email")

	assert.Error(t, LoadConfig().Validate())
}

func TestOverridesAreValidatedAfterLoading(t *testing.T) {
	t.Setenv("INVENTARIO_BASE_URL", "notaurl")
	t.Setenv("LOG_LEVEL", "verbose")

	cfg := LoadConfig()
	assert.Error(t, cfg.Validate())

	cfg.BaseURL = "http://inventario.local"
	assert.Error(t, cfg.Validate())

	cfg.LogLevel = "debug"
	assert.NoError(t, cfg.Validate())
}

func TestDialectorSelection(t *testing.T) {
	for _, driver := range []string{"sqlite", "postgres", "mysql", "mssql"} {
		d, err := Sandbox{DBDriver: driver, DBName: "inventario"}.Dialector()
		require.NoError(t, err, driver)
		assert.NotNil(t, d)
	}
	_, err := Sandbox{DBDriver: "oracle"}.Dialector()
	assert.Error(t, err)
}
