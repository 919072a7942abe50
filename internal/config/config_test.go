package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(m map[string]string) lookupFunc {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

// TestDefaults - Padrões do serviço
func TestDefaults(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, "google/gemini-2.5-flash", cfg.LLM.Model)
	assert.Equal(t, 5*time.Minute, cfg.Worker.StaleScheduling)
	assert.Equal(t, DefaultTimezone, cfg.Timezone)
}

// TestYAMLThenEnv - O ambiente sobrescreve o arquivo
func TestYAMLThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "concierge.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: "9090"
  allowed_origins: ["https://app.nexus.dev"]
database:
  driver: sqlite
  path: /tmp/x.db
llm:
  model: outro/modelo
  timeout: 30s
worker:
  stale_scheduling: 10m
`), 0o600))

	cfg := Default()
	require.NoError(t, cfg.loadFile(path))
	require.NoError(t, cfg.applyEnv(envMap(map[string]string{
		"PORT":            "7070",
		"LOVABLE_API_KEY": "k",
		"ALLOWED_ORIGINS": "http://a, http://b ,",
	})))

	assert.Equal(t, "7070", cfg.Server.Port)
	assert.Equal(t, []string{"http://a", "http://b"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, "/tmp/x.db", cfg.Database.Path)
	assert.Equal(t, "outro/modelo", cfg.LLM.Model)
	assert.Equal(t, "k", cfg.LLM.APIKey)
	assert.Equal(t, 30*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, 10*time.Minute, cfg.Worker.StaleScheduling)
	// não vindo do YAML nem do ambiente, mantém o padrão
	assert.Equal(t, "https://ai.gateway.lovable.dev/v1", cfg.LLM.BaseURL)
	assert.NoError(t, cfg.Validate())
}

// TestEnvInvalidValues - Duração e número inválidos são reportados juntos
func TestEnvInvalidValues(t *testing.T) {
	cfg := Default()
	err := cfg.applyEnv(envMap(map[string]string{
		"RATE_WINDOW": "um minuto",
		"MAIL_PORT":   "abc",
	}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RATE_WINDOW")
	assert.Contains(t, err.Error(), "MAIL_PORT")
}

// TestValidate - Driver, URL e timezone
func TestValidate(t *testing.T) {
	cfg := Default()
	assert.Error(t, cfg.Validate(), "postgres sem DATABASE_URL")

	cfg.Database.URL = "postgres://localhost/concierge"
	assert.NoError(t, cfg.Validate())

	cfg.Database.Driver = "mysql"
	assert.Error(t, cfg.Validate())

	cfg.Database.Driver = DriverSQLite
	cfg.Timezone = "Marte/Olympus"
	assert.Error(t, cfg.Validate())
}

// TestLocation - Fuso padrão carrega São Paulo
func TestLocation(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "America/Sao_Paulo", cfg.Location().String())
}
