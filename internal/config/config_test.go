package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsNeedSecretInProduction(t *testing.T) {
	t.Setenv("VOLTCART_CONFIG", "")
	t.Setenv("NODE_ENV", "")
	t.Setenv("APP_ENV", "")
	t.Setenv("AUTH_JWT_SECRET", "")
	t.Setenv("STORE_ANON_KEY", "")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "voltcart.yaml")
	yml := "port: \"9000\"\nenv: development\nrequest_timeout: 3s\ndb_dsn: file.db\n"
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o644))

	t.Setenv("VOLTCART_CONFIG", path)
	t.Setenv("NODE_ENV", "")
	t.Setenv("APP_ENV", "")
	t.Setenv("DB_DSN", "override.db")
	t.Setenv("AUTH_JWT_SECRET", "")
	t.Setenv("STORE_ANON_KEY", "")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "9000", cfg.Port)
	require.Equal(t, "override.db", cfg.DBDSN)
	require.Equal(t, 3*time.Second, cfg.RequestTimeout)
	require.True(t, cfg.IsDevelopment())
	require.Equal(t, "voltcart-dev-secret", cfg.SigningSecret())
}

func TestValidateRejectsUnknownEnv(t *testing.T) {
	cfg := Defaults()
	cfg.Env = "staging"
	cfg.JWTSecret = "x"
	require.Error(t, cfg.Validate())
}

func TestSummaryRedactsCredentials(t *testing.T) {
	cfg := Defaults()
	cfg.DBDSN = "postgres://user:pass@db:5432/shop"
	require.Equal(t, "postgres://***@db:5432/shop", cfg.Summary()["db_dsn"])
}
