package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func chtemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	dir := chtemp(t)

	content := []byte("security:\n  jwtsecret: file-secret\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), content, 0o600))

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "development", cfg.Environment)
	require.Equal(t, 8080, cfg.HTTP.Port)
	require.Equal(t, "file-secret", cfg.Security.JWTSecret)
	require.Equal(t, 15*time.Minute, cfg.Security.AccessTokenTTL)
	require.Equal(t, 336*time.Hour, cfg.Security.RefreshTokenTTL)
	require.Greater(t, cfg.Security.RefreshTokenTTL, 24*cfg.Security.AccessTokenTTL)
	require.Equal(t, 10, cfg.Security.MaxSessions)
	require.Equal(t, 8, cfg.Security.MinPasswordLen)
}

func TestLoad_MissingSecret(t *testing.T) {
	chtemp(t)

	_, err := Load()
	require.Error(t, err)
	require.Contains(t, err.Error(), "jwtsecret")
}

func TestLoad_SecretFromEnvironment(t *testing.T) {
	chtemp(t)
	t.Setenv("TASKLIST_SECURITY_JWTSECRET", "env-secret")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "env-secret", cfg.Security.JWTSecret)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	dir := chtemp(t)

	content := []byte(`environment: production
security:
  jwtsecret: file-secret
  accesstokenttl: 5m
  maxsessions: 3
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), content, 0o600))

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "production", cfg.Environment)
	require.Equal(t, 5*time.Minute, cfg.Security.AccessTokenTTL)
	require.Equal(t, 3, cfg.Security.MaxSessions)
}
