package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()

	t.Setenv("APP_NAME", "competence-exchange")
	t.Setenv("APP_ENV", "test")
	t.Setenv("HTTP_PORT", "8080")
	t.Setenv("JWT_ACCESS_SECRET", "access-secret")
	t.Setenv("JWT_REFRESH_SECRET", "refresh-secret")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "competence-exchange", cfg.App.AppName)
	require.Equal(t, "8080", cfg.App.HTTPPort)
	require.Equal(t, 15*time.Minute, cfg.JWT.AccessExpiresIn)
	require.Equal(t, 7*24*time.Hour, cfg.JWT.RefreshExpiresIn)
	require.Equal(t, 5*time.Second, cfg.Database.ConnectTimeout)
}

func TestLoad_Overrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("JWT_ACCESS_EXPIRES_IN", "30m")
	t.Setenv("DB_POOL_MAX_CONNS", "12")
	t.Setenv("DB_CONNECT_TIMEOUT", "2s")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, 30*time.Minute, cfg.JWT.AccessExpiresIn)
	require.Equal(t, int32(12), cfg.Database.PoolMaxConns)
	require.Equal(t, 2*time.Second, cfg.Database.ConnectTimeout)
}

func TestLoad_InvalidOverrideFallsBack(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("JWT_ACCESS_EXPIRES_IN", "soon")
	t.Setenv("DB_POOL_MAX_CONNS", "-3")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, 15*time.Minute, cfg.JWT.AccessExpiresIn)
	require.Equal(t, int32(0), cfg.Database.PoolMaxConns)
}

func TestLoad_MissingRequired(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("JWT_ACCESS_SECRET", "")

	_, err := Load()
	require.ErrorIs(t, err, errMissingRequiredEnv)
	require.Contains(t, err.Error(), "JWT_ACCESS_SECRET")
}
