package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "file::memory:")
	t.Setenv("USER_SERVICE_URL", "http://user:8080")
	t.Setenv("PRODUCT_SERVICE_URL", "http://product:8080")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)
	t.Setenv("SERVICE_NAME", "")

	cfg := Load()
	require.Equal(t, "order", cfg.ServiceName)
	require.False(t, cfg.CompensateStock)
	require.Equal(t, 24*time.Hour, cfg.IdempotencyTTL)
	require.Equal(t, 30*time.Second, cfg.IdempotencyLease)
	require.Equal(t, 5*time.Second, cfg.RPCTimeout)
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("ORDER_COMPENSATE_STOCK", "true")
	t.Setenv("IDEMPOTENCY_TTL", "1h")
	t.Setenv("IDEMPOTENCY_LEASE", "10s")
	t.Setenv("RPC_TIMEOUT", "750ms")

	cfg := Load()
	require.True(t, cfg.CompensateStock)
	require.Equal(t, time.Hour, cfg.IdempotencyTTL)
	require.Equal(t, 10*time.Second, cfg.IdempotencyLease)
	require.Equal(t, 750*time.Millisecond, cfg.RPCTimeout)
}
