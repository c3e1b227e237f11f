//go:build integration

package idempotency

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startRedis(t *testing.T) *redis.Client {
	t.Helper()
	ctx := context.Background()

	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Terminate(context.Background()) })

	endpoint, err := c.Endpoint(ctx, "")
	require.NoError(t, err)

	rdb := redis.NewClient(&redis.Options{Addr: endpoint})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func TestConcurrentReserveOnRealRedis(t *testing.T) {
	s := NewStore(startRedis(t), "orders", time.Hour, 5*time.Second)
	ctx := context.Background()

	const workers = 16
	owners := make(chan struct{}, workers)
	done := make(chan struct{})
	for i := 0; i < workers; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			got, err := s.Reserve(ctx, "race")
			if err == nil && got == "" {
				owners <- struct{}{}
				return
			}
			assert.ErrorIs(t, err, ErrInFlight)
		}()
	}
	for i := 0; i < workers; i++ {
		<-done
	}
	close(owners)
	require.Len(t, owners, 1)

	require.NoError(t, s.Complete(ctx, "race", "order-9"))
	got, err := s.Reserve(ctx, "race")
	require.NoError(t, err)
	require.Equal(t, "order-9", got)
}
