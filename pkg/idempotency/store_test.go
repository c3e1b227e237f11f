package idempotency

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

const (
	testTTL   = time.Hour
	testLease = 30 * time.Second
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	s := NewStore(rdb, "orders", testTTL, testLease)
	require.NoError(t, s.Ping(context.Background()))
	return s, mr
}

func TestReserveCompleteReplay(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	got, err := s.Reserve(ctx, "k1")
	require.NoError(t, err)
	require.Empty(t, got)

	_, err = s.Reserve(ctx, "k1")
	require.ErrorIs(t, err, ErrInFlight)

	require.NoError(t, s.Complete(ctx, "k1", "order-1"))
	got, err = s.Reserve(ctx, "k1")
	require.NoError(t, err)
	require.Equal(t, "order-1", got)
}

func TestReleaseFreesKey(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	_, err := s.Reserve(ctx, "k2")
	require.NoError(t, err)
	require.NoError(t, s.Release(ctx, "k2"))

	got, err := s.Reserve(ctx, "k2")
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestReservationExpiresAfterLease(t *testing.T) {
	s, mr := newTestStore(t)
	ctx := context.Background()

	_, err := s.Reserve(ctx, "k3")
	require.NoError(t, err)
	require.Equal(t, testLease, mr.TTL(s.key("k3")))

	mr.FastForward(testLease - time.Second)
	_, err = s.Reserve(ctx, "k3")
	require.ErrorIs(t, err, ErrInFlight)

	mr.FastForward(2 * time.Second)
	got, err := s.Reserve(ctx, "k3")
	require.NoError(t, err, "an abandoned reservation must not block past its lease")
	require.Empty(t, got)
}

func TestCompletedResultOutlivesLease(t *testing.T) {
	s, mr := newTestStore(t)
	ctx := context.Background()

	_, err := s.Reserve(ctx, "k4")
	require.NoError(t, err)
	require.NoError(t, s.Complete(ctx, "k4", "order-4"))
	require.Equal(t, testTTL, mr.TTL(s.key("k4")))

	mr.FastForward(10 * testLease)
	got, err := s.Reserve(ctx, "k4")
	require.NoError(t, err)
	require.Equal(t, "order-4", got)

	mr.FastForward(testTTL)
	got, err = s.Reserve(ctx, "k4")
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestKeysArePrefixed(t *testing.T) {
	s, mr := newTestStore(t)

	_, err := s.Reserve(context.Background(), "k5")
	require.NoError(t, err)
	require.True(t, mr.Exists("idem:orders:k5"))

	v, err := mr.Get("idem:orders:k5")
	require.NoError(t, err)
	require.Equal(t, pending, v)
}

func TestDefaultLease(t *testing.T) {
	s := NewStore(nil, "x", time.Hour, 0)
	require.Equal(t, DefaultLease, s.lease)
}

func TestRedisDown(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = rdb.Close() })
	s := NewStore(rdb, "orders", testTTL, testLease)
	mr.Close()

	_, err = s.Reserve(context.Background(), "k6")
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrInFlight)
}
