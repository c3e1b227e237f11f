package idempotency

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	pending = "pending"

	DefaultLease = 30 * time.Second
)

var ErrInFlight = errors.New("idempotency: request with this key is in flight")

// Store remembers the result of a request under a client supplied key.
// A reservation only lives for lease, so a holder that dies before Complete
// or Release blocks retries for at most that long. Completed results are
// kept for ttl.
type Store struct {
	rdb    *redis.Client
	ttl    time.Duration
	lease  time.Duration
	prefix string
}

func NewStore(rdb *redis.Client, prefix string, ttl, lease time.Duration) *Store {
	if lease <= 0 {
		lease = DefaultLease
	}
	return &Store{rdb: rdb, ttl: ttl, lease: lease, prefix: prefix}
}

func (s *Store) key(k string) string {
	return fmt.Sprintf("idem:%s:%s", s.prefix, k)
}

// Reserve claims key. It returns the stored result when the key already
// completed, ErrInFlight when another request holds it, and ("", nil) when
// the caller now owns the key.
func (s *Store) Reserve(ctx context.Context, key string) (string, error) {
	// The key can expire between SetNX and Get; try again a few times.
	for i := 0; i < 3; i++ {
		ok, err := s.rdb.SetNX(ctx, s.key(key), pending, s.lease).Result()
		if err != nil {
			return "", err
		}
		if ok {
			return "", nil
		}

		v, err := s.rdb.Get(ctx, s.key(key)).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return "", err
		}
		if v == pending {
			return "", ErrInFlight
		}
		return v, nil
	}
	return "", ErrInFlight
}

func (s *Store) Complete(ctx context.Context, key, result string) error {
	return s.rdb.Set(ctx, s.key(key), result, s.ttl).Err()
}

func (s *Store) Release(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, s.key(key)).Err()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}
