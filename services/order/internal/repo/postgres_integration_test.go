//go:build integration

package repo

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	pkgdb "github.com/Skotchmaster/shop_orders/pkg/db"
	"github.com/Skotchmaster/shop_orders/services/order/internal/domain"
	"github.com/Skotchmaster/shop_orders/services/order/internal/models"
)

func startPostgres(t *testing.T) *GormRepo {
	t.Helper()
	ctx := context.Background()

	pgC, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("orders"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(context.Background()) })

	dsn, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := pkgdb.Open(ctx, dsn)
	require.NoError(t, err)
	require.True(t, pkgdb.IsPostgres(db))
	require.NoError(t, models.AutoMigrate(db))
	t.Cleanup(func() { _ = pkgdb.Close(db) })

	return &GormRepo{DB: db}
}

func TestPostgresRoundTrip(t *testing.T) {
	r := startPostgres(t)
	ctx := context.Background()

	o := newOrder(uuid.New(), time.Now().UTC(), line("a", "10.00", 3), line("b", "0.10", 3))
	require.NoError(t, r.Save(ctx, o))

	got, err := r.FindByID(ctx, o.ID)
	require.NoError(t, err)
	require.Equal(t, "30.30", got.Total().StringFixed(2))
	require.Equal(t, "a", got.Lines()[0].ProductName)
}

// Concurrent updates serialize on the row lock, so every writer sees the
// previous writer's status.
func TestPostgresUpdateLocksRow(t *testing.T) {
	r := startPostgres(t)
	ctx := context.Background()

	o := newOrder(uuid.New(), time.Now().UTC(), line("a", "1.00", 1))
	require.NoError(t, r.Save(ctx, o))

	const writers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		cancelled int
	)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := r.Update(ctx, o.ID, func(o *domain.Order) error {
				if o.Status == domain.StatusCancelled {
					return nil
				}
				mu.Lock()
				cancelled++
				mu.Unlock()
				o.SetStatus(domain.StatusCancelled, time.Now().UTC())
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	require.Equal(t, 1, cancelled)
}
