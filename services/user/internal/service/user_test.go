package service

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Skotchmaster/shop_orders/services/user/internal/repo"
	"github.com/Skotchmaster/shop_orders/services/user/internal/transport"
)

func newTestUserService(t *testing.T) *UserService {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, repo.AutoMigrate(db))
	return &UserService{Repo: &repo.GormRepo{DB: db}}
}

func TestUserService_Create_Validation(t *testing.T) {
	t.Parallel()

	svc := newTestUserService(t)
	ctx := context.Background()

	tests := []struct {
		name string
		req  transport.CreateUserRequest
	}{
		{name: "empty username", req: transport.CreateUserRequest{Email: "a@x.io"}},
		{name: "empty email", req: transport.CreateUserRequest{Username: "alice"}},
		{name: "email without at", req: transport.CreateUserRequest{Username: "alice", Email: "alice.x.io"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := svc.Create(ctx, tt.req)
			assert.Nil(t, u)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestUserService_CreateAndLookup(t *testing.T) {
	t.Parallel()

	svc := newTestUserService(t)
	ctx := context.Background()

	u, err := svc.Create(ctx, transport.CreateUserRequest{Username: " alice ", Email: "Alice@X.io", FirstName: "Alice"})
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)
	assert.Equal(t, "alice@x.io", u.Email)
	assert.Equal(t, "Alice", u.DisplayName())

	got, err := svc.GetByEmail(ctx, "ALICE@x.io")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = svc.GetByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Create(ctx, transport.CreateUserRequest{Username: "alice", Email: "new@x.io"})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestUserService_Update(t *testing.T) {
	t.Parallel()

	svc := newTestUserService(t)
	ctx := context.Background()

	alice, err := svc.Create(ctx, transport.CreateUserRequest{Username: "alice", Email: "a@x.io"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, transport.CreateUserRequest{Username: "bob", Email: "b@x.io"})
	require.NoError(t, err)

	first, last := "Alice", "Liddell"
	u, err := svc.Update(ctx, alice.ID, transport.UpdateUserRequest{FirstName: &first, LastName: &last})
	require.NoError(t, err)
	assert.Equal(t, "Alice Liddell", u.DisplayName())

	taken := "bob"
	_, err = svc.Update(ctx, alice.ID, transport.UpdateUserRequest{Username: &taken})
	assert.ErrorIs(t, err, ErrConflict)

	bad := "nope"
	_, err = svc.Update(ctx, alice.ID, transport.UpdateUserRequest{Email: &bad})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Update(ctx, uuid.New(), transport.UpdateUserRequest{FirstName: &first})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserService_Delete(t *testing.T) {
	t.Parallel()

	svc := newTestUserService(t)
	ctx := context.Background()

	u, err := svc.Create(ctx, transport.CreateUserRequest{Username: "alice", Email: "a@x.io"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, u.ID))
	assert.ErrorIs(t, svc.Delete(ctx, u.ID), ErrNotFound)
}
