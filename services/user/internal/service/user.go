package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/shop_orders/pkg/logging"
	"github.com/Skotchmaster/shop_orders/services/user/internal/models"
	"github.com/Skotchmaster/shop_orders/services/user/internal/repo"
	"github.com/Skotchmaster/shop_orders/services/user/internal/transport"
)

var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("user not found")
	ErrConflict   = errors.New("username or email already taken")
)

type UserService struct {
	Repo *repo.GormRepo
}

func (s *UserService) GetUsers(ctx context.Context) ([]models.User, error) {
	return s.Repo.GetUsers(ctx)
}

func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	u, err := s.Repo.GetUserByID(ctx, id)
	return u, mapErr(err)
}

func (s *UserService) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	u, err := s.Repo.GetUserByUsername(ctx, username)
	return u, mapErr(err)
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	u, err := s.Repo.GetUserByEmail(ctx, strings.ToLower(email))
	return u, mapErr(err)
}

func (s *UserService) Create(ctx context.Context, req transport.CreateUserRequest) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "user.create")

	u := &models.User{
		Username:  strings.TrimSpace(req.Username),
		Email:     strings.ToLower(strings.TrimSpace(req.Email)),
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
	}
	if err := validate(u); err != nil {
		return nil, err
	}

	if err := s.Repo.CreateUser(ctx, u); err != nil {
		return nil, mapErr(err)
	}
	l.Info("user_created", "user_id", u.ID, "username", u.Username)
	return u, nil
}

func (s *UserService) Update(ctx context.Context, id uuid.UUID, req transport.UpdateUserRequest) (*models.User, error) {
	u, err := s.Repo.GetUserByID(ctx, id)
	if err != nil {
		return nil, mapErr(err)
	}

	if req.Username != nil {
		u.Username = strings.TrimSpace(*req.Username)
	}
	if req.Email != nil {
		u.Email = strings.ToLower(strings.TrimSpace(*req.Email))
	}
	if req.FirstName != nil {
		u.FirstName = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		u.LastName = strings.TrimSpace(*req.LastName)
	}
	if err := validate(u); err != nil {
		return nil, err
	}

	if err := s.Repo.SaveUser(ctx, u); err != nil {
		return nil, mapErr(err)
	}
	return u, nil
}

func (s *UserService) Delete(ctx context.Context, id uuid.UUID) error {
	return mapErr(s.Repo.DeleteUser(ctx, id))
}

func validate(u *models.User) error {
	switch {
	case u.Username == "":
		return fmt.Errorf("%w: username is required", ErrValidation)
	case u.Email == "":
		return fmt.Errorf("%w: email is required", ErrValidation)
	case !strings.Contains(u.Email, "@"):
		return fmt.Errorf("%w: email is invalid", ErrValidation)
	}
	return nil
}

func mapErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	case errors.Is(err, repo.ErrUserAlreadyExist):
		return fmt.Errorf("%w: %w", ErrConflict, err)
	}
	return err
}
