package repo

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/shop_orders/services/user/internal/models"
)

var ErrUserAlreadyExist = errors.New("user already exist")

type GormRepo struct {
	DB *gorm.DB
}

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&models.User{})
}

func (r *GormRepo) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *GormRepo) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.first(ctx, "username = ?", username)
}

func (r *GormRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.first(ctx, "email = ?", email)
}

func (r *GormRepo) first(ctx context.Context, where string, arg any) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where(where, arg).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *GormRepo) GetUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := r.DB.WithContext(ctx).Order("username ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// CreateUser inserts u unless its username or email is taken.
func (r *GormRepo) CreateUser(ctx context.Context, u *models.User) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureUnique(tx, u); err != nil {
			return err
		}
		return duplicate(tx.Create(u).Error)
	})
}

func (r *GormRepo) SaveUser(ctx context.Context, u *models.User) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureUnique(tx, u); err != nil {
			return err
		}
		return duplicate(tx.Save(u).Error)
	})
}

func (r *GormRepo) DeleteUser(ctx context.Context, id uuid.UUID) error {
	res := r.DB.WithContext(ctx).Delete(&models.User{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func ensureUnique(tx *gorm.DB, u *models.User) error {
	var n int64
	err := tx.Model(&models.User{}).
		Where("(username = ? OR email = ?) AND id <> ?", u.Username, u.Email, u.ID).
		Count(&n).Error
	if err != nil {
		return err
	}
	if n > 0 {
		return ErrUserAlreadyExist
	}
	return nil
}

// duplicate catches the race the pre-check cannot see.
func duplicate(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrUserAlreadyExist
	}
	return err
}
