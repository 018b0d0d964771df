package repository

import (
	"context"
	"errors"

	"inkwell/internal/database"
	"inkwell/internal/models"

	"gorm.io/gorm"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	UpdatePasswordHash(ctx context.Context, id uint, hash string) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	user, err := database.WithRetry(ctx, "users.get", func(ctx context.Context) (*models.User, error) {
		var user models.User
		if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
			return nil, err
		}
		return &user, nil
	})
	if err != nil {
		return nil, notFoundOr(err, "User", id)
	}
	return user, nil
}

// GetByUsername returns nil, nil when no user has that name.
func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	user, err := database.WithRetry(ctx, "users.get_by_username", func(ctx context.Context) (*models.User, error) {
		var user models.User
		if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
			return nil, err
		}
		return &user, nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, storeError(err)
	}
	return user, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	err := database.Exec(ctx, "users.create", func(ctx context.Context) error {
		return r.db.WithContext(ctx).Create(user).Error
	})
	if database.IsUniqueViolation(err) {
		return models.NewDuplicateError("name or email is already taken")
	}
	return storeError(err)
}

func (r *userRepository) UpdatePasswordHash(ctx context.Context, id uint, hash string) error {
	var affected int64
	err := database.Exec(ctx, "users.update_password", func(ctx context.Context) error {
		res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("password_hash", hash)
		affected = res.RowsAffected
		return res.Error
	})
	if err != nil {
		return storeError(err)
	}
	if affected == 0 {
		return models.NewNotFoundError("User", id)
	}
	return nil
}
