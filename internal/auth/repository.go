package auth

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/elskow/transcendence/internal/apperr"
)

var (
	ErrUserNotFound    = apperr.NotFound("user not found")
	ErrUserExists      = apperr.Conflict("user with that email or that name already exists")
	ErrInvalidPassword = apperr.BadCredential("wrong credentials provided")
)

type Repository interface {
	CreateUser(ctx context.Context, user *User) error
	GetUserByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	GetUserByName(ctx context.Context, name string) (*User, error)
	GetUserByFortyTwoLogin(ctx context.Context, login string) (*User, error)
	UpdateName(ctx context.Context, id uuid.UUID, name string) error
	SetFortyTwoLogin(ctx context.Context, id uuid.UUID, login string) error
	SetTwoFactorSecret(ctx context.Context, id uuid.UUID, secret string) error
	SetTwoFactorEnabled(ctx context.Context, id uuid.UUID, enabled bool) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateUser(ctx context.Context, user *User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrUserExists
		}
		return err
	}
	return nil
}

func (r *repository) GetUserByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *repository) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	return r.first(ctx, "email = ?", email)
}

func (r *repository) GetUserByName(ctx context.Context, name string) (*User, error) {
	return r.first(ctx, "name = ?", name)
}

func (r *repository) GetUserByFortyTwoLogin(ctx context.Context, login string) (*User, error) {
	return r.first(ctx, "forty_two_login = ?", login)
}

func (r *repository) first(ctx context.Context, query string, arg any) (*User, error) {
	var user User
	if err := r.db.WithContext(ctx).Where(query, arg).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *repository) UpdateName(ctx context.Context, id uuid.UUID, name string) error {
	return r.update(ctx, id, "name", name)
}

func (r *repository) SetFortyTwoLogin(ctx context.Context, id uuid.UUID, login string) error {
	return r.update(ctx, id, "forty_two_login", login)
}

func (r *repository) SetTwoFactorSecret(ctx context.Context, id uuid.UUID, secret string) error {
	return r.update(ctx, id, "two_factor_secret", secret)
}

func (r *repository) SetTwoFactorEnabled(ctx context.Context, id uuid.UUID, enabled bool) error {
	return r.update(ctx, id, "two_factor_enabled", enabled)
}

func (r *repository) update(ctx context.Context, id uuid.UUID, column string, value any) error {
	res := r.db.WithContext(ctx).Model(&User{}).Where("id = ?", id).Update(column, value)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return ErrUserExists
		}
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}
