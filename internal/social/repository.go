package social

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/elskow/transcendence/internal/apperr"
)

var (
	ErrFriendNotFound = apperr.NotFound("friend request not found")
	ErrFriendExists   = apperr.Conflict("friend request already exists")
	ErrDuelNotFound   = apperr.NotFound("duel not found")
	ErrDuelExists     = apperr.Conflict("duel already pending")
)

type Repository interface {
	CreateFriend(ctx context.Context, friend *Friend) error
	GetFriend(ctx context.Context, id uuid.UUID) (*Friend, error)
	FindFriend(ctx context.Context, ownerID, friendID uuid.UUID) (*Friend, error)
	ListFriends(ctx context.Context, userID uuid.UUID) ([]Friend, error)
	SaveFriend(ctx context.Context, friend *Friend) error
	DeleteFriend(ctx context.Context, id uuid.UUID) error

	CreateDuel(ctx context.Context, duel *Duel) error
	GetDuel(ctx context.Context, id uuid.UUID) (*Duel, error)
	FindDuel(ctx context.Context, ownerID, opponentID uuid.UUID) (*Duel, error)
	ListDuels(ctx context.Context, userID uuid.UUID) ([]Duel, error)
	SaveDuel(ctx context.Context, duel *Duel) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateFriend(ctx context.Context, friend *Friend) error {
	return create(r.db.WithContext(ctx), friend, ErrFriendExists)
}

func (r *repository) GetFriend(ctx context.Context, id uuid.UUID) (*Friend, error) {
	return first[Friend](r.db.WithContext(ctx).Where("id = ?", id), ErrFriendNotFound)
}

func (r *repository) FindFriend(ctx context.Context, ownerID, friendID uuid.UUID) (*Friend, error) {
	return first[Friend](r.db.WithContext(ctx).
		Where("friend_owner_id = ? AND friend_id = ?", ownerID, friendID), ErrFriendNotFound)
}

func (r *repository) ListFriends(ctx context.Context, userID uuid.UUID) ([]Friend, error) {
	var friends []Friend
	err := r.db.WithContext(ctx).
		Where("friend_owner_id = ? OR friend_id = ?", userID, userID).
		Order("created_at").
		Find(&friends).Error
	return friends, err
}

func (r *repository) SaveFriend(ctx context.Context, friend *Friend) error {
	return r.db.WithContext(ctx).Save(friend).Error
}

func (r *repository) DeleteFriend(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&Friend{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrFriendNotFound
	}
	return nil
}

func (r *repository) CreateDuel(ctx context.Context, duel *Duel) error {
	return create(r.db.WithContext(ctx), duel, ErrDuelExists)
}

func (r *repository) GetDuel(ctx context.Context, id uuid.UUID) (*Duel, error) {
	return first[Duel](r.db.WithContext(ctx).Where("id = ?", id), ErrDuelNotFound)
}

func (r *repository) FindDuel(ctx context.Context, ownerID, opponentID uuid.UUID) (*Duel, error) {
	return first[Duel](r.db.WithContext(ctx).
		Where("duel_owner_id = ? AND duel_id = ?", ownerID, opponentID), ErrDuelNotFound)
}

func (r *repository) ListDuels(ctx context.Context, userID uuid.UUID) ([]Duel, error) {
	var duels []Duel
	err := r.db.WithContext(ctx).
		Where("duel_owner_id = ? OR duel_id = ?", userID, userID).
		Order("created_at").
		Find(&duels).Error
	return duels, err
}

func (r *repository) SaveDuel(ctx context.Context, duel *Duel) error {
	return r.db.WithContext(ctx).Save(duel).Error
}

func create(db *gorm.DB, value any, duplicate error) error {
	if err := db.Create(value).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return duplicate
		}
		return err
	}
	return nil
}

func first[T any](db *gorm.DB, notFound error) (*T, error) {
	var value T
	if err := db.First(&value).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound
		}
		return nil, err
	}
	return &value, nil
}
