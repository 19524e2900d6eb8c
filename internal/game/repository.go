package game

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/elskow/transcendence/internal/apperr"
)

var (
	ErrGameNotFound   = apperr.NotFound("game not found")
	ErrPlayerNotFound = apperr.NotFound("player not found")
	ErrPlayerExists   = apperr.Conflict("user is already a player of that game")
)

type Repository interface {
	Transaction(ctx context.Context, fn func(Repository) error) error
	CreateGame(ctx context.Context, game *Game) error
	GetGame(ctx context.Context, id uuid.UUID) (*Game, error)
	ListGames(ctx context.Context, status Status) ([]Game, error)
	SaveGame(ctx context.Context, game *Game) error
	DeleteGame(ctx context.Context, id uuid.UUID) error
	CreatePlayer(ctx context.Context, player *Player) error
	SavePlayer(ctx context.Context, player *Player) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Transaction(ctx context.Context, fn func(Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&repository{db: tx})
	})
}

func (r *repository) CreateGame(ctx context.Context, game *Game) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(game).Error
}

func (r *repository) GetGame(ctx context.Context, id uuid.UUID) (*Game, error) {
	var game Game
	err := r.withPlayers(ctx).Where("id = ?", id).First(&game).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGameNotFound
		}
		return nil, err
	}
	return &game, nil
}

// ListGames lists games newest first; an empty status lists all of them.
func (r *repository) ListGames(ctx context.Context, status Status) ([]Game, error) {
	db := r.withPlayers(ctx)
	if status != "" {
		db = db.Where("status = ?", status)
	}

	var games []Game
	err := db.Order("created_at DESC").Find(&games).Error
	return games, err
}

func (r *repository) withPlayers(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Players", func(db *gorm.DB) *gorm.DB {
			return db.Order("players.created_at")
		}).
		Preload("Players.User")
}

func (r *repository) SaveGame(ctx context.Context, game *Game) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(game).Error
}

func (r *repository) DeleteGame(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&Game{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrGameNotFound
	}
	return nil
}

func (r *repository) CreatePlayer(ctx context.Context, player *Player) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(player).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrPlayerExists
		}
		return err
	}
	return nil
}

func (r *repository) SavePlayer(ctx context.Context, player *Player) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(player).Error
}
