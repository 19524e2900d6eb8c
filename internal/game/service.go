package game

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/elskow/transcendence/internal/apperr"
)

const (
	defaultPointToVictory = 10
	maxPointToVictory     = 100
)

type Service struct {
	repository Repository
	log        *zap.Logger
}

func NewService(repository Repository, log *zap.Logger) *Service {
	return &Service{
		repository: repository,
		log:        log,
	}
}

// CreateGame opens a game with userID as its first player.
func (s *Service) CreateGame(ctx context.Context, userID uuid.UUID, pointToVictory int) (*Game, error) {
	if pointToVictory == 0 {
		pointToVictory = defaultPointToVictory
	}
	if pointToVictory < 1 || pointToVictory > maxPointToVictory {
		return nil, apperr.Newf(apperr.ErrInvalidInput, "pointToVictory must be between 1 and %d", maxPointToVictory)
	}

	game := &Game{
		ID:             uuid.New(),
		PointToVictory: pointToVictory,
		Status:         StatusWaiting,
	}
	err := s.repository.Transaction(ctx, func(repo Repository) error {
		if err := repo.CreateGame(ctx, game); err != nil {
			return err
		}
		return repo.CreatePlayer(ctx, &Player{UserID: userID, GameID: game.ID})
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("game created",
		zap.String("game_id", game.ID.String()),
		zap.String("user_id", userID.String()))

	return s.repository.GetGame(ctx, game.ID)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Game, error) {
	return s.repository.GetGame(ctx, id)
}

func (s *Service) List(ctx context.Context, status Status) ([]Game, error) {
	switch status {
	case "", StatusWaiting, StatusPlaying, StatusFinished:
	default:
		return nil, apperr.InvalidInput("unknown game status")
	}
	return s.repository.ListGames(ctx, status)
}

// Join adds userID as the second player and starts the game.
func (s *Service) Join(ctx context.Context, userID, gameID uuid.UUID) (*Game, error) {
	game, err := s.repository.GetGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if game.Player(userID) != nil {
		return nil, ErrPlayerExists
	}
	if len(game.Players) >= MaxPlayers || game.Status != StatusWaiting {
		return nil, apperr.PolicyViolation("already two players in that game")
	}

	err = s.repository.Transaction(ctx, func(repo Repository) error {
		if err := repo.CreatePlayer(ctx, &Player{UserID: userID, GameID: gameID}); err != nil {
			return err
		}
		if len(game.Players)+1 < MaxPlayers {
			return nil
		}
		game.Status = StatusPlaying
		return repo.SaveGame(ctx, game)
	})
	if err != nil {
		return nil, err
	}

	return s.repository.GetGame(ctx, gameID)
}

// Score adds points to userID's tally. Reaching PointToVictory ends the game
// with that player as the winner.
func (s *Service) Score(ctx context.Context, userID, gameID uuid.UUID, points int) (*Game, error) {
	if points <= 0 {
		return nil, apperr.InvalidInput("points must be positive")
	}

	game, err := s.repository.GetGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	player := game.Player(userID)
	if player == nil {
		return nil, ErrPlayerNotFound
	}
	if game.Status != StatusPlaying {
		return nil, apperr.PolicyViolation("game is not being played")
	}
	if player.Point+points > game.PointToVictory {
		return nil, apperr.Newf(apperr.ErrInvalidInput, "score cannot exceed %d", game.PointToVictory)
	}

	player.Point += points
	err = s.repository.Transaction(ctx, func(repo Repository) error {
		if err := repo.SavePlayer(ctx, player); err != nil {
			return err
		}
		if player.Point < game.PointToVictory {
			return nil
		}
		game.Status = StatusFinished
		game.WinnerID = &userID
		return repo.SaveGame(ctx, game)
	})
	if err != nil {
		return nil, err
	}

	if game.Status == StatusFinished {
		s.log.Info("game finished",
			zap.String("game_id", gameID.String()),
			zap.String("winner_id", userID.String()))
	}
	return game, nil
}

// Delete drops a game that has not started yet. Only its players may do it.
func (s *Service) Delete(ctx context.Context, userID, gameID uuid.UUID) error {
	game, err := s.repository.GetGame(ctx, gameID)
	if err != nil {
		return err
	}
	if game.Player(userID) == nil {
		return apperr.PolicyViolation("only a player can delete the game")
	}
	if game.Status != StatusWaiting {
		return apperr.PolicyViolation("only waiting games can be deleted")
	}
	return s.repository.DeleteGame(ctx, gameID)
}
