package social

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/elskow/transcendence/internal/apperr"
	"github.com/elskow/transcendence/internal/auth"
)

// UserFinder resolves user ids; auth.Repository satisfies it.
type UserFinder interface {
	GetUserByID(ctx context.Context, id uuid.UUID) (*auth.User, error)
}

type Service struct {
	repository Repository
	users      UserFinder
	log        *zap.Logger
}

func NewService(repository Repository, users UserFinder, log *zap.Logger) *Service {
	return &Service{
		repository: repository,
		users:      users,
		log:        log,
	}
}

// RequestFriend asks targetID for friendship. A pending request the other
// way round is accepted instead of creating a second row.
func (s *Service) RequestFriend(ctx context.Context, ownerID, targetID uuid.UUID) (*Friend, error) {
	if err := s.checkPair(ctx, ownerID, targetID); err != nil {
		return nil, err
	}

	if _, err := s.repository.FindFriend(ctx, ownerID, targetID); err == nil {
		return nil, ErrFriendExists
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}

	reverse, err := s.repository.FindFriend(ctx, targetID, ownerID)
	switch {
	case err == nil:
		if reverse.Status != FriendPending {
			return nil, apperr.Conflict("already friends")
		}
		reverse.Status = FriendAccepted
		if err := s.repository.SaveFriend(ctx, reverse); err != nil {
			return nil, err
		}
		return reverse, nil
	case !errors.Is(err, apperr.ErrNotFound):
		return nil, err
	}

	friend := &Friend{
		FriendOwnerID: ownerID,
		FriendID:      targetID,
		Status:        FriendPending,
	}
	if err := s.repository.CreateFriend(ctx, friend); err != nil {
		return nil, err
	}

	s.log.Info("friend requested",
		zap.String("owner_id", ownerID.String()),
		zap.String("friend_id", targetID.String()))
	return friend, nil
}

// AcceptFriend accepts a pending request addressed to userID.
func (s *Service) AcceptFriend(ctx context.Context, userID, requestID uuid.UUID) (*Friend, error) {
	friend, err := s.repository.GetFriend(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if friend.FriendID != userID {
		return nil, apperr.PolicyViolation("only the requested user can accept")
	}
	if friend.Status != FriendPending {
		return nil, apperr.Conflict("friend request is not pending")
	}

	friend.Status = FriendAccepted
	if err := s.repository.SaveFriend(ctx, friend); err != nil {
		return nil, err
	}
	return friend, nil
}

func (s *Service) ListFriends(ctx context.Context, userID uuid.UUID) ([]Friend, error) {
	return s.repository.ListFriends(ctx, userID)
}

// RemoveFriend deletes a request or friendship; either side may do it.
func (s *Service) RemoveFriend(ctx context.Context, userID, requestID uuid.UUID) error {
	friend, err := s.repository.GetFriend(ctx, requestID)
	if err != nil {
		return err
	}
	if !friend.Involves(userID) {
		return apperr.PolicyViolation("not your friendship")
	}
	return s.repository.DeleteFriend(ctx, requestID)
}

// Challenge opens a duel against opponentID. A settled duel between the same
// pair is reopened.
func (s *Service) Challenge(ctx context.Context, ownerID, opponentID uuid.UUID) (*Duel, error) {
	if err := s.checkPair(ctx, ownerID, opponentID); err != nil {
		return nil, err
	}

	existing, err := s.repository.FindDuel(ctx, ownerID, opponentID)
	switch {
	case err == nil:
		if existing.Status == DuelPending {
			return nil, ErrDuelExists
		}
		existing.Status = DuelPending
		if err := s.repository.SaveDuel(ctx, existing); err != nil {
			return nil, err
		}
		return existing, nil
	case !errors.Is(err, apperr.ErrNotFound):
		return nil, err
	}

	duel := &Duel{
		DuelOwnerID: ownerID,
		OpponentID:  opponentID,
		Status:      DuelPending,
	}
	if err := s.repository.CreateDuel(ctx, duel); err != nil {
		return nil, err
	}

	s.log.Info("duel requested",
		zap.String("owner_id", ownerID.String()),
		zap.String("opponent_id", opponentID.String()))
	return duel, nil
}

// RespondDuel lets the challenged user accept or refuse a pending duel.
func (s *Service) RespondDuel(ctx context.Context, userID, duelID uuid.UUID, accept bool) (*Duel, error) {
	duel, err := s.repository.GetDuel(ctx, duelID)
	if err != nil {
		return nil, err
	}
	if duel.OpponentID != userID {
		return nil, apperr.PolicyViolation("only the challenged user can respond")
	}
	if duel.Status != DuelPending {
		return nil, apperr.Conflict("duel is not pending")
	}

	duel.Status = DuelRefused
	if accept {
		duel.Status = DuelAccepted
	}
	if err := s.repository.SaveDuel(ctx, duel); err != nil {
		return nil, err
	}
	return duel, nil
}

func (s *Service) ListDuels(ctx context.Context, userID uuid.UUID) ([]Duel, error) {
	return s.repository.ListDuels(ctx, userID)
}

func (s *Service) checkPair(ctx context.Context, ownerID, targetID uuid.UUID) error {
	if ownerID == targetID {
		return apperr.InvalidInput("cannot target yourself")
	}
	_, err := s.users.GetUserByID(ctx, targetID)
	return err
}
