package social

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/elskow/transcendence/internal/auth"
)

type mockRepository struct {
	mu      sync.Mutex
	friends []*Friend
	duels   []*Duel
	clock   time.Time
}

func newMockRepository() *mockRepository {
	return &mockRepository{clock: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (r *mockRepository) tick() time.Time {
	r.clock = r.clock.Add(time.Second)
	return r.clock
}

func (r *mockRepository) CreateFriend(_ context.Context, friend *Friend) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, f := range r.friends {
		if f.FriendOwnerID == friend.FriendOwnerID && f.FriendID == friend.FriendID {
			return ErrFriendExists
		}
	}
	if friend.ID == uuid.Nil {
		friend.ID = uuid.New()
	}
	friend.CreatedAt = r.tick()

	stored := *friend
	r.friends = append(r.friends, &stored)
	return nil
}

func (r *mockRepository) GetFriend(_ context.Context, id uuid.UUID) (*Friend, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, f := range r.friends {
		if f.ID == id {
			clone := *f
			return &clone, nil
		}
	}
	return nil, ErrFriendNotFound
}

func (r *mockRepository) FindFriend(_ context.Context, ownerID, friendID uuid.UUID) (*Friend, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, f := range r.friends {
		if f.FriendOwnerID == ownerID && f.FriendID == friendID {
			clone := *f
			return &clone, nil
		}
	}
	return nil, ErrFriendNotFound
}

func (r *mockRepository) ListFriends(_ context.Context, userID uuid.UUID) ([]Friend, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var friends []Friend
	for _, f := range r.friends {
		if f.Involves(userID) {
			friends = append(friends, *f)
		}
	}
	return friends, nil
}

func (r *mockRepository) SaveFriend(_ context.Context, friend *Friend) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, f := range r.friends {
		if f.ID == friend.ID {
			stored := *friend
			r.friends[i] = &stored
			return nil
		}
	}
	return ErrFriendNotFound
}

func (r *mockRepository) DeleteFriend(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, f := range r.friends {
		if f.ID == id {
			r.friends = append(r.friends[:i], r.friends[i+1:]...)
			return nil
		}
	}
	return ErrFriendNotFound
}

func (r *mockRepository) CreateDuel(_ context.Context, duel *Duel) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, d := range r.duels {
		if d.DuelOwnerID == duel.DuelOwnerID && d.OpponentID == duel.OpponentID {
			return ErrDuelExists
		}
	}
	if duel.ID == uuid.Nil {
		duel.ID = uuid.New()
	}
	duel.CreatedAt = r.tick()

	stored := *duel
	r.duels = append(r.duels, &stored)
	return nil
}

func (r *mockRepository) GetDuel(_ context.Context, id uuid.UUID) (*Duel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, d := range r.duels {
		if d.ID == id {
			clone := *d
			return &clone, nil
		}
	}
	return nil, ErrDuelNotFound
}

func (r *mockRepository) FindDuel(_ context.Context, ownerID, opponentID uuid.UUID) (*Duel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, d := range r.duels {
		if d.DuelOwnerID == ownerID && d.OpponentID == opponentID {
			clone := *d
			return &clone, nil
		}
	}
	return nil, ErrDuelNotFound
}

func (r *mockRepository) ListDuels(_ context.Context, userID uuid.UUID) ([]Duel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var duels []Duel
	for _, d := range r.duels {
		if d.DuelOwnerID == userID || d.OpponentID == userID {
			duels = append(duels, *d)
		}
	}
	return duels, nil
}

func (r *mockRepository) SaveDuel(_ context.Context, duel *Duel) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, d := range r.duels {
		if d.ID == duel.ID {
			stored := *duel
			r.duels[i] = &stored
			return nil
		}
	}
	return ErrDuelNotFound
}

type mockUsers map[uuid.UUID]bool

func (m mockUsers) add() uuid.UUID {
	id := uuid.New()
	m[id] = true
	return id
}

func (m mockUsers) GetUserByID(_ context.Context, id uuid.UUID) (*auth.User, error) {
	if !m[id] {
		return nil, auth.ErrUserNotFound
	}
	return &auth.User{ID: id}, nil
}
