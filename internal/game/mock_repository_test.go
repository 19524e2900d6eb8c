package game

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

type mockRepository struct {
	mu      sync.Mutex
	games   map[uuid.UUID]*Game
	players []*Player
	clock   time.Time
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		games: make(map[uuid.UUID]*Game),
		clock: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (r *mockRepository) Transaction(_ context.Context, fn func(Repository) error) error {
	return fn(r)
}

func (r *mockRepository) CreateGame(_ context.Context, game *Game) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if game.ID == uuid.Nil {
		game.ID = uuid.New()
	}
	r.clock = r.clock.Add(time.Second)
	game.CreatedAt = r.clock

	stored := *game
	stored.Players = nil
	r.games[game.ID] = &stored
	return nil
}

func (r *mockRepository) GetGame(_ context.Context, id uuid.UUID) (*Game, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	g, ok := r.games[id]
	if !ok {
		return nil, ErrGameNotFound
	}
	return r.hydrate(g), nil
}

func (r *mockRepository) hydrate(g *Game) *Game {
	clone := *g
	clone.Players = nil
	for _, p := range r.players {
		if p.GameID == g.ID {
			clone.Players = append(clone.Players, *p)
		}
	}
	return &clone
}

func (r *mockRepository) ListGames(_ context.Context, status Status) ([]Game, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var games []Game
	for _, g := range r.games {
		if status == "" || g.Status == status {
			games = append(games, *r.hydrate(g))
		}
	}
	sort.Slice(games, func(i, j int) bool { return games[i].CreatedAt.After(games[j].CreatedAt) })
	return games, nil
}

func (r *mockRepository) SaveGame(_ context.Context, game *Game) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *game
	stored.Players = nil
	r.games[game.ID] = &stored
	return nil
}

func (r *mockRepository) DeleteGame(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.games[id]; !ok {
		return ErrGameNotFound
	}
	delete(r.games, id)

	var players []*Player
	for _, p := range r.players {
		if p.GameID != id {
			players = append(players, p)
		}
	}
	r.players = players
	return nil
}

func (r *mockRepository) CreatePlayer(_ context.Context, player *Player) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range r.players {
		if p.GameID == player.GameID && p.UserID == player.UserID {
			return ErrPlayerExists
		}
	}
	if player.ID == uuid.Nil {
		player.ID = uuid.New()
	}

	stored := *player
	r.players = append(r.players, &stored)
	return nil
}

func (r *mockRepository) SavePlayer(_ context.Context, player *Player) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, p := range r.players {
		if p.ID == player.ID {
			stored := *player
			r.players[i] = &stored
			return nil
		}
	}
	return ErrPlayerNotFound
}
