package game

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/elskow/transcendence/internal/auth"
)

type Status string

const (
	StatusWaiting  Status = "waiting"
	StatusPlaying  Status = "playing"
	StatusFinished Status = "finished"
)

// MaxPlayers is the size of a full game.
const MaxPlayers = 2

type Game struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey"`
	PointToVictory int        `gorm:"not null"`
	Status         Status     `gorm:"not null"`
	WinnerID       *uuid.UUID `gorm:"type:uuid"`
	Players        []Player   `gorm:"foreignKey:GameID"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (Game) TableName() string {
	return "games"
}

func (g *Game) BeforeCreate(*gorm.DB) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	return nil
}

func (g *Game) Player(userID uuid.UUID) *Player {
	for i := range g.Players {
		if g.Players[i].UserID == userID {
			return &g.Players[i]
		}
	}
	return nil
}

type Player struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID  `gorm:"type:uuid;not null"`
	User      *auth.User `gorm:"foreignKey:UserID"`
	GameID    uuid.UUID  `gorm:"type:uuid;not null"`
	Point     int
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Player) TableName() string {
	return "players"
}

func (p *Player) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

type GameView struct {
	ID             uuid.UUID    `json:"id"`
	PointToVictory int          `json:"pointToVictory"`
	Status         Status       `json:"status"`
	WinnerID       *uuid.UUID   `json:"winnerId,omitempty"`
	Players        []PlayerView `json:"players"`
}

type PlayerView struct {
	ID     uuid.UUID      `json:"id"`
	UserID uuid.UUID      `json:"userId"`
	User   *auth.UserView `json:"user,omitempty"`
	Point  int            `json:"point"`
}

func NewGameView(g *Game) GameView {
	view := GameView{
		ID:             g.ID,
		PointToVictory: g.PointToVictory,
		Status:         g.Status,
		WinnerID:       g.WinnerID,
		Players:        make([]PlayerView, 0, len(g.Players)),
	}
	for _, p := range g.Players {
		pv := PlayerView{ID: p.ID, UserID: p.UserID, Point: p.Point}
		if p.User != nil {
			user := auth.NewUserView(p.User)
			pv.User = &user
		}
		view.Players = append(view.Players, pv)
	}
	return view
}

func NewGameViews(games []Game) []GameView {
	views := make([]GameView, 0, len(games))
	for i := range games {
		views = append(views, NewGameView(&games[i]))
	}
	return views
}
