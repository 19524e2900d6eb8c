package social

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type FriendStatus string

const (
	FriendPending  FriendStatus = "pending"
	FriendAccepted FriendStatus = "accepted"
)

type DuelStatus string

const (
	DuelPending  DuelStatus = "pending"
	DuelAccepted DuelStatus = "accepted"
	DuelRefused  DuelStatus = "refused"
)

// Friend is a friendship request from FriendOwnerID to FriendID.
type Friend struct {
	ID            uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	FriendOwnerID uuid.UUID    `gorm:"type:uuid;not null" json:"friendOwnerId"`
	FriendID      uuid.UUID    `gorm:"type:uuid;not null" json:"friendId"`
	Status        FriendStatus `gorm:"not null" json:"status"`
	CreatedAt     time.Time    `json:"createdAt"`
	UpdatedAt     time.Time    `json:"-"`
}

func (Friend) TableName() string {
	return "friends"
}

func (f *Friend) BeforeCreate(*gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}

func (f *Friend) Involves(userID uuid.UUID) bool {
	return f.FriendOwnerID == userID || f.FriendID == userID
}

// Duel is a challenge from DuelOwnerID to OpponentID.
type Duel struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	DuelOwnerID uuid.UUID  `gorm:"type:uuid;not null" json:"duelOwnerId"`
	OpponentID  uuid.UUID  `gorm:"column:duel_id;type:uuid;not null" json:"opponentId"`
	Status      DuelStatus `gorm:"not null" json:"status"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"-"`
}

func (Duel) TableName() string {
	return "duels"
}

func (d *Duel) BeforeCreate(*gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}
