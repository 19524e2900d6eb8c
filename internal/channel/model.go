package channel

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/elskow/transcendence/internal/auth"
)

type Status string

const (
	StatusPublic    Status = "public"
	StatusPrivate   Status = "private"
	StatusProtected Status = "protected"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPublic, StatusPrivate, StatusProtected:
		return true
	}
	return false
}

type Channel struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name         string    `gorm:"uniqueIndex;not null"`
	Status       Status    `gorm:"not null"`
	PasswordHash *string
	OwnerID      uuid.UUID  `gorm:"type:uuid;not null"`
	Owner        *auth.User `gorm:"foreignKey:OwnerID"`
	Direct       bool
	Participants []Participant `gorm:"foreignKey:ChannelID"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (Channel) TableName() string {
	return "channels"
}

func (c *Channel) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

func (c *Channel) IsOwner(userID uuid.UUID) bool {
	return c.OwnerID == userID
}

// Participant is a user's membership in a channel. Leaving only sets Left so
// the row and its history survive a rejoin.
type Participant struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey"`
	UserID     uuid.UUID  `gorm:"type:uuid;not null"`
	User       *auth.User `gorm:"foreignKey:UserID"`
	ChannelID  uuid.UUID  `gorm:"type:uuid;not null"`
	Admin      bool
	Authorized bool
	Mute       bool
	MuteEnd    *time.Time
	Ban        bool
	BanEnd     *time.Time
	Left       bool `gorm:"column:has_left"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (Participant) TableName() string {
	return "participants"
}

func (p *Participant) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// IsMuted reports whether the participant is muted at now. Timed mutes are
// never swept; they simply stop applying once MuteEnd has passed.
func (p *Participant) IsMuted(now time.Time) bool {
	return p.Mute || (p.MuteEnd != nil && now.Before(*p.MuteEnd))
}

func (p *Participant) IsBanned(now time.Time) bool {
	return p.Ban || (p.BanEnd != nil && now.Before(*p.BanEnd))
}

func (p *Participant) Active() bool {
	return !p.Left
}

type Message struct {
	ID            uuid.UUID    `gorm:"type:uuid;primaryKey"`
	ChannelID     uuid.UUID    `gorm:"type:uuid;not null"`
	ParticipantID uuid.UUID    `gorm:"type:uuid;not null"`
	Participant   *Participant `gorm:"foreignKey:ParticipantID"`
	Content       string       `gorm:"not null"`
	CreatedAt     time.Time
}

func (Message) TableName() string {
	return "messages"
}

func (m *Message) BeforeCreate(*gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
