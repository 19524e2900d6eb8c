package channel

import (
	"time"

	"github.com/google/uuid"

	"github.com/elskow/transcendence/internal/auth"
)

// ChannelView is the response shape of a channel. The password hash is never
// part of it.
type ChannelView struct {
	ID           uuid.UUID         `json:"id"`
	Name         string            `json:"name"`
	Status       Status            `json:"status"`
	Direct       bool              `json:"direct"`
	OwnerID      uuid.UUID         `json:"ownerId"`
	Owner        *auth.UserView    `json:"owner,omitempty"`
	Participants []ParticipantView `json:"participants,omitempty"`
}

type ParticipantView struct {
	ID         uuid.UUID      `json:"id"`
	UserID     uuid.UUID      `json:"userId"`
	User       *auth.UserView `json:"user,omitempty"`
	Admin      bool           `json:"admin"`
	Authorized bool           `json:"authorized"`
	Muted      bool           `json:"muted"`
	MuteEnd    *time.Time     `json:"muteEnd,omitempty"`
	Banned     bool           `json:"banned"`
	BanEnd     *time.Time     `json:"banEnd,omitempty"`
	Left       bool           `json:"left"`
}

type MessageView struct {
	ID            uuid.UUID `json:"id"`
	ChannelID     uuid.UUID `json:"channelId"`
	ParticipantID uuid.UUID `json:"participantId"`
	AuthorID      uuid.UUID `json:"authorId,omitempty"`
	Content       string    `json:"content"`
	CreatedAt     time.Time `json:"createdAt"`
}

func NewChannelView(c *Channel, now time.Time) ChannelView {
	view := ChannelView{
		ID:      c.ID,
		Name:    c.Name,
		Status:  c.Status,
		Direct:  c.Direct,
		OwnerID: c.OwnerID,
	}
	if c.Owner != nil {
		owner := auth.NewUserView(c.Owner)
		view.Owner = &owner
	}
	for i := range c.Participants {
		view.Participants = append(view.Participants, NewParticipantView(&c.Participants[i], now))
	}
	return view
}

func NewChannelViews(channels []Channel, now time.Time) []ChannelView {
	views := make([]ChannelView, 0, len(channels))
	for i := range channels {
		views = append(views, NewChannelView(&channels[i], now))
	}
	return views
}

// NewParticipantView resolves lazy mute and ban expiry against now.
func NewParticipantView(p *Participant, now time.Time) ParticipantView {
	view := ParticipantView{
		ID:         p.ID,
		UserID:     p.UserID,
		Admin:      p.Admin,
		Authorized: p.Authorized,
		Muted:      p.IsMuted(now),
		Banned:     p.IsBanned(now),
		Left:       p.Left,
	}
	if view.Muted {
		view.MuteEnd = p.MuteEnd
	}
	if view.Banned {
		view.BanEnd = p.BanEnd
	}
	if p.User != nil {
		user := auth.NewUserView(p.User)
		view.User = &user
	}
	return view
}

func NewMessageViews(messages []Message) []MessageView {
	views := make([]MessageView, 0, len(messages))
	for _, m := range messages {
		view := MessageView{
			ID:            m.ID,
			ChannelID:     m.ChannelID,
			ParticipantID: m.ParticipantID,
			Content:       m.Content,
			CreatedAt:     m.CreatedAt,
		}
		if m.Participant != nil {
			view.AuthorID = m.Participant.UserID
		}
		views = append(views, view)
	}
	return views
}
