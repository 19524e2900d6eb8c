package channel

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/elskow/transcendence/internal/apperr"
)

var (
	ErrChannelNotFound     = apperr.NotFound("channel not found")
	ErrParticipantNotFound = apperr.NotFound("participant not found")
	ErrChannelExists       = apperr.Conflict("channel with that name already exists")
	ErrParticipantExists   = apperr.Conflict("user is already a participant of this channel")
)

// ChannelQuery selects which relations are loaded with a channel.
type ChannelQuery struct {
	IncludeOwner        bool
	IncludeParticipants bool
}

// ChannelFilter narrows ListChannels. A nil MemberID lists every channel;
// otherwise only channels where that user is still an active participant.
type ChannelFilter struct {
	Direct   bool
	MemberID *uuid.UUID
}

type Repository interface {
	// Transaction runs fn against a repository bound to one database
	// transaction; returning an error rolls everything back.
	Transaction(ctx context.Context, fn func(Repository) error) error

	CreateChannel(ctx context.Context, channel *Channel) error
	GetChannel(ctx context.Context, id uuid.UUID, query ChannelQuery) (*Channel, error)
	GetChannelByName(ctx context.Context, name string, query ChannelQuery) (*Channel, error)
	ListChannelsForUser(ctx context.Context, userID uuid.UUID) ([]Channel, error)
	ListChannels(ctx context.Context, filter ChannelFilter) ([]Channel, error)
	SaveChannel(ctx context.Context, channel *Channel) error
	DeleteChannel(ctx context.Context, id uuid.UUID) error

	CreateParticipant(ctx context.Context, participant *Participant) error
	GetParticipant(ctx context.Context, channelID, userID uuid.UUID) (*Participant, error)
	SaveParticipant(ctx context.Context, participant *Participant) error
	SetAuthorizedAll(ctx context.Context, channelID uuid.UUID, authorized bool) error

	CreateMessage(ctx context.Context, message *Message) error
	ListMessages(ctx context.Context, channelID uuid.UUID, limit int) ([]Message, error)
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

func (r *repository) CreateChannel(ctx context.Context, channel *Channel) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(channel).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrChannelExists
		}
		return err
	}
	return nil
}

func (r *repository) GetChannel(ctx context.Context, id uuid.UUID, query ChannelQuery) (*Channel, error) {
	return r.firstChannel(ctx, query, "id = ?", id)
}

func (r *repository) GetChannelByName(ctx context.Context, name string, query ChannelQuery) (*Channel, error) {
	return r.firstChannel(ctx, query, "name = ?", name)
}

func (r *repository) firstChannel(ctx context.Context, query ChannelQuery, cond string, arg any) (*Channel, error) {
	var channel Channel
	err := query.apply(r.db.WithContext(ctx)).Where(cond, arg).First(&channel).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrChannelNotFound
		}
		return nil, err
	}
	return &channel, nil
}

func (q ChannelQuery) apply(db *gorm.DB) *gorm.DB {
	if q.IncludeOwner {
		db = db.Preload("Owner")
	}
	if q.IncludeParticipants {
		db = db.Preload("Participants", func(db *gorm.DB) *gorm.DB {
			return db.Order("participants.created_at")
		}).Preload("Participants.User")
	}
	return db
}

func (r *repository) ListChannelsForUser(ctx context.Context, userID uuid.UUID) ([]Channel, error) {
	var channels []Channel
	err := r.db.WithContext(ctx).
		Joins("JOIN participants ON participants.channel_id = channels.id").
		Where("participants.user_id = ? AND participants.has_left = ?", userID, false).
		Order("channels.name").
		Find(&channels).Error
	return channels, err
}

func (r *repository) ListChannels(ctx context.Context, filter ChannelFilter) ([]Channel, error) {
	db := r.db.WithContext(ctx).Where("channels.direct = ?", filter.Direct)
	if filter.MemberID != nil {
		db = db.Joins("JOIN participants ON participants.channel_id = channels.id").
			Where("participants.user_id = ? AND participants.has_left = ?", *filter.MemberID, false)
	}

	var channels []Channel
	err := db.Order("channels.name").Find(&channels).Error
	return channels, err
}

func (r *repository) SaveChannel(ctx context.Context, channel *Channel) error {
	err := r.db.WithContext(ctx).Omit(clause.Associations).Save(channel).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrChannelExists
	}
	return err
}

// DeleteChannel removes the channel's messages and participants before the
// channel row itself.
func (r *repository) DeleteChannel(ctx context.Context, id uuid.UUID) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("channel_id = ?", id).Delete(&Message{}).Error; err != nil {
		return err
	}
	if err := db.Where("channel_id = ?", id).Delete(&Participant{}).Error; err != nil {
		return err
	}

	res := db.Where("id = ?", id).Delete(&Channel{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrChannelNotFound
	}
	return nil
}

func (r *repository) CreateParticipant(ctx context.Context, participant *Participant) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(participant).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrParticipantExists
		}
		return err
	}
	return nil
}

func (r *repository) GetParticipant(ctx context.Context, channelID, userID uuid.UUID) (*Participant, error) {
	var participant Participant
	err := r.db.WithContext(ctx).
		Where("channel_id = ? AND user_id = ?", channelID, userID).
		First(&participant).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrParticipantNotFound
		}
		return nil, err
	}
	return &participant, nil
}

func (r *repository) SaveParticipant(ctx context.Context, participant *Participant) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(participant).Error
}

func (r *repository) SetAuthorizedAll(ctx context.Context, channelID uuid.UUID, authorized bool) error {
	return r.db.WithContext(ctx).
		Model(&Participant{}).
		Where("channel_id = ?", channelID).
		Update("authorized", authorized).Error
}

func (r *repository) CreateMessage(ctx context.Context, message *Message) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(message).Error
}

// ListMessages returns the newest limit messages, oldest first.
func (r *repository) ListMessages(ctx context.Context, channelID uuid.UUID, limit int) ([]Message, error) {
	var messages []Message
	err := r.db.WithContext(ctx).
		Preload("Participant").
		Where("channel_id = ?", channelID).
		Order("created_at DESC").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, err
	}

	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}
