package channel

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/elskow/transcendence/internal/apperr"
	"github.com/elskow/transcendence/internal/auth"
)

const (
	maxNameLength       = 64
	maxMessageLength    = 2000
	defaultMessageLimit = 50
	maxMessageLimit     = 200

	// a timed sanction lasts at most a year; use always for longer
	maxModerationMinutes = 366 * 24 * 60
)

// UserFinder resolves user ids; auth.Repository satisfies it.
type UserFinder interface {
	GetUserByID(ctx context.Context, id uuid.UUID) (*auth.User, error)
}

// Engine owns every channel and participant mutation and gates each one on
// the acting user's membership and role.
type Engine struct {
	repository Repository
	users      UserFinder
	log        *zap.Logger
	now        func() time.Time
	hashCost   int
}

func NewEngine(repository Repository, users UserFinder, log *zap.Logger) *Engine {
	return &Engine{
		repository: repository,
		users:      users,
		log:        log,
		now:        time.Now,
		hashCost:   bcrypt.DefaultCost,
	}
}

// Now is the engine's clock; views use it to resolve lazy expiry.
func (e *Engine) Now() time.Time {
	return e.now()
}

type CreateInput struct {
	Name     string
	Status   Status
	Password string
}

// ModerationInput describes a mute or a ban. Always makes it permanent;
// otherwise it lasts Minutes.
type ModerationInput struct {
	ChannelID uuid.UUID
	UserID    uuid.UUID
	Always    bool
	Minutes   int
}

func (e *Engine) Create(ctx context.Context, actorID uuid.UUID, in CreateInput) (*Channel, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" || len(name) > maxNameLength {
		return nil, apperr.Newf(apperr.ErrInvalidInput, "channel name must be between 1 and %d characters", maxNameLength)
	}

	status := in.Status
	if status == "" {
		status = StatusPublic
	}
	if !status.Valid() {
		return nil, apperr.InvalidInput("unknown channel status")
	}

	if _, err := e.users.GetUserByID(ctx, actorID); err != nil {
		return nil, err
	}

	channel := &Channel{
		ID:      uuid.New(),
		Name:    name,
		Status:  status,
		OwnerID: actorID,
	}
	if status == StatusProtected {
		hash, err := e.hashPassword(in.Password)
		if err != nil {
			return nil, err
		}
		channel.PasswordHash = &hash
	}

	err := e.repository.Transaction(ctx, func(repo Repository) error {
		if err := repo.CreateChannel(ctx, channel); err != nil {
			return err
		}
		return repo.CreateParticipant(ctx, &Participant{
			UserID:     actorID,
			ChannelID:  channel.ID,
			Admin:      true,
			Authorized: true,
		})
	})
	if err != nil {
		return nil, err
	}

	e.log.Info("channel created",
		zap.String("channel_id", channel.ID.String()),
		zap.String("owner_id", actorID.String()),
		zap.String("status", string(status)))

	return e.repository.GetChannel(ctx, channel.ID, ChannelQuery{IncludeOwner: true, IncludeParticipants: true})
}

// Get returns a channel with its owner and participants. Non-public channels
// are only visible to their active participants.
func (e *Engine) Get(ctx context.Context, actorID, channelID uuid.UUID) (*Channel, error) {
	channel, err := e.repository.GetChannel(ctx, channelID, ChannelQuery{IncludeOwner: true, IncludeParticipants: true})
	if err != nil {
		return nil, err
	}
	if channel.Status != StatusPublic || channel.Direct {
		if _, err := e.requireActive(ctx, channelID, actorID); err != nil {
			return nil, err
		}
	}
	return channel, nil
}

func (e *Engine) ListForUser(ctx context.Context, actorID uuid.UUID) ([]Channel, error) {
	return e.repository.ListChannelsForUser(ctx, actorID)
}

// ListAll lists channels by their direct flag. Direct channels are limited
// to those the actor is part of.
func (e *Engine) ListAll(ctx context.Context, actorID uuid.UUID, direct bool) ([]Channel, error) {
	filter := ChannelFilter{Direct: direct}
	if direct {
		filter.MemberID = &actorID
	}
	return e.repository.ListChannels(ctx, filter)
}

func (e *Engine) ChangeOwner(ctx context.Context, actorID, channelID, newOwnerID uuid.UUID) (*Channel, error) {
	channel, err := e.requireOwner(ctx, channelID, actorID)
	if err != nil {
		return nil, err
	}
	if newOwnerID == channel.OwnerID {
		return nil, apperr.Conflict("user is already the owner of this channel")
	}

	target, err := e.requireActive(ctx, channelID, newOwnerID)
	if err != nil {
		return nil, err
	}

	err = e.repository.Transaction(ctx, func(repo Repository) error {
		channel.OwnerID = newOwnerID
		if err := repo.SaveChannel(ctx, channel); err != nil {
			return err
		}
		// an owner carries no mute or ban
		target.Admin = true
		target.Authorized = true
		target.Mute, target.MuteEnd = false, nil
		target.Ban, target.BanEnd = false, nil
		return repo.SaveParticipant(ctx, target)
	})
	if err != nil {
		return nil, err
	}

	e.log.Info("channel ownership transferred",
		zap.String("channel_id", channelID.String()),
		zap.String("from", actorID.String()),
		zap.String("to", newOwnerID.String()))

	return channel, nil
}

// ChangeStatus moves a channel between public, private and protected. Going
// protected revokes every participant's authorization but the owner's.
func (e *Engine) ChangeStatus(ctx context.Context, actorID, channelID uuid.UUID, status Status, password string) (*Channel, error) {
	channel, err := e.requireOwner(ctx, channelID, actorID)
	if err != nil {
		return nil, err
	}
	if channel.Direct {
		return nil, apperr.PolicyViolation("direct channels cannot change status")
	}
	if !status.Valid() {
		return nil, apperr.InvalidInput("unknown channel status")
	}

	var hash *string
	if status == StatusProtected {
		h, err := e.hashPassword(password)
		if err != nil {
			return nil, err
		}
		hash = &h
	}

	err = e.repository.Transaction(ctx, func(repo Repository) error {
		channel.Status = status
		channel.PasswordHash = hash
		if err := repo.SaveChannel(ctx, channel); err != nil {
			return err
		}

		if err := repo.SetAuthorizedAll(ctx, channelID, status != StatusProtected); err != nil {
			return err
		}
		if status != StatusProtected {
			return nil
		}

		owner, err := repo.GetParticipant(ctx, channelID, actorID)
		if err != nil {
			return err
		}
		owner.Authorized = true
		return repo.SaveParticipant(ctx, owner)
	})
	if err != nil {
		return nil, err
	}

	e.log.Info("channel status changed",
		zap.String("channel_id", channelID.String()),
		zap.String("status", string(status)))

	return channel, nil
}

// Authorize checks password against a protected channel and marks the actor
// as authorized on success.
func (e *Engine) Authorize(ctx context.Context, actorID, channelID uuid.UUID, password string) (*Participant, error) {
	channel, err := e.repository.GetChannel(ctx, channelID, ChannelQuery{})
	if err != nil {
		return nil, err
	}
	participant, err := e.requireActive(ctx, channelID, actorID)
	if err != nil {
		return nil, err
	}

	if channel.Status != StatusProtected || channel.PasswordHash == nil {
		return nil, apperr.PolicyViolation("channel is not protected")
	}
	if bcrypt.CompareHashAndPassword([]byte(*channel.PasswordHash), []byte(password)) != nil {
		return nil, apperr.BadCredential("wrong channel password")
	}
	if participant.Authorized {
		return nil, apperr.Conflict("already authorized")
	}

	participant.Authorized = true
	if err := e.repository.SaveParticipant(ctx, participant); err != nil {
		return nil, err
	}
	return participant, nil
}

// AddParticipant adds userID to the channel, or brings back the same row if
// the user had left.
func (e *Engine) AddParticipant(ctx context.Context, actorID, channelID, userID uuid.UUID) (*Participant, error) {
	channel, err := e.repository.GetChannel(ctx, channelID, ChannelQuery{})
	if err != nil {
		return nil, err
	}
	if _, err := e.requireAdmin(ctx, channelID, actorID); err != nil {
		return nil, err
	}
	if channel.Direct {
		return nil, apperr.PolicyViolation("cannot add participants to a direct channel")
	}
	if _, err := e.users.GetUserByID(ctx, userID); err != nil {
		return nil, err
	}

	existing, err := e.repository.GetParticipant(ctx, channelID, userID)
	switch {
	case err == nil:
		if existing.Active() {
			return nil, ErrParticipantExists
		}
		existing.Left = false
		if err := e.repository.SaveParticipant(ctx, existing); err != nil {
			return nil, err
		}
		return existing, nil
	case !errors.Is(err, apperr.ErrNotFound):
		return nil, err
	}

	participant := &Participant{
		UserID:     userID,
		ChannelID:  channelID,
		Authorized: channel.Status != StatusProtected,
	}
	if err := e.repository.CreateParticipant(ctx, participant); err != nil {
		return nil, err
	}
	return participant, nil
}

func (e *Engine) AddAdmin(ctx context.Context, actorID, channelID, userID uuid.UUID) (*Participant, error) {
	if _, err := e.requireAdmin(ctx, channelID, actorID); err != nil {
		return nil, err
	}
	target, err := e.requireActive(ctx, channelID, userID)
	if err != nil {
		return nil, err
	}
	if target.Admin {
		return nil, apperr.Conflict("user is already an admin of this channel")
	}

	target.Admin = true
	if err := e.repository.SaveParticipant(ctx, target); err != nil {
		return nil, err
	}
	return target, nil
}

func (e *Engine) Mute(ctx context.Context, actorID uuid.UUID, in ModerationInput) (*Participant, error) {
	return e.moderate(ctx, actorID, in, func(p *Participant, flag bool, end *time.Time) {
		p.Mute = flag
		p.MuteEnd = end
	})
}

func (e *Engine) Ban(ctx context.Context, actorID uuid.UUID, in ModerationInput) (*Participant, error) {
	return e.moderate(ctx, actorID, in, func(p *Participant, flag bool, end *time.Time) {
		p.Ban = flag
		p.BanEnd = end
	})
}

func (e *Engine) moderate(ctx context.Context, actorID uuid.UUID, in ModerationInput, apply func(*Participant, bool, *time.Time)) (*Participant, error) {
	channel, err := e.repository.GetChannel(ctx, in.ChannelID, ChannelQuery{})
	if err != nil {
		return nil, err
	}
	if _, err := e.requireAdmin(ctx, in.ChannelID, actorID); err != nil {
		return nil, err
	}
	target, err := e.requireActive(ctx, in.ChannelID, in.UserID)
	if err != nil {
		return nil, err
	}
	if channel.IsOwner(in.UserID) {
		return nil, apperr.PolicyViolation("the channel owner cannot be moderated")
	}

	switch {
	case in.Always:
		apply(target, true, nil)
	case in.Minutes > maxModerationMinutes:
		return nil, apperr.Newf(apperr.ErrInvalidInput, "minutes must not exceed %d", maxModerationMinutes)
	case in.Minutes > 0:
		end := e.now().Add(time.Duration(in.Minutes) * time.Minute)
		apply(target, false, &end)
	default:
		return nil, apperr.InvalidInput("minutes must be positive unless always is set")
	}

	if err := e.repository.SaveParticipant(ctx, target); err != nil {
		return nil, err
	}
	return target, nil
}

func (e *Engine) Leave(ctx context.Context, actorID, channelID uuid.UUID) (*Participant, error) {
	channel, err := e.repository.GetChannel(ctx, channelID, ChannelQuery{})
	if err != nil {
		return nil, err
	}
	participant, err := e.requireActive(ctx, channelID, actorID)
	if err != nil {
		return nil, err
	}
	if channel.IsOwner(actorID) {
		return nil, apperr.PolicyViolation("the owner must transfer ownership before leaving")
	}

	participant.Left = true
	if err := e.repository.SaveParticipant(ctx, participant); err != nil {
		return nil, err
	}
	return participant, nil
}

// Join lets the actor enter a public or protected channel on their own.
// Protected channels still require Authorize afterwards.
func (e *Engine) Join(ctx context.Context, actorID, channelID uuid.UUID) (*Participant, error) {
	channel, err := e.repository.GetChannel(ctx, channelID, ChannelQuery{})
	if err != nil {
		return nil, err
	}
	if channel.Direct || channel.Status == StatusPrivate {
		return nil, apperr.PolicyViolation("channel is not open to join")
	}

	existing, err := e.repository.GetParticipant(ctx, channelID, actorID)
	switch {
	case err == nil:
		if existing.IsBanned(e.now()) {
			return nil, apperr.PolicyViolation("you are banned from this channel")
		}
		if existing.Active() {
			return nil, ErrParticipantExists
		}
		existing.Left = false
		existing.Authorized = channel.Status != StatusProtected
		if err := e.repository.SaveParticipant(ctx, existing); err != nil {
			return nil, err
		}
		return existing, nil
	case !errors.Is(err, apperr.ErrNotFound):
		return nil, err
	}

	participant := &Participant{
		UserID:     actorID,
		ChannelID:  channelID,
		Authorized: channel.Status != StatusProtected,
	}
	if err := e.repository.CreateParticipant(ctx, participant); err != nil {
		return nil, err
	}
	return participant, nil
}

// DirectName is the deterministic name of the direct channel between a and b.
func DirectName(a, b uuid.UUID) string {
	first, second := a.String(), b.String()
	if second < first {
		first, second = second, first
	}
	return fmt.Sprintf("dm:%s:%s", first, second)
}

// OpenDirect returns the direct channel between the actor and userID,
// creating it on first use.
func (e *Engine) OpenDirect(ctx context.Context, actorID, userID uuid.UUID) (*Channel, error) {
	if actorID == userID {
		return nil, apperr.InvalidInput("cannot open a direct channel with yourself")
	}
	if _, err := e.users.GetUserByID(ctx, userID); err != nil {
		return nil, err
	}

	name := DirectName(actorID, userID)
	query := ChannelQuery{IncludeParticipants: true}

	existing, err := e.repository.GetChannelByName(ctx, name, query)
	switch {
	case err == nil:
		return e.rejoinDirect(ctx, existing, actorID)
	case !errors.Is(err, apperr.ErrNotFound):
		return nil, err
	}

	channel := &Channel{
		ID:      uuid.New(),
		Name:    name,
		Status:  StatusPrivate,
		OwnerID: actorID,
		Direct:  true,
	}
	err = e.repository.Transaction(ctx, func(repo Repository) error {
		if err := repo.CreateChannel(ctx, channel); err != nil {
			return err
		}
		for _, id := range []uuid.UUID{actorID, userID} {
			if err := repo.CreateParticipant(ctx, &Participant{
				UserID:     id,
				ChannelID:  channel.ID,
				Admin:      true,
				Authorized: true,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if errors.Is(err, ErrChannelExists) {
		// opened concurrently by the other side
		return e.repository.GetChannelByName(ctx, name, query)
	}
	if err != nil {
		return nil, err
	}

	return e.repository.GetChannel(ctx, channel.ID, query)
}

func (e *Engine) rejoinDirect(ctx context.Context, channel *Channel, actorID uuid.UUID) (*Channel, error) {
	for i := range channel.Participants {
		p := &channel.Participants[i]
		if p.UserID != actorID || p.Active() {
			continue
		}
		p.Left = false
		if err := e.repository.SaveParticipant(ctx, p); err != nil {
			return nil, err
		}
	}
	return channel, nil
}

func (e *Engine) Delete(ctx context.Context, actorID, channelID uuid.UUID) error {
	if _, err := e.requireOwner(ctx, channelID, actorID); err != nil {
		return err
	}

	err := e.repository.Transaction(ctx, func(repo Repository) error {
		return repo.DeleteChannel(ctx, channelID)
	})
	if err != nil {
		return err
	}

	e.log.Info("channel deleted", zap.String("channel_id", channelID.String()))
	return nil
}

// PostMessage stores a message from an active, authorized participant that is
// neither muted nor banned at the time of posting.
func (e *Engine) PostMessage(ctx context.Context, actorID, channelID uuid.UUID, content string) (*Message, error) {
	content = strings.TrimSpace(content)
	if content == "" || len(content) > maxMessageLength {
		return nil, apperr.Newf(apperr.ErrInvalidInput, "message must be between 1 and %d characters", maxMessageLength)
	}

	participant, err := e.requireReader(ctx, channelID, actorID)
	if err != nil {
		return nil, err
	}
	if participant.IsMuted(e.now()) {
		return nil, apperr.PolicyViolation("you are muted in this channel")
	}

	message := &Message{
		ChannelID:     channelID,
		ParticipantID: participant.ID,
		Participant:   participant,
		Content:       content,
	}
	if err := e.repository.CreateMessage(ctx, message); err != nil {
		return nil, err
	}
	return message, nil
}

func (e *Engine) ListMessages(ctx context.Context, actorID, channelID uuid.UUID, limit int) ([]Message, error) {
	if _, err := e.requireReader(ctx, channelID, actorID); err != nil {
		return nil, err
	}

	switch {
	case limit <= 0:
		limit = defaultMessageLimit
	case limit > maxMessageLimit:
		limit = maxMessageLimit
	}
	return e.repository.ListMessages(ctx, channelID, limit)
}

func (e *Engine) requireReader(ctx context.Context, channelID, userID uuid.UUID) (*Participant, error) {
	if _, err := e.repository.GetChannel(ctx, channelID, ChannelQuery{}); err != nil {
		return nil, err
	}
	participant, err := e.requireActive(ctx, channelID, userID)
	if err != nil {
		return nil, err
	}
	if !participant.Authorized {
		return nil, apperr.PolicyViolation("channel password required")
	}
	if participant.IsBanned(e.now()) {
		return nil, apperr.PolicyViolation("you are banned from this channel")
	}
	return participant, nil
}

func (e *Engine) requireActive(ctx context.Context, channelID, userID uuid.UUID) (*Participant, error) {
	participant, err := e.repository.GetParticipant(ctx, channelID, userID)
	if err != nil {
		return nil, err
	}
	if !participant.Active() {
		return nil, ErrParticipantNotFound
	}
	return participant, nil
}

func (e *Engine) requireAdmin(ctx context.Context, channelID, userID uuid.UUID) (*Participant, error) {
	participant, err := e.requireActive(ctx, channelID, userID)
	if err != nil {
		return nil, err
	}
	if !participant.Admin {
		return nil, apperr.PolicyViolation("admin rights required")
	}
	if participant.IsBanned(e.now()) {
		return nil, apperr.PolicyViolation("you are banned from this channel")
	}
	return participant, nil
}

func (e *Engine) requireOwner(ctx context.Context, channelID, userID uuid.UUID) (*Channel, error) {
	channel, err := e.repository.GetChannel(ctx, channelID, ChannelQuery{})
	if err != nil {
		return nil, err
	}
	if !channel.IsOwner(userID) {
		return nil, apperr.PolicyViolation("only the channel owner can do this")
	}
	return channel, nil
}

func (e *Engine) hashPassword(password string) (string, error) {
	if password == "" {
		return "", apperr.InvalidInput("a protected channel needs a password")
	}
	if len(password) > 72 {
		return "", apperr.InvalidInput("channel password is too long")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), e.hashCost)
	if err != nil {
		return "", fmt.Errorf("hash channel password: %w", err)
	}
	return string(hash), nil
}
