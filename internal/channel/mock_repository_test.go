package channel

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/elskow/transcendence/internal/auth"
)

type mockRepository struct {
	mu           sync.Mutex
	channels     map[uuid.UUID]*Channel
	participants []*Participant
	messages     []*Message
	clock        time.Time
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		channels: make(map[uuid.UUID]*Channel),
		clock:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// tick keeps CreatedAt strictly increasing so ordering is deterministic.
func (r *mockRepository) tick() time.Time {
	r.clock = r.clock.Add(time.Second)
	return r.clock
}

func (r *mockRepository) Transaction(_ context.Context, fn func(Repository) error) error {
	return fn(r)
}

func (r *mockRepository) CreateChannel(_ context.Context, channel *Channel) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, c := range r.channels {
		if c.Name == channel.Name {
			return ErrChannelExists
		}
	}
	if channel.ID == uuid.Nil {
		channel.ID = uuid.New()
	}
	channel.CreatedAt = r.tick()

	stored := *channel
	stored.Owner = nil
	stored.Participants = nil
	r.channels[channel.ID] = &stored
	return nil
}

func (r *mockRepository) GetChannel(_ context.Context, id uuid.UUID, query ChannelQuery) (*Channel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.channels[id]
	if !ok {
		return nil, ErrChannelNotFound
	}
	return r.hydrate(c, query), nil
}

func (r *mockRepository) GetChannelByName(_ context.Context, name string, query ChannelQuery) (*Channel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, c := range r.channels {
		if c.Name == name {
			return r.hydrate(c, query), nil
		}
	}
	return nil, ErrChannelNotFound
}

func (r *mockRepository) hydrate(c *Channel, query ChannelQuery) *Channel {
	clone := *c
	if query.IncludeParticipants {
		for _, p := range r.participants {
			if p.ChannelID == c.ID {
				clone.Participants = append(clone.Participants, *p)
			}
		}
	}
	return &clone
}

func (r *mockRepository) ListChannelsForUser(_ context.Context, userID uuid.UUID) ([]Channel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var channels []Channel
	for _, p := range r.participants {
		if p.UserID == userID && !p.Left {
			channels = append(channels, *r.channels[p.ChannelID])
		}
	}
	sortByName(channels)
	return channels, nil
}

func (r *mockRepository) ListChannels(_ context.Context, filter ChannelFilter) ([]Channel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var channels []Channel
	for _, c := range r.channels {
		if c.Direct != filter.Direct {
			continue
		}
		if filter.MemberID != nil {
			if p := r.find(c.ID, *filter.MemberID); p == nil || p.Left {
				continue
			}
		}
		channels = append(channels, *c)
	}
	sortByName(channels)
	return channels, nil
}

func sortByName(channels []Channel) {
	sort.Slice(channels, func(i, j int) bool { return channels[i].Name < channels[j].Name })
}

func (r *mockRepository) SaveChannel(_ context.Context, channel *Channel) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *channel
	stored.Owner = nil
	stored.Participants = nil
	r.channels[channel.ID] = &stored
	return nil
}

func (r *mockRepository) DeleteChannel(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.channels[id]; !ok {
		return ErrChannelNotFound
	}

	var messages []*Message
	for _, m := range r.messages {
		if m.ChannelID != id {
			messages = append(messages, m)
		}
	}
	var participants []*Participant
	for _, p := range r.participants {
		if p.ChannelID != id {
			participants = append(participants, p)
		}
	}
	r.messages = messages
	r.participants = participants
	delete(r.channels, id)
	return nil
}

func (r *mockRepository) CreateParticipant(_ context.Context, participant *Participant) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.find(participant.ChannelID, participant.UserID) != nil {
		return ErrParticipantExists
	}
	if participant.ID == uuid.Nil {
		participant.ID = uuid.New()
	}
	participant.CreatedAt = r.tick()

	stored := *participant
	r.participants = append(r.participants, &stored)
	return nil
}

func (r *mockRepository) GetParticipant(_ context.Context, channelID, userID uuid.UUID) (*Participant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p := r.find(channelID, userID)
	if p == nil {
		return nil, ErrParticipantNotFound
	}
	clone := *p
	return &clone, nil
}

// find expects r.mu to be held.
func (r *mockRepository) find(channelID, userID uuid.UUID) *Participant {
	for _, p := range r.participants {
		if p.ChannelID == channelID && p.UserID == userID {
			return p
		}
	}
	return nil
}

func (r *mockRepository) SaveParticipant(_ context.Context, participant *Participant) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, p := range r.participants {
		if p.ID == participant.ID {
			stored := *participant
			stored.User = nil
			r.participants[i] = &stored
			return nil
		}
	}
	return ErrParticipantNotFound
}

func (r *mockRepository) SetAuthorizedAll(_ context.Context, channelID uuid.UUID, authorized bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range r.participants {
		if p.ChannelID == channelID {
			p.Authorized = authorized
		}
	}
	return nil
}

func (r *mockRepository) CreateMessage(_ context.Context, message *Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if message.ID == uuid.Nil {
		message.ID = uuid.New()
	}
	message.CreatedAt = r.tick()

	stored := *message
	r.messages = append(r.messages, &stored)
	return nil
}

func (r *mockRepository) ListMessages(_ context.Context, channelID uuid.UUID, limit int) ([]Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var messages []Message
	for _, m := range r.messages {
		if m.ChannelID == channelID {
			messages = append(messages, *m)
		}
	}
	if len(messages) > limit {
		messages = messages[len(messages)-limit:]
	}
	return messages, nil
}

// participantRows counts stored rows for a (channel, user) pair.
func (r *mockRepository) participantRows(channelID, userID uuid.UUID) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, p := range r.participants {
		if p.ChannelID == channelID && p.UserID == userID {
			n++
		}
	}
	return n
}

type mockUsers struct {
	users map[uuid.UUID]*auth.User
}

func newMockUsers() *mockUsers {
	return &mockUsers{users: make(map[uuid.UUID]*auth.User)}
}

func (m *mockUsers) add(name string) uuid.UUID {
	id := uuid.New()
	m.users[id] = &auth.User{ID: id, Name: name, Email: name + "@example.com"}
	return id
}

func (m *mockUsers) GetUserByID(_ context.Context, id uuid.UUID) (*auth.User, error) {
	user, ok := m.users[id]
	if !ok {
		return nil, auth.ErrUserNotFound
	}
	clone := *user
	return &clone, nil
}
