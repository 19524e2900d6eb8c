package channel

import (
	"context"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/elskow/transcendence/internal/api"
	"github.com/elskow/transcendence/internal/apperr"
	"github.com/elskow/transcendence/internal/auth"
	"github.com/elskow/transcendence/internal/httpx"
)

type Handler struct {
	engine *Engine
	log    *zap.Logger
}

func NewHandler(engine *Engine, log *zap.Logger) *Handler {
	return &Handler{
		engine: engine,
		log:    log,
	}
}

func (h *Handler) Routes() []api.Route {
	return []api.Route{
		{Pattern: api.ChannelIndex, Handler: h.Index},
		{Pattern: api.ChannelGet, Handler: h.Get},
		{Pattern: api.ChannelCreate, Handler: h.Create},
		{Pattern: api.ChannelChangeOwner, Handler: h.ChangeOwner},
		{Pattern: api.ChannelChangeStatus, Handler: h.ChangeStatus},
		{Pattern: api.ChannelAddAdmin, Handler: h.AddAdmin},
		{Pattern: api.ChannelAddParticipant, Handler: h.AddParticipant},
		{Pattern: api.ChannelMute, Handler: h.Mute},
		{Pattern: api.ChannelBan, Handler: h.Ban},
		{Pattern: api.ChannelAuthorize, Handler: h.Authorize},
		{Pattern: api.ChannelLeave, Handler: h.Leave},
		{Pattern: api.ChannelJoin, Handler: h.Join},
		{Pattern: api.ChannelDirect, Handler: h.OpenDirect},
		{Pattern: api.ChannelAll, Handler: h.All},
		{Pattern: api.ChannelDelete, Handler: h.Delete},
		{Pattern: api.ChannelMessages, Handler: h.Messages},
		{Pattern: api.ChannelPostMessage, Handler: h.PostMessage},
	}
}

type ChannelCreationDto struct {
	Name     string `json:"name"`
	Status   Status `json:"status"`
	Password string `json:"password"`
}

type ChannelUpdateDto struct {
	OwnerID  uuid.UUID `json:"ownerId"`
	Status   Status    `json:"status"`
	Password string    `json:"password"`
}

type ParticipantCreationDto struct {
	ChannelID uuid.UUID `json:"channelId"`
	UserID    uuid.UUID `json:"userId"`
}

type MuteBanDto struct {
	ChannelID uuid.UUID `json:"channelId"`
	UserID    uuid.UUID `json:"userId"`
	Always    bool      `json:"always"`
	Minutes   int       `json:"minutes"`
}

type AuthorizationDto struct {
	ChannelID uuid.UUID `json:"channelId"`
	Password  string    `json:"password"`
}

type DirectDto struct {
	UserID uuid.UUID `json:"userId"`
}

type MessageDto struct {
	Content string `json:"content"`
}

func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	channels, err := h.engine.ListForUser(r.Context(), actor)
	if err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, NewChannelViews(channels, h.engine.Now()))
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.actorAndPathID(w, r)
	if !ok {
		return
	}

	channel, err := h.engine.Get(r.Context(), actor, id)
	h.writeChannel(w, r, channel, err)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	var dto ChannelCreationDto
	if !h.decode(w, r, &dto) {
		return
	}

	channel, err := h.engine.Create(r.Context(), actor, CreateInput(dto))
	if err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, NewChannelView(channel, h.engine.Now()))
}

func (h *Handler) ChangeOwner(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.actorAndPathID(w, r)
	if !ok {
		return
	}

	var dto ChannelUpdateDto
	if !h.decode(w, r, &dto) {
		return
	}
	if dto.OwnerID == uuid.Nil {
		httpx.WriteError(w, r, h.log, apperr.InvalidInput("ownerId is required"))
		return
	}

	channel, err := h.engine.ChangeOwner(r.Context(), actor, id, dto.OwnerID)
	h.writeChannel(w, r, channel, err)
}

func (h *Handler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.actorAndPathID(w, r)
	if !ok {
		return
	}

	var dto ChannelUpdateDto
	if !h.decode(w, r, &dto) {
		return
	}

	channel, err := h.engine.ChangeStatus(r.Context(), actor, id, dto.Status, dto.Password)
	h.writeChannel(w, r, channel, err)
}

func (h *Handler) AddAdmin(w http.ResponseWriter, r *http.Request) {
	h.withParticipantDto(w, r, h.engine.AddAdmin)
}

func (h *Handler) AddParticipant(w http.ResponseWriter, r *http.Request) {
	h.withParticipantDto(w, r, h.engine.AddParticipant)
}

func (h *Handler) Mute(w http.ResponseWriter, r *http.Request) {
	h.withModeration(w, r, h.engine.Mute)
}

func (h *Handler) Ban(w http.ResponseWriter, r *http.Request) {
	h.withModeration(w, r, h.engine.Ban)
}

func (h *Handler) Authorize(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	var dto AuthorizationDto
	if !h.decode(w, r, &dto) {
		return
	}

	participant, err := h.engine.Authorize(r.Context(), actor, dto.ChannelID, dto.Password)
	h.writeParticipant(w, r, participant, err)
}

func (h *Handler) Leave(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.actorAndPathID(w, r)
	if !ok {
		return
	}

	participant, err := h.engine.Leave(r.Context(), actor, id)
	h.writeParticipant(w, r, participant, err)
}

func (h *Handler) Join(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.actorAndPathID(w, r)
	if !ok {
		return
	}

	participant, err := h.engine.Join(r.Context(), actor, id)
	h.writeParticipant(w, r, participant, err)
}

func (h *Handler) OpenDirect(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	var dto DirectDto
	if !h.decode(w, r, &dto) {
		return
	}

	channel, err := h.engine.OpenDirect(r.Context(), actor, dto.UserID)
	h.writeChannel(w, r, channel, err)
}

func (h *Handler) All(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	direct, err := strconv.ParseBool(r.PathValue("direct"))
	if err != nil {
		httpx.WriteError(w, r, h.log, apperr.InvalidInput("direct must be true or false"))
		return
	}

	channels, err := h.engine.ListAll(r.Context(), actor, direct)
	if err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, NewChannelViews(channels, h.engine.Now()))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.actorAndPathID(w, r)
	if !ok {
		return
	}

	if err := h.engine.Delete(r.Context(), actor, id); err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Messages(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.actorAndPathID(w, r)
	if !ok {
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			httpx.WriteError(w, r, h.log, apperr.InvalidInput("limit must be a number"))
			return
		}
		limit = n
	}

	messages, err := h.engine.ListMessages(r.Context(), actor, id, limit)
	if err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, NewMessageViews(messages))
}

func (h *Handler) PostMessage(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.actorAndPathID(w, r)
	if !ok {
		return
	}

	var dto MessageDto
	if !h.decode(w, r, &dto) {
		return
	}

	message, err := h.engine.PostMessage(r.Context(), actor, id, dto.Content)
	if err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, NewMessageViews([]Message{*message})[0])
}

func (h *Handler) withParticipantDto(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, actorID, channelID, userID uuid.UUID) (*Participant, error)) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	var dto ParticipantCreationDto
	if !h.decode(w, r, &dto) {
		return
	}

	participant, err := fn(r.Context(), actor, dto.ChannelID, dto.UserID)
	h.writeParticipant(w, r, participant, err)
}

func (h *Handler) withModeration(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, actorID uuid.UUID, in ModerationInput) (*Participant, error)) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	var dto MuteBanDto
	if !h.decode(w, r, &dto) {
		return
	}

	participant, err := fn(r.Context(), actor, ModerationInput(dto))
	h.writeParticipant(w, r, participant, err)
}

func (h *Handler) actor(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	actor, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		httpx.WriteError(w, r, h.log, err)
		return uuid.Nil, false
	}
	return actor, true
}

func (h *Handler) actorAndPathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, uuid.UUID, bool) {
	actor, ok := h.actor(w, r)
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	id, err := httpx.PathUUID(r, "id")
	if err != nil {
		httpx.WriteError(w, r, h.log, err)
		return uuid.Nil, uuid.Nil, false
	}
	return actor, id, true
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := httpx.DecodeJSON(r, dst); err != nil {
		httpx.WriteError(w, r, h.log, err)
		return false
	}
	return true
}

func (h *Handler) writeChannel(w http.ResponseWriter, r *http.Request, channel *Channel, err error) {
	if err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, NewChannelView(channel, h.engine.Now()))
}

func (h *Handler) writeParticipant(w http.ResponseWriter, r *http.Request, participant *Participant, err error) {
	if err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, NewParticipantView(participant, h.engine.Now()))
}
