package social

import (
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/elskow/transcendence/internal/api"
	"github.com/elskow/transcendence/internal/apperr"
	"github.com/elskow/transcendence/internal/auth"
	"github.com/elskow/transcendence/internal/httpx"
)

type Handler struct {
	service *Service
	log     *zap.Logger
}

func NewHandler(service *Service, log *zap.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log,
	}
}

func (h *Handler) Routes() []api.Route {
	return []api.Route{
		{Pattern: api.FriendRequest, Handler: h.RequestFriend},
		{Pattern: api.FriendAccept, Handler: h.AcceptFriend},
		{Pattern: api.FriendList, Handler: h.ListFriends},
		{Pattern: api.FriendRemove, Handler: h.RemoveFriend},
		{Pattern: api.DuelChallenge, Handler: h.Challenge},
		{Pattern: api.DuelRespond, Handler: h.RespondDuel},
		{Pattern: api.DuelList, Handler: h.ListDuels},
	}
}

type FriendRequestDto struct {
	UserID uuid.UUID `json:"userId"`
}

type DuelDto struct {
	UserID uuid.UUID `json:"userId"`
}

type DuelResponseDto struct {
	Accept *bool `json:"accept"`
}

func (h *Handler) RequestFriend(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.user(w, r)
	if !ok {
		return
	}

	var dto FriendRequestDto
	if err := httpx.DecodeJSON(r, &dto); err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}

	friend, err := h.service.RequestFriend(r.Context(), userID, dto.UserID)
	if err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, friend)
}

func (h *Handler) AcceptFriend(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := h.userAndPathID(w, r)
	if !ok {
		return
	}

	friend, err := h.service.AcceptFriend(r.Context(), userID, id)
	if err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, friend)
}

func (h *Handler) ListFriends(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.user(w, r)
	if !ok {
		return
	}

	friends, err := h.service.ListFriends(r.Context(), userID)
	if err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}
	if friends == nil {
		friends = []Friend{}
	}
	httpx.WriteJSON(w, http.StatusOK, friends)
}

func (h *Handler) RemoveFriend(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := h.userAndPathID(w, r)
	if !ok {
		return
	}

	if err := h.service.RemoveFriend(r.Context(), userID, id); err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Challenge(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.user(w, r)
	if !ok {
		return
	}

	var dto DuelDto
	if err := httpx.DecodeJSON(r, &dto); err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}

	duel, err := h.service.Challenge(r.Context(), userID, dto.UserID)
	if err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, duel)
}

func (h *Handler) RespondDuel(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := h.userAndPathID(w, r)
	if !ok {
		return
	}

	var dto DuelResponseDto
	if err := httpx.DecodeJSON(r, &dto); err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}
	if dto.Accept == nil {
		httpx.WriteError(w, r, h.log, apperr.InvalidInput("accept is required"))
		return
	}

	duel, err := h.service.RespondDuel(r.Context(), userID, id, *dto.Accept)
	if err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, duel)
}

func (h *Handler) ListDuels(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.user(w, r)
	if !ok {
		return
	}

	duels, err := h.service.ListDuels(r.Context(), userID)
	if err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}
	if duels == nil {
		duels = []Duel{}
	}
	httpx.WriteJSON(w, http.StatusOK, duels)
}

func (h *Handler) user(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		httpx.WriteError(w, r, h.log, err)
		return uuid.Nil, false
	}
	return userID, true
}

func (h *Handler) userAndPathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, uuid.UUID, bool) {
	userID, ok := h.user(w, r)
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	id, err := httpx.PathUUID(r, "id")
	if err != nil {
		httpx.WriteError(w, r, h.log, err)
		return uuid.Nil, uuid.Nil, false
	}
	return userID, id, true
}
