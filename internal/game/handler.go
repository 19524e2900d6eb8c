package game

import (
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/elskow/transcendence/internal/api"
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
		{Pattern: api.GameCreate, Handler: h.Create},
		{Pattern: api.GameList, Handler: h.List},
		{Pattern: api.GameGet, Handler: h.Get},
		{Pattern: api.GameJoin, Handler: h.Join},
		{Pattern: api.GameScore, Handler: h.Score},
		{Pattern: api.GameDelete, Handler: h.Delete},
	}
}

type CreateGameDto struct {
	PointToVictory int `json:"pointToVictory"`
}

type ScoreDto struct {
	Points int `json:"points"`
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}

	var dto CreateGameDto
	if err := httpx.DecodeJSON(r, &dto); err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}

	game, err := h.service.CreateGame(r.Context(), userID, dto.PointToVictory)
	if err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, NewGameView(game))
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	games, err := h.service.List(r.Context(), Status(r.URL.Query().Get("status")))
	if err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, NewGameViews(games))
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathUUID(r, "id")
	if err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}

	game, err := h.service.Get(r.Context(), id)
	h.writeGame(w, r, game, err)
}

func (h *Handler) Join(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := h.userAndGame(w, r)
	if !ok {
		return
	}

	game, err := h.service.Join(r.Context(), userID, id)
	h.writeGame(w, r, game, err)
}

func (h *Handler) Score(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := h.userAndGame(w, r)
	if !ok {
		return
	}

	var dto ScoreDto
	if err := httpx.DecodeJSON(r, &dto); err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}

	game, err := h.service.Score(r.Context(), userID, id, dto.Points)
	h.writeGame(w, r, game, err)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := h.userAndGame(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), userID, id); err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) userAndGame(w http.ResponseWriter, r *http.Request) (uuid.UUID, uuid.UUID, bool) {
	userID, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		httpx.WriteError(w, r, h.log, err)
		return uuid.Nil, uuid.Nil, false
	}
	id, err := httpx.PathUUID(r, "id")
	if err != nil {
		httpx.WriteError(w, r, h.log, err)
		return uuid.Nil, uuid.Nil, false
	}
	return userID, id, true
}

func (h *Handler) writeGame(w http.ResponseWriter, r *http.Request, game *Game, err error) {
	if err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, NewGameView(game))
}
