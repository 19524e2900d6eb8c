package auth

import (
	"bytes"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/elskow/transcendence/internal/api"
	"github.com/elskow/transcendence/internal/apperr"
	"github.com/elskow/transcendence/internal/config"
	"github.com/elskow/transcendence/internal/httpx"
)

const oauthStateCookie = "oauth_state"

type Handler struct {
	service    *Service
	middleware *AuthMiddleware
	provider   *FortyTwoProvider
	oauth      *config.OAuthConfig
	log        *zap.Logger
}

func NewHandler(service *Service, middleware *AuthMiddleware, provider *FortyTwoProvider, oauth *config.OAuthConfig, log *zap.Logger) *Handler {
	return &Handler{
		service:    service,
		middleware: middleware,
		provider:   provider,
		oauth:      oauth,
		log:        log,
	}
}

func (h *Handler) Routes() []api.Route {
	return []api.Route{
		{Pattern: api.AuthRegister, Handler: h.Register},
		{Pattern: api.AuthLogin, Handler: h.Login},
		{Pattern: api.AuthLogout, Handler: h.Logout},
		{Pattern: api.AuthMe, Handler: h.Me},
		{Pattern: api.AuthRefresh, Handler: h.Refresh},
		{Pattern: api.UserUpdate, Handler: h.UpdateName},
		{Pattern: api.TwoFactorGen, Handler: h.GenerateTwoFactor},
		{Pattern: api.TwoFactorOn, Handler: h.TurnOnTwoFactor},
		{Pattern: api.TwoFactorOff, Handler: h.TurnOffTwoFactor},
		{Pattern: api.TwoFactorAuth, Handler: h.AuthenticateTwoFactor},
		{Pattern: api.OAuthStart, Handler: h.FortyTwoStart},
		{Pattern: api.OAuthCallback, Handler: h.FortyTwoCallback},
	}
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	User              *UserView `json:"user,omitempty"`
	TwoFactorRequired bool      `json:"twoFactorRequired"`
}

type UpdateNameRequest struct {
	Name string `json:"name"`
}

type TwoFactorCodeRequest struct {
	Code string `json:"twoFactorAuthenticationCode"`
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}

	h.log.Info("handling register request", zap.String("name", req.Name))

	user, err := h.service.RegisterUser(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, NewUserView(user))
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}
	if req.Email == "" || req.Password == "" {
		httpx.WriteError(w, r, h.log, apperr.InvalidInput("email and password are required"))
		return
	}

	user, err := h.service.VerifyCredentials(r.Context(), req.Email, req.Password)
	if err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}

	token, err := h.service.IssueSession(user.ID, false)
	if err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}
	http.SetCookie(w, h.middleware.SessionCookie(token))

	if user.TwoFactorEnabled {
		httpx.WriteJSON(w, http.StatusOK, LoginResponse{TwoFactorRequired: true})
		return
	}

	view := NewUserView(user)
	httpx.WriteJSON(w, http.StatusOK, LoginResponse{User: &view})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, h.middleware.LogoutCookie())
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserFromContext(r.Context())
	if err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}

	user, err := h.service.GetUser(r.Context(), userID)
	if err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, NewUserView(user))
}

func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(h.middleware.config.CookieName)
	if err != nil {
		httpx.WriteError(w, r, h.log, apperr.Unauthorized("missing token"))
		return
	}

	token, err := h.service.RefreshSession(r.Context(), cookie.Value)
	if err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}

	http.SetCookie(w, h.middleware.SessionCookie(token))
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) UpdateName(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserFromContext(r.Context())
	if err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}

	var req UpdateNameRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}

	user, err := h.service.UpdateName(r.Context(), userID, req.Name)
	if err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, NewUserView(user))
}

func (h *Handler) GenerateTwoFactor(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserFromContext(r.Context())
	if err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}

	secret, err := h.service.GenerateTwoFactorSecret(r.Context(), userID)
	if err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}

	var buf bytes.Buffer
	if err := h.service.WriteQRCode(&buf, secret.OtpauthURL); err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (h *Handler) TurnOnTwoFactor(w http.ResponseWriter, r *http.Request) {
	h.withCode(w, r, func(req TwoFactorCodeRequest) error {
		userID, err := GetUserFromContext(r.Context())
		if err != nil {
			return err
		}
		return h.service.TurnOnTwoFactor(r.Context(), userID, req.Code)
	})
}

func (h *Handler) TurnOffTwoFactor(w http.ResponseWriter, r *http.Request) {
	h.withCode(w, r, func(req TwoFactorCodeRequest) error {
		userID, err := GetUserFromContext(r.Context())
		if err != nil {
			return err
		}
		return h.service.TurnOffTwoFactor(r.Context(), userID, req.Code)
	})
}

func (h *Handler) AuthenticateTwoFactor(w http.ResponseWriter, r *http.Request) {
	h.withCode(w, r, func(req TwoFactorCodeRequest) error {
		userID, err := GetUserFromContext(r.Context())
		if err != nil {
			return err
		}
		token, err := h.service.AuthenticateSecondFactor(r.Context(), userID, req.Code)
		if err != nil {
			return err
		}
		http.SetCookie(w, h.middleware.SessionCookie(token))
		return nil
	})
}

func (h *Handler) withCode(w http.ResponseWriter, r *http.Request, fn func(TwoFactorCodeRequest) error) {
	var req TwoFactorCodeRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}
	if err := fn(req); err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) FortyTwoStart(w http.ResponseWriter, r *http.Request) {
	if !h.provider.Enabled() {
		httpx.WriteError(w, r, h.log, apperr.NotFound("42 login is not configured"))
		return
	}

	state, err := NewState()
	if err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/auth/42",
		HttpOnly: true,
		Secure:   h.middleware.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(h.oauth.StateTTL / time.Second),
	})
	http.Redirect(w, r, h.provider.AuthCodeURL(state), http.StatusFound)
}

func (h *Handler) FortyTwoCallback(w http.ResponseWriter, r *http.Request) {
	if !h.provider.Enabled() {
		httpx.WriteError(w, r, h.log, apperr.NotFound("42 login is not configured"))
		return
	}

	query := r.URL.Query()
	if errParam := query.Get("error"); errParam != "" {
		httpx.WriteError(w, r, h.log, apperr.BadCredential(errParam))
		return
	}

	stateCookie, err := r.Cookie(oauthStateCookie)
	if err != nil || stateCookie.Value == "" || stateCookie.Value != query.Get("state") {
		httpx.WriteError(w, r, h.log, apperr.BadCredential("invalid state"))
		return
	}
	http.SetCookie(w, &http.Cookie{Name: oauthStateCookie, Path: "/auth/42", MaxAge: -1})

	code := query.Get("code")
	if code == "" {
		httpx.WriteError(w, r, h.log, apperr.InvalidInput("missing code"))
		return
	}

	profile, err := h.provider.Profile(r.Context(), code)
	if err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}

	user, err := h.service.LoginWithFortyTwo(r.Context(), profile)
	if err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}

	token, err := h.service.IssueSession(user.ID, false)
	if err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}

	http.SetCookie(w, h.middleware.SessionCookie(token))
	http.Redirect(w, r, h.oauth.SuccessRedirect, http.StatusFound)
}
