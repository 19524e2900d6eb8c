package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elskow/transcendence/internal/config"
)

func newTestHandler(t *testing.T) *Handler {
	svc := newTestService(t)
	oauthCfg := &config.OAuthConfig{SuccessRedirect: "/"}
	return NewHandler(
		svc,
		NewAuthMiddleware(svc.config, svc, newTestLogger(t)),
		NewFortyTwoProvider(oauthCfg, newTestLogger(t)),
		oauthCfg,
		newTestLogger(t),
	)
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == "Authentication" {
			return c
		}
	}
	t.Fatal("no session cookie set")
	return nil
}

func TestHandler_Register(t *testing.T) {
	h := newTestHandler(t)

	tests := []struct {
		name     string
		body     string
		wantCode int
	}{
		{
			name:     "valid registration",
			body:     `{"name":"testuser","email":"test@example.com","password":"testpass123"}`,
			wantCode: http.StatusCreated,
		},
		{
			name:     "duplicate registration",
			body:     `{"name":"testuser","email":"test@example.com","password":"testpass123"}`,
			wantCode: http.StatusConflict,
		},
		{
			name:     "missing fields",
			body:     `{}`,
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "malformed body",
			body:     `{"name":`,
			wantCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.Register(rec, jsonRequest(http.MethodPost, "/authentication/register", tt.body))
			assert.Equal(t, tt.wantCode, rec.Code)

			if tt.wantCode == http.StatusCreated {
				var view UserView
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&view))
				assert.Equal(t, "testuser", view.Name)
			}
		})
	}
}

func TestHandler_Login(t *testing.T) {
	h := newTestHandler(t)
	user := mustRegister(t, h.service, "alice", "alice@example.com", "wonderland")

	tests := []struct {
		name      string
		body      string
		wantCode  int
		wantToken bool
	}{
		{
			name:      "valid login",
			body:      `{"email":"alice@example.com","password":"wonderland"}`,
			wantCode:  http.StatusOK,
			wantToken: true,
		},
		{
			name:     "wrong password",
			body:     `{"email":"alice@example.com","password":"nope-nope"}`,
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "empty credentials",
			body:     `{"email":"","password":""}`,
			wantCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.Login(rec, jsonRequest(http.MethodPost, "/authentication/log-in", tt.body))
			assert.Equal(t, tt.wantCode, rec.Code)
			if !tt.wantToken {
				return
			}

			cookie := sessionCookie(t, rec)
			assert.True(t, cookie.HttpOnly)
			claims, err := h.service.ValidateToken(cookie.Value)
			require.NoError(t, err)
			assert.Equal(t, user.ID.String(), claims.UserID)
			assert.False(t, claims.SecondFactor)

			var resp LoginResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
			assert.False(t, resp.TwoFactorRequired)
			require.NotNil(t, resp.User)
			assert.Equal(t, user.ID, resp.User.ID)
		})
	}

	t.Run("two factor required", func(t *testing.T) {
		require.NoError(t, h.service.repository.SetTwoFactorEnabled(context.Background(), user.ID, true))

		rec := httptest.NewRecorder()
		h.Login(rec, jsonRequest(http.MethodPost, "/authentication/log-in", `{"email":"alice@example.com","password":"wonderland"}`))
		require.Equal(t, http.StatusOK, rec.Code)

		var resp LoginResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.True(t, resp.TwoFactorRequired)
		assert.Nil(t, resp.User)
		sessionCookie(t, rec)
	})
}

func TestHandler_Me(t *testing.T) {
	h := newTestHandler(t)
	user := mustRegister(t, h.service, "alice", "alice@example.com", "wonderland")

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/authentication", nil)
	h.Me(rec, req.WithContext(WithUser(req.Context(), user.ID)))
	require.Equal(t, http.StatusOK, rec.Code)

	var view UserView
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&view))
	assert.Equal(t, "alice@example.com", view.Email)

	rec = httptest.NewRecorder()
	h.Me(rec, httptest.NewRequest(http.MethodGet, "/authentication", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	h.Me(rec, req.WithContext(WithUser(req.Context(), uuid.New())))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandler_Logout(t *testing.T) {
	h := newTestHandler(t)

	rec := httptest.NewRecorder()
	h.Logout(rec, httptest.NewRequest(http.MethodPost, "/authentication/log-out", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	cookie := sessionCookie(t, rec)
	assert.Empty(t, cookie.Value)
	assert.Negative(t, cookie.MaxAge)
}

func TestHandler_FortyTwoDisabled(t *testing.T) {
	h := newTestHandler(t)

	rec := httptest.NewRecorder()
	h.FortyTwoStart(rec, httptest.NewRequest(http.MethodGet, "/auth/42", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandler_FortyTwoCallbackState(t *testing.T) {
	h := newTestHandler(t)
	h.oauth.ClientID = "client"
	h.oauth.ClientSecret = "secret"
	h.oauth.RedirectURL = "http://localhost/auth/42/callback"

	rec := httptest.NewRecorder()
	h.FortyTwoCallback(rec, httptest.NewRequest(http.MethodGet, "/auth/42/callback?code=abc&state=forged", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/auth/42/callback?state=s1", nil)
	req.AddCookie(&http.Cookie{Name: oauthStateCookie, Value: "s1"})
	rec = httptest.NewRecorder()
	h.FortyTwoCallback(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuthMiddleware(t *testing.T) {
	h := newTestHandler(t)
	ctx := context.Background()
	user := mustRegister(t, h.service, "alice", "alice@example.com", "wonderland")

	firstFactor, err := h.service.IssueSession(user.ID, false)
	require.NoError(t, err)
	secondFactor, err := h.service.IssueSession(user.ID, true)
	require.NoError(t, err)

	var seen uuid.UUID
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, err = GetUserFromContext(r.Context())
		require.NoError(t, err)
		w.WriteHeader(http.StatusNoContent)
	})

	serve := func(handler http.Handler, token string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if token != "" {
			req.AddCookie(&http.Cookie{Name: "Authentication", Value: token})
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	require.NoError(t, h.service.repository.SetTwoFactorEnabled(ctx, user.ID, true))

	tests := []struct {
		name     string
		handler  http.Handler
		token    string
		wantCode int
	}{
		{name: "missing cookie", handler: h.middleware.Require(next), wantCode: http.StatusUnauthorized},
		{name: "garbage token", handler: h.middleware.Require(next), token: "not-a-jwt", wantCode: http.StatusUnauthorized},
		{name: "first factor on protected route", handler: h.middleware.Require(next), token: firstFactor, wantCode: http.StatusUnauthorized},
		{name: "second factor on protected route", handler: h.middleware.Require(next), token: secondFactor, wantCode: http.StatusNoContent},
		{name: "first factor on first factor route", handler: h.middleware.RequireFirstFactor(next), token: firstFactor, wantCode: http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = uuid.Nil
			assert.Equal(t, tt.wantCode, serve(tt.handler, tt.token))
			if tt.wantCode == http.StatusNoContent {
				assert.Equal(t, user.ID, seen)
			}
		})
	}
}
