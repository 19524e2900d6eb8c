package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elskow/transcendence/internal/apperr"
)

func TestService_HashPassword(t *testing.T) {
	svc := newTestService(t)

	tests := []struct {
		name     string
		password string
	}{
		{name: "valid password", password: "testpassword123"},
		{name: "empty password", password: ""}, // bcrypt handles empty passwords
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := svc.HashPassword(tt.password)
			require.NoError(t, err)
			assert.NotEmpty(t, hash)
			assert.True(t, svc.CheckPasswordHash(tt.password, hash))
			assert.False(t, svc.CheckPasswordHash(tt.password+"x", hash))
		})
	}
}

func TestService_IssueSession(t *testing.T) {
	svc := newTestService(t)

	tests := []struct {
		name         string
		secondFactor bool
	}{
		{name: "first factor only", secondFactor: false},
		{name: "second factor", secondFactor: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			userID := uuid.New()
			token, err := svc.IssueSession(userID, tt.secondFactor)
			require.NoError(t, err)
			assert.NotEmpty(t, token)

			claims, err := svc.ValidateToken(token)
			require.NoError(t, err)
			assert.Equal(t, userID.String(), claims.UserID)
			assert.Equal(t, tt.secondFactor, claims.SecondFactor)
		})
	}
}

func TestService_ValidateToken(t *testing.T) {
	svc := newTestService(t)

	tests := []struct {
		name       string
		setupToken func() string
		wantErr    bool
	}{
		{
			name: "valid token",
			setupToken: func() string {
				token, _ := svc.IssueSession(uuid.New(), false)
				return token
			},
		},
		{
			name: "expired token",
			setupToken: func() string {
				expiredConfig := newTestConfig()
				expiredConfig.TokenExpiration = -time.Hour
				expiredSvc := NewService(expiredConfig, newTestTwoFactorConfig(), newTestLogger(t), newMockRepository())
				token, _ := expiredSvc.IssueSession(uuid.New(), false)
				return token
			},
			wantErr: true,
		},
		{
			name: "wrong secret",
			setupToken: func() string {
				otherConfig := newTestConfig()
				otherConfig.JWTSecret = "another-secret"
				otherSvc := NewService(otherConfig, newTestTwoFactorConfig(), newTestLogger(t), newMockRepository())
				token, _ := otherSvc.IssueSession(uuid.New(), false)
				return token
			},
			wantErr: true,
		},
		{
			name:       "invalid token",
			setupToken: func() string { return "invalid.token.here" },
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ValidateToken(tt.setupToken())
			if tt.wantErr {
				assert.ErrorIs(t, err, apperr.ErrUnauthorized)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestService_RegisterUser(t *testing.T) {
	tests := []struct {
		name     string
		username string
		password string
		email    string
		setup    func(*Service)
		wantErr  error
	}{
		{
			name:     "successful registration",
			username: "testuser",
			password: "testpass123",
			email:    "test@example.com",
		},
		{
			name:     "duplicate name",
			username: "existing",
			password: "testpass123",
			email:    "new@example.com",
			setup: func(s *Service) {
				_, _ = s.RegisterUser(context.Background(), "existing", "test@example.com", "pass1234")
			},
			wantErr: apperr.ErrConflict,
		},
		{
			name:     "duplicate email",
			username: "newuser",
			password: "testpass123",
			email:    "existing@example.com",
			setup: func(s *Service) {
				_, _ = s.RegisterUser(context.Background(), "testuser", "existing@example.com", "pass1234")
			},
			wantErr: apperr.ErrConflict,
		},
		{
			name:     "short password",
			username: "testuser",
			password: "short",
			email:    "test@example.com",
			wantErr:  apperr.ErrInvalidInput,
		},
		{
			name:     "invalid email",
			username: "testuser",
			password: "testpass123",
			email:    "not-an-email",
			wantErr:  apperr.ErrInvalidInput,
		},
		{
			name:     "short name",
			username: "ab",
			password: "testpass123",
			email:    "test@example.com",
			wantErr:  apperr.ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(t)
			if tt.setup != nil {
				tt.setup(svc)
			}

			user, err := svc.RegisterUser(context.Background(), tt.username, tt.email, tt.password)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)

			// Verify user was created correctly
			stored, err := svc.repository.GetUserByID(context.Background(), user.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.email, stored.Email)
			require.NotNil(t, stored.PasswordHash)
			assert.True(t, svc.CheckPasswordHash(tt.password, *stored.PasswordHash))
			assert.False(t, stored.TwoFactorEnabled)
		})
	}
}

func TestService_VerifyCredentials(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	registered := mustRegister(t, svc, "alice", "alice@example.com", "wonderland")

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{name: "valid credentials", email: "alice@example.com", password: "wonderland"},
		{name: "email is case insensitive", email: "Alice@Example.com", password: "wonderland"},
		{name: "wrong password", email: "alice@example.com", password: "looking-glass", wantErr: apperr.ErrBadCredential},
		{name: "unknown email", email: "bob@example.com", password: "wonderland", wantErr: apperr.ErrBadCredential},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := svc.VerifyCredentials(ctx, tt.email, tt.password)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, registered.ID, user.ID)
		})
	}
}

func TestService_ResolveSession(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	user := mustRegister(t, svc, "alice", "alice@example.com", "wonderland")

	firstFactor, err := svc.IssueSession(user.ID, false)
	require.NoError(t, err)
	secondFactor, err := svc.IssueSession(user.ID, true)
	require.NoError(t, err)

	resolved, _, err := svc.ResolveSession(ctx, firstFactor, false)
	require.NoError(t, err)
	assert.Equal(t, user.ID, resolved.ID)

	require.NoError(t, svc.repository.SetTwoFactorEnabled(ctx, user.ID, true))

	_, _, err = svc.ResolveSession(ctx, firstFactor, false)
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)

	resolved, _, err = svc.ResolveSession(ctx, firstFactor, true)
	require.NoError(t, err)
	assert.Equal(t, user.ID, resolved.ID)

	resolved, claims, err := svc.ResolveSession(ctx, secondFactor, false)
	require.NoError(t, err)
	assert.Equal(t, user.ID, resolved.ID)
	assert.True(t, claims.SecondFactor)

	orphan, err := svc.IssueSession(uuid.New(), true)
	require.NoError(t, err)
	_, _, err = svc.ResolveSession(ctx, orphan, false)
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
}

func TestService_RefreshSession(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	user := mustRegister(t, svc, "alice", "alice@example.com", "wonderland")

	token, err := svc.IssueSession(user.ID, true)
	require.NoError(t, err)

	refreshed, err := svc.RefreshSession(ctx, token)
	require.NoError(t, err)
	claims, err := svc.ValidateToken(refreshed)
	require.NoError(t, err)
	assert.Equal(t, user.ID.String(), claims.UserID)
	assert.True(t, claims.SecondFactor)

	_, err = svc.RefreshSession(ctx, "invalid.token.here")
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)

	svc.config.RefreshTokenEnabled = false
	_, err = svc.RefreshSession(ctx, token)
	assert.ErrorIs(t, err, apperr.ErrPolicyViolation)
}

func TestService_UpdateName(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	alice := mustRegister(t, svc, "alice", "alice@example.com", "wonderland")
	mustRegister(t, svc, "bobby", "bob@example.com", "builder123")

	updated, err := svc.UpdateName(ctx, alice.ID, "alicia")
	require.NoError(t, err)
	assert.Equal(t, "alicia", updated.Name)

	_, err = svc.UpdateName(ctx, alice.ID, "bobby")
	assert.ErrorIs(t, err, apperr.ErrConflict)

	_, err = svc.UpdateName(ctx, alice.ID, "")
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)
}
