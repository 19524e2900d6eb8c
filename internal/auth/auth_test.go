package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/elskow/transcendence/internal/config"
)

func newTestLogger(t *testing.T) *zap.Logger {
	logger, err := zap.NewDevelopment()
	assert.NoError(t, err)
	return logger
}

func newTestConfig() *config.AuthConfig {
	return &config.AuthConfig{
		JWTSecret:           "test-secret-key",
		TokenExpiration:     time.Hour,
		RefreshTokenEnabled: true,
		CookieName:          "Authentication",
	}
}

func newTestTwoFactorConfig() *config.TwoFactorConfig {
	return &config.TwoFactorConfig{AppName: "transcendence-test", QRSize: 128}
}

func newTestService(t *testing.T) *Service {
	return newTestServiceWithRepo(t, newMockRepository())
}

func newTestServiceWithRepo(t *testing.T, repo Repository) *Service {
	return NewService(
		newTestConfig(),
		newTestTwoFactorConfig(),
		newTestLogger(t),
		repo,
	)
}

func mustRegister(t *testing.T, svc *Service, name, email, password string) *User {
	t.Helper()
	user, err := svc.RegisterUser(context.Background(), name, email, password)
	require.NoError(t, err)
	return user
}
