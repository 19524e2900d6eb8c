package auth

import (
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/elskow/transcendence/internal/config"
)

// NewModule returns the auth module options
func NewModule() fx.Option {
	return fx.Options(
		fx.Provide(
			// Provide repository
			fx.Annotate(
				func(db *gorm.DB) Repository {
					return NewRepository(db)
				},
			),
			// Provide service
			fx.Annotate(
				func(config *config.AppConfig, log *zap.Logger, repo Repository) *Service {
					return NewService(&config.Auth, &config.TwoFactor, log, repo)
				},
			),
			// Provide 42 OAuth provider
			fx.Annotate(
				func(config *config.AppConfig, log *zap.Logger) *FortyTwoProvider {
					return NewFortyTwoProvider(&config.OAuth, log.Named("oauth"))
				},
			),
			// Provide middleware
			fx.Annotate(
				func(config *config.AppConfig, svc *Service, log *zap.Logger) *AuthMiddleware {
					return NewAuthMiddleware(&config.Auth, svc, log)
				},
			),
			// Provide handler
			fx.Annotate(
				func(config *config.AppConfig, svc *Service, mw *AuthMiddleware, provider *FortyTwoProvider, log *zap.Logger) *Handler {
					return NewHandler(svc, mw, provider, &config.OAuth, log)
				},
			),
		),
	)
}
