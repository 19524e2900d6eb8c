package channel

import (
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/elskow/transcendence/internal/auth"
)

// NewModule returns the channel module options
func NewModule() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				func(db *gorm.DB) Repository {
					return NewRepository(db)
				},
			),
			// users are resolved through the auth repository
			fx.Annotate(
				func(repo Repository, users auth.Repository, log *zap.Logger) *Engine {
					return NewEngine(repo, users, log.Named("channel"))
				},
			),
			fx.Annotate(
				func(engine *Engine, log *zap.Logger) *Handler {
					return NewHandler(engine, log)
				},
			),
		),
	)
}
