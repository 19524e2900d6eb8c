package app

import (
	"context"
	"os"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/elskow/transcendence/internal/auth"
	"github.com/elskow/transcendence/internal/channel"
	"github.com/elskow/transcendence/internal/database"
	"github.com/elskow/transcendence/internal/game"
	"github.com/elskow/transcendence/internal/migration"
	"github.com/elskow/transcendence/internal/server"
	"github.com/elskow/transcendence/internal/social"
)

// Module combines all application modules
func Module() fx.Option {
	return fx.Options(
		fx.Provide(newLogger),
		fx.Provide(server.LoadConfig),

		database.Module(),
		migration.Module(),

		auth.NewModule(),
		channel.NewModule(),
		game.NewModule(),
		social.NewModule(),

		fx.Provide(server.NewServer),
		fx.Invoke(registerHooks),
	)
}

func newLogger() (*zap.Logger, error) {
	return server.NewLogger(os.Getenv("APP_ENV"))
}

func registerHooks(lifecycle fx.Lifecycle, srv *server.Server, log *zap.Logger) {
	lifecycle.Append(fx.Hook{
		OnStart: func(context.Context) error {
			return srv.Start()
		},
		OnStop: func(ctx context.Context) error {
			if err := srv.Stop(ctx); err != nil {
				log.Error("server shutdown failed", zap.Error(err))
				return err
			}
			return nil
		},
	})
}
