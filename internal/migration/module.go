package migration

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/elskow/transcendence/internal/config"
)

// Module syncs the schema on start when database.auto_migrate is set.
func Module() fx.Option {
	return fx.Invoke(registerHooks)
}

func registerHooks(lifecycle fx.Lifecycle, cfg *config.AppConfig, log *zap.Logger) {
	if !cfg.Database.AutoMigrate {
		return
	}

	lifecycle.Append(fx.Hook{
		OnStart: func(context.Context) error {
			migrator, err := NewMigrator(&cfg.Database, log.Named("migration"))
			if err != nil {
				return err
			}
			defer migrator.Close()
			return migrator.Sync()
		},
	})
}
