package database

import (
	"context"
	"fmt"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/elskow/transcendence/internal/config"
)

func Module() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				func(config *config.AppConfig, logger *zap.Logger) (*Manager, error) {
					return NewManager(&config.Database, logger)
				},
			),
			func(manager *Manager) *gorm.DB {
				return manager.DB()
			},
		),
		fx.Invoke(registerHooks),
	)
}

func registerHooks(lifecycle fx.Lifecycle, manager *Manager, logger *zap.Logger) {
	lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := manager.Ping(ctx); err != nil {
				return fmt.Errorf("database unreachable: %w", err)
			}
			logger.Info("database connected",
				zap.String("host", manager.config.Host),
				zap.String("name", manager.config.Name))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("closing database connections")
			return manager.Close()
		},
	})
}
