package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/elskow/transcendence/internal/migration"
	"github.com/elskow/transcendence/internal/server"
)

func main() {
	if os.Getenv("APP_ENV") == "" {
		os.Setenv("APP_ENV", "development")
	}

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "migrate",
		Short:        "Manage the transcendence database schema",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&server.ConfigPath, "config", server.ConfigPath, "directory holding config.toml")

	root.AddCommand(
		migrateCmd("up", "Apply all pending migrations", func(m *migration.Migrator, log *zap.Logger) error {
			if err := m.Up(); err != nil {
				return err
			}
			log.Info("migrations applied")
			return nil
		}),
		migrateCmd("down", "Roll back the latest migration", func(m *migration.Migrator, log *zap.Logger) error {
			if err := m.Down(); err != nil {
				return err
			}
			log.Info("migration rolled back")
			return nil
		}),
		migrateCmd("status", "Print the state of every migration", func(m *migration.Migrator, _ *zap.Logger) error {
			return m.Status()
		}),
		migrateCmd("version", "Print the current schema version", func(m *migration.Migrator, _ *zap.Logger) error {
			version, err := m.Version()
			if err != nil {
				return fmt.Errorf("failed to get migration version: %w", err)
			}
			fmt.Println(version)
			return nil
		}),
		migrateCmd("reset", "Roll back everything and reapply", func(m *migration.Migrator, log *zap.Logger) error {
			if err := m.Reset(); err != nil {
				return err
			}
			log.Info("migrations reset")
			return nil
		}),
	)
	return root
}

func migrateCmd(use, short string, run func(*migration.Migrator, *zap.Logger) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			log, err := server.NewLogger(os.Getenv("APP_ENV"))
			if err != nil {
				return err
			}
			defer log.Sync()

			cfg, err := server.LoadConfig()
			if err != nil {
				return err
			}

			m, err := migration.NewMigrator(&cfg.Database, log.Named("migration"))
			if err != nil {
				return err
			}
			defer m.Close()

			return run(m, log)
		},
	}
}
