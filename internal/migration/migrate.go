package migration

import (
	"database/sql"
	"fmt"
	"os"

	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"

	"github.com/elskow/transcendence/internal/config"
	"github.com/elskow/transcendence/internal/database"
)

const dialect = "postgres"

// Migrator applies the goose SQL files under migrations/ over a lib/pq
// connection separate from the gorm pool.
type Migrator struct {
	db  *sql.DB
	dir string
	log *zap.Logger
}

func NewMigrator(cfg *config.DatabaseConfig, log *zap.Logger) (*Migrator, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	dir, err := resolveDir(cfg.MigrationsDir, wd)
	if err != nil {
		return nil, fmt.Errorf("failed to locate migrations: %w", err)
	}

	if err := goose.SetDialect(dialect); err != nil {
		return nil, fmt.Errorf("failed to set dialect: %w", err)
	}

	db, err := sql.Open("postgres", database.DSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	goose.SetLogger(zap.NewStdLog(log))

	return &Migrator{db: db, dir: dir, log: log}, nil
}

func (m *Migrator) Close() error {
	return m.db.Close()
}

func (m *Migrator) Up() error {
	if err := goose.Up(m.db, m.dir); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

func (m *Migrator) Down() error {
	if err := goose.Down(m.db, m.dir); err != nil {
		return fmt.Errorf("failed to rollback migrations: %w", err)
	}
	return nil
}

func (m *Migrator) DownTo(version int64) error {
	if err := goose.DownTo(m.db, m.dir, version); err != nil {
		return fmt.Errorf("failed to migrate down to version %d: %w", version, err)
	}
	return nil
}

func (m *Migrator) Status() error {
	if err := goose.Status(m.db, m.dir); err != nil {
		return fmt.Errorf("failed to get migration status: %w", err)
	}
	return nil
}

// Reset rolls everything back and reapplies from scratch.
func (m *Migrator) Reset() error {
	if err := goose.Reset(m.db, m.dir); err != nil {
		return fmt.Errorf("failed to reset migrations: %w", err)
	}
	return m.Up()
}

// Version is the version currently recorded in the database.
func (m *Migrator) Version() (int64, error) {
	return goose.GetDBVersion(m.db)
}

// Latest is the highest version found on disk.
func (m *Migrator) Latest() (int64, error) {
	migrations, err := goose.CollectMigrations(m.dir, 0, goose.MaxVersion)
	if err != nil {
		return 0, err
	}
	if len(migrations) == 0 {
		return 0, nil
	}
	return migrations[len(migrations)-1].Version, nil
}

// Sync moves the schema to the latest version on disk, downgrading when the
// database is ahead of this build.
func (m *Migrator) Sync() error {
	current, err := m.Version()
	if err != nil {
		return fmt.Errorf("failed to get current migration version: %w", err)
	}
	latest, err := m.Latest()
	if err != nil {
		return fmt.Errorf("failed to get latest migration version: %w", err)
	}

	log := m.log.With(zap.Int64("current_version", current), zap.Int64("latest_version", latest))
	switch {
	case current > latest:
		log.Info("downgrading database schema")
		return m.DownTo(latest)
	case current < latest:
		log.Info("upgrading database schema")
		return m.Up()
	default:
		log.Info("database schema up to date")
		return nil
	}
}
