package database

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratemysql "github.com/golang-migrate/migrate/v4/database/mysql"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/rs/zerolog/log"

	"chats/internal/config"
)

//go:embed migrations/mysql/*.sql migrations/postgres/*.sql
var migrationsFS embed.FS

// MigrationSource returns the embedded migrations for an engine.
func MigrationSource(engine string) (source.Driver, error) {
	switch engine {
	case config.EngineMySQL, config.EnginePostgres:
		return iofs.New(migrationsFS, "migrations/"+engine)
	default:
		return nil, fmt.Errorf("engine %q has no migrations", engine)
	}
}

// Migrator applies the embedded schema migrations. It owns its own connection
// because closing a migrate instance closes the database handle.
type Migrator struct {
	m *migrate.Migrate
}

func NewMigrator(cfg config.DatabaseConfig) (*Migrator, error) {
	driverName, dsn, err := DSN(cfg)
	if err != nil {
		return nil, err
	}
	src, err := MigrationSource(cfg.Engine)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s for migrations: %w", driverName, err)
	}

	var drv database.Driver
	switch cfg.Engine {
	case config.EngineMySQL:
		drv, err = migratemysql.WithInstance(db, &migratemysql.Config{DatabaseName: cfg.Name})
	case config.EnginePostgres:
		drv, err = migratepg.WithInstance(db, &migratepg.Config{DatabaseName: cfg.Name})
	}
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, cfg.Engine, drv)
	if err != nil {
		_ = drv.Close()
		return nil, fmt.Errorf("migrate instance: %w", err)
	}
	m.Log = migrateLogger{}
	return &Migrator{m: m}, nil
}

// Up migrates to the latest version. Already being at head is not an error.
func (m *Migrator) Up() error {
	if err := m.m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate up: %w", err)
	}
	return nil
}

// Down reverts the most recent migration.
func (m *Migrator) Down() error {
	if err := m.m.Steps(-1); err != nil {
		return fmt.Errorf("migrate down: %w", err)
	}
	return nil
}

// Version reports 0 when nothing has been applied yet.
func (m *Migrator) Version() (uint, bool, error) {
	v, dirty, err := m.m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return v, dirty, err
}

func (m *Migrator) Force(version int) error {
	return m.m.Force(version)
}

func (m *Migrator) Close() error {
	srcErr, dbErr := m.m.Close()
	if srcErr != nil {
		return srcErr
	}
	return dbErr
}

type migrateLogger struct{}

func (migrateLogger) Printf(format string, v ...interface{}) {
	log.Info().Msgf("migrate: "+format, v...)
}

func (migrateLogger) Verbose() bool { return false }
