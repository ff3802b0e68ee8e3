package postgres

import (
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

//go:embed migrations/*.sql
var embeddedMigrations embed.FS

// Migrator applies schema migrations. An empty path uses the SQL files
// compiled into the binary.
type Migrator struct {
	m      *migrate.Migrate
	logger zerolog.Logger
}

func NewMigrator(databaseURL, path string, logger zerolog.Logger) (*Migrator, error) {
	var (
		m   *migrate.Migrate
		err error
	)
	if path == "" {
		src, srcErr := iofs.New(embeddedMigrations, "migrations")
		if srcErr != nil {
			return nil, fmt.Errorf("open embedded migrations: %w", srcErr)
		}
		m, err = migrate.NewWithSourceInstance("iofs", src, databaseURL)
	} else {
		m, err = migrate.New(sourceURL(path), databaseURL)
	}
	if err != nil {
		return nil, fmt.Errorf("init migrations: %w", err)
	}

	return &Migrator{m: m, logger: logger.With().Str("component", "migrator").Logger()}, nil
}

// Up applies every pending migration.
func (mg *Migrator) Up() error {
	err := mg.m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		mg.logger.Info().Msg("schema up to date")
		return nil
	}
	if err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	mg.logVersion("migrations applied")
	return nil
}

// Down rolls back steps migrations.
func (mg *Migrator) Down(steps int) error {
	if steps < 1 {
		return fmt.Errorf("rollback needs at least one step, got %d", steps)
	}
	if err := mg.m.Steps(-steps); err != nil {
		return fmt.Errorf("roll back %d migration(s): %w", steps, err)
	}

	mg.logVersion("migrations rolled back")
	return nil
}

// Version reports the applied version. A fresh database has version 0.
func (mg *Migrator) Version() (version uint, dirty bool, err error) {
	version, dirty, err = mg.m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return version, dirty, err
}

func (mg *Migrator) Close() error {
	srcErr, dbErr := mg.m.Close()
	return errors.Join(srcErr, dbErr)
}

func (mg *Migrator) logVersion(msg string) {
	version, dirty, err := mg.Version()
	if err != nil {
		mg.logger.Warn().Err(err).Msg(msg)
		return
	}
	mg.logger.Info().Uint("version", version).Bool("dirty", dirty).Msg(msg)
}

// RunMigrations applies every pending migration.
func RunMigrations(databaseURL, path string) error {
	return withMigrator(databaseURL, path, (*Migrator).Up)
}

// RunMigrationsDown rolls back the last steps migrations.
func RunMigrationsDown(databaseURL, path string, steps int) error {
	return withMigrator(databaseURL, path, func(mg *Migrator) error { return mg.Down(steps) })
}

// MigrationVersion reports the applied schema version.
func MigrationVersion(databaseURL, path string) (uint, bool, error) {
	var (
		version uint
		dirty   bool
	)
	err := withMigrator(databaseURL, path, func(mg *Migrator) (err error) {
		version, dirty, err = mg.Version()
		return err
	})
	return version, dirty, err
}

func withMigrator(databaseURL, path string, fn func(*Migrator) error) error {
	mg, err := NewMigrator(databaseURL, path, log.Logger)
	if err != nil {
		return err
	}
	defer mg.Close()

	return fn(mg)
}

func sourceURL(path string) string {
	if strings.HasPrefix(path, "file://") {
		return path
	}
	return "file://" + path
}
