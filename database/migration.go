package database

import (
	"database/sql"
	"embed"
	"errors"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/mbolis/promo-forms/errs"
	"github.com/mbolis/promo-forms/log"
)

//go:embed migrations
var schema embed.FS

// migrateDB brings the schema up to the latest embedded version.
func migrateDB(db *sql.DB) error {
	src, err := iofs.New(schema, "migrations")
	if err != nil {
		return errs.Storage("db.migrate.source", err)
	}

	dst, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		return errs.Storage("db.migrate.driver", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite3", dst)
	if err != nil {
		return errs.Storage("db.migrate.init", err)
	}

	err = m.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return errs.Storage("db.migrate.up", err)
	}

	version, dirty, err := m.Version()
	if err != nil {
		return errs.Storage("db.migrate.version", err)
	}
	if dirty {
		return errs.Storage("db.migrate.version", errors.New("schema is dirty"))
	}
	log.Debugf("db.migrate: schema at version %d", version)
	return nil
}
