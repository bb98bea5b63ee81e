package database

import (
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// DSN appends the connection options every store relies on. _txlock=immediate
// makes each transaction take the write lock at BEGIN, so a read-then-write
// sequence inside a transaction never interleaves with another writer.
func DSN(path string) string {
	opts := "_foreign_keys=on&_busy_timeout=10000&_journal_mode=WAL&_txlock=immediate"
	if strings.Contains(path, "?") {
		return path + "&" + opts
	}
	return path + "?" + opts
}

func Open(path string) (db *sqlx.DB, err error) {
	db, err = sqlx.Open("sqlite3", DSN(path))
	if err != nil {
		return
	}

	err = db.Ping()
	if err != nil {
		db.Close()
		return
	}

	// db tuning options
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxIdleTime(5 * time.Minute)
	db.SetConnMaxLifetime(2 * time.Hour)

	err = migrateDB(db.DB)
	if err != nil {
		db.Close()
		return
	}

	return
}
