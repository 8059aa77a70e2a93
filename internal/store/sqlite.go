package store

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// SQLiteBackend stores documents as rows and guards writes with a version
// compare-and-swap, so several processes may share one database file.
type SQLiteBackend struct {
	db  *sqlx.DB
	dsn string
}

func OpenSQLite(dsn string) (*SQLiteBackend, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// :memory: databases are per connection.
	db.SetMaxOpenConns(1)
	if err = db.Ping(); err != nil {
		return nil, err
	}
	if err := ensureSchema(db); err != nil {
		return nil, err
	}
	return &SQLiteBackend{db: db, dsn: dsn}, nil
}

func ensureSchema(db *sqlx.DB) error {
	schema := `
PRAGMA journal_mode = WAL;
PRAGMA busy_timeout = 5000;

CREATE TABLE IF NOT EXISTS documents(
  name TEXT PRIMARY KEY,
  body BLOB NOT NULL,
  version INTEGER NOT NULL CHECK (version >= 1),
  updated_at TEXT
);
`
	_, err := db.Exec(schema)
	return err
}

func (b *SQLiteBackend) DB() *sqlx.DB { return b.db }

func (b *SQLiteBackend) Close() error { return b.db.Close() }

func (b *SQLiteBackend) Locate(name string) string { return "sqlite:" + b.dsn + "#" + name }

func (b *SQLiteBackend) Read(name string) (Snapshot, error) {
	var row struct {
		Body    []byte `db:"body"`
		Version int64  `db:"version"`
	}
	err := b.db.Get(&row, `SELECT body, version FROM documents WHERE name = ?`, name)
	if errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, nil
	}
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{Data: row.Body, Version: row.Version}, nil
}

func (b *SQLiteBackend) Write(name string, data []byte, expect int64) error {
	var (
		res sql.Result
		err error
	)
	if expect == 0 {
		res, err = b.db.Exec(`
			INSERT INTO documents(name, body, version, updated_at)
			VALUES(?, ?, 1, CURRENT_TIMESTAMP)
			ON CONFLICT(name) DO NOTHING
		`, name, data)
	} else {
		res, err = b.db.Exec(`
			UPDATE documents
			SET body = ?, version = version + 1, updated_at = CURRENT_TIMESTAMP
			WHERE name = ? AND version = ?
		`, data, name, expect)
	}
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrConflict
	}
	return nil
}
