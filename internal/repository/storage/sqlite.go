package storage

import (
	"context"
	"database/sql"
	"fmt"

	// import the SQLite driver to register it with the database/sql package.
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

type SQLite struct {
	Connection *sql.DB
}

func NewSQLite(ctx context.Context, path string) (*SQLite, error) {
	conn, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("can't open database: %w", err)
	}

	if err = conn.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("can't connect to database: %w", err)
	}

	storage := &SQLite{Connection: conn}
	if err = storage.init(ctx); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return storage, nil
}

func (that *SQLite) init(ctx context.Context) error {
	query := `CREATE TABLE IF NOT EXISTS sessions (
		id         TEXT PRIMARY KEY,
		data       TEXT NOT NULL,
		expires_at INTEGER NOT NULL DEFAULT 0
	)`

	if _, err := that.Connection.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("can't create table: %w", err)
	}

	return nil
}

func (that *SQLite) Close() error {
	return that.Connection.Close()
}
