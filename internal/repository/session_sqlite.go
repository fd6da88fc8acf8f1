package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
)

type sqliteSession struct {
	conn *sql.DB
	ttl  time.Duration
	now  func() time.Time
}

// NewSQLiteSessionRepository - same contract as the redis repository, backed by the sessions table.
func NewSQLiteSessionRepository(conn *sql.DB, ttl time.Duration) SessionRepository {
	return &sqliteSession{
		conn: conn,
		ttl:  ttl,
		now:  time.Now,
	}
}

func (that *sqliteSession) CreateOrUpdate(ctx context.Context, session *entity.Session) error {
	sessionJSON, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("could not marshal session: %w", err)
	}

	query := `INSERT INTO sessions (id, data, expires_at) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET data = excluded.data, expires_at = excluded.expires_at`

	if _, err = that.conn.ExecContext(ctx, query, session.ID, string(sessionJSON), that.expiresAt()); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	return nil
}

func (that *sqliteSession) GetByID(ctx context.Context, id string) (*entity.Session, error) {
	query := `SELECT data FROM sessions WHERE id = ? AND (expires_at = 0 OR expires_at > ?)`

	var data string
	err := that.conn.QueryRowContext(ctx, query, id, that.now().Unix()).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.ErrSessionNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get session by id: %w", err)
	}

	var session entity.Session
	if err = json.Unmarshal([]byte(data), &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	return &session, nil
}

func (that *sqliteSession) DeleteByID(ctx context.Context, id string) error {
	result, err := that.conn.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete session by id: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to count deleted sessions: %w", err)
	}

	if deleted == 0 {
		return apperror.ErrSessionNotFound
	}

	return nil
}

func (that *sqliteSession) expiresAt() int64 {
	if that.ttl <= 0 {
		return 0
	}

	return that.now().Add(that.ttl).Unix()
}
