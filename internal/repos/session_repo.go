package repos

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"hoteldesk/internal/domain"
)

// SessionRepo is the SQL-backed session store.
type SessionRepo struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewSessionRepo(db *sqlx.DB) *SessionRepo { return &SessionRepo{db: db, now: time.Now} }

type sessionRow struct {
	ID        string `db:"id"`
	UserID    int64  `db:"user_id"`
	Username  string `db:"username"`
	CreatedAt int64  `db:"created_at"`
	ExpiresAt int64  `db:"expires_at"`
}

func (r *SessionRepo) Save(ctx context.Context, s domain.Session) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO sessions(id, user_id, username, created_at, expires_at)
		VALUES(?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
		  user_id = excluded.user_id,
		  username = excluded.username,
		  expires_at = excluded.expires_at`),
		s.ID, s.UserID, s.Username, s.CreatedAt.Unix(), s.ExpiresAt.Unix())
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Get returns the live session with the given id, or domain.ErrNotFound if it is unknown or expired.
func (r *SessionRepo) Get(ctx context.Context, id string) (*domain.Session, error) {
	var row sessionRow
	err := r.db.GetContext(ctx, &row, r.db.Rebind(`
		SELECT id, user_id, username, created_at, expires_at
		FROM sessions
		WHERE id = ? AND expires_at > ?`), id, r.now().Unix())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	return &domain.Session{
		ID:        row.ID,
		UserID:    row.UserID,
		Username:  row.Username,
		CreatedAt: time.Unix(row.CreatedAt, 0),
		ExpiresAt: time.Unix(row.ExpiresAt, 0),
	}, nil
}

func (r *SessionRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM sessions WHERE id = ?`), id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// Purge drops expired rows and reports how many were removed.
func (r *SessionRepo) Purge(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM sessions WHERE expires_at <= ?`), r.now().Unix())
	if err != nil {
		return 0, fmt.Errorf("purge sessions: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
