package repos

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"hoteldesk/internal/domain"
)

type UserRepo struct{ DB *sqlx.DB }

func NewUserRepo(db *sqlx.DB) *UserRepo { return &UserRepo{DB: db} }

// Create inserts u and returns its id. A taken username yields domain.ErrDuplicate.
func (r *UserRepo) Create(ctx context.Context, u *domain.User) (int64, error) {
	var id int64
	err := r.DB.GetContext(ctx, &id, r.DB.Rebind(`
		INSERT INTO users(username, email, phone, password)
		VALUES(?, ?, ?, ?)
		RETURNING id`), u.Username, u.Email, u.Phone, u.Hash)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, domain.ErrDuplicate
		}
		return 0, fmt.Errorf("insert user: %w", err)
	}
	u.ID = id
	return id, nil
}

func (r *UserRepo) ByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.one(ctx, `SELECT id, username, email, phone, password FROM users WHERE username = ?`, username)
}

func (r *UserRepo) ByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.one(ctx, `SELECT id, username, email, phone, password FROM users WHERE id = ?`, id)
}

func (r *UserRepo) one(ctx context.Context, query string, arg any) (*domain.User, error) {
	var u domain.User
	if err := r.DB.GetContext(ctx, &u, r.DB.Rebind(query), arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("select user: %w", err)
	}
	return &u, nil
}
