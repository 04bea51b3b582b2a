// Package sessions issues, verifies and revokes login sessions.
//
// The browser holds an HS256-signed token naming a session id; the server-side
// Store is authoritative, so deleting the record revokes the cookie.
package sessions

import (
	"context"
	"errors"

	"hoteldesk/internal/domain"
)

var ErrNoSession = errors.New("no session")

// Store persists session records. Get returns domain.ErrNotFound for unknown or expired ids.
type Store interface {
	Save(ctx context.Context, s domain.Session) error
	Get(ctx context.Context, id string) (*domain.Session, error)
	Delete(ctx context.Context, id string) error
}
