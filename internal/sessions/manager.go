package sessions

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"hoteldesk/internal/domain"
)

type Options struct {
	CookieName string
	TTL        time.Duration
	Secure     bool
	Now        func() time.Time
}

type Manager struct {
	store Store
	codec *TokenCodec
	opts  Options
}

func NewManager(store Store, secret []byte, opts Options) *Manager {
	if opts.CookieName == "" {
		opts.CookieName = "hd_session"
	}
	if opts.TTL <= 0 {
		opts.TTL = 24 * time.Hour
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	codec := NewTokenCodec(secret)
	codec.now = opts.Now
	return &Manager{store: store, codec: codec, opts: opts}
}

func (m *Manager) CookieName() string { return m.opts.CookieName }

// Start issues a fresh session for u. Any session named by the incoming cookie is revoked
// first; if that fails no new session is issued.
func (m *Manager) Start(c *fiber.Ctx, u *domain.User) (*domain.Session, error) {
	ctx := c.UserContext()
	if claims, err := m.claims(c); err == nil {
		if err := m.store.Delete(ctx, claims.ID); err != nil {
			return nil, fmt.Errorf("revoke previous session: %w", err)
		}
	}

	now := m.opts.Now()
	s := domain.Session{
		ID:        uuid.NewString(),
		UserID:    u.ID,
		Username:  u.Username,
		CreatedAt: now,
		ExpiresAt: now.Add(m.opts.TTL),
	}
	if err := m.store.Save(ctx, s); err != nil {
		return nil, err
	}
	tok, err := m.codec.Sign(s)
	if err != nil {
		return nil, err
	}
	m.setCookie(c, tok, s.ExpiresAt)
	return &s, nil
}

// Load resolves the request's session. ErrNoSession means the caller is anonymous;
// a forged or stale cookie also reads as anonymous via ErrInvalidToken.
func (m *Manager) Load(c *fiber.Ctx) (*domain.Session, error) {
	claims, err := m.claims(c)
	if err != nil {
		return nil, err
	}
	s, err := m.store.Get(c.UserContext(), claims.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrNoSession
		}
		return nil, fmt.Errorf("load session: %w", err)
	}
	if s.UserID != claims.UserID {
		return nil, ErrInvalidToken
	}
	return s, nil
}

// Destroy revokes the current session, if any, and expires the cookie. Always safe to call.
func (m *Manager) Destroy(c *fiber.Ctx) error {
	var err error
	if claims, cerr := m.claims(c); cerr == nil {
		err = m.store.Delete(c.UserContext(), claims.ID)
	}
	m.setCookie(c, "", time.Unix(0, 0))
	return err
}

func (m *Manager) claims(c *fiber.Ctx) (*Claims, error) {
	raw := c.Cookies(m.opts.CookieName)
	if raw == "" {
		return nil, ErrNoSession
	}
	return m.codec.Verify(raw)
}

func (m *Manager) setCookie(c *fiber.Ctx, value string, expires time.Time) {
	c.Cookie(&fiber.Cookie{
		Name:     m.opts.CookieName,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Secure:   m.opts.Secure,
	})
}
