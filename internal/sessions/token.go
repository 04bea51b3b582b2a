package sessions

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"hoteldesk/internal/domain"
)

var ErrInvalidToken = errors.New("invalid session token")

type Claims struct {
	jwt.RegisteredClaims
	UserID   int64  `json:"uid"`
	Username string `json:"usr"`
}

type TokenCodec struct {
	secret []byte
	now    func() time.Time
}

func NewTokenCodec(secret []byte) *TokenCodec {
	return &TokenCodec{secret: secret, now: time.Now}
}

func (t *TokenCodec) Sign(s domain.Session) (string, error) {
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        s.ID,
			IssuedAt:  jwt.NewNumericDate(s.CreatedAt),
			ExpiresAt: jwt.NewNumericDate(s.ExpiresAt),
		},
		UserID:   s.UserID,
		Username: s.Username,
	})
	signed, err := tok.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// Verify checks signature, algorithm and expiry and returns the embedded claims.
func (t *TokenCodec) Verify(raw string) (*Claims, error) {
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil || !tok.Valid {
		return nil, ErrInvalidToken
	}
	if claims.ID == "" || claims.UserID == 0 {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
