package services

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"hoteldesk/internal/domain"
	"hoteldesk/internal/validate"
)

var (
	ErrBadCreds   = errors.New("invalid username or password")
	ErrUserExists = errors.New("a user with that username already exists")
)

// UserStore is the slice of repos.UserRepo the auth flow needs.
type UserStore interface {
	Create(ctx context.Context, u *domain.User) (int64, error)
	ByUsername(ctx context.Context, username string) (*domain.User, error)
	ByID(ctx context.Context, id int64) (*domain.User, error)
}

type RegisterInput struct {
	Username        string `form:"username" validate:"required"`
	Email           string `form:"email" validate:"required"`
	Phone           string `form:"phone" validate:"required"`
	Password        string `form:"password" validate:"required,maxbytes=72"`
	ConfirmPassword string `form:"confirm_password" validate:"required,eqfield=Password"`
}

type LoginInput struct {
	Username string `form:"username" validate:"required"`
	Password string `form:"password" validate:"required"`
}

type AuthService struct {
	Users UserStore
	Cost  int
}

func NewAuthService(users UserStore, cost int) *AuthService {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &AuthService{Users: users, Cost: cost}
}

// Register validates in, hashes the password and stores the user.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.Cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &domain.User{
		Username: in.Username,
		Email:    in.Email,
		Phone:    in.Phone,
		Hash:     string(hash),
	}
	id, err := s.Users.Create(ctx, u)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, ErrUserExists
		}
		return nil, err
	}
	u.ID = id
	return u, nil
}

func (s *AuthService) Login(ctx context.Context, in LoginInput) (*domain.User, error) {
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	u, err := s.Users.ByUsername(ctx, in.Username)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrBadCreds
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Hash), []byte(in.Password)) != nil {
		return nil, ErrBadCreds
	}
	return u, nil
}

func (s *AuthService) UserByID(ctx context.Context, id int64) (*domain.User, error) {
	return s.Users.ByID(ctx, id)
}
