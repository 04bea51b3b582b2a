package handlers

import (
	"github.com/jmoiron/sqlx"

	"hoteldesk/internal/config"
	"hoteldesk/internal/repos"
	"hoteldesk/internal/services"
	"hoteldesk/internal/sessions"
)

type Deps struct {
	DB       *sqlx.DB
	Sessions *sessions.Manager

	AuthHandler  *AuthHandler
	PagesHandler *PagesHandler
	HotelHandler *HotelHandler
}

func NewDeps(db *sqlx.DB, cfg config.Config, store sessions.Store) *Deps {
	userRepo := repos.NewUserRepo(db)
	hotelRepo := repos.NewHotelRepo(db)

	authSvc := services.NewAuthService(userRepo, cfg.BcryptCost)
	hotelSvc := services.NewHotelService(hotelRepo)

	mgr := sessions.NewManager(store, []byte(cfg.SessionSecret), sessions.Options{
		CookieName: cfg.SessionCookie,
		TTL:        cfg.SessionTTL,
		Secure:     cfg.CookieSecure,
	})

	return &Deps{
		DB:           db,
		Sessions:     mgr,
		AuthHandler:  &AuthHandler{Auth: authSvc, Sessions: mgr},
		PagesHandler: &PagesHandler{Auth: authSvc, Sessions: mgr},
		HotelHandler: &HotelHandler{Hotels: hotelSvc},
	}
}
