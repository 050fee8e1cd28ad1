package service

import (
	"github.com/dom/qr-code-website/internal/config"
	"github.com/dom/qr-code-website/internal/render"
	"github.com/dom/qr-code-website/internal/repository"
)

type Services struct {
	Auth    *AuthService
	Session *SessionService
	QRCode  *QRCodeService
}

func NewServices(repos *repository.Repositories, cfg *config.Config, params Argon2Params) (*Services, error) {
	auth, err := NewAuthService(repos.User, params)
	if err != nil {
		return nil, err
	}

	return &Services{
		Auth: auth,
		Session: NewSessionService(repos.Session, SessionConfig{
			Secret:      []byte(cfg.SessionSecret),
			TTL:         cfg.SessionTTL,
			Sliding:     cfg.SessionSliding,
			MaxLifetime: cfg.SessionMaxLifetime,
		}),
		QRCode: NewQRCodeService(repos.QRCode, render.NewQRRenderer(cfg.QRCodeSize)),
	}, nil
}
