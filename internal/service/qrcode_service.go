package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/dom/qr-code-website/internal/domain"
	"github.com/dom/qr-code-website/internal/render"
	"github.com/dom/qr-code-website/internal/repository"
)

const dataURLPrefix = "data:image/png;base64,"

// QRCodeService renders codes and manages each user's saved history.
type QRCodeService struct {
	repo     repository.QRCodeRepository
	renderer render.Renderer
	now      func() time.Time
}

func NewQRCodeService(repo repository.QRCodeRepository, renderer render.Renderer) *QRCodeService {
	return &QRCodeService{
		repo:     repo,
		renderer: renderer,
		now:      time.Now,
	}
}

// Render returns the base64 PNG for text without storing it.
func (s *QRCodeService) Render(text string) (string, error) {
	png, err := s.renderer.Render(text)
	if err != nil {
		return "", err
	}
	return render.EncodeImage(png), nil
}

// RenderAndSave renders text and records the result in userID's history.
func (s *QRCodeService) RenderAndSave(ctx context.Context, userID int64, text string) (string, error) {
	image, err := s.Render(text)
	if err != nil {
		return "", err
	}
	if _, err := s.Save(ctx, userID, text, image); err != nil {
		return "", err
	}
	return image, nil
}

// Save stores an already rendered image. image must be standard base64, with
// or without a data URL prefix; it is stored without the prefix.
func (s *QRCodeService) Save(ctx context.Context, userID int64, text, image string) (*domain.QRCode, error) {
	image = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(image), dataURLPrefix))
	if strings.TrimSpace(text) == "" || image == "" {
		return nil, domain.NewValidationError("Input text and QR image are required.")
	}
	if _, err := base64.StdEncoding.DecodeString(image); err != nil {
		return nil, domain.NewValidationError("QR image must be base64 encoded.")
	}

	code := &domain.QRCode{
		UserID: userID,
		Text:   text,
		Image:  image,
		// postgres keeps microseconds
		CreatedAt: s.now().UTC().Truncate(time.Microsecond),
	}
	if err := s.repo.Create(ctx, code); err != nil {
		return nil, fmt.Errorf("failed to save qr code: %w", err)
	}
	return code, nil
}

// List returns userID's codes, newest first. It never returns nil.
func (s *QRCodeService) List(ctx context.Context, userID int64) ([]*domain.QRCode, error) {
	codes, err := s.repo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list qr codes: %w", err)
	}
	if codes == nil {
		codes = []*domain.QRCode{}
	}
	return codes, nil
}

// Delete removes one of userID's codes. A code that does not exist and a code
// owned by someone else both yield domain.ErrNotFound.
func (s *QRCodeService) Delete(ctx context.Context, userID, id int64) error {
	deleted, err := s.repo.DeleteByOwner(ctx, userID, id)
	if err != nil {
		return fmt.Errorf("failed to delete qr code: %w", err)
	}
	if !deleted {
		return domain.NewNotFoundError("QR code")
	}
	return nil
}
