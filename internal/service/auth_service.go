package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dom/qr-code-website/internal/domain"
	"github.com/dom/qr-code-website/internal/repository"
)

// AuthService is the credential store: registration, password verification
// and user lookup.
type AuthService struct {
	userRepo repository.UserRepository
	params   Argon2Params
	now      func() time.Time

	// dummyHash is compared against when the email is unknown so that both
	// failure paths do the same work.
	dummyHash string
}

func NewAuthService(userRepo repository.UserRepository, params Argon2Params) (*AuthService, error) {
	dummy, err := HashPassword("not-a-real-password", params)
	if err != nil {
		return nil, err
	}
	return &AuthService{
		userRepo:  userRepo,
		params:    params,
		now:       time.Now,
		dummyHash: dummy,
	}, nil
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

type LoginInput struct {
	Email    string
	Password string
}

// NormalizeEmail is the store's email policy: addresses compare
// case-insensitively and without surrounding space.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	name := strings.TrimSpace(input.Name)
	email := NormalizeEmail(input.Email)
	if name == "" || email == "" || input.Password == "" {
		return nil, domain.NewValidationError("Name, email, and password are required.")
	}

	hash, err := HashPassword(input.Password, s.params)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    s.now().UTC(),
	}

	// No existence pre-check: the unique index decides.
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return nil, domain.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// Verify returns domain.ErrInvalidCredentials both for unknown emails and for
// wrong passwords.
func (s *AuthService) Verify(ctx context.Context, input LoginInput) (*domain.User, error) {
	email := NormalizeEmail(input.Email)
	if email == "" || input.Password == "" {
		return nil, domain.NewValidationError("Email and password are required.")
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			_, _ = ComparePassword(s.dummyHash, input.Password)
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	ok, err := ComparePassword(user.PasswordHash, input.Password)
	if err != nil || !ok {
		return nil, domain.ErrInvalidCredentials
	}

	return user, nil
}

func (s *AuthService) GetUserByID(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NewNotFoundError("User")
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}
