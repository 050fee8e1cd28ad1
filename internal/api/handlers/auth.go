package handlers

import (
	"errors"
	"net/http"

	"github.com/dom/qr-code-website/internal/api/middleware"
	"github.com/dom/qr-code-website/internal/domain"
	"github.com/dom/qr-code-website/internal/service"
	"github.com/go-playground/validator/v10"
)

type AuthHandler struct {
	authService    *service.AuthService
	sessionService *service.SessionService
	cookies        *middleware.SessionCookie
	validate       *validator.Validate
}

func NewAuthHandler(authService *service.AuthService, sessionService *service.SessionService, cookies *middleware.SessionCookie) *AuthHandler {
	return &AuthHandler{
		authService:    authService,
		sessionService: sessionService,
		cookies:        cookies,
		validate:       validator.New(),
	}
}

type RegisterRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	Message string       `json:"message"`
	User    UserResponse `json:"user"`
}

// Register handles POST /register. A new account is logged in straight away.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) error {
	var req RegisterRequest
	if err := decodeRequest(w, r, h.validate, &req, "Name, email, and password are required."); err != nil {
		return err
	}

	user, err := h.authService.Register(r.Context(), service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return err
	}
	middleware.IncrementRegistrations()

	if err := h.startSession(w, r, user); err != nil {
		return err
	}

	writeJSON(w, http.StatusCreated, AuthResponse{
		Message: "User registered successfully!",
		User:    newUserResponse(user),
	})
	return nil
}

// Login handles POST /login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) error {
	var req LoginRequest
	if err := decodeRequest(w, r, h.validate, &req, "Email and password are required."); err != nil {
		return err
	}

	user, err := h.authService.Verify(r.Context(), service.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			middleware.IncrementLogins("invalid")
		}
		return err
	}
	middleware.IncrementLogins("success")

	if err := h.startSession(w, r, user); err != nil {
		return err
	}

	writeJSON(w, http.StatusOK, AuthResponse{
		Message: "Login successful!",
		User:    newUserResponse(user),
	})
	return nil
}

// Logout handles POST /user/logout. It succeeds with or without a session.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) error {
	if handle, ok := h.cookies.Read(r); ok {
		if err := h.sessionService.Destroy(r.Context(), handle); err != nil {
			return err
		}
	}
	h.cookies.Clear(w)

	writeJSON(w, http.StatusOK, MessageResponse{Message: "Logged out successfully."})
	return nil
}

// startSession replaces any session the client already had.
func (h *AuthHandler) startSession(w http.ResponseWriter, r *http.Request, user *domain.User) error {
	if old, ok := h.cookies.Read(r); ok {
		if err := h.sessionService.Destroy(r.Context(), old); err != nil {
			return err
		}
	}

	handle, _, err := h.sessionService.Create(r.Context(), user.ID, domain.ClientInfo{
		UserAgent:  r.UserAgent(),
		RemoteAddr: r.RemoteAddr,
	})
	if err != nil {
		return err
	}

	h.cookies.Set(w, handle, h.sessionService.TTL())
	return nil
}
