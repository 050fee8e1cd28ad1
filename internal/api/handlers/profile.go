package handlers

import (
	"net/http"

	"github.com/dom/qr-code-website/internal/api/middleware"
	"github.com/dom/qr-code-website/internal/domain"
	"github.com/dom/qr-code-website/internal/service"
)

type ProfileHandler struct {
	authService *service.AuthService
}

func NewProfileHandler(authService *service.AuthService) *ProfileHandler {
	return &ProfileHandler{authService: authService}
}

// GetProfile handles GET /user/profile.
func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) error {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		return domain.ErrAuthentication
	}

	user, err := h.authService.GetUserByID(r.Context(), userID)
	if err != nil {
		return err
	}

	writeJSON(w, http.StatusOK, newUserResponse(user))
	return nil
}
