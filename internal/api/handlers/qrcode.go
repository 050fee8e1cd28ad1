package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/dom/qr-code-website/internal/api/middleware"
	"github.com/dom/qr-code-website/internal/domain"
	"github.com/dom/qr-code-website/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

type QRCodeHandler struct {
	qrService *service.QRCodeService
	autoSave  bool
	validate  *validator.Validate
}

// NewQRCodeHandler builds the handler. With autoSave, codes rendered by a
// logged-in user are added to their history.
func NewQRCodeHandler(qrService *service.QRCodeService, autoSave bool) *QRCodeHandler {
	return &QRCodeHandler{
		qrService: qrService,
		autoSave:  autoSave,
		validate:  validator.New(),
	}
}

type GenerateRequest struct {
	Data string `json:"data" validate:"required"`
}

type GenerateResponse struct {
	QRCode string `json:"qr_code"`
}

type SaveRequest struct {
	InputText string `json:"inputText" validate:"required"`
	QRImage   string `json:"qrImage" validate:"required"`
}

type QRCodeResponse struct {
	ID        int64     `json:"id"`
	Text      string    `json:"qr_text"`
	Image     string    `json:"qr_image"`
	Timestamp time.Time `json:"timestamp"`
}

// Generate handles POST /generate-qr.
func (h *QRCodeHandler) Generate(w http.ResponseWriter, r *http.Request) error {
	var req GenerateRequest
	if err := decodeRequest(w, r, h.validate, &req, "No data provided"); err != nil {
		return err
	}

	var (
		image string
		err   error
	)
	userID, loggedIn := middleware.GetUserID(r.Context())
	if loggedIn && h.autoSave {
		image, err = h.qrService.RenderAndSave(r.Context(), userID, req.Data)
	} else {
		image, err = h.qrService.Render(req.Data)
	}
	if err != nil {
		return err
	}

	middleware.IncrementCodesRendered()
	if loggedIn && h.autoSave {
		middleware.IncrementCodesSaved()
	}

	writeJSON(w, http.StatusOK, GenerateResponse{QRCode: image})
	return nil
}

// List handles GET /user/qr-codes.
func (h *QRCodeHandler) List(w http.ResponseWriter, r *http.Request) error {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		return domain.ErrAuthentication
	}

	codes, err := h.qrService.List(r.Context(), userID)
	if err != nil {
		return err
	}

	resp := make([]QRCodeResponse, 0, len(codes))
	for _, code := range codes {
		resp = append(resp, QRCodeResponse{
			ID:        code.ID,
			Text:      code.Text,
			Image:     code.Image,
			Timestamp: code.CreatedAt.UTC(),
		})
	}

	writeJSON(w, http.StatusOK, resp)
	return nil
}

// Save handles POST /user/save-qr.
func (h *QRCodeHandler) Save(w http.ResponseWriter, r *http.Request) error {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		return domain.ErrAuthentication
	}

	var req SaveRequest
	if err := decodeRequest(w, r, h.validate, &req, "Input text and QR image are required."); err != nil {
		return err
	}

	if _, err := h.qrService.Save(r.Context(), userID, req.InputText, req.QRImage); err != nil {
		return err
	}
	middleware.IncrementCodesSaved()

	writeJSON(w, http.StatusCreated, MessageResponse{Message: "QR code saved successfully!"})
	return nil
}

// Delete handles DELETE /user/delete-qr/{id}.
func (h *QRCodeHandler) Delete(w http.ResponseWriter, r *http.Request) error {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		return domain.ErrAuthentication
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return domain.NewValidationError("Invalid QR code id")
	}

	if err := h.qrService.Delete(r.Context(), userID, id); err != nil {
		return err
	}
	middleware.IncrementCodesDeleted()

	writeJSON(w, http.StatusOK, MessageResponse{Message: "QR code deleted successfully."})
	return nil
}
