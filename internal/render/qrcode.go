// Package render turns text into QR code images.
package render

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/dom/qr-code-website/internal/domain"
	skipqrcode "github.com/skip2/go-qrcode"
)

const DefaultSize = 256

// Renderer produces an image for the given text. Implementations must be
// deterministic and fail only on invalid input.
type Renderer interface {
	Render(text string) ([]byte, error)
}

type QRRenderer struct {
	size  int
	level skipqrcode.RecoveryLevel
}

func NewQRRenderer(size int) *QRRenderer {
	if size <= 0 {
		size = DefaultSize
	}
	return &QRRenderer{size: size, level: skipqrcode.Medium}
}

// Render returns a PNG of text. Empty or whitespace-only text and text too
// long for the symbology are validation errors.
func (r *QRRenderer) Render(text string) ([]byte, error) {
	if strings.TrimSpace(text) == "" {
		return nil, domain.NewValidationError("No data provided")
	}

	png, err := skipqrcode.Encode(text, r.level, r.size)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.NewValidationError("Data cannot be encoded as a QR code"), err)
	}
	return png, nil
}

// EncodeImage is the canonical stored and transported form of an image.
func EncodeImage(png []byte) string {
	return base64.StdEncoding.EncodeToString(png)
}
