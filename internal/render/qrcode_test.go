package render_test

import (
	"bytes"
	"encoding/base64"
	"image/png"
	"strings"
	"testing"

	"github.com/dom/qr-code-website/internal/domain"
	"github.com/dom/qr-code-website/internal/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQRRenderer_Render(t *testing.T) {
	r := render.NewQRRenderer(0)

	tests := []struct {
		name    string
		text    string
		wantErr bool
	}{
		{name: "plain text", text: "hello"},
		{name: "url", text: "https://example.com/path?q=1"},
		{name: "unicode", text: "héllo wörld"},
		{name: "empty", text: "", wantErr: true},
		{name: "whitespace only", text: "  \t\n", wantErr: true},
		{name: "too long for the symbology", text: strings.Repeat("x", 5000), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := r.Render(tt.text)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, domain.ErrValidation)
				assert.Nil(t, out)
				return
			}

			require.NoError(t, err)
			img, err := png.Decode(bytes.NewReader(out))
			require.NoError(t, err, "output should be a PNG")
			assert.Equal(t, render.DefaultSize, img.Bounds().Dx())
			assert.Equal(t, render.DefaultSize, img.Bounds().Dy())
		})
	}
}

func TestQRRenderer_Deterministic(t *testing.T) {
	r := render.NewQRRenderer(128)

	first, err := r.Render("hello")
	require.NoError(t, err)
	second, err := r.Render("hello")
	require.NoError(t, err)

	assert.Equal(t, first, second)

	other, err := r.Render("hello!")
	require.NoError(t, err)
	assert.NotEqual(t, first, other)
}

func TestEncodeImage(t *testing.T) {
	out, err := render.NewQRRenderer(64).Render("hello")
	require.NoError(t, err)

	encoded := render.EncodeImage(out)
	decoded, err := base64.StdEncoding.DecodeString(encoded)
	require.NoError(t, err)
	assert.Equal(t, out, decoded)
}
