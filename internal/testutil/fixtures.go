package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/dom/qr-code-website/internal/domain"
	"github.com/dom/qr-code-website/internal/render"
	"github.com/dom/qr-code-website/internal/service"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserBuilder creates test users with a builder pattern
type UserBuilder struct {
	name     string
	email    string
	password string
}

// NewUserBuilder creates a new UserBuilder with default values
func NewUserBuilder() *UserBuilder {
	suffix := uuid.New().String()[:8]
	return &UserBuilder{
		name:     fmt.Sprintf("Test User %s", suffix),
		email:    fmt.Sprintf("user_%s@example.com", suffix),
		password: "testpassword123",
	}
}

func (b *UserBuilder) WithName(name string) *UserBuilder {
	b.name = name
	return b
}

func (b *UserBuilder) WithEmail(email string) *UserBuilder {
	b.email = email
	return b
}

func (b *UserBuilder) WithPassword(password string) *UserBuilder {
	b.password = password
	return b
}

// Build creates the user in the database and returns the user with the raw password
func (b *UserBuilder) Build(t *testing.T, db *gorm.DB) (*domain.User, string) {
	t.Helper()

	hash, err := service.HashPassword(b.password, TestArgon2Params)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &domain.User{
		Name:         b.name,
		Email:        service.NormalizeEmail(b.email),
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	return user, b.password
}

// BuildAndLogin registers the user through the API and returns a client
// holding its session cookie.
func (b *UserBuilder) BuildAndLogin(t *testing.T, ts *TestServer) (*domain.User, *http.Client) {
	t.Helper()

	client := ts.NewClient(t)
	resp := DoJSON(t, client, http.MethodPost, ts.URL("/register"), map[string]string{
		"name":     b.name,
		"email":    b.email,
		"password": b.password,
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("unexpected status code: %d: %s", resp.StatusCode, body)
	}

	var authResp AuthResponse
	if err := json.NewDecoder(resp.Body).Decode(&authResp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	return &domain.User{
		ID:    authResp.User.ID,
		Name:  authResp.User.Name,
		Email: authResp.User.Email,
	}, client
}

// AuthResponse matches the register and login response
type AuthResponse struct {
	Message string `json:"message"`
	User    struct {
		ID    int64  `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
	} `json:"user"`
}

// QRCodeBuilder creates saved codes directly in the database
type QRCodeBuilder struct {
	owner     *domain.User
	text      string
	createdAt time.Time
}

func NewQRCodeBuilder() *QRCodeBuilder {
	return &QRCodeBuilder{
		text:      "https://example.com/" + uuid.New().String()[:8],
		createdAt: time.Now().UTC().Truncate(time.Microsecond),
	}
}

func (b *QRCodeBuilder) WithOwner(user *domain.User) *QRCodeBuilder {
	b.owner = user
	return b
}

func (b *QRCodeBuilder) WithText(text string) *QRCodeBuilder {
	b.text = text
	return b
}

func (b *QRCodeBuilder) WithCreatedAt(at time.Time) *QRCodeBuilder {
	b.createdAt = at.UTC().Truncate(time.Microsecond)
	return b
}

// Build renders the text and stores the code, creating an owner when none was given
func (b *QRCodeBuilder) Build(t *testing.T, db *gorm.DB) *domain.QRCode {
	t.Helper()

	if b.owner == nil {
		user, _ := NewUserBuilder().Build(t, db)
		b.owner = user
	}

	png, err := render.NewQRRenderer(render.DefaultSize).Render(b.text)
	if err != nil {
		t.Fatalf("failed to render qr code: %v", err)
	}

	code := &domain.QRCode{
		UserID:    b.owner.ID,
		Text:      b.text,
		Image:     render.EncodeImage(png),
		CreatedAt: b.createdAt,
	}

	if err := db.Create(code).Error; err != nil {
		t.Fatalf("failed to create qr code: %v", err)
	}

	return code
}

// DoJSON sends body as JSON and returns the response. A nil body sends none.
func DoJSON(t *testing.T, client *http.Client, method, url string, body any) *http.Response {
	t.Helper()

	var reader io.Reader = http.NoBody
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(context.Background(), method, url, reader)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request %s %s failed: %v", method, url, err)
	}
	return resp
}
