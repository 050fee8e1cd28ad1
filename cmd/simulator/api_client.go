package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"time"
)

// APIClient handles HTTP communication with the backend as one browser: it
// keeps the session cookie between calls.
type APIClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewAPIClient creates a new API client with an empty cookie jar
func NewAPIClient(baseURL string) *APIClient {
	jar, _ := cookiejar.New(nil)
	return &APIClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Jar:     jar,
			Timeout: 30 * time.Second,
		},
	}
}

// Response types matching backend

type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type AuthResponse struct {
	Message string `json:"message"`
	User    User   `json:"user"`
}

type SavedCode struct {
	ID        int64     `json:"id"`
	Text      string    `json:"qr_text"`
	Image     string    `json:"qr_image"`
	Timestamp time.Time `json:"timestamp"`
}

// Register creates a new account and logs this client in
func (c *APIClient) Register(name, email, password string) (*User, error) {
	resp, err := c.post("/register", map[string]string{
		"name":     name,
		"email":    email,
		"password": password,
	})
	if err != nil {
		return nil, fmt.Errorf("register request failed: %w", err)
	}
	defer resp.Body.Close()

	if err := expectStatus(resp, http.StatusCreated, "register"); err != nil {
		return nil, err
	}

	var result AuthResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &result.User, nil
}

// Login starts a session for an existing account
func (c *APIClient) Login(email, password string) (*User, error) {
	resp, err := c.post("/login", map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return nil, fmt.Errorf("login request failed: %w", err)
	}
	defer resp.Body.Close()

	if err := expectStatus(resp, http.StatusOK, "login"); err != nil {
		return nil, err
	}

	var result AuthResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &result.User, nil
}

func (c *APIClient) Logout() error {
	resp, err := c.post("/user/logout", nil)
	if err != nil {
		return fmt.Errorf("logout request failed: %w", err)
	}
	defer resp.Body.Close()
	return expectStatus(resp, http.StatusOK, "logout")
}

// Generate renders text and returns the base64 PNG
func (c *APIClient) Generate(text string) (string, error) {
	resp, err := c.post("/generate-qr", map[string]string{"data": text})
	if err != nil {
		return "", fmt.Errorf("generate request failed: %w", err)
	}
	defer resp.Body.Close()

	if err := expectStatus(resp, http.StatusOK, "generate"); err != nil {
		return "", err
	}

	var result struct {
		QRCode string `json:"qr_code"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	return result.QRCode, nil
}

// Save stores an already rendered image in the history
func (c *APIClient) Save(text, image string) error {
	resp, err := c.post("/user/save-qr", map[string]string{
		"inputText": text,
		"qrImage":   image,
	})
	if err != nil {
		return fmt.Errorf("save request failed: %w", err)
	}
	defer resp.Body.Close()
	return expectStatus(resp, http.StatusCreated, "save")
}

func (c *APIClient) List() ([]SavedCode, error) {
	resp, err := c.do(http.MethodGet, "/user/qr-codes", nil)
	if err != nil {
		return nil, fmt.Errorf("list request failed: %w", err)
	}
	defer resp.Body.Close()

	if err := expectStatus(resp, http.StatusOK, "list"); err != nil {
		return nil, err
	}

	var codes []SavedCode
	if err := json.NewDecoder(resp.Body).Decode(&codes); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return codes, nil
}

func (c *APIClient) Delete(id int64) error {
	resp, err := c.do(http.MethodDelete, fmt.Sprintf("/user/delete-qr/%d", id), nil)
	if err != nil {
		return fmt.Errorf("delete request failed: %w", err)
	}
	defer resp.Body.Close()
	return expectStatus(resp, http.StatusOK, "delete")
}

// ProfileStatus returns the status code of GET /user/profile
func (c *APIClient) ProfileStatus() (int, error) {
	resp, err := c.do(http.MethodGet, "/user/profile", nil)
	if err != nil {
		return 0, fmt.Errorf("profile request failed: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	return resp.StatusCode, nil
}

func (c *APIClient) post(path string, body interface{}) (*http.Response, error) {
	return c.do(http.MethodPost, path, body)
}

func (c *APIClient) do(method, path string, body interface{}) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.httpClient.Do(req)
}

func expectStatus(resp *http.Response, want int, action string) error {
	if resp.StatusCode == want {
		return nil
	}
	bodyBytes, _ := io.ReadAll(resp.Body)
	return fmt.Errorf("%s failed (status %d): %s", action, resp.StatusCode, string(bodyBytes))
}
