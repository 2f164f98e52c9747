// Package botapi provides the HTTP client the Telegram bot uses to talk
// to the friends directory API.
package botapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	defaultTimeout = 10 * time.Second
	askTimeout     = 15 * time.Second
)

// Friend mirrors the API's friend representation.
type Friend struct {
	ID                    int64   `json:"id"`
	Name                  string  `json:"name"`
	Profession            string  `json:"profession"`
	ProfessionDescription *string `json:"profession_description"`
	PhotoURL              string  `json:"photo_url"`
}

// APIError is a non-2xx response from the directory API.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (status %d): %s", e.StatusCode, e.Detail)
}

// NotFound reports whether the error is a 404 from the API.
func NotFound(err error) bool {
	apiErr, ok := err.(*APIError)
	return ok && apiErr.StatusCode == http.StatusNotFound
}

// Client calls the friends directory API.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

// NewClient creates a directory API client for the given base URL.
func NewClient(baseURL string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
		logger:  logger.With("component", "botapi"),
	}
}

// PhotoURL resolves a friend's photo path against the API base URL.
func (c *Client) PhotoURL(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return c.baseURL + path
}

// ListFriends fetches all friends in insertion order.
func (c *Client) ListFriends(ctx context.Context) ([]Friend, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/friends", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	var friends []Friend
	if err := c.do(req, &friends); err != nil {
		return nil, err
	}
	return friends, nil
}

// GetFriend fetches a single friend by ID.
func (c *Client) GetFriend(ctx context.Context, id int64) (*Friend, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/friends/%d", c.baseURL, id), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	var friend Friend
	if err := c.do(req, &friend); err != nil {
		return nil, err
	}
	return &friend, nil
}

// CreateFriend uploads a new friend record with the photo at photoPath.
func (c *Client) CreateFriend(ctx context.Context, name, profession, description, photoPath string) (*Friend, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	if err := mw.WriteField("name", name); err != nil {
		return nil, fmt.Errorf("failed to write form field: %w", err)
	}
	if err := mw.WriteField("profession", profession); err != nil {
		return nil, fmt.Errorf("failed to write form field: %w", err)
	}
	if description != "" {
		if err := mw.WriteField("profession_description", description); err != nil {
			return nil, fmt.Errorf("failed to write form field: %w", err)
		}
	}

	photo, err := os.Open(photoPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open photo: %w", err)
	}
	defer photo.Close()

	fw, err := mw.CreateFormFile("photo", filepath.Base(photoPath))
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(fw, photo); err != nil {
		return nil, fmt.Errorf("failed to copy photo: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/friends", &body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var friend Friend
	if err := c.do(req, &friend); err != nil {
		return nil, err
	}
	return &friend, nil
}

// Ask sends a question about a friend and returns the generated answer.
// Generation can be slow, so this call uses a longer timeout than the rest.
func (c *Client) Ask(ctx context.Context, id int64, question string) (string, error) {
	payload, err := json.Marshal(map[string]string{"question": question})
	if err != nil {
		return "", fmt.Errorf("failed to encode question: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, askTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		fmt.Sprintf("%s/friends/%d/ask", c.baseURL, id), bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var result struct {
		Answer string `json:"answer"`
	}
	if err := c.do(req, &result); err != nil {
		return "", err
	}
	return result.Answer, nil
}

// do executes the request and decodes a JSON response into out. Non-2xx
// responses are returned as *APIError with the detail message from the body.
func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Detail: "unknown error"}

		var body struct {
			Detail string `json:"detail"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && body.Detail != "" {
			apiErr.Detail = body.Detail
		}

		c.logger.WarnContext(req.Context(), "API request failed",
			"method", req.Method,
			"url", req.URL.String(),
			"status", resp.StatusCode,
			"detail", apiErr.Detail)
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// DeleteFriend removes a friend by ID.
func (c *Client) DeleteFriend(ctx context.Context, id int64) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, fmt.Sprintf("%s/friends/%d", c.baseURL, id), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	return c.do(req, nil)
}

// Healthy reports whether the API's health endpoint returns OK.
func (c *Client) Healthy(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return false
	}
	return c.do(req, nil) == nil
}
