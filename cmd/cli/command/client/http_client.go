package client

// http_client.go = typed client for the commenthub REST API.

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"commenthub/internal/microservices/http-api/dto"

	"golang.org/x/time/rate"
)

// APIError is a non-2xx response from the server
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("request failed with status %d", e.StatusCode)
	}
	return fmt.Sprintf("%s (status %d)", e.Message, e.StatusCode)
}

// HTTPClient talks to the API. Requests are paced by a token bucket so
// scripted use cannot flood the server.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	token      string
	limiter    *rate.Limiter
}

// NewHTTPClient builds a client for apiURL, the server root (e.g. http://localhost:8080).
func NewHTTPClient(apiURL string) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(apiURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		limiter: rate.NewLimiter(rate.Limit(10), 20), // 10 req/sec, burst 20
	}
}

func (c *HTTPClient) SetToken(token string) {
	c.token = token
}

func (c *HTTPClient) BaseURL() string {
	return c.baseURL
}

// do sends one JSON request and decodes the response into out when non-nil.
func (c *HTTPClient) do(ctx context.Context, method, path string, body, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var payload struct {
			Error string `json:"error"`
		}
		if json.NewDecoder(resp.Body).Decode(&payload) == nil {
			apiErr.Message = payload.Error
		}
		return apiErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Auth

func (c *HTTPClient) Register(ctx context.Context, request *dto.RegisterRequest) (*dto.RegisterResponse, error) {
	var result dto.RegisterResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", request, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) Login(ctx context.Context, request *dto.LoginRequest) (*dto.AuthResponse, error) {
	var result dto.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", request, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) Verify(ctx context.Context) (*dto.VerifyResponse, error) {
	var result dto.VerifyResponse
	if err := c.do(ctx, http.MethodGet, "/api/auth/verify", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Comments

func (c *HTTPClient) ListComments(ctx context.Context) ([]*dto.CommentTreeResponse, error) {
	var result []*dto.CommentTreeResponse
	if err := c.do(ctx, http.MethodGet, "/api/comments", nil, &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *HTTPClient) GetComment(ctx context.Context, id string) (*dto.CommentDetailResponse, error) {
	var result dto.CommentDetailResponse
	if err := c.do(ctx, http.MethodGet, "/api/comments/"+id, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) ListReplies(ctx context.Context, parentID string) ([]*dto.CommentTreeResponse, error) {
	var result []*dto.CommentTreeResponse
	if err := c.do(ctx, http.MethodGet, "/api/comments/"+parentID+"/replies", nil, &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *HTTPClient) CreateComment(ctx context.Context, content string, parentID *string) (*dto.CommentResponse, error) {
	var result dto.CommentResponse
	body := dto.CreateCommentDTO{Content: content, ParentID: parentID}
	if err := c.do(ctx, http.MethodPost, "/api/comments", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) UpdateComment(ctx context.Context, id, content string) (*dto.CommentResponse, error) {
	var result dto.CommentResponse
	body := dto.UpdateCommentDTO{Content: content}
	if err := c.do(ctx, http.MethodPut, "/api/comments/"+id, body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// DeleteComment soft-deletes and returns how long the comment stays restorable.
func (c *HTTPClient) DeleteComment(ctx context.Context, id string) (time.Duration, error) {
	var result struct {
		RestoreSecondsRemaining int64 `json:"restore_seconds_remaining"`
	}
	if err := c.do(ctx, http.MethodDelete, "/api/comments/"+id, nil, &result); err != nil {
		return 0, err
	}
	return time.Duration(result.RestoreSecondsRemaining) * time.Second, nil
}

func (c *HTTPClient) RestoreComment(ctx context.Context, id string) (*dto.CommentResponse, error) {
	var result dto.CommentResponse
	if err := c.do(ctx, http.MethodPost, "/api/comments/"+id+"/restore", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) ListDeleted(ctx context.Context) ([]dto.DeletedCommentResponse, error) {
	var result []dto.DeletedCommentResponse
	if err := c.do(ctx, http.MethodGet, "/api/comments/deleted/user", nil, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// Notifications

func (c *HTTPClient) ListNotifications(ctx context.Context, unreadOnly bool) ([]dto.NotificationResponse, error) {
	path := "/api/notifications"
	if unreadOnly {
		path += "/unread"
	}
	var result struct {
		Notifications []dto.NotificationResponse `json:"notifications"`
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return result.Notifications, nil
}

func (c *HTTPClient) UnreadCount(ctx context.Context) (int64, error) {
	var result dto.UnreadCountResponse
	if err := c.do(ctx, http.MethodGet, "/api/notifications/unread/count", nil, &result); err != nil {
		return 0, err
	}
	return result.Count, nil
}

func (c *HTTPClient) MarkNotification(ctx context.Context, id string, read bool) (*dto.NotificationResponse, error) {
	action := "/unread"
	if read {
		action = "/read"
	}
	var result dto.NotificationResponse
	if err := c.do(ctx, http.MethodPost, "/api/notifications/"+id+action, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) MarkAllNotificationsRead(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/notifications/read-all", nil, nil)
}

func (c *HTTPClient) DeleteNotification(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/notifications/"+id, nil, nil)
}
