// Package client is a Go client for the meeting secretary REST API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	authDTO "github.com/johnquangdev/meeting-secretary/internal/adapter/dto/auth"
	integrationDTO "github.com/johnquangdev/meeting-secretary/internal/adapter/dto/integration"
	meetingDTO "github.com/johnquangdev/meeting-secretary/internal/adapter/dto/meeting"
	taskDTO "github.com/johnquangdev/meeting-secretary/internal/adapter/dto/task"
)

// Response types shared with the server
type (
	User        = authDTO.UserResponse
	Meeting     = meetingDTO.MeetingResponse
	Task        = taskDTO.TaskResponse
	SyncResult  = taskDTO.SyncTaskResponse
	Integration = integrationDTO.IntegrationResponse
)

// APIError is a non-2xx answer decoded from the error envelope
type APIError struct {
	StatusCode int
	Code       int
	Message    string
	Info       string
	Details    map[string]string
}

func (e *APIError) Error() string {
	if e.Info != "" {
		return fmt.Sprintf("api error %d (%d): %s: %s", e.StatusCode, e.Code, e.Message, e.Info)
	}
	return fmt.Sprintf("api error %d (%d): %s", e.StatusCode, e.Code, e.Message)
}

// IsStatus reports whether err is an APIError with the given HTTP status
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == status
}

type envelope struct {
	Code    int               `json:"code"`
	Message string            `json:"message"`
	Data    json.RawMessage   `json:"data"`
	Info    string            `json:"info"`
	Details map[string]string `json:"details"`
}

// Client calls the REST API rooted at baseURL (e.g. http://localhost:8080/v1)
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithLogger sets the logger used for request diagnostics
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a client
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 60 * time.Second},
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Register creates a password account
func (c *Client) Register(ctx context.Context, email, password string, fullName *string) (*User, error) {
	body := map[string]interface{}{"email": email, "password": password}
	if fullName != nil {
		body["full_name"] = *fullName
	}
	var out User
	if err := c.doJSON(ctx, nil, http.MethodPost, "/auth/register", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Login exchanges credentials for a new session
func (c *Client) Login(ctx context.Context, email, password string) (*Session, error) {
	form := url.Values{"username": {email}, "password": {password}}
	req, err := c.newRequest(ctx, http.MethodPost, "/auth/login", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var out authDTO.TokenResponse
	if err := c.do(nil, req, &out); err != nil {
		return nil, err
	}
	return NewSession(out.AccessToken), nil
}

// Me returns the session's user
func (c *Client) Me(ctx context.Context, s *Session) (*User, error) {
	var out User
	if err := c.doJSON(ctx, s, http.MethodGet, "/auth/me", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UploadInput describes a recording to upload
type UploadInput struct {
	Filename    string
	Title       string
	IsLocalOnly bool
	Audio       io.Reader
}

// UploadMeeting streams a recording as multipart form data
func (c *Client) UploadMeeting(ctx context.Context, s *Session, in UploadInput) (*Meeting, error) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		err := writeUpload(mw, in)
		if err == nil {
			err = mw.Close()
		}
		pw.CloseWithError(err)
	}()

	req, err := c.newRequest(ctx, http.MethodPost, "/meetings/upload", pr)
	if err != nil {
		pr.Close()
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var out Meeting
	if err := c.do(s, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func writeUpload(mw *multipart.Writer, in UploadInput) error {
	if in.Title != "" {
		if err := mw.WriteField("title", in.Title); err != nil {
			return err
		}
	}
	if err := mw.WriteField("is_local_only", strconv.FormatBool(in.IsLocalOnly)); err != nil {
		return err
	}
	fw, err := mw.CreateFormFile("file", in.Filename)
	if err != nil {
		return err
	}
	_, err = io.Copy(fw, in.Audio)
	return err
}

// ListMeetings returns the session user's meetings
func (c *Client) ListMeetings(ctx context.Context, s *Session) ([]Meeting, error) {
	var out []Meeting
	if err := c.doJSON(ctx, s, http.MethodGet, "/meetings", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetMeeting returns one meeting with its tasks
func (c *Client) GetMeeting(ctx context.Context, s *Session, id string) (*Meeting, error) {
	var out Meeting
	if err := c.doJSON(ctx, s, http.MethodGet, "/meetings/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteMeeting removes a meeting and its tasks
func (c *Client) DeleteMeeting(ctx context.Context, s *Session, id string) error {
	return c.doJSON(ctx, s, http.MethodDelete, "/meetings/"+url.PathEscape(id), nil, nil)
}

// TaskFilter narrows ListTasks
type TaskFilter struct {
	MeetingID string
	Status    string
}

// ListTasks returns tasks matching filter
func (c *Client) ListTasks(ctx context.Context, s *Session, filter TaskFilter) ([]Task, error) {
	q := url.Values{}
	if filter.MeetingID != "" {
		q.Set("meeting_id", filter.MeetingID)
	}
	if filter.Status != "" {
		q.Set("status_filter", filter.Status)
	}
	path := "/tasks"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var out []Task
	if err := c.doJSON(ctx, s, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetTask returns one task
func (c *Client) GetTask(ctx context.Context, s *Session, id string) (*Task, error) {
	var out Task
	if err := c.doJSON(ctx, s, http.MethodGet, "/tasks/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// TaskUpdate is a partial update; nil fields are not sent
type TaskUpdate struct {
	Description   *string
	OwnerName     *string
	Deadline      *time.Time
	ClearDeadline bool
	Priority      *string
	Status        *string
}

// MarshalJSON sends only supplied fields and an explicit null to clear the deadline
func (u TaskUpdate) MarshalJSON() ([]byte, error) {
	m := map[string]interface{}{}
	if u.Description != nil {
		m["description"] = *u.Description
	}
	if u.OwnerName != nil {
		m["owner_name"] = *u.OwnerName
	}
	if u.Priority != nil {
		m["priority"] = *u.Priority
	}
	if u.Status != nil {
		m["status"] = *u.Status
	}
	switch {
	case u.ClearDeadline:
		m["deadline"] = nil
	case u.Deadline != nil:
		m["deadline"] = u.Deadline.UTC().Format("2006-01-02")
	}
	return json.Marshal(m)
}

// UpdateTask applies a partial update
func (c *Client) UpdateTask(ctx context.Context, s *Session, id string, update TaskUpdate) (*Task, error) {
	var out Task
	if err := c.doJSON(ctx, s, http.MethodPatch, "/tasks/"+url.PathEscape(id), update, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ConfirmTask moves a pending task to confirmed
func (c *Client) ConfirmTask(ctx context.Context, s *Session, id string) (*Task, error) {
	var out Task
	if err := c.doJSON(ctx, s, http.MethodPost, "/tasks/"+url.PathEscape(id)+"/confirm", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteTask removes a task
func (c *Client) DeleteTask(ctx context.Context, s *Session, id string) error {
	return c.doJSON(ctx, s, http.MethodDelete, "/tasks/"+url.PathEscape(id), nil, nil)
}

// SyncRequest selects the tracker and an optional target inside it
type SyncRequest struct {
	Service    string  `json:"service"`
	ProjectKey *string `json:"project_key,omitempty"`
	ListID     *string `json:"list_id,omitempty"`
}

// SyncTask creates the task in an external tracker
func (c *Client) SyncTask(ctx context.Context, s *Session, id string, in SyncRequest) (*SyncResult, error) {
	var out SyncResult
	if err := c.doJSON(ctx, s, http.MethodPost, "/tasks/"+url.PathEscape(id)+"/sync", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListIntegrations returns the session user's integrations
func (c *Client) ListIntegrations(ctx context.Context, s *Session) ([]Integration, error) {
	var out []Integration
	if err := c.doJSON(ctx, s, http.MethodGet, "/integrations", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateIntegration stores tracker credentials; config is never returned
func (c *Client) CreateIntegration(ctx context.Context, s *Session, serviceType string, config interface{}, isActive *bool) (*Integration, error) {
	body := map[string]interface{}{"service_type": serviceType, "config": config}
	if isActive != nil {
		body["is_active"] = *isActive
	}
	var out Integration
	if err := c.doJSON(ctx, s, http.MethodPost, "/integrations", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ToggleIntegration flips an integration's active flag
func (c *Client) ToggleIntegration(ctx context.Context, s *Session, id string) (*Integration, error) {
	var out Integration
	if err := c.doJSON(ctx, s, http.MethodPatch, "/integrations/"+url.PathEscape(id)+"/toggle", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteIntegration removes an integration
func (c *Client) DeleteIntegration(ctx context.Context, s *Session, id string) error {
	return c.doJSON(ctx, s, http.MethodDelete, "/integrations/"+url.PathEscape(id), nil, nil)
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func (c *Client) doJSON(ctx context.Context, s *Session, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(s, req, out)
}

// do sends req with the session's token and decodes the envelope into out
func (c *Client) do(s *Session, req *http.Request, out interface{}) error {
	if s != nil {
		token, ok := s.Token()
		if !ok {
			if req.Body != nil {
				req.Body.Close()
			}
			return ErrSessionInvalid
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	var env envelope
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil && resp.StatusCode < 400 {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	if resp.StatusCode >= 400 {
		if resp.StatusCode == http.StatusUnauthorized && s != nil {
			s.Invalidate()
		}
		apiErr := &APIError{
			StatusCode: resp.StatusCode,
			Code:       env.Code,
			Message:    env.Message,
			Info:       env.Info,
			Details:    env.Details,
		}
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		c.logger.Debug("api error",
			zap.String("method", req.Method),
			zap.String("path", req.URL.Path),
			zap.Int("status", resp.StatusCode),
		)
		return apiErr
	}

	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("failed to decode response data: %w", err)
	}
	return nil
}
