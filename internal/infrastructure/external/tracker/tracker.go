// Package tracker creates items in external issue trackers (Jira, Trello).
package tracker

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/johnquangdev/meeting-secretary/internal/domain/entities"
)

// Item is the tracker-neutral content of one external item
type Item struct {
	// Target is the Jira project key or the Trello list id
	Target      string
	Summary     string
	Description string
	OwnerName   *string
	Deadline    *time.Time
	Priority    entities.TaskPriority
}

// Tracker creates one external item and returns its reference
type Tracker interface {
	CreateItem(ctx context.Context, item Item) (string, error)
}

// UpstreamError is a non-2xx answer from a tracker; Body is kept verbatim
type UpstreamError struct {
	Service    entities.ServiceType
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s returned %d: %s", e.Service, e.StatusCode, e.Body)
}

// NewItem builds the item content for task
func NewItem(task *entities.Task, target string) Item {
	return Item{
		Target:      target,
		Summary:     task.Description,
		Description: task.Description,
		OwnerName:   task.OwnerName,
		Deadline:    task.Deadline,
		Priority:    task.Priority,
	}
}

// Body is the description followed by Owner, Deadline and Priority lines
func (i Item) Body() string {
	var b strings.Builder
	b.WriteString(i.Description)

	var meta []string
	if i.OwnerName != nil && *i.OwnerName != "" {
		meta = append(meta, "Owner: "+*i.OwnerName)
	}
	if i.Deadline != nil {
		meta = append(meta, "Deadline: "+i.Deadline.Format("2006-01-02"))
	}
	if i.Priority != "" {
		meta = append(meta, "Priority: "+string(i.Priority))
	}
	if len(meta) > 0 {
		b.WriteString("\n\n")
		b.WriteString(strings.Join(meta, "\n"))
	}
	return b.String()
}

// truncateRunes cuts s to at most n runes
func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// Factory builds per-integration tracker clients sharing one rate limiter
type Factory struct {
	httpClient    *http.Client
	limiter       *rate.Limiter
	trelloBaseURL string
}

// NewFactory creates a factory; ratePerSec <= 0 disables limiting
func NewFactory(httpClient *http.Client, ratePerSec float64) *Factory {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	limit := rate.Inf
	if ratePerSec > 0 {
		limit = rate.Limit(ratePerSec)
	}
	return &Factory{
		httpClient:    httpClient,
		limiter:       rate.NewLimiter(limit, 1),
		trelloBaseURL: defaultTrelloBaseURL,
	}
}

// WithTrelloBaseURL overrides the Trello API root
func (f *Factory) WithTrelloBaseURL(base string) *Factory {
	f.trelloBaseURL = strings.TrimRight(base, "/")
	return f
}

// For returns the tracker client for an integration's stored config
func (f *Factory) For(integration *entities.Integration) (Tracker, error) {
	switch integration.ServiceType {
	case entities.ServiceJira:
		cfg, err := integration.JiraConfig()
		if err != nil {
			return nil, err
		}
		return &JiraClient{cfg: cfg, http: f.httpClient, limiter: f.limiter}, nil
	case entities.ServiceTrello:
		cfg, err := integration.TrelloConfig()
		if err != nil {
			return nil, err
		}
		return &TrelloClient{cfg: cfg, baseURL: f.trelloBaseURL, http: f.httpClient, limiter: f.limiter}, nil
	}
	return nil, entities.ErrInvalidServiceType
}

// do sends req after waiting on limiter and returns the body of a 2xx answer
func do(ctx context.Context, client *http.Client, limiter *rate.Limiter, service entities.ServiceType, req *http.Request) ([]byte, error) {
	if err := limiter.Wait(ctx); err != nil {
		return nil, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s response: %w", service, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &UpstreamError{Service: service, StatusCode: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}
