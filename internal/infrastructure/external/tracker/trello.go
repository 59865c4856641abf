package tracker

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/johnquangdev/meeting-secretary/internal/domain/entities"
)

const (
	defaultTrelloBaseURL = "https://api.trello.com/1"
	trelloNameLimit      = 16384
)

// TrelloClient creates cards through the Trello REST API
type TrelloClient struct {
	cfg     entities.TrelloConfig
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

type trelloCard struct {
	ID string `json:"id"`
}

type trelloList struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CreateItem creates a card in list item.Target, or in the first list of
// the configured board when no list is given
func (c *TrelloClient) CreateItem(ctx context.Context, item Item) (string, error) {
	listID := item.Target
	if listID == "" {
		first, err := c.firstList(ctx)
		if err != nil {
			return "", err
		}
		listID = first
	}

	params := c.auth()
	params.Set("idList", listID)
	params.Set("name", truncateRunes(item.Summary, trelloNameLimit))
	params.Set("desc", item.Body())
	if item.Deadline != nil {
		params.Set("due", item.Deadline.UTC().Format(time.RFC3339))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/cards?"+params.Encode(), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "application/json")

	body, err := do(ctx, c.http, c.limiter, entities.ServiceTrello, req)
	if err != nil {
		return "", err
	}

	var card trelloCard
	if err := json.Unmarshal(body, &card); err != nil {
		return "", fmt.Errorf("failed to decode trello response: %w", err)
	}
	if card.ID == "" {
		return "", fmt.Errorf("trello response has no card id")
	}
	return card.ID, nil
}

func (c *TrelloClient) firstList(ctx context.Context) (string, error) {
	if c.cfg.BoardID == "" {
		return "", fmt.Errorf("trello list id or board id is required")
	}

	endpoint := fmt.Sprintf("%s/boards/%s/lists?%s", c.baseURL, url.PathEscape(c.cfg.BoardID), c.auth().Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "application/json")

	body, err := do(ctx, c.http, c.limiter, entities.ServiceTrello, req)
	if err != nil {
		return "", err
	}

	var lists []trelloList
	if err := json.Unmarshal(body, &lists); err != nil {
		return "", fmt.Errorf("failed to decode trello lists: %w", err)
	}
	if len(lists) == 0 {
		return "", fmt.Errorf("no lists found in board %s", c.cfg.BoardID)
	}
	return lists[0].ID, nil
}

func (c *TrelloClient) auth() url.Values {
	v := url.Values{}
	v.Set("key", c.cfg.APIKey)
	v.Set("token", c.cfg.APIToken)
	return v
}
