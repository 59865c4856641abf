package tracker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/time/rate"

	"github.com/johnquangdev/meeting-secretary/internal/domain/entities"
)

const jiraSummaryLimit = 255

var jiraPriorities = map[entities.TaskPriority]string{
	entities.TaskPriorityLow:      "Lowest",
	entities.TaskPriorityMedium:   "Medium",
	entities.TaskPriorityHigh:     "High",
	entities.TaskPriorityCritical: "Highest",
}

// JiraClient creates issues through the Jira Cloud REST API v3
type JiraClient struct {
	cfg     entities.JiraConfig
	http    *http.Client
	limiter *rate.Limiter
}

type jiraIssueRequest struct {
	Fields jiraFields `json:"fields"`
}

type jiraFields struct {
	Project     jiraKey   `json:"project"`
	Summary     string    `json:"summary"`
	Description jiraDoc   `json:"description"`
	IssueType   jiraName  `json:"issuetype"`
	Priority    *jiraName `json:"priority,omitempty"`
	DueDate     string    `json:"duedate,omitempty"`
}

type jiraKey struct {
	Key string `json:"key"`
}

type jiraName struct {
	Name string `json:"name"`
}

// jiraDoc is an Atlassian Document Format document
type jiraDoc struct {
	Type    string     `json:"type"`
	Version int        `json:"version"`
	Content []jiraNode `json:"content"`
}

type jiraNode struct {
	Type    string     `json:"type"`
	Text    string     `json:"text,omitempty"`
	Content []jiraNode `json:"content,omitempty"`
}

type jiraIssueResponse struct {
	ID  string `json:"id"`
	Key string `json:"key"`
}

// CreateItem creates a Task issue in project item.Target and returns its key
func (c *JiraClient) CreateItem(ctx context.Context, item Item) (string, error) {
	if item.Target == "" {
		return "", fmt.Errorf("jira project key is required")
	}

	fields := jiraFields{
		Project:     jiraKey{Key: item.Target},
		Summary:     truncateRunes(item.Summary, jiraSummaryLimit),
		Description: adfDocument(item.Body()),
		IssueType:   jiraName{Name: "Task"},
	}
	if name, ok := jiraPriorities[item.Priority]; ok {
		fields.Priority = &jiraName{Name: name}
	}
	if item.Deadline != nil {
		fields.DueDate = item.Deadline.Format("2006-01-02")
	}

	payload, err := json.Marshal(jiraIssueRequest{Fields: fields})
	if err != nil {
		return "", fmt.Errorf("failed to encode jira issue: %w", err)
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/rest/api/3/issue"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(c.cfg.Email, c.cfg.APIToken)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	body, err := do(ctx, c.http, c.limiter, entities.ServiceJira, req)
	if err != nil {
		return "", err
	}

	var out jiraIssueResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("failed to decode jira response: %w", err)
	}
	if out.Key == "" {
		return "", fmt.Errorf("jira response has no issue key")
	}
	return out.Key, nil
}

// adfDocument renders text as one ADF paragraph per line block
func adfDocument(text string) jiraDoc {
	doc := jiraDoc{Type: "doc", Version: 1}
	for _, para := range strings.Split(text, "\n\n") {
		if para == "" {
			continue
		}
		doc.Content = append(doc.Content, jiraNode{
			Type:    "paragraph",
			Content: []jiraNode{{Type: "text", Text: para}},
		})
	}
	return doc
}
