package task

import "time"

// TaskResponse represents a task in responses; deadline is YYYY-MM-DD
type TaskResponse struct {
	ID           string    `json:"id"`
	MeetingID    string    `json:"meeting_id"`
	Description  string    `json:"description"`
	OwnerName    *string   `json:"owner_name,omitempty"`
	Deadline     *string   `json:"deadline,omitempty"`
	Priority     string    `json:"priority"`
	Confidence   *float64  `json:"confidence,omitempty"`
	Status       string    `json:"status"`
	JiraIssueKey *string   `json:"jira_issue_key,omitempty"`
	TrelloCardID *string   `json:"trello_card_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// SyncTaskResponse is returned after a successful sync
type SyncTaskResponse struct {
	Service     string       `json:"service"`
	ExternalRef string       `json:"external_ref"`
	Task        TaskResponse `json:"task"`
}
