package entities

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// TaskStatus represents the confirmation lifecycle of an action item
type TaskStatus string

const (
	TaskStatusPending   TaskStatus = "pending"
	TaskStatusConfirmed TaskStatus = "confirmed"
	TaskStatusCompleted TaskStatus = "completed"
	TaskStatusCancelled TaskStatus = "cancelled"
)

// TaskPriority defines task priority levels
type TaskPriority string

const (
	TaskPriorityLow      TaskPriority = "low"
	TaskPriorityMedium   TaskPriority = "medium"
	TaskPriorityHigh     TaskPriority = "high"
	TaskPriorityCritical TaskPriority = "critical"
)

// IsValid checks if the priority is one of the enumerated levels
func (p TaskPriority) IsValid() bool {
	switch p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh, TaskPriorityCritical:
		return true
	}
	return false
}

// TaskAction is a user-facing operation gated by task status.
type TaskAction string

const (
	TaskActionEdit     TaskAction = "edit"
	TaskActionConfirm  TaskAction = "confirm"
	TaskActionComplete TaskAction = "complete"
	TaskActionCancel   TaskAction = "cancel"
	TaskActionSync     TaskAction = "sync"
)

// taskTransitions is the single source of truth for status moves.
var taskTransitions = map[TaskStatus]map[TaskAction]TaskStatus{
	TaskStatusPending: {
		TaskActionConfirm: TaskStatusConfirmed,
		TaskActionCancel:  TaskStatusCancelled,
	},
	TaskStatusConfirmed: {
		TaskActionComplete: TaskStatusCompleted,
		TaskActionCancel:   TaskStatusCancelled,
	},
}

// taskActions lists the non-transition actions each status allows.
// Field edits and sync never move status, so every status allows them.
var taskActions = map[TaskStatus][]TaskAction{
	TaskStatusPending:   {TaskActionEdit, TaskActionSync},
	TaskStatusConfirmed: {TaskActionEdit, TaskActionSync},
	TaskStatusCompleted: {TaskActionEdit, TaskActionSync},
	TaskStatusCancelled: {TaskActionEdit, TaskActionSync},
}

// IsValid checks if the task status is valid
func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusPending, TaskStatusConfirmed, TaskStatusCompleted, TaskStatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether the task can no longer change status.
func (s TaskStatus) IsTerminal() bool {
	return s == TaskStatusCompleted || s == TaskStatusCancelled
}

// Allows reports whether action may be performed on a task in status s.
func (s TaskStatus) Allows(action TaskAction) bool {
	if _, ok := taskTransitions[s][action]; ok {
		return true
	}
	for _, a := range taskActions[s] {
		if a == action {
			return true
		}
	}
	return false
}

// CanTransitionTo reports whether s may move directly to next.
func (s TaskStatus) CanTransitionTo(next TaskStatus) bool {
	for _, target := range taskTransitions[s] {
		if target == next {
			return true
		}
	}
	return false
}

// ServiceType identifies an external tracker
type ServiceType string

const (
	ServiceJira   ServiceType = "jira"
	ServiceTrello ServiceType = "trello"
)

// IsValid checks if the service type is supported
func (s ServiceType) IsValid() bool {
	return s == ServiceJira || s == ServiceTrello
}

// Task is an action item extracted from a completed meeting
type Task struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	MeetingID uuid.UUID `json:"meeting_id" gorm:"type:uuid;not null;index"`
	// UserID is the meeting owner, kept on the row for scoped queries.
	UserID   uuid.UUID `json:"-" gorm:"type:uuid;not null;index"`
	Position int       `json:"-" gorm:"not null"`

	Description string       `json:"description" gorm:"type:text;not null"`
	OwnerName   *string      `json:"owner_name,omitempty" gorm:"type:varchar(255)"`
	Deadline    *time.Time   `json:"deadline,omitempty"`
	Priority    TaskPriority `json:"priority" gorm:"type:varchar(20);not null"`
	Confidence  *float64     `json:"confidence,omitempty"`
	Status      TaskStatus   `json:"status" gorm:"type:varchar(20);not null;index"`

	// External references
	JiraIssueKey *string `json:"jira_issue_key,omitempty" gorm:"type:varchar(100)"`
	TrelloCardID *string `json:"trello_card_id,omitempty" gorm:"type:varchar(100)"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// NewTask creates a pending task for a meeting
func NewTask(meetingID, userID uuid.UUID, position int, description string, priority TaskPriority) *Task {
	now := time.Now().UTC()
	return &Task{
		ID:          uuid.New(),
		MeetingID:   meetingID,
		UserID:      userID,
		Position:    position,
		Description: strings.TrimSpace(description),
		Priority:    priority,
		Status:      TaskStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// ExternalRef returns the tracker reference recorded for service, if any.
func (t *Task) ExternalRef(service ServiceType) *string {
	switch service {
	case ServiceJira:
		return t.JiraIssueKey
	case ServiceTrello:
		return t.TrelloCardID
	}
	return nil
}

// ExternalRefColumn returns the column holding the reference for service.
func ExternalRefColumn(service ServiceType) string {
	if service == ServiceTrello {
		return "trello_card_id"
	}
	return "jira_issue_key"
}

// Validate validates task fields
func (t *Task) Validate() error {
	if strings.TrimSpace(t.Description) == "" {
		return ErrEmptyDescription
	}
	if !t.Priority.IsValid() {
		return ErrInvalidPriority
	}
	if !t.Status.IsValid() {
		return ErrInvalidTaskStatus
	}
	if t.Confidence != nil && (*t.Confidence < 0 || *t.Confidence > 1) {
		return ErrInvalidConfidence
	}
	return nil
}
