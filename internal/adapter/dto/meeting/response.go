package meeting

import (
	"time"

	"github.com/johnquangdev/meeting-secretary/internal/adapter/dto/task"
)

// MeetingResponse is a meeting snapshot; Tasks is set on single reads only
type MeetingResponse struct {
	ID            string              `json:"id"`
	Title         string              `json:"title"`
	Status        string              `json:"status"`
	Transcript    *string             `json:"transcript,omitempty"`
	FailureReason *string             `json:"failure_reason,omitempty"`
	IsLocalOnly   bool                `json:"is_local_only"`
	IsRedacted    bool                `json:"is_redacted"`
	CreatedAt     time.Time           `json:"created_at"`
	ProcessedAt   *time.Time          `json:"processed_at,omitempty"`
	Tasks         []task.TaskResponse `json:"tasks,omitempty"`
}
