package task

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// UpdateTaskRequest is a partial update; absent fields are left unchanged
type UpdateTaskRequest struct {
	Description *string      `json:"description,omitempty"`
	OwnerName   *string      `json:"owner_name,omitempty"`
	Deadline    OptionalDate `json:"deadline"`
	Priority    *string      `json:"priority,omitempty"`
	Status      *string      `json:"status,omitempty"`
}

// OptionalDate tells an absent field from an explicit null
type OptionalDate struct {
	Set   bool
	Value *time.Time
}

// UnmarshalJSON accepts null, YYYY-MM-DD or RFC3339
func (d *OptionalDate) UnmarshalJSON(b []byte) error {
	d.Set = true
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		d.Value = nil
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("deadline must be a date string: %w", err)
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			d.Value = &t
			return nil
		}
	}
	return fmt.Errorf("deadline %q is not YYYY-MM-DD", s)
}

// ListTasksQuery filters GET /tasks
type ListTasksQuery struct {
	MeetingID    string `query:"meeting_id" validate:"omitempty,uuid"`
	StatusFilter string `query:"status_filter"`
}

// SyncTaskRequest pushes a task to a tracker
type SyncTaskRequest struct {
	Service    string  `json:"service" validate:"required"`
	ProjectKey *string `json:"project_key,omitempty"`
	ListID     *string `json:"list_id,omitempty"`
}
