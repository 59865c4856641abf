package presenter

import (
	taskDTO "github.com/johnquangdev/meeting-secretary/internal/adapter/dto/task"
	"github.com/johnquangdev/meeting-secretary/internal/domain/entities"
	"github.com/johnquangdev/meeting-secretary/internal/usecase/tasksync"
)

const dateLayout = "2006-01-02"

// ToTaskResponse converts a Task entity to TaskResponse DTO
func ToTaskResponse(t *entities.Task) *taskDTO.TaskResponse {
	if t == nil {
		return nil
	}
	resp := &taskDTO.TaskResponse{
		ID:           t.ID.String(),
		MeetingID:    t.MeetingID.String(),
		Description:  t.Description,
		OwnerName:    t.OwnerName,
		Priority:     string(t.Priority),
		Confidence:   t.Confidence,
		Status:       string(t.Status),
		JiraIssueKey: t.JiraIssueKey,
		TrelloCardID: t.TrelloCardID,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
	if t.Deadline != nil {
		d := t.Deadline.UTC().Format(dateLayout)
		resp.Deadline = &d
	}
	return resp
}

// ToTaskListResponse converts a slice of tasks
func ToTaskListResponse(tasks []*entities.Task) []*taskDTO.TaskResponse {
	out := make([]*taskDTO.TaskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, ToTaskResponse(t))
	}
	return out
}

// ToSyncResponse converts a sync result
func ToSyncResponse(r *tasksync.Result) *taskDTO.SyncTaskResponse {
	return &taskDTO.SyncTaskResponse{
		Service:     string(r.Service),
		ExternalRef: r.ExternalRef,
		Task:        *ToTaskResponse(r.Task),
	}
}
