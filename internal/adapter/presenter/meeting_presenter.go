package presenter

import (
	meetingDTO "github.com/johnquangdev/meeting-secretary/internal/adapter/dto/meeting"
	taskDTO "github.com/johnquangdev/meeting-secretary/internal/adapter/dto/task"
	"github.com/johnquangdev/meeting-secretary/internal/domain/entities"
)

// ToMeetingResponse converts a Meeting entity, including any loaded tasks
func ToMeetingResponse(m *entities.Meeting) *meetingDTO.MeetingResponse {
	if m == nil {
		return nil
	}
	resp := &meetingDTO.MeetingResponse{
		ID:            m.ID.String(),
		Title:         m.Title,
		Status:        string(m.Status),
		Transcript:    m.Transcript,
		FailureReason: m.FailureReason,
		IsLocalOnly:   m.IsLocalOnly,
		IsRedacted:    m.IsRedacted,
		CreatedAt:     m.CreatedAt,
		ProcessedAt:   m.ProcessedAt,
	}
	if len(m.Tasks) > 0 {
		resp.Tasks = make([]taskDTO.TaskResponse, 0, len(m.Tasks))
		for i := range m.Tasks {
			resp.Tasks = append(resp.Tasks, *ToTaskResponse(&m.Tasks[i]))
		}
	}
	return resp
}

// ToMeetingListResponse converts meetings without their tasks
func ToMeetingListResponse(meetings []*entities.Meeting) []*meetingDTO.MeetingResponse {
	out := make([]*meetingDTO.MeetingResponse, 0, len(meetings))
	for _, m := range meetings {
		resp := ToMeetingResponse(m)
		resp.Tasks = nil
		out = append(out, resp)
	}
	return out
}
