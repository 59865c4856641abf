package meeting

// UploadForm carries the non-file fields of a multipart upload
type UploadForm struct {
	Title       string `form:"title" validate:"max=255"`
	IsLocalOnly bool   `form:"is_local_only"`
}

// AdvanceRequest is posted by an out-of-process worker
type AdvanceRequest struct {
	Status     string                 `json:"status" validate:"required,oneof=processing completed failed"`
	Transcript string                 `json:"transcript,omitempty"`
	IsRedacted bool                   `json:"is_redacted,omitempty"`
	Tasks      []ExtractedTaskRequest `json:"tasks,omitempty" validate:"dive"`
	Error      string                 `json:"error,omitempty"`
}

// ExtractedTaskRequest is one extracted action item
type ExtractedTaskRequest struct {
	Description string   `json:"description" validate:"required"`
	Owner       *string  `json:"owner,omitempty"`
	Deadline    *string  `json:"deadline,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Priority    string   `json:"priority,omitempty"`
	Confidence  *float64 `json:"confidence,omitempty"`
}
