package entities

import (
	"time"

	"github.com/google/uuid"
)

// MeetingStatus represents where a meeting is in its processing lifecycle
type MeetingStatus string

const (
	MeetingStatusPending    MeetingStatus = "pending"
	MeetingStatusProcessing MeetingStatus = "processing"
	MeetingStatusCompleted  MeetingStatus = "completed"
	MeetingStatusFailed     MeetingStatus = "failed"
)

// meetingTransitions lists the only forward moves a meeting may make.
var meetingTransitions = map[MeetingStatus][]MeetingStatus{
	MeetingStatusPending:    {MeetingStatusProcessing},
	MeetingStatusProcessing: {MeetingStatusCompleted, MeetingStatusFailed},
}

// IsValid checks if the meeting status is valid
func (s MeetingStatus) IsValid() bool {
	switch s {
	case MeetingStatusPending, MeetingStatusProcessing, MeetingStatusCompleted, MeetingStatusFailed:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition can happen.
func (s MeetingStatus) IsTerminal() bool {
	return s == MeetingStatusCompleted || s == MeetingStatusFailed
}

// CanAdvanceTo reports whether next immediately follows s.
func (s MeetingStatus) CanAdvanceTo(next MeetingStatus) bool {
	for _, allowed := range meetingTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Meeting is an uploaded recording and its processing record
type Meeting struct {
	ID      uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	OwnerID uuid.UUID `json:"owner_id" gorm:"type:uuid;not null;index"`
	Title   string    `json:"title" gorm:"type:varchar(255)"`

	// Audio blob location in object storage
	AudioObjectKey string `json:"-" gorm:"column:audio_object_key;type:varchar(500)"`
	ContentType    string `json:"-" gorm:"column:content_type;type:varchar(100)"`

	Status        MeetingStatus `json:"status" gorm:"type:varchar(20);not null;index"`
	Transcript    *string       `json:"transcript,omitempty" gorm:"type:text"`
	FailureReason *string       `json:"failure_reason,omitempty" gorm:"type:text"`

	// Privacy
	IsLocalOnly bool `json:"is_local_only" gorm:"not null"`
	IsRedacted  bool `json:"is_redacted" gorm:"not null"`

	CreatedAt   time.Time  `json:"created_at" gorm:"autoCreateTime"`
	ProcessedAt *time.Time `json:"processed_at,omitempty"`

	Tasks []Task `json:"tasks,omitempty" gorm:"foreignKey:MeetingID;constraint:OnDelete:CASCADE"`
}

// NewMeeting creates a pending meeting owned by ownerID
func NewMeeting(ownerID uuid.UUID, title, objectKey, contentType string, localOnly bool) *Meeting {
	return &Meeting{
		ID:             uuid.New(),
		OwnerID:        ownerID,
		Title:          title,
		AudioObjectKey: objectKey,
		ContentType:    contentType,
		Status:         MeetingStatusPending,
		IsLocalOnly:    localOnly,
		CreatedAt:      time.Now().UTC(),
	}
}

// AllowedAudioExtensions are the upload formats the worker can decode.
var AllowedAudioExtensions = []string{".mp3", ".wav", ".m4a", ".ogg", ".flac"}

// IsAllowedAudioExtension reports whether ext (with leading dot, lower case) is accepted.
func IsAllowedAudioExtension(ext string) bool {
	for _, allowed := range AllowedAudioExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}
