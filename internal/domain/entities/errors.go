package entities

import "errors"

// Domain errors
var (
	// User errors
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exists")
	ErrInvalidEmail      = errors.New("invalid email")

	// OAuth errors
	ErrOAuthStateMismatch = errors.New("oauth state mismatch")

	// Meeting errors
	ErrMeetingNotFound = errors.New("meeting not found")

	// Task errors
	ErrTaskNotFound      = errors.New("task not found")
	ErrEmptyDescription  = errors.New("description must not be empty")
	ErrInvalidPriority   = errors.New("priority must be one of low, medium, high, critical")
	ErrInvalidTaskStatus = errors.New("invalid task status")
	ErrInvalidConfidence = errors.New("confidence must be within [0, 1]")

	// Integration errors
	ErrIntegrationNotFound      = errors.New("integration not found")
	ErrInvalidServiceType       = errors.New("invalid service_type. Use 'jira' or 'trello'")
	ErrInvalidIntegrationConfig = errors.New("invalid integration config")

	// ErrConflict is returned by conditional writes that matched no row in the expected state.
	ErrConflict = errors.New("state changed concurrently")
)
