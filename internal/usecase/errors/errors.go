package errors

import "errors"

// Common errors
var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrNotFound      = errors.New("resource not found")
	ErrAlreadyExists = errors.New("resource already exists")
	ErrInternalError = errors.New("internal server error")
)

// Auth errors
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenInvalid       = errors.New("token invalid")
	ErrOAuthDisabled      = errors.New("google sign-in is not configured")
)

// User errors
var (
	ErrUserNotFound     = errors.New("user not found")
	ErrUserNotActive    = errors.New("user is not active")
	ErrEmailAlreadyUsed = errors.New("email already in use")
)

// Lifecycle errors shared by meetings and tasks
var (
	ErrValidation        = errors.New("validation failed")
	ErrInvalidTransition = errors.New("invalid status transition")
)

// Meeting errors
var (
	ErrUnsupportedFormat = errors.New("unsupported audio format")
	ErrFileTooLarge      = errors.New("file too large")
)

// Integration and sync errors
var (
	ErrIntegrationNotFound = errors.New("integration not found")
	ErrIntegrationInactive = errors.New("integration is not active")
	ErrAlreadySynced       = errors.New("task already synced")
	ErrTargetRequired      = errors.New("sync target required")
	ErrSyncInProgress      = errors.New("sync already in progress")
	ErrSyncFailed          = errors.New("sync failed")
	ErrUpstreamTimeout     = errors.New("upstream timeout")
)
