package jobcontext

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
)

type KeyContext string

var (
	keyJobID        KeyContext = "job_id"
	keyJobType      KeyContext = "job_type"
	keyWorkerID     KeyContext = "worker_id"
	keyRetryAttempt KeyContext = "retry_attempt"
	keyJobStartTime KeyContext = "job_start_time"
	keyMaxRetries   KeyContext = "max_retries"
	keyRetryDelay   KeyContext = "retry_delay"
)

const (
	defaultMaxRetries = 3
	defaultRetryDelay = 5 * time.Second
)

// JobMetadata holds metadata for a job execution
type JobMetadata struct {
	JobID        uuid.UUID
	JobType      string
	WorkerID     int
	RetryAttempt int
	MaxRetries   int
	StartTime    time.Time
}

// JobBegin derives a job context with metadata, bounded by timeout
func JobBegin(parentCtx context.Context, jobID uuid.UUID, jobType string, workerID int, timeout time.Duration) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(parentCtx, timeout)

	ctx = context.WithValue(ctx, keyJobID, jobID)
	ctx = context.WithValue(ctx, keyJobType, jobType)
	ctx = context.WithValue(ctx, keyWorkerID, workerID)
	ctx = context.WithValue(ctx, keyRetryAttempt, 0)
	ctx = context.WithValue(ctx, keyJobStartTime, time.Now())

	return ctx, cancel
}

// JobEnd runs jobFunc, retrying retryable errors with exponential backoff.
// Panics are recovered and reported as errors.
func JobEnd(ctx context.Context, jobFunc func(context.Context) error) error {
	maxRetries := GetMaxRetries(ctx)

	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = GetRetryDelay(ctx)
	eb.MaxInterval = 60 * time.Second
	eb.MaxElapsedTime = 0

	var (
		err     error
		attempt = GetRetryAttempt(ctx)
	)
	for attempt < maxRetries {
		attemptCtx := SetRetryAttempt(ctx, attempt)

		func() {
			defer func() {
				if p := recover(); p != nil {
					err = fmt.Errorf("panic recovered: %v", p)
				}
			}()

			if attemptCtx.Err() != nil {
				err = fmt.Errorf("context cancelled before job execution: %w", attemptCtx.Err())
				return
			}
			err = jobFunc(attemptCtx)
		}()

		if err == nil {
			return nil
		}
		if !IsRetryableError(err) || ctx.Err() != nil {
			return err
		}

		attempt++
		if attempt >= maxRetries {
			return fmt.Errorf("max retries (%d) exceeded: %w", maxRetries, err)
		}

		timer := time.NewTimer(eb.NextBackOff())
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("context cancelled during retry: %w", err)
		case <-timer.C:
		}
	}

	return err
}

// GetJobID extracts job ID from context
func GetJobID(ctx context.Context) (uuid.UUID, bool) {
	jobID, ok := ctx.Value(keyJobID).(uuid.UUID)
	return jobID, ok
}

// GetJobType extracts job type from context
func GetJobType(ctx context.Context) (string, bool) {
	jobType, ok := ctx.Value(keyJobType).(string)
	return jobType, ok
}

// GetWorkerID extracts worker ID from context
func GetWorkerID(ctx context.Context) int {
	workerID, ok := ctx.Value(keyWorkerID).(int)
	if !ok {
		return -1
	}
	return workerID
}

// GetRetryAttempt extracts current retry attempt from context
func GetRetryAttempt(ctx context.Context) int {
	attempt, ok := ctx.Value(keyRetryAttempt).(int)
	if !ok {
		return 0
	}
	return attempt
}

// SetRetryAttempt updates retry attempt in context
func SetRetryAttempt(ctx context.Context, attempt int) context.Context {
	return context.WithValue(ctx, keyRetryAttempt, attempt)
}

// GetMaxRetries extracts max retries from context
func GetMaxRetries(ctx context.Context) int {
	maxRetries, ok := ctx.Value(keyMaxRetries).(int)
	if !ok || maxRetries < 1 {
		return defaultMaxRetries
	}
	return maxRetries
}

// SetMaxRetries updates max retries in context
func SetMaxRetries(ctx context.Context, maxRetries int) context.Context {
	return context.WithValue(ctx, keyMaxRetries, maxRetries)
}

// GetRetryDelay extracts the first backoff interval from context
func GetRetryDelay(ctx context.Context) time.Duration {
	d, ok := ctx.Value(keyRetryDelay).(time.Duration)
	if !ok || d <= 0 {
		return defaultRetryDelay
	}
	return d
}

// SetRetryDelay sets the first backoff interval
func SetRetryDelay(ctx context.Context, d time.Duration) context.Context {
	return context.WithValue(ctx, keyRetryDelay, d)
}

// GetJobStartTime extracts job start time from context
func GetJobStartTime(ctx context.Context) (time.Time, bool) {
	startTime, ok := ctx.Value(keyJobStartTime).(time.Time)
	return startTime, ok
}

// GetJobMetadata extracts all job metadata from context
func GetJobMetadata(ctx context.Context) *JobMetadata {
	jobID, _ := GetJobID(ctx)
	jobType, _ := GetJobType(ctx)
	startTime, _ := GetJobStartTime(ctx)

	return &JobMetadata{
		JobID:        jobID,
		JobType:      jobType,
		WorkerID:     GetWorkerID(ctx),
		RetryAttempt: GetRetryAttempt(ctx),
		MaxRetries:   GetMaxRetries(ctx),
		StartTime:    startTime,
	}
}

// IsRetryableError checks if an error should trigger a retry.
// Network errors, timeouts, rate limits and 5xx responses are retryable.
func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}

	errStr := strings.ToLower(err.Error())

	for _, marker := range []string{
		// Network
		"connection refused",
		"connection reset",
		"network unreachable",
		"no such host",
		"i/o timeout",
		// Postgres serialization_failure / deadlock_detected
		"deadlock",
		"40001",
		"40p01",
		// Rate limiting
		"rate limit",
		"too many requests",
		"status 429",
		// Server errors
		"status 5",
		"internal server error",
		"service unavailable",
		"bad gateway",
		// Temporary failures
		"temporary failure",
		"try again",
	} {
		if strings.Contains(errStr, marker) {
			return true
		}
	}
	return false
}
