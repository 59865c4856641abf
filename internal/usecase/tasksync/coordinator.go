// Package tasksync pushes tasks to external trackers, creating at most one
// item per (task, service).
package tasksync

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-secretary/internal/domain/entities"
	"github.com/johnquangdev/meeting-secretary/internal/domain/repositories"
	"github.com/johnquangdev/meeting-secretary/internal/infrastructure/external/tracker"
	ucerrors "github.com/johnquangdev/meeting-secretary/internal/usecase/errors"
)

// Locker is a short-lived mutual exclusion keyed by string
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (token string, ok bool, err error)
	Unlock(ctx context.Context, key, token string) error
}

// TrackerFactory resolves an integration to a tracker client
type TrackerFactory interface {
	For(integration *entities.Integration) (tracker.Tracker, error)
}

// Policy decides which task statuses may be synced
type Policy interface {
	AllowSync(task *entities.Task) bool
}

// StatusPolicy allows every task status by default; PendingOnly narrows it to pending tasks
type StatusPolicy struct {
	PendingOnly bool
}

// AllowSync implements Policy
func (p StatusPolicy) AllowSync(task *entities.Task) bool {
	if p.PendingOnly {
		return task.Status == entities.TaskStatusPending
	}
	return task.Status.Allows(entities.TaskActionSync)
}

// Error is a sync failure with the service and, when known, the existing reference
type Error struct {
	Kind    error
	Service entities.ServiceType
	Ref     string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s sync: %v: %v", e.Service, e.Kind, e.Cause)
	}
	return fmt.Sprintf("%s sync: %v", e.Service, e.Kind)
}

func (e *Error) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.Kind, e.Cause}
	}
	return []error{e.Kind}
}

// Input selects the tracker and optionally the target inside it
type Input struct {
	Service    string
	ProjectKey *string
	ListID     *string
}

// Result is a successful sync
type Result struct {
	Task        *entities.Task
	Service     entities.ServiceType
	ExternalRef string
}

// Options tunes the coordinator
type Options struct {
	Timeout time.Duration
	LockTTL time.Duration
	Policy  Policy

	// RecordRetries bounds retries of the reference write after the tracker
	// item exists; RecordBackoff is the first wait between them.
	RecordRetries int
	RecordBackoff time.Duration
}

// Coordinator links tasks to tracker items
type Coordinator struct {
	tasks        repositories.TaskRepository
	integrations repositories.IntegrationRepository
	trackers     TrackerFactory
	locker       Locker
	policy       Policy
	timeout      time.Duration
	lockTTL      time.Duration
	retries      int
	retryBackoff time.Duration
	logger       *zap.Logger
}

// NewCoordinator creates a sync coordinator
func NewCoordinator(
	tasks repositories.TaskRepository,
	integrations repositories.IntegrationRepository,
	trackers TrackerFactory,
	locker Locker,
	opts Options,
	logger *zap.Logger,
) *Coordinator {
	if opts.Policy == nil {
		opts.Policy = StatusPolicy{}
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.LockTTL < opts.Timeout {
		opts.LockTTL = 2 * opts.Timeout
	}
	if opts.RecordRetries <= 0 {
		opts.RecordRetries = 3
	}
	if opts.RecordBackoff <= 0 {
		opts.RecordBackoff = 200 * time.Millisecond
	}
	return &Coordinator{
		tasks:        tasks,
		integrations: integrations,
		trackers:     trackers,
		locker:       locker,
		policy:       opts.Policy,
		timeout:      opts.Timeout,
		lockTTL:      opts.LockTTL,
		retries:      opts.RecordRetries,
		retryBackoff: opts.RecordBackoff,
		logger:       logger,
	}
}

// Sync creates the tracker item for a task and records its reference.
// Nothing is written unless the tracker call succeeds; the caller retries.
func (c *Coordinator) Sync(ctx context.Context, ownerID, taskID uuid.UUID, in Input) (*Result, error) {
	service := entities.ServiceType(strings.ToLower(strings.TrimSpace(in.Service)))
	if !service.IsValid() {
		return nil, fmt.Errorf("%w: %v", ucerrors.ErrValidation, entities.ErrInvalidServiceType)
	}

	task, err := c.findTask(ctx, ownerID, taskID)
	if err != nil {
		return nil, err
	}
	if err := c.checkTask(task, service); err != nil {
		return nil, err
	}

	integration, err := c.integrations.FindByService(ctx, ownerID, service)
	if err != nil {
		if errors.Is(err, entities.ErrIntegrationNotFound) {
			return nil, &Error{Kind: ucerrors.ErrIntegrationNotFound, Service: service}
		}
		return nil, err
	}
	if !integration.IsActive {
		return nil, &Error{Kind: ucerrors.ErrIntegrationInactive, Service: service}
	}

	target, err := resolveTarget(integration, in)
	if err != nil {
		return nil, err
	}
	client, err := c.trackers.For(integration)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s client: %w", service, err)
	}

	key := fmt.Sprintf("sync:%s:%s", task.ID, service)
	token, ok, err := c.locker.TryLock(ctx, key, c.lockTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire sync lock: %w", err)
	}
	if !ok {
		return nil, &Error{Kind: ucerrors.ErrSyncInProgress, Service: service}
	}
	defer func() {
		if err := c.locker.Unlock(context.Background(), key, token); err != nil {
			c.logger.Warn("failed to release sync lock", zap.String("key", key), zap.Error(err))
		}
	}()

	// Another caller may have finished between the first read and the lock.
	task, err = c.findTask(ctx, ownerID, taskID)
	if err != nil {
		return nil, err
	}
	if err := c.checkTask(task, service); err != nil {
		return nil, err
	}

	ref, err := c.createItem(ctx, service, client, tracker.NewItem(task, target))
	if err != nil {
		c.logger.Warn("tracker call failed",
			zap.String("task_id", task.ID.String()),
			zap.String("service", string(service)),
			zap.Error(err),
		)
		return nil, err
	}

	if err := c.recordRef(ctx, task.ID, service, ref); err != nil {
		c.logger.Error("external item created but reference not recorded",
			zap.String("task_id", task.ID.String()),
			zap.String("service", string(service)),
			zap.String("external_ref", ref),
			zap.Error(err),
		)
		if !errors.Is(err, entities.ErrConflict) {
			return nil, err
		}
		current, findErr := c.findTask(ctx, ownerID, taskID)
		if findErr != nil {
			return nil, findErr
		}
		return nil, &Error{Kind: ucerrors.ErrAlreadySynced, Service: service, Ref: deref(current.ExternalRef(service))}
	}

	switch service {
	case entities.ServiceJira:
		task.JiraIssueKey = &ref
	case entities.ServiceTrello:
		task.TrelloCardID = &ref
	}

	c.logger.Info("task synced",
		zap.String("task_id", task.ID.String()),
		zap.String("service", string(service)),
		zap.String("external_ref", ref),
	)
	return &Result{Task: task, Service: service, ExternalRef: ref}, nil
}

// recordRef writes the reference, retrying failures other than a lost race.
// The tracker item already exists, so the write outlives a cancelled request.
func (c *Coordinator) recordRef(ctx context.Context, taskID uuid.UUID, service entities.ServiceType, ref string) error {
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
	defer cancel()

	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = c.retryBackoff
	b := backoff.WithContext(backoff.WithMaxRetries(eb, uint64(c.retries)), writeCtx)

	attempt := 0
	return backoff.Retry(func() error {
		attempt++
		err := c.tasks.SetExternalRef(writeCtx, taskID, service, ref)
		if err == nil {
			return nil
		}
		if errors.Is(err, entities.ErrConflict) {
			return backoff.Permanent(err)
		}
		c.logger.Warn("failed to record external reference, retrying",
			zap.String("task_id", taskID.String()),
			zap.String("service", string(service)),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
		return err
	}, b)
}

// createItem calls the tracker under the coordinator's deadline
func (c *Coordinator) createItem(ctx context.Context, service entities.ServiceType, client tracker.Tracker, item tracker.Item) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	ref, err := client.CreateItem(callCtx, item)
	if err == nil {
		return ref, nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(callCtx.Err(), context.DeadlineExceeded) {
		return "", &Error{Kind: ucerrors.ErrUpstreamTimeout, Service: service, Cause: err}
	}
	return "", &Error{Kind: ucerrors.ErrSyncFailed, Service: service, Cause: err}
}

func (c *Coordinator) findTask(ctx context.Context, ownerID, taskID uuid.UUID) (*entities.Task, error) {
	task, err := c.tasks.FindByID(ctx, ownerID, taskID)
	if err != nil {
		if errors.Is(err, entities.ErrTaskNotFound) {
			return nil, ucerrors.ErrNotFound
		}
		return nil, err
	}
	return task, nil
}

func (c *Coordinator) checkTask(task *entities.Task, service entities.ServiceType) error {
	if !c.policy.AllowSync(task) {
		return fmt.Errorf("%w: %s task cannot be synced", ucerrors.ErrInvalidTransition, task.Status)
	}
	if ref := task.ExternalRef(service); ref != nil {
		return &Error{Kind: ucerrors.ErrAlreadySynced, Service: service, Ref: *ref}
	}
	return nil
}

// resolveTarget picks the hint, then the integration default. A Trello
// integration with a board resolves to "" and the client picks the board's first list.
func resolveTarget(integration *entities.Integration, in Input) (string, error) {
	switch integration.ServiceType {
	case entities.ServiceJira:
		if hint := trimmed(in.ProjectKey); hint != "" {
			return hint, nil
		}
		cfg, err := integration.JiraConfig()
		if err != nil {
			return "", err
		}
		if cfg.ProjectKey != "" {
			return cfg.ProjectKey, nil
		}
	case entities.ServiceTrello:
		if hint := trimmed(in.ListID); hint != "" {
			return hint, nil
		}
		cfg, err := integration.TrelloConfig()
		if err != nil {
			return "", err
		}
		if cfg.DefaultListID != "" {
			return cfg.DefaultListID, nil
		}
		if cfg.BoardID != "" {
			return "", nil
		}
	}
	return "", &Error{Kind: ucerrors.ErrTargetRequired, Service: integration.ServiceType}
}

func trimmed(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
