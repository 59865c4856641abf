package client

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

// DefaultPollInterval is how often a meeting is re-fetched while it is being processed
const DefaultPollInterval = 3 * time.Second

// ChangeFunc is called when a watched meeting moves from one status to another
type ChangeFunc func(from, to string, m *Meeting)

// Poller watches meetings until they reach a terminal status
type Poller struct {
	client   *Client
	session  *Session
	interval time.Duration
	logger   *zap.Logger
}

// NewPoller creates a poller; interval <= 0 uses DefaultPollInterval
func NewPoller(client *Client, session *Session, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Poller{
		client:   client,
		session:  session,
		interval: interval,
		logger:   client.logger,
	}
}

// Watch fetches the meeting immediately and then every interval while it is
// pending or processing. The first fetch sets the baseline; onChange fires
// for each later fetch whose status differs from the previous one. Watch
// returns the terminal meeting, or the context error once ctx is done.
// Fetch failures are logged and retried on the next tick, with two
// exceptions: an invalidated session ends the watch with ErrSessionInvalid
// or a 401 APIError, and a deleted meeting ends it with a 404 APIError
// (IsStatus(err, http.StatusNotFound)).
func (p *Poller) Watch(ctx context.Context, meetingID string, onChange ChangeFunc) (*Meeting, error) {
	ticker := backoff.NewTicker(backoff.WithContext(backoff.NewConstantBackOff(p.interval), ctx))
	defer ticker.Stop()

	var last *Meeting
	for {
		select {
		case <-ctx.Done():
			return last, ctx.Err()
		case _, ok := <-ticker.C:
			if !ok {
				return last, ctx.Err()
			}
		}

		m, err := p.client.GetMeeting(ctx, p.session, meetingID)
		if err != nil {
			if errors.Is(err, ErrSessionInvalid) || IsStatus(err, http.StatusUnauthorized) || IsStatus(err, http.StatusNotFound) {
				return last, err
			}
			if ctx.Err() != nil {
				return last, ctx.Err()
			}
			p.logger.Warn("meeting poll failed, retrying",
				zap.String("meeting_id", meetingID),
				zap.Error(err),
			)
			continue
		}

		if last != nil && last.Status != m.Status && onChange != nil {
			onChange(last.Status, m.Status, m)
		}
		last = m

		if isTerminal(m.Status) {
			return m, nil
		}
	}
}

func isTerminal(status string) bool {
	return status == "completed" || status == "failed"
}
