// Package lifecycle drives a retrieval job from submission to a
// terminal status.
package lifecycle

import (
	"context"
	"fmt"
	"time"

	"github.com/viewengine/viewctl/internal/api"
	"github.com/viewengine/viewctl/internal/models"
)

// StatusSource is the single poll operation the poller needs.
// *api.Client satisfies it.
type StatusSource interface {
	JobStatus(ctx context.Context, requestID string) (*models.JobStatusSnapshot, error)
}

// Policy tunes the poll loop. The overall wall-clock budget is roughly
// MaxAttempts * Interval.
type Policy struct {
	Interval       time.Duration
	MaxAttempts    int
	RequestTimeout time.Duration
}

// DefaultPolicy matches the service's typical job duration.
func DefaultPolicy() Policy {
	return Policy{
		Interval:       2 * time.Second,
		MaxAttempts:    60,
		RequestTimeout: api.DefaultRequestTimeout,
	}
}

// Validate checks the policy is usable. A zero Interval is allowed and
// polls back-to-back.
func (p Policy) Validate() error {
	if p.Interval < 0 {
		return fmt.Errorf("poll interval must not be negative")
	}
	if p.MaxAttempts <= 0 {
		return fmt.Errorf("max attempts must be positive")
	}
	return nil
}

// Observer receives each snapshot as it is observed, along with the
// 1-based attempt number. Observers must not block for long; the poll
// loop calls them inline.
type Observer func(attempt int, snapshot *models.JobStatusSnapshot)

// Poller repeatedly queries a job's status until it reaches a terminal
// state. Pollers hold no per-job state; one Poller may drive many jobs,
// one at a time per call.
type Poller struct {
	source StatusSource
	policy Policy
}

// NewPoller creates a Poller with the given status source and policy.
func NewPoller(source StatusSource, policy Policy) (*Poller, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	return &Poller{source: source, policy: policy}, nil
}

// PollUntilTerminal polls the job until it reports complete, failed, or
// canceled. Failed and canceled are returned as ordinary snapshots;
// interpreting them as success or failure is the caller's concern. A
// transport or HTTP failure mid-poll aborts immediately as PollFailed
// rather than being retried; a caller wanting resilience wraps the whole
// lifecycle in its own outer retry. Exhausting the attempt budget yields
// a Timeout error carrying the last known snapshot.
func (p *Poller) PollUntilTerminal(ctx context.Context, handle models.JobHandle, observe Observer) (*models.JobStatusSnapshot, error) {
	var last *models.JobStatusSnapshot

	for attempt := 1; attempt <= p.policy.MaxAttempts; attempt++ {
		reqCtx := ctx
		var cancel context.CancelFunc
		if p.policy.RequestTimeout > 0 {
			reqCtx, cancel = context.WithTimeout(ctx, p.policy.RequestTimeout)
		}
		snap, err := p.source.JobStatus(reqCtx, handle.RequestID)
		if cancel != nil {
			cancel()
		}
		if err != nil {
			return nil, &api.ServiceError{
				Kind:    api.ServicePollFailed,
				Message: fmt.Sprintf("polling %s failed on attempt %d", handle.RequestID, attempt),
				Err:     err,
			}
		}

		last = snap
		if observe != nil {
			observe(attempt, snap)
		}

		if snap.Status.Terminal() {
			return snap, nil
		}

		if attempt == p.policy.MaxAttempts {
			break
		}
		if err := sleep(ctx, p.policy.Interval); err != nil {
			return nil, err
		}
	}

	return nil, &api.ServiceError{
		Kind:         api.ServiceTimeout,
		Message:      fmt.Sprintf("job %s not terminal after %d attempts", handle.RequestID, p.policy.MaxAttempts),
		LastSnapshot: last,
	}
}

// sleep waits for d or until ctx is canceled, whichever comes first.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
