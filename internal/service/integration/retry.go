package integration

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/paygrid-hq/paygrid-backend-go/internal/domain/integration"
)

// RunRetrySweep re-submits every failed attempt whose backoff window has
// elapsed. One broken attempt never blocks the rest of the sweep.
func (o *Orchestrator) RunRetrySweep(ctx context.Context) error {
	attempts, err := o.attempts.ListRetryEligible(ctx, o.maxRetries)
	if err != nil {
		return fmt.Errorf("failed to list retry eligible attempts: %w", err)
	}

	now := time.Now().UTC()
	for _, attempt := range attempts {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !o.dueForRetry(attempt, now) {
			continue
		}
		if err := o.RetryAttempt(ctx, attempt.ID); err != nil {
			slog.Error("Retry of integration attempt failed",
				"attempt_id", attempt.ID,
				"organization_id", attempt.OrganizationID,
				"error", err)
		}
	}
	return nil
}

// dueForRetry applies the fixed backoff schedule: the delay for retry N is
// measured from the previous failure, not from the original submission.
func (o *Orchestrator) dueForRetry(attempt integration.Attempt, now time.Time) bool {
	idx := attempt.RetryCount
	if idx >= len(o.retryDelays) {
		idx = len(o.retryDelays) - 1
	}

	last := attempt.CreatedAt
	if attempt.LastRetryAt != nil {
		last = *attempt.LastRetryAt
	} else if !attempt.UpdatedAt.IsZero() {
		last = attempt.UpdatedAt
	}

	return now.Sub(last) >= o.retryDelays[idx]
}
