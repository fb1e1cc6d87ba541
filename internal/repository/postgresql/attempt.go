package postgresql

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/paygrid-hq/paygrid-backend-go/internal/domain/integration"
	"github.com/paygrid-hq/paygrid-backend-go/internal/pkg/database"
)

type attemptRepository struct {
	db *database.DB
}

func NewAttemptRepository(db *database.DB) integration.AttemptRepository {
	return &attemptRepository{db: db}
}

const attemptColumns = `
	id, payroll_run_id, organization_id, provider_name, provider_reference,
	status, error_message, retry_count, last_retry_at, response_details,
	created_at, updated_at`

func (r *attemptRepository) Create(ctx context.Context, attempt integration.Attempt) (integration.Attempt, error) {
	q := GetQuerier(ctx, r.db)

	details, err := marshalDetails(attempt.ResponseDetails)
	if err != nil {
		return integration.Attempt{}, err
	}

	query := `
		INSERT INTO payroll_integration_attempts (
			payroll_run_id, organization_id, provider_name, status, response_details
		) VALUES ($1, $2, $3, $4, $5)
		RETURNING` + attemptColumns

	created, err := scanAttempt(q.QueryRow(ctx, query,
		attempt.PayrollRunID, attempt.OrganizationID, attempt.ProviderName, attempt.Status, details,
	))
	if err != nil {
		return integration.Attempt{}, fmt.Errorf("failed to create integration attempt: %w", err)
	}
	return created, nil
}

func (r *attemptRepository) GetByID(ctx context.Context, id string) (integration.Attempt, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT` + attemptColumns + `
		FROM payroll_integration_attempts
		WHERE id = $1`

	attempt, err := scanAttempt(q.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return integration.Attempt{}, integration.ErrAttemptNotFound
		}
		return integration.Attempt{}, fmt.Errorf("failed to get integration attempt: %w", err)
	}
	return attempt, nil
}

func (r *attemptRepository) MarkSuccess(ctx context.Context, id string, providerRef string, details map[string]interface{}) error {
	q := GetQuerier(ctx, r.db)

	payload, err := marshalDetails(details)
	if err != nil {
		return err
	}

	tag, err := q.Exec(ctx, `
		UPDATE payroll_integration_attempts
		SET status = 'SUCCESS', provider_reference = $2, error_message = NULL,
			response_details = COALESCE($3, response_details), updated_at = NOW()
		WHERE id = $1`,
		id, providerRef, payload,
	)
	if err != nil {
		return fmt.Errorf("failed to mark attempt successful: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return integration.ErrAttemptNotFound
	}
	return nil
}

func (r *attemptRepository) MarkFailed(ctx context.Context, id string, errorMessage string, details map[string]interface{}) error {
	q := GetQuerier(ctx, r.db)

	payload, err := marshalDetails(details)
	if err != nil {
		return err
	}

	tag, err := q.Exec(ctx, `
		UPDATE payroll_integration_attempts
		SET status = 'FAILED', error_message = $2,
			response_details = COALESCE($3, response_details), updated_at = NOW()
		WHERE id = $1`,
		id, errorMessage, payload,
	)
	if err != nil {
		return fmt.Errorf("failed to mark attempt failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return integration.ErrAttemptNotFound
	}
	return nil
}

func (r *attemptRepository) MarkSuccessByProviderRef(ctx context.Context, organizationID string, providerRef string) (integration.Attempt, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE payroll_integration_attempts
		SET status = 'SUCCESS', error_message = NULL, updated_at = NOW()
		WHERE organization_id = $1 AND provider_reference = $2
		RETURNING` + attemptColumns

	attempt, err := scanAttempt(q.QueryRow(ctx, query, organizationID, providerRef))
	if err != nil {
		if err == pgx.ErrNoRows {
			return integration.Attempt{}, integration.ErrAttemptNotFound
		}
		return integration.Attempt{}, fmt.Errorf("failed to mark attempt successful by reference: %w", err)
	}
	return attempt, nil
}

func (r *attemptRepository) MarkFailedByProviderRef(ctx context.Context, organizationID string, providerRef string, errorMessage string) (integration.Attempt, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE payroll_integration_attempts
		SET status = 'FAILED', error_message = $3, updated_at = NOW()
		WHERE organization_id = $1 AND provider_reference = $2
		RETURNING` + attemptColumns

	attempt, err := scanAttempt(q.QueryRow(ctx, query, organizationID, providerRef, errorMessage))
	if err != nil {
		if err == pgx.ErrNoRows {
			return integration.Attempt{}, integration.ErrAttemptNotFound
		}
		return integration.Attempt{}, fmt.Errorf("failed to mark attempt failed by reference: %w", err)
	}
	return attempt, nil
}

// ClaimForRetry relies on the single UPDATE being atomic: only one caller can
// move a FAILED row to PROCESSING, and the retry_count guard caps retries at
// the configured maximum.
func (r *attemptRepository) ClaimForRetry(ctx context.Context, id string, maxRetries int) (integration.Attempt, bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE payroll_integration_attempts
		SET status = 'PROCESSING', retry_count = retry_count + 1,
			last_retry_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND status = 'FAILED' AND retry_count < $2
		RETURNING` + attemptColumns

	attempt, err := scanAttempt(q.QueryRow(ctx, query, id, maxRetries))
	if err != nil {
		if err == pgx.ErrNoRows {
			return integration.Attempt{}, false, nil
		}
		return integration.Attempt{}, false, fmt.Errorf("failed to claim attempt for retry: %w", err)
	}
	return attempt, true, nil
}

func (r *attemptRepository) ListRetryEligible(ctx context.Context, maxRetries int) ([]integration.Attempt, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT` + attemptColumns + `
		FROM payroll_integration_attempts
		WHERE status = 'FAILED' AND retry_count < $1
		ORDER BY created_at ASC`

	rows, err := q.Query(ctx, query, maxRetries)
	if err != nil {
		return nil, fmt.Errorf("failed to list retry eligible attempts: %w", err)
	}
	defer rows.Close()

	var attempts []integration.Attempt
	for rows.Next() {
		attempt, err := scanAttempt(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan integration attempt: %w", err)
		}
		attempts = append(attempts, attempt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate integration attempts: %w", err)
	}
	return attempts, nil
}

func (r *attemptRepository) CountFailedSince(ctx context.Context, organizationID string, since time.Time) (int, error) {
	q := GetQuerier(ctx, r.db)

	var count int
	err := q.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM payroll_integration_attempts
		WHERE organization_id = $1 AND status = 'FAILED' AND updated_at >= $2`,
		organizationID, since,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count failed attempts: %w", err)
	}
	return count, nil
}

func (r *attemptRepository) CountRetryEligible(ctx context.Context, organizationID string, maxRetries int) (int, error) {
	q := GetQuerier(ctx, r.db)

	var count int
	err := q.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM payroll_integration_attempts
		WHERE organization_id = $1 AND status = 'FAILED' AND retry_count < $2`,
		organizationID, maxRetries,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count retry eligible attempts: %w", err)
	}
	return count, nil
}

func (r *attemptRepository) Stats(ctx context.Context, organizationID string, since time.Time) (integration.AttemptStats, error) {
	q := GetQuerier(ctx, r.db)

	var stats integration.AttemptStats
	err := q.QueryRow(ctx, `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'SUCCESS'),
			COUNT(*) FILTER (WHERE status = 'FAILED'),
			COALESCE(AVG(EXTRACT(EPOCH FROM (updated_at - created_at))) FILTER (WHERE status = 'SUCCESS'), 0)
		FROM payroll_integration_attempts
		WHERE organization_id = $1 AND created_at >= $2`,
		organizationID, since,
	).Scan(&stats.Total, &stats.Succeeded, &stats.Failed, &stats.AvgProcessingSeconds)
	if err != nil {
		return integration.AttemptStats{}, fmt.Errorf("failed to aggregate attempt stats: %w", err)
	}
	return stats, nil
}

func scanAttempt(row pgx.Row) (integration.Attempt, error) {
	var attempt integration.Attempt
	var details []byte

	err := row.Scan(
		&attempt.ID, &attempt.PayrollRunID, &attempt.OrganizationID, &attempt.ProviderName, &attempt.ProviderReference,
		&attempt.Status, &attempt.ErrorMessage, &attempt.RetryCount, &attempt.LastRetryAt, &details,
		&attempt.CreatedAt, &attempt.UpdatedAt,
	)
	if err != nil {
		return integration.Attempt{}, err
	}

	if len(details) > 0 {
		if err := json.Unmarshal(details, &attempt.ResponseDetails); err != nil {
			return integration.Attempt{}, fmt.Errorf("failed to unmarshal response details: %w", err)
		}
	}
	return attempt, nil
}

func marshalDetails(details map[string]interface{}) ([]byte, error) {
	if details == nil {
		return nil, nil
	}
	payload, err := json.Marshal(details)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response details: %w", err)
	}
	return payload, nil
}
