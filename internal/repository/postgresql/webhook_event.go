package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/paygrid-hq/paygrid-backend-go/internal/domain/integration"
	"github.com/paygrid-hq/paygrid-backend-go/internal/pkg/database"
)

type webhookEventRepository struct {
	db *database.DB
}

func NewWebhookEventRepository(db *database.DB) integration.WebhookEventRepository {
	return &webhookEventRepository{db: db}
}

func (r *webhookEventRepository) Create(ctx context.Context, event integration.WebhookEvent) (integration.WebhookEvent, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO webhook_events (organization_id, event_type, payload, status, error_message)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, organization_id, event_type, payload, status, error_message, received_at`

	var created integration.WebhookEvent
	err := q.QueryRow(ctx, query,
		event.OrganizationID, event.EventType, event.Payload, event.Status, event.ErrorMessage,
	).Scan(
		&created.ID, &created.OrganizationID, &created.EventType, &created.Payload,
		&created.Status, &created.ErrorMessage, &created.ReceivedAt,
	)
	if err != nil {
		return integration.WebhookEvent{}, fmt.Errorf("failed to record webhook event: %w", err)
	}
	return created, nil
}

func (r *webhookEventRepository) CountFailedSince(ctx context.Context, organizationID string, since time.Time) (int, error) {
	q := GetQuerier(ctx, r.db)

	var count int
	err := q.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM webhook_events
		WHERE organization_id = $1 AND status = 'failed' AND received_at >= $2`,
		organizationID, since,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count failed webhook events: %w", err)
	}
	return count, nil
}
