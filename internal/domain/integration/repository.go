package integration

import (
	"context"
	"time"
)

// AttemptRepository persists integration attempts. Concurrent updates to one
// attempt id are serialized by the store; ClaimForRetry is the only path
// that moves a FAILED attempt back into PROCESSING.
type AttemptRepository interface {
	Create(ctx context.Context, attempt Attempt) (Attempt, error)
	GetByID(ctx context.Context, id string) (Attempt, error)

	MarkSuccess(ctx context.Context, id string, providerRef string, details map[string]interface{}) error
	MarkFailed(ctx context.Context, id string, errorMessage string, details map[string]interface{}) error
	MarkSuccessByProviderRef(ctx context.Context, organizationID string, providerRef string) (Attempt, error)
	MarkFailedByProviderRef(ctx context.Context, organizationID string, providerRef string, errorMessage string) (Attempt, error)

	// ClaimForRetry atomically transitions FAILED -> PROCESSING and
	// increments retry_count, provided retry_count < maxRetries. The bool
	// result reports whether the claim won; a lost claim means the attempt
	// is already terminal, in flight, or exhausted.
	ClaimForRetry(ctx context.Context, id string, maxRetries int) (Attempt, bool, error)

	// ListRetryEligible returns FAILED attempts with retry_count < maxRetries
	// across all organizations.
	ListRetryEligible(ctx context.Context, maxRetries int) ([]Attempt, error)

	CountFailedSince(ctx context.Context, organizationID string, since time.Time) (int, error)
	CountRetryEligible(ctx context.Context, organizationID string, maxRetries int) (int, error)

	// Stats aggregates attempt outcomes since the given time.
	Stats(ctx context.Context, organizationID string, since time.Time) (AttemptStats, error)
}

// AttemptStats is a window aggregate over attempts for one organization.
type AttemptStats struct {
	Total                int
	Succeeded            int
	Failed               int
	AvgProcessingSeconds float64
}

// SettingsRepository persists per-organization provider settings.
type SettingsRepository interface {
	GetByOrganization(ctx context.Context, organizationID string) (ProviderSettings, error)
	Upsert(ctx context.Context, settings ProviderSettings) (ProviderSettings, error)
	ListOrganizationIDs(ctx context.Context) ([]string, error)
}

// WebhookEventRepository records verified inbound events.
type WebhookEventRepository interface {
	Create(ctx context.Context, event WebhookEvent) (WebhookEvent, error)
	CountFailedSince(ctx context.Context, organizationID string, since time.Time) (int, error)
}
