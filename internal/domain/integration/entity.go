package integration

import (
	"time"
)

// AttemptStatus enum
type AttemptStatus string

const (
	AttemptStatusPending    AttemptStatus = "PENDING"
	AttemptStatusProcessing AttemptStatus = "PROCESSING"
	AttemptStatusSuccess    AttemptStatus = "SUCCESS"
	AttemptStatusFailed     AttemptStatus = "FAILED"
	AttemptStatusCancelled  AttemptStatus = "CANCELLED"
)

// ProviderStatus is the canonical status vocabulary every adapter maps its
// provider-specific statuses onto.
type ProviderStatus string

const (
	ProviderStatusPending    ProviderStatus = "PENDING"
	ProviderStatusProcessing ProviderStatus = "PROCESSING"
	ProviderStatusCompleted  ProviderStatus = "COMPLETED"
	ProviderStatusFailed     ProviderStatus = "FAILED"
)

// Attempt is one provider submission try for a payroll run. RetryCount only
// increases and is capped by the orchestrator's configured maximum; a
// SUCCESS attempt is never retried.
type Attempt struct {
	ID                string
	PayrollRunID      string
	OrganizationID    string
	ProviderName      string
	ProviderReference *string
	Status            AttemptStatus
	ErrorMessage      *string
	RetryCount        int
	LastRetryAt       *time.Time
	ResponseDetails   map[string]interface{}
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// ProviderSettings is an organization's provider configuration, including
// the shared secret used to verify inbound webhooks.
type ProviderSettings struct {
	OrganizationID    string
	ProviderName      string
	APIKey            string
	BaseURL           string
	EmployerReference string
	WebhookSecret     string
	Active            bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// WebhookEventStatus enum
type WebhookEventStatus string

const (
	WebhookEventProcessed WebhookEventStatus = "processed"
	WebhookEventFailed    WebhookEventStatus = "failed"
)

// WebhookEvent records one verified inbound provider event and its
// processing outcome. Unverified requests are rejected before any row is
// written.
type WebhookEvent struct {
	ID             string
	OrganizationID string
	EventType      string
	Payload        []byte
	Status         WebhookEventStatus
	ErrorMessage   *string
	ReceivedAt     time.Time
}
