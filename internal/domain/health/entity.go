package health

import (
	"time"
)

// Status enum
type Status string

const (
	StatusHealthy   Status = "HEALTHY"
	StatusDegraded  Status = "DEGRADED"
	StatusUnhealthy Status = "UNHEALTHY"
)

// Severity enum
type Severity string

const (
	SeverityLow    Severity = "LOW"
	SeverityMedium Severity = "MEDIUM"
	SeverityHigh   Severity = "HIGH"
)

// IssueType enum
type IssueType string

const (
	IssueConnectionFailed     IssueType = "connection_failed"
	IssueFailedAttempts       IssueType = "failed_attempts"
	IssuePendingRetries       IssueType = "pending_retries"
	IssueWebhookSecretMissing IssueType = "webhook_secret_missing"
	IssueWebhookFailures      IssueType = "webhook_failures"
)

// Issue is one independent health signal.
type Issue struct {
	Type     IssueType              `json:"type"`
	Severity Severity               `json:"severity"`
	Message  string                 `json:"message"`
	Details  map[string]interface{} `json:"details,omitempty"`
}

// Snapshot is a derived, point-in-time verdict on integration reliability
// for one organization. Never mutated after creation.
type Snapshot struct {
	ID             string    `json:"id,omitempty"`
	OrganizationID string    `json:"organization_id"`
	Status         Status    `json:"status"`
	Issues         []Issue   `json:"issues"`
	CreatedAt      time.Time `json:"created_at"`
}

// DeriveStatus applies the ordering rule: any HIGH issue makes the snapshot
// UNHEALTHY, else any MEDIUM makes it DEGRADED, else HEALTHY.
func DeriveStatus(issues []Issue) Status {
	status := StatusHealthy
	for _, issue := range issues {
		switch issue.Severity {
		case SeverityHigh:
			return StatusUnhealthy
		case SeverityMedium:
			status = StatusDegraded
		}
	}
	return status
}

// Metrics are trailing 30-day aggregates.
type Metrics struct {
	SuccessRate          float64 `json:"success_rate"`
	AvgProcessingSeconds float64 `json:"avg_processing_seconds"`
	UptimePercent        float64 `json:"uptime_percent"`
}

// Report is a snapshot enriched with metrics and remediation advice.
type Report struct {
	Snapshot        Snapshot `json:"snapshot"`
	Metrics         Metrics  `json:"metrics"`
	Recommendations []string `json:"recommendations"`
}
