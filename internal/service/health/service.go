package health

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/paygrid-hq/paygrid-backend-go/internal/domain/health"
	"github.com/paygrid-hq/paygrid-backend-go/internal/domain/integration"
	"github.com/paygrid-hq/paygrid-backend-go/internal/domain/notification"
)

const (
	signalWindow = 24 * time.Hour
	reportWindow = 30 * 24 * time.Hour

	// Above this many failures in the signal window the issue escalates
	// from MEDIUM to HIGH.
	failureEscalationThreshold = 5
)

// Service evaluates integration health per organization from live connection
// checks and stored attempt history.
type Service struct {
	attempts  integration.AttemptRepository
	settings  integration.SettingsRepository
	events    integration.WebhookEventRepository
	snapshots health.SnapshotRepository
	registry  *integration.Registry
	notifier  notification.Service
	maxRetry  int
}

func NewHealthService(
	attempts integration.AttemptRepository,
	settings integration.SettingsRepository,
	events integration.WebhookEventRepository,
	snapshots health.SnapshotRepository,
	registry *integration.Registry,
	notifier notification.Service,
	maxRetry int,
) *Service {
	return &Service{
		attempts:  attempts,
		settings:  settings,
		events:    events,
		snapshots: snapshots,
		registry:  registry,
		notifier:  notifier,
		maxRetry:  maxRetry,
	}
}

// CheckHealth gathers every signal independently and derives the overall
// status. Signal collection errors are logged and the signal skipped rather
// than failing the whole check.
func (s *Service) CheckHealth(ctx context.Context, organizationID string) (health.Snapshot, error) {
	var issues []health.Issue
	now := time.Now().UTC()

	issues = append(issues, s.connectionIssues(ctx, organizationID)...)

	since := now.Add(-signalWindow)

	if n, err := s.attempts.CountFailedSince(ctx, organizationID, since); err != nil {
		slog.Warn("Failed attempts signal unavailable", "organization_id", organizationID, "error", err)
	} else if n > 0 {
		severity := health.SeverityMedium
		if n > failureEscalationThreshold {
			severity = health.SeverityHigh
		}
		issues = append(issues, health.Issue{
			Type:     health.IssueFailedAttempts,
			Severity: severity,
			Message:  fmt.Sprintf("%d payroll submissions failed in the last 24 hours", n),
			Details:  map[string]interface{}{"count": n},
		})
	}

	if n, err := s.attempts.CountRetryEligible(ctx, organizationID, s.maxRetry); err != nil {
		slog.Warn("Pending retries signal unavailable", "organization_id", organizationID, "error", err)
	} else if n > 0 {
		issues = append(issues, health.Issue{
			Type:     health.IssuePendingRetries,
			Severity: health.SeverityLow,
			Message:  fmt.Sprintf("%d failed submissions are queued for automatic retry", n),
			Details:  map[string]interface{}{"count": n},
		})
	}

	if n, err := s.events.CountFailedSince(ctx, organizationID, since); err != nil {
		slog.Warn("Webhook failures signal unavailable", "organization_id", organizationID, "error", err)
	} else if n > 0 {
		severity := health.SeverityMedium
		if n > failureEscalationThreshold {
			severity = health.SeverityHigh
		}
		issues = append(issues, health.Issue{
			Type:     health.IssueWebhookFailures,
			Severity: severity,
			Message:  fmt.Sprintf("%d webhook events failed processing in the last 24 hours", n),
			Details:  map[string]interface{}{"count": n},
		})
	}

	return health.Snapshot{
		OrganizationID: organizationID,
		Status:         health.DeriveStatus(issues),
		Issues:         issues,
		CreatedAt:      now,
	}, nil
}

// connectionIssues performs a live connection probe against the configured
// provider and inspects webhook configuration.
func (s *Service) connectionIssues(ctx context.Context, organizationID string) []health.Issue {
	settings, err := s.settings.GetByOrganization(ctx, organizationID)
	if err != nil {
		return []health.Issue{{
			Type:     health.IssueConnectionFailed,
			Severity: health.SeverityHigh,
			Message:  "no provider is configured for this organization",
		}}
	}

	var issues []health.Issue

	if settings.WebhookSecret == "" {
		issues = append(issues, health.Issue{
			Type:     health.IssueWebhookSecretMissing,
			Severity: health.SeverityMedium,
			Message:  "webhook secret is not configured; provider callbacks cannot be verified",
		})
	}

	adapter, err := s.registry.Resolve(settings.ProviderName)
	if err != nil {
		return append(issues, health.Issue{
			Type:     health.IssueConnectionFailed,
			Severity: health.SeverityHigh,
			Message:  fmt.Sprintf("provider %q is not supported", settings.ProviderName),
		})
	}

	cfg := integration.ProviderConfig{
		APIKey:            settings.APIKey,
		BaseURL:           settings.BaseURL,
		EmployerReference: settings.EmployerReference,
	}
	if err := adapter.Connect(ctx, cfg); err != nil {
		return append(issues, health.Issue{
			Type:     health.IssueConnectionFailed,
			Severity: health.SeverityHigh,
			Message:  "could not connect to the payroll provider",
			Details:  map[string]interface{}{"error": err.Error()},
		})
	}
	defer func() {
		if err := adapter.Disconnect(ctx); err != nil {
			slog.Warn("Provider disconnect after health probe failed", "organization_id", organizationID, "error", err)
		}
	}()

	if err := adapter.ValidateConnection(ctx); err != nil {
		issues = append(issues, health.Issue{
			Type:     health.IssueConnectionFailed,
			Severity: health.SeverityHigh,
			Message:  "provider connection validation failed",
			Details:  map[string]interface{}{"error": err.Error()},
		})
	}

	return issues
}

// GenerateHealthReport runs a fresh check and augments it with trailing
// 30-day reliability metrics and remediation advice.
func (s *Service) GenerateHealthReport(ctx context.Context, organizationID string) (health.Report, error) {
	snapshot, err := s.CheckHealth(ctx, organizationID)
	if err != nil {
		return health.Report{}, err
	}

	since := time.Now().UTC().Add(-reportWindow)

	metrics := health.Metrics{SuccessRate: 100, UptimePercent: 100}

	stats, err := s.attempts.Stats(ctx, organizationID, since)
	if err != nil {
		slog.Warn("Attempt stats unavailable for health report", "organization_id", organizationID, "error", err)
	} else if stats.Total > 0 {
		metrics.SuccessRate = float64(stats.Succeeded) / float64(stats.Total) * 100
		metrics.AvgProcessingSeconds = stats.AvgProcessingSeconds
	}

	total, err := s.snapshots.CountSince(ctx, organizationID, since)
	if err != nil {
		slog.Warn("Snapshot history unavailable for health report", "organization_id", organizationID, "error", err)
	} else if total > 0 {
		unhealthy, err := s.snapshots.CountByStatusSince(ctx, organizationID, health.StatusUnhealthy, since)
		if err != nil {
			slog.Warn("Snapshot status counts unavailable", "organization_id", organizationID, "error", err)
		} else {
			metrics.UptimePercent = float64(total-unhealthy) / float64(total) * 100
		}
	}

	return health.Report{
		Snapshot:        snapshot,
		Metrics:         metrics,
		Recommendations: recommendations(snapshot.Issues),
	}, nil
}

// RunHealthSweep checks every configured organization, persists the snapshot
// and alerts operators when an integration turns UNHEALTHY. One failing
// organization never blocks the rest.
func (s *Service) RunHealthSweep(ctx context.Context) error {
	organizationIDs, err := s.settings.ListOrganizationIDs(ctx)
	if err != nil {
		return fmt.Errorf("failed to list organizations for health sweep: %w", err)
	}

	for _, organizationID := range organizationIDs {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		snapshot, err := s.CheckHealth(ctx, organizationID)
		if err != nil {
			slog.Error("Health check failed", "organization_id", organizationID, "error", err)
			continue
		}

		if _, err := s.snapshots.Create(ctx, snapshot); err != nil {
			slog.Error("Failed to persist health snapshot", "organization_id", organizationID, "error", err)
		}

		if snapshot.Status == health.StatusUnhealthy {
			s.notifyUnhealthy(ctx, snapshot)
		}
	}
	return nil
}

func (s *Service) notifyUnhealthy(ctx context.Context, snapshot health.Snapshot) {
	issueTypes := make([]string, len(snapshot.Issues))
	for i, issue := range snapshot.Issues {
		issueTypes[i] = string(issue.Type)
	}

	err := s.notifier.QueueNotification(ctx, notification.CreateNotificationRequest{
		OrganizationID: snapshot.OrganizationID,
		Type:           notification.TypeIntegrationUnhealthy,
		Severity:       notification.SeverityHigh,
		Title:          "Payroll integration is unhealthy",
		Message:        fmt.Sprintf("%d issues detected; payroll submissions may be failing", len(snapshot.Issues)),
		Data: map[string]interface{}{
			"status": string(snapshot.Status),
			"issues": issueTypes,
		},
	})
	if err != nil {
		slog.Error("Failed to queue unhealthy notification", "organization_id", snapshot.OrganizationID, "error", err)
	}
}

func recommendations(issues []health.Issue) []string {
	var recs []string
	for _, issue := range issues {
		switch issue.Type {
		case health.IssueConnectionFailed:
			recs = append(recs, "Verify the provider API key and base URL in the integration settings")
		case health.IssueFailedAttempts:
			recs = append(recs, "Review recent failed submissions and their provider error messages")
		case health.IssuePendingRetries:
			recs = append(recs, "Pending retries will be re-submitted automatically; no action needed unless they keep failing")
		case health.IssueWebhookSecretMissing:
			recs = append(recs, "Configure a webhook secret so provider callbacks can be verified")
		case health.IssueWebhookFailures:
			recs = append(recs, "Inspect the webhook event log for malformed or unmatched provider events")
		}
	}
	if len(recs) == 0 {
		recs = append(recs, "Integration is operating normally")
	}
	return recs
}
