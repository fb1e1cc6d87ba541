package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/paygrid-hq/paygrid-backend-go/internal/domain/integration"
	"github.com/paygrid-hq/paygrid-backend-go/internal/domain/notification"
	"github.com/paygrid-hq/paygrid-backend-go/internal/domain/payroll"
	"github.com/paygrid-hq/paygrid-backend-go/internal/pkg/provider"
)

const (
	EventPayrollProcessed = "payroll.processed"
	EventPayrollFailed    = "payroll.failed"
	EventPayslipGenerated = "payslip.generated"
	EventTaxFiled         = "tax.filed"
)

// webhookPayload is the envelope providers post back to us.
type webhookPayload struct {
	Event string `json:"event"`
	Data  struct {
		ProviderReference string   `json:"provider_reference"`
		PayrollRunID      string   `json:"payroll_run_id"`
		Error             string   `json:"error,omitempty"`
		PayslipIDs        []string `json:"payslip_ids,omitempty"`
		TaxYear           string   `json:"tax_year,omitempty"`
		Period            string   `json:"period,omitempty"`
	} `json:"data"`
}

// WebhookProcessor verifies and applies inbound provider events.
type WebhookProcessor struct {
	settings integration.SettingsRepository
	attempts integration.AttemptRepository
	runs     payroll.RunRepository
	events   integration.WebhookEventRepository
	notifier notification.Service
}

func NewWebhookProcessor(
	settings integration.SettingsRepository,
	attempts integration.AttemptRepository,
	runs payroll.RunRepository,
	events integration.WebhookEventRepository,
	notifier notification.Service,
) *WebhookProcessor {
	return &WebhookProcessor{
		settings: settings,
		attempts: attempts,
		runs:     runs,
		events:   events,
		notifier: notifier,
	}
}

// Process authenticates the raw payload against the organization's webhook
// secret before touching any state. Unverified requests leave no trace.
func (p *WebhookProcessor) Process(ctx context.Context, organizationID string, payload []byte, signature string) error {
	settings, err := p.settings.GetByOrganization(ctx, organizationID)
	if err != nil {
		return integration.ErrUnauthorizedWebhook
	}
	if settings.WebhookSecret == "" || !provider.VerifySignature(settings.WebhookSecret, payload, signature) {
		slog.Warn("Rejected webhook with invalid signature", "organization_id", organizationID)
		return integration.ErrUnauthorizedWebhook
	}

	var event webhookPayload
	if err := json.Unmarshal(payload, &event); err != nil {
		parseErr := fmt.Errorf("malformed webhook payload: %w", err)
		p.recordEvent(ctx, organizationID, "unknown", payload, parseErr)
		return parseErr
	}

	procErr := p.handle(ctx, organizationID, event)
	p.recordEvent(ctx, organizationID, event.Event, payload, procErr)
	return procErr
}

func (p *WebhookProcessor) handle(ctx context.Context, organizationID string, event webhookPayload) error {
	switch event.Event {
	case EventPayrollProcessed:
		return p.handlePayrollProcessed(ctx, organizationID, event)
	case EventPayrollFailed:
		return p.handlePayrollFailed(ctx, organizationID, event)
	case EventPayslipGenerated:
		return p.notify(ctx, organizationID, notification.CreateNotificationRequest{
			Type:     notification.TypePayslipGenerated,
			Severity: notification.SeverityLow,
			Title:    "Payslips generated",
			Message:  fmt.Sprintf("%d payslips are ready for payroll run %s", len(event.Data.PayslipIDs), event.Data.PayrollRunID),
			Data: map[string]interface{}{
				"payroll_run_id": event.Data.PayrollRunID,
				"payslip_ids":    event.Data.PayslipIDs,
			},
		})
	case EventTaxFiled:
		return p.notify(ctx, organizationID, notification.CreateNotificationRequest{
			Type:     notification.TypeTaxFiled,
			Severity: notification.SeverityLow,
			Title:    "Tax filing accepted",
			Message:  fmt.Sprintf("Tax filing for %s %s was accepted by the provider", event.Data.TaxYear, event.Data.Period),
			Data: map[string]interface{}{
				"tax_year": event.Data.TaxYear,
				"period":   event.Data.Period,
			},
		})
	default:
		return fmt.Errorf("unsupported webhook event type %q", event.Event)
	}
}

func (p *WebhookProcessor) handlePayrollProcessed(ctx context.Context, organizationID string, event webhookPayload) error {
	attempt, err := p.attempts.MarkSuccessByProviderRef(ctx, organizationID, event.Data.ProviderReference)
	if err != nil {
		return fmt.Errorf("failed to resolve attempt for provider reference %q: %w", event.Data.ProviderReference, err)
	}

	if _, err := p.runs.UpdateStatus(ctx, attempt.PayrollRunID, organizationID, payroll.RunStatusProcessed, nil); err != nil {
		// The run may already be PROCESSED from the synchronous path.
		slog.Warn("Could not advance payroll run from webhook",
			"payroll_run_id", attempt.PayrollRunID, "error", err)
	}

	return p.notify(ctx, organizationID, notification.CreateNotificationRequest{
		Type:     notification.TypePayrollProcessed,
		Severity: notification.SeverityLow,
		Title:    "Payroll run processed",
		Message:  fmt.Sprintf("Payroll run %s completed at the provider", attempt.PayrollRunID),
		Data: map[string]interface{}{
			"payroll_run_id":     attempt.PayrollRunID,
			"provider_reference": event.Data.ProviderReference,
		},
	})
}

func (p *WebhookProcessor) handlePayrollFailed(ctx context.Context, organizationID string, event webhookPayload) error {
	errorMessage := event.Data.Error
	if errorMessage == "" {
		errorMessage = "provider reported failure without detail"
	}

	attempt, err := p.attempts.MarkFailedByProviderRef(ctx, organizationID, event.Data.ProviderReference, errorMessage)
	if err != nil {
		return fmt.Errorf("failed to resolve attempt for provider reference %q: %w", event.Data.ProviderReference, err)
	}

	return p.notify(ctx, organizationID, notification.CreateNotificationRequest{
		Type:     notification.TypeSubmissionFailed,
		Severity: notification.SeverityHigh,
		Title:    "Provider reported payroll failure",
		Message:  errorMessage,
		Data: map[string]interface{}{
			"payroll_run_id":     attempt.PayrollRunID,
			"attempt_id":         attempt.ID,
			"provider_reference": event.Data.ProviderReference,
		},
	})
}

func (p *WebhookProcessor) notify(ctx context.Context, organizationID string, req notification.CreateNotificationRequest) error {
	req.OrganizationID = organizationID
	if err := p.notifier.QueueNotification(ctx, req); err != nil {
		return fmt.Errorf("failed to queue webhook notification: %w", err)
	}
	return nil
}

func (p *WebhookProcessor) recordEvent(ctx context.Context, organizationID, eventType string, payload []byte, procErr error) {
	event := integration.WebhookEvent{
		OrganizationID: organizationID,
		EventType:      eventType,
		Payload:        payload,
		Status:         integration.WebhookEventProcessed,
	}
	if procErr != nil {
		msg := procErr.Error()
		event.Status = integration.WebhookEventFailed
		event.ErrorMessage = &msg
	}

	if _, err := p.events.Create(ctx, event); err != nil {
		slog.Error("Failed to record webhook event", "organization_id", organizationID, "error", err)
	}
}
