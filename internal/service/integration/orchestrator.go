package integration

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/paygrid-hq/paygrid-backend-go/internal/domain/integration"
	"github.com/paygrid-hq/paygrid-backend-go/internal/domain/notification"
	"github.com/paygrid-hq/paygrid-backend-go/internal/domain/payroll"
)

// Orchestrator drives a payroll run through the organization's configured
// provider adapter and records every outcome as an integration attempt.
type Orchestrator struct {
	attempts    integration.AttemptRepository
	runs        payroll.RunRepository
	settings    integration.SettingsRepository
	registry    *integration.Registry
	notifier    notification.Service
	maxRetries  int
	retryDelays []time.Duration
}

func NewOrchestrator(
	attempts integration.AttemptRepository,
	runs payroll.RunRepository,
	settings integration.SettingsRepository,
	registry *integration.Registry,
	notifier notification.Service,
	maxRetries int,
) *Orchestrator {
	return &Orchestrator{
		attempts:   attempts,
		runs:       runs,
		settings:   settings,
		registry:   registry,
		notifier:   notifier,
		maxRetries: maxRetries,
		retryDelays: []time.Duration{
			5 * time.Second,
			15 * time.Second,
			30 * time.Second,
		},
	}
}

// SubmitPayrollRun submits a run for the first time. Only APPROVED runs go
// to the provider; once submitted, success or failure, a
// PayrollIntegrationAttempt row is persisted.
func (o *Orchestrator) SubmitPayrollRun(ctx context.Context, run payroll.PayrollRun) (integration.SubmitResult, error) {
	if run.Status != payroll.RunStatusApproved {
		return integration.SubmitResult{}, fmt.Errorf("%w: status is %s", payroll.ErrRunNotApproved, run.Status)
	}

	settings, err := o.settings.GetByOrganization(ctx, run.OrganizationID)
	if err != nil {
		return integration.SubmitResult{}, err
	}

	adapter, err := o.registry.Resolve(settings.ProviderName)
	if err != nil {
		return integration.SubmitResult{}, err
	}

	attempt, err := o.attempts.Create(ctx, integration.Attempt{
		PayrollRunID:   run.ID,
		OrganizationID: run.OrganizationID,
		ProviderName:   settings.ProviderName,
		Status:         integration.AttemptStatusPending,
	})
	if err != nil {
		return integration.SubmitResult{}, fmt.Errorf("failed to create integration attempt: %w", err)
	}

	result := o.execute(ctx, adapter, settings, run, attempt)
	return result, nil
}

// RetryAttempt re-submits one failed attempt. The atomic claim guarantees
// no two retries of the same attempt run concurrently and that exhausted
// attempts are never re-submitted.
func (o *Orchestrator) RetryAttempt(ctx context.Context, attemptID string) error {
	attempt, claimed, err := o.attempts.ClaimForRetry(ctx, attemptID, o.maxRetries)
	if err != nil {
		return err
	}
	if !claimed {
		return nil
	}

	run, err := o.runs.GetByID(ctx, attempt.PayrollRunID, attempt.OrganizationID)
	if err != nil {
		markErr := o.attempts.MarkFailed(ctx, attempt.ID, "payroll run not found: "+err.Error(), nil)
		if markErr != nil {
			slog.Error("Failed to mark orphaned attempt", "attempt_id", attempt.ID, "error", markErr)
		}
		return err
	}

	if run.Status != payroll.RunStatusApproved {
		reason := fmt.Sprintf("%s: status is %s", payroll.ErrRunNotApproved, run.Status)
		if markErr := o.attempts.MarkFailed(ctx, attempt.ID, reason, nil); markErr != nil {
			slog.Error("Failed to mark attempt for unsubmittable run", "attempt_id", attempt.ID, "error", markErr)
		}
		return fmt.Errorf("%w: status is %s", payroll.ErrRunNotApproved, run.Status)
	}

	settings, err := o.settings.GetByOrganization(ctx, attempt.OrganizationID)
	if err != nil {
		if markErr := o.attempts.MarkFailed(ctx, attempt.ID, err.Error(), nil); markErr != nil {
			slog.Error("Failed to mark attempt after settings lookup", "attempt_id", attempt.ID, "error", markErr)
		}
		return err
	}

	adapter, err := o.registry.Resolve(settings.ProviderName)
	if err != nil {
		if markErr := o.attempts.MarkFailed(ctx, attempt.ID, err.Error(), nil); markErr != nil {
			slog.Error("Failed to mark attempt after provider resolution", "attempt_id", attempt.ID, "error", markErr)
		}
		return err
	}

	result := o.execute(ctx, adapter, settings, run, attempt)
	if !result.Success && attempt.RetryCount >= o.maxRetries {
		o.notifyExhausted(ctx, attempt, run)
	}
	return nil
}

// execute performs connect + submit and persists the outcome. It never
// returns without the attempt landing in SUCCESS or FAILED.
func (o *Orchestrator) execute(
	ctx context.Context,
	adapter integration.Provider,
	settings integration.ProviderSettings,
	run payroll.PayrollRun,
	attempt integration.Attempt,
) integration.SubmitResult {
	logger := slog.With(
		"organization_id", run.OrganizationID,
		"payroll_run_id", run.ID,
		"attempt_id", attempt.ID,
		"attempt_count", attempt.RetryCount+1,
		"provider", settings.ProviderName,
	)

	cfg := integration.ProviderConfig{
		APIKey:            settings.APIKey,
		BaseURL:           settings.BaseURL,
		EmployerReference: settings.EmployerReference,
	}

	if err := adapter.Connect(ctx, cfg); err != nil {
		return o.recordFailure(ctx, logger, attempt, err)
	}
	defer func() {
		if err := adapter.Disconnect(ctx); err != nil {
			logger.Warn("Provider disconnect failed", "error", err)
		}
	}()

	result, err := adapter.SubmitPayroll(ctx, run)
	if err != nil {
		return o.recordFailure(ctx, logger, attempt, err)
	}

	if err := o.attempts.MarkSuccess(ctx, attempt.ID, result.ProviderReference, result.Details); err != nil {
		logger.Error("Failed to persist successful attempt", "error", err)
	}

	if _, err := o.runs.UpdateStatus(ctx, run.ID, run.OrganizationID, payroll.RunStatusProcessed, nil); err != nil {
		logger.Warn("Could not advance payroll run status", "error", err)
	}

	logger.Info("Payroll submission succeeded", "provider_reference", result.ProviderReference)

	// Downstream sync is best effort; the submission already succeeded.
	if _, err := adapter.SyncEmployees(ctx); err != nil {
		logger.Warn("Employee sync after submission failed", "error", err)
	}
	if _, err := adapter.GeneratePayslips(ctx, run.ID); err != nil {
		logger.Warn("Payslip generation after submission failed", "error", err)
	}

	return result
}

func (o *Orchestrator) recordFailure(
	ctx context.Context,
	logger *slog.Logger,
	attempt integration.Attempt,
	submitErr error,
) integration.SubmitResult {
	if err := o.attempts.MarkFailed(ctx, attempt.ID, submitErr.Error(), nil); err != nil {
		logger.Error("Failed to persist failed attempt", "error", err)
	}

	logger.Error("Payroll submission failed", "error", submitErr)

	notifyErr := o.notifier.QueueNotification(ctx, notification.CreateNotificationRequest{
		OrganizationID: attempt.OrganizationID,
		Type:           notification.TypeSubmissionFailed,
		Severity:       notification.SeverityHigh,
		Title:          "Payroll submission failed",
		Message:        submitErr.Error(),
		Data: map[string]interface{}{
			"attempt_id":     attempt.ID,
			"payroll_run_id": attempt.PayrollRunID,
			"provider":       attempt.ProviderName,
		},
	})
	if notifyErr != nil {
		logger.Error("Failed to queue submission failure notification", "error", notifyErr)
	}

	return integration.SubmitResult{Success: false, Error: submitErr.Error()}
}

func (o *Orchestrator) notifyExhausted(ctx context.Context, attempt integration.Attempt, run payroll.PayrollRun) {
	err := o.notifier.QueueNotification(ctx, notification.CreateNotificationRequest{
		OrganizationID: attempt.OrganizationID,
		Type:           notification.TypeRetryExhausted,
		Severity:       notification.SeverityHigh,
		Title:          "Payroll integration retries exhausted",
		Message: fmt.Sprintf("Submission of payroll run %s failed %d times and will not be retried automatically",
			run.ID, attempt.RetryCount+1),
		Data: map[string]interface{}{
			"attempt_id":     attempt.ID,
			"payroll_run_id": run.ID,
			"retry_count":    attempt.RetryCount,
			"provider":       attempt.ProviderName,
		},
	})
	if err != nil {
		slog.Error("Failed to queue retry exhaustion notification", "attempt_id", attempt.ID, "error", err)
	}
}
