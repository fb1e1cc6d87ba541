package integration

import (
	"context"

	"github.com/paygrid-hq/paygrid-backend-go/internal/domain/integration"
)

// SubmitByRunID loads the run within the caller's organization and submits it.
func (o *Orchestrator) SubmitByRunID(ctx context.Context, runID, organizationID string) (integration.SubmitResult, error) {
	run, err := o.runs.GetByID(ctx, runID, organizationID)
	if err != nil {
		return integration.SubmitResult{}, err
	}
	return o.SubmitPayrollRun(ctx, run)
}

// RetryForOrganization retries an attempt after checking it belongs to the
// caller's organization.
func (o *Orchestrator) RetryForOrganization(ctx context.Context, attemptID, organizationID string) error {
	attempt, err := o.attempts.GetByID(ctx, attemptID)
	if err != nil {
		return err
	}
	if attempt.OrganizationID != organizationID {
		return integration.ErrAttemptNotFound
	}
	return o.RetryAttempt(ctx, attemptID)
}

// GetAttempt returns one attempt scoped to the caller's organization.
func (o *Orchestrator) GetAttempt(ctx context.Context, attemptID, organizationID string) (integration.AttemptResponse, error) {
	attempt, err := o.attempts.GetByID(ctx, attemptID)
	if err != nil {
		return integration.AttemptResponse{}, err
	}
	if attempt.OrganizationID != organizationID {
		return integration.AttemptResponse{}, integration.ErrAttemptNotFound
	}
	return integration.ToAttemptResponse(attempt), nil
}

func (o *Orchestrator) GetSettings(ctx context.Context, organizationID string) (integration.SettingsResponse, error) {
	settings, err := o.settings.GetByOrganization(ctx, organizationID)
	if err != nil {
		return integration.SettingsResponse{}, err
	}
	return integration.ToSettingsResponse(settings), nil
}

// UpdateSettings validates the provider name against the registry before
// persisting.
func (o *Orchestrator) UpdateSettings(ctx context.Context, organizationID string, req integration.UpsertSettingsRequest) (integration.SettingsResponse, error) {
	if err := req.Validate(); err != nil {
		return integration.SettingsResponse{}, err
	}
	if _, err := o.registry.Resolve(req.ProviderName); err != nil {
		return integration.SettingsResponse{}, err
	}

	updated, err := o.settings.Upsert(ctx, integration.ProviderSettings{
		OrganizationID:    organizationID,
		ProviderName:      req.ProviderName,
		APIKey:            req.APIKey,
		BaseURL:           req.BaseURL,
		EmployerReference: req.EmployerReference,
		WebhookSecret:     req.WebhookSecret,
		Active:            req.Active,
	})
	if err != nil {
		return integration.SettingsResponse{}, err
	}
	return integration.ToSettingsResponse(updated), nil
}
