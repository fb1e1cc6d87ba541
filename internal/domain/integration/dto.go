package integration

import (
	"time"

	"github.com/paygrid-hq/paygrid-backend-go/internal/pkg/validator"
)

// ========== REQUEST DTOs ==========

// UpsertSettingsRequest replaces the organization's provider configuration.
type UpsertSettingsRequest struct {
	ProviderName      string `json:"provider_name"`
	APIKey            string `json:"api_key"`
	BaseURL           string `json:"base_url"`
	EmployerReference string `json:"employer_reference"`
	WebhookSecret     string `json:"webhook_secret"`
	Active            bool   `json:"active"`
}

func (r *UpsertSettingsRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ProviderName) {
		errs = append(errs, validator.ValidationError{Field: "provider_name", Message: "is required"})
	}
	if validator.IsEmpty(r.APIKey) {
		errs = append(errs, validator.ValidationError{Field: "api_key", Message: "is required"})
	}
	if validator.IsEmpty(r.EmployerReference) {
		errs = append(errs, validator.ValidationError{Field: "employer_reference", Message: "is required"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ========== RESPONSE DTOs ==========

// SettingsResponse never echoes the API key or webhook secret back.
type SettingsResponse struct {
	OrganizationID    string    `json:"organization_id"`
	ProviderName      string    `json:"provider_name"`
	BaseURL           string    `json:"base_url,omitempty"`
	EmployerReference string    `json:"employer_reference"`
	WebhookConfigured bool      `json:"webhook_configured"`
	Active            bool      `json:"active"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func ToSettingsResponse(s ProviderSettings) SettingsResponse {
	return SettingsResponse{
		OrganizationID:    s.OrganizationID,
		ProviderName:      s.ProviderName,
		BaseURL:           s.BaseURL,
		EmployerReference: s.EmployerReference,
		WebhookConfigured: s.WebhookSecret != "",
		Active:            s.Active,
		CreatedAt:         s.CreatedAt,
		UpdatedAt:         s.UpdatedAt,
	}
}

type AttemptResponse struct {
	ID                string                 `json:"id"`
	PayrollRunID      string                 `json:"payroll_run_id"`
	ProviderName      string                 `json:"provider_name"`
	ProviderReference *string                `json:"provider_reference,omitempty"`
	Status            string                 `json:"status"`
	ErrorMessage      *string                `json:"error_message,omitempty"`
	RetryCount        int                    `json:"retry_count"`
	LastRetryAt       *time.Time             `json:"last_retry_at,omitempty"`
	ResponseDetails   map[string]interface{} `json:"response_details,omitempty"`
	CreatedAt         time.Time              `json:"created_at"`
	UpdatedAt         time.Time              `json:"updated_at"`
}

func ToAttemptResponse(a Attempt) AttemptResponse {
	return AttemptResponse{
		ID:                a.ID,
		PayrollRunID:      a.PayrollRunID,
		ProviderName:      a.ProviderName,
		ProviderReference: a.ProviderReference,
		Status:            string(a.Status),
		ErrorMessage:      a.ErrorMessage,
		RetryCount:        a.RetryCount,
		LastRetryAt:       a.LastRetryAt,
		ResponseDetails:   a.ResponseDetails,
		CreatedAt:         a.CreatedAt,
		UpdatedAt:         a.UpdatedAt,
	}
}
