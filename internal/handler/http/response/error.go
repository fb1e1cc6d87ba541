package response

import (
	"errors"
	"net/http"

	"github.com/paygrid-hq/paygrid-backend-go/internal/domain/integration"
	"github.com/paygrid-hq/paygrid-backend-go/internal/domain/payroll"
	"github.com/paygrid-hq/paygrid-backend-go/internal/domain/tax"
	"github.com/paygrid-hq/paygrid-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Tax domain errors
	case errors.Is(err, tax.ErrConfigNotFound):
		NotFound(w, "No rate card exists for this jurisdiction and tax year")

	// Payroll domain errors
	case errors.Is(err, payroll.ErrRunNotFound):
		NotFound(w, "Payroll run not found")
	case errors.Is(err, payroll.ErrInvalidTransition):
		Conflict(w, "Requested status change is not allowed from the current state")
	case errors.Is(err, payroll.ErrRunAlreadyFinal):
		Conflict(w, "Payroll run is already in a terminal state")
	case errors.Is(err, payroll.ErrRunNotApproved):
		Conflict(w, "Payroll run must be approved before submission")

	// Integration domain errors
	case errors.Is(err, integration.ErrUnsupportedProvider):
		BadRequest(w, "Provider is not supported", nil)
	case errors.Is(err, integration.ErrAttemptNotFound):
		NotFound(w, "Integration attempt not found")
	case errors.Is(err, integration.ErrSettingsNotFound):
		NotFound(w, "Provider settings not found for this organization")
	case errors.Is(err, integration.ErrUnauthorizedWebhook):
		Unauthorized(w, "Webhook signature verification failed")
	case errors.Is(err, integration.ErrConnection), errors.Is(err, integration.ErrProvider):
		BadRequest(w, err.Error(), nil)

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
