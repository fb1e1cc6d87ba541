package http

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/paygrid-hq/paygrid-backend-go/internal/domain/integration"
	"github.com/paygrid-hq/paygrid-backend-go/internal/handler/http/response"
	"github.com/paygrid-hq/paygrid-backend-go/internal/pkg/jwt"
	integrationservice "github.com/paygrid-hq/paygrid-backend-go/internal/service/integration"
)

const webhookSignatureHeader = "X-Webhook-Signature"

type IntegrationHandler interface {
	SubmitRun(w http.ResponseWriter, r *http.Request)
	RetryAttempt(w http.ResponseWriter, r *http.Request)
	GetAttempt(w http.ResponseWriter, r *http.Request)
	GetSettings(w http.ResponseWriter, r *http.Request)
	UpdateSettings(w http.ResponseWriter, r *http.Request)
	ReceiveWebhook(w http.ResponseWriter, r *http.Request)
}

type integrationHandlerImpl struct {
	orchestrator *integrationservice.Orchestrator
	webhooks     *integrationservice.WebhookProcessor
}

func NewIntegrationHandler(orchestrator *integrationservice.Orchestrator, webhooks *integrationservice.WebhookProcessor) IntegrationHandler {
	return &integrationHandlerImpl{orchestrator: orchestrator, webhooks: webhooks}
}

func (h *integrationHandlerImpl) SubmitRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Payroll run ID is required", nil)
		return
	}

	organizationID, _, err := jwt.ClaimsFromContext(r.Context())
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}

	result, err := h.orchestrator.SubmitByRunID(r.Context(), id, organizationID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	if !result.Success {
		response.SuccessWithMessage(w, "Submission failed and was recorded for retry", result)
		return
	}
	response.SuccessWithMessage(w, "Payroll run submitted", result)
}

func (h *integrationHandlerImpl) RetryAttempt(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Attempt ID is required", nil)
		return
	}

	organizationID, _, err := jwt.ClaimsFromContext(r.Context())
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}

	if err := h.orchestrator.RetryForOrganization(r.Context(), id, organizationID); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Retry processed", nil)
}

func (h *integrationHandlerImpl) GetAttempt(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Attempt ID is required", nil)
		return
	}

	organizationID, _, err := jwt.ClaimsFromContext(r.Context())
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}

	result, err := h.orchestrator.GetAttempt(r.Context(), id, organizationID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *integrationHandlerImpl) GetSettings(w http.ResponseWriter, r *http.Request) {
	organizationID, _, err := jwt.ClaimsFromContext(r.Context())
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}

	result, err := h.orchestrator.GetSettings(r.Context(), organizationID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *integrationHandlerImpl) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	organizationID, _, err := jwt.ClaimsFromContext(r.Context())
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}

	var req integration.UpsertSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.orchestrator.UpdateSettings(r.Context(), organizationID, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Provider settings updated", result)
}

// ReceiveWebhook is unauthenticated; the HMAC signature on the raw body is
// the only credential.
func (h *integrationHandlerImpl) ReceiveWebhook(w http.ResponseWriter, r *http.Request) {
	organizationID := chi.URLParam(r, "organizationID")
	if organizationID == "" {
		response.BadRequest(w, "Organization ID is required", nil)
		return
	}

	payload, err := io.ReadAll(r.Body)
	if err != nil {
		response.BadRequest(w, "Failed to read request body", nil)
		return
	}

	signature := r.Header.Get(webhookSignatureHeader)
	if err := h.webhooks.Process(r.Context(), organizationID, payload, signature); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Webhook processed", nil)
}
