package http

import (
	"net/http"

	"github.com/paygrid-hq/paygrid-backend-go/internal/handler/http/response"
	"github.com/paygrid-hq/paygrid-backend-go/internal/pkg/jwt"
	healthservice "github.com/paygrid-hq/paygrid-backend-go/internal/service/health"
)

type HealthHandler interface {
	CheckHealth(w http.ResponseWriter, r *http.Request)
	GetHealthReport(w http.ResponseWriter, r *http.Request)
}

type healthHandlerImpl struct {
	healthService *healthservice.Service
}

func NewHealthHandler(healthService *healthservice.Service) HealthHandler {
	return &healthHandlerImpl{healthService: healthService}
}

func (h *healthHandlerImpl) CheckHealth(w http.ResponseWriter, r *http.Request) {
	organizationID, _, err := jwt.ClaimsFromContext(r.Context())
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}

	snapshot, err := h.healthService.CheckHealth(r.Context(), organizationID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, snapshot)
}

func (h *healthHandlerImpl) GetHealthReport(w http.ResponseWriter, r *http.Request) {
	organizationID, _, err := jwt.ClaimsFromContext(r.Context())
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}

	report, err := h.healthService.GenerateHealthReport(r.Context(), organizationID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, report)
}
