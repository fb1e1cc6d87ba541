package http

import (
	"net/http"

	"github.com/paygrid-hq/paygrid-backend-go/internal/domain/tax"
	"github.com/paygrid-hq/paygrid-backend-go/internal/handler/http/response"
)

type TaxHandler interface {
	ListJurisdictions(w http.ResponseWriter, r *http.Request)
}

type taxHandlerImpl struct {
	store tax.ConfigStore
}

func NewTaxHandler(store tax.ConfigStore) TaxHandler {
	return &taxHandlerImpl{store: store}
}

func (h *taxHandlerImpl) ListJurisdictions(w http.ResponseWriter, r *http.Request) {
	response.Success(w, map[string]interface{}{
		"jurisdictions": h.store.ListJurisdictions(),
		"tax_year":      h.store.CurrentTaxYear(),
	})
}
