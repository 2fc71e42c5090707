package handlers

import (
	"net/http"

	"github.com/vitrine/checkout-service/internal/application/ports"
	"github.com/vitrine/checkout-service/internal/infrastructure/http/response"
	"github.com/vitrine/checkout-service/internal/pkg/logger"
)

type PostalHandler struct {
	lookup ports.PostalLookup
	log    *logger.Logger
}

func NewPostalHandler(lookup ports.PostalLookup, log *logger.Logger) *PostalHandler {
	return &PostalHandler{lookup: lookup, log: log}
}

// HandleLookup prefills address fields from a postal code. An unknown
// code returns an empty result so the form falls back to manual entry.
func (h *PostalHandler) HandleLookup() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		postalCode := r.URL.Query().Get("postal_code")
		if postalCode == "" {
			response.WriteValidationError(w, "Validation failed", map[string]string{
				"postal_code": "postal_code is required",
			})
			return
		}

		addr, err := h.lookup.Lookup(r.Context(), postalCode)
		if err != nil {
			h.log.Warn("Postal lookup failed", "error", err, "postal_code", postalCode)
			response.WriteSuccess(w, map[string]bool{"found": false})
			return
		}
		if addr == nil {
			response.WriteSuccess(w, map[string]bool{"found": false})
			return
		}

		response.WriteSuccess(w, addr)
	}
}
