package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/vitrine/checkout-service/internal/application/cartsync"
	"github.com/vitrine/checkout-service/internal/application/use_cases"
	domainErrors "github.com/vitrine/checkout-service/internal/domain/errors"
	"github.com/vitrine/checkout-service/internal/domain/shipping"
	"github.com/vitrine/checkout-service/internal/infrastructure/http/response"
	"github.com/vitrine/checkout-service/internal/infrastructure/monitoring"
	"github.com/vitrine/checkout-service/internal/pkg/generator"
	"github.com/vitrine/checkout-service/internal/pkg/logger"
)

type QuoteHandler struct {
	registry *cartsync.Registry
	quotes   *use_cases.QuoteUseCase
	codeGen  *generator.CodeGenerator
	log      *logger.Logger
}

func NewQuoteHandler(registry *cartsync.Registry, quotes *use_cases.QuoteUseCase, log *logger.Logger) *QuoteHandler {
	return &QuoteHandler{
		registry: registry,
		quotes:   quotes,
		codeGen:  generator.NewCodeGenerator(),
		log:      log,
	}
}

type addressPayload struct {
	PostalCode   string `json:"postal_code"`
	Street       string `json:"street"`
	Number       string `json:"number"`
	Neighborhood string `json:"neighborhood"`
	City         string `json:"city"`
	State        string `json:"state"`
	Complement   string `json:"complement"`
}

func (p addressPayload) toDomain() shipping.Address {
	return shipping.Address{
		PostalCode:   p.PostalCode,
		Street:       p.Street,
		Number:       p.Number,
		Neighborhood: p.Neighborhood,
		City:         p.City,
		State:        p.State,
		Complement:   p.Complement,
	}
}

type quoteRequest struct {
	StoreID   string         `json:"store_id"`
	SessionID string         `json:"session_id"`
	Address   addressPayload `json:"address"`
}

func (req *quoteRequest) validate() map[string]string {
	errs := make(map[string]string)
	if req.StoreID == "" {
		errs["store_id"] = "store_id is required"
	}
	if req.SessionID == "" {
		errs["session_id"] = "session_id is required"
	}
	return errs
}

// HandleQuote recomputes the checkout totals for the session's cart
// against the submitted address.
func (h *QuoteHandler) HandleQuote() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		var req quoteRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.WriteValidationError(w, "Invalid request body", nil)
			return
		}
		if errs := req.validate(); len(errs) > 0 {
			response.WriteValidationError(w, "Validation failed", errs)
			return
		}

		mgr, err := h.registry.Get(r.Context(), req.StoreID, req.SessionID)
		if err != nil {
			response.WriteDomainError(w, err)
			return
		}

		quote, err := h.quotes.BuildDebounced(r.Context(), req.StoreID, req.SessionID, mgr.Items(), req.Address.toDomain(), mgr.Coupon())
		if err != nil {
			if errors.Is(err, domainErrors.ErrResolutionSuperseded) {
				// A newer quote is already in flight for this session.
				response.WriteError(w, http.StatusConflict, response.StatusConflict, "Quote superseded")
				return
			}
			response.WriteDomainError(w, err)
			return
		}

		response.WriteSuccess(w, quote)
	}
}

type checkoutResponse struct {
	CartID   string  `json:"cart_id"`
	CartCode string  `json:"cart_code"`
	Total    float64 `json:"total"`
}

// HandleCheckout validates the final quote, forces the cart to sync
// and hands the remote cart identity to the caller.
func (h *QuoteHandler) HandleCheckout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		var req quoteRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.WriteValidationError(w, "Invalid request body", nil)
			return
		}
		if errs := req.validate(); len(errs) > 0 {
			response.WriteValidationError(w, "Validation failed", errs)
			return
		}

		mgr, err := h.registry.Get(r.Context(), req.StoreID, req.SessionID)
		if err != nil {
			response.WriteDomainError(w, err)
			return
		}

		if len(mgr.Items()) == 0 {
			monitoring.RecordCheckoutSubmission("empty_cart")
			response.WriteError(w, http.StatusBadRequest, response.StatusError, "Carrinho vazio")
			return
		}

		quote, err := h.quotes.Build(r.Context(), req.StoreID, req.SessionID, mgr.Items(), req.Address.toDomain(), mgr.Coupon())
		if err != nil {
			monitoring.RecordCheckoutSubmission("quote_failed")
			response.WriteDomainError(w, err)
			return
		}

		if quote.CheckoutBlocked {
			monitoring.RecordCheckoutSubmission("blocked")
			h.log.Warn("Checkout blocked by shipping error",
				"store_id", req.StoreID,
				"shipping_error", quote.ShippingError,
			)
			response.WriteDomainError(w, domainErrors.ErrCheckoutBlocked)
			return
		}

		if err := mgr.SyncNow(r.Context()); err != nil {
			monitoring.RecordCheckoutSubmission("sync_failed")
			response.WriteDomainError(w, err)
			return
		}

		monitoring.RecordCheckoutSubmission("success")
		response.WriteSuccess(w, checkoutResponse{
			CartID:   mgr.ExternalID(),
			CartCode: h.codeGen.GenerateCartCode(mgr.DisplayID()),
			Total:    quote.Total,
		})
	}
}
