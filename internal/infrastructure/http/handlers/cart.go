package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/vitrine/checkout-service/internal/application/cartsync"
	"github.com/vitrine/checkout-service/internal/application/ports"
	"github.com/vitrine/checkout-service/internal/domain/cart"
	"github.com/vitrine/checkout-service/internal/domain/promotion"
	"github.com/vitrine/checkout-service/internal/infrastructure/http/response"
	"github.com/vitrine/checkout-service/internal/pkg/generator"
	"github.com/vitrine/checkout-service/internal/pkg/logger"
)

type CartHandler struct {
	registry *cartsync.Registry
	stores   ports.StoreRepository
	promos   ports.PromotionSource
	codeGen  *generator.CodeGenerator
	log      *logger.Logger
}

func NewCartHandler(
	registry *cartsync.Registry,
	stores ports.StoreRepository,
	promos ports.PromotionSource,
	log *logger.Logger,
) *CartHandler {
	return &CartHandler{
		registry: registry,
		stores:   stores,
		promos:   promos,
		codeGen:  generator.NewCodeGenerator(),
		log:      log,
	}
}

type cartItemRequest struct {
	StoreID    string            `json:"store_id"`
	SessionID  string            `json:"session_id"`
	ProductID  string            `json:"product_id"`
	Attributes map[string]string `json:"attributes"`
	Quantity   int               `json:"quantity"`
}

func (req *cartItemRequest) validate() map[string]string {
	errors := make(map[string]string)
	if req.StoreID == "" {
		errors["store_id"] = "store_id is required"
	}
	if req.SessionID == "" {
		errors["session_id"] = "session_id is required"
	}
	if req.ProductID == "" {
		errors["product_id"] = "product_id is required"
	}
	return errors
}

type cartResponse struct {
	Items       []cart.Item              `json:"items"`
	Subtotal    float64                  `json:"subtotal"`
	ItemCount   int                      `json:"item_count"`
	State       string                   `json:"state"`
	ExternalID  string                   `json:"external_id,omitempty"`
	DisplayCode string                   `json:"display_code,omitempty"`
	Coupon      *promotion.AppliedCoupon `json:"coupon,omitempty"`
}

func (h *CartHandler) buildCartResponse(mgr *cartsync.Manager) cartResponse {
	items := mgr.Items()

	count := 0
	var subtotal float64
	for _, item := range items {
		count += item.Quantity
		subtotal += item.LineTotal()
	}

	resp := cartResponse{
		Items:      items,
		Subtotal:   subtotal,
		ItemCount:  count,
		State:      mgr.State().String(),
		ExternalID: mgr.ExternalID(),
		Coupon:     mgr.Coupon(),
	}
	if displayID := mgr.DisplayID(); displayID > 0 {
		resp.DisplayCode = h.codeGen.GenerateCartCode(displayID)
	}
	return resp
}

// HandleItems dispatches cart line mutations: add, set quantity and
// remove.
func (h *CartHandler) HandleItems() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req cartItemRequest
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

		switch r.Method {
		case http.MethodPost:
			h.addItem(w, r, mgr, req)
		case http.MethodPut:
			h.setQuantity(w, mgr, req)
		case http.MethodDelete:
			h.removeItem(w, mgr, req)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}
}

func (h *CartHandler) addItem(w http.ResponseWriter, r *http.Request, mgr *cartsync.Manager, req cartItemRequest) {
	product, err := h.stores.GetProduct(r.Context(), req.StoreID, req.ProductID)
	if err != nil {
		response.WriteDomainError(w, err)
		return
	}
	if !product.Active {
		response.WriteError(w, http.StatusBadRequest, response.StatusError, "Product is not available")
		return
	}

	promotions, err := h.promos.GetActivePromotions(r.Context(), req.StoreID)
	if err != nil {
		h.log.Error("Failed to load promotions", "error", err, "store_id", req.StoreID)
		response.WriteDomainError(w, err)
		return
	}

	quantity := req.Quantity
	if quantity < 1 {
		quantity = 1
	}

	// The unit price is captured at add time, after the best automatic
	// promotion.
	item := cart.Item{
		ProductID:     product.ID,
		Name:          product.Name,
		Quantity:      quantity,
		UnitPrice:     promotion.DiscountedPrice(*product, promotions),
		OriginalPrice: product.Price,
		Category:      product.Category,
		Attributes:    req.Attributes,
	}

	if err := mgr.AddItem(r.Context(), item); err != nil {
		response.WriteDomainError(w, err)
		return
	}

	response.WriteSuccess(w, h.buildCartResponse(mgr))
}

func (h *CartHandler) setQuantity(w http.ResponseWriter, mgr *cartsync.Manager, req cartItemRequest) {
	if err := mgr.SetQuantity(req.ProductID, req.Attributes, req.Quantity); err != nil {
		response.WriteDomainError(w, err)
		return
	}
	response.WriteSuccess(w, h.buildCartResponse(mgr))
}

func (h *CartHandler) removeItem(w http.ResponseWriter, mgr *cartsync.Manager, req cartItemRequest) {
	if err := mgr.RemoveItem(req.ProductID, req.Attributes); err != nil {
		response.WriteDomainError(w, err)
		return
	}
	response.WriteSuccess(w, h.buildCartResponse(mgr))
}

// HandleCart serves the current cart state and clears it.
func (h *CartHandler) HandleCart() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		storeID := r.URL.Query().Get("store_id")
		sessionID := r.URL.Query().Get("session_id")
		if storeID == "" || sessionID == "" {
			response.WriteValidationError(w, "Validation failed", map[string]string{
				"store_id":   "store_id is required",
				"session_id": "session_id is required",
			})
			return
		}

		mgr, err := h.registry.Get(r.Context(), storeID, sessionID)
		if err != nil {
			response.WriteDomainError(w, err)
			return
		}

		switch r.Method {
		case http.MethodGet:
			response.WriteSuccess(w, h.buildCartResponse(mgr))
		case http.MethodDelete:
			mgr.Clear()
			response.WriteSuccess(w, h.buildCartResponse(mgr))
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}
}
