package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/vitrine/checkout-service/internal/application/cartsync"
	"github.com/vitrine/checkout-service/internal/application/use_cases"
	"github.com/vitrine/checkout-service/internal/infrastructure/http/response"
	"github.com/vitrine/checkout-service/internal/infrastructure/monitoring"
	"github.com/vitrine/checkout-service/internal/pkg/logger"
)

type CouponHandler struct {
	registry *cartsync.Registry
	coupons  *use_cases.CouponUseCase
	log      *logger.Logger
}

func NewCouponHandler(registry *cartsync.Registry, coupons *use_cases.CouponUseCase, log *logger.Logger) *CouponHandler {
	return &CouponHandler{
		registry: registry,
		coupons:  coupons,
		log:      log,
	}
}

type couponRequest struct {
	StoreID   string `json:"store_id"`
	SessionID string `json:"session_id"`
	Code      string `json:"code"`
}

// HandleCoupon applies a coupon to the session's cart or removes the
// current one.
func (h *CouponHandler) HandleCoupon() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req couponRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.WriteValidationError(w, "Invalid request body", nil)
			return
		}

		if req.StoreID == "" || req.SessionID == "" {
			response.WriteValidationError(w, "Validation failed", map[string]string{
				"store_id":   "store_id is required",
				"session_id": "session_id is required",
			})
			return
		}

		mgr, err := h.registry.Get(r.Context(), req.StoreID, req.SessionID)
		if err != nil {
			response.WriteDomainError(w, err)
			return
		}

		switch r.Method {
		case http.MethodPost:
			h.apply(w, r, mgr, req)
		case http.MethodDelete:
			mgr.RemoveCoupon()
			response.WriteSuccess(w, map[string]string{"message": "Cupom removido"})
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}
}

func (h *CouponHandler) apply(w http.ResponseWriter, r *http.Request, mgr *cartsync.Manager, req couponRequest) {
	if req.Code == "" {
		response.WriteValidationError(w, "Validation failed", map[string]string{
			"code": "code is required",
		})
		return
	}

	applied, err := h.coupons.Apply(r.Context(), req.StoreID, req.Code, mgr.Items())
	if err != nil {
		monitoring.RecordCouponApplication("rejected")
		response.WriteDomainError(w, err)
		return
	}
	monitoring.RecordCouponApplication("applied")

	mgr.ApplyCoupon(applied)
	response.WriteSuccess(w, applied)
}
