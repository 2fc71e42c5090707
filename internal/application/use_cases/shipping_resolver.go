package use_cases

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vitrine/checkout-service/internal/application/ports"
	"github.com/vitrine/checkout-service/internal/domain/cart"
	"github.com/vitrine/checkout-service/internal/domain/errors"
	"github.com/vitrine/checkout-service/internal/domain/promotion"
	"github.com/vitrine/checkout-service/internal/domain/shipping"
	"github.com/vitrine/checkout-service/internal/pkg/debounce"
	"github.com/vitrine/checkout-service/internal/pkg/geo"
	"github.com/vitrine/checkout-service/internal/pkg/logger"
)

// ShippingRequest carries everything one shipping resolution consumes.
type ShippingRequest struct {
	Address    shipping.Address
	Items      []cart.Item
	CartTotal  float64
	Promotions []promotion.Promotion
	Coupon     *promotion.AppliedCoupon
	Settings   shipping.Settings
	Fees       []shipping.DeliveryFee
}

// resolverSession is one visitor's resolution state: the debounce
// timer and the supersede token for that visitor's input stream.
// Sessions never share state, so one shopper's recomputation cannot
// cancel another's.
type resolverSession struct {
	deb    *debounce.Debouncer
	latest atomic.Uint64

	mu           sync.Mutex
	pendingToken uint64
	pendingApply func(*shipping.Quote, error)
}

// ShippingResolver determines delivery cost and method label. It is
// re-entrant per visitor: every Resolve for a key issues a
// monotonically increasing token and a resolution superseded by a
// newer one for the same key returns ErrResolutionSuperseded instead
// of a stale quote.
type ShippingResolver struct {
	geocoder ports.Geocoder
	log      *logger.Logger

	mu       sync.Mutex
	sessions map[string]*resolverSession

	distanceDelay  time.Duration
	tableDelay     time.Duration
	geocodeTimeout time.Duration

	onResult func(outcome string, elapsed time.Duration)
}

func NewShippingResolver(geocoder ports.Geocoder, log *logger.Logger, distanceDelay, tableDelay time.Duration) *ShippingResolver {
	return &ShippingResolver{
		geocoder:       geocoder,
		log:            log,
		sessions:       make(map[string]*resolverSession),
		distanceDelay:  distanceDelay,
		tableDelay:     tableDelay,
		geocodeTimeout: 8 * time.Second,
	}
}

// OnResult registers a callback invoked after every resolution with
// its outcome label and duration, used for metrics wiring.
func (r *ShippingResolver) OnResult(fn func(outcome string, elapsed time.Duration)) {
	r.onResult = fn
}

func (r *ShippingResolver) session(key string) *resolverSession {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[key]
	if !ok {
		s = &resolverSession{deb: debounce.New()}
		r.sessions[key] = s
	}
	return s
}

// Resolve runs the resolution immediately for the visitor identified
// by key. Callers reacting to input bursts should use ResolveDebounced
// instead.
func (r *ShippingResolver) Resolve(ctx context.Context, key string, req ShippingRequest) (*shipping.Quote, error) {
	s := r.session(key)
	token := s.latest.Add(1)

	start := time.Now()
	quote, err := r.resolve(ctx, req)

	if s.latest.Load() != token {
		quote = nil
		err = errors.ErrResolutionSuperseded
	}
	r.report(err, time.Since(start))
	return quote, err
}

// ResolveDebounced schedules a resolution after the quiet period for
// the configured mode (longer for distance-based pricing, which calls
// the geocoder) and invokes apply exactly once: with the outcome, or
// with ErrResolutionSuperseded when a newer resolution for the same
// visitor replaces this one before it fires.
func (r *ShippingResolver) ResolveDebounced(ctx context.Context, key string, req ShippingRequest, apply func(*shipping.Quote, error)) {
	delay := r.tableDelay
	if req.Settings.Mode == shipping.ModeDistance {
		delay = r.distanceDelay
	}

	s := r.session(key)

	s.mu.Lock()
	prev := s.pendingApply
	s.pendingApply = apply
	s.pendingToken = s.deb.Trigger(delay, func(fired uint64) {
		quote, err := r.Resolve(ctx, key, req)

		s.mu.Lock()
		if s.pendingToken != fired {
			s.mu.Unlock()
			return
		}
		done := s.pendingApply
		s.pendingApply = nil
		s.mu.Unlock()

		if done != nil {
			done(quote, err)
		}
	})
	s.mu.Unlock()

	if prev != nil {
		prev(nil, errors.ErrResolutionSuperseded)
	}
}

func (r *ShippingResolver) report(err error, elapsed time.Duration) {
	if r.onResult == nil {
		return
	}
	r.onResult(resolutionOutcome(err), elapsed)
}

func resolutionOutcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case stderrors.Is(err, errors.ErrResolutionSuperseded):
		return "superseded"
	case stderrors.Is(err, errors.ErrGeocodeFailed):
		return "geocode_failed"
	case stderrors.Is(err, errors.ErrOutsideDeliveryArea):
		return "outside_area"
	case stderrors.Is(err, errors.ErrAddressIncomplete):
		return "address_incomplete"
	default:
		return "error"
	}
}

// resolve applies the resolution rules in order; the first matching
// rule wins.
func (r *ShippingResolver) resolve(ctx context.Context, req ShippingRequest) (*shipping.Quote, error) {
	// Rule 1: an applied free-shipping coupon zeroes the cost.
	if req.Coupon != nil && req.Coupon.FreeShipping {
		return &shipping.Quote{Cost: 0, Method: shipping.CouponMethod(req.Coupon.Code)}, nil
	}

	// Rule 2: an automatic free-shipping promotion whose threshold the
	// eligible total already meets.
	for idx := range req.Promotions {
		p := &req.Promotions[idx]
		if !p.Active || !p.Automatic() || p.Kind != promotion.KindFreeShipping {
			continue
		}
		if promotion.EligibleTotal(p, req.Items, req.CartTotal) >= p.MinimumTotal {
			return &shipping.Quote{Cost: 0, Method: shipping.PromotionMethod(p.Name)}, nil
		}
	}

	// Rule 3: distance-based pricing, only with a geocodable address.
	if req.Settings.Mode == shipping.ModeDistance && req.Address.CanGeocode() {
		return r.resolveDistance(ctx, req)
	}

	if !req.Address.CanCalculate() {
		return nil, errors.ErrAddressIncomplete
	}

	// Rule 4: the fixed fee table, neighborhood then city. No match is
	// an explicit non-charging fallback, not an error.
	if fee, ok := shipping.MatchDeliveryFee(req.Fees, req.Address); ok {
		return &shipping.Quote{Cost: fee.Cost, Method: shipping.MethodLocalDelivery}, nil
	}
	return &shipping.Quote{Cost: 0, Method: shipping.MethodArrange}, nil
}

func (r *ShippingResolver) resolveDistance(ctx context.Context, req ShippingRequest) (*shipping.Quote, error) {
	ctx, cancel := context.WithTimeout(ctx, r.geocodeTimeout)
	defer cancel()

	customer, err := r.geocoder.Geocode(ctx, req.Address.FreeText())
	if err != nil {
		r.log.Error("Customer geocoding failed", "error", err, "address", req.Address.FreeText())
	}
	if err != nil || customer == nil {
		return nil, fmt.Errorf("%w: endereço do cliente não encontrado", errors.ErrGeocodeFailed)
	}

	store, err := r.geocodeStore(ctx, req.Settings.StoreAddress)
	if err != nil || store == nil {
		return nil, fmt.Errorf("%w: endereço da loja não encontrado", errors.ErrGeocodeFailed)
	}

	distance := geo.DistanceKm(*customer, *store)

	if req.Settings.MaxRadiusKm > 0 && distance > req.Settings.MaxRadiusKm {
		r.log.Info("Address outside delivery radius",
			"distance_km", distance,
			"max_radius_km", req.Settings.MaxRadiusKm,
		)
		return nil, fmt.Errorf("%w: %.0f km além do raio de entrega", errors.ErrOutsideDeliveryArea, distance)
	}

	return &shipping.Quote{
		Cost:   shipping.DistancePrice(distance, req.Settings),
		Method: shipping.DistanceMethod(distance),
	}, nil
}

// geocodeStore re-derives the store coordinates from street plus city
// and state, falling back to city and state alone when the precise
// query finds nothing.
func (r *ShippingResolver) geocodeStore(ctx context.Context, addr shipping.Address) (*geo.Point, error) {
	point, err := r.geocoder.Geocode(ctx, addr.FreeText())
	if err != nil {
		return nil, err
	}
	if point != nil {
		return point, nil
	}

	fallback := addr.City + ", " + addr.State
	r.log.Warn("Precise store geocoding failed, retrying with city and state", "query", fallback)
	return r.geocoder.Geocode(ctx, fallback)
}
