package use_cases

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/vitrine/checkout-service/internal/application/ports"
	"github.com/vitrine/checkout-service/internal/domain/errors"
	"github.com/vitrine/checkout-service/internal/domain/promotion"
	"github.com/vitrine/checkout-service/internal/domain/shipping"
	"github.com/vitrine/checkout-service/internal/pkg/geo"
	"github.com/vitrine/checkout-service/internal/pkg/logger"
)

// fakeGeocoder resolves queries from a fixed map; unknown queries are
// "not located" (nil, nil), matching the geocoder contract.
type fakeGeocoder struct {
	points  map[string]geo.Point
	err     error
	queries []string
}

func (f *fakeGeocoder) Geocode(_ context.Context, query string) (*geo.Point, error) {
	f.queries = append(f.queries, query)
	if f.err != nil {
		return nil, f.err
	}
	if p, ok := f.points[query]; ok {
		return &p, nil
	}
	return nil, nil
}

const sessionKey = "store-1:sess-a"

func newTestResolver(g ports.Geocoder) *ShippingResolver {
	return NewShippingResolver(g, logger.NewNop(), time.Millisecond, time.Millisecond)
}

func geocodableAddress() shipping.Address {
	return shipping.Address{
		Street:       "Rua A",
		Number:       "10",
		Neighborhood: "Centro",
		City:         "Campinas",
		State:        "SP",
	}
}

func TestResolveCouponFreeShippingWinsFirst(t *testing.T) {
	resolver := newTestResolver(&fakeGeocoder{})

	quote, err := resolver.Resolve(context.Background(), sessionKey, ShippingRequest{
		Coupon: &promotion.AppliedCoupon{Code: "FRETE10", FreeShipping: true},
		Settings: shipping.Settings{
			Mode: shipping.ModeDistance,
		},
		Address: geocodableAddress(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if quote.Cost != 0 {
		t.Errorf("expected zero cost, got %.2f", quote.Cost)
	}
	if quote.Method != "Frete grátis (cupom FRETE10)" {
		t.Errorf("unexpected method %q", quote.Method)
	}
}

func TestResolveAutomaticFreeShippingByThreshold(t *testing.T) {
	resolver := newTestResolver(&fakeGeocoder{})

	quote, err := resolver.Resolve(context.Background(), sessionKey, ShippingRequest{
		CartTotal: 250,
		Promotions: []promotion.Promotion{
			{ID: "p1", Name: "Acima de 200", Kind: promotion.KindFreeShipping, MinimumTotal: 200, Active: true},
		},
		Settings: shipping.Settings{Mode: shipping.ModeTable},
		Address:  geocodableAddress(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if quote.Cost != 0 || quote.Method != "Frete grátis (Acima de 200)" {
		t.Errorf("unexpected quote %+v", quote)
	}
}

func TestResolveDistancePricing(t *testing.T) {
	storeAddr := shipping.Address{Street: "Rua B", Neighborhood: "Cambuí", City: "Campinas", State: "SP"}
	g := &fakeGeocoder{points: map[string]geo.Point{
		geocodableAddress().FreeText(): {Lat: -22.90, Lon: -47.06},
		storeAddr.FreeText():           {Lat: -22.95, Lon: -47.06},
	}}
	resolver := newTestResolver(g)

	quote, err := resolver.Resolve(context.Background(), sessionKey, ShippingRequest{
		Address: geocodableAddress(),
		Settings: shipping.Settings{
			Mode:          shipping.ModeDistance,
			PerKmRate:     3,
			MinimumCharge: 8,
			StoreAddress:  storeAddr,
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 0.05 degrees of latitude is about 5.6 km, priced above the floor.
	if quote.Cost < 15 || quote.Cost > 18 {
		t.Errorf("expected cost near 16.7, got %.2f", quote.Cost)
	}
	if quote.Method != "Entrega (6 km)" {
		t.Errorf("unexpected method %q", quote.Method)
	}
}

func TestResolveDistanceStoreGeocodeFallback(t *testing.T) {
	storeAddr := shipping.Address{Street: "Rua Inexistente", Neighborhood: "Cambuí", City: "Campinas", State: "SP"}
	g := &fakeGeocoder{points: map[string]geo.Point{
		geocodableAddress().FreeText(): {Lat: -22.90, Lon: -47.06},
		"Campinas, SP":                 {Lat: -22.91, Lon: -47.06},
	}}
	resolver := newTestResolver(g)

	quote, err := resolver.Resolve(context.Background(), sessionKey, ShippingRequest{
		Address: geocodableAddress(),
		Settings: shipping.Settings{
			Mode:          shipping.ModeDistance,
			PerKmRate:     5,
			MinimumCharge: 5,
			StoreAddress:  storeAddr,
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if quote == nil || quote.Cost < 5 {
		t.Errorf("expected priced quote, got %+v", quote)
	}

	want := []string{geocodableAddress().FreeText(), storeAddr.FreeText(), "Campinas, SP"}
	if len(g.queries) != len(want) {
		t.Fatalf("expected %d geocode queries, got %v", len(want), g.queries)
	}
	for i, q := range want {
		if g.queries[i] != q {
			t.Errorf("query %d: expected %q, got %q", i, q, g.queries[i])
		}
	}
}

func TestResolveDistanceCustomerNotLocated(t *testing.T) {
	resolver := newTestResolver(&fakeGeocoder{})

	_, err := resolver.Resolve(context.Background(), sessionKey, ShippingRequest{
		Address:  geocodableAddress(),
		Settings: shipping.Settings{Mode: shipping.ModeDistance},
	})
	if !stderrors.Is(err, errors.ErrGeocodeFailed) {
		t.Errorf("expected ErrGeocodeFailed, got %v", err)
	}
	if !errors.Blocking(err) {
		t.Error("expected geocode failure to block checkout")
	}
}

func TestResolveDistanceOutsideRadius(t *testing.T) {
	storeAddr := shipping.Address{Street: "Rua B", Neighborhood: "Centro", City: "São Paulo", State: "SP"}
	g := &fakeGeocoder{points: map[string]geo.Point{
		geocodableAddress().FreeText(): {Lat: -22.90, Lon: -47.06},
		storeAddr.FreeText():           {Lat: -23.55, Lon: -46.63},
	}}
	resolver := newTestResolver(g)

	_, err := resolver.Resolve(context.Background(), sessionKey, ShippingRequest{
		Address: geocodableAddress(),
		Settings: shipping.Settings{
			Mode:         shipping.ModeDistance,
			PerKmRate:    2,
			MaxRadiusKm:  20,
			StoreAddress: storeAddr,
		},
	})
	if !stderrors.Is(err, errors.ErrOutsideDeliveryArea) {
		t.Errorf("expected ErrOutsideDeliveryArea, got %v", err)
	}
	if !errors.Blocking(err) {
		t.Error("expected out-of-area to block checkout")
	}
}

func TestResolveIncompleteAddress(t *testing.T) {
	resolver := newTestResolver(&fakeGeocoder{})

	_, err := resolver.Resolve(context.Background(), sessionKey, ShippingRequest{
		Address:  shipping.Address{City: "Campinas"},
		Settings: shipping.Settings{Mode: shipping.ModeTable},
	})
	if !stderrors.Is(err, errors.ErrAddressIncomplete) {
		t.Errorf("expected ErrAddressIncomplete, got %v", err)
	}
	if errors.Blocking(err) {
		t.Error("incomplete address must not block checkout")
	}
}

func TestResolveDistanceModeWithoutStateUsesFeeTable(t *testing.T) {
	resolver := newTestResolver(&fakeGeocoder{})

	quote, err := resolver.Resolve(context.Background(), sessionKey, ShippingRequest{
		Address:  shipping.Address{Neighborhood: "Centro", City: "Campinas"},
		Settings: shipping.Settings{Mode: shipping.ModeDistance},
		Fees:     []shipping.DeliveryFee{{Region: "Centro", Cost: 7}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if quote.Cost != 7 || quote.Method != shipping.MethodLocalDelivery {
		t.Errorf("unexpected quote %+v", quote)
	}
}

func TestResolveFeeTableFallbackIsNonCharging(t *testing.T) {
	resolver := newTestResolver(&fakeGeocoder{})

	quote, err := resolver.Resolve(context.Background(), sessionKey, ShippingRequest{
		Address:  shipping.Address{Neighborhood: "Longe", City: "Outra"},
		Settings: shipping.Settings{Mode: shipping.ModeTable},
		Fees:     []shipping.DeliveryFee{{Region: "Centro", Cost: 7}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if quote.Cost != 0 || quote.Method != shipping.MethodArrange {
		t.Errorf("expected arrange fallback, got %+v", quote)
	}
}

func TestResolveSupersededByNewerResolution(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	g := &blockingGeocoder{started: started, release: release}
	resolver := newTestResolver(g)

	req := ShippingRequest{
		Address:  geocodableAddress(),
		Settings: shipping.Settings{Mode: shipping.ModeDistance, PerKmRate: 1, StoreAddress: geocodableAddress()},
	}

	result := make(chan error, 1)
	go func() {
		_, err := resolver.Resolve(context.Background(), sessionKey, req)
		result <- err
	}()

	<-started
	// A second resolution for the same session supersedes the
	// in-flight one.
	if _, err := resolver.Resolve(context.Background(), sessionKey, ShippingRequest{
		Address:  shipping.Address{Neighborhood: "Centro", City: "Campinas"},
		Settings: shipping.Settings{Mode: shipping.ModeTable},
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	close(release)

	if err := <-result; !stderrors.Is(err, errors.ErrResolutionSuperseded) {
		t.Errorf("expected ErrResolutionSuperseded, got %v", err)
	}
}

func TestResolveIndependentSessionsDoNotSupersede(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	g := &blockingGeocoder{started: started, release: release}
	resolver := newTestResolver(g)

	req := ShippingRequest{
		Address: geocodableAddress(),
		Settings: shipping.Settings{
			Mode:          shipping.ModeDistance,
			PerKmRate:     1,
			MinimumCharge: 5,
			StoreAddress:  geocodableAddress(),
		},
	}

	type outcome struct {
		quote *shipping.Quote
		err   error
	}
	result := make(chan outcome, 1)
	go func() {
		q, err := resolver.Resolve(context.Background(), "store-1:sess-a", req)
		result <- outcome{quote: q, err: err}
	}()

	<-started
	// Another shopper resolving concurrently must not cancel the first
	// shopper's in-flight resolution.
	if _, err := resolver.Resolve(context.Background(), "store-1:sess-b", ShippingRequest{
		Address:  shipping.Address{Neighborhood: "Centro", City: "Campinas"},
		Settings: shipping.Settings{Mode: shipping.ModeTable},
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	close(release)

	o := <-result
	if o.err != nil {
		t.Fatalf("independent session resolution failed: %v", o.err)
	}
	if o.quote == nil || o.quote.Cost != 5 {
		t.Errorf("expected minimum-charge quote, got %+v", o.quote)
	}
}

type blockingGeocoder struct {
	started chan struct{}
	release chan struct{}
	once    bool
}

func (b *blockingGeocoder) Geocode(_ context.Context, _ string) (*geo.Point, error) {
	if !b.once {
		b.once = true
		close(b.started)
		<-b.release
	}
	return &geo.Point{Lat: -22.9, Lon: -47.06}, nil
}

func TestResolveDebouncedCoalescesBurst(t *testing.T) {
	resolver := NewShippingResolver(&fakeGeocoder{}, logger.NewNop(), 50*time.Millisecond, 50*time.Millisecond)

	type outcome struct {
		quote *shipping.Quote
		err   error
	}
	applied := make(chan outcome, 2)
	req := ShippingRequest{
		Address:  shipping.Address{Neighborhood: "Centro", City: "Campinas"},
		Settings: shipping.Settings{Mode: shipping.ModeTable},
		Fees:     []shipping.DeliveryFee{{Region: "Centro", Cost: 9}},
	}

	resolver.ResolveDebounced(context.Background(), sessionKey, req, func(q *shipping.Quote, err error) {
		applied <- outcome{quote: q, err: err}
	})
	resolver.ResolveDebounced(context.Background(), sessionKey, req, func(q *shipping.Quote, err error) {
		applied <- outcome{quote: q, err: err}
	})

	// The replaced schedule reports supersession to its caller.
	select {
	case o := <-applied:
		if !stderrors.Is(o.err, errors.ErrResolutionSuperseded) {
			t.Errorf("expected ErrResolutionSuperseded for replaced schedule, got %+v", o)
		}
	case <-time.After(time.Second):
		t.Fatal("replaced schedule never notified")
	}

	// Only the latest schedule resolves.
	select {
	case o := <-applied:
		if o.err != nil {
			t.Fatalf("unexpected error: %v", o.err)
		}
		if o.quote.Cost != 9 {
			t.Errorf("expected cost 9, got %.2f", o.quote.Cost)
		}
	case <-time.After(time.Second):
		t.Fatal("debounced resolution never applied")
	}
}

func TestResolveDebouncedIsolatesSessions(t *testing.T) {
	resolver := NewShippingResolver(&fakeGeocoder{}, logger.NewNop(), 20*time.Millisecond, 20*time.Millisecond)

	req := ShippingRequest{
		Address:  shipping.Address{Neighborhood: "Centro", City: "Campinas"},
		Settings: shipping.Settings{Mode: shipping.ModeTable},
		Fees:     []shipping.DeliveryFee{{Region: "Centro", Cost: 9}},
	}

	quotes := make(chan *shipping.Quote, 2)
	for _, key := range []string{"store-1:sess-a", "store-1:sess-b"} {
		resolver.ResolveDebounced(context.Background(), key, req, func(q *shipping.Quote, err error) {
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			quotes <- q
		})
	}

	for i := 0; i < 2; i++ {
		select {
		case q := <-quotes:
			if q == nil || q.Cost != 9 {
				t.Errorf("expected cost 9, got %+v", q)
			}
		case <-time.After(time.Second):
			t.Fatal("session resolution never applied")
		}
	}
}

func TestResolveReportsOutcomes(t *testing.T) {
	resolver := newTestResolver(&fakeGeocoder{})

	var outcomes []string
	resolver.OnResult(func(outcome string, elapsed time.Duration) {
		if elapsed < 0 {
			t.Errorf("negative duration %v", elapsed)
		}
		outcomes = append(outcomes, outcome)
	})

	if _, err := resolver.Resolve(context.Background(), sessionKey, ShippingRequest{
		Address:  shipping.Address{Neighborhood: "Centro", City: "Campinas"},
		Settings: shipping.Settings{Mode: shipping.ModeTable},
		Fees:     []shipping.DeliveryFee{{Region: "Centro", Cost: 7}},
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := resolver.Resolve(context.Background(), sessionKey, ShippingRequest{
		Address:  geocodableAddress(),
		Settings: shipping.Settings{Mode: shipping.ModeDistance},
	}); !stderrors.Is(err, errors.ErrGeocodeFailed) {
		t.Fatalf("expected ErrGeocodeFailed, got %v", err)
	}

	want := []string{"success", "geocode_failed"}
	if len(outcomes) != len(want) {
		t.Fatalf("expected %d outcomes, got %v", len(want), outcomes)
	}
	for i, o := range want {
		if outcomes[i] != o {
			t.Errorf("outcome %d: expected %q, got %q", i, o, outcomes[i])
		}
	}
}
