package geocoding

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/vitrine/checkout-service/internal/pkg/logger"
)

func TestGeocodeParsesFirstResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("q"); got != "Centro, Campinas, SP" {
			t.Errorf("unexpected query %q", got)
		}
		w.Write([]byte(`[{"lat": "-22.9099", "lon": "-47.0626"}]`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second, logger.NewNop())
	point, err := client.Geocode(context.Background(), "Centro, Campinas, SP")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if point == nil {
		t.Fatal("expected a point")
	}
	if point.Lat != -22.9099 || point.Lon != -47.0626 {
		t.Errorf("unexpected point %+v", point)
	}
}

func TestGeocodeEmptyResultsIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second, logger.NewNop())
	point, err := client.Geocode(context.Background(), "Nowhere")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if point != nil {
		t.Errorf("expected nil point, got %+v", point)
	}
}

func TestGeocodeNonOKStatusIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second, logger.NewNop())
	point, err := client.Geocode(context.Background(), "Centro")
	if err != nil || point != nil {
		t.Errorf("expected nil/nil, got %+v / %v", point, err)
	}
}

func TestGeocodeTransportFailureIsAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()

	client := NewClient(srv.URL, time.Second, logger.NewNop())
	if _, err := client.Geocode(context.Background(), "Centro"); err == nil {
		t.Error("expected transport error")
	}
}

func TestGeocodeBlankQuery(t *testing.T) {
	client := NewClient("http://unused", time.Second, logger.NewNop())
	point, err := client.Geocode(context.Background(), "   ")
	if err != nil || point != nil {
		t.Errorf("expected nil/nil for blank query, got %+v / %v", point, err)
	}
}

func TestPostalLookupCleansAndResolves(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ws/13010000/json/" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Write([]byte(`{"cep": "13010-000", "logradouro": "Rua A", "bairro": "Centro", "localidade": "Campinas", "uf": "SP"}`))
	}))
	defer srv.Close()

	client := NewPostalClient(srv.URL, time.Second, logger.NewNop())
	addr, err := client.Lookup(context.Background(), "13010-000")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if addr == nil {
		t.Fatal("expected an address")
	}
	if addr.Street != "Rua A" || addr.Neighborhood != "Centro" || addr.City != "Campinas" || addr.State != "SP" {
		t.Errorf("unexpected address %+v", addr)
	}
}

func TestPostalLookupUnknownCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"erro": true}`))
	}))
	defer srv.Close()

	client := NewPostalClient(srv.URL, time.Second, logger.NewNop())
	addr, err := client.Lookup(context.Background(), "99999999")
	if err != nil || addr != nil {
		t.Errorf("expected nil/nil, got %+v / %v", addr, err)
	}
}

func TestPostalLookupMalformedCode(t *testing.T) {
	client := NewPostalClient("http://unused", time.Second, logger.NewNop())
	addr, err := client.Lookup(context.Background(), "123")
	if err != nil || addr != nil {
		t.Errorf("expected nil/nil for short code, got %+v / %v", addr, err)
	}
}
