package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"handler", "method", "status_code"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"handler", "method", "status_code"},
	)
)

var (
	ShippingResolutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shipping_resolutions_total",
			Help: "Total number of shipping resolutions by outcome",
		},
		[]string{"outcome"},
	)

	ShippingResolutionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "shipping_resolution_duration_seconds",
			Help:    "Duration of shipping resolutions in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)

	GeocodeCacheHitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "geocode_cache_hits_total",
			Help: "Geocode cache lookups by result",
		},
		[]string{"result"},
	)

	CouponApplicationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coupon_applications_total",
			Help: "Total number of coupon applications by outcome",
		},
		[]string{"outcome"},
	)

	CartSyncTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cart_sync_total",
			Help: "Total number of cart sync attempts by outcome",
		},
		[]string{"outcome"},
	)

	CartSyncItems = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cart_sync_items",
			Help:    "Number of cart lines written per sync",
			Buckets: []float64{0, 1, 2, 5, 10, 20, 50},
		},
	)

	CheckoutSubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checkout_submissions_total",
			Help: "Total number of checkout submissions by outcome",
		},
		[]string{"outcome"},
	)
)

var (
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Duration of database queries in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"query_type", "table"},
	)

	DBConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_active",
			Help: "Number of active database connections",
		},
	)

	DBConnectionsIdle = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_idle",
			Help: "Number of idle database connections",
		},
	)
)

var (
	RedisCommandDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "redis_command_duration_seconds",
			Help:    "Duration of Redis commands in seconds",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"command"},
	)
)

// RecordShippingResolution matches the ShippingResolver.OnResult hook
// signature.
func RecordShippingResolution(outcome string, elapsed time.Duration) {
	ShippingResolutionDuration.Observe(elapsed.Seconds())
	ShippingResolutionsTotal.WithLabelValues(outcome).Inc()
}

func TimeDBQuery(queryType, table string) func() {
	start := time.Now()
	return func() {
		DBQueryDuration.WithLabelValues(queryType, table).Observe(time.Since(start).Seconds())
	}
}

func RecordCouponApplication(outcome string) {
	CouponApplicationsTotal.WithLabelValues(outcome).Inc()
}

func RecordCartSync(err error, itemCount int) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	CartSyncTotal.WithLabelValues(outcome).Inc()
	CartSyncItems.Observe(float64(itemCount))
}

func RecordCheckoutSubmission(outcome string) {
	CheckoutSubmissionsTotal.WithLabelValues(outcome).Inc()
}

func RecordGeocodeCache(hit bool) {
	if hit {
		GeocodeCacheHitsTotal.WithLabelValues("hit").Inc()
	} else {
		GeocodeCacheHitsTotal.WithLabelValues("miss").Inc()
	}
}
