package redis

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vitrine/checkout-service/internal/application/ports"
	"github.com/vitrine/checkout-service/internal/infrastructure/monitoring"
	"github.com/vitrine/checkout-service/internal/pkg/geo"
	"github.com/vitrine/checkout-service/internal/pkg/logger"
)

const geocodeCacheTTL = 24 * time.Hour

// CachedGeocoder wraps a Geocoder with a Redis result cache keyed by
// the query text, so recomputing a quote for the same address does not
// hit the external collaborator again. Only positive results are
// cached.
type CachedGeocoder struct {
	client *redis.Client
	inner  ports.Geocoder
	logger *logger.Logger
}

func NewCachedGeocoder(conn *Connection, inner ports.Geocoder, log *logger.Logger) *CachedGeocoder {
	return &CachedGeocoder{
		client: conn.GetClient(),
		inner:  inner,
		logger: log,
	}
}

func geocodeKey(query string) string {
	sum := sha1.Sum([]byte(query))
	return "geo:" + hex.EncodeToString(sum[:])
}

func (g *CachedGeocoder) Geocode(ctx context.Context, query string) (*geo.Point, error) {
	key := geocodeKey(query)

	cached, err := g.client.Get(ctx, key).Result()
	if err == nil {
		var point geo.Point
		if err := json.Unmarshal([]byte(cached), &point); err == nil {
			monitoring.RecordGeocodeCache(true)
			return &point, nil
		}
	} else if err != redis.Nil {
		g.logger.Warn("Geocode cache read failed", "error", err)
	}
	monitoring.RecordGeocodeCache(false)

	point, err := g.inner.Geocode(ctx, query)
	if err != nil || point == nil {
		return point, err
	}

	if data, err := json.Marshal(point); err == nil {
		if err := g.client.Set(ctx, key, data, geocodeCacheTTL).Err(); err != nil {
			g.logger.Warn("Geocode cache write failed", "error", err)
		}
	}

	return point, nil
}
