package server

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/vitrine/checkout-service/internal/application/cartsync"
	"github.com/vitrine/checkout-service/internal/application/ports"
	"github.com/vitrine/checkout-service/internal/application/use_cases"
	"github.com/vitrine/checkout-service/internal/config"
	"github.com/vitrine/checkout-service/internal/infrastructure/geocoding"
	"github.com/vitrine/checkout-service/internal/infrastructure/http/handlers"
	"github.com/vitrine/checkout-service/internal/infrastructure/monitoring"
	"github.com/vitrine/checkout-service/internal/infrastructure/persistence/postgres"
	"github.com/vitrine/checkout-service/internal/infrastructure/persistence/redis"
	"github.com/vitrine/checkout-service/internal/pkg/logger"
)

type Server struct {
	server        *http.Server
	logger        *logger.Logger
	healthHandler *handlers.HealthHandler
	cartHandler   *handlers.CartHandler
	couponHandler *handlers.CouponHandler
	quoteHandler  *handlers.QuoteHandler
	postalHandler *handlers.PostalHandler
}

// NewServer wires the persistence adapters, use cases and handlers.
// promos is the promotion source shared with the background refresher.
func NewServer(cfg *config.Config, db *sql.DB, redisConn *redis.Connection, promos ports.PromotionSource, logger *logger.Logger) *Server {
	conn := postgres.NewConnectionFromDB(db)
	storeRepo := postgres.NewStoreRepository(conn)
	cartRepo := postgres.NewCartRepository(conn)
	sessions := redis.NewSessionStore(redisConn, logger)

	geocodeTimeout := time.Duration(cfg.Geocoder.TimeoutMS) * time.Millisecond
	geocoder := redis.NewCachedGeocoder(
		redisConn,
		geocoding.NewClient(cfg.Geocoder.BaseURL, geocodeTimeout, logger),
		logger,
	)
	postalLookup := geocoding.NewPostalClient(cfg.Geocoder.PostalBaseURL, geocodeTimeout, logger)

	resolver := use_cases.NewShippingResolver(
		geocoder,
		logger,
		time.Duration(cfg.Shipping.DistanceDebounceMS)*time.Millisecond,
		time.Duration(cfg.Shipping.TableDebounceMS)*time.Millisecond,
	)
	resolver.OnResult(monitoring.RecordShippingResolution)
	quoteUseCase := use_cases.NewQuoteUseCase(storeRepo, promos, resolver, logger)
	couponUseCase := use_cases.NewCouponUseCase(promos, logger)

	registry := cartsync.NewRegistry(
		cartRepo,
		sessions,
		storeRepo,
		logger,
		time.Duration(cfg.Sync.DebounceMS)*time.Millisecond,
	)
	registry.OnSyncResult(monitoring.RecordCartSync)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return &Server{
		server:        server,
		logger:        logger,
		healthHandler: handlers.NewHealthHandler(db, redisConn.GetClient(), logger),
		cartHandler:   handlers.NewCartHandler(registry, storeRepo, promos, logger),
		couponHandler: handlers.NewCouponHandler(registry, couponUseCase, logger),
		quoteHandler:  handlers.NewQuoteHandler(registry, quoteUseCase, logger),
		postalHandler: handlers.NewPostalHandler(postalLookup, logger),
	}
}

func (s *Server) ListenAndServe() error {
	s.server.Handler = s.setupRoutes()

	s.logger.Info("Starting HTTP server", "address", s.server.Addr)

	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}
