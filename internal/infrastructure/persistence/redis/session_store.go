package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/vitrine/checkout-service/internal/infrastructure/monitoring"
	"github.com/vitrine/checkout-service/internal/pkg/logger"
)

// SessionStore is the durable per-visitor storage replacing the
// original design's browser localStorage: one key per store context
// holding the visitor's cart external id.
type SessionStore struct {
	client *redis.Client
	logger *logger.Logger
}

func NewSessionStore(conn *Connection, log *logger.Logger) *SessionStore {
	return &SessionStore{
		client: monitoring.InstrumentRedisClient(conn.GetClient()),
		logger: log,
	}
}

func cartIDKey(storeID, sessionID string) string {
	return fmt.Sprintf("session:%s:%s:cart_id", storeID, sessionID)
}

func (s *SessionStore) GetCartID(ctx context.Context, storeID, sessionID string) (string, error) {
	result, err := s.client.Get(ctx, cartIDKey(storeID, sessionID)).Result()
	if err != nil {
		if err == redis.Nil {
			return "", nil
		}
		return "", err
	}
	return result, nil
}

func (s *SessionStore) SaveCartID(ctx context.Context, storeID, sessionID, cartID string) error {
	// No expiration: abandoned carts stay recoverable.
	return s.client.Set(ctx, cartIDKey(storeID, sessionID), cartID, 0).Err()
}

func (s *SessionStore) RemoveCartID(ctx context.Context, storeID, sessionID string) error {
	return s.client.Del(ctx, cartIDKey(storeID, sessionID)).Err()
}
