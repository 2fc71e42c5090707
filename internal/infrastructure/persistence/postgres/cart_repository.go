package postgres

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/vitrine/checkout-service/internal/domain/cart"
	"github.com/vitrine/checkout-service/internal/domain/errors"
	"github.com/vitrine/checkout-service/internal/infrastructure/monitoring"
)

type CartRepository struct {
	db *sql.DB
}

func NewCartRepository(conn *Connection) *CartRepository {
	return &CartRepository{
		db: conn.GetDB(),
	}
}

func (r *CartRepository) GetCart(ctx context.Context, externalID string) (*cart.Cart, error) {
	query := `
		SELECT external_id, store_id, display_id, items
		FROM carts
		WHERE external_id = $1 AND status = 'active'
	`

	var c cart.Cart
	var itemsJSON []byte
	row := monitoring.InstrumentQueryRow(ctx, r.db, "SELECT", "carts", query, externalID)
	err := row.Scan(&c.ExternalID, &c.StoreID, &c.DisplayID, &itemsJSON)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.ErrCartNotFound
		}
		return nil, err
	}

	if err := json.Unmarshal(itemsJSON, &c.Items); err != nil {
		return nil, err
	}

	return &c, nil
}

func (r *CartRepository) CreateCart(ctx context.Context, c *cart.Cart, total float64) (string, int64, error) {
	itemsJSON, err := json.Marshal(c.Items)
	if err != nil {
		return "", 0, err
	}

	externalID := uuid.NewString()

	query := `
		INSERT INTO carts (external_id, store_id, items, total, status)
		VALUES ($1, $2, $3, $4, 'active')
		RETURNING display_id
	`

	var displayID int64
	row := monitoring.InstrumentQueryRow(ctx, r.db, "INSERT", "carts", query, externalID, c.StoreID, itemsJSON, total)
	if err := row.Scan(&displayID); err != nil {
		return "", 0, err
	}

	return externalID, displayID, nil
}

func (r *CartRepository) UpdateCart(ctx context.Context, externalID string, items []cart.Item, total float64) error {
	itemsJSON, err := json.Marshal(items)
	if err != nil {
		return err
	}

	query := `
		UPDATE carts
		SET items = $2, total = $3, updated_at = CURRENT_TIMESTAMP
		WHERE external_id = $1
	`

	result, err := monitoring.InstrumentExec(ctx, r.db, "UPDATE", "carts", query, externalID, itemsJSON, total)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return errors.ErrCartNotFound
	}

	return nil
}
