package postgres

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"github.com/vitrine/checkout-service/internal/domain/catalog"
	"github.com/vitrine/checkout-service/internal/domain/errors"
	"github.com/vitrine/checkout-service/internal/domain/promotion"
	"github.com/vitrine/checkout-service/internal/domain/shipping"
	"github.com/vitrine/checkout-service/internal/infrastructure/monitoring"
)

type StoreRepository struct {
	db *sql.DB
}

func NewStoreRepository(conn *Connection) *StoreRepository {
	return &StoreRepository{
		db: conn.GetDB(),
	}
}

func (r *StoreRepository) GetStore(ctx context.Context, storeID string) (*catalog.Store, error) {
	query := `
		SELECT id, name, shipping_mode, per_km_rate, minimum_charge, max_radius_km,
		       street, number, neighborhood, city, state, postal_code
		FROM stores
		WHERE id = $1
	`

	var store catalog.Store
	var mode string
	row := monitoring.InstrumentQueryRow(ctx, r.db, "SELECT", "stores", query, storeID)
	err := row.Scan(
		&store.ID, &store.Name, &mode,
		&store.Shipping.PerKmRate, &store.Shipping.MinimumCharge, &store.Shipping.MaxRadiusKm,
		&store.Shipping.StoreAddress.Street, &store.Shipping.StoreAddress.Number,
		&store.Shipping.StoreAddress.Neighborhood, &store.Shipping.StoreAddress.City,
		&store.Shipping.StoreAddress.State, &store.Shipping.StoreAddress.PostalCode,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.ErrStoreNotFound
		}
		return nil, err
	}

	store.Shipping.Mode = shipping.Mode(mode)
	return &store, nil
}

func (r *StoreRepository) ListStoreIDs(ctx context.Context) ([]string, error) {
	rows, err := monitoring.InstrumentQuery(ctx, r.db, "SELECT", "stores", `SELECT id FROM stores`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *StoreRepository) GetProduct(ctx context.Context, storeID, productID string) (*catalog.Product, error) {
	query := `
		SELECT id, store_id, name, price, COALESCE(category, ''), active, featured
		FROM products
		WHERE store_id = $1 AND id = $2
	`

	var p catalog.Product
	row := monitoring.InstrumentQueryRow(ctx, r.db, "SELECT", "products", query, storeID, productID)
	err := row.Scan(&p.ID, &p.StoreID, &p.Name, &p.Price, &p.Category, &p.Active, &p.Featured)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.ErrProductNotFound
		}
		return nil, err
	}

	return &p, nil
}

func (r *StoreRepository) GetProducts(ctx context.Context, storeID string) ([]catalog.Product, error) {
	query := `
		SELECT id, store_id, name, price, COALESCE(category, ''), active, featured
		FROM products
		WHERE store_id = $1 AND active = true
		ORDER BY name
	`

	rows, err := monitoring.InstrumentQuery(ctx, r.db, "SELECT", "products", query, storeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []catalog.Product
	for rows.Next() {
		var p catalog.Product
		if err := rows.Scan(&p.ID, &p.StoreID, &p.Name, &p.Price, &p.Category, &p.Active, &p.Featured); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *StoreRepository) GetStock(ctx context.Context, storeID, productID, attributeKey string) (int, error) {
	query := `
		SELECT quantity
		FROM product_stock
		WHERE store_id = $1 AND product_id = $2 AND attribute_key = $3
	`

	var quantity int
	row := monitoring.InstrumentQueryRow(ctx, r.db, "SELECT", "product_stock", query, storeID, productID, attributeKey)
	err := row.Scan(&quantity)
	if err != nil {
		if err == sql.ErrNoRows {
			// Stock not tracked for this combination.
			return -1, nil
		}
		return 0, err
	}

	return quantity, nil
}

func (r *StoreRepository) GetActivePromotions(ctx context.Context, storeID string) ([]promotion.Promotion, error) {
	query := `
		SELECT id, name, kind, value, minimum_total, categories, product_ids,
		       COALESCE(coupon_code, ''), active
		FROM promotions
		WHERE store_id = $1 AND active = true
		ORDER BY created_at
	`

	rows, err := monitoring.InstrumentQuery(ctx, r.db, "SELECT", "promotions", query, storeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var promotions []promotion.Promotion
	for rows.Next() {
		var p promotion.Promotion
		var kind string
		err := rows.Scan(
			&p.ID, &p.Name, &kind, &p.Value, &p.MinimumTotal,
			pq.Array(&p.Categories), pq.Array(&p.ProductIDs),
			&p.CouponCode, &p.Active,
		)
		if err != nil {
			return nil, err
		}
		// The stored type strings are collapsed into the tagged
		// variant here, at the loading boundary.
		p.Kind = promotion.ParseDiscountKind(kind)
		promotions = append(promotions, p)
	}
	return promotions, rows.Err()
}

func (r *StoreRepository) GetDeliveryFees(ctx context.Context, storeID string) ([]shipping.DeliveryFee, error) {
	query := `
		SELECT region, cost
		FROM delivery_fees
		WHERE store_id = $1
		ORDER BY region
	`

	rows, err := monitoring.InstrumentQuery(ctx, r.db, "SELECT", "delivery_fees", query, storeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var fees []shipping.DeliveryFee
	for rows.Next() {
		var fee shipping.DeliveryFee
		if err := rows.Scan(&fee.Region, &fee.Cost); err != nil {
			return nil, err
		}
		fees = append(fees, fee)
	}
	return fees, rows.Err()
}
