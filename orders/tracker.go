// Package orders exposes the read-only tracking view of customer orders.
// Orders are created and fulfilled elsewhere.
package orders

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/mbolis/promo-forms/errs"
	"github.com/mbolis/promo-forms/model"
)

type Tracker struct {
	db *sqlx.DB
}

func NewTracker(db *sqlx.DB) *Tracker {
	return &Tracker{db: db}
}

func (t *Tracker) Track(ctx context.Context, orderID int64) (o model.OrderTracking, err error) {
	err = t.db.QueryRowxContext(ctx, `
		SELECT
			o.id, o.payment_status, o.total_price, o.payment_url, o.created_at,
			p.id, p.name, p.type
		FROM customer_order o
		INNER JOIN product p ON (p.id = o.product_id)
		WHERE o.id = ?`,
		orderID,
	).Scan(
		&o.OrderID, &o.Status, &o.TotalPrice, &o.PaymentURL, &o.CreatedAt,
		&o.Product.ID, &o.Product.Name, &o.Product.Type,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return o, errs.NotFound("order", orderID)
	}
	if err != nil {
		return o, errs.Storage("db.track_order", err)
	}
	return o, nil
}
