// Package catalog serves the public product list and the few admin edits
// on products and lottery winners.
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/mbolis/promo-forms/errs"
	"github.com/mbolis/promo-forms/model"
)

type Catalog struct {
	db       *sqlx.DB
	validate *validator.Validate
	now      func() time.Time
}

func New(db *sqlx.DB) *Catalog {
	return &Catalog{db: db, validate: validator.New(), now: time.Now}
}

const productColumns = `id, name, type, price, stock, is_active, created_at`

// Products lists active products.
func (c *Catalog) Products(ctx context.Context) ([]model.Product, error) {
	products := []model.Product{}
	err := c.db.SelectContext(ctx, &products, `
		SELECT `+productColumns+`
		FROM product
		WHERE is_active = 1
		ORDER BY id`)
	if err != nil {
		return nil, errs.Storage("db.get_products", err)
	}
	return products, nil
}

// Product returns an active product; inactive ones are reported as missing.
func (c *Catalog) Product(ctx context.Context, productID int64) (p model.Product, err error) {
	err = c.db.GetContext(ctx, &p, `
		SELECT `+productColumns+`
		FROM product
		WHERE id = ?
			AND is_active = 1`,
		productID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return p, errs.NotFound("product", productID)
	}
	if err != nil {
		return p, errs.Storage("db.get_product", err)
	}
	return p, nil
}

// CreateProduct adds a product. Voucher-backed products always start with
// zero stock: it only grows by issuing vouchers.
func (c *Catalog) CreateProduct(ctx context.Context, p model.Product) (model.Product, error) {
	p.Name = strings.TrimSpace(p.Name)
	if err := c.validate.Struct(p); err != nil {
		return p, validationError("invalid product", err)
	}
	if p.Type == model.ProductVoucher {
		p.Stock = 0
	}
	p.CreatedAt = c.now().UTC()

	res, err := c.db.ExecContext(ctx, `
		INSERT INTO product (name, type, price, stock, is_active, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		p.Name, p.Type, p.Price, p.Stock, p.IsActive, p.CreatedAt,
	)
	if err != nil {
		return p, errs.Storage("db.insert_product", err)
	}
	if p.ID, err = res.LastInsertId(); err != nil {
		return p, errs.Storage("db.insert_product.id", err)
	}
	return p, nil
}

func validationError(msg string, err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return errs.Validation(msg)
	}
	fields := make([]string, len(verrs))
	for i, fe := range verrs {
		fields[i] = strings.ToLower(fe.Field())
	}
	return errs.Validation(msg, fields...)
}
