// Package inventory keeps the stock of voucher-backed products equal to
// their number of unused vouchers.
//
// Stock is never incremented or decremented. Every voucher mutation
// recomputes it from the voucher table inside the mutation's own
// transaction. Transactions take the database write lock when they begin
// (see database.DSN), so two recounts of the same product cannot interleave.
package inventory

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"
	"github.com/mbolis/promo-forms/errs"
	"github.com/mbolis/promo-forms/log"
	"github.com/mbolis/promo-forms/metrics"
	"github.com/mbolis/promo-forms/model"
)

const maxGenerated = 10000

type Reconciler struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewReconciler(db *sqlx.DB) *Reconciler {
	return &Reconciler{db: db, now: time.Now}
}

// Reconcile recomputes a product's stock. found is false when no
// voucher-backed product has that id, which is not an error.
func (r *Reconciler) Reconcile(ctx context.Context, productID int64) (stock int, found bool, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, false, errs.Storage("db.begin_tx", err)
	}
	defer tx.Rollback()

	stock, found, err = reconcile(ctx, tx, productID)
	if err != nil {
		return
	}

	if err = tx.Commit(); err != nil {
		return 0, false, errs.Storage("db.reconcile.commit", err)
	}
	metrics.Reconciliation("manual")
	return stock, found, nil
}

func reconcile(ctx context.Context, tx *sqlx.Tx, productID int64) (stock int, found bool, err error) {
	err = tx.GetContext(ctx, &stock, `
		UPDATE product
		SET stock = (
			SELECT COUNT(*) FROM voucher
			WHERE product_id = ?
				AND is_used = 0
		)
		WHERE id = ?
			AND type = ?
		RETURNING stock`,
		productID,
		productID,
		model.ProductVoucher,
	)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debugf("inventory.reconcile: no voucher product %d, skipping", productID)
		return 0, false, nil
	}
	if err != nil {
		return 0, false, errs.Storage("db.reconcile", err)
	}
	return stock, true, nil
}

// DeleteVoucher removes an unused voucher and reconciles its product.
func (r *Reconciler) DeleteVoucher(ctx context.Context, voucherID int64) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return errs.Storage("db.begin_tx", err)
	}
	defer tx.Rollback()

	var v model.Voucher
	err = tx.GetContext(ctx, &v, `SELECT id, product_id, is_used FROM voucher WHERE id = ?`, voucherID)
	if errors.Is(err, sql.ErrNoRows) {
		return errs.NotFound("voucher", voucherID)
	}
	if err != nil {
		return errs.Storage("db.delete_voucher.get", err)
	}
	if v.IsUsed {
		return errs.Conflict("voucher %d was already redeemed", voucherID)
	}

	_, err = tx.ExecContext(ctx, `DELETE FROM voucher WHERE id = ?`, voucherID)
	if err != nil {
		return errs.Storage("db.delete_voucher", err)
	}

	if _, _, err = reconcile(ctx, tx, v.ProductID); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return errs.Storage("db.delete_voucher.commit", err)
	}
	metrics.Reconciliation("delete")
	return nil
}

// IssueVouchers imports codes for a voucher-backed product.
func (r *Reconciler) IssueVouchers(ctx context.Context, productID int64, codes []string) ([]model.Voucher, error) {
	cleaned := make([]string, 0, len(codes))
	seen := make(map[string]bool, len(codes))
	var bad []string
	for _, c := range codes {
		c = strings.TrimSpace(c)
		if c == "" || seen[c] {
			bad = append(bad, c)
			continue
		}
		seen[c] = true
		cleaned = append(cleaned, c)
	}
	if len(cleaned) == 0 {
		return nil, errs.Validation("no voucher codes given", "codes")
	}
	if len(bad) > 0 {
		return nil, errs.Validation("blank or repeated voucher codes", bad...)
	}

	return r.issue(ctx, productID, cleaned)
}

// GenerateVouchers issues n random codes.
func (r *Reconciler) GenerateVouchers(ctx context.Context, productID int64, n int) ([]model.Voucher, error) {
	if n < 1 || n > maxGenerated {
		return nil, errs.Validation("voucher count must be between 1 and 10000", "generate")
	}

	codes := make([]string, n)
	for i := range codes {
		codes[i] = strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:16]
	}
	return r.issue(ctx, productID, codes)
}

func (r *Reconciler) issue(ctx context.Context, productID int64, codes []string) ([]model.Voucher, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, errs.Storage("db.begin_tx", err)
	}
	defer tx.Rollback()

	var productType model.ProductType
	err = tx.GetContext(ctx, &productType, `SELECT type FROM product WHERE id = ?`, productID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errs.NotFound("product", productID)
	}
	if err != nil {
		return nil, errs.Storage("db.issue_vouchers.product", err)
	}
	if productType != model.ProductVoucher {
		return nil, errs.Conflict("product %d is not voucher-backed", productID)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO voucher (product_id, code, is_used, created_at)
		VALUES (?, ?, 0, ?)`)
	if err != nil {
		return nil, errs.Storage("db.issue_vouchers.prepare", err)
	}
	defer stmt.Close()

	now := r.now().UTC()
	vouchers := make([]model.Voucher, len(codes))
	for i, code := range codes {
		res, err := stmt.ExecContext(ctx, productID, code, now)
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return nil, errs.Conflict("voucher code %s already exists", code)
		}
		if err != nil {
			return nil, errs.Storage("db.issue_vouchers.insert", err)
		}

		vouchers[i] = model.Voucher{ProductID: productID, Code: code, CreatedAt: now}
		if vouchers[i].ID, err = res.LastInsertId(); err != nil {
			return nil, errs.Storage("db.issue_vouchers.insert.id", err)
		}
	}

	if _, _, err = reconcile(ctx, tx, productID); err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, errs.Storage("db.issue_vouchers.commit", err)
	}
	metrics.Reconciliation("issue")
	return vouchers, nil
}

// ConsumeVoucher redeems a code and reconciles its product.
func (r *Reconciler) ConsumeVoucher(ctx context.Context, code string) (v model.Voucher, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return v, errs.Storage("db.begin_tx", err)
	}
	defer tx.Rollback()

	err = tx.GetContext(ctx, &v, `
		SELECT id, product_id, code, is_used, used_at, created_at
		FROM voucher
		WHERE code = ?`,
		strings.TrimSpace(code),
	)
	if errors.Is(err, sql.ErrNoRows) {
		return v, errs.NotFound("voucher", code)
	}
	if err != nil {
		return v, errs.Storage("db.consume_voucher.get", err)
	}
	if v.IsUsed {
		return v, errs.Conflict("voucher %s was already redeemed", v.Code)
	}

	usedAt := r.now().UTC()
	_, err = tx.ExecContext(ctx, `
		UPDATE voucher
		SET is_used = 1, used_at = ?
		WHERE id = ?`,
		usedAt,
		v.ID,
	)
	if err != nil {
		return v, errs.Storage("db.consume_voucher", err)
	}
	v.IsUsed = true
	v.UsedAt = &usedAt

	if _, _, err = reconcile(ctx, tx, v.ProductID); err != nil {
		return v, err
	}

	if err = tx.Commit(); err != nil {
		return v, errs.Storage("db.consume_voucher.commit", err)
	}
	metrics.Reconciliation("consume")
	return v, nil
}

func (r *Reconciler) Vouchers(ctx context.Context, productID int64) ([]model.Voucher, error) {
	vouchers := []model.Voucher{}
	err := r.db.SelectContext(ctx, &vouchers, `
		SELECT id, product_id, code, is_used, used_at, created_at
		FROM voucher
		WHERE product_id = ?
		ORDER BY id`,
		productID,
	)
	if err != nil {
		return nil, errs.Storage("db.get_vouchers", err)
	}
	return vouchers, nil
}
