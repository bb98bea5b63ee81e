package routes

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/mbolis/promo-forms/app"
	"github.com/mbolis/promo-forms/config"
	"github.com/mbolis/promo-forms/database/databasetest"
	"github.com/mbolis/promo-forms/httpx"
	"github.com/mbolis/promo-forms/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newApp(t *testing.T) app.App {
	t.Helper()

	db := databasetest.Open(t)
	return app.New(db, config.Config{TokenSecret: "test-secret", TokenTTL: time.Minute}, nil)
}

// adminRouter serves the admin endpoints without the bearer check.
func adminRouter(a app.App) http.Handler {
	r := chi.NewRouter()
	adminRoutes(r, a)
	return r
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("content-type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestAdminRequiresToken(t *testing.T) {
	h := Wire(newApp(t))

	w := do(t, h, http.MethodGet, "/api/admin/products/1/vouchers", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLoginGrantsAdminAccess(t *testing.T) {
	a := newApp(t)
	hash, err := httpx.HashPassword("hunter2")
	require.NoError(t, err)
	databasetest.Exec(t, a.DB, `INSERT INTO admin_user (username, password_hash) VALUES ('admin', ?)`, hash)
	h := Wire(a)

	req := httptest.NewRequest(http.MethodPost, "/api/login", nil)
	req.SetBasicAuth("admin", "wrong")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/login", nil)
	req.SetBasicAuth("admin", "hunter2")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	token, _ := decode(t, w)["access_token"].(string)
	require.NotEmpty(t, token)

	req = httptest.NewRequest(http.MethodGet, "/api/admin/programs/1/winners", nil)
	req.Header.Set("authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestLoginWithoutBasicAuth(t *testing.T) {
	w := do(t, Wire(newApp(t)), http.MethodPost, "/api/login", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSubmitForm(t *testing.T) {
	a := newApp(t)
	ctx := context.Background()
	p, err := a.Registry.CreateProgram(ctx, "Ramadan Draw", 1)
	require.NoError(t, err)
	form, err := a.Registry.DefineForm(ctx, p.ID, []model.FieldSpec{
		{Type: model.FieldText, Label: "Name", Required: true},
		{Type: model.FieldNumber, Label: "Age"},
	})
	require.NoError(t, err)
	nameID, ageID := form.Fields[0].ID, form.Fields[1].ID
	h := Wire(a)
	path := fmt.Sprintf("/api/forms/%d/submissions", form.ID)

	w := do(t, h, http.MethodPost, path, fmt.Sprintf(`{"answers":{"%d":42}}`, ageID))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.NotEmpty(t, decode(t, w)["error"])

	w = do(t, h, http.MethodPost, path, `{"answers":{"nope":"x"}}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, h, http.MethodPost, path, `not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, h, http.MethodPost, path, fmt.Sprintf(`{"answers":{"%d":"Akbar","%d":42}}`, nameID, ageID))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	id := int64(decode(t, w)["id"].(float64))

	proj, err := a.Projector.Project(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"Name": "Akbar", "Age": "42"}, proj.ByLabel())

	w = do(t, h, http.MethodPost, "/api/forms/999/submissions", `{"answers":{}}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteVoucher(t *testing.T) {
	a := newApp(t)
	productID := databasetest.Exec(t, a.DB, `INSERT INTO product (name, type, stock) VALUES ('Pulsa 10k', 'voucher', 2)`)
	voucherID := databasetest.Exec(t, a.DB, `INSERT INTO voucher (product_id, code) VALUES (?, 'AAA')`, productID)
	databasetest.Exec(t, a.DB, `INSERT INTO voucher (product_id, code) VALUES (?, 'BBB')`, productID)
	h := adminRouter(a)
	path := fmt.Sprintf("/vouchers/%d", voucherID)

	w := do(t, h, http.MethodDelete, path, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, map[string]any{"success": true}, decode(t, w))

	var stock int
	require.NoError(t, a.DB.Get(&stock, `SELECT stock FROM product WHERE id = ?`, productID))
	assert.Equal(t, 1, stock)

	w = do(t, h, http.MethodDelete, path, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestReconcileProduct(t *testing.T) {
	a := newApp(t)
	productID := databasetest.Exec(t, a.DB, `INSERT INTO product (name, type, stock) VALUES ('Pulsa 10k', 'voucher', 7)`)
	databasetest.Exec(t, a.DB, `INSERT INTO voucher (product_id, code) VALUES (?, 'AAA')`, productID)
	h := adminRouter(a)

	w := do(t, h, http.MethodPost, fmt.Sprintf("/products/%d/reconcile", productID), "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, map[string]any{"found": true, "stock": float64(1)}, decode(t, w))

	w = do(t, h, http.MethodPost, "/products/999/reconcile", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, decode(t, w)["found"])
}

func TestIssueVouchers(t *testing.T) {
	a := newApp(t)
	productID := databasetest.Exec(t, a.DB, `INSERT INTO product (name, type) VALUES ('Pulsa 10k', 'voucher')`)
	h := adminRouter(a)
	path := fmt.Sprintf("/products/%d/vouchers", productID)

	w := do(t, h, http.MethodPost, path, `{"codes":["A1","B2"]}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = do(t, h, http.MethodPost, path, `{"generate":3}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = do(t, h, http.MethodPost, path, `{"codes":["A1"]}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(t, h, http.MethodGet, path, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["vouchers"], 5)
}

func TestTrackOrder(t *testing.T) {
	a := newApp(t)
	productID := databasetest.Exec(t, a.DB, `INSERT INTO product (name, type, price) VALUES ('Mug', 'physical', 5000)`)
	orderID := databasetest.Exec(t, a.DB, `
		INSERT INTO customer_order (product_id, customer_phone, total_price)
		VALUES (?, '+628111', 5000)`, productID)
	h := Wire(a)

	w := do(t, h, http.MethodGet, fmt.Sprintf("/api/orders/%d/track", orderID), "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, "pending", body["status"])
	assert.Equal(t, "Mug", body["product"].(map[string]any)["name"])

	w = do(t, h, http.MethodGet, "/api/orders/999/track", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMalformedID(t *testing.T) {
	w := do(t, Wire(newApp(t)), http.MethodGet, "/api/orders/abc/track", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
