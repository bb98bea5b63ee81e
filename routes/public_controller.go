package routes

import (
	"net/http"

	"github.com/go-chi/render"
	"github.com/mbolis/promo-forms/app"
	"github.com/mbolis/promo-forms/forms"
	"github.com/mbolis/promo-forms/httpx"
	"github.com/mbolis/promo-forms/log"
)

func ListPrograms(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		programs, err := app.Registry.PublishedPrograms(r.Context())
		if err != nil {
			httpx.Error(w, r, "list_programs", err)
			return
		}

		render.JSON(w, r, map[string]any{
			"programs": programs,
		})
	}
}

func GetActiveForm(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		programID, ok := urlID(w, r)
		if !ok {
			return
		}

		form, err := app.Registry.ActiveForm(r.Context(), programID)
		if err != nil {
			httpx.Error(w, r, "get_active_form", err)
			return
		}

		render.JSON(w, r, form)
	}
}

func GetFormSchema(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		formID, ok := urlID(w, r)
		if !ok {
			return
		}

		form, err := app.Registry.Form(r.Context(), formID)
		if err != nil {
			httpx.Error(w, r, "get_form_schema", err)
			return
		}

		render.JSON(w, r, form)
	}
}

type submitRequest struct {
	Answers map[string]any `json:"answers"`
}

func SubmitForm(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		formID, ok := urlID(w, r)
		if !ok {
			return
		}

		req := submitRequest{}
		err := render.DecodeJSON(r.Body, &req)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		answers, err := forms.NormalizeAnswers(req.Answers)
		if err != nil {
			httpx.Error(w, r, "submit_form.answers", err)
			return
		}

		sub, err := app.Recorder.Record(r.Context(), formID, answers)
		if err != nil {
			httpx.Error(w, r, "submit_form", err)
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, map[string]any{
			"id":     sub.ID,
			"status": sub.Status,
		})
	}
}

func ListProducts(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		products, err := app.Catalog.Products(r.Context())
		if err != nil {
			httpx.Error(w, r, "list_products", err)
			return
		}

		render.JSON(w, r, map[string]any{
			"products": products,
		})
	}
}

func GetProduct(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, ok := urlID(w, r)
		if !ok {
			return
		}

		product, err := app.Catalog.Product(r.Context(), productID)
		if err != nil {
			httpx.Error(w, r, "get_product", err)
			return
		}

		render.JSON(w, r, product)
	}
}

func TrackOrder(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, ok := urlID(w, r)
		if !ok {
			return
		}

		tracking, err := app.Orders.Track(r.Context(), orderID)
		if err != nil {
			httpx.Error(w, r, "track_order", err)
			return
		}

		render.JSON(w, r, tracking)
	}
}

func RedeemVoucher(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Code string `json:"code"`
		}
		err := render.DecodeJSON(r.Body, &req)
		if err != nil || req.Code == "" {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		voucher, err := app.Inventory.ConsumeVoucher(r.Context(), req.Code)
		if err != nil {
			httpx.Error(w, r, "redeem_voucher", err)
			return
		}

		render.JSON(w, r, voucher)
	}
}
