package routes

import (
	"net/http"

	"github.com/go-chi/render"
	"github.com/mbolis/promo-forms/app"
	"github.com/mbolis/promo-forms/httpx"
	"github.com/mbolis/promo-forms/log"
	"github.com/mbolis/promo-forms/model"
)

func CreateProgram(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Name      string `json:"name"`
			SortOrder int    `json:"sortOrder"`
		}
		err := render.DecodeJSON(r.Body, &req)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		program, err := app.Registry.CreateProgram(r.Context(), req.Name, req.SortOrder)
		if err != nil {
			httpx.Error(w, r, "create_program", err)
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, program)
	}
}

func SetProgramStatus(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		programID, ok := urlID(w, r)
		if !ok {
			return
		}

		var req struct {
			Status model.ProgramStatus `json:"status"`
		}
		err := render.DecodeJSON(r.Body, &req)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		err = app.Registry.SetProgramStatus(r.Context(), programID, req.Status)
		if err != nil {
			httpx.Error(w, r, "set_program_status", err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func DefineForm(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		programID, ok := urlID(w, r)
		if !ok {
			return
		}

		var req struct {
			Fields []model.FieldSpec `json:"fields"`
		}
		err := render.DecodeJSON(r.Body, &req)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		form, err := app.Registry.DefineForm(r.Context(), programID, req.Fields)
		if err != nil {
			httpx.Error(w, r, "define_form", err)
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, form)
	}
}

func DeleteField(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fieldID, ok := urlID(w, r)
		if !ok {
			return
		}

		err := app.Registry.DeleteField(r.Context(), fieldID)
		if err != nil {
			httpx.Error(w, r, "delete_field", err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func GetFormSubmissions(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		formID, ok := urlID(w, r)
		if !ok {
			return
		}

		submissions, err := app.Projector.ProjectForm(r.Context(), formID)
		if err != nil {
			httpx.Error(w, r, "get_submissions", err)
			return
		}

		render.JSON(w, r, map[string]any{
			"submissions": submissions,
		})
	}
}

func GetSubmission(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		submissionID, ok := urlID(w, r)
		if !ok {
			return
		}

		projection, err := app.Projector.Project(r.Context(), submissionID)
		if err != nil {
			httpx.Error(w, r, "get_submission", err)
			return
		}

		render.JSON(w, r, projection)
	}
}

func UpdateSubmission(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		submissionID, ok := urlID(w, r)
		if !ok {
			return
		}

		patch := model.SubmissionPatch{}
		err := render.DecodeJSON(r.Body, &patch)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		sub, err := app.Recorder.UpdateSubmission(r.Context(), submissionID, patch)
		if err != nil {
			httpx.Error(w, r, "update_submission", err)
			return
		}

		render.JSON(w, r, sub)
	}
}

func CreateProduct(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		product := model.Product{IsActive: true}
		err := render.DecodeJSON(r.Body, &product)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		product, err = app.Catalog.CreateProduct(r.Context(), product)
		if err != nil {
			httpx.Error(w, r, "create_product", err)
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, product)
	}
}

func IssueVouchers(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, ok := urlID(w, r)
		if !ok {
			return
		}

		var req struct {
			Codes    []string `json:"codes"`
			Generate int      `json:"generate"`
		}
		err := render.DecodeJSON(r.Body, &req)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		var vouchers []model.Voucher
		if req.Generate > 0 {
			vouchers, err = app.Inventory.GenerateVouchers(r.Context(), productID, req.Generate)
		} else {
			vouchers, err = app.Inventory.IssueVouchers(r.Context(), productID, req.Codes)
		}
		if err != nil {
			httpx.Error(w, r, "issue_vouchers", err)
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, map[string]any{
			"vouchers": vouchers,
		})
	}
}

func ListVouchers(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, ok := urlID(w, r)
		if !ok {
			return
		}

		vouchers, err := app.Inventory.Vouchers(r.Context(), productID)
		if err != nil {
			httpx.Error(w, r, "list_vouchers", err)
			return
		}

		render.JSON(w, r, map[string]any{
			"vouchers": vouchers,
		})
	}
}

func ReconcileProduct(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, ok := urlID(w, r)
		if !ok {
			return
		}

		stock, found, err := app.Inventory.Reconcile(r.Context(), productID)
		if err != nil {
			httpx.Error(w, r, "reconcile_product", err)
			return
		}

		render.JSON(w, r, map[string]any{
			"found": found,
			"stock": stock,
		})
	}
}

func DeleteVoucher(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		voucherID, ok := urlID(w, r)
		if !ok {
			return
		}

		err := app.Inventory.DeleteVoucher(r.Context(), voucherID)
		if err != nil {
			httpx.Error(w, r, "delete_voucher", err)
			return
		}

		render.JSON(w, r, map[string]any{
			"success": true,
		})
	}
}

func UpdateWinnerPhoto(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		winnerID, ok := urlID(w, r)
		if !ok {
			return
		}

		var req struct {
			PhotoURL string `json:"photoUrl"`
		}
		err := render.DecodeJSON(r.Body, &req)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		err = app.Catalog.UpdateWinnerPhoto(r.Context(), winnerID, req.PhotoURL)
		if err != nil {
			httpx.Error(w, r, "update_winner_photo", err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func ListWinners(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		programID, ok := urlID(w, r)
		if !ok {
			return
		}

		winners, err := app.Catalog.Winners(r.Context(), programID)
		if err != nil {
			httpx.Error(w, r, "list_winners", err)
			return
		}

		render.JSON(w, r, map[string]any{
			"winners": winners,
		})
	}
}
