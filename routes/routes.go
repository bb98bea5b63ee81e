package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mbolis/promo-forms/app"
	"github.com/mbolis/promo-forms/log"
	"github.com/mbolis/promo-forms/metrics"
	"github.com/mbolis/promo-forms/routes/middlewares"
)

func Wire(app app.App) http.Handler {
	root := chi.NewRouter()
	root.Use(
		middleware.RequestID,
		middleware.RequestLogger(&middleware.DefaultLogFormatter{Logger: log.Logger, NoColor: true}),
		middleware.Recoverer,
		metrics.Instrument,
	)

	root.Method(http.MethodGet, "/metrics", metrics.Handler())
	root.Mount("/api", apiRouter(app))

	return root
}

func apiRouter(app app.App) http.Handler {
	api := chi.NewRouter()

	api.Get("/programs", ListPrograms(app))
	api.Get(`/programs/{id:^\d+$}/form`, GetActiveForm(app))
	api.Get(`/forms/{id:^\d+$}/schema`, GetFormSchema(app))
	api.Post(`/forms/{id:^\d+$}/submissions`, SubmitForm(app))

	api.Get("/products", ListProducts(app))
	api.Get(`/products/{id:^\d+$}`, GetProduct(app))
	api.Get(`/orders/{id:^\d+$}/track`, TrackOrder(app))
	api.Post("/vouchers/redeem", RedeemVoucher(app))

	api.Route("/admin", func(r chi.Router) {
		r.Use(middlewares.Admin(app.TokenSecret))
		adminRoutes(r, app)
	})

	api.Post("/login", Login(app))
	api.Post("/refresh", Refresh(app))

	return api
}

func adminRoutes(r chi.Router, app app.App) {
	// programs & forms
	r.Post("/programs", CreateProgram(app))
	r.Put(`/programs/{id:^\d+$}/status`, SetProgramStatus(app))
	r.Post(`/programs/{id:^\d+$}/forms`, DefineForm(app))
	r.Delete(`/fields/{id:^\d+$}`, DeleteField(app))

	// submissions
	r.Get(`/forms/{id:^\d+$}/submissions`, GetFormSubmissions(app))
	r.Get(`/submissions/{id:^\d+$}`, GetSubmission(app))
	r.Put(`/submissions/{id:^\d+$}`, UpdateSubmission(app))

	// inventory
	r.Post("/products", CreateProduct(app))
	r.Post(`/products/{id:^\d+$}/vouchers`, IssueVouchers(app))
	r.Get(`/products/{id:^\d+$}/vouchers`, ListVouchers(app))
	r.Post(`/products/{id:^\d+$}/reconcile`, ReconcileProduct(app))
	r.Delete(`/vouchers/{id:^\d+$}`, DeleteVoucher(app))

	r.Get(`/programs/{id:^\d+$}/winners`, ListWinners(app))
	r.Put(`/winners/{id:^\d+$}/photo`, UpdateWinnerPhoto(app))
}
