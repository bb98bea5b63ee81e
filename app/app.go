package app

import (
	"github.com/go-chi/oauth"
	"github.com/jmoiron/sqlx"
	"github.com/mbolis/promo-forms/catalog"
	"github.com/mbolis/promo-forms/config"
	"github.com/mbolis/promo-forms/forms"
	"github.com/mbolis/promo-forms/httpx"
	"github.com/mbolis/promo-forms/inventory"
	"github.com/mbolis/promo-forms/orders"
)

// App carries the store-backed components every controller works with.
// None of them caches data between calls.
type App struct {
	DB *sqlx.DB
	*oauth.BearerServer
	config.Config

	Registry  *forms.Registry
	Recorder  *forms.Recorder
	Projector *forms.Projector
	Inventory *inventory.Reconciler
	Catalog   *catalog.Catalog
	Orders    *orders.Tracker
}

func New(db *sqlx.DB, cfg config.Config, dispatcher forms.Dispatcher) App {
	return App{
		DB:           db,
		BearerServer: httpx.NewBearerServer(db, cfg),
		Config:       cfg,

		Registry:  forms.NewRegistry(db),
		Recorder:  forms.NewRecorder(db, dispatcher),
		Projector: forms.NewProjector(db),
		Inventory: inventory.NewReconciler(db),
		Catalog:   catalog.New(db),
		Orders:    orders.NewTracker(db),
	}
}
