package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/mbolis/promo-forms/app"
	"github.com/mbolis/promo-forms/config"
	"github.com/mbolis/promo-forms/database"
	"github.com/mbolis/promo-forms/log"
	"github.com/mbolis/promo-forms/notify"
	"github.com/mbolis/promo-forms/routes"
)

const notifyQueueSize = 256

func main() {
	cfg, err := config.ParseFlags()
	if err != nil {
		log.Fatal("main.config:", err)
	}
	if cfg.Debug {
		log.SetLevel(log.DebugLevel)
	}

	db, err := database.Open(cfg.DBUrl)
	if err != nil {
		log.Fatal("main.db.open:", err)
	}
	defer db.Close()

	var notifier notify.Notifier = notify.LogNotifier{}
	if cfg.NotifyURL != "" {
		notifier = notify.NewWebhookNotifier(cfg.NotifyURL)
	}
	dispatcher := notify.NewDispatcher(notifier, cfg.NotifyRPS, cfg.NotifyWorkers, notifyQueueSize)
	defer dispatcher.Close()

	handler := routes.Wire(app.New(db, cfg, dispatcher))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err = runServer(ctx, cfg, handler)
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("main.server:", err)
	}
}

func runServer(ctx context.Context, cfg config.Config, handler http.Handler) error {
	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Info("Listening on " + cfg.Url())
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
