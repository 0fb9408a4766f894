package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"github.com/Uri-do/monitoringgrid/internal/analytics"
	"github.com/Uri-do/monitoringgrid/internal/api"
	"github.com/Uri-do/monitoringgrid/internal/config"
	"github.com/Uri-do/monitoringgrid/internal/logs"
	"github.com/Uri-do/monitoringgrid/internal/metrics"
	"github.com/Uri-do/monitoringgrid/internal/notify"
	"github.com/Uri-do/monitoringgrid/internal/retention"
	"github.com/Uri-do/monitoringgrid/internal/scheduler"
	"github.com/Uri-do/monitoringgrid/internal/store"

	"github.com/gorilla/handlers"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	// Root context
	ctx := context.Background()

	// Logger and metrics
	logger := logs.NewLogger(cfg.LogBuffer, logs.INFO)
	m := metrics.New()

	// Storage
	st, err := store.Open(cfg.DBPath)
	if err != nil {
		log.Fatal(err)
	}
	defer st.Close()

	// Notification channels
	channels := notify.NewChannelManager(cfg.Notify.FailureThreshold, cfg.Notify.SuccessThreshold)
	for _, url := range cfg.WebhookURLs {
		channels.Add(url)
	}
	notifier := notify.NewNotifier(channels, cfg.Notify, logger, m)

	// Scheduler
	collector := scheduler.NewHTTPCollector(cfg.CollectTimeout)
	runner := scheduler.NewRunner(st, collector, notifier, logger, m, cfg.ScheduleInterval, cfg.BaselineWindow)
	go runner.Start(ctx)

	// Retention
	pruner := retention.NewPruner(st, cfg.PruneInterval, cfg.Retention, logger, m)
	go pruner.Start(ctx)

	// Analytics + API
	svc := analytics.NewService(st, logger)
	handler := api.NewHandler(st, svc, runner, channels, logger)
	httpHandler := api.RegisterRoutes(handler, m)

	logged := handlers.LoggingHandler(os.Stdout, httpHandler)

	server := &http.Server{
		Addr:    cfg.HTTPBind,
		Handler: logged,
	}

	logger.Info("server", "listening on "+cfg.HTTPBind)
	log.Printf("MonitoringGrid API listening on %s", cfg.HTTPBind)

	if err := server.ListenAndServe(); err != nil {
		log.Fatal(err)
	}
}
