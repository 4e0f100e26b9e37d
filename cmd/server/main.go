package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/zachatkinson/drivehr-netlify-sync-sub000/internal/api"
	"github.com/zachatkinson/drivehr-netlify-sync-sub000/internal/browser"
	"github.com/zachatkinson/drivehr-netlify-sync-sub000/internal/config"
	"github.com/zachatkinson/drivehr-netlify-sync-sub000/internal/core"
	"github.com/zachatkinson/drivehr-netlify-sync-sub000/internal/dedup"
	"github.com/zachatkinson/drivehr-netlify-sync-sub000/internal/discovery"
	"github.com/zachatkinson/drivehr-netlify-sync-sub000/internal/fetcher"
	"github.com/zachatkinson/drivehr-netlify-sync-sub000/internal/httpx"
	"github.com/zachatkinson/drivehr-netlify-sync-sub000/internal/jobs"
	"github.com/zachatkinson/drivehr-netlify-sync-sub000/internal/observability"
	"github.com/zachatkinson/drivehr-netlify-sync-sub000/internal/store"
	"github.com/zachatkinson/drivehr-netlify-sync-sub000/internal/webhook"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	var dbStore *store.Store
	if cfg.DatabaseURL != "" {
		dbStore, err = store.NewStore(cfg.DatabaseURL)
		if err != nil {
			slog.Error("failed to connect to store", "error", err)
			os.Exit(1)
		}
		defer dbStore.Close()

		workDir, _ := os.Getwd()
		schemaPath := filepath.Join(workDir, "internal", "store", "schema.sql")
		if err := dbStore.RunMigrations(schemaPath); err != nil {
			slog.Error("failed to run migrations", "error", err)
			os.Exit(1)
		}
	}

	var deduper *dedup.Deduplicator
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		deduper = dedup.New(rdb, "jobs:seen", 30*24*time.Hour)
	}

	var sender *webhook.Sender
	if cfg.Webhook.URL != "" {
		sender = webhook.NewSender(cfg.Webhook.URL, cfg.Webhook.Secret, 10*time.Second)
	}

	client := httpx.NewClient(30*time.Second, httpx.DefaultRetryConfig(), map[string]string{
		"User-Agent": cfg.UserAgent,
	})
	orch := fetcher.NewOrchestrator(client, browser.NewPlaywrightDriver(), observability.NewStats())
	prober := discovery.NewProber(cfg.UserAgent)

	targets := make([]jobs.TargetConfig, 0, len(cfg.Targets))
	for _, t := range cfg.Targets {
		targets = append(targets, t.TargetConfig(cfg.UserAgent))
	}

	ctx := context.Background()

	sync := core.NewSyncService(orch, dbStore, deduper, sender, prober, targets)
	if len(targets) > 0 {
		sync.Start(ctx, 30*time.Minute)
	}

	srv := api.NewServer(dbStore, sync, targets)

	slog.Info("starting server", "port", cfg.Port, "targets", len(targets))
	if err := http.ListenAndServe(":"+cfg.Port, srv.Router()); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
