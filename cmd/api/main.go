package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/nisal-dev/portfolio-backend/config"
	"github.com/nisal-dev/portfolio-backend/internal/bootstrap"
	"github.com/nisal-dev/portfolio-backend/internal/cache"
	"github.com/nisal-dev/portfolio-backend/internal/cron"
	"github.com/nisal-dev/portfolio-backend/internal/github"
	projecthttp "github.com/nisal-dev/portfolio-backend/internal/projects/http"
	"github.com/nisal-dev/portfolio-backend/internal/projects/repository"
	"github.com/nisal-dev/portfolio-backend/internal/projects/service"
	"github.com/nisal-dev/portfolio-backend/internal/webhooks"
)

const serviceName = "portfolio-backend"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	bootstrap.SetGinMode(cfg.App.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := bootstrap.OpenDB(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Connected to PostgreSQL")

	rdb := bootstrap.OpenRedis(ctx, cfg.Redis)
	if rdb != nil {
		defer rdb.Close()
		log.Println("Connected to Redis")
	}

	store := cache.New()
	store.StartJanitor(ctx, cfg.Cache.SweepEvery)

	ghClient, err := github.New(github.Config{
		Username: cfg.GitHub.Username,
		Token:    cfg.GitHub.Token,
		CacheTTL: cfg.Cache.GitHubTTL,
		ErrorTTL: cfg.Cache.ErrorTTL,
	}, store)
	if err != nil {
		log.Fatalf("Failed to create GitHub client: %v", err)
	}

	projectRepo := repository.NewProjectRepository(db)
	syncLogRepo := repository.NewSyncLogRepository(db)

	projectSvc := service.NewProjectService(projectRepo, store, cfg.Cache.ProjectTTL)
	syncSvc := service.NewSyncService(projectRepo, syncLogRepo, ghClient, store)

	webhookHandler := webhooks.NewHandler(
		cfg.GitHub.WebhookSecret,
		cfg.GitHub.Username,
		store,
		webhooks.NewDeduper(rdb, 24*time.Hour),
	)

	router := bootstrap.BuildRouter(bootstrap.RouterDeps{
		ServiceName: serviceName,
		Version:     cfg.App.Version,
		Config:      cfg,
		DB:          db,
		Cache:       store,
		Projects: projecthttp.Deps{
			Projects: projectSvc,
			Sync:     syncSvc,
			GitHub:   ghClient,
			Cache:    store,
			Admin:    projectRepo,
			History:  syncLogRepo,
		},
		Webhook: webhookHandler,
	})

	scheduler := cron.NewScheduler(syncSvc, cfg.Sync.Schedule, cfg.Sync.Timeout)
	if err := scheduler.Start(); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}
	defer scheduler.Stop()

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Printf("Server starting on port %s (env=%s)", cfg.Server.Port, cfg.App.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Forced shutdown: %v", err)
	}

	log.Println("Server stopped")
}
