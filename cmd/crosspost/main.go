package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"crosspost/internal/auth"
	"crosspost/internal/config"
	"crosspost/internal/db"
	httpx "crosspost/internal/http"
	"crosspost/internal/logx"
	"crosspost/internal/post"
	"crosspost/internal/publish"
	"crosspost/internal/scheduler"
	"crosspost/internal/social"
)

func main() {
	cfg, err := config.Load()
	log := logx.New(cfg.LogLevel)
	if err != nil {
		log.Fatal().Err(err).Msg("bad config")
	}

	gdb, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("db connect failed")
	}
	if err := db.AutoMigrateAndIndexes(gdb); err != nil {
		log.Fatal().Err(err).Msg("db migrate failed")
	}

	// platform adapters
	client := &http.Client{Timeout: cfg.PublishTimeout}
	registry := publish.NewRegistry()
	registry.Register(social.PlatformFacebook, publish.NewFacebook(cfg.GraphAPIURL, client))
	registry.Register(social.PlatformInstagram, publish.NewInstagram(cfg.GraphAPIURL, client))

	repo := &post.Repo{DB: gdb}
	orch := &publish.Orchestrator{
		Store:    repo,
		Accounts: &social.Service{DB: gdb},
		Registry: registry,
		Timeout:  cfg.PublishTimeout,
		Log:      log,
	}
	pub := &publish.Service{Repo: repo, Orch: orch}

	// due-post scanner
	scanner := scheduler.New(repo, orch, log, cfg.ScanCron)
	if err := scanner.Start(); err != nil {
		log.Fatal().Err(err).Msg("scanner start failed")
	}

	jwtSvc := auth.NewJWT(cfg.JWTSecret)
	r := httpx.NewRouter(cfg, gdb, jwtSvc, pub)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	// graceful shutdown
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	<-ch

	scanner.Stop()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Shutdown(shutdownCtx)
}
