package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/okian/delega/internal/adapters/http/api"
	"github.com/okian/delega/internal/advisory"
	app "github.com/okian/delega/internal/app"
	"github.com/okian/delega/internal/config"
	"github.com/okian/delega/pkg/logger"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 30 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

func main() {
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info",
			logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	// Without an API key the planner runs on local fallback splits only.
	var adv advisory.Advisory = advisory.Disabled{}
	if cfg.AdvisoryAPIKey != "" {
		adv = advisory.NewClient(cfg.AdvisoryAPIKey,
			advisory.WithBaseURL(cfg.AdvisoryBaseURL),
			advisory.WithModel(cfg.AdvisoryModel),
		)
	} else {
		log.Warn(ctx, "no advisory API key configured; using fallback planning only")
	}

	svc := app.New(
		app.WithLogger(log),
		app.WithQueueSize(cfg.QueueSize),
		app.WithShardCount(cfg.ShardCount),
		app.WithShardBuffer(cfg.ShardBuffer),
		app.WithDedupeSize(cfg.DedupeSize),
		app.WithAdvisory(adv),
	)
	if err := svc.Start(ctx); err != nil {
		os.Stderr.WriteString("failed to start service: " + err.Error() + "\n")
		return
	}
	defer svc.Stop(context.Background())

	mux := http.NewServeMux()
	apiServer := httpapi.NewServer(svc, svc,
		httpapi.WithMaxRankingLimit(cfg.MaxRankingLimit),
	)
	apiServer.Register(ctx, mux)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			os.Stderr.WriteString("HTTP server failed: " + err.Error() + "\n")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}
	log.Info(ctx, "server stopped")
}
