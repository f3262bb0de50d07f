package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/moatwatch/moatwatch/internal/adapters/http/api"
	"github.com/moatwatch/moatwatch/internal/adapters/publish"
	"github.com/moatwatch/moatwatch/internal/adapters/quote"
	"github.com/moatwatch/moatwatch/internal/adapters/report"
	"github.com/moatwatch/moatwatch/internal/adapters/repository"
	"github.com/moatwatch/moatwatch/internal/adapters/universe"
	app "github.com/moatwatch/moatwatch/internal/app"
	"github.com/moatwatch/moatwatch/internal/config"
	"github.com/moatwatch/moatwatch/internal/domain/scoring"
	"github.com/moatwatch/moatwatch/internal/domain/valuation"
	"github.com/moatwatch/moatwatch/internal/schedule"
	"github.com/moatwatch/moatwatch/pkg/logger"
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
	// Initialize logging
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() {
		if err := logger.Sync(); err != nil {
			os.Stderr.WriteString("failed to sync logger: " + err.Error() + "\n")
		}
	}()

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

	svc := buildService(cfg)

	if cfg.RunOnce {
		if err := svc.Run(ctx, app.TriggerManual); err != nil {
			log.Error(ctx, "run failed", logger.Error(err))
			os.Exit(1)
		}
		return
	}

	sched, err := schedule.NewScheduler(cfg.Schedule, svc.Run)
	if err != nil {
		os.Stderr.WriteString("invalid schedule: " + err.Error() + "\n")
		return
	}
	if err := sched.Start(ctx); err != nil {
		os.Stderr.WriteString("failed to start scheduler: " + err.Error() + "\n")
		return
	}
	log.Info(ctx, "next scheduled run",
		logger.String("at", sched.Next(time.Now()).Format(time.RFC3339)))

	// HTTP mux and routes.
	mux := http.NewServeMux()
	apiServer := api.NewServer(svc, svc, cfg.OutputDir)
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
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			os.Stderr.WriteString("HTTP server failed: " + err.Error() + "\n")
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()
	log.Info(ctx, "shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := sched.Stop(shutdownCtx); err != nil {
		log.Error(ctx, "scheduler stop failed", logger.Error(err))
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "stopped")
}

// buildService wires the pipeline service from configuration.
func buildService(cfg *config.Config) *app.Service {
	httpClient := &http.Client{Timeout: cfg.RequestTimeout}

	sources := []universe.Source{
		universe.NewNSESource(httpClient, cfg.NSEListURL, cfg.UserAgent),
		universe.NewBSESource(httpClient, cfg.BSEListURL, cfg.UserAgent),
	}
	if cfg.ScreenerURL != "" {
		sources = append(sources, universe.NewScreenerSource(httpClient, cfg.ScreenerURL, cfg.UserAgent))
	}
	merger := universe.NewMerger(sources)

	fetcher := quote.NewClient(cfg.QuoteBaseURL,
		quote.WithHTTPClient(httpClient),
		quote.WithUserAgent(cfg.UserAgent),
	)
	deriver := valuation.NewDeriver()
	scorer := scoring.NewBuffettScorer(scoring.WithMinScore(cfg.MinScore))
	store := repository.NewFileStore(cfg.DataDir, cfg.OutputDir)

	reporter, err := report.NewGenerator(cfg.OutputDir, report.WithTitle(cfg.ReportTitle))
	if err != nil {
		os.Stderr.WriteString("failed to build report generator: " + err.Error() + "\n")
		os.Exit(1)
	}

	opts := []app.Option{
		app.WithWorkerCount(cfg.FetchWorkers),
		app.WithQueueSize(cfg.QueueSize),
		app.WithBatching(cfg.BatchSize, cfg.BatchPause),
		app.WithCollectTimeout(cfg.CollectTimeout),
	}
	if cfg.PublishEnabled {
		publisher := publish.NewPublisher(cfg.RepoDir, cfg.OutputDir, cfg.DataDir,
			publish.WithRemote(cfg.RemoteName),
			publish.WithBranches(cfg.SiteBranch, cfg.DataBranch),
			publish.WithAuthor(cfg.GitAuthorName, cfg.GitAuthorEmail),
		)
		opts = append(opts, app.WithPublisher(publisher))
	}

	return app.New(store, merger, fetcher, deriver, scorer, reporter, opts...)
}
