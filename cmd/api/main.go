package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joshua-paul-1/fintrackr/internal/analytics"
	"github.com/joshua-paul-1/fintrackr/internal/api/handlers"
	"github.com/joshua-paul-1/fintrackr/internal/api/middleware"
	"github.com/joshua-paul-1/fintrackr/internal/app"
	"github.com/joshua-paul-1/fintrackr/internal/budget"
	"github.com/joshua-paul-1/fintrackr/internal/config"
	"github.com/joshua-paul-1/fintrackr/internal/extractor"
	"github.com/joshua-paul-1/fintrackr/internal/friends"
	"github.com/joshua-paul-1/fintrackr/internal/identity"
	"github.com/joshua-paul-1/fintrackr/internal/jobs/inmemory"
	"github.com/joshua-paul-1/fintrackr/internal/leaderboard"
	"github.com/joshua-paul-1/fintrackr/internal/logger"
	"github.com/joshua-paul-1/fintrackr/internal/pipeline"
)

func main() {
	port := flag.String("port", "", "HTTP server port (overrides HTTP_PORT)")
	flag.Parse()

	cfg, err := config.NewConfig()
	if err != nil {
		logger.New().Fatal().Err(err).Msg("Failed to load configuration")
	}
	if *port != "" {
		cfg.HTTP.Port = *port
	}

	log, err := logger.Configure(os.Stdout, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		logger.New().Fatal().Err(err).Msg("Failed to configure logger")
	}

	if cfg.Session.Secret == config.DevSessionSecret {
		log.Warn().Msg("SESSION_ALLOW_DEV_SECRET is set - session tokens use the public development secret")
	}
	if cfg.Google.ClientID == "" {
		log.Warn().Msg("GOOGLE_CLIENT_ID is not set - Google sign-in will reject every token")
	}

	ctx := context.Background()

	st, err := app.OpenStores(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open stores")
	}
	defer st.Close()

	blobs, closeBlobs, err := app.OpenBlobs(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.Storage.Backend).Msg("Failed to open blob storage")
	}
	defer closeBlobs()

	// Extraction workers
	ext := extractor.NewCommand(cfg.Extractor.Command, cfg.Extractor.Args, nil, cfg.Extractor.Timeout, log)
	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(cfg.Extractor.QueueSize, cfg.Extractor.Workers, jobStore, log)

	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()

	if err := jobQueue.Start(workerCtx, pipeline.ExtractHandler(ext)); err != nil {
		log.Fatal().Err(err).Msg("Failed to start extraction workers")
	}

	var opts []pipeline.Option
	recorder, err := app.OpenRecorder(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create parsing run recorder")
	}
	if recorder != nil {
		defer recorder.Close()
		opts = append(opts, pipeline.WithAuditor(recorder))
		log.Info().Str("dataset", cfg.Audit.Dataset).Msg("Parsing run audit enabled")
	}

	ingest := pipeline.NewService(blobs, st.Documents, st.Transactions, jobQueue, log, opts...)
	budgets := budget.NewService(st.Budgets, st.Transactions, log)
	friendSvc := friends.NewService(st.Friends, log)
	board := leaderboard.NewAggregator(friendSvc, st.Transactions, st.Budgets, log)

	// A nil *Analyzer inside the interface would not read as disabled.
	var analyzer handlers.Analyzer
	if cfg.Analytics.Enabled {
		model, err := analytics.NewGemini(ctx, cfg.Analytics.Model)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create analytics model")
		}
		analyzer = analytics.NewAnalyzer(st.Transactions, model, log)
	}

	sessions := identity.NewSessions(cfg.Session.Secret, cfg.Session.TTL, cfg.Session.Issuer)
	google := identity.NewGoogle(cfg.Google.ClientID)

	mux := handlers.NewRouter(handlers.Handlers{
		Auth:         handlers.NewAuthHandler(google, sessions, log),
		Documents:    handlers.NewDocumentsHandler(ingest, cfg.HTTP.MaxUploadBytes, log),
		Transactions: handlers.NewTransactionsHandler(st.Transactions, ingest, log),
		Budget:       handlers.NewBudgetHandler(budgets, log),
		Friends:      handlers.NewFriendsHandler(friendSvc, board, log),
		Jobs:         handlers.NewJobsHandler(jobStore, log),
		Analytics:    handlers.NewAnalyticsHandler(analyzer, log),
	})

	// Apply middleware
	handler := middleware.Recovery(log)(
		middleware.RequestID(
			middleware.Logger(log)(
				middleware.CORS(cfg.HTTP.AllowedOrigin)(
					middleware.Auth(identity.Chain{sessions, google}, handlers.PublicPaths...)(mux),
				),
			),
		),
	)

	server := &http.Server{
		Addr:         ":" + cfg.HTTP.Port,
		Handler:      handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	go func() {
		log.Info().
			Str("port", cfg.HTTP.Port).
			Str("storage", cfg.Storage.Backend).
			Bool("postgres", cfg.Database.DSN != "").
			Int("workers", cfg.Extractor.Workers).
			Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	// Stop job queue and wait for in-flight extractions
	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error stopping job queue")
	}
	cancelWorker()

	if err := jobQueue.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close job queue")
	}

	log.Info().Msg("Server exited")
}
