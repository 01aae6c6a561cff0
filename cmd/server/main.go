package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"coverline/internal/config"
	"coverline/internal/email/noop"
	"coverline/internal/email/ses"
	"coverline/internal/handler"
	"coverline/internal/llm"
	"coverline/internal/llm/claude"
	"coverline/internal/llm/gemini"
	"coverline/internal/llm/openai"
	"coverline/internal/lock"
	"coverline/internal/logger"
	"coverline/internal/port"
	"coverline/internal/repository/postgres"
	"coverline/internal/router"
	"coverline/internal/service"
	"coverline/internal/storage/gcs"
	s3storage "coverline/internal/storage/s3"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

const shutdownTimeout = 30 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Initialize repositories
	docRepo := postgres.NewDocumentRepo(db)
	benefitRepo := postgres.NewBenefitRepo(db)
	auditRepo := postgres.NewAuditRepo(db)

	// Initialize storage
	storage, err := newObjectStorage(ctx, &cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}

	// Register and initialize the extraction model
	llm.RegisterProvider("claude", func(c *config.LLMConfig) (port.BenefitExtractor, error) {
		return claude.NewExtractor(c), nil
	})
	llm.RegisterProvider("gemini", func(c *config.LLMConfig) (port.BenefitExtractor, error) {
		return gemini.NewExtractor(c), nil
	})
	llm.RegisterProvider("openai", func(c *config.LLMConfig) (port.BenefitExtractor, error) {
		return openai.NewExtractor(c), nil
	})
	extractor, err := llm.NewExtractorChain(&cfg.LLM, log)
	if err != nil {
		return fmt.Errorf("failed to initialize llm provider: %w", err)
	}
	if !cfg.LLM.Configured() {
		log.Warn("llm api key not set; extractions will fail until configured")
	}

	extractionLock, err := newExtractionLock(ctx, &cfg.Lock, log)
	if err != nil {
		return fmt.Errorf("failed to initialize extraction lock: %w", err)
	}

	notifier, err := newNotifier(&cfg.Email, log)
	if err != nil {
		return fmt.Errorf("failed to initialize notifier: %w", err)
	}

	// Initialize services
	engine := service.NewExtractionService(service.ExtractionDeps{
		Documents: docRepo,
		Benefits:  benefitRepo,
		Audit:     auditRepo,
		Storage:   storage,
		Extractor: extractor,
		Lock:      extractionLock,
		Notifier:  notifier,
	}, log)
	pool := service.NewExtractionPool(engine, docRepo, service.ExtractionPoolConfig{
		Concurrency: cfg.Pool.Concurrency,
		QueueSize:   cfg.Pool.QueueSize,
		RatePerSec:  cfg.Pool.RatePerSec,
		Burst:       cfg.Pool.Burst,
		JobTimeout:  time.Duration(cfg.Pool.JobTimeoutSecs) * time.Second,
	}, log)
	documentSvc := service.NewDocumentService(docRepo, benefitRepo, auditRepo, storage, log)
	reviewSvc := service.NewReviewService(benefitRepo, log)

	// Initialize handlers
	r := router.Setup(router.Handlers{
		Extraction: handler.NewExtractionHandler(pool),
		Document:   handler.NewDocumentHandler(documentSvc),
		Benefit:    handler.NewBenefitHandler(reviewSvc),
		Health: handler.NewHealthHandler(docRepo, version, handler.HealthFlags{
			LLMConfigured:     cfg.LLM.Configured(),
			StorageConfigured: cfg.Storage.Configured(),
			SecretConfigured:  cfg.Auth.SharedSecret != "",
		}),
	}, &cfg.Auth, &cfg.CORS, log)

	poolDone := make(chan struct{})
	go func() {
		defer close(poolDone)
		pool.Start(ctx)
	}()

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("server starting", zap.String("addr", cfg.Server.Port), zap.String("version", version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-serverErr:
		stop()
		<-poolDone
		return fmt.Errorf("server failed: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http server shutdown failed", zap.Error(err))
	}

	// The pool saw ctx cancel too; wait for in-flight extractions.
	<-poolDone
	log.Info("server stopped")
	return nil
}

func newObjectStorage(ctx context.Context, cfg *config.StorageConfig) (port.ObjectStorage, error) {
	switch cfg.Provider {
	case "gcs":
		return gcs.NewGCSClient(ctx, cfg)
	case "s3", "":
		return s3storage.NewS3Client(cfg)
	default:
		return nil, fmt.Errorf("unknown storage provider: %s", cfg.Provider)
	}
}

func newExtractionLock(ctx context.Context, cfg *config.LockConfig, log *zap.Logger) (port.ExtractionLock, error) {
	switch cfg.Provider {
	case "redis":
		client, err := lock.NewRedisClient(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return lock.NewRedisLock(client, time.Duration(cfg.TTLSecs)*time.Second, log), nil
	case "memory", "":
		return lock.NewMemoryLock(), nil
	default:
		return nil, fmt.Errorf("unknown lock provider: %s", cfg.Provider)
	}
}

func newNotifier(cfg *config.EmailConfig, log *zap.Logger) (port.ReviewNotifier, error) {
	switch cfg.Provider {
	case "ses":
		return ses.NewSESNotifier(cfg)
	case "noop", "":
		return noop.NewNoopNotifier(cfg.FrontendURL, log), nil
	default:
		return nil, fmt.Errorf("unknown email provider: %s", cfg.Provider)
	}
}
