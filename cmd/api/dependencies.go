package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/ericlbarreto/conta-ai/internal/domain/analysis"
	"github.com/ericlbarreto/conta-ai/internal/domain/archive"
	"github.com/ericlbarreto/conta-ai/internal/domain/assistant"
	"github.com/ericlbarreto/conta-ai/internal/domain/charts"
	"github.com/ericlbarreto/conta-ai/internal/domain/chat"
	chathandler "github.com/ericlbarreto/conta-ai/internal/domain/chat/handler"
	"github.com/ericlbarreto/conta-ai/internal/domain/document"
	"github.com/ericlbarreto/conta-ai/internal/observability/metrics"
	"github.com/ericlbarreto/conta-ai/pkg/config"
	"github.com/ericlbarreto/conta-ai/pkg/cron"
	"github.com/ericlbarreto/conta-ai/pkg/db"
	"github.com/ericlbarreto/conta-ai/pkg/storage"
)

// Dependencies holds all application dependencies
type Dependencies struct {
	Config *config.Config
	Logger *slog.Logger

	// Optional infrastructure, nil when disabled
	DB      *db.DB
	Metrics *metrics.Metrics

	// Domain
	Sessions    *chat.Registry
	Extractor   *analysis.Extractor
	Processor   *document.Processor
	SearchIndex *document.SearchIndex
	Charts      *charts.Engine
	Assistant   *assistant.Client
	ChatService *chat.Service
	ArchiveRepo *archive.Repository
	FileStorage storage.Storage

	// Surface
	ChatHandler *chathandler.ChatHandler
	Scheduler   *cron.Scheduler
}

// InitDependencies initializes all application dependencies
func InitDependencies(cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	if err := deps.initInfrastructure(); err != nil {
		return nil, fmt.Errorf("failed to init infrastructure: %w", err)
	}

	if err := deps.initServices(); err != nil {
		return nil, fmt.Errorf("failed to init services: %w", err)
	}

	if err := deps.initHandlers(); err != nil {
		return nil, fmt.Errorf("failed to init handlers: %w", err)
	}

	logger.Info("all dependencies initialized successfully")

	return deps, nil
}

// initInfrastructure sets up metrics and the optional archive database
func (d *Dependencies) initInfrastructure() error {
	if d.Config.Observability.MetricsEnabled {
		d.Metrics = metrics.New()
	}

	if !d.Config.Archive.Enabled {
		d.Logger.Info("archive database disabled, running in-memory only")
		return nil
	}

	database, err := db.New(db.Config{
		DSN:             d.Config.Archive.DSN(),
		MaxConns:        25,
		MinConns:        5,
		MaxConnLifetime: 5 * time.Minute,
		MaxConnIdleTime: 10 * time.Minute,
	}, d.Logger)
	if err != nil {
		return err
	}
	d.DB = database

	if err := d.DB.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	d.ArchiveRepo = archive.NewRepository(d.DB.Pool)
	d.Logger.Info("database connected and migrations completed successfully")
	return nil
}

// initServices initializes the document pipeline and the chat service
func (d *Dependencies) initServices() error {
	d.Sessions = chat.NewRegistry()
	d.Extractor = analysis.NewExtractor().WithTaxRate(d.Config.Analysis.TaxRate)
	d.Processor = document.NewProcessor(d.Extractor, d.Logger).WithMetrics(d.Metrics)
	d.Charts = charts.NewEngine()

	index, err := document.NewSearchIndex()
	if err != nil {
		return fmt.Errorf("failed to init search index: %w", err)
	}
	d.SearchIndex = index

	d.ChatService = chat.NewService(d.Extractor, d.Logger).WithMetrics(d.Metrics)
	if d.ArchiveRepo != nil {
		d.ChatService = d.ChatService.WithArchive(d.ArchiveRepo)
	}
	if d.Config.Upstream.HasUpstream() {
		d.Assistant = assistant.NewClient(d.Config.Upstream, d.Logger)
		d.ChatService = d.ChatService.WithUpstream(d.Assistant)
		d.Logger.Info("upstream assistant enabled", slog.String("model", d.Config.Upstream.Model))
	} else {
		d.Logger.Info("no upstream api key, answering every question locally")
	}

	fileStorage, err := storage.New(&storage.Config{LocalPath: d.Config.Server.UploadDir})
	if err != nil {
		return fmt.Errorf("failed to init file storage: %w", err)
	}
	d.FileStorage = fileStorage

	d.Scheduler = cron.NewScheduler(d.Sessions, d.Config.Session.TTL, d.Logger)

	d.Logger.Info("services initialized")
	return nil
}

// initHandlers initializes the HTTP surface
func (d *Dependencies) initHandlers() error {
	d.ChatHandler = chathandler.NewChatHandler(
		d.Sessions,
		d.ChatService,
		d.Processor,
		d.SearchIndex,
		d.Charts,
		d.Logger,
		d.Config.Server.MaxUploadBytes,
	).WithMetrics(d.Metrics).WithStorage(d.FileStorage)

	if d.ArchiveRepo != nil {
		d.ChatHandler = d.ChatHandler.WithArchive(d.ArchiveRepo)
	}

	d.Logger.Info("handlers initialized")
	return nil
}

// Router assembles the mux with the middleware stack applied.
func (d *Dependencies) Router() http.Handler {
	stack := []chathandler.Middleware{
		chathandler.RequestID(),
		chathandler.AccessLog(d.Logger),
		chathandler.RateLimit(float64(d.Config.Server.RateLimitPerSecond), d.Config.Server.RateLimitBurst),
	}
	if d.Metrics != nil {
		stack = append(stack, chathandler.Observe(d.Metrics))
	}
	return chathandler.Chain(d.ChatHandler.Routes(), stack...)
}

// Cleanup closes all resources
func (d *Dependencies) Cleanup() {
	if d.SearchIndex != nil {
		if err := d.SearchIndex.Close(); err != nil {
			d.Logger.Warn("failed to close search index", slog.Any("error", err))
		}
	}
	if d.DB != nil {
		d.DB.Close()
	}
	d.Logger.Info("cleanup completed")
}
