package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/FACorreiaa/expense-assistant/internal/domain/assistant"
	"github.com/FACorreiaa/expense-assistant/internal/domain/expenses"
	"github.com/FACorreiaa/expense-assistant/internal/domain/extraction"
	"github.com/FACorreiaa/expense-assistant/internal/domain/report"
	"github.com/FACorreiaa/expense-assistant/internal/domain/search"
	"github.com/FACorreiaa/expense-assistant/internal/domain/snapshot"
	"github.com/FACorreiaa/expense-assistant/internal/domain/taxonomy"
	"github.com/FACorreiaa/expense-assistant/internal/domain/voice"
	"github.com/FACorreiaa/expense-assistant/pkg/config"
	"github.com/FACorreiaa/expense-assistant/pkg/cron"
	"github.com/FACorreiaa/expense-assistant/pkg/db"
	"github.com/FACorreiaa/expense-assistant/pkg/storage"
)

// Dependencies holds all application dependencies
type Dependencies struct {
	Config   *config.Config
	DB       *db.DB
	Logger   *slog.Logger
	Registry *prometheus.Registry

	// Repositories
	TaxonomyRepo *taxonomy.Repository
	ExpenseStore *expenses.Store
	SnapshotRepo *snapshot.Repository

	// Services
	TaxonomyService *taxonomy.Service
	SnapshotService *snapshot.Service
	SearchIndex     *search.Index
	LLMClient       *assistant.Client
	Orchestrator    *assistant.Orchestrator
	Conversations   *assistant.ConversationLog
	VoiceProcessor  *voice.TranscriptProcessor
	ReportService   *report.Service
	FileStorage     storage.Storage
	Materializer    *expenses.Materializer
	Scheduler       *cron.Scheduler
}

// InitDependencies initializes all application dependencies
func InitDependencies(cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config:   cfg,
		Logger:   logger,
		Registry: prometheus.NewRegistry(),
	}

	if err := deps.initDatabase(); err != nil {
		return nil, fmt.Errorf("failed to init database: %w", err)
	}
	if err := deps.initRepositories(); err != nil {
		return nil, fmt.Errorf("failed to init repositories: %w", err)
	}
	if err := deps.initServices(); err != nil {
		return nil, fmt.Errorf("failed to init services: %w", err)
	}

	logger.Info("all dependencies initialized successfully")
	return deps, nil
}

// initDatabase initializes the database connection and runs migrations
func (d *Dependencies) initDatabase() error {
	database, err := db.New(db.Config{
		DSN:             d.Config.Database.DSN(),
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

	d.Logger.Info("database connected and migrations completed successfully")
	return nil
}

func (d *Dependencies) initRepositories() error {
	d.TaxonomyRepo = taxonomy.NewRepository(d.DB.Pool)
	d.ExpenseStore = expenses.NewStore(d.DB.Pool)
	d.SnapshotRepo = snapshot.NewRepository(d.DB.Pool)

	d.Logger.Info("repositories initialized")
	return nil
}

func (d *Dependencies) initServices() error {
	var err error

	d.TaxonomyService = taxonomy.NewService(d.TaxonomyRepo, d.Logger)
	d.SnapshotService = snapshot.NewService(d.ExpenseStore, d.SnapshotRepo)

	if d.SearchIndex, err = search.NewIndex(""); err != nil {
		return fmt.Errorf("failed to init search index: %w", err)
	}

	d.LLMClient = assistant.NewClient(assistant.ClientConfig{
		APIURL:            d.Config.Assistant.APIURL,
		APIKey:            d.Config.Assistant.APIKey,
		Model:             d.Config.Assistant.Model,
		MaxTokens:         d.Config.Assistant.MaxTokens,
		DevProxy:          d.Config.Assistant.DevProxy,
		RequestsPerMinute: d.Config.Assistant.RequestsPerMinute,
	})

	d.Orchestrator = assistant.NewOrchestrator(
		extraction.NewMatcher(),
		taxonomy.NewResolver(),
		d.TaxonomyService,
		d.SnapshotService,
		d.SearchIndex,
		d.LLMClient,
		d.ExpenseStore,
		assistant.NewMetrics(d.Registry),
		d.Logger,
	)

	d.Conversations = assistant.NewConversationLog()

	d.VoiceProcessor = voice.NewTranscriptProcessor(d.TaxonomyService, d.LLMClient, d.ExpenseStore, d.Logger)

	if d.FileStorage, err = storage.New(storage.Config{BasePath: d.Config.Reports.StoragePath}); err != nil {
		return fmt.Errorf("failed to init report storage: %w", err)
	}
	d.ReportService = report.NewService(d.ExpenseStore, d.FileStorage, d.Logger)

	d.Materializer = expenses.NewMaterializer(d.ExpenseStore, d.ExpenseStore, d.Logger)
	d.Scheduler = cron.NewScheduler(d.Materializer, d.Logger)

	d.Logger.Info("services initialized")
	return nil
}

// Close releases held resources.
func (d *Dependencies) Close() {
	if d.SearchIndex != nil {
		if err := d.SearchIndex.Close(); err != nil {
			d.Logger.Warn("closing search index failed", "error", err)
		}
	}
	if d.DB != nil {
		d.DB.Close()
	}
}
