package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fulfillment/cmd"
	httpin "fulfillment/internal/adapters/in/http"
	"fulfillment/internal/adapters/out/artifacts"
	"fulfillment/internal/adapters/out/catalog"
	"fulfillment/internal/adapters/out/dedup"
	"fulfillment/internal/adapters/out/kafka"
	"fulfillment/internal/adapters/out/marketplace"
	"fulfillment/internal/adapters/out/postgres"
	"fulfillment/internal/adapters/out/renderer"
	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/jobs"

	"github.com/joho/godotenv"
	"github.com/labstack/gommon/log"
	"gorm.io/gorm"
)

func main() {
	configs := getConfigs()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db := openDatabase(configs)

	adapters, closers := buildAdapters(configs, logger)
	defer closeAll(closers, logger)

	app, err := cmd.NewCompositionRoot(configs, db, adapters, logger)
	if err != nil {
		log.Fatalf("Error building application: %v", err)
	}

	recoverInterrupted(ctx, app, logger)

	trigger := app.TriggerConfirmationCommandHandler()
	jobManager := startJobs(ctx, app, configs, logger)

	server := httpin.NewServer(
		app.CreateEnqueueBatchCommandHandler(),
		trigger,
		app.CreateCancelConfirmationCommandHandler(),
		app.CreateSetWorkerPausedCommandHandler(),
		app.CreateGetBatchStatusQueryHandler(),
		app.CreateListBatchResultsQueryHandler(),
		app.CreateExportBatchResultsQueryHandler(),
		app.CreateGetWorkerStatusQueryHandler(),
		adapters.Documents,
		logger,
	)
	e := httpin.NewEcho(server)

	go func() {
		if err := e.Start(fmt.Sprintf("0.0.0.0:%s", configs.HTTPPort)); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Error starting web server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("web server shutdown failed", "error", err)
	}

	jobManager.StopAll()
	trigger.Wait()
}

func getConfigs() cmd.Config {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Fatalf("Error loading .env file: %v", err)
	}

	config, err := cmd.LoadConfig(os.Getenv)
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	return config
}

func openDatabase(configs cmd.Config) *gorm.DB {
	db, err := postgres.Open(configs.DBDriver, configs.DSN())
	if err != nil {
		log.Fatalf("Error connecting to database: %v", err)
	}
	if err := postgres.Migrate(db); err != nil {
		log.Fatalf("Error migrating database: %v", err)
	}
	return db
}

func buildAdapters(configs cmd.Config, logger *slog.Logger) (cmd.Adapters, []io.Closer) {
	var closers []io.Closer

	defaultPrice, err := kernel.NewUnitPrice(configs.DefaultUnitPriceCents)
	if err != nil {
		log.Fatalf("Invalid default unit price: %v", err)
	}
	loaded, err := catalog.LoadRates(configs.RatesConfig, defaultPrice)
	if err != nil {
		log.Fatalf("Error loading rates: %v", err)
	}
	templates, err := catalog.LoadTemplates(configs.TemplatesDir, loaded.TemplateFamilies)
	if err != nil {
		log.Fatalf("Error loading templates: %v", err)
	}

	cache, err := dedup.Open(configs.DedupCacheDir)
	if err != nil {
		log.Fatalf("Error opening dedup cache: %v", err)
	}
	closers = append(closers, cache)

	documents, err := artifacts.NewFileStore(configs.DocumentsDir)
	if err != nil {
		log.Fatalf("Error opening document store: %v", err)
	}

	labelRenderer, err := renderer.NewClient(configs.RendererURL, configs.RendererTimeout)
	if err != nil {
		log.Fatalf("Error creating renderer client: %v", err)
	}

	marketplaceClient, err := marketplace.NewClient(configs.MarketplaceURL, configs.MarketplaceTimeout, kernel.NewRand())
	if err != nil {
		log.Fatalf("Error creating marketplace client: %v", err)
	}

	var events ports.EventPublisher = kafka.NoopPublisher{}
	if configs.KafkaHost != "" {
		publisher, err := kafka.NewPublisher(configs.KafkaHost, configs.KafkaBatchEventsTopic)
		if err != nil {
			log.Fatalf("Error creating kafka publisher: %v", err)
		}
		closers = append(closers, publisher)
		events = publisher
	} else {
		logger.Info("KAFKA_HOST is not set; batch events are not published")
	}

	return cmd.Adapters{
		Rates:       loaded.Rates,
		Templates:   templates,
		Renderer:    labelRenderer,
		Documents:   documents,
		Marketplace: marketplaceClient,
		Dedup:       cache,
		Events:      events,
	}, closers
}

func recoverInterrupted(ctx context.Context, app *cmd.CompositionRoot, logger *slog.Logger) {
	report, err := app.CreateRecoverInterruptedBatchesCommandHandler().Handle(ctx, commands.NewRecoverInterruptedBatchesCommand())
	if err != nil {
		log.Fatalf("Error recovering interrupted batches: %v", err)
	}
	if len(report.Failed) > 0 || len(report.ConfirmFailed) > 0 {
		logger.Warn("recovered interrupted batches",
			"failed", len(report.Failed),
			"confirm_failed", len(report.ConfirmFailed))
	}
}

func startJobs(ctx context.Context, app *cmd.CompositionRoot, configs cmd.Config, logger *slog.Logger) *jobs.JobManager {
	pool, err := jobs.NewWorkerPool(
		app.CreateProcessBatchCommandHandler(),
		configs.Instance(),
		configs.WorkerCount,
		configs.SingleItemWorkers,
		configs.WorkerPollInterval,
		logger,
	)
	if err != nil {
		log.Fatalf("Error creating worker pool: %v", err)
	}

	manager, err := jobs.NewJobManager(
		pool,
		app.CreateRecordHeartbeatCommandHandler(),
		app.CreatePurgeExpiredBatchesCommandHandler(),
		jobs.Schedules{
			Heartbeat:        configs.HeartbeatSchedule,
			Retention:        configs.RetentionSchedule,
			WorkerStaleAfter: configs.HeartbeatStaleAfter,
			RetentionPeriod:  configs.RetentionPeriod(),
		},
		logger,
	)
	if err != nil {
		log.Fatalf("Error creating job manager: %v", err)
	}

	if err := manager.StartAll(ctx); err != nil {
		log.Fatalf("Error starting jobs: %v", err)
	}
	return manager
}

func closeAll(closers []io.Closer, logger *slog.Logger) {
	for _, c := range closers {
		if err := c.Close(); err != nil {
			logger.Error("close failed", "error", err)
		}
	}
}
