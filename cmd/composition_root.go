package cmd

import (
	"log/slog"

	"fulfillment/internal/adapters/out/postgres"
	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/application/usecases/queries"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/core/ports"

	"gorm.io/gorm"
)

// Adapters holds the outbound adapters built by main.
type Adapters struct {
	Rates       ports.RateBook
	Templates   ports.TemplateCatalog
	Renderer    ports.LabelRenderer
	Documents   ports.DocumentStore
	Marketplace ports.MarketplaceClient
	Dedup       ports.DedupCache
	Events      ports.EventPublisher
}

type CompositionRoot struct {
	config     Config
	gormDB     *gorm.DB
	uowFactory postgres.GormUnitOfWorkFactory
	adapters   Adapters
	rnd        kernel.Rand
	resolver   services.OrderIDResolver
	logger     *slog.Logger

	trigger *commands.TriggerConfirmationCommandHandler
}

func NewCompositionRoot(config Config, gormDB *gorm.DB, adapters Adapters, logger *slog.Logger) (*CompositionRoot, error) {
	resolver, err := services.NewOrderIDResolver(config.OrderIDPattern)
	if err != nil {
		return nil, err
	}

	return &CompositionRoot{
		config:     config,
		gormDB:     gormDB,
		uowFactory: *postgres.NewGormUnitOfWorkFactory(gormDB),
		adapters:   adapters,
		rnd:        kernel.NewRand(),
		resolver:   resolver,
		logger:     logger,
	}, nil
}

func (c *CompositionRoot) uow() commands.UoWFactory {
	return FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) settingsUoW() commands.SettingsUoWFactory {
	return FuncSettingsUoWFactory(func() commands.SettingsUoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) incidentUoW() commands.IncidentUoWFactory {
	return FuncIncidentUoWFactory(func() commands.IncidentUoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) CreateIncidentRecorder() commands.IncidentRecorder {
	return commands.NewIncidentRecorder(c.incidentUoW(), c.logger)
}

func (c *CompositionRoot) CreateEnqueueBatchCommandHandler() commands.EnqueueBatchCommandHandler {
	return commands.NewEnqueueBatchCommandHandler(c.uow(), c.adapters.Rates, c.adapters.Templates)
}

func (c *CompositionRoot) CreateClaimBatchCommandHandler() commands.ClaimBatchCommandHandler {
	return commands.NewClaimBatchCommandHandler(c.uow(), c.rnd)
}

func (c *CompositionRoot) CreateGenerateLabelsCommandHandler() commands.GenerateLabelsCommandHandler {
	return commands.NewGenerateLabelsCommandHandler(
		c.uow(),
		c.adapters.Renderer,
		c.adapters.Templates,
		c.adapters.Rates,
		c.adapters.Documents,
		c.rnd,
		commands.DefaultRenderPolicy,
		c.logger,
	)
}

func (c *CompositionRoot) CreateFinalizeBatchCommandHandler() commands.FinalizeBatchCommandHandler {
	return commands.NewFinalizeBatchCommandHandler(c.uow(), c.adapters.Events, c.logger)
}

func (c *CompositionRoot) CreateProcessBatchCommandHandler() commands.ProcessBatchCommandHandler {
	return commands.NewProcessBatchCommandHandler(
		c.CreateClaimBatchCommandHandler(),
		c.CreateGenerateLabelsCommandHandler(),
		c.CreateFinalizeBatchCommandHandler(),
		c.CreateIncidentRecorder(),
	)
}

func (c *CompositionRoot) CreateRecoverInterruptedBatchesCommandHandler() commands.RecoverInterruptedBatchesCommandHandler {
	return commands.NewRecoverInterruptedBatchesCommandHandler(c.uow(), c.CreateIncidentRecorder())
}

func (c *CompositionRoot) CreateRecordHeartbeatCommandHandler() commands.RecordHeartbeatCommandHandler {
	return commands.NewRecordHeartbeatCommandHandler(c.settingsUoW())
}

func (c *CompositionRoot) CreateSetWorkerPausedCommandHandler() commands.SetWorkerPausedCommandHandler {
	return commands.NewSetWorkerPausedCommandHandler(c.settingsUoW(), c.logger)
}

func (c *CompositionRoot) CreatePurgeExpiredBatchesCommandHandler() commands.PurgeExpiredBatchesCommandHandler {
	return commands.NewPurgeExpiredBatchesCommandHandler(c.uow(), c.adapters.Documents, c.CreateIncidentRecorder())
}

func (c *CompositionRoot) CreateConfirmShipmentsCommandHandler() commands.ConfirmShipmentsCommandHandler {
	return commands.NewConfirmShipmentsCommandHandler(
		c.uow(),
		c.adapters.Marketplace,
		c.adapters.Dedup,
		c.resolver,
		c.config.FailFastLimit,
		commands.DefaultPacing,
		c.rnd,
		c.adapters.Events,
		c.CreateIncidentRecorder(),
		c.logger,
	)
}

// TriggerConfirmationCommandHandler is shared: it owns the registry of
// running confirmations that the worker status query reads.
func (c *CompositionRoot) TriggerConfirmationCommandHandler() *commands.TriggerConfirmationCommandHandler {
	if c.trigger == nil {
		c.trigger = commands.NewTriggerConfirmationCommandHandler(
			c.uow(),
			c.CreateConfirmShipmentsCommandHandler(),
			c.CreateIncidentRecorder(),
			c.logger,
		)
	}
	return c.trigger
}

func (c *CompositionRoot) CreateCancelConfirmationCommandHandler() commands.CancelConfirmationCommandHandler {
	return commands.NewCancelConfirmationCommandHandler(c.uow())
}

func (c *CompositionRoot) CreateGetBatchStatusQueryHandler() queries.GetBatchStatusQueryHandler {
	return queries.NewGetBatchStatusQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateListBatchResultsQueryHandler() queries.ListBatchResultsQueryHandler {
	return queries.NewListBatchResultsQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateExportBatchResultsQueryHandler() queries.ExportBatchResultsQueryHandler {
	return queries.NewExportBatchResultsQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetWorkerStatusQueryHandler() queries.GetWorkerStatusQueryHandler {
	return queries.NewGetWorkerStatusQueryHandler(
		c.gormDB,
		c.TriggerConfirmationCommandHandler(),
		c.config.HeartbeatStaleAfter,
	)
}

type FuncUoWFactory func() commands.UoW

func (f FuncUoWFactory) Create() commands.UoW {
	return f()
}

type FuncSettingsUoWFactory func() commands.SettingsUoW

func (f FuncSettingsUoWFactory) Create() commands.SettingsUoW {
	return f()
}

type FuncIncidentUoWFactory func() commands.IncidentUoW

func (f FuncIncidentUoWFactory) Create() commands.IncidentUoW {
	return f()
}
