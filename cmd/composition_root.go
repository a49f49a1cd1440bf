package cmd

import (
	"log/slog"

	httpin "fulfillment/internal/adapters/in/http"
	"fulfillment/internal/adapters/in/ws"
	"fulfillment/internal/adapters/out/backend"
	"fulfillment/internal/adapters/out/rulesfile"
	"fulfillment/internal/core/application/catalog"
	"fulfillment/internal/core/application/queue"
	"fulfillment/internal/core/application/session"
	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/application/usecases/queries"
	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/jobs"
)

// CompositionRoot owns every long-lived component and builds the handlers.
type CompositionRoot struct {
	configs Config
	logger  *slog.Logger

	backend  *backend.Client
	catalog  *catalog.Store
	hub      *ws.Hub
	registry *session.Registry
	updates  *queue.UpdateQueue
	flights  *commands.SingleFlight
}

// NewCompositionRoot builds every long-lived component from configs.
//
// Returns an error if the backend URL is invalid or the surcharge rule file
// cannot be loaded.
func NewCompositionRoot(configs Config, logger *slog.Logger) (*CompositionRoot, error) {
	client, err := backend.NewClient(
		configs.BackendBaseURL,
		configs.BackendTimeout,
		backend.NewStaticTokenSource(configs.BackendToken, logger),
		logger,
	)
	if err != nil {
		return nil, err
	}

	table, err := rulesfile.Load(configs.SurchargeRulesFile)
	if err != nil {
		return nil, err
	}

	store := catalog.NewStore(client, logger)
	pricer := services.NewPricingEngine(store, table)
	hub := ws.NewHub(logger)
	registry := session.NewRegistry(client, pricer, logger, session.WithPublisher(hub))

	return &CompositionRoot{
		configs:  configs,
		logger:   logger,
		backend:  client,
		catalog:  store,
		hub:      hub,
		registry: registry,
		updates:  queue.NewUpdateQueue(registry, client, configs.UpdateQueueCapacity, logger),
		flights:  commands.NewSingleFlight(),
	}, nil
}

// Hub returns the websocket hub; its Run loop is started by the caller.
func (c *CompositionRoot) Hub() *ws.Hub {
	return c.hub
}

// UpdateQueue returns the shared image update queue.
func (c *CompositionRoot) UpdateQueue() *queue.UpdateQueue {
	return c.updates
}

// CreateJobManager creates the manager of the scheduled jobs.
func (c *CompositionRoot) CreateJobManager() *jobs.JobManager {
	return jobs.NewJobManager(jobs.Schedules{
		CatalogRefresh:  c.configs.CatalogRefreshSchedule,
		SessionEviction: c.configs.SessionEvictionSchedule,
	}, c.catalog, c.registry, c.configs.SessionIdleTTL, c.logger)
}

func (c *CompositionRoot) CreateOpenSessionCommandHandler() commands.OpenSessionCommandHandler {
	return commands.NewOpenSessionCommandHandler(c.registry)
}

func (c *CompositionRoot) CreateAddDetailCommandHandler() commands.AddDetailCommandHandler {
	return commands.NewAddDetailCommandHandler(c.registry)
}

func (c *CompositionRoot) CreateUpdateDetailCommandHandler() commands.UpdateDetailCommandHandler {
	return commands.NewUpdateDetailCommandHandler(c.registry)
}

func (c *CompositionRoot) CreateRemoveDetailCommandHandler() commands.RemoveDetailCommandHandler {
	return commands.NewRemoveDetailCommandHandler(c.registry)
}

func (c *CompositionRoot) CreateUpdateOrderMetaCommandHandler() commands.UpdateOrderMetaCommandHandler {
	return commands.NewUpdateOrderMetaCommandHandler(c.registry)
}

func (c *CompositionRoot) CreateSubmitOrderCommandHandler() commands.SubmitOrderCommandHandler {
	return commands.NewSubmitOrderCommandHandler(c.registry, c.backend, c.flights, c.logger)
}

func (c *CompositionRoot) CreateAdvanceStatusCommandHandler() commands.AdvanceStatusCommandHandler {
	return commands.NewAdvanceStatusCommandHandler(c.registry, c.backend, c.flights, c.logger)
}

func (c *CompositionRoot) CreateAppendImageCommandHandler() commands.AppendImageCommandHandler {
	return commands.NewAppendImageCommandHandler(c.updates)
}

func (c *CompositionRoot) CreateCreatePaymentLinkCommandHandler() commands.CreatePaymentLinkCommandHandler {
	return commands.NewCreatePaymentLinkCommandHandler(c.backend, c.logger)
}

func (c *CompositionRoot) CreateGetOrderViewQueryHandler() queries.GetOrderViewQueryHandler {
	return queries.NewGetOrderViewQueryHandler(c.registry)
}

func (c *CompositionRoot) CreateGetActiveOrdersQueryHandler() queries.GetActiveOrdersQueryHandler {
	return queries.NewGetActiveOrdersQueryHandler(c.backend)
}

// CreateHTTPServer creates the REST surface with every handler wired.
func (c *CompositionRoot) CreateHTTPServer() *httpin.Server {
	return httpin.NewServer(httpin.Handlers{
		OpenSession:       c.CreateOpenSessionCommandHandler(),
		AddDetail:         c.CreateAddDetailCommandHandler(),
		UpdateDetail:      c.CreateUpdateDetailCommandHandler(),
		RemoveDetail:      c.CreateRemoveDetailCommandHandler(),
		UpdateOrderMeta:   c.CreateUpdateOrderMetaCommandHandler(),
		SubmitOrder:       c.CreateSubmitOrderCommandHandler(),
		AdvanceStatus:     c.CreateAdvanceStatusCommandHandler(),
		AppendImage:       c.CreateAppendImageCommandHandler(),
		CreatePaymentLink: c.CreateCreatePaymentLinkCommandHandler(),
		GetOrderView:      c.CreateGetOrderViewQueryHandler(),
		GetActiveOrders:   c.CreateGetActiveOrdersQueryHandler(),
	}, c.hub, c.logger)
}
