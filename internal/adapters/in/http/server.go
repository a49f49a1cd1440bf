// Package http is the REST surface used by staff clients.
package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/application/usecases/queries"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
)

// EventStream upgrades a request into a live event subscription for one order.
type EventStream interface {
	Serve(w http.ResponseWriter, r *http.Request, code kernel.OrderCode)
}

// Handlers are the use cases exposed over HTTP.
type Handlers struct {
	OpenSession       commands.OpenSessionCommandHandler
	AddDetail         commands.AddDetailCommandHandler
	UpdateDetail      commands.UpdateDetailCommandHandler
	RemoveDetail      commands.RemoveDetailCommandHandler
	UpdateOrderMeta   commands.UpdateOrderMetaCommandHandler
	SubmitOrder       commands.SubmitOrderCommandHandler
	AdvanceStatus     commands.AdvanceStatusCommandHandler
	AppendImage       commands.AppendImageCommandHandler
	CreatePaymentLink commands.CreatePaymentLinkCommandHandler

	GetOrderView    queries.GetOrderViewQueryHandler
	GetActiveOrders queries.GetActiveOrdersQueryHandler
}

// Server coordinates between HTTP handlers and application use cases.
type Server struct {
	handlers Handlers
	events   EventStream
	logger   *slog.Logger
}

// NewServer creates the REST surface over handlers. events serves the
// websocket upgrade of the events route.
func NewServer(handlers Handlers, events EventStream, logger *slog.Logger) *Server {
	return &Server{
		handlers: handlers,
		events:   events,
		logger:   logger.With("component", "http_server"),
	}
}

// NewEcho returns an echo instance with recovery and request logging installed.
func NewEcho(logger *slog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []any{"method", v.Method, "uri", v.URI, "status", v.Status, "latency", v.Latency}
			if v.Error != nil {
				logger.WarnContext(c.Request().Context(), "request", append(attrs, "error", v.Error)...)
				return nil
			}
			logger.InfoContext(c.Request().Context(), "request", attrs...)
			return nil
		},
	}))
	return e
}

// Register mounts every route on e.
func (s *Server) Register(e *echo.Echo) {
	e.GET("/health", s.Health)

	v1 := e.Group("/api/v1")
	v1.POST("/orders/:code/session", s.OpenSession)
	v1.GET("/orders/:code", s.GetOrder)
	v1.PATCH("/orders/:code", s.UpdateOrderMeta)
	v1.POST("/orders/:code/details", s.AddDetail)
	v1.PATCH("/orders/:code/details/:id", s.UpdateDetail)
	v1.DELETE("/orders/:code/details/:id", s.RemoveDetail)
	v1.POST("/orders/:code/submit", s.SubmitOrder)
	v1.POST("/orders/:code/advance", s.AdvanceStatus)
	v1.POST("/orders/:code/images", s.AppendImage)
	v1.POST("/orders/:code/payment-link", s.CreatePaymentLink)
	v1.GET("/orders/:code/events", s.Events)
	v1.GET("/employees/:code/active-orders", s.GetActiveOrders)
}

// Health handles GET /health.
func (s *Server) Health(c echo.Context) error {
	return c.String(http.StatusOK, "Healthy")
}

func detailIDParam(c echo.Context) (kernel.DetailID, error) {
	raw := c.Param("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, errs.NewValueIsInvalidErrorWithCause("detailId", err)
	}
	return kernel.DetailID(id), nil
}

// view renders the current order view with the given status.
func (s *Server) view(c echo.Context, status int) error {
	view, err := s.orderView(c)
	if err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(status, view)
}

func (s *Server) orderView(c echo.Context) (OrderViewResponse, error) {
	query, err := queries.NewGetOrderViewQuery(c.Param("code"))
	if err != nil {
		return OrderViewResponse{}, err
	}
	view, err := s.handlers.GetOrderView.Handle(c.Request().Context(), query)
	if err != nil {
		return OrderViewResponse{}, err
	}
	return toOrderView(view), nil
}

// OpenSession handles POST /api/v1/orders/{code}/session.
func (s *Server) OpenSession(c echo.Context) error {
	cmd, err := commands.NewOpenSessionCommand(c.Param("code"))
	if err != nil {
		return s.writeError(c, err)
	}
	if err := s.handlers.OpenSession.Handle(c.Request().Context(), cmd); err != nil {
		return s.writeError(c, err)
	}
	return s.view(c, http.StatusOK)
}

// GetOrder handles GET /api/v1/orders/{code}.
func (s *Server) GetOrder(c echo.Context) error {
	return s.view(c, http.StatusOK)
}

// UpdateOrderMeta handles PATCH /api/v1/orders/{code}.
func (s *Server) UpdateOrderMeta(c echo.Context) error {
	var req UpdateOrderMetaRequest
	if err := c.Bind(&req); err != nil {
		return s.writeError(c, errs.NewValueIsInvalidErrorWithCause("body", err))
	}
	cmd, err := commands.NewUpdateOrderMetaCommand(c.Param("code"), req.toPatch())
	if err != nil {
		return s.writeError(c, err)
	}
	if err := s.handlers.UpdateOrderMeta.Handle(c.Request().Context(), cmd); err != nil {
		return s.writeError(c, err)
	}
	return s.view(c, http.StatusOK)
}

// AddDetail handles POST /api/v1/orders/{code}/details.
func (s *Server) AddDetail(c echo.Context) error {
	cmd, err := commands.NewAddDetailCommand(c.Param("code"))
	if err != nil {
		return s.writeError(c, err)
	}
	id, err := s.handlers.AddDetail.Handle(c.Request().Context(), cmd)
	if err != nil {
		return s.writeError(c, err)
	}
	view, err := s.orderView(c)
	if err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(http.StatusCreated, AddDetailResponse{DetailID: int64(id), View: view})
}

// UpdateDetail handles PATCH /api/v1/orders/{code}/details/{id}.
func (s *Server) UpdateDetail(c echo.Context) error {
	id, err := detailIDParam(c)
	if err != nil {
		return s.writeError(c, err)
	}
	var req UpdateDetailRequest
	if err := c.Bind(&req); err != nil {
		return s.writeError(c, errs.NewValueIsInvalidErrorWithCause("body", err))
	}
	cmd, err := commands.NewUpdateDetailCommand(c.Param("code"), id, req.toPatch())
	if err != nil {
		return s.writeError(c, err)
	}
	if err := s.handlers.UpdateDetail.Handle(c.Request().Context(), cmd); err != nil {
		return s.writeError(c, err)
	}
	return s.view(c, http.StatusOK)
}

// RemoveDetail handles DELETE /api/v1/orders/{code}/details/{id}.
func (s *Server) RemoveDetail(c echo.Context) error {
	id, err := detailIDParam(c)
	if err != nil {
		return s.writeError(c, err)
	}
	cmd, err := commands.NewRemoveDetailCommand(c.Param("code"), id)
	if err != nil {
		return s.writeError(c, err)
	}
	if err := s.handlers.RemoveDetail.Handle(c.Request().Context(), cmd); err != nil {
		return s.writeError(c, err)
	}
	return s.view(c, http.StatusOK)
}

// SubmitOrder handles POST /api/v1/orders/{code}/submit.
func (s *Server) SubmitOrder(c echo.Context) error {
	cmd, err := commands.NewSubmitOrderCommand(c.Param("code"))
	if err != nil {
		return s.writeError(c, err)
	}
	if err := s.handlers.SubmitOrder.Handle(c.Request().Context(), cmd); err != nil {
		return s.writeError(c, err)
	}
	return s.view(c, http.StatusOK)
}

// AdvanceStatus handles POST /api/v1/orders/{code}/advance.
func (s *Server) AdvanceStatus(c echo.Context) error {
	cmd, err := commands.NewAdvanceStatusCommand(c.Param("code"))
	if err != nil {
		return s.writeError(c, err)
	}
	if _, err := s.handlers.AdvanceStatus.Handle(c.Request().Context(), cmd); err != nil {
		return s.writeError(c, err)
	}
	return s.view(c, http.StatusOK)
}

// AppendImage handles POST /api/v1/orders/{code}/images. The request waits
// for the queued job; a failed job answers with the images clients should
// keep showing until the next refresh.
func (s *Server) AppendImage(c echo.Context) error {
	var req AppendImageRequest
	if err := c.Bind(&req); err != nil {
		return s.writeError(c, errs.NewValueIsInvalidErrorWithCause("body", err))
	}
	cmd, err := commands.NewAppendImageCommand(c.Param("code"), req.URL)
	if err != nil {
		return s.writeError(c, err)
	}
	result, err := s.handlers.AppendImage.Handle(c.Request().Context(), cmd)
	if err != nil {
		return s.writeError(c, err)
	}

	images := result.Images()
	if images == nil {
		images = []string{}
	}
	response := AppendImageResponse{
		JobID:     result.JobID().String(),
		Persisted: result.IsPersisted(),
		Images:    images,
	}
	if !result.IsPersisted() {
		response.Error = result.Err().Error()
		return c.JSON(statusOf(result.Err()), response)
	}
	return c.JSON(http.StatusOK, response)
}

// CreatePaymentLink handles POST /api/v1/orders/{code}/payment-link.
func (s *Server) CreatePaymentLink(c echo.Context) error {
	cmd, err := commands.NewCreatePaymentLinkCommand(c.Param("code"))
	if err != nil {
		return s.writeError(c, err)
	}
	link, err := s.handlers.CreatePaymentLink.Handle(c.Request().Context(), cmd)
	if err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(http.StatusOK, PaymentLinkResponse{URL: link})
}

// GetActiveOrders handles GET /api/v1/employees/{code}/active-orders.
func (s *Server) GetActiveOrders(c echo.Context) error {
	query, err := queries.NewGetActiveOrdersQuery(c.Param("code"))
	if err != nil {
		return s.writeError(c, err)
	}
	response, err := s.handlers.GetActiveOrders.Handle(c.Request().Context(), query)
	if err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(http.StatusOK, ActiveOrdersResponse{
		Planned:         response.Planned,
		Processing:      response.Processing,
		PlannedCount:    response.PlannedCount,
		ProcessingCount: response.ProcessingCount,
	})
}

// Events handles GET /api/v1/orders/{code}/events as a websocket upgrade.
func (s *Server) Events(c echo.Context) error {
	code, err := kernel.NewOrderCode(c.Param("code"))
	if err != nil {
		return s.writeError(c, err)
	}
	s.events.Serve(c.Response(), c.Request(), code)
	return nil
}
