package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	healthgo "github.com/hellofresh/health-go/v5"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	slogecho "github.com/samber/slog-echo"
	"github.com/taldoflemis/pizzeria/pacchetto"
	"github.com/taldoflemis/pizzeria/pacchetto/pizza"
	"github.com/taldoflemis/pizzeria/pacchetto/timeofday"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("paddock-gateway")

const liveOrdersBuffer = 16

type OrderPubSubber interface {
	PubOrder(ctx context.Context, order pacchetto.Order) error
	SubLiveOrders(ctx context.Context, flusher http.Flusher) (<-chan pacchetto.Order, error)
	UnsubLiveOrders(ctx context.Context, flusher http.Flusher) error
}

type GoChannelOrderPubSubber struct {
	liveEventSubscribers map[http.Flusher]chan pacchetto.Order
	mu                   sync.Mutex
}

func NewGoChannelOrderPubSubber() *GoChannelOrderPubSubber {
	return &GoChannelOrderPubSubber{
		liveEventSubscribers: make(map[http.Flusher]chan pacchetto.Order),
	}
}

var _ OrderPubSubber = (*GoChannelOrderPubSubber)(nil)

// PubOrder implements OrderPubSubber. Slow subscribers miss orders instead of
// blocking the publisher.
func (g *GoChannelOrderPubSubber) PubOrder(ctx context.Context, order pacchetto.Order) error {
	ctx, span := tracer.Start(ctx, "GoChannelOrderPubSubber.PubOrder")
	defer span.End()

	slog.InfoContext(ctx, "publishing order", slog.String("order_id", order.OrderID))

	g.mu.Lock()
	defer g.mu.Unlock()

	for _, subChan := range g.liveEventSubscribers {
		select {
		case subChan <- order:
		default:
			slog.WarnContext(ctx, "live order subscriber is full, dropping order", slog.String("order_id", order.OrderID))
		}
	}

	return nil
}

// SubLiveOrders implements OrderPubSubber for SSE.
func (g *GoChannelOrderPubSubber) SubLiveOrders(ctx context.Context, flusher http.Flusher) (<-chan pacchetto.Order, error) {
	ctx, span := tracer.Start(ctx, "GoChannelOrderPubSubber.SubLiveOrders")
	defer span.End()

	slog.InfoContext(ctx, "subscribing to live orders (SSE)")

	ch := make(chan pacchetto.Order, liveOrdersBuffer)
	g.mu.Lock()
	g.liveEventSubscribers[flusher] = ch
	g.mu.Unlock()
	return ch, nil
}

// UnsubLiveOrders implements OrderPubSubber for SSE.
func (g *GoChannelOrderPubSubber) UnsubLiveOrders(ctx context.Context, flusher http.Flusher) error {
	ctx, span := tracer.Start(ctx, "GoChannelOrderPubSubber.UnsubLiveOrders")
	defer span.End()

	slog.InfoContext(ctx, "unsubscribing from live orders (SSE)")

	g.mu.Lock()
	delete(g.liveEventSubscribers, flusher)
	g.mu.Unlock()
	return nil
}

// requestValidator plugs go-playground/validator into echo's c.Validate.
type requestValidator struct {
	validate *validator.Validate
}

func (r *requestValidator) Validate(i any) error {
	return r.validate.Struct(i)
}

type MainHandler struct {
	orderPubSubber OrderPubSubber
	health         *healthgo.Health
	now            func() time.Time
}

func NewMainHandler(e *echo.Echo, settings *Settings, orderPubSubber OrderPubSubber, health *healthgo.Health) *MainHandler {
	logger := slog.Default()
	e.HideBanner = true
	e.Validator = &requestValidator{validate: pacchetto.NewValidator()}
	e.Use(slogecho.New(logger))
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: settings.HTTP.CORS.Origins,
		AllowMethods: settings.HTTP.CORS.Methods,
		AllowHeaders: settings.HTTP.CORS.Headers,
	}))
	e.Use(otelecho.Middleware("paddock-gateway",
		otelecho.WithMetricAttributeFn(func(r *http.Request) []attribute.KeyValue {
			return []attribute.KeyValue{
				attribute.String("client.ip", r.RemoteAddr),
				attribute.String("user.agent", r.UserAgent()),
			}
		}),
		otelecho.WithEchoMetricAttributeFn(func(c echo.Context) []attribute.KeyValue {
			return []attribute.KeyValue{
				attribute.String("handler.path", c.Path()),
				attribute.String("handler.method", c.Request().Method),
			}
		}),
	))

	handler := &MainHandler{
		orderPubSubber: orderPubSubber,
		health:         health,
		now:            time.Now,
	}

	e.GET("/healthz", handler.HealthCheck)
	v1 := e.Group(settings.HTTP.Prefix)

	v1.GET("/menu", handler.GetMenu)
	v1.POST("/quote", handler.QuotePizza)
	v1.POST("/order", handler.OrderNewPizza)
	v1.GET("/order/sse", handler.GetLiveOrdersSSE)

	return handler
}

// GetMenu godoc
//
// @Summary List pizza sizes and their prices
// @Tags menu
// @Produce json
// @Success 200 {array} MenuEntry
// @Router /v1/menu [get]
func (h *MainHandler) GetMenu(c echo.Context) error {
	menu := make([]MenuEntry, 0, len(pizza.Sizes()))
	for _, s := range pizza.Sizes() {
		prices := s.Prices()
		menu = append(menu, MenuEntry{
			Size:         s.String(),
			BasePrice:    prices.Base,
			ToppingPrice: prices.Topping,
		})
	}
	return c.JSON(http.StatusOK, menu)
}

// QuotePizza godoc
//
// @Summary Price and describe a pizza without ordering it
// @Tags menu
// @Accept json
// @Produce json
// @Param quote body QuoteRequest true "Pizza to quote"
// @Success 200 {object} QuoteResponse
// @Failure 400 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /v1/quote [post]
func (h *MainHandler) QuotePizza(c echo.Context) error {
	ctx := c.Request().Context()

	var req QuoteRequest
	if err := c.Bind(&req); err != nil {
		slog.ErrorContext(ctx, "failed to bind request", slog.Any("err", err))
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error(), Kind: "validation"})
	}

	p, err := pizza.Build(req.Size, req.Toppings)
	if err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error(), Kind: "invalid_size"})
	}

	return c.JSON(http.StatusOK, QuoteResponse{
		Size:        p.Size().String(),
		Toppings:    p.Toppings(),
		Description: p.Describe(),
		Price:       p.Price(),
	})
}

// OrderNewPizza godoc
//
// @Summary Create a new pizza order
// @Tags order
// @Accept json
// @Produce json
// @Param order body NewPizzaOrderRequest true "New Pizza Order Request"
// @Success 200 {object} NewPizzaOrderResponse
// @Failure 400 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /v1/order [post]
func (h *MainHandler) OrderNewPizza(c echo.Context) error {
	ctx := c.Request().Context()

	var req NewPizzaOrderRequest
	if err := c.Bind(&req); err != nil {
		slog.ErrorContext(ctx, "failed to bind request", slog.Any("err", err))
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error(), Kind: "validation"})
	}

	p, err := pizza.Build(req.Size, req.Toppings)
	if err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error(), Kind: "invalid_size"})
	}

	deliverAt := ""
	if req.DeliverAt != "" {
		tod, err := timeofday.Parse(req.DeliverAt)
		if err != nil {
			return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error(), Kind: timeofday.Kind(err)})
		}
		deliverAt = tod.String()
	}

	newOrder := pacchetto.Order{
		OrderID:     uuid.New().String(),
		Size:        p.Size().String(),
		Toppings:    p.Toppings(),
		Destination: req.Destination,
		Username:    req.Username,
		DeliverAt:   deliverAt,
		Description: p.Describe(),
		Price:       p.Price(),
		OrderedAt:   h.now(),
		Status:      pacchetto.OrderStatusWaitingToCook,
	}

	trace.SpanFromContext(ctx).SetAttributes(
		attribute.String("box-box.orderid", newOrder.OrderID),
		attribute.String("order.size", newOrder.Size),
		attribute.Int("order.price", newOrder.Price),
	)

	if err := h.orderPubSubber.PubOrder(ctx, newOrder); err != nil {
		slog.ErrorContext(ctx, "failed to publish order", slog.String("order_id", newOrder.OrderID), slog.Any("err", err))
		return c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "order could not be queued"})
	}

	return c.JSON(http.StatusOK, NewPizzaOrderResponse{
		OrderID:     newOrder.OrderID,
		OrderedAt:   newOrder.OrderedAt,
		Description: newOrder.Description,
		Price:       newOrder.Price,
		DeliverAt:   newOrder.DeliverAt,
	})
}

// GetLiveOrdersSSE godoc
//
// @Summary Get live orders via Server-Sent Events (SSE)
// @Tags order
// @Produce  text/event-stream
// @Success 200 {object} pacchetto.Order
// @Router /v1/order/sse [get]
func (h *MainHandler) GetLiveOrdersSSE(c echo.Context) error {
	ctx := c.Request().Context()
	flusher, ok := c.Response().Writer.(http.Flusher)
	if !ok {
		slog.ErrorContext(ctx, "streaming unsupported by response writer")
		return echo.NewHTTPError(http.StatusInternalServerError, "Streaming unsupported")
	}

	ch, err := h.orderPubSubber.SubLiveOrders(ctx, flusher)
	if err != nil {
		slog.ErrorContext(ctx, "failed to subscribe to live orders", slog.Any("err", err))
		return err
	}

	c.Response().Header().Set(echo.HeaderContentType, "text/event-stream")
	c.Response().Header().Set("Cache-Control", "no-cache")
	c.Response().Header().Set("Connection", "keep-alive")
	c.Response().WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "client closed connection")
			return h.orderPubSubber.UnsubLiveOrders(context.WithoutCancel(ctx), flusher)
		case order := <-ch:
			data, err := json.Marshal(order)
			if err != nil {
				slog.ErrorContext(ctx, "marshal order for SSE", slog.Any("err", err))
				continue
			}
			_, err = c.Response().Write([]byte("data: " + string(data) + "\n\n"))
			if err != nil {
				slog.ErrorContext(ctx, "write SSE", slog.Any("err", err))
				return errors.Join(err, h.orderPubSubber.UnsubLiveOrders(context.WithoutCancel(ctx), flusher))
			}
			flusher.Flush()
		}
	}
}

// HealthCheck godoc
//
// @Summary Check the health of the service
// @Tags health
// @Produce json
// @Success 200 {object} healthgo.Check
// @Failure 503 {object} healthgo.Check
// @Router /healthz [get]
func (h *MainHandler) HealthCheck(c echo.Context) error {
	check := h.health.Measure(c.Request().Context())

	statusCode := http.StatusOK
	if check.Status == healthgo.StatusUnavailable {
		statusCode = http.StatusServiceUnavailable
	}

	return c.JSON(statusCode, check)
}
