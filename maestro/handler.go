package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/taldoflemis/pizzeria/pacchetto"
	"github.com/taldoflemis/pizzeria/pacchetto/pizza"
	"github.com/taldoflemis/pizzeria/pacchetto/telemetry"
	"github.com/taldoflemis/pizzeria/pacchetto/timeofday"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

var (
	tracer = otel.Tracer("maestro")
	meter  = otel.Meter("maestro")
)

// orderPublisher is the part of jetstream.JetStream maestro needs.
type orderPublisher interface {
	PublishMsg(ctx context.Context, msg *nats.Msg, opts ...jetstream.PublishOpt) (*jetstream.PubAck, error)
}

type maestro struct {
	settings  MaestroSettings
	subject   string
	publisher orderPublisher
	consumer  jetstream.Consumer

	mu     sync.RWMutex
	status string

	// sleep is swapped in tests so baking is instant.
	sleep func(ctx context.Context, d time.Duration) error
	seed  func() uint64

	bakedCounter    metric.Int64Counter
	rejectedCounter metric.Int64Counter
	bakeHistogram   metric.Float64Histogram
	revenueCounter  metric.Int64Counter
}

func newMaestro(settings MaestroSettings, subject string, publisher orderPublisher) (*maestro, error) {
	bakedCounter, err := meter.Int64Counter(
		"maestro.pizza.baked",
		metric.WithDescription("Number of pizzas the maestro has baked"),
		metric.WithUnit("{pizza}"),
	)
	if err != nil {
		return nil, err
	}

	rejectedCounter, err := meter.Int64Counter(
		"maestro.order.rejected",
		metric.WithDescription("Number of orders the maestro refused to cook"),
		metric.WithUnit("{order}"),
	)
	if err != nil {
		return nil, err
	}

	bakeHistogram, err := meter.Float64Histogram(
		"maestro.pizza.bake.duration",
		metric.WithDescription("Time a pizza spent in the oven"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	revenueCounter, err := meter.Int64Counter(
		"maestro.order.revenue",
		metric.WithDescription("Sum of the prices of baked pizzas"),
	)
	if err != nil {
		return nil, err
	}

	return &maestro{
		settings:        settings,
		subject:         subject,
		publisher:       publisher,
		status:          "idle",
		sleep:           sleepContext,
		seed:            func() uint64 { return uint64(time.Now().UnixNano()) },
		bakedCounter:    bakedCounter,
		rejectedCounter: rejectedCounter,
		bakeHistogram:   bakeHistogram,
		revenueCounter:  revenueCounter,
	}, nil
}

// attachConsumer creates the stream if needed and the durable consumer for
// orders waiting to be cooked.
func (m *maestro) attachConsumer(ctx context.Context, js jetstream.JetStream, streamName string) error {
	stream, err := js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:     streamName,
		Subjects: []string{m.subject + ".>"},
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to get stream", slog.Any("err", err))
		return err
	}

	c, err := stream.CreateOrUpdateConsumer(ctx, jetstream.ConsumerConfig{
		Durable:       streamName + "_maestro_new_order_listener_v1",
		FilterSubject: pacchetto.OrderStatusFilter(m.subject, pacchetto.OrderStatusWaitingToCook),
		AckPolicy:     jetstream.AckExplicitPolicy,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to create consumer", slog.Any("err", err))
		return err
	}

	m.consumer = c
	return nil
}

func (m *maestro) Status() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

func (m *maestro) setStatus(status string) {
	m.mu.Lock()
	m.status = status
	m.mu.Unlock()
}

// startTurn fetches and processes batches of orders until ctx is done.
func (m *maestro) startTurn(ctx context.Context) error {
	slog.InfoContext(ctx, "Maestro is starting his turn")

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Maestro turn is over")
			return nil
		default:
		}

		batch, err := m.consumer.Fetch(m.settings.OrderBatchSize,
			jetstream.FetchMaxWait(time.Duration(m.settings.FetchMaxWaitInSeconds)*time.Second),
		)
		if err != nil {
			slog.ErrorContext(ctx, "failed to fetch orders", slog.Any("err", err))
			if err := m.sleep(ctx, time.Second); err != nil {
				return nil
			}
			continue
		}

		for msg := range batch.Messages() {
			if err := msg.InProgress(); err != nil {
				slog.ErrorContext(ctx, "failed to set message in progress", slog.Any("err", err))
				continue
			}
			m.processNewOrder(ctx, msg)
		}

		if err := batch.Error(); err != nil && !errors.Is(err, nats.ErrTimeout) {
			slog.WarnContext(ctx, "order batch finished with error", slog.Any("err", err))
		}
	}
}

// prepareOrder rebuilds the pizza the customer asked for and recomputes its
// price and description.
func prepareOrder(order pacchetto.Order) (*pizza.Pizza, pacchetto.Order, error) {
	p, err := pizza.Build(order.Size, order.Toppings)
	if err != nil {
		return nil, order, err
	}

	if order.DeliverAt != "" {
		tod, err := timeofday.Parse(order.DeliverAt)
		if err != nil {
			return nil, order, fmt.Errorf("deliver_at: %w", err)
		}
		order.DeliverAt = tod.String()
	}

	order.Toppings = p.Toppings()
	order.Description = p.Describe()
	order.Price = p.Price()
	return p, order, nil
}

func (m *maestro) processNewOrder(ctx context.Context, msg jetstream.Msg) {
	ctx = telemetry.GetContextFromJetstreamMsg(ctx, msg)
	ctx, span := tracer.Start(ctx, "maestro.processNewOrder")
	defer span.End()

	var order pacchetto.Order
	if err := json.Unmarshal(msg.Data(), &order); err != nil {
		slog.ErrorContext(ctx, "failed to unmarshal order from NATS message", slog.Any("err", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if err := msg.Term(); err != nil {
			slog.ErrorContext(ctx, "failed to terminate message", slog.Any("err", err))
		}
		return
	}

	span.SetAttributes(
		attribute.String("box-box.orderid", order.OrderID),
		attribute.String("order.size", order.Size),
		attribute.String("order.destination", order.Destination),
		attribute.String("order.username", order.Username),
		attribute.StringSlice("order.toppings", order.Toppings),
	)

	p, order, err := prepareOrder(order)
	if err != nil {
		slog.WarnContext(ctx, "rejecting order", slog.String("order-id", order.OrderID), slog.Any("err", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "order rejected")
		m.rejectedCounter.Add(ctx, 1)

		order.Status = pacchetto.OrderStatusRejected
		if err := m.publish(ctx, order); err != nil {
			m.nak(ctx, msg)
			return
		}
		if err := msg.Term(); err != nil {
			slog.ErrorContext(ctx, "failed to terminate message", slog.Any("err", err))
		}
		return
	}

	m.setStatus(fmt.Sprintf("processing order %s", order.OrderID))
	defer m.setStatus("idle")

	if err := m.bake(ctx, order.OrderID, p); err != nil {
		slog.WarnContext(ctx, "baking interrupted, order will be redelivered", slog.String("order-id", order.OrderID), slog.Any("err", err))
		m.nak(ctx, msg)
		return
	}

	order.Status = pacchetto.OrderStatusWaitingDelivery
	if err := m.publish(ctx, order); err != nil {
		m.nak(ctx, msg)
		return
	}

	if err := msg.Ack(); err != nil {
		slog.ErrorContext(ctx, "Failed to acknowledge message", slog.Any("err", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return
	}

	m.revenueCounter.Add(ctx, int64(order.Price), metric.WithAttributes(attribute.String("order.size", order.Size)))
	slog.InfoContext(ctx, "Order processed successfully",
		slog.String("order-id", order.OrderID),
		slog.String("pizza", order.Description),
		slog.Int("price", order.Price),
	)
}

// bake keeps the pizza in the oven. An overbaked pizza is thrown away and
// baked once more.
func (m *maestro) bake(ctx context.Context, orderID string, p *pizza.Pizza) error {
	ctx, span := tracer.Start(ctx, "maestro.bake", trace.WithAttributes(
		attribute.String("box-box.orderid", orderID),
		attribute.String("pizza.size", p.Size().String()),
	))
	defer span.End()

	duration := m.settings.BakingDuration(len(p.Toppings()))
	total := duration

	slog.DebugContext(ctx, "Baking pizza", slog.String("order-id", orderID), slog.Duration("duration", duration))
	if err := m.sleep(ctx, duration); err != nil {
		return err
	}

	if pacchetto.Chance(m.seed(), m.settings.ProbabilityOfOverbaking) {
		slog.InfoContext(ctx, "Maestro overbaked the pizza, baking another one", slog.String("order-id", orderID))
		span.SetAttributes(attribute.Bool("maestro.overbaked", true))
		if err := m.sleep(ctx, duration); err != nil {
			return err
		}
		total += duration
	}

	m.bakedCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("pizza.size", p.Size().String())))
	m.bakeHistogram.Record(ctx, total.Seconds())
	return nil
}

func (m *maestro) publish(ctx context.Context, order pacchetto.Order) error {
	ctx, span := tracer.Start(ctx, "maestro.publish", trace.WithAttributes(
		attribute.String("box-box.orderid", order.OrderID),
		attribute.String("order.status", string(order.Status)),
	))
	defer span.End()

	msg := &nats.Msg{
		Subject: pacchetto.OrderSubject(m.subject, order.Status, order.OrderID),
		Header:  nats.Header{},
	}
	telemetry.InjectContextToNatsMsg(ctx, msg)

	data, err := json.Marshal(order)
	if err != nil {
		slog.ErrorContext(ctx, "failed to marshal order to json", slog.Any("err", err))
		span.SetStatus(codes.Error, "failed to marshal order")
		span.RecordError(err)
		return err
	}
	msg.Data = data

	if _, err := m.publisher.PublishMsg(ctx, msg); err != nil {
		slog.ErrorContext(ctx, "failed to publish order", slog.String("subject", msg.Subject), slog.Any("err", err))
		span.SetStatus(codes.Error, "failed to publish order")
		span.RecordError(err)
		return err
	}

	slog.InfoContext(ctx, "Published order", slog.String("order-id", order.OrderID), slog.String("subject", msg.Subject))
	return nil
}

// nak asks JetStream to redeliver msg right away.
func (m *maestro) nak(ctx context.Context, msg jetstream.Msg) {
	if err := msg.Nak(); err != nil {
		slog.ErrorContext(ctx, "failed to nak message", slog.Any("err", err))
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
