package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/taldoflemis/pizzeria/pacchetto"
	"github.com/taldoflemis/pizzeria/pacchetto/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// NATSOrderPubSubber publishes new orders to JetStream and streams every order
// event of the subject tree to live subscribers.
type NATSOrderPubSubber struct {
	nc      *nats.Conn
	js      jetstream.JetStream
	subject string
	mu      sync.Mutex
	subs    map[http.Flusher]*nats.Subscription
}

var _ OrderPubSubber = (*NATSOrderPubSubber)(nil)

func NewNATSOrderPubSubber(ctx context.Context, nc *nats.Conn, subject string, streamName string) (*NATSOrderPubSubber, error) {
	js, err := jetstream.New(nc)
	if err != nil {
		return nil, err
	}

	_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:     streamName,
		Subjects: []string{subject + ".>"},
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to create stream", slog.String("stream", streamName), slog.Any("err", err))
		return nil, err
	}

	return &NATSOrderPubSubber{
		nc:      nc,
		js:      js,
		subject: subject,
		subs:    make(map[http.Flusher]*nats.Subscription),
	}, nil
}

// PubOrder implements OrderPubSubber.
func (n *NATSOrderPubSubber) PubOrder(ctx context.Context, order pacchetto.Order) error {
	ctx, span := tracer.Start(ctx, "NATSOrderPubSubber.PubOrder", trace.WithAttributes(
		attribute.String("box-box.orderid", order.OrderID),
	))
	defer span.End()

	msg := &nats.Msg{
		Subject: pacchetto.OrderSubject(n.subject, order.Status, order.OrderID),
		Header:  nats.Header{},
	}
	telemetry.InjectContextToNatsMsg(ctx, msg)

	data, err := json.Marshal(order)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to marshal order")
		return err
	}
	msg.Data = data

	_, err = n.js.PublishMsg(ctx, msg)
	if err != nil {
		slog.ErrorContext(ctx, "failed to publish order", slog.String("subject", msg.Subject), slog.Any("err", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to publish order")
		return err
	}

	slog.InfoContext(ctx, "published order", slog.String("order_id", order.OrderID), slog.String("subject", msg.Subject))
	return nil
}

// SubLiveOrders implements OrderPubSubber.
func (n *NATSOrderPubSubber) SubLiveOrders(ctx context.Context, flusher http.Flusher) (<-chan pacchetto.Order, error) {
	ctx, span := tracer.Start(ctx, "NATSOrderPubSubber.SubLiveOrders")
	defer span.End()

	orderCh := make(chan pacchetto.Order, liveOrdersBuffer)
	sub, err := n.nc.Subscribe(n.subject+".>", func(msg *nats.Msg) {
		msgCtx := telemetry.GetContextFromNatsHeader(context.Background(), msg.Header)

		var order pacchetto.Order
		if err := json.Unmarshal(msg.Data, &order); err != nil {
			slog.ErrorContext(msgCtx, "failed to unmarshal order from NATS message", slog.Any("err", err))
			return
		}

		select {
		case orderCh <- order:
		default:
			slog.WarnContext(msgCtx, "live order subscriber is full, dropping order", slog.String("order_id", order.OrderID))
		}
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to subscribe to NATS subject", slog.String("subject", n.subject), slog.Any("err", err))
		span.SetStatus(codes.Error, "failed to subscribe to NATS subject")
		span.RecordError(err)
		return nil, err
	}

	n.mu.Lock()
	n.subs[flusher] = sub
	n.mu.Unlock()

	return orderCh, nil
}

// UnsubLiveOrders implements OrderPubSubber.
func (n *NATSOrderPubSubber) UnsubLiveOrders(ctx context.Context, flusher http.Flusher) error {
	ctx, span := tracer.Start(ctx, "NATSOrderPubSubber.UnsubLiveOrders")
	defer span.End()

	slog.InfoContext(ctx, "unsubscribing from live orders")

	n.mu.Lock()
	sub, ok := n.subs[flusher]
	delete(n.subs, flusher)
	n.mu.Unlock()

	if !ok {
		slog.WarnContext(ctx, "no subscription found for live order stream")
		return nil
	}

	return sub.Unsubscribe()
}
