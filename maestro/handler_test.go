package main

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taldoflemis/pizzeria/pacchetto"
	"github.com/taldoflemis/pizzeria/pacchetto/timeofday"
)

type fakePublisher struct {
	msgs []*nats.Msg
	err  error
}

func (f *fakePublisher) PublishMsg(_ context.Context, msg *nats.Msg, _ ...jetstream.PublishOpt) (*jetstream.PubAck, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.msgs = append(f.msgs, msg)
	return &jetstream.PubAck{Stream: "ORDERS"}, nil
}

func (f *fakePublisher) orders(t *testing.T) []pacchetto.Order {
	t.Helper()
	out := make([]pacchetto.Order, 0, len(f.msgs))
	for _, msg := range f.msgs {
		var o pacchetto.Order
		require.NoError(t, json.Unmarshal(msg.Data, &o))
		out = append(out, o)
	}
	return out
}

// fakeMsg implements only the jetstream.Msg methods maestro calls.
type fakeMsg struct {
	jetstream.Msg
	data   []byte
	acked  bool
	termed bool
	naked  bool
}

func (f *fakeMsg) Data() []byte         { return f.data }
func (f *fakeMsg) Headers() nats.Header { return nats.Header{} }
func (f *fakeMsg) Ack() error           { f.acked = true; return nil }
func (f *fakeMsg) Term() error          { f.termed = true; return nil }
func (f *fakeMsg) Nak() error           { f.naked = true; return nil }

func newTestMaestro(t *testing.T, pub orderPublisher, overbake float64) (*maestro, *[]time.Duration) {
	t.Helper()
	m, err := newMaestro(MaestroSettings{
		BakingBaseInMilliseconds:       1000,
		BakingPerToppingInMilliseconds: 100,
		ProbabilityOfOverbaking:        overbake,
		OrderBatchSize:                 1,
		FetchMaxWaitInSeconds:          1,
	}, "orders", pub)
	require.NoError(t, err)

	slept := &[]time.Duration{}
	m.sleep = func(_ context.Context, d time.Duration) error {
		*slept = append(*slept, d)
		return nil
	}
	m.seed = func() uint64 { return 7 }
	return m, slept
}

func newOrderMsg(t *testing.T, order pacchetto.Order) *fakeMsg {
	t.Helper()
	data, err := json.Marshal(order)
	require.NoError(t, err)
	return &fakeMsg{data: data}
}

func TestPrepareOrder(t *testing.T) {
	// Arrange
	order := pacchetto.Order{
		OrderID:   "1",
		Size:      "small",
		Toppings:  []string{"mushroom", "tomato", "pinapple", "mushroom"},
		DeliverAt: "9:23:15",
		Price:     1, // forged by the client
	}

	// Act
	p, got, err := prepareOrder(order)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 180, p.Price())
	assert.Equal(t, 180, got.Price)
	assert.Equal(t, "small pizza with mushroom, tomato, pinapple", got.Description)
	assert.Equal(t, []string{"mushroom", "tomato", "pinapple"}, got.Toppings)
	assert.Equal(t, "09:23:15", got.DeliverAt)
}

func TestPrepareOrderRejects(t *testing.T) {
	_, _, err := prepareOrder(pacchetto.Order{Size: "colossal"})
	assert.Error(t, err)

	_, _, err = prepareOrder(pacchetto.Order{Size: "small", DeliverAt: "24:00:00"})
	assert.ErrorIs(t, err, timeofday.ErrOutOfRange)
}

func TestProcessNewOrderBakesAndForwards(t *testing.T) {
	// Arrange
	pub := &fakePublisher{}
	m, slept := newTestMaestro(t, pub, 0)
	msg := newOrderMsg(t, pacchetto.Order{
		OrderID:  "abc",
		Size:     "jumbo",
		Toppings: []string{"ham", "olive"},
		Status:   pacchetto.OrderStatusWaitingToCook,
	})

	// Act
	m.processNewOrder(context.Background(), msg)

	// Assert
	assert.True(t, msg.acked)
	assert.False(t, msg.termed)
	assert.Equal(t, []time.Duration{1200 * time.Millisecond}, *slept)
	require.Len(t, pub.msgs, 1)
	assert.Equal(t, "orders.waiting_delivery.abc", pub.msgs[0].Subject)
	forwarded := pub.orders(t)[0]
	assert.Equal(t, pacchetto.OrderStatusWaitingDelivery, forwarded.Status)
	assert.Equal(t, 600, forwarded.Price)
	assert.Equal(t, "jumbo pizza with ham, olive", forwarded.Description)
	assert.Equal(t, "idle", m.Status())
}

func TestProcessNewOrderOverbakes(t *testing.T) {
	pub := &fakePublisher{}
	m, slept := newTestMaestro(t, pub, 1)
	msg := newOrderMsg(t, pacchetto.Order{OrderID: "abc", Size: "medium"})

	m.processNewOrder(context.Background(), msg)

	assert.True(t, msg.acked)
	assert.Equal(t, []time.Duration{time.Second, time.Second}, *slept)
}

func TestProcessNewOrderRejectsInvalidSize(t *testing.T) {
	// Arrange
	pub := &fakePublisher{}
	m, slept := newTestMaestro(t, pub, 0)
	msg := newOrderMsg(t, pacchetto.Order{OrderID: "abc", Size: "Small"})

	// Act
	m.processNewOrder(context.Background(), msg)

	// Assert
	assert.True(t, msg.termed)
	assert.False(t, msg.acked)
	assert.Empty(t, *slept)
	require.Len(t, pub.msgs, 1)
	assert.Equal(t, "orders.rejected.abc", pub.msgs[0].Subject)
	assert.Equal(t, pacchetto.OrderStatusRejected, pub.orders(t)[0].Status)
}

func TestProcessNewOrderTerminatesGarbage(t *testing.T) {
	pub := &fakePublisher{}
	m, _ := newTestMaestro(t, pub, 0)
	msg := &fakeMsg{data: []byte("not json")}

	m.processNewOrder(context.Background(), msg)

	assert.True(t, msg.termed)
	assert.Empty(t, pub.msgs)
}

func TestProcessNewOrderNaksWhenPublishFails(t *testing.T) {
	tests := []struct {
		name  string
		order pacchetto.Order
	}{
		{name: "baked order", order: pacchetto.Order{OrderID: "abc", Size: "large"}},
		{name: "rejected order", order: pacchetto.Order{OrderID: "abc", Size: "colossal"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			pub := &fakePublisher{err: errors.New("nats down")}
			m, _ := newTestMaestro(t, pub, 0)
			msg := newOrderMsg(t, tt.order)

			// Act
			m.processNewOrder(context.Background(), msg)

			// Assert
			assert.True(t, msg.naked)
			assert.False(t, msg.acked)
			assert.False(t, msg.termed)
		})
	}
}

func TestProcessNewOrderNaksWhenInterrupted(t *testing.T) {
	pub := &fakePublisher{}
	m, _ := newTestMaestro(t, pub, 0)
	m.sleep = func(ctx context.Context, _ time.Duration) error { return context.Canceled }
	msg := newOrderMsg(t, pacchetto.Order{OrderID: "abc", Size: "large"})

	m.processNewOrder(context.Background(), msg)

	assert.True(t, msg.naked)
	assert.False(t, msg.acked)
	assert.Empty(t, pub.msgs)
}

func TestSleepContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, sleepContext(ctx, time.Hour), context.Canceled)
	assert.NoError(t, sleepContext(context.Background(), time.Millisecond))
}
