package main

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taldoflemis/pizzeria/pacchetto"
	"github.com/taldoflemis/pizzeria/pacchetto/natstest"
)

func publishOrder(t *testing.T, js jetstream.JetStream, order pacchetto.Order) {
	t.Helper()
	data, err := json.Marshal(order)
	require.NoError(t, err)
	_, err = js.Publish(context.Background(), pacchetto.OrderSubject("orders", pacchetto.OrderStatusWaitingToCook, order.OrderID), data)
	require.NoError(t, err)
}

func TestAttachConsumer(t *testing.T) {
	// Arrange
	ctx := context.Background()
	nc := natstest.RunJetStream(t)
	js, err := jetstream.New(nc)
	require.NoError(t, err)
	m, _ := newTestMaestro(t, js, 0)

	// Act
	err = m.attachConsumer(ctx, js, "ORDERS")

	// Assert
	require.NoError(t, err)
	info, err := m.consumer.Info(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ORDERS_maestro_new_order_listener_v1", info.Config.Durable)
	assert.Equal(t, "orders.waiting_to_cook.*", info.Config.FilterSubject)
	assert.Equal(t, jetstream.AckExplicitPolicy, info.Config.AckPolicy)

	stream, err := js.Stream(ctx, "ORDERS")
	require.NoError(t, err)
	streamInfo, err := stream.Info(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"orders.>"}, streamInfo.Config.Subjects)
}

func TestStartTurnForwardsAndRejectsOrders(t *testing.T) {
	// Arrange
	nc := natstest.RunJetStream(t)
	js, err := jetstream.New(nc)
	require.NoError(t, err)
	m, _ := newTestMaestro(t, js, 0)
	require.NoError(t, m.attachConsumer(context.Background(), js, "ORDERS"))

	delivery, err := nc.SubscribeSync("orders.waiting_delivery.*")
	require.NoError(t, err)
	rejected, err := nc.SubscribeSync("orders.rejected.*")
	require.NoError(t, err)
	require.NoError(t, nc.Flush())

	publishOrder(t, js, pacchetto.Order{
		OrderID:  "ok",
		Size:     "small",
		Toppings: []string{"mushroom", "tomato", "pinapple"},
		Status:   pacchetto.OrderStatusWaitingToCook,
	})
	publishOrder(t, js, pacchetto.Order{
		OrderID: "bad",
		Size:    "colossal",
		Status:  pacchetto.OrderStatusWaitingToCook,
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	// Act
	go func() { done <- m.startTurn(ctx) }()

	// Assert
	msg, err := delivery.NextMsg(10 * time.Second)
	require.NoError(t, err)
	assert.Equal(t, "orders.waiting_delivery.ok", msg.Subject)
	var baked pacchetto.Order
	require.NoError(t, json.Unmarshal(msg.Data, &baked))
	assert.Equal(t, pacchetto.OrderStatusWaitingDelivery, baked.Status)
	assert.Equal(t, 180, baked.Price)
	assert.Equal(t, "small pizza with mushroom, tomato, pinapple", baked.Description)

	msg, err = rejected.NextMsg(10 * time.Second)
	require.NoError(t, err)
	assert.Equal(t, "orders.rejected.bad", msg.Subject)
	var refused pacchetto.Order
	require.NoError(t, json.Unmarshal(msg.Data, &refused))
	assert.Equal(t, pacchetto.OrderStatusRejected, refused.Status)

	assert.Eventually(t, func() bool {
		info, err := m.consumer.Info(context.Background())
		return err == nil && info.NumPending == 0 && info.NumAckPending == 0
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("startTurn did not stop after cancel")
	}
}
