package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	healthgo "github.com/hellofresh/health-go/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taldoflemis/pizzeria/pacchetto"
)

func newTestServer(t *testing.T, pubsub OrderPubSubber, checks ...healthgo.Config) (*echo.Echo, *MainHandler) {
	t.Helper()

	settings := &Settings{
		HTTP: pacchetto.HTTPSettings{
			Prefix: "/v1",
			CORS: pacchetto.CORSSettings{
				Origins: []string{"http://localhost:3000"},
				Methods: []string{"GET", "POST"},
				Headers: []string{"Content-Type"},
			},
		},
	}
	health, err := healthgo.New(
		healthgo.WithComponent(healthgo.Component{Name: "paddock-gateway", Version: "test"}),
		healthgo.WithChecks(checks...),
	)
	require.NoError(t, err)

	e := echo.New()
	handler := NewMainHandler(e, settings, pubsub, health)
	handler.now = func() time.Time { return time.Date(2026, time.January, 2, 12, 0, 0, 0, time.UTC) }
	return e, handler
}

func doJSON(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestQuotePizza(t *testing.T) {
	// Arrange
	e, _ := newTestServer(t, NewGoChannelOrderPubSubber())

	// Act
	rec := doJSON(e, http.MethodPost, "/v1/quote",
		`{"size":"small","toppings":["mushroom","tomato","pinapple","tomato"]}`)

	// Assert
	require.Equal(t, http.StatusOK, rec.Code)
	var resp QuoteResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "small pizza with mushroom, tomato, pinapple", resp.Description)
	assert.Equal(t, 180, resp.Price)
	assert.Equal(t, []string{"mushroom", "tomato", "pinapple"}, resp.Toppings)
}

func TestQuotePizzaRejectsUnknownSize(t *testing.T) {
	e, _ := newTestServer(t, NewGoChannelOrderPubSubber())

	rec := doJSON(e, http.MethodPost, "/v1/quote", `{"size":"gigantic"}`)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestQuotePizzaRejectsBadBody(t *testing.T) {
	e, _ := newTestServer(t, NewGoChannelOrderPubSubber())

	rec := doJSON(e, http.MethodPost, "/v1/quote", `{"size":`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetMenu(t *testing.T) {
	e, _ := newTestServer(t, NewGoChannelOrderPubSubber())

	rec := doJSON(e, http.MethodGet, "/v1/menu", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var menu []MenuEntry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &menu))
	assert.Equal(t, []MenuEntry{
		{Size: "small", BasePrice: 120, ToppingPrice: 20},
		{Size: "medium", BasePrice: 200, ToppingPrice: 25},
		{Size: "large", BasePrice: 280, ToppingPrice: 30},
		{Size: "jumbo", BasePrice: 500, ToppingPrice: 50},
	}, menu)
}

func TestOrderNewPizzaPublishes(t *testing.T) {
	// Arrange
	pubsub := NewGoChannelOrderPubSubber()
	e, _ := newTestServer(t, pubsub)
	live, err := pubsub.SubLiveOrders(context.Background(), httptest.NewRecorder())
	require.NoError(t, err)

	// Act
	rec := doJSON(e, http.MethodPost, "/v1/order",
		`{"size":"large","toppings":["seafood"],"destination":"pit lane","username":"ayrton","deliver_at":"9:23:15"}`)

	// Assert
	require.Equal(t, http.StatusOK, rec.Code)
	var resp NewPizzaOrderResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.OrderID)
	assert.Equal(t, "large pizza with seafood", resp.Description)
	assert.Equal(t, 310, resp.Price)
	assert.Equal(t, "09:23:15", resp.DeliverAt)

	select {
	case order := <-live:
		assert.Equal(t, resp.OrderID, order.OrderID)
		assert.Equal(t, pacchetto.OrderStatusWaitingToCook, order.Status)
		assert.Equal(t, "ayrton", order.Username)
		assert.Equal(t, 310, order.Price)
	case <-time.After(time.Second):
		t.Fatal("order was not published")
	}
}

func TestOrderNewPizzaRejectsBadDeliveryTime(t *testing.T) {
	tests := []struct {
		deliverAt string
		kind      string
	}{
		{"24:00:00", "out_of_range"},
		{"9:23", "malformed_format"},
		{"a:23:15", "invalid_number"},
	}

	for _, tt := range tests {
		e, _ := newTestServer(t, NewGoChannelOrderPubSubber())

		rec := doJSON(e, http.MethodPost, "/v1/order",
			`{"size":"small","destination":"pit lane","username":"ayrton","deliver_at":"`+tt.deliverAt+`"}`)

		require.Equal(t, http.StatusUnprocessableEntity, rec.Code, tt.deliverAt)
		var resp ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, tt.kind, resp.Kind, tt.deliverAt)
	}
}

func TestOrderNewPizzaRequiresUsername(t *testing.T) {
	e, _ := newTestServer(t, NewGoChannelOrderPubSubber())

	rec := doJSON(e, http.MethodPost, "/v1/order", `{"size":"small","destination":"pit lane"}`)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestUnsubscribedFlusherGetsNothing(t *testing.T) {
	pubsub := NewGoChannelOrderPubSubber()
	flusher := httptest.NewRecorder()
	live, err := pubsub.SubLiveOrders(context.Background(), flusher)
	require.NoError(t, err)
	require.NoError(t, pubsub.UnsubLiveOrders(context.Background(), flusher))

	require.NoError(t, pubsub.PubOrder(context.Background(), pacchetto.Order{OrderID: "1"}))

	assert.Empty(t, live)
}

func TestHealthCheck(t *testing.T) {
	e, _ := newTestServer(t, NewGoChannelOrderPubSubber())

	rec := doJSON(e, http.MethodGet, "/healthz", "")

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHealthCheckUnavailable(t *testing.T) {
	e, _ := newTestServer(t, NewGoChannelOrderPubSubber(), healthgo.Config{
		Name:  "nats",
		Check: func(context.Context) error { return assert.AnError },
	})

	rec := doJSON(e, http.MethodGet, "/healthz", "")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
