package pacchetto

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderSubjects(t *testing.T) {
	assert.Equal(t, "orders.waiting_to_cook.abc", OrderSubject("orders", OrderStatusWaitingToCook, "abc"))
	assert.Equal(t, "orders.waiting_delivery.*", OrderStatusFilter("orders", OrderStatusWaitingDelivery))
}
