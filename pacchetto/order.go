package pacchetto

import (
	"fmt"
	"time"
)

type OrderStatus string

const (
	OrderStatusWaitingToCook   OrderStatus = "waiting_to_cook"
	OrderStatusWaitingDelivery OrderStatus = "waiting_delivery"
	OrderStatusRejected        OrderStatus = "rejected"
)

// Order is the message exchanged over NATS between the gateway and maestro.
type Order struct {
	OrderID     string      `json:"order_id"`
	Size        string      `json:"size"`
	Toppings    []string    `json:"toppings"`
	Destination string      `json:"destination"`
	Username    string      `json:"username"`
	DeliverAt   string      `json:"deliver_at,omitempty"` // hh:mm:ss, optional
	Description string      `json:"description"`
	Price       int         `json:"price"`
	OrderedAt   time.Time   `json:"ordered_at"`
	Status      OrderStatus `json:"status"`
}

// OrderSubject returns the subject an order with the given status is published on.
func OrderSubject(root string, status OrderStatus, orderID string) string {
	return fmt.Sprintf("%s.%s.%s", root, status, orderID)
}

// OrderStatusFilter matches every order with the given status.
func OrderStatusFilter(root string, status OrderStatus) string {
	return fmt.Sprintf("%s.%s.*", root, status)
}
