package main

import (
	"time"
)

type QuoteRequest struct {
	Size     string   `json:"size" validate:"required,oneof=small medium large jumbo"`
	Toppings []string `json:"toppings" validate:"dive,required"`
}

type QuoteResponse struct {
	Size        string   `json:"size"`
	Toppings    []string `json:"toppings"`
	Description string   `json:"description"`
	Price       int      `json:"price"`
}

type NewPizzaOrderRequest struct {
	Size        string   `json:"size" validate:"required,oneof=small medium large jumbo"`
	Toppings    []string `json:"toppings" validate:"dive,required"`
	Destination string   `json:"destination" validate:"required"`
	Username    string   `json:"username" validate:"required"`
	DeliverAt   string   `json:"deliver_at,omitempty"` // hh:mm:ss
}

type NewPizzaOrderResponse struct {
	OrderID     string    `json:"order_id"`
	OrderedAt   time.Time `json:"ordered_at"`
	Description string    `json:"description"`
	Price       int       `json:"price"`
	DeliverAt   string    `json:"deliver_at,omitempty"`
}

type MenuEntry struct {
	Size         string `json:"size"`
	BasePrice    int    `json:"base_price"`
	ToppingPrice int    `json:"topping_price"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}
