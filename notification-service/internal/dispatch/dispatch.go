// Package dispatch delivers rendered order notifications.
package dispatch

import (
	"context"
	"errors"
)

// Message kinds.
const (
	KindOperator = "operator"
	KindCustomer = "customer"
)

var ErrDelivery = errors.New("notification delivery failed")

type Address struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// Message is one plain-text notification about an order.
type Message struct {
	Kind    string  `json:"kind"`
	OrderID string  `json:"order_id"`
	From    Address `json:"from"`
	To      Address `json:"to"`
	Subject string  `json:"subject"`
	Body    string  `json:"body"`
}

type Dispatcher interface {
	Dispatch(ctx context.Context, msg Message) error
}
