// Package order accepts placed orders and notifies the operator and the
// customer about them.
package order

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/shopspring/decimal"
)

var ErrInvalidOrder = errors.New("invalid order")

type Info struct {
	Name           string `json:"name"`
	Mobile         string `json:"mobile"`
	WhatsApp       string `json:"whatsapp"`
	Email          string `json:"email"`
	PersonalFbLink string `json:"personalFbLink"`
	TargetLink     string `json:"targetLink"`
	Description    string `json:"description"`
}

type Item struct {
	Name     string          `json:"name"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

func (i Item) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

type Payment struct {
	Method       string `json:"method"`
	SenderNumber string `json:"senderNumber"`
}

// Order is the body the storefront posts.
type Order struct {
	Info    Info            `json:"orderInfo"`
	Cart    []Item          `json:"cart"`
	Total   decimal.Decimal `json:"total"`
	Payment Payment         `json:"paymentDetails"`
}

func (o Order) Validate() error {
	if strings.TrimSpace(o.Info.Mobile) == "" {
		return fmt.Errorf("%w: mobile is required", ErrInvalidOrder)
	}
	if len(o.Cart) == 0 {
		return fmt.Errorf("%w: cart is empty", ErrInvalidOrder)
	}
	for _, item := range o.Cart {
		if item.Quantity < 1 {
			return fmt.Errorf("%w: %q has quantity %d", ErrInvalidOrder, item.Name, item.Quantity)
		}
		if item.Price.IsNegative() {
			return fmt.Errorf("%w: %q has a negative price", ErrInvalidOrder, item.Name)
		}
	}
	return nil
}

// ItemsTotal sums the line subtotals.
func (o Order) ItemsTotal() decimal.Decimal {
	sum := decimal.Zero
	for _, item := range o.Cart {
		sum = sum.Add(item.Subtotal())
	}
	return sum
}

// NewOrderID returns ORD- followed by a random number in 10000..99999.
func NewOrderID() string {
	return fmt.Sprintf("ORD-%d", 10000+rand.IntN(90000))
}
