package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// OrderInfo is what the buyer enters before paying.
type OrderInfo struct {
	Name           string `json:"name"`
	Mobile         string `json:"mobile"`
	WhatsApp       string `json:"whatsapp"`
	Email          string `json:"email"`
	PersonalFbLink string `json:"personalFbLink"`
	TargetLink     string `json:"targetLink"`
	Description    string `json:"description"`
}

// Field returns the value of a field by its JSON name.
func (o OrderInfo) Field(name string) (string, bool) {
	switch name {
	case "name":
		return o.Name, true
	case "mobile":
		return o.Mobile, true
	case "whatsapp":
		return o.WhatsApp, true
	case "email":
		return o.Email, true
	case "personalFbLink":
		return o.PersonalFbLink, true
	case "targetLink":
		return o.TargetLink, true
	case "description":
		return o.Description, true
	}
	return "", false
}

type PaymentMethod string

const (
	PaymentBKash PaymentMethod = "bKash"
	PaymentNagad PaymentMethod = "Nagad"

	DefaultPaymentMethod = PaymentBKash
)

func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return DefaultPaymentMethod, nil
	case "bkash":
		return PaymentBKash, nil
	case "nagad":
		return PaymentNagad, nil
	}
	return "", fmt.Errorf("unsupported payment method %q", s)
}

type PaymentDetails struct {
	Method       PaymentMethod `json:"method"`
	SenderNumber string        `json:"senderNumber"`
}

type SubmissionItem struct {
	Name     string          `json:"name"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

// OrderSubmission is the payload handed to the notification collaborator.
type OrderSubmission struct {
	OrderInfo      OrderInfo        `json:"orderInfo"`
	Cart           []SubmissionItem `json:"cart"`
	Total          decimal.Decimal  `json:"total"`
	PaymentDetails PaymentDetails   `json:"paymentDetails"`
}

func NewOrderSubmission(info OrderInfo, items []LineItem, total decimal.Decimal, payment PaymentDetails) OrderSubmission {
	cart := make([]SubmissionItem, 0, len(items))
	for _, item := range items {
		cart = append(cart, SubmissionItem{
			Name:     item.Name,
			Quantity: item.Quantity,
			Price:    item.Price,
		})
	}
	return OrderSubmission{
		OrderInfo:      info,
		Cart:           cart,
		Total:          total,
		PaymentDetails: payment,
	}
}

// Confirmation is kept for display after the cart has been cleared.
type Confirmation struct {
	OrderID     string          `json:"orderId"`
	Total       decimal.Decimal `json:"total"`
	Method      PaymentMethod   `json:"method"`
	ConfirmedAt time.Time       `json:"confirmedAt"`
}
