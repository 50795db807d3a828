package domain

import "github.com/shopspring/decimal"

// LineItem is one cart row. Offering fields are copied at add time so later
// catalog changes do not touch items already in the cart.
type LineItem struct {
	ID         string          `json:"id"`
	OfferingID string          `json:"serviceId"`
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
	Quantity   int             `json:"quantity"`
	UnitValue  int64           `json:"unitValue"`
	Category   Category        `json:"category"`
	Platform   Platform        `json:"platform"`
}

func NewLineItem(id string, o Offering) LineItem {
	return LineItem{
		ID:         id,
		OfferingID: o.ID,
		Name:       o.Name,
		Price:      o.Price,
		Quantity:   1,
		UnitValue:  o.UnitValue,
		Category:   o.Category,
		Platform:   o.Platform,
	}
}

func (i LineItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Units is the number of deliverable units the line item represents.
func (i LineItem) Units() int64 {
	return i.UnitValue * int64(i.Quantity)
}

type CategorySummary struct {
	Label string `json:"label"`
	Units int64  `json:"units"`
	Value string `json:"value"`
}

// Totals is derived from the line items on every read and never stored.
type Totals struct {
	GrandTotal decimal.Decimal   `json:"total"`
	ItemCount  int               `json:"itemCount"`
	Categories []CategorySummary `json:"categories"`
}
