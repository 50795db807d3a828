package checkout

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/fjod/growthshop/storefront/internal/domain"
	"github.com/shopspring/decimal"
)

// ManualContactLink builds a chat deep link carrying the cart as a
// prefilled message. It is the fallback when order submission keeps failing.
// An empty cart links to base unchanged.
func ManualContactLink(base string, items []domain.LineItem, total decimal.Decimal, currency string) string {
	if base == "" || len(items) == 0 {
		return base
	}

	var b strings.Builder
	b.WriteString("Hello! I want to place an order:\n\n")
	for _, item := range items {
		fmt.Fprintf(&b, "- %s (Qty: %d) = %s%s\n", item.Name, item.Quantity, item.Subtotal().String(), currency)
	}
	fmt.Fprintf(&b, "\nGrand Total: %s%s\n\nPlease let me know the payment process.", total.String(), currency)

	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	return base + sep + "text=" + escapeText(b.String())
}

// escapeText percent-encodes like a browser's encodeURIComponent, spaces
// included.
func escapeText(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
