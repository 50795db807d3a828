package cart

import (
	"strings"

	"github.com/fjod/growthshop/storefront/internal/domain"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	labelAds          = "Ads ($)"
	labelFBFollowers  = "FB Followers"
	labelIGFollowers  = "IG Followers"
	labelVerification = "Blue Badge (Months)"
)

// ComputeTotals derives the grand total, unit count and per-category
// summaries. Summaries keep the order in which their label first appears.
func ComputeTotals(items []domain.LineItem) domain.Totals {
	totals := domain.Totals{
		GrandTotal: decimal.Zero,
		Categories: []domain.CategorySummary{},
	}
	index := make(map[string]int)

	for _, item := range items {
		totals.GrandTotal = totals.GrandTotal.Add(item.Subtotal())
		totals.ItemCount += item.Quantity

		label := SummaryLabel(item.Category, item.Platform)
		i, ok := index[label]
		if !ok {
			i = len(totals.Categories)
			index[label] = i
			totals.Categories = append(totals.Categories, domain.CategorySummary{Label: label})
		}
		totals.Categories[i].Units += item.Units()
	}

	for i := range totals.Categories {
		totals.Categories[i].Value = FormatUnits(totals.Categories[i].Units)
	}
	return totals
}

// SummaryLabel names the summary row a line item counts towards.
func SummaryLabel(category domain.Category, platform domain.Platform) string {
	switch category {
	case domain.CategoryAds:
		return labelAds
	case domain.CategoryFollowers:
		if platform == domain.PlatformFacebook {
			return labelFBFollowers
		}
		return labelIGFollowers
	case domain.CategoryVerification:
		return labelVerification
	}
	s := string(category)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// FormatUnits renders n with thousands grouping, e.g. 12000 -> "12,000".
func FormatUnits(n int64) string {
	return message.NewPrinter(language.English).Sprintf("%d", n)
}
