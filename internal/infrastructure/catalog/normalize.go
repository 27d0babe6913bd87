package catalog

import (
	"fmt"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/shopspring/decimal"
)

var textPolicy = bluemonday.StrictPolicy()

// cleanText strips markup from a scraped field and collapses whitespace
func cleanText(s string) string {
	if s == "" {
		return ""
	}
	return strings.Join(strings.Fields(html.UnescapeString(textPolicy.Sanitize(s))), " ")
}

// normalizePrice renders numeric prices with two decimals and keeps anything else as given
func normalizePrice(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return raw
	}
	return d.StringFixed(2)
}

// priceString accepts the loose price shapes found in JSON payloads
func priceString(v interface{}) string {
	switch p := v.(type) {
	case nil:
		return ""
	case string:
		return normalizePrice(p)
	case float64:
		return decimal.NewFromFloat(p).StringFixed(2)
	case decimal.Decimal:
		return p.StringFixed(2)
	case *decimal.Decimal:
		if p == nil {
			return ""
		}
		return p.StringFixed(2)
	default:
		return normalizePrice(fmt.Sprint(p))
	}
}
