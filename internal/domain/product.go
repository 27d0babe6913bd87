package domain

import "time"

// Product is a normalized catalog entry. (MerchantID, URL) is unique.
type Product struct {
	MerchantID  string    `json:"merchant_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Price       string    `json:"price"` // opaque, as displayed by the store
	ImageURL    string    `json:"image_url"`
	URL         string    `json:"url"`
	ScrapedAt   time.Time `json:"scraped_at"`
}

// DedupeByURL keeps the first product for each URL, preserving order.
// Products without a URL are dropped since they cannot be keyed.
func DedupeByURL(products []Product) []Product {
	seen := make(map[string]struct{}, len(products))
	out := make([]Product, 0, len(products))
	for _, p := range products {
		if p.URL == "" {
			continue
		}
		if _, ok := seen[p.URL]; ok {
			continue
		}
		seen[p.URL] = struct{}{}
		out = append(out, p)
	}
	return out
}
