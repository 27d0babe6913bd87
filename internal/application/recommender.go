package application

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Dayzcorp/seep-global/internal/domain"
)

const (
	recommendThreshold = 0.2
	maxRecommendations = 3
	fallbackProducts   = 5
	bestsellerCount    = 3
)

// NoProductsMessage is returned instead of an LLM call when a product question hits an empty catalog
const NoProductsMessage = "Sorry, I couldn't detect any products yet. Please check back once the store catalog has been synced."

var productKeywords = []string{"product", "price", "item"}

// FastPathKind names the shortcut that answered a message
type FastPathKind string

const (
	FastPathBestseller FastPathKind = "bestseller"
	FastPathPrice      FastPathKind = "price"
	FastPathNoProducts FastPathKind = "no_products"
)

// ProductRecommender ranks catalog entries against a message
type ProductRecommender struct{}

// NewProductRecommender creates a new product recommender
func NewProductRecommender() *ProductRecommender {
	return &ProductRecommender{}
}

type scoredProduct struct {
	product domain.Product
	score   float64
}

// BuildContext returns the grounding text for the LLM and, when suggestions
// matched, a preview block to append to the reply.
func (r *ProductRecommender) BuildContext(message string, products []domain.Product, suggestEnabled bool) (contextText, previewText string) {
	if len(products) == 0 {
		return "", ""
	}

	if suggestEnabled {
		matches := r.rank(message, products)
		if len(matches) > 0 {
			lines := make([]string, 0, len(matches))
			for _, p := range matches {
				lines = append(lines, productLine(p))
			}
			body := strings.Join(lines, "\n")
			return body, "\n\nSuggested products:\n" + body
		}
	}

	n := len(products)
	if n > fallbackProducts {
		n = fallbackProducts
	}
	lines := make([]string, 0, n)
	for _, p := range products[:n] {
		lines = append(lines, productLine(p))
	}
	return strings.Join(lines, "\n"), ""
}

func (r *ProductRecommender) rank(message string, products []domain.Product) []domain.Product {
	msg := strings.ToLower(message)
	scored := make([]scoredProduct, 0, len(products))
	for _, p := range products {
		text := strings.ToLower(p.Title + " " + p.Description)
		scored = append(scored, scoredProduct{product: p, score: similarity(msg, text)})
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})

	var out []domain.Product
	for _, s := range scored {
		if s.score <= recommendThreshold || len(out) == maxRecommendations {
			break
		}
		out = append(out, s.product)
	}
	return out
}

// FastPath answers catalog questions that need no LLM call
func (r *ProductRecommender) FastPath(message string, products []domain.Product) (string, FastPathKind, bool) {
	msg := strings.ToLower(message)

	if len(products) > 0 {
		if strings.Contains(msg, "bestseller") {
			n := len(products)
			if n > bestsellerCount {
				n = bestsellerCount
			}
			titles := make([]string, 0, n)
			for _, p := range products[:n] {
				titles = append(titles, p.Title)
			}
			return strings.Join(titles, ", "), FastPathBestseller, true
		}
		if strings.Contains(msg, "price of") {
			for _, p := range products {
				// Products without a price fall through to the LLM
				title := strings.ToLower(strings.TrimSpace(p.Title))
				if title != "" && strings.TrimSpace(p.Price) != "" && strings.Contains(msg, title) {
					return p.Price, FastPathPrice, true
				}
			}
		}
		return "", "", false
	}

	for _, kw := range productKeywords {
		if strings.Contains(msg, kw) {
			return NoProductsMessage, FastPathNoProducts, true
		}
	}
	return "", "", false
}

func productLine(p domain.Product) string {
	return fmt.Sprintf("- %s (%s): %s", p.Title, p.Price, p.URL)
}
