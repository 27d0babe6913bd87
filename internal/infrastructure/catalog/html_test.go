package catalog

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/Dayzcorp/seep-global/internal/domain"

	"github.com/rs/zerolog"
)

type storefrontSite struct {
	mu      sync.Mutex
	visited map[string]int
}

func (s *storefrontSite) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.visited[r.URL.Path]++
	s.mu.Unlock()

	base := "http://" + r.Host
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	switch r.URL.Path {
	case "/":
		fmt.Fprintf(w, `<html><head>
<script type="application/ld+json">
{"@context": "https://schema.org", "@graph": [
  {"@type": "WebSite", "name": "Lamp Shop"},
  {"@type": "Product", "name": "Desk Lamp", "description": "<b>Bright</b> light",
   "url": "%s/products/lamp", "image": {"url": "%s/lamp.jpg"},
   "offers": {"@type": "Offer", "price": 12, "priceCurrency": "USD"}}
]}
</script>
</head><body>
<a href="https://elsewhere.test/products/x">partner</a>
<a href="/about">About</a>
<a href="/products/a">A</a>
<a href="/products/a">A again</a>
<a href="/products/b">B</a>
<a href="/products/c">C</a>
<a href="/products/d">D</a>
</body></html>`, base, base)
	case "/products/a":
		io.WriteString(w, `<html><head>
<meta property="og:title" content="Reading Lamp">
<meta property="og:description" content="Warm &amp; dimmable">
<meta property="og:image" content="https://cdn.test/reading.jpg">
<meta property="product:price:amount" content="30">
</head><body></body></html>`)
	case "/products/b":
		fmt.Fprintf(w, `<html><head>
<script type="application/ld+json">{"@type": ["Product"], "name": "Desk Lamp", "url": "%s/products/lamp"}</script>
</head><body></body></html>`, base)
	case "/products/c":
		http.NotFound(w, r)
	default:
		io.WriteString(w, `<html><head><meta property="og:title" content="Unexpected"></head></html>`)
	}
}

func TestHTMLSource_FetchProducts(t *testing.T) {
	site := &storefrontSite{visited: map[string]int{}}
	srv := httptest.NewServer(site)
	defer srv.Close()

	source := NewHTMLSource(testOptions(), zerolog.Nop())
	products, err := source.FetchProducts(context.Background(), &domain.Merchant{ID: "m1", StoreDomain: srv.URL})
	if err != nil {
		t.Fatalf("FetchProducts: %v", err)
	}

	want := []domain.Product{
		{
			Title:       "Desk Lamp",
			Description: "Bright light",
			Price:       "12.00",
			ImageURL:    srv.URL + "/lamp.jpg",
			URL:         srv.URL + "/products/lamp",
		},
		{
			Title:       "Reading Lamp",
			Description: "Warm & dimmable",
			Price:       "30.00",
			ImageURL:    "https://cdn.test/reading.jpg",
			URL:         srv.URL + "/products/a",
		},
	}
	if len(products) != len(want) {
		t.Fatalf("expected %d products, got %d: %+v", len(want), len(products), products)
	}
	for i := range want {
		if products[i] != want[i] {
			t.Errorf("product %d: expected %+v, got %+v", i, want[i], products[i])
		}
	}

	site.mu.Lock()
	defer site.mu.Unlock()
	if site.visited["/products/a"] != 1 {
		t.Errorf("expected /products/a to be crawled once, got %d", site.visited["/products/a"])
	}
	if site.visited["/products/d"] != 0 {
		t.Error("expected crawl to stop after three product links")
	}
	if site.visited["/about"] != 0 {
		t.Error("expected non product links to be ignored")
	}
}

func TestHTMLSource_ProductsWithoutTopLevelURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprintf(w, `<html><head>
<script type="application/ld+json">
[{"@type": "Product", "name": "Red Shoe", "offers": {"price": "40", "url": "%s/products/red-shoe"}},
 {"@type": "Product", "name": "Blue Shoe", "offers": [{"price": "45", "url": "/products/blue-shoe"}]}]
</script>
</head><body></body></html>`, "http://"+r.Host)
	}))
	defer srv.Close()

	products, err := NewHTMLSource(testOptions(), zerolog.Nop()).FetchProducts(context.Background(), &domain.Merchant{StoreDomain: srv.URL})
	if err != nil {
		t.Fatalf("FetchProducts: %v", err)
	}
	if len(products) != 2 {
		t.Fatalf("expected 2 products, got %d: %+v", len(products), products)
	}
	if products[0].URL != srv.URL+"/products/red-shoe" {
		t.Errorf("unexpected first URL %q", products[0].URL)
	}
	if products[1].URL != srv.URL+"/products/blue-shoe" {
		t.Errorf("unexpected second URL %q", products[1].URL)
	}
}

func TestJSONLDProductURL(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"url wins", `{"@type": "Product", "url": "https://shop.test/a", "@id": "https://shop.test/b", "offers": {"url": "https://shop.test/c"}}`, "https://shop.test/a"},
		{"offer url", `{"@type": "Product", "@id": "https://shop.test/b", "offers": {"url": "https://shop.test/c"}}`, "https://shop.test/c"},
		{"id", `{"@type": "Product", "@id": "https://shop.test/b#product"}`, "https://shop.test/b#product"},
		{"relative", `{"@type": "Product", "url": "/products/mug"}`, "https://shop.test/products/mug"},
		{"page fallback", `{"@type": "Product"}`, "https://shop.test/p"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseJSONLD([]byte(tt.input), "https://shop.test/p")
			if err != nil {
				t.Fatalf("parseJSONLD: %v", err)
			}
			if len(got) != 1 {
				t.Fatalf("expected 1 product, got %d", len(got))
			}
			if got[0].URL != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got[0].URL)
			}
		})
	}
}

func TestHTMLSource_RootUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewHTMLSource(testOptions(), zerolog.Nop()).FetchProducts(context.Background(), &domain.Merchant{StoreDomain: srv.URL})
	requireSyncError(t, err, domain.SyncErrorNetwork)
}

func TestHTMLSource_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewHTMLSource(testOptions(), zerolog.Nop()).FetchProducts(ctx, &domain.Merchant{StoreDomain: "shop.test"})
	requireSyncError(t, err, domain.SyncErrorNetwork)
}

func TestParseJSONLD(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"single product", `{"@type": "Product", "name": "Mug"}`, []string{"Mug"}},
		{"list", `[{"@type": "Product", "name": "Mug"}, {"@type": "Offer"}, {"@type": "Product", "name": "Cup"}]`, []string{"Mug", "Cup"}},
		{"graph", `{"@graph": [{"@type": "Organization"}, {"@type": "Product", "name": "Bowl"}]}`, []string{"Bowl"}},
		{"no products", `{"@type": "BreadcrumbList"}`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseJSONLD([]byte(tt.input), "https://shop.test/p")
			if err != nil {
				t.Fatalf("parseJSONLD: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("expected %d products, got %d", len(tt.want), len(got))
			}
			for i, title := range tt.want {
				if got[i].Title != title {
					t.Errorf("expected %q, got %q", title, got[i].Title)
				}
				if got[i].URL != "https://shop.test/p" {
					t.Errorf("expected page URL fallback, got %q", got[i].URL)
				}
			}
		})
	}

	if _, err := parseJSONLD([]byte(`{not json`), ""); err == nil {
		t.Error("expected error for malformed json-ld")
	}
}
