package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/Dayzcorp/seep-global/internal/domain"

	"github.com/gocolly/colly/v2"
	"github.com/rs/zerolog"
)

// maxProductLinks is how many same-site product pages are crawled after the store root
const maxProductLinks = 3

// HTMLSource scrapes products from a storefront's HTML using JSON-LD and OpenGraph
type HTMLSource struct {
	fetch  *fetcher
	logger zerolog.Logger
}

// NewHTMLSource creates a custom-HTML product source
func NewHTMLSource(opts Options, logger zerolog.Logger) *HTMLSource {
	return &HTMLSource{
		fetch:  newFetcher(opts, domain.StoreTypeCustomHTML, logger),
		logger: logger,
	}
}

func (s *HTMLSource) StoreType() domain.StoreType {
	return domain.StoreTypeCustomHTML
}

type pageResult struct {
	products []domain.Product
	links    []string
}

func (s *HTMLSource) FetchProducts(ctx context.Context, merchant *domain.Merchant) ([]domain.Product, error) {
	base, err := s.fetch.baseURL(merchant.StoreDomain)
	if err != nil {
		return nil, err
	}
	root := base + "/"

	page, err := s.scrape(ctx, root)
	if err != nil {
		return nil, err
	}
	products := page.products

	rootURL, _ := url.Parse(root)
	crawled := 0
	for _, link := range page.links {
		if crawled == maxProductLinks {
			break
		}
		if ctx.Err() != nil {
			return nil, s.fetch.networkError(ctx.Err())
		}
		if !sameSite(rootURL, link) {
			continue
		}
		crawled++

		sub, err := s.scrape(ctx, link)
		if err != nil {
			s.logger.Warn().Err(err).Str("merchantId", merchant.ID).Str("url", link).Msg("Skipping product page")
			continue
		}
		products = append(products, sub.products...)
	}

	products = domain.DedupeByURL(products)
	s.logger.Debug().
		Str("merchantId", merchant.ID).
		Int("pages", crawled+1).
		Int("count", len(products)).
		Msg("Scraped storefront products")
	return products, nil
}

// scrape visits one page with a fresh collector and extracts its products and product links
func (s *HTMLSource) scrape(ctx context.Context, pageURL string) (*pageResult, error) {
	if ctx.Err() != nil {
		return nil, s.fetch.networkError(ctx.Err())
	}

	c := colly.NewCollector(
		colly.UserAgent(userAgent),
		colly.AllowURLRevisit(),
		colly.MaxBodySize(maxBodyBytes),
	)
	c.SetRequestTimeout(s.fetch.opts.Timeout)

	var (
		ldProducts []domain.Product
		og         = map[string]string{}
		links      []string
		seenLinks  = map[string]bool{}
		parseErr   error
	)

	c.OnHTML(`script[type="application/ld+json"]`, func(e *colly.HTMLElement) {
		found, err := parseJSONLD([]byte(e.Text), e.Request.URL.String())
		if err != nil {
			parseErr = err
			return
		}
		ldProducts = append(ldProducts, found...)
	})

	c.OnHTML("meta[property]", func(e *colly.HTMLElement) {
		prop := strings.ToLower(e.Attr("property"))
		if _, ok := og[prop]; !ok {
			og[prop] = e.Attr("content")
		}
	})

	c.OnHTML("a[href]", func(e *colly.HTMLElement) {
		href := e.Attr("href")
		if !strings.Contains(strings.ToLower(href), "product") {
			return
		}
		abs := e.Request.AbsoluteURL(href)
		if abs == "" || abs == pageURL || seenLinks[abs] {
			return
		}
		seenLinks[abs] = true
		links = append(links, abs)
	})

	if err := c.Visit(pageURL); err != nil {
		return nil, s.fetch.networkError(fmt.Errorf("failed to fetch %s: %w", pageURL, err))
	}

	if len(ldProducts) == 0 && parseErr != nil {
		s.logger.Debug().Err(parseErr).Str("url", pageURL).Msg("Unreadable JSON-LD block")
	}

	products := ldProducts
	if len(products) == 0 {
		if p, ok := openGraphProduct(og, pageURL); ok {
			products = []domain.Product{p}
		}
	}
	return &pageResult{products: products, links: links}, nil
}

// parseJSONLD collects every Product entity in a JSON-LD block, including @graph members
func parseJSONLD(data []byte, pageURL string) ([]domain.Product, error) {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode json-ld: %w", err)
	}

	var out []domain.Product
	var walk func(v interface{})
	walk = func(v interface{}) {
		switch node := v.(type) {
		case []interface{}:
			for _, item := range node {
				walk(item)
			}
		case map[string]interface{}:
			if graph, ok := node["@graph"]; ok {
				walk(graph)
			}
			if isProductType(node["@type"]) {
				out = append(out, jsonLDProduct(node, pageURL))
			}
		}
	}
	walk(raw)
	return out, nil
}

func isProductType(t interface{}) bool {
	switch v := t.(type) {
	case string:
		return v == "Product"
	case []interface{}:
		for _, item := range v {
			if s, ok := item.(string); ok && s == "Product" {
				return true
			}
		}
	}
	return false
}

func jsonLDProduct(node map[string]interface{}, pageURL string) domain.Product {
	p := domain.Product{
		Title:       cleanText(stringField(node["name"])),
		Description: cleanText(stringField(node["description"])),
		ImageURL:    imageField(node["image"]),
		Price:       offerPrice(node["offers"]),
	}
	// Pages often list several products that only carry offers.url or @id
	for _, candidate := range []string{stringField(node["url"]), offerURL(node["offers"]), stringField(node["@id"])} {
		if candidate != "" {
			p.URL = resolveURL(pageURL, candidate)
			break
		}
	}
	if p.URL == "" {
		p.URL = pageURL
	}
	return p
}

func offerURL(v interface{}) string {
	switch offer := v.(type) {
	case []interface{}:
		if len(offer) > 0 {
			return offerURL(offer[0])
		}
	case map[string]interface{}:
		return stringField(offer["url"])
	}
	return ""
}

func resolveURL(base, ref string) string {
	b, err := url.Parse(base)
	if err != nil {
		return ref
	}
	r, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return b.ResolveReference(r).String()
}

func stringField(v interface{}) string {
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s)
	case []interface{}:
		if len(s) > 0 {
			return stringField(s[0])
		}
	case map[string]interface{}:
		if u, ok := s["@id"]; ok {
			return stringField(u)
		}
	}
	return ""
}

func imageField(v interface{}) string {
	switch img := v.(type) {
	case string:
		return img
	case []interface{}:
		if len(img) > 0 {
			return imageField(img[0])
		}
	case map[string]interface{}:
		if u, ok := img["url"]; ok {
			return stringField(u)
		}
		if u, ok := img["contentUrl"]; ok {
			return stringField(u)
		}
	}
	return ""
}

func offerPrice(v interface{}) string {
	switch offer := v.(type) {
	case []interface{}:
		if len(offer) > 0 {
			return offerPrice(offer[0])
		}
	case map[string]interface{}:
		for _, key := range []string{"price", "lowPrice", "highPrice"} {
			if p, ok := offer[key]; ok {
				return priceString(p)
			}
		}
	}
	return ""
}

// openGraphProduct infers a single product from og:* and product:* meta tags
func openGraphProduct(og map[string]string, pageURL string) (domain.Product, bool) {
	title := cleanText(og["og:title"])
	if title == "" {
		return domain.Product{}, false
	}
	p := domain.Product{
		Title:       title,
		Description: cleanText(og["og:description"]),
		Price:       normalizePrice(og["product:price:amount"]),
		ImageURL:    strings.TrimSpace(og["og:image"]),
		URL:         strings.TrimSpace(og["og:url"]),
	}
	if p.URL == "" {
		p.URL = pageURL
	}
	return p, true
}

func sameSite(root *url.URL, link string) bool {
	u, err := url.Parse(link)
	if err != nil || root == nil {
		return false
	}
	return strings.EqualFold(u.Host, root.Host)
}
