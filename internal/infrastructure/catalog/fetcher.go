package catalog

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Dayzcorp/seep-global/internal/domain"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
)

const (
	// DefaultTimeout bounds every outbound catalog request
	DefaultTimeout = 10 * time.Second

	// FirstN is how many products a store API sync takes
	FirstN = 10

	maxBodyBytes = 5 << 20
	userAgent    = "SeepCatalogBot/1.0 (+https://seep.global)"
)

// Options configures outbound catalog requests
type Options struct {
	Timeout time.Duration
	// Scheme is "https" in production; tests point sources at plain http servers
	Scheme       string
	MaxRetries   uint64
	RetryBackoff time.Duration
}

// DefaultOptions returns production settings
func DefaultOptions() Options {
	return Options{
		Timeout:      DefaultTimeout,
		Scheme:       "https",
		MaxRetries:   2,
		RetryBackoff: 500 * time.Millisecond,
	}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.Timeout <= 0 {
		o.Timeout = def.Timeout
	}
	if o.Scheme == "" {
		o.Scheme = def.Scheme
	}
	if o.RetryBackoff <= 0 {
		o.RetryBackoff = def.RetryBackoff
	}
	return o
}

// fetcher performs bounded, retried HTTP calls and converts failures to SyncError
type fetcher struct {
	client *http.Client
	opts   Options
	source domain.StoreType
	logger zerolog.Logger
}

func newFetcher(opts Options, source domain.StoreType, logger zerolog.Logger) *fetcher {
	opts = opts.withDefaults()
	return &fetcher{
		client: &http.Client{Timeout: opts.Timeout},
		opts:   opts,
		source: source,
		logger: logger,
	}
}

// baseURL builds scheme://host[:port] from a configured store domain
func (f *fetcher) baseURL(storeDomain string) (string, error) {
	raw := strings.TrimSpace(storeDomain)
	if raw == "" {
		return "", f.configError(fmt.Errorf("store domain is not configured"))
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "", f.configError(fmt.Errorf("invalid store domain %q", storeDomain))
	}
	return f.opts.Scheme + "://" + strings.ToLower(u.Host), nil
}

// do runs the request built by build, retrying network errors and 5xx responses
func (f *fetcher) do(ctx context.Context, build func(ctx context.Context) (*http.Request, error)) ([]byte, error) {
	var body []byte

	op := func() error {
		req, err := build(ctx)
		if err != nil {
			return backoff.Permanent(f.configError(fmt.Errorf("failed to build request: %w", err)))
		}
		req.Header.Set("User-Agent", userAgent)

		resp, err := f.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(f.networkError(ctx.Err()))
			}
			return f.networkError(err)
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
		if err != nil {
			return f.networkError(fmt.Errorf("failed to read response: %w", err))
		}

		switch {
		case resp.StatusCode >= 500:
			return f.networkError(fmt.Errorf("%s returned status %d", req.URL.Host, resp.StatusCode))
		case resp.StatusCode >= 400:
			return backoff.Permanent(f.networkError(fmt.Errorf("%s returned status %d", req.URL.Host, resp.StatusCode)))
		}

		body = data
		return nil
	}

	expo := backoff.NewExponentialBackOff()
	expo.InitialInterval = f.opts.RetryBackoff
	expo.MaxElapsedTime = 3 * f.opts.Timeout
	bo := backoff.WithContext(backoff.WithMaxRetries(expo, f.opts.MaxRetries), ctx)

	notify := func(err error, wait time.Duration) {
		f.logger.Warn().Err(err).Str("storeType", string(f.source)).Dur("retryIn", wait).Msg("Catalog request failed, retrying")
	}
	if err := backoff.RetryNotify(op, bo, notify); err != nil {
		return nil, f.asSyncError(err)
	}
	return body, nil
}

func (f *fetcher) asSyncError(err error) error {
	if se, ok := err.(*domain.SyncError); ok {
		return se
	}
	return f.networkError(err)
}

func (f *fetcher) networkError(err error) *domain.SyncError {
	return domain.NewSyncError(domain.SyncErrorNetwork, f.source, err)
}

func (f *fetcher) parseError(err error) *domain.SyncError {
	return domain.NewSyncError(domain.SyncErrorParse, f.source, err)
}

func (f *fetcher) configError(err error) *domain.SyncError {
	return domain.NewSyncError(domain.SyncErrorConfig, f.source, err)
}
