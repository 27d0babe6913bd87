package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/Dayzcorp/seep-global/internal/domain"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	headerMerchantID = "X-Merchant-ID"
	headerAPIKey     = "X-Api-Key"
	headerSessionID  = "X-Session-ID"
)

// MerchantResolver turns request credentials into a merchant ID
type MerchantResolver interface {
	ResolveMerchantID(ctx context.Context, merchantID, apiKey string) (string, error)
}

// accessLog writes one structured line per request
func accessLog(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				logger.Info().
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Int("status", ww.Status()).
					Int("bytes", ww.BytesWritten()).
					Dur("duration", time.Since(start)).
					Str("requestId", middleware.GetReqID(r.Context())).
					Msg("HTTP request")
			}()
			next.ServeHTTP(ww, r)
		})
	}
}

// merchantIdentity resolves X-Merchant-ID or X-Api-Key into the request context
// and assigns a widget session ID when the client did not send one.
func merchantIdentity(merchants MerchantResolver, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			merchantID, err := merchants.ResolveMerchantID(r.Context(),
				r.Header.Get(headerMerchantID),
				r.Header.Get(headerAPIKey),
			)
			if err != nil {
				logger.Warn().Err(err).Str("path", r.URL.Path).Msg("Failed to resolve merchant identity")
				writeError(w, err)
				return
			}

			sessionID := strings.TrimSpace(r.Header.Get(headerSessionID))
			if sessionID == "" {
				sessionID = uuid.NewString()
			}
			w.Header().Set(headerSessionID, sessionID)

			ctx := domain.WithMerchantID(r.Context(), merchantID)
			ctx = domain.WithSessionID(ctx, sessionID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// requireAPIKey guards dashboard routes. The widget only knows the public
// merchant ID, so those routes need the secret key of the resolved merchant.
func requireAPIKey(merchants MerchantResolver, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			apiKey := strings.TrimSpace(r.Header.Get(headerAPIKey))
			if apiKey == "" {
				writeError(w, domain.ErrAPIKeyRequired)
				return
			}

			keyOwner, err := merchants.ResolveMerchantID(r.Context(), "", apiKey)
			if err != nil {
				writeError(w, err)
				return
			}
			if merchantID := domain.GetMerchantIDFromContext(r.Context()); keyOwner != merchantID {
				logger.Warn().
					Str("merchantId", merchantID).
					Str("path", r.URL.Path).
					Msg("API key belongs to another merchant")
				writeError(w, domain.ErrAPIKeyMismatch)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}
