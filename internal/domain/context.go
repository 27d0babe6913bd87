package domain

import "context"

type contextKey string

const (
	merchantIDKey contextKey = "merchant_id"
	sessionIDKey  contextKey = "session_id"
)

// WithMerchantID stores the resolved merchant ID in the context
func WithMerchantID(ctx context.Context, merchantID string) context.Context {
	return context.WithValue(ctx, merchantIDKey, merchantID)
}

// GetMerchantIDFromContext returns the merchant ID set by the identity middleware
func GetMerchantIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(merchantIDKey).(string); ok {
		return v
	}
	return ""
}

// WithSessionID stores the widget session ID in the context
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionIDKey, sessionID)
}

// GetSessionIDFromContext returns the widget session ID, if any
func GetSessionIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(sessionIDKey).(string); ok {
		return v
	}
	return ""
}
