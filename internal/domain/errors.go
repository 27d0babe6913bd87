package domain

import (
	"errors"
	"fmt"
)

var (
	// Rejected at the chat boundary
	ErrMissingMerchant       = errors.New("merchant identity is required")
	ErrMissingMessage        = errors.New("message is required")
	ErrUnauthorizedWidget    = errors.New("widget origin is not allowed for this merchant")
	ErrQuotaExceeded         = errors.New("monthly token quota exceeded")
	ErrProviderNotConfigured = errors.New("llm provider is not configured")

	// Rejected on dashboard routes
	ErrAPIKeyRequired = errors.New("X-Api-Key header is required")
	ErrAPIKeyMismatch = errors.New("api key does not belong to this merchant")

	ErrMerchantNotFound = errors.New("merchant not found")
	ErrUnsupportedStore = errors.New("unsupported store type")
	ErrSyncInProgress   = errors.New("product sync already in progress")
	ErrSyncQueueFull    = errors.New("product sync queue is full")
)

// SyncErrorKind classifies catalog sync failures
type SyncErrorKind string

const (
	SyncErrorNetwork SyncErrorKind = "network"
	SyncErrorParse   SyncErrorKind = "parse"
	SyncErrorConfig  SyncErrorKind = "config"
)

// SyncError is returned by every failed catalog fetch
type SyncError struct {
	Kind   SyncErrorKind
	Source StoreType
	Err    error
}

func (e *SyncError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("%s sync error: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s sync error (%s): %v", e.Kind, e.Source, e.Err)
}

func (e *SyncError) Unwrap() error {
	return e.Err
}

// NewSyncError wraps err as a SyncError of the given kind
func NewSyncError(kind SyncErrorKind, source StoreType, err error) *SyncError {
	return &SyncError{Kind: kind, Source: source, Err: err}
}

// ProviderErrorKind classifies LLM provider failures
type ProviderErrorKind int

const (
	ProviderErrorOther ProviderErrorKind = iota
	ProviderErrorAuth
	ProviderErrorRateLimit
)

func (k ProviderErrorKind) String() string {
	switch k {
	case ProviderErrorAuth:
		return "auth"
	case ProviderErrorRateLimit:
		return "rate_limit"
	default:
		return "other"
	}
}

// Sentinel returns the fixed user-visible text for the failure kind
func (k ProviderErrorKind) Sentinel() string {
	switch k {
	case ProviderErrorAuth:
		return "[Invalid API key]"
	case ProviderErrorRateLimit:
		return "[Rate limit exceeded]"
	default:
		return "[Error fetching response]"
	}
}

// ProviderError is produced by LLM providers instead of raw transport errors
type ProviderError struct {
	Kind ProviderErrorKind
	Err  error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("llm provider error (%s): %v", e.Kind, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// ProviderErrorKindOf returns the kind of a provider error, or Other for anything else
func ProviderErrorKindOf(err error) ProviderErrorKind {
	var perr *ProviderError
	if errors.As(err, &perr) {
		return perr.Kind
	}
	return ProviderErrorOther
}
