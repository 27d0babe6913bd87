package domain

import "time"

// CartSession is a widget session flagged as an abandoned-cart candidate
type CartSession struct {
	SessionID  string    `json:"session_id"`
	MerchantID string    `json:"merchant_id"`
	FlaggedAt  time.Time `json:"flagged_at"`
}

// WebhookEvent is a verified inbound store webhook
type WebhookEvent struct {
	Topic      string
	Shop       string
	MerchantID string
	Payload    []byte
	ReceivedAt time.Time
}
