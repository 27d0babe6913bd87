package domain

import "time"

// UnlimitedTokens is the plan token limit meaning "no quota"
const UnlimitedTokens int64 = -1

// UsageRecord holds a merchant's counters for one calendar month
type UsageRecord struct {
	MerchantID string `json:"merchant_id"`
	Month      string `json:"month"` // YYYY-MM, UTC
	Tokens     int64  `json:"tokens"`
	Requests   int64  `json:"requests"`
}

// MonthKey returns the UTC calendar month of t as YYYY-MM
func MonthKey(t time.Time) string {
	return t.UTC().Format("2006-01")
}

// Plan is a subscription tier with a monthly token quota
type Plan struct {
	Name       string `json:"name" yaml:"name"`
	TokenLimit int64  `json:"token_limit" yaml:"token_limit"`
}

// Unlimited reports whether the plan has no token quota
func (p Plan) Unlimited() bool {
	return p.TokenLimit == UnlimitedTokens
}

// Exceeded reports whether tokensUsed has reached the plan's quota
func (p Plan) Exceeded(tokensUsed int64) bool {
	if p.Unlimited() {
		return false
	}
	return tokensUsed >= p.TokenLimit
}
