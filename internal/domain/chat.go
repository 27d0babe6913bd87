package domain

import (
	"strings"
	"time"
)

// FaqEntry is a stored question/answer pair. Question is unique.
type FaqEntry struct {
	ID        string    `json:"id"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	CreatedAt time.Time `json:"created_at"`
}

// ChatLogEntry is written once per completed or failed chat request
type ChatLogEntry struct {
	ID             string    `json:"id"`
	MerchantID     string    `json:"merchant_id"`
	SessionID      string    `json:"session_id"`
	Timestamp      time.Time `json:"timestamp"`
	UserMessage    string    `json:"user_message"`
	AssistantReply string    `json:"assistant_reply"`
	Success        bool      `json:"success"`
}

// OutcomeTotals are the aggregate chat success/failure counters
type OutcomeTotals struct {
	Success int64 `json:"success"`
	Failure int64 `json:"failure"`
}

// WordCount approximates token usage by counting whitespace separated words
func WordCount(s string) int64 {
	return int64(len(strings.Fields(s)))
}
