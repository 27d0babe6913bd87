package application

import (
	"context"
	"fmt"
	"strings"

	"github.com/Dayzcorp/seep-global/internal/ports"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/rs/zerolog"
)

// DefaultFaqThreshold is the similarity a question must exceed to short-circuit the LLM
const DefaultFaqThreshold = 0.6

// FaqMatcher answers messages from stored question/answer pairs
type FaqMatcher struct {
	repo      ports.FaqRepository
	threshold float64
	logger    zerolog.Logger
}

// NewFaqMatcher creates a new FAQ matcher
func NewFaqMatcher(repo ports.FaqRepository, logger zerolog.Logger) *FaqMatcher {
	return &FaqMatcher{
		repo:      repo,
		threshold: DefaultFaqThreshold,
		logger:    logger,
	}
}

// Match returns the answer of the first FAQ, in stored order, whose question
// is more similar to message than the threshold.
func (m *FaqMatcher) Match(ctx context.Context, message string) (string, bool, error) {
	faqs, err := m.repo.List(ctx)
	if err != nil {
		return "", false, fmt.Errorf("failed to list faqs: %w", err)
	}

	msg := strings.ToLower(message)
	for _, faq := range faqs {
		score := similarity(msg, strings.ToLower(faq.Question))
		if score > m.threshold {
			m.logger.Debug().
				Str("question", faq.Question).
				Float64("score", score).
				Msg("FAQ matched")
			return faq.Answer, true, nil
		}
	}
	return "", false, nil
}

// similarity is the longest-matching-block ratio of a and b, in [0,1]
func similarity(a, b string) float64 {
	return difflib.NewMatcher(strings.Split(a, ""), strings.Split(b, "")).Ratio()
}
