package application

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Dayzcorp/seep-global/internal/domain"
	"github.com/Dayzcorp/seep-global/internal/ports"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	// DefaultSystemPrompt is the assistant persona sent with every completion
	DefaultSystemPrompt = "You are Seep, a smart and helpful assistant."

	// DegradedCatalogNotice replaces the product list when the catalog is missing or stale
	DegradedCatalogNotice = "The store's product catalog is unavailable or has not been synced in the last 7 days. " +
		"Answer general questions and invite the customer to browse the store for current products."

	catalogMaxAge    = 7 * 24 * time.Hour
	finalizeTimeout  = 5 * time.Second
	outcomeSuccess   = "success"
	outcomeFailure   = "failure"
	sourceLLM        = "llm"
	sourceFaq        = "faq"
	markupCharacters = "*`"
)

var cartKeywords = []string{"cart", "checkout"}

// ChatRequest is one inbound widget message
type ChatRequest struct {
	MerchantID string
	SessionID  string
	Message    string
	Referer    string
}

// ChatService orchestrates a chat turn: identity, quota, FAQ, fast paths,
// product context, streamed completion and accounting.
type ChatService struct {
	merchants   ports.MerchantRepository
	products    ports.ProductRepository
	ledger      *UsageLedger
	faqs        *FaqMatcher
	recommender *ProductRecommender
	provider    ports.LLMProvider
	sessions    ports.SessionStore
	chatLogs    ports.ChatLogRepository
	outcomes    ports.OutcomeCounter
	metrics     ports.Metrics

	systemPrompt string
	now          func() time.Time
	logger       zerolog.Logger
}

// ChatDeps groups the collaborators of ChatService
type ChatDeps struct {
	Merchants   ports.MerchantRepository
	Products    ports.ProductRepository
	Ledger      *UsageLedger
	Faqs        *FaqMatcher
	Recommender *ProductRecommender
	Provider    ports.LLMProvider
	Sessions    ports.SessionStore
	ChatLogs    ports.ChatLogRepository
	Outcomes    ports.OutcomeCounter
	Metrics     ports.Metrics
}

// NewChatService creates a new chat orchestrator. Provider may be nil, in which
// case requests that need the LLM fail with domain.ErrProviderNotConfigured.
func NewChatService(deps ChatDeps, logger zerolog.Logger) *ChatService {
	if deps.Recommender == nil {
		deps.Recommender = NewProductRecommender()
	}
	return &ChatService{
		merchants:    deps.Merchants,
		products:     deps.Products,
		ledger:       deps.Ledger,
		faqs:         deps.Faqs,
		recommender:  deps.Recommender,
		provider:     deps.Provider,
		sessions:     deps.Sessions,
		chatLogs:     deps.ChatLogs,
		outcomes:     deps.Outcomes,
		metrics:      deps.Metrics,
		systemPrompt: DefaultSystemPrompt,
		now:          time.Now,
		logger:       logger,
	}
}

// ChatSession is an opened chat turn ready to stream.
// Stream must be called exactly once; accounting runs when it returns.
type ChatSession struct {
	svc      *ChatService
	req      ChatRequest
	merchant *domain.Merchant

	canned     string
	hasCanned  bool
	source     string
	completion ports.CompletionRequest
	preview    string

	once sync.Once
}

// Open runs every check that can reject the request before any output is written
func (s *ChatService) Open(ctx context.Context, req ChatRequest) (*ChatSession, error) {
	req.MerchantID = strings.TrimSpace(req.MerchantID)
	if req.MerchantID == "" {
		return nil, domain.ErrMissingMerchant
	}
	if strings.TrimSpace(req.Message) == "" {
		return nil, domain.ErrMissingMessage
	}

	log := s.logger.With().Str("merchantId", req.MerchantID).Str("sessionId", req.SessionID).Logger()

	merchant, err := s.merchants.GetByID(ctx, req.MerchantID)
	if err != nil {
		return nil, fmt.Errorf("failed to get merchant: %w", err)
	}
	if merchant == nil {
		return nil, domain.ErrMerchantNotFound
	}

	if !merchant.AllowsOrigin(req.Referer) {
		log.Warn().Str("referer", req.Referer).Str("storeDomain", merchant.StoreDomain).Msg("Widget origin rejected")
		return nil, domain.ErrUnauthorizedWidget
	}

	if _, _, err := s.ledger.CheckQuota(ctx, merchant.ID, merchant.Plan); err != nil {
		return nil, err
	}

	session := &ChatSession{svc: s, req: req, merchant: merchant, source: sourceLLM}
	msg := strings.ToLower(req.Message)

	if containsAny(msg, cartKeywords) && req.SessionID != "" && s.sessions != nil {
		if err := s.sessions.MarkAbandonedCart(ctx, merchant.ID, req.SessionID, s.now()); err != nil {
			log.Warn().Err(err).Msg("Failed to flag abandoned cart")
		}
	}

	if s.faqs != nil {
		answer, ok, err := s.faqs.Match(ctx, req.Message)
		if err != nil {
			log.Warn().Err(err).Msg("FAQ lookup failed, continuing without it")
		} else if ok {
			s.fastPathHit(sourceFaq)
			session.answer(sourceFaq, answer)
			return session, nil
		}
	}

	products, err := s.products.ListByMerchant(ctx, merchant.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	if answer, kind, ok := s.recommender.FastPath(req.Message, products); ok {
		s.fastPathHit(string(kind))
		session.answer(string(kind), answer)
		return session, nil
	}

	if s.provider == nil {
		return nil, domain.ErrProviderNotConfigured
	}

	contextText, preview := s.recommender.BuildContext(req.Message, products, merchant.SuggestProducts)
	session.preview = preview
	session.completion = ports.CompletionRequest{
		System:  s.systemPrompt,
		Context: s.buildContext(merchant, products, contextText),
		Message: req.Message,
	}
	return session, nil
}

func (s *ChatService) buildContext(merchant *domain.Merchant, products []domain.Product, contextText string) string {
	if len(products) == 0 {
		return DegradedCatalogNotice
	}
	available := "Available products:\n" + contextText
	if merchant.CatalogStale(s.now(), catalogMaxAge) {
		return DegradedCatalogNotice + "\n\n" + available
	}
	return available
}

func (s *ChatService) fastPathHit(kind string) {
	if s.metrics != nil {
		s.metrics.FastPathHit(kind)
	}
}

func (cs *ChatSession) answer(source, text string) {
	cs.source = source
	cs.canned = text
	cs.hasCanned = true
}

// Source reports what produced the reply: "llm", "faq" or a fast path kind
func (cs *ChatSession) Source() string {
	return cs.source
}

// Stream forwards the reply to emit fragment by fragment. Accounting is
// finalized exactly once on every exit path, including caller disconnects.
// Provider failures are reported to the caller as sentinel text, not as an error.
func (cs *ChatSession) Stream(ctx context.Context, emit func(string) error) error {
	var (
		reply   strings.Builder
		success = true
	)
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer func() {
		cs.once.Do(func() { cs.finalize(ctx, reply.String(), success) })
	}()

	if cs.hasCanned {
		if err := emit(cs.canned); err != nil {
			success = false
			return err
		}
		reply.WriteString(cs.canned)
		return nil
	}

	events, err := cs.svc.provider.Stream(ctx, cs.completion)
	if err != nil {
		success = false
		return cs.fail(emit, err)
	}

	for {
		select {
		case <-ctx.Done():
			success = false
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				// Providers also close the channel on cancellation
				if err := ctx.Err(); err != nil {
					success = false
					return err
				}
				if cs.preview != "" {
					if err := emit(cs.preview); err != nil {
						success = false
						return err
					}
					reply.WriteString(cs.preview)
				}
				return nil
			}
			if ev.Err != nil {
				success = false
				return cs.fail(emit, ev.Err)
			}
			text := stripMarkup(ev.Text)
			if text == "" {
				continue
			}
			if err := emit(text); err != nil {
				success = false
				return err
			}
			reply.WriteString(text)
		}
	}
}

func (cs *ChatSession) fail(emit func(string) error, err error) error {
	kind := domain.ProviderErrorKindOf(err)
	cs.svc.logger.Error().Err(err).
		Str("merchantId", cs.merchant.ID).
		Str("kind", kind.String()).
		Msg("LLM provider failed")
	return emit(kind.Sentinel())
}

func (cs *ChatSession) finalize(ctx context.Context, reply string, success bool) {
	s := cs.svc
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), finalizeTimeout)
	defer cancel()

	log := s.logger.With().Str("merchantId", cs.merchant.ID).Str("sessionId", cs.req.SessionID).Logger()
	tokens := domain.WordCount(reply)

	if err := s.ledger.Record(ctx, cs.merchant.ID, tokens); err != nil {
		log.Error().Err(err).Msg("Failed to record usage")
	}

	if s.chatLogs != nil {
		entry := &domain.ChatLogEntry{
			ID:             uuid.NewString(),
			MerchantID:     cs.merchant.ID,
			SessionID:      cs.req.SessionID,
			Timestamp:      s.now().UTC(),
			UserMessage:    cs.req.Message,
			AssistantReply: reply,
			Success:        success,
		}
		if err := s.chatLogs.Append(ctx, entry); err != nil {
			log.Error().Err(err).Msg("Failed to append chat log")
		}
	}

	if s.outcomes != nil {
		if err := s.outcomes.RecordOutcome(ctx, success); err != nil {
			log.Error().Err(err).Msg("Failed to record chat outcome")
		}
	}

	outcome := outcomeSuccess
	if !success {
		outcome = outcomeFailure
	}
	if s.metrics != nil {
		s.metrics.ChatCompleted(outcome)
	}

	log.Info().
		Str("source", cs.source).
		Str("outcome", outcome).
		Int64("tokens", tokens).
		Msg("Chat completed")
}

// AbandonedCarts lists sessions flagged in the given window
func (s *ChatService) AbandonedCarts(ctx context.Context, merchantID string, window time.Duration) ([]domain.CartSession, error) {
	if s.sessions == nil {
		return nil, nil
	}
	carts, err := s.sessions.ListAbandonedCarts(ctx, merchantID, s.now().Add(-window))
	if err != nil {
		return nil, fmt.Errorf("failed to list abandoned carts: %w", err)
	}
	return carts, nil
}

// OutcomeTotals returns the global success/failure counters
func (s *ChatService) OutcomeTotals(ctx context.Context) (domain.OutcomeTotals, error) {
	if s.outcomes == nil {
		return domain.OutcomeTotals{}, nil
	}
	totals, err := s.outcomes.Totals(ctx)
	if err != nil {
		return domain.OutcomeTotals{}, fmt.Errorf("failed to get outcome totals: %w", err)
	}
	return totals, nil
}

func stripMarkup(s string) string {
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(markupCharacters, r) {
			return -1
		}
		return r
	}, s)
}

func containsAny(s string, substrings []string) bool {
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
