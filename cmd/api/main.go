package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Dayzcorp/seep-global/internal/application"
	"github.com/Dayzcorp/seep-global/internal/application/webhook_handlers"
	"github.com/Dayzcorp/seep-global/internal/config"
	"github.com/Dayzcorp/seep-global/internal/infrastructure/api"
	"github.com/Dayzcorp/seep-global/internal/infrastructure/cache"
	"github.com/Dayzcorp/seep-global/internal/infrastructure/catalog"
	"github.com/Dayzcorp/seep-global/internal/infrastructure/llm"
	"github.com/Dayzcorp/seep-global/internal/infrastructure/metrics"
	"github.com/Dayzcorp/seep-global/internal/infrastructure/repository"
	"github.com/Dayzcorp/seep-global/internal/infrastructure/repository/memory"
	shopifyinfra "github.com/Dayzcorp/seep-global/internal/infrastructure/shopify"
	"github.com/Dayzcorp/seep-global/internal/ports"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// stores groups the persistence adapters selected by STORE_BACKEND
type stores struct {
	merchants ports.MerchantRepository
	products  ports.ProductRepository
	usage     ports.UsageRepository
	faqs      ports.FaqRepository
	chatLogs  ports.ChatLogRepository
	close     func(ctx context.Context) error
}

// caches groups the session, lock and outcome adapters
type caches struct {
	sessions ports.SessionStore
	locks    ports.SyncLock
	outcomes ports.OutcomeCounter
	close    func() error
}

func main() {
	// Initialize logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if err := godotenv.Load(); err != nil {
		logger.Warn().Msg(".env file not found")
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("Invalid configuration")
	}
	if level, err := zerolog.ParseLevel(cfg.Log.Level); err == nil {
		logger = logger.Level(level)
	} else {
		logger.Warn().Str("level", cfg.Log.Level).Msg("Unknown log level, using info")
		logger = logger.Level(zerolog.InfoLevel)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := setupStores(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize storage")
	}

	cc, err := setupCaches(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize cache")
	}

	plans, err := config.LoadPlans(cfg.PlansFile)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load plans")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	appMetrics := metrics.New(registry)

	provider, closeProvider, err := setupProvider(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize LLM provider")
	}

	// Catalog sources
	shopifyClient := shopifyinfra.NewClient(cfg.Shopify.APIKey, cfg.Shopify.APISecret, logger)
	sourceOpts := catalog.DefaultOptions()
	sourceOpts.Timeout = cfg.Sync.HTTPTimeout

	shopifySource, err := catalog.NewShopifySource(sourceOpts, shopifyClient, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize Shopify source")
	}
	sources := catalog.NewRegistry(
		shopifySource,
		catalog.NewWooCommerceSource(sourceOpts, logger),
		catalog.NewHTMLSource(sourceOpts, logger),
	)

	// Initialize application services
	ledger := application.NewUsageLedger(st.usage, plans, logger)
	merchantService := application.NewMerchantService(st.merchants, ledger, logger)
	catalogService := application.NewCatalogService(st.merchants, st.products, sources, appMetrics, logger)

	chatService := application.NewChatService(application.ChatDeps{
		Merchants:   st.merchants,
		Products:    st.products,
		Ledger:      ledger,
		Faqs:        application.NewFaqMatcher(st.faqs, logger),
		Recommender: application.NewProductRecommender(),
		Provider:    provider,
		Sessions:    cc.sessions,
		ChatLogs:    st.chatLogs,
		Outcomes:    cc.outcomes,
		Metrics:     appMetrics,
	}, logger)

	workerCfg := application.DefaultSyncWorkerConfig()
	workerCfg.Workers = cfg.Sync.Workers
	workerCfg.QueueSize = cfg.Sync.QueueSize
	workerCfg.RatePerSecond = cfg.Sync.RatePerSecond
	workerCfg.JobTimeout = cfg.Sync.JobTimeout
	if workerCfg.LockTTL < workerCfg.JobTimeout {
		workerCfg.LockTTL = 2 * workerCfg.JobTimeout
	}
	syncWorker := application.NewSyncWorker(catalogService, cc.locks, workerCfg, logger)
	syncWorker.Start()

	scheduler := application.NewSyncScheduler(st.merchants, syncWorker, cfg.Sync.Interval, logger)
	go scheduler.Run(ctx)

	// Initialize webhook dispatcher and register handlers
	dispatcher := webhook_handlers.NewDispatcher(logger,
		webhook_handlers.NewProductHandler(syncWorker, logger),
		webhook_handlers.NewAppUninstalledHandler(st.merchants, logger),
	)

	router := api.NewRouter(api.RouterConfig{
		Handlers:       api.NewHandlers(chatService, catalogService, merchantService, syncWorker, logger),
		Webhooks:       api.NewWebhookHandler(merchantService, shopifyClient, dispatcher, logger),
		Merchants:      merchantService,
		Gatherer:       registry,
		AllowedOrigins: cfg.HTTP.CORSAllowedOrigins,
		Logger:         logger,
	})

	// Chat responses stream, so there is no write timeout
	srv := &http.Server{
		Addr:              ":" + cfg.HTTP.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info().
			Str("port", cfg.HTTP.Port).
			Str("store", cfg.Store.Backend).
			Str("llmProvider", cfg.LLM.Provider).
			Msg("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
		logger.Info().Msg("Shutdown signal received")
	case err := <-serverErr:
		if err != nil {
			logger.Error().Err(err).Msg("HTTP server failed")
		}
		stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Failed to shut down HTTP server")
	}
	if err := syncWorker.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Sync workers did not drain in time")
	}
	if closeProvider != nil {
		if err := closeProvider(); err != nil {
			logger.Error().Err(err).Msg("Failed to close LLM provider")
		}
	}
	if err := cc.close(); err != nil {
		logger.Error().Err(err).Msg("Failed to close cache")
	}
	if err := st.close(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Failed to close storage")
	}
	logger.Info().Msg("Server stopped")
}

func setupStores(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*stores, error) {
	if cfg.Store.Backend == config.BackendMemory {
		merchants := memory.NewMerchantRepository()
		faqs := memory.NewFaqRepository()
		if cfg.Store.SeedFile != "" {
			seed, err := memory.LoadSeed(cfg.Store.SeedFile)
			if err != nil {
				return nil, err
			}
			if err := seed.Apply(ctx, merchants, faqs); err != nil {
				return nil, err
			}
			logger.Info().
				Int("merchants", len(seed.Merchants)).
				Int("faqs", len(seed.Faqs)).
				Msg("Loaded memory seed")
		}
		logger.Warn().Msg("Using in-memory storage, data is lost on restart")
		return &stores{
			merchants: merchants,
			products:  memory.NewProductRepository(),
			usage:     memory.NewUsageRepository(),
			faqs:      faqs,
			chatLogs:  memory.NewChatLogRepository(),
			close:     func(context.Context) error { return nil },
		}, nil
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	db := client.Database(cfg.Mongo.Database)
	if err := repository.EnsureIndexes(connectCtx, db); err != nil {
		return nil, err
	}
	logger.Info().Str("database", cfg.Mongo.Database).Msg("Connected to MongoDB")

	shared := repository.NewMongoRepository(db)
	return &stores{
		merchants: repository.NewMongoMerchantRepository(db),
		products:  repository.NewMongoProductRepository(db),
		usage:     repository.NewMongoUsageRepository(db),
		faqs:      shared,
		chatLogs:  shared,
		close:     client.Disconnect,
	}, nil
}

func setupCaches(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*caches, error) {
	if cfg.Redis.Addr == "" {
		logger.Warn().Msg("REDIS_ADDR not set, sessions and sync locks are process local")
		return &caches{
			sessions: cache.NewMemorySessionStore(),
			locks:    cache.NewMemorySyncLock(),
			outcomes: cache.NewMemoryOutcomeCounter(),
			close:    func() error { return nil },
		}, nil
	}

	client, err := cache.NewRedisClient(ctx, cache.RedisOptions{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return nil, err
	}
	logger.Info().Str("addr", cfg.Redis.Addr).Msg("Connected to Redis")

	return &caches{
		sessions: cache.NewRedisSessionStore(client, logger),
		locks:    cache.NewRedisSyncLock(client, logger),
		outcomes: cache.NewRedisOutcomeCounter(client),
		close:    client.Close,
	}, nil
}

// setupProvider returns a nil provider when no API key is configured; chat
// requests that need a completion then fail with a configuration error.
func setupProvider(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (ports.LLMProvider, func() error, error) {
	if cfg.LLM.APIKey == "" {
		logger.Warn().Msg("LLM_API_KEY not set, chat completions are disabled")
		return nil, nil, nil
	}

	switch cfg.LLM.Provider {
	case "gemini":
		p, err := llm.NewGeminiProvider(ctx, cfg.LLM.APIKey, cfg.LLM.Model, logger)
		if err != nil {
			return nil, nil, err
		}
		return p, p.Close, nil
	default:
		return llm.NewOpenAIProvider(cfg.LLM.APIKey, cfg.LLM.BaseURL, cfg.LLM.Model, logger), nil, nil
	}
}
