package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is the process configuration, read from the environment
type Config struct {
	HTTP      HTTPConfig
	Log       LogConfig
	Store     StoreConfig
	Mongo     MongoConfig
	Redis     RedisConfig
	LLM       LLMConfig
	Sync      SyncConfig
	Shopify   ShopifyConfig
	PlansFile string
}

type HTTPConfig struct {
	Port               string
	CORSAllowedOrigins []string
	ShutdownTimeout    time.Duration
}

type LogConfig struct {
	Level string
}

type StoreConfig struct {
	Backend  string // mongo | memory
	SeedFile string // memory backend fixture
}

type MongoConfig struct {
	URI      string
	Database string
}

// RedisConfig leaves Addr empty to run with in-process session and lock stores
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type LLMConfig struct {
	Provider string // openai | gemini
	APIKey   string
	BaseURL  string
	Model    string
}

type SyncConfig struct {
	Interval      time.Duration
	Workers       int
	QueueSize     int
	RatePerSecond float64
	HTTPTimeout   time.Duration
	JobTimeout    time.Duration
}

type ShopifyConfig struct {
	APIKey    string
	APISecret string
}

const (
	BackendMongo  = "mongo"
	BackendMemory = "memory"
)

// Load reads the configuration from the environment
func Load() (*Config, error) {
	redisDB, err := parseIntEnv("REDIS_DB", 0)
	if err != nil {
		return nil, err
	}
	workers, err := parseIntEnv("SYNC_WORKERS", 4)
	if err != nil {
		return nil, err
	}
	queueSize, err := parseIntEnv("SYNC_QUEUE_SIZE", 100)
	if err != nil {
		return nil, err
	}
	ratePerSecond, err := parseFloatEnv("SYNC_RATE_PER_SECOND", 2)
	if err != nil {
		return nil, err
	}
	interval, err := parseDurationEnv("SYNC_INTERVAL", 6*time.Hour)
	if err != nil {
		return nil, err
	}
	httpTimeout, err := parseDurationEnv("SYNC_HTTP_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	jobTimeout, err := parseDurationEnv("SYNC_JOB_TIMEOUT", 90*time.Second)
	if err != nil {
		return nil, err
	}
	shutdownTimeout, err := parseDurationEnv("SHUTDOWN_TIMEOUT", 15*time.Second)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTP: HTTPConfig{
			Port:               getEnvOrDefault("PORT", "8080"),
			CORSAllowedOrigins: splitList(getEnvOrDefault("CORS_ALLOWED_ORIGINS", "*")),
			ShutdownTimeout:    shutdownTimeout,
		},
		Log: LogConfig{
			Level: getEnvOrDefault("LOG_LEVEL", "info"),
		},
		Store: StoreConfig{
			Backend:  strings.ToLower(getEnvOrDefault("STORE_BACKEND", BackendMongo)),
			SeedFile: os.Getenv("MEMORY_SEED_FILE"),
		},
		Mongo: MongoConfig{
			URI:      getEnvOrDefault("MONGODB_URI", "mongodb://localhost:27017"),
			Database: getEnvOrDefault("MONGODB_DATABASE", "seep"),
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		LLM: LLMConfig{
			Provider: strings.ToLower(getEnvOrDefault("LLM_PROVIDER", "openai")),
			APIKey:   os.Getenv("LLM_API_KEY"),
			BaseURL:  os.Getenv("LLM_BASE_URL"),
			Model:    os.Getenv("LLM_MODEL"),
		},
		Sync: SyncConfig{
			Interval:      interval,
			Workers:       workers,
			QueueSize:     queueSize,
			RatePerSecond: ratePerSecond,
			HTTPTimeout:   httpTimeout,
			JobTimeout:    jobTimeout,
		},
		Shopify: ShopifyConfig{
			APIKey:    os.Getenv("SHOPIFY_API_KEY"),
			APISecret: os.Getenv("SHOPIFY_API_SECRET"),
		},
		PlansFile: os.Getenv("PLANS_FILE"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Store.Backend {
	case BackendMongo, BackendMemory:
	default:
		return fmt.Errorf("STORE_BACKEND must be %q or %q, got %q", BackendMongo, BackendMemory, c.Store.Backend)
	}
	switch c.LLM.Provider {
	case "openai", "gemini":
	default:
		return fmt.Errorf("LLM_PROVIDER must be \"openai\" or \"gemini\", got %q", c.LLM.Provider)
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %w", key, err)
		}
		return d, nil
	}
	return defaultValue, nil
}

func parseIntEnv(key string, defaultValue int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func parseFloatEnv(key string, defaultValue float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
