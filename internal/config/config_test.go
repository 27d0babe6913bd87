package config

import (
	"reflect"
	"strings"
	"testing"
	"time"
)

var configEnvKeys = []string{
	"PORT", "CORS_ALLOWED_ORIGINS", "SHUTDOWN_TIMEOUT", "LOG_LEVEL",
	"STORE_BACKEND", "MEMORY_SEED_FILE", "MONGODB_URI", "MONGODB_DATABASE",
	"REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB",
	"LLM_PROVIDER", "LLM_API_KEY", "LLM_BASE_URL", "LLM_MODEL",
	"SYNC_INTERVAL", "SYNC_WORKERS", "SYNC_QUEUE_SIZE", "SYNC_RATE_PER_SECOND",
	"SYNC_HTTP_TIMEOUT", "SYNC_JOB_TIMEOUT",
	"SHOPIFY_API_KEY", "SHOPIFY_API_SECRET", "PLANS_FILE",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range configEnvKeys {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.HTTP.Port != "8080" || cfg.Log.Level != "info" {
		t.Errorf("unexpected http/log defaults %+v %+v", cfg.HTTP, cfg.Log)
	}
	if !reflect.DeepEqual(cfg.HTTP.CORSAllowedOrigins, []string{"*"}) {
		t.Errorf("unexpected CORS origins %v", cfg.HTTP.CORSAllowedOrigins)
	}
	if cfg.Store.Backend != BackendMongo || cfg.Mongo.Database != "seep" {
		t.Errorf("unexpected store defaults %+v %+v", cfg.Store, cfg.Mongo)
	}
	if cfg.LLM.Provider != "openai" || cfg.LLM.APIKey != "" {
		t.Errorf("unexpected llm defaults %+v", cfg.LLM)
	}
	want := SyncConfig{
		Interval:      6 * time.Hour,
		Workers:       4,
		QueueSize:     100,
		RatePerSecond: 2,
		HTTPTimeout:   10 * time.Second,
		JobTimeout:    90 * time.Second,
	}
	if cfg.Sync != want {
		t.Errorf("expected sync defaults %+v, got %+v", want, cfg.Sync)
	}
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.test, ,https://b.test")
	t.Setenv("STORE_BACKEND", "MEMORY")
	t.Setenv("LLM_PROVIDER", "Gemini")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("SYNC_WORKERS", "8")
	t.Setenv("SYNC_RATE_PER_SECOND", "0.5")
	t.Setenv("SYNC_INTERVAL", "30m")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.HTTP.Port != "9000" {
		t.Errorf("expected port 9000, got %s", cfg.HTTP.Port)
	}
	if !reflect.DeepEqual(cfg.HTTP.CORSAllowedOrigins, []string{"https://a.test", "https://b.test"}) {
		t.Errorf("unexpected CORS origins %v", cfg.HTTP.CORSAllowedOrigins)
	}
	if cfg.Store.Backend != BackendMemory || cfg.LLM.Provider != "gemini" {
		t.Errorf("expected backend and provider to be lowercased, got %q %q", cfg.Store.Backend, cfg.LLM.Provider)
	}
	if cfg.Redis.Addr != "localhost:6379" || cfg.Redis.DB != 2 {
		t.Errorf("unexpected redis config %+v", cfg.Redis)
	}
	if cfg.Sync.Workers != 8 || cfg.Sync.RatePerSecond != 0.5 || cfg.Sync.Interval != 30*time.Minute {
		t.Errorf("unexpected sync config %+v", cfg.Sync)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		wantErr string
	}{
		{"bad backend", "STORE_BACKEND", "postgres", "STORE_BACKEND"},
		{"bad provider", "LLM_PROVIDER", "claude", "LLM_PROVIDER"},
		{"bad int", "SYNC_WORKERS", "many", "SYNC_WORKERS"},
		{"bad float", "SYNC_RATE_PER_SECOND", "fast", "SYNC_RATE_PER_SECOND"},
		{"bad duration", "SYNC_JOB_TIMEOUT", "90", "SYNC_JOB_TIMEOUT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error mentioning %s, got %v", tt.wantErr, err)
			}
		})
	}
}
