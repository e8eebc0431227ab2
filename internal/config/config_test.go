package config

import (
	"testing"
	"time"
)

func TestLoad_AppEnvValidation(t *testing.T) {
	t.Setenv("APP_ENV", "invalid")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid APP_ENV")
	}
}

func TestLoad_UptraceRequiresDSNWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when UPTRACE_ENABLED=true without UPTRACE_DSN")
	}
}

func TestLoad_BetterStackRequiresEndpointWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("BETTERSTACK_ENABLED", "true")
	t.Setenv("BETTERSTACK_ENDPOINT", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when BETTERSTACK_ENABLED=true without BETTERSTACK_ENDPOINT")
	}
}

func TestLoad_BetterStackConfigParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("BETTERSTACK_ENABLED", "true")
	t.Setenv("BETTERSTACK_ENDPOINT", "s1765114.eu-fsn-3.betterstackdata.com")
	t.Setenv("BETTERSTACK_TOKEN", "token-123")
	t.Setenv("BETTERSTACK_TIMEOUT", "4s")
	t.Setenv("BETTERSTACK_MIN_LEVEL", "warn")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if !cfg.BetterStackEnabled {
		t.Fatalf("expected BetterStackEnabled=true")
	}
	if cfg.BetterStackEndpoint != "s1765114.eu-fsn-3.betterstackdata.com" {
		t.Fatalf("unexpected BetterStackEndpoint: %q", cfg.BetterStackEndpoint)
	}
	if cfg.BetterStackToken != "token-123" {
		t.Fatalf("unexpected BetterStackToken")
	}
	if cfg.BetterStackTimeout != 4*time.Second {
		t.Fatalf("unexpected BetterStackTimeout: %s", cfg.BetterStackTimeout)
	}
	if cfg.BetterStackMinLevel.String() != "warn" {
		t.Fatalf("unexpected BetterStackMinLevel: %s", cfg.BetterStackMinLevel.String())
	}
}

func TestLoad_PprofDefaultsAddrWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("PPROF_ENABLED", "true")
	t.Setenv("PPROF_ADDR", "  ")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.PprofAddr != ":6060" {
		t.Fatalf("expected default pprof addr :6060, got %q", cfg.PprofAddr)
	}
}

func TestLoad_PyroscopeRequiresServerAddressWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("PYROSCOPE_ENABLED", "true")
	t.Setenv("PYROSCOPE_SERVER_ADDRESS", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when PYROSCOPE_ENABLED=true without PYROSCOPE_SERVER_ADDRESS")
	}
}

func TestLoad_PyroscopeAppNameDefaultsToServiceName(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("APP_SERVICE_NAME", "ultimate-scores-api-test")
	t.Setenv("PYROSCOPE_ENABLED", "true")
	t.Setenv("PYROSCOPE_SERVER_ADDRESS", "http://localhost:4040")
	t.Setenv("PYROSCOPE_APP_NAME", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.PyroscopeAppName != "ultimate-scores-api-test" {
		t.Fatalf("unexpected pyroscope app name: %q", cfg.PyroscopeAppName)
	}
}

func TestLoad_CORSOriginsDefaultAndParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	t.Run("default wildcard", func(t *testing.T) {
		t.Setenv("CORS_ALLOWED_ORIGINS", "")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if len(cfg.CORSAllowedOrigins) != 1 || cfg.CORSAllowedOrigins[0] != "*" {
			t.Fatalf("unexpected default CORS origins: %+v", cfg.CORSAllowedOrigins)
		}
	})

	t.Run("comma separated parsing", func(t *testing.T) {
		t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.example.com, http://localhost:5173 ")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if len(cfg.CORSAllowedOrigins) != 2 {
			t.Fatalf("unexpected CORS origins length: %d", len(cfg.CORSAllowedOrigins))
		}
		if cfg.CORSAllowedOrigins[0] != "https://a.example.com" {
			t.Fatalf("unexpected first CORS origin: %s", cfg.CORSAllowedOrigins[0])
		}
		if cfg.CORSAllowedOrigins[1] != "http://localhost:5173" {
			t.Fatalf("unexpected second CORS origin: %s", cfg.CORSAllowedOrigins[1])
		}
	})
}

func TestLoad_DBDisablePreparedBinaryResultParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	t.Run("default true", func(t *testing.T) {
		t.Setenv("DB_DISABLE_PREPARED_BINARY_RESULT", "")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if !cfg.DBDisablePreparedBinary {
			t.Fatalf("expected DBDisablePreparedBinary=true by default")
		}
	})

	t.Run("invalid value", func(t *testing.T) {
		t.Setenv("DB_DISABLE_PREPARED_BINARY_RESULT", "not-bool")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for invalid DB_DISABLE_PREPARED_BINARY_RESULT")
		}
	})
}

func TestLoad_CacheConfigParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	t.Run("defaults", func(t *testing.T) {
		t.Setenv("CACHE_ENABLED", "")
		t.Setenv("CACHE_TTL", "")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if !cfg.CacheEnabled {
			t.Fatalf("expected cache enabled by default")
		}
		if cfg.CacheTTL != 60*time.Second {
			t.Fatalf("unexpected default cache ttl: %s", cfg.CacheTTL)
		}
		if cfg.WatermarkCacheTTL != 10*time.Minute {
			t.Fatalf("unexpected default watermark cache ttl: %s", cfg.WatermarkCacheTTL)
		}
	})

	t.Run("invalid ttl", func(t *testing.T) {
		t.Setenv("CACHE_TTL", "bad")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for invalid CACHE_TTL")
		}
	})

	t.Run("non-positive watermark ttl", func(t *testing.T) {
		t.Setenv("CACHE_TTL", "")
		t.Setenv("WATERMARK_CACHE_TTL", "0s")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for WATERMARK_CACHE_TTL=0s")
		}
	})
}

func TestLoad_QStashConfigParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	t.Run("disabled by default", func(t *testing.T) {
		t.Setenv("QSTASH_ENABLED", "")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if cfg.QStashEnabled {
			t.Fatalf("expected QStashEnabled=false by default")
		}
	})

	t.Run("enabled requires token and target and internal token", func(t *testing.T) {
		t.Setenv("QSTASH_ENABLED", "true")
		t.Setenv("QSTASH_TOKEN", "")
		t.Setenv("QSTASH_TARGET_BASE_URL", "")
		t.Setenv("INTERNAL_JOB_TOKEN", "")

		if _, err := Load(); err == nil {
			t.Fatalf("expected error when QSTASH_ENABLED=true without required env")
		}
	})

	t.Run("enabled with required values", func(t *testing.T) {
		t.Setenv("QSTASH_ENABLED", "true")
		t.Setenv("QSTASH_TOKEN", "qstash-token")
		t.Setenv("QSTASH_TARGET_BASE_URL", "https://scores.example.com")
		t.Setenv("INTERNAL_JOB_TOKEN", "internal-job-token")
		t.Setenv("QSTASH_RETRIES", "2")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if !cfg.QStashEnabled {
			t.Fatalf("expected QStashEnabled=true")
		}
		if cfg.QStashRetries != 2 {
			t.Fatalf("unexpected qstash retries: %d", cfg.QStashRetries)
		}
		if cfg.InternalJobToken != "internal-job-token" {
			t.Fatalf("unexpected internal job token: %q", cfg.InternalJobToken)
		}
	})
}

func TestLoad_FeedConfigParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	t.Run("defaults", func(t *testing.T) {
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if cfg.Feed.BaseURL != "https://api.twitter.com/1.1" {
			t.Fatalf("unexpected feed base url: %q", cfg.Feed.BaseURL)
		}
		if cfg.Feed.FetchDeadline != 20*time.Second {
			t.Fatalf("unexpected fetch deadline: %s", cfg.Feed.FetchDeadline)
		}
		if cfg.Feed.RequestsPerSecond != 1 || cfg.Feed.Burst != 3 {
			t.Fatalf("unexpected rate limit: rps=%v burst=%d", cfg.Feed.RequestsPerSecond, cfg.Feed.Burst)
		}
		if !cfg.Feed.CircuitEnabled {
			t.Fatalf("expected feed circuit breaker enabled by default")
		}
	})

	t.Run("overrides", func(t *testing.T) {
		t.Setenv("FEED_CONSUMER_KEY", " key ")
		t.Setenv("FEED_CONSUMER_SECRET", "secret")
		t.Setenv("FEED_RATE_PER_SECOND", "0.25")
		t.Setenv("FEED_MAX_RETRIES", "3")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if cfg.Feed.ConsumerKey != "key" || cfg.Feed.ConsumerSecret != "secret" {
			t.Fatalf("unexpected credentials: %+v", cfg.Feed)
		}
		if cfg.Feed.RequestsPerSecond != 0.25 || cfg.Feed.MaxRetries != 3 {
			t.Fatalf("unexpected limits: rps=%v retries=%d", cfg.Feed.RequestsPerSecond, cfg.Feed.MaxRetries)
		}
	})

	t.Run("invalid values", func(t *testing.T) {
		cases := map[string]string{
			"FEED_RATE_PER_SECOND": "0",
			"FEED_BURST":           "0",
			"FEED_MAX_RETRIES":     "-1",
			"FEED_TIMEOUT":         "soon",
		}
		for key, value := range cases {
			t.Run(key, func(t *testing.T) {
				t.Setenv(key, value)
				if _, err := Load(); err == nil {
					t.Fatalf("expected error for %s=%s", key, value)
				}
			})
		}
	})
}

func TestLoad_MatchAndCrawlConfigParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	t.Run("defaults", func(t *testing.T) {
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if cfg.Match.Threshold != 0.4 || cfg.Match.StrictMode || cfg.Match.Window != 5*time.Hour {
			t.Fatalf("unexpected match config: %+v", cfg.Match)
		}
		if cfg.Crawl.PageSize != 200 || cfg.Crawl.MaxPosts != 800 || cfg.Crawl.MaxRequests != 4 {
			t.Fatalf("unexpected crawl limits: %+v", cfg.Crawl)
		}
		if cfg.Crawl.OwnerScreenName == "" {
			t.Fatalf("expected a default list owner")
		}
	})

	t.Run("strict mode", func(t *testing.T) {
		t.Setenv("MATCH_STRICT_MODE", "true")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if !cfg.Match.StrictMode {
			t.Fatalf("expected strict mode")
		}
	})

	t.Run("threshold out of range", func(t *testing.T) {
		t.Setenv("MATCH_THRESHOLD", "1.5")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for MATCH_THRESHOLD=1.5")
		}
	})

	t.Run("page size over feed maximum", func(t *testing.T) {
		t.Setenv("CRAWL_PAGE_SIZE", "500")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for CRAWL_PAGE_SIZE=500")
		}
	})

	t.Run("workers must be positive", func(t *testing.T) {
		t.Setenv("CRAWL_WORKERS", "0")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for CRAWL_WORKERS=0")
		}
	})
}

func TestParseUptraceDSNFromOTLPHeaders(t *testing.T) {
	t.Parallel()

	got := parseUptraceDSNFromOTLPHeaders(`foo=bar, uptrace-dsn="https://token@api.uptrace.dev?grpc=4317"`)
	if got != "https://token@api.uptrace.dev?grpc=4317" {
		t.Fatalf("unexpected dsn: %q", got)
	}
	if got := parseUptraceDSNFromOTLPHeaders("foo=bar"); got != "" {
		t.Fatalf("expected empty dsn, got %q", got)
	}
}
