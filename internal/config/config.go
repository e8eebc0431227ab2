package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/riskibarqy/ultimate-scores/internal/platform/logging"
)

// Config stores runtime configuration for the service.
type Config struct {
	AppEnv                      string
	ServiceName                 string
	ServiceVersion              string
	HTTPAddr                    string
	DBURL                       string
	DBDisablePreparedBinary     bool
	CacheEnabled                bool
	CacheTTL                    time.Duration
	WatermarkCacheTTL           time.Duration
	CORSAllowedOrigins          []string
	ReadTimeout                 time.Duration
	WriteTimeout                time.Duration
	PprofEnabled                bool
	PprofAddr                   string
	UptraceEnabled              bool
	UptraceDSN                  string
	UptraceLogsEnabled          bool
	UptraceCaptureRequestBody   bool
	UptraceRequestBodyMaxBytes  int
	BetterStackEnabled          bool
	BetterStackEndpoint         string
	BetterStackToken            string
	BetterStackTimeout          time.Duration
	BetterStackMinLevel         logging.Level
	PyroscopeEnabled            bool
	PyroscopeServerAddress      string
	PyroscopeAppName            string
	PyroscopeAuthToken          string
	PyroscopeBasicAuthUser      string
	PyroscopeBasicAuthPassword  string
	PyroscopeUploadRate         time.Duration
	Feed                        FeedConfig
	Match                       MatchConfig
	Crawl                       CrawlConfig
	InternalJobToken            string
	QStashEnabled               bool
	QStashBaseURL               string
	QStashToken                 string
	QStashTargetBaseURL         string
	QStashRetries               int
	QStashCircuitEnabled        bool
	QStashCircuitFailureCount   int
	QStashCircuitOpenTimeout    time.Duration
	QStashCircuitHalfOpenMaxReq int
	LogLevel                    logging.Level
}

// FeedConfig holds the social feed API credentials and client limits.
type FeedConfig struct {
	BaseURL               string
	TokenURL              string
	ConsumerKey           string
	ConsumerSecret        string
	BearerToken           string
	Timeout               time.Duration
	FetchDeadline         time.Duration
	RequestsPerSecond     float64
	Burst                 int
	MaxRetries            int
	CircuitEnabled        bool
	CircuitFailureCount   int
	CircuitOpenTimeout    time.Duration
	CircuitHalfOpenMaxReq int
}

type MatchConfig struct {
	Threshold  float64
	StrictMode bool
	Window     time.Duration
}

type CrawlConfig struct {
	PageSize          int
	MaxPosts          int
	MaxRequests       int
	GamesWindow       time.Duration
	ContinuationDelay time.Duration
	OwnerScreenName   string
	Workers           int
	BackfillStagger   time.Duration
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first and never overrides variables already set.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	uptraceEnabled, err := strconv.ParseBool(getEnv("UPTRACE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_ENABLED: %w", err)
	}
	uptraceDSN := strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if uptraceDSN == "" {
		uptraceDSN = parseUptraceDSNFromOTLPHeaders(getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""))
	}
	if uptraceEnabled && uptraceDSN == "" {
		return Config{}, fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}
	uptraceLogsEnabled, err := strconv.ParseBool(getEnv("UPTRACE_LOGS_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_LOGS_ENABLED: %w", err)
	}
	uptraceCaptureRequestBody, err := strconv.ParseBool(getEnv("UPTRACE_CAPTURE_REQUEST_BODY", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_CAPTURE_REQUEST_BODY: %w", err)
	}
	uptraceRequestBodyMaxBytes, err := getEnvAsInt("UPTRACE_REQUEST_BODY_MAX_BYTES", 8192)
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_REQUEST_BODY_MAX_BYTES: %w", err)
	}
	if uptraceRequestBodyMaxBytes <= 0 {
		return Config{}, fmt.Errorf("UPTRACE_REQUEST_BODY_MAX_BYTES must be > 0")
	}

	betterStackEnabled, err := strconv.ParseBool(getEnv("BETTERSTACK_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse BETTERSTACK_ENABLED: %w", err)
	}
	betterStackEndpoint := strings.TrimSpace(getEnv("BETTERSTACK_ENDPOINT", ""))
	if betterStackEnabled && betterStackEndpoint == "" {
		return Config{}, fmt.Errorf("BETTERSTACK_ENDPOINT is required when BETTERSTACK_ENABLED=true")
	}
	betterStackTimeout, err := getEnvAsDuration("BETTERSTACK_TIMEOUT", "3s")
	if err != nil {
		return Config{}, err
	}

	pprofEnabled, err := strconv.ParseBool(getEnv("PPROF_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PPROF_ENABLED: %w", err)
	}
	pprofAddr := strings.TrimSpace(getEnv("PPROF_ADDR", ":6060"))
	if pprofEnabled && pprofAddr == "" {
		return Config{}, fmt.Errorf("PPROF_ADDR is required when PPROF_ENABLED=true")
	}

	pyroscopeEnabled, err := strconv.ParseBool(getEnv("PYROSCOPE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_ENABLED: %w", err)
	}
	pyroscopeServerAddress := strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", ""))
	if pyroscopeEnabled && pyroscopeServerAddress == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	pyroscopeUploadRate, err := getEnvAsDuration("PYROSCOPE_UPLOAD_RATE", "15s")
	if err != nil {
		return Config{}, err
	}

	feed, err := loadFeedConfig()
	if err != nil {
		return Config{}, err
	}
	match, err := loadMatchConfig()
	if err != nil {
		return Config{}, err
	}
	crawl, err := loadCrawlConfig()
	if err != nil {
		return Config{}, err
	}

	qstashEnabled, err := strconv.ParseBool(getEnv("QSTASH_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse QSTASH_ENABLED: %w", err)
	}
	qstashRetries, err := getEnvAsInt("QSTASH_RETRIES", 3)
	if err != nil {
		return Config{}, fmt.Errorf("parse QSTASH_RETRIES: %w", err)
	}
	if qstashRetries < 0 {
		return Config{}, fmt.Errorf("QSTASH_RETRIES must be >= 0")
	}
	qstashCircuitEnabled, err := strconv.ParseBool(getEnv("QSTASH_CIRCUIT_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse QSTASH_CIRCUIT_ENABLED: %w", err)
	}
	qstashCircuitFailureCount, err := getEnvAsInt("QSTASH_CIRCUIT_FAILURE_COUNT", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse QSTASH_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	if qstashCircuitFailureCount < 1 {
		return Config{}, fmt.Errorf("QSTASH_CIRCUIT_FAILURE_COUNT must be >= 1")
	}
	qstashCircuitOpenTimeout, err := getEnvAsDuration("QSTASH_CIRCUIT_OPEN_TIMEOUT", "15s")
	if err != nil {
		return Config{}, err
	}
	qstashCircuitHalfOpenMaxReq, err := getEnvAsInt("QSTASH_CIRCUIT_HALF_OPEN_MAX_REQ", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse QSTASH_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}
	if qstashCircuitHalfOpenMaxReq < 1 {
		return Config{}, fmt.Errorf("QSTASH_CIRCUIT_HALF_OPEN_MAX_REQ must be >= 1")
	}
	qstashBaseURL := strings.TrimSpace(getEnv("QSTASH_BASE_URL", "https://qstash.upstash.io"))
	qstashToken := strings.TrimSpace(getEnv("QSTASH_TOKEN", ""))
	qstashTargetBaseURL := strings.TrimSpace(getEnv("QSTASH_TARGET_BASE_URL", ""))
	internalJobToken := strings.TrimSpace(getEnv("INTERNAL_JOB_TOKEN", ""))
	if qstashEnabled {
		if qstashToken == "" {
			return Config{}, fmt.Errorf("QSTASH_TOKEN is required when QSTASH_ENABLED=true")
		}
		if qstashTargetBaseURL == "" {
			return Config{}, fmt.Errorf("QSTASH_TARGET_BASE_URL is required when QSTASH_ENABLED=true")
		}
		if internalJobToken == "" {
			return Config{}, fmt.Errorf("INTERNAL_JOB_TOKEN is required when QSTASH_ENABLED=true")
		}
	}

	cfg := Config{
		AppEnv:                      appEnv,
		ServiceName:                 getEnv("APP_SERVICE_NAME", "ultimate-scores-api"),
		ServiceVersion:              getEnv("APP_SERVICE_VERSION", "dev"),
		HTTPAddr:                    getEnv("APP_HTTP_ADDR", ":8080"),
		DBURL:                       strings.TrimSpace(getEnv("DB_URL", "")),
		CORSAllowedOrigins:          splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		PprofEnabled:                pprofEnabled,
		PprofAddr:                   pprofAddr,
		UptraceEnabled:              uptraceEnabled,
		UptraceDSN:                  uptraceDSN,
		UptraceLogsEnabled:          uptraceLogsEnabled,
		UptraceCaptureRequestBody:   uptraceCaptureRequestBody,
		UptraceRequestBodyMaxBytes:  uptraceRequestBodyMaxBytes,
		BetterStackEnabled:          betterStackEnabled,
		BetterStackEndpoint:         betterStackEndpoint,
		BetterStackToken:            strings.TrimSpace(getEnv("BETTERSTACK_TOKEN", "")),
		BetterStackTimeout:          betterStackTimeout,
		BetterStackMinLevel:         logging.ParseLevel(getEnv("BETTERSTACK_MIN_LEVEL", "error")),
		PyroscopeEnabled:            pyroscopeEnabled,
		PyroscopeServerAddress:      pyroscopeServerAddress,
		PyroscopeAuthToken:          strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", "")),
		PyroscopeBasicAuthUser:      strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_USER", "")),
		PyroscopeBasicAuthPassword:  strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_PASSWORD", "")),
		PyroscopeUploadRate:         pyroscopeUploadRate,
		Feed:                        feed,
		Match:                       match,
		Crawl:                       crawl,
		InternalJobToken:            internalJobToken,
		QStashEnabled:               qstashEnabled,
		QStashBaseURL:               qstashBaseURL,
		QStashToken:                 qstashToken,
		QStashTargetBaseURL:         qstashTargetBaseURL,
		QStashRetries:               qstashRetries,
		QStashCircuitEnabled:        qstashCircuitEnabled,
		QStashCircuitFailureCount:   qstashCircuitFailureCount,
		QStashCircuitOpenTimeout:    qstashCircuitOpenTimeout,
		QStashCircuitHalfOpenMaxReq: qstashCircuitHalfOpenMaxReq,
		LogLevel:                    logging.ParseLevel(getEnv("APP_LOG_LEVEL", "info")),
	}
	cfg.PyroscopeAppName = strings.TrimSpace(getEnv("PYROSCOPE_APP_NAME", cfg.ServiceName))
	if cfg.PyroscopeEnabled && cfg.PyroscopeAppName == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_APP_NAME cannot be empty when PYROSCOPE_ENABLED=true")
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		return Config{}, fmt.Errorf("CORS_ALLOWED_ORIGINS cannot be empty")
	}

	dbDisablePreparedBinary, err := strconv.ParseBool(getEnv("DB_DISABLE_PREPARED_BINARY_RESULT", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse DB_DISABLE_PREPARED_BINARY_RESULT: %w", err)
	}
	cfg.DBDisablePreparedBinary = dbDisablePreparedBinary

	cacheEnabled, err := strconv.ParseBool(getEnv("CACHE_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CACHE_ENABLED: %w", err)
	}
	cacheTTL, err := getEnvAsDuration("CACHE_TTL", "60s")
	if err != nil {
		return Config{}, err
	}
	watermarkCacheTTL, err := getEnvAsDuration("WATERMARK_CACHE_TTL", "10m")
	if err != nil {
		return Config{}, err
	}
	cfg.CacheEnabled = cacheEnabled
	cfg.CacheTTL = cacheTTL
	cfg.WatermarkCacheTTL = watermarkCacheTTL

	readTimeout, err := time.ParseDuration(getEnv("APP_READ_TIMEOUT", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_READ_TIMEOUT: %w", err)
	}
	writeTimeout, err := time.ParseDuration(getEnv("APP_WRITE_TIMEOUT", "60s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_WRITE_TIMEOUT: %w", err)
	}
	cfg.ReadTimeout = readTimeout
	cfg.WriteTimeout = writeTimeout

	return cfg, nil
}

func loadFeedConfig() (FeedConfig, error) {
	timeout, err := getEnvAsDuration("FEED_TIMEOUT", "10s")
	if err != nil {
		return FeedConfig{}, err
	}
	fetchDeadline, err := getEnvAsDuration("FEED_FETCH_DEADLINE", "20s")
	if err != nil {
		return FeedConfig{}, err
	}
	rps, err := strconv.ParseFloat(getEnv("FEED_RATE_PER_SECOND", "1"), 64)
	if err != nil {
		return FeedConfig{}, fmt.Errorf("parse FEED_RATE_PER_SECOND: %w", err)
	}
	if rps <= 0 {
		return FeedConfig{}, fmt.Errorf("FEED_RATE_PER_SECOND must be > 0")
	}
	burst, err := getEnvAsInt("FEED_BURST", 3)
	if err != nil {
		return FeedConfig{}, fmt.Errorf("parse FEED_BURST: %w", err)
	}
	if burst < 1 {
		return FeedConfig{}, fmt.Errorf("FEED_BURST must be >= 1")
	}
	maxRetries, err := getEnvAsInt("FEED_MAX_RETRIES", 1)
	if err != nil {
		return FeedConfig{}, fmt.Errorf("parse FEED_MAX_RETRIES: %w", err)
	}
	if maxRetries < 0 {
		return FeedConfig{}, fmt.Errorf("FEED_MAX_RETRIES must be >= 0")
	}
	circuitEnabled, err := strconv.ParseBool(getEnv("FEED_CIRCUIT_ENABLED", "true"))
	if err != nil {
		return FeedConfig{}, fmt.Errorf("parse FEED_CIRCUIT_ENABLED: %w", err)
	}
	circuitFailureCount, err := getEnvAsInt("FEED_CIRCUIT_FAILURE_COUNT", 5)
	if err != nil {
		return FeedConfig{}, fmt.Errorf("parse FEED_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	if circuitFailureCount < 1 {
		return FeedConfig{}, fmt.Errorf("FEED_CIRCUIT_FAILURE_COUNT must be >= 1")
	}
	circuitOpenTimeout, err := getEnvAsDuration("FEED_CIRCUIT_OPEN_TIMEOUT", "30s")
	if err != nil {
		return FeedConfig{}, err
	}
	circuitHalfOpenMaxReq, err := getEnvAsInt("FEED_CIRCUIT_HALF_OPEN_MAX_REQ", 1)
	if err != nil {
		return FeedConfig{}, fmt.Errorf("parse FEED_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}
	if circuitHalfOpenMaxReq < 1 {
		return FeedConfig{}, fmt.Errorf("FEED_CIRCUIT_HALF_OPEN_MAX_REQ must be >= 1")
	}

	return FeedConfig{
		BaseURL:               strings.TrimSpace(getEnv("FEED_BASE_URL", "https://api.twitter.com/1.1")),
		TokenURL:              strings.TrimSpace(getEnv("FEED_TOKEN_URL", "https://api.twitter.com/oauth2/token")),
		ConsumerKey:           strings.TrimSpace(getEnv("FEED_CONSUMER_KEY", "")),
		ConsumerSecret:        strings.TrimSpace(getEnv("FEED_CONSUMER_SECRET", "")),
		BearerToken:           strings.TrimSpace(getEnv("FEED_BEARER_TOKEN", "")),
		Timeout:               timeout,
		FetchDeadline:         fetchDeadline,
		RequestsPerSecond:     rps,
		Burst:                 burst,
		MaxRetries:            maxRetries,
		CircuitEnabled:        circuitEnabled,
		CircuitFailureCount:   circuitFailureCount,
		CircuitOpenTimeout:    circuitOpenTimeout,
		CircuitHalfOpenMaxReq: circuitHalfOpenMaxReq,
	}, nil
}

func loadMatchConfig() (MatchConfig, error) {
	threshold, err := strconv.ParseFloat(getEnv("MATCH_THRESHOLD", "0.4"), 64)
	if err != nil {
		return MatchConfig{}, fmt.Errorf("parse MATCH_THRESHOLD: %w", err)
	}
	if threshold <= 0 || threshold > 1 {
		return MatchConfig{}, fmt.Errorf("MATCH_THRESHOLD must be in (0, 1]")
	}
	strictMode, err := strconv.ParseBool(getEnv("MATCH_STRICT_MODE", "false"))
	if err != nil {
		return MatchConfig{}, fmt.Errorf("parse MATCH_STRICT_MODE: %w", err)
	}
	window, err := getEnvAsDuration("MATCH_WINDOW", "2h")
	if err != nil {
		return MatchConfig{}, err
	}

	return MatchConfig{Threshold: threshold, StrictMode: strictMode, Window: window}, nil
}

func loadCrawlConfig() (CrawlConfig, error) {
	pageSize, err := getEnvAsInt("CRAWL_PAGE_SIZE", 200)
	if err != nil {
		return CrawlConfig{}, fmt.Errorf("parse CRAWL_PAGE_SIZE: %w", err)
	}
	if pageSize <= 0 || pageSize > 200 {
		return CrawlConfig{}, fmt.Errorf("CRAWL_PAGE_SIZE must be in [1, 200]")
	}
	maxPosts, err := getEnvAsInt("CRAWL_MAX_POSTS", 800)
	if err != nil {
		return CrawlConfig{}, fmt.Errorf("parse CRAWL_MAX_POSTS: %w", err)
	}
	if maxPosts <= 0 {
		return CrawlConfig{}, fmt.Errorf("CRAWL_MAX_POSTS must be > 0")
	}
	maxRequests, err := getEnvAsInt("CRAWL_MAX_REQUESTS", 4)
	if err != nil {
		return CrawlConfig{}, fmt.Errorf("parse CRAWL_MAX_REQUESTS: %w", err)
	}
	if maxRequests <= 0 {
		return CrawlConfig{}, fmt.Errorf("CRAWL_MAX_REQUESTS must be > 0")
	}
	gamesWindow, err := getEnvAsDuration("CRAWL_GAMES_WINDOW", "168h")
	if err != nil {
		return CrawlConfig{}, err
	}
	continuationDelay, err := getEnvAsDuration("CRAWL_CONTINUATION_DELAY", "5s")
	if err != nil {
		return CrawlConfig{}, err
	}
	workers, err := getEnvAsInt("CRAWL_WORKERS", 4)
	if err != nil {
		return CrawlConfig{}, fmt.Errorf("parse CRAWL_WORKERS: %w", err)
	}
	if workers < 1 {
		return CrawlConfig{}, fmt.Errorf("CRAWL_WORKERS must be >= 1")
	}
	backfillStagger, err := getEnvAsDuration("CRAWL_BACKFILL_STAGGER", "30s")
	if err != nil {
		return CrawlConfig{}, err
	}

	return CrawlConfig{
		PageSize:          pageSize,
		MaxPosts:          maxPosts,
		MaxRequests:       maxRequests,
		GamesWindow:       gamesWindow,
		ContinuationDelay: continuationDelay,
		OwnerScreenName:   strings.TrimSpace(getEnv("CRAWL_OWNER_SCREEN_NAME", "martin_cochran")),
		Workers:           workers,
		BackfillStagger:   backfillStagger,
	}, nil
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

// getEnvAsDuration parses key and rejects non-positive values.
func getEnvAsDuration(key, fallback string) (time.Duration, error) {
	out, err := time.ParseDuration(getEnv(key, fallback))
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	if out <= 0 {
		return 0, fmt.Errorf("%s must be > 0", key)
	}

	return out, nil
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		out = append(out, item)
	}

	return out
}

func parseUptraceDSNFromOTLPHeaders(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	items := strings.Split(raw, ",")
	for _, item := range items {
		parts := strings.SplitN(strings.TrimSpace(item), "=", 2)
		if len(parts) != 2 {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(parts[0]), "uptrace-dsn") {
			value := strings.TrimSpace(parts[1])
			return strings.Trim(value, "\"'")
		}
	}

	return ""
}

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}
