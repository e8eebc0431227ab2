package observability

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/ultimate-scores/internal/config"
	"github.com/riskibarqy/ultimate-scores/internal/platform/logging"
)

type betterStackRecorder struct {
	mu      sync.Mutex
	batches [][]map[string]any
	auth    string
}

func (r *betterStackRecorder) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		raw, _ := io.ReadAll(req.Body)
		var batch []map[string]any
		if err := sonic.Unmarshal(raw, &batch); err != nil {
			t.Errorf("decode batch: %v body=%s", err, raw)
		}

		r.mu.Lock()
		r.batches = append(r.batches, batch)
		r.auth = req.Header.Get("Authorization")
		r.mu.Unlock()
		w.WriteHeader(http.StatusAccepted)
	}
}

func (r *betterStackRecorder) records() []map[string]any {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []map[string]any
	for _, batch := range r.batches {
		out = append(out, batch...)
	}
	return out
}

func betterStackTestConfig(endpoint string) config.Config {
	return config.Config{
		BetterStackEnabled:  true,
		BetterStackEndpoint: endpoint,
		BetterStackToken:    "secret-token",
		BetterStackTimeout:  2 * time.Second,
		BetterStackMinLevel: logging.LevelWarn,
		ServiceName:         "ultimate-scores-api",
		AppEnv:              config.EnvDev,
		LogLevel:            logging.LevelInfo,
	}
}

func TestInitBetterStackLogger_ShipsBatchedRecords(t *testing.T) {
	t.Parallel()

	recorder := &betterStackRecorder{}
	server := httptest.NewServer(recorder.handler(t))
	defer server.Close()

	logger, shutdown, err := InitBetterStackLogger(betterStackTestConfig(server.URL), logging.NewNop())
	if err != nil {
		t.Fatalf("init betterstack logger: %v", err)
	}

	logger.WarnContext(context.Background(), "feed rate limited", "list_id", "186732484")
	logger.ErrorContext(context.Background(), "crawl cycle failed", "list_id", "186732484")

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := shutdown(ctx); err != nil {
		t.Fatalf("shutdown logger: %v", err)
	}

	records := recorder.records()
	if len(records) != 2 {
		t.Fatalf("unexpected shipped record count: got=%d want=2", len(records))
	}
	if records[1]["message"] != "crawl cycle failed" || records[1]["service"] != "ultimate-scores-api" {
		t.Fatalf("unexpected record: %v", records[1])
	}
	if recorder.auth != "Bearer secret-token" {
		t.Fatalf("unexpected authorization header: %q", recorder.auth)
	}
}

func TestInitBetterStackLogger_RespectsMinLevel(t *testing.T) {
	t.Parallel()

	recorder := &betterStackRecorder{}
	server := httptest.NewServer(recorder.handler(t))
	defer server.Close()

	logger, shutdown, err := InitBetterStackLogger(betterStackTestConfig(server.URL), logging.NewNop())
	if err != nil {
		t.Fatalf("init betterstack logger: %v", err)
	}

	logger.InfoContext(context.Background(), "info log should not be shipped")

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := shutdown(ctx); err != nil {
		t.Fatalf("shutdown logger: %v", err)
	}

	if got := len(recorder.records()); got != 0 {
		t.Fatalf("expected no shipped records, got %d", got)
	}
}

func TestInitBetterStackLogger_Disabled(t *testing.T) {
	t.Parallel()

	base := logging.NewNop()
	logger, shutdown, err := InitBetterStackLogger(config.Config{}, base)
	if err != nil {
		t.Fatalf("init betterstack logger: %v", err)
	}
	if logger != base {
		t.Fatalf("expected base logger when disabled")
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}

func TestNormalizeBetterStackEndpoint(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"":                                "",
		"in.logs.betterstack.com":         "https://in.logs.betterstack.com",
		" http://localhost:9000 ":         "http://localhost:9000",
		"https://in.logs.betterstack.com": "https://in.logs.betterstack.com",
	}
	for input, want := range cases {
		if got := normalizeBetterStackEndpoint(input); got != want {
			t.Fatalf("normalizeBetterStackEndpoint(%q): got=%q want=%q", input, got, want)
		}
	}
}
