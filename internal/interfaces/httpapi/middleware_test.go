package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/riskibarqy/ultimate-scores/internal/platform/logging"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestShouldTraceRequest(t *testing.T) {
	tests := map[string]bool{
		"/healthz":                     false,
		"/health":                      false,
		"/livez":                       false,
		"/readyz":                      false,
		" /healthz ":                   false,
		"/v1/games":                    true,
		"/v1/internal/jobs/crawl-list": true,
		"/":                            true,
	}
	for path, want := range tests {
		if got := shouldTraceRequest(path); got != want {
			t.Fatalf("shouldTraceRequest(%q)=%t want=%t", path, got, want)
		}
	}
}

func TestRequestLogging_LevelAndJobMetadata(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logger := logging.FromZap(zap.New(core))

	handler := RequestLogging(logger, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/games":
			w.WriteHeader(http.StatusTooManyRequests)
		default:
			_, _ = w.Write([]byte(`{"ok":true}`))
		}
	}))

	req := httptest.NewRequest(http.MethodPost, "/v1/internal/jobs/crawl-list", nil)
	req.Header.Set("Upstash-Message-Id", "msg_123")
	req.Header.Set("Upstash-Retried", "2")
	handler.ServeHTTP(httptest.NewRecorder(), req)
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/games", nil))

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("unexpected entry count: got=%d want=2", len(entries))
	}

	job := entries[0]
	if job.Message != "http request" || job.Level != zapcore.InfoLevel {
		t.Fatalf("unexpected job entry: %s %s", job.Level, job.Message)
	}
	fields := job.ContextMap()
	if fields["qstash_message_id"] != "msg_123" || fields["qstash_retried"] != "2" {
		t.Fatalf("expected queue metadata, got %v", fields)
	}
	if fields["bytes"] != int64(11) {
		t.Fatalf("unexpected bytes field: %v", fields["bytes"])
	}

	limited := entries[1]
	if limited.Level != zapcore.WarnLevel {
		t.Fatalf("expected warn level for 429, got %s", limited.Level)
	}
	if _, ok := limited.ContextMap()["qstash_message_id"]; ok {
		t.Fatalf("public routes must not carry queue metadata")
	}
}

func TestRecoverPanic_WritesInternalError(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	handler := recoverPanic(logging.FromZap(zap.New(core)), http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("score parser exploded")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/games", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", rec.Code)
	}
	if logs.FilterMessage("panic recovered").Len() != 1 {
		t.Fatalf("expected one panic log entry")
	}
}

func TestChain_OutermostFirst(t *testing.T) {
	var order []string
	tag := func(name string) middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		order = append(order, "mux")
	}), tag("tracing"), tag("logging"), tag("cors"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))

	want := []string{"tracing", "logging", "cors", "mux"}
	if len(order) != len(want) {
		t.Fatalf("unexpected order: %v", order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("unexpected order: %v", order)
		}
	}
}
