package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/riskibarqy/ultimate-scores/internal/config"
	"github.com/riskibarqy/ultimate-scores/internal/platform/logging"
)

func testConfig() config.Config {
	return config.Config{
		AppEnv:             config.EnvDev,
		ServiceName:        "ultimate-scores-api",
		HTTPAddr:           ":0",
		CORSAllowedOrigins: []string{"*"},
		CacheEnabled:       true,
		CacheTTL:           time.Minute,
		WatermarkCacheTTL:  time.Minute,
		InternalJobToken:   "job-secret",
		Match:              config.MatchConfig{Threshold: 0.4, Window: 5 * time.Hour},
		Crawl:              config.CrawlConfig{PageSize: 200, MaxPosts: 800, MaxRequests: 4, Workers: 2},
	}
}

func TestNewHTTPServer_InMemory(t *testing.T) {
	srv, closeRepos, err := NewHTTPServer(context.Background(), testConfig(), logging.NewNop())
	if err != nil {
		t.Fatalf("new http server: %v", err)
	}
	defer func() {
		if err := closeRepos(); err != nil {
			t.Fatalf("close repositories: %v", err)
		}
	}()

	cases := []struct {
		method string
		path   string
		token  string
		want   int
	}{
		{method: http.MethodGet, path: "/healthz", want: http.StatusOK},
		{method: http.MethodGet, path: "/v1/games", want: http.StatusOK},
		{method: http.MethodPost, path: "/v1/internal/jobs/crawl-all-lists", want: http.StatusUnauthorized},
		{method: http.MethodPost, path: "/v1/internal/jobs/crawl-all-lists", token: "job-secret", want: http.StatusOK},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(tc.method, tc.path, nil)
		if tc.token != "" {
			req.Header.Set("X-Internal-Job-Token", tc.token)
		}
		rec := httptest.NewRecorder()
		srv.Handler.ServeHTTP(rec, req)
		if rec.Code != tc.want {
			t.Fatalf("%s %s: got=%d want=%d body=%s", tc.method, tc.path, rec.Code, tc.want, rec.Body.String())
		}
	}
}

func TestNewHTTPServer_RequiresAddr(t *testing.T) {
	cfg := testConfig()
	cfg.HTTPAddr = ""
	if _, _, err := NewHTTPServer(context.Background(), cfg, logging.NewNop()); err == nil {
		t.Fatalf("expected error for empty addr")
	}
}

func TestBuildJobQueue_DisabledIsNoop(t *testing.T) {
	queue := buildJobQueue(testConfig(), logging.NewNop())
	if err := queue.Enqueue(context.Background(), "/v1/internal/jobs/crawl-list", nil, 0, ""); err != nil {
		t.Fatalf("noop enqueue: %v", err)
	}
}
