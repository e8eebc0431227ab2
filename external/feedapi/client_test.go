package feedapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/riskibarqy/ultimate-scores/internal/domain/externalid"
	"github.com/riskibarqy/ultimate-scores/internal/platform/logging"
	"github.com/riskibarqy/ultimate-scores/internal/platform/resilience"
	"github.com/riskibarqy/ultimate-scores/internal/usecase"
)

const listStatusesBody = `[
  {
    "id_str": "636668413146783744",
    "text": "Ring 13-11 over @sockeye #usopen",
    "created_at": "Wed Aug 26 22:05:14 +0000 2015",
    "lang": "en",
    "user": {"id_str": "11", "screen_name": "RingOfFire", "name": "Ring of Fire", "profile_image_url_https": "https://pbs.example/ring.png"},
    "entities": {
      "user_mentions": [{"id_str": "22", "screen_name": "sockeye", "indices": [16, 24]}],
      "hashtags": [{"text": "usopen"}]
    }
  }
]`

func newTestClient(baseURL string, cfg ClientConfig) *Client {
	cfg.BaseURL = baseURL
	cfg.TokenURL = baseURL + "/oauth2/token"
	cfg.Logger = logging.NewNop()
	if cfg.Timeout == 0 {
		cfg.Timeout = 2 * time.Second
	}
	return NewClient(cfg)
}

func TestClient_FetchListPage(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != listStatusesPath {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer static-token" {
			t.Errorf("unexpected authorization header: %s", got)
		}
		query := r.URL.Query()
		if query.Get("list_id") != "186732484" || query.Get("since_id") != "100" || query.Get("max_id") != "" || query.Get("count") != "200" {
			t.Errorf("unexpected query: %s", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(listStatusesBody))
	}))
	defer server.Close()

	client := newTestClient(server.URL, ClientConfig{BearerToken: "static-token"})
	posts, err := client.FetchListPage(context.Background(), usecase.PageRequest{ListID: 186732484, SinceID: 100})
	if err != nil {
		t.Fatalf("fetch list page: %v", err)
	}
	if len(posts) != 1 {
		t.Fatalf("unexpected post count: got=%d want=1", len(posts))
	}

	got := posts[0]
	if got.ID != externalid.ID(636668413146783744) || got.Author.ID != 11 || got.Author.ScreenName != "RingOfFire" {
		t.Fatalf("unexpected post: %+v", got)
	}
	if !got.CreatedAt.Equal(time.Date(2015, 8, 26, 22, 5, 14, 0, time.UTC)) {
		t.Fatalf("unexpected created at: %s", got.CreatedAt)
	}
	if len(got.Mentions) != 1 || got.Mentions[0].AccountID != 22 || got.Mentions[0].Start != 16 {
		t.Fatalf("unexpected mentions: %+v", got.Mentions)
	}
	if len(got.Hashtags) != 1 || got.Hashtags[0] != "usopen" {
		t.Fatalf("unexpected hashtags: %+v", got.Hashtags)
	}
}

func TestClient_FetchListPage_EmptyPage(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, ClientConfig{BearerToken: "static-token"})
	posts, err := client.FetchListPage(context.Background(), usecase.PageRequest{ListID: 1})
	if err != nil {
		t.Fatalf("fetch empty page: %v", err)
	}
	if len(posts) != 0 {
		t.Fatalf("expected an empty page, got %d posts", len(posts))
	}
}

func TestClient_ReauthenticatesOnExpiredToken(t *testing.T) {
	t.Parallel()

	var tokenCalls atomic.Int32
	var pageCalls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/oauth2/token":
			tokenCalls.Add(1)
			if r.Method != http.MethodPost {
				t.Errorf("unexpected token method: %s", r.Method)
			}
			if got := r.Header.Get("Authorization"); got == "" || got[:6] != "Basic " {
				t.Errorf("unexpected token authorization: %s", got)
			}
			_, _ = w.Write([]byte(`{"token_type":"bearer","access_token":"fresh-token"}`))
		case listStatusesPath:
			pageCalls.Add(1)
			if r.Header.Get("Authorization") != "Bearer fresh-token" {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"errors":[{"code":89,"message":"Invalid or expired token."}]}`))
				return
			}
			_, _ = w.Write([]byte(`[]`))
		default:
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
	}))
	defer server.Close()

	client := newTestClient(server.URL, ClientConfig{
		BearerToken:    "stale-token",
		ConsumerKey:    "key",
		ConsumerSecret: "secret",
	})
	if _, err := client.FetchListPage(context.Background(), usecase.PageRequest{ListID: 1}); err != nil {
		t.Fatalf("fetch after re-authentication: %v", err)
	}
	if tokenCalls.Load() != 1 || pageCalls.Load() != 2 {
		t.Fatalf("unexpected calls: token=%d page=%d", tokenCalls.Load(), pageCalls.Load())
	}
}

func TestClient_ErrorKinds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		status int
		body   string
		want   usecase.FetchErrorKind
	}{
		{name: "rate limited", status: http.StatusTooManyRequests, body: `{"errors":[{"code":88}]}`, want: usecase.FetchErrorRateLimit},
		{name: "forbidden", status: http.StatusForbidden, body: `{}`, want: usecase.FetchErrorAuth},
		{name: "not found", status: http.StatusNotFound, body: `{}`, want: usecase.FetchErrorStatus},
		{name: "server error", status: http.StatusBadGateway, body: `oops`, want: usecase.FetchErrorStatus},
		{name: "malformed", status: http.StatusOK, body: `{"not":"a list"`, want: usecase.FetchErrorMalformed},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer server.Close()

			client := newTestClient(server.URL, ClientConfig{BearerToken: "static-token"})
			_, err := client.FetchListPage(context.Background(), usecase.PageRequest{ListID: 1})

			var fetchErr *usecase.FetchError
			if !errors.As(err, &fetchErr) {
				t.Fatalf("expected FetchError, got %v", err)
			}
			if fetchErr.Kind != tc.want {
				t.Fatalf("unexpected kind: got=%s want=%s", fetchErr.Kind, tc.want)
			}
			if !errors.Is(err, usecase.ErrDependencyUnavailable) {
				t.Fatalf("fetch errors must unwrap to ErrDependencyUnavailable")
			}
		})
	}
}

func TestClient_RateLimitCarriesResetTime(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("x-rate-limit-reset", "1440266400")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"errors":[{"code":88,"message":"Rate limit exceeded"}]}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, ClientConfig{BearerToken: "static-token"})
	_, err := client.FetchListPage(context.Background(), usecase.PageRequest{ListID: 1})
	if !usecase.IsFeedRateLimited(err) {
		t.Fatalf("expected a rate limited error, got %v", err)
	}

	var fetchErr *usecase.FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected FetchError, got %v", err)
	}
	if want := time.Unix(1440266400, 0).UTC(); !fetchErr.ResetAt.Equal(want) {
		t.Fatalf("unexpected reset time: got=%v want=%v", fetchErr.ResetAt, want)
	}
}

func TestClient_RetriesTransientStatus(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, ClientConfig{BearerToken: "static-token", MaxRetries: 1})
	if _, err := client.FetchListPage(context.Background(), usecase.PageRequest{ListID: 1}); err != nil {
		t.Fatalf("fetch with retry: %v", err)
	}
	if calls.Load() != 2 {
		t.Fatalf("unexpected call count: got=%d want=2", calls.Load())
	}
}

func TestClient_CircuitOpensAfterTransientFailures(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newTestClient(server.URL, ClientConfig{
		BearerToken: "static-token",
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          true,
			FailureThreshold: 2,
			OpenTimeout:      time.Minute,
			HalfOpenMaxReq:   1,
		},
	})
	for i := 0; i < 3; i++ {
		_, _ = client.FetchListPage(context.Background(), usecase.PageRequest{ListID: 1})
	}
	if calls.Load() != 2 {
		t.Fatalf("expected the open circuit to short-circuit the third call, got %d calls", calls.Load())
	}
}

func TestClient_FetchOwnedLists(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != listOwnershipsPath || r.URL.Query().Get("screen_name") != "scorebot" {
			t.Errorf("unexpected request: %s", r.URL.String())
		}
		_, _ = w.Write([]byte(`{"lists":[{"id_str":"186732484","name":"Club Open","slug":"club-open"}]}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, ClientConfig{BearerToken: "static-token"})
	lists, err := client.FetchOwnedLists(context.Background(), "scorebot")
	if err != nil {
		t.Fatalf("fetch owned lists: %v", err)
	}
	if len(lists) != 1 || lists[0].ID != 186732484 || lists[0].Slug != "club-open" {
		t.Fatalf("unexpected lists: %+v", lists)
	}
}

func TestClient_MissingCredentials(t *testing.T) {
	t.Parallel()

	client := newTestClient("http://127.0.0.1:1", ClientConfig{})
	_, err := client.FetchListPage(context.Background(), usecase.PageRequest{ListID: 1})

	var fetchErr *usecase.FetchError
	if !errors.As(err, &fetchErr) || fetchErr.Kind != usecase.FetchErrorAuth {
		t.Fatalf("expected auth FetchError, got %v", err)
	}
}
