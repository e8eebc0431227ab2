package feedapi

import (
	"context"
	"encoding/base64"
	stderrors "errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/ultimate-scores/internal/platform/logging"
	"github.com/riskibarqy/ultimate-scores/internal/platform/resilience"
	"github.com/riskibarqy/ultimate-scores/internal/usecase"
	"github.com/valyala/fasthttp"
	"golang.org/x/time/rate"
)

const (
	defaultBaseURL       = "https://api.twitter.com/1.1"
	defaultTokenURL      = "https://api.twitter.com/oauth2/token"
	listStatusesPath     = "/lists/statuses.json"
	listOwnershipsPath   = "/lists/ownerships.json"
	defaultPageSize      = 200
	ownedListsPageSize   = 50
	maxResponseBodySize  = 8 << 20
	bearerTokenFlight    = "feed:bearer_token"
	rateLimitResetHeader = "x-rate-limit-reset"
)

var errFeedTransient = crerr.New("feed transient failure")

// reauthErrorCodes mark an expired or invalid bearer token.
var reauthErrorCodes = map[int]struct{}{
	89:  {},
	215: {},
}

type ClientConfig struct {
	HTTPClient        *fasthttp.Client
	BaseURL           string
	TokenURL          string
	ConsumerKey       string
	ConsumerSecret    string
	BearerToken       string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
	MaxRetries        int
	Logger            *logging.Logger
	CircuitBreaker    resilience.CircuitBreakerConfig
}

// Client reads curated lists with an application-only bearer token.
type Client struct {
	httpClient  *fasthttp.Client
	baseURL     string
	tokenURL    string
	credentials string
	timeout     time.Duration
	maxRetries  int
	limiter     *rate.Limiter
	logger      *logging.Logger
	breaker     *resilience.CircuitBreaker
	flight      resilience.SingleFlight[string]

	mu    sync.RWMutex
	token string
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &fasthttp.Client{
			Name:                "ultimate-scores",
			ReadTimeout:         timeout,
			WriteTimeout:        timeout,
			MaxResponseBodySize: maxResponseBodySize,
		}
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	tokenURL := strings.TrimSpace(cfg.TokenURL)
	if tokenURL == "" {
		tokenURL = defaultTokenURL
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}

	return &Client{
		httpClient:  httpClient,
		baseURL:     baseURL,
		tokenURL:    tokenURL,
		credentials: encodeCredentials(cfg.ConsumerKey, cfg.ConsumerSecret),
		timeout:     timeout,
		maxRetries:  max(cfg.MaxRetries, 0),
		limiter:     rate.NewLimiter(limit, burst),
		logger:      logger,
		breaker:     resilience.NewCircuitBreakerFromConfig(cfg.CircuitBreaker.LogTransitions(logger, "feed")),
		token:       strings.TrimSpace(cfg.BearerToken),
	}
}

func (c *Client) FetchListPage(ctx context.Context, req usecase.PageRequest) ([]usecase.FeedPost, error) {
	const op = "list statuses"
	if req.ListID.IsZero() {
		return nil, &usecase.FetchError{Kind: usecase.FetchErrorStatus, Op: op, Err: fmt.Errorf("list id is required")}
	}

	count := req.Count
	if count <= 0 {
		count = defaultPageSize
	}
	query := url.Values{}
	query.Set("list_id", req.ListID.String())
	query.Set("count", strconv.Itoa(count))
	query.Set("include_rts", "0")
	if !req.SinceID.IsZero() {
		query.Set("since_id", req.SinceID.String())
	}
	if !req.MaxID.IsZero() {
		query.Set("max_id", req.MaxID.String())
	}

	var statuses []statusPayload
	if err := c.getJSON(ctx, op, listStatusesPath, query, &statuses); err != nil {
		return nil, err
	}

	out := make([]usecase.FeedPost, 0, len(statuses))
	for _, status := range statuses {
		out = append(out, status.toFeedPost())
	}
	c.logger.DebugContext(ctx, "feed list page fetched",
		"list_id", req.ListID.String(),
		"since_id", req.SinceID.String(),
		"max_id", req.MaxID.String(),
		"count", len(out),
	)
	return out, nil
}

func (c *Client) FetchOwnedLists(ctx context.Context, screenName string) ([]usecase.FeedList, error) {
	const op = "list ownerships"
	screenName = strings.TrimSpace(screenName)
	if screenName == "" {
		return nil, &usecase.FetchError{Kind: usecase.FetchErrorStatus, Op: op, Err: fmt.Errorf("screen name is required")}
	}

	query := url.Values{}
	query.Set("screen_name", screenName)
	query.Set("count", strconv.Itoa(ownedListsPageSize))

	var payload ownershipsPayload
	if err := c.getJSON(ctx, op, listOwnershipsPath, query, &payload); err != nil {
		return nil, err
	}

	out := make([]usecase.FeedList, 0, len(payload.Lists))
	for _, item := range payload.Lists {
		out = append(out, usecase.FeedList{
			ID:   parseID(item.IDStr),
			Name: strings.TrimSpace(item.Name),
			Slug: strings.TrimSpace(item.Slug),
		})
	}
	return out, nil
}

func (c *Client) getJSON(ctx context.Context, op, path string, query url.Values, target any) error {
	fullURL := c.baseURL + path
	if encoded := query.Encode(); encoded != "" {
		fullURL += "?" + encoded
	}

	var raw []byte
	err := c.breaker.Do(func() error {
		var execErr error
		raw, execErr = c.execute(ctx, op, fullURL)
		return execErr
	}, isFeedCircuitFailure)
	if stderrors.Is(err, resilience.ErrCircuitOpen) {
		c.logger.WarnContext(ctx, "feed circuit breaker rejected request", "op", op, "state", c.breaker.State())
		return &usecase.FetchError{Kind: usecase.FetchErrorNetwork, Op: op, Err: err}
	}
	if err != nil {
		return err
	}

	if err := sonic.Unmarshal(raw, target); err != nil {
		return &usecase.FetchError{Kind: usecase.FetchErrorMalformed, Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// execute retries transient failures and re-authenticates at most once.
func (c *Client) execute(ctx context.Context, op, fullURL string) ([]byte, error) {
	reauthenticated := false
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &usecase.FetchError{Kind: usecase.FetchErrorNetwork, Op: op, Err: err}
		}

		token, err := c.bearerToken(ctx)
		if err != nil {
			return nil, err
		}

		resp, err := c.do(ctx, fasthttp.MethodGet, fullURL, "Bearer "+token, "", nil)
		if err != nil {
			lastErr = &usecase.FetchError{Kind: usecase.FetchErrorNetwork, Op: op, Err: fmt.Errorf("%w: %v", errFeedTransient, err)}
		} else if resp.status == http.StatusOK {
			return resp.body, nil
		} else if !reauthenticated && shouldReauthenticate(resp.status, resp.body) {
			reauthenticated = true
			c.logger.InfoContext(ctx, "feed bearer token rejected, re-authenticating", "op", op, "status", resp.status)
			if _, err := c.reauthenticate(ctx, token); err != nil {
				return nil, err
			}
			attempt--
			continue
		} else {
			lastErr = statusError(op, resp)
			if !isRetryableStatus(resp.status) {
				return nil, lastErr
			}
		}

		if attempt == c.maxRetries {
			break
		}
		backoff := time.Duration(attempt+1) * 500 * time.Millisecond
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, &usecase.FetchError{Kind: usecase.FetchErrorNetwork, Op: op, Err: ctx.Err()}
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = &usecase.FetchError{Kind: usecase.FetchErrorNetwork, Op: op, Err: fmt.Errorf("request failed")}
	}
	c.logger.WarnContext(ctx, "feed request failed", "op", op, "url", fullURL, "error", lastErr)
	return nil, lastErr
}

type feedResponse struct {
	status         int
	body           []byte
	rateLimitReset time.Time
}

func (c *Client) do(ctx context.Context, method, fullURL, authorization, contentType string, body []byte) (feedResponse, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(fullURL)
	req.Header.SetMethod(method)
	req.Header.Set("Accept", "application/json")
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	if contentType != "" {
		req.Header.SetContentType(contentType)
	}
	if len(body) > 0 {
		req.SetBody(body)
	}

	deadline := time.Now().Add(c.timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}
	if err := c.httpClient.DoDeadline(req, resp, deadline); err != nil {
		if ctx.Err() != nil {
			return feedResponse{}, ctx.Err()
		}
		return feedResponse{}, err
	}

	out := feedResponse{
		status: resp.StatusCode(),
		body:   append([]byte(nil), resp.Body()...),
	}
	if reset, err := strconv.ParseInt(string(resp.Header.Peek(rateLimitResetHeader)), 10, 64); err == nil && reset > 0 {
		out.rateLimitReset = time.Unix(reset, 0).UTC()
	}
	return out, nil
}

func (c *Client) bearerToken(ctx context.Context) (string, error) {
	c.mu.RLock()
	token := c.token
	c.mu.RUnlock()
	if token != "" {
		return token, nil
	}
	return c.reauthenticate(ctx, "")
}

// reauthenticate exchanges the consumer credentials for a new bearer token.
// Concurrent callers holding the same stale token share one exchange.
func (c *Client) reauthenticate(ctx context.Context, stale string) (string, error) {
	const op = "token"
	token, err, _ := c.flight.Do(bearerTokenFlight, func() (string, error) {
		c.mu.RLock()
		current := c.token
		c.mu.RUnlock()
		if current != "" && current != stale {
			return current, nil
		}

		if c.credentials == "" {
			return "", &usecase.FetchError{Kind: usecase.FetchErrorAuth, Op: op, Err: fmt.Errorf("consumer key and secret are required")}
		}

		resp, err := c.do(ctx, fasthttp.MethodPost, c.tokenURL, "Basic "+c.credentials,
			"application/x-www-form-urlencoded;charset=UTF-8", []byte("grant_type=client_credentials"))
		if err != nil {
			return "", &usecase.FetchError{Kind: usecase.FetchErrorNetwork, Op: op, Err: err}
		}
		if resp.status != http.StatusOK {
			return "", &usecase.FetchError{Kind: usecase.FetchErrorAuth, StatusCode: resp.status, Op: op, Err: fmt.Errorf("body=%s", abbreviateBody(resp.body))}
		}

		var payload tokenPayload
		if err := sonic.Unmarshal(resp.body, &payload); err != nil {
			return "", &usecase.FetchError{Kind: usecase.FetchErrorMalformed, Op: op, Err: err}
		}
		token := strings.TrimSpace(payload.AccessToken)
		if token == "" {
			return "", &usecase.FetchError{Kind: usecase.FetchErrorAuth, Op: op, Err: fmt.Errorf("empty access token")}
		}

		c.mu.Lock()
		c.token = token
		c.mu.Unlock()
		c.logger.InfoContext(ctx, "feed bearer token refreshed")
		return token, nil
	})
	if err != nil {
		return "", err
	}
	return token, nil
}

func shouldReauthenticate(status int, body []byte) bool {
	if status != http.StatusBadRequest && status != http.StatusUnauthorized {
		return false
	}

	var payload errorsPayload
	if err := sonic.Unmarshal(body, &payload); err != nil || len(payload.Errors) == 0 {
		return false
	}
	_, ok := reauthErrorCodes[payload.Errors[0].Code]
	return ok
}

func statusError(op string, resp feedResponse) *usecase.FetchError {
	out := &usecase.FetchError{
		Kind:       usecase.FetchErrorStatus,
		StatusCode: resp.status,
		Op:         op,
		Err:        fmt.Errorf("body=%s", abbreviateBody(resp.body)),
	}
	switch {
	case resp.status == http.StatusUnauthorized || resp.status == http.StatusForbidden:
		out.Kind = usecase.FetchErrorAuth
	case resp.status == http.StatusTooManyRequests:
		out.Kind = usecase.FetchErrorRateLimit
		out.ResetAt = resp.rateLimitReset
	case isRetryableStatus(resp.status):
		out.Err = fmt.Errorf("%w: body=%s", errFeedTransient, abbreviateBody(resp.body))
	}
	return out
}

func isRetryableStatus(code int) bool {
	return code == http.StatusRequestTimeout || code >= http.StatusInternalServerError
}

func isFeedCircuitFailure(err error) bool {
	if stderrors.Is(err, errFeedTransient) {
		return true
	}
	var fetchErr *usecase.FetchError
	if stderrors.As(err, &fetchErr) {
		return fetchErr.Kind == usecase.FetchErrorRateLimit
	}
	return false
}

func encodeCredentials(key, secret string) string {
	key = strings.TrimSpace(key)
	secret = strings.TrimSpace(secret)
	if key == "" || secret == "" {
		return ""
	}
	raw := url.QueryEscape(key) + ":" + url.QueryEscape(secret)
	return base64.StdEncoding.EncodeToString([]byte(raw))
}

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) > 512 {
		return text[:512] + "..."
	}
	return text
}

var _ usecase.FeedFetcher = (*Client)(nil)

