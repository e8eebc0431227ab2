package jobqueue

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/ultimate-scores/internal/platform/logging"
	"github.com/riskibarqy/ultimate-scores/internal/platform/resilience"
	"github.com/riskibarqy/ultimate-scores/internal/usecase"
	"github.com/valyala/bytebufferpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const (
	headerJobToken        = "X-Internal-Job-Token"
	maxLoggedBodyBytes    = 4096
	defaultPublishTimeout = 10 * time.Second
)

var errQStashTransient = crerr.New("qstash transient failure")

type QStashPublisherConfig struct {
	BaseURL          string
	Token            string
	TargetBaseURL    string
	Retries          int
	InternalJobToken string
	Timeout          time.Duration
	CircuitBreaker   resilience.CircuitBreakerConfig
}

// QStashPublisher delivers crawl jobs to the QStash work queue, which calls
// back into the internal job routes of this service.
type QStashPublisher struct {
	client           *http.Client
	baseURL          string
	token            string
	targetBaseURL    string
	retries          int
	internalJobToken string
	logger           *logging.Logger
	breaker          *resilience.CircuitBreaker
}

type publishRequest struct {
	path            string
	targetURL       string
	publishURL      string
	body            []byte
	delay           time.Duration
	deduplicationID string
}

func NewQStashPublisher(cfg QStashPublisherConfig, logger *logging.Logger) *QStashPublisher {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultPublishTimeout
	}
	if logger == nil {
		logger = logging.Default()
	}

	return &QStashPublisher{
		client:           &http.Client{Timeout: timeout},
		baseURL:          strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		token:            strings.TrimSpace(cfg.Token),
		targetBaseURL:    strings.TrimRight(strings.TrimSpace(cfg.TargetBaseURL), "/"),
		retries:          cfg.Retries,
		internalJobToken: strings.TrimSpace(cfg.InternalJobToken),
		logger:           logger,
		breaker:          resilience.NewCircuitBreakerFromConfig(cfg.CircuitBreaker.LogTransitions(logger, "qstash")),
	}
}

// Enqueue publishes payload for path. QStash drops a second publish with the
// same deduplicationID, so a retried dispatch never runs a job twice.
func (p *QStashPublisher) Enqueue(ctx context.Context, path string, payload any, delay time.Duration, deduplicationID string) error {
	req, err := p.buildRequest(path, payload, delay, deduplicationID)
	if err != nil {
		return err
	}

	preview := curlPreview(req, p.retries, p.internalJobToken != "")
	if span := trace.SpanFromContext(ctx); span.IsRecording() {
		span.SetAttributes(
			attribute.String("qstash.target_url", req.targetURL),
			attribute.String("qstash.path", req.path),
			attribute.String("qstash.deduplication_id", req.deduplicationID),
			attribute.String("qstash.request_curl_preview", preview),
		)
	}
	p.logger.DebugContext(ctx, "qstash publish request", "path", req.path, "target_url", req.targetURL, "curl_preview", preview)

	err = p.breaker.Do(func() error { return p.send(ctx, req) }, isQStashCircuitFailure)
	if stderrors.Is(err, resilience.ErrCircuitOpen) {
		p.logger.WarnContext(ctx, "qstash circuit breaker rejected request", "state", p.breaker.State(), "path", path)
		return fmt.Errorf("%w: qstash is temporarily unavailable: %v", usecase.ErrDependencyUnavailable, err)
	}
	if err != nil {
		if stderrors.Is(err, errQStashTransient) {
			return fmt.Errorf("%w: %v", usecase.ErrDependencyUnavailable, err)
		}
		return err
	}

	p.logger.InfoContext(ctx, "qstash job published",
		"path", req.path,
		"delay", formatDelay(req.delay),
		"deduplication_id", req.deduplicationID,
	)
	return nil
}

func (p *QStashPublisher) buildRequest(path string, payload any, delay time.Duration, deduplicationID string) (publishRequest, error) {
	path = "/" + strings.TrimLeft(strings.TrimSpace(path), "/")
	if path == "/" {
		return publishRequest{}, crerr.New("job path is required")
	}

	baseURL, err := validateHTTPBaseURL(p.baseURL)
	if err != nil {
		return publishRequest{}, crerr.Wrap(err, "invalid QSTASH_BASE_URL")
	}
	targetBaseURL, err := validateHTTPBaseURL(p.targetBaseURL)
	if err != nil {
		return publishRequest{}, crerr.Wrap(err, "invalid QSTASH_TARGET_BASE_URL")
	}

	if payload == nil {
		payload = map[string]any{}
	}
	body, err := sonic.Marshal(payload)
	if err != nil {
		return publishRequest{}, crerr.Wrap(err, "marshal job payload")
	}

	targetURL := targetBaseURL + path
	return publishRequest{
		path:            path,
		targetURL:       targetURL,
		publishURL:      baseURL + "/v2/publish/" + targetURL,
		body:            body,
		delay:           delay,
		deduplicationID: strings.TrimSpace(deduplicationID),
	}, nil
}

func (p *QStashPublisher) send(ctx context.Context, job publishRequest) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, job.publishURL, strings.NewReader(string(job.body)))
	if err != nil {
		return crerr.Wrap(err, "create qstash request")
	}
	req.Header.Set("Authorization", "Bearer "+p.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Upstash-Method", http.MethodPost)
	if p.retries > 0 {
		req.Header.Set("Upstash-Retries", strconv.Itoa(p.retries))
	}
	if job.delay > 0 {
		req.Header.Set("Upstash-Delay", formatDelay(job.delay))
	}
	if job.deduplicationID != "" {
		req.Header.Set("Upstash-Deduplication-Id", job.deduplicationID)
	}
	if p.internalJobToken != "" {
		req.Header.Set("Upstash-Forward-"+headerJobToken, p.internalJobToken)
	}
	forwardTraceContext(ctx, req.Header)

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: publish job path=%s: %v", errQStashTransient, job.path, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode/100 == 2 {
		return nil
	}

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxLoggedBodyBytes))
	callErr := fmt.Errorf("publish job path=%s status=%d body=%s", job.path, resp.StatusCode, strings.TrimSpace(string(raw)))
	if isQStashRetryableStatus(resp.StatusCode) {
		return fmt.Errorf("%w: %v", errQStashTransient, callErr)
	}
	return callErr
}

// forwardTraceContext asks QStash to replay the caller's trace headers on the
// job callback so a crawl chain shares one trace.
func forwardTraceContext(ctx context.Context, header http.Header) {
	carrier := propagation.HeaderCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	for _, key := range carrier.Keys() {
		if value := carrier.Get(key); value != "" {
			header.Set("Upstash-Forward-"+key, value)
		}
	}
}

func formatDelay(delay time.Duration) string {
	seconds := int64(delay.Round(time.Second) / time.Second)
	if seconds < 0 {
		seconds = 0
	}
	return strconv.FormatInt(seconds, 10) + "s"
}

func validateHTTPBaseURL(raw string) (string, error) {
	candidate := strings.TrimSpace(raw)
	if candidate == "" {
		return "", crerr.New("value is empty")
	}

	parsed, err := url.Parse(candidate)
	if err != nil {
		return "", crerr.Wrapf(err, "parse %q", candidate)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", crerr.Newf("%q uses unsupported scheme=%q; expected http or https", candidate, parsed.Scheme)
	}
	if strings.TrimSpace(parsed.Host) == "" {
		return "", crerr.Newf("%q has empty host", candidate)
	}

	return strings.TrimRight(candidate, "/"), nil
}

// curlPreview renders the publish call as a curl command with secrets masked.
func curlPreview(job publishRequest, retries int, withForwardToken bool) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	appendPart := func(part string) {
		if buf.Len() > 0 {
			_ = buf.WriteByte(' ')
		}
		_, _ = buf.WriteString(part)
	}
	appendHeader := func(value string) {
		appendPart("-H")
		appendPart(shellQuote(value))
	}

	appendPart("curl -X POST")
	appendPart(shellQuote(job.publishURL))
	appendHeader("Authorization: Bearer ***")
	appendHeader("Content-Type: application/json")
	if retries > 0 {
		appendHeader("Upstash-Retries: " + strconv.Itoa(retries))
	}
	if job.delay > 0 {
		appendHeader("Upstash-Delay: " + formatDelay(job.delay))
	}
	if job.deduplicationID != "" {
		appendHeader("Upstash-Deduplication-Id: " + job.deduplicationID)
	}
	if withForwardToken {
		appendHeader("Upstash-Forward-" + headerJobToken + ": ***")
	}
	appendPart("-d")
	appendPart(shellQuote(truncateForLog(string(job.body), maxLoggedBodyBytes)))

	return buf.String()
}

func shellQuote(value string) string {
	return "'" + strings.ReplaceAll(value, "'", "'\"'\"'") + "'"
}

func truncateForLog(value string, max int) string {
	if max <= 0 || len(value) <= max {
		return value
	}
	return value[:max] + "...(truncated)"
}

func isQStashCircuitFailure(err error) bool {
	return stderrors.Is(err, errQStashTransient)
}

func isQStashRetryableStatus(statusCode int) bool {
	return statusCode == http.StatusRequestTimeout ||
		statusCode == http.StatusTooManyRequests ||
		statusCode >= http.StatusInternalServerError
}

var _ usecase.JobQueue = (*QStashPublisher)(nil)
