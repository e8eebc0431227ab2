package observability

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/riskibarqy/ultimate-scores/internal/config"
	"github.com/riskibarqy/ultimate-scores/internal/platform/logging"
	"github.com/valyala/bytebufferpool"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	betterStackQueueSize     = 1024
	betterStackMaxBatch      = 50
	betterStackFlushInterval = time.Second
	betterStackDrainTimeout  = 5 * time.Second
)

// InitBetterStackLogger tees the service logger to stdout and a Better Stack
// HTTP source. Records below BETTERSTACK_MIN_LEVEL stay local.
func InitBetterStackLogger(cfg config.Config, baseLogger *logging.Logger) (*logging.Logger, func(context.Context) error, error) {
	if baseLogger == nil {
		baseLogger = logging.NewJSON(cfg.LogLevel)
	}
	noop := func(context.Context) error { return nil }

	if !cfg.BetterStackEnabled {
		baseLogger.Info("betterstack disabled", "reason", "BETTERSTACK_ENABLED=false")
		return baseLogger, noop, nil
	}

	endpoint := normalizeBetterStackEndpoint(cfg.BetterStackEndpoint)
	if endpoint == "" {
		return nil, nil, fmt.Errorf("betterstack endpoint cannot be empty")
	}

	encoder := zapcore.NewJSONEncoder(zapcore.EncoderConfig{
		TimeKey:        "dt",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "message",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.RFC3339NanoTimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	})

	shipper := newBetterStackShipper(endpoint, strings.TrimSpace(cfg.BetterStackToken), cfg.BetterStackTimeout)
	core := zapcore.NewTee(
		zapcore.NewCore(encoder.Clone(), zapcore.Lock(os.Stdout), cfg.LogLevel),
		zapcore.NewCore(encoder, shipper, cfg.BetterStackMinLevel),
	)
	zapLogger := zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)).With(
		zap.String("service", cfg.ServiceName),
		zap.String("env", cfg.AppEnv),
	)

	logger := logging.FromZap(zapLogger)
	logger.Info("betterstack enabled",
		"endpoint", endpoint,
		"min_level", cfg.BetterStackMinLevel.String(),
	)

	return logger, func(ctx context.Context) error {
		if ctx == nil {
			ctx = context.Background()
		}
		if _, ok := ctx.Deadline(); !ok {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, betterStackDrainTimeout)
			defer cancel()
		}
		if err := shipper.Close(ctx); err != nil {
			return fmt.Errorf("drain betterstack queue: %w", err)
		}
		if err := logger.Sync(); err != nil && !isIgnorableLoggerSyncError(err) {
			return err
		}
		return nil
	}, nil
}

func normalizeBetterStackEndpoint(raw string) string {
	value := strings.TrimSpace(raw)
	if value == "" {
		return ""
	}
	if strings.HasPrefix(value, "http://") || strings.HasPrefix(value, "https://") {
		return value
	}
	return "https://" + value
}

// betterStackShipper is a zapcore.WriteSyncer that batches encoded records
// into JSON arrays and posts them from a single goroutine. Writes never block;
// records are dropped when the queue is full.
type betterStackShipper struct {
	endpoint string
	token    string
	client   *http.Client

	queue   chan []byte
	mu      sync.RWMutex
	closed  bool
	once    sync.Once
	done    chan struct{}
	dropped atomic.Uint64
}

func newBetterStackShipper(endpoint, token string, timeout time.Duration) *betterStackShipper {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}

	s := &betterStackShipper{
		endpoint: endpoint,
		token:    token,
		client:   &http.Client{Timeout: timeout},
		queue:    make(chan []byte, betterStackQueueSize),
		done:     make(chan struct{}),
	}
	go s.run()

	return s
}

func (s *betterStackShipper) Write(p []byte) (int, error) {
	record := bytes.TrimSpace(p)
	if len(record) == 0 {
		return len(p), nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return len(p), nil
	}

	// zap reuses its buffer after Write returns.
	select {
	case s.queue <- append([]byte(nil), record...):
	default:
		if n := s.dropped.Add(1); n == 1 || n%100 == 0 {
			fmt.Fprintf(os.Stderr, "betterstack queue full; dropped logs=%d\n", n)
		}
	}

	return len(p), nil
}

func (s *betterStackShipper) Sync() error {
	return nil
}

func (s *betterStackShipper) run() {
	defer close(s.done)

	ticker := time.NewTicker(betterStackFlushInterval)
	defer ticker.Stop()

	batch := make([][]byte, 0, betterStackMaxBatch)
	flush := func() {
		if len(batch) == 0 {
			return
		}
		s.post(batch)
		batch = batch[:0]
	}

	for {
		select {
		case record, ok := <-s.queue:
			if !ok {
				flush()
				return
			}
			batch = append(batch, record)
			if len(batch) >= betterStackMaxBatch {
				flush()
			}
		case <-ticker.C:
			flush()
		}
	}
}

func (s *betterStackShipper) post(batch [][]byte) {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	_ = buf.WriteByte('[')
	for i, record := range batch {
		if i > 0 {
			_ = buf.WriteByte(',')
		}
		_, _ = buf.Write(record)
	}
	_ = buf.WriteByte(']')

	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, s.endpoint, bytes.NewReader(buf.B))
	if err != nil {
		fmt.Fprintf(os.Stderr, "betterstack create request failed: %v\n", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "betterstack send batch failed: records=%d err=%v\n", len(batch), err)
		return
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= http.StatusMultipleChoices {
		fmt.Fprintf(os.Stderr, "betterstack send batch got status=%d records=%d\n", resp.StatusCode, len(batch))
	}
}

// Close stops accepting records and waits for the queue to drain.
func (s *betterStackShipper) Close(ctx context.Context) error {
	s.once.Do(func() {
		s.mu.Lock()
		s.closed = true
		close(s.queue)
		s.mu.Unlock()
	})

	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func isIgnorableLoggerSyncError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "bad file descriptor") || strings.Contains(msg, "invalid argument")
}
