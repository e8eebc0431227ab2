package observability

import (
	"context"
	"strings"

	"github.com/riskibarqy/ultimate-scores/internal/config"
	"github.com/riskibarqy/ultimate-scores/internal/platform/logging"
	"github.com/uptrace/uptrace-go/uptrace"
	"go.opentelemetry.io/otel/attribute"
)

// InitUptrace installs the global OpenTelemetry providers and, when
// UPTRACE_LOGS_ENABLED is set, mirrors service logs to OTel logs.
func InitUptrace(cfg config.Config, logger *logging.Logger) (func(context.Context) error, error) {
	if logger == nil {
		logger = logging.Default()
	}

	disabled := func(reason string) (func(context.Context) error, error) {
		logging.SetMirror(nil)
		logger.Info("uptrace disabled", "reason", reason)
		return func(context.Context) error { return nil }, nil
	}
	if !cfg.UptraceEnabled {
		return disabled("UPTRACE_ENABLED=false")
	}
	if strings.TrimSpace(cfg.UptraceDSN) == "" {
		return disabled("UPTRACE_DSN empty")
	}

	uptrace.ConfigureOpentelemetry(
		uptrace.WithDSN(cfg.UptraceDSN),
		uptrace.WithServiceName(cfg.ServiceName),
		uptrace.WithServiceVersion(cfg.ServiceVersion),
		uptrace.WithDeploymentEnvironment(cfg.AppEnv),
		uptrace.WithLoggingEnabled(cfg.UptraceLogsEnabled),
		uptrace.WithResourceAttributes(
			attribute.Int("crawl.page_size", cfg.Crawl.PageSize),
			attribute.Bool("match.strict_mode", cfg.Match.StrictMode),
		),
	)

	var mirror logging.MirrorFunc
	if cfg.UptraceLogsEnabled {
		mirror = newUptraceLogMirror(cfg.ServiceVersion)
	}
	logging.SetMirror(mirror)

	logger.Info("uptrace enabled",
		"service_name", cfg.ServiceName,
		"service_version", cfg.ServiceVersion,
		"environment", cfg.AppEnv,
		"logs_enabled", cfg.UptraceLogsEnabled,
	)

	return func(ctx context.Context) error {
		logging.SetMirror(nil)
		return uptrace.Shutdown(ctx)
	}, nil
}
