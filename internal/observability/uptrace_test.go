package observability

import (
	"context"
	"testing"

	"github.com/riskibarqy/ultimate-scores/internal/config"
	"github.com/riskibarqy/ultimate-scores/internal/platform/logging"
)

func TestInitUptrace_Disabled(t *testing.T) {
	cases := map[string]config.Config{
		"flag off": {
			UptraceEnabled: false,
			ServiceName:    "ultimate-scores-api",
			ServiceVersion: "dev",
			AppEnv:         config.EnvDev,
		},
		"dsn empty": {
			UptraceEnabled: true,
			UptraceDSN:     "  ",
			ServiceName:    "ultimate-scores-api",
			AppEnv:         config.EnvDev,
		},
	}

	for name, cfg := range cases {
		t.Run(name, func(t *testing.T) {
			shutdown, err := InitUptrace(cfg, logging.NewNop())
			if err != nil {
				t.Fatalf("init uptrace: %v", err)
			}
			if err := shutdown(context.Background()); err != nil {
				t.Fatalf("shutdown uptrace: %v", err)
			}
		})
	}
}
