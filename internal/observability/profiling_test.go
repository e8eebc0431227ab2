package observability

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/riskibarqy/ultimate-scores/internal/config"
	"github.com/riskibarqy/ultimate-scores/internal/platform/logging"
)

func TestStartProfiling_Disabled(t *testing.T) {
	t.Parallel()

	p, err := StartProfiling(config.Config{}, logging.NewNop())
	if err != nil {
		t.Fatalf("start profiling: %v", err)
	}
	if p.PprofAddr() != "" {
		t.Fatalf("expected no pprof listener, got %q", p.PprofAddr())
	}
	if err := p.Stop(context.Background()); err != nil {
		t.Fatalf("stop profiling: %v", err)
	}
}

func TestStartProfiling_ServesPprof(t *testing.T) {
	t.Parallel()

	p, err := StartProfiling(config.Config{PprofEnabled: true, PprofAddr: "127.0.0.1:0"}, logging.NewNop())
	if err != nil {
		t.Fatalf("start profiling: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if err := p.Stop(ctx); err != nil {
			t.Errorf("stop profiling: %v", err)
		}
	}()

	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get("http://" + p.PprofAddr() + "/debug/pprof/")
	if err != nil {
		t.Fatalf("get pprof index: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected pprof status: got=%d want=%d", resp.StatusCode, http.StatusOK)
	}
}

func TestProfiling_NilStop(t *testing.T) {
	t.Parallel()

	var p *Profiling
	if err := p.Stop(context.Background()); err != nil {
		t.Fatalf("nil stop: %v", err)
	}
}
