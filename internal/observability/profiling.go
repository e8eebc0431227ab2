package observability

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/pprof"
	"time"

	"github.com/grafana/pyroscope-go"
	"github.com/riskibarqy/ultimate-scores/internal/config"
	"github.com/riskibarqy/ultimate-scores/internal/platform/logging"
)

// Profiling owns the optional pprof listener and the Pyroscope profiler.
type Profiling struct {
	logger    *logging.Logger
	pprof     *http.Server
	pprofAddr string
	profiler  *pyroscope.Profiler
}

// StartProfiling starts whatever PPROF_* and PYROSCOPE_* enable. A zero
// Profiling is returned when both are off and Stop is then a no-op.
func StartProfiling(cfg config.Config, logger *logging.Logger) (*Profiling, error) {
	if logger == nil {
		logger = logging.Default()
	}
	p := &Profiling{logger: logger}

	if cfg.PyroscopeEnabled {
		profiler, err := pyroscope.Start(pyroscope.Config{
			ApplicationName:   cfg.PyroscopeAppName,
			ServerAddress:     cfg.PyroscopeServerAddress,
			AuthToken:         cfg.PyroscopeAuthToken,
			BasicAuthUser:     cfg.PyroscopeBasicAuthUser,
			BasicAuthPassword: cfg.PyroscopeBasicAuthPassword,
			UploadRate:        cfg.PyroscopeUploadRate,
			Tags: map[string]string{
				"env":     cfg.AppEnv,
				"service": cfg.ServiceName,
				"version": cfg.ServiceVersion,
			},
			ProfileTypes: []pyroscope.ProfileType{
				pyroscope.ProfileCPU,
				pyroscope.ProfileAllocObjects,
				pyroscope.ProfileAllocSpace,
				pyroscope.ProfileInuseObjects,
				pyroscope.ProfileInuseSpace,
				pyroscope.ProfileGoroutines,
				pyroscope.ProfileMutexDuration,
				pyroscope.ProfileBlockDuration,
			},
		})
		if err != nil {
			return nil, err
		}
		p.profiler = profiler
		logger.Info("pyroscope enabled", "server_address", cfg.PyroscopeServerAddress, "application", cfg.PyroscopeAppName)
	} else {
		logger.Info("pyroscope disabled", "reason", "PYROSCOPE_ENABLED=false")
	}

	if !cfg.PprofEnabled {
		logger.Info("pprof disabled", "reason", "PPROF_ENABLED=false")
		return p, nil
	}

	listener, err := net.Listen("tcp", cfg.PprofAddr)
	if err != nil {
		_ = p.stopProfiler()
		return nil, err
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)

	p.pprof = &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	p.pprofAddr = listener.Addr().String()
	go func() {
		logger.Info("pprof server starting", "addr", p.pprofAddr)
		if err := p.pprof.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("pprof server failed", "error", err)
		}
	}()

	return p, nil
}

// PprofAddr is the bound pprof address, empty when pprof is off.
func (p *Profiling) PprofAddr() string {
	if p == nil {
		return ""
	}
	return p.pprofAddr
}

func (p *Profiling) Stop(ctx context.Context) error {
	if p == nil {
		return nil
	}

	var errs []error
	if p.pprof != nil {
		if err := p.pprof.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		} else {
			p.logger.Info("pprof server stopped")
		}
	}
	if err := p.stopProfiler(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

func (p *Profiling) stopProfiler() error {
	if p.profiler == nil {
		return nil
	}
	return p.profiler.Stop()
}
