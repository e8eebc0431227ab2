package httpapi

import (
	"net/http"
	"runtime/debug"

	"github.com/riskibarqy/ultimate-scores/internal/platform/logging"
)

type middleware func(http.Handler) http.Handler

// NewRouter serves the health probe, the public games query and the internal
// job callbacks. Middleware runs outermost first: tracing, logging, CORS and
// panic recovery.
func NewRouter(
	handler *Handler,
	logger *logging.Logger,
	corsAllowedOrigins []string,
	internalJobToken string,
) http.Handler {
	if logger == nil {
		logger = logging.Default()
	}

	mux := http.NewServeMux()
	registerSystemRoutes(mux, handler)
	registerPublicRoutes(mux, handler)
	registerInternalJobRoutes(mux, handler, internalJobToken)

	return chain(mux,
		RequestTracing,
		func(next http.Handler) http.Handler { return RequestLogging(logger, next) },
		func(next http.Handler) http.Handler { return CORS(corsAllowedOrigins, next) },
		func(next http.Handler) http.Handler { return recoverPanic(logger, next) },
	)
}

func chain(h http.Handler, outermostFirst ...middleware) http.Handler {
	for i := len(outermostFirst) - 1; i >= 0; i-- {
		h = outermostFirst[i](h)
	}
	return h
}

func recoverPanic(logger *logging.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := startSpan(r.Context(), "httpapi.recoverPanic")
		defer span.End()

		defer func() {
			if rec := recover(); rec != nil {
				logger.ErrorContext(ctx, "panic recovered", "panic", rec, "path", r.URL.Path, "stack", string(debug.Stack()))
				writeInternalError(ctx, w)
			}
		}()
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
