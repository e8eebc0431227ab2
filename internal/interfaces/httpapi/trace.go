package httpapi

import (
	"context"
	"strings"
	"unicode"
	"unicode/utf8"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const handlerSpanPrefix = "httpapi.Handler."

var apiTracer = otel.Tracer("ultimate-scores/internal/interfaces/httpapi")
var noopSpan = trace.SpanFromContext(context.Background())

// startSpan opens spans for exported handler methods only, and only under a
// request span. Middleware and response helpers share the request span.
func startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	if !trace.SpanFromContext(ctx).SpanContext().IsValid() {
		return ctx, noopSpan
	}
	if !shouldCreateHTTPAPISpan(name) {
		return ctx, noopSpan
	}
	return apiTracer.Start(ctx, name)
}

func shouldCreateHTTPAPISpan(name string) bool {
	method, ok := strings.CutPrefix(name, handlerSpanPrefix)
	if !ok {
		return false
	}
	first, _ := utf8.DecodeRuneInString(method)
	return unicode.IsUpper(first)
}
