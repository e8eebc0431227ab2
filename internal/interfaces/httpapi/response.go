package httpapi

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/ultimate-scores/internal/usecase"
)

const (
	googleAPIVersion = "2.0"
	errorDomain      = "ultimate-scores"
)

type googleResponseEnvelope struct {
	APIVersion string           `json:"apiVersion"`
	Data       any              `json:"data,omitempty"`
	Error      *googleErrorBody `json:"error,omitempty"`
}

type googleErrorBody struct {
	Code    int               `json:"code"`
	Message string            `json:"message"`
	Status  string            `json:"status"`
	Errors  []googleErrorItem `json:"errors,omitempty"`
}

type googleErrorItem struct {
	Domain  string `json:"domain"`
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

type mappedError struct {
	HTTPStatus int
	Reason     string
	Status     string
}

// errorRules is checked in order; the first match wins.
var errorRules = []struct {
	match  func(error) bool
	mapped mappedError
}{
	{usecase.IsFeedRateLimited, mappedError{http.StatusTooManyRequests, "rateLimitExceeded", "RESOURCE_EXHAUSTED"}},
	{isErr(usecase.ErrInvalidInput), mappedError{http.StatusBadRequest, "invalidInput", "INVALID_ARGUMENT"}},
	{isErr(usecase.ErrNotFound), mappedError{http.StatusNotFound, "notFound", "NOT_FOUND"}},
	{isErr(usecase.ErrUnauthorized), mappedError{http.StatusUnauthorized, "unauthorized", "UNAUTHENTICATED"}},
	{isErr(usecase.ErrDependencyUnavailable), mappedError{http.StatusServiceUnavailable, "dependencyUnavailable", "UNAVAILABLE"}},
}

var internalErrorMapping = mappedError{http.StatusInternalServerError, "internalError", "INTERNAL"}

func isErr(target error) func(error) bool {
	return func(err error) bool { return errors.Is(err, target) }
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	ctx, span := startSpan(ctx, "httpapi.writeJSON")
	defer span.End()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = sonic.ConfigDefault.NewEncoder(w).Encode(payload)
}

func writeSuccess(ctx context.Context, w http.ResponseWriter, status int, data any) {
	ctx, span := startSpan(ctx, "httpapi.writeSuccess")
	defer span.End()

	writeJSON(ctx, w, status, googleResponseEnvelope{
		APIVersion: googleAPIVersion,
		Data:       data,
	})
}

func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	ctx, span := startSpan(ctx, "httpapi.writeError")
	defer span.End()

	mapped := mapError(ctx, err)
	if mapped.HTTPStatus == http.StatusTooManyRequests {
		setRetryAfter(w, err, time.Now())
	}
	writeJSON(ctx, w, mapped.HTTPStatus, googleResponseEnvelope{
		APIVersion: googleAPIVersion,
		Error: &googleErrorBody{
			Code:    mapped.HTTPStatus,
			Message: err.Error(),
			Status:  mapped.Status,
			Errors: []googleErrorItem{
				{
					Domain:  errorDomain,
					Reason:  mapped.Reason,
					Message: err.Error(),
				},
			},
		},
	})
}

func writeInternalError(ctx context.Context, w http.ResponseWriter) {
	ctx, span := startSpan(ctx, "httpapi.writeInternalError")
	defer span.End()

	const msg = "internal server error"

	writeJSON(ctx, w, internalErrorMapping.HTTPStatus, googleResponseEnvelope{
		APIVersion: googleAPIVersion,
		Error: &googleErrorBody{
			Code:    internalErrorMapping.HTTPStatus,
			Message: msg,
			Status:  internalErrorMapping.Status,
			Errors: []googleErrorItem{
				{
					Domain:  errorDomain,
					Reason:  internalErrorMapping.Reason,
					Message: msg,
				},
			},
		},
	})
}

func mapError(ctx context.Context, err error) mappedError {
	_, span := startSpan(ctx, "httpapi.mapError")
	defer span.End()

	for _, rule := range errorRules {
		if rule.match(err) {
			return rule.mapped
		}
	}
	return internalErrorMapping
}

// setRetryAfter tells clients when a rate-limited feed read can be retried.
func setRetryAfter(w http.ResponseWriter, err error, now time.Time) {
	var fetchErr *usecase.FetchError
	if !errors.As(err, &fetchErr) || fetchErr.ResetAt.IsZero() {
		return
	}
	seconds := int(math.Ceil(fetchErr.ResetAt.Sub(now).Seconds()))
	if seconds < 1 {
		seconds = 1
	}
	w.Header().Set("Retry-After", strconv.Itoa(seconds))
}
