package usecase

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/riskibarqy/ultimate-scores/internal/domain/jobscheduler"
	"github.com/riskibarqy/ultimate-scores/internal/platform/logging"
	"go.opentelemetry.io/otel/trace"
)

const (
	JobNameCrawlList     = "crawl-list"
	JobNameCrawlAllLists = "crawl-all-lists"
	JobNameUpdateLists   = "update-lists"
	JobNameBackfill      = "backfill"
	JobNameBackfillList  = "backfill-list"
	JobNameSRGames       = "score-reporter-games"
	JobNameSRTeams       = "score-reporter-teams"

	JobPathCrawlList     = "/v1/internal/jobs/crawl-list"
	JobPathCrawlAllLists = "/v1/internal/jobs/crawl-all-lists"
	JobPathUpdateLists   = "/v1/internal/jobs/update-lists"
	JobPathBackfill      = "/v1/internal/jobs/backfill"
	JobPathBackfillList  = "/v1/internal/jobs/backfill-list"
	JobPathSRGames       = "/v1/internal/jobs/score-reporter/games"
	JobPathSRTeams       = "/v1/internal/jobs/score-reporter/teams"
)

type JobQueue interface {
	Enqueue(ctx context.Context, path string, payload any, delay time.Duration, deduplicationID string) error
}

type noopJobQueue struct{}

func (noopJobQueue) Enqueue(_ context.Context, _ string, _ any, _ time.Duration, _ string) error {
	return nil
}

func NewNoopJobQueue() JobQueue {
	return noopJobQueue{}
}

// JobSpec is one job to enqueue. Payload receives the dispatch id.
type JobSpec struct {
	Name     string
	Path     string
	TargetID string
	Payload  map[string]any
	Delay    time.Duration
	DedupID  string
}

// JobDispatcher enqueues jobs and records every dispatch in the ledger.
type JobDispatcher struct {
	queue        JobQueue
	dispatchRepo jobscheduler.Repository
	logger       *logging.Logger
	now          func() time.Time
}

var dedupUnsafeCharRegex = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

func NewJobDispatcher(queue JobQueue, dispatchRepo jobscheduler.Repository, logger *logging.Logger) *JobDispatcher {
	if queue == nil {
		queue = NewNoopJobQueue()
	}
	if logger == nil {
		logger = logging.Default()
	}

	return &JobDispatcher{
		queue:        queue,
		dispatchRepo: dispatchRepo,
		logger:       logger,
		now:          time.Now,
	}
}

func (d *JobDispatcher) Dispatch(ctx context.Context, spec JobSpec) error {
	payload := make(map[string]any, len(spec.Payload)+1)
	for key, value := range spec.Payload {
		payload[key] = value
	}
	payload["dispatch_id"] = spec.DedupID

	event := jobscheduler.DispatchEvent{
		DispatchID: spec.DedupID,
		JobName:    spec.Name,
		JobPath:    spec.Path,
		TargetID:   spec.TargetID,
		Payload:    payload,
		OccurredAt: d.now().UTC(),
	}

	if err := d.queue.Enqueue(ctx, spec.Path, payload, spec.Delay, spec.DedupID); err != nil {
		event.Status = jobscheduler.StatusFailed
		event.ErrorMessage = err.Error()
		d.RecordEvent(ctx, event)
		return fmt.Errorf("enqueue %s target=%s: %w", spec.Name, spec.TargetID, err)
	}

	event.Status = jobscheduler.StatusSent
	d.RecordEvent(ctx, event)
	return nil
}

// RecordEvent writes a ledger entry. Failures are logged and swallowed.
func (d *JobDispatcher) RecordEvent(ctx context.Context, event jobscheduler.DispatchEvent) {
	if d == nil || d.dispatchRepo == nil || strings.TrimSpace(event.DispatchID) == "" {
		return
	}
	traceID, spanID := traceMetaFromContext(ctx)
	event.TraceID = traceID
	event.SpanID = spanID
	if event.OccurredAt.IsZero() {
		event.OccurredAt = d.now().UTC()
	}
	if err := d.dispatchRepo.UpsertEvent(ctx, event); err != nil {
		d.logger.WarnContext(ctx, "record job dispatch event failed",
			"dispatch_id", event.DispatchID,
			"status", event.Status,
			"error", err,
		)
	}
}

func dedupKey(prefix, targetID string, at time.Time, bucket time.Duration) string {
	if bucket <= 0 {
		bucket = time.Minute
	}
	slot := at.UTC().Truncate(bucket).Format("20060102T150405Z")
	prefix = sanitizeDedupSegment(prefix)
	targetID = sanitizeDedupSegment(targetID)
	return prefix + "-" + targetID + "-" + slot
}

// chainDedupKey identifies one page of a crawl chain. Two workers planning the
// same page produce the same key.
func chainDedupKey(prefix string, parts ...string) string {
	out := sanitizeDedupSegment(prefix)
	for _, part := range parts {
		out += "-" + sanitizeDedupSegment(part)
	}
	return out
}

func sanitizeDedupSegment(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "unknown"
	}
	return dedupUnsafeCharRegex.ReplaceAllString(value, "-")
}

func traceMetaFromContext(ctx context.Context) (string, string) {
	spanContext := trace.SpanFromContext(ctx).SpanContext()
	if !spanContext.IsValid() {
		return "", ""
	}
	return spanContext.TraceID().String(), spanContext.SpanID().String()
}
