package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/ultimate-scores/internal/domain/jobscheduler"
	qb "github.com/riskibarqy/ultimate-scores/internal/platform/querybuilder"
)

// upsertJobDispatchSuffix folds an event into the existing row the same way
// jobscheduler.Dispatch.Apply does. Empty identity fields never overwrite.
const upsertJobDispatchSuffix = `ON CONFLICT (dispatch_id) WHERE deleted_at IS NULL
DO UPDATE SET
    job_name = COALESCE(NULLIF(EXCLUDED.job_name, ''), job_dispatches.job_name),
    job_path = COALESCE(NULLIF(EXCLUDED.job_path, ''), job_dispatches.job_path),
    target_id = COALESCE(NULLIF(EXCLUDED.target_id, ''), job_dispatches.target_id),
    payload = CASE
        WHEN EXCLUDED.status = 'sent' THEN EXCLUDED.payload
        ELSE job_dispatches.payload
    END,
    status = EXCLUDED.status,
    runs = job_dispatches.runs + EXCLUDED.runs,
    last_error = EXCLUDED.last_error,
    trace_id = EXCLUDED.trace_id,
    span_id = EXCLUDED.span_id,
    sent_at = COALESCE(job_dispatches.sent_at, EXCLUDED.sent_at),
    finished_at = COALESCE(EXCLUDED.finished_at, job_dispatches.finished_at),
    updated_at = EXCLUDED.updated_at`

type JobDispatchRepository struct {
	db *sqlx.DB
}

func NewJobDispatchRepository(db *sqlx.DB) *JobDispatchRepository {
	return &JobDispatchRepository{db: db}
}

func (r *JobDispatchRepository) UpsertEvent(ctx context.Context, event jobscheduler.DispatchEvent) error {
	model, err := jobDispatchModelFromEvent(event, time.Now().UTC())
	if err != nil {
		return err
	}

	query, args, err := qb.InsertModel("job_dispatches", model, upsertJobDispatchSuffix)
	if err != nil {
		return fmt.Errorf("build upsert job dispatch query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert job dispatch dispatch_id=%s status=%s: %w", model.DispatchID, event.Status, err)
	}

	return nil
}

func jobDispatchModelFromEvent(event jobscheduler.DispatchEvent, now time.Time) (jobDispatchInsertModel, error) {
	dispatchID := strings.TrimSpace(event.DispatchID)
	if dispatchID == "" {
		return jobDispatchInsertModel{}, fmt.Errorf("dispatch id is required")
	}

	occurredAt := event.OccurredAt.UTC()
	if event.OccurredAt.IsZero() {
		occurredAt = now
	}

	payload := "{}"
	if len(event.Payload) > 0 {
		raw, err := sonic.MarshalString(event.Payload)
		if err != nil {
			return jobDispatchInsertModel{}, fmt.Errorf("marshal job dispatch payload: %w", err)
		}
		payload = raw
	}

	model := jobDispatchInsertModel{
		DispatchID: dispatchID,
		JobName:    strings.TrimSpace(event.JobName),
		JobPath:    strings.TrimSpace(event.JobPath),
		TargetID:   strings.TrimSpace(event.TargetID),
		Payload:    payload,
		Status:     string(event.Status),
		TraceID:    optionalString(event.TraceID),
		SpanID:     optionalString(event.SpanID),
		UpdatedAt:  now,
	}
	if event.Status == jobscheduler.StatusSent {
		model.SentAt = &occurredAt
	}
	if event.Status.Terminal() {
		model.Runs = 1
		model.FinishedAt = &occurredAt
	}
	if event.Status == jobscheduler.StatusFailed {
		model.LastError = optionalString(event.ErrorMessage)
	}

	return model, nil
}
