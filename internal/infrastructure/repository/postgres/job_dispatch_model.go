package postgres

import "time"

type jobDispatchInsertModel struct {
	DispatchID string     `db:"dispatch_id"`
	JobName    string     `db:"job_name"`
	JobPath    string     `db:"job_path"`
	TargetID   string     `db:"target_id"`
	Payload    string     `db:"payload"`
	Status     string     `db:"status"`
	Runs       int        `db:"runs"`
	LastError  *string    `db:"last_error"`
	TraceID    *string    `db:"trace_id"`
	SpanID     *string    `db:"span_id"`
	SentAt     *time.Time `db:"sent_at"`
	FinishedAt *time.Time `db:"finished_at"`
	UpdatedAt  time.Time  `db:"updated_at"`
}
