package jobscheduler

import "time"

type DispatchStatus string

const (
	StatusSent      DispatchStatus = "sent"
	StatusCompleted DispatchStatus = "completed"
	StatusFailed    DispatchStatus = "failed"
)

// Terminal reports whether a handler run produced the status.
func (s DispatchStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// DispatchEvent is one transition of a queued crawl or refresh job. Sent
// events come from the enqueuing side, terminal ones from the job handler.
type DispatchEvent struct {
	DispatchID   string
	JobName      string
	JobPath      string
	TargetID     string
	Status       DispatchStatus
	Payload      map[string]any
	ErrorMessage string
	OccurredAt   time.Time
	TraceID      string
	SpanID       string
}

// Dispatch is the folded ledger row for one dispatch id.
type Dispatch struct {
	DispatchID string
	JobName    string
	TargetID   string
	Status     DispatchStatus
	Runs       int
	LastError  string
	SentAt     *time.Time
	FinishedAt *time.Time
}

// Apply folds event into d. Handler runs are counted; the first sent time wins.
func (d Dispatch) Apply(event DispatchEvent) Dispatch {
	d.DispatchID = event.DispatchID
	if event.JobName != "" {
		d.JobName = event.JobName
	}
	if event.TargetID != "" {
		d.TargetID = event.TargetID
	}
	d.Status = event.Status

	at := event.OccurredAt.UTC()
	switch {
	case event.Status == StatusSent:
		if d.SentAt == nil {
			d.SentAt = &at
		}
		d.LastError = ""
	case event.Status.Terminal():
		d.Runs++
		d.FinishedAt = &at
		d.LastError = ""
		if event.Status == StatusFailed {
			d.LastError = event.ErrorMessage
		}
	}
	return d
}
