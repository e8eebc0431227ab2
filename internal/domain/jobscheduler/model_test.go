package jobscheduler

import (
	"testing"
	"time"
)

func TestDispatchApply(t *testing.T) {
	sentAt := time.Date(2015, 8, 22, 18, 0, 0, 0, time.UTC)

	var d Dispatch
	d = d.Apply(DispatchEvent{DispatchID: "crawl-list-1", JobName: "crawl-list", TargetID: "186732484", Status: StatusSent, OccurredAt: sentAt})
	d = d.Apply(DispatchEvent{DispatchID: "crawl-list-1", Status: StatusFailed, ErrorMessage: "feed timeout", OccurredAt: sentAt.Add(time.Minute)})

	if d.Status != StatusFailed || d.Runs != 1 || d.LastError != "feed timeout" {
		t.Fatalf("unexpected dispatch after failure: %+v", d)
	}

	d = d.Apply(DispatchEvent{DispatchID: "crawl-list-1", Status: StatusSent, OccurredAt: sentAt.Add(2 * time.Minute)})
	d = d.Apply(DispatchEvent{DispatchID: "crawl-list-1", Status: StatusCompleted, OccurredAt: sentAt.Add(3 * time.Minute)})

	if d.Status != StatusCompleted || d.Runs != 2 || d.LastError != "" {
		t.Fatalf("unexpected dispatch after retry: %+v", d)
	}
	if d.JobName != "crawl-list" || d.TargetID != "186732484" {
		t.Fatalf("expected job identity to survive terminal events: %+v", d)
	}
	if d.SentAt == nil || !d.SentAt.Equal(sentAt) {
		t.Fatalf("expected first sent time to win, got %v", d.SentAt)
	}
	if d.FinishedAt == nil || !d.FinishedAt.Equal(sentAt.Add(3*time.Minute)) {
		t.Fatalf("unexpected finished time: %v", d.FinishedAt)
	}
}

func TestDispatchStatusTerminal(t *testing.T) {
	if StatusSent.Terminal() {
		t.Fatalf("sent must not be terminal")
	}
	if !StatusCompleted.Terminal() || !StatusFailed.Terminal() {
		t.Fatalf("completed and failed must be terminal")
	}
}
