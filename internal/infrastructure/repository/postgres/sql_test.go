package postgres

import (
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/riskibarqy/ultimate-scores/internal/domain/externalid"
	"github.com/riskibarqy/ultimate-scores/internal/domain/game"
	"github.com/riskibarqy/ultimate-scores/internal/domain/jobscheduler"
	"github.com/riskibarqy/ultimate-scores/internal/domain/post"
	"github.com/riskibarqy/ultimate-scores/internal/domain/score"
)

func TestIsNotFound(t *testing.T) {
	if !isNotFound(sql.ErrNoRows) {
		t.Fatalf("expected sql.ErrNoRows to be not found")
	}
	if isNotFound(fakeErr("pq: relation games does not exist")) {
		t.Fatalf("expected false for unrelated error")
	}
}

func TestIDsToAny(t *testing.T) {
	got := idsToAny([]externalid.ID{5, 0, 3, 5})
	if len(got) != 2 || got[0] != int64(5) || got[1] != int64(3) {
		t.Fatalf("unexpected ids: %+v", got)
	}
}

func TestNullInt64ToID(t *testing.T) {
	t.Run("returns value", func(t *testing.T) {
		if got := nullInt64ToID(sql.NullInt64{Int64: 123, Valid: true}); got != 123 {
			t.Fatalf("expected 123, got %d", got)
		}
	})

	t.Run("returns zero for null", func(t *testing.T) {
		if got := nullInt64ToID(sql.NullInt64{}); !got.IsZero() {
			t.Fatalf("expected zero, got %d", got)
		}
	})
}

func TestGameModelMapping(t *testing.T) {
	start := time.Date(2015, 8, 29, 16, 30, 0, 0, time.UTC)
	scores := score.New(13, 11, true)
	item := game.Game{
		ID:             "game_sr_100",
		Name:           "Pool A",
		Teams:          [2]game.Team{{FeedID: 11, ScoreReporterID: "ring", Name: "Ring of Fire"}, game.UnknownTeam()},
		Classification: game.DefaultClassification(),
		Sources: []game.Source{
			{Type: game.SourceScoreReporter, URL: "https://play.usaultimate.org/events/US-Open-2015", Scores: &scores, UpdatedAt: start},
			{Type: game.SourceFeed, PostID: 9, AuthorID: 11, Text: "13-11 final", UpdatedAt: start.Add(-time.Hour)},
		},
		Scores:         &scores,
		Status:         game.StatusFinal,
		TournamentID:   "US-Open-2015",
		TournamentName: "US Open 2015",
		LastModifiedAt: start,
		StartTime:      &start,
	}

	model, err := gameToModel(item)
	if err != nil {
		t.Fatalf("map game: %v", err)
	}
	if !model.CreatedAt.Equal(start) {
		t.Fatalf("created at must fall back to last modified, got %s", model.CreatedAt)
	}
	if model.Scores == nil || !strings.Contains(model.Teams, `"score_reporter_id":"ring"`) {
		t.Fatalf("unexpected encoded model: %+v", model)
	}

	got, err := gameFromRow(gameTableModel{
		ID:             model.ID,
		Name:           model.Name,
		Teams:          model.Teams,
		Division:       model.Division,
		AgeBracket:     model.AgeBracket,
		League:         model.League,
		Sources:        model.Sources,
		Scores:         sql.NullString{String: *model.Scores, Valid: true},
		Status:         model.Status,
		TournamentID:   model.TournamentID,
		TournamentName: model.TournamentName,
		CreatedAt:      model.CreatedAt,
		LastModifiedAt: model.LastModifiedAt,
		StartTime:      model.StartTime,
	})
	if err != nil {
		t.Fatalf("decode game: %v", err)
	}
	if got.Teams[0].FeedID != 11 || !got.Teams[1].IsUnknown() {
		t.Fatalf("unexpected teams: %+v", got.Teams)
	}
	if len(got.Sources) != 2 || got.Sources[0].Scores == nil || got.Sources[1].Scores != nil {
		t.Fatalf("unexpected sources: %+v", got.Sources)
	}
	if got.Scores == nil || !got.Scores.Ordered || got.Classification != item.Classification {
		t.Fatalf("unexpected decoded game: %+v", got)
	}
}

func TestPostModelMapping(t *testing.T) {
	item := post.Post{
		ID:        42,
		ListID:    186732484,
		AuthorID:  11,
		Text:      "Ring 13-11 @sockeye",
		CreatedAt: time.Date(2015, 8, 29, 16, 30, 0, 0, time.UTC),
		Integers:  score.ExtractIntegers("Ring 13-11 @sockeye"),
		Mentions:  []post.Mention{{AccountID: 22, ScreenName: "sockeye", Start: 11, End: 19}},
	}

	model, err := postToModel(item)
	if err != nil {
		t.Fatalf("map post: %v", err)
	}
	if model.InReplyToPostID != nil || model.Hashtags != "[]" {
		t.Fatalf("unexpected optional columns: %+v", model)
	}

	got, err := postFromRow(postTableModel{
		ID:        model.ID,
		ListID:    model.ListID,
		AuthorID:  model.AuthorID,
		Text:      model.Text,
		CreatedAt: model.CreatedAt,
		Integers:  model.Integers,
		Mentions:  model.Mentions,
		Hashtags:  model.Hashtags,
	})
	if err != nil {
		t.Fatalf("decode post: %v", err)
	}
	if _, ok := got.Scores(); !ok {
		t.Fatalf("expected decoded integers to still yield a score")
	}
	if len(got.Mentions) != 1 || got.Mentions[0].AccountID != 22 {
		t.Fatalf("unexpected mentions: %+v", got.Mentions)
	}
}

type fakeErr string

func (e fakeErr) Error() string { return string(e) }

func TestJobDispatchModelFromEvent(t *testing.T) {
	now := time.Date(2015, 8, 22, 18, 0, 0, 0, time.UTC)

	sent, err := jobDispatchModelFromEvent(jobscheduler.DispatchEvent{
		DispatchID: " crawl-list-1 ",
		JobName:    "crawl-list",
		Status:     jobscheduler.StatusSent,
		Payload:    map[string]any{"list_id": "186732484"},
	}, now)
	if err != nil {
		t.Fatalf("build sent model: %v", err)
	}
	if sent.DispatchID != "crawl-list-1" || sent.Runs != 0 || sent.SentAt == nil || !sent.SentAt.Equal(now) || sent.FinishedAt != nil {
		t.Fatalf("unexpected sent model: %+v", sent)
	}
	if sent.Payload != `{"list_id":"186732484"}` {
		t.Fatalf("unexpected payload: %s", sent.Payload)
	}

	failed, err := jobDispatchModelFromEvent(jobscheduler.DispatchEvent{
		DispatchID:   "crawl-list-1",
		Status:       jobscheduler.StatusFailed,
		ErrorMessage: "feed timeout",
		OccurredAt:   now.Add(time.Minute),
	}, now)
	if err != nil {
		t.Fatalf("build failed model: %v", err)
	}
	if failed.Runs != 1 || failed.SentAt != nil || failed.FinishedAt == nil || failed.LastError == nil || *failed.LastError != "feed timeout" {
		t.Fatalf("unexpected failed model: %+v", failed)
	}
	if failed.Payload != "{}" {
		t.Fatalf("expected empty payload object, got %s", failed.Payload)
	}

	if _, err := jobDispatchModelFromEvent(jobscheduler.DispatchEvent{Status: jobscheduler.StatusSent}, now); err == nil {
		t.Fatalf("expected error for missing dispatch id")
	}
}
