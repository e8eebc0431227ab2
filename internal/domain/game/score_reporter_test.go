package game

import (
	"testing"
	"time"
)

func TestParseScoreReporterScores(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		home string
		away string
		want [2]int
	}{
		{name: "numbers", home: "13", away: " 11 ", want: [2]int{13, 11}},
		{name: "home forfeit win", home: "W", away: "L", want: [2]int{1, -1}},
		{name: "away forfeit win", home: "F", away: "w", want: [2]int{-1, 1}},
		{name: "not played", home: "", away: "", want: [2]int{-1, -1}},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := ParseScoreReporterScores(tc.home, tc.away)
			if got.Values != tc.want {
				t.Fatalf("unexpected scores: got=%v want=%v", got.Values, tc.want)
			}
			if !got.Ordered {
				t.Fatalf("score reporter scores must be ordered")
			}
		})
	}
}

func TestParseScoreReporterStatus(t *testing.T) {
	t.Parallel()

	if got := ParseScoreReporterStatus(" Final "); got != StatusFinal {
		t.Fatalf("unexpected status: got=%s want=%s", got, StatusFinal)
	}
	if got := ParseScoreReporterStatus("In Progress"); got != StatusUnknown {
		t.Fatalf("unexpected status: got=%s want=%s", got, StatusUnknown)
	}
}

func TestParseScoreReporterStartTime(t *testing.T) {
	t.Parallel()

	now := time.Date(2015, time.September, 2, 12, 0, 0, 0, time.UTC)

	bracket, ok := ParseScoreReporterStartTime("8/29/2015 9:30 AM", "", now)
	if !ok {
		t.Fatalf("expected bracket date to parse")
	}
	if want := time.Date(2015, time.August, 29, 16, 30, 0, 0, time.UTC); !bracket.Equal(want) {
		t.Fatalf("unexpected bracket time: got=%s want=%s", bracket, want)
	}

	pool, ok := ParseScoreReporterStartTime("Sat 8/29", "9:30 AM", now)
	if !ok {
		t.Fatalf("expected pool date to parse")
	}
	if !pool.Equal(bracket) {
		t.Fatalf("unexpected pool time: got=%s want=%s", pool, bracket)
	}

	newYear := time.Date(2016, time.January, 2, 0, 0, 0, 0, time.UTC)
	lastYear, ok := ParseScoreReporterStartTime("Wed 12/30", "1:00 PM", newYear)
	if !ok {
		t.Fatalf("expected pool date to parse")
	}
	if lastYear.Year() != 2015 {
		t.Fatalf("unexpected guessed year: got=%d want=2015", lastYear.Year())
	}

	for _, raw := range []string{"", "someday", "13/45/2015 9:30 AM"} {
		if _, ok := ParseScoreReporterStartTime(raw, "", now); ok {
			t.Fatalf("expected %q to be rejected", raw)
		}
	}
}

func TestScoreReporterGameID(t *testing.T) {
	t.Parallel()

	if got := ScoreReporterGameID(" 12345 "); got != "game_sr_12345" {
		t.Fatalf("unexpected game id: got=%q", got)
	}
}
