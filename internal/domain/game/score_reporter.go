package game

import (
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/ultimate-scores/internal/domain/score"
)

const (
	ScoreReporterIDPrefix = "game_sr_"

	// Score reporter times are local to the tournament; mountain time is
	// assumed for every event.
	ScoreReporterUTCOffset = 7 * time.Hour

	bracketTimeLayout = "1/2/2006 3:04 PM"
	poolTimeLayout    = "Mon 1/2 2006 3:04 PM"
)

// ScoreReporterGameID is the stable game id of a score reporter game.
func ScoreReporterGameID(raw string) string {
	return ScoreReporterIDPrefix + strings.TrimSpace(raw)
}

// ParseScoreReporterScores reads the home and away cells of a result row. A
// forfeit win is reported as "W" and becomes 1 to -1; unreadable cells
// become -1 to -1.
func ParseScoreReporterScores(home, away string) score.Scores {
	homeValue, homeErr := strconv.Atoi(strings.TrimSpace(home))
	awayValue, awayErr := strconv.Atoi(strings.TrimSpace(away))
	if homeErr == nil && awayErr == nil {
		return score.New(homeValue, awayValue, true)
	}

	switch {
	case strings.EqualFold(strings.TrimSpace(home), "w"):
		return score.New(1, -1, true)
	case strings.EqualFold(strings.TrimSpace(away), "w"):
		return score.New(-1, 1, true)
	default:
		return score.New(-1, -1, true)
	}
}

// ParseScoreReporterStatus maps the status cell. Only "Final" is recognised.
func ParseScoreReporterStatus(raw string) Status {
	if strings.EqualFold(strings.TrimSpace(raw), "final") {
		return StatusFinal
	}
	return StatusUnknown
}

// ParseScoreReporterStartTime parses either "8/29/2015 9:30 AM" with an empty
// clock, or "Sat 8/29" with clock "9:30 AM". The year of the short form is
// the one among now's year and its neighbours that lands closest to now.
func ParseScoreReporterStartTime(date, clock string, now time.Time) (time.Time, bool) {
	date = strings.TrimSpace(date)
	clock = strings.TrimSpace(clock)
	if date == "" {
		return time.Time{}, false
	}

	if date[0] >= '0' && date[0] <= '9' {
		full := date
		if clock != "" && !strings.Contains(date, ":") {
			full = date + " " + clock
		}
		parsed, err := time.Parse(bracketTimeLayout, full)
		if err != nil {
			return time.Time{}, false
		}
		return parsed.Add(ScoreReporterUTCOffset), true
	}

	now = now.UTC()
	var (
		best      time.Time
		bestDelta time.Duration
		found     bool
	)
	for _, year := range []int{now.Year(), now.Year() - 1, now.Year() + 1} {
		parsed, err := time.Parse(poolTimeLayout, date+" "+strconv.Itoa(year)+" "+clock)
		if err != nil {
			continue
		}
		delta := absDuration(now.Sub(parsed))
		if !found || delta < bestDelta {
			best, bestDelta, found = parsed, delta, true
		}
	}
	if !found {
		return time.Time{}, false
	}
	return best.Add(ScoreReporterUTCOffset), true
}

// ShouldApplyScoreReporterUpdate reports whether a freshly parsed score
// reporter game carries news compared with the stored one.
func ShouldApplyScoreReporterUpdate(existing Game, found bool, incoming Game) bool {
	if !found {
		return true
	}
	if existing.Status != incoming.Status {
		return true
	}
	if incoming.Scores == nil {
		return false
	}
	if existing.Scores == nil {
		return true
	}

	next := *incoming.Scores
	next.Ordered = true
	previous := *existing.Scores
	previous.Ordered = len(existing.Sources) > 0 && existing.Sources[0].Type == SourceScoreReporter
	return score.Compare(next, previous) == score.Greater
}
