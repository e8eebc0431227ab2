package game

import (
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/ultimate-scores/internal/domain/externalid"
	"github.com/riskibarqy/ultimate-scores/internal/domain/score"
)

const (
	IDPrefix               = "game_"
	TournamentIDPrefix     = "tourney_"
	UnknownTournamentName  = "Unknown tournament"
	DefaultConsistencyWait = 5 * time.Hour
)

type Status int

const (
	StatusNotStarted Status = 1
	StatusFinal      Status = 2
	StatusInProgress Status = 3
	StatusUnknown    Status = 4
)

func (s Status) String() string {
	switch s {
	case StatusNotStarted:
		return "NOT_STARTED"
	case StatusFinal:
		return "FINAL"
	case StatusInProgress:
		return "IN_PROGRESS"
	default:
		return "UNKNOWN"
	}
}

func ParseStatus(raw string) Status {
	switch normalizeEnum(raw) {
	case "NOT_STARTED":
		return StatusNotStarted
	case "FINAL":
		return StatusFinal
	case "IN_PROGRESS":
		return StatusInProgress
	default:
		return StatusUnknown
	}
}

type SourceType int

const (
	SourceScoreReporter SourceType = 1
	SourceFeed          SourceType = 2
)

func (t SourceType) String() string {
	switch t {
	case SourceScoreReporter:
		return "SCORE_REPORTER"
	case SourceFeed:
		return "FEED"
	default:
		return "UNKNOWN"
	}
}

// Team is one side of a game. The zero value is the Unknown placeholder.
type Team struct {
	FeedID          externalid.ID
	ScoreReporterID string
	Name            string
}

func UnknownTeam() Team {
	return Team{}
}

func (t Team) IsUnknown() bool {
	return t.FeedID.IsZero() && strings.TrimSpace(t.ScoreReporterID) == ""
}

// SameAs compares identities. Unknown never matches unknown.
func (t Team) SameAs(other Team) bool {
	if t.IsUnknown() || other.IsUnknown() {
		return false
	}
	if !t.FeedID.IsZero() && !other.FeedID.IsZero() {
		return t.FeedID == other.FeedID
	}
	if t.ScoreReporterID != "" && other.ScoreReporterID != "" {
		return t.ScoreReporterID == other.ScoreReporterID
	}
	return false
}

// Source is one report of a game, either a feed post or a score reporter row.
type Source struct {
	Type      SourceType
	PostID    externalid.ID
	AuthorID  externalid.ID
	Text      string
	URL       string
	Scores    *score.Scores
	UpdatedAt time.Time
}

// Game is the canonical record of one real-world contest.
type Game struct {
	ID             string
	Name           string
	Teams          [2]Team
	Classification Classification
	Sources        []Source
	Scores         *score.Scores
	Status         Status
	TournamentID   string
	TournamentName string
	CreatedAt      time.Time
	LastModifiedAt time.Time
	StartTime      *time.Time
}

func (g Game) Validate() error {
	if strings.TrimSpace(g.ID) == "" {
		return fmt.Errorf("game id is required")
	}
	if len(g.Sources) == 0 {
		return fmt.Errorf("game %s must have at least one source", g.ID)
	}
	if err := g.Classification.Validate(); err != nil {
		return fmt.Errorf("game %s: %w", g.ID, err)
	}
	return nil
}

// CompareTime is the reference time used when matching new observations.
func (g Game) CompareTime() time.Time {
	if g.StartTime != nil && g.StartTime.After(g.LastModifiedAt) {
		return *g.StartTime
	}
	return g.LastModifiedAt
}

func (g Game) HasTeam(team Team) bool {
	return g.Teams[0].SameAs(team) || g.Teams[1].SameAs(team)
}

// SharesTeam reports whether any known team of the game appears in teams.
func (g Game) SharesTeam(teams [2]Team) bool {
	return g.HasTeam(teams[0]) || g.HasTeam(teams[1])
}

func (g Game) HasScoreReporterSource() bool {
	for _, source := range g.Sources {
		if source.Type == SourceScoreReporter {
			return true
		}
	}
	return false
}

func (g Game) HasPost(postID externalid.ID) bool {
	if postID.IsZero() {
		return false
	}
	for _, source := range g.Sources {
		if source.Type == SourceFeed && source.PostID == postID {
			return true
		}
	}
	return false
}

// AddSource inserts source newest first and refreshes the derived fields.
func (g *Game) AddSource(source Source) {
	g.Sources = InsertSource(g.Sources, source)
	if source.UpdatedAt.After(g.LastModifiedAt) {
		g.LastModifiedAt = source.UpdatedAt
	}
	g.Scores = NewestScores(g.Sources)
}

// InsertSource places source before the first strictly older one. It returns
// a new slice and leaves the input untouched.
func InsertSource(sources []Source, source Source) []Source {
	out := make([]Source, 0, len(sources)+1)
	inserted := false
	for _, existing := range sources {
		if !inserted && existing.UpdatedAt.Before(source.UpdatedAt) {
			out = append(out, source)
			inserted = true
		}
		out = append(out, existing)
	}
	if !inserted {
		out = append(out, source)
	}
	return out
}

// NewestScores returns the scores of the newest source that carries any.
func NewestScores(sources []Source) *score.Scores {
	for _, source := range sources {
		if source.Scores != nil {
			value := *source.Scores
			return &value
		}
	}
	return nil
}

// MergeTeams fills the single Unknown slot with a team from incoming that is
// not already present. Any other shape is left as is.
func MergeTeams(current, incoming [2]Team) ([2]Team, bool) {
	unknownIdx := -1
	unknownCount := 0
	for i, team := range current {
		if team.IsUnknown() {
			unknownIdx = i
			unknownCount++
		}
	}
	if unknownCount != 1 {
		return current, false
	}

	for _, candidate := range incoming {
		if candidate.IsUnknown() {
			continue
		}
		if current[0].SameAs(candidate) || current[1].SameAs(candidate) {
			continue
		}
		current[unknownIdx] = candidate
		return current, true
	}
	return current, false
}

// NewFromSource builds a feed-created game around its first source.
func NewFromSource(gameID, tournamentID string, teams [2]Team, classification Classification, source Source) Game {
	g := Game{
		ID:             gameID,
		Teams:          teams,
		Classification: classification,
		Status:         StatusUnknown,
		TournamentID:   tournamentID,
		TournamentName: UnknownTournamentName,
		CreatedAt:      source.UpdatedAt,
		LastModifiedAt: source.UpdatedAt,
	}
	g.Sources = []Source{source}
	g.Scores = NewestScores(g.Sources)
	return g
}
