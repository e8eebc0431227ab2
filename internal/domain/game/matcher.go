package game

import (
	"time"

	"github.com/riskibarqy/ultimate-scores/internal/domain/externalid"
	"github.com/riskibarqy/ultimate-scores/internal/domain/score"
)

type ObservationKind string

const (
	ObservationSocial   ObservationKind = "SOCIAL"
	ObservationOfficial ObservationKind = "OFFICIAL"
)

// Observation is one score report extracted from a single post.
type Observation struct {
	PostID      externalid.ID
	AuthorID    externalid.ID
	MentionedID externalid.ID
	Teams       [2]Team
	Scores      *score.Scores
	ObservedAt  time.Time
	Kind        ObservationKind
	RawText     string
}

// Source converts the observation into a game source.
func (o Observation) Source() Source {
	source := Source{
		Type:      SourceFeed,
		PostID:    o.PostID,
		AuthorID:  o.AuthorID,
		Text:      o.RawText,
		UpdatedAt: o.ObservedAt,
	}
	if o.Kind == ObservationOfficial {
		source.Type = SourceScoreReporter
	}
	if o.Scores != nil {
		value := *o.Scores
		source.Scores = &value
	}
	return source
}

// FindMostConsistentGame returns the confidence in [0,1] of the candidate that
// best agrees with obs and its index, or -1 when no candidate scores above zero.
func FindMostConsistentGame(obs Observation, candidates []Game, window time.Duration) (float64, int) {
	best, bestIdx := 0.0, -1
	if obs.Scores == nil || window <= 0 {
		return best, bestIdx
	}

	for i, candidate := range candidates {
		confidence, ok := consistency(obs, candidate, window)
		if !ok {
			continue
		}
		if confidence > best {
			best, bestIdx = confidence, i
		}
	}
	return best, bestIdx
}

func consistency(obs Observation, candidate Game, window time.Duration) (float64, bool) {
	if !candidate.SharesTeam(obs.Teams) {
		return 0, false
	}
	compareTime := candidate.CompareTime()
	if absDuration(obs.ObservedAt.Sub(compareTime)) >= window {
		return 0, false
	}
	if len(candidate.Sources) == 0 {
		return 0, false
	}

	agreeing := 0
	var oldest time.Time
	for _, source := range candidate.Sources {
		if source.Scores == nil {
			continue
		}
		sourceScores := *source.Scores
		sourceTime := source.UpdatedAt
		if source.Type == SourceScoreReporter {
			sourceScores.Ordered = true
			sourceTime = compareTime
		}
		if oldest.IsZero() || sourceTime.Before(oldest) {
			oldest = sourceTime
		}

		switch score.Compare(*obs.Scores, sourceScores) {
		case score.Incomparable:
			continue
		case score.Greater, score.Equal:
			if !obs.ObservedAt.Before(sourceTime) {
				agreeing++
				continue
			}
		}
		if obs.Scores.LessOrEqual(sourceScores) && !obs.ObservedAt.After(sourceTime) {
			agreeing++
		}
	}
	if oldest.IsZero() {
		return 0, true
	}

	ratio := float64(agreeing) / float64(len(candidate.Sources))
	decay := float64(window-absDuration(oldest.Sub(obs.ObservedAt))) / float64(window)
	if decay < 0 {
		decay = 0
	}
	return ratio * decay, true
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
