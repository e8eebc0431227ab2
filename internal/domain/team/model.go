package team

import (
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/ultimate-scores/internal/domain/externalid"
	"github.com/riskibarqy/ultimate-scores/internal/domain/game"
)

// Team links a score reporter team to its feed account.
type Team struct {
	ScoreReporterID string
	FeedID          externalid.ID
	Name            string
	Website         string
	Classification  game.Classification
	UpdatedAt       time.Time
}

func (t Team) Validate() error {
	if strings.TrimSpace(t.ScoreReporterID) == "" {
		return fmt.Errorf("team score reporter id is required")
	}
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("team name is required")
	}

	return nil
}

// GameTeam converts the registry entry into a game team slot.
func (t Team) GameTeam() game.Team {
	return game.Team{
		FeedID:          t.FeedID,
		ScoreReporterID: t.ScoreReporterID,
		Name:            t.Name,
	}
}
