package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/ultimate-scores/internal/domain/externalid"
	"github.com/riskibarqy/ultimate-scores/internal/domain/game"
	"github.com/riskibarqy/ultimate-scores/internal/domain/team"
	"github.com/riskibarqy/ultimate-scores/internal/platform/logging"
)

// ScoreReporterGameRow is one parsed result row of a tournament page.
type ScoreReporterGameRow struct {
	GameID       string
	Date         string
	Time         string
	HomeTeamID   string
	AwayTeamID   string
	HomeScore    string
	AwayScore    string
	Status       string
	PoolName     string
	BracketTitle string
}

type ScoreReporterGamesInput struct {
	TournamentURL  string
	TournamentName string
	Division       string
	AgeBracket     string
	Games          []ScoreReporterGameRow
}

type ScoreReporterGamesResult struct {
	Received     int  `json:"received"`
	Upserted     int  `json:"upserted"`
	Unchanged    int  `json:"unchanged"`
	MissingTeams int  `json:"missing_teams"`
	NonZeroScore bool `json:"non_zero_score"`
}

type ScoreReporterTeamInput struct {
	ScoreReporterID string
	Name            string
	Website         string
	FeedID          string
	Division        string
	AgeBracket      string
}

// ScoreReporterService folds parsed score reporter rows into canonical games
// and keeps the team registry that links them to feed accounts.
type ScoreReporterService struct {
	gameRepo game.Repository
	teamRepo team.Repository
	logger   *logging.Logger
	now      func() time.Time
}

func NewScoreReporterService(gameRepo game.Repository, teamRepo team.Repository, logger *logging.Logger) *ScoreReporterService {
	if logger == nil {
		logger = logging.Default()
	}
	return &ScoreReporterService{
		gameRepo: gameRepo,
		teamRepo: teamRepo,
		logger:   logger,
		now:      time.Now,
	}
}

// IngestGames upserts the rows that are new or carry news. Rows whose teams
// are not in the registry yet are skipped until the teams are registered.
func (s *ScoreReporterService) IngestGames(ctx context.Context, input ScoreReporterGamesInput) (ScoreReporterGamesResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoreReporterService.IngestGames")
	defer span.End()

	classification, err := parseUSAUClassification(input.Division, input.AgeBracket)
	if err != nil {
		return ScoreReporterGamesResult{}, err
	}
	tournament := strings.TrimSpace(input.TournamentName)
	if tournament == "" {
		return ScoreReporterGamesResult{}, fmt.Errorf("%w: tournament name is required", ErrInvalidInput)
	}

	result := ScoreReporterGamesResult{Received: len(input.Games)}
	teams, err := s.loadTeams(ctx, input.Games)
	if err != nil {
		return result, err
	}

	now := s.now().UTC()
	for _, row := range input.Games {
		if strings.TrimSpace(row.GameID) == "" {
			continue
		}
		home, homeOK := teams[strings.TrimSpace(row.HomeTeamID)]
		away, awayOK := teams[strings.TrimSpace(row.AwayTeamID)]
		if !homeOK || !awayOK {
			result.MissingTeams++
			s.logger.DebugContext(ctx, "skip score reporter game with unregistered teams",
				"game_id", row.GameID,
				"home_team_id", row.HomeTeamID,
				"away_team_id", row.AwayTeamID,
			)
			continue
		}

		incoming := buildScoreReporterGame(row, input.TournamentURL, tournament, classification, [2]team.Team{home, away}, now)
		if incoming.Scores.Values[0] > 0 || incoming.Scores.Values[1] > 0 {
			result.NonZeroScore = true
		}

		existing, found, err := s.gameRepo.GetByID(ctx, incoming.ID)
		if err != nil {
			return result, fmt.Errorf("get game id=%s: %w", incoming.ID, err)
		}
		if !game.ShouldApplyScoreReporterUpdate(existing, found, incoming) {
			result.Unchanged++
			continue
		}
		if found {
			incoming.CreatedAt = existing.CreatedAt
		}
		if err := s.gameRepo.Upsert(ctx, incoming); err != nil {
			return result, fmt.Errorf("upsert game id=%s: %w", incoming.ID, err)
		}
		result.Upserted++
	}

	s.logger.InfoContext(ctx, "score reporter games ingested",
		"tournament", tournament,
		"received", result.Received,
		"upserted", result.Upserted,
		"missing_teams", result.MissingTeams,
	)
	return result, nil
}

// UpsertTeams registers score reporter teams. A known feed id is never
// cleared by an update that lacks one.
func (s *ScoreReporterService) UpsertTeams(ctx context.Context, inputs []ScoreReporterTeamInput) (int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoreReporterService.UpsertTeams")
	defer span.End()

	count := 0
	for _, input := range inputs {
		classification, err := parseUSAUClassification(input.Division, input.AgeBracket)
		if err != nil {
			return count, err
		}
		feedID, err := externalid.ParseOptional(input.FeedID)
		if err != nil {
			return count, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}

		item := team.Team{
			ScoreReporterID: strings.TrimSpace(input.ScoreReporterID),
			FeedID:          feedID,
			Name:            strings.TrimSpace(input.Name),
			Website:         strings.TrimSpace(input.Website),
			Classification:  classification,
			UpdatedAt:       s.now().UTC(),
		}
		if err := item.Validate(); err != nil {
			return count, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}

		existing, found, err := s.teamRepo.GetByScoreReporterID(ctx, item.ScoreReporterID)
		if err != nil {
			return count, fmt.Errorf("get team id=%s: %w", item.ScoreReporterID, err)
		}
		if found && item.FeedID.IsZero() {
			item.FeedID = existing.FeedID
		}
		if err := s.teamRepo.Upsert(ctx, item); err != nil {
			return count, fmt.Errorf("upsert team id=%s: %w", item.ScoreReporterID, err)
		}
		count++
	}

	return count, nil
}

func (s *ScoreReporterService) loadTeams(ctx context.Context, rows []ScoreReporterGameRow) (map[string]team.Team, error) {
	seen := make(map[string]struct{}, len(rows)*2)
	ids := make([]string, 0, len(rows)*2)
	for _, row := range rows {
		for _, id := range []string{row.HomeTeamID, row.AwayTeamID} {
			id = strings.TrimSpace(id)
			if id == "" {
				continue
			}
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}

	out := make(map[string]team.Team, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	items, err := s.teamRepo.ListByScoreReporterIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("list teams by score reporter ids: %w", err)
	}
	for _, item := range items {
		out[item.ScoreReporterID] = item
	}
	return out, nil
}

func buildScoreReporterGame(
	row ScoreReporterGameRow,
	tournamentURL, tournament string,
	classification game.Classification,
	teams [2]team.Team,
	now time.Time,
) game.Game {
	scores := game.ParseScoreReporterScores(row.HomeScore, row.AwayScore)
	name := strings.TrimSpace(row.BracketTitle)
	if name == "" {
		name = strings.TrimSpace(row.PoolName)
	}

	item := game.Game{
		ID:             game.ScoreReporterGameID(row.GameID),
		Name:           name,
		Teams:          [2]game.Team{teams[0].GameTeam(), teams[1].GameTeam()},
		Classification: classification,
		Scores:         &scores,
		Status:         game.ParseScoreReporterStatus(row.Status),
		TournamentID:   tournament,
		TournamentName: strings.ReplaceAll(tournament, "-", " "),
		CreatedAt:      now,
		LastModifiedAt: now,
	}
	sourceScores := scores
	item.Sources = []game.Source{{
		Type:      game.SourceScoreReporter,
		URL:       strings.TrimSpace(tournamentURL),
		Scores:    &sourceScores,
		UpdatedAt: now,
	}}
	if start, ok := game.ParseScoreReporterStartTime(row.Date, row.Time, now); ok {
		item.StartTime = &start
	}
	return item
}

func parseUSAUClassification(division, ageBracket string) (game.Classification, error) {
	parsedDivision, err := game.ParseDivision(division)
	if err != nil {
		return game.Classification{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	parsedAgeBracket, err := game.ParseAgeBracket(ageBracket)
	if err != nil {
		return game.Classification{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return game.Classification{
		Division:   parsedDivision,
		AgeBracket: parsedAgeBracket,
		League:     game.LeagueUSAU,
	}, nil
}
