package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/ultimate-scores/internal/domain/externalid"
	"github.com/riskibarqy/ultimate-scores/internal/domain/game"
	"github.com/riskibarqy/ultimate-scores/internal/domain/score"
	qb "github.com/riskibarqy/ultimate-scores/internal/platform/querybuilder"
)

type GameRepository struct {
	db *sqlx.DB
}

func NewGameRepository(db *sqlx.DB) *GameRepository {
	return &GameRepository{db: db}
}

func (r *GameRepository) GetByID(ctx context.Context, gameID string) (game.Game, bool, error) {
	query, args, err := qb.Select("*").From("games").
		Where(
			qb.Eq("id", strings.TrimSpace(gameID)),
			qb.IsNull("deleted_at"),
		).
		Limit(1).
		ToSQL()
	if err != nil {
		return game.Game{}, false, fmt.Errorf("build select game by id query: %w", err)
	}

	var row gameTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return game.Game{}, false, nil
		}
		return game.Game{}, false, fmt.Errorf("get game by id: %w", err)
	}

	item, err := gameFromRow(row)
	if err != nil {
		return game.Game{}, false, err
	}
	return item, true, nil
}

func (r *GameRepository) ListByClassificationWindow(ctx context.Context, classification game.Classification, from, to time.Time) ([]game.Game, error) {
	query, args, err := qb.Select("*").From("games").
		Where(
			qb.Eq("division", int(classification.Division)),
			qb.Eq("age_bracket", int(classification.AgeBracket)),
			qb.Eq("league", int(classification.League)),
			qb.Within("last_modified_at", from.UTC(), to.UTC()),
			qb.IsNull("deleted_at"),
		).
		OrderBy("last_modified_at DESC", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select games by window query: %w", err)
	}

	var rows []gameTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select games by window classification=%s: %w", classification, err)
	}

	out := make([]game.Game, 0, len(rows))
	for _, row := range rows {
		item, err := gameFromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

func (r *GameRepository) Upsert(ctx context.Context, item game.Game) error {
	model, err := gameToModel(item)
	if err != nil {
		return err
	}

	query, args, err := qb.InsertModel("games", model, `ON CONFLICT (id)
DO UPDATE SET
    name = EXCLUDED.name,
    teams = EXCLUDED.teams,
    division = EXCLUDED.division,
    age_bracket = EXCLUDED.age_bracket,
    league = EXCLUDED.league,
    sources = EXCLUDED.sources,
    scores = EXCLUDED.scores,
    status = EXCLUDED.status,
    tournament_id = EXCLUDED.tournament_id,
    tournament_name = EXCLUDED.tournament_name,
    last_modified_at = EXCLUDED.last_modified_at,
    start_time = EXCLUDED.start_time,
    updated_at = NOW(),
    deleted_at = NULL`)
	if err != nil {
		return fmt.Errorf("build upsert game query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert game id=%s: %w", item.ID, err)
	}
	return nil
}

func gameToModel(item game.Game) (gameUpsertModel, error) {
	teams := make([]gameTeamDocument, 0, len(item.Teams))
	for _, team := range item.Teams {
		teams = append(teams, gameTeamDocument{
			FeedID:          team.FeedID.Int64(),
			ScoreReporterID: team.ScoreReporterID,
			Name:            team.Name,
		})
	}
	teamsJSON, err := sonic.MarshalString(teams)
	if err != nil {
		return gameUpsertModel{}, fmt.Errorf("marshal game %s teams: %w", item.ID, err)
	}

	sources := make([]gameSourceDocument, 0, len(item.Sources))
	for _, source := range item.Sources {
		sources = append(sources, gameSourceDocument{
			Type:      int(source.Type),
			PostID:    source.PostID.Int64(),
			AuthorID:  source.AuthorID.Int64(),
			Text:      source.Text,
			URL:       source.URL,
			Scores:    scoresToDocument(source.Scores),
			UpdatedAt: source.UpdatedAt.UTC(),
		})
	}
	sourcesJSON, err := sonic.MarshalString(sources)
	if err != nil {
		return gameUpsertModel{}, fmt.Errorf("marshal game %s sources: %w", item.ID, err)
	}

	var scoresJSON *string
	if doc := scoresToDocument(item.Scores); doc != nil {
		raw, err := sonic.MarshalString(doc)
		if err != nil {
			return gameUpsertModel{}, fmt.Errorf("marshal game %s scores: %w", item.ID, err)
		}
		scoresJSON = &raw
	}

	createdAt := item.CreatedAt.UTC()
	if createdAt.IsZero() {
		createdAt = item.LastModifiedAt.UTC()
	}

	return gameUpsertModel{
		ID:             item.ID,
		Name:           item.Name,
		Teams:          teamsJSON,
		Division:       int(item.Classification.Division),
		AgeBracket:     int(item.Classification.AgeBracket),
		League:         int(item.Classification.League),
		Sources:        sourcesJSON,
		Scores:         scoresJSON,
		Status:         int(item.Status),
		TournamentID:   item.TournamentID,
		TournamentName: item.TournamentName,
		CreatedAt:      createdAt,
		LastModifiedAt: item.LastModifiedAt.UTC(),
		StartTime:      nullableTime(item.StartTime),
	}, nil
}

func gameFromRow(row gameTableModel) (game.Game, error) {
	var teams []gameTeamDocument
	if err := sonic.UnmarshalString(row.Teams, &teams); err != nil {
		return game.Game{}, fmt.Errorf("decode game %s teams: %w", row.ID, err)
	}
	var sources []gameSourceDocument
	if err := sonic.UnmarshalString(row.Sources, &sources); err != nil {
		return game.Game{}, fmt.Errorf("decode game %s sources: %w", row.ID, err)
	}

	item := game.Game{
		ID:   row.ID,
		Name: row.Name,
		Classification: game.Classification{
			Division:   game.Division(row.Division),
			AgeBracket: game.AgeBracket(row.AgeBracket),
			League:     game.League(row.League),
		},
		Status:         game.Status(row.Status),
		TournamentID:   row.TournamentID,
		TournamentName: row.TournamentName,
		CreatedAt:      row.CreatedAt.UTC(),
		LastModifiedAt: row.LastModifiedAt.UTC(),
		StartTime:      nullableTime(row.StartTime),
		Sources:        make([]game.Source, 0, len(sources)),
	}
	for i := 0; i < len(teams) && i < len(item.Teams); i++ {
		item.Teams[i] = game.Team{
			FeedID:          externalid.ID(teams[i].FeedID),
			ScoreReporterID: teams[i].ScoreReporterID,
			Name:            teams[i].Name,
		}
	}
	for _, source := range sources {
		item.Sources = append(item.Sources, game.Source{
			Type:      game.SourceType(source.Type),
			PostID:    externalid.ID(source.PostID),
			AuthorID:  externalid.ID(source.AuthorID),
			Text:      source.Text,
			URL:       source.URL,
			Scores:    scoresFromDocument(source.Scores),
			UpdatedAt: source.UpdatedAt.UTC(),
		})
	}
	if row.Scores.Valid && strings.TrimSpace(row.Scores.String) != "" {
		var doc scoresDocument
		if err := sonic.UnmarshalString(row.Scores.String, &doc); err != nil {
			return game.Game{}, fmt.Errorf("decode game %s scores: %w", row.ID, err)
		}
		item.Scores = scoresFromDocument(&doc)
	}
	return item, nil
}

func scoresToDocument(value *score.Scores) *scoresDocument {
	if value == nil {
		return nil
	}
	return &scoresDocument{Values: value.Values, Ordered: value.Ordered}
}

func scoresFromDocument(doc *scoresDocument) *score.Scores {
	if doc == nil {
		return nil
	}
	out := score.New(doc.Values[0], doc.Values[1], doc.Ordered)
	return &out
}
