package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/ultimate-scores/internal/domain/game"
	"github.com/riskibarqy/ultimate-scores/internal/domain/team"
	qb "github.com/riskibarqy/ultimate-scores/internal/platform/querybuilder"
)

type TeamRepository struct {
	db *sqlx.DB
}

func NewTeamRepository(db *sqlx.DB) *TeamRepository {
	return &TeamRepository{db: db}
}

func (r *TeamRepository) ListByScoreReporterIDs(ctx context.Context, ids []string) ([]team.Team, error) {
	values := stringSliceToAny(ids)
	if len(values) == 0 {
		return []team.Team{}, nil
	}

	query, args, err := qb.Select("*").From("teams").
		Where(
			qb.In("score_reporter_id", values),
			qb.IsNull("deleted_at"),
		).
		OrderBy("score_reporter_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select teams by score reporter ids query: %w", err)
	}

	var rows []teamTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select teams by score reporter ids: %w", err)
	}

	out := make([]team.Team, 0, len(rows))
	for _, row := range rows {
		out = append(out, teamFromRow(row))
	}
	return out, nil
}

func (r *TeamRepository) GetByScoreReporterID(ctx context.Context, id string) (team.Team, bool, error) {
	query, args, err := qb.Select("*").From("teams").
		Where(
			qb.Eq("score_reporter_id", strings.TrimSpace(id)),
			qb.IsNull("deleted_at"),
		).
		Limit(1).
		ToSQL()
	if err != nil {
		return team.Team{}, false, fmt.Errorf("build select team by score reporter id query: %w", err)
	}

	var row teamTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return team.Team{}, false, nil
		}
		return team.Team{}, false, fmt.Errorf("get team by score reporter id: %w", err)
	}
	return teamFromRow(row), true, nil
}

func (r *TeamRepository) Upsert(ctx context.Context, item team.Team) error {
	if err := item.Validate(); err != nil {
		return err
	}
	updatedAt := item.UpdatedAt.UTC()
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}

	model := teamUpsertModel{
		ScoreReporterID: strings.TrimSpace(item.ScoreReporterID),
		FeedID:          nullableID(item.FeedID),
		Name:            strings.TrimSpace(item.Name),
		Website:         optionalString(item.Website),
		Division:        int(item.Classification.Division),
		AgeBracket:      int(item.Classification.AgeBracket),
		League:          int(item.Classification.League),
		UpdatedAt:       updatedAt,
	}

	query, args, err := qb.InsertModel("teams", model, `ON CONFLICT (score_reporter_id)
DO UPDATE SET
    feed_id = COALESCE(EXCLUDED.feed_id, teams.feed_id),
    name = EXCLUDED.name,
    website = COALESCE(EXCLUDED.website, teams.website),
    division = EXCLUDED.division,
    age_bracket = EXCLUDED.age_bracket,
    league = EXCLUDED.league,
    updated_at = EXCLUDED.updated_at,
    deleted_at = NULL`)
	if err != nil {
		return fmt.Errorf("build upsert team query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert team score_reporter_id=%s: %w", model.ScoreReporterID, err)
	}
	return nil
}

func teamFromRow(row teamTableModel) team.Team {
	return team.Team{
		ScoreReporterID: row.ScoreReporterID,
		FeedID:          nullInt64ToID(row.FeedID),
		Name:            row.Name,
		Website:         nullStringToString(row.Website),
		Classification: game.Classification{
			Division:   game.Division(row.Division),
			AgeBracket: game.AgeBracket(row.AgeBracket),
			League:     game.League(row.League),
		},
		UpdatedAt: row.UpdatedAt.UTC(),
	}
}
