package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/ultimate-scores/internal/domain/crawl"
	"github.com/riskibarqy/ultimate-scores/internal/infrastructure/repository/memory"
)

// BootstrapSeed fills managed_lists from the registry on an empty database.
func BootstrapSeed(ctx context.Context, db *sqlx.DB, registry *crawl.Registry) error {
	var count int
	if err := db.GetContext(ctx, &count, `SELECT COUNT(1) FROM managed_lists WHERE deleted_at IS NULL`); err != nil {
		return fmt.Errorf("count managed lists for bootstrap seed: %w", err)
	}
	if count > 0 {
		return nil
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, l := range memory.SeedManagedLists(registry) {
		sqlQuery, args, err := sqlx.Named(`
INSERT INTO managed_lists (id, name, slug)
VALUES (:id, :name, :slug)
ON CONFLICT (id) DO NOTHING`, map[string]any{
			"id":   l.ID.Int64(),
			"name": l.Name,
			"slug": l.Slug,
		})
		if err != nil {
			return fmt.Errorf("bind seed managed list %s query: %w", l.ID, err)
		}
		sqlQuery = tx.Rebind(sqlQuery)
		if _, err := tx.ExecContext(ctx, sqlQuery, args...); err != nil {
			return fmt.Errorf("seed managed list %s: %w", l.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed tx: %w", err)
	}

	return nil
}
