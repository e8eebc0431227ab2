package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/ultimate-scores/internal/domain/crawl"
	"github.com/riskibarqy/ultimate-scores/internal/domain/externalid"
	qb "github.com/riskibarqy/ultimate-scores/internal/platform/querybuilder"
)

type ManagedListRepository struct {
	db *sqlx.DB
}

func NewManagedListRepository(db *sqlx.DB) *ManagedListRepository {
	return &ManagedListRepository{db: db}
}

func (r *ManagedListRepository) ListManaged(ctx context.Context) ([]crawl.ManagedList, error) {
	query, args, err := qb.Select("*").From("managed_lists").
		Where(qb.IsNull("deleted_at")).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select managed lists query: %w", err)
	}

	var rows []managedListTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select managed lists: %w", err)
	}

	out := make([]crawl.ManagedList, 0, len(rows))
	for _, row := range rows {
		out = append(out, crawl.ManagedList{
			ID:        externalid.ID(row.ID),
			Name:      row.Name,
			Slug:      row.Slug,
			UpdatedAt: row.UpdatedAt.UTC(),
		})
	}
	return out, nil
}

// ReplaceManaged soft-deletes lists missing from the input and upserts the rest.
func (r *ManagedListRepository) ReplaceManaged(ctx context.Context, lists []crawl.ManagedList) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace managed lists tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	now := time.Now().UTC()
	ids := make([]externalid.ID, 0, len(lists))
	models := make([]managedListUpsertModel, 0, len(lists))
	for _, item := range lists {
		if item.ID.IsZero() {
			continue
		}
		updatedAt := item.UpdatedAt.UTC()
		if updatedAt.IsZero() {
			updatedAt = now
		}
		ids = append(ids, item.ID)
		models = append(models, managedListUpsertModel{
			ID:        item.ID.Int64(),
			Name:      item.Name,
			Slug:      item.Slug,
			UpdatedAt: updatedAt,
		})
	}

	query, args, err := qb.Update("managed_lists").
		Set("deleted_at", now).
		Where(
			qb.IsNull("deleted_at"),
			qb.NotIn("id", idsToAny(ids)),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build soft delete managed lists query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("soft delete managed lists: %w", err)
	}

	if len(models) > 0 {
		query, args, err := qb.InsertModels("managed_lists", models, `ON CONFLICT (id)
DO UPDATE SET
    name = EXCLUDED.name,
    slug = EXCLUDED.slug,
    updated_at = EXCLUDED.updated_at,
    deleted_at = NULL`)
		if err != nil {
			return fmt.Errorf("build upsert managed lists query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("upsert managed lists: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace managed lists tx: %w", err)
	}
	return nil
}
