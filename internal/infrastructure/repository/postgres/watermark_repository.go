package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/ultimate-scores/internal/domain/externalid"
	qb "github.com/riskibarqy/ultimate-scores/internal/platform/querybuilder"
)

type WatermarkRepository struct {
	db *sqlx.DB
}

func NewWatermarkRepository(db *sqlx.DB) *WatermarkRepository {
	return &WatermarkRepository{db: db}
}

func (r *WatermarkRepository) GetLatest(ctx context.Context, listID externalid.ID) (externalid.ID, bool, error) {
	query, args, err := qb.Select("*").From("list_watermarks").
		Where(qb.Eq("list_id", listID.Int64())).
		Limit(1).
		ToSQL()
	if err != nil {
		return externalid.Zero, false, fmt.Errorf("build select list watermark query: %w", err)
	}

	var row listWatermarkModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return externalid.Zero, false, nil
		}
		return externalid.Zero, false, fmt.Errorf("get list watermark list_id=%s: %w", listID, err)
	}
	return externalid.ID(row.LatestPostID), true, nil
}

func (r *WatermarkRepository) SetLatest(ctx context.Context, listID, postID externalid.ID) error {
	if listID.IsZero() || postID.IsZero() {
		return fmt.Errorf("list id and post id are required")
	}

	model := listWatermarkModel{
		ListID:       listID.Int64(),
		LatestPostID: postID.Int64(),
		UpdatedAt:    time.Now().UTC(),
	}
	query, args, err := qb.InsertModel("list_watermarks", model, `ON CONFLICT (list_id)
DO UPDATE SET
    latest_post_id = GREATEST(list_watermarks.latest_post_id, EXCLUDED.latest_post_id),
    updated_at = EXCLUDED.updated_at`)
	if err != nil {
		return fmt.Errorf("build upsert list watermark query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert list watermark list_id=%s: %w", listID, err)
	}
	return nil
}
