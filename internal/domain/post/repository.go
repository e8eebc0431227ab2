package post

import (
	"context"
	"time"

	"github.com/riskibarqy/ultimate-scores/internal/domain/externalid"
)

// Repository stores feed posts. UpsertMany is idempotent by post id.
type Repository interface {
	UpsertMany(ctx context.Context, items []Post) error
	// ListByListWindow returns posts of a list created strictly inside (from, to), newest first.
	ListByListWindow(ctx context.Context, listID externalid.ID, from, to time.Time) ([]Post, error)
	LatestID(ctx context.Context, listID externalid.ID) (externalid.ID, bool, error)
}
