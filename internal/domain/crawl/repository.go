package crawl

import (
	"context"
	"time"

	"github.com/riskibarqy/ultimate-scores/internal/domain/externalid"
)

// ManagedList is a curated feed list owned by the crawler account.
type ManagedList struct {
	ID        externalid.ID
	Name      string
	Slug      string
	UpdatedAt time.Time
}

// WatermarkRepository stores the newest post id ingested per list.
type WatermarkRepository interface {
	GetLatest(ctx context.Context, listID externalid.ID) (externalid.ID, bool, error)
	// SetLatest never moves a watermark backwards.
	SetLatest(ctx context.Context, listID, postID externalid.ID) error
}

type ListRepository interface {
	ListManaged(ctx context.Context) ([]ManagedList, error)
	ReplaceManaged(ctx context.Context, lists []ManagedList) error
}
