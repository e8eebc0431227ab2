package game

import (
	"context"
	"time"
)

// Repository describes game persistence needs from use cases.
type Repository interface {
	GetByID(ctx context.Context, gameID string) (Game, bool, error)
	// ListByClassificationWindow returns games whose last modification falls
	// strictly inside (from, to).
	ListByClassificationWindow(ctx context.Context, classification Classification, from, to time.Time) ([]Game, error)
	Upsert(ctx context.Context, item Game) error
}
