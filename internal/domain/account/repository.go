package account

import (
	"context"

	"github.com/riskibarqy/ultimate-scores/internal/domain/externalid"
)

// Repository persists feed accounts.
type Repository interface {
	// Upsert inserts the account if absent, otherwise refreshes its mutable
	// fields. The same id always resolves to the same record.
	Upsert(ctx context.Context, item Account) (Account, error)
	GetByIDs(ctx context.Context, ids []externalid.ID) ([]Account, error)
}
