package team

import "context"

// Repository describes team registry persistence needs from use cases.
type Repository interface {
	ListByScoreReporterIDs(ctx context.Context, ids []string) ([]Team, error)
	GetByScoreReporterID(ctx context.Context, id string) (Team, bool, error)
	Upsert(ctx context.Context, item Team) error
}
