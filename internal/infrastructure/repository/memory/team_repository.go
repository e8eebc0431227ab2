package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/riskibarqy/ultimate-scores/internal/domain/team"
)

type TeamRepository struct {
	mu    sync.RWMutex
	teams map[string]team.Team
}

func NewTeamRepository(teams []team.Team) *TeamRepository {
	byID := make(map[string]team.Team, len(teams))
	for _, item := range teams {
		id := strings.TrimSpace(item.ScoreReporterID)
		if id == "" {
			continue
		}
		byID[id] = item
	}

	return &TeamRepository{teams: byID}
}

func (r *TeamRepository) ListByScoreReporterIDs(_ context.Context, ids []string) ([]team.Team, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]team.Team, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		if item, ok := r.teams[id]; ok {
			out = append(out, item)
		}
	}
	return out, nil
}

func (r *TeamRepository) GetByScoreReporterID(_ context.Context, id string) (team.Team, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.teams[strings.TrimSpace(id)]
	return item, ok, nil
}

func (r *TeamRepository) Upsert(_ context.Context, item team.Team) error {
	if err := item.Validate(); err != nil {
		return err
	}
	if item.UpdatedAt.IsZero() {
		item.UpdatedAt = time.Now().UTC()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	id := strings.TrimSpace(item.ScoreReporterID)
	if existing, ok := r.teams[id]; ok && item.FeedID.IsZero() {
		item.FeedID = existing.FeedID
	}
	item.ScoreReporterID = id
	r.teams[id] = item
	return nil
}
