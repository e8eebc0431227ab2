package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/riskibarqy/ultimate-scores/internal/domain/game"
)

type GameRepository struct {
	mu    sync.RWMutex
	games map[string]game.Game
}

func NewGameRepository() *GameRepository {
	return &GameRepository{games: make(map[string]game.Game)}
}

func (r *GameRepository) GetByID(_ context.Context, gameID string) (game.Game, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.games[strings.TrimSpace(gameID)]
	if !ok {
		return game.Game{}, false, nil
	}
	return cloneGame(item), true, nil
}

func (r *GameRepository) ListByClassificationWindow(_ context.Context, classification game.Classification, from, to time.Time) ([]game.Game, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]game.Game, 0)
	for _, item := range r.games {
		if item.Classification != classification {
			continue
		}
		if !item.LastModifiedAt.After(from) || !item.LastModifiedAt.Before(to) {
			continue
		}
		out = append(out, cloneGame(item))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].LastModifiedAt.Equal(out[j].LastModifiedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].LastModifiedAt.After(out[j].LastModifiedAt)
	})
	return out, nil
}

func (r *GameRepository) Upsert(_ context.Context, item game.Game) error {
	if err := item.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.games[item.ID]; ok && !existing.CreatedAt.IsZero() {
		item.CreatedAt = existing.CreatedAt
	}
	r.games[item.ID] = cloneGame(item)
	return nil
}

func cloneGame(item game.Game) game.Game {
	item.Sources = append([]game.Source(nil), item.Sources...)
	if item.Scores != nil {
		scores := *item.Scores
		item.Scores = &scores
	}
	if item.StartTime != nil {
		start := *item.StartTime
		item.StartTime = &start
	}
	return item
}
