package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/riskibarqy/ultimate-scores/internal/domain/externalid"
	"github.com/riskibarqy/ultimate-scores/internal/domain/post"
)

type PostRepository struct {
	mu    sync.RWMutex
	posts map[externalid.ID]post.Post
}

func NewPostRepository() *PostRepository {
	return &PostRepository{posts: make(map[externalid.ID]post.Post)}
}

func (r *PostRepository) UpsertMany(_ context.Context, items []post.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, item := range items {
		if item.ID.IsZero() {
			continue
		}
		r.posts[item.ID] = item
	}
	return nil
}

func (r *PostRepository) ListByListWindow(_ context.Context, listID externalid.ID, from, to time.Time) ([]post.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]post.Post, 0)
	for _, item := range r.posts {
		if item.ListID != listID {
			continue
		}
		if !item.CreatedAt.After(from) || !item.CreatedAt.Before(to) {
			continue
		}
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *PostRepository) LatestID(_ context.Context, listID externalid.ID) (externalid.ID, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	latest := externalid.Zero
	for _, item := range r.posts {
		if item.ListID == listID {
			latest = externalid.Max(latest, item.ID)
		}
	}
	return latest, !latest.IsZero(), nil
}
