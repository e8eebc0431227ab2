package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/riskibarqy/ultimate-scores/internal/domain/crawl"
	"github.com/riskibarqy/ultimate-scores/internal/domain/externalid"
)

type WatermarkRepository struct {
	mu     sync.RWMutex
	latest map[externalid.ID]externalid.ID
}

func NewWatermarkRepository() *WatermarkRepository {
	return &WatermarkRepository{latest: make(map[externalid.ID]externalid.ID)}
}

func (r *WatermarkRepository) GetLatest(_ context.Context, listID externalid.ID) (externalid.ID, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	value, ok := r.latest[listID]
	return value, ok, nil
}

func (r *WatermarkRepository) SetLatest(_ context.Context, listID, postID externalid.ID) error {
	if listID.IsZero() || postID.IsZero() {
		return fmt.Errorf("list id and post id are required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.latest[listID] = externalid.Max(r.latest[listID], postID)
	return nil
}

type ManagedListRepository struct {
	mu    sync.RWMutex
	lists map[externalid.ID]crawl.ManagedList
}

func NewManagedListRepository(lists []crawl.ManagedList) *ManagedListRepository {
	r := &ManagedListRepository{lists: make(map[externalid.ID]crawl.ManagedList, len(lists))}
	for _, item := range lists {
		if item.ID.IsZero() {
			continue
		}
		r.lists[item.ID] = item
	}
	return r
}

func (r *ManagedListRepository) ListManaged(_ context.Context) ([]crawl.ManagedList, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]crawl.ManagedList, 0, len(r.lists))
	for _, item := range r.lists {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *ManagedListRepository) ReplaceManaged(_ context.Context, lists []crawl.ManagedList) error {
	next := make(map[externalid.ID]crawl.ManagedList, len(lists))
	for _, item := range lists {
		if item.ID.IsZero() {
			continue
		}
		next[item.ID] = item
	}

	r.mu.Lock()
	r.lists = next
	r.mu.Unlock()
	return nil
}
