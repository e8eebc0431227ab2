package cache

import (
	"context"
	"strings"
	"time"

	"github.com/riskibarqy/ultimate-scores/internal/domain/crawl"
	"github.com/riskibarqy/ultimate-scores/internal/domain/externalid"
	"github.com/riskibarqy/ultimate-scores/internal/domain/team"
	basecache "github.com/riskibarqy/ultimate-scores/internal/platform/cache"
)

const (
	DefaultWatermarkTTL = time.Hour
	watermarkKeyPrefix  = "list_latest_status_"
	managedListsKey     = "managed_lists"
	teamKeyPrefix       = "team:score_reporter:"
)

// WatermarkRepository keeps the newest post id per list in the cache and
// writes through to the store.
type WatermarkRepository struct {
	next  crawl.WatermarkRepository
	cache *basecache.Store
	ttl   time.Duration
}

func NewWatermarkRepository(next crawl.WatermarkRepository, cache *basecache.Store, ttl time.Duration) *WatermarkRepository {
	if ttl <= 0 {
		ttl = DefaultWatermarkTTL
	}
	return &WatermarkRepository{next: next, cache: cache, ttl: ttl}
}

func WatermarkKey(listID externalid.ID) string {
	return watermarkKeyPrefix + listID.String()
}

func (r *WatermarkRepository) GetLatest(ctx context.Context, listID externalid.ID) (externalid.ID, bool, error) {
	key := WatermarkKey(listID)
	if v, ok := r.cache.Get(ctx, key); ok {
		cached, _ := v.(cachedWatermark)
		return cached.value, cached.exists, nil
	}

	value, exists, err := r.next.GetLatest(ctx, listID)
	if err != nil {
		return externalid.Zero, false, err
	}
	if exists {
		r.cache.Merge(ctx, key, raiseWatermark(value), r.ttl)
	}
	return value, exists, nil
}

func (r *WatermarkRepository) SetLatest(ctx context.Context, listID, postID externalid.ID) error {
	if err := r.next.SetLatest(ctx, listID, postID); err != nil {
		r.cache.Delete(ctx, WatermarkKey(listID))
		return err
	}

	r.cache.Merge(ctx, WatermarkKey(listID), raiseWatermark(postID), r.ttl)
	return nil
}

type cachedWatermark struct {
	value  externalid.ID
	exists bool
}

// raiseWatermark never lets a cached watermark move backwards.
func raiseWatermark(postID externalid.ID) func(any, bool) any {
	return func(current any, ok bool) any {
		latest := postID
		if cached, isWatermark := current.(cachedWatermark); ok && isWatermark && cached.exists {
			latest = externalid.Max(latest, cached.value)
		}
		return cachedWatermark{value: latest, exists: true}
	}
}

type ManagedListRepository struct {
	next  crawl.ListRepository
	cache *basecache.Store
}

func NewManagedListRepository(next crawl.ListRepository, cache *basecache.Store) *ManagedListRepository {
	return &ManagedListRepository{next: next, cache: cache}
}

func (r *ManagedListRepository) ListManaged(ctx context.Context) ([]crawl.ManagedList, error) {
	items, err := basecache.Fetch(ctx, r.cache, managedListsKey, func(ctx context.Context) ([]crawl.ManagedList, error) {
		items, err := r.next.ListManaged(ctx)
		if err != nil {
			return nil, err
		}
		return append([]crawl.ManagedList(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}
	return append([]crawl.ManagedList(nil), items...), nil
}

func (r *ManagedListRepository) ReplaceManaged(ctx context.Context, lists []crawl.ManagedList) error {
	if err := r.next.ReplaceManaged(ctx, lists); err != nil {
		return err
	}
	r.cache.Delete(ctx, managedListsKey)
	return nil
}

type TeamRepository struct {
	next  team.Repository
	cache *basecache.Store
}

func NewTeamRepository(next team.Repository, cache *basecache.Store) *TeamRepository {
	return &TeamRepository{next: next, cache: cache}
}

func (r *TeamRepository) ListByScoreReporterIDs(ctx context.Context, ids []string) ([]team.Team, error) {
	return r.next.ListByScoreReporterIDs(ctx, ids)
}

func (r *TeamRepository) GetByScoreReporterID(ctx context.Context, id string) (team.Team, bool, error) {
	key := teamKeyPrefix + strings.TrimSpace(id)
	cached, err := basecache.Fetch(ctx, r.cache, key, func(ctx context.Context) (cachedTeam, error) {
		item, exists, err := r.next.GetByScoreReporterID(ctx, id)
		if err != nil {
			return cachedTeam{}, err
		}
		return cachedTeam{value: item, exists: exists}, nil
	})
	if err != nil {
		return team.Team{}, false, err
	}
	return cached.value, cached.exists, nil
}

func (r *TeamRepository) Upsert(ctx context.Context, item team.Team) error {
	if err := r.next.Upsert(ctx, item); err != nil {
		return err
	}
	r.cache.Delete(ctx, teamKeyPrefix+strings.TrimSpace(item.ScoreReporterID))
	return nil
}

type cachedTeam struct {
	value  team.Team
	exists bool
}
