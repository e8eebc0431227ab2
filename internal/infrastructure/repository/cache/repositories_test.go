package cache

import (
	"context"
	"errors"
	"testing"

	"github.com/riskibarqy/ultimate-scores/internal/domain/crawl"
	"github.com/riskibarqy/ultimate-scores/internal/domain/externalid"
	"github.com/riskibarqy/ultimate-scores/internal/domain/team"
	crawlmock "github.com/riskibarqy/ultimate-scores/internal/mocks/domain/crawl"
	teammock "github.com/riskibarqy/ultimate-scores/internal/mocks/domain/team"
	basecache "github.com/riskibarqy/ultimate-scores/internal/platform/cache"
	"github.com/stretchr/testify/mock"
)

const testListID externalid.ID = 186732484

func TestWatermarkRepository_GetLatestCachesStoreValue(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	next := crawlmock.NewWatermarkRepository(t)
	store := basecache.NewStore(0)
	repo := NewWatermarkRepository(next, store, 0)

	next.On("GetLatest", mock.Anything, testListID).Return(externalid.ID(900), true, nil).Once()

	for i := 0; i < 2; i++ {
		got, ok, err := repo.GetLatest(ctx, testListID)
		if err != nil || !ok || got != 900 {
			t.Fatalf("unexpected watermark: got=%s ok=%v err=%v", got, ok, err)
		}
	}
	if _, ok := store.Get(ctx, "list_latest_status_186732484"); !ok {
		t.Fatalf("expected the watermark to be cached under its list key")
	}
}

func TestWatermarkRepository_MissIsNotCached(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	next := crawlmock.NewWatermarkRepository(t)
	repo := NewWatermarkRepository(next, basecache.NewStore(0), 0)

	next.On("GetLatest", mock.Anything, testListID).Return(externalid.Zero, false, nil).Twice()

	for i := 0; i < 2; i++ {
		if _, ok, err := repo.GetLatest(ctx, testListID); err != nil || ok {
			t.Fatalf("unexpected watermark: ok=%v err=%v", ok, err)
		}
	}
}

func TestWatermarkRepository_SetLatestNeverLowersCache(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	next := crawlmock.NewWatermarkRepository(t)
	repo := NewWatermarkRepository(next, basecache.NewStore(0), 0)

	next.On("SetLatest", mock.Anything, testListID, externalid.ID(900)).Return(nil).Once()
	next.On("SetLatest", mock.Anything, testListID, externalid.ID(700)).Return(nil).Once()

	if err := repo.SetLatest(ctx, testListID, 900); err != nil {
		t.Fatalf("set latest: %v", err)
	}
	if err := repo.SetLatest(ctx, testListID, 700); err != nil {
		t.Fatalf("set older latest: %v", err)
	}

	got, ok, err := repo.GetLatest(ctx, testListID)
	if err != nil || !ok || got != 900 {
		t.Fatalf("unexpected watermark: got=%s ok=%v err=%v", got, ok, err)
	}
}

func TestWatermarkRepository_SetLatestFailureEvicts(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	next := crawlmock.NewWatermarkRepository(t)
	store := basecache.NewStore(0)
	repo := NewWatermarkRepository(next, store, 0)
	store.Set(ctx, WatermarkKey(testListID), cachedWatermark{value: 500, exists: true})

	next.On("SetLatest", mock.Anything, testListID, externalid.ID(900)).Return(errors.New("db down")).Once()

	if err := repo.SetLatest(ctx, testListID, 900); err == nil {
		t.Fatalf("expected store error")
	}
	if _, ok := store.Get(ctx, WatermarkKey(testListID)); ok {
		t.Fatalf("expected cached watermark to be evicted")
	}
}

func TestManagedListRepository_ReplaceInvalidates(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	next := crawlmock.NewListRepository(t)
	repo := NewManagedListRepository(next, basecache.NewStore(0))

	first := []crawl.ManagedList{{ID: testListID, Name: "USAU OPEN"}}
	second := []crawl.ManagedList{{ID: 186732631, Name: "USAU WOMENS"}}
	next.On("ListManaged", mock.Anything).Return(first, nil).Once()
	next.On("ReplaceManaged", mock.Anything, second).Return(nil).Once()
	next.On("ListManaged", mock.Anything).Return(second, nil).Once()

	for i := 0; i < 2; i++ {
		got, err := repo.ListManaged(ctx)
		if err != nil || len(got) != 1 || got[0].ID != testListID {
			t.Fatalf("unexpected cached lists: %+v err=%v", got, err)
		}
	}
	if err := repo.ReplaceManaged(ctx, second); err != nil {
		t.Fatalf("replace managed: %v", err)
	}
	got, err := repo.ListManaged(ctx)
	if err != nil || len(got) != 1 || got[0].ID != 186732631 {
		t.Fatalf("unexpected lists after replace: %+v err=%v", got, err)
	}
}

func TestTeamRepository_UpsertInvalidates(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	next := teammock.NewRepository(t)
	repo := NewTeamRepository(next, basecache.NewStore(0))

	updated := team.Team{ScoreReporterID: "ring", FeedID: 11, Name: "Ring of Fire"}
	next.On("GetByScoreReporterID", mock.Anything, "ring").Return(team.Team{}, false, nil).Once()
	next.On("Upsert", mock.Anything, updated).Return(nil).Once()
	next.On("GetByScoreReporterID", mock.Anything, "ring").Return(updated, true, nil).Once()

	if _, ok, err := repo.GetByScoreReporterID(ctx, "ring"); err != nil || ok {
		t.Fatalf("unexpected first lookup: ok=%v err=%v", ok, err)
	}
	if _, ok, _ := repo.GetByScoreReporterID(ctx, "ring"); ok {
		t.Fatalf("negative lookup must be cached")
	}
	if err := repo.Upsert(ctx, updated); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	got, ok, err := repo.GetByScoreReporterID(ctx, "ring")
	if err != nil || !ok || got.FeedID != 11 {
		t.Fatalf("unexpected lookup after upsert: got=%+v ok=%v err=%v", got, ok, err)
	}
}
