package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/ultimate-scores/internal/domain/crawl"
	crawlmock "github.com/riskibarqy/ultimate-scores/internal/mocks/domain/crawl"
	"github.com/riskibarqy/ultimate-scores/internal/platform/logging"
	"github.com/stretchr/testify/mock"
)

func newListServiceForTest(t *testing.T, fetcher FeedFetcher, listRepo crawl.ListRepository, queue JobQueue, cfg ListServiceConfig) *ListService {
	t.Helper()

	logger := logging.NewNop()
	service := NewListService(fetcher, listRepo, crawl.DefaultRegistry(), NewJobDispatcher(queue, nil, logger), cfg, logger)
	service.now = func() time.Time { return crawlNow }
	return service
}

func TestListService_UpdateLists_ReplacesManagedLists(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	listRepo := crawlmock.NewListRepository(t)
	fetcher := &fakeFeedFetcher{lists: []FeedList{
		{ID: 186732484, Name: "Club Open", Slug: "club-open"},
		{ID: 0, Name: "broken"},
	}}
	service := newListServiceForTest(t, fetcher, listRepo, &recordingJobQueue{}, ListServiceConfig{OwnerScreenName: "scorebot"})

	listRepo.
		On("ReplaceManaged", mock.MatchedBy(func(v context.Context) bool { return v == ctx }), mock.MatchedBy(func(items []crawl.ManagedList) bool {
			return len(items) == 1 && items[0].Slug == "club-open" && items[0].UpdatedAt.Equal(crawlNow)
		})).
		Return(nil).
		Once()

	got, err := service.UpdateLists(ctx)
	if err != nil {
		t.Fatalf("update lists: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("unexpected list count: got=%d want=1", len(got))
	}
}

func TestListService_UpdateLists_RequiresOwner(t *testing.T) {
	t.Parallel()

	service := newListServiceForTest(t, &fakeFeedFetcher{}, crawlmock.NewListRepository(t), &recordingJobQueue{}, ListServiceConfig{})
	_, err := service.UpdateLists(context.Background())
	if !errors.Is(err, ErrDependencyUnavailable) {
		t.Fatalf("expected ErrDependencyUnavailable, got %v", err)
	}
}

func TestListService_CrawlAllLists_EnqueuesKnownManagedLists(t *testing.T) {
	t.Parallel()

	listRepo := crawlmock.NewListRepository(t)
	queue := &recordingJobQueue{}
	service := newListServiceForTest(t, &fakeFeedFetcher{}, listRepo, queue, ListServiceConfig{Workers: 2})

	listRepo.
		On("ListManaged", mock.Anything).
		Return([]crawl.ManagedList{
			{ID: 186814318, Name: "College Open"},
			{ID: 999, Name: "Unclassified"},
			{ID: 186732484, Name: "Club Open"},
		}, nil).
		Once()

	got, err := service.CrawlAllLists(context.Background())
	if err != nil {
		t.Fatalf("crawl all lists: %v", err)
	}
	if got.ListCount != 2 || got.QueuedCount != 2 || got.FailedCount != 0 {
		t.Fatalf("unexpected result: %+v", got)
	}
	if got.Items[0].ListID != "186732484" || got.Items[1].ListID != "186814318" {
		t.Fatalf("unexpected item order: %+v", got.Items)
	}

	jobs := queue.snapshot()
	if len(jobs) != 2 {
		t.Fatalf("unexpected enqueued jobs: got=%d want=2", len(jobs))
	}
	for _, job := range jobs {
		if job.path != JobPathCrawlList {
			t.Fatalf("unexpected job path: %s", job.path)
		}
	}
}

func TestListService_CrawlAllLists_FallsBackToRegistry(t *testing.T) {
	t.Parallel()

	listRepo := crawlmock.NewListRepository(t)
	queue := &recordingJobQueue{}
	service := newListServiceForTest(t, &fakeFeedFetcher{}, listRepo, queue, ListServiceConfig{})

	listRepo.On("ListManaged", mock.Anything).Return([]crawl.ManagedList(nil), nil).Once()

	got, err := service.CrawlAllLists(context.Background())
	if err != nil {
		t.Fatalf("crawl all lists: %v", err)
	}
	if want := len(crawl.DefaultRegistry().ListIDs()); got.QueuedCount != want {
		t.Fatalf("unexpected queued count: got=%d want=%d", got.QueuedCount, want)
	}
}

func TestListService_Backfill_StaggersCheckpoints(t *testing.T) {
	t.Parallel()

	queue := &recordingJobQueue{}
	service := newListServiceForTest(t, &fakeFeedFetcher{}, crawlmock.NewListRepository(t), queue, ListServiceConfig{
		Workers:         3,
		BackfillStagger: 10 * time.Second,
	})

	got, err := service.Backfill(context.Background(), BackfillInput{
		Duration:  "2w",
		StartDate: "09/02/2015",
		ListID:    "186732484",
	})
	if err != nil {
		t.Fatalf("backfill: %v", err)
	}
	if got.TaskCount != 2 || got.QueuedCount != 2 {
		t.Fatalf("unexpected result: %+v", got)
	}
	if got.Items[0].Checkpoint != "09/02/2015" || got.Items[0].DelayMs != 0 {
		t.Fatalf("unexpected first item: %+v", got.Items[0])
	}
	if got.Items[1].Checkpoint != "08/26/2015" || got.Items[1].DelayMs != 10000 {
		t.Fatalf("unexpected second item: %+v", got.Items[1])
	}

	for _, job := range queue.snapshot() {
		if job.path != JobPathBackfillList {
			t.Fatalf("unexpected job path: %s", job.path)
		}
		if job.payload["update_games_only"] != false {
			t.Fatalf("unexpected payload: %+v", job.payload)
		}
	}
}

func TestListService_Backfill_RejectsInvalidInput(t *testing.T) {
	t.Parallel()

	service := newListServiceForTest(t, &fakeFeedFetcher{}, crawlmock.NewListRepository(t), &recordingJobQueue{}, ListServiceConfig{})

	inputs := []BackfillInput{
		{Duration: "0w"},
		{Duration: "27w"},
		{Duration: "2w", StartDate: "2015-09-02"},
		{Duration: "2w", ListID: "42"},
		{Duration: "2w", ListID: "abc"},
	}
	for _, input := range inputs {
		if _, err := service.Backfill(context.Background(), input); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput for %+v, got %v", input, err)
		}
	}
}

func TestListService_ManagedListIDsSkipsUnknown(t *testing.T) {
	t.Parallel()

	listRepo := crawlmock.NewListRepository(t)
	service := newListServiceForTest(t, &fakeFeedFetcher{}, listRepo, &recordingJobQueue{}, ListServiceConfig{})
	listRepo.
		On("ListManaged", mock.Anything).
		Return([]crawl.ManagedList{{ID: 5}}, nil).
		Once()

	got, err := service.managedListIDs(context.Background(), "")
	if err != nil {
		t.Fatalf("managed list ids: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("unexpected list ids: %v", got)
	}
}
