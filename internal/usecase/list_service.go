package usecase

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/ultimate-scores/internal/domain/crawl"
	"github.com/riskibarqy/ultimate-scores/internal/domain/externalid"
	"github.com/riskibarqy/ultimate-scores/internal/platform/logging"
)

const (
	defaultDispatchWorkers = 4
	defaultBackfillStagger = 30 * time.Second
	crawlDispatchBucket    = time.Minute

	dispatchStatusQueued = "queued"
	dispatchStatusFailed = "failed"
)

type ListServiceConfig struct {
	OwnerScreenName string
	Workers         int
	BackfillStagger time.Duration
}

type ListDispatchItem struct {
	ListID     string `json:"list_id"`
	Checkpoint string `json:"checkpoint,omitempty"`
	DispatchID string `json:"dispatch_id"`
	Status     string `json:"status"`
	DelayMs    int64  `json:"delay_ms,omitempty"`
	Message    string `json:"message,omitempty"`
}

type ListDispatchResult struct {
	ListCount   int                `json:"list_count"`
	TaskCount   int                `json:"task_count"`
	QueuedCount int                `json:"queued_count"`
	FailedCount int                `json:"failed_count"`
	WorkerCount int                `json:"worker_count"`
	Items       []ListDispatchItem `json:"items"`
}

type BackfillInput struct {
	Duration        string
	StartDate       string
	ListID          string
	UpdateGamesOnly bool
}

type listDispatchTask struct {
	listID     externalid.ID
	checkpoint time.Time
	delay      time.Duration
}

// ListService manages the curated lists and fans crawl and backfill jobs out
// to the work queue.
type ListService struct {
	fetcher    FeedFetcher
	listRepo   crawl.ListRepository
	registry   *crawl.Registry
	dispatcher *JobDispatcher
	cfg        ListServiceConfig
	logger     *logging.Logger
	now        func() time.Time
}

func NewListService(
	fetcher FeedFetcher,
	listRepo crawl.ListRepository,
	registry *crawl.Registry,
	dispatcher *JobDispatcher,
	cfg ListServiceConfig,
	logger *logging.Logger,
) *ListService {
	if registry == nil {
		registry = crawl.DefaultRegistry()
	}
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.Workers <= 0 {
		cfg.Workers = defaultDispatchWorkers
	}
	if cfg.BackfillStagger <= 0 {
		cfg.BackfillStagger = defaultBackfillStagger
	}

	return &ListService{
		fetcher:    fetcher,
		listRepo:   listRepo,
		registry:   registry,
		dispatcher: dispatcher,
		cfg:        cfg,
		logger:     logger,
		now:        time.Now,
	}
}

// UpdateLists refreshes the managed lists from the lists the owner account
// curates on the feed.
func (s *ListService) UpdateLists(ctx context.Context) ([]crawl.ManagedList, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ListService.UpdateLists")
	defer span.End()

	owner := strings.TrimSpace(s.cfg.OwnerScreenName)
	if owner == "" {
		return nil, fmt.Errorf("%w: list owner screen name is not configured", ErrDependencyUnavailable)
	}
	if s.fetcher == nil {
		return nil, fmt.Errorf("%w: feed fetcher is not configured", ErrDependencyUnavailable)
	}

	owned, err := s.fetcher.FetchOwnedLists(ctx, owner)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	lists := make([]crawl.ManagedList, 0, len(owned))
	for _, item := range owned {
		if item.ID.IsZero() {
			continue
		}
		lists = append(lists, crawl.ManagedList{
			ID:        item.ID,
			Name:      item.Name,
			Slug:      item.Slug,
			UpdatedAt: now,
		})
	}
	if err := s.listRepo.ReplaceManaged(ctx, lists); err != nil {
		return nil, fmt.Errorf("replace managed lists: %w", err)
	}

	s.logger.InfoContext(ctx, "managed lists updated", "owner", owner, "count", len(lists))
	return lists, nil
}

// CrawlAllLists enqueues one crawl job per managed list.
func (s *ListService) CrawlAllLists(ctx context.Context) (ListDispatchResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ListService.CrawlAllLists")
	defer span.End()

	listIDs, err := s.managedListIDs(ctx, "")
	if err != nil {
		return ListDispatchResult{}, err
	}

	tasks := make([]listDispatchTask, 0, len(listIDs))
	for _, listID := range listIDs {
		tasks = append(tasks, listDispatchTask{listID: listID})
	}

	now := s.now()
	return s.fanOut(ctx, len(listIDs), tasks, func(task listDispatchTask) JobSpec {
		listID := task.listID.String()
		return JobSpec{
			Name:     JobNameCrawlList,
			Path:     JobPathCrawlList,
			TargetID: listID,
			Payload:  map[string]any{"list_id": listID},
			DedupID:  dedupKey(JobNameCrawlList, listID, now, crawlDispatchBucket),
		}
	})
}

// Backfill enqueues one backfill job per managed list and weekly checkpoint.
// Jobs are staggered so the workers are not all woken at once.
func (s *ListService) Backfill(ctx context.Context, input BackfillInput) (ListDispatchResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ListService.Backfill")
	defer span.End()

	duration, err := crawl.ParseBackfillDuration(input.Duration)
	if err != nil {
		return ListDispatchResult{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	start := s.now().UTC()
	if strings.TrimSpace(input.StartDate) != "" {
		start, err = crawl.ParseBackfillDate(input.StartDate)
		if err != nil {
			return ListDispatchResult{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
	}

	listIDs, err := s.managedListIDs(ctx, input.ListID)
	if err != nil {
		return ListDispatchResult{}, err
	}

	dates := crawl.GenerateBackfillDates(duration, start)
	tasks := make([]listDispatchTask, 0, len(listIDs)*len(dates))
	for _, listID := range listIDs {
		for _, checkpoint := range dates {
			tasks = append(tasks, listDispatchTask{
				listID:     listID,
				checkpoint: checkpoint,
				delay:      time.Duration(len(tasks)) * s.cfg.BackfillStagger,
			})
		}
	}

	return s.fanOut(ctx, len(listIDs), tasks, func(task listDispatchTask) JobSpec {
		listID := task.listID.String()
		checkpoint := crawl.FormatBackfillDate(task.checkpoint)
		return JobSpec{
			Name:     JobNameBackfillList,
			Path:     JobPathBackfillList,
			TargetID: listID,
			Payload: map[string]any{
				"list_id":           listID,
				"backfill_date":     checkpoint,
				"update_games_only": input.UpdateGamesOnly,
			},
			Delay: task.delay,
			DedupID: chainDedupKey(JobNameBackfillList, listID,
				task.checkpoint.Format("20060102"), strconv.FormatBool(input.UpdateGamesOnly)),
		}
	})
}

// managedListIDs returns the stored managed lists that the registry knows,
// falling back to every registry list when none are stored. A non-empty
// only narrows the result to that list.
func (s *ListService) managedListIDs(ctx context.Context, only string) ([]externalid.ID, error) {
	if strings.TrimSpace(only) != "" {
		listID, err := externalid.Parse(only)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		if _, ok := s.registry.Classification(listID); !ok {
			return nil, fmt.Errorf("%w: unknown list id=%s", ErrInvalidInput, listID)
		}
		return []externalid.ID{listID}, nil
	}

	managed, err := s.listRepo.ListManaged(ctx)
	if err != nil {
		return nil, fmt.Errorf("list managed lists: %w", err)
	}

	out := make([]externalid.ID, 0, len(managed))
	for _, item := range managed {
		if _, ok := s.registry.Classification(item.ID); !ok {
			s.logger.WarnContext(ctx, "skip managed list without classification", "list_id", item.ID.Int64(), "name", item.Name)
			continue
		}
		out = append(out, item.ID)
	}
	if len(managed) == 0 {
		out = s.registry.ListIDs()
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

func (s *ListService) fanOut(
	ctx context.Context,
	listCount int,
	tasks []listDispatchTask,
	build func(task listDispatchTask) JobSpec,
) (ListDispatchResult, error) {
	workerCount := s.cfg.Workers
	if workerCount > len(tasks) {
		workerCount = len(tasks)
	}
	result := ListDispatchResult{
		ListCount:   listCount,
		TaskCount:   len(tasks),
		WorkerCount: workerCount,
		Items:       make([]ListDispatchItem, 0, len(tasks)),
	}
	if len(tasks) == 0 {
		return result, nil
	}
	if s.dispatcher == nil {
		return ListDispatchResult{}, fmt.Errorf("%w: job dispatcher is not configured", ErrDependencyUnavailable)
	}

	pool, err := ants.NewPool(workerCount)
	if err != nil {
		return ListDispatchResult{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	results := make(chan ListDispatchItem, len(tasks))
	var queuedCount atomic.Int32
	var failedCount atomic.Int32

	var workers sync.WaitGroup
	for _, task := range tasks {
		task := task
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()

			spec := build(task)
			item := ListDispatchItem{
				ListID:     task.listID.String(),
				DispatchID: spec.DedupID,
				DelayMs:    spec.Delay.Milliseconds(),
			}
			if !task.checkpoint.IsZero() {
				item.Checkpoint = crawl.FormatBackfillDate(task.checkpoint)
			}

			if err := s.dispatcher.Dispatch(ctx, spec); err != nil {
				item.Status = dispatchStatusFailed
				item.Message = err.Error()
				failedCount.Add(1)
			} else {
				item.Status = dispatchStatusQueued
				queuedCount.Add(1)
			}
			results <- item
		}); err != nil {
			workers.Done()
			return ListDispatchResult{}, fmt.Errorf("submit task to worker pool: %w", err)
		}
	}

	workers.Wait()
	close(results)

	for item := range results {
		result.Items = append(result.Items, item)
	}
	sort.SliceStable(result.Items, func(i, j int) bool {
		if result.Items[i].ListID != result.Items[j].ListID {
			return result.Items[i].ListID < result.Items[j].ListID
		}
		return result.Items[i].DelayMs < result.Items[j].DelayMs
	})

	result.QueuedCount = int(queuedCount.Load())
	result.FailedCount = int(failedCount.Load())
	if result.FailedCount > 0 {
		s.logger.WarnContext(ctx, "some list jobs failed to enqueue",
			"task_count", result.TaskCount,
			"failed_count", result.FailedCount,
		)
	}
	return result, nil
}
