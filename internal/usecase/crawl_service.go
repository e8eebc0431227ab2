package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/riskibarqy/ultimate-scores/internal/domain/account"
	"github.com/riskibarqy/ultimate-scores/internal/domain/crawl"
	"github.com/riskibarqy/ultimate-scores/internal/domain/externalid"
	"github.com/riskibarqy/ultimate-scores/internal/domain/game"
	"github.com/riskibarqy/ultimate-scores/internal/domain/post"
	"github.com/riskibarqy/ultimate-scores/internal/domain/score"
	"github.com/riskibarqy/ultimate-scores/internal/platform/logging"
	"github.com/sourcegraph/conc/pool"
	"go.opentelemetry.io/otel/attribute"
)

const (
	defaultGamesWindow   = 7 * 24 * time.Hour
	defaultFetchDeadline = 20 * time.Second
)

type CrawlConfig struct {
	PageSize          int
	Limits            crawl.Limits
	GamesWindow       time.Duration
	FetchDeadline     time.Duration
	ContinuationDelay time.Duration
}

func (c CrawlConfig) normalize() CrawlConfig {
	if c.PageSize <= 0 {
		c.PageSize = crawl.DefaultPageSize
	}
	if c.GamesWindow <= 0 {
		c.GamesWindow = defaultGamesWindow
	}
	if c.FetchDeadline <= 0 {
		c.FetchDeadline = defaultFetchDeadline
	}
	return c
}

type CycleResult struct {
	ListID        string             `json:"list_id"`
	PostsFetched  int                `json:"posts_fetched"`
	PostsAdded    int                `json:"posts_added"`
	ParseFailures int                `json:"parse_failures"`
	Observations  int                `json:"observations"`
	GamesCreated  int                `json:"games_created"`
	GamesUpdated  int                `json:"games_updated"`
	Continuation  *crawl.NextRequest `json:"continuation,omitempty"`
}

// CrawlService runs one crawl or backfill cycle for a list. It is the only
// component that talks to the feed, the store and the work queue.
type CrawlService struct {
	fetcher     FeedFetcher
	registry    *crawl.Registry
	gameRepo    game.Repository
	postRepo    post.Repository
	accountRepo account.Repository
	watermarks  crawl.WatermarkRepository
	accounts    *AccountService
	matcher     *GameMatcher
	dispatcher  *JobDispatcher
	cfg         CrawlConfig
	logger      *logging.Logger
}

func NewCrawlService(
	fetcher FeedFetcher,
	registry *crawl.Registry,
	gameRepo game.Repository,
	postRepo post.Repository,
	accountRepo account.Repository,
	watermarks crawl.WatermarkRepository,
	matcher *GameMatcher,
	dispatcher *JobDispatcher,
	cfg CrawlConfig,
	logger *logging.Logger,
) *CrawlService {
	if registry == nil {
		registry = crawl.DefaultRegistry()
	}
	if logger == nil {
		logger = logging.Default()
	}
	if matcher == nil {
		matcher = NewGameMatcher(DefaultMatchConfig(), nil, nil, logger)
	}

	return &CrawlService{
		fetcher:     fetcher,
		registry:    registry,
		gameRepo:    gameRepo,
		postRepo:    postRepo,
		accountRepo: accountRepo,
		watermarks:  watermarks,
		accounts:    NewAccountService(accountRepo),
		matcher:     matcher,
		dispatcher:  dispatcher,
		cfg:         cfg.normalize(),
		logger:      logger,
	}
}

// RunCrawlCycle fetches one page of listID and folds its scores into games.
// A nil resume starts a new chain from the list's high-water mark.
func (s *CrawlService) RunCrawlCycle(ctx context.Context, listID externalid.ID, resume *crawl.State) (CycleResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CrawlService.RunCrawlCycle", listIDAttr(listID))
	defer span.End()

	result := CycleResult{ListID: listID.String()}
	classification, ok := s.registry.Classification(listID)
	if !ok {
		return result, fmt.Errorf("%w: unknown list id=%s", ErrInvalidInput, listID)
	}
	if s.fetcher == nil {
		return result, fmt.Errorf("%w: feed fetcher is not configured", ErrDependencyUnavailable)
	}

	var state crawl.State
	if resume != nil {
		state = *resume
		if state.ListID != listID {
			return result, fmt.Errorf("%w: resume state list=%s does not match list=%s", ErrInvalidInput, state.ListID, listID)
		}
		if state.NumToCrawl <= 0 {
			state.NumToCrawl = s.cfg.PageSize
		}
	} else {
		highWaterMark, err := s.loadHighWaterMark(ctx, listID)
		if err != nil {
			return result, err
		}
		state = crawl.NewState(listID, highWaterMark, s.cfg.PageSize)
	}
	if err := state.Validate(); err != nil {
		return result, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	fetchCtx, cancel := context.WithTimeout(ctx, s.cfg.FetchDeadline)
	fetched, err := s.fetcher.FetchListPage(fetchCtx, PageRequest{
		ListID:  listID,
		SinceID: state.SinceID,
		MaxID:   state.MaxID,
		Count:   state.NumToCrawl,
	})
	cancel()
	if err != nil {
		var fetchErr *FetchError
		if errors.As(err, &fetchErr) {
			s.logger.WarnContext(ctx, "feed fetch failed, cycle aborted",
				"list_id", listID.Int64(),
				"kind", string(fetchErr.Kind),
				"error", fetchErr,
			)
			return result, fetchErr
		}
		return result, err
	}
	result.PostsFetched = len(fetched)

	posts, authors, parseFailures := s.convertPage(ctx, listID, fetched)
	result.ParseFailures = parseFailures

	var (
		games         []game.Game
		cycleAccounts []account.Account
	)
	writes := pool.New().WithContext(ctx).WithCancelOnError()
	if from, to, ok := s.candidateWindow(posts); ok {
		writes.Go(func(ctx context.Context) error {
			items, err := s.gameRepo.ListByClassificationWindow(ctx, classification, from, to)
			if err != nil {
				return fmt.Errorf("load games window: %w", err)
			}
			games = items
			return nil
		})
	}
	writes.Go(func(ctx context.Context) error {
		items, err := s.accounts.UpsertFromFeed(ctx, listID, authors)
		if err != nil {
			return fmt.Errorf("upsert page accounts: %w", err)
		}
		cycleAccounts = items
		return nil
	})
	if len(posts) > 0 {
		writes.Go(func(ctx context.Context) error {
			if err := s.postRepo.UpsertMany(ctx, posts); err != nil {
				return fmt.Errorf("upsert page posts: %w", err)
			}
			return nil
		})
	}
	if err := writes.Wait(); err != nil {
		return result, err
	}
	result.PostsAdded = len(posts)

	lookup, err := NewAuthorLookup(ctx, s.accountRepo, s.registry, cycleAccounts, posts)
	if err != nil {
		return result, err
	}
	if err := s.matchAndPersist(ctx, posts, games, lookup, classification, &result); err != nil {
		return result, err
	}

	if newest := newestFeedPostID(fetched); !newest.IsZero() {
		if err := s.watermarks.SetLatest(ctx, listID, newest); err != nil {
			return result, fmt.Errorf("update high-water mark list=%s: %w", listID, err)
		}
	}

	next, ok := s.cfg.Limits.PlanNextCrawl(state, len(fetched), oldestFeedPostID(fetched))
	if ok {
		result.Continuation = &next
		if err := s.enqueueContinuation(ctx, next); err != nil {
			return result, err
		}
	}

	s.logger.InfoContext(ctx, "crawl cycle done",
		"list_id", listID.Int64(),
		"fetched", result.PostsFetched,
		"parse_failures", result.ParseFailures,
		"games_created", result.GamesCreated,
		"games_updated", result.GamesUpdated,
		"continued", ok,
	)
	return result, nil
}

// RunBackfillCycle re-matches posts stored for the week after checkpoint. It
// never reads the feed and never chains. With updateGamesOnly it only runs
// the consistency pass over the games of that week.
func (s *CrawlService) RunBackfillCycle(ctx context.Context, listID externalid.ID, checkpoint time.Time, updateGamesOnly bool) (CycleResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CrawlService.RunBackfillCycle", listIDAttr(listID), attribute.Bool("crawl.update_games_only", updateGamesOnly))
	defer span.End()

	result := CycleResult{ListID: listID.String()}
	classification, ok := s.registry.Classification(listID)
	if !ok {
		return result, fmt.Errorf("%w: unknown list id=%s", ErrInvalidInput, listID)
	}
	if checkpoint.IsZero() {
		return result, fmt.Errorf("%w: backfill checkpoint is required", ErrInvalidInput)
	}

	gamesStart := checkpoint.UTC().Add(7 * 24 * time.Hour)
	from := gamesStart.Add(-7 * 24 * time.Hour)

	var (
		posts []post.Post
		games []game.Game
	)
	loads := pool.New().WithContext(ctx).WithCancelOnError()
	loads.Go(func(ctx context.Context) error {
		items, err := s.gameRepo.ListByClassificationWindow(ctx, classification, from, gamesStart)
		if err != nil {
			return fmt.Errorf("load games window: %w", err)
		}
		games = items
		return nil
	})
	if !updateGamesOnly {
		loads.Go(func(ctx context.Context) error {
			items, err := s.postRepo.ListByListWindow(ctx, listID, from, gamesStart)
			if err != nil {
				return fmt.Errorf("load stored posts: %w", err)
			}
			posts = items
			return nil
		})
	}
	if err := loads.Wait(); err != nil {
		return result, err
	}
	result.PostsFetched = len(posts)

	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].CreatedAt.Before(posts[j].CreatedAt)
	})

	lookup, err := NewAuthorLookup(ctx, s.accountRepo, s.registry, nil, posts)
	if err != nil {
		return result, err
	}
	if err := s.matchAndPersist(ctx, posts, games, lookup, classification, &result); err != nil {
		return result, err
	}

	s.logger.InfoContext(ctx, "backfill cycle done",
		"list_id", listID.Int64(),
		"checkpoint", checkpoint.UTC().Format(time.DateOnly),
		"update_games_only", updateGamesOnly,
		"games_created", result.GamesCreated,
		"games_updated", result.GamesUpdated,
	)
	return result, nil
}

// candidateWindow spans the games a page can belong to: every game touched
// within GamesWindow of the page's oldest or newest post, so re-delivered
// posts always meet the game that already holds them.
func (s *CrawlService) candidateWindow(posts []post.Post) (time.Time, time.Time, bool) {
	if len(posts) == 0 {
		return time.Time{}, time.Time{}, false
	}
	oldest, newest := posts[0].CreatedAt, posts[0].CreatedAt
	for _, item := range posts[1:] {
		if item.CreatedAt.Before(oldest) {
			oldest = item.CreatedAt
		}
		if item.CreatedAt.After(newest) {
			newest = item.CreatedAt
		}
	}
	return oldest.Add(-s.cfg.GamesWindow), newest.Add(s.cfg.GamesWindow), true
}

func (s *CrawlService) matchAndPersist(
	ctx context.Context,
	posts []post.Post,
	games []game.Game,
	lookup *AuthorLookup,
	classification game.Classification,
	result *CycleResult,
) error {
	gamePool := NewGamePool(games)
	for _, item := range posts {
		obs, ok := BuildObservation(item, lookup)
		if !ok {
			continue
		}
		result.Observations++
		if _, err := s.matcher.AddObservation(obs, classification, gamePool); err != nil {
			return fmt.Errorf("match post id=%s: %w", item.ID, err)
		}
	}
	gamePool.Reconcile()

	for _, item := range gamePool.Dirty() {
		if err := s.gameRepo.Upsert(ctx, item); err != nil {
			return fmt.Errorf("upsert game id=%s: %w", item.ID, err)
		}
	}
	result.GamesCreated = gamePool.CreatedCount()
	result.GamesUpdated = gamePool.UpdatedCount()
	return nil
}

// convertPage turns a fetched page into posts, oldest first, and the distinct
// authors that wrote them. Invalid items are skipped and counted.
func (s *CrawlService) convertPage(ctx context.Context, listID externalid.ID, fetched []FeedPost) ([]post.Post, []FeedAccount, int) {
	posts := make([]post.Post, 0, len(fetched))
	authors := make([]FeedAccount, 0, len(fetched))
	failures := 0
	for _, item := range fetched {
		converted := post.Post{
			ID:                item.ID,
			ListID:            listID,
			AuthorID:          item.Author.ID,
			Text:              item.Text,
			CreatedAt:         item.CreatedAt.UTC(),
			Lang:              item.Lang,
			InReplyToPostID:   item.InReplyToPostID,
			InReplyToAuthorID: item.InReplyToAuthorID,
			Integers:          score.ExtractIntegers(item.Text),
			Hashtags:          item.Hashtags,
		}
		for _, mention := range item.Mentions {
			converted.Mentions = append(converted.Mentions, post.Mention{
				AccountID:  mention.AccountID,
				ScreenName: mention.ScreenName,
				Start:      mention.Start,
				End:        mention.End,
			})
		}
		if err := converted.Validate(); err != nil {
			failures++
			s.logger.WarnContext(ctx, "skip unparseable post",
				"list_id", listID.Int64(),
				"post_id", item.ID.Int64(),
				"error", err,
			)
			continue
		}
		posts = append(posts, converted)
		authors = append(authors, item.Author)
	}

	sort.SliceStable(posts, func(i, j int) bool {
		if !posts[i].CreatedAt.Equal(posts[j].CreatedAt) {
			return posts[i].CreatedAt.Before(posts[j].CreatedAt)
		}
		return posts[i].ID < posts[j].ID
	})
	return posts, authors, failures
}

// loadHighWaterMark reads the stored watermark and falls back to the newest
// stored post, then to FirstInStream for a list never crawled.
func (s *CrawlService) loadHighWaterMark(ctx context.Context, listID externalid.ID) (externalid.ID, error) {
	latest, found, err := s.watermarks.GetLatest(ctx, listID)
	if err != nil {
		return externalid.Zero, fmt.Errorf("get high-water mark list=%s: %w", listID, err)
	}
	if found && !latest.IsZero() {
		return latest, nil
	}

	latest, found, err = s.postRepo.LatestID(ctx, listID)
	if err != nil {
		return externalid.Zero, fmt.Errorf("get latest stored post list=%s: %w", listID, err)
	}
	if found && !latest.IsZero() {
		return latest, nil
	}
	return externalid.FirstInStream, nil
}

func (s *CrawlService) enqueueContinuation(ctx context.Context, next crawl.NextRequest) error {
	if s.dispatcher == nil {
		return fmt.Errorf("%w: job dispatcher is not configured", ErrDependencyUnavailable)
	}

	listID := next.ListID.String()
	return s.dispatcher.Dispatch(ctx, JobSpec{
		Name:     JobNameCrawlList,
		Path:     JobPathCrawlList,
		TargetID: listID,
		Payload:  continuationPayload(next),
		Delay:    s.cfg.ContinuationDelay,
		DedupID:  chainDedupKey(JobNameCrawlList, listID, "max", next.MaxID.String()),
	})
}

func continuationPayload(next crawl.NextRequest) map[string]any {
	return map[string]any{
		"list_id":             next.ListID.String(),
		"since_id":            next.SinceID.String(),
		"max_id":              next.MaxID.String(),
		"total_crawled":       next.TotalCrawled,
		"total_requests_made": next.TotalRequestsMade,
		"num_to_crawl":        next.NumToCrawl,
	}
}

func newestFeedPostID(items []FeedPost) externalid.ID {
	newest := externalid.Zero
	for _, item := range items {
		newest = externalid.Max(newest, item.ID)
	}
	return newest
}

func oldestFeedPostID(items []FeedPost) externalid.ID {
	oldest := externalid.Zero
	for _, item := range items {
		if item.ID.IsZero() {
			continue
		}
		if oldest.IsZero() || item.ID < oldest {
			oldest = item.ID
		}
	}
	return oldest
}
