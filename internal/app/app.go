package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/riskibarqy/ultimate-scores/external/feedapi"
	"github.com/riskibarqy/ultimate-scores/external/jobqueue"
	"github.com/riskibarqy/ultimate-scores/internal/config"
	"github.com/riskibarqy/ultimate-scores/internal/domain/crawl"
	"github.com/riskibarqy/ultimate-scores/internal/domain/game"
	"github.com/riskibarqy/ultimate-scores/internal/interfaces/httpapi"
	idgen "github.com/riskibarqy/ultimate-scores/internal/platform/id"
	"github.com/riskibarqy/ultimate-scores/internal/platform/logging"
	"github.com/riskibarqy/ultimate-scores/internal/platform/resilience"
	"github.com/riskibarqy/ultimate-scores/internal/usecase"
)

// NewHTTPServer wires repositories, external clients and services into the
// HTTP server. The returned close func releases the database pool.
func NewHTTPServer(ctx context.Context, cfg config.Config, logger *logging.Logger) (*http.Server, func() error, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.HTTPAddr == "" {
		return nil, nil, fmt.Errorf("http server addr cannot be empty")
	}

	registry := crawl.DefaultRegistry()
	repos, err := buildRepositories(ctx, cfg, registry, logger)
	if err != nil {
		return nil, nil, err
	}

	fetcher := feedapi.NewClient(feedapi.ClientConfig{
		BaseURL:           cfg.Feed.BaseURL,
		TokenURL:          cfg.Feed.TokenURL,
		ConsumerKey:       cfg.Feed.ConsumerKey,
		ConsumerSecret:    cfg.Feed.ConsumerSecret,
		BearerToken:       cfg.Feed.BearerToken,
		Timeout:           cfg.Feed.Timeout,
		RequestsPerSecond: cfg.Feed.RequestsPerSecond,
		Burst:             cfg.Feed.Burst,
		MaxRetries:        cfg.Feed.MaxRetries,
		Logger:            logger.Component("feed"),
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.Feed.CircuitEnabled,
			FailureThreshold: cfg.Feed.CircuitFailureCount,
			OpenTimeout:      cfg.Feed.CircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.Feed.CircuitHalfOpenMaxReq,
		},
	})

	dispatcher := usecase.NewJobDispatcher(buildJobQueue(cfg, logger), repos.dispatches, logger.Component("dispatcher"))
	matcher := usecase.NewGameMatcher(usecase.MatchConfig{
		Threshold:  cfg.Match.Threshold,
		StrictMode: cfg.Match.StrictMode,
		Window:     cfg.Match.Window,
	}, idgen.NewPrefixedGenerator(game.IDPrefix), idgen.NewPrefixedGenerator(game.TournamentIDPrefix), logger.Component("matcher"))

	crawlSvc := usecase.NewCrawlService(
		fetcher,
		registry,
		repos.games,
		repos.posts,
		repos.accounts,
		repos.watermarks,
		matcher,
		dispatcher,
		usecase.CrawlConfig{
			PageSize:          cfg.Crawl.PageSize,
			Limits:            crawl.Limits{MaxPosts: cfg.Crawl.MaxPosts, MaxRequests: cfg.Crawl.MaxRequests},
			GamesWindow:       cfg.Crawl.GamesWindow,
			FetchDeadline:     cfg.Feed.FetchDeadline,
			ContinuationDelay: cfg.Crawl.ContinuationDelay,
		},
		logger.Component("crawl"),
	)
	listSvc := usecase.NewListService(fetcher, repos.lists, registry, dispatcher, usecase.ListServiceConfig{
		OwnerScreenName: cfg.Crawl.OwnerScreenName,
		Workers:         cfg.Crawl.Workers,
		BackfillStagger: cfg.Crawl.BackfillStagger,
	}, logger.Component("lists"))

	handler := httpapi.NewHandler(httpapi.HandlerServices{
		Crawl:         crawlSvc,
		Lists:         listSvc,
		ScoreReporter: usecase.NewScoreReporterService(repos.games, repos.teams, logger.Component("score_reporter")),
		GameQuery:     usecase.NewGameQueryService(repos.games),
		Dispatcher:    dispatcher,
	}, logger)
	router := httpapi.NewRouter(handler, logger, cfg.CORSAllowedOrigins, cfg.InternalJobToken)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return server, repos.close, nil
}

func buildJobQueue(cfg config.Config, logger *logging.Logger) usecase.JobQueue {
	if !cfg.QStashEnabled {
		logger.Info("qstash disabled", "reason", "QSTASH_ENABLED=false")
		return usecase.NewNoopJobQueue()
	}

	return jobqueue.NewQStashPublisher(jobqueue.QStashPublisherConfig{
		BaseURL:          cfg.QStashBaseURL,
		Token:            cfg.QStashToken,
		TargetBaseURL:    cfg.QStashTargetBaseURL,
		Retries:          cfg.QStashRetries,
		InternalJobToken: cfg.InternalJobToken,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.QStashCircuitEnabled,
			FailureThreshold: cfg.QStashCircuitFailureCount,
			OpenTimeout:      cfg.QStashCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.QStashCircuitHalfOpenMaxReq,
		},
	}, logger.Component("qstash"))
}
