package app

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/riskibarqy/ultimate-scores/internal/config"
	"github.com/riskibarqy/ultimate-scores/internal/domain/account"
	"github.com/riskibarqy/ultimate-scores/internal/domain/crawl"
	"github.com/riskibarqy/ultimate-scores/internal/domain/game"
	"github.com/riskibarqy/ultimate-scores/internal/domain/jobscheduler"
	"github.com/riskibarqy/ultimate-scores/internal/domain/post"
	"github.com/riskibarqy/ultimate-scores/internal/domain/team"
	"github.com/riskibarqy/ultimate-scores/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/ultimate-scores/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/ultimate-scores/internal/infrastructure/repository/postgres"
	basecache "github.com/riskibarqy/ultimate-scores/internal/platform/cache"
	"github.com/riskibarqy/ultimate-scores/internal/platform/dburl"
	"github.com/riskibarqy/ultimate-scores/internal/platform/logging"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

type repositories struct {
	games      game.Repository
	posts      post.Repository
	accounts   account.Repository
	teams      team.Repository
	watermarks crawl.WatermarkRepository
	lists      crawl.ListRepository
	dispatches jobscheduler.Repository
	close      func() error
}

// buildRepositories uses Postgres when DB_URL is set and in-memory stores
// otherwise. Read-mostly repositories are wrapped with the TTL cache.
func buildRepositories(ctx context.Context, cfg config.Config, registry *crawl.Registry, logger *logging.Logger) (repositories, error) {
	var repos repositories

	if strings.TrimSpace(cfg.DBURL) == "" {
		logger.Warn("DB_URL empty, using in-memory repositories")
		repos = repositories{
			games:      memory.NewGameRepository(),
			posts:      memory.NewPostRepository(),
			accounts:   memory.NewAccountRepository(),
			teams:      memory.NewTeamRepository(nil),
			watermarks: memory.NewWatermarkRepository(),
			lists:      memory.NewManagedListRepository(memory.SeedManagedLists(registry)),
			dispatches: memory.NewJobDispatchRepository(),
			close:      func() error { return nil },
		}
	} else {
		db, err := openDB(cfg)
		if err != nil {
			return repositories{}, err
		}
		if err := db.PingContext(ctx); err != nil {
			_ = db.Close()
			return repositories{}, fmt.Errorf("ping database: %w", err)
		}
		if err := postgres.BootstrapSeed(ctx, db, registry); err != nil {
			_ = db.Close()
			return repositories{}, err
		}
		logger.Info("postgres repositories enabled", "db_name", dburl.Name(cfg.DBURL), "db_url", dburl.Redact(cfg.DBURL))

		repos = repositories{
			games:      postgres.NewGameRepository(db),
			posts:      postgres.NewPostRepository(db),
			accounts:   postgres.NewAccountRepository(db),
			teams:      postgres.NewTeamRepository(db),
			watermarks: postgres.NewWatermarkRepository(db),
			lists:      postgres.NewManagedListRepository(db),
			dispatches: postgres.NewJobDispatchRepository(db),
			close:      db.Close,
		}
	}

	if cfg.CacheEnabled {
		store := basecache.NewStore(cfg.CacheTTL)
		repos.watermarks = cache.NewWatermarkRepository(repos.watermarks, store, cfg.WatermarkCacheTTL)
		repos.lists = cache.NewManagedListRepository(repos.lists, store)
		repos.teams = cache.NewTeamRepository(repos.teams, store)
	}

	return repos, nil
}

func openDB(cfg config.Config) (*sqlx.DB, error) {
	dbURL := dburl.Normalize(cfg.DBURL, cfg.DBDisablePreparedBinary)
	db, err := otelsqlx.Open("postgres", dbURL,
		otelsql.WithAttributes(semconv.DBSystemPostgreSQL),
		otelsql.WithDBName(dburl.Name(dbURL)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	otelsql.ReportDBStatsMetrics(db.DB, otelsql.WithAttributes(semconv.DBSystemPostgreSQL))

	return db, nil
}

const maxTracedQueryLength = 512

var (
	queryWhitespaceRegex = regexp.MustCompile(`\s+`)
	valuesTuplesRegex    = regexp.MustCompile(`\(\$\d+(?:, \$\d+)*\)(?:, \(\$\d+(?:, \$\d+)*\))+`)
)

// formatDBQueryForTrace collapses whitespace and multi-row VALUES lists, then
// caps the statement so batched post inserts stay readable in traces.
func formatDBQueryForTrace(query string) string {
	query = strings.TrimSpace(query)
	if query == "" {
		return query
	}

	normalized := queryWhitespaceRegex.ReplaceAllString(query, " ")
	normalized = valuesTuplesRegex.ReplaceAllStringFunc(normalized, func(tuples string) string {
		rows := strings.Count(tuples, "), (") + 1
		first := tuples[:strings.Index(tuples, ")")+1]
		return fmt.Sprintf("%s /* x%d rows */", first, rows)
	})
	if len(normalized) <= maxTracedQueryLength {
		return normalized
	}
	return normalized[:maxTracedQueryLength] + "..."
}
