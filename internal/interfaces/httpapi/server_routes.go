package httpapi

import (
	"net/http"

	"github.com/riskibarqy/ultimate-scores/internal/usecase"
)

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerPublicRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/games", handler.ListGames)
}

// registerInternalJobRoutes exposes the callbacks the work queue delivers
// jobs to. Every route requires the internal job token.
func registerInternalJobRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	routes := map[string]http.HandlerFunc{
		usecase.JobPathCrawlList:     handler.RunCrawlListJob,
		usecase.JobPathCrawlAllLists: handler.RunCrawlAllListsJob,
		usecase.JobPathUpdateLists:   handler.RunUpdateListsJob,
		usecase.JobPathBackfill:      handler.RunBackfillJob,
		usecase.JobPathBackfillList:  handler.RunBackfillListJob,
		usecase.JobPathSRGames:       handler.RunScoreReporterGamesJob,
		usecase.JobPathSRTeams:       handler.RunScoreReporterTeamsJob,
	}
	for path, fn := range routes {
		mux.Handle("POST "+path, RequireInternalJobToken(internalJobToken, fn))
	}
}
