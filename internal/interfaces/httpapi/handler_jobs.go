package httpapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/ultimate-scores/internal/domain/crawl"
	"github.com/riskibarqy/ultimate-scores/internal/domain/externalid"
	"github.com/riskibarqy/ultimate-scores/internal/domain/jobscheduler"
	"github.com/riskibarqy/ultimate-scores/internal/usecase"
)

const maxJobBodyBytes = 4 << 20

var internalJobDispatchUnsafeRegex = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

type internalJob struct {
	name string
	path string
}

var (
	jobCrawlList     = internalJob{name: usecase.JobNameCrawlList, path: usecase.JobPathCrawlList}
	jobCrawlAllLists = internalJob{name: usecase.JobNameCrawlAllLists, path: usecase.JobPathCrawlAllLists}
	jobUpdateLists   = internalJob{name: usecase.JobNameUpdateLists, path: usecase.JobPathUpdateLists}
	jobBackfill      = internalJob{name: usecase.JobNameBackfill, path: usecase.JobPathBackfill}
	jobBackfillList  = internalJob{name: usecase.JobNameBackfillList, path: usecase.JobPathBackfillList}
	jobSRGames       = internalJob{name: usecase.JobNameSRGames, path: usecase.JobPathSRGames}
	jobSRTeams       = internalJob{name: usecase.JobNameSRTeams, path: usecase.JobPathSRTeams}
)

// RunCrawlListJob runs one crawl cycle. A body carrying a max_id or request
// counters resumes the chain that enqueued it.
func (h *Handler) RunCrawlListJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunCrawlListJob")
	defer span.End()

	if h.crawlService == nil {
		writeError(ctx, w, fmt.Errorf("%w: crawl service is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	var req crawlListRequest
	if err := h.decodeJobRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	listID, resume, err := req.toCycleInput()
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.crawlService.RunCrawlCycle(ctx, listID, resume)
	h.finishInternalJob(ctx, w, jobCrawlList, req.ListID, req.DispatchID, req.payload(), result, err)
}

func (h *Handler) RunCrawlAllListsJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunCrawlAllListsJob")
	defer span.End()

	if h.listService == nil {
		writeError(ctx, w, fmt.Errorf("%w: list service is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	var req dispatchOnlyRequest
	if err := h.decodeJobRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.listService.CrawlAllLists(ctx)
	h.finishInternalJob(ctx, w, jobCrawlAllLists, "all", req.DispatchID, req.payload(), result, err)
}

func (h *Handler) RunUpdateListsJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunUpdateListsJob")
	defer span.End()

	if h.listService == nil {
		writeError(ctx, w, fmt.Errorf("%w: list service is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	var req dispatchOnlyRequest
	if err := h.decodeJobRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	lists, err := h.listService.UpdateLists(ctx)
	var data any
	if err == nil {
		items := make([]managedListDTO, 0, len(lists))
		for _, item := range lists {
			items = append(items, managedListDTO{ID: item.ID.String(), Name: item.Name, Slug: item.Slug})
		}
		data = items
	}
	h.finishInternalJob(ctx, w, jobUpdateLists, "all", req.DispatchID, req.payload(), data, err)
}

func (h *Handler) RunBackfillJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunBackfillJob")
	defer span.End()

	if h.listService == nil {
		writeError(ctx, w, fmt.Errorf("%w: list service is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	var req backfillRequest
	if err := h.decodeJobRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.listService.Backfill(ctx, usecase.BackfillInput{
		Duration:        req.Duration,
		StartDate:       req.StartDate,
		ListID:          req.ListID,
		UpdateGamesOnly: req.UpdateGamesOnly,
	})
	target := req.ListID
	if strings.TrimSpace(target) == "" {
		target = "all"
	}
	h.finishInternalJob(ctx, w, jobBackfill, target, req.DispatchID, req.payload(), result, err)
}

func (h *Handler) RunBackfillListJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunBackfillListJob")
	defer span.End()

	if h.crawlService == nil {
		writeError(ctx, w, fmt.Errorf("%w: crawl service is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	var req backfillListRequest
	if err := h.decodeJobRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	listID, err := externalid.Parse(req.ListID)
	if err != nil {
		writeError(ctx, w, fmt.Errorf("%w: %v", usecase.ErrInvalidInput, err))
		return
	}
	checkpoint, err := crawl.ParseBackfillDate(req.BackfillDate)
	if err != nil {
		writeError(ctx, w, fmt.Errorf("%w: %v", usecase.ErrInvalidInput, err))
		return
	}

	result, err := h.crawlService.RunBackfillCycle(ctx, listID, checkpoint, req.UpdateGamesOnly)
	h.finishInternalJob(ctx, w, jobBackfillList, req.ListID, req.DispatchID, req.payload(), result, err)
}

func (h *Handler) RunScoreReporterGamesJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunScoreReporterGamesJob")
	defer span.End()

	if h.scoreReporterService == nil {
		writeError(ctx, w, fmt.Errorf("%w: score reporter service is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	var req scoreReporterGamesRequest
	if err := h.decodeJobRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	rows := make([]usecase.ScoreReporterGameRow, 0, len(req.Games))
	for _, row := range req.Games {
		rows = append(rows, usecase.ScoreReporterGameRow{
			GameID:       row.GameID,
			Date:         row.Date,
			Time:         row.Time,
			HomeTeamID:   row.HomeTeamID,
			AwayTeamID:   row.AwayTeamID,
			HomeScore:    row.HomeScore,
			AwayScore:    row.AwayScore,
			Status:       row.Status,
			PoolName:     row.PoolName,
			BracketTitle: row.BracketTitle,
		})
	}

	result, err := h.scoreReporterService.IngestGames(ctx, usecase.ScoreReporterGamesInput{
		TournamentURL:  req.TournamentURL,
		TournamentName: req.TournamentName,
		Division:       req.Division,
		AgeBracket:     req.AgeBracket,
		Games:          rows,
	})
	h.finishInternalJob(ctx, w, jobSRGames, req.TournamentName, req.DispatchID, req.payload(), result, err)
}

func (h *Handler) RunScoreReporterTeamsJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunScoreReporterTeamsJob")
	defer span.End()

	if h.scoreReporterService == nil {
		writeError(ctx, w, fmt.Errorf("%w: score reporter service is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	var req scoreReporterTeamsRequest
	if err := h.decodeJobRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	inputs := make([]usecase.ScoreReporterTeamInput, 0, len(req.Teams))
	for _, item := range req.Teams {
		inputs = append(inputs, usecase.ScoreReporterTeamInput{
			ScoreReporterID: item.ScoreReporterID,
			Name:            item.Name,
			Website:         item.Website,
			FeedID:          item.FeedID,
			Division:        item.Division,
			AgeBracket:      item.AgeBracket,
		})
	}

	count, err := h.scoreReporterService.UpsertTeams(ctx, inputs)
	h.finishInternalJob(ctx, w, jobSRTeams, "all", req.DispatchID, req.payload(), map[string]int{"upserted": count}, err)
}

// decodeJobRequest reads a JSON job body. An empty body decodes to the zero
// request so jobs without arguments can be triggered by hand.
func (h *Handler) decodeJobRequest(ctx context.Context, r *http.Request, dst any) error {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxJobBodyBytes))
	if err != nil {
		return fmt.Errorf("%w: read job payload: %v", usecase.ErrInvalidInput, err)
	}
	if len(strings.TrimSpace(string(raw))) > 0 {
		if err := sonic.Unmarshal(raw, dst); err != nil {
			return fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
		}
	}
	return h.validateRequest(ctx, dst)
}

func (h *Handler) finishInternalJob(
	ctx context.Context,
	w http.ResponseWriter,
	job internalJob,
	targetID string,
	dispatchID string,
	payload map[string]any,
	result any,
	err error,
) {
	event := jobscheduler.DispatchEvent{
		JobName:    job.name,
		JobPath:    job.path,
		TargetID:   strings.TrimSpace(targetID),
		Status:     jobscheduler.StatusCompleted,
		Payload:    payload,
		OccurredAt: h.now().UTC(),
	}
	if event.TargetID == "" {
		event.TargetID = "all"
	}
	event.DispatchID = strings.TrimSpace(dispatchID)
	if event.DispatchID == "" {
		event.DispatchID = buildManualDispatchID(job.name, event.TargetID, event.OccurredAt)
	}

	if err != nil {
		event.Status = jobscheduler.StatusFailed
		event.ErrorMessage = err.Error()
		h.recordInternalJobDispatch(ctx, event)
		h.logger.WarnContext(ctx, "internal job failed", "job", job.name, "target_id", event.TargetID, "error", err)
		writeError(ctx, w, err)
		return
	}

	h.recordInternalJobDispatch(ctx, event)
	writeSuccess(ctx, w, http.StatusOK, result)
}

func (h *Handler) recordInternalJobDispatch(ctx context.Context, event jobscheduler.DispatchEvent) {
	if h.dispatcher == nil {
		return
	}
	h.dispatcher.RecordEvent(ctx, event)
}

func buildManualDispatchID(jobName, targetID string, now time.Time) string {
	jobName = sanitizeDispatchPart(jobName)
	targetID = sanitizeDispatchPart(targetID)
	ts := now.UTC().Format("20060102T150405.000000000Z")
	return "manual-" + jobName + "-" + targetID + "-" + ts
}

func sanitizeDispatchPart(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "unknown"
	}
	return internalJobDispatchUnsafeRegex.ReplaceAllString(value, "-")
}

type dispatchOnlyRequest struct {
	DispatchID string `json:"dispatch_id" validate:"max=256"`
}

func (r dispatchOnlyRequest) payload() map[string]any {
	return withDispatchID(map[string]any{}, r.DispatchID)
}

type crawlListRequest struct {
	ListID            string `json:"list_id" validate:"required,numeric"`
	SinceID           string `json:"since_id" validate:"omitempty,numeric"`
	MaxID             string `json:"max_id" validate:"omitempty,numeric"`
	TotalCrawled      int    `json:"total_crawled" validate:"gte=0"`
	TotalRequestsMade int    `json:"total_requests_made" validate:"gte=0"`
	NumToCrawl        int    `json:"num_to_crawl" validate:"gte=0"`
	DispatchID        string `json:"dispatch_id" validate:"max=256"`
}

// toCycleInput returns the list to crawl and, for a continuation, the chain
// state to resume.
func (r crawlListRequest) toCycleInput() (externalid.ID, *crawl.State, error) {
	listID, err := externalid.Parse(r.ListID)
	if err != nil {
		return externalid.Zero, nil, fmt.Errorf("%w: %v", usecase.ErrInvalidInput, err)
	}
	sinceID, err := externalid.ParseOptional(r.SinceID)
	if err != nil {
		return externalid.Zero, nil, fmt.Errorf("%w: %v", usecase.ErrInvalidInput, err)
	}
	maxID, err := externalid.ParseOptional(r.MaxID)
	if err != nil {
		return externalid.Zero, nil, fmt.Errorf("%w: %v", usecase.ErrInvalidInput, err)
	}
	if maxID.IsZero() && r.TotalRequestsMade == 0 {
		return listID, nil, nil
	}

	state := crawl.NextRequest{
		ListID:            listID,
		SinceID:           sinceID,
		MaxID:             maxID,
		TotalCrawled:      r.TotalCrawled,
		TotalRequestsMade: r.TotalRequestsMade,
		NumToCrawl:        r.NumToCrawl,
	}.State()
	return listID, &state, nil
}

func (r crawlListRequest) payload() map[string]any {
	return withDispatchID(map[string]any{
		"list_id":             r.ListID,
		"since_id":            r.SinceID,
		"max_id":              r.MaxID,
		"total_crawled":       r.TotalCrawled,
		"total_requests_made": r.TotalRequestsMade,
		"num_to_crawl":        r.NumToCrawl,
	}, r.DispatchID)
}

type backfillRequest struct {
	Duration        string `json:"duration" validate:"required,max=16"`
	StartDate       string `json:"start_date" validate:"omitempty,max=16"`
	ListID          string `json:"list_id" validate:"omitempty,numeric"`
	UpdateGamesOnly bool   `json:"update_games_only"`
	DispatchID      string `json:"dispatch_id" validate:"max=256"`
}

func (r backfillRequest) payload() map[string]any {
	return withDispatchID(map[string]any{
		"duration":          r.Duration,
		"start_date":        r.StartDate,
		"list_id":           r.ListID,
		"update_games_only": r.UpdateGamesOnly,
	}, r.DispatchID)
}

type backfillListRequest struct {
	ListID          string `json:"list_id" validate:"required,numeric"`
	BackfillDate    string `json:"backfill_date" validate:"required,max=16"`
	UpdateGamesOnly bool   `json:"update_games_only"`
	DispatchID      string `json:"dispatch_id" validate:"max=256"`
}

func (r backfillListRequest) payload() map[string]any {
	return withDispatchID(map[string]any{
		"list_id":           r.ListID,
		"backfill_date":     r.BackfillDate,
		"update_games_only": r.UpdateGamesOnly,
	}, r.DispatchID)
}

type scoreReporterGameRecord struct {
	GameID       string `json:"game_id" validate:"required"`
	Date         string `json:"date"`
	Time         string `json:"time"`
	HomeTeamID   string `json:"home_team_id"`
	AwayTeamID   string `json:"away_team_id"`
	HomeScore    string `json:"home_score"`
	AwayScore    string `json:"away_score"`
	Status       string `json:"status"`
	PoolName     string `json:"pool_name"`
	BracketTitle string `json:"bracket_title"`
}

type scoreReporterGamesRequest struct {
	TournamentURL  string                    `json:"tournament_url" validate:"omitempty,url"`
	TournamentName string                    `json:"tournament_name" validate:"required"`
	Division       string                    `json:"division" validate:"required"`
	AgeBracket     string                    `json:"age_bracket" validate:"required"`
	Games          []scoreReporterGameRecord `json:"games" validate:"dive"`
	DispatchID     string                    `json:"dispatch_id" validate:"max=256"`
}

func (r scoreReporterGamesRequest) payload() map[string]any {
	return withDispatchID(map[string]any{
		"tournament_url":  r.TournamentURL,
		"tournament_name": r.TournamentName,
		"division":        r.Division,
		"age_bracket":     r.AgeBracket,
		"game_count":      len(r.Games),
	}, r.DispatchID)
}

type scoreReporterTeamRecord struct {
	ScoreReporterID string `json:"score_reporter_id" validate:"required"`
	Name            string `json:"name" validate:"required"`
	Website         string `json:"website"`
	FeedID          string `json:"feed_id" validate:"omitempty,numeric"`
	Division        string `json:"division"`
	AgeBracket      string `json:"age_bracket"`
}

type scoreReporterTeamsRequest struct {
	Teams      []scoreReporterTeamRecord `json:"teams" validate:"required,min=1,dive"`
	DispatchID string                    `json:"dispatch_id" validate:"max=256"`
}

func (r scoreReporterTeamsRequest) payload() map[string]any {
	return withDispatchID(map[string]any{"team_count": len(r.Teams)}, r.DispatchID)
}

type managedListDTO struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

func withDispatchID(payload map[string]any, dispatchID string) map[string]any {
	if strings.TrimSpace(dispatchID) != "" {
		payload["dispatch_id"] = dispatchID
	}
	return payload
}
