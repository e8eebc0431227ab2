package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/ultimate-scores/internal/domain/game"
	"github.com/riskibarqy/ultimate-scores/internal/domain/score"
	"github.com/riskibarqy/ultimate-scores/internal/platform/logging"
	"github.com/riskibarqy/ultimate-scores/internal/usecase"
)

type Handler struct {
	crawlService         *usecase.CrawlService
	listService          *usecase.ListService
	scoreReporterService *usecase.ScoreReporterService
	gameQueryService     *usecase.GameQueryService
	dispatcher           *usecase.JobDispatcher
	logger               *logging.Logger
	validator            *validator.Validate
	now                  func() time.Time
}

type HandlerServices struct {
	Crawl         *usecase.CrawlService
	Lists         *usecase.ListService
	ScoreReporter *usecase.ScoreReporterService
	GameQuery     *usecase.GameQueryService
	Dispatcher    *usecase.JobDispatcher
}

func NewHandler(services HandlerServices, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		crawlService:         services.Crawl,
		listService:          services.Lists,
		scoreReporterService: services.ScoreReporter,
		gameQueryService:     services.GameQuery,
		dispatcher:           services.Dispatcher,
		logger:               logger,
		validator:            validator.New(),
		now:                  time.Now,
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

// ListGames serves GET /v1/games?division=&age_bracket=&league=&window=&limit=.
func (h *Handler) ListGames(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListGames")
	defer span.End()

	if h.gameQueryService == nil {
		writeError(ctx, w, fmt.Errorf("%w: game query service is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	query := r.URL.Query()
	req := listGamesRequest{
		Division:   strings.TrimSpace(query.Get("division")),
		AgeBracket: strings.TrimSpace(query.Get("age_bracket")),
		League:     strings.TrimSpace(query.Get("league")),
		Window:     strings.TrimSpace(query.Get("window")),
		Limit:      strings.TrimSpace(query.Get("limit")),
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	input := usecase.GameQueryInput{
		Division:   req.Division,
		AgeBracket: req.AgeBracket,
		League:     req.League,
	}
	if req.Window != "" {
		window, err := time.ParseDuration(req.Window)
		if err != nil {
			writeError(ctx, w, fmt.Errorf("%w: invalid window %q", usecase.ErrInvalidInput, req.Window))
			return
		}
		input.Window = window
	}
	if req.Limit != "" {
		limit, err := strconv.Atoi(req.Limit)
		if err != nil {
			writeError(ctx, w, fmt.Errorf("%w: invalid limit %q", usecase.ErrInvalidInput, req.Limit))
			return
		}
		input.Limit = limit
	}

	games, err := h.gameQueryService.ListRecent(ctx, input)
	if err != nil {
		h.logger.WarnContext(ctx, "list games failed", "division", req.Division, "age_bracket", req.AgeBracket, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]gameDTO, 0, len(games))
	for _, item := range games {
		items = append(items, gameToDTO(item))
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

type listGamesRequest struct {
	Division   string `validate:"omitempty,max=32"`
	AgeBracket string `validate:"omitempty,max=32"`
	League     string `validate:"omitempty,max=32"`
	Window     string `validate:"omitempty,max=16"`
	Limit      string `validate:"omitempty,numeric"`
}

type gameTeamDTO struct {
	FeedID          string `json:"feed_id,omitempty"`
	ScoreReporterID string `json:"score_reporter_id,omitempty"`
	Name            string `json:"name"`
}

type scoresDTO struct {
	Values  [2]int `json:"values"`
	Ordered bool   `json:"ordered"`
}

type gameSourceDTO struct {
	Type      string     `json:"type"`
	PostID    string     `json:"post_id,omitempty"`
	AuthorID  string     `json:"author_id,omitempty"`
	Text      string     `json:"text,omitempty"`
	URL       string     `json:"url,omitempty"`
	Scores    *scoresDTO `json:"scores,omitempty"`
	UpdatedAt string     `json:"updated_at"`
}

type gameDTO struct {
	ID             string          `json:"id"`
	Name           string          `json:"name,omitempty"`
	Teams          [2]gameTeamDTO  `json:"teams"`
	Division       string          `json:"division"`
	AgeBracket     string          `json:"age_bracket"`
	League         string          `json:"league"`
	Scores         *scoresDTO      `json:"scores,omitempty"`
	Status         string          `json:"status"`
	TournamentID   string          `json:"tournament_id,omitempty"`
	TournamentName string          `json:"tournament_name,omitempty"`
	Sources        []gameSourceDTO `json:"sources"`
	CreatedAt      string          `json:"created_at"`
	LastModifiedAt string          `json:"last_modified_at"`
	StartTime      string          `json:"start_time,omitempty"`
}

func gameToDTO(v game.Game) gameDTO {
	out := gameDTO{
		ID:             v.ID,
		Name:           v.Name,
		Division:       v.Classification.Division.String(),
		AgeBracket:     v.Classification.AgeBracket.String(),
		League:         v.Classification.League.String(),
		Scores:         scoresToDTO(v.Scores),
		Status:         v.Status.String(),
		TournamentID:   v.TournamentID,
		TournamentName: v.TournamentName,
		Sources:        make([]gameSourceDTO, 0, len(v.Sources)),
		CreatedAt:      v.CreatedAt.UTC().Format(time.RFC3339),
		LastModifiedAt: v.LastModifiedAt.UTC().Format(time.RFC3339),
	}
	for i, t := range v.Teams {
		out.Teams[i] = gameTeamDTO{ScoreReporterID: t.ScoreReporterID, Name: t.Name}
		if !t.FeedID.IsZero() {
			out.Teams[i].FeedID = t.FeedID.String()
		}
		if t.IsUnknown() {
			out.Teams[i].Name = "Unknown"
		}
	}
	for _, source := range v.Sources {
		item := gameSourceDTO{
			Type:      source.Type.String(),
			Text:      source.Text,
			URL:       source.URL,
			Scores:    scoresToDTO(source.Scores),
			UpdatedAt: source.UpdatedAt.UTC().Format(time.RFC3339),
		}
		if !source.PostID.IsZero() {
			item.PostID = source.PostID.String()
		}
		if !source.AuthorID.IsZero() {
			item.AuthorID = source.AuthorID.String()
		}
		out.Sources = append(out.Sources, item)
	}
	if v.StartTime != nil {
		out.StartTime = v.StartTime.UTC().Format(time.RFC3339)
	}
	return out
}

func scoresToDTO(v *score.Scores) *scoresDTO {
	if v == nil {
		return nil
	}
	return &scoresDTO{Values: v.Values, Ordered: v.Ordered}
}
