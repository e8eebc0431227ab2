package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/riskibarqy/ultimate-scores/internal/domain/game"
)

const (
	defaultGameQueryWindow = 7 * 24 * time.Hour
	maxGameQueryWindow     = 26 * 7 * 24 * time.Hour
	defaultGameQueryLimit  = 100
	maxGameQueryLimit      = 500
)

type GameQueryInput struct {
	Division   string
	AgeBracket string
	League     string
	Window     time.Duration
	Limit      int
}

type GameQueryService struct {
	gameRepo game.Repository
	now      func() time.Time
}

func NewGameQueryService(gameRepo game.Repository) *GameQueryService {
	return &GameQueryService{
		gameRepo: gameRepo,
		now:      time.Now,
	}
}

// ListRecent returns the games of one classification modified within the
// window, most recently modified first.
func (s *GameQueryService) ListRecent(ctx context.Context, input GameQueryInput) ([]game.Game, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GameQueryService.ListRecent")
	defer span.End()

	classification, err := parseQueryClassification(input)
	if err != nil {
		return nil, err
	}

	window := input.Window
	if window <= 0 {
		window = defaultGameQueryWindow
	}
	if window > maxGameQueryWindow {
		return nil, fmt.Errorf("%w: window must be <= %s", ErrInvalidInput, maxGameQueryWindow)
	}
	limit := input.Limit
	if limit <= 0 {
		limit = defaultGameQueryLimit
	}
	if limit > maxGameQueryLimit {
		limit = maxGameQueryLimit
	}

	now := s.now().UTC()
	items, err := s.gameRepo.ListByClassificationWindow(ctx, classification, now.Add(-window), now.Add(time.Minute))
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].LastModifiedAt.After(items[j].LastModifiedAt)
	})
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func parseQueryClassification(input GameQueryInput) (game.Classification, error) {
	out := game.DefaultClassification()
	if strings.TrimSpace(input.Division) != "" {
		value, err := game.ParseDivision(input.Division)
		if err != nil {
			return game.Classification{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		out.Division = value
	}
	if strings.TrimSpace(input.AgeBracket) != "" {
		value, err := game.ParseAgeBracket(input.AgeBracket)
		if err != nil {
			return game.Classification{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		out.AgeBracket = value
	}
	if strings.TrimSpace(input.League) != "" {
		value, err := game.ParseLeague(input.League)
		if err != nil {
			return game.Classification{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		out.League = value
	}
	return out, nil
}
