package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/ultimate-scores/internal/domain/game"
	gamemock "github.com/riskibarqy/ultimate-scores/internal/mocks/domain/game"
	"github.com/stretchr/testify/mock"
)

func TestGameQueryService_ListRecent_NewestFirstWithLimit(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	gameRepo := gamemock.NewRepository(t)
	service := NewGameQueryService(gameRepo)
	service.now = func() time.Time { return crawlNow }

	want := game.Classification{Division: game.DivisionWomens, AgeBracket: game.AgeBracketCollege, League: game.LeagueUSAU}
	gameRepo.
		On("ListByClassificationWindow", mock.MatchedBy(func(v context.Context) bool { return v == ctx }), want, crawlNow.Add(-24*time.Hour), crawlNow.Add(time.Minute)).
		Return([]game.Game{
			{ID: "game_old", LastModifiedAt: crawlNow.Add(-3 * time.Hour)},
			{ID: "game_new", LastModifiedAt: crawlNow.Add(-time.Hour)},
			{ID: "game_mid", LastModifiedAt: crawlNow.Add(-2 * time.Hour)},
		}, nil).
		Once()

	got, err := service.ListRecent(ctx, GameQueryInput{
		Division:   "womens",
		AgeBracket: "college",
		Window:     24 * time.Hour,
		Limit:      2,
	})
	if err != nil {
		t.Fatalf("list recent games: %v", err)
	}
	if len(got) != 2 || got[0].ID != "game_new" || got[1].ID != "game_mid" {
		t.Fatalf("unexpected games: %+v", got)
	}
}

func TestGameQueryService_ListRecent_RejectsInvalidFilters(t *testing.T) {
	t.Parallel()

	service := NewGameQueryService(gamemock.NewRepository(t))

	inputs := []GameQueryInput{
		{Division: "coed"},
		{AgeBracket: "u99"},
		{League: "nfl"},
		{Window: 365 * 24 * time.Hour},
	}
	for _, input := range inputs {
		if _, err := service.ListRecent(context.Background(), input); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput for %+v, got %v", input, err)
		}
	}
}
