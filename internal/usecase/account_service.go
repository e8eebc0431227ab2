package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/riskibarqy/ultimate-scores/internal/domain/account"
	"github.com/riskibarqy/ultimate-scores/internal/domain/externalid"
)

type AccountService struct {
	repo account.Repository
	now  func() time.Time
}

func NewAccountService(repo account.Repository) *AccountService {
	return &AccountService{
		repo: repo,
		now:  time.Now,
	}
}

// UpsertFromFeed stores every distinct author seen on a page. The first
// occurrence of an id wins within one call.
func (s *AccountService) UpsertFromFeed(ctx context.Context, listID externalid.ID, authors []FeedAccount) ([]account.Account, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AccountService.UpsertFromFeed")
	defer span.End()

	seen := make(map[externalid.ID]struct{}, len(authors))
	out := make([]account.Account, 0, len(authors))
	for _, author := range authors {
		if author.ID.IsZero() {
			continue
		}
		if _, ok := seen[author.ID]; ok {
			continue
		}
		seen[author.ID] = struct{}{}

		item := account.Account{
			ID:              author.ID,
			ScreenName:      author.ScreenName,
			Name:            author.Name,
			ProfileImageURL: author.ProfileImageURL,
			ListID:          listID,
			UpdatedAt:       s.now().UTC(),
		}.Normalize()
		if err := item.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}

		stored, err := s.repo.Upsert(ctx, item)
		if err != nil {
			return nil, fmt.Errorf("upsert account id=%s: %w", item.ID, err)
		}
		out = append(out, stored)
	}

	return out, nil
}
