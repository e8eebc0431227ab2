package usecase

import (
	"context"
	"fmt"
	"sort"

	"github.com/riskibarqy/ultimate-scores/internal/domain/account"
	"github.com/riskibarqy/ultimate-scores/internal/domain/crawl"
	"github.com/riskibarqy/ultimate-scores/internal/domain/externalid"
	"github.com/riskibarqy/ultimate-scores/internal/domain/game"
	"github.com/riskibarqy/ultimate-scores/internal/domain/post"
)

// AuthorLookup resolves feed accounts to teams for one cycle. It is built
// once and read-only afterwards, so matching never hits the store per post.
type AuthorLookup struct {
	registry *crawl.Registry
	accounts map[externalid.ID]account.Account
}

// NewAuthorLookup indexes the accounts upserted in this cycle and loads every
// other author or mentioned account referenced by posts from the store.
func NewAuthorLookup(
	ctx context.Context,
	repo account.Repository,
	registry *crawl.Registry,
	cycleAccounts []account.Account,
	posts []post.Post,
) (*AuthorLookup, error) {
	if registry == nil {
		registry = crawl.DefaultRegistry()
	}
	lookup := &AuthorLookup{
		registry: registry,
		accounts: make(map[externalid.ID]account.Account, len(cycleAccounts)),
	}
	for _, item := range cycleAccounts {
		lookup.accounts[item.ID] = item
	}

	missing := make(map[externalid.ID]struct{})
	for _, item := range posts {
		if _, ok := lookup.accounts[item.AuthorID]; !ok && !item.AuthorID.IsZero() {
			missing[item.AuthorID] = struct{}{}
		}
		for _, mentionedID := range item.MentionedIDs() {
			if _, ok := lookup.accounts[mentionedID]; !ok {
				missing[mentionedID] = struct{}{}
			}
		}
	}
	if len(missing) == 0 || repo == nil {
		return lookup, nil
	}

	ids := make([]externalid.ID, 0, len(missing))
	for id := range missing {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	stored, err := repo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load accounts for lookup: %w", err)
	}
	for _, item := range stored {
		if _, ok := lookup.accounts[item.ID]; ok {
			continue
		}
		lookup.accounts[item.ID] = item
	}

	return lookup, nil
}

func (l *AuthorLookup) Account(id externalid.ID) (account.Account, bool) {
	item, ok := l.accounts[id]
	return item, ok
}

// Team returns the team an account plays for and the classification of the
// list it belongs to. Accounts without a record resolve to the Unknown team
// in the default classification.
func (l *AuthorLookup) Team(id externalid.ID) (game.Team, game.Classification, bool) {
	item, ok := l.accounts[id]
	if !ok {
		return game.UnknownTeam(), game.DefaultClassification(), false
	}
	return game.Team{FeedID: item.ID, Name: item.Name}, l.registry.ClassificationOrDefault(item.ListID), true
}

// Opponent picks the first mentioned account that is known and shares the
// author's classification.
func (l *AuthorLookup) Opponent(item post.Post, classification game.Classification) (game.Team, bool) {
	for _, mentionedID := range item.MentionedIDs() {
		if mentionedID == item.AuthorID {
			continue
		}
		team, mentionClassification, ok := l.Team(mentionedID)
		if !ok || mentionClassification != classification {
			continue
		}
		return team, true
	}
	return game.UnknownTeam(), false
}
