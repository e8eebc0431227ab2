package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/riskibarqy/ultimate-scores/internal/domain/account"
	"github.com/riskibarqy/ultimate-scores/internal/domain/externalid"
)

type AccountRepository struct {
	mu       sync.RWMutex
	accounts map[externalid.ID]account.Account
}

func NewAccountRepository() *AccountRepository {
	return &AccountRepository{accounts: make(map[externalid.ID]account.Account)}
}

func (r *AccountRepository) Upsert(_ context.Context, item account.Account) (account.Account, error) {
	item = item.Normalize()
	if err := item.Validate(); err != nil {
		return account.Account{}, err
	}
	if item.UpdatedAt.IsZero() {
		item.UpdatedAt = time.Now().UTC()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.accounts[item.ID]; ok {
		if item.ProfileImageURL == "" {
			item.ProfileImageURL = existing.ProfileImageURL
		}
		if item.ListID.IsZero() {
			item.ListID = existing.ListID
		}
	}
	r.accounts[item.ID] = item
	return item, nil
}

func (r *AccountRepository) GetByIDs(_ context.Context, ids []externalid.ID) ([]account.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]account.Account, 0, len(ids))
	seen := make(map[externalid.ID]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		if item, ok := r.accounts[id]; ok {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
