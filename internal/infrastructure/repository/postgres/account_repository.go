package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/ultimate-scores/internal/domain/account"
	"github.com/riskibarqy/ultimate-scores/internal/domain/externalid"
	qb "github.com/riskibarqy/ultimate-scores/internal/platform/querybuilder"
)

type AccountRepository struct {
	db *sqlx.DB
}

func NewAccountRepository(db *sqlx.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) Upsert(ctx context.Context, item account.Account) (account.Account, error) {
	item = item.Normalize()
	if err := item.Validate(); err != nil {
		return account.Account{}, err
	}
	updatedAt := item.UpdatedAt.UTC()
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}

	model := accountUpsertModel{
		ID:              item.ID.Int64(),
		ScreenName:      item.ScreenName,
		Name:            item.Name,
		ProfileImageURL: optionalString(item.ProfileImageURL),
		ListID:          nullableID(item.ListID),
		UpdatedAt:       updatedAt,
	}

	query, args, err := qb.InsertModel("accounts", model, `ON CONFLICT (id)
DO UPDATE SET
    screen_name = EXCLUDED.screen_name,
    name = EXCLUDED.name,
    profile_image_url = COALESCE(EXCLUDED.profile_image_url, accounts.profile_image_url),
    list_id = COALESCE(EXCLUDED.list_id, accounts.list_id),
    updated_at = EXCLUDED.updated_at
RETURNING *`)
	if err != nil {
		return account.Account{}, fmt.Errorf("build upsert account query: %w", err)
	}

	var row accountTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		return account.Account{}, fmt.Errorf("upsert account id=%s: %w", item.ID, err)
	}
	return accountFromRow(row), nil
}

func (r *AccountRepository) GetByIDs(ctx context.Context, ids []externalid.ID) ([]account.Account, error) {
	values := idsToAny(ids)
	if len(values) == 0 {
		return []account.Account{}, nil
	}

	query, args, err := qb.Select("*").From("accounts").
		Where(qb.In("id", values)).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select accounts by ids query: %w", err)
	}

	var rows []accountTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select accounts by ids: %w", err)
	}

	out := make([]account.Account, 0, len(rows))
	for _, row := range rows {
		out = append(out, accountFromRow(row))
	}
	return out, nil
}

func accountFromRow(row accountTableModel) account.Account {
	return account.Account{
		ID:              externalid.ID(row.ID),
		ScreenName:      row.ScreenName,
		Name:            row.Name,
		ProfileImageURL: nullStringToString(row.ProfileImageURL),
		ListID:          nullInt64ToID(row.ListID),
		UpdatedAt:       row.UpdatedAt.UTC(),
	}
}
