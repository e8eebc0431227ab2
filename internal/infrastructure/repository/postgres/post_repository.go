package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/ultimate-scores/internal/domain/externalid"
	"github.com/riskibarqy/ultimate-scores/internal/domain/post"
	"github.com/riskibarqy/ultimate-scores/internal/domain/score"
	qb "github.com/riskibarqy/ultimate-scores/internal/platform/querybuilder"
)

const postUpsertBatchSize = 200

type PostRepository struct {
	db *sqlx.DB
}

func NewPostRepository(db *sqlx.DB) *PostRepository {
	return &PostRepository{db: db}
}

func (r *PostRepository) UpsertMany(ctx context.Context, items []post.Post) error {
	if len(items) == 0 {
		return nil
	}

	models := make([]postUpsertModel, 0, len(items))
	seen := make(map[externalid.ID]int, len(items))
	for _, item := range items {
		model, err := postToModel(item)
		if err != nil {
			return err
		}
		if idx, ok := seen[item.ID]; ok {
			models[idx] = model
			continue
		}
		seen[item.ID] = len(models)
		models = append(models, model)
	}
	sort.Slice(models, func(i, j int) bool { return models[i].ID < models[j].ID })

	for start := 0; start < len(models); start += postUpsertBatchSize {
		end := start + postUpsertBatchSize
		if end > len(models) {
			end = len(models)
		}
		query, args, err := qb.InsertModels("posts", models[start:end], `ON CONFLICT (id)
DO UPDATE SET
    list_id = EXCLUDED.list_id,
    author_id = EXCLUDED.author_id,
    text = EXCLUDED.text,
    lang = EXCLUDED.lang,
    in_reply_to_post_id = EXCLUDED.in_reply_to_post_id,
    in_reply_to_author_id = EXCLUDED.in_reply_to_author_id,
    integers = EXCLUDED.integers,
    mentions = EXCLUDED.mentions,
    hashtags = EXCLUDED.hashtags`)
		if err != nil {
			return fmt.Errorf("build upsert posts query: %w", err)
		}
		if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("upsert posts batch=%d..%d: %w", start, end, err)
		}
	}
	return nil
}

func (r *PostRepository) ListByListWindow(ctx context.Context, listID externalid.ID, from, to time.Time) ([]post.Post, error) {
	query, args, err := qb.Select("*").From("posts").
		Where(
			qb.Eq("list_id", listID.Int64()),
			qb.Within("created_at", from.UTC(), to.UTC()),
		).
		OrderBy("created_at DESC", "id DESC").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select posts by window query: %w", err)
	}

	var rows []postTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select posts by window list_id=%s: %w", listID, err)
	}

	out := make([]post.Post, 0, len(rows))
	for _, row := range rows {
		item, err := postFromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

func (r *PostRepository) LatestID(ctx context.Context, listID externalid.ID) (externalid.ID, bool, error) {
	query, args, err := qb.Select("MAX(id)").From("posts").
		Where(qb.Eq("list_id", listID.Int64())).
		ToSQL()
	if err != nil {
		return externalid.Zero, false, fmt.Errorf("build select latest post id query: %w", err)
	}

	var latest sql.NullInt64
	if err := r.db.GetContext(ctx, &latest, query, args...); err != nil {
		if isNotFound(err) {
			return externalid.Zero, false, nil
		}
		return externalid.Zero, false, fmt.Errorf("select latest post id list_id=%s: %w", listID, err)
	}
	id := nullInt64ToID(latest)
	if id.IsZero() {
		return externalid.Zero, false, nil
	}
	return id, true, nil
}

func postToModel(item post.Post) (postUpsertModel, error) {
	integers := make([]postIntegerDocument, 0, len(item.Integers))
	for _, integer := range item.Integers {
		integers = append(integers, postIntegerDocument{Value: integer.Value, Start: integer.Start, End: integer.End})
	}
	mentions := make([]postMentionDocument, 0, len(item.Mentions))
	for _, mention := range item.Mentions {
		mentions = append(mentions, postMentionDocument{
			AccountID:  mention.AccountID.Int64(),
			ScreenName: mention.ScreenName,
			Start:      mention.Start,
			End:        mention.End,
		})
	}
	hashtags := item.Hashtags
	if hashtags == nil {
		hashtags = []string{}
	}

	integersJSON, err := sonic.MarshalString(integers)
	if err != nil {
		return postUpsertModel{}, fmt.Errorf("marshal post %s integers: %w", item.ID, err)
	}
	mentionsJSON, err := sonic.MarshalString(mentions)
	if err != nil {
		return postUpsertModel{}, fmt.Errorf("marshal post %s mentions: %w", item.ID, err)
	}
	hashtagsJSON, err := sonic.MarshalString(hashtags)
	if err != nil {
		return postUpsertModel{}, fmt.Errorf("marshal post %s hashtags: %w", item.ID, err)
	}

	return postUpsertModel{
		ID:                item.ID.Int64(),
		ListID:            item.ListID.Int64(),
		AuthorID:          item.AuthorID.Int64(),
		Text:              item.Text,
		CreatedAt:         item.CreatedAt.UTC(),
		Lang:              item.Lang,
		InReplyToPostID:   nullableID(item.InReplyToPostID),
		InReplyToAuthorID: nullableID(item.InReplyToAuthorID),
		Integers:          integersJSON,
		Mentions:          mentionsJSON,
		Hashtags:          hashtagsJSON,
	}, nil
}

func postFromRow(row postTableModel) (post.Post, error) {
	var integers []postIntegerDocument
	if err := sonic.UnmarshalString(row.Integers, &integers); err != nil {
		return post.Post{}, fmt.Errorf("decode post %d integers: %w", row.ID, err)
	}
	var mentions []postMentionDocument
	if err := sonic.UnmarshalString(row.Mentions, &mentions); err != nil {
		return post.Post{}, fmt.Errorf("decode post %d mentions: %w", row.ID, err)
	}
	var hashtags []string
	if err := sonic.UnmarshalString(row.Hashtags, &hashtags); err != nil {
		return post.Post{}, fmt.Errorf("decode post %d hashtags: %w", row.ID, err)
	}

	item := post.Post{
		ID:                externalid.ID(row.ID),
		ListID:            externalid.ID(row.ListID),
		AuthorID:          externalid.ID(row.AuthorID),
		Text:              row.Text,
		CreatedAt:         row.CreatedAt.UTC(),
		Lang:              row.Lang,
		InReplyToPostID:   nullInt64ToID(row.InReplyToPostID),
		InReplyToAuthorID: nullInt64ToID(row.InReplyToAuthorID),
		Integers:          make([]score.Integer, 0, len(integers)),
		Mentions:          make([]post.Mention, 0, len(mentions)),
		Hashtags:          hashtags,
	}
	for _, integer := range integers {
		item.Integers = append(item.Integers, score.Integer{Value: integer.Value, Start: integer.Start, End: integer.End})
	}
	for _, mention := range mentions {
		item.Mentions = append(item.Mentions, post.Mention{
			AccountID:  externalid.ID(mention.AccountID),
			ScreenName: mention.ScreenName,
			Start:      mention.Start,
			End:        mention.End,
		})
	}
	return item, nil
}
