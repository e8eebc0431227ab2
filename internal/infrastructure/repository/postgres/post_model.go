package postgres

import (
	"database/sql"
	"time"
)

type postTableModel struct {
	ID                int64         `db:"id"`
	ListID            int64         `db:"list_id"`
	AuthorID          int64         `db:"author_id"`
	Text              string        `db:"text"`
	CreatedAt         time.Time     `db:"created_at"`
	Lang              string        `db:"lang"`
	InReplyToPostID   sql.NullInt64 `db:"in_reply_to_post_id"`
	InReplyToAuthorID sql.NullInt64 `db:"in_reply_to_author_id"`
	Integers          string        `db:"integers"`
	Mentions          string        `db:"mentions"`
	Hashtags          string        `db:"hashtags"`
	StoredAt          time.Time     `db:"stored_at"`
}

type postUpsertModel struct {
	ID                int64     `db:"id"`
	ListID            int64     `db:"list_id"`
	AuthorID          int64     `db:"author_id"`
	Text              string    `db:"text"`
	CreatedAt         time.Time `db:"created_at"`
	Lang              string    `db:"lang"`
	InReplyToPostID   *int64    `db:"in_reply_to_post_id"`
	InReplyToAuthorID *int64    `db:"in_reply_to_author_id"`
	Integers          string    `db:"integers"`
	Mentions          string    `db:"mentions"`
	Hashtags          string    `db:"hashtags"`
}

type postIntegerDocument struct {
	Value int `json:"value"`
	Start int `json:"start"`
	End   int `json:"end"`
}

type postMentionDocument struct {
	AccountID  int64  `json:"account_id"`
	ScreenName string `json:"screen_name,omitempty"`
	Start      int    `json:"start"`
	End        int    `json:"end"`
}
