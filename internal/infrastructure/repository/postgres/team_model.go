package postgres

import (
	"database/sql"
	"time"
)

type teamTableModel struct {
	ScoreReporterID string         `db:"score_reporter_id"`
	FeedID          sql.NullInt64  `db:"feed_id"`
	Name            string         `db:"name"`
	Website         sql.NullString `db:"website"`
	Division        int            `db:"division"`
	AgeBracket      int            `db:"age_bracket"`
	League          int            `db:"league"`
	CreatedAt       time.Time      `db:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at"`
	DeletedAt       *time.Time     `db:"deleted_at"`
}

type teamUpsertModel struct {
	ScoreReporterID string    `db:"score_reporter_id"`
	FeedID          *int64    `db:"feed_id"`
	Name            string    `db:"name"`
	Website         *string   `db:"website"`
	Division        int       `db:"division"`
	AgeBracket      int       `db:"age_bracket"`
	League          int       `db:"league"`
	UpdatedAt       time.Time `db:"updated_at"`
}
