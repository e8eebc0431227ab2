package postgres

import (
	"database/sql"
	"time"
)

type accountTableModel struct {
	ID              int64          `db:"id"`
	ScreenName      string         `db:"screen_name"`
	Name            string         `db:"name"`
	ProfileImageURL sql.NullString `db:"profile_image_url"`
	ListID          sql.NullInt64  `db:"list_id"`
	CreatedAt       time.Time      `db:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at"`
}

type accountUpsertModel struct {
	ID              int64     `db:"id"`
	ScreenName      string    `db:"screen_name"`
	Name            string    `db:"name"`
	ProfileImageURL *string   `db:"profile_image_url"`
	ListID          *int64    `db:"list_id"`
	UpdatedAt       time.Time `db:"updated_at"`
}
