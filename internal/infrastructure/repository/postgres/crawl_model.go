package postgres

import "time"

type listWatermarkModel struct {
	ListID       int64     `db:"list_id"`
	LatestPostID int64     `db:"latest_post_id"`
	UpdatedAt    time.Time `db:"updated_at"`
}

type managedListTableModel struct {
	ID        int64      `db:"id"`
	Name      string     `db:"name"`
	Slug      string     `db:"slug"`
	UpdatedAt time.Time  `db:"updated_at"`
	DeletedAt *time.Time `db:"deleted_at"`
}

type managedListUpsertModel struct {
	ID        int64     `db:"id"`
	Name      string    `db:"name"`
	Slug      string    `db:"slug"`
	UpdatedAt time.Time `db:"updated_at"`
}
