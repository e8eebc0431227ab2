package postgres

import (
	"database/sql"
	"time"
)

type gameTableModel struct {
	ID             string         `db:"id"`
	Name           string         `db:"name"`
	Teams          string         `db:"teams"`
	Division       int            `db:"division"`
	AgeBracket     int            `db:"age_bracket"`
	League         int            `db:"league"`
	Sources        string         `db:"sources"`
	Scores         sql.NullString `db:"scores"`
	Status         int            `db:"status"`
	TournamentID   string         `db:"tournament_id"`
	TournamentName string         `db:"tournament_name"`
	CreatedAt      time.Time      `db:"created_at"`
	LastModifiedAt time.Time      `db:"last_modified_at"`
	StartTime      *time.Time     `db:"start_time"`
	UpdatedAt      time.Time      `db:"updated_at"`
	DeletedAt      *time.Time     `db:"deleted_at"`
}

type gameUpsertModel struct {
	ID             string     `db:"id"`
	Name           string     `db:"name"`
	Teams          string     `db:"teams"`
	Division       int        `db:"division"`
	AgeBracket     int        `db:"age_bracket"`
	League         int        `db:"league"`
	Sources        string     `db:"sources"`
	Scores         *string    `db:"scores"`
	Status         int        `db:"status"`
	TournamentID   string     `db:"tournament_id"`
	TournamentName string     `db:"tournament_name"`
	CreatedAt      time.Time  `db:"created_at"`
	LastModifiedAt time.Time  `db:"last_modified_at"`
	StartTime      *time.Time `db:"start_time"`
}

type gameTeamDocument struct {
	FeedID          int64  `json:"feed_id,omitempty"`
	ScoreReporterID string `json:"score_reporter_id,omitempty"`
	Name            string `json:"name,omitempty"`
}

type scoresDocument struct {
	Values  [2]int `json:"values"`
	Ordered bool   `json:"ordered"`
}

type gameSourceDocument struct {
	Type      int             `json:"type"`
	PostID    int64           `json:"post_id,omitempty"`
	AuthorID  int64           `json:"author_id,omitempty"`
	Text      string          `json:"text,omitempty"`
	URL       string          `json:"url,omitempty"`
	Scores    *scoresDocument `json:"scores,omitempty"`
	UpdatedAt time.Time       `json:"updated_at"`
}
