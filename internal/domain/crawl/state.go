package crawl

import (
	"fmt"

	"github.com/riskibarqy/ultimate-scores/internal/domain/externalid"
)

const (
	DefaultPageSize      = 200
	MaxPostsPerChain     = 1000
	MaxRequestsPerChain  = 10
	WatermarkCachePrefix = "list_latest_status_"
)

// State is the cursor of one crawl chain over a list.
type State struct {
	ListID            externalid.ID
	SinceID           externalid.ID
	MaxID             externalid.ID
	TotalCrawled      int
	TotalRequestsMade int
	NumToCrawl        int
}

// NewState starts a chain from the list's high-water mark.
func NewState(listID, highWaterMark externalid.ID, pageSize int) State {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return State{
		ListID:     listID,
		SinceID:    highWaterMark.Prev(),
		NumToCrawl: pageSize,
	}
}

// HighWaterMark is the newest id already stored when the chain started.
func (s State) HighWaterMark() externalid.ID {
	return s.SinceID.Next()
}

func (s State) Validate() error {
	if s.ListID.IsZero() {
		return fmt.Errorf("list id is required")
	}
	if s.NumToCrawl <= 0 {
		return fmt.Errorf("num to crawl must be > 0")
	}
	if s.TotalCrawled < 0 || s.TotalRequestsMade < 0 {
		return fmt.Errorf("crawl counters must be >= 0")
	}
	return nil
}

// NextRequest is the continuation of a chain. It is enqueued as-is.
type NextRequest struct {
	ListID            externalid.ID `json:"list_id"`
	TotalRequestsMade int           `json:"total_requests_made"`
	TotalCrawled      int           `json:"total_crawled"`
	MaxID             externalid.ID `json:"max_id"`
	SinceID           externalid.ID `json:"since_id"`
	NumToCrawl        int           `json:"num_to_crawl"`
}

// State resumes the chain described by the request.
func (r NextRequest) State() State {
	return State{
		ListID:            r.ListID,
		SinceID:           r.SinceID.Prev(),
		MaxID:             r.MaxID,
		TotalCrawled:      r.TotalCrawled,
		TotalRequestsMade: r.TotalRequestsMade,
		NumToCrawl:        r.NumToCrawl,
	}
}
