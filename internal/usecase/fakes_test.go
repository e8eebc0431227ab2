package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/riskibarqy/ultimate-scores/internal/domain/externalid"
)

type fakeFeedFetcher struct {
	mu       sync.Mutex
	pages    [][]FeedPost
	lists    []FeedList
	err      error
	requests []PageRequest
}

func (f *fakeFeedFetcher) FetchListPage(_ context.Context, req PageRequest) ([]FeedPost, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	if len(f.pages) == 0 {
		return nil, nil
	}
	page := f.pages[0]
	f.pages = f.pages[1:]
	return page, nil
}

func (f *fakeFeedFetcher) FetchOwnedLists(_ context.Context, _ string) ([]FeedList, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.lists, nil
}

func (f *fakeFeedFetcher) calls() []PageRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]PageRequest(nil), f.requests...)
}

type enqueuedJob struct {
	path    string
	payload map[string]any
	delay   time.Duration
	dedupID string
}

type recordingJobQueue struct {
	mu   sync.Mutex
	jobs []enqueuedJob
	err  error
}

func (q *recordingJobQueue) Enqueue(_ context.Context, path string, payload any, delay time.Duration, deduplicationID string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.err != nil {
		return q.err
	}
	body, _ := payload.(map[string]any)
	q.jobs = append(q.jobs, enqueuedJob{path: path, payload: body, delay: delay, dedupID: deduplicationID})
	return nil
}

func (q *recordingJobQueue) snapshot() []enqueuedJob {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]enqueuedJob(nil), q.jobs...)
}

type sequenceGenerator struct {
	mu     sync.Mutex
	prefix string
	next   int
}

func (g *sequenceGenerator) NewID() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.next++
	return fmt.Sprintf("%s%d", g.prefix, g.next), nil
}

func feedPost(id, authorID int64, text string, at time.Time, mentions ...int64) FeedPost {
	item := FeedPost{
		ID:        externalid.ID(id),
		Text:      text,
		CreatedAt: at,
		Author: FeedAccount{
			ID:         externalid.ID(authorID),
			ScreenName: fmt.Sprintf("Team%d", authorID),
			Name:       fmt.Sprintf("Team %d", authorID),
		},
	}
	for _, mentioned := range mentions {
		item.Mentions = append(item.Mentions, FeedMention{
			AccountID:  externalid.ID(mentioned),
			ScreenName: fmt.Sprintf("team%d", mentioned),
		})
	}
	return item
}
