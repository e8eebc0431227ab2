package crawl

import "github.com/riskibarqy/ultimate-scores/internal/domain/externalid"

// Limits bound the total work of one crawl chain.
type Limits struct {
	MaxPosts    int
	MaxRequests int
}

func DefaultLimits() Limits {
	return Limits{
		MaxPosts:    MaxPostsPerChain,
		MaxRequests: MaxRequestsPerChain,
	}
}

// PlanNextCrawl decides whether the chain needs another page using the
// default limits.
func PlanNextCrawl(state State, fetchedCount int, oldestFetchedID externalid.ID) (NextRequest, bool) {
	return DefaultLimits().PlanNextCrawl(state, fetchedCount, oldestFetchedID)
}

// PlanNextCrawl returns the next page request of the chain, or false when the
// chain is done.
func (l Limits) PlanNextCrawl(state State, fetchedCount int, oldestFetchedID externalid.ID) (NextRequest, bool) {
	if fetchedCount <= 0 || oldestFetchedID.IsZero() {
		return NextRequest{}, false
	}

	highWaterMark := state.SinceID
	if oldestFetchedID <= highWaterMark.Next() {
		return NextRequest{}, false
	}

	totalCrawled := state.TotalCrawled + fetchedCount
	totalRequests := state.TotalRequestsMade + 1
	if totalCrawled >= l.maxPosts() {
		return NextRequest{}, false
	}
	// A brand-new list is backfilled explicitly, never by chaining.
	if highWaterMark.Next() == externalid.FirstInStream {
		return NextRequest{}, false
	}
	// The feed caps deep pagination at one post per page.
	if fetchedCount <= 1 {
		return NextRequest{}, false
	}
	if totalRequests >= l.maxRequests() {
		return NextRequest{}, false
	}

	return NextRequest{
		ListID:            state.ListID,
		TotalRequestsMade: totalRequests,
		TotalCrawled:      totalCrawled,
		MaxID:             oldestFetchedID,
		SinceID:           highWaterMark.Next(),
		NumToCrawl:        state.NumToCrawl,
	}, true
}

func (l Limits) maxPosts() int {
	if l.MaxPosts <= 0 {
		return MaxPostsPerChain
	}
	return l.MaxPosts
}

func (l Limits) maxRequests() int {
	if l.MaxRequests <= 0 {
		return MaxRequestsPerChain
	}
	return l.MaxRequests
}
