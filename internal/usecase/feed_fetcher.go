package usecase

import (
	"context"
	"time"

	"github.com/riskibarqy/ultimate-scores/internal/domain/externalid"
)

// FeedFetcher reads curated lists from the social feed.
type FeedFetcher interface {
	FetchListPage(ctx context.Context, req PageRequest) ([]FeedPost, error)
	FetchOwnedLists(ctx context.Context, screenName string) ([]FeedList, error)
}

// PageRequest asks for posts of a list strictly between SinceID and MaxID.
// Zero bounds are omitted.
type PageRequest struct {
	ListID  externalid.ID
	SinceID externalid.ID
	MaxID   externalid.ID
	Count   int
}

type FeedAccount struct {
	ID              externalid.ID
	ScreenName      string
	Name            string
	ProfileImageURL string
}

type FeedMention struct {
	AccountID  externalid.ID
	ScreenName string
	Start      int
	End        int
}

type FeedPost struct {
	ID                externalid.ID
	Text              string
	CreatedAt         time.Time
	Lang              string
	InReplyToPostID   externalid.ID
	InReplyToAuthorID externalid.ID
	Author            FeedAccount
	Mentions          []FeedMention
	Hashtags          []string
}

type FeedList struct {
	ID   externalid.ID
	Name string
	Slug string
}
