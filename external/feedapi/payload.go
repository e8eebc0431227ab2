package feedapi

import (
	"strings"
	"time"

	"github.com/riskibarqy/ultimate-scores/internal/domain/externalid"
	"github.com/riskibarqy/ultimate-scores/internal/usecase"
)

const createdAtLayout = "Mon Jan 02 15:04:05 -0700 2006"

type statusPayload struct {
	IDStr                string          `json:"id_str"`
	Text                 string          `json:"text"`
	FullText             string          `json:"full_text"`
	CreatedAt            string          `json:"created_at"`
	Lang                 string          `json:"lang"`
	InReplyToStatusIDStr string          `json:"in_reply_to_status_id_str"`
	InReplyToUserIDStr   string          `json:"in_reply_to_user_id_str"`
	User                 userPayload     `json:"user"`
	Entities             entitiesPayload `json:"entities"`
}

type userPayload struct {
	IDStr                string `json:"id_str"`
	ScreenName           string `json:"screen_name"`
	Name                 string `json:"name"`
	ProfileImageURLHTTPS string `json:"profile_image_url_https"`
}

type entitiesPayload struct {
	UserMentions []mentionPayload `json:"user_mentions"`
	Hashtags     []hashtagPayload `json:"hashtags"`
}

type mentionPayload struct {
	IDStr      string `json:"id_str"`
	ScreenName string `json:"screen_name"`
	Indices    []int  `json:"indices"`
}

type hashtagPayload struct {
	Text string `json:"text"`
}

type ownershipsPayload struct {
	Lists []listPayload `json:"lists"`
}

type listPayload struct {
	IDStr string `json:"id_str"`
	Name  string `json:"name"`
	Slug  string `json:"slug"`
}

type tokenPayload struct {
	TokenType   string `json:"token_type"`
	AccessToken string `json:"access_token"`
}

type errorsPayload struct {
	Errors []struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"errors"`
}

// toFeedPost maps one status. Unparseable ids and timestamps are left zero
// and rejected later by post validation.
func (s statusPayload) toFeedPost() usecase.FeedPost {
	text := s.Text
	if strings.TrimSpace(s.FullText) != "" {
		text = s.FullText
	}

	out := usecase.FeedPost{
		ID:                parseID(s.IDStr),
		Text:              text,
		Lang:              strings.TrimSpace(s.Lang),
		InReplyToPostID:   parseID(s.InReplyToStatusIDStr),
		InReplyToAuthorID: parseID(s.InReplyToUserIDStr),
		Author: usecase.FeedAccount{
			ID:              parseID(s.User.IDStr),
			ScreenName:      s.User.ScreenName,
			Name:            s.User.Name,
			ProfileImageURL: s.User.ProfileImageURLHTTPS,
		},
		Mentions: make([]usecase.FeedMention, 0, len(s.Entities.UserMentions)),
		Hashtags: make([]string, 0, len(s.Entities.Hashtags)),
	}
	if createdAt, err := time.Parse(createdAtLayout, strings.TrimSpace(s.CreatedAt)); err == nil {
		out.CreatedAt = createdAt.UTC()
	}

	for _, mention := range s.Entities.UserMentions {
		item := usecase.FeedMention{
			AccountID:  parseID(mention.IDStr),
			ScreenName: mention.ScreenName,
		}
		if len(mention.Indices) == 2 {
			item.Start = mention.Indices[0]
			item.End = mention.Indices[1]
		}
		out.Mentions = append(out.Mentions, item)
	}
	for _, hashtag := range s.Entities.Hashtags {
		if tag := strings.TrimSpace(hashtag.Text); tag != "" {
			out.Hashtags = append(out.Hashtags, tag)
		}
	}
	return out
}

func parseID(raw string) externalid.ID {
	id, err := externalid.ParseOptional(raw)
	if err != nil {
		return externalid.Zero
	}
	return id
}
