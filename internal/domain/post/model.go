package post

import (
	"fmt"
	"time"

	"github.com/riskibarqy/ultimate-scores/internal/domain/externalid"
	"github.com/riskibarqy/ultimate-scores/internal/domain/score"
)

// Mention is an account referenced in a post body.
type Mention struct {
	AccountID  externalid.ID
	ScreenName string
	Start      int
	End        int
}

// Post is one stored feed post.
type Post struct {
	ID                externalid.ID
	ListID            externalid.ID
	AuthorID          externalid.ID
	Text              string
	CreatedAt         time.Time
	Lang              string
	InReplyToPostID   externalid.ID
	InReplyToAuthorID externalid.ID
	Integers          []score.Integer
	Mentions          []Mention
	Hashtags          []string
}

func (p Post) Validate() error {
	if p.ID.IsZero() {
		return fmt.Errorf("post id is required")
	}
	if p.AuthorID.IsZero() {
		return fmt.Errorf("post %s author id is required", p.ID)
	}
	if p.CreatedAt.IsZero() {
		return fmt.Errorf("post %s created at is required", p.ID)
	}
	return nil
}

// TwoOrMoreIntegers reports whether the post may carry a score.
func (p Post) TwoOrMoreIntegers() bool {
	return score.HasScoreCandidates(p.Integers)
}

// Scores extracts the first score pair of the post body. Feed scores never
// know which side is which.
func (p Post) Scores() (score.Scores, bool) {
	i, j, ok := score.FindScoreIndices(p.Integers, p.Text)
	if !ok {
		return score.Scores{}, false
	}
	return score.New(p.Integers[i].Value, p.Integers[j].Value, false), true
}

// MentionedIDs returns mentioned accounts in text order.
func (p Post) MentionedIDs() []externalid.ID {
	out := make([]externalid.ID, 0, len(p.Mentions))
	for _, mention := range p.Mentions {
		if mention.AccountID.IsZero() {
			continue
		}
		out = append(out, mention.AccountID)
	}
	return out
}
