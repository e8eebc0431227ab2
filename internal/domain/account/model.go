package account

import (
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/ultimate-scores/internal/domain/externalid"
)

// Account is a feed author. Team accounts are identified by their feed id.
type Account struct {
	ID              externalid.ID
	ScreenName      string
	Name            string
	ProfileImageURL string
	ListID          externalid.ID
	UpdatedAt       time.Time
}

// Normalize lowercases the screen name.
func (a Account) Normalize() Account {
	a.ScreenName = strings.ToLower(strings.TrimSpace(a.ScreenName))
	a.Name = strings.TrimSpace(a.Name)
	return a
}

func (a Account) Validate() error {
	if a.ID.IsZero() {
		return fmt.Errorf("account id is required")
	}
	return nil
}
