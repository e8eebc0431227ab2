package externalid

import (
	"fmt"
	"strconv"
	"strings"
)

// ID is a feed-assigned 64-bit identifier for posts, accounts and lists.
// Ids are ordered: a larger id was assigned later.
type ID int64

// FirstInStream is the high-water mark reported for a list that was never crawled.
const FirstInStream ID = 2

// Zero is the absent id.
const Zero ID = 0

func Parse(raw string) (ID, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return Zero, fmt.Errorf("external id is empty")
	}
	out, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return Zero, fmt.Errorf("parse external id %q: %w", raw, err)
	}
	if out <= 0 {
		return Zero, fmt.Errorf("external id must be > 0, got %d", out)
	}
	return ID(out), nil
}

// ParseOptional returns Zero for blank or "0" input.
func ParseOptional(raw string) (ID, error) {
	if value := strings.TrimSpace(raw); value == "" || value == "0" {
		return Zero, nil
	}
	return Parse(raw)
}

func (id ID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

func (id ID) Int64() int64 {
	return int64(id)
}

func (id ID) IsZero() bool {
	return id <= 0
}

func (id ID) Next() ID {
	return id + 1
}

func (id ID) Prev() ID {
	if id <= 0 {
		return Zero
	}
	return id - 1
}

func (id ID) Compare(other ID) int {
	switch {
	case id < other:
		return -1
	case id > other:
		return 1
	default:
		return 0
	}
}

func Max(a, b ID) ID {
	if a > b {
		return a
	}
	return b
}

func Min(a, b ID) ID {
	if a < b {
		return a
	}
	return b
}
