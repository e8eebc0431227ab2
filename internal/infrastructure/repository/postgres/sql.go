package postgres

import (
	"database/sql"
	"strings"
	"time"

	"github.com/riskibarqy/ultimate-scores/internal/domain/externalid"
)

func isNotFound(err error) bool {
	return err == sql.ErrNoRows
}

func optionalString(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func nullableID(value externalid.ID) *int64 {
	if value.IsZero() {
		return nil
	}
	v := value.Int64()
	return &v
}

func nullInt64ToID(value sql.NullInt64) externalid.ID {
	if !value.Valid {
		return externalid.Zero
	}
	return externalid.ID(value.Int64)
}

func nullStringToString(value sql.NullString) string {
	if !value.Valid {
		return ""
	}
	return value.String
}

func nullableTime(value *time.Time) *time.Time {
	if value == nil || value.IsZero() {
		return nil
	}
	utc := value.UTC()
	return &utc
}

func idsToAny(ids []externalid.ID) []any {
	out := make([]any, 0, len(ids))
	seen := make(map[externalid.ID]struct{}, len(ids))
	for _, id := range ids {
		if id.IsZero() {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id.Int64())
	}
	return out
}

func stringSliceToAny(items []string) []any {
	out := make([]any, 0, len(items))
	for _, item := range items {
		trimmed := strings.TrimSpace(item)
		if trimmed == "" {
			continue
		}
		out = append(out, trimmed)
	}
	return out
}
