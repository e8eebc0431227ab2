// Package dburl handles the Postgres connection strings shared by the API
// and the migration command.
package dburl

import (
	"net/url"
	"strings"
)

const preparedBinaryResultParam = "disable_prepared_binary_result"

// Normalize adds disable_prepared_binary_result=yes when disable is set and
// the URL does not choose a value itself. Unparseable input is returned as is.
func Normalize(raw string, disable bool) string {
	raw = strings.TrimSpace(raw)
	if !disable {
		return raw
	}

	parsed, err := url.Parse(raw)
	if err != nil || parsed.Scheme == "" {
		return raw
	}

	query := parsed.Query()
	if query.Get(preparedBinaryResultParam) == "" {
		query.Set(preparedBinaryResultParam, "yes")
		parsed.RawQuery = query.Encode()
	}
	return parsed.String()
}

// Name returns the database name from URL or key=value DSN form.
func Name(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if parsed, err := url.Parse(trimmed); err == nil && parsed.Scheme != "" {
		return strings.TrimSpace(strings.TrimPrefix(parsed.Path, "/"))
	}
	return dsnValue(trimmed, "dbname")
}

// Redact drops the password so the URL can be logged.
func Redact(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if parsed, err := url.Parse(trimmed); err == nil && parsed.Scheme != "" {
		return parsed.Redacted()
	}

	fields := strings.Fields(trimmed)
	for i, field := range fields {
		if strings.HasPrefix(field, "password=") {
			fields[i] = "password=xxxxx"
		}
	}
	return strings.Join(fields, " ")
}

func dsnValue(dsn, key string) string {
	prefix := key + "="
	for _, field := range strings.Fields(dsn) {
		if !strings.HasPrefix(field, prefix) {
			continue
		}
		return strings.Trim(strings.TrimSpace(strings.TrimPrefix(field, prefix)), `"'`)
	}
	return ""
}
