// Package querybuilder renders the small set of Postgres statements the
// repositories need, with $n placeholders numbered in argument order.
package querybuilder

import (
	"fmt"
	"strconv"
	"strings"
)

// statement accumulates SQL text and its bound arguments.
type statement struct {
	sql  strings.Builder
	args []any
}

func (s *statement) write(parts ...string) {
	for _, part := range parts {
		s.sql.WriteString(part)
	}
}

// bind appends value and returns its placeholder.
func (s *statement) bind(value any) string {
	s.args = append(s.args, value)
	return "$" + strconv.Itoa(len(s.args))
}

func (s *statement) bindList(values []any) string {
	placeholders := make([]string, len(values))
	for i, v := range values {
		placeholders[i] = s.bind(v)
	}
	return strings.Join(placeholders, ", ")
}

func (s *statement) where(conditions []Condition) {
	for i, c := range conditions {
		if i == 0 {
			s.write(" WHERE ")
		} else {
			s.write(" AND ")
		}
		c(s)
	}
}

func (s *statement) result() (string, []any, error) {
	return s.sql.String(), s.args, nil
}

// Condition renders one predicate of a WHERE clause. Conditions are joined
// with AND.
type Condition func(s *statement)

func Eq(column string, value any) Condition {
	return func(s *statement) {
		s.write(column, " = ", s.bind(value))
	}
}

// Within matches values strictly between from and to.
func Within(column string, from, to any) Condition {
	return func(s *statement) {
		s.write(column, " > ", s.bind(from), " AND ", column, " < ", s.bind(to))
	}
}

// In matches no row when values is empty.
func In(column string, values []any) Condition {
	return func(s *statement) {
		if len(values) == 0 {
			s.write("1=0")
			return
		}
		s.write(column, " IN (", s.bindList(values), ")")
	}
}

// NotIn matches every row when values is empty.
func NotIn(column string, values []any) Condition {
	return func(s *statement) {
		if len(values) == 0 {
			s.write("1=1")
			return
		}
		s.write(column, " NOT IN (", s.bindList(values), ")")
	}
}

func IsNull(column string) Condition {
	return func(s *statement) {
		s.write(column, " IS NULL")
	}
}

type SelectBuilder struct {
	columns []string
	table   string
	where   []Condition
	orderBy []string
	limit   int
}

func Select(columns ...string) *SelectBuilder {
	return &SelectBuilder{columns: append([]string(nil), columns...)}
}

func (b *SelectBuilder) From(table string) *SelectBuilder {
	b.table = table
	return b
}

func (b *SelectBuilder) Where(conditions ...Condition) *SelectBuilder {
	b.where = append(b.where, conditions...)
	return b
}

func (b *SelectBuilder) OrderBy(parts ...string) *SelectBuilder {
	b.orderBy = append(b.orderBy, parts...)
	return b
}

func (b *SelectBuilder) Limit(limit int) *SelectBuilder {
	b.limit = limit
	return b
}

func (b *SelectBuilder) ToSQL() (string, []any, error) {
	if len(b.columns) == 0 {
		return "", nil, fmt.Errorf("select columns are required")
	}
	if strings.TrimSpace(b.table) == "" {
		return "", nil, fmt.Errorf("select table is required")
	}

	var s statement
	s.write("SELECT ", strings.Join(b.columns, ", "), " FROM ", b.table)
	s.where(b.where)
	if len(b.orderBy) > 0 {
		s.write(" ORDER BY ", strings.Join(b.orderBy, ", "))
	}
	if b.limit > 0 {
		s.write(" LIMIT ", strconv.Itoa(b.limit))
	}
	return s.result()
}

type InsertBuilder struct {
	table   string
	columns []string
	rows    [][]any
	suffix  string
}

func InsertInto(table string) *InsertBuilder {
	return &InsertBuilder{table: table}
}

func (b *InsertBuilder) Columns(columns ...string) *InsertBuilder {
	b.columns = append([]string(nil), columns...)
	return b
}

func (b *InsertBuilder) Values(values ...any) *InsertBuilder {
	b.rows = append(b.rows, append([]any(nil), values...))
	return b
}

// Suffix is appended verbatim, typically an ON CONFLICT clause.
func (b *InsertBuilder) Suffix(sql string) *InsertBuilder {
	b.suffix = strings.TrimSpace(sql)
	return b
}

func (b *InsertBuilder) ToSQL() (string, []any, error) {
	switch {
	case strings.TrimSpace(b.table) == "":
		return "", nil, fmt.Errorf("insert table is required")
	case len(b.columns) == 0:
		return "", nil, fmt.Errorf("insert columns are required")
	case len(b.rows) == 0:
		return "", nil, fmt.Errorf("insert values are required")
	}

	var s statement
	s.args = make([]any, 0, len(b.rows)*len(b.columns))
	s.write("INSERT INTO ", b.table, " (", strings.Join(b.columns, ", "), ") VALUES ")
	for i, row := range b.rows {
		if len(row) != len(b.columns) {
			return "", nil, fmt.Errorf("insert row %d has %d values, expected %d", i, len(row), len(b.columns))
		}
		if i > 0 {
			s.write(", ")
		}
		s.write("(", s.bindList(row), ")")
	}
	if b.suffix != "" {
		s.write(" ", b.suffix)
	}
	return s.result()
}

type UpdateBuilder struct {
	table   string
	columns []string
	values  []any
	where   []Condition
}

func Update(table string) *UpdateBuilder {
	return &UpdateBuilder{table: table}
}

func (b *UpdateBuilder) Set(column string, value any) *UpdateBuilder {
	b.columns = append(b.columns, column)
	b.values = append(b.values, value)
	return b
}

func (b *UpdateBuilder) Where(conditions ...Condition) *UpdateBuilder {
	b.where = append(b.where, conditions...)
	return b
}

func (b *UpdateBuilder) ToSQL() (string, []any, error) {
	if strings.TrimSpace(b.table) == "" {
		return "", nil, fmt.Errorf("update table is required")
	}
	if len(b.columns) == 0 {
		return "", nil, fmt.Errorf("update sets are required")
	}

	var s statement
	s.write("UPDATE ", b.table, " SET ")
	for i, column := range b.columns {
		if i > 0 {
			s.write(", ")
		}
		s.write(column, " = ", s.bind(b.values[i]))
	}
	s.where(b.where)
	return s.result()
}
