package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/brgy-records/apiserver/types"
)

const defaultSummaryLimit = 10

// summarySource describes how a table is projected into RecordSummary rows.
// Name columns are read as first, middle, last, suffix; detail is a single
// SQL expression.
type summarySource struct {
	recordType types.RecordType
	table      string
	first      string
	middle     string
	last       string
	suffix     string
	detail     string
	search     []string
}

func (s summarySource) selectList() string {
	return strings.Join([]string{"id", s.first, s.middle, s.last, s.suffix, s.detail, "created_at"}, ", ")
}

func (s summarySource) recent(ctx context.Context, db *sql.DB, limit int) ([]types.RecordSummary, error) {
	if limit < 1 {
		limit = defaultSummaryLimit
	}
	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY created_at DESC, id DESC LIMIT $1", s.selectList(), s.table)
	return s.query(ctx, db, query, limit)
}

func (s summarySource) searchByTerm(ctx context.Context, db *sql.DB, term string, limit int) ([]types.RecordSummary, error) {
	if limit < 1 {
		limit = defaultSummaryLimit
	}
	matches := make([]string, len(s.search))
	for i, column := range s.search {
		matches[i] = column + " ILIKE $1"
	}
	query := fmt.Sprintf(
		"SELECT %s FROM %s WHERE %s ORDER BY created_at DESC, id DESC LIMIT $2",
		s.selectList(), s.table, strings.Join(matches, " OR "),
	)
	return s.query(ctx, db, query, likePattern(term), limit)
}

func (s summarySource) query(ctx context.Context, db *sql.DB, query string, args ...any) ([]types.RecordSummary, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	summaries := make([]types.RecordSummary, 0)
	for rows.Next() {
		var (
			id             int
			first, last    sql.NullString
			middle, suffix sql.NullString
			detail         sql.NullString
			createdAt      time.Time
		)
		if err := rows.Scan(&id, &first, &middle, &last, &suffix, &detail, &createdAt); err != nil {
			return nil, err
		}
		summaries = append(summaries, types.RecordSummary{
			ID:          id,
			Type:        s.recordType,
			DisplayName: types.JoinName(first.String, nullableString(middle), last.String, nullableString(suffix)),
			Detail:      detail.String,
			CreatedAt:   createdAt,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return summaries, nil
}

func nullableString(value sql.NullString) *string {
	if !value.Valid {
		return nil
	}
	return &value.String
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern wraps term for a substring ILIKE match, escaping wildcards.
func likePattern(term string) string {
	return "%" + likeEscaper.Replace(strings.TrimSpace(term)) + "%"
}
