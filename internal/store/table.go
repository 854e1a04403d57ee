package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Fields maps column names to values for inserts and updates.
type Fields map[string]any

// Conditions maps column names to values matched exactly and joined with AND.
// A nil value matches NULL.
type Conditions map[string]any

// Options shapes the result of FindWhere.
type Options struct {
	Limit   int
	Offset  int
	OrderBy string
	Desc    bool
}

type rowScanner interface {
	Scan(dest ...any) error
}

// ScanFunc reads one row, in the table's column order, into a T.
type ScanFunc[T any] func(row rowScanner) (T, error)

// Table is the generic record accessor shared by every repository. Each
// method issues exactly one database round trip. Field and condition names
// are trusted to come from validated schemas, but they are still checked
// against the table's column set before being spliced into SQL.
type Table[T any] struct {
	db      *sql.DB
	name    string
	columns []string
	known   map[string]struct{}
	scan    ScanFunc[T]
}

// NewTable builds an accessor for name. columns must start with "id" and
// match the order scan reads them in.
func NewTable[T any](db *sql.DB, name string, columns []string, scan ScanFunc[T]) *Table[T] {
	known := make(map[string]struct{}, len(columns))
	for _, column := range columns {
		known[column] = struct{}{}
	}
	return &Table[T]{
		db:      db,
		name:    name,
		columns: columns,
		known:   known,
		scan:    scan,
	}
}

// Name returns the table name.
func (t *Table[T]) Name() string {
	return t.name
}

// FindByID returns the row with the given id or ErrNotFound.
func (t *Table[T]) FindByID(ctx context.Context, id int) (T, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = $1", t.selectList(), t.name)
	record, err := t.scan(t.db.QueryRowContext(ctx, query, id))
	if err != nil {
		var zero T
		return zero, mapError(err)
	}
	return record, nil
}

// FindWhere returns the rows matching every condition.
func (t *Table[T]) FindWhere(ctx context.Context, conditions Conditions, opts Options) ([]T, error) {
	where, args, err := t.whereClause(conditions)
	if err != nil {
		return nil, err
	}

	orderBy := opts.OrderBy
	if orderBy == "" {
		orderBy = "id"
	}
	if !t.hasColumn(orderBy) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownColumn, orderBy)
	}
	direction := "ASC"
	if opts.Desc {
		direction = "DESC"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "SELECT %s FROM %s%s ORDER BY %s %s", t.selectList(), t.name, where, orderBy, direction)
	if opts.Limit > 0 {
		args = append(args, opts.Limit)
		fmt.Fprintf(&sb, " LIMIT $%d", len(args))
	}
	if opts.Offset > 0 {
		args = append(args, opts.Offset)
		fmt.Fprintf(&sb, " OFFSET $%d", len(args))
	}

	return t.query(ctx, sb.String(), args...)
}

// Create inserts a row and returns it as stored, including generated columns.
func (t *Table[T]) Create(ctx context.Context, fields Fields) (T, error) {
	var zero T
	keys, err := t.sortedKeys(fields)
	if err != nil {
		return zero, err
	}

	var query string
	args := make([]any, 0, len(keys))
	if len(keys) == 0 {
		query = fmt.Sprintf("INSERT INTO %s DEFAULT VALUES RETURNING %s", t.name, t.selectList())
	} else {
		placeholders := make([]string, len(keys))
		for i, key := range keys {
			placeholders[i] = fmt.Sprintf("$%d", i+1)
			args = append(args, fields[key])
		}
		query = fmt.Sprintf(
			"INSERT INTO %s (%s) VALUES (%s) RETURNING %s",
			t.name,
			strings.Join(keys, ", "),
			strings.Join(placeholders, ", "),
			t.selectList(),
		)
	}

	record, err := t.scan(t.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		return zero, mapError(err)
	}
	return record, nil
}

// Update sets fields on the row with the given id. It reports whether a row
// matched. updated_at is bumped automatically when the table has one.
func (t *Table[T]) Update(ctx context.Context, id int, fields Fields) (bool, error) {
	keys, err := t.sortedKeys(fields)
	if err != nil {
		return false, err
	}
	if len(keys) == 0 {
		return false, errors.New("no fields to update")
	}

	assignments := make([]string, 0, len(keys)+1)
	args := make([]any, 0, len(keys)+1)
	for _, key := range keys {
		args = append(args, fields[key])
		assignments = append(assignments, fmt.Sprintf("%s = $%d", key, len(args)))
	}
	if _, explicit := fields["updated_at"]; !explicit && t.hasColumn("updated_at") {
		assignments = append(assignments, "updated_at = NOW()")
	}
	args = append(args, id)

	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = $%d", t.name, strings.Join(assignments, ", "), len(args))
	result, err := t.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, mapError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// Delete removes the row with the given id and reports whether it existed.
func (t *Table[T]) Delete(ctx context.Context, id int) (bool, error) {
	query := fmt.Sprintf("DELETE FROM %s WHERE id = $1", t.name)
	result, err := t.db.ExecContext(ctx, query, id)
	if err != nil {
		return false, mapError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// Count returns the number of rows matching every condition.
func (t *Table[T]) Count(ctx context.Context, conditions Conditions) (int, error) {
	where, args, err := t.whereClause(conditions)
	if err != nil {
		return 0, err
	}
	query := fmt.Sprintf("SELECT COUNT(1) FROM %s%s", t.name, where)
	var total int
	if err := t.db.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return 0, mapError(err)
	}
	return total, nil
}

// selectWhere runs "SELECT <columns> FROM <table> <clause>" for entity
// specific queries that need more than exact-match conditions.
func (t *Table[T]) selectWhere(ctx context.Context, clause string, args ...any) ([]T, error) {
	query := fmt.Sprintf("SELECT %s FROM %s %s", t.selectList(), t.name, clause)
	return t.query(ctx, query, args...)
}

func (t *Table[T]) query(ctx context.Context, query string, args ...any) ([]T, error) {
	rows, err := t.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	records := make([]T, 0)
	for rows.Next() {
		record, err := t.scan(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

func (t *Table[T]) whereClause(conditions Conditions) (string, []any, error) {
	if len(conditions) == 0 {
		return "", nil, nil
	}
	keys := make([]string, 0, len(conditions))
	for key := range conditions {
		if !t.hasColumn(key) {
			return "", nil, fmt.Errorf("%w: %s", ErrUnknownColumn, key)
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	clauses := make([]string, 0, len(keys))
	args := make([]any, 0, len(keys))
	for _, key := range keys {
		value := conditions[key]
		if value == nil {
			clauses = append(clauses, key+" IS NULL")
			continue
		}
		args = append(args, value)
		clauses = append(clauses, fmt.Sprintf("%s = $%d", key, len(args)))
	}
	return " WHERE " + strings.Join(clauses, " AND "), args, nil
}

func (t *Table[T]) sortedKeys(fields Fields) ([]string, error) {
	keys := make([]string, 0, len(fields))
	for key := range fields {
		if key == "id" || !t.hasColumn(key) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownColumn, key)
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys, nil
}

func (t *Table[T]) hasColumn(name string) bool {
	_, ok := t.known[name]
	return ok
}

func (t *Table[T]) selectList() string {
	return strings.Join(t.columns, ", ")
}
