package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/brgy-records/apiserver/types"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const userSelect = "SELECT id, username, email, role, is_active, password_hash, created_at, updated_at FROM users"

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func userRows() *sqlmock.Rows {
	return sqlmock.NewRows(userColumns)
}

func addUserRow(rows *sqlmock.Rows, id int, username string, active bool) *sqlmock.Rows {
	now := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	return rows.AddRow(id, username, username+"@example.com", "staff", active, "$2a$10$hash", now, now)
}

func TestTableFindByID(t *testing.T) {
	db, mock := setupMockDB(t)
	table := NewTable(db, "users", userColumns, scanUser)

	mock.ExpectQuery(userSelect + " WHERE id = $1").
		WithArgs(7).
		WillReturnRows(addUserRow(userRows(), 7, "clerk", true))

	user, err := table.FindByID(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, 7, user.ID)
	assert.Equal(t, "clerk", user.Username)
	assert.Equal(t, types.RoleStaff, user.Role)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTableFindByIDNotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	table := NewTable(db, "users", userColumns, scanUser)

	mock.ExpectQuery(userSelect + " WHERE id = $1").
		WithArgs(99).
		WillReturnRows(userRows())

	_, err := table.FindByID(context.Background(), 99)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTableFindWhereBuildsSortedConditions(t *testing.T) {
	db, mock := setupMockDB(t)
	table := NewTable(db, "users", userColumns, scanUser)

	mock.ExpectQuery(userSelect+" WHERE is_active = $1 AND username = $2 ORDER BY created_at DESC LIMIT $3 OFFSET $4").
		WithArgs(true, "clerk", 5, 10).
		WillReturnRows(addUserRow(userRows(), 1, "clerk", true))

	users, err := table.FindWhere(context.Background(), Conditions{"username": "clerk", "is_active": true}, Options{
		OrderBy: "created_at",
		Desc:    true,
		Limit:   5,
		Offset:  10,
	})
	require.NoError(t, err)
	assert.Len(t, users, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTableFindWhereNilMatchesNull(t *testing.T) {
	db, mock := setupMockDB(t)
	table := NewTable(db, "resident_details", residentDetailsColumns, scanResidentDetails)

	mock.ExpectQuery("SELECT " + table.selectList() + " FROM resident_details WHERE certificate_type IS NULL ORDER BY id ASC").
		WillReturnRows(sqlmock.NewRows(residentDetailsColumns))

	details, err := table.FindWhere(context.Background(), Conditions{"certificate_type": nil}, Options{})
	require.NoError(t, err)
	assert.Empty(t, details)
	assert.NotNil(t, details)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTableRejectsUnknownColumns(t *testing.T) {
	db, mock := setupMockDB(t)
	table := NewTable(db, "users", userColumns, scanUser)
	ctx := context.Background()

	_, err := table.FindWhere(ctx, Conditions{"username; DROP TABLE users": "x"}, Options{})
	assert.ErrorIs(t, err, ErrUnknownColumn)

	_, err = table.FindWhere(ctx, nil, Options{OrderBy: "nope"})
	assert.ErrorIs(t, err, ErrUnknownColumn)

	_, err = table.Create(ctx, Fields{"nickname": "x"})
	assert.ErrorIs(t, err, ErrUnknownColumn)

	_, err = table.Update(ctx, 1, Fields{"id": 2})
	assert.ErrorIs(t, err, ErrUnknownColumn)

	_, err = table.Count(ctx, Conditions{"nickname": "x"})
	assert.ErrorIs(t, err, ErrUnknownColumn)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTableCreate(t *testing.T) {
	db, mock := setupMockDB(t)
	table := NewTable(db, "users", userColumns, scanUser)

	mock.ExpectQuery("INSERT INTO users (email, role, username) VALUES ($1, $2, $3) RETURNING " + table.selectList()).
		WithArgs("clerk@example.com", "staff", "clerk").
		WillReturnRows(addUserRow(userRows(), 3, "clerk", true))

	user, err := table.Create(context.Background(), Fields{
		"username": "clerk",
		"email":    "clerk@example.com",
		"role":     "staff",
	})
	require.NoError(t, err)
	assert.Equal(t, 3, user.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTableCreateWithoutFields(t *testing.T) {
	db, mock := setupMockDB(t)
	table := NewTable(db, "users", userColumns, scanUser)

	mock.ExpectQuery("INSERT INTO users DEFAULT VALUES RETURNING " + table.selectList()).
		WillReturnRows(addUserRow(userRows(), 4, "", true))

	_, err := table.Create(context.Background(), Fields{})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTableCreateMapsUniqueViolation(t *testing.T) {
	db, mock := setupMockDB(t)
	table := NewTable(db, "users", userColumns, scanUser)

	mock.ExpectQuery("INSERT INTO users (username) VALUES ($1) RETURNING " + table.selectList()).
		WithArgs("clerk").
		WillReturnError(&pq.Error{Code: "23505", Constraint: "users_username_key"})

	_, err := table.Create(context.Background(), Fields{"username": "clerk"})
	assert.ErrorIs(t, err, ErrConflict)
	assert.Equal(t, "users_username_key", Constraint(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTableUpdateBumpsUpdatedAt(t *testing.T) {
	db, mock := setupMockDB(t)
	table := NewTable(db, "users", userColumns, scanUser)

	mock.ExpectExec("UPDATE users SET email = $1, role = $2, updated_at = NOW() WHERE id = $3").
		WithArgs("new@example.com", "admin", 5).
		WillReturnResult(sqlmock.NewResult(0, 1))

	ok, err := table.Update(context.Background(), 5, Fields{"role": "admin", "email": "new@example.com"})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTableUpdateWithoutUpdatedAtColumn(t *testing.T) {
	db, mock := setupMockDB(t)
	table := NewTable(db, "resident_details", residentDetailsColumns, scanResidentDetails)

	mock.ExpectExec("UPDATE resident_details SET purpose = $1 WHERE id = $2").
		WithArgs("Scholarship", 8).
		WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := table.Update(context.Background(), 8, Fields{"purpose": "Scholarship"})
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTableUpdateRequiresFields(t *testing.T) {
	db, _ := setupMockDB(t)
	table := NewTable(db, "users", userColumns, scanUser)

	_, err := table.Update(context.Background(), 1, Fields{})
	assert.Error(t, err)
}

func TestTableDelete(t *testing.T) {
	db, mock := setupMockDB(t)
	table := NewTable(db, "barangay_inhabitants", inhabitantColumns, scanInhabitant)

	mock.ExpectExec("DELETE FROM barangay_inhabitants WHERE id = $1").
		WithArgs(12).
		WillReturnResult(sqlmock.NewResult(0, 1))

	ok, err := table.Delete(context.Background(), 12)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTableCount(t *testing.T) {
	db, mock := setupMockDB(t)
	table := NewTable(db, "users", userColumns, scanUser)

	mock.ExpectQuery("SELECT COUNT(1) FROM users WHERE is_active = $1").
		WithArgs(true).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

	total, err := table.Count(context.Background(), Conditions{"is_active": true})
	require.NoError(t, err)
	assert.Equal(t, 4, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMapError(t *testing.T) {
	assert.Nil(t, mapError(nil))
	assert.ErrorIs(t, mapError(sql.ErrNoRows), ErrNotFound)

	fk := mapError(&pq.Error{Code: "23503", Constraint: "resident_details_resident_id_fkey"})
	assert.ErrorIs(t, fk, ErrInvalidReference)
	assert.Equal(t, "resident_details_resident_id_fkey", Constraint(fk))

	other := errors.New("connection reset")
	assert.Equal(t, other, mapError(other))
	assert.Empty(t, Constraint(other))
}

func TestLikePatternEscapesWildcards(t *testing.T) {
	assert.Equal(t, `%dela cruz%`, likePattern("  dela cruz "))
	assert.Equal(t, `%50\%\_off%`, likePattern("50%_off"))
	assert.Equal(t, `%a\\b%`, likePattern(`a\b`))
}
