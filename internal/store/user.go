package store

import (
	"context"
	"database/sql"

	"github.com/brgy-records/apiserver/types"
)

var userColumns = []string{
	"id", "username", "email", "role", "is_active", "password_hash", "created_at", "updated_at",
}

func scanUser(row rowScanner) (types.User, error) {
	var user types.User
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.Role,
		&user.IsActive,
		&user.PasswordHash,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	return user, err
}

// UserRepository handles persistence for staff accounts. Deactivated users
// stay in the table; lookups used for authentication filter on is_active.
type UserRepository struct {
	table *Table[types.User]
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{table: NewTable(db, "users", userColumns, scanUser)}
}

func (r *UserRepository) GetByID(ctx context.Context, id int) (types.User, error) {
	return r.table.FindByID(ctx, id)
}

// GetActiveByID returns the user only while the account is active.
func (r *UserRepository) GetActiveByID(ctx context.Context, id int) (types.User, error) {
	return r.first(ctx, Conditions{"id": id, "is_active": true})
}

// GetActiveByUsername returns the active user with the given username.
// Inactive accounts are reported as ErrNotFound.
func (r *UserRepository) GetActiveByUsername(ctx context.Context, username string) (types.User, error) {
	return r.first(ctx, Conditions{"username": username, "is_active": true})
}

// ExistsByUsernameOrEmail reports which of username and email are taken,
// active or not.
func (r *UserRepository) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (usernameTaken, emailTaken bool, err error) {
	const query = `
		SELECT
			COALESCE(BOOL_OR(username = $1), FALSE),
			COALESCE(BOOL_OR(email = $2), FALSE)
		FROM users
		WHERE username = $1 OR email = $2`
	err = r.table.db.QueryRowContext(ctx, query, username, email).Scan(&usernameTaken, &emailTaken)
	return usernameTaken, emailTaken, mapError(err)
}

// ListActive returns active users ordered by id.
func (r *UserRepository) ListActive(ctx context.Context) ([]types.User, error) {
	return r.table.FindWhere(ctx, Conditions{"is_active": true}, Options{OrderBy: "id"})
}

func (r *UserRepository) Create(ctx context.Context, user types.User) (types.User, error) {
	return r.table.Create(ctx, Fields{
		"username":      user.Username,
		"email":         user.Email,
		"role":          string(user.Role),
		"is_active":     true,
		"password_hash": user.PasswordHash,
	})
}

// Update applies a partial update and returns ErrNotFound when no row matched.
func (r *UserRepository) Update(ctx context.Context, id int, fields Fields) error {
	return r.update(ctx, id, fields)
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id int, passwordHash string) error {
	return r.update(ctx, id, Fields{"password_hash": passwordHash})
}

// Deactivate soft-deletes the account.
func (r *UserRepository) Deactivate(ctx context.Context, id int) error {
	return r.update(ctx, id, Fields{"is_active": false})
}

func (r *UserRepository) update(ctx context.Context, id int, fields Fields) error {
	ok, err := r.table.Update(ctx, id, fields)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

func (r *UserRepository) first(ctx context.Context, conditions Conditions) (types.User, error) {
	users, err := r.table.FindWhere(ctx, conditions, Options{Limit: 1})
	if err != nil {
		return types.User{}, err
	}
	if len(users) == 0 {
		return types.User{}, ErrNotFound
	}
	return users[0], nil
}
