package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/brgy-records/apiserver/internal/store"
	"github.com/brgy-records/apiserver/internal/validation"
	"github.com/brgy-records/apiserver/types"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrUsernameTaken = errors.New("username already exists")
	ErrEmailTaken    = errors.New("email already exists")
	ErrSelfDelete    = errors.New("cannot deactivate own account")
	ErrSelfDemote    = errors.New("cannot change own role")
	ErrWrongPassword = errors.New("current password is incorrect")
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id int) (types.User, error)
	GetActiveByID(ctx context.Context, id int) (types.User, error)
	GetActiveByUsername(ctx context.Context, username string) (types.User, error)
	ExistsByUsernameOrEmail(ctx context.Context, username, email string) (usernameTaken, emailTaken bool, err error)
	ListActive(ctx context.Context) ([]types.User, error)
	Create(ctx context.Context, user types.User) (types.User, error)
	Update(ctx context.Context, id int, fields store.Fields) error
	UpdatePassword(ctx context.Context, id int, passwordHash string) error
	Deactivate(ctx context.Context, id int) error
}

// UserService encapsulates account use-cases.
type UserService struct {
	repo       UserRepository
	bcryptCost int
}

func NewUserService(repo UserRepository) *UserService {
	return &UserService{repo: repo, bcryptCost: bcrypt.DefaultCost}
}

func (s *UserService) GetActive(ctx context.Context, id int) (types.User, error) {
	return s.repo.GetActiveByID(ctx, id)
}

func (s *UserService) ListActive(ctx context.Context) ([]types.User, error) {
	return s.repo.ListActive(ctx)
}

// Register creates an account. A taken username or email is reported as
// ErrUsernameTaken or ErrEmailTaken.
func (s *UserService) Register(ctx context.Context, in validation.Registration) (types.User, error) {
	usernameTaken, emailTaken, err := s.repo.ExistsByUsernameOrEmail(ctx, in.Username, in.Email)
	if err != nil {
		return types.User{}, err
	}
	switch {
	case usernameTaken:
		return types.User{}, ErrUsernameTaken
	case emailTaken:
		return types.User{}, ErrEmailTaken
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return types.User{}, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.repo.Create(ctx, types.User{
		Username:     in.Username,
		Email:        in.Email,
		Role:         in.Role,
		PasswordHash: string(hashed),
	})
	if err != nil {
		return types.User{}, conflictError(err)
	}
	return user, nil
}

// Update applies an edit by the admin actorID to account id and returns the
// stored row. Admins cannot deactivate or demote themselves.
func (s *UserService) Update(ctx context.Context, actorID, id int, in validation.UserUpdate) (types.User, error) {
	if actorID == id {
		if in.IsActive != nil && !*in.IsActive {
			return types.User{}, ErrSelfDelete
		}
		if in.Role != nil && *in.Role != types.RoleAdmin {
			return types.User{}, ErrSelfDemote
		}
	}

	fields := store.Fields{}
	if in.Username != nil {
		fields["username"] = *in.Username
	}
	if in.Email != nil {
		fields["email"] = *in.Email
	}
	if in.Role != nil {
		fields["role"] = string(*in.Role)
	}
	if in.IsActive != nil {
		fields["is_active"] = *in.IsActive
	}

	if err := s.repo.Update(ctx, id, fields); err != nil {
		return types.User{}, conflictError(err)
	}
	return s.repo.GetByID(ctx, id)
}

// Deactivate soft-deletes the account id on behalf of actorID.
func (s *UserService) Deactivate(ctx context.Context, actorID, id int) error {
	if actorID == id {
		return ErrSelfDelete
	}
	return s.repo.Deactivate(ctx, id)
}

// ChangePassword replaces the password of an active user after checking the
// current one.
func (s *UserService) ChangePassword(ctx context.Context, userID int, in validation.PasswordChange) error {
	user, err := s.repo.GetActiveByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.CurrentPassword)); err != nil {
		return ErrWrongPassword
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.NewPassword), s.bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.repo.UpdatePassword(ctx, userID, string(hashed))
}

// conflictError names the duplicated column of a unique violation on users.
func conflictError(err error) error {
	if !errors.Is(err, store.ErrConflict) {
		return err
	}
	switch constraint := store.Constraint(err); {
	case strings.Contains(constraint, "username"):
		return ErrUsernameTaken
	case strings.Contains(constraint, "email"):
		return ErrEmailTaken
	}
	return err
}
