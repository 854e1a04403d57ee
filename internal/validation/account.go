package validation

import (
	"io"

	"github.com/brgy-records/apiserver/types"
)

// Credentials is a login attempt.
type Credentials struct {
	Username string `json:"username" validate:"required,max=50"`
	Password string `json:"password" validate:"required,max=128" trim:"false"`
}

func (v *Validator) Login(r io.Reader) (Credentials, error) {
	var in Credentials
	if err := v.run(r, &in); err != nil {
		return Credentials{}, err
	}
	return in, nil
}

// Registration is a new staff or admin account. Role defaults to staff.
type Registration struct {
	Username string     `json:"username" validate:"required,min=3,max=50,alphanum"`
	Email    string     `json:"email" validate:"required,max=100,email"`
	Password string     `json:"password" validate:"required,min=6,password" trim:"false"`
	Role     types.Role `json:"role" validate:"omitempty,role"`
}

func (v *Validator) Register(r io.Reader) (Registration, error) {
	var in Registration
	if err := v.run(r, &in); err != nil {
		return Registration{}, err
	}
	if in.Role == "" {
		in.Role = types.RoleStaff
	}
	return in, nil
}

// UserUpdate is a partial account update by an admin. Nil fields are left
// unchanged.
type UserUpdate struct {
	Username *string     `json:"username" validate:"omitempty,min=3,max=50,alphanum"`
	Email    *string     `json:"email" validate:"omitempty,max=100,email"`
	Role     *types.Role `json:"role" validate:"omitempty,role"`
	IsActive *bool       `json:"is_active"`
}

// Empty reports whether the update changes nothing.
func (u UserUpdate) Empty() bool {
	return u.Username == nil && u.Email == nil && u.Role == nil && u.IsActive == nil
}

func (v *Validator) UserUpdate(r io.Reader) (UserUpdate, error) {
	var in UserUpdate
	if err := v.run(r, &in); err != nil {
		return UserUpdate{}, err
	}
	if in.Empty() {
		return UserUpdate{}, &Errors{Fields: []FieldError{{Field: "body", Message: "must change at least one field"}}}
	}
	return in, nil
}

// PasswordChange replaces the caller's own password.
type PasswordChange struct {
	CurrentPassword string `json:"current_password" validate:"required" trim:"false"`
	NewPassword     string `json:"new_password" validate:"required,min=6,password,nefield=CurrentPassword" trim:"false"`
}

func (v *Validator) ChangePassword(r io.Reader) (PasswordChange, error) {
	var in PasswordChange
	if err := v.run(r, &in); err != nil {
		return PasswordChange{}, err
	}
	return in, nil
}

// OfficialInput edits the holder of a council seat.
type OfficialInput struct {
	Position  string `json:"position" validate:"required,max=100"`
	Name      string `json:"name" validate:"required,max=150"`
	Title     string `json:"title" validate:"max=50"`
	Committee string `json:"committee" validate:"max=150"`
}

func (v *Validator) Official(r io.Reader) (types.Official, error) {
	var in OfficialInput
	if err := v.run(r, &in); err != nil {
		return types.Official{}, err
	}
	return types.Official{
		Position:  in.Position,
		Name:      in.Name,
		Title:     optional(in.Title),
		Committee: optional(in.Committee),
	}, nil
}
