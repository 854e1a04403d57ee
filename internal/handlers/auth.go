package handlers

import (
	"context"
	"net/http"

	"github.com/brgy-records/apiserver/internal/validation"
	"github.com/brgy-records/apiserver/types"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// LoginService issues and verifies access tokens.
type LoginService interface {
	Authenticator
	Login(ctx context.Context, creds validation.Credentials, remoteAddr string) (string, types.User, error)
}

// UserManager administers staff accounts.
type UserManager interface {
	ListActive(ctx context.Context) ([]types.User, error)
	Register(ctx context.Context, in validation.Registration) (types.User, error)
	Update(ctx context.Context, actorID, id int, in validation.UserUpdate) (types.User, error)
	Deactivate(ctx context.Context, actorID, id int) error
	ChangePassword(ctx context.Context, userID int, in validation.PasswordChange) error
}

// AuthHandler serves login and account management.
type AuthHandler struct {
	auth      LoginService
	users     UserManager
	validator *validation.Validator
	errors    errorResponder
}

func NewAuthHandler(auth LoginService, users UserManager, validator *validation.Validator, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		auth:      auth,
		users:     users,
		validator: validator,
		errors:    errorResponder{logger: logger},
	}
}

// AuthRouter registers auth routes on the given router.
func AuthRouter(r chi.Router, handler *AuthHandler, requireAuth func(http.Handler) http.Handler) {
	adminOnly := RequireRole(types.RoleAdmin)

	r.Post("/login", handler.Login)
	r.With(requireAuth).Get("/profile", handler.Profile)
	r.With(requireAuth).Put("/change-password", handler.ChangePassword)
	r.With(requireAuth, adminOnly).Post("/register", handler.Register)
	r.With(requireAuth, adminOnly).Get("/users", handler.ListUsers)
	r.With(requireAuth, adminOnly).Put("/users/{id}", handler.UpdateUser)
	r.With(requireAuth, adminOnly).Delete("/users/{id}", handler.DeleteUser)
}

// UserView is the account shape returned to clients.
type UserView struct {
	ID       int        `json:"id"`
	Username string     `json:"username"`
	Email    string     `json:"email"`
	Role     types.Role `json:"role"`
}

func newUserView(u types.User) UserView {
	return UserView{ID: u.ID, Username: u.Username, Email: u.Email, Role: u.Role}
}

type LoginResponse struct {
	Token string   `json:"token"`
	User  UserView `json:"user"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	creds, err := h.validator.Login(body(w, r).Body)
	if err != nil {
		h.errors.respond(w, r, err, "", msgInternalError)
		return
	}

	token, user, err := h.auth.Login(r.Context(), creds, clientIP(r))
	if err != nil {
		h.errors.respond(w, r, err, "", msgInternalError)
		return
	}

	writeData(w, http.StatusOK, "Login successful", LoginResponse{Token: token, User: newUserView(user)})
}

func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	user, _ := currentUser(r.Context())
	writeData(w, http.StatusOK, "", user)
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	in, err := h.validator.Register(body(w, r).Body)
	if err != nil {
		h.errors.respond(w, r, err, "", msgDatabaseError)
		return
	}

	user, err := h.users.Register(r.Context(), in)
	if err != nil {
		h.errors.respond(w, r, err, "", msgDatabaseError)
		return
	}

	writeData(w, http.StatusCreated, "User registered successfully", newUserView(user))
}

func (h *AuthHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.ListActive(r.Context())
	if err != nil {
		h.errors.respond(w, r, err, "", msgDatabaseError)
		return
	}
	writeData(w, http.StatusOK, "", users)
}

func (h *AuthHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid user id")
		return
	}

	in, err := h.validator.UserUpdate(body(w, r).Body)
	if err != nil {
		h.errors.respond(w, r, err, "", msgDatabaseError)
		return
	}

	current, _ := currentUser(r.Context())
	user, err := h.users.Update(r.Context(), current.ID, id, in)
	if err != nil {
		h.errors.respond(w, r, err, "User not found", msgDatabaseError)
		return
	}
	writeData(w, http.StatusOK, "User updated successfully", user)
}

// DeleteUser deactivates an account. Its outstanding tokens stop working
// immediately because RequireAuth reloads the user on every request.
func (h *AuthHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid user id")
		return
	}

	current, _ := currentUser(r.Context())
	if err := h.users.Deactivate(r.Context(), current.ID, id); err != nil {
		h.errors.respond(w, r, err, "User not found", msgDatabaseError)
		return
	}
	writeData(w, http.StatusOK, "User deactivated successfully", nil)
}

func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	in, err := h.validator.ChangePassword(body(w, r).Body)
	if err != nil {
		h.errors.respond(w, r, err, "", msgDatabaseError)
		return
	}

	current, _ := currentUser(r.Context())
	if err := h.users.ChangePassword(r.Context(), current.ID, in); err != nil {
		h.errors.respond(w, r, err, "User not found", msgDatabaseError)
		return
	}
	writeData(w, http.StatusOK, "Password changed successfully", nil)
}
