package handlers

import (
	"context"
	"net/http"

	"github.com/brgy-records/apiserver/internal/validation"
	"github.com/brgy-records/apiserver/types"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type OfficialManager interface {
	List(ctx context.Context) ([]types.Official, error)
	Update(ctx context.Context, id int, official types.Official) (types.Official, error)
}

// OfficialHandler edits the council printed on certificate letterheads.
type OfficialHandler struct {
	officials OfficialManager
	validator *validation.Validator
	errors    errorResponder
}

func NewOfficialHandler(officials OfficialManager, validator *validation.Validator, logger *zap.Logger) *OfficialHandler {
	return &OfficialHandler{
		officials: officials,
		validator: validator,
		errors:    errorResponder{logger: logger},
	}
}

func OfficialRouter(r chi.Router, handler *OfficialHandler, requireAuth func(http.Handler) http.Handler) {
	r.With(requireAuth).Get("/", handler.List)
	r.With(requireAuth, RequireRole(types.RoleAdmin)).Put("/{id}", handler.Update)
}

func (h *OfficialHandler) List(w http.ResponseWriter, r *http.Request) {
	officials, err := h.officials.List(r.Context())
	if err != nil {
		h.errors.respond(w, r, err, "", msgDatabaseError)
		return
	}
	writeData(w, http.StatusOK, "", officials)
}

func (h *OfficialHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid official id")
		return
	}

	official, err := h.validator.Official(body(w, r).Body)
	if err != nil {
		h.errors.respond(w, r, err, "", msgDatabaseError)
		return
	}

	updated, err := h.officials.Update(r.Context(), id, official)
	if err != nil {
		h.errors.respond(w, r, err, "Official not found", msgDatabaseError)
		return
	}
	writeData(w, http.StatusOK, "Official updated successfully", updated)
}
