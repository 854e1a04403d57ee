package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/brgy-records/apiserver/internal/export"
	"github.com/brgy-records/apiserver/internal/validation"
	"github.com/brgy-records/apiserver/types"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// RecordManager is the records use-case layer.
type RecordManager interface {
	CreateResidentDetails(ctx context.Context, details types.ResidentDetails, actor *types.User) (types.ResidentDetails, error)
	CreateKasambahay(ctx context.Context, k types.Kasambahay, actor *types.User) (types.Kasambahay, error)
	CreateInhabitant(ctx context.Context, inhabitant types.Inhabitant, actor *types.User) (types.Inhabitant, error)
	CreateBusinessPermit(ctx context.Context, permit types.BusinessPermit, actor *types.User) (types.BusinessPermit, error)
	RecordPayment(ctx context.Context, id int, payment types.PermitPayment) (types.BusinessPermit, error)
	UpdateInhabitant(ctx context.Context, id int, inhabitant types.Inhabitant) (types.Inhabitant, error)
	DeleteInhabitant(ctx context.Context, id int) error
	Household(ctx context.Context, householdNo string) ([]types.Inhabitant, error)
	Get(ctx context.Context, recordType types.RecordType, id int) (any, error)
	Feed(ctx context.Context, search string, limit int) ([]types.RecordSummary, error)
	Stats(ctx context.Context) (types.DashboardStats, error)
	ListResidents(ctx context.Context, search string, offset, limit int) ([]types.Inhabitant, int, error)
	ResidentHistory(ctx context.Context, id int) (types.ResidentHistory, error)
	Export(ctx context.Context, recordType types.RecordType) (export.Sheet, error)
	Today() types.Date
}

// RecordHandler serves record submission, lookup and reporting.
type RecordHandler struct {
	records   RecordManager
	validator *validation.Validator
	errors    errorResponder
}

func NewRecordHandler(records RecordManager, validator *validation.Validator, logger *zap.Logger) *RecordHandler {
	return &RecordHandler{
		records:   records,
		validator: validator,
		errors:    errorResponder{logger: logger},
	}
}

// RecordRouter registers record routes on the /api router.
func RecordRouter(r chi.Router, handler *RecordHandler, requireAuth, optionalAuth func(http.Handler) http.Handler) {
	r.With(optionalAuth).Post("/personal-details", handler.CreateResidentDetails)
	r.With(optionalAuth).Post("/kasambahay-registration", handler.CreateKasambahay)
	r.With(optionalAuth).Post("/business-permit", handler.CreateBusinessPermit)
	r.With(requireAuth).Put("/business-permit/{id}/payment", handler.RecordPayment)

	r.With(requireAuth).Post("/barangay-inhabitants", handler.CreateInhabitant)
	r.With(requireAuth).Put("/barangay-inhabitants/{id}", handler.UpdateInhabitant)
	r.With(requireAuth).Delete("/barangay-inhabitants/{id}", handler.DeleteInhabitant)
	r.With(requireAuth).Get("/barangay-inhabitants/household/{householdNo}", handler.Household)

	r.With(optionalAuth).Get("/records", handler.Feed)
	r.With(requireAuth).Get("/records/export", handler.Export)
	r.With(requireAuth).Get("/records/{type}/{id}", handler.GetRecord)
	r.Get("/stats", handler.Stats)

	r.With(requireAuth).Get("/residents", handler.ListResidents)
	r.With(requireAuth).Get("/residents/{id}", handler.GetResident)
}

// CreatedResponse is the data of a successful submission.
type CreatedResponse struct {
	ID            int    `json:"id"`
	ControlNumber string `json:"control_number,omitempty"`
}

func (h *RecordHandler) CreateResidentDetails(w http.ResponseWriter, r *http.Request) {
	var role types.Role
	if user, ok := currentUser(r.Context()); ok {
		role = user.Role
	}
	schema := validation.SelectSchema(role, types.RecordPersonal)

	details, err := h.validator.ResidentDetails(body(w, r).Body, schema)
	if err != nil {
		h.errors.respond(w, r, err, "", msgDatabaseError)
		return
	}

	created, err := h.records.CreateResidentDetails(r.Context(), details, actor(r.Context()))
	if err != nil {
		h.errors.respond(w, r, err, "", msgDatabaseError)
		return
	}
	writeData(w, http.StatusCreated, "Personal details submitted successfully", CreatedResponse{ID: created.ID})
}

func (h *RecordHandler) CreateKasambahay(w http.ResponseWriter, r *http.Request) {
	k, err := h.validator.Kasambahay(body(w, r).Body)
	if err != nil {
		h.errors.respond(w, r, err, "", msgDatabaseError)
		return
	}

	created, err := h.records.CreateKasambahay(r.Context(), k, actor(r.Context()))
	if err != nil {
		h.errors.respond(w, r, err, "", msgDatabaseError)
		return
	}
	writeData(w, http.StatusCreated, "Kasambahay registration submitted successfully", CreatedResponse{ID: created.ID})
}

func (h *RecordHandler) CreateInhabitant(w http.ResponseWriter, r *http.Request) {
	inhabitant, err := h.validator.Inhabitant(body(w, r).Body)
	if err != nil {
		h.errors.respond(w, r, err, "", msgDatabaseError)
		return
	}

	created, err := h.records.CreateInhabitant(r.Context(), inhabitant, actor(r.Context()))
	if err != nil {
		h.errors.respond(w, r, err, "", msgDatabaseError)
		return
	}
	writeData(w, http.StatusCreated, "Inhabitant registered successfully", CreatedResponse{ID: created.ID})
}

func (h *RecordHandler) CreateBusinessPermit(w http.ResponseWriter, r *http.Request) {
	permit, err := h.validator.BusinessPermit(body(w, r).Body)
	if err != nil {
		h.errors.respond(w, r, err, "", msgDatabaseError)
		return
	}

	created, err := h.records.CreateBusinessPermit(r.Context(), permit, actor(r.Context()))
	if err != nil {
		h.errors.respond(w, r, err, "", msgDatabaseError)
		return
	}
	writeData(w, http.StatusCreated, "Business permit application submitted successfully", CreatedResponse{
		ID:            created.ID,
		ControlNumber: created.ControlNumber,
	})
}

func (h *RecordHandler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid business permit id")
		return
	}

	payment, err := h.validator.Payment(body(w, r).Body)
	if err != nil {
		h.errors.respond(w, r, err, "", msgDatabaseError)
		return
	}

	permit, err := h.records.RecordPayment(r.Context(), id, payment)
	if err != nil {
		h.errors.respond(w, r, err, "Business permit not found", msgDatabaseError)
		return
	}
	writeData(w, http.StatusOK, "Payment recorded successfully", permit)
}

func (h *RecordHandler) UpdateInhabitant(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid inhabitant id")
		return
	}

	inhabitant, err := h.validator.Inhabitant(body(w, r).Body)
	if err != nil {
		h.errors.respond(w, r, err, "", msgDatabaseError)
		return
	}

	updated, err := h.records.UpdateInhabitant(r.Context(), id, inhabitant)
	if err != nil {
		h.errors.respond(w, r, err, "Inhabitant not found", msgDatabaseError)
		return
	}
	writeData(w, http.StatusOK, "Inhabitant updated successfully", updated)
}

// DeleteInhabitant removes an RBI row. Records that referenced it keep
// their data with a cleared resident_id.
func (h *RecordHandler) DeleteInhabitant(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid inhabitant id")
		return
	}

	if err := h.records.DeleteInhabitant(r.Context(), id); err != nil {
		h.errors.respond(w, r, err, "Inhabitant not found", msgDatabaseError)
		return
	}
	writeData(w, http.StatusOK, "Inhabitant deleted successfully", nil)
}

func (h *RecordHandler) Household(w http.ResponseWriter, r *http.Request) {
	householdNo := strings.TrimSpace(chi.URLParam(r, "householdNo"))
	if householdNo == "" {
		writeError(w, http.StatusBadRequest, "Invalid household number")
		return
	}

	members, err := h.records.Household(r.Context(), householdNo)
	if err != nil {
		h.errors.respond(w, r, err, "Household not found", msgDatabaseError)
		return
	}
	writeData(w, http.StatusOK, "", members)
}

// Feed lists the newest records of every type, or the matches of ?search=.
// A missing or malformed limit falls back to the default.
func (h *RecordHandler) Feed(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	limit, _ := strconv.Atoi(strings.TrimSpace(query.Get("limit")))

	feed, err := h.records.Feed(r.Context(), query.Get("search"), limit)
	if err != nil {
		h.errors.respond(w, r, err, "", msgDatabaseError)
		return
	}
	writeData(w, http.StatusOK, "", feed)
}

func (h *RecordHandler) GetRecord(w http.ResponseWriter, r *http.Request) {
	recordType, ok := types.ParseRecordType(chi.URLParam(r, "type"))
	if !ok {
		writeError(w, http.StatusBadRequest, "Unknown record type")
		return
	}
	id, err := parseID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid record id")
		return
	}

	record, err := h.records.Get(r.Context(), recordType, id)
	if err != nil {
		h.errors.respond(w, r, err, "Record not found", msgDatabaseError)
		return
	}
	writeData(w, http.StatusOK, "", record)
}

func (h *RecordHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.records.Stats(r.Context())
	if err != nil {
		h.errors.respond(w, r, err, "", msgDatabaseError)
		return
	}
	writeData(w, http.StatusOK, "", stats)
}

// Export downloads every record of ?type= as a spreadsheet.
func (h *RecordHandler) Export(w http.ResponseWriter, r *http.Request) {
	recordType, ok := types.ParseRecordType(r.URL.Query().Get("type"))
	if !ok {
		writeError(w, http.StatusBadRequest, "Unknown record type")
		return
	}

	sheet, err := h.records.Export(r.Context(), recordType)
	if err != nil {
		h.errors.respond(w, r, err, "", msgDatabaseError)
		return
	}
	data, err := export.WriteXLSX(sheet)
	if err != nil {
		h.errors.respond(w, r, err, "", msgInternalError)
		return
	}

	filename := export.Filename(recordType, h.records.Today())
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (h *RecordHandler) ListResidents(w http.ResponseWriter, r *http.Request) {
	page, limit, offset, err := parsePagination(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid pagination parameters")
		return
	}

	items, total, err := h.records.ListResidents(r.Context(), r.URL.Query().Get("search"), offset, limit)
	if err != nil {
		h.errors.respond(w, r, err, "", msgDatabaseError)
		return
	}
	writeData(w, http.StatusOK, "", Page[types.Inhabitant]{
		Items: items,
		Total: total,
		Page:  page,
		Limit: limit,
	})
}

func (h *RecordHandler) GetResident(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid resident id")
		return
	}

	history, err := h.records.ResidentHistory(r.Context(), id)
	if err != nil {
		h.errors.respond(w, r, err, "Resident not found", msgDatabaseError)
		return
	}
	writeData(w, http.StatusOK, "", history)
}
