package handlers

import (
	"errors"
	"net/http"

	"github.com/brgy-records/apiserver/internal/certificate"
	"github.com/brgy-records/apiserver/internal/services"
	"github.com/brgy-records/apiserver/internal/storage"
	"github.com/brgy-records/apiserver/internal/store"
	"github.com/brgy-records/apiserver/internal/validation"
	"go.uber.org/zap"
)

const (
	msgDatabaseError = "Database error occurred"
	msgInternalError = "Internal server error"
)

// errorResponder translates errors into the response taxonomy: validation
// 400, not found 404, conflicts 400 with a specific message, and everything
// else a logged, generic 500.
type errorResponder struct {
	logger *zap.Logger
}

// respond writes err. notFound names the missing thing; fallback is the 500
// message for unexpected errors.
func (e errorResponder) respond(w http.ResponseWriter, r *http.Request, err error, notFound, fallback string) {
	var validationErrs *validation.Errors
	if errors.As(err, &validationErrs) {
		writeValidation(w, validationErrs)
		return
	}

	var missing *certificate.MissingFieldsError
	if errors.As(err, &missing) {
		errs := &validation.Errors{}
		for _, field := range missing.Fields {
			errs.Add(field, "is required")
		}
		writeValidation(w, errs)
		return
	}

	switch {
	case errors.Is(err, store.ErrNotFound), errors.Is(err, storage.ErrNotFound):
		writeError(w, http.StatusNotFound, notFound)
	case errors.Is(err, store.ErrInvalidReference):
		writeError(w, http.StatusBadRequest, "Referenced resident does not exist")
	case errors.Is(err, services.ErrUsernameTaken):
		writeError(w, http.StatusBadRequest, "Username already exists")
	case errors.Is(err, services.ErrEmailTaken):
		writeError(w, http.StatusBadRequest, "Email already exists")
	case errors.Is(err, services.ErrSelfDelete):
		writeError(w, http.StatusBadRequest, "You cannot delete your own account")
	case errors.Is(err, services.ErrSelfDemote):
		writeError(w, http.StatusBadRequest, "You cannot change your own role")
	case errors.Is(err, services.ErrWrongPassword):
		writeError(w, http.StatusBadRequest, "Current password is incorrect")
	case errors.Is(err, services.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "Invalid username or password")
	case errors.Is(err, services.ErrTooManyAttempts):
		writeError(w, http.StatusTooManyRequests, "Too many login attempts, try again later")
	case errors.Is(err, services.ErrUnknownRecordType):
		writeError(w, http.StatusBadRequest, "Unknown record type")
	case errors.Is(err, store.ErrConflict):
		writeError(w, http.StatusBadRequest, "Record already exists")
	case errors.Is(err, services.ErrUnsupportedSource):
		writeError(w, http.StatusBadRequest, "Certificates can only be issued from rbi or personal records")
	case errors.Is(err, storage.ErrInvalidKey):
		writeError(w, http.StatusBadRequest, "Invalid control number")
	case errors.Is(err, services.ErrArchiveDisabled):
		writeError(w, http.StatusNotFound, "Certificate archive is not configured")
	default:
		e.logger.Error("Request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		writeError(w, http.StatusInternalServerError, fallback)
	}
}
