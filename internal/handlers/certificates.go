package handlers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/brgy-records/apiserver/internal/certificate"
	"github.com/brgy-records/apiserver/internal/services"
	"github.com/brgy-records/apiserver/internal/validation"
	"github.com/brgy-records/apiserver/types"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const (
	pdfContentType  = "application/pdf"
	msgRenderFailed = "Failed to generate PDF"
)

// CertificateIssuer plans, assembles and renders certificates.
type CertificateIssuer interface {
	Plan(ctx context.Context, kind types.CertificateType, recordType types.RecordType, id int) (certificate.Plan, error)
	Issue(ctx context.Context, kind types.CertificateType, req validation.CertificateRequest) (certificate.Document, error)
	Render(ctx context.Context, doc certificate.Document) (services.Rendered, error)
	OpenArchived(ctx context.Context, kind types.CertificateType, controlNumber string) (io.ReadCloser, error)
}

type CertificateHandler struct {
	certificates CertificateIssuer
	validator    *validation.Validator
	errors       errorResponder
}

func NewCertificateHandler(certificates CertificateIssuer, validator *validation.Validator, logger *zap.Logger) *CertificateHandler {
	return &CertificateHandler{
		certificates: certificates,
		validator:    validator,
		errors:       errorResponder{logger: logger},
	}
}

// CertificateRouter registers certificate routes on the /api router.
func CertificateRouter(r chi.Router, handler *CertificateHandler, requireAuth, optionalAuth func(http.Handler) http.Handler) {
	r.With(optionalAuth).Post("/business-permit/generate-pdf", handler.BusinessPermitPDF)

	r.With(requireAuth).Get("/certificates/{kind}/plan", handler.Plan)
	r.With(requireAuth).Post("/certificates/{kind}", handler.Issue)
	r.With(requireAuth).Get("/certificates/{kind}/{controlNumber}/pdf", handler.Archived)
}

// Plan reports which template fields the record at ?source=&id= provides
// and which must be collected.
func (h *CertificateHandler) Plan(w http.ResponseWriter, r *http.Request) {
	kind, ok := certificate.ParseKind(chi.URLParam(r, "kind"))
	if !ok {
		writeError(w, http.StatusNotFound, "Unknown certificate type")
		return
	}
	query := r.URL.Query()
	recordType, ok := types.ParseRecordType(query.Get("source"))
	if !ok {
		writeError(w, http.StatusBadRequest, "Unknown record type")
		return
	}
	id, err := strconv.Atoi(query.Get("id"))
	if err != nil || id < 1 {
		writeError(w, http.StatusBadRequest, "Invalid record id")
		return
	}

	plan, err := h.certificates.Plan(r.Context(), kind, recordType, id)
	if err != nil {
		h.errors.respond(w, r, err, "Record not found", msgDatabaseError)
		return
	}
	writeData(w, http.StatusOK, "", plan)
}

// Issue assembles a certificate. With ?format=pdf the rendered PDF is
// returned instead of the JSON document.
func (h *CertificateHandler) Issue(w http.ResponseWriter, r *http.Request) {
	kind, ok := certificate.ParseKind(chi.URLParam(r, "kind"))
	if !ok {
		writeError(w, http.StatusNotFound, "Unknown certificate type")
		return
	}

	req, err := h.validator.Certificate(body(w, r).Body)
	if err != nil {
		h.errors.respond(w, r, err, "", msgDatabaseError)
		return
	}

	doc, err := h.certificates.Issue(r.Context(), kind, req)
	if err != nil {
		h.errors.respond(w, r, err, "Record not found", msgDatabaseError)
		return
	}

	if r.URL.Query().Get("format") != "pdf" {
		writeData(w, http.StatusOK, "Certificate assembled successfully", doc)
		return
	}
	h.renderPDF(w, r, doc)
}

// BusinessPermitPDF renders the business permit clearance from the posted
// field values.
func (h *CertificateHandler) BusinessPermitPDF(w http.ResponseWriter, r *http.Request) {
	values, err := h.validator.BusinessPermitPDF(body(w, r).Body)
	if err != nil {
		h.errors.respond(w, r, err, "", msgRenderFailed)
		return
	}

	req := validation.CertificateRequest{
		ControlNumber: values["control_number"],
		Values:        values,
	}
	if err := h.validator.Struct(&req); err != nil {
		h.errors.respond(w, r, err, "", msgRenderFailed)
		return
	}

	doc, err := h.certificates.Issue(r.Context(), types.CertificateBusinessPermit, req)
	if err != nil {
		h.errors.respond(w, r, err, "", msgRenderFailed)
		return
	}
	h.renderPDF(w, r, doc)
}

// Archived streams a certificate rendered earlier.
func (h *CertificateHandler) Archived(w http.ResponseWriter, r *http.Request) {
	kind, ok := certificate.ParseKind(chi.URLParam(r, "kind"))
	if !ok {
		writeError(w, http.StatusNotFound, "Unknown certificate type")
		return
	}
	controlNumber := chi.URLParam(r, "controlNumber")

	rc, err := h.certificates.OpenArchived(r.Context(), kind, controlNumber)
	if err != nil {
		h.errors.respond(w, r, err, "Certificate not found", msgInternalError)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", pdfContentType)
	w.Header().Set("Content-Disposition", attachment(kind, controlNumber))
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, rc); err != nil {
		h.errors.logger.Warn("Failed to stream archived certificate",
			zap.String("kind", string(kind)),
			zap.String("control_number", controlNumber),
			zap.Error(err),
		)
	}
}

func (h *CertificateHandler) renderPDF(w http.ResponseWriter, r *http.Request, doc certificate.Document) {
	rendered, err := h.certificates.Render(r.Context(), doc)
	if err != nil {
		h.errors.respond(w, r, err, "", msgRenderFailed)
		return
	}

	w.Header().Set("Content-Type", pdfContentType)
	w.Header().Set("Content-Disposition", attachment(doc.Kind, doc.ControlNumber))
	w.Header().Set("Content-Length", strconv.Itoa(len(rendered.PDF)))
	w.Header().Set("X-Control-Number", doc.ControlNumber)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(rendered.PDF)
}

func attachment(kind types.CertificateType, controlNumber string) string {
	return fmt.Sprintf("attachment; filename=%q", fmt.Sprintf("%s-%s.pdf", kind, controlNumber))
}
