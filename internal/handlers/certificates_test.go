package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/brgy-records/apiserver/internal/certificate"
	"github.com/brgy-records/apiserver/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBusinessPermitPDF(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodPost, "/api/business-permit/generate-pdf", "", `{
		"business_name": "Nena Store",
		"proprietor_name": "Nena Santos",
		"control_number": "BP-2024-0A1B2C3D"
	}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="business-permit-BP-2024-0A1B2C3D.pdf"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "%PDF-1.7 BP-2024-0A1B2C3D", rec.Body.String())

	require.Len(t, api.certificates.issued, 1)
	assert.Equal(t, "BP-2024-0A1B2C3D", api.certificates.issued[0].ControlNumber)
	assert.Empty(t, api.certificates.issued[0].Source)
}

func TestBusinessPermitPDFMissingFields(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodPost, "/api/business-permit/generate-pdf", "", `{"proprietor_name": "Nena Santos"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeEnvelope(t, rec)
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, "business_name", resp.Errors[0].Field)
	assert.Equal(t, "is required", resp.Errors[0].Message)
}

func TestBusinessPermitPDFRejectsBadControlNumber(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodPost, "/api/business-permit/generate-pdf", "", `{"business_name": "Nena Store", "control_number": "../etc/passwd"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.True(t, decodeEnvelope(t, rec).hasError("control_number"))
	assert.Empty(t, api.certificates.issued)
}

func TestBusinessPermitPDFRenderFailure(t *testing.T) {
	api := newTestAPI(t)
	api.certificates.renderErr = errors.New("chromium exited")

	rec := api.do(t, http.MethodPost, "/api/business-permit/generate-pdf", "", `{"business_name": "Nena Store"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Failed to generate PDF", decodeEnvelope(t, rec).Message)
}

func TestCertificatePlan(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/api/certificates/residency/plan?source=rbi&id=1", "staff-token", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var plan certificate.Plan
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &plan))
	assert.Equal(t, types.CertificateResidency, plan.Kind)
	assert.Equal(t, []string{"purpose"}, plan.Missing)

	rec = api.do(t, http.MethodGet, "/api/certificates/residency/plan?source=rbi&id=2", "staff-token", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = api.do(t, http.MethodGet, "/api/certificates/cedula/plan?source=rbi&id=1", "staff-token", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = api.do(t, http.MethodGet, "/api/certificates/residency/plan?source=rbi", "staff-token", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestIssueCertificate(t *testing.T) {
	api := newTestAPI(t)
	payload := `{"values": {"business_name": "Nena Store"}}`

	rec := api.do(t, http.MethodPost, "/api/certificates/business-permit", "staff-token", payload)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var doc certificate.Document
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &doc))
	assert.Equal(t, "BP-2024-FFFF0000", doc.ControlNumber)

	rec = api.do(t, http.MethodPost, "/api/certificates/business-permit?format=pdf", "staff-token", payload)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Equal(t, "BP-2024-FFFF0000", rec.Header().Get("X-Control-Number"))

	rec = api.do(t, http.MethodPost, "/api/certificates/business-permit", "", payload)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestArchivedCertificate(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/api/certificates/business-permit/BP-2024-0A1B2C3D/pdf", "staff-token", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "%PDF-1.7 archived", rec.Body.String())

	rec = api.do(t, http.MethodGet, "/api/certificates/business-permit/BP-2024-00000000/pdf", "staff-token", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Certificate not found", decodeEnvelope(t, rec).Message)
}
