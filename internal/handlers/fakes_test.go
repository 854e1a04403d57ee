package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/brgy-records/apiserver/internal/certificate"
	"github.com/brgy-records/apiserver/internal/export"
	"github.com/brgy-records/apiserver/internal/services"
	"github.com/brgy-records/apiserver/internal/store"
	"github.com/brgy-records/apiserver/internal/validation"
	"github.com/brgy-records/apiserver/types"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var (
	adminUser = types.User{ID: 1, Username: "admin", Email: "admin@brgy.test", Role: types.RoleAdmin, IsActive: true}
	staffUser = types.User{ID: 2, Username: "clerk", Email: "clerk@brgy.test", Role: types.RoleStaff, IsActive: true}
)

type tokenResult struct {
	user types.User
	err  error
}

// fakeAuth maps bearer tokens to users or errors.
type fakeAuth struct {
	tokens map[string]tokenResult
	login  func(creds validation.Credentials, remoteAddr string) (string, types.User, error)
}

func newFakeAuth() *fakeAuth {
	return &fakeAuth{tokens: map[string]tokenResult{
		"admin-token":   {user: adminUser},
		"staff-token":   {user: staffUser},
		"expired-token": {err: services.ErrTokenExpired},
		"forged-token":  {err: services.ErrInvalidToken},
	}}
}

func (f *fakeAuth) Authenticate(_ context.Context, token string) (types.User, error) {
	result, ok := f.tokens[token]
	if !ok {
		return types.User{}, services.ErrInvalidToken
	}
	return result.user, result.err
}

func (f *fakeAuth) Login(_ context.Context, creds validation.Credentials, remoteAddr string) (string, types.User, error) {
	return f.login(creds, remoteAddr)
}

type fakeUsers struct {
	UserManager
	deactivated []int
	updated     []int
}

func (f *fakeUsers) Update(_ context.Context, actorID, id int, in validation.UserUpdate) (types.User, error) {
	if actorID == id {
		if in.IsActive != nil && !*in.IsActive {
			return types.User{}, services.ErrSelfDelete
		}
		if in.Role != nil && *in.Role != types.RoleAdmin {
			return types.User{}, services.ErrSelfDemote
		}
	}
	if id > 100 {
		return types.User{}, store.ErrNotFound
	}
	user := staffUser
	user.ID = id
	if in.IsActive != nil {
		user.IsActive = *in.IsActive
	}
	f.updated = append(f.updated, id)
	return user, nil
}

func (f *fakeUsers) Deactivate(_ context.Context, actorID, id int) error {
	if actorID == id {
		return services.ErrSelfDelete
	}
	if id > 100 {
		return store.ErrNotFound
	}
	f.deactivated = append(f.deactivated, id)
	return nil
}

func (f *fakeUsers) Register(_ context.Context, in validation.Registration) (types.User, error) {
	if in.Username == adminUser.Username {
		return types.User{}, services.ErrUsernameTaken
	}
	return types.User{ID: 3, Username: in.Username, Email: in.Email, Role: in.Role, IsActive: true}, nil
}

// fakeRecords implements the calls the record tests make; anything else
// panics through the nil embedded interface.
type fakeRecords struct {
	RecordManager
	residents []types.ResidentDetails
	actors    []*types.User
	permits   map[int]types.BusinessPermit
	stats     types.DashboardStats
	sheet     export.Sheet
	err       error
}

func newFakeRecords() *fakeRecords {
	return &fakeRecords{permits: map[int]types.BusinessPermit{}}
}

func (f *fakeRecords) CreateResidentDetails(_ context.Context, details types.ResidentDetails, actor *types.User) (types.ResidentDetails, error) {
	if f.err != nil {
		return types.ResidentDetails{}, f.err
	}
	details.ID = len(f.residents) + 1
	f.residents = append(f.residents, details)
	f.actors = append(f.actors, actor)
	return details, nil
}

func (f *fakeRecords) CreateBusinessPermit(_ context.Context, permit types.BusinessPermit, _ *types.User) (types.BusinessPermit, error) {
	permit.ID = len(f.permits) + 1
	permit.ControlNumber = "BP-2024-0A1B2C3D"
	f.permits[permit.ID] = permit
	return permit, nil
}

func (f *fakeRecords) Get(_ context.Context, recordType types.RecordType, id int) (any, error) {
	if recordType != types.RecordBusinessPermit {
		return nil, store.ErrNotFound
	}
	permit, ok := f.permits[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return permit, nil
}

func (f *fakeRecords) Stats(context.Context) (types.DashboardStats, error) {
	return f.stats, f.err
}

func (f *fakeRecords) Export(_ context.Context, recordType types.RecordType) (export.Sheet, error) {
	return f.sheet, f.err
}

func (f *fakeRecords) Today() types.Date {
	return types.NewDate(time.Date(2024, 10, 17, 0, 0, 0, 0, time.UTC))
}

type fakeCertificates struct {
	issued    []validation.CertificateRequest
	renderErr error
}

func (f *fakeCertificates) Plan(_ context.Context, kind types.CertificateType, recordType types.RecordType, id int) (certificate.Plan, error) {
	if id != 1 {
		return certificate.Plan{}, store.ErrNotFound
	}
	return certificate.Plan{Kind: kind, Missing: []string{certificate.FieldPurpose}}, nil
}

func (f *fakeCertificates) Issue(_ context.Context, kind types.CertificateType, req validation.CertificateRequest) (certificate.Document, error) {
	f.issued = append(f.issued, req)
	if req.Values["business_name"] == "" {
		return certificate.Document{}, &certificate.MissingFieldsError{Fields: []string{"business_name"}}
	}
	control := req.ControlNumber
	if control == "" {
		control = "BP-2024-FFFF0000"
	}
	return certificate.Document{Kind: kind, ControlNumber: control, Fields: req.Values}, nil
}

func (f *fakeCertificates) Render(_ context.Context, doc certificate.Document) (services.Rendered, error) {
	if f.renderErr != nil {
		return services.Rendered{}, f.renderErr
	}
	return services.Rendered{PDF: []byte("%PDF-1.7 " + doc.ControlNumber)}, nil
}

func (f *fakeCertificates) OpenArchived(_ context.Context, kind types.CertificateType, controlNumber string) (io.ReadCloser, error) {
	if controlNumber != "BP-2024-0A1B2C3D" {
		return nil, store.ErrNotFound
	}
	return io.NopCloser(strings.NewReader("%PDF-1.7 archived")), nil
}

type testAPI struct {
	router       chi.Router
	auth         *fakeAuth
	users        *fakeUsers
	records      *fakeRecords
	certificates *fakeCertificates
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	api := &testAPI{
		auth:         newFakeAuth(),
		users:        &fakeUsers{},
		records:      newFakeRecords(),
		certificates: &fakeCertificates{},
	}

	logger := zap.NewNop()
	v := validation.New()
	requireAuth := RequireAuth(api.auth, logger)
	optionalAuth := OptionalAuth(api.auth)

	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			AuthRouter(r, NewAuthHandler(api.auth, api.users, v, logger), requireAuth)
		})
		RecordRouter(r, NewRecordHandler(api.records, v, logger), requireAuth, optionalAuth)
		CertificateRouter(r, NewCertificateHandler(api.certificates, v, logger), requireAuth, optionalAuth)
	})
	api.router = r
	return api
}

func (api *testAPI) do(t *testing.T, method, path, token string, payload string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if payload != "" {
		reader = bytes.NewBufferString(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if payload != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	api.router.ServeHTTP(rec, req)
	return rec
}

type envelope struct {
	Success bool                    `json:"success"`
	Message string                  `json:"message"`
	Data    json.RawMessage         `json:"data"`
	Errors  []validation.FieldError `json:"errors"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var resp envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return resp
}

func (e envelope) hasError(field string) bool {
	for _, f := range e.Errors {
		if f.Field == field {
			return true
		}
	}
	return false
}
