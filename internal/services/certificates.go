package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/brgy-records/apiserver/internal/certificate"
	"github.com/brgy-records/apiserver/internal/render"
	"github.com/brgy-records/apiserver/internal/storage"
	"github.com/brgy-records/apiserver/internal/validation"
	"github.com/brgy-records/apiserver/types"
	"go.uber.org/zap"
)

var (
	ErrUnsupportedSource = errors.New("certificates are issued from rbi or personal records")
	ErrArchiveDisabled   = errors.New("certificate archive is not configured")
)

var controlPrefixes = map[types.CertificateType]string{
	types.CertificateResidency:      "RES",
	types.CertificateIndigency:      "IND",
	types.CertificateEmployment:     "EMP",
	types.CertificateBusinessPermit: "BP",
}

type InhabitantGetter interface {
	Get(ctx context.Context, id int) (types.Inhabitant, error)
}

type ResidentDetailsGetter interface {
	Get(ctx context.Context, id int) (types.ResidentDetails, error)
}

// CertificateService plans, assembles, renders and archives certificates.
type CertificateService struct {
	inhabitants InhabitantGetter
	residents   ResidentDetailsGetter
	officials   OfficialRepository
	renderer    render.Renderer
	archive     *storage.Archive
	logger      *zap.Logger
	now         func() time.Time
}

// NewCertificateService wires the dependencies. archive may be nil, in which
// case rendered certificates are not kept.
func NewCertificateService(
	inhabitants InhabitantGetter,
	residents ResidentDetailsGetter,
	officials OfficialRepository,
	renderer render.Renderer,
	archive *storage.Archive,
	logger *zap.Logger,
) *CertificateService {
	return &CertificateService{
		inhabitants: inhabitants,
		residents:   residents,
		officials:   officials,
		renderer:    renderer,
		archive:     archive,
		logger:      logger,
		now:         time.Now,
	}
}

// Source loads the record a certificate is issued from.
func (s *CertificateService) Source(ctx context.Context, recordType types.RecordType, id int) (certificate.Source, error) {
	switch recordType {
	case types.RecordInhabitant:
		inhabitant, err := s.inhabitants.Get(ctx, id)
		if err != nil {
			return certificate.Source{}, err
		}
		return certificate.SourceFromInhabitant(inhabitant), nil
	case types.RecordPersonal:
		details, err := s.residents.Get(ctx, id)
		if err != nil {
			return certificate.Source{}, err
		}
		return certificate.SourceFromResidentDetails(details), nil
	default:
		return certificate.Source{}, ErrUnsupportedSource
	}
}

// Plan reports which fields of kind the record provides and which must be
// collected from the user.
func (s *CertificateService) Plan(ctx context.Context, kind types.CertificateType, recordType types.RecordType, id int) (certificate.Plan, error) {
	source, err := s.Source(ctx, recordType, id)
	if err != nil {
		return certificate.Plan{}, err
	}
	return certificate.PlanFor(kind, source, s.now())
}

// Issue assembles a certificate from the requested source and values and
// assigns its control number.
func (s *CertificateService) Issue(ctx context.Context, kind types.CertificateType, req validation.CertificateRequest) (certificate.Document, error) {
	source := certificate.Source{Values: map[string]string{}}
	if req.Source != "" {
		var err error
		if source, err = s.Source(ctx, req.SourceType(), req.ID); err != nil {
			return certificate.Document{}, err
		}
	}

	officials, err := s.officials.List(ctx)
	if err != nil {
		return certificate.Document{}, err
	}

	now := s.now()
	doc, err := certificate.Assemble(kind, source, req.Values, officials, now)
	if err != nil {
		return certificate.Document{}, err
	}
	doc.ControlNumber = req.ControlNumber
	if doc.ControlNumber == "" {
		doc.ControlNumber = ControlNumber(controlPrefixes[kind], now)
	}
	return doc, nil
}

// Rendered is a certificate PDF and, when archived, its object key.
type Rendered struct {
	PDF        []byte
	ArchiveKey string
}

// Render produces the PDF of doc. An archive failure is logged and does not
// fail the render.
func (s *CertificateService) Render(ctx context.Context, doc certificate.Document) (Rendered, error) {
	html, err := certificate.RenderHTML(doc)
	if err != nil {
		return Rendered{}, err
	}
	pdf, err := s.renderer.RenderPDF(ctx, html)
	if err != nil {
		return Rendered{}, fmt.Errorf("render %s certificate: %w", doc.Kind, err)
	}

	out := Rendered{PDF: pdf}
	if s.archive == nil {
		return out, nil
	}
	key, err := s.archive.SaveCertificate(ctx, doc.Kind, doc.ControlNumber, pdf)
	if err != nil {
		s.logger.Warn("Failed to archive certificate",
			zap.String("kind", string(doc.Kind)),
			zap.String("control_number", doc.ControlNumber),
			zap.Error(err),
		)
		return out, nil
	}
	out.ArchiveKey = key
	return out, nil
}

// OpenArchived streams a previously rendered certificate.
func (s *CertificateService) OpenArchived(ctx context.Context, kind types.CertificateType, controlNumber string) (io.ReadCloser, error) {
	if s.archive == nil {
		return nil, ErrArchiveDisabled
	}
	return s.archive.OpenCertificate(ctx, kind, controlNumber)
}
