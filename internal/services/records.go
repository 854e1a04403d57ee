package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/brgy-records/apiserver/internal/export"
	"github.com/brgy-records/apiserver/internal/mq"
	"github.com/brgy-records/apiserver/types"
	"github.com/google/uuid"
)

const (
	defaultFeedLimit = 10
	maxFeedLimit     = 100
)

// ErrUnknownRecordType is returned for a record type with no repository.
var ErrUnknownRecordType = errors.New("unknown record type")

type InhabitantRepository interface {
	Get(ctx context.Context, id int) (types.Inhabitant, error)
	Create(ctx context.Context, inhabitant types.Inhabitant) (types.Inhabitant, error)
	Update(ctx context.Context, id int, inhabitant types.Inhabitant) (types.Inhabitant, error)
	Delete(ctx context.Context, id int) error
	List(ctx context.Context, search string, offset, limit int) ([]types.Inhabitant, int, error)
	ListAll(ctx context.Context) ([]types.Inhabitant, error)
	Household(ctx context.Context, householdNo string) ([]types.Inhabitant, error)
	Recent(ctx context.Context, limit int) ([]types.RecordSummary, error)
	SearchByName(ctx context.Context, term string, limit int) ([]types.RecordSummary, error)
	Stats(ctx context.Context) (types.InhabitantStats, error)
}

type ResidentDetailsRepository interface {
	Get(ctx context.Context, id int) (types.ResidentDetails, error)
	Create(ctx context.Context, details types.ResidentDetails) (types.ResidentDetails, error)
	ListByResident(ctx context.Context, residentID int) ([]types.ResidentDetails, error)
	ListAll(ctx context.Context) ([]types.ResidentDetails, error)
	Recent(ctx context.Context, limit int) ([]types.RecordSummary, error)
	SearchByName(ctx context.Context, term string, limit int) ([]types.RecordSummary, error)
	Stats(ctx context.Context) (types.ResidentDetailsStats, error)
}

type KasambahayRepository interface {
	Get(ctx context.Context, id int) (types.Kasambahay, error)
	Create(ctx context.Context, k types.Kasambahay) (types.Kasambahay, error)
	ListByResident(ctx context.Context, residentID int) ([]types.Kasambahay, error)
	ListAll(ctx context.Context) ([]types.Kasambahay, error)
	Recent(ctx context.Context, limit int) ([]types.RecordSummary, error)
	SearchByEmployer(ctx context.Context, term string, limit int) ([]types.RecordSummary, error)
	Stats(ctx context.Context) (types.KasambahayStats, error)
}

type BusinessPermitRepository interface {
	Get(ctx context.Context, id int) (types.BusinessPermit, error)
	Create(ctx context.Context, b types.BusinessPermit) (types.BusinessPermit, error)
	RecordPayment(ctx context.Context, id int, payment types.PermitPayment) (types.BusinessPermit, error)
	ListByResident(ctx context.Context, residentID int) ([]types.BusinessPermit, error)
	ListAll(ctx context.Context) ([]types.BusinessPermit, error)
	Recent(ctx context.Context, limit int) ([]types.RecordSummary, error)
	SearchByName(ctx context.Context, term string, limit int) ([]types.RecordSummary, error)
	Stats(ctx context.Context) (types.BusinessPermitStats, error)
}

// CreationRecorder counts created records. *metrics.Metrics satisfies it.
type CreationRecorder interface {
	RecordCreated(recordType string)
}

type RecordRepositories struct {
	Inhabitants     InhabitantRepository
	ResidentDetails ResidentDetailsRepository
	Kasambahay      KasambahayRepository
	BusinessPermits BusinessPermitRepository
}

// RecordService encapsulates the four record types: creation, lookups, the
// dashboard feed and statistics, resident history and exports.
type RecordService struct {
	repos    RecordRepositories
	events   *mq.Publisher
	recorder CreationRecorder
	now      func() time.Time
}

// NewRecordService wires the repositories. events and recorder may be nil.
func NewRecordService(repos RecordRepositories, events *mq.Publisher, recorder CreationRecorder) *RecordService {
	return &RecordService{repos: repos, events: events, recorder: recorder, now: time.Now}
}

func (s *RecordService) created(ctx context.Context, recordType types.RecordType, id int, actor *types.User) {
	if s.recorder != nil {
		s.recorder.RecordCreated(string(recordType))
	}
	s.events.RecordCreated(ctx, recordType, id, actorID(actor))
}

func actorID(actor *types.User) *int {
	if actor == nil {
		return nil
	}
	id := actor.ID
	return &id
}

func (s *RecordService) CreateResidentDetails(ctx context.Context, details types.ResidentDetails, actor *types.User) (types.ResidentDetails, error) {
	details.CreatedBy = actorID(actor)
	created, err := s.repos.ResidentDetails.Create(ctx, details)
	if err != nil {
		return types.ResidentDetails{}, err
	}
	s.created(ctx, types.RecordPersonal, created.ID, actor)
	return created, nil
}

func (s *RecordService) CreateKasambahay(ctx context.Context, k types.Kasambahay, actor *types.User) (types.Kasambahay, error) {
	created, err := s.repos.Kasambahay.Create(ctx, k)
	if err != nil {
		return types.Kasambahay{}, err
	}
	s.created(ctx, types.RecordKasambahay, created.ID, actor)
	return created, nil
}

func (s *RecordService) CreateInhabitant(ctx context.Context, inhabitant types.Inhabitant, actor *types.User) (types.Inhabitant, error) {
	created, err := s.repos.Inhabitants.Create(ctx, inhabitant)
	if err != nil {
		return types.Inhabitant{}, err
	}
	s.created(ctx, types.RecordInhabitant, created.ID, actor)
	return created, nil
}

// CreateBusinessPermit stores an application under a fresh control number.
func (s *RecordService) CreateBusinessPermit(ctx context.Context, permit types.BusinessPermit, actor *types.User) (types.BusinessPermit, error) {
	permit.ControlNumber = ControlNumber("BP", s.now())
	permit.CreatedBy = actorID(actor)
	created, err := s.repos.BusinessPermits.Create(ctx, permit)
	if err != nil {
		return types.BusinessPermit{}, err
	}
	s.created(ctx, types.RecordBusinessPermit, created.ID, actor)
	return created, nil
}

func (s *RecordService) RecordPayment(ctx context.Context, id int, payment types.PermitPayment) (types.BusinessPermit, error) {
	return s.repos.BusinessPermits.RecordPayment(ctx, id, payment)
}

func (s *RecordService) UpdateInhabitant(ctx context.Context, id int, inhabitant types.Inhabitant) (types.Inhabitant, error) {
	return s.repos.Inhabitants.Update(ctx, id, inhabitant)
}

func (s *RecordService) DeleteInhabitant(ctx context.Context, id int) error {
	return s.repos.Inhabitants.Delete(ctx, id)
}

func (s *RecordService) Household(ctx context.Context, householdNo string) ([]types.Inhabitant, error) {
	return s.repos.Inhabitants.Household(ctx, householdNo)
}

// Get returns the record of the given type as its domain struct.
func (s *RecordService) Get(ctx context.Context, recordType types.RecordType, id int) (any, error) {
	switch recordType {
	case types.RecordPersonal:
		return s.repos.ResidentDetails.Get(ctx, id)
	case types.RecordKasambahay:
		return s.repos.Kasambahay.Get(ctx, id)
	case types.RecordInhabitant:
		return s.repos.Inhabitants.Get(ctx, id)
	case types.RecordBusinessPermit:
		return s.repos.BusinessPermits.Get(ctx, id)
	default:
		return nil, ErrUnknownRecordType
	}
}

// Feed merges the newest records of every type, or the matches of search
// when it is not empty, newest first and truncated to limit.
func (s *RecordService) Feed(ctx context.Context, search string, limit int) ([]types.RecordSummary, error) {
	if limit < 1 {
		limit = defaultFeedLimit
	}
	if limit > maxFeedLimit {
		limit = maxFeedLimit
	}
	search = strings.TrimSpace(search)

	type source func(ctx context.Context) ([]types.RecordSummary, error)
	var sources []source
	if search == "" {
		sources = []source{
			func(ctx context.Context) ([]types.RecordSummary, error) { return s.repos.ResidentDetails.Recent(ctx, limit) },
			func(ctx context.Context) ([]types.RecordSummary, error) { return s.repos.Kasambahay.Recent(ctx, limit) },
			func(ctx context.Context) ([]types.RecordSummary, error) { return s.repos.Inhabitants.Recent(ctx, limit) },
			func(ctx context.Context) ([]types.RecordSummary, error) { return s.repos.BusinessPermits.Recent(ctx, limit) },
		}
	} else {
		sources = []source{
			func(ctx context.Context) ([]types.RecordSummary, error) {
				return s.repos.ResidentDetails.SearchByName(ctx, search, limit)
			},
			func(ctx context.Context) ([]types.RecordSummary, error) {
				return s.repos.Kasambahay.SearchByEmployer(ctx, search, limit)
			},
			func(ctx context.Context) ([]types.RecordSummary, error) {
				return s.repos.Inhabitants.SearchByName(ctx, search, limit)
			},
			func(ctx context.Context) ([]types.RecordSummary, error) {
				return s.repos.BusinessPermits.SearchByName(ctx, search, limit)
			},
		}
	}

	feed := make([]types.RecordSummary, 0, limit*len(sources))
	for _, load := range sources {
		items, err := load(ctx)
		if err != nil {
			return nil, err
		}
		feed = append(feed, items...)
	}

	sort.SliceStable(feed, func(i, j int) bool {
		if !feed[i].CreatedAt.Equal(feed[j].CreatedAt) {
			return feed[i].CreatedAt.After(feed[j].CreatedAt)
		}
		if feed[i].Type != feed[j].Type {
			return feed[i].Type < feed[j].Type
		}
		return feed[i].ID > feed[j].ID
	})
	if len(feed) > limit {
		feed = feed[:limit]
	}
	return feed, nil
}

// Stats aggregates every record type. Total is the sum of the four totals.
func (s *RecordService) Stats(ctx context.Context) (types.DashboardStats, error) {
	var (
		stats types.DashboardStats
		err   error
	)
	if stats.PersonalDetails, err = s.repos.ResidentDetails.Stats(ctx); err != nil {
		return types.DashboardStats{}, err
	}
	if stats.Kasambahay, err = s.repos.Kasambahay.Stats(ctx); err != nil {
		return types.DashboardStats{}, err
	}
	if stats.Inhabitants, err = s.repos.Inhabitants.Stats(ctx); err != nil {
		return types.DashboardStats{}, err
	}
	if stats.BusinessPermits, err = s.repos.BusinessPermits.Stats(ctx); err != nil {
		return types.DashboardStats{}, err
	}
	stats.Total = stats.PersonalDetails.Total + stats.Kasambahay.Total + stats.Inhabitants.Total + stats.BusinessPermits.Total
	return stats, nil
}

// ListResidents pages through the RBI.
func (s *RecordService) ListResidents(ctx context.Context, search string, offset, limit int) ([]types.Inhabitant, int, error) {
	return s.repos.Inhabitants.List(ctx, strings.TrimSpace(search), offset, limit)
}

// ResidentHistory returns an inhabitant with their household and every
// record linked to them.
func (s *RecordService) ResidentHistory(ctx context.Context, id int) (types.ResidentHistory, error) {
	inhabitant, err := s.repos.Inhabitants.Get(ctx, id)
	if err != nil {
		return types.ResidentHistory{}, err
	}
	history := types.ResidentHistory{Inhabitant: inhabitant}
	if history.Household, err = s.repos.Inhabitants.Household(ctx, inhabitant.HouseholdNo); err != nil {
		return types.ResidentHistory{}, err
	}
	if history.PersonalDetails, err = s.repos.ResidentDetails.ListByResident(ctx, id); err != nil {
		return types.ResidentHistory{}, err
	}
	if history.Kasambahay, err = s.repos.Kasambahay.ListByResident(ctx, id); err != nil {
		return types.ResidentHistory{}, err
	}
	if history.BusinessPermits, err = s.repos.BusinessPermits.ListByResident(ctx, id); err != nil {
		return types.ResidentHistory{}, err
	}
	return history, nil
}

// Export builds the worksheet of every record of recordType.
func (s *RecordService) Export(ctx context.Context, recordType types.RecordType) (export.Sheet, error) {
	switch recordType {
	case types.RecordPersonal:
		rows, err := s.repos.ResidentDetails.ListAll(ctx)
		if err != nil {
			return export.Sheet{}, err
		}
		return export.ResidentDetails(rows), nil
	case types.RecordKasambahay:
		rows, err := s.repos.Kasambahay.ListAll(ctx)
		if err != nil {
			return export.Sheet{}, err
		}
		return export.Kasambahay(rows), nil
	case types.RecordInhabitant:
		rows, err := s.repos.Inhabitants.ListAll(ctx)
		if err != nil {
			return export.Sheet{}, err
		}
		return export.Inhabitants(rows), nil
	case types.RecordBusinessPermit:
		rows, err := s.repos.BusinessPermits.ListAll(ctx)
		if err != nil {
			return export.Sheet{}, err
		}
		return export.BusinessPermits(rows), nil
	default:
		return export.Sheet{}, ErrUnknownRecordType
	}
}

// Today is the service clock truncated to a date.
func (s *RecordService) Today() types.Date {
	return types.NewDate(s.now())
}

// ControlNumber returns <prefix>-<year>-<8 hex digits>.
func ControlNumber(prefix string, now time.Time) string {
	id := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return fmt.Sprintf("%s-%d-%s", prefix, now.Year(), id[:8])
}
