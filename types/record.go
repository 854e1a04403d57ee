package types

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// RecordType identifies one of the record tables exposed by the records API.
type RecordType string

const (
	RecordPersonal       RecordType = "personal"
	RecordKasambahay     RecordType = "kasambahay"
	RecordInhabitant     RecordType = "rbi"
	RecordBusinessPermit RecordType = "business"
)

// ParseRecordType maps a path segment to a RecordType.
func ParseRecordType(raw string) (RecordType, bool) {
	switch RecordType(strings.ToLower(strings.TrimSpace(raw))) {
	case RecordPersonal, "personal-details", "resident":
		return RecordPersonal, true
	case RecordKasambahay:
		return RecordKasambahay, true
	case RecordInhabitant, "inhabitant", "inhabitants":
		return RecordInhabitant, true
	case RecordBusinessPermit, "business-permit":
		return RecordBusinessPermit, true
	default:
		return "", false
	}
}

// RecordSummary is the projection used by recent-record feeds and searches.
type RecordSummary struct {
	ID          int        `json:"id"`
	Type        RecordType `json:"type"`
	DisplayName string     `json:"display_name"`
	// Detail is a type-specific subtitle: certificate type, employer,
	// household number or business name.
	Detail    string    `json:"detail"`
	CreatedAt time.Time `json:"created_at"`
}

// InhabitantStats aggregates the RBI table.
type InhabitantStats struct {
	Total            int `json:"total"`
	Male             int `json:"male"`
	Female           int `json:"female"`
	RegisteredVoters int `json:"registered_voters"`
	Households       int `json:"households"`
}

// ResidentDetailsStats aggregates personal-details submissions.
type ResidentDetailsStats struct {
	Total         int                     `json:"total"`
	ByCertificate map[CertificateType]int `json:"by_certificate"`
	ProfilesOnly  int                     `json:"profiles_only"`
}

// KasambahayStats aggregates kasambahay registrations.
type KasambahayStats struct {
	Total         int             `json:"total"`
	LiveIn        int             `json:"live_in"`
	AverageSalary decimal.Decimal `json:"average_salary"`
}

// BusinessPermitStats aggregates business permit applications.
type BusinessPermitStats struct {
	Total          int             `json:"total"`
	New            int             `json:"new"`
	Renewal        int             `json:"renewal"`
	Active         int             `json:"active"`
	TotalCollected decimal.Decimal `json:"total_collected"`
}

// DashboardStats is the payload of GET /api/stats. Total is always the sum
// of the four per-entity totals.
type DashboardStats struct {
	PersonalDetails ResidentDetailsStats `json:"personal_details"`
	Kasambahay      KasambahayStats      `json:"kasambahay"`
	Inhabitants     InhabitantStats      `json:"inhabitants"`
	BusinessPermits BusinessPermitStats  `json:"business_permits"`
	Total           int                  `json:"total"`
}

// ResidentHistory is an inhabitant with every record that references it.
type ResidentHistory struct {
	Inhabitant      Inhabitant        `json:"inhabitant"`
	Household       []Inhabitant      `json:"household"`
	PersonalDetails []ResidentDetails `json:"personal_details"`
	Kasambahay      []Kasambahay      `json:"kasambahay"`
	BusinessPermits []BusinessPermit  `json:"business_permits"`
}

// JoinName concatenates name parts, skipping nil or blank middle name and suffix.
func JoinName(first string, middle *string, last string, suffix *string) string {
	parts := make([]string, 0, 4)
	for _, part := range []*string{&first, middle, &last, suffix} {
		if part == nil {
			continue
		}
		if trimmed := strings.TrimSpace(*part); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return strings.Join(parts, " ")
}
