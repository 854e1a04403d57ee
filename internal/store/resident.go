package store

import (
	"context"
	"database/sql"

	"github.com/brgy-records/apiserver/types"
)

var residentDetailsColumns = []string{
	"id", "resident_id", "first_name", "middle_name", "last_name", "suffix", "age", "gender",
	"civil_status", "date_of_birth", "place_of_birth", "address", "contact_number", "email",
	"employment_status", "occupation", "educational_attainment", "residency_length", "years_residing",
	"certificate_type", "purpose", "tenant", "house_owner_name", "living_with_relative",
	"relative_name", "relative_relationship", "created_by", "created_at",
}

func scanResidentDetails(row rowScanner) (types.ResidentDetails, error) {
	var r types.ResidentDetails
	var certificateType sql.NullString
	err := row.Scan(
		&r.ID,
		&r.ResidentID,
		&r.FirstName,
		&r.MiddleName,
		&r.LastName,
		&r.Suffix,
		&r.Age,
		&r.Gender,
		&r.CivilStatus,
		&r.DateOfBirth,
		&r.PlaceOfBirth,
		&r.Address,
		&r.ContactNumber,
		&r.Email,
		&r.EmploymentStatus,
		&r.Occupation,
		&r.EducationalAttainment,
		&r.ResidencyLength,
		&r.YearsResiding,
		&certificateType,
		&r.Purpose,
		&r.Tenant,
		&r.HouseOwnerName,
		&r.LivingWithRelative,
		&r.RelativeName,
		&r.RelativeRelationship,
		&r.CreatedBy,
		&r.CreatedAt,
	)
	if certificateType.Valid {
		ct := types.CertificateType(certificateType.String)
		r.CertificateType = &ct
	}
	return r, err
}

var residentDetailsSummary = summarySource{
	recordType: types.RecordPersonal,
	table:      "resident_details",
	first:      "first_name",
	middle:     "middle_name",
	last:       "last_name",
	suffix:     "suffix",
	detail:     "COALESCE(certificate_type, 'profile')",
	search:     []string{"first_name", "middle_name", "last_name", "CONCAT_WS(' ', first_name, middle_name, last_name)"},
}

// ResidentDetailsRepository handles persistence for personal-details
// submissions. Rows are insert-only.
type ResidentDetailsRepository struct {
	table *Table[types.ResidentDetails]
}

func NewResidentDetailsRepository(db *sql.DB) *ResidentDetailsRepository {
	return &ResidentDetailsRepository{table: NewTable(db, "resident_details", residentDetailsColumns, scanResidentDetails)}
}

func (r *ResidentDetailsRepository) Get(ctx context.Context, id int) (types.ResidentDetails, error) {
	return r.table.FindByID(ctx, id)
}

func (r *ResidentDetailsRepository) Create(ctx context.Context, details types.ResidentDetails) (types.ResidentDetails, error) {
	var certificateType *string
	if details.CertificateType != nil {
		value := string(*details.CertificateType)
		certificateType = &value
	}
	return r.table.Create(ctx, Fields{
		"resident_id":            details.ResidentID,
		"first_name":             details.FirstName,
		"middle_name":            details.MiddleName,
		"last_name":              details.LastName,
		"suffix":                 details.Suffix,
		"age":                    details.Age,
		"gender":                 details.Gender,
		"civil_status":           details.CivilStatus,
		"date_of_birth":          details.DateOfBirth,
		"place_of_birth":         details.PlaceOfBirth,
		"address":                details.Address,
		"contact_number":         details.ContactNumber,
		"email":                  details.Email,
		"employment_status":      details.EmploymentStatus,
		"occupation":             details.Occupation,
		"educational_attainment": details.EducationalAttainment,
		"residency_length":       details.ResidencyLength,
		"years_residing":         details.YearsResiding,
		"certificate_type":       certificateType,
		"purpose":                details.Purpose,
		"tenant":                 details.Tenant,
		"house_owner_name":       details.HouseOwnerName,
		"living_with_relative":   details.LivingWithRelative,
		"relative_name":          details.RelativeName,
		"relative_relationship":  details.RelativeRelationship,
		"created_by":             details.CreatedBy,
	})
}

// ListByResident returns every submission linked to an inhabitant, newest first.
func (r *ResidentDetailsRepository) ListByResident(ctx context.Context, residentID int) ([]types.ResidentDetails, error) {
	return r.table.FindWhere(ctx, Conditions{"resident_id": residentID}, Options{OrderBy: "created_at", Desc: true})
}

func (r *ResidentDetailsRepository) Recent(ctx context.Context, limit int) ([]types.RecordSummary, error) {
	return residentDetailsSummary.recent(ctx, r.table.db, limit)
}

func (r *ResidentDetailsRepository) SearchByName(ctx context.Context, term string, limit int) ([]types.RecordSummary, error) {
	return residentDetailsSummary.searchByTerm(ctx, r.table.db, term, limit)
}

func (r *ResidentDetailsRepository) Stats(ctx context.Context) (types.ResidentDetailsStats, error) {
	const query = `
		SELECT certificate_type, COUNT(1)
		FROM resident_details
		GROUP BY certificate_type`
	rows, err := r.table.db.QueryContext(ctx, query)
	if err != nil {
		return types.ResidentDetailsStats{}, mapError(err)
	}
	defer rows.Close()

	stats := types.ResidentDetailsStats{ByCertificate: make(map[types.CertificateType]int)}
	for rows.Next() {
		var certificateType sql.NullString
		var count int
		if err := rows.Scan(&certificateType, &count); err != nil {
			return types.ResidentDetailsStats{}, err
		}
		stats.Total += count
		if !certificateType.Valid {
			stats.ProfilesOnly += count
			continue
		}
		stats.ByCertificate[types.CertificateType(certificateType.String)] += count
	}
	if err := rows.Err(); err != nil {
		return types.ResidentDetailsStats{}, err
	}
	return stats, nil
}

// ListAll returns every submission, newest first.
func (r *ResidentDetailsRepository) ListAll(ctx context.Context) ([]types.ResidentDetails, error) {
	return r.table.FindWhere(ctx, nil, Options{OrderBy: "created_at", Desc: true})
}
