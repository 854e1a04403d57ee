package store

import (
	"context"
	"database/sql"

	"github.com/brgy-records/apiserver/types"
)

var kasambahayColumns = []string{
	"id", "resident_id", "first_name", "middle_name", "last_name", "suffix", "sex", "birth_date",
	"age", "civil_status", "address", "contact_number", "educational_attainment", "employer_name",
	"employer_address", "employer_contact", "nature_of_work", "employment_arrangement",
	"monthly_salary", "sss_number", "philhealth_number", "pagibig_number", "emergency_contact_name",
	"emergency_contact_number", "emergency_contact_relationship", "agree_to_terms", "created_at",
}

func scanKasambahay(row rowScanner) (types.Kasambahay, error) {
	var k types.Kasambahay
	err := row.Scan(
		&k.ID,
		&k.ResidentID,
		&k.FirstName,
		&k.MiddleName,
		&k.LastName,
		&k.Suffix,
		&k.Sex,
		&k.BirthDate,
		&k.Age,
		&k.CivilStatus,
		&k.Address,
		&k.ContactNumber,
		&k.EducationalAttainment,
		&k.EmployerName,
		&k.EmployerAddress,
		&k.EmployerContact,
		&k.NatureOfWork,
		&k.EmploymentArrangement,
		&k.MonthlySalary,
		&k.SSSNumber,
		&k.PhilHealthNumber,
		&k.PagIBIGNumber,
		&k.EmergencyContactName,
		&k.EmergencyContactNumber,
		&k.EmergencyContactRelationship,
		&k.AgreeToTerms,
		&k.CreatedAt,
	)
	return k, err
}

var kasambahaySummary = summarySource{
	recordType: types.RecordKasambahay,
	table:      "kasambahay_registration",
	first:      "first_name",
	middle:     "middle_name",
	last:       "last_name",
	suffix:     "suffix",
	detail:     "employer_name",
	search:     []string{"first_name", "middle_name", "last_name", "employer_name", "CONCAT_WS(' ', first_name, middle_name, last_name)"},
}

// KasambahayRepository handles persistence for household helper registrations.
type KasambahayRepository struct {
	table *Table[types.Kasambahay]
}

func NewKasambahayRepository(db *sql.DB) *KasambahayRepository {
	return &KasambahayRepository{table: NewTable(db, "kasambahay_registration", kasambahayColumns, scanKasambahay)}
}

func (r *KasambahayRepository) Get(ctx context.Context, id int) (types.Kasambahay, error) {
	return r.table.FindByID(ctx, id)
}

func (r *KasambahayRepository) Create(ctx context.Context, k types.Kasambahay) (types.Kasambahay, error) {
	return r.table.Create(ctx, Fields{
		"resident_id":                    k.ResidentID,
		"first_name":                     k.FirstName,
		"middle_name":                    k.MiddleName,
		"last_name":                      k.LastName,
		"suffix":                         k.Suffix,
		"sex":                            k.Sex,
		"birth_date":                     k.BirthDate,
		"age":                            k.Age,
		"civil_status":                   k.CivilStatus,
		"address":                        k.Address,
		"contact_number":                 k.ContactNumber,
		"educational_attainment":         k.EducationalAttainment,
		"employer_name":                  k.EmployerName,
		"employer_address":               k.EmployerAddress,
		"employer_contact":               k.EmployerContact,
		"nature_of_work":                 k.NatureOfWork,
		"employment_arrangement":         k.EmploymentArrangement,
		"monthly_salary":                 k.MonthlySalary,
		"sss_number":                     k.SSSNumber,
		"philhealth_number":              k.PhilHealthNumber,
		"pagibig_number":                 k.PagIBIGNumber,
		"emergency_contact_name":         k.EmergencyContactName,
		"emergency_contact_number":       k.EmergencyContactNumber,
		"emergency_contact_relationship": k.EmergencyContactRelationship,
		"agree_to_terms":                 k.AgreeToTerms,
	})
}

// ListByResident returns every registration linked to an inhabitant, newest first.
func (r *KasambahayRepository) ListByResident(ctx context.Context, residentID int) ([]types.Kasambahay, error) {
	return r.table.FindWhere(ctx, Conditions{"resident_id": residentID}, Options{OrderBy: "created_at", Desc: true})
}

// ListAll returns every registration, newest first.
func (r *KasambahayRepository) ListAll(ctx context.Context) ([]types.Kasambahay, error) {
	return r.table.FindWhere(ctx, nil, Options{OrderBy: "created_at", Desc: true})
}

func (r *KasambahayRepository) Recent(ctx context.Context, limit int) ([]types.RecordSummary, error) {
	return kasambahaySummary.recent(ctx, r.table.db, limit)
}

// SearchByEmployer matches the helper's name or the employer's name.
func (r *KasambahayRepository) SearchByEmployer(ctx context.Context, term string, limit int) ([]types.RecordSummary, error) {
	return kasambahaySummary.searchByTerm(ctx, r.table.db, term, limit)
}

// Stats averages monthly_salary in SQL; the column is numeric so no string
// parsing is involved.
func (r *KasambahayRepository) Stats(ctx context.Context) (types.KasambahayStats, error) {
	const query = `
		SELECT
			COUNT(1),
			COUNT(1) FILTER (WHERE employment_arrangement = 'Live-in'),
			COALESCE(ROUND(AVG(monthly_salary), 2), 0)
		FROM kasambahay_registration`
	var stats types.KasambahayStats
	if err := r.table.db.QueryRowContext(ctx, query).Scan(&stats.Total, &stats.LiveIn, &stats.AverageSalary); err != nil {
		return types.KasambahayStats{}, mapError(err)
	}
	return stats, nil
}
