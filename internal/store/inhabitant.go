package store

import (
	"context"
	"database/sql"

	"github.com/brgy-records/apiserver/types"
)

var inhabitantColumns = []string{
	"id", "household_no", "last_name", "first_name", "middle_name", "suffix", "address", "purok",
	"birth_date", "birth_place", "sex", "civil_status", "citizenship", "occupation",
	"educational_attainment", "contact_number", "relationship_to_head", "registered_voter",
	"housing_status", "septic_tank", "date_accomplished", "created_at", "updated_at",
}

func scanInhabitant(row rowScanner) (types.Inhabitant, error) {
	var i types.Inhabitant
	err := row.Scan(
		&i.ID,
		&i.HouseholdNo,
		&i.LastName,
		&i.FirstName,
		&i.MiddleName,
		&i.Suffix,
		&i.Address,
		&i.Purok,
		&i.BirthDate,
		&i.BirthPlace,
		&i.Sex,
		&i.CivilStatus,
		&i.Citizenship,
		&i.Occupation,
		&i.EducationalAttainment,
		&i.ContactNumber,
		&i.RelationshipToHead,
		&i.RegisteredVoter,
		&i.HousingStatus,
		&i.SepticTank,
		&i.DateAccomplished,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

func inhabitantFields(i types.Inhabitant) Fields {
	fields := Fields{
		"household_no":           i.HouseholdNo,
		"last_name":              i.LastName,
		"first_name":             i.FirstName,
		"middle_name":            i.MiddleName,
		"suffix":                 i.Suffix,
		"address":                i.Address,
		"purok":                  i.Purok,
		"birth_date":             i.BirthDate,
		"birth_place":            i.BirthPlace,
		"sex":                    i.Sex,
		"civil_status":           i.CivilStatus,
		"citizenship":            i.Citizenship,
		"occupation":             i.Occupation,
		"educational_attainment": i.EducationalAttainment,
		"contact_number":         i.ContactNumber,
		"relationship_to_head":   i.RelationshipToHead,
		"registered_voter":       i.RegisteredVoter,
		"housing_status":         i.HousingStatus,
		"septic_tank":            i.SepticTank,
	}
	if !i.DateAccomplished.IsZero() {
		fields["date_accomplished"] = i.DateAccomplished
	}
	return fields
}

var inhabitantSummary = summarySource{
	recordType: types.RecordInhabitant,
	table:      "barangay_inhabitants",
	first:      "first_name",
	middle:     "middle_name",
	last:       "last_name",
	suffix:     "suffix",
	detail:     "household_no",
	search:     []string{"first_name", "middle_name", "last_name", "household_no", "CONCAT_WS(' ', first_name, middle_name, last_name)"},
}

// InhabitantRepository handles persistence for the RBI table.
type InhabitantRepository struct {
	table *Table[types.Inhabitant]
}

func NewInhabitantRepository(db *sql.DB) *InhabitantRepository {
	return &InhabitantRepository{table: NewTable(db, "barangay_inhabitants", inhabitantColumns, scanInhabitant)}
}

func (r *InhabitantRepository) Get(ctx context.Context, id int) (types.Inhabitant, error) {
	return r.table.FindByID(ctx, id)
}

func (r *InhabitantRepository) Create(ctx context.Context, inhabitant types.Inhabitant) (types.Inhabitant, error) {
	return r.table.Create(ctx, inhabitantFields(inhabitant))
}

func (r *InhabitantRepository) Update(ctx context.Context, id int, inhabitant types.Inhabitant) (types.Inhabitant, error) {
	ok, err := r.table.Update(ctx, id, inhabitantFields(inhabitant))
	if err != nil {
		return types.Inhabitant{}, err
	}
	if !ok {
		return types.Inhabitant{}, ErrNotFound
	}
	return r.table.FindByID(ctx, id)
}

// Delete removes the inhabitant. Records referencing it keep their rows with
// resident_id set to NULL.
func (r *InhabitantRepository) Delete(ctx context.Context, id int) error {
	ok, err := r.table.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

// List returns a page of inhabitants ordered by household then name, and the
// total matching count. An empty search matches everything.
func (r *InhabitantRepository) List(ctx context.Context, search string, offset, limit int) ([]types.Inhabitant, int, error) {
	if offset < 0 {
		offset = 0
	}
	if limit < 1 {
		limit = 20
	}

	if search == "" {
		total, err := r.table.Count(ctx, nil)
		if err != nil {
			return nil, 0, err
		}
		items, err := r.table.selectWhere(ctx, "ORDER BY household_no, last_name, first_name, id OFFSET $1 LIMIT $2", offset, limit)
		if err != nil {
			return nil, 0, err
		}
		return items, total, nil
	}

	const filter = `WHERE first_name ILIKE $1 OR last_name ILIKE $1 OR middle_name ILIKE $1 OR household_no ILIKE $1`
	pattern := likePattern(search)

	var total int
	if err := r.table.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM barangay_inhabitants "+filter, pattern).Scan(&total); err != nil {
		return nil, 0, mapError(err)
	}
	items, err := r.table.selectWhere(ctx, filter+" ORDER BY household_no, last_name, first_name, id OFFSET $2 LIMIT $3", pattern, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// Household returns the family group sharing householdNo.
func (r *InhabitantRepository) Household(ctx context.Context, householdNo string) ([]types.Inhabitant, error) {
	return r.table.FindWhere(ctx, Conditions{"household_no": householdNo}, Options{OrderBy: "id"})
}

func (r *InhabitantRepository) Recent(ctx context.Context, limit int) ([]types.RecordSummary, error) {
	return inhabitantSummary.recent(ctx, r.table.db, limit)
}

func (r *InhabitantRepository) SearchByName(ctx context.Context, term string, limit int) ([]types.RecordSummary, error) {
	return inhabitantSummary.searchByTerm(ctx, r.table.db, term, limit)
}

func (r *InhabitantRepository) Stats(ctx context.Context) (types.InhabitantStats, error) {
	const query = `
		SELECT
			COUNT(1),
			COUNT(1) FILTER (WHERE sex = 'Male'),
			COUNT(1) FILTER (WHERE sex = 'Female'),
			COUNT(1) FILTER (WHERE registered_voter),
			COUNT(DISTINCT household_no)
		FROM barangay_inhabitants`
	var stats types.InhabitantStats
	err := r.table.db.QueryRowContext(ctx, query).Scan(
		&stats.Total,
		&stats.Male,
		&stats.Female,
		&stats.RegisteredVoters,
		&stats.Households,
	)
	if err != nil {
		return types.InhabitantStats{}, mapError(err)
	}
	return stats, nil
}

// ListAll returns every inhabitant grouped by household.
func (r *InhabitantRepository) ListAll(ctx context.Context) ([]types.Inhabitant, error) {
	return r.table.selectWhere(ctx, "ORDER BY household_no, last_name, first_name, id")
}
