package store

import (
	"context"
	"database/sql"

	"github.com/brgy-records/apiserver/types"
)

var businessPermitColumns = []string{
	"id", "resident_id", "application_type", "business_name", "trade_name", "nature_of_business",
	"business_address", "proprietor_name", "proprietor_address", "contact_number", "email",
	"dti_registration_no", "sec_registration_no", "tin", "capitalization", "amount_paid", "date_paid",
	"or_number", "date_received", "valid_until", "control_number", "created_by", "created_at", "updated_at",
}

func scanBusinessPermit(row rowScanner) (types.BusinessPermit, error) {
	var b types.BusinessPermit
	err := row.Scan(
		&b.ID,
		&b.ResidentID,
		&b.ApplicationType,
		&b.BusinessName,
		&b.TradeName,
		&b.NatureOfBusiness,
		&b.BusinessAddress,
		&b.ProprietorName,
		&b.ProprietorAddress,
		&b.ContactNumber,
		&b.Email,
		&b.DTIRegistrationNo,
		&b.SECRegistrationNo,
		&b.TIN,
		&b.Capitalization,
		&b.AmountPaid,
		&b.DatePaid,
		&b.ORNumber,
		&b.DateReceived,
		&b.ValidUntil,
		&b.ControlNumber,
		&b.CreatedBy,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	return b, err
}

var businessPermitSummary = summarySource{
	recordType: types.RecordBusinessPermit,
	table:      "business_permits",
	first:      "proprietor_name",
	middle:     "NULL",
	last:       "NULL",
	suffix:     "NULL",
	detail:     "business_name",
	search:     []string{"business_name", "proprietor_name", "trade_name", "control_number"},
}

// BusinessPermitRepository handles persistence for business permit applications.
type BusinessPermitRepository struct {
	table *Table[types.BusinessPermit]
}

func NewBusinessPermitRepository(db *sql.DB) *BusinessPermitRepository {
	return &BusinessPermitRepository{table: NewTable(db, "business_permits", businessPermitColumns, scanBusinessPermit)}
}

func (r *BusinessPermitRepository) Get(ctx context.Context, id int) (types.BusinessPermit, error) {
	return r.table.FindByID(ctx, id)
}

func (r *BusinessPermitRepository) Create(ctx context.Context, b types.BusinessPermit) (types.BusinessPermit, error) {
	amountPaid := b.AmountPaid
	if amountPaid.IsZero() {
		amountPaid = types.DefaultPermitFee
	}
	return r.table.Create(ctx, Fields{
		"resident_id":         b.ResidentID,
		"application_type":    b.ApplicationType,
		"business_name":       b.BusinessName,
		"trade_name":          b.TradeName,
		"nature_of_business":  b.NatureOfBusiness,
		"business_address":    b.BusinessAddress,
		"proprietor_name":     b.ProprietorName,
		"proprietor_address":  b.ProprietorAddress,
		"contact_number":      b.ContactNumber,
		"email":               b.Email,
		"dti_registration_no": b.DTIRegistrationNo,
		"sec_registration_no": b.SECRegistrationNo,
		"tin":                 b.TIN,
		"capitalization":      b.Capitalization,
		"amount_paid":         amountPaid,
		"date_paid":           b.DatePaid,
		"or_number":           b.ORNumber,
		"date_received":       b.DateReceived,
		"valid_until":         b.ValidUntil,
		"control_number":      b.ControlNumber,
		"created_by":          b.CreatedBy,
	})
}

// RecordPayment completes the payment and receipt fields of a permit.
func (r *BusinessPermitRepository) RecordPayment(ctx context.Context, id int, payment types.PermitPayment) (types.BusinessPermit, error) {
	fields := Fields{
		"amount_paid": payment.AmountPaid,
		"date_paid":   payment.DatePaid,
		"or_number":   payment.ORNumber,
	}
	if !payment.DateReceived.IsZero() {
		fields["date_received"] = payment.DateReceived
	}
	if !payment.ValidUntil.IsZero() {
		fields["valid_until"] = payment.ValidUntil
	}

	ok, err := r.table.Update(ctx, id, fields)
	if err != nil {
		return types.BusinessPermit{}, err
	}
	if !ok {
		return types.BusinessPermit{}, ErrNotFound
	}
	return r.table.FindByID(ctx, id)
}

// ListByResident returns every permit linked to an inhabitant, newest first.
func (r *BusinessPermitRepository) ListByResident(ctx context.Context, residentID int) ([]types.BusinessPermit, error) {
	return r.table.FindWhere(ctx, Conditions{"resident_id": residentID}, Options{OrderBy: "created_at", Desc: true})
}

// ListAll returns every permit, newest first.
func (r *BusinessPermitRepository) ListAll(ctx context.Context) ([]types.BusinessPermit, error) {
	return r.table.FindWhere(ctx, nil, Options{OrderBy: "created_at", Desc: true})
}

func (r *BusinessPermitRepository) Recent(ctx context.Context, limit int) ([]types.RecordSummary, error) {
	return businessPermitSummary.recent(ctx, r.table.db, limit)
}

func (r *BusinessPermitRepository) SearchByName(ctx context.Context, term string, limit int) ([]types.RecordSummary, error) {
	return businessPermitSummary.searchByTerm(ctx, r.table.db, term, limit)
}

// Stats counts permits by type and validity. TotalCollected only sums paid permits.
func (r *BusinessPermitRepository) Stats(ctx context.Context) (types.BusinessPermitStats, error) {
	const query = `
		SELECT
			COUNT(1),
			COUNT(1) FILTER (WHERE application_type = 'NEW'),
			COUNT(1) FILTER (WHERE application_type = 'RENEWAL'),
			COUNT(1) FILTER (WHERE valid_until >= CURRENT_DATE),
			COALESCE(SUM(amount_paid) FILTER (WHERE date_paid IS NOT NULL), 0)
		FROM business_permits`
	var stats types.BusinessPermitStats
	err := r.table.db.QueryRowContext(ctx, query).Scan(
		&stats.Total,
		&stats.New,
		&stats.Renewal,
		&stats.Active,
		&stats.TotalCollected,
	)
	if err != nil {
		return types.BusinessPermitStats{}, mapError(err)
	}
	return stats, nil
}
