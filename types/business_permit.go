package types

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	ApplicationNew     = "NEW"
	ApplicationRenewal = "RENEWAL"
)

// DefaultPermitFee is charged when no amount is recorded on submission.
var DefaultPermitFee = decimal.RequireFromString("500.00")

// BusinessPermit is a barangay business clearance application. Payment and
// receipt fields are completed after submission; the permit is active until
// ValidUntil.
type BusinessPermit struct {
	// ID is the unique identifier of the application.
	ID int `json:"id" db:"id"`

	// ResidentID optionally links the proprietor to an RBI inhabitant.
	ResidentID *int `json:"resident_id" db:"resident_id"`

	// ApplicationType is NEW or RENEWAL.
	ApplicationType string `json:"application_type" db:"application_type"`

	BusinessName      string  `json:"business_name" db:"business_name"`
	TradeName         *string `json:"trade_name" db:"trade_name"`
	NatureOfBusiness  string  `json:"nature_of_business" db:"nature_of_business"`
	BusinessAddress   string  `json:"business_address" db:"business_address"`
	ProprietorName    string  `json:"proprietor_name" db:"proprietor_name"`
	ProprietorAddress *string `json:"proprietor_address" db:"proprietor_address"`
	ContactNumber     *string `json:"contact_number" db:"contact_number"`
	Email             *string `json:"email" db:"email"`

	DTIRegistrationNo *string `json:"dti_registration_no" db:"dti_registration_no"`
	SECRegistrationNo *string `json:"sec_registration_no" db:"sec_registration_no"`
	TIN               *string `json:"tin" db:"tin"`

	Capitalization decimal.NullDecimal `json:"capitalization" db:"capitalization"`

	AmountPaid decimal.Decimal `json:"amount_paid" db:"amount_paid"`
	DatePaid   Date            `json:"date_paid" db:"date_paid"`
	ORNumber   *string         `json:"or_number" db:"or_number"`

	DateReceived Date `json:"date_received" db:"date_received"`
	ValidUntil   Date `json:"valid_until" db:"valid_until"`

	// ControlNumber is the unique tracking number printed on the clearance.
	ControlNumber string `json:"control_number" db:"control_number"`

	CreatedBy *int `json:"created_by" db:"created_by"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// ActiveOn reports whether the permit is still valid on the given day.
func (b BusinessPermit) ActiveOn(day time.Time) bool {
	if b.ValidUntil.IsZero() {
		return false
	}
	return !NewDate(day).After(b.ValidUntil.Time)
}

// PermitPayment completes the payment and receipt fields of a permit.
type PermitPayment struct {
	AmountPaid   decimal.Decimal `json:"amount_paid"`
	DatePaid     Date            `json:"date_paid"`
	ORNumber     string          `json:"or_number"`
	DateReceived Date            `json:"date_received"`
	ValidUntil   Date            `json:"valid_until"`
}
