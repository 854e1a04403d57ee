package types

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	ArrangementLiveIn  = "Live-in"
	ArrangementLiveOut = "Live-out"
)

// Kasambahay is a household helper registration kept for local compliance.
type Kasambahay struct {
	// ID is the unique identifier of the registration.
	ID int `json:"id" db:"id"`

	// ResidentID optionally links the helper to an RBI inhabitant.
	ResidentID *int `json:"resident_id" db:"resident_id"`

	FirstName  string  `json:"first_name" db:"first_name"`
	MiddleName *string `json:"middle_name" db:"middle_name"`
	LastName   string  `json:"last_name" db:"last_name"`
	Suffix     *string `json:"suffix" db:"suffix"`

	Sex                   string  `json:"sex" db:"sex"`
	BirthDate             Date    `json:"birth_date" db:"birth_date"`
	Age                   int     `json:"age" db:"age"`
	CivilStatus           string  `json:"civil_status" db:"civil_status"`
	Address               string  `json:"address" db:"address"`
	ContactNumber         *string `json:"contact_number" db:"contact_number"`
	EducationalAttainment *string `json:"educational_attainment" db:"educational_attainment"`

	EmployerName          string  `json:"employer_name" db:"employer_name"`
	EmployerAddress       string  `json:"employer_address" db:"employer_address"`
	EmployerContact       *string `json:"employer_contact" db:"employer_contact"`
	NatureOfWork          string  `json:"nature_of_work" db:"nature_of_work"`
	EmploymentArrangement string  `json:"employment_arrangement" db:"employment_arrangement"`

	// MonthlySalary is stored as a numeric amount, never as formatted text.
	MonthlySalary decimal.Decimal `json:"monthly_salary" db:"monthly_salary"`

	SSSNumber        *string `json:"sss_number" db:"sss_number"`
	PhilHealthNumber *string `json:"philhealth_number" db:"philhealth_number"`
	PagIBIGNumber    *string `json:"pagibig_number" db:"pagibig_number"`

	EmergencyContactName         string  `json:"emergency_contact_name" db:"emergency_contact_name"`
	EmergencyContactNumber       string  `json:"emergency_contact_number" db:"emergency_contact_number"`
	EmergencyContactRelationship *string `json:"emergency_contact_relationship" db:"emergency_contact_relationship"`

	// AgreeToTerms is always true for stored registrations.
	AgreeToTerms bool `json:"agree_to_terms" db:"agree_to_terms"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// FullName joins the name parts, skipping an empty middle name and suffix.
func (k Kasambahay) FullName() string {
	return JoinName(k.FirstName, k.MiddleName, k.LastName, k.Suffix)
}
