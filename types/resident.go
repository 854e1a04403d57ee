package types

import "time"

// CertificateType identifies a printable certificate.
type CertificateType string

const (
	CertificateResidency      CertificateType = "residency"
	CertificateIndigency      CertificateType = "indigency"
	CertificateEmployment     CertificateType = "employment"
	CertificateBusinessPermit CertificateType = "business-permit"
)

// CertificateTypes lists every certificate in display order.
var CertificateTypes = []CertificateType{
	CertificateResidency,
	CertificateIndigency,
	CertificateEmployment,
	CertificateBusinessPermit,
}

// ResidentDetails is a personal-details submission. The table doubles as the
// resident profile and the certificate issuance log: every issuance inserts a
// new row and rows are never updated or deleted.
type ResidentDetails struct {
	// ID is the unique identifier of the submission.
	ID int `json:"id" db:"id"`

	// ResidentID optionally links the submission to an RBI inhabitant. It is
	// set to NULL when the inhabitant is deleted so the history survives.
	ResidentID *int `json:"resident_id" db:"resident_id"`

	FirstName  string  `json:"first_name" db:"first_name"`
	MiddleName *string `json:"middle_name" db:"middle_name"`
	LastName   string  `json:"last_name" db:"last_name"`
	Suffix     *string `json:"suffix" db:"suffix"`

	Age           int     `json:"age" db:"age"`
	Gender        string  `json:"gender" db:"gender"`
	CivilStatus   string  `json:"civil_status" db:"civil_status"`
	DateOfBirth   Date    `json:"date_of_birth" db:"date_of_birth"`
	PlaceOfBirth  *string `json:"place_of_birth" db:"place_of_birth"`
	Address       string  `json:"address" db:"address"`
	ContactNumber *string `json:"contact_number" db:"contact_number"`
	Email         *string `json:"email" db:"email"`

	EmploymentStatus      *string `json:"employment_status" db:"employment_status"`
	Occupation            *string `json:"occupation" db:"occupation"`
	EducationalAttainment *string `json:"educational_attainment" db:"educational_attainment"`
	ResidencyLength       *string `json:"residency_length" db:"residency_length"`
	YearsResiding         *int    `json:"years_residing" db:"years_residing"`

	// CertificateType and Purpose are NULL for bare profiles created by admins.
	CertificateType *CertificateType `json:"certificate_type" db:"certificate_type"`
	Purpose         *string          `json:"purpose" db:"purpose"`

	// Tenant residents must name the house owner.
	Tenant         bool    `json:"tenant" db:"tenant"`
	HouseOwnerName *string `json:"house_owner_name" db:"house_owner_name"`

	// Residents living with a relative must name the relative and relationship.
	LivingWithRelative   bool    `json:"living_with_relative" db:"living_with_relative"`
	RelativeName         *string `json:"relative_name" db:"relative_name"`
	RelativeRelationship *string `json:"relative_relationship" db:"relative_relationship"`

	// CreatedBy is the staff account that recorded the submission, if any.
	CreatedBy *int `json:"created_by" db:"created_by"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// FullName joins the name parts, skipping an empty middle name and suffix.
func (r ResidentDetails) FullName() string {
	return JoinName(r.FirstName, r.MiddleName, r.LastName, r.Suffix)
}
