package validation

import (
	"fmt"
	"io"
	"strings"

	"github.com/brgy-records/apiserver/types"
)

// ResidentDetailsBase holds the personal-details fields shared by the staff
// and admin schemas.
type ResidentDetailsBase struct {
	ResidentID *int `json:"resident_id" validate:"omitempty,min=1"`

	FirstName  string `json:"first_name" validate:"required,max=100"`
	MiddleName string `json:"middle_name" validate:"max=100"`
	LastName   string `json:"last_name" validate:"required,max=100"`
	Suffix     string `json:"suffix" validate:"max=10"`

	Age           *int   `json:"age" validate:"required,min=0,max=150"`
	Gender        string `json:"gender" validate:"required,gender"`
	CivilStatus   string `json:"civil_status" validate:"required,civil_status"`
	DateOfBirth   string `json:"date_of_birth" validate:"omitempty,date"`
	PlaceOfBirth  string `json:"place_of_birth" validate:"max=150"`
	Address       string `json:"address" validate:"required,max=255"`
	ContactNumber string `json:"contact_number" validate:"omitempty,max=20,phone"`
	Email         string `json:"email" validate:"omitempty,max=100,email"`

	EmploymentStatus      string `json:"employment_status" validate:"omitempty,employment_status"`
	Occupation            string `json:"occupation" validate:"max=100"`
	EducationalAttainment string `json:"educational_attainment" validate:"omitempty,educational_attainment"`
	ResidencyLength       string `json:"residency_length" validate:"omitempty,residency_length"`
	YearsResiding         *int   `json:"years_residing" validate:"omitempty,min=0,max=150"`

	Tenant         bool   `json:"tenant"`
	HouseOwnerName string `json:"house_owner_name" validate:"required_if=Tenant true,max=150"`

	LivingWithRelative   bool   `json:"living_with_relative"`
	RelativeName         string `json:"relative_name" validate:"required_if=LivingWithRelative true,max=150"`
	RelativeRelationship string `json:"relative_relationship" validate:"required_if=LivingWithRelative true,max=50"`
}

// ResidentDetailsInput is a certificate request: the certificate and its
// purpose are mandatory.
type ResidentDetailsInput struct {
	ResidentDetailsBase
	CertificateType string `json:"certificate_type" validate:"required,certificate_type"`
	Purpose         string `json:"purpose" validate:"required,max=255"`
}

// ResidentDetailsAdminInput lets an admin record a bare profile.
type ResidentDetailsAdminInput struct {
	ResidentDetailsBase
	CertificateType string `json:"certificate_type" validate:"omitempty,certificate_type"`
	Purpose         string `json:"purpose" validate:"max=255"`
}

// ResidentDetails validates a personal-details submission against schema,
// which must be one of the two resident-details schemas.
func (v *Validator) ResidentDetails(r io.Reader, schema Schema) (types.ResidentDetails, error) {
	switch schema {
	case ResidentDetailsSchema:
		var in ResidentDetailsInput
		if err := v.run(r, &in); err != nil {
			return types.ResidentDetails{}, err
		}
		return in.ResidentDetailsBase.toDomain(in.CertificateType, in.Purpose), nil
	case ResidentDetailsAdminSchema:
		var in ResidentDetailsAdminInput
		if err := v.run(r, &in); err != nil {
			return types.ResidentDetails{}, err
		}
		return in.ResidentDetailsBase.toDomain(in.CertificateType, in.Purpose), nil
	default:
		return types.ResidentDetails{}, fmt.Errorf("schema %q does not apply to resident details", schema)
	}
}

func (in ResidentDetailsBase) toDomain(certificateType, purpose string) types.ResidentDetails {
	details := types.ResidentDetails{
		ResidentID:            in.ResidentID,
		FirstName:             in.FirstName,
		MiddleName:            optional(in.MiddleName),
		LastName:              in.LastName,
		Suffix:                optional(in.Suffix),
		Gender:                in.Gender,
		CivilStatus:           in.CivilStatus,
		DateOfBirth:           optionalDate(in.DateOfBirth),
		PlaceOfBirth:          optional(in.PlaceOfBirth),
		Address:               in.Address,
		ContactNumber:         optional(in.ContactNumber),
		Email:                 optional(in.Email),
		EmploymentStatus:      optional(in.EmploymentStatus),
		Occupation:            optional(in.Occupation),
		EducationalAttainment: optional(in.EducationalAttainment),
		ResidencyLength:       optional(in.ResidencyLength),
		YearsResiding:         in.YearsResiding,
		Purpose:               optional(purpose),
		Tenant:                in.Tenant,
		LivingWithRelative:    in.LivingWithRelative,
	}
	if in.Age != nil {
		details.Age = *in.Age
	}
	if certificateType != "" {
		ct := types.CertificateType(certificateType)
		details.CertificateType = &ct
	}
	if in.Tenant {
		details.HouseOwnerName = optional(in.HouseOwnerName)
	}
	if in.LivingWithRelative {
		details.RelativeName = optional(in.RelativeName)
		details.RelativeRelationship = optional(in.RelativeRelationship)
	}
	return details
}

// KasambahayInput is a household helper registration.
type KasambahayInput struct {
	ResidentID *int `json:"resident_id" validate:"omitempty,min=1"`

	FirstName  string `json:"first_name" validate:"required,max=100"`
	MiddleName string `json:"middle_name" validate:"max=100"`
	LastName   string `json:"last_name" validate:"required,max=100"`
	Suffix     string `json:"suffix" validate:"max=10"`

	Sex                   string `json:"sex" validate:"required,sex"`
	BirthDate             string `json:"birth_date" validate:"required,date"`
	Age                   *int   `json:"age" validate:"required,min=15,max=100"`
	CivilStatus           string `json:"civil_status" validate:"required,civil_status"`
	Address               string `json:"address" validate:"required,max=255"`
	ContactNumber         string `json:"contact_number" validate:"omitempty,max=20,phone"`
	EducationalAttainment string `json:"educational_attainment" validate:"omitempty,educational_attainment"`

	EmployerName          string `json:"employer_name" validate:"required,max=150"`
	EmployerAddress       string `json:"employer_address" validate:"required,max=255"`
	EmployerContact       string `json:"employer_contact" validate:"omitempty,max=20,phone"`
	NatureOfWork          string `json:"nature_of_work" validate:"required,max=100"`
	EmploymentArrangement string `json:"employment_arrangement" validate:"required,arrangement"`
	MonthlySalary         Money  `json:"monthly_salary" validate:"required,money"`

	SSSNumber        string `json:"sss_number" validate:"max=20"`
	PhilHealthNumber string `json:"philhealth_number" validate:"max=20"`
	PagIBIGNumber    string `json:"pagibig_number" validate:"max=20"`

	EmergencyContactName         string `json:"emergency_contact_name" validate:"required,max=150"`
	EmergencyContactNumber       string `json:"emergency_contact_number" validate:"required,max=20,phone"`
	EmergencyContactRelationship string `json:"emergency_contact_relationship" validate:"max=50"`

	AgreeToTerms bool `json:"agree_to_terms" validate:"eq=true"`
}

func (v *Validator) Kasambahay(r io.Reader) (types.Kasambahay, error) {
	var in KasambahayInput
	if err := v.run(r, &in); err != nil {
		return types.Kasambahay{}, err
	}
	return types.Kasambahay{
		ResidentID:                   in.ResidentID,
		FirstName:                    in.FirstName,
		MiddleName:                   optional(in.MiddleName),
		LastName:                     in.LastName,
		Suffix:                       optional(in.Suffix),
		Sex:                          in.Sex,
		BirthDate:                    optionalDate(in.BirthDate),
		Age:                          *in.Age,
		CivilStatus:                  in.CivilStatus,
		Address:                      in.Address,
		ContactNumber:                optional(in.ContactNumber),
		EducationalAttainment:        optional(in.EducationalAttainment),
		EmployerName:                 in.EmployerName,
		EmployerAddress:              in.EmployerAddress,
		EmployerContact:              optional(in.EmployerContact),
		NatureOfWork:                 in.NatureOfWork,
		EmploymentArrangement:        in.EmploymentArrangement,
		MonthlySalary:                in.MonthlySalary.Decimal(),
		SSSNumber:                    optional(in.SSSNumber),
		PhilHealthNumber:             optional(in.PhilHealthNumber),
		PagIBIGNumber:                optional(in.PagIBIGNumber),
		EmergencyContactName:         in.EmergencyContactName,
		EmergencyContactNumber:       in.EmergencyContactNumber,
		EmergencyContactRelationship: optional(in.EmergencyContactRelationship),
		AgreeToTerms:                 in.AgreeToTerms,
	}, nil
}

// InhabitantInput is one RBI household member.
type InhabitantInput struct {
	HouseholdNo string `json:"household_no" validate:"required,max=50"`

	LastName   string `json:"last_name" validate:"required,max=100"`
	FirstName  string `json:"first_name" validate:"required,max=100"`
	MiddleName string `json:"middle_name" validate:"max=100"`
	Suffix     string `json:"suffix" validate:"max=10"`

	Address string `json:"address" validate:"required,max=255"`
	Purok   string `json:"purok" validate:"max=50"`

	BirthDate             string `json:"birth_date" validate:"required,date"`
	BirthPlace            string `json:"birth_place" validate:"max=150"`
	Sex                   string `json:"sex" validate:"required,sex"`
	CivilStatus           string `json:"civil_status" validate:"required,civil_status"`
	Citizenship           string `json:"citizenship" validate:"max=50"`
	Occupation            string `json:"occupation" validate:"max=100"`
	EducationalAttainment string `json:"educational_attainment" validate:"omitempty,educational_attainment"`
	ContactNumber         string `json:"contact_number" validate:"omitempty,max=20,phone"`
	RelationshipToHead    string `json:"relationship_to_head" validate:"required,max=50"`

	RegisteredVoter bool   `json:"registered_voter"`
	HousingStatus   string `json:"housing_status" validate:"omitempty,housing_status"`
	SepticTank      string `json:"septic_tank" validate:"omitempty,septic_tank"`

	DateAccomplished string `json:"date_accomplished" validate:"omitempty,date"`
}

func (v *Validator) Inhabitant(r io.Reader) (types.Inhabitant, error) {
	var in InhabitantInput
	if err := v.run(r, &in); err != nil {
		return types.Inhabitant{}, err
	}
	citizenship := in.Citizenship
	if citizenship == "" {
		citizenship = "Filipino"
	}
	return types.Inhabitant{
		HouseholdNo:           in.HouseholdNo,
		LastName:              in.LastName,
		FirstName:             in.FirstName,
		MiddleName:            optional(in.MiddleName),
		Suffix:                optional(in.Suffix),
		Address:               in.Address,
		Purok:                 optional(in.Purok),
		BirthDate:             optionalDate(in.BirthDate),
		BirthPlace:            optional(in.BirthPlace),
		Sex:                   in.Sex,
		CivilStatus:           in.CivilStatus,
		Citizenship:           citizenship,
		Occupation:            optional(in.Occupation),
		EducationalAttainment: optional(in.EducationalAttainment),
		ContactNumber:         optional(in.ContactNumber),
		RelationshipToHead:    in.RelationshipToHead,
		RegisteredVoter:       in.RegisteredVoter,
		HousingStatus:         optional(in.HousingStatus),
		SepticTank:            optional(in.SepticTank),
		DateAccomplished:      optionalDate(in.DateAccomplished),
	}, nil
}

// BusinessPermitInput is a business clearance application. OLD is accepted
// as a synonym for RENEWAL.
type BusinessPermitInput struct {
	ResidentID      *int   `json:"resident_id" validate:"omitempty,min=1"`
	ApplicationType string `json:"application_type" validate:"required,application_type"`

	BusinessName      string `json:"business_name" validate:"required,max=200"`
	TradeName         string `json:"trade_name" validate:"max=200"`
	NatureOfBusiness  string `json:"nature_of_business" validate:"required,max=150"`
	BusinessAddress   string `json:"business_address" validate:"required,max=255"`
	ProprietorName    string `json:"proprietor_name" validate:"required,max=150"`
	ProprietorAddress string `json:"proprietor_address" validate:"max=255"`
	ContactNumber     string `json:"contact_number" validate:"omitempty,max=20,phone"`
	Email             string `json:"email" validate:"omitempty,max=100,email"`

	DTIRegistrationNo string `json:"dti_registration_no" validate:"max=50"`
	SECRegistrationNo string `json:"sec_registration_no" validate:"max=50"`
	TIN               string `json:"tin" validate:"max=20"`

	Capitalization Money  `json:"capitalization" validate:"omitempty,money"`
	AmountPaid     Money  `json:"amount_paid" validate:"omitempty,money"`
	DatePaid       string `json:"date_paid" validate:"omitempty,date"`
	ORNumber       string `json:"or_number" validate:"max=50"`
	DateReceived   string `json:"date_received" validate:"omitempty,date"`
	ValidUntil     string `json:"valid_until" validate:"omitempty,date"`
}

func (v *Validator) BusinessPermit(r io.Reader) (types.BusinessPermit, error) {
	var in BusinessPermitInput
	if err := v.run(r, &in); err != nil {
		return types.BusinessPermit{}, err
	}

	permit := types.BusinessPermit{
		ResidentID:        in.ResidentID,
		ApplicationType:   NormalizeApplicationType(in.ApplicationType),
		BusinessName:      in.BusinessName,
		TradeName:         optional(in.TradeName),
		NatureOfBusiness:  in.NatureOfBusiness,
		BusinessAddress:   in.BusinessAddress,
		ProprietorName:    in.ProprietorName,
		ProprietorAddress: optional(in.ProprietorAddress),
		ContactNumber:     optional(in.ContactNumber),
		Email:             optional(in.Email),
		DTIRegistrationNo: optional(in.DTIRegistrationNo),
		SECRegistrationNo: optional(in.SECRegistrationNo),
		TIN:               optional(in.TIN),
		AmountPaid:        types.DefaultPermitFee,
		DatePaid:          optionalDate(in.DatePaid),
		ORNumber:          optional(in.ORNumber),
		DateReceived:      optionalDate(in.DateReceived),
		ValidUntil:        optionalDate(in.ValidUntil),
	}
	if in.Capitalization.Present() {
		permit.Capitalization.Decimal = in.Capitalization.Decimal()
		permit.Capitalization.Valid = true
	}
	if in.AmountPaid.Present() {
		permit.AmountPaid = in.AmountPaid.Decimal()
	}
	return permit, nil
}

// NormalizeApplicationType maps the legacy OLD value to RENEWAL.
func NormalizeApplicationType(value string) string {
	value = strings.ToUpper(strings.TrimSpace(value))
	if value == "OLD" {
		return types.ApplicationRenewal
	}
	return value
}

// PaymentInput completes the payment fields of a permit.
type PaymentInput struct {
	AmountPaid   Money  `json:"amount_paid" validate:"required,money"`
	DatePaid     string `json:"date_paid" validate:"required,date"`
	ORNumber     string `json:"or_number" validate:"required,max=50"`
	DateReceived string `json:"date_received" validate:"omitempty,date"`
	ValidUntil   string `json:"valid_until" validate:"omitempty,date"`
}

func (v *Validator) Payment(r io.Reader) (types.PermitPayment, error) {
	var in PaymentInput
	if err := v.run(r, &in); err != nil {
		return types.PermitPayment{}, err
	}
	return types.PermitPayment{
		AmountPaid:   in.AmountPaid.Decimal(),
		DatePaid:     optionalDate(in.DatePaid),
		ORNumber:     in.ORNumber,
		DateReceived: optionalDate(in.DateReceived),
		ValidUntil:   optionalDate(in.ValidUntil),
	}, nil
}
