package types

import "time"

// Inhabitant is one household member in the Record of Barangay Inhabitants (RBI).
// Inhabitants sharing a HouseholdNo form a family group.
type Inhabitant struct {
	// ID is the unique identifier of the inhabitant.
	ID int `json:"id" db:"id"`

	// HouseholdNo groups members of the same household.
	HouseholdNo string `json:"household_no" db:"household_no"`

	LastName   string  `json:"last_name" db:"last_name"`
	FirstName  string  `json:"first_name" db:"first_name"`
	MiddleName *string `json:"middle_name" db:"middle_name"`
	Suffix     *string `json:"suffix" db:"suffix"`

	// Address is the street address of the household.
	Address string  `json:"address" db:"address"`
	Purok   *string `json:"purok" db:"purok"`

	BirthDate             Date    `json:"birth_date" db:"birth_date"`
	BirthPlace            *string `json:"birth_place" db:"birth_place"`
	Sex                   string  `json:"sex" db:"sex"`
	CivilStatus           string  `json:"civil_status" db:"civil_status"`
	Citizenship           string  `json:"citizenship" db:"citizenship"`
	Occupation            *string `json:"occupation" db:"occupation"`
	EducationalAttainment *string `json:"educational_attainment" db:"educational_attainment"`
	ContactNumber         *string `json:"contact_number" db:"contact_number"`

	// RelationshipToHead describes the member's relation to the household head.
	RelationshipToHead string `json:"relationship_to_head" db:"relationship_to_head"`

	RegisteredVoter bool    `json:"registered_voter" db:"registered_voter"`
	HousingStatus   *string `json:"housing_status" db:"housing_status"`
	SepticTank      *string `json:"septic_tank" db:"septic_tank"`

	// DateAccomplished is the date the RBI form was filled in.
	DateAccomplished Date `json:"date_accomplished" db:"date_accomplished"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// FullName joins the name parts, skipping an empty middle name and suffix.
func (i Inhabitant) FullName() string {
	return JoinName(i.FirstName, i.MiddleName, i.LastName, i.Suffix)
}
