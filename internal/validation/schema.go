package validation

import "github.com/brgy-records/apiserver/types"

// Schema names the rule set applied to a submission.
type Schema string

const (
	ResidentDetailsSchema      Schema = "resident_details"
	ResidentDetailsAdminSchema Schema = "resident_details_admin"
	KasambahaySchema           Schema = "kasambahay"
	InhabitantSchema           Schema = "inhabitant"
	BusinessPermitSchema       Schema = "business_permit"
	PaymentSchema              Schema = "permit_payment"
	LoginSchema                Schema = "login"
	RegisterSchema             Schema = "register"
	UserUpdateSchema           Schema = "user_update"
	ChangePasswordSchema       Schema = "change_password"
	OfficialSchema             Schema = "official"
)

// SelectSchema returns the schema for a record submitted by an actor with the
// given role. Anonymous callers pass an empty role. Admins may create a bare
// resident profile, so certificate_type and purpose are optional for them.
func SelectSchema(role types.Role, record types.RecordType) Schema {
	switch record {
	case types.RecordPersonal:
		if role == types.RoleAdmin {
			return ResidentDetailsAdminSchema
		}
		return ResidentDetailsSchema
	case types.RecordKasambahay:
		return KasambahaySchema
	case types.RecordInhabitant:
		return InhabitantSchema
	case types.RecordBusinessPermit:
		return BusinessPermitSchema
	default:
		return ""
	}
}
