// Package certificate maps stored records onto the fields each printable
// certificate needs and renders the certificate HTML.
package certificate

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/brgy-records/apiserver/types"
)

// Template field names.
const (
	FieldFullName          = "full_name"
	FieldAge               = "age"
	FieldGender            = "gender"
	FieldCivilStatus       = "civil_status"
	FieldCitizenship       = "citizenship"
	FieldDateOfBirth       = "date_of_birth"
	FieldAddress           = "address"
	FieldOccupation        = "occupation"
	FieldYearsResiding     = "years_residing"
	FieldPurpose           = "purpose"
	FieldBusinessName      = "business_name"
	FieldNatureOfBusiness  = "nature_of_business"
	FieldBusinessAddress   = "business_address"
	FieldProprietorName    = "proprietor_name"
	FieldProprietorAddress = "proprietor_address"
)

// ErrMissingFields is returned by Assemble when required fields are still
// empty after merging the record and the supplied values.
var ErrMissingFields = errors.New("missing certificate fields")

// MissingFieldsError lists the fields that still need a value.
type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return fmt.Sprintf("%s: %s", ErrMissingFields, strings.Join(e.Fields, ", "))
}

func (e *MissingFieldsError) Unwrap() error {
	return ErrMissingFields
}

type layout struct {
	// fields is every value the template prints, in form order.
	fields []string
	// prompt is always collected from the user, whatever the record holds.
	prompt []string
}

var layouts = map[types.CertificateType]layout{
	types.CertificateResidency: {
		fields: []string{FieldFullName, FieldAge, FieldCivilStatus, FieldCitizenship, FieldAddress, FieldYearsResiding, FieldPurpose},
		prompt: []string{FieldPurpose},
	},
	types.CertificateIndigency: {
		fields: []string{FieldFullName, FieldAge, FieldCivilStatus, FieldAddress, FieldPurpose},
		prompt: []string{FieldPurpose},
	},
	types.CertificateEmployment: {
		fields: []string{FieldFullName, FieldAge, FieldCivilStatus, FieldAddress, FieldYearsResiding, FieldPurpose},
		prompt: []string{FieldPurpose},
	},
	types.CertificateBusinessPermit: {
		fields: []string{FieldBusinessName, FieldNatureOfBusiness, FieldBusinessAddress, FieldProprietorName, FieldProprietorAddress},
		prompt: []string{FieldBusinessName, FieldNatureOfBusiness, FieldBusinessAddress},
	},
}

// ParseKind validates a certificate kind from a URL segment.
func ParseKind(raw string) (types.CertificateType, bool) {
	kind := types.CertificateType(strings.ToLower(strings.TrimSpace(raw)))
	_, ok := layouts[kind]
	return kind, ok
}

// Fields returns the template fields of kind in form order.
func Fields(kind types.CertificateType) []string {
	return append([]string(nil), layouts[kind].fields...)
}

// Source is the flattened view of the record a certificate is issued from.
type Source struct {
	Type   types.RecordType  `json:"type"`
	ID     int               `json:"id"`
	Values map[string]string `json:"values"`
}

// SourceFromInhabitant flattens an RBI record.
func SourceFromInhabitant(i types.Inhabitant) Source {
	address := i.Address
	if i.Purok != nil && strings.TrimSpace(*i.Purok) != "" && !strings.Contains(address, *i.Purok) {
		address = strings.TrimSpace(*i.Purok) + ", " + address
	}
	values := map[string]string{
		FieldFullName:    i.FullName(),
		FieldGender:      i.Sex,
		FieldCivilStatus: i.CivilStatus,
		FieldCitizenship: i.Citizenship,
		FieldDateOfBirth: i.BirthDate.String(),
		FieldAddress:     address,
		FieldOccupation:  deref(i.Occupation),
	}
	return Source{Type: types.RecordInhabitant, ID: i.ID, Values: compact(values)}
}

// SourceFromResidentDetails flattens a personal-details submission.
func SourceFromResidentDetails(r types.ResidentDetails) Source {
	values := map[string]string{
		FieldFullName:    r.FullName(),
		FieldAge:         strconv.Itoa(r.Age),
		FieldGender:      r.Gender,
		FieldCivilStatus: r.CivilStatus,
		FieldDateOfBirth: r.DateOfBirth.String(),
		FieldAddress:     r.Address,
		FieldOccupation:  deref(r.Occupation),
		FieldPurpose:     deref(r.Purpose),
	}
	if r.YearsResiding != nil {
		values[FieldYearsResiding] = strconv.Itoa(*r.YearsResiding)
	}
	return Source{Type: types.RecordPersonal, ID: r.ID, Values: compact(values)}
}

// Plan splits the template fields of a certificate into those the record
// already provides and those the user must supply.
type Plan struct {
	Kind types.CertificateType `json:"kind"`
	// Present holds resolved values, including computed defaults.
	Present map[string]string `json:"present"`
	// Missing is in template order.
	Missing []string `json:"missing"`
	// Estimated names Present fields that were computed rather than recorded.
	// Callers should confirm them with the user.
	Estimated []string `json:"estimated"`
	// Suggested prefills Missing fields the record happens to hold.
	Suggested map[string]string `json:"suggested"`
}

// PlanFor computes the plan for kind. It depends only on its arguments.
func PlanFor(kind types.CertificateType, source Source, now time.Time) (Plan, error) {
	l, ok := layouts[kind]
	if !ok {
		return Plan{}, fmt.Errorf("unknown certificate kind %q", kind)
	}
	values, estimated := resolve(source.Values, now)

	plan := Plan{
		Kind:      kind,
		Present:   make(map[string]string),
		Missing:   make([]string, 0),
		Estimated: make([]string, 0),
		Suggested: make(map[string]string),
	}
	for _, field := range l.fields {
		value, has := values[field]
		if !has || contains(l.prompt, field) {
			plan.Missing = append(plan.Missing, field)
			if has {
				plan.Suggested[field] = value
			}
			continue
		}
		plan.Present[field] = value
		if estimated[field] {
			plan.Estimated = append(plan.Estimated, field)
		}
	}
	return plan, nil
}

// Document is a fully assembled certificate ready for rendering.
type Document struct {
	Kind          types.CertificateType `json:"kind"`
	ControlNumber string                `json:"control_number"`
	Source        Source                `json:"source"`
	Fields        map[string]string     `json:"fields"`
	Estimated     []string              `json:"estimated"`
	Letterhead    Letterhead            `json:"letterhead"`
	IssuedOn      types.Date            `json:"issued_on"`
}

// Letterhead is the council printed on every certificate.
type Letterhead struct {
	PunongBarangay *types.Official  `json:"punong_barangay"`
	Secretary      *types.Official  `json:"secretary"`
	Treasurer      *types.Official  `json:"treasurer"`
	Council        []types.Official `json:"council"`
}

// NewLetterhead picks the signatories by position_order. Seats between the
// punong barangay and the secretary form the council column.
func NewLetterhead(officials []types.Official) Letterhead {
	sorted := append([]types.Official(nil), officials...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].PositionOrder < sorted[j].PositionOrder })

	var lh Letterhead
	for i := range sorted {
		official := sorted[i]
		switch {
		case official.PositionOrder == types.OrderPunongBarangay:
			lh.PunongBarangay = &official
		case official.PositionOrder == types.OrderSecretary:
			lh.Secretary = &official
		case official.PositionOrder == types.OrderTreasurer:
			lh.Treasurer = &official
		case official.PositionOrder > types.OrderPunongBarangay && official.PositionOrder < types.OrderSecretary:
			lh.Council = append(lh.Council, official)
		}
	}
	return lh
}

// Assemble merges the record, computed defaults and the user-supplied
// values into a Document. Supplied values win over recorded ones; keys that
// are not template fields are ignored. A *MissingFieldsError is returned when
// any template field is still empty.
func Assemble(kind types.CertificateType, source Source, supplied map[string]string, officials []types.Official, now time.Time) (Document, error) {
	l, ok := layouts[kind]
	if !ok {
		return Document{}, fmt.Errorf("unknown certificate kind %q", kind)
	}
	values, estimated := resolve(source.Values, now)

	doc := Document{
		Kind:       kind,
		Source:     source,
		Fields:     make(map[string]string, len(l.fields)),
		Estimated:  make([]string, 0),
		Letterhead: NewLetterhead(officials),
		IssuedOn:   types.NewDate(now),
	}

	var missing []string
	for _, field := range l.fields {
		if value := strings.TrimSpace(supplied[field]); value != "" {
			doc.Fields[field] = value
			continue
		}
		value, has := values[field]
		if !has || contains(l.prompt, field) {
			missing = append(missing, field)
			continue
		}
		doc.Fields[field] = value
		if estimated[field] {
			doc.Estimated = append(doc.Estimated, field)
		}
	}
	if len(missing) > 0 {
		return Document{}, &MissingFieldsError{Fields: missing}
	}
	return doc, nil
}

// resolve fills the computed defaults: age from the date of birth, the
// proprietor from the person, and years residing estimated as age - 18 with a
// minimum of 1, which assumes residency began at adulthood.
func resolve(recorded map[string]string, now time.Time) (map[string]string, map[string]bool) {
	values := make(map[string]string, len(recorded)+4)
	for k, v := range recorded {
		if v = strings.TrimSpace(v); v != "" {
			values[k] = v
		}
	}
	estimated := make(map[string]bool)

	if _, ok := values[FieldAge]; !ok {
		if dob, err := types.ParseDate(values[FieldDateOfBirth]); err == nil && !dob.IsZero() {
			values[FieldAge] = strconv.Itoa(dob.AgeOn(now))
		}
	}
	if _, ok := values[FieldYearsResiding]; !ok {
		if age, err := strconv.Atoi(values[FieldAge]); err == nil {
			values[FieldYearsResiding] = strconv.Itoa(EstimateYearsResiding(age))
			estimated[FieldYearsResiding] = true
		}
	}
	if name, ok := values[FieldFullName]; ok {
		values[FieldProprietorName] = name
	}
	if address, ok := values[FieldAddress]; ok {
		values[FieldProprietorAddress] = address
	}
	return values, estimated
}

// EstimateYearsResiding is the fallback used when no residency length is on
// record.
func EstimateYearsResiding(age int) int {
	if years := age - 18; years > 1 {
		return years
	}
	return 1
}

func contains(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

func compact(values map[string]string) map[string]string {
	for k, v := range values {
		if strings.TrimSpace(v) == "" {
			delete(values, k)
		}
	}
	return values
}
