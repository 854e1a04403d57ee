package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/brgy-records/apiserver/types"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Vocabularies lists the accepted values of every enumerated field. Each key
// is registered as a validator alias.
var Vocabularies = map[string][]string{
	"gender":                 {"Male", "Female", "Other"},
	"sex":                    {"Male", "Female"},
	"civil_status":           {"Single", "Married", "Widowed", "Divorced", "Separated"},
	"employment_status":      {"Employed", "Unemployed", "Self-Employed", "Student", "Retired"},
	"educational_attainment": {"None", "Elementary", "High School", "Senior High School", "Vocational", "College", "Post Graduate"},
	"residency_length":       {"Less than 1 year", "1-5 years", "6-10 years", "More than 10 years"},
	"housing_status":         {"Owned", "Rented", "Shared", "Informal Settler"},
	"septic_tank":            {"Yes", "No", "Shared"},
	"certificate_type":       {"residency", "indigency", "employment", "business-permit"},
	"arrangement":            {types.ArrangementLiveIn, types.ArrangementLiveOut},
	"application_type":       {types.ApplicationNew, "OLD", types.ApplicationRenewal},
	"role":                   {string(types.RoleAdmin), string(types.RoleStaff)},
}

// maxPasswordBytes is the longest input bcrypt will hash.
const maxPasswordBytes = 72

var (
	phonePattern         = regexp.MustCompile(`^[0-9+\-\s()]+$`)
	controlNumberPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9-]*$`)
)

// Validator decodes JSON submissions and checks them against a schema.
// It is safe for concurrent use.
type Validator struct {
	validate *validator.Validate
}

// New builds a Validator with the custom rules and vocabularies registered.
func New() *Validator {
	v := validator.New()

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	v.RegisterValidation("phone", validatePhone)
	v.RegisterValidation("money", validateMoney)
	v.RegisterValidation("date", validateDate)
	v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		return len(fl.Field().String()) <= maxPasswordBytes
	})
	v.RegisterValidation("control_number", func(fl validator.FieldLevel) bool {
		return controlNumberPattern.MatchString(fl.Field().String())
	})

	v.RegisterCustomTypeFunc(moneyValue, Money{})

	for name, values := range Vocabularies {
		quoted := make([]string, len(values))
		for i, value := range values {
			quoted[i] = "'" + value + "'"
		}
		v.RegisterAlias(name, "oneof="+strings.Join(quoted, " "))
	}

	return &Validator{validate: v}
}

// Struct validates an already decoded value and returns *Errors when any
// rule fails.
func (v *Validator) Struct(dst any) error {
	errs := &Errors{}
	v.collect(dst, errs)
	return errs.orNil()
}

// run decodes r into dst, trims every string not tagged trim:"false", and
// validates. Type mismatches
// in the body are reported per field alongside rule violations.
func (v *Validator) run(r io.Reader, dst any) error {
	errs := &Errors{}
	if fatal := decode(r, dst, errs); fatal {
		return errs
	}
	trimStrings(reflect.ValueOf(dst))
	v.collect(dst, errs)
	return errs.orNil()
}

func (v *Validator) collect(dst any, errs *Errors) {
	err := v.validate.Struct(dst)
	if err == nil {
		return
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		errs.Add("body", "could not be validated")
		return
	}
	for _, fe := range fieldErrs {
		errs.Add(fe.Field(), message(fe))
	}
}

// decode reads a JSON object into dst one member at a time so that every
// mistyped field is reported, not only the first.
func decode(r io.Reader, dst any, errs *Errors) (fatal bool) {
	body, err := io.ReadAll(r)
	if err != nil {
		errs.Add("body", "could not be read")
		return true
	}
	if len(bytes.TrimSpace(body)) == 0 {
		errs.Add("body", "request body is required")
		return true
	}

	var members map[string]json.RawMessage
	if err := json.Unmarshal(body, &members); err != nil {
		errs.Add("body", "must be a valid JSON object")
		return true
	}

	keys := make([]string, 0, len(members))
	for key := range members {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		member, err := json.Marshal(map[string]json.RawMessage{key: members[key]})
		if err != nil {
			errs.Add(key, "is invalid")
			continue
		}
		if err := json.Unmarshal(member, dst); err != nil {
			var typeErr *json.UnmarshalTypeError
			if errors.As(err, &typeErr) {
				errs.Add(typeErrorField(key, typeErr), "must be "+describeKind(typeErr.Type))
			} else {
				errs.Add(key, "is invalid")
			}
		}
	}
	return false
}

// typeErrorField maps a decoder path such as "ResidentDetailsBase.age" back
// to the JSON name of the offending member.
func typeErrorField(key string, typeErr *json.UnmarshalTypeError) string {
	if typeErr.Field == "" {
		return key
	}
	path := typeErr.Field
	if i := strings.LastIndex(path, "."); i >= 0 {
		path = path[i+1:]
	}
	return path
}

func describeKind(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Bool:
		return "true or false"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "a whole number"
	case reflect.Float32, reflect.Float64:
		return "a number"
	case reflect.String:
		return "text"
	default:
		return "a valid value"
	}
}

func message(fe validator.FieldError) string {
	if values, ok := Vocabularies[fe.Tag()]; ok {
		return "must be one of: " + strings.Join(values, ", ")
	}

	switch fe.ActualTag() {
	case "required", "required_if":
		return "is required"
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return "must be at most " + fe.Param()
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return "must be at least " + fe.Param()
	case "email":
		return "must be a valid email address"
	case "phone":
		return "may only contain digits, spaces, +, - and parentheses"
	case "money":
		return "must be a valid non-negative amount"
	case "date":
		return "must be a date in YYYY-MM-DD format"
	case "eq":
		if fe.Param() == "true" {
			return "must be accepted"
		}
		return "must equal " + fe.Param()
	case "nefield":
		return "must be different from the current value"
	case "alphanum":
		return "may only contain letters and digits"
	case "password":
		return fmt.Sprintf("must be at most %d bytes", maxPasswordBytes)
	case "control_number":
		return "may only contain letters, digits and dashes"
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "required_with":
		return "is required"
	default:
		return "is invalid"
	}
}

func validatePhone(fl validator.FieldLevel) bool {
	return phonePattern.MatchString(fl.Field().String())
}

func validateDate(fl validator.FieldLevel) bool {
	_, err := types.ParseDate(fl.Field().String())
	return err == nil
}

func validateMoney(fl validator.FieldLevel) bool {
	_, ok := ParseAmount(fl.Field().String())
	return ok
}

// Money is a JSON amount that may arrive as a number or as currency text
// such as "₱12,500.00". Parsing is deferred to the money rule so a bad
// amount is reported like any other field error.
type Money struct {
	Raw string
}

func (m *Money) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		*m = Money{}
		return nil
	}
	m.Raw = strings.Trim(raw, `"`)
	return nil
}

// Decimal returns the parsed amount, or zero when the amount is absent or
// invalid.
func (m Money) Decimal() decimal.Decimal {
	amount, _ := ParseAmount(m.Raw)
	return amount
}

// Present reports whether a non-blank amount was submitted.
func (m Money) Present() bool {
	return strings.TrimSpace(m.Raw) != ""
}

func moneyValue(field reflect.Value) any {
	m, ok := field.Interface().(Money)
	if !ok || !m.Present() {
		return nil
	}
	return m.Raw
}

var amountCleaner = strings.NewReplacer("₱", "", "PHP", "", "Php", "", "php", "", ",", "", " ", "")

// ParseAmount reads a non-negative peso amount, ignoring the currency symbol
// and thousands separators.
func ParseAmount(raw string) (decimal.Decimal, bool) {
	cleaned := amountCleaner.Replace(strings.TrimSpace(raw))
	if cleaned == "" {
		return decimal.Zero, false
	}
	amount, err := decimal.NewFromString(cleaned)
	if err != nil || amount.IsNegative() {
		return decimal.Zero, false
	}
	return amount.Round(2), true
}

func trimStrings(v reflect.Value) {
	switch v.Kind() {
	case reflect.Pointer:
		if !v.IsNil() {
			trimStrings(v.Elem())
		}
	case reflect.Struct:
		for i := 0; i < v.NumField(); i++ {
			if v.Type().Field(i).Tag.Get("trim") == "false" {
				continue
			}
			trimStrings(v.Field(i))
		}
	case reflect.String:
		if v.CanSet() {
			v.SetString(strings.TrimSpace(v.String()))
		}
	}
}

func optional(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

func optionalDate(value string) types.Date {
	if value == "" {
		return types.Date{}
	}
	date, _ := types.ParseDate(value)
	return date
}
